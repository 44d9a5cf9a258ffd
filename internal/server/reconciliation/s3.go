package reconciliation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// ObjectPutter is the part of *s3.Client the sink needs.
type ObjectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Options configures the S3 client. Empty credentials fall back to the
// default AWS chain; a base endpoint switches to path-style addressing (MinIO).
type S3Options struct {
	Region       string
	BaseEndpoint string
	AccessKey    string
	SecretKey    string
}

func NewS3Client(ctx context.Context, o S3Options) (*s3.Client, error) {
	loaders := []func(*config.LoadOptions) error{config.WithRegion(o.Region)}
	if o.AccessKey != "" {
		loaders = append(loaders, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(o.AccessKey, o.SecretKey, "")))
	}

	cfg, err := loadDefaultAWSConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return newS3ClientFromConfig(cfg, func(so *s3.Options) {
		if o.BaseEndpoint != "" {
			so.BaseEndpoint = aws.String(o.BaseEndpoint)
			so.UsePathStyle = true
		}
	}), nil
}

// S3Sink stores each orphan as a JSON dead-letter object.
type S3Sink struct {
	client ObjectPutter
	bucket string
}

func NewS3Sink(client ObjectPutter, bucket string) *S3Sink {
	return &S3Sink{client: client, bucket: bucket}
}

// ObjectKey is orphans/<yyyy>/<mm>/<dd>/<identity id>.json.
func ObjectKey(o Orphan) string {
	d := o.DetectedAt.UTC()
	return fmt.Sprintf("orphans/%04d/%02d/%02d/%s.json", d.Year(), d.Month(), d.Day(), o.IdentityID)
}

func (s *S3Sink) Report(ctx context.Context, o Orphan) error {
	if o.DetectedAt.IsZero() {
		o.DetectedAt = time.Now()
	}
	body, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("marshal orphan: %w", err)
	}

	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(ObjectKey(o)),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("put orphan record: %w", err)
	}
	return nil
}
