package reconciliation_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/mocks"
	"github.com/dmitrijs2005/gophauth/internal/server/reconciliation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func sampleOrphan() reconciliation.Orphan {
	return reconciliation.Orphan{
		IdentityID:  "3f0c2d7e-0000-4000-8000-000000000001",
		Email:       "alice@example.com",
		Cause:       "profile service unavailable",
		RollbackErr: "db down",
		DetectedAt:  time.Date(2025, 3, 7, 10, 0, 0, 0, time.UTC),
	}
}

func TestLogSink_WritesErrorRecord(t *testing.T) {
	var buf bytes.Buffer
	sink := reconciliation.NewLogSink(logging.NewJSONLogger(&buf, slog.LevelInfo))

	require.NoError(t, sink.Report(context.Background(), sampleOrphan()))

	out := buf.String()
	assert.Contains(t, out, `"level":"ERROR"`)
	assert.Contains(t, out, "manual reconciliation required")
	assert.Contains(t, out, "3f0c2d7e-0000-4000-8000-000000000001")
	assert.Contains(t, out, `"module":"reconciliation"`)
}

func TestS3Sink_PutsJSONObject(t *testing.T) {
	ctrl := gomock.NewController(t)
	putter := mocks.NewMockObjectPutter(ctrl)

	var gotBody []byte
	putter.EXPECT().
		PutObject(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			assert.Equal(t, "orphans", *in.Bucket)
			assert.Equal(t, "orphans/2025/03/07/3f0c2d7e-0000-4000-8000-000000000001.json", *in.Key)
			assert.Equal(t, "application/json", *in.ContentType)
			b, err := io.ReadAll(in.Body)
			require.NoError(t, err)
			gotBody = b
			return &s3.PutObjectOutput{}, nil
		})

	sink := reconciliation.NewS3Sink(putter, "orphans")
	require.NoError(t, sink.Report(context.Background(), sampleOrphan()))

	assert.JSONEq(t, `{
		"identity_id": "3f0c2d7e-0000-4000-8000-000000000001",
		"email": "alice@example.com",
		"cause": "profile service unavailable",
		"rollback_error": "db down",
		"detected_at": "2025-03-07T10:00:00Z"
	}`, string(gotBody))
}

func TestS3Sink_PutError(t *testing.T) {
	ctrl := gomock.NewController(t)
	putter := mocks.NewMockObjectPutter(ctrl)
	putter.EXPECT().PutObject(gomock.Any(), gomock.Any()).Return(nil, errors.New("access denied"))

	err := reconciliation.NewS3Sink(putter, "orphans").Report(context.Background(), sampleOrphan())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access denied")
}

func TestMultiSink_ReportsToAllAndJoinsErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	first := mocks.NewMockSink(ctrl)
	second := mocks.NewMockSink(ctrl)

	o := sampleOrphan()
	errFirst := errors.New("first failed")
	first.EXPECT().Report(gomock.Any(), o).Return(errFirst)
	second.EXPECT().Report(gomock.Any(), o).Return(nil)

	err := reconciliation.MultiSink{first, nil, second}.Report(context.Background(), o)
	require.ErrorIs(t, err, errFirst)
}

func TestMultiSink_Empty(t *testing.T) {
	require.NoError(t, reconciliation.MultiSink{}.Report(context.Background(), sampleOrphan()))
}

func TestObjectKey(t *testing.T) {
	o := sampleOrphan()
	o.DetectedAt = time.Date(2024, 12, 31, 23, 30, 0, 0, time.FixedZone("X", -2*3600))
	assert.Equal(t, "orphans/2025/01/01/"+o.IdentityID+".json", reconciliation.ObjectKey(o))
}
