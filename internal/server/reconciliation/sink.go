// Package reconciliation records identities left without a profile after a
// failed compensation. These need an operator, so the records go out of band.
package reconciliation

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/logging"
)

// Orphan describes an identity whose compensating delete failed.
type Orphan struct {
	IdentityID  string    `json:"identity_id"`
	Email       string    `json:"email"`
	Cause       string    `json:"cause"`
	RollbackErr string    `json:"rollback_error"`
	DetectedAt  time.Time `json:"detected_at"`
}

type Sink interface {
	Report(ctx context.Context, o Orphan) error
}

// LogSink writes the orphan at ERROR level.
type LogSink struct {
	log logging.Logger
}

func NewLogSink(l logging.Logger) *LogSink {
	return &LogSink{log: l.With("module", "reconciliation")}
}

func (s *LogSink) Report(ctx context.Context, o Orphan) error {
	s.log.Error(ctx, "manual reconciliation required",
		"identity_id", o.IdentityID,
		"cause", o.Cause,
		"rollback_error", o.RollbackErr,
		"detected_at", o.DetectedAt,
	)
	return nil
}

// MultiSink fans a report out to every sink, even when some fail.
type MultiSink []Sink

func (m MultiSink) Report(ctx context.Context, o Orphan) error {
	var errs []error
	for _, s := range m {
		if s == nil {
			continue
		}
		if err := s.Report(ctx, o); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
