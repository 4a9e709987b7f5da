// Package diag is the diagnostic sink: where units report failures that
// are not shown on screen.
package diag

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jask/storefront/internal/database"
	"github.com/jask/storefront/internal/database/repository"
)

// Failure is one failed catalog read.
type Failure struct {
	Unit      string
	Operation string
	Err       error
}

// Sink receives failures. Implementations must not block for long; they are
// called from the command goroutine that performed the read.
type Sink interface {
	Report(ctx context.Context, f Failure)
}

// Nop drops every failure.
type Nop struct{}

func (Nop) Report(context.Context, Failure) {}

// Logger writes failures to a zap logger at warn level.
type Logger struct {
	log *zap.Logger
}

func NewLogger(log *zap.Logger) Logger {
	return Logger{log: log.Named("diag")}
}

func (l Logger) Report(_ context.Context, f Failure) {
	l.log.Warn("catalog read failed",
		zap.String("unit", f.Unit),
		zap.String("operation", f.Operation),
		zap.Error(f.Err),
	)
}

// FailureWriter persists journal rows.
type FailureWriter interface {
	Add(ctx context.Context, f repository.Failure) error
}

// Journal stores failures in the sqlite failure journal.
type Journal struct {
	repo FailureWriter
	log  *zap.Logger
	now  func() time.Time
}

func NewJournal(repo FailureWriter, log *zap.Logger) *Journal {
	return &Journal{repo: repo, log: log.Named("journal"), now: database.Now}
}

func (j *Journal) Report(ctx context.Context, f Failure) {
	// the reporting unit may already be unmounted; the row is still wanted
	ctx = context.WithoutCancel(ctx)
	row := repository.Failure{
		ID:         uuid.NewString(),
		Unit:       f.Unit,
		Operation:  f.Operation,
		Message:    errText(f.Err),
		OccurredAt: j.now(),
	}
	if err := j.repo.Add(ctx, row); err != nil {
		j.log.Error("journal write failed", zap.String("unit", f.Unit), zap.Error(err))
	}
}

// Tee fans a failure out to every sink in order.
type Tee []Sink

func (t Tee) Report(ctx context.Context, f Failure) {
	for _, s := range t {
		s.Report(ctx, f)
	}
}

func errText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
