package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"

	jobmetrics "github.com/odyssey-erp/backoffice/internal/jobs"
	"github.com/odyssey-erp/backoffice/internal/sales/orders"
)

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// LedgerPostJob consumes ledger:post_invoice tasks.
type LedgerPostJob struct {
	Poster  orders.LedgerPoster
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewLedgerPostJob wires dependencies for the ledger post handler.
func NewLedgerPostJob(poster orders.LedgerPoster, logger *slog.Logger, metrics *jobmetrics.Metrics) *LedgerPostJob {
	return &LedgerPostJob{Poster: poster, Logger: logger, Metrics: metrics}
}

// Handle posts the invoice carried by the task.
func (j *LedgerPostJob) Handle(ctx context.Context, t *asynq.Task) (resultErr error) {
	if j == nil || j.Poster == nil {
		return errors.New("ledger post: handler not configured")
	}
	var posting orders.LedgerPosting
	if err := json.Unmarshal(t.Payload(), &posting); err != nil {
		return fmt.Errorf("ledger post: decode payload: %v: %w", err, asynq.SkipRetry)
	}

	tracker := j.metrics().Track(TaskLedgerPostInvoice)
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(
		slog.Int64("invoice_id", posting.InvoiceID),
		slog.String("invoice_number", posting.InvoiceNumber),
	)
	if err := j.Poster.PostInvoice(ctx, posting); err != nil {
		logger.Error("ledger post failed", slog.Any("error", err))
		return err
	}
	logger.Info("ledger post completed")
	return nil
}

func (j *LedgerPostJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskLedgerPostInvoice))
	}
	return slog.Default().With(slog.String("job", TaskLedgerPostInvoice))
}

func (j *LedgerPostJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
