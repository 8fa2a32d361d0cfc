package jobs

import (
	"encoding/json"

	"github.com/hibiken/asynq"

	"github.com/odyssey-erp/backoffice/internal/sales/orders"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskLedgerPostInvoice posts an issued invoice to the general ledger.
	TaskLedgerPostInvoice = "ledger:post_invoice"
)

// NewLedgerPostTask constructs an Asynq task for one invoice. The task is never retried:
// a failed post stays visible in the archive instead of being replayed.
func NewLedgerPostTask(posting orders.LedgerPosting) (*asynq.Task, error) {
	data, err := json.Marshal(posting)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLedgerPostInvoice, data, asynq.Queue(QueueDefault), asynq.MaxRetry(0)), nil
}
