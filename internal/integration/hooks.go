package integration

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/odyssey-erp/backoffice/internal/accounting/journals"
	"github.com/odyssey-erp/backoffice/internal/sales/orders"
)

const (
	moduleAR = "AR"

	keyReceivable = "ar.invoice.receivable"
	keyRevenue    = "ar.invoice.revenue"
	keyTaxPayable = "ar.invoice.tax"

	sourceInvoice = "AR.INVOICE"
)

// Ledger exposes journal posting operations required by integrations.
type Ledger interface {
	PostJournal(ctx context.Context, input journals.PostingInput) (journals.JournalEntry, error)
}

// AccountMappingRepository provides mapping lookups.
type AccountMappingRepository interface {
	Resolve(ctx context.Context, module string, keys ...string) (map[string]int64, error)
}

// JournalPoster turns issued invoices into general ledger entries.
type JournalPoster struct {
	ledger      Ledger
	mappingRepo AccountMappingRepository
}

// NewJournalPoster constructs the poster.
func NewJournalPoster(ledger Ledger, mappingRepo AccountMappingRepository) *JournalPoster {
	return &JournalPoster{ledger: ledger, mappingRepo: mappingRepo}
}

var _ orders.LedgerPoster = (*JournalPoster)(nil)

// InvoiceSourceID is the journal source reference for an invoice. Posting the same
// invoice twice resolves to the same id.
func InvoiceSourceID(invoiceID int64) uuid.UUID {
	return uuid.NewSHA1(uuid.Nil, []byte(fmt.Sprintf("INV:%d", invoiceID)))
}

// PostInvoice posts Dr receivable / Cr revenue / Cr tax payable for the invoice.
func (p *JournalPoster) PostInvoice(ctx context.Context, posting orders.LedgerPosting) error {
	if p == nil || p.ledger == nil || p.mappingRepo == nil {
		return errors.New("integration: journal poster not configured")
	}
	if posting.InvoiceID == 0 {
		return errors.New("integration: invoice id required")
	}
	if posting.IssueDate.IsZero() {
		return errors.New("integration: invoice issue date required")
	}
	if !posting.Amount.IsPositive() {
		return nil
	}
	accounts, err := p.resolveAccounts(ctx)
	if err != nil {
		return err
	}
	input := journals.PostingInput{
		Date:         posting.IssueDate,
		SourceModule: sourceInvoice,
		SourceID:     InvoiceSourceID(posting.InvoiceID),
		Memo:         posting.Description,
		PostedBy:     posting.ActorID,
		Lines:        invoiceLines(accounts, posting),
	}
	return p.post(ctx, input)
}

func (p *JournalPoster) resolveAccounts(ctx context.Context) (invoiceAccounts, error) {
	ids, err := p.mappingRepo.Resolve(ctx, moduleAR, keyReceivable, keyRevenue, keyTaxPayable)
	if err != nil {
		return invoiceAccounts{}, fmt.Errorf("integration: invoice accounts: %w", err)
	}
	return invoiceAccounts{
		receivable: ids[keyReceivable],
		revenue:    ids[keyRevenue],
		taxPayable: ids[keyTaxPayable],
	}, nil
}

func (p *JournalPoster) post(ctx context.Context, input journals.PostingInput) error {
	_, err := p.ledger.PostJournal(ctx, input)
	if errors.Is(err, journals.ErrSourceAlreadyLinked) {
		return nil
	}
	return err
}
