package integration

import (
	"github.com/odyssey-erp/backoffice/internal/accounting/journals"
	"github.com/odyssey-erp/backoffice/internal/sales/orders"
)

type invoiceAccounts struct {
	receivable int64
	revenue    int64
	taxPayable int64
}

// invoiceLines omits the tax line for zero-rated invoices.
func invoiceLines(accounts invoiceAccounts, posting orders.LedgerPosting) []journals.PostingLineInput {
	lines := []journals.PostingLineInput{
		{AccountID: accounts.receivable, Debit: posting.Amount},
		{AccountID: accounts.revenue, Credit: posting.Subtotal},
	}
	if posting.Tax.IsPositive() {
		lines = append(lines, journals.PostingLineInput{AccountID: accounts.taxPayable, Credit: posting.Tax})
	}
	return lines
}
