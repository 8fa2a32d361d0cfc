package orders

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Status is the lifecycle position of a sales order.
type Status string

const (
	StatusDraft           Status = "DRAFT"
	StatusPendingApproval Status = "PENDING_APPROVAL"
	StatusApproved        Status = "APPROVED"
	StatusDelivered       Status = "DELIVERED"
	StatusInvoiced        Status = "INVOICED"
	StatusCancelled       Status = "CANCELLED"
)

// IsTerminal reports whether no action is accepted from s.
func (s Status) IsTerminal() bool {
	return s == StatusInvoiced || s == StatusCancelled
}

// ApprovalStatus tracks the approval sub-state.
type ApprovalStatus string

const (
	ApprovalNotSubmitted ApprovalStatus = "NOT_SUBMITTED"
	ApprovalPending      ApprovalStatus = "PENDING"
	ApprovalApproved     ApprovalStatus = "APPROVED"
	ApprovalRejected     ApprovalStatus = "REJECTED"
)

// Action is a requested state transition.
type Action string

const (
	ActionSubmit  Action = "SUBMIT"
	ActionApprove Action = "APPROVE"
	ActionDeliver Action = "DELIVER"
	ActionInvoice Action = "INVOICE"
	ActionCancel  Action = "CANCEL"
)

// Actions lists every action in workflow order.
func Actions() []Action {
	return []Action{ActionSubmit, ActionApprove, ActionDeliver, ActionInvoice, ActionCancel}
}

// ErrUnknownAction indicates the action is not one of Actions().
var ErrUnknownAction = fmt.Errorf("orders: unknown action: %w", shared.ErrValidation)

// ParseAction converts raw input into an Action.
func ParseAction(raw string) (Action, error) {
	a := Action(strings.ToUpper(strings.TrimSpace(raw)))
	switch a {
	case ActionSubmit, ActionApprove, ActionDeliver, ActionInvoice, ActionCancel:
		return a, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownAction, raw)
	}
}

// SalesOrder is the order header with its items.
type SalesOrder struct {
	ID             int64            `json:"id"`
	OrderNumber    string           `json:"orderNumber"`
	Status         Status           `json:"status"`
	ApprovalStatus ApprovalStatus   `json:"approvalStatus"`
	CustomerID     int64            `json:"customerId"`
	QuoteID        *int64           `json:"quoteId,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
	TaxRate        decimal.Decimal  `json:"taxRate"`
	Subtotal       decimal.Decimal  `json:"subtotal"`
	Tax            decimal.Decimal  `json:"tax"`
	TotalAmount    decimal.Decimal  `json:"totalAmount"`
	InvoiceID      *int64           `json:"invoiceId,omitempty"`
	SubmittedAt    *time.Time       `json:"submittedAt,omitempty"`
	ApprovedAt     *time.Time       `json:"approvedAt,omitempty"`
	ApprovedBy     *int64           `json:"approvedBy,omitempty"`
	DeliveredAt    *time.Time       `json:"deliveredAt,omitempty"`
	CreatedBy      int64            `json:"createdBy"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
	Items          []SalesOrderItem `json:"items"`
	Customer       *CustomerSummary `json:"customer,omitempty"`
}

// SalesOrderItem is one priced line.
type SalesOrderItem struct {
	ID        int64           `json:"id"`
	ProductID int64           `json:"productId"`
	Quantity  int64           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Discount  decimal.Decimal `json:"discount"`
	LineTotal decimal.Decimal `json:"lineTotal"`
}

// CustomerSummary is the customer embedded in order responses.
type CustomerSummary struct {
	ID   int64  `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// QuoteRef is what order creation needs to know about a quotation.
type QuoteRef struct {
	ID         int64
	CustomerID int64
	Status     string
}

// QuoteStatusAccepted is the only quotation status an order may be sourced from.
const QuoteStatusAccepted = "ACCEPTED"
