package orders

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/backoffice/internal/ar"
	"github.com/odyssey-erp/backoffice/internal/delivery"
)

type CreateSalesOrderRequest struct {
	CustomerID int64                         `json:"customerId" validate:"required,gt=0"`
	Items      []CreateSalesOrderItemRequest `json:"items" validate:"required,min=1,dive"`
	TaxPercent *decimal.Decimal              `json:"taxPercent,omitempty"`
	QuoteID    *int64                        `json:"quoteId,omitempty" validate:"omitempty,gt=0"`
	Notes      *string                       `json:"notes,omitempty" validate:"omitempty,max=2000"`
}

type CreateSalesOrderItemRequest struct {
	ProductID int64            `json:"productId" validate:"required,gt=0"`
	Quantity  int64            `json:"quantity" validate:"required,gt=0"`
	UnitPrice decimal.Decimal  `json:"unitPrice"`
	Discount  *decimal.Decimal `json:"discount,omitempty"`
}

type TransitionSalesOrderRequest struct {
	Action string `json:"action"`
}

// TransitionRequest is the service-level input for one transition.
type TransitionRequest struct {
	OrderID int64
	Action  Action
	ActorID int64
}

type OrderResponse struct {
	ID             int64            `json:"id"`
	OrderNumber    string           `json:"orderNumber"`
	Status         Status           `json:"status"`
	ApprovalStatus ApprovalStatus   `json:"approvalStatus"`
	CustomerID     int64            `json:"customerId"`
	QuoteID        *int64           `json:"quoteId,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
	TaxRate        string           `json:"taxRate"`
	Subtotal       string           `json:"subtotal"`
	Tax            string           `json:"tax"`
	TotalAmount    string           `json:"totalAmount"`
	InvoiceID      *int64           `json:"invoiceId,omitempty"`
	SubmittedAt    *time.Time       `json:"submittedAt,omitempty"`
	ApprovedAt     *time.Time       `json:"approvedAt,omitempty"`
	ApprovedBy     *int64           `json:"approvedBy,omitempty"`
	DeliveredAt    *time.Time       `json:"deliveredAt,omitempty"`
	CreatedBy      int64            `json:"createdBy"`
	CreatedAt      time.Time        `json:"createdAt"`
	UpdatedAt      time.Time        `json:"updatedAt"`
	Items          []ItemResponse   `json:"items"`
	Customer       *CustomerSummary `json:"customer,omitempty"`
}

type ItemResponse struct {
	ID        int64  `json:"id"`
	ProductID int64  `json:"productId"`
	Quantity  int64  `json:"quantity"`
	UnitPrice string `json:"unitPrice"`
	Discount  string `json:"discount"`
	LineTotal string `json:"lineTotal"`
}

type InvoiceResponse struct {
	ID            int64     `json:"id"`
	InvoiceNumber string    `json:"invoiceNumber"`
	CustomerID    int64     `json:"customerId"`
	Subtotal      string    `json:"subtotal"`
	TaxAmount     string    `json:"taxAmount"`
	TotalAmount   string    `json:"totalAmount"`
	PaidAmount    string    `json:"paidAmount"`
	BalanceAmount string    `json:"balanceAmount"`
	Status        string    `json:"status"`
	IssueDate     time.Time `json:"issueDate"`
	DueDate       time.Time `json:"dueDate"`
}

// TransitionResponse inlines the updated order and adds the transition outcome.
type TransitionResponse struct {
	OrderResponse
	Outcome      Outcome                 `json:"outcome"`
	Degradations []Degradation           `json:"degradations,omitempty"`
	Delivery     *delivery.SalesDelivery `json:"delivery,omitempty"`
	Invoice      *InvoiceResponse        `json:"invoice,omitempty"`
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// NewOrderResponse renders money with exactly two decimal places.
func NewOrderResponse(o *SalesOrder) OrderResponse {
	resp := OrderResponse{
		ID:             o.ID,
		OrderNumber:    o.OrderNumber,
		Status:         o.Status,
		ApprovalStatus: o.ApprovalStatus,
		CustomerID:     o.CustomerID,
		QuoteID:        o.QuoteID,
		Notes:          o.Notes,
		TaxRate:        o.TaxRate.String(),
		Subtotal:       money(o.Subtotal),
		Tax:            money(o.Tax),
		TotalAmount:    money(o.TotalAmount),
		InvoiceID:      o.InvoiceID,
		SubmittedAt:    o.SubmittedAt,
		ApprovedAt:     o.ApprovedAt,
		ApprovedBy:     o.ApprovedBy,
		DeliveredAt:    o.DeliveredAt,
		CreatedBy:      o.CreatedBy,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		Items:          make([]ItemResponse, 0, len(o.Items)),
		Customer:       o.Customer,
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, ItemResponse{
			ID:        it.ID,
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: money(it.UnitPrice),
			Discount:  money(it.Discount),
			LineTotal: money(it.LineTotal),
		})
	}
	return resp
}

// NewTransitionResponse renders a committed transition.
func NewTransitionResponse(res TransitionResult) TransitionResponse {
	resp := TransitionResponse{
		OrderResponse: NewOrderResponse(res.Order),
		Outcome:       res.Outcome(),
		Degradations:  res.Degradations,
		Delivery:      res.Delivery,
	}
	if inv := res.Invoice; inv != nil {
		resp.Invoice = newInvoiceResponse(inv)
	}
	return resp
}

func newInvoiceResponse(inv *ar.Invoice) *InvoiceResponse {
	return &InvoiceResponse{
		ID:            inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		CustomerID:    inv.CustomerID,
		Subtotal:      money(inv.Subtotal),
		TaxAmount:     money(inv.TaxAmount),
		TotalAmount:   money(inv.TotalAmount),
		PaidAmount:    money(inv.PaidAmount),
		BalanceAmount: money(inv.BalanceAmount),
		Status:        string(inv.Status),
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
	}
}
