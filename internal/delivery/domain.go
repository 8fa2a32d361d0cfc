package delivery

import (
	"fmt"
	"time"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Status represents the lifecycle of a sales delivery.
type Status string

const (
	// StatusDelivered marks goods handed over to the customer.
	StatusDelivered Status = "DELIVERED"
)

// SalesDelivery records the dispatch of one sales order. It is created once and never updated.
type SalesDelivery struct {
	ID             int64      `json:"id"`
	DeliveryNumber string     `json:"deliveryNumber"`
	SalesOrderID   int64      `json:"salesOrderId"`
	Status         Status     `json:"status"`
	DispatchedAt   time.Time  `json:"dispatchedAt"`
	DeliveredAt    *time.Time `json:"deliveredAt,omitempty"`
	CreatedBy      int64      `json:"createdBy"`
	Items          []Line     `json:"items"`
}

// Line mirrors one ordered product at the time of delivery.
type Line struct {
	ProductID int64 `json:"productId"`
	Quantity  int64 `json:"quantity"`
}

// ErrAlreadyDelivered indicates the order already owns a delivery.
var ErrAlreadyDelivered = fmt.Errorf("delivery: sales order already has a delivery: %w", shared.ErrInvalidState)
