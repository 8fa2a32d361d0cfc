package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/odyssey-erp/backoffice/internal/ar"
	"github.com/odyssey-erp/backoffice/internal/customers"
	"github.com/odyssey-erp/backoffice/internal/delivery"
	"github.com/odyssey-erp/backoffice/internal/inventory"
	"github.com/odyssey-erp/backoffice/internal/sequence"
	"github.com/odyssey-erp/backoffice/internal/shared"
	"github.com/odyssey-erp/backoffice/internal/tax"
)

// ServiceConfig groups optional collaborators.
type ServiceConfig struct {
	Cache    OrderCache
	Observer Observer
	Clock    func() time.Time
}

// Service runs order creation and the order state machine.
type Service struct {
	repo     Repository
	ledger   LedgerPoster
	cache    OrderCache
	observer Observer
	validate *validator.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewService builds Service.
func NewService(repo Repository, ledger LedgerPoster, logger *slog.Logger, cfg ServiceConfig) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:     repo,
		ledger:   ledger,
		cache:    cfg.Cache,
		observer: cfg.Observer,
		validate: validator.New(),
		logger:   logger,
		now:      clock,
	}
}

// Get returns one order, read through the cache when configured.
func (s *Service) Get(ctx context.Context, id int64) (*SalesOrder, error) {
	if s.cache == nil {
		return s.repo.Get(ctx, id)
	}
	return s.cache.Fetch(ctx, id, func(ctx context.Context) (*SalesOrder, error) {
		return s.repo.Get(ctx, id)
	})
}

// Create validates and prices the request, then persists a DRAFT order with a new SO number.
func (s *Service) Create(ctx context.Context, req CreateSalesOrderRequest, actorID int64) (*SalesOrder, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, validationError(err)
	}
	rate := decimal.Zero
	if req.TaxPercent != nil {
		rate = *req.TaxPercent
	}
	lines := make([]tax.LineInput, 0, len(req.Items))
	for _, it := range req.Items {
		line := tax.LineInput{Quantity: it.Quantity, UnitPrice: it.UnitPrice}
		if it.Discount != nil {
			line.Discount = *it.Discount
		}
		lines = append(lines, line)
	}
	totals, err := tax.ComputeOrder(lines, rate)
	if err != nil {
		return nil, err
	}

	now := s.now()
	draft := SalesOrder{
		Status:         StatusDraft,
		ApprovalStatus: ApprovalNotSubmitted,
		CustomerID:     req.CustomerID,
		QuoteID:        req.QuoteID,
		Notes:          req.Notes,
		TaxRate:        rate,
		Subtotal:       totals.Subtotal,
		Tax:            totals.Tax,
		TotalAmount:    totals.Total,
		CreatedBy:      actorID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	productIDs := make([]int64, 0, len(req.Items))
	for i, it := range req.Items {
		draft.Items = append(draft.Items, SalesOrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
			UnitPrice: lines[i].UnitPrice,
			Discount:  lines[i].Discount,
			LineTotal: totals.LineTotals[i],
		})
		productIDs = append(productIDs, it.ProductID)
	}

	var created *SalesOrder
	err = s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		order := draft
		order.Items = append([]SalesOrderItem(nil), draft.Items...)

		customer, ok, err := tx.Customer(ctx, req.CustomerID)
		if err != nil {
			return fmt.Errorf("load customer: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: %d", ErrCustomerNotFound, req.CustomerID)
		}
		missing, err := tx.MissingProducts(ctx, productIDs)
		if err != nil {
			return fmt.Errorf("check products: %w", err)
		}
		if len(missing) > 0 {
			return fmt.Errorf("%w: %v", ErrProductNotFound, missing)
		}
		if req.QuoteID != nil {
			if err := checkQuote(ctx, tx, *req.QuoteID, req.CustomerID); err != nil {
				return err
			}
		}
		number, err := sequence.Next(ctx, tx.Sequences(), sequence.SalesOrder)
		if err != nil {
			return err
		}
		order.OrderNumber = number
		if err := tx.Insert(ctx, &order); err != nil {
			return fmt.Errorf("insert order: %w", err)
		}
		order.Customer = customer
		created = &order
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("sales order created",
		slog.Int64("order_id", created.ID),
		slog.String("order_number", created.OrderNumber),
		slog.Int64("actor_id", actorID))
	return created, nil
}

func checkQuote(ctx context.Context, tx TxRepository, quoteID, customerID int64) error {
	quote, ok, err := tx.Quote(ctx, quoteID)
	if err != nil {
		return fmt.Errorf("load quotation: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: %d", ErrQuoteNotFound, quoteID)
	}
	if quote.Status != QuoteStatusAccepted {
		return fmt.Errorf("%w: status %s", ErrQuoteNotAccepted, quote.Status)
	}
	if quote.CustomerID != customerID {
		return ErrQuoteCustomerMismatch
	}
	return nil
}

// Transition applies one action to an order. All mutations commit together; for INVOICE the
// ledger is posted afterwards and its failure is reported on the result, not as an error.
func (s *Service) Transition(ctx context.Context, req TransitionRequest) (TransitionResult, error) {
	result, err := s.transition(ctx, req)
	if err != nil {
		s.observe(req.Action, OutcomeFailed)
		return TransitionResult{}, err
	}
	s.observe(req.Action, result.Outcome())
	return result, nil
}

func (s *Service) transition(ctx context.Context, req TransitionRequest) (TransitionResult, error) {
	if _, err := ParseAction(string(req.Action)); err != nil {
		return TransitionResult{}, err
	}
	now := s.now()

	var result TransitionResult
	err := s.repo.WithTx(ctx, func(ctx context.Context, tx TxRepository) error {
		result = TransitionResult{}

		order, err := tx.GetForUpdate(ctx, req.OrderID)
		if err != nil {
			return err
		}
		if order.Status.IsTerminal() {
			return fmt.Errorf("orders: order %s is closed (%s): %w", order.OrderNumber, order.Status, shared.ErrInvalidState)
		}
		next, err := plan(req.Action, order.Status)
		if err != nil {
			return err
		}

		switch next.effect {
		case effectNone:
		case effectSubmit:
			order.SubmittedAt = &now
		case effectApprove:
			order.ApprovedAt = &now
			order.ApprovedBy = &req.ActorID
		case effectDeliver:
			d, err := s.deliver(ctx, tx, order, req.ActorID, now)
			if err != nil {
				return err
			}
			result.Delivery = d
			order.DeliveredAt = &now
		case effectInvoice:
			inv, degraded, err := s.invoice(ctx, tx, order, req.ActorID, now)
			if err != nil {
				return err
			}
			result.Invoice = inv
			result.Degradations = append(result.Degradations, degraded...)
			order.InvoiceID = &inv.ID
		}

		order.Status = next.to
		if next.approval != "" {
			order.ApprovalStatus = next.approval
		}
		order.UpdatedAt = now
		if err := tx.UpdateTransition(ctx, order); err != nil {
			return fmt.Errorf("update order: %w", err)
		}
		customer, _, err := tx.Customer(ctx, order.CustomerID)
		if err != nil {
			return fmt.Errorf("load customer: %w", err)
		}
		order.Customer = customer
		result.Order = order
		return nil
	})
	if err != nil {
		return TransitionResult{}, err
	}

	if s.cache != nil {
		s.cache.Refresh(context.WithoutCancel(ctx), result.Order)
	}
	if result.Degraded(DegradedCustomerBalance) {
		s.logger.Warn("customer balance update skipped",
			slog.Int64("order_id", result.Order.ID),
			slog.Int64("customer_id", result.Order.CustomerID),
			slog.Int64("invoice_id", result.Invoice.ID))
		if s.observer != nil {
			s.observer.CustomerBalanceSkipped()
		}
	}
	if result.Invoice != nil {
		if d, ok := s.postLedger(ctx, result.Order, result.Invoice, req.ActorID); !ok {
			result.Degradations = append(result.Degradations, d)
		}
	}
	return result, nil
}

func (s *Service) deliver(ctx context.Context, tx TxRepository, order *SalesOrder, actorID int64, now time.Time) (*delivery.SalesDelivery, error) {
	items := make([]inventory.Item, 0, len(order.Items))
	lines := make([]delivery.Line, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, inventory.Item{ProductID: it.ProductID, Quantity: it.Quantity})
		lines = append(lines, delivery.Line{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	if err := inventory.Deduct(ctx, tx.Stock(), items); err != nil {
		return nil, err
	}
	number, err := sequence.Next(ctx, tx.Sequences(), sequence.Delivery)
	if err != nil {
		return nil, err
	}
	d := &delivery.SalesDelivery{
		DeliveryNumber: number,
		SalesOrderID:   order.ID,
		Status:         delivery.StatusDelivered,
		DispatchedAt:   now,
		DeliveredAt:    &now,
		CreatedBy:      actorID,
		Items:          lines,
	}
	if err := tx.CreateDelivery(ctx, d); err != nil {
		return nil, fmt.Errorf("create delivery: %w", err)
	}
	return d, nil
}

func (s *Service) invoice(ctx context.Context, tx TxRepository, order *SalesOrder, actorID int64, now time.Time) (*ar.Invoice, []Degradation, error) {
	number, err := sequence.Next(ctx, tx.Sequences(), sequence.Invoice)
	if err != nil {
		return nil, nil, err
	}
	inv := ar.NewInvoice(ar.IssueInput{
		Number:       number,
		CustomerID:   order.CustomerID,
		SalesOrderID: order.ID,
		Subtotal:     order.Subtotal,
		Tax:          order.Tax,
		Total:        order.TotalAmount,
		IssueDate:    now,
		ActorID:      actorID,
	})
	if err := tx.CreateInvoice(ctx, &inv); err != nil {
		return nil, nil, fmt.Errorf("create invoice: %w", err)
	}
	outcome, err := customers.ApplyInvoice(ctx, tx.Balances(), order.CustomerID, inv.TotalAmount)
	if err != nil {
		return nil, nil, err
	}
	var degraded []Degradation
	if outcome == customers.Skipped {
		degraded = append(degraded, Degradation{
			Kind:   DegradedCustomerBalance,
			Detail: fmt.Sprintf("customer %d not found; balance not updated", order.CustomerID),
		})
	}
	return &inv, degraded, nil
}

// postLedger is best effort: it runs after commit, detached from request cancellation.
func (s *Service) postLedger(ctx context.Context, order *SalesOrder, inv *ar.Invoice, actorID int64) (Degradation, bool) {
	if s.ledger == nil {
		return Degradation{Kind: DegradedLedgerPost, Detail: "ledger poster not configured"}, false
	}
	posting := LedgerPosting{
		InvoiceID:     inv.ID,
		InvoiceNumber: inv.InvoiceNumber,
		SalesOrderID:  order.ID,
		CustomerID:    inv.CustomerID,
		Amount:        inv.TotalAmount,
		Subtotal:      inv.Subtotal,
		Tax:           inv.TaxAmount,
		ActorID:       actorID,
		Description:   fmt.Sprintf("Invoice %s for sales order %s", inv.InvoiceNumber, order.OrderNumber),
		IssueDate:     inv.IssueDate,
	}
	if err := s.ledger.PostInvoice(context.WithoutCancel(ctx), posting); err != nil {
		s.logger.Warn("ledger post failed",
			slog.Int64("order_id", order.ID),
			slog.Int64("invoice_id", inv.ID),
			slog.String("invoice_number", inv.InvoiceNumber),
			slog.Any("error", err))
		if s.observer != nil {
			s.observer.LedgerPostFailed()
		}
		return Degradation{Kind: DegradedLedgerPost, Detail: err.Error()}, false
	}
	return Degradation{}, true
}

func (s *Service) observe(action Action, outcome Outcome) {
	if s.observer != nil {
		s.observer.ObserveTransition(string(action), string(outcome))
	}
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("orders: %w: %s", shared.ErrValidation, err)
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("orders: %w: %s", shared.ErrValidation, strings.Join(msgs, "; "))
}
