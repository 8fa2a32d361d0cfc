package orders

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

// Authorizer checks permissions of the acting user.
type Authorizer interface {
	Check(ctx context.Context, perms ...string) error
	RequireAny(perms ...string) func(http.Handler) http.Handler
	RequireAll(perms ...string) func(http.Handler) http.Handler
}

// Handler serves the sales order API.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    Authorizer
	audit   shared.AuditRecorder
}

// NewHandler builds the handler.
func NewHandler(logger *slog.Logger, service *Service, rbac Authorizer, audit shared.AuditRecorder) *Handler {
	return &Handler{logger: logger, service: service, rbac: rbac, audit: audit}
}

var actionPermissions = map[Action]string{
	ActionSubmit:  shared.PermSalesOrderSubmit,
	ActionApprove: shared.PermSalesOrderApprove,
	ActionDeliver: shared.PermSalesOrderDeliver,
	ActionInvoice: shared.PermSalesOrderInvoice,
	ActionCancel:  shared.PermSalesOrderCancel,
}

// Create handles POST /sales-orders.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateSalesOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, fmt.Errorf("decode body: %w: %s", shared.ErrValidation, err))
		return
	}
	actorID, _ := shared.ActorFromContext(r.Context())
	order, err := h.service.Create(r.Context(), req, actorID)
	if err != nil {
		h.fail(w, "create sales order", err)
		return
	}
	h.record(r, actorID, "sales_order.create", order.ID, fmt.Sprintf("Created sales order %s", order.OrderNumber), nil)
	httpx.JSON(w, http.StatusCreated, NewOrderResponse(order))
}

// Show handles GET /sales-orders/{id}.
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.fail(w, "get sales order", err)
		return
	}
	httpx.JSON(w, http.StatusOK, NewOrderResponse(order))
}

// Transition handles PATCH /sales-orders/{id}.
func (h *Handler) Transition(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	var body TransitionSalesOrderRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.RespondError(w, fmt.Errorf("decode body: %w: %s", shared.ErrValidation, err))
		return
	}
	action, err := ParseAction(body.Action)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.rbac.Check(r.Context(), actionPermissions[action]); err != nil {
		h.fail(w, "authorize transition", err)
		return
	}
	actorID, _ := shared.ActorFromContext(r.Context())
	result, err := h.service.Transition(r.Context(), TransitionRequest{OrderID: id, Action: action, ActorID: actorID})
	if err != nil {
		h.fail(w, "transition sales order", err)
		return
	}
	meta := map[string]any{"outcome": string(result.Outcome())}
	if result.Invoice != nil {
		meta["invoice_number"] = result.Invoice.InvoiceNumber
	}
	if result.Delivery != nil {
		meta["delivery_number"] = result.Delivery.DeliveryNumber
	}
	h.record(r, actorID, "sales_order."+strings.ToLower(string(action)), id,
		fmt.Sprintf("%s sales order %s", action, result.Order.OrderNumber), meta)
	httpx.JSON(w, http.StatusOK, NewTransitionResponse(result))
}

func (h *Handler) fail(w http.ResponseWriter, op string, err error) {
	if shared.CodeOf(err) == shared.CodeInternal && !errors.Is(err, httpx.ErrForbidden) {
		h.logger.Error(op, slog.Any("error", err))
	}
	httpx.RespondError(w, err)
}

// record writes the audit entry. Failures are logged and never change the response.
func (h *Handler) record(r *http.Request, actorID int64, action string, orderID int64, description string, extra map[string]any) {
	if h.audit == nil {
		return
	}
	meta := map[string]any{
		"description": description,
		"request_id":  middleware.GetReqID(r.Context()),
		"remote_addr": r.RemoteAddr,
		"user_agent":  r.UserAgent(),
	}
	for k, v := range extra {
		meta[k] = v
	}
	err := h.audit.Record(context.WithoutCancel(r.Context()), shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "sales_order",
		EntityID: strconv.FormatInt(orderID, 10),
		Meta:     meta,
	})
	if err != nil {
		h.logger.Warn("audit record failed", slog.String("action", action), slog.Int64("order_id", orderID), slog.Any("error", err))
	}
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid sales order id %q: %w", raw, shared.ErrValidation)
	}
	return id, nil
}
