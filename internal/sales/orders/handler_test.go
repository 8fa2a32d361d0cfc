package orders

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/odyssey-erp/backoffice/internal/platform/httpx"
	"github.com/odyssey-erp/backoffice/internal/rbac"
	"github.com/odyssey-erp/backoffice/internal/shared"
)

type grantAll struct {
	denied map[string]bool
}

func (g grantAll) EffectivePermissions(context.Context, int64) ([]string, error) {
	var perms []string
	for _, p := range shared.SalesOrderScopes() {
		if !g.denied[p] {
			perms = append(perms, p)
		}
	}
	return perms, nil
}

type recordingAudit struct {
	logs []shared.AuditLog
	err  error
}

func (a *recordingAudit) Record(_ context.Context, log shared.AuditLog) error {
	a.logs = append(a.logs, log)
	return a.err
}

type handlerFixture struct {
	*fixture
	audit  *recordingAudit
	router chi.Router
}

func newHandlerFixture(t *testing.T, denied ...string) *handlerFixture {
	t.Helper()
	f := newFixture(t)
	deny := map[string]bool{}
	for _, p := range denied {
		deny[p] = true
	}
	audit := &recordingAudit{}
	h := NewHandler(discardLogger(), f.svc, rbac.Middleware{Service: grantAll{denied: deny}}, audit)
	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(shared.ContextWithActor(req.Context(), 2)))
		})
	})
	h.MountRoutes(r)
	return &handlerFixture{fixture: f, audit: audit, router: r}
}

func (hf *handlerFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	hf.router.ServeHTTP(rr, req)
	return rr
}

func (hf *handlerFixture) patch(t *testing.T, id int64, action string) *httptest.ResponseRecorder {
	return hf.do(t, http.MethodPatch, "/sales-orders/"+strconv.FormatInt(id, 10), map[string]string{"action": action})
}

func decodeProblem(t *testing.T, rr *httptest.ResponseRecorder) httpx.ProblemDetail {
	t.Helper()
	var p httpx.ProblemDetail
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &p))
	return p
}

const scenarioBody = `{"customerId":7,"taxPercent":16,"items":[{"productId":101,"quantity":2,"unitPrice":500},{"productId":102,"quantity":1,"unitPrice":"1000.00"}]}`

func (hf *handlerFixture) createOrder(t *testing.T) OrderResponse {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/sales-orders", bytes.NewBufferString(scenarioBody))
	rr := httptest.NewRecorder()
	hf.router.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var resp OrderResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp
}

func TestHandlerCreateReturnsOrder(t *testing.T) {
	hf := newHandlerFixture(t)
	resp := hf.createOrder(t)

	assert.Equal(t, "SO-000001", resp.OrderNumber)
	assert.Equal(t, StatusDraft, resp.Status)
	assert.Equal(t, "2000.00", resp.Subtotal)
	assert.Equal(t, "320.00", resp.Tax)
	assert.Equal(t, "2320.00", resp.TotalAmount)
	require.Len(t, resp.Items, 2)
	assert.Equal(t, "1000.00", resp.Items[1].LineTotal)
	require.NotNil(t, resp.Customer)
	assert.Equal(t, int64(7), resp.Customer.ID)

	require.Len(t, hf.audit.logs, 1)
	assert.Equal(t, "sales_order.create", hf.audit.logs[0].Action)
	assert.Equal(t, int64(2), hf.audit.logs[0].ActorID)
}

func TestHandlerCreateValidationError(t *testing.T) {
	hf := newHandlerFixture(t)
	rr := hf.do(t, http.MethodPost, "/sales-orders", map[string]any{
		"customerId": 7,
		"items":      []map[string]any{{"productId": 101, "quantity": 1, "unitPrice": "10", "discount": "11"}},
	})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeProblem(t, rr).Code)
	assert.Empty(t, hf.audit.logs)
}

func TestHandlerTransitionHappyPath(t *testing.T) {
	hf := newHandlerFixture(t)
	hf.ledger.On("PostInvoice", mock.Anything, mock.Anything).Return(nil).Once()
	order := hf.createOrder(t)

	for _, action := range []string{"SUBMIT", "approve", "DELIVER"} {
		rr := hf.patch(t, order.ID, action)
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	}
	rr := hf.patch(t, order.ID, "INVOICE")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var resp TransitionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, StatusInvoiced, resp.Status)
	assert.Equal(t, OutcomeCommitted, resp.Outcome)
	require.NotNil(t, resp.Invoice)
	assert.Equal(t, "2320.00", resp.Invoice.BalanceAmount)
	assert.Equal(t, "0.00", resp.Invoice.PaidAmount)
	require.NotNil(t, resp.Customer)
	assert.Equal(t, "Acme", resp.Customer.Name)

	require.Len(t, hf.audit.logs, 5)
	last := hf.audit.logs[4]
	assert.Equal(t, "sales_order.invoice", last.Action)
	assert.Equal(t, strconv.FormatInt(order.ID, 10), last.EntityID)
	assert.Equal(t, "INV-000001", last.Meta["invoice_number"])
}

func TestHandlerTransitionErrors(t *testing.T) {
	hf := newHandlerFixture(t)
	order := hf.createOrder(t)

	rr := hf.patch(t, order.ID, "SHIP")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeProblem(t, rr).Code)

	rr = hf.patch(t, 4040, "SUBMIT")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "NOT_FOUND", decodeProblem(t, rr).Code)

	rr = hf.patch(t, order.ID, "APPROVE")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INVALID_STATE", decodeProblem(t, rr).Code)

	hf.repo.state.stock[101] = 1
	require.Equal(t, http.StatusOK, hf.patch(t, order.ID, "SUBMIT").Code)
	require.Equal(t, http.StatusOK, hf.patch(t, order.ID, "APPROVE").Code)
	rr = hf.patch(t, order.ID, "DELIVER")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "INSUFFICIENT_STOCK", decodeProblem(t, rr).Code)

	hf.repo.failTx = errors.New("connection reset")
	rr = hf.patch(t, order.ID, "DELIVER")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	p := decodeProblem(t, rr)
	assert.Equal(t, "INTERNAL_ERROR", p.Code)
	assert.Empty(t, p.Detail)
}

func TestHandlerTransitionRequiresActionPermission(t *testing.T) {
	hf := newHandlerFixture(t, shared.PermSalesOrderApprove)
	order := hf.createOrder(t)
	require.Equal(t, http.StatusOK, hf.patch(t, order.ID, "SUBMIT").Code)

	rr := hf.patch(t, order.ID, "APPROVE")
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, StatusPendingApproval, hf.repo.order(order.ID).Status)
}

func TestHandlerLedgerFailureStillSucceeds(t *testing.T) {
	hf := newHandlerFixture(t)
	hf.ledger.On("PostInvoice", mock.Anything, mock.Anything).Return(errors.New("ledger down")).Once()
	order := hf.createOrder(t)
	for _, action := range []string{"SUBMIT", "APPROVE", "DELIVER"} {
		require.Equal(t, http.StatusOK, hf.patch(t, order.ID, action).Code)
	}
	rr := hf.patch(t, order.ID, "INVOICE")
	require.Equal(t, http.StatusOK, rr.Code)
	var resp TransitionResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, OutcomeCommittedWithDegradedLedger, resp.Outcome)
	require.Len(t, resp.Degradations, 1)
	assert.Equal(t, DegradedLedgerPost, resp.Degradations[0].Kind)
}

func TestHandlerAuditFailureDoesNotFailRequest(t *testing.T) {
	hf := newHandlerFixture(t)
	hf.audit.err = errors.New("audit store down")
	order := hf.createOrder(t)
	rr := hf.patch(t, order.ID, "SUBMIT")
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestHandlerShow(t *testing.T) {
	hf := newHandlerFixture(t)
	order := hf.createOrder(t)

	rr := hf.do(t, http.MethodGet, "/sales-orders/"+strconv.FormatInt(order.ID, 10), nil)
	require.Equal(t, http.StatusOK, rr.Code)
	var resp OrderResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, order.OrderNumber, resp.OrderNumber)

	rr = hf.do(t, http.MethodGet, "/sales-orders/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestHandlerShowAcceptsAnySalesOrderPermission(t *testing.T) {
	hf := newHandlerFixture(t, shared.PermSalesOrderView)
	order := hf.createOrder(t)

	rr := hf.do(t, http.MethodGet, "/sales-orders/"+strconv.FormatInt(order.ID, 10), nil)
	assert.Equal(t, http.StatusOK, rr.Code)

	closed := newHandlerFixture(t, shared.SalesOrderScopes()...)
	rr = closed.do(t, http.MethodGet, "/sales-orders/"+strconv.FormatInt(order.ID, 10), nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Equal(t, "FORBIDDEN", decodeProblem(t, rr).Code)
}
