package orders

import (
	"github.com/go-chi/chi/v5"

	"github.com/odyssey-erp/backoffice/internal/shared"
)

// MountRoutes registers the sales order API. Any sales order permission grants read access.
// PATCH checks the permission of the requested action inside the handler because it
// depends on the body.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny(shared.SalesOrderScopes()...))
		r.Get("/sales-orders/{id}", h.Show)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll(shared.PermSalesOrderCreate))
		r.Post("/sales-orders", h.Create)
	})
	r.Patch("/sales-orders/{id}", h.Transition)
}
