package shared

// Sales order permissions declared for RBAC.
const (
	PermSalesOrderView    = "sales.order.view"
	PermSalesOrderCreate  = "sales.order.create"
	PermSalesOrderSubmit  = "sales.order.submit"
	PermSalesOrderApprove = "sales.order.approve"
	PermSalesOrderDeliver = "sales.order.deliver"
	PermSalesOrderInvoice = "sales.order.invoice"
	PermSalesOrderCancel  = "sales.order.cancel"
)

// SalesOrderScopes lists all permissions related to sales orders.
func SalesOrderScopes() []string {
	return []string{
		PermSalesOrderView,
		PermSalesOrderCreate,
		PermSalesOrderSubmit,
		PermSalesOrderApprove,
		PermSalesOrderDeliver,
		PermSalesOrderInvoice,
		PermSalesOrderCancel,
	}
}
