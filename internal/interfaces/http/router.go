package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	RequestCAE CAERequester
	Invoices   InvoiceReader
	Receipts   ReceiptGetter
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))
	anyRole := RequireRole(RoleAdmin, RoleFacturacion, RoleConsulta)

	// Órdenes sin CAE
	orders := api.Group("/orders-without-cae")
	caeHandler := NewCAEHandler(deps.RequestCAE)
	invoiceHandler := NewInvoiceHandler(deps.Invoices)
	orders.Post("/request-cae", RequireRole(RoleAdmin, RoleFacturacion), caeHandler.RequestCAE)
	orders.Get("/can-request", anyRole, caeHandler.CanRequest)
	orders.Get("/:order/history", anyRole, invoiceHandler.History)

	// Facturas registradas
	api.Get("/invoices/:number", anyRole, invoiceHandler.GetByNumber)

	// Consulta directa a AFIP
	receiptHandler := NewReceiptHandler(deps.Receipts)
	api.Get("/afip/receipts/:type/:pos/:number", anyRole, receiptHandler.Get)
}
