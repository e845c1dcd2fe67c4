package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/factura-afip/internal/application/dto"
)

// InvoiceReader lo implementa *billing.InvoiceQueryUseCase.
type InvoiceReader interface {
	GetInvoice(ctx context.Context, invoiceNumber string) (*dto.InvoiceSummaryResponse, error)
	History(ctx context.Context, orderNumber, deliveryNote string) (*dto.AuthorizationHistoryResponse, error)
}

// InvoiceHandler consultas sobre facturas y solicitudes registradas (protegido).
type InvoiceHandler struct {
	uc InvoiceReader
}

// NewInvoiceHandler construye el handler.
func NewInvoiceHandler(uc InvoiceReader) *InvoiceHandler {
	return &InvoiceHandler{uc: uc}
}

// GetByNumber godoc
// @Summary      Factura registrada por número (A00005-00000042)
// @Tags         invoices
// @Security     BearerAuth
// @Produce      json
// @Param        number  path      string  true  "Número de factura"
// @Success      200     {object}  dto.InvoiceSummaryResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/invoices/{number} [get]
func (h *InvoiceHandler) GetByNumber(c *fiber.Ctx) error {
	inv, err := h.uc.GetInvoice(c.UserContext(), c.Params("number"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(inv)
}

// History godoc
// @Summary      Estado local y respuestas de AFIP de una orden
// @Tags         cae
// @Security     BearerAuth
// @Produce      json
// @Param        order          path      string  true   "Número de orden"
// @Param        delivery_note  query     string  false  "Remito (R-1)"
// @Success      200            {object}  dto.AuthorizationHistoryResponse
// @Failure      404            {object}  dto.ErrorResponse
// @Router       /api/orders-without-cae/{order}/history [get]
func (h *InvoiceHandler) History(c *fiber.Ctx) error {
	out, err := h.uc.History(c.UserContext(), c.Params("order"), c.Query("delivery_note"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
