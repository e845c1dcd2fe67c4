package http

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/factura-afip/internal/application/dto"
	"github.com/jhoicas/factura-afip/pkg/afip"
)

// ReceiptGetter lo implementa *billing.ReceiptQueryUseCase.
type ReceiptGetter interface {
	Get(ctx context.Context, receiptType, pointOfSale int, number int64) (*afip.FECompConsResponse, error)
}

// ReceiptHandler consulta en AFIP comprobantes ya emitidos (protegido).
type ReceiptHandler struct {
	uc ReceiptGetter
}

// NewReceiptHandler construye el handler.
func NewReceiptHandler(uc ReceiptGetter) *ReceiptHandler {
	return &ReceiptHandler{uc: uc}
}

// Get godoc
// @Summary      Consulta en AFIP un comprobante autorizado (FECompConsultar)
// @Tags         afip
// @Security     BearerAuth
// @Produce      json
// @Param        type    path      int  true  "Tipo AFIP (1 = Factura A)"
// @Param        pos     path      int  true  "Punto de venta"
// @Param        number  path      int  true  "Número de comprobante"
// @Success      200     {object}  afip.FECompConsResponse
// @Failure      400     {object}  dto.ErrorResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Failure      502     {object}  dto.ErrorResponse
// @Router       /api/afip/receipts/{type}/{pos}/{number} [get]
func (h *ReceiptHandler) Get(c *fiber.Ctx) error {
	receiptType, err1 := strconv.Atoi(c.Params("type"))
	pointOfSale, err2 := strconv.Atoi(c.Params("pos"))
	number, err3 := strconv.ParseInt(c.Params("number"), 10, 64)
	if err1 != nil || err2 != nil || err3 != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "tipo, punto de venta y número deben ser numéricos"})
	}
	r, err := h.uc.Get(c.UserContext(), receiptType, pointOfSale, number)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(r)
}
