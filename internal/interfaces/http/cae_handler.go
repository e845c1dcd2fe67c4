package http

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/factura-afip/internal/application/dto"
)

// CAERequester lo implementa *billing.RequestCAEUseCase.
type CAERequester interface {
	RequestCAE(ctx context.Context, in dto.RequestCAERequest) (*dto.CAEResultResponse, error)
	CanRequest(ctx context.Context, orderNumber string) (*dto.CanRequestCAEResponse, error)
}

// CAEHandler maneja las solicitudes de CAE para órdenes sin factura (protegido).
type CAEHandler struct {
	uc CAERequester
}

// NewCAEHandler construye el handler.
func NewCAEHandler(uc CAERequester) *CAEHandler {
	return &CAEHandler{uc: uc}
}

// RequestCAE godoc
// @Summary      Solicita el CAE para una orden
// @Description  Roles admin y facturacion. Aprobado (A), rechazado (R) e inválido (E) responden 200.
// @Tags         cae
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        body  body      dto.RequestCAERequest  true  "orden, cliente, remito, fecha y cotización"
// @Success      200   {object}  dto.CAEResultResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      401   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      500   {object}  dto.ErrorResponse  "error interno o CAE no registrado"
// @Failure      502   {object}  dto.ErrorResponse  "AFIP no disponible"
// @Router       /api/orders-without-cae/request-cae [post]
func (h *CAEHandler) RequestCAE(c *fiber.Ctx) error {
	userID := GetUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "UNAUTHORIZED", Message: "token inválido"})
	}
	var in dto.RequestCAERequest
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
	}
	if strings.TrimSpace(in.OrderNumber) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "order_number requerido"})
	}
	in.UserID = userID
	in.UserEmail = GetEmail(c)
	in.UserFullName = GetFullName(c)

	result, err := h.uc.RequestCAE(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

// CanRequest godoc
// @Summary      Indica si la orden puede pedir CAE ahora
// @Tags         cae
// @Security     BearerAuth
// @Produce      json
// @Param        order_number  query     string  true  "Número de orden (OV-100)"
// @Success      200           {object}  dto.CanRequestCAEResponse
// @Failure      400           {object}  dto.ErrorResponse
// @Failure      404           {object}  dto.ErrorResponse
// @Router       /api/orders-without-cae/can-request [get]
func (h *CAEHandler) CanRequest(c *fiber.Ctx) error {
	orderNumber := strings.TrimSpace(c.Query("order_number"))
	if orderNumber == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "order_number requerido"})
	}
	out, err := h.uc.CanRequest(c.UserContext(), orderNumber)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
