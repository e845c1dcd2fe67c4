package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/factura-afip/internal/application/dto"
	"github.com/jhoicas/factura-afip/internal/domain"
)

// writeError traduce los errores de dominio a status HTTP.
func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()})
	case errors.Is(err, domain.ErrNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domain.ErrCAENotRecorded):
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Code:    "CAE_NOT_RECORDED",
			Message: "ATENCIÓN: AFIP otorgó el CAE pero no se pudo registrar la factura. Avisar a administración. " + err.Error(),
		})
	case errors.Is(err, domain.ErrAuthorityUnavailable):
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{Code: "AFIP_UNAVAILABLE", Message: err.Error()})
	case errors.Is(err, domain.ErrCodeNotMapped):
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "CODE_NOT_MAPPED", Message: err.Error()})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Code: "INTERNAL", Message: err.Error()})
}
