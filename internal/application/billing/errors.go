package billing

import (
	"errors"
	"fmt"

	"github.com/jhoicas/factura-afip/internal/domain"
)

// UnrecordedCAEError AFIP aprobó el comprobante pero no se pudo registrar localmente.
// Requiere conciliación manual: el número ya está consumido del lado de AFIP.
type UnrecordedCAEError struct {
	OrderNumber   string
	InvoiceNumber string
	CAE           string
	Err           error
}

func (e *UnrecordedCAEError) Error() string {
	return fmt.Sprintf("orden %s: CAE %s (comprobante %s) obtenido pero no registrado: %s",
		e.OrderNumber, e.CAE, e.InvoiceNumber, describe(e.Err))
}

func (e *UnrecordedCAEError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, domain.ErrCAENotRecorded).
func (e *UnrecordedCAEError) Is(target error) bool {
	return target == domain.ErrCAENotRecorded
}

// describe aplana los errores de validación de la factura en un único mensaje.
func describe(err error) string {
	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		return verrs.Error()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
