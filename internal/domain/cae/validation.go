// Package cae reúne las reglas puras de la solicitud de CAE: validación de la orden,
// concepto, permiso de embarque, numeración, código de barras y conciliación en pesos.
package cae

import (
	"strings"

	"github.com/jhoicas/factura-afip/internal/domain/entity"
	"github.com/jhoicas/factura-afip/pkg/afip"
)

// Reason código de motivo de una validación fallida (legible por máquina).
type Reason string

const (
	ReasonReceiptType                  Reason = "RECEIPT_TYPE"
	ReasonReceiptLetter                Reason = "RECEIPT_LETTER"
	ReasonPointOfSale                  Reason = "POINT_OF_SALE"
	ReasonAccountingDimension          Reason = "ACCOUNTING_DIMENSION"
	ReasonNoLines                      Reason = "NO_LINES"
	ReasonNoQuantity                   Reason = "NO_QUANTITY"
	ReasonLinesSign                    Reason = "LINES_SIGN"
	ReasonLinesFixedPriceSign          Reason = "LINES_FIXED_PRICE_SIGN"
	ReasonReceiptTypeMismatch          Reason = "RECEIPT_TYPE_MISMATCH"
	ReasonAmount                       Reason = "AMOUNT"
	ReasonNonTaxedOrExemptTributes     Reason = "NONTAXED_OR_EXEMPT_TRIBUTES"
	ReasonEquipmentAccountingDimension Reason = "EQUIPMENT_ACCOUNTING_DIMENSION"
	ReasonPendingClosure               Reason = "PENDING_CLOSURE"
	ReasonSequenceMismatch             Reason = "SEQUENCE_MISMATCH"
	ReasonCodeNotMapped                Reason = "CODE_NOT_MAPPED"
	ReasonClientTaxID                  Reason = "CLIENT_TAX_ID"
	ReasonServicePeriod                Reason = "SERVICE_PERIOD"
)

var messages = map[Reason]string{
	ReasonReceiptType:                  "La orden no tiene tipo de comprobante.",
	ReasonReceiptLetter:                "La orden no tiene letra de comprobante.",
	ReasonPointOfSale:                  "La orden no tiene punto de venta.",
	ReasonAccountingDimension:          "La orden no tiene dimensión contable.",
	ReasonNoLines:                      "La orden no tiene líneas.",
	ReasonNoQuantity:                   "Hay líneas sin cantidad.",
	ReasonLinesSign:                    "Hay líneas con precio unitario y cantidad negativos.",
	ReasonLinesFixedPriceSign:          "El signo de las líneas de la nota de crédito no es válido.",
	ReasonReceiptTypeMismatch:          "El signo de la base imponible no corresponde al tipo de comprobante.",
	ReasonAmount:                       "El importe total del comprobante es cero.",
	ReasonNonTaxedOrExemptTributes:     "Una orden con importes no gravados o exentos no puede tener tributos.",
	ReasonEquipmentAccountingDimension: "Hay equipos sin dimensión contable.",
	ReasonPendingClosure:               "Existe un comprobante pendiente de cierre para este punto de venta, tipo y letra.",
	ReasonSequenceMismatch:             "La numeración informada por AFIP no coincide con los comprobantes registrados.",
	ReasonCodeNotMapped:                "Falta una equivalencia de código AFIP.",
	ReasonClientTaxID:                  "El CUIT del cliente no es válido.",
	ReasonServicePeriod:                "La orden de servicios no tiene período de contrato.",
}

// Failure resultado de una validación fallida. No es un error de infraestructura:
// termina la solicitud con resultado "E" sin contactar a AFIP.
type Failure struct {
	Reason  Reason
	Message string
}

func (f *Failure) Error() string {
	return string(f.Reason) + ": " + f.Message
}

// Fail construye el Failure con el mensaje estándar del motivo.
func Fail(r Reason) *Failure {
	return &Failure{Reason: r, Message: messages[r]}
}

// Failf agrega un detalle al mensaje estándar.
func Failf(r Reason, detail string) *Failure {
	return &Failure{Reason: r, Message: messages[r] + " " + detail}
}

// Snapshot datos de la orden sobre los que corre la validación.
type Snapshot struct {
	Header     *entity.OrderHeader
	Lines      []entity.OrderLine
	Taxes      *entity.TaxResult
	Equipments []entity.Equipment
}

// Validate corre las validaciones en orden fijo y devuelve la primera que falla (nil si pasa).
// El guard de idempotencia no está aquí: requiere la base y corre dentro del lock.
func Validate(s Snapshot) *Failure {
	if f := ValidateHeader(s.Header); f != nil {
		return f
	}
	if f := ValidateLines(s.Header, s.Lines); f != nil {
		return f
	}
	if f := ValidateTaxes(s.Header, s.Taxes); f != nil {
		return f
	}
	return ValidateEquipments(s.Header, s.Equipments)
}

// ValidateHeader tipo, letra, punto de venta y dimensión contable presentes.
func ValidateHeader(h *entity.OrderHeader) *Failure {
	switch {
	case strings.TrimSpace(h.ReceiptType) == "":
		return Fail(ReasonReceiptType)
	case strings.TrimSpace(h.ReceiptLetter) == "":
		return Fail(ReasonReceiptLetter)
	case isZero(h.PointOfSale):
		return Fail(ReasonPointOfSale)
	case isZero(h.AccountingDimension):
		return Fail(ReasonAccountingDimension)
	}
	return nil
}

// ValidateLines líneas presentes, con cantidad y con signo consistente.
func ValidateLines(h *entity.OrderHeader, lines []entity.OrderLine) *Failure {
	if len(lines) == 0 {
		return Fail(ReasonNoLines)
	}
	for _, l := range lines {
		if l.Quantity.IsZero() {
			return Fail(ReasonNoQuantity)
		}
	}
	for _, l := range lines {
		if l.UnitPrice.IsNegative() && l.Quantity.IsNegative() {
			return Fail(ReasonLinesSign)
		}
		if h.IsCreditNote() && !h.ValidLinesSign {
			return Fail(ReasonLinesFixedPriceSign)
		}
	}
	return nil
}

// ValidateTaxes signo de la base, total distinto de cero y tributos sólo en órdenes gravadas.
func ValidateTaxes(h *entity.OrderHeader, t *entity.TaxResult) *Failure {
	if t.TaxBase.IsNegative() && !h.IsCreditNote() {
		return Fail(ReasonReceiptTypeMismatch)
	}
	if t.TaxBase.IsPositive() && h.IsCreditNote() {
		return Fail(ReasonReceiptTypeMismatch)
	}
	if t.Total.IsZero() {
		return Fail(ReasonAmount)
	}
	if (t.NotTaxedTotal.IsPositive() || t.ExemptTotal.IsPositive()) && t.TributesTotal.IsPositive() {
		return Fail(ReasonNonTaxedOrExemptTributes)
	}
	return nil
}

// ValidateEquipments dimensión contable de cada equipo (sólo contratos de servicio).
func ValidateEquipments(h *entity.OrderHeader, equipments []entity.Equipment) *Failure {
	if h.OrderType != afip.OrderTypeContractService {
		return nil
	}
	for _, e := range equipments {
		if isZero(e.AccountingDimension) {
			return Fail(ReasonEquipmentAccountingDimension)
		}
	}
	return nil
}

// isZero vacío o compuesto sólo por ceros ("0", "000").
func isZero(s string) bool {
	return strings.Trim(strings.TrimSpace(s), "0") == ""
}
