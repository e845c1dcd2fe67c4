package afip

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// AmountScale cantidad de decimales que aceptan AFIP y el libro de facturas.
const AmountScale = 2

// FormatNumber lleva un importe a la representación de punto fijo (2 decimales,
// redondeo comercial) que exigen los web services y el registro local.
func FormatNumber(d decimal.Decimal) decimal.Decimal {
	return d.Round(AmountScale)
}

// FormatAbs es FormatNumber sobre el valor absoluto. WSFEv1 no acepta importes negativos:
// el signo lo da el tipo de comprobante (nota de crédito).
func FormatAbs(d decimal.Decimal) decimal.Decimal {
	return FormatNumber(d).Abs()
}

// ToPesos convierte un importe a pesos con la cotización dada y lo formatea.
func ToPesos(amount, exchangeRate decimal.Decimal) decimal.Decimal {
	return FormatNumber(amount.Mul(exchangeRate))
}

// PadLeft completa con ceros a la izquierda hasta width.
func PadLeft(s string, width int) string {
	s = strings.TrimSpace(s)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// PointOfSale normaliza el punto de venta a 5 dígitos ("5" -> "00005").
func PointOfSale(pos string) string {
	return PadLeft(pos, 5)
}

// PointOfSaleNumber convierte el punto de venta a entero para los web services.
func PointOfSaleNumber(pos string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(pos))
}
