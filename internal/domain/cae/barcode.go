package cae

import (
	"strings"
	"time"

	"github.com/jhoicas/factura-afip/pkg/afip"
)

// Barcode arma el código de barras impreso en la factura:
// CUIT emisor + código de comprobante (3) + punto de venta (5) + CAE + vencimiento CAE (yyyyMMdd)
// + dígito verificador.
func Barcode(companyCUIT, invoiceCode, pointOfSale, cae string, caeDueDate time.Time) string {
	var b strings.Builder
	b.WriteString(afip.StripCUIT(companyCUIT))
	b.WriteString(afip.PadLeft(strings.TrimSpace(invoiceCode), 3))
	b.WriteString(afip.PointOfSale(pointOfSale))
	b.WriteString(strings.TrimSpace(cae))
	b.WriteString(caeDueDate.Format(afip.DateLayout))
	digits := b.String()
	return digits + string(rune('0'+CheckDigit(digits)))
}

// CheckDigit dígito verificador del código de barras. Pesos fijos:
// posiciones pares (base 0) x3 más posiciones impares x1; el dígito completa
// hasta el múltiplo de 10 siguiente. Caracteres no numéricos se ignoran en la suma
// pero cuentan para la paridad.
func CheckDigit(barcode string) int {
	var even, odd int
	for i, r := range barcode {
		if r < '0' || r > '9' {
			continue
		}
		if i%2 == 0 {
			even += int(r - '0')
		} else {
			odd += int(r - '0')
		}
	}
	subtotal := 3*even + odd
	return (10 - subtotal%10) % 10
}
