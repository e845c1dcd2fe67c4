package cae

import (
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/factura-afip/pkg/afip"
)

// Frases de la leyenda impresa al pie de la factura.
const (
	legendLatePayment     = "El pago fuera de término devengará intereses punitorios."
	legendConsumerTaxes   = "Régimen de Transparencia Fiscal al Consumidor (Ley 27.743)."
	legendPesos           = "Los importes de este comprobante están expresados en pesos argentinos."
	legendVATIncluded     = "Los precios incluyen IVA."
	legendExchangeRateFmt = "Tipo de cambio aplicado: %s."
	legendExportExempt    = "Operación de exportación exenta de IVA."
	legendExportGoverning = "Operación sujeta a la normativa aduanera vigente."
	legendTotalInPesos    = "Total en pesos: "
	currencySymbolPesos   = "$"
)

var esAR = message.NewPrinter(language.MustParse("es-AR"))

// FormatPesos formatea un importe como moneda argentina: "$ 1.234,56".
func FormatPesos(amount decimal.Decimal) string {
	return esAR.Sprintf("$ %v", number.Decimal(amount.InexactFloat64(), number.Scale(2)))
}

// LegendHTML arma la leyenda según letra (A, B, E) y si la factura está en pesos.
func LegendHTML(letter, currencySymbol string, exchangeRate, amountInPesos decimal.Decimal) string {
	rate := esAR.Sprintf(legendExchangeRateFmt, number.Decimal(exchangeRate.InexactFloat64(), number.MaxFractionDigits(6)))
	total := legendTotalInPesos + FormatPesos(amountInPesos)
	inPesos := currencySymbol == currencySymbolPesos

	var sentences []string
	switch strings.ToUpper(letter) {
	case afip.LetterA:
		if inPesos {
			sentences = []string{legendLatePayment, legendConsumerTaxes, legendPesos}
		} else {
			sentences = []string{rate, total, legendLatePayment}
		}
	case afip.LetterB:
		if inPesos {
			sentences = []string{rate, legendConsumerTaxes, legendVATIncluded, legendPesos}
		} else {
			sentences = []string{rate, total, legendLatePayment, legendVATIncluded}
		}
	default:
		if inPesos {
			sentences = []string{legendLatePayment, legendExportExempt, legendExportGoverning}
		} else {
			sentences = []string{rate, total, legendLatePayment, legendExportExempt, legendExportGoverning}
		}
	}

	var b strings.Builder
	b.WriteString("<div>")
	for _, s := range sentences {
		b.WriteString("<p>")
		b.WriteString(s)
		b.WriteString("</p>")
	}
	b.WriteString("</div>")
	return b.String()
}
