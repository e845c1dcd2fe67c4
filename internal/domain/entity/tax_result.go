package entity

import "github.com/shopspring/decimal"

// TaxResult desglose de impuestos calculado para una orden. No se persiste por sí mismo.
type TaxResult struct {
	TaxBase        decimal.Decimal
	Total          decimal.Decimal
	NetAmountTotal decimal.Decimal
	NotTaxedTotal  decimal.Decimal
	ExemptTotal    decimal.Decimal
	TributesTotal  decimal.Decimal
	IVATotal       decimal.Decimal
	IVAs           []IVATax
	Tributes       []TributeTax
}

// IVATax una alícuota de IVA (Aliquot en porcentaje, ej. 21).
type IVATax struct {
	Aliquot decimal.Decimal
	TaxBase decimal.Decimal
	Amount  decimal.Decimal
}

// TributeTax un tributo distinto de IVA (Aliquot en porcentaje).
type TributeTax struct {
	Type        string
	Description string
	TaxBase     decimal.Decimal
	Aliquot     decimal.Decimal
	Amount      decimal.Decimal
}
