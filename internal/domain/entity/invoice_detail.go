package entity

import "github.com/shopspring/decimal"

// InvoiceTax fila de impuesto (IVA o tributo) de la factura.
// Los importes en pesos pueden faltar (exportación).
type InvoiceTax struct {
	ID               string
	InvoiceID        string
	Description      string
	Aliquot          decimal.Decimal // fracción (21% -> 0.21)
	SubTotal         decimal.Decimal
	TaxAmount        decimal.Decimal
	SubTotalInPesos  decimal.NullDecimal
	TaxAmountInPesos decimal.NullDecimal
}

// IsVAT indica si la fila es de IVA.
func (t InvoiceTax) IsVAT() bool {
	return t.Description == "IVA"
}

// InvoiceLine copia 1:1 de una OrderLine al momento de autorizar.
type InvoiceLine struct {
	ID                 string
	InvoiceID          string
	LineNumber         int
	Currency           string
	Code               string
	Detail1            string
	Detail2            string
	Quantity           decimal.Decimal
	UnitPrice          decimal.Decimal
	LineDiscount       decimal.Decimal // fracción
	Amount             decimal.Decimal
	TextInfo           string
	DeliveryNoteNumber string
}

// InvoiceEquipment copia 1:1 de un Equipment.
type InvoiceEquipment struct {
	ID           string
	InvoiceID    string
	LineNumber   int
	ProductCode  string
	SerialNumber string
	Description  string
}
