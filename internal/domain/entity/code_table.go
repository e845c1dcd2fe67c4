package entity

import "github.com/shopspring/decimal"

// Tablas de equivalencias ERP -> AFIP.

// ReceiptTypeCode letra + tipo interno -> código de comprobante AFIP.
type ReceiptTypeCode struct {
	Letter string
	Type   string
	AfipID int
}

// IVACode descripción + alícuota (fracción, ej. 0.21) -> Id de alícuota AFIP.
type IVACode struct {
	Description string
	Aliquot     decimal.Decimal
	AfipID      int
}

// TributeCode tributo del ERP -> Id de tributo AFIP.
type TributeCode struct {
	InternalID  string
	AfipID      int
	Description string
}

// CurrencyCode moneda del ERP -> MonId AFIP.
type CurrencyCode struct {
	InternalCode int
	AfipID       string
}

// CountryCode país del ERP -> Dst_cmp AFIP.
type CountryCode struct {
	InternalCode string
	AfipID       int
}

// MeasurementUnitCode unidad de medida del ERP -> Pro_umed AFIP.
type MeasurementUnitCode struct {
	InternalID int
	AfipID     int
}

// CodeTableSet todas las tablas, tal como se leen de la base.
type CodeTableSet struct {
	ReceiptTypes     []ReceiptTypeCode
	IVAs             []IVACode
	Tributes         []TributeCode
	Currencies       []CurrencyCode
	Countries        []CountryCode
	MeasurementUnits []MeasurementUnitCode
}
