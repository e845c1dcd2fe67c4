package entity

import "github.com/shopspring/decimal"

// OrderLine línea valorizada de la orden (sólo lectura, desde el ERP).
type OrderLine struct {
	LineNumber         int
	StockCode          string
	Description        string
	Detail1            string
	Detail2            string
	Quantity           decimal.Decimal
	UnitPrice          decimal.Decimal
	Amount             decimal.Decimal
	TotalDiscount      decimal.Decimal // porcentaje
	MeasurementUnit    int             // 0 = sin unidad de medida
	TextInfo           string
	DeliveryNoteNumber string
}

// Equipment equipo serializado de una orden de contrato de servicio (CS).
type Equipment struct {
	LineNumber          int
	ProductCode         string
	SerialNumber        string
	Description         string
	AccountingDimension string
}
