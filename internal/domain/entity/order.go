package entity

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Estados locales de una orden: espejan el Resultado de la cabecera AFIP.
// OrderStatusNone indica que la solicitud salió pero no hubo respuesta utilizable.
const (
	OrderStatusNone     = ""
	OrderStatusApproved = "A"
	OrderStatusRejected = "R"
)

// Order registro local de una orden durante la solicitud de CAE.
// Se crea al registrar la primera solicitud a AFIP y se cierra con ReportSaved = true.
type Order struct {
	ID            string
	OrderNumber   string
	OrderType     string
	ClientCode    string
	DeliveryNote  string
	PointOfSale   string // 5 dígitos
	ReceiptType   string
	ReceiptLetter string
	Status        string
	Reprocessed   string
	ReportSaved   bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderHeader cabecera de la orden tal como la entrega el ERP (sólo lectura).
type OrderHeader struct {
	OrderNumber         string
	OrderType           string // OV, OS, CS
	SalesOrderType      int
	ServiceMaterial     string // SE, MS
	ClientCode          string
	DeliveryNoteNumber  string
	DeliveryNotes       string
	ReceiptType         string // 0 factura, 1 nota de débito, 2 nota de crédito
	ReceiptLetter       string // A, B, E
	PointOfSale         string
	AccountingDimension string
	ValidLinesSign      bool

	CurrencyCode           int
	CurrencySymbol         string
	CurrentDayExchangeRate decimal.Decimal
	OrderDiscount          decimal.Decimal // porcentaje

	InvoiceExpirationDays int
	ContractNumber        string
	ContractFromDate      *time.Time
	ContractToDate        *time.Time

	TermsOfDelivery  string
	MethodOfDelivery string
	PaymentCondition string
	QuotationNumber  string
	Warehouse        string
	Observations1    string
	Observations2    string
	Salesman         string
	Contact          string
	PurchaseOrder    string
	OrderDate        time.Time
	NextInvoiceDate  time.Time
	TextInfo         string
	PLC              string
	PGC              string
	CC               string
}

// IsCreditNote indica si el comprobante es nota de crédito.
func (h *OrderHeader) IsCreditNote() bool {
	return h.ReceiptType == "2"
}

// Key devuelve la clave de serialización (punto de venta, tipo, letra).
func (h *OrderHeader) Key() ReceiptKey {
	return NewReceiptKey(h.PointOfSale, h.ReceiptType, h.ReceiptLetter)
}

// ReceiptKey identifica la numeración de AFIP: punto de venta + tipo + letra.
type ReceiptKey struct {
	PointOfSale   string
	ReceiptType   string
	ReceiptLetter string
}

// NewReceiptKey recorta los tres campos, normaliza el punto de venta a 5
// dígitos y la letra a mayúscula: la misma forma con la que se persisten.
func NewReceiptKey(pointOfSale, receiptType, receiptLetter string) ReceiptKey {
	return ReceiptKey{
		PointOfSale:   padPointOfSale(pointOfSale),
		ReceiptType:   strings.TrimSpace(receiptType),
		ReceiptLetter: strings.ToUpper(strings.TrimSpace(receiptLetter)),
	}
}

// Normalize limpia los campos de texto que el ERP entrega con relleno
// (columnas CHAR). Un punto de venta vacío queda vacío para que la
// validación lo rechace.
func (h *OrderHeader) Normalize() {
	h.OrderNumber = strings.TrimSpace(h.OrderNumber)
	h.DeliveryNoteNumber = strings.TrimSpace(h.DeliveryNoteNumber)
	h.ReceiptType = strings.TrimSpace(h.ReceiptType)
	h.ReceiptLetter = strings.ToUpper(strings.TrimSpace(h.ReceiptLetter))
	h.PointOfSale = padPointOfSale(h.PointOfSale)
}

func padPointOfSale(pos string) string {
	pos = strings.TrimSpace(pos)
	if pos == "" {
		return ""
	}
	for len(pos) < 5 {
		pos = "0" + pos
	}
	return pos
}

func (k ReceiptKey) String() string {
	return k.PointOfSale + "|" + k.ReceiptType + "|" + k.ReceiptLetter
}
