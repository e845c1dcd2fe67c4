package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout formato de las fechas en la API (yyyy-mm-dd).
const DateLayout = "2006-01-02"

// Tipos de cotización elegidos por el usuario.
const (
	ExchangeRateFixed    = "fixed"
	ExchangeRateVariable = "variable"
)

// RequestCAERequest body para POST /api/orders-without-cae/request-cae.
// UserID, UserEmail y UserFullName los completa el handler desde el token.
type RequestCAERequest struct {
	OrderNumber      string          `json:"order_number"`
	ClientCode       string          `json:"client_code"`
	DeliveryNote     string          `json:"delivery_note"`
	OrderType        string          `json:"order_type"`
	Date             string          `json:"date"` // fecha del comprobante, yyyy-mm-dd
	ExchangeRate     decimal.Decimal `json:"exchange_rate"`
	ExchangeRateType string          `json:"exchange_rate_type,omitempty"`
	TaxLiabilityCode string          `json:"tax_liability_code,omitempty"`
	ExportTypeID     int             `json:"export_type_id,omitempty"`
	ExportPermitID   int             `json:"export_permit_id,omitempty"`
	UserID           string          `json:"-"`
	UserEmail        string          `json:"-"`
	UserFullName     string          `json:"-"`
}

// ReceiptDate interpreta Date; vacío = hoy.
func (r RequestCAERequest) ReceiptDate(now time.Time) (time.Time, error) {
	if r.Date == "" {
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location()), nil
	}
	return time.ParseInLocation(DateLayout, r.Date, now.Location())
}

// CAEResultResponse resultado de la solicitud de CAE.
// Result: A aprobado, R rechazado o sin respuesta, E inválido localmente (no llegó a AFIP).
type CAEResultResponse struct {
	OrderNumber       string     `json:"order_number"`
	ClientCode        string     `json:"client_code"`
	DeliveryNote      string     `json:"delivery_note"`
	OrderType         string     `json:"order_type,omitempty"`
	UserID            string     `json:"user_id,omitempty"`
	Result            string     `json:"result"`
	ValidationReason  string     `json:"validation_reason,omitempty"`
	ValidationMessage string     `json:"validation_message,omitempty"`
	CAE               string     `json:"cae,omitempty"`
	CAEDueDate        string     `json:"cae_due_date,omitempty"` // yyyyMMdd, tal como lo devuelve AFIP
	Reprocessed       string     `json:"reprocessed,omitempty"`
	InvoiceNumber     string     `json:"invoice_number,omitempty"`
	ReportURL         string     `json:"report_url,omitempty"`
	EmailData         *EmailData `json:"email_data,omitempty"`
	LastInvoiceDate   string     `json:"last_invoice_date,omitempty"`
	Errors            []Message  `json:"errors,omitempty"`
	Observations      []Message  `json:"observations,omitempty"`
}

// EmailTypeClientNotification tipo de correo que arma el front.
const EmailTypeClientNotification = "ClientNotification"

// EmailData datos para el correo de notificación al cliente.
type EmailData struct {
	ClientCode    string `json:"client_code"`
	BusinessName  string `json:"business_name"`
	DeliveryNotes string `json:"delivery_notes,omitempty"`
	PurchaseOrder string `json:"purchase_order,omitempty"`
	OrderDate     string `json:"order_date,omitempty"`
	ReceiptType   string `json:"receipt_type"`
	ReceiptNumber string `json:"receipt_number"`
	UserFullName  string `json:"user_full_name,omitempty"`
	UserEmail     string `json:"user_email,omitempty"`
	EmailType     string `json:"email_type"`
}

// Message error u observación de AFIP.
type Message struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CanRequestCAEResponse respuesta de GET /api/orders-without-cae/can-request.
type CanRequestCAEResponse struct {
	OrderNumber  string `json:"order_number"`
	DeliveryNote string `json:"delivery_note"`
	PointOfSale  string `json:"point_of_sale"`
	ReceiptType  string `json:"receipt_type"`
	Letter       string `json:"receipt_letter"`
	Allowed      bool   `json:"allowed"`
}
