package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// InvoiceSummaryResponse factura registrada para GET /api/invoices/:number.
type InvoiceSummaryResponse struct {
	InvoiceNumber  string               `json:"invoice_number"`
	OrderNumber    string               `json:"order_number"`
	DeliveryNote   string               `json:"delivery_note"`
	ClientCode     string               `json:"client_code"`
	BusinessName   string               `json:"business_name"`
	Letter         string               `json:"letter"`
	InvoiceType    string               `json:"invoice_type"`
	InvoiceCode    string               `json:"invoice_code"`
	PointOfSale    string               `json:"point_of_sale"`
	InvoiceDate    string               `json:"invoice_date"`
	CAE            string               `json:"cae"`
	CAEDueDate     string               `json:"cae_due_date"`
	CurrencySymbol string               `json:"currency_symbol"`
	ExchangeRate   decimal.Decimal      `json:"exchange_rate"`
	SubTotal       decimal.Decimal      `json:"sub_total"`
	GrandTotal     decimal.Decimal      `json:"grand_total"`
	AmountInPesos  decimal.Decimal      `json:"amount_in_pesos"`
	Taxes          []InvoiceTaxResponse `json:"taxes"`
	ReportURL      string               `json:"report_url"`
}

// InvoiceTaxResponse renglón de impuesto de la factura.
type InvoiceTaxResponse struct {
	Description string          `json:"description"`
	Aliquot     decimal.Decimal `json:"aliquot"`
	SubTotal    decimal.Decimal `json:"sub_total"`
	TaxAmount   decimal.Decimal `json:"tax_amount"`
}

// AuthorizationHistoryResponse estado local de una orden y sus respuestas de AFIP.
type AuthorizationHistoryResponse struct {
	OrderNumber  string                 `json:"order_number"`
	DeliveryNote string                 `json:"delivery_note"`
	Status       string                 `json:"status"`
	ReportSaved  bool                   `json:"report_saved"`
	Attempts     []AuthorizationAttempt `json:"attempts"`
}

// AuthorizationAttempt una respuesta registrada (o el error de transporte).
type AuthorizationAttempt struct {
	Result         string    `json:"result"`
	CAE            string    `json:"cae,omitempty"`
	Errors         []Message `json:"errors,omitempty"`
	Observations   []Message `json:"observations,omitempty"`
	TransportError string    `json:"transport_error,omitempty"`
	DurationMS     int64     `json:"duration_ms"`
	CreatedAt      time.Time `json:"created_at"`
}
