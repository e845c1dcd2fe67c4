package entity

import "time"

// Variantes del protocolo AFIP.
const (
	VariantDomestic = "WSFEv1"
	VariantExport   = "WSFEXv1"
)

// AuthorizationRequest solicitud enviada a AFIP, registrada antes del envío. Inmutable.
type AuthorizationRequest struct {
	ID            string
	OrderID       string
	CorrelationID string
	Variant       string
	PointOfSale   int
	ReceiptType   int // código AFIP
	Sequence      int64
	Payload       string // XML
	CreatedAt     time.Time
}

// AuthorizationResponse respuesta de AFIP (o falla de transporte), registrada al volver. Inmutable.
type AuthorizationResponse struct {
	ID             string
	RequestID      string
	OrderID        string
	Result         string
	Reprocessed    string
	CAE            string
	CAEDueDate     *time.Time
	Errors         []AuthorityMessage
	Observations   []AuthorityMessage
	Payload        string // XML; vacío si no hubo respuesta
	TransportError string
	DurationMS     int64
	CreatedAt      time.Time
}

// AuthorityMessage error u observación devuelta por AFIP.
type AuthorityMessage struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
