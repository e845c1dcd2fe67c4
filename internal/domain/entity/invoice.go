package entity

import (
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/factura-afip/internal/domain"
)

// Estados de la factura. Pending hasta que el ERP cierra la orden (job externo).
const (
	InvoiceStatusPending = 1
	InvoiceStatusClosed  = 2
)

// Invoice factura autorizada por AFIP. Se crea una única vez por CAE obtenido.
type Invoice struct {
	ID                 string
	OrderNumber        string
	OrderType          string
	ClientCode         string
	DeliveryNoteNumber string
	DeliveryNotes      string

	InvoiceNumber string // A00005-00000042
	InvoiceLetter string
	InvoiceType   string // tipo interno: 0, 1, 2
	InvoiceCode   string // código AFIP a 3 dígitos
	PointOfSale   string // 5 dígitos
	Sequence      int64
	InvoiceDate   time.Time
	DueDate       time.Time
	CAE           string
	CAEDueDate    time.Time

	BusinessName     string
	Address1         string
	Address2         string
	Address3         string
	ZipCode          string
	CUIT             string
	IIBB             string
	IVACondition     string
	DeliveryAddress1 string
	DeliveryAddress2 string
	DeliveryAddress3 string
	DeliveryAddress4 string

	OrderDate           time.Time
	TaxLiabilityCode    string
	PaymentCondition    string
	QuotationNumber     string
	Warehouse           string
	Observations1       string
	Observations2       string
	TermsOfDelivery     string
	DeliveryMethod      string
	Salesman            string
	Contact             string
	PurchaseOrderNumber string
	TextInfo            string
	PLC                 string
	PGC                 string
	CC                  string
	ContractNumber      string
	ContractFrom        *time.Time
	ContractTo          *time.Time
	UserID              string
	UserEmail           string

	CurrencySymbol         string
	CurrencyCode           int
	CurrentDayExchangeRate decimal.Decimal
	ExchangeRate           decimal.Decimal
	ExchangeRateType       string
	OrderDiscount          decimal.Decimal // fracción (10% -> 0.10)

	LinesTotal     decimal.Decimal
	AmountInPesos  decimal.Decimal
	NetAmountTotal decimal.Decimal
	NotTaxedTotal  decimal.Decimal
	ExemptTotal    decimal.Decimal
	SubTotal       decimal.Decimal
	GrandTotal     decimal.Decimal

	ExportPermit int // ExportPermitId elegido por el usuario (1 sí, 2 no, 0 sin dato)
	ExportType   int

	Barcode string
	Legend  string
	Status  int

	Taxes      []InvoiceTax
	Lines      []InvoiceLine
	Equipments []InvoiceEquipment

	CreatedAt time.Time
}

var (
	invoiceNumberRe = regexp.MustCompile(`^[A-Z]\d{5}-\d{8}$`)
	caeRe           = regexp.MustCompile(`^\d{14}$`)
)

// Validate revisa los campos obligatorios antes del insert y devuelve todos los errores juntos.
func (inv *Invoice) Validate() error {
	var errs domain.ValidationErrors
	if !invoiceNumberRe.MatchString(inv.InvoiceNumber) {
		errs.Add("Invoice", "InvoiceNumber", "formato esperado <letra><pto. venta 5>-<número 8>")
	}
	if !caeRe.MatchString(inv.CAE) {
		errs.Add("Invoice", "CAE", "debe tener 14 dígitos")
	}
	if inv.CAEDueDate.IsZero() {
		errs.Add("Invoice", "CAEDueDate", "requerido")
	}
	if inv.InvoiceDate.IsZero() {
		errs.Add("Invoice", "InvoiceDate", "requerido")
	}
	if inv.BusinessName == "" {
		errs.Add("Invoice", "BusinessName", "requerido")
	} else if len([]rune(inv.BusinessName)) > 200 {
		errs.Add("Invoice", "BusinessName", "máximo 200 caracteres")
	}
	if inv.Barcode == "" {
		errs.Add("Invoice", "Barcode", "requerido")
	}
	if inv.ExchangeRate.IsZero() {
		errs.Add("Invoice", "ExchangeRate", "no puede ser cero")
	}
	if len(inv.Lines) == 0 {
		errs.Add("Invoice", "Lines", "la factura debe tener al menos una línea")
	}
	for _, l := range inv.Lines {
		if l.Code == "" && l.Detail1 == "" {
			errs.Add("InvoiceLine", "Code", "código o detalle requerido")
		}
	}
	for _, t := range inv.Taxes {
		if t.Description == "" {
			errs.Add("InvoiceTax", "Description", "requerido")
		}
	}
	return errs.Err()
}
