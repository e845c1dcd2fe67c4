package billing

import (
	"context"
	"encoding/xml"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/factura-afip/internal/application/dto"
	"github.com/jhoicas/factura-afip/internal/domain/cae"
	"github.com/jhoicas/factura-afip/internal/domain/entity"
	"github.com/jhoicas/factura-afip/pkg/afip"
)

// protocolVariant arma, envía e interpreta la solicitud en uno de los dos web services.
// Se elige una vez por solicitud según la letra del comprobante.
type protocolVariant interface {
	name() string
	build(ctx context.Context, in *orderSnapshot) (*preparedRequest, error)
	submit(ctx context.Context, req *preparedRequest) (authorityOutcome, error)
	buildInvoice(in *orderSnapshot, req *preparedRequest, out authorityOutcome) (*entity.Invoice, error)
}

// orderSnapshot todo lo leído del ERP más el comando del usuario.
type orderSnapshot struct {
	cmd         dto.RequestCAERequest
	receiptDate time.Time
	header      *entity.OrderHeader
	client      *entity.Client
	lines       []entity.OrderLine
	equipments  []entity.Equipment
	taxes       *entity.TaxResult
}

// preparedRequest solicitud lista para enviar. Sólo uno de domestic/export está presente.
type preparedRequest struct {
	variant     string
	pointOfSale int
	receiptType int // código AFIP
	sequence    int64
	domestic    *afip.FECAERequest
	export      *afip.FEXRequest
}

// payload XML de la solicitud para la auditoría.
func (p *preparedRequest) payload() string {
	var v any = p.domestic
	if p.export != nil {
		v = p.export
	}
	b, err := xml.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// authorityOutcome respuesta de AFIP normalizada.
// present es falso cuando no hubo cabecera utilizable (en ese caso el resultado queda en R).
type authorityOutcome struct {
	present      bool
	result       string
	reprocessed  string
	cae          string
	caeDueDate   string // yyyyMMdd
	sequence     int64
	errors       []entity.AuthorityMessage
	observations []entity.AuthorityMessage
	payload      string
}

func (o authorityOutcome) approved() bool {
	return o.present && o.result == afip.ResultApproved
}

func (o authorityOutcome) dueDate() (*time.Time, error) {
	if o.caeDueDate == "" {
		return nil, nil
	}
	t, err := time.Parse(afip.DateLayout, o.caeDueDate)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func marshalPayload(v any) string {
	b, err := xml.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}

// newInvoice campos comunes a ambas variantes: identidad, cliente, datos descriptivos de la orden,
// total de líneas con descuento, código de barras, leyenda, líneas y equipos.
func newInvoice(in *orderSnapshot, companyCUIT string, receiptType int, invoiceNumber string, sequence int64,
	invoiceDate time.Time, caeNumber string, caeDueDate time.Time, grandTotal decimal.Decimal) *entity.Invoice {
	h := in.header
	c := in.client
	invoiceCode := cae.InvoiceCode(receiptType)
	amountInPesos := afip.ToPesos(grandTotal, in.cmd.ExchangeRate)

	inv := &entity.Invoice{
		ID:                 uuid.New().String(),
		OrderNumber:        h.OrderNumber,
		OrderType:          h.OrderType,
		OrderDate:          h.OrderDate,
		ClientCode:         h.ClientCode,
		DeliveryNoteNumber: h.DeliveryNoteNumber,
		DeliveryNotes:      h.DeliveryNotes,

		InvoiceNumber: invoiceNumber,
		InvoiceLetter: h.ReceiptLetter,
		InvoiceType:   h.ReceiptType,
		InvoiceCode:   invoiceCode,
		PointOfSale:   afip.PointOfSale(h.PointOfSale),
		Sequence:      sequence,
		InvoiceDate:   invoiceDate,
		DueDate:       invoiceDate.AddDate(0, 0, h.InvoiceExpirationDays),
		CAE:           caeNumber,
		CAEDueDate:    caeDueDate,

		BusinessName:     c.BusinessName,
		Address1:         c.Address1,
		Address2:         c.Address2,
		Address3:         c.Address3,
		ZipCode:          c.ZipCode,
		CUIT:             c.CUIT,
		IIBB:             c.IIBB,
		IVACondition:     c.IVACondition,
		DeliveryAddress1: c.DeliveryAddress1,
		DeliveryAddress2: c.DeliveryAddress2,
		DeliveryAddress3: c.DeliveryAddress3,
		DeliveryAddress4: c.DeliveryAddress4,

		TaxLiabilityCode:    in.cmd.TaxLiabilityCode,
		PaymentCondition:    h.PaymentCondition,
		QuotationNumber:     h.QuotationNumber,
		Warehouse:           h.Warehouse,
		Observations1:       h.Observations1,
		Observations2:       h.Observations2,
		TermsOfDelivery:     h.TermsOfDelivery,
		DeliveryMethod:      h.MethodOfDelivery,
		Salesman:            h.Salesman,
		Contact:             h.Contact,
		PurchaseOrderNumber: h.PurchaseOrder,
		TextInfo:            h.TextInfo,
		PLC:                 h.PLC,
		PGC:                 h.PGC,
		CC:                  h.CC,
		ContractNumber:      h.ContractNumber,
		ContractFrom:        h.ContractFromDate,
		ContractTo:          h.ContractToDate,
		UserID:              in.cmd.UserID,
		UserEmail:           in.cmd.UserEmail,

		CurrencySymbol:         h.CurrencySymbol,
		CurrencyCode:           h.CurrencyCode,
		CurrentDayExchangeRate: h.CurrentDayExchangeRate,
		ExchangeRate:           in.cmd.ExchangeRate,
		ExchangeRateType:       in.cmd.ExchangeRateType,
		OrderDiscount:          h.OrderDiscount.Div(hundred),

		LinesTotal:    linesTotal(in.lines, h.OrderDiscount),
		AmountInPesos: amountInPesos,
		GrandTotal:    grandTotal,

		Barcode: cae.Barcode(companyCUIT, invoiceCode, h.PointOfSale, caeNumber, caeDueDate),
		Legend:  cae.LegendHTML(h.ReceiptLetter, h.CurrencySymbol, in.cmd.ExchangeRate, amountInPesos),
		Status:  entity.InvoiceStatusPending,
	}

	for _, l := range in.lines {
		detail1 := l.Detail1
		if detail1 == "" {
			detail1 = l.Description
		}
		inv.Lines = append(inv.Lines, entity.InvoiceLine{
			ID:                 uuid.New().String(),
			InvoiceID:          inv.ID,
			LineNumber:         l.LineNumber,
			Currency:           h.CurrencySymbol,
			Code:               l.StockCode,
			Detail1:            detail1,
			Detail2:            l.Detail2,
			Quantity:           l.Quantity.Abs(),
			UnitPrice:          l.UnitPrice,
			LineDiscount:       l.TotalDiscount.Div(hundred),
			Amount:             l.Amount,
			TextInfo:           l.TextInfo,
			DeliveryNoteNumber: l.DeliveryNoteNumber,
		})
	}
	for _, e := range in.equipments {
		inv.Equipments = append(inv.Equipments, entity.InvoiceEquipment{
			ID:           uuid.New().String(),
			InvoiceID:    inv.ID,
			LineNumber:   e.LineNumber,
			ProductCode:  e.ProductCode,
			SerialNumber: e.SerialNumber,
			Description:  e.Description,
		})
	}
	return inv
}

var hundred = decimal.NewFromInt(100)

// linesTotal suma de importes menos el descuento de la orden (porcentaje), formateado.
func linesTotal(lines []entity.OrderLine, discountPercent decimal.Decimal) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Amount)
	}
	return afip.FormatNumber(sum.Sub(sum.Mul(discountPercent.Div(hundred))))
}

func newTax(inv *entity.Invoice, description string, aliquot, subTotal, amount decimal.Decimal) entity.InvoiceTax {
	return entity.InvoiceTax{
		ID:          uuid.New().String(),
		InvoiceID:   inv.ID,
		Description: description,
		Aliquot:     aliquot,
		SubTotal:    subTotal,
		TaxAmount:   amount,
	}
}
