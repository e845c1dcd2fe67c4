package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/factura-afip/internal/domain/entity"
	"github.com/jhoicas/factura-afip/internal/domain/repository"
)

var (
	_ repository.ERPRepository = (*ERPRepo)(nil)
	_ repository.TaxCalculator = (*ERPRepo)(nil)
)

// ERPRepo lectura del esquema erp (réplica del ERP). Nunca escribe.
type ERPRepo struct {
	q Querier
}

// NewERPRepository construye el adaptador sobre el pool de la réplica del ERP.
func NewERPRepository(q Querier) *ERPRepo {
	return &ERPRepo{q: q}
}

// GetOrderHeader cabecera de la orden; nil, nil si no existe.
func (r *ERPRepo) GetOrderHeader(ctx context.Context, orderNumber string) (*entity.OrderHeader, error) {
	const query = `
		SELECT order_number, order_type, sales_order_type, COALESCE(service_material, ''), client_code,
		       COALESCE(delivery_note_number, ''), COALESCE(delivery_notes, ''), COALESCE(receipt_type, ''),
		       COALESCE(receipt_letter, ''), COALESCE(point_of_sale, ''), COALESCE(accounting_dimension, ''),
		       valid_lines_sign, currency_code, currency_symbol, current_day_exchange_rate, order_discount,
		       invoice_expiration_days, COALESCE(contract_number, ''), contract_from, contract_to,
		       COALESCE(terms_of_delivery, ''), COALESCE(method_of_delivery, ''), COALESCE(payment_condition, ''),
		       COALESCE(quotation_number, ''), COALESCE(warehouse, ''), COALESCE(observations1, ''),
		       COALESCE(observations2, ''), COALESCE(salesman, ''), COALESCE(contact, ''),
		       COALESCE(purchase_order, ''), order_date, next_invoice_date, COALESCE(text_info, ''),
		       COALESCE(plc, ''), COALESCE(pgc, ''), COALESCE(cc, '')
		FROM erp.order_headers WHERE order_number = $1`
	var h entity.OrderHeader
	var orderDate, nextInvoiceDate *time.Time
	err := r.q.QueryRow(ctx, query, orderNumber).Scan(
		&h.OrderNumber, &h.OrderType, &h.SalesOrderType, &h.ServiceMaterial, &h.ClientCode,
		&h.DeliveryNoteNumber, &h.DeliveryNotes, &h.ReceiptType,
		&h.ReceiptLetter, &h.PointOfSale, &h.AccountingDimension,
		&h.ValidLinesSign, &h.CurrencyCode, &h.CurrencySymbol, &h.CurrentDayExchangeRate, &h.OrderDiscount,
		&h.InvoiceExpirationDays, &h.ContractNumber, &h.ContractFromDate, &h.ContractToDate,
		&h.TermsOfDelivery, &h.MethodOfDelivery, &h.PaymentCondition,
		&h.QuotationNumber, &h.Warehouse, &h.Observations1,
		&h.Observations2, &h.Salesman, &h.Contact,
		&h.PurchaseOrder, &orderDate, &nextInvoiceDate, &h.TextInfo,
		&h.PLC, &h.PGC, &h.CC,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("erp: cabecera de la orden %s: %w", orderNumber, err)
	}
	h.OrderDate = derefTime(orderDate)
	h.NextInvoiceDate = derefTime(nextInvoiceDate)
	h.Normalize()
	return &h, nil
}

// GetClient datos del cliente; las direcciones de entrega de la orden pisan las del cliente.
func (r *ERPRepo) GetClient(ctx context.Context, clientCode, orderNumber, _ string) (*entity.Client, error) {
	const query = `
		SELECT c.client_code, c.business_name, COALESCE(c.address, ''), COALESCE(c.address1, ''),
		       COALESCE(c.address2, ''), COALESCE(c.address3, ''), COALESCE(c.zip_code, ''), COALESCE(c.cuit, ''),
		       COALESCE(c.iibb, ''), COALESCE(c.iva_condition, ''),
		       COALESCE(o.delivery_address1, c.delivery_address1, ''), COALESCE(o.delivery_address2, c.delivery_address2, ''),
		       COALESCE(o.delivery_address3, c.delivery_address3, ''), COALESCE(o.delivery_address4, c.delivery_address4, ''),
		       COALESCE(c.country_code, ''), COALESCE(c.country_cuit, '')
		FROM erp.clients c
		LEFT JOIN erp.order_headers o ON o.order_number = $2
		WHERE c.client_code = $1`
	var c entity.Client
	err := r.q.QueryRow(ctx, query, clientCode, orderNumber).Scan(
		&c.Code, &c.BusinessName, &c.Address, &c.Address1,
		&c.Address2, &c.Address3, &c.ZipCode, &c.CUIT,
		&c.IIBB, &c.IVACondition,
		&c.DeliveryAddress1, &c.DeliveryAddress2,
		&c.DeliveryAddress3, &c.DeliveryAddress4,
		&c.CountryCode, &c.CountryCUIT,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("erp: cliente %s: %w", clientCode, err)
	}
	return &c, nil
}

// GetLines líneas valorizadas de la orden para el remito (vacío = todas).
func (r *ERPRepo) GetLines(ctx context.Context, orderNumber, deliveryNote, _ string) ([]entity.OrderLine, error) {
	return r.lines(ctx, "erp.order_lines", orderNumber, deliveryNote)
}

// GetLinesTypeB líneas con precios IVA incluido.
func (r *ERPRepo) GetLinesTypeB(ctx context.Context, orderNumber, deliveryNote, _ string) ([]entity.OrderLine, error) {
	return r.lines(ctx, "erp.order_lines_b", orderNumber, deliveryNote)
}

func (r *ERPRepo) lines(ctx context.Context, table, orderNumber, deliveryNote string) ([]entity.OrderLine, error) {
	query := `
		SELECT line_number, COALESCE(stock_code, ''), COALESCE(description, ''), COALESCE(detail1, ''),
		       COALESCE(detail2, ''), quantity, unit_price, amount, total_discount, measurement_unit,
		       COALESCE(text_info, ''), delivery_note_number
		FROM ` + table + `
		WHERE order_number = $1 AND ($2 = '' OR delivery_note_number = $2)
		ORDER BY line_number`
	lines, err := collect(ctx, r.q, query, func(row pgx.CollectableRow) (entity.OrderLine, error) {
		var l entity.OrderLine
		err := row.Scan(&l.LineNumber, &l.StockCode, &l.Description, &l.Detail1,
			&l.Detail2, &l.Quantity, &l.UnitPrice, &l.Amount, &l.TotalDiscount, &l.MeasurementUnit,
			&l.TextInfo, &l.DeliveryNoteNumber)
		return l, err
	}, orderNumber, deliveryNote)
	if err != nil {
		return nil, fmt.Errorf("erp: líneas de la orden %s: %w", orderNumber, err)
	}
	return lines, nil
}

// GetEquipments equipos de un contrato de servicio.
func (r *ERPRepo) GetEquipments(ctx context.Context, orderNumber string) ([]entity.Equipment, error) {
	const query = `
		SELECT line_number, COALESCE(product_code, ''), COALESCE(serial_number, ''), COALESCE(description, ''),
		       COALESCE(accounting_dimension, '')
		FROM erp.equipments WHERE order_number = $1 ORDER BY line_number`
	list, err := collect(ctx, r.q, query, func(row pgx.CollectableRow) (entity.Equipment, error) {
		var e entity.Equipment
		err := row.Scan(&e.LineNumber, &e.ProductCode, &e.SerialNumber, &e.Description, &e.AccountingDimension)
		return e, err
	}, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("erp: equipos de la orden %s: %w", orderNumber, err)
	}
	return list, nil
}

// CalculateTaxes lee el desglose que el ERP calculó para la orden y lo totaliza.
func (r *ERPRepo) CalculateTaxes(ctx context.Context, header *entity.OrderHeader, lines []entity.OrderLine) (*entity.TaxResult, error) {
	const query = `
		SELECT kind, COALESCE(tax_type, ''), COALESCE(description, ''), aliquot, tax_base, amount
		FROM erp.order_taxes
		WHERE order_number = $1 AND ($2 = '' OR delivery_note_number = $2)
		ORDER BY position`
	rows, err := collect(ctx, r.q, query, func(row pgx.CollectableRow) (TaxRow, error) {
		var t TaxRow
		err := row.Scan(&t.Kind, &t.Type, &t.Description, &t.Aliquot, &t.TaxBase, &t.Amount)
		return t, err
	}, header.OrderNumber, header.DeliveryNoteNumber)
	if err != nil {
		return nil, fmt.Errorf("erp: impuestos de la orden %s: %w", header.OrderNumber, err)
	}
	return SummarizeTaxes(header, lines, rows), nil
}

// Clases de fila de erp.order_taxes.
const (
	TaxKindVAT      = "IVA"
	TaxKindTribute  = "TRIBUTE"
	TaxKindNotTaxed = "NOT_TAXED"
	TaxKindExempt   = "EXEMPT"
)

// TaxRow una fila del desglose de impuestos del ERP (Aliquot en porcentaje).
type TaxRow struct {
	Kind        string
	Type        string
	Description string
	Aliquot     decimal.Decimal
	TaxBase     decimal.Decimal
	Amount      decimal.Decimal
}

// SummarizeTaxes arma el TaxResult. Sin filas, el total de líneas con el descuento de la orden
// se toma como exento (exportación).
func SummarizeTaxes(header *entity.OrderHeader, lines []entity.OrderLine, rows []TaxRow) *entity.TaxResult {
	t := &entity.TaxResult{}
	if len(rows) == 0 {
		sum := decimal.Zero
		for _, l := range lines {
			sum = sum.Add(l.Amount)
		}
		base := sum.Sub(sum.Mul(header.OrderDiscount).Div(decimal.NewFromInt(100)))
		t.TaxBase = base
		t.ExemptTotal = base
		t.Total = base
		return t
	}
	for _, row := range rows {
		switch row.Kind {
		case TaxKindVAT:
			t.NetAmountTotal = t.NetAmountTotal.Add(row.TaxBase)
			t.IVATotal = t.IVATotal.Add(row.Amount)
			t.IVAs = append(t.IVAs, entity.IVATax{Aliquot: row.Aliquot, TaxBase: row.TaxBase, Amount: row.Amount})
		case TaxKindTribute:
			t.TributesTotal = t.TributesTotal.Add(row.Amount)
			t.Tributes = append(t.Tributes, entity.TributeTax{
				Type: row.Type, Description: row.Description, TaxBase: row.TaxBase, Aliquot: row.Aliquot, Amount: row.Amount,
			})
		case TaxKindNotTaxed:
			t.NotTaxedTotal = t.NotTaxedTotal.Add(row.TaxBase)
		case TaxKindExempt:
			t.ExemptTotal = t.ExemptTotal.Add(row.TaxBase)
		}
	}
	t.TaxBase = t.NetAmountTotal.Add(t.NotTaxedTotal).Add(t.ExemptTotal)
	t.Total = t.TaxBase.Add(t.IVATotal).Add(t.TributesTotal)
	return t
}
