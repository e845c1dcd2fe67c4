package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jhoicas/factura-afip/internal/domain"
	"github.com/jhoicas/factura-afip/internal/domain/entity"
	"github.com/jhoicas/factura-afip/internal/domain/repository"
)

var _ repository.InvoiceRepository = (*InvoiceRepo)(nil)

// InvoiceRepo implementación de InvoiceRepository (usable con pool o tx).
// Create escribe varias tablas: llamarlo dentro de una tx.
type InvoiceRepo struct {
	q Querier
}

// NewInvoiceRepository construye el adaptador. Pasar pool o tx (Querier).
func NewInvoiceRepository(q Querier) *InvoiceRepo {
	return &InvoiceRepo{q: q}
}

var invoiceColumns = []string{
	"id", "order_number", "order_type", "client_code", "delivery_note_number", "delivery_notes",
	"invoice_number", "invoice_letter", "invoice_type", "invoice_code", "point_of_sale", "sequence",
	"invoice_date", "due_date", "cae", "cae_due_date",
	"business_name", "address1", "address2", "address3", "zip_code", "cuit", "iibb", "iva_condition",
	"delivery_address1", "delivery_address2", "delivery_address3", "delivery_address4",
	"order_date", "tax_liability_code", "payment_condition", "quotation_number", "warehouse",
	"observations1", "observations2", "terms_of_delivery", "delivery_method", "salesman", "contact",
	"purchase_order_number", "text_info", "plc", "pgc", "cc", "contract_number", "contract_from", "contract_to",
	"user_id", "user_email",
	"currency_symbol", "currency_code", "current_day_exchange_rate", "exchange_rate", "exchange_rate_type",
	"order_discount", "lines_total", "amount_in_pesos", "net_amount_total", "not_taxed_total",
	"exempt_total", "sub_total", "grand_total", "export_permit", "export_type",
	"barcode", "legend", "status", "created_at",
}

// insertSQL arma INSERT INTO table (cols) VALUES ($1..$n).
func insertSQL(table string, cols []string) string {
	ph := make([]string, len(cols))
	for i := range cols {
		ph[i] = "$" + strconv.Itoa(i+1)
	}
	return "INSERT INTO " + table + " (" + strings.Join(cols, ", ") + ") VALUES (" + strings.Join(ph, ", ") + ")"
}

// Create inserta la cabecera con sus impuestos, líneas y equipos.
func (r *InvoiceRepo) Create(ctx context.Context, inv *entity.Invoice) error {
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now().UTC()
	}
	var exportType, exportPermit *int
	if inv.ExportType != 0 {
		exportType = &inv.ExportType
	}
	if inv.ExportPermit != 0 {
		exportPermit = &inv.ExportPermit
	}
	_, err := r.q.Exec(ctx, insertSQL("invoices", invoiceColumns),
		inv.ID, inv.OrderNumber, inv.OrderType, inv.ClientCode, inv.DeliveryNoteNumber, inv.DeliveryNotes,
		inv.InvoiceNumber, inv.InvoiceLetter, inv.InvoiceType, inv.InvoiceCode, inv.PointOfSale, inv.Sequence,
		inv.InvoiceDate, nullTime(inv.DueDate), inv.CAE, inv.CAEDueDate,
		inv.BusinessName, nullIfEmpty(inv.Address1), nullIfEmpty(inv.Address2), nullIfEmpty(inv.Address3),
		nullIfEmpty(inv.ZipCode), nullIfEmpty(inv.CUIT), nullIfEmpty(inv.IIBB), nullIfEmpty(inv.IVACondition),
		nullIfEmpty(inv.DeliveryAddress1), nullIfEmpty(inv.DeliveryAddress2), nullIfEmpty(inv.DeliveryAddress3), nullIfEmpty(inv.DeliveryAddress4),
		nullTime(inv.OrderDate), nullIfEmpty(inv.TaxLiabilityCode), nullIfEmpty(inv.PaymentCondition),
		nullIfEmpty(inv.QuotationNumber), nullIfEmpty(inv.Warehouse),
		nullIfEmpty(inv.Observations1), nullIfEmpty(inv.Observations2), nullIfEmpty(inv.TermsOfDelivery),
		nullIfEmpty(inv.DeliveryMethod), nullIfEmpty(inv.Salesman), nullIfEmpty(inv.Contact),
		nullIfEmpty(inv.PurchaseOrderNumber), nullIfEmpty(inv.TextInfo), nullIfEmpty(inv.PLC), nullIfEmpty(inv.PGC),
		nullIfEmpty(inv.CC), nullIfEmpty(inv.ContractNumber), inv.ContractFrom, inv.ContractTo,
		nullIfEmpty(inv.UserID), nullIfEmpty(inv.UserEmail),
		inv.CurrencySymbol, inv.CurrencyCode, inv.CurrentDayExchangeRate, inv.ExchangeRate, nullIfEmpty(inv.ExchangeRateType),
		inv.OrderDiscount, inv.LinesTotal, inv.AmountInPesos, inv.NetAmountTotal, inv.NotTaxedTotal,
		inv.ExemptTotal, inv.SubTotal, inv.GrandTotal, exportPermit, exportType,
		inv.Barcode, nullIfEmpty(inv.Legend), inv.Status, inv.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: factura %s tipo %s", domain.ErrDuplicate, inv.InvoiceNumber, inv.InvoiceType)
		}
		return fmt.Errorf("insert invoice: %w", err)
	}

	for i, t := range inv.Taxes {
		_, err := r.q.Exec(ctx, `
			INSERT INTO invoice_taxes (id, invoice_id, position, description, aliquot, sub_total, tax_amount,
			                           sub_total_in_pesos, tax_amount_in_pesos)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			t.ID, inv.ID, i, t.Description, t.Aliquot, t.SubTotal, t.TaxAmount, t.SubTotalInPesos, t.TaxAmountInPesos,
		)
		if err != nil {
			return fmt.Errorf("insert invoice tax: %w", err)
		}
	}
	for _, l := range inv.Lines {
		_, err := r.q.Exec(ctx, `
			INSERT INTO invoice_lines (id, invoice_id, line_number, currency, code, detail1, detail2, quantity,
			                           unit_price, line_discount, amount, text_info, delivery_note_number)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			l.ID, inv.ID, l.LineNumber, nullIfEmpty(l.Currency), nullIfEmpty(l.Code), nullIfEmpty(l.Detail1),
			nullIfEmpty(l.Detail2), l.Quantity, l.UnitPrice, l.LineDiscount, l.Amount, nullIfEmpty(l.TextInfo),
			nullIfEmpty(l.DeliveryNoteNumber),
		)
		if err != nil {
			return fmt.Errorf("insert invoice line: %w", err)
		}
	}
	for _, e := range inv.Equipments {
		_, err := r.q.Exec(ctx, `
			INSERT INTO invoice_equipments (id, invoice_id, line_number, product_code, serial_number, description)
			VALUES ($1, $2, $3, $4, $5, $6)`,
			e.ID, inv.ID, e.LineNumber, nullIfEmpty(e.ProductCode), nullIfEmpty(e.SerialNumber), nullIfEmpty(e.Description),
		)
		if err != nil {
			return fmt.Errorf("insert invoice equipment: %w", err)
		}
	}
	return nil
}

// GetByNumber factura completa por número; nil, nil si no existe.
func (r *InvoiceRepo) GetByNumber(ctx context.Context, invoiceNumber string) (*entity.Invoice, error) {
	query := `
		SELECT id, order_number, order_type, client_code, delivery_note_number, delivery_notes,
		       invoice_number, invoice_letter, invoice_type, invoice_code, point_of_sale, sequence,
		       invoice_date, due_date, cae, cae_due_date, business_name, address1, cuit, iva_condition,
		       order_date, purchase_order_number, user_id, currency_symbol, currency_code, exchange_rate,
		       order_discount, lines_total, amount_in_pesos, net_amount_total, not_taxed_total, exempt_total,
		       sub_total, grand_total, COALESCE(export_permit, 0), COALESCE(export_type, 0), barcode, legend, status, created_at
		FROM invoices WHERE invoice_number = $1
		ORDER BY created_at LIMIT 1`
	var inv entity.Invoice
	var dueDate, orderDate *time.Time
	var address1, cuit, ivaCondition, purchaseOrder, userID, legend *string
	err := r.q.QueryRow(ctx, query, invoiceNumber).Scan(
		&inv.ID, &inv.OrderNumber, &inv.OrderType, &inv.ClientCode, &inv.DeliveryNoteNumber, &inv.DeliveryNotes,
		&inv.InvoiceNumber, &inv.InvoiceLetter, &inv.InvoiceType, &inv.InvoiceCode, &inv.PointOfSale, &inv.Sequence,
		&inv.InvoiceDate, &dueDate, &inv.CAE, &inv.CAEDueDate, &inv.BusinessName, &address1, &cuit, &ivaCondition,
		&orderDate, &purchaseOrder, &userID, &inv.CurrencySymbol, &inv.CurrencyCode, &inv.ExchangeRate,
		&inv.OrderDiscount, &inv.LinesTotal, &inv.AmountInPesos, &inv.NetAmountTotal, &inv.NotTaxedTotal, &inv.ExemptTotal,
		&inv.SubTotal, &inv.GrandTotal, &inv.ExportPermit, &inv.ExportType, &inv.Barcode, &legend, &inv.Status, &inv.CreatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}
	inv.DueDate = derefTime(dueDate)
	inv.OrderDate = derefTime(orderDate)
	inv.Address1 = derefStr(address1)
	inv.CUIT = derefStr(cuit)
	inv.IVACondition = derefStr(ivaCondition)
	inv.PurchaseOrderNumber = derefStr(purchaseOrder)
	inv.UserID = derefStr(userID)
	inv.Legend = derefStr(legend)

	if inv.Taxes, err = r.taxes(ctx, inv.ID); err != nil {
		return nil, err
	}
	if inv.Lines, err = r.lines(ctx, inv.ID); err != nil {
		return nil, err
	}
	return &inv, nil
}

func (r *InvoiceRepo) taxes(ctx context.Context, invoiceID string) ([]entity.InvoiceTax, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, invoice_id, description, aliquot, sub_total, tax_amount, sub_total_in_pesos, tax_amount_in_pesos
		FROM invoice_taxes WHERE invoice_id = $1 ORDER BY position`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice taxes: %w", err)
	}
	defer rows.Close()
	var list []entity.InvoiceTax
	for rows.Next() {
		var t entity.InvoiceTax
		if err := rows.Scan(&t.ID, &t.InvoiceID, &t.Description, &t.Aliquot, &t.SubTotal, &t.TaxAmount,
			&t.SubTotalInPesos, &t.TaxAmountInPesos); err != nil {
			return nil, fmt.Errorf("scan invoice tax: %w", err)
		}
		list = append(list, t)
	}
	return list, rows.Err()
}

func (r *InvoiceRepo) lines(ctx context.Context, invoiceID string) ([]entity.InvoiceLine, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, invoice_id, line_number, COALESCE(code, ''), COALESCE(detail1, ''), COALESCE(detail2, ''),
		       quantity, unit_price, line_discount, amount
		FROM invoice_lines WHERE invoice_id = $1 ORDER BY line_number`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list invoice lines: %w", err)
	}
	defer rows.Close()
	var list []entity.InvoiceLine
	for rows.Next() {
		var l entity.InvoiceLine
		if err := rows.Scan(&l.ID, &l.InvoiceID, &l.LineNumber, &l.Code, &l.Detail1, &l.Detail2,
			&l.Quantity, &l.UnitPrice, &l.LineDiscount, &l.Amount); err != nil {
			return nil, fmt.Errorf("scan invoice line: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// CountAll cantidad total de facturas.
func (r *InvoiceRepo) CountAll(ctx context.Context) (int, error) {
	var n int
	if err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM invoices`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return n, nil
}

// CountByNumber facturas con ese número; invoiceType vacío = cualquier tipo.
func (r *InvoiceRepo) CountByNumber(ctx context.Context, invoiceNumber, invoiceType string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM invoices WHERE invoice_number = $1 AND ($2 = '' OR invoice_type = $2)`,
		invoiceNumber, invoiceType,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count invoices by number: %w", err)
	}
	return n, nil
}
