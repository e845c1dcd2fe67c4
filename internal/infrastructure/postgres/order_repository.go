package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jhoicas/factura-afip/internal/domain"
	"github.com/jhoicas/factura-afip/internal/domain/entity"
	"github.com/jhoicas/factura-afip/internal/domain/repository"
)

var _ repository.OrderRepository = (*OrderRepo)(nil)

// OrderRepo implementación de OrderRepository (usable con pool o tx).
type OrderRepo struct {
	q Querier
}

// NewOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewOrderRepository(q Querier) *OrderRepo {
	return &OrderRepo{q: q}
}

const orderColumns = `id, order_number, order_type, client_code, delivery_note, point_of_sale,
	receipt_type, receipt_letter, status, reprocessed, report_saved, created_at, updated_at`

// GetByOrder devuelve nil, nil si la orden todavía no tiene registro local.
func (r *OrderRepo) GetByOrder(ctx context.Context, orderNumber, deliveryNote string) (*entity.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1 AND delivery_note = $2`
	var o entity.Order
	err := r.q.QueryRow(ctx, query, orderNumber, deliveryNote).Scan(
		&o.ID, &o.OrderNumber, &o.OrderType, &o.ClientCode, &o.DeliveryNote, &o.PointOfSale,
		&o.ReceiptType, &o.ReceiptLetter, &o.Status, &o.Reprocessed, &o.ReportSaved, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	return &o, nil
}

// Create persiste la orden local.
func (r *OrderRepo) Create(ctx context.Context, o *entity.Order) error {
	query := `INSERT INTO orders (` + orderColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`
	_, err := r.q.Exec(ctx, query,
		o.ID, o.OrderNumber, o.OrderType, o.ClientCode, o.DeliveryNote, o.PointOfSale,
		o.ReceiptType, o.ReceiptLetter, o.Status, o.Reprocessed, o.ReportSaved, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: orden %s remito %s", domain.ErrDuplicate, o.OrderNumber, o.DeliveryNote)
		}
		return fmt.Errorf("insert order: %w", err)
	}
	return nil
}

// UpdateStatus espeja Resultado y Reproceso de AFIP.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id, status, reprocessed string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE orders SET status = $2, reprocessed = $3, updated_at = $4 WHERE id = $1`,
		id, status, reprocessed, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: orden %s", domain.ErrNotFound, id)
	}
	return nil
}

// MarkReportSaved cierra la orden: a partir de aquí deja de bloquear su clave.
func (r *OrderRepo) MarkReportSaved(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx,
		`UPDATE orders SET report_saved = TRUE, updated_at = $2 WHERE id = $1`,
		id, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("mark report saved: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: orden %s", domain.ErrNotFound, id)
	}
	return nil
}

// CountBlockingByKey facturas pendientes más órdenes aprobadas sin reporte para la clave.
func (r *OrderRepo) CountBlockingByKey(ctx context.Context, key entity.ReceiptKey) (int, error) {
	const query = `
		SELECT
			(SELECT COUNT(*) FROM invoices
			  WHERE point_of_sale = $1 AND invoice_type = $2 AND invoice_letter = $3 AND status = $4)
		  + (SELECT COUNT(*) FROM orders
			  WHERE point_of_sale = $1 AND receipt_type = $2 AND receipt_letter = $3
			    AND status = $5 AND NOT report_saved)`
	var n int
	err := r.q.QueryRow(ctx, query,
		key.PointOfSale, key.ReceiptType, key.ReceiptLetter, entity.InvoiceStatusPending, entity.OrderStatusApproved,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count blocking: %w", err)
	}
	return n, nil
}

// CountUnfinishedByOrder órdenes aprobadas sin reporte para (orden, remito).
func (r *OrderRepo) CountUnfinishedByOrder(ctx context.Context, orderNumber, deliveryNote string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM orders
		  WHERE order_number = $1 AND delivery_note = $2 AND status = $3 AND NOT report_saved`,
		orderNumber, deliveryNote, entity.OrderStatusApproved,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unfinished: %w", err)
	}
	return n, nil
}
