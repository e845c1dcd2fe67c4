package repository

import (
	"context"

	"github.com/jhoicas/factura-afip/internal/domain/entity"
)

// OrderRepository puerto de persistencia para el estado local de las órdenes.
type OrderRepository interface {
	GetByOrder(ctx context.Context, orderNumber, deliveryNote string) (*entity.Order, error)
	Create(ctx context.Context, order *entity.Order) error
	// UpdateStatus espeja Resultado y Reproceso de la cabecera AFIP.
	UpdateStatus(ctx context.Context, id, status, reprocessed string) error
	MarkReportSaved(ctx context.Context, id string) error
	// CountBlockingByKey cuenta, para (pto. venta, tipo, letra), las facturas en estado pendiente
	// más las órdenes aprobadas sin ReportSaved. En una sola consulta.
	CountBlockingByKey(ctx context.Context, key entity.ReceiptKey) (int, error)
	// CountUnfinishedByOrder cuenta las órdenes aprobadas sin ReportSaved para (orden, remito).
	CountUnfinishedByOrder(ctx context.Context, orderNumber, deliveryNote string) (int, error)
}
