package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/factura-afip/internal/domain/cae"
	"github.com/jhoicas/factura-afip/internal/domain/entity"
	"github.com/jhoicas/factura-afip/internal/domain/repository"
)

// Guard decide si se puede pedir un nuevo CAE. Debe correr dentro del lock de la clave
// (punto de venta, tipo, letra) para que la lectura y el commit posterior no se intercalen
// con otra solicitud.
type Guard struct {
	orders   repository.OrderRepository
	invoices repository.InvoiceRepository
}

// NewGuard construye el guard.
func NewGuard(orders repository.OrderRepository, invoices repository.InvoiceRepository) *Guard {
	return &Guard{orders: orders, invoices: invoices}
}

// CanRequestCae es falso si hay una factura pendiente de cierre o una orden aprobada sin
// reporte para la clave, o una orden aprobada sin reporte para (orden, remito).
func (g *Guard) CanRequestCae(ctx context.Context, pointOfSale, receiptType, receiptLetter, orderNumber, deliveryNote string) (bool, error) {
	key := entity.NewReceiptKey(pointOfSale, receiptType, receiptLetter)
	blocking, err := g.orders.CountBlockingByKey(ctx, key)
	if err != nil {
		return false, fmt.Errorf("guard: pendientes por clave %s: %w", key, err)
	}
	if blocking > 0 {
		return false, nil
	}
	unfinished, err := g.orders.CountUnfinishedByOrder(ctx, orderNumber, deliveryNote)
	if err != nil {
		return false, fmt.Errorf("guard: pendientes de la orden %s: %w", orderNumber, err)
	}
	return unfinished == 0, nil
}

// ValidInvoiceNumber verifica que el último número informado por AFIP sea coherente con el libro:
// tabla vacía, o el comprobante number existe una sola vez para el tipo y number+1 no existe.
// number == 0 (primer comprobante del punto de venta) siempre es válido.
func (g *Guard) ValidInvoiceNumber(ctx context.Context, letter, pointOfSale string, number int64, invoiceType string) (bool, error) {
	total, err := g.invoices.CountAll(ctx)
	if err != nil {
		return false, fmt.Errorf("guard: contar facturas: %w", err)
	}
	if total == 0 || number == 0 {
		return true, nil
	}
	last, err := g.invoices.CountByNumber(ctx, cae.InvoiceNumber(letter, pointOfSale, number), invoiceType)
	if err != nil {
		return false, fmt.Errorf("guard: último comprobante: %w", err)
	}
	next, err := g.invoices.CountByNumber(ctx, cae.InvoiceNumber(letter, pointOfSale, number+1), invoiceType)
	if err != nil {
		return false, fmt.Errorf("guard: comprobante siguiente: %w", err)
	}
	return last == 1 && next == 0, nil
}
