package repository

import (
	"context"

	"github.com/jhoicas/factura-afip/internal/domain/entity"
)

// InvoiceRepository puerto de persistencia para facturas autorizadas.
type InvoiceRepository interface {
	// Create inserta la cabecera con sus impuestos, líneas y equipos.
	Create(ctx context.Context, invoice *entity.Invoice) error
	GetByNumber(ctx context.Context, invoiceNumber string) (*entity.Invoice, error)
	// CountAll cantidad total de facturas (ValidInvoiceNumber: tabla vacía).
	CountAll(ctx context.Context) (int, error)
	// CountByNumber cantidad de facturas con ese número; invoiceType vacío = cualquier tipo.
	CountByNumber(ctx context.Context, invoiceNumber, invoiceType string) (int, error)
}
