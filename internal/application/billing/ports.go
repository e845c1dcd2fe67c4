package billing

import (
	"context"

	"github.com/jhoicas/factura-afip/internal/domain/entity"
	"github.com/jhoicas/factura-afip/internal/domain/repository"
	"github.com/jhoicas/factura-afip/pkg/afip"
)

// AuthorizationTxRunner ejecuta una función dentro de una transacción con los repos de órdenes,
// facturas y auditoría AFIP. Si fn devuelve error se hace rollback.
type AuthorizationTxRunner interface {
	RunAuthorization(ctx context.Context, fn func(
		orders repository.OrderRepository,
		invoices repository.InvoiceRepository,
		logs repository.AuthorizationLogRepository,
	) error) error
}

// KeyLocker serializa las solicitudes por (punto de venta, tipo, letra).
// Lock bloquea hasta obtener el lock o hasta que ctx se cancele; unlock libera.
type KeyLocker interface {
	Lock(ctx context.Context, key entity.ReceiptKey) (unlock func(), err error)
}

// DomesticAuthority cliente WSFEv1 (comprobantes A/B).
type DomesticAuthority interface {
	LastAuthorized(ctx context.Context, pointOfSale, receiptType int) (int64, error)
	Authorize(ctx context.Context, req *afip.FECAERequest) (*afip.FECAEResponse, error)
}

// ExportAuthority cliente WSFEXv1 (comprobantes E).
type ExportAuthority interface {
	LastAuthorized(ctx context.Context, pointOfSale, receiptType int) (int64, error)
	LastID(ctx context.Context) (int64, error)
	Authorize(ctx context.Context, req *afip.FEXRequest) (*afip.FEXResponseAuthorize, error)
}

// ReceiptQuerier consulta un comprobante ya autorizado (FECompConsultar).
type ReceiptQuerier interface {
	QueryReceipt(ctx context.Context, receiptType, pointOfSale int, number int64) (*afip.FECompConsResponse, error)
}

// ReportGenerator genera el PDF de la factura y devuelve la ruta donde quedó.
type ReportGenerator interface {
	Generate(ctx context.Context, invoice *entity.Invoice) (string, error)
}

// AdminNotifier envía avisos administrativos. Fire-and-forget: los errores los registra el notifier.
type AdminNotifier interface {
	Notify(ctx context.Context, orderNumber, message string)
}
