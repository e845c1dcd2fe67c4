package repository

import (
	"context"

	"github.com/jhoicas/factura-afip/internal/domain/entity"
)

// ERPRepository proveedor de datos de sólo lectura del ERP.
// Los métodos devuelven nil (sin error) cuando el registro no existe.
type ERPRepository interface {
	GetOrderHeader(ctx context.Context, orderNumber string) (*entity.OrderHeader, error)
	GetClient(ctx context.Context, clientCode, orderNumber, orderType string) (*entity.Client, error)
	GetLines(ctx context.Context, orderNumber, deliveryNote, orderType string) ([]entity.OrderLine, error)
	// GetLinesTypeB líneas con IVA incluido, para comprobantes B.
	GetLinesTypeB(ctx context.Context, orderNumber, deliveryNote, orderType string) ([]entity.OrderLine, error)
	GetEquipments(ctx context.Context, orderNumber string) ([]entity.Equipment, error)
}

// TaxCalculator calcula el desglose de impuestos de una orden.
type TaxCalculator interface {
	CalculateTaxes(ctx context.Context, header *entity.OrderHeader, lines []entity.OrderLine) (*entity.TaxResult, error)
}
