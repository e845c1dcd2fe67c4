package billing

import (
	"context"
	"fmt"

	"github.com/jhoicas/factura-afip/internal/domain"
	"github.com/jhoicas/factura-afip/pkg/afip"
)

// ReceiptQueryUseCase consulta en AFIP un comprobante ya autorizado.
type ReceiptQueryUseCase struct {
	querier ReceiptQuerier
}

// NewReceiptQueryUseCase construye el caso de uso.
func NewReceiptQueryUseCase(querier ReceiptQuerier) *ReceiptQueryUseCase {
	return &ReceiptQueryUseCase{querier: querier}
}

// Get devuelve los datos registrados en AFIP para (tipo AFIP, punto de venta, número).
func (uc *ReceiptQueryUseCase) Get(ctx context.Context, receiptType, pointOfSale int, number int64) (*afip.FECompConsResponse, error) {
	if receiptType <= 0 || pointOfSale <= 0 || number <= 0 {
		return nil, fmt.Errorf("%w: tipo, punto de venta y número deben ser positivos", domain.ErrInvalidInput)
	}
	r, err := uc.querier.QueryReceipt(ctx, receiptType, pointOfSale, number)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, fmt.Errorf("%w: comprobante %d-%d-%d", domain.ErrNotFound, receiptType, pointOfSale, number)
	}
	return r, nil
}
