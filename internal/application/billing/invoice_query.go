package billing

import (
	"context"
	"fmt"
	"strings"

	"github.com/jhoicas/factura-afip/internal/application/dto"
	"github.com/jhoicas/factura-afip/internal/domain"
	"github.com/jhoicas/factura-afip/internal/domain/cae"
	"github.com/jhoicas/factura-afip/internal/domain/entity"
	"github.com/jhoicas/factura-afip/internal/domain/repository"
)

// InvoiceQueryUseCase lecturas sobre lo ya registrado localmente.
type InvoiceQueryUseCase struct {
	invoices      repository.InvoiceRepository
	orders        repository.OrderRepository
	logs          repository.AuthorizationLogRepository
	reportBaseURL string
}

// NewInvoiceQueryUseCase construye el caso de uso.
func NewInvoiceQueryUseCase(invoices repository.InvoiceRepository, orders repository.OrderRepository,
	logs repository.AuthorizationLogRepository, reportBaseURL string) *InvoiceQueryUseCase {
	return &InvoiceQueryUseCase{invoices: invoices, orders: orders, logs: logs, reportBaseURL: strings.TrimRight(reportBaseURL, "/")}
}

// GetInvoice factura por número (A00005-00000042).
func (uc *InvoiceQueryUseCase) GetInvoice(ctx context.Context, invoiceNumber string) (*dto.InvoiceSummaryResponse, error) {
	invoiceNumber = strings.ToUpper(strings.TrimSpace(invoiceNumber))
	if invoiceNumber == "" {
		return nil, fmt.Errorf("%w: número de factura requerido", domain.ErrInvalidInput)
	}
	inv, err := uc.invoices.GetByNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	if inv == nil {
		return nil, fmt.Errorf("%w: factura %s", domain.ErrNotFound, invoiceNumber)
	}
	return uc.toInvoiceResponse(inv), nil
}

// History estado de la orden y todas las respuestas de AFIP, de la más vieja a la más nueva.
func (uc *InvoiceQueryUseCase) History(ctx context.Context, orderNumber, deliveryNote string) (*dto.AuthorizationHistoryResponse, error) {
	if strings.TrimSpace(orderNumber) == "" {
		return nil, fmt.Errorf("%w: número de orden requerido", domain.ErrInvalidInput)
	}
	order, err := uc.orders.GetByOrder(ctx, orderNumber, deliveryNote)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("%w: orden %s sin solicitudes registradas", domain.ErrNotFound, orderNumber)
	}
	responses, err := uc.logs.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, fmt.Errorf("respuestas de la orden: %w", err)
	}
	out := &dto.AuthorizationHistoryResponse{
		OrderNumber:  order.OrderNumber,
		DeliveryNote: order.DeliveryNote,
		Status:       order.Status,
		ReportSaved:  order.ReportSaved,
		Attempts:     make([]dto.AuthorizationAttempt, 0, len(responses)),
	}
	for _, r := range responses {
		out.Attempts = append(out.Attempts, dto.AuthorizationAttempt{
			Result:         r.Result,
			CAE:            r.CAE,
			Errors:         toMessages(r.Errors),
			Observations:   toMessages(r.Observations),
			TransportError: r.TransportError,
			DurationMS:     r.DurationMS,
			CreatedAt:      r.CreatedAt,
		})
	}
	return out, nil
}

func (uc *InvoiceQueryUseCase) toInvoiceResponse(inv *entity.Invoice) *dto.InvoiceSummaryResponse {
	out := &dto.InvoiceSummaryResponse{
		InvoiceNumber:  inv.InvoiceNumber,
		OrderNumber:    inv.OrderNumber,
		DeliveryNote:   inv.DeliveryNoteNumber,
		ClientCode:     inv.ClientCode,
		BusinessName:   inv.BusinessName,
		Letter:         inv.InvoiceLetter,
		InvoiceType:    inv.InvoiceType,
		InvoiceCode:    inv.InvoiceCode,
		PointOfSale:    inv.PointOfSale,
		InvoiceDate:    inv.InvoiceDate.Format(dto.DateLayout),
		CAE:            inv.CAE,
		CAEDueDate:     inv.CAEDueDate.Format(dto.DateLayout),
		CurrencySymbol: inv.CurrencySymbol,
		ExchangeRate:   inv.ExchangeRate,
		SubTotal:       inv.SubTotal,
		GrandTotal:     inv.GrandTotal,
		AmountInPesos:  inv.AmountInPesos,
		Taxes:          make([]dto.InvoiceTaxResponse, 0, len(inv.Taxes)),
		ReportURL:      uc.reportBaseURL + cae.ReportURL(inv.InvoiceType, inv.InvoiceNumber),
	}
	for _, t := range inv.Taxes {
		out.Taxes = append(out.Taxes, dto.InvoiceTaxResponse{
			Description: t.Description, Aliquot: t.Aliquot, SubTotal: t.SubTotal, TaxAmount: t.TaxAmount,
		})
	}
	return out
}
