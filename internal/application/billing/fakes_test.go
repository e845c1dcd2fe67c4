package billing_test

import (
	"context"
	"errors"

	"github.com/jhoicas/factura-afip/internal/domain/entity"
	"github.com/jhoicas/factura-afip/internal/domain/repository"
	"github.com/jhoicas/factura-afip/pkg/afip"
)

// ── ERP ──

type fakeERP struct {
	header     *entity.OrderHeader
	client     *entity.Client
	lines      []entity.OrderLine
	linesB     []entity.OrderLine
	equipments []entity.Equipment
}

func (f *fakeERP) GetOrderHeader(context.Context, string) (*entity.OrderHeader, error) {
	return f.header, nil
}

func (f *fakeERP) GetClient(context.Context, string, string, string) (*entity.Client, error) {
	return f.client, nil
}

func (f *fakeERP) GetLines(context.Context, string, string, string) ([]entity.OrderLine, error) {
	return f.lines, nil
}

func (f *fakeERP) GetLinesTypeB(context.Context, string, string, string) ([]entity.OrderLine, error) {
	return f.linesB, nil
}

func (f *fakeERP) GetEquipments(context.Context, string) ([]entity.Equipment, error) {
	return f.equipments, nil
}

type fakeTaxes struct{ result *entity.TaxResult }

func (f *fakeTaxes) CalculateTaxes(context.Context, *entity.OrderHeader, []entity.OrderLine) (*entity.TaxResult, error) {
	return f.result, nil
}

// ── Almacenamiento en memoria con rollback ──

type memStore struct {
	orders            map[string]entity.Order
	invoices          []*entity.Invoice
	requests          []*entity.AuthorizationRequest
	responses         []*entity.AuthorizationResponse
	failInvoiceCreate error
}

func newMemStore() *memStore {
	return &memStore{orders: map[string]entity.Order{}}
}

type memSnapshot struct {
	orders    map[string]entity.Order
	invoices  []*entity.Invoice
	requests  []*entity.AuthorizationRequest
	responses []*entity.AuthorizationResponse
}

// atomic corre fn y, si falla, restaura el estado previo.
func (s *memStore) atomic(fn func() error) error {
	snap := memSnapshot{
		orders:    make(map[string]entity.Order, len(s.orders)),
		invoices:  append([]*entity.Invoice(nil), s.invoices...),
		requests:  append([]*entity.AuthorizationRequest(nil), s.requests...),
		responses: append([]*entity.AuthorizationResponse(nil), s.responses...),
	}
	for k, v := range s.orders {
		snap.orders[k] = v
	}
	if err := fn(); err != nil {
		s.orders, s.invoices, s.requests, s.responses = snap.orders, snap.invoices, snap.requests, snap.responses
		return err
	}
	return nil
}

func (s *memStore) GetByOrder(_ context.Context, orderNumber, deliveryNote string) (*entity.Order, error) {
	for _, o := range s.orders {
		if o.OrderNumber == orderNumber && o.DeliveryNote == deliveryNote {
			o := o
			return &o, nil
		}
	}
	return nil, nil
}

func (s *memStore) Create(_ context.Context, o *entity.Order) error {
	s.orders[o.ID] = *o
	return nil
}

func (s *memStore) UpdateStatus(_ context.Context, id, status, reprocessed string) error {
	o, ok := s.orders[id]
	if !ok {
		return errors.New("orden inexistente")
	}
	o.Status, o.Reprocessed = status, reprocessed
	s.orders[id] = o
	return nil
}

func (s *memStore) MarkReportSaved(_ context.Context, id string) error {
	o := s.orders[id]
	o.ReportSaved = true
	s.orders[id] = o
	return nil
}

func (s *memStore) CountBlockingByKey(_ context.Context, key entity.ReceiptKey) (int, error) {
	n := 0
	for _, inv := range s.invoices {
		if inv.Status == entity.InvoiceStatusPending &&
			inv.PointOfSale == key.PointOfSale && inv.InvoiceType == key.ReceiptType &&
			inv.InvoiceLetter == key.ReceiptLetter {
			n++
		}
	}
	for _, o := range s.orders {
		if o.Status == entity.OrderStatusApproved && !o.ReportSaved &&
			o.PointOfSale == key.PointOfSale && o.ReceiptType == key.ReceiptType &&
			o.ReceiptLetter == key.ReceiptLetter {
			n++
		}
	}
	return n, nil
}

func (s *memStore) CountUnfinishedByOrder(_ context.Context, orderNumber, deliveryNote string) (int, error) {
	n := 0
	for _, o := range s.orders {
		if o.OrderNumber == orderNumber && o.DeliveryNote == deliveryNote &&
			o.Status == entity.OrderStatusApproved && !o.ReportSaved {
			n++
		}
	}
	return n, nil
}

// Consultas de facturas; el Create de facturas está en invoiceRepo.

func (s *memStore) GetByNumber(_ context.Context, number string) (*entity.Invoice, error) {
	for _, inv := range s.invoices {
		if inv.InvoiceNumber == number {
			return inv, nil
		}
	}
	return nil, nil
}

func (s *memStore) CountAll(context.Context) (int, error) { return len(s.invoices), nil }

func (s *memStore) CountByNumber(_ context.Context, number, invoiceType string) (int, error) {
	n := 0
	for _, inv := range s.invoices {
		if inv.InvoiceNumber == number && (invoiceType == "" || inv.InvoiceType == invoiceType) {
			n++
		}
	}
	return n, nil
}

func (s *memStore) CreateRequest(_ context.Context, r *entity.AuthorizationRequest) error {
	s.requests = append(s.requests, r)
	return nil
}

func (s *memStore) CreateResponse(_ context.Context, r *entity.AuthorizationResponse) error {
	s.responses = append(s.responses, r)
	return nil
}

func (s *memStore) ListByOrder(_ context.Context, orderID string) ([]*entity.AuthorizationResponse, error) {
	var out []*entity.AuthorizationResponse
	for _, r := range s.responses {
		if r.OrderID == orderID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *memStore) order(orderNumber string) (entity.Order, bool) {
	for _, o := range s.orders {
		if o.OrderNumber == orderNumber {
			return o, true
		}
	}
	return entity.Order{}, false
}

// memStore no puede implementar dos métodos Create; el puerto de facturas va en un adaptador.
type invoiceRepo struct{ *memStore }

func (r invoiceRepo) Create(_ context.Context, inv *entity.Invoice) error {
	if r.failInvoiceCreate != nil {
		return r.failInvoiceCreate
	}
	r.invoices = append(r.invoices, inv)
	return nil
}

type txRunner struct{ s *memStore }

// RunAuthorization falla con el contexto cancelado, como una transacción pgx.
func (t txRunner) RunAuthorization(ctx context.Context, fn func(repository.OrderRepository, repository.InvoiceRepository, repository.AuthorizationLogRepository) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return t.s.atomic(func() error {
		return fn(t.s, invoiceRepo{t.s}, t.s)
	})
}

// ── Lock ──

type fakeLocker struct {
	locked, unlocked int
	keys             []entity.ReceiptKey
}

func (l *fakeLocker) Lock(_ context.Context, key entity.ReceiptKey) (func(), error) {
	l.locked++
	l.keys = append(l.keys, key)
	return func() { l.unlocked++ }, nil
}

// ── AFIP ──

type fakeDomestic struct {
	last    int64
	resp    *afip.FECAEResponse
	err     error
	calls   int
	lastReq *afip.FECAERequest
	// during se ejecuta dentro de Authorize (p. ej. el llamador cancela).
	during func()
}

func (f *fakeDomestic) LastAuthorized(context.Context, int, int) (int64, error) { return f.last, nil }

func (f *fakeDomestic) Authorize(_ context.Context, req *afip.FECAERequest) (*afip.FECAEResponse, error) {
	f.calls++
	f.lastReq = req
	if f.during != nil {
		f.during()
	}
	return f.resp, f.err
}

type fakeExport struct {
	last, lastID int64
	resp         *afip.FEXResponseAuthorize
	calls        int
	lastReq      *afip.FEXRequest
}

func (f *fakeExport) LastAuthorized(context.Context, int, int) (int64, error) { return f.last, nil }
func (f *fakeExport) LastID(context.Context) (int64, error)                   { return f.lastID, nil }

func (f *fakeExport) Authorize(_ context.Context, req *afip.FEXRequest) (*afip.FEXResponseAuthorize, error) {
	f.calls++
	f.lastReq = req
	return f.resp, nil
}

// ── Reporte y avisos ──

type fakeReports struct{ generated []string }

func (f *fakeReports) Generate(ctx context.Context, inv *entity.Invoice) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f.generated = append(f.generated, inv.InvoiceNumber)
	return "/tmp/" + inv.InvoiceNumber + ".pdf", nil
}

type fakeNotifier struct{ messages []string }

func (f *fakeNotifier) Notify(_ context.Context, _ string, message string) {
	f.messages = append(f.messages, message)
}
