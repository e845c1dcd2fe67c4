package billing

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/factura-afip/internal/application/dto"
	"github.com/jhoicas/factura-afip/internal/domain"
	"github.com/jhoicas/factura-afip/internal/domain/cae"
	"github.com/jhoicas/factura-afip/internal/domain/entity"
	"github.com/jhoicas/factura-afip/internal/domain/repository"
	"github.com/jhoicas/factura-afip/pkg/afip"
	"github.com/jhoicas/factura-afip/pkg/logger"
)

// Config parámetros del emisor para el caso de uso.
type Config struct {
	CompanyCUIT          string
	DocType              int // DocTipo del comprador (80 = CUIT)
	EnforceSequenceCheck bool
	ReportBaseURL        string
}

// Deps colaboradores del caso de uso.
type Deps struct {
	ERP      repository.ERPRepository
	Taxes    repository.TaxCalculator
	Orders   repository.OrderRepository
	Invoices repository.InvoiceRepository
	TxRunner AuthorizationTxRunner
	Locker   KeyLocker
	Domestic DomesticAuthority
	Export   ExportAuthority
	Tables   *cae.CodeTables
	Reports  ReportGenerator
	Notifier AdminNotifier
	Log      *logger.Logger
	Now      func() time.Time
}

// RequestCAEUseCase valida una orden sin CAE, pide la autorización a AFIP y registra la factura.
type RequestCAEUseCase struct {
	erp      repository.ERPRepository
	taxes    repository.TaxCalculator
	txRunner AuthorizationTxRunner
	locker   KeyLocker
	guard    *Guard
	domestic protocolVariant
	export   protocolVariant
	reports  ReportGenerator
	notifier AdminNotifier
	log      *logger.Logger
	now      func() time.Time
	cfg      Config
}

// NewRequestCAEUseCase construye el caso de uso.
func NewRequestCAEUseCase(d Deps, cfg Config) *RequestCAEUseCase {
	if cfg.DocType == 0 {
		cfg.DocType = afip.DocTypeCUIT
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return &RequestCAEUseCase{
		erp:      d.ERP,
		taxes:    d.Taxes,
		txRunner: d.TxRunner,
		locker:   d.Locker,
		guard:    NewGuard(d.Orders, d.Invoices),
		domestic: &domesticVariant{authority: d.Domestic, tables: d.Tables, companyCUIT: cfg.CompanyCUIT, docType: cfg.DocType},
		export:   &exportVariant{authority: d.Export, tables: d.Tables, companyCUIT: cfg.CompanyCUIT},
		reports:  d.Reports,
		notifier: d.Notifier,
		log:      d.Log.Named("request_cae"),
		now:      d.Now,
		cfg:      cfg,
	}
}

func (uc *RequestCAEUseCase) variantFor(letter string) protocolVariant {
	if strings.EqualFold(strings.TrimSpace(letter), afip.LetterE) {
		return uc.export
	}
	return uc.domestic
}

// RequestCAE corre la solicitud completa. Los rechazos (R) y las validaciones fallidas (E) vuelven
// como resultado; sólo los errores de infraestructura y el CAE no registrado vuelven como error.
func (uc *RequestCAEUseCase) RequestCAE(ctx context.Context, in dto.RequestCAERequest) (*dto.CAEResultResponse, error) {
	if strings.TrimSpace(in.OrderNumber) == "" {
		return nil, fmt.Errorf("%w: número de orden requerido", domain.ErrInvalidInput)
	}
	if !in.ExchangeRate.IsPositive() {
		return nil, fmt.Errorf("%w: la cotización debe ser mayor a cero", domain.ErrInvalidInput)
	}
	receiptDate, err := in.ReceiptDate(uc.now())
	if err != nil {
		return nil, fmt.Errorf("%w: fecha del comprobante: %v", domain.ErrInvalidInput, err)
	}

	header, err := uc.erp.GetOrderHeader(ctx, in.OrderNumber)
	if err != nil {
		return nil, fmt.Errorf("solicitud CAE: cabecera de la orden: %w", err)
	}
	if header == nil {
		return nil, fmt.Errorf("%w: orden %s del cliente %s", domain.ErrNotFound, in.OrderNumber, in.ClientCode)
	}
	header.Normalize()

	correlationID := uuid.New().String()
	log := uc.log.With().
		Str("correlation_id", correlationID).
		Str("order_number", header.OrderNumber).
		Str("pos", header.PointOfSale).
		Str("receipt_type", header.ReceiptType).
		Str("receipt_letter", header.ReceiptLetter).
		Logger()

	result := &dto.CAEResultResponse{
		OrderNumber:  in.OrderNumber,
		ClientCode:   in.ClientCode,
		DeliveryNote: in.DeliveryNote,
		OrderType:    header.OrderType,
		UserID:       in.UserID,
		Result:       afip.ResultRejected,
	}
	if !header.NextInvoiceDate.IsZero() {
		result.LastInvoiceDate = header.NextInvoiceDate.Format(dto.DateLayout)
	}
	invalid := func(f *cae.Failure) (*dto.CAEResultResponse, error) {
		log.Info().Str("reason", string(f.Reason)).Msg(f.Message)
		result.Result = afip.ResultInvalid
		result.ValidationReason = string(f.Reason)
		result.ValidationMessage = f.Message
		return result, nil
	}

	// ── Validación ──
	if f := cae.ValidateHeader(header); f != nil {
		return invalid(f)
	}
	client, err := uc.erp.GetClient(ctx, in.ClientCode, in.OrderNumber, header.OrderType)
	if err != nil {
		return nil, fmt.Errorf("solicitud CAE: datos del cliente: %w", err)
	}
	if client == nil {
		return nil, fmt.Errorf("%w: cliente %s de la orden %s", domain.ErrNotFound, in.ClientCode, in.OrderNumber)
	}
	lines, err := uc.erp.GetLines(ctx, in.OrderNumber, in.DeliveryNote, header.OrderType)
	if err != nil {
		return nil, fmt.Errorf("solicitud CAE: líneas: %w", err)
	}
	if f := cae.ValidateLines(header, lines); f != nil {
		return invalid(f)
	}
	taxes, err := uc.taxes.CalculateTaxes(ctx, header, lines)
	if err != nil {
		return nil, fmt.Errorf("solicitud CAE: impuestos: %w", err)
	}
	if f := cae.ValidateTaxes(header, taxes); f != nil {
		return invalid(f)
	}
	var equipments []entity.Equipment
	if header.OrderType == afip.OrderTypeContractService {
		if equipments, err = uc.erp.GetEquipments(ctx, in.OrderNumber); err != nil {
			return nil, fmt.Errorf("solicitud CAE: equipos: %w", err)
		}
		if f := cae.ValidateEquipments(header, equipments); f != nil {
			return invalid(f)
		}
	}

	// ── Sección crítica por (punto de venta, tipo, letra) ──
	unlock, err := uc.locker.Lock(ctx, header.Key())
	if err != nil {
		return nil, fmt.Errorf("solicitud CAE: lock %s: %w", header.Key(), err)
	}
	defer unlock()

	allowed, err := uc.guard.CanRequestCae(ctx, header.PointOfSale, header.ReceiptType, header.ReceiptLetter, header.OrderNumber, header.DeliveryNoteNumber)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return invalid(cae.Fail(cae.ReasonPendingClosure))
	}

	snap := &orderSnapshot{
		cmd:         in,
		receiptDate: receiptDate,
		header:      header,
		client:      client,
		lines:       lines,
		equipments:  equipments,
		taxes:       taxes,
	}
	variant := uc.variantFor(header.ReceiptLetter)
	req, err := variant.build(ctx, snap)
	if err != nil {
		var f *cae.Failure
		switch {
		case errors.As(err, &f):
			return invalid(f)
		case errors.Is(err, domain.ErrCodeNotMapped):
			return invalid(cae.Failf(cae.ReasonCodeNotMapped, err.Error()))
		}
		log.Error().Err(err).Str("variant", variant.name()).Msg("no se pudo armar la solicitud a AFIP")
		return result, nil
	}

	if uc.cfg.EnforceSequenceCheck {
		ok, err := uc.guard.ValidInvoiceNumber(ctx, header.ReceiptLetter, header.PointOfSale, req.sequence-1, header.ReceiptType)
		if err != nil {
			return nil, err
		}
		if !ok {
			return invalid(cae.Failf(cae.ReasonSequenceMismatch, fmt.Sprintf("Último número AFIP: %d.", req.sequence-1)))
		}
	}

	// ── Registro de la solicitud ──
	reqLog := &entity.AuthorizationRequest{
		ID:            uuid.New().String(),
		CorrelationID: correlationID,
		Variant:       req.variant,
		PointOfSale:   req.pointOfSale,
		ReceiptType:   req.receiptType,
		Sequence:      req.sequence,
		Payload:       req.payload(),
		CreatedAt:     uc.now(),
	}
	order, err := uc.registerRequest(ctx, header, reqLog)
	if err != nil {
		return nil, fmt.Errorf("solicitud CAE: registrar solicitud: %w", err)
	}

	// Desde aquí AFIP puede haber asignado número: el flujo termina aunque el llamador cancele.
	ctx = context.WithoutCancel(ctx)
	started := uc.now()
	out, sendErr := variant.submit(ctx, req)
	respLog := &entity.AuthorizationResponse{
		ID:           uuid.New().String(),
		RequestID:    reqLog.ID,
		OrderID:      order.ID,
		Result:       out.result,
		Reprocessed:  out.reprocessed,
		CAE:          out.cae,
		Errors:       out.errors,
		Observations: out.observations,
		Payload:      out.payload,
		DurationMS:   uc.now().Sub(started).Milliseconds(),
		CreatedAt:    uc.now(),
	}
	if due, err := out.dueDate(); err == nil {
		respLog.CAEDueDate = due
	}
	if sendErr != nil {
		respLog.TransportError = sendErr.Error()
		log.Error().Err(sendErr).Int64("sequence", req.sequence).
			Msg("AFIP sin respuesta: resultado desconocido, verificar el último comprobante antes de reintentar")
	}

	if out.present {
		result.Result = out.result
		result.Reprocessed = out.reprocessed
	}
	result.CAE = out.cae
	result.CAEDueDate = out.caeDueDate
	result.Errors = toMessages(out.errors)
	result.Observations = toMessages(out.observations)

	if !out.approved() {
		if err := uc.registerRejection(ctx, order, respLog, out); err != nil {
			return nil, fmt.Errorf("solicitud CAE: registrar respuesta: %w", err)
		}
		if sendErr == nil {
			log.Warn().Str("result", out.result).Interface("errors", out.errors).Msg("AFIP no aprobó el comprobante")
		}
		return result, nil
	}

	// ── Aprobado: factura, reporte y cierre en una transacción ──
	inv, recon, err := uc.finalize(ctx, variant, snap, req, out, order, respLog)
	if err != nil {
		number := cae.InvoiceNumber(header.ReceiptLetter, header.PointOfSale, req.sequence)
		if inv != nil {
			number = inv.InvoiceNumber
		}
		if salvageErr := uc.salvage(ctx, order, respLog, out); salvageErr != nil {
			log.Error().Err(salvageErr).Msg("no se pudo registrar la respuesta aprobada")
		}
		log.Error().Err(err).Str("cae", out.cae).Str("invoice_number", number).
			Msg("CAE obtenido pero no registrado: requiere conciliación manual")
		return nil, &UnrecordedCAEError{OrderNumber: header.OrderNumber, InvoiceNumber: number, CAE: out.cae, Err: err}
	}

	if !recon.Balanced() {
		log.Warn().Str("stored", recon.Stored.String()).Str("calculated", recon.Calculated.String()).
			Bool("applied", recon.Applied).Msg("diferencia de redondeo en pesos")
		uc.notifier.Notify(ctx, header.OrderNumber, recon.Message())
	}

	result.InvoiceNumber = inv.InvoiceNumber
	result.ReportURL = strings.TrimRight(uc.cfg.ReportBaseURL, "/") + cae.ReportURL(header.ReceiptType, inv.InvoiceNumber)
	result.EmailData = emailData(header, client, inv.InvoiceNumber, in)
	log.Info().Str("cae", inv.CAE).Str("invoice_number", inv.InvoiceNumber).Msg("CAE obtenido")
	return result, nil
}

// CanRequest vista previa del guard para una orden (sin lock).
func (uc *RequestCAEUseCase) CanRequest(ctx context.Context, orderNumber string) (*dto.CanRequestCAEResponse, error) {
	header, err := uc.erp.GetOrderHeader(ctx, orderNumber)
	if err != nil {
		return nil, fmt.Errorf("cabecera de la orden: %w", err)
	}
	if header == nil {
		return nil, fmt.Errorf("%w: orden %s", domain.ErrNotFound, orderNumber)
	}
	header.Normalize()
	allowed, err := uc.guard.CanRequestCae(ctx, header.PointOfSale, header.ReceiptType, header.ReceiptLetter, header.OrderNumber, header.DeliveryNoteNumber)
	if err != nil {
		return nil, err
	}
	return &dto.CanRequestCAEResponse{
		OrderNumber:  header.OrderNumber,
		DeliveryNote: header.DeliveryNoteNumber,
		PointOfSale:  afip.PointOfSale(header.PointOfSale),
		ReceiptType:  header.ReceiptType,
		Letter:       header.ReceiptLetter,
		Allowed:      allowed,
	}, nil
}

// registerRequest crea la orden local si no existe y registra la solicitud.
func (uc *RequestCAEUseCase) registerRequest(ctx context.Context, h *entity.OrderHeader, reqLog *entity.AuthorizationRequest) (*entity.Order, error) {
	var order *entity.Order
	err := uc.txRunner.RunAuthorization(ctx, func(orders repository.OrderRepository, _ repository.InvoiceRepository, logs repository.AuthorizationLogRepository) error {
		o, err := orders.GetByOrder(ctx, h.OrderNumber, h.DeliveryNoteNumber)
		if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if o == nil {
			now := uc.now()
			o = &entity.Order{
				ID:            uuid.New().String(),
				OrderNumber:   h.OrderNumber,
				OrderType:     h.OrderType,
				ClientCode:    h.ClientCode,
				DeliveryNote:  h.DeliveryNoteNumber,
				PointOfSale:   afip.PointOfSale(h.PointOfSale),
				ReceiptType:   h.ReceiptType,
				ReceiptLetter: h.ReceiptLetter,
				Status:        entity.OrderStatusNone,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			if err := orders.Create(ctx, o); err != nil {
				return err
			}
		}
		order = o
		reqLog.OrderID = o.ID
		return logs.CreateRequest(ctx, reqLog)
	})
	return order, err
}

// registerRejection registra la respuesta y, si AFIP contestó, espeja su resultado en la orden.
func (uc *RequestCAEUseCase) registerRejection(ctx context.Context, order *entity.Order, respLog *entity.AuthorizationResponse, out authorityOutcome) error {
	return uc.txRunner.RunAuthorization(ctx, func(orders repository.OrderRepository, _ repository.InvoiceRepository, logs repository.AuthorizationLogRepository) error {
		if err := logs.CreateResponse(ctx, respLog); err != nil {
			return err
		}
		if !out.present {
			return nil
		}
		return orders.UpdateStatus(ctx, order.ID, out.result, out.reprocessed)
	})
}

// finalize arma la factura, concilia en pesos y, en una sola transacción, registra la respuesta,
// espeja el estado, inserta la factura, genera el reporte y marca ReportSaved.
func (uc *RequestCAEUseCase) finalize(ctx context.Context, variant protocolVariant, snap *orderSnapshot, req *preparedRequest,
	out authorityOutcome, order *entity.Order, respLog *entity.AuthorizationResponse) (*entity.Invoice, cae.Reconciliation, error) {
	h := snap.header
	if strings.EqualFold(h.ReceiptLetter, afip.LetterB) {
		typeB, err := uc.erp.GetLinesTypeB(ctx, h.OrderNumber, h.DeliveryNoteNumber, h.OrderType)
		if err != nil {
			return nil, cae.Reconciliation{}, fmt.Errorf("líneas tipo B: %w", err)
		}
		withTypeB := *snap
		withTypeB.lines = typeB
		snap = &withTypeB
	}

	inv, err := variant.buildInvoice(snap, req, out)
	if err != nil {
		return nil, cae.Reconciliation{}, err
	}
	recon := cae.ReconcilePesos(inv)

	err = uc.txRunner.RunAuthorization(ctx, func(orders repository.OrderRepository, invoices repository.InvoiceRepository, logs repository.AuthorizationLogRepository) error {
		if err := logs.CreateResponse(ctx, respLog); err != nil {
			return fmt.Errorf("registrar respuesta: %w", err)
		}
		if err := orders.UpdateStatus(ctx, order.ID, out.result, out.reprocessed); err != nil {
			return fmt.Errorf("estado de la orden: %w", err)
		}
		if err := inv.Validate(); err != nil {
			return err
		}
		if err := invoices.Create(ctx, inv); err != nil {
			return fmt.Errorf("insertar factura: %w", err)
		}
		if _, err := uc.reports.Generate(ctx, inv); err != nil {
			return fmt.Errorf("generar reporte: %w", err)
		}
		return orders.MarkReportSaved(ctx, order.ID)
	})
	return inv, recon, err
}

// salvage deja registrada la aprobación con ReportSaved = false para que el guard bloquee
// nuevas solicitudes hasta la conciliación manual.
func (uc *RequestCAEUseCase) salvage(ctx context.Context, order *entity.Order, respLog *entity.AuthorizationResponse, out authorityOutcome) error {
	return uc.txRunner.RunAuthorization(ctx, func(orders repository.OrderRepository, _ repository.InvoiceRepository, logs repository.AuthorizationLogRepository) error {
		if err := logs.CreateResponse(ctx, respLog); err != nil {
			return err
		}
		return orders.UpdateStatus(ctx, order.ID, afip.ResultApproved, out.reprocessed)
	})
}

func emailData(h *entity.OrderHeader, c *entity.Client, invoiceNumber string, in dto.RequestCAERequest) *dto.EmailData {
	e := &dto.EmailData{
		ClientCode:    h.ClientCode,
		BusinessName:  c.BusinessName,
		DeliveryNotes: h.DeliveryNotes,
		PurchaseOrder: h.PurchaseOrder,
		ReceiptType:   h.ReceiptType,
		ReceiptNumber: invoiceNumber,
		UserFullName:  in.UserFullName,
		UserEmail:     in.UserEmail,
		EmailType:     dto.EmailTypeClientNotification,
	}
	if !h.OrderDate.IsZero() {
		e.OrderDate = h.OrderDate.Format(dto.DateLayout)
	}
	return e
}

func toMessages(msgs []entity.AuthorityMessage) []dto.Message {
	if len(msgs) == 0 {
		return nil
	}
	out := make([]dto.Message, len(msgs))
	for i, m := range msgs {
		out[i] = dto.Message{Code: m.Code, Message: m.Message}
	}
	return out
}
