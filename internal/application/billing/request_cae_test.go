package billing_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factura-afip/internal/application/billing"
	"github.com/jhoicas/factura-afip/internal/application/dto"
	"github.com/jhoicas/factura-afip/internal/domain"
	"github.com/jhoicas/factura-afip/internal/domain/cae"
	"github.com/jhoicas/factura-afip/internal/domain/entity"
	"github.com/jhoicas/factura-afip/pkg/afip"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

const companyCUIT = "30-00000000-7"

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

type harness struct {
	erp      *fakeERP
	taxes    *fakeTaxes
	store    *memStore
	locker   *fakeLocker
	domestic *fakeDomestic
	export   *fakeExport
	reports  *fakeReports
	notifier *fakeNotifier
	cfg      billing.Config
}

func newHarness() *harness {
	return &harness{
		erp: &fakeERP{
			header: &entity.OrderHeader{
				OrderNumber:            "OV-100",
				OrderType:              "OV",
				SalesOrderType:         1,
				ClientCode:             "C001",
				DeliveryNoteNumber:     "R-1",
				ReceiptType:            "0",
				ReceiptLetter:          "A",
				PointOfSale:            "5",
				AccountingDimension:    "110",
				ValidLinesSign:         true,
				CurrencyCode:           0,
				CurrencySymbol:         "$",
				CurrentDayExchangeRate: d("1"),
				OrderDiscount:          d("0"),
				InvoiceExpirationDays:  30,
				OrderDate:              time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC),
			},
			client: &entity.Client{
				Code:         "C001",
				BusinessName: "Cliente SA",
				Address1:     "Av. Siempreviva 742",
				CUIT:         "30-71234567-1",
				IVACondition: "RI",
				CountryCode:  "UY",
				CountryCUIT:  "50000000016",
			},
			lines: []entity.OrderLine{
				{LineNumber: 1, StockCode: "P-1", Description: "Producto", Quantity: d("2"), UnitPrice: d("50"), Amount: d("100")},
			},
		},
		taxes: &fakeTaxes{result: &entity.TaxResult{
			TaxBase:        d("100"),
			Total:          d("121"),
			NetAmountTotal: d("100"),
			IVATotal:       d("21"),
			IVAs:           []entity.IVATax{{Aliquot: d("21"), TaxBase: d("100"), Amount: d("21")}},
		}},
		store:    newMemStore(),
		locker:   &fakeLocker{},
		domestic: &fakeDomestic{last: 42, resp: approvedDomestic("74123456789012", "20240125", 43)},
		export:   &fakeExport{},
		reports:  &fakeReports{},
		notifier: &fakeNotifier{},
		cfg:      billing.Config{CompanyCUIT: companyCUIT, ReportBaseURL: "https://reportes.local"},
	}
}

func (h *harness) useCase() *billing.RequestCAEUseCase {
	tables := cae.NewCodeTables(&entity.CodeTableSet{
		ReceiptTypes: []entity.ReceiptTypeCode{
			{Letter: "A", Type: "0", AfipID: 1},
			{Letter: "B", Type: "0", AfipID: 6},
			{Letter: "E", Type: "0", AfipID: 19},
		},
		IVAs: []entity.IVACode{
			{Description: "IVA", Aliquot: d("0.21"), AfipID: 5},
			{Description: "IVA", Aliquot: d("0.105"), AfipID: 4},
		},
		Currencies:       []entity.CurrencyCode{{InternalCode: 2, AfipID: "DOL"}},
		Countries:        []entity.CountryCode{{InternalCode: "UY", AfipID: 225}},
		MeasurementUnits: []entity.MeasurementUnitCode{{InternalID: 1, AfipID: 7}},
	})
	return billing.NewRequestCAEUseCase(billing.Deps{
		ERP:      h.erp,
		Taxes:    h.taxes,
		Orders:   h.store,
		Invoices: invoiceRepo{h.store},
		TxRunner: txRunner{h.store},
		Locker:   h.locker,
		Domestic: h.domestic,
		Export:   h.export,
		Tables:   tables,
		Reports:  h.reports,
		Notifier: h.notifier,
		Now:      func() time.Time { return time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC) },
	}, h.cfg)
}

func command() dto.RequestCAERequest {
	return dto.RequestCAERequest{
		OrderNumber:  "OV-100",
		ClientCode:   "C001",
		DeliveryNote: "R-1",
		OrderType:    "OV",
		Date:         "2024-01-15",
		ExchangeRate: d("1"),
		UserID:       "u-1",
		UserEmail:    "operador@empresa.com",
		UserFullName: "Operador",
	}
}

func approvedDomestic(caeNumber, due string, number int64) *afip.FECAEResponse {
	return &afip.FECAEResponse{
		FeCabResp: &afip.FECabResponse{PtoVta: 5, CbteTipo: 1, CantReg: 1, Resultado: "A", Reproceso: "N"},
		FeDetResp: []afip.FECAEDetResponse{{
			CbteDesde: number, CbteHasta: number, Resultado: "A", CAE: caeNumber, CAEFchVto: due,
		}},
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Validaciones: resultado E sin llamar a AFIP
// ──────────────────────────────────────────────────────────────────────────────

func TestRequestCAE_SinLineasDevuelveE(t *testing.T) {
	h := newHarness()
	h.erp.lines = nil

	res, err := h.useCase().RequestCAE(context.Background(), command())
	require.NoError(t, err)
	assert.Equal(t, afip.ResultInvalid, res.Result)
	assert.Equal(t, string(cae.ReasonNoLines), res.ValidationReason)
	assert.Equal(t, "OV-100", res.OrderNumber)
	assert.Equal(t, "C001", res.ClientCode)
	assert.Equal(t, "R-1", res.DeliveryNote)
	assert.Zero(t, h.domestic.calls)
	assert.Zero(t, h.locker.locked)
	assert.Empty(t, h.store.requests)
}

func TestRequestCAE_LineaSinCantidadDevuelveE(t *testing.T) {
	h := newHarness()
	h.erp.lines = append(h.erp.lines, entity.OrderLine{LineNumber: 2, Quantity: d("0"), UnitPrice: d("10")})

	res, err := h.useCase().RequestCAE(context.Background(), command())
	require.NoError(t, err)
	assert.Equal(t, afip.ResultInvalid, res.Result)
	assert.Equal(t, string(cae.ReasonNoQuantity), res.ValidationReason)
	assert.Zero(t, h.domestic.calls)
}

func TestRequestCAE_SignoDeLineas(t *testing.T) {
	h := newHarness()
	h.erp.lines = []entity.OrderLine{{LineNumber: 1, Quantity: d("-1"), UnitPrice: d("-10"), Amount: d("10")}}

	res, err := h.useCase().RequestCAE(context.Background(), command())
	require.NoError(t, err)
	assert.Equal(t, string(cae.ReasonLinesSign), res.ValidationReason)

	h = newHarness()
	h.erp.header.ReceiptType = "2"
	h.erp.header.ValidLinesSign = false
	res, err = h.useCase().RequestCAE(context.Background(), command())
	require.NoError(t, err)
	assert.Equal(t, string(cae.ReasonLinesFixedPriceSign), res.ValidationReason)
	assert.Zero(t, h.domestic.calls)
}

func TestRequestCAE_PendienteDeCierreNoLlamaAFIP(t *testing.T) {
	h := newHarness()
	// Otra orden del mismo punto de venta/tipo/letra quedó aprobada sin reporte.
	h.store.orders["prev"] = entity.Order{
		ID: "prev", OrderNumber: "OV-099", DeliveryNote: "R-0",
		PointOfSale: "00005", ReceiptType: "0", ReceiptLetter: "A",
		Status: entity.OrderStatusApproved, ReportSaved: false,
	}

	res, err := h.useCase().RequestCAE(context.Background(), command())
	require.NoError(t, err)
	assert.Equal(t, afip.ResultInvalid, res.Result)
	assert.Equal(t, string(cae.ReasonPendingClosure), res.ValidationReason)
	assert.Zero(t, h.domestic.calls)
	assert.Equal(t, h.locker.locked, h.locker.unlocked, "el lock se libera")
}

func TestRequestCAE_FacturaPendienteBloquea(t *testing.T) {
	h := newHarness()
	h.store.invoices = append(h.store.invoices, &entity.Invoice{
		InvoiceNumber: "A00005-00000042", PointOfSale: "00005", InvoiceType: "0", InvoiceLetter: "A",
		Status: entity.InvoiceStatusPending,
	})

	res, err := h.useCase().RequestCAE(context.Background(), command())
	require.NoError(t, err)
	assert.Equal(t, string(cae.ReasonPendingClosure), res.ValidationReason)
	assert.Zero(t, h.domestic.calls)
}

func TestRequestCAE_CabeceraConRellenoRespetaElBloqueo(t *testing.T) {
	h := newHarness()
	// Columnas CHAR del ERP: el punto de venta y la letra llegan con espacios.
	h.erp.header.PointOfSale = "5 "
	h.erp.header.ReceiptType = "0 "
	h.erp.header.ReceiptLetter = "a "
	h.store.invoices = append(h.store.invoices, &entity.Invoice{
		InvoiceNumber: "A00005-00000042", PointOfSale: "00005", InvoiceType: "0", InvoiceLetter: "A",
		Status: entity.InvoiceStatusPending,
	})

	res, err := h.useCase().RequestCAE(context.Background(), command())
	require.NoError(t, err)
	assert.Equal(t, afip.ResultInvalid, res.Result)
	assert.Equal(t, string(cae.ReasonPendingClosure), res.ValidationReason)
	assert.Zero(t, h.domestic.calls)
	require.Len(t, h.locker.keys, 1)
	assert.Equal(t, entity.NewReceiptKey("00005", "0", "A"), h.locker.keys[0], "mismo lock que la cabecera sin relleno")

	preview, err := h.useCase().CanRequest(context.Background(), "OV-100")
	require.NoError(t, err)
	assert.False(t, preview.Allowed)
	assert.Equal(t, "00005", preview.PointOfSale)
}

func TestRequestCAE_CodigoSinEquivalencia(t *testing.T) {
	h := newHarness()
	h.erp.header.ReceiptLetter = "C"

	res, err := h.useCase().RequestCAE(context.Background(), command())
	require.NoError(t, err)
	assert.Equal(t, afip.ResultInvalid, res.Result)
	assert.Equal(t, string(cae.ReasonCodeNotMapped), res.ValidationReason)
	assert.Zero(t, h.domestic.calls)
}

func TestRequestCAE_ControlDeNumeracion(t *testing.T) {
	h := newHarness()
	h.cfg.EnforceSequenceCheck = true
	// El libro tiene facturas pero no la 42 que AFIP informa como última.
	h.store.invoices = append(h.store.invoices, &entity.Invoice{
		InvoiceNumber: "A00005-00000041", PointOfSale: "00005", InvoiceType: "0", InvoiceLetter: "A",
		Status: entity.InvoiceStatusClosed,
	})

	res, err := h.useCase().RequestCAE(context.Background(), command())
	require.NoError(t, err)
	assert.Equal(t, string(cae.ReasonSequenceMismatch), res.ValidationReason)
	assert.Zero(t, h.domestic.calls)
}

func TestRequestCAE_EntradaInvalida(t *testing.T) {
	h := newHarness()
	cmd := command()
	cmd.ExchangeRate = decimal.Zero

	_, err := h.useCase().RequestCAE(context.Background(), cmd)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	h.erp.header = nil
	_, err = h.useCase().RequestCAE(context.Background(), command())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// Doméstico
// ──────────────────────────────────────────────────────────────────────────────

func TestRequestCAE_RoundTripDomestico(t *testing.T) {
	h := newHarness()

	res, err := h.useCase().RequestCAE(context.Background(), command())
	require.NoError(t, err)
	assert.Equal(t, afip.ResultApproved, res.Result)
	assert.Equal(t, "74123456789012", res.CAE)
	assert.Equal(t, "20240125", res.CAEDueDate)
	assert.Equal(t, "A00005-00000043", res.InvoiceNumber)
	assert.Equal(t, "https://reportes.local/invoices/A00005-00000043.pdf", res.ReportURL)
	require.NotNil(t, res.EmailData)
	assert.Equal(t, "A00005-00000043", res.EmailData.ReceiptNumber)
	assert.Equal(t, dto.EmailTypeClientNotification, res.EmailData.EmailType)

	// Solicitud enviada.
	req := h.domestic.lastReq
	require.NotNil(t, req)
	assert.Equal(t, 1, req.FeCabReq.CantReg)
	assert.Equal(t, 5, req.FeCabReq.PtoVta)
	assert.Equal(t, 1, req.FeCabReq.CbteTipo)
	det := req.FeDetReq[0]
	assert.Equal(t, afip.ConceptProducts, det.Concepto)
	assert.Equal(t, afip.DocTypeCUIT, det.DocTipo)
	assert.Equal(t, int64(30712345671), det.DocNro)
	assert.Equal(t, int64(43), det.CbteDesde)
	assert.Equal(t, int64(43), det.CbteHasta)
	assert.Equal(t, "20240115", det.CbteFch)
	assert.Equal(t, "121", det.ImpTotal.String())
	assert.Equal(t, "PES", det.MonID)
	assert.Empty(t, det.FchServDesde, "productos no llevan período de servicio")
	require.Len(t, det.Iva, 1)
	assert.Equal(t, 5, det.Iva[0].ID)

	// Factura registrada.
	require.Len(t, h.store.invoices, 1)
	inv := h.store.invoices[0]
	assert.Equal(t, "A00005-00000043", inv.InvoiceNumber)
	assert.True(t, inv.GrandTotal.Equal(det.ImpTotal))
	assert.True(t, cae.CalculateAmountInPesos(inv).Equal(inv.AmountInPesos), "sin diferencia de redondeo")
	assert.Empty(t, h.notifier.messages)
	assert.Equal(t, "001", inv.InvoiceCode)
	assert.Len(t, inv.Barcode, 42)
	assert.Equal(t, time.Date(2024, 2, 14, 0, 0, 0, 0, time.UTC), inv.DueDate)
	assert.Equal(t, entity.InvoiceStatusPending, inv.Status)
	require.Len(t, inv.Taxes, 1)
	assert.Equal(t, "0.21", inv.Taxes[0].Aliquot.String())
	require.Len(t, inv.Lines, 1)
	assert.Equal(t, "P-1", inv.Lines[0].Code)

	// Orden cerrada, auditoría completa y reporte generado.
	order, ok := h.store.order("OV-100")
	require.True(t, ok)
	assert.Equal(t, entity.OrderStatusApproved, order.Status)
	assert.Equal(t, "N", order.Reprocessed)
	assert.True(t, order.ReportSaved)
	require.Len(t, h.store.requests, 1)
	require.Len(t, h.store.responses, 1)
	assert.Equal(t, h.store.requests[0].ID, h.store.responses[0].RequestID)
	assert.Equal(t, entity.VariantDomestic, h.store.requests[0].Variant)
	assert.Contains(t, h.store.requests[0].Payload, "<CbteDesde>43</CbteDesde>")
	assert.Equal(t, []string{"A00005-00000043"}, h.reports.generated)
	assert.Equal(t, 1, h.locker.unlocked)
}

func TestRequestCAE_CancelacionDelLlamadorNoCortaElRegistro(t *testing.T) {
	h := newHarness()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	// El cliente HTTP se desconecta mientras AFIP asigna el número.
	h.domestic.during = cancel

	res, err := h.useCase().RequestCAE(ctx, command())
	require.NoError(t, err)
	require.Error(t, ctx.Err())
	assert.Equal(t, afip.ResultApproved, res.Result)
	assert.Equal(t, "A00005-00000043", res.InvoiceNumber)

	require.Len(t, h.store.invoices, 1)
	assert.Equal(t, "74123456789012", h.store.invoices[0].CAE)
	order, ok := h.store.order("OV-100")
	require.True(t, ok)
	assert.Equal(t, entity.OrderStatusApproved, order.Status)
	assert.True(t, order.ReportSaved)
	require.Len(t, h.store.responses, 1)
	assert.Equal(t, []string{"A00005-00000043"}, h.reports.generated)
}

func TestRequestCAE_RechazoNoCreaFactura(t *testing.T) {
	h := newHarness()
	h.domestic.resp = &afip.FECAEResponse{
		FeCabResp: &afip.FECabResponse{Resultado: "R", Reproceso: "N"},
		FeDetResp: []afip.FECAEDetResponse{{
			Resultado:     "R",
			Observaciones: []afip.Message{{Code: 10016, Msg: "El numero o fecha del comprobante no se corresponde"}},
		}},
		Errors: []afip.Message{{Code: 600, Msg: "Validacion de token"}},
	}

	res, err := h.useCase().RequestCAE(context.Background(), command())
	require.NoError(t, err)
	assert.Equal(t, afip.ResultRejected, res.Result)
	assert.Empty(t, res.CAE)
	require.Len(t, res.Errors, 1)
	require.Len(t, res.Observations, 1)
	assert.Equal(t, 10016, res.Observations[0].Code)

	assert.Empty(t, h.store.invoices)
	order, ok := h.store.order("OV-100")
	require.True(t, ok)
	assert.Equal(t, entity.OrderStatusRejected, order.Status)
	assert.False(t, order.ReportSaved)
	require.Len(t, h.store.responses, 1)
	assert.Len(t, h.store.responses[0].Errors, 1)
	assert.Empty(t, h.reports.generated)
}

func TestRequestCAE_FallaDeTransporteEsR(t *testing.T) {
	h := newHarness()
	h.domestic.resp = nil
	h.domestic.err = errors.New("context deadline exceeded")

	res, err := h.useCase().RequestCAE(context.Background(), command())
	require.NoError(t, err)
	assert.Equal(t, afip.ResultRejected, res.Result)
	assert.Empty(t, res.CAE)

	require.Len(t, h.store.responses, 1)
	assert.Equal(t, "context deadline exceeded", h.store.responses[0].TransportError)
	order, _ := h.store.order("OV-100")
	assert.Equal(t, entity.OrderStatusNone, order.Status)
	assert.Empty(t, h.store.invoices)
}

func TestRequestCAE_FallaPostAprobacion(t *testing.T) {
	h := newHarness()
	h.store.failInvoiceCreate = errors.New("unique_violation")
	uc := h.useCase()

	res, err := uc.RequestCAE(context.Background(), command())
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, domain.ErrCAENotRecorded)
	var unrecorded *billing.UnrecordedCAEError
	require.ErrorAs(t, err, &unrecorded)
	assert.Equal(t, "74123456789012", unrecorded.CAE)
	assert.Equal(t, "A00005-00000043", unrecorded.InvoiceNumber)
	assert.EqualError(t, errors.Unwrap(err), "insertar factura: unique_violation")

	// La aprobación queda registrada y la orden bloquea nuevos intentos.
	assert.Empty(t, h.store.invoices)
	order, _ := h.store.order("OV-100")
	assert.Equal(t, entity.OrderStatusApproved, order.Status)
	assert.False(t, order.ReportSaved)
	require.Len(t, h.store.responses, 1)

	h.store.failInvoiceCreate = nil
	res, err = uc.RequestCAE(context.Background(), command())
	require.NoError(t, err)
	assert.Equal(t, string(cae.ReasonPendingClosure), res.ValidationReason)
	assert.Equal(t, 1, h.domestic.calls)
}

func TestRequestCAE_DiferenciaDeRedondeoVaAlPrimerIVA(t *testing.T) {
	h := newHarness()
	h.taxes.result = &entity.TaxResult{
		TaxBase:        d("100"),
		Total:          d("115.75"),
		NetAmountTotal: d("100"),
		IVATotal:       d("15.75"),
		IVAs: []entity.IVATax{
			{Aliquot: d("21"), TaxBase: d("50"), Amount: d("10.5")},
			{Aliquot: d("10.5"), TaxBase: d("50"), Amount: d("5.25")},
		},
	}
	cmd := command()
	cmd.ExchangeRate = d("1.333")

	res, err := h.useCase().RequestCAE(context.Background(), cmd)
	require.NoError(t, err)
	require.Equal(t, afip.ResultApproved, res.Result)

	inv := h.store.invoices[0]
	// 115.75 x 1.333 = 154.29; filas: 66.65 + 66.65 + 14.00 + 7.00 = 154.30.
	assert.Equal(t, "154.29", inv.AmountInPesos.StringFixed(2))
	assert.Equal(t, "13.99", inv.Taxes[0].TaxAmountInPesos.Decimal.StringFixed(2))
	assert.Equal(t, "7.00", inv.Taxes[1].TaxAmountInPesos.Decimal.StringFixed(2))
	require.Len(t, h.notifier.messages, 1)
	assert.Contains(t, h.notifier.messages[0], "154.29")
	assert.Contains(t, h.notifier.messages[0], "154.30")
}

func TestRequestCAE_FacturaBUsaLineasConIVA(t *testing.T) {
	h := newHarness()
	h.erp.header.ReceiptLetter = "B"
	h.erp.linesB = []entity.OrderLine{
		{LineNumber: 1, StockCode: "P-1", Description: "Producto IVA incl.", Quantity: d("2"), UnitPrice: d("60.50"), Amount: d("121")},
	}
	h.domestic.resp = approvedDomestic("74123456789099", "20240125", 43)

	res, err := h.useCase().RequestCAE(context.Background(), command())
	require.NoError(t, err)
	require.Equal(t, afip.ResultApproved, res.Result)
	assert.Equal(t, "B00005-00000043", res.InvoiceNumber)
	assert.Equal(t, 6, h.domestic.lastReq.FeCabReq.CbteTipo)

	inv := h.store.invoices[0]
	require.Len(t, inv.Lines, 1)
	assert.Equal(t, "121", inv.Lines[0].Amount.String())
	assert.Equal(t, "121", inv.LinesTotal.String())
}

func TestRequestCAE_ServiciosSinPeriodoDevuelveE(t *testing.T) {
	h := newHarness()
	h.erp.header.OrderType = afip.OrderTypeService
	h.erp.header.ServiceMaterial = afip.ServiceMaterialService

	res, err := h.useCase().RequestCAE(context.Background(), command())
	require.NoError(t, err)
	assert.Equal(t, string(cae.ReasonServicePeriod), res.ValidationReason)
	assert.Zero(t, h.domestic.calls)
}

func TestRequestCAE_ServiciosInformanPeriodo(t *testing.T) {
	h := newHarness()
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	h.erp.header.OrderType = afip.OrderTypeService
	h.erp.header.ServiceMaterial = afip.ServiceMaterialMixed
	h.erp.header.ContractFromDate = &from
	h.erp.header.ContractToDate = &to

	_, err := h.useCase().RequestCAE(context.Background(), command())
	require.NoError(t, err)
	det := h.domestic.lastReq.FeDetReq[0]
	assert.Equal(t, afip.ConceptProductsAndServices, det.Concepto)
	assert.Equal(t, "20240101", det.FchServDesde)
	assert.Equal(t, "20240131", det.FchServHasta)
	assert.Equal(t, "20240214", det.FchVtoPago)
}

// ──────────────────────────────────────────────────────────────────────────────
// Exportación
// ──────────────────────────────────────────────────────────────────────────────

func TestRequestCAE_Exportacion(t *testing.T) {
	h := newHarness()
	h.erp.header.ReceiptLetter = "E"
	h.erp.header.CurrencyCode = 2
	h.erp.header.CurrencySymbol = "U$S"
	h.erp.header.TermsOfDelivery = "FOB Buenos Aires"
	h.erp.lines = []entity.OrderLine{
		{LineNumber: 1, Description: "Equipo", Quantity: d("2"), UnitPrice: d("40"), Amount: d("80"), MeasurementUnit: 1},
		{LineNumber: 2, Description: "Flete", Quantity: d("1"), UnitPrice: d("20"), Amount: d("20")},
	}
	h.taxes.result = &entity.TaxResult{TaxBase: d("100"), Total: d("100"), ExemptTotal: d("100")}
	h.export.last = 7
	h.export.lastID = 100
	h.export.resp = &afip.FEXResponseAuthorize{
		FEXResultAuth: &afip.FEXResultAuth{
			ID: 101, Cae: "71234567890123", FchVencCae: "20240125", Resultado: "A", Reproceso: "N",
			CbteTipo: 19, PuntoVta: 5, CbteNro: 8,
		},
		FEXErr: &afip.FEXErr{ErrCode: 0, ErrMsg: "OK"},
	}
	cmd := command()
	cmd.ExchangeRate = d("850.5")
	cmd.ExportTypeID = afip.ExportTypeGoods
	cmd.ExportPermitID = afip.ExportPermitYes

	res, err := h.useCase().RequestCAE(context.Background(), cmd)
	require.NoError(t, err)
	assert.Zero(t, h.domestic.calls)
	require.Equal(t, afip.ResultApproved, res.Result)
	assert.Equal(t, "E00005-00000008", res.InvoiceNumber)
	assert.Empty(t, res.Errors, "FEXErr con código 0 no es un error")

	req := h.export.lastReq
	require.NotNil(t, req)
	assert.Equal(t, int64(101), req.ID)
	assert.Equal(t, int64(8), req.CbteNro)
	assert.Equal(t, 19, req.CbteTipo)
	assert.Equal(t, afip.PermitExisting, req.PermisoExistente)
	assert.Equal(t, 225, req.DstCmp)
	assert.Equal(t, int64(50000000016), req.CuitPaisCliente)
	assert.Equal(t, "DOL", req.MonedaID)
	assert.Equal(t, "FOB", req.Incoterms)
	assert.Equal(t, afip.LanguageSpanish, req.IdiomaCbte)
	require.Len(t, req.Items, 2)
	assert.Equal(t, 7, req.Items[0].ProUmed)
	assert.Equal(t, "2", req.Items[0].ProQty.String())
	assert.True(t, req.Items[1].ProQty.IsZero(), "sin unidad de medida: cantidad en cero")
	assert.True(t, req.Items[1].ProPrecioUni.IsZero())
	assert.Equal(t, "20", req.Items[1].ProTotalItem.String())

	inv := h.store.invoices[0]
	assert.Equal(t, "85050", inv.AmountInPesos.String())
	assert.Equal(t, afip.ExportPermitYes, inv.ExportPermit, "se guarda la elección del usuario, no el código AFIP")
	assert.Equal(t, afip.ExportTypeGoods, inv.ExportType)
	assert.Equal(t, "019", inv.InvoiceCode)
	assert.Contains(t, inv.Legend, "Total en pesos")
	assert.Empty(t, h.notifier.messages)
}

func TestRequestCAE_ExportacionDeServiciosSinPermiso(t *testing.T) {
	h := newHarness()
	h.erp.header.ReceiptLetter = "E"
	h.export.resp = &afip.FEXResponseAuthorize{FEXErr: &afip.FEXErr{ErrCode: 1014, ErrMsg: "Cuit pais inválido"}}
	cmd := command()
	cmd.ExportTypeID = afip.ExportTypeServices
	cmd.ExportPermitID = afip.ExportPermitYes

	res, err := h.useCase().RequestCAE(context.Background(), cmd)
	require.NoError(t, err)
	assert.Equal(t, afip.PermitNotApplies, h.export.lastReq.PermisoExistente)
	assert.Equal(t, afip.ResultRejected, res.Result)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 1014, res.Errors[0].Code)
	assert.Empty(t, h.store.invoices)
}

// ──────────────────────────────────────────────────────────────────────────────
// Guard
// ──────────────────────────────────────────────────────────────────────────────

func TestGuard_ValidInvoiceNumber(t *testing.T) {
	store := newMemStore()
	g := billing.NewGuard(store, invoiceRepo{store})
	ctx := context.Background()

	ok, err := g.ValidInvoiceNumber(ctx, "A", "5", 42, "0")
	require.NoError(t, err)
	assert.True(t, ok, "libro vacío")

	store.invoices = []*entity.Invoice{{InvoiceNumber: "A00005-00000042", InvoiceType: "0"}}
	ok, _ = g.ValidInvoiceNumber(ctx, "A", "5", 42, "0")
	assert.True(t, ok)

	ok, _ = g.ValidInvoiceNumber(ctx, "A", "5", 41, "0")
	assert.False(t, ok, "existe el siguiente")

	ok, _ = g.ValidInvoiceNumber(ctx, "A", "5", 42, "2")
	assert.False(t, ok, "otro tipo de comprobante")
}

func TestCanRequest_VistaPrevia(t *testing.T) {
	h := newHarness()
	res, err := h.useCase().CanRequest(context.Background(), "OV-100")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, "00005", res.PointOfSale)

	h.store.orders["x"] = entity.Order{ID: "x", OrderNumber: "OV-100", DeliveryNote: "R-1", Status: entity.OrderStatusApproved}
	res, err = h.useCase().CanRequest(context.Background(), "OV-100")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}
