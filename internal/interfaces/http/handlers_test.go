package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factura-afip/internal/application/billing"
	"github.com/jhoicas/factura-afip/internal/application/dto"
	"github.com/jhoicas/factura-afip/internal/domain"
	apphttp "github.com/jhoicas/factura-afip/internal/interfaces/http"
	"github.com/jhoicas/factura-afip/pkg/afip"
)

// ── Fakes ──

type fakeCAE struct {
	got    dto.RequestCAERequest
	result *dto.CAEResultResponse
	can    *dto.CanRequestCAEResponse
	err    error
}

func (f *fakeCAE) RequestCAE(_ context.Context, in dto.RequestCAERequest) (*dto.CAEResultResponse, error) {
	f.got = in
	return f.result, f.err
}

func (f *fakeCAE) CanRequest(_ context.Context, orderNumber string) (*dto.CanRequestCAEResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.got.OrderNumber = orderNumber
	return f.can, nil
}

type fakeInvoices struct {
	inv     *dto.InvoiceSummaryResponse
	history *dto.AuthorizationHistoryResponse
	gotNote string
}

func (f *fakeInvoices) GetInvoice(_ context.Context, number string) (*dto.InvoiceSummaryResponse, error) {
	if f.inv == nil || f.inv.InvoiceNumber != number {
		return nil, fmt.Errorf("%w: factura %s", domain.ErrNotFound, number)
	}
	return f.inv, nil
}

func (f *fakeInvoices) History(_ context.Context, orderNumber, deliveryNote string) (*dto.AuthorizationHistoryResponse, error) {
	f.gotNote = deliveryNote
	return f.history, nil
}

type fakeQuerier struct {
	resp *afip.FECompConsResponse
	err  error
}

func (f *fakeQuerier) QueryReceipt(context.Context, int, int, int64) (*afip.FECompConsResponse, error) {
	return f.resp, f.err
}

func newApp(cae *fakeCAE, inv *fakeInvoices, q *fakeQuerier) *fiber.App {
	app := fiber.New()
	apphttp.Router(app, apphttp.RouterDeps{
		RequestCAE: cae,
		Invoices:   inv,
		Receipts:   billing.NewReceiptQueryUseCase(q),
		JWTSecret:  testJWTSecret,
	})
	return app
}

func send(t *testing.T, app *fiber.App, method, path, body, role string) (*http.Response, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", tokenForRole(t, role))
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

// ── request-cae ──

func TestRequestCAE_CompletaUsuarioDesdeElToken(t *testing.T) {
	cae := &fakeCAE{result: &dto.CAEResultResponse{OrderNumber: "OV-100", Result: "A", CAE: "74123456789012"}}
	app := newApp(cae, &fakeInvoices{}, &fakeQuerier{})

	resp, body := send(t, app, http.MethodPost, "/api/orders-without-cae/request-cae",
		`{"order_number":"OV-100","client_code":"C001","delivery_note":"R-1","exchange_rate":"850.5","user_id":"otro"}`, "facturacion")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "A", body["result"])
	assert.Equal(t, testUserID, cae.got.UserID)
	assert.Equal(t, "ana@empresa.com", cae.got.UserEmail)
	assert.Equal(t, "Ana Pérez", cae.got.UserFullName)
	assert.True(t, cae.got.ExchangeRate.Equal(decimal.RequireFromString("850.5")))
}

func TestRequestCAE_RechazoVuelveComo200(t *testing.T) {
	cae := &fakeCAE{result: &dto.CAEResultResponse{Result: "R", Errors: []dto.Message{{Code: 10016, Message: "número"}}}}
	resp, body := send(t, newApp(cae, &fakeInvoices{}, &fakeQuerier{}), http.MethodPost,
		"/api/orders-without-cae/request-cae", `{"order_number":"OV-100"}`, "admin")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "R", body["result"])
}

func TestRequestCAE_RolConsultaNoPuedeSolicitar(t *testing.T) {
	cae := &fakeCAE{}
	resp, _ := send(t, newApp(cae, &fakeInvoices{}, &fakeQuerier{}), http.MethodPost,
		"/api/orders-without-cae/request-cae", `{"order_number":"OV-100"}`, "consulta")

	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Empty(t, cae.got.OrderNumber)
}

func TestRequestCAE_MapeoDeErrores(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("%w: orden", domain.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{domain.ValidationErrors{{Entity: "Invoice", Field: "CAE", Message: "requerido"}}, http.StatusBadRequest, "VALIDATION"},
		{&billing.UnrecordedCAEError{OrderNumber: "OV-100", CAE: "74123456789012", Err: errors.New("insert")}, http.StatusInternalServerError, "CAE_NOT_RECORDED"},
		{fmt.Errorf("wsfe: %w", domain.ErrAuthorityUnavailable), http.StatusBadGateway, "AFIP_UNAVAILABLE"},
		{errors.New("conexión cerrada"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, tc := range cases {
		app := newApp(&fakeCAE{err: tc.err}, &fakeInvoices{}, &fakeQuerier{})
		resp, body := send(t, app, http.MethodPost, "/api/orders-without-cae/request-cae", `{"order_number":"OV-100"}`, "admin")
		assert.Equal(t, tc.status, resp.StatusCode, tc.code)
		assert.Equal(t, tc.code, body["code"])
	}
}

func TestRequestCAE_CuerpoInvalido(t *testing.T) {
	app := newApp(&fakeCAE{}, &fakeInvoices{}, &fakeQuerier{})

	resp, body := send(t, app, http.MethodPost, "/api/orders-without-cae/request-cae", `{"order_number":`, "admin")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "INVALID_BODY", body["code"])

	resp, body = send(t, app, http.MethodPost, "/api/orders-without-cae/request-cae", `{}`, "admin")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "VALIDATION", body["code"])
}

// ── can-request / history / invoices ──

func TestCanRequest_DevuelveVistaPrevia(t *testing.T) {
	cae := &fakeCAE{can: &dto.CanRequestCAEResponse{OrderNumber: "OV-100", PointOfSale: "00005", Allowed: false}}
	resp, body := send(t, newApp(cae, &fakeInvoices{}, &fakeQuerier{}), http.MethodGet,
		"/api/orders-without-cae/can-request?order_number=OV-100", "", "consulta")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["allowed"])
	assert.Equal(t, "OV-100", cae.got.OrderNumber)

	resp, _ = send(t, newApp(cae, &fakeInvoices{}, &fakeQuerier{}), http.MethodGet,
		"/api/orders-without-cae/can-request", "", "consulta")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHistory_PasaElRemito(t *testing.T) {
	inv := &fakeInvoices{history: &dto.AuthorizationHistoryResponse{OrderNumber: "OV-100", Status: "A"}}
	resp, body := send(t, newApp(&fakeCAE{}, inv, &fakeQuerier{}), http.MethodGet,
		"/api/orders-without-cae/OV-100/history?delivery_note=R-1", "", "consulta")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "A", body["status"])
	assert.Equal(t, "R-1", inv.gotNote)
}

func TestInvoices_GetByNumber(t *testing.T) {
	inv := &fakeInvoices{inv: &dto.InvoiceSummaryResponse{InvoiceNumber: "A00005-00000043", CAE: "74123456789012"}}
	app := newApp(&fakeCAE{}, inv, &fakeQuerier{})

	resp, body := send(t, app, http.MethodGet, "/api/invoices/A00005-00000043", "", "consulta")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "74123456789012", body["cae"])

	resp, _ = send(t, app, http.MethodGet, "/api/invoices/A00005-00000099", "", "consulta")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// ── afip receipts ──

func TestReceipts_ConsultaAFIP(t *testing.T) {
	q := &fakeQuerier{resp: &afip.FECompConsResponse{CbteDesde: 43, CodAutor: "74123456789012", Resultado: "A"}}
	resp, body := send(t, newApp(&fakeCAE{}, &fakeInvoices{}, q), http.MethodGet, "/api/afip/receipts/1/5/43", "", "consulta")

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "74123456789012", body["cod_autorizacion"])
}

func TestReceipts_ParametrosInvalidos(t *testing.T) {
	app := newApp(&fakeCAE{}, &fakeInvoices{}, &fakeQuerier{})

	resp, _ := send(t, app, http.MethodGet, "/api/afip/receipts/uno/5/43", "", "consulta")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = send(t, app, http.MethodGet, "/api/afip/receipts/1/0/43", "", "consulta")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReceipts_NoEncontrado(t *testing.T) {
	q := &fakeQuerier{err: fmt.Errorf("%w: 1-5-99", domain.ErrNotFound)}
	resp, _ := send(t, newApp(&fakeCAE{}, &fakeInvoices{}, q), http.MethodGet, "/api/afip/receipts/1/5/99", "", "consulta")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
