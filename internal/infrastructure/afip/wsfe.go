package afip

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"time"

	"github.com/jhoicas/factura-afip/internal/domain"
	"github.com/jhoicas/factura-afip/pkg/afip"
)

const wsfeNS = "http://ar.gov.afip.dif.FEV1/"

// feAuth credenciales de cada operación WSFEv1.
type feAuth struct {
	Token string `xml:"Token"`
	Sign  string `xml:"Sign"`
	Cuit  int64  `xml:"Cuit"`
}

// WSFEClient cliente WSFEv1 (facturas, notas de débito y crédito A/B).
type WSFEClient struct {
	soap    *soapClient
	tickets TicketSource
	cuit    int64
}

// NewWSFEClient construye el cliente para el CUIT emisor.
func NewWSFEClient(httpClient *http.Client, url string, timeout time.Duration, tickets TicketSource, cuit int64) *WSFEClient {
	return &WSFEClient{soap: newSOAPClient(httpClient, url, timeout), tickets: tickets, cuit: cuit}
}

func (c *WSFEClient) auth(ctx context.Context) (feAuth, error) {
	t, err := c.tickets.Ticket(ctx, ServiceWSFE)
	if err != nil {
		return feAuth{}, err
	}
	return feAuth{Token: t.Token, Sign: t.Sign, Cuit: c.cuit}, nil
}

// ── FECompUltimoAutorizado ─────────────────────────────────────────────────

type feCompUltimoAutorizado struct {
	XMLName  xml.Name `xml:"FECompUltimoAutorizado"`
	Xmlns    string   `xml:"xmlns,attr"`
	Auth     feAuth   `xml:"Auth"`
	PtoVta   int      `xml:"PtoVta"`
	CbteTipo int      `xml:"CbteTipo"`
}

// LastAuthorized último número autorizado para (punto de venta, tipo AFIP).
func (c *WSFEClient) LastAuthorized(ctx context.Context, pointOfSale, receiptType int) (int64, error) {
	auth, err := c.auth(ctx)
	if err != nil {
		return 0, err
	}
	el, err := c.soap.call(ctx, wsfeNS+"FECompUltimoAutorizado",
		&feCompUltimoAutorizado{Xmlns: wsfeNS, Auth: auth, PtoVta: pointOfSale, CbteTipo: receiptType},
		"FECompUltimoAutorizadoResult")
	if err != nil {
		return 0, err
	}
	var out afip.FERecuperaLastCbteResponse
	if err := decode(el, &out); err != nil {
		return 0, err
	}
	if len(out.Errors) > 0 {
		return 0, fmt.Errorf("wsfe FECompUltimoAutorizado: %d %s: %w", out.Errors[0].Code, out.Errors[0].Msg, domain.ErrAuthorityUnavailable)
	}
	return out.CbteNro, nil
}

// ── FECAESolicitar ─────────────────────────────────────────────────────────

type feCAESolicitar struct {
	XMLName  xml.Name           `xml:"FECAESolicitar"`
	Xmlns    string             `xml:"xmlns,attr"`
	Auth     feAuth             `xml:"Auth"`
	FeCAEReq *afip.FECAERequest `xml:"FeCAEReq"`
}

// Authorize solicita el CAE. Los rechazos vienen en la respuesta, no como error.
func (c *WSFEClient) Authorize(ctx context.Context, req *afip.FECAERequest) (*afip.FECAEResponse, error) {
	auth, err := c.auth(ctx)
	if err != nil {
		return nil, err
	}
	el, err := c.soap.call(ctx, wsfeNS+"FECAESolicitar",
		&feCAESolicitar{Xmlns: wsfeNS, Auth: auth, FeCAEReq: req}, "FECAESolicitarResult")
	if err != nil {
		return nil, err
	}
	var out afip.FECAEResponse
	if err := decode(el, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ── FECompConsultar ────────────────────────────────────────────────────────

type feCompConsReq struct {
	CbteTipo int   `xml:"CbteTipo"`
	CbteNro  int64 `xml:"CbteNro"`
	PtoVta   int   `xml:"PtoVta"`
}

type feCompConsultar struct {
	XMLName       xml.Name      `xml:"FECompConsultar"`
	Xmlns         string        `xml:"xmlns,attr"`
	Auth          feAuth        `xml:"Auth"`
	FeCompConsReq feCompConsReq `xml:"FeCompConsReq"`
}

// QueryReceipt consulta un comprobante autorizado. domain.ErrNotFound si AFIP no lo conoce.
func (c *WSFEClient) QueryReceipt(ctx context.Context, receiptType, pointOfSale int, number int64) (*afip.FECompConsResponse, error) {
	auth, err := c.auth(ctx)
	if err != nil {
		return nil, err
	}
	el, err := c.soap.call(ctx, wsfeNS+"FECompConsultar", &feCompConsultar{
		Xmlns: wsfeNS, Auth: auth,
		FeCompConsReq: feCompConsReq{CbteTipo: receiptType, CbteNro: number, PtoVta: pointOfSale},
	}, "FECompConsultarResult")
	if err != nil {
		return nil, err
	}
	var out afip.FECompConsultaResponse
	if err := decode(el, &out); err != nil {
		return nil, err
	}
	if out.ResultGet == nil {
		if len(out.Errors) > 0 && out.Errors[0].Code != afip.ErrCodeReceiptNotFound {
			return nil, fmt.Errorf("wsfe FECompConsultar: %d %s: %w", out.Errors[0].Code, out.Errors[0].Msg, domain.ErrAuthorityUnavailable)
		}
		return nil, fmt.Errorf("wsfe FECompConsultar %d-%d-%d: %w", receiptType, pointOfSale, number, domain.ErrNotFound)
	}
	return out.ResultGet, nil
}
