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

const wsfexNS = "http://ar.gov.afip.dif.fexv1/"

type fexAuth struct {
	Token string `xml:"Token"`
	Sign  string `xml:"Sign"`
	Cuit  int64  `xml:"Cuit"`
}

// fexLastCMPAuth FEXGetLast_CMP recibe punto de venta y tipo dentro de Auth.
type fexLastCMPAuth struct {
	Token    string `xml:"Token"`
	Sign     string `xml:"Sign"`
	Cuit     int64  `xml:"Cuit"`
	PtoVenta int    `xml:"Pto_venta"`
	CbteTipo int    `xml:"Cbte_Tipo"`
}

// WSFEXClient cliente WSFEXv1 (comprobantes de exportación E).
type WSFEXClient struct {
	soap    *soapClient
	tickets TicketSource
	cuit    int64
}

// NewWSFEXClient construye el cliente para el CUIT emisor.
func NewWSFEXClient(httpClient *http.Client, url string, timeout time.Duration, tickets TicketSource, cuit int64) *WSFEXClient {
	return &WSFEXClient{soap: newSOAPClient(httpClient, url, timeout), tickets: tickets, cuit: cuit}
}

func (c *WSFEXClient) ticket(ctx context.Context) (Ticket, error) {
	return c.tickets.Ticket(ctx, ServiceWSFEX)
}

// fexError FEXErr con código 0 significa "sin error".
func fexError(op string, e *afip.FEXErr) error {
	if e == nil || e.ErrCode == 0 {
		return nil
	}
	return fmt.Errorf("wsfex %s: %d %s: %w", op, e.ErrCode, e.ErrMsg, domain.ErrAuthorityUnavailable)
}

type fexGetLastCMP struct {
	XMLName xml.Name       `xml:"FEXGetLast_CMP"`
	Xmlns   string         `xml:"xmlns,attr"`
	Auth    fexLastCMPAuth `xml:"Auth"`
}

// LastAuthorized último número autorizado para (punto de venta, tipo AFIP).
func (c *WSFEXClient) LastAuthorized(ctx context.Context, pointOfSale, receiptType int) (int64, error) {
	t, err := c.ticket(ctx)
	if err != nil {
		return 0, err
	}
	el, err := c.soap.call(ctx, wsfexNS+"FEXGetLast_CMP", &fexGetLastCMP{
		Xmlns: wsfexNS,
		Auth:  fexLastCMPAuth{Token: t.Token, Sign: t.Sign, Cuit: c.cuit, PtoVenta: pointOfSale, CbteTipo: receiptType},
	}, "FEXGetLast_CMPResult")
	if err != nil {
		return 0, err
	}
	var out afip.FEXGetLastCMPResponse
	if err := decode(el, &out); err != nil {
		return 0, err
	}
	if err := fexError("FEXGetLast_CMP", out.FEXErr); err != nil {
		return 0, err
	}
	if out.FEXResultLastCMP == nil {
		return 0, fmt.Errorf("wsfex FEXGetLast_CMP: respuesta vacía: %w", domain.ErrAuthorityUnavailable)
	}
	return out.FEXResultLastCMP.CbteNro, nil
}

type fexGetLastID struct {
	XMLName xml.Name `xml:"FEXGetLast_ID"`
	Xmlns   string   `xml:"xmlns,attr"`
	Auth    fexAuth  `xml:"Auth"`
}

// LastID último identificador de solicitud usado por el CUIT.
func (c *WSFEXClient) LastID(ctx context.Context) (int64, error) {
	t, err := c.ticket(ctx)
	if err != nil {
		return 0, err
	}
	el, err := c.soap.call(ctx, wsfexNS+"FEXGetLast_ID", &fexGetLastID{
		Xmlns: wsfexNS, Auth: fexAuth{Token: t.Token, Sign: t.Sign, Cuit: c.cuit},
	}, "FEXGetLast_IDResult")
	if err != nil {
		return 0, err
	}
	var out afip.FEXGetLastIDResponse
	if err := decode(el, &out); err != nil {
		return 0, err
	}
	if err := fexError("FEXGetLast_ID", out.FEXErr); err != nil {
		return 0, err
	}
	if out.FEXResultGet == nil {
		return 0, fmt.Errorf("wsfex FEXGetLast_ID: respuesta vacía: %w", domain.ErrAuthorityUnavailable)
	}
	return out.FEXResultGet.ID, nil
}

type fexAuthorize struct {
	XMLName xml.Name         `xml:"FEXAuthorize"`
	Xmlns   string           `xml:"xmlns,attr"`
	Auth    fexAuth          `xml:"Auth"`
	Cmp     *afip.FEXRequest `xml:"Cmp"`
}

// Authorize solicita el CAE de exportación. FEXErr se devuelve dentro de la respuesta.
func (c *WSFEXClient) Authorize(ctx context.Context, req *afip.FEXRequest) (*afip.FEXResponseAuthorize, error) {
	t, err := c.ticket(ctx)
	if err != nil {
		return nil, err
	}
	el, err := c.soap.call(ctx, wsfexNS+"FEXAuthorize", &fexAuthorize{
		Xmlns: wsfexNS, Auth: fexAuth{Token: t.Token, Sign: t.Sign, Cuit: c.cuit}, Cmp: req,
	}, "FEXAuthorizeResult")
	if err != nil {
		return nil, err
	}
	var out afip.FEXResponseAuthorize
	if err := decode(el, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
