// Package afip implementa los clientes SOAP de los web services de AFIP: WSAA (ticket de acceso),
// WSFEv1 (comprobantes A/B) y WSFEXv1 (exportación), más un simulador para desarrollo local.
package afip

import (
	"bytes"
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/beevik/etree"

	"github.com/jhoicas/factura-afip/internal/domain"
)

// ── Entornos ────────────────────────────────────────────────────────────────

const (
	EnvHomo = "homo"
	EnvProd = "prod"
	EnvDev  = "dev"
)

// Endpoints de cada servicio por entorno.
type Endpoints struct {
	WSAA  string
	WSFE  string
	WSFEX string
}

// EndpointsFor devuelve las URLs de homologación o producción.
func EndpointsFor(env string) (Endpoints, error) {
	switch env {
	case EnvHomo:
		return Endpoints{
			WSAA:  "https://wsaahomo.afip.gov.ar/ws/services/LoginCms",
			WSFE:  "https://wswhomo.afip.gov.ar/wsfev1/service.asmx",
			WSFEX: "https://wswhomo.afip.gov.ar/wsfexv1/service.asmx",
		}, nil
	case EnvProd:
		return Endpoints{
			WSAA:  "https://wsaa.afip.gov.ar/ws/services/LoginCms",
			WSFE:  "https://servicios1.afip.gov.ar/wsfev1/service.asmx",
			WSFEX: "https://servicios1.afip.gov.ar/wsfexv1/service.asmx",
		}, nil
	default:
		return Endpoints{}, fmt.Errorf("afip: entorno desconocido %q (usar 'homo', 'prod' o 'dev')", env)
	}
}

const (
	soapNS      = "http://schemas.xmlsoap.org/soap/envelope/"
	maxBodySize = 4 << 20
)

// ── Cliente SOAP genérico ──────────────────────────────────────────────────

// soapClient arma el envelope, hace el POST y devuelve el elemento de resultado.
type soapClient struct {
	httpClient *http.Client
	url        string
	timeout    time.Duration
}

func newSOAPClient(httpClient *http.Client, url string, timeout time.Duration) *soapClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &soapClient{httpClient: httpClient, url: url, timeout: timeout}
}

// call serializa body dentro de soap:Body y busca resultTag en la respuesta.
// Cualquier falla (red, timeout, HTTP, Fault, respuesta ilegible) envuelve domain.ErrAuthorityUnavailable.
func (c *soapClient) call(ctx context.Context, action string, body any, resultTag string) (*etree.Element, error) {
	payload, err := buildEnvelope(body)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("soap: crear request: %w", err)
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", `"`+action+`"`)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("soap %s: timeout o cancelación: %w: %w", action, domain.ErrAuthorityUnavailable, ctx.Err())
		}
		return nil, fmt.Errorf("soap %s: llamada HTTP fallida: %w: %w", action, domain.ErrAuthorityUnavailable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("soap %s: leer respuesta: %w: %w", action, domain.ErrAuthorityUnavailable, err)
	}

	result, err := parseEnvelope(raw, resultTag)
	if err != nil {
		return nil, fmt.Errorf("soap %s (HTTP %d): %w: %w", action, resp.StatusCode, domain.ErrAuthorityUnavailable, err)
	}
	return result, nil
}

// buildEnvelope envuelve el XML de body en soap:Envelope/soap:Body.
func buildEnvelope(body any) ([]byte, error) {
	inner, err := xml.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("soap: serializar body: %w", err)
	}
	content := etree.NewDocument()
	if err := content.ReadFromBytes(inner); err != nil {
		return nil, fmt.Errorf("soap: body inválido: %w", err)
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	env := doc.CreateElement("soap:Envelope")
	env.CreateAttr("xmlns:soap", soapNS)
	env.CreateElement("soap:Header")
	env.CreateElement("soap:Body").AddChild(content.Root())
	return doc.WriteToBytes()
}

// parseEnvelope devuelve el elemento resultTag dentro de Body, o el Fault como error.
func parseEnvelope(raw []byte, resultTag string) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("respuesta no es XML: %w", err)
	}
	body := doc.FindElement("//Body")
	if body == nil {
		return nil, errors.New("respuesta sin soap:Body")
	}
	if fault := body.FindElement("Fault"); fault != nil {
		return nil, fmt.Errorf("SOAP Fault [%s]: %s", childText(fault, "faultcode"), childText(fault, "faultstring"))
	}
	result := body.FindElement("//" + resultTag)
	if result == nil {
		return nil, fmt.Errorf("respuesta sin %s", resultTag)
	}
	return result, nil
}

// decode vuelca el elemento a XML y lo deserializa en out (formas de pkg/afip).
func decode(el *etree.Element, out any) error {
	doc := etree.NewDocument()
	doc.SetRoot(el.Copy())
	b, err := doc.WriteToBytes()
	if err != nil {
		return fmt.Errorf("soap: re-serializar %s: %w", el.Tag, err)
	}
	if err := xml.Unmarshal(b, out); err != nil {
		return fmt.Errorf("soap: decodificar %s: %w: %w", el.Tag, domain.ErrAuthorityUnavailable, err)
	}
	return nil
}

func childText(el *etree.Element, tag string) string {
	if c := el.FindElement(tag); c != nil {
		return strings.TrimSpace(c.Text())
	}
	return ""
}
