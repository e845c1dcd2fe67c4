package afip

import (
	"context"
	"crypto"
	"crypto/x509"
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/beevik/etree"
	"go.mozilla.org/pkcs7"

	"github.com/jhoicas/factura-afip/internal/domain"
	"github.com/jhoicas/factura-afip/pkg/logger"
)

// Servicios de negocio para los que se piden tickets.
const (
	ServiceWSFE  = "wsfe"
	ServiceWSFEX = "wsfex"
)

const (
	wsaaNS = "http://wsaa.view.sua.dvadac.desein.afip.gov"
	// Margen antes del vencimiento para renovar el ticket.
	ticketRenewMargin = 5 * time.Minute
	traValidity       = 10 * time.Minute
)

// Ticket credenciales de acceso (token + sign) devueltas por loginCms.
type Ticket struct {
	Token     string
	Sign      string
	ExpiresAt time.Time
}

// TicketSource entrega un ticket vigente para un servicio.
type TicketSource interface {
	Ticket(ctx context.Context, service string) (Ticket, error)
}

// WSAA obtiene tickets firmando el TRA con el certificado de la empresa y los cachea por servicio.
type WSAA struct {
	soap *soapClient
	cert *x509.Certificate
	key  crypto.PrivateKey
	log  *logger.Logger
	now  func() time.Time

	mu    sync.Mutex
	cache map[string]Ticket
}

// NewWSAA construye el cliente. now puede ser nil (time.Now).
func NewWSAA(httpClient *http.Client, url string, timeout time.Duration, cert *x509.Certificate, key crypto.PrivateKey,
	log *logger.Logger, now func() time.Time) *WSAA {
	if log == nil {
		log = logger.Nop()
	}
	if now == nil {
		now = time.Now
	}
	return &WSAA{
		soap:  newSOAPClient(httpClient, url, timeout),
		cert:  cert,
		key:   key,
		log:   log.Named("wsaa"),
		now:   now,
		cache: make(map[string]Ticket),
	}
}

// Ticket devuelve el ticket cacheado o pide uno nuevo. El lock se mantiene durante loginCms:
// WSAA rechaza un segundo login mientras el ticket anterior siga vigente.
func (w *WSAA) Ticket(ctx context.Context, service string) (Ticket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.cache[service]; ok && w.now().Add(ticketRenewMargin).Before(t.ExpiresAt) {
		return t, nil
	}

	tra, err := w.buildTRA(service)
	if err != nil {
		return Ticket{}, err
	}
	cms, err := w.sign(tra)
	if err != nil {
		return Ticket{}, err
	}

	ret, err := w.soap.call(ctx, "", &loginCmsRequest{Xmlns: wsaaNS, In0: cms}, "loginCmsReturn")
	if err != nil {
		return Ticket{}, fmt.Errorf("wsaa loginCms %s: %w", service, err)
	}
	t, err := parseLoginTicketResponse(ret.Text())
	if err != nil {
		return Ticket{}, fmt.Errorf("wsaa loginCms %s: %w: %w", service, domain.ErrAuthorityUnavailable, err)
	}
	w.cache[service] = t
	w.log.Info().Str("service", service).Time("expires_at", t.ExpiresAt).Msg("ticket de acceso obtenido")
	return t, nil
}

type loginCmsRequest struct {
	XMLName xml.Name `xml:"loginCms"`
	Xmlns   string   `xml:"xmlns,attr"`
	In0     string   `xml:"in0"`
}

// buildTRA arma el loginTicketRequest (hora con offset, ventana de ±10 minutos).
func (w *WSAA) buildTRA(service string) ([]byte, error) {
	now := w.now()
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("loginTicketRequest")
	root.CreateAttr("version", "1.0")
	header := root.CreateElement("header")
	header.CreateElement("uniqueId").SetText(strconv.FormatInt(now.Unix(), 10))
	header.CreateElement("generationTime").SetText(now.Add(-traValidity).Format(time.RFC3339))
	header.CreateElement("expirationTime").SetText(now.Add(traValidity).Format(time.RFC3339))
	root.CreateElement("service").SetText(service)
	b, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("wsaa: serializar TRA: %w", err)
	}
	return b, nil
}

// sign firma el TRA como CMS (PKCS#7 SignedData con el contenido incluido) en Base64.
func (w *WSAA) sign(tra []byte) (string, error) {
	if w.cert == nil || w.key == nil {
		return "", errors.New("wsaa: certificado o llave privada no cargados")
	}
	sd, err := pkcs7.NewSignedData(tra)
	if err != nil {
		return "", fmt.Errorf("wsaa: preparar CMS: %w", err)
	}
	sd.SetDigestAlgorithm(pkcs7.OIDDigestAlgorithmSHA256)
	if err := sd.AddSigner(w.cert, w.key, pkcs7.SignerInfoConfig{}); err != nil {
		return "", fmt.Errorf("wsaa: firmar TRA: %w", err)
	}
	der, err := sd.Finish()
	if err != nil {
		return "", fmt.Errorf("wsaa: cerrar CMS: %w", err)
	}
	return base64.StdEncoding.EncodeToString(der), nil
}

func parseLoginTicketResponse(s string) (Ticket, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromString(s); err != nil {
		return Ticket{}, fmt.Errorf("loginTicketResponse ilegible: %w", err)
	}
	token := doc.FindElement("//credentials/token")
	sign := doc.FindElement("//credentials/sign")
	exp := doc.FindElement("//header/expirationTime")
	if token == nil || sign == nil || exp == nil {
		return Ticket{}, errors.New("loginTicketResponse incompleto")
	}
	expiresAt, err := time.Parse(time.RFC3339, exp.Text())
	if err != nil {
		return Ticket{}, fmt.Errorf("expirationTime %q: %w", exp.Text(), err)
	}
	return Ticket{Token: token.Text(), Sign: sign.Text(), ExpiresAt: expiresAt}, nil
}
