package afip

import (
	"net/http"
	"time"

	"github.com/jhoicas/factura-afip/internal/application/billing"
	"github.com/jhoicas/factura-afip/pkg/afip"
	"github.com/jhoicas/factura-afip/pkg/config"
	"github.com/jhoicas/factura-afip/pkg/logger"
)

var (
	_ billing.DomesticAuthority = (*WSFEClient)(nil)
	_ billing.ReceiptQuerier    = (*WSFEClient)(nil)
	_ billing.ExportAuthority   = (*WSFEXClient)(nil)
	_ billing.DomesticAuthority = (*SimulatedDomestic)(nil)
	_ billing.ReceiptQuerier    = (*SimulatedDomestic)(nil)
	_ billing.ExportAuthority   = (*SimulatedExport)(nil)
	_ TicketSource              = (*WSAA)(nil)
)

// Clients puertos AFIP que consume el caso de uso.
type Clients struct {
	Domestic billing.DomesticAuthority
	Export   billing.ExportAuthority
	Receipts billing.ReceiptQuerier
}

// NewClients arma los clientes según AFIP_ENV: simulador en "dev", SOAP real en "homo"/"prod".
func NewClients(cfg config.AFIPConfig, log *logger.Logger) (*Clients, error) {
	if log == nil {
		log = logger.Nop()
	}
	cuit, err := afip.ParseCUIT(cfg.CUIT)
	if err != nil {
		return nil, err
	}
	if cfg.Env == EnvDev {
		log.Warn().Msg("AFIP_ENV=dev: se usa el simulador local, los CAE no son válidos")
		sim := NewSimulator(cuit, nil)
		dom := sim.Domestic()
		return &Clients{Domestic: dom, Export: sim.Export(), Receipts: dom}, nil
	}

	endpoints, err := EndpointsFor(cfg.Env)
	if err != nil {
		return nil, err
	}
	cert, err := LoadCertificate(cfg.P12Path, cfg.P12Password, cfg.CertPath, cfg.KeyPath)
	if err != nil {
		return nil, err
	}
	timeout := time.Duration(cfg.TimeoutSec) * time.Second
	httpClient := &http.Client{Timeout: timeout + 5*time.Second}

	wsaa := NewWSAA(httpClient, endpoints.WSAA, timeout, cert.Leaf, cert.PrivateKey, log, nil)
	wsfe := NewWSFEClient(httpClient, endpoints.WSFE, timeout, wsaa, cuit)
	wsfex := NewWSFEXClient(httpClient, endpoints.WSFEX, timeout, wsaa, cuit)
	log.Info().Str("env", cfg.Env).Str("wsfe", endpoints.WSFE).Str("wsfex", endpoints.WSFEX).
		Dur("timeout", timeout).Msg("clientes AFIP listos")
	return &Clients{Domestic: wsfe, Export: wsfex, Receipts: wsfe}, nil
}
