package afip

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/factura-afip/internal/domain"
	"github.com/jhoicas/factura-afip/pkg/afip"
)

// Simulator reemplaza a WSFEv1/WSFEXv1 en AFIP_ENV=dev: aprueba todo y numera en memoria.
type Simulator struct {
	cuit int64
	now  func() time.Time

	mu       sync.Mutex
	last     map[[2]int]int64
	lastID   int64
	receipts map[[3]int64]*afip.FECompConsResponse
}

// NewSimulator construye el simulador. now puede ser nil (time.Now).
func NewSimulator(cuit int64, now func() time.Time) *Simulator {
	if now == nil {
		now = time.Now
	}
	return &Simulator{
		cuit:     cuit,
		now:      now,
		last:     make(map[[2]int]int64),
		receipts: make(map[[3]int64]*afip.FECompConsResponse),
	}
}

// SimulatedDomestic vista WSFEv1 del simulador.
type SimulatedDomestic struct{ s *Simulator }

// SimulatedExport vista WSFEXv1 del simulador.
type SimulatedExport struct{ s *Simulator }

// Domestic devuelve la vista WSFEv1.
func (s *Simulator) Domestic() *SimulatedDomestic { return &SimulatedDomestic{s: s} }

// Export devuelve la vista WSFEXv1.
func (s *Simulator) Export() *SimulatedExport { return &SimulatedExport{s: s} }

// cae 14 dígitos derivados de tipo, punto de venta y número.
func simulatedCAE(receiptType, pointOfSale int, number int64) string {
	return fmt.Sprintf("7%03d%04d%06d", receiptType%1000, pointOfSale%10000, number%1000000)
}

func (s *Simulator) lastFor(pointOfSale, receiptType int) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last[[2]int{pointOfSale, receiptType}]
}

// approve asigna el número si es el siguiente; devuelve false si no lo es.
func (s *Simulator) approve(pointOfSale, receiptType int, number int64, r *afip.FECompConsResponse) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := [2]int{pointOfSale, receiptType}
	if number != s.last[key]+1 {
		return false
	}
	s.last[key] = number
	s.receipts[[3]int64{int64(receiptType), int64(pointOfSale), number}] = r
	return true
}

func (s *Simulator) dueDate() string {
	return s.now().AddDate(0, 0, 10).Format(afip.DateLayout)
}

// LastAuthorized implementa billing.DomesticAuthority.
func (d *SimulatedDomestic) LastAuthorized(_ context.Context, pointOfSale, receiptType int) (int64, error) {
	return d.s.lastFor(pointOfSale, receiptType), nil
}

// Authorize aprueba cada detalle cuyo número sea el siguiente; el resto se rechaza con 10016.
func (d *SimulatedDomestic) Authorize(_ context.Context, req *afip.FECAERequest) (*afip.FECAEResponse, error) {
	s := d.s
	cab := req.FeCabReq
	resp := &afip.FECAEResponse{FeCabResp: &afip.FECabResponse{
		Cuit: s.cuit, PtoVta: cab.PtoVta, CbteTipo: cab.CbteTipo, CantReg: cab.CantReg,
		FchProceso: s.now().Format("20060102150405"), Resultado: afip.ResultApproved, Reproceso: "N",
	}}
	for _, det := range req.FeDetReq {
		out := afip.FECAEDetResponse{
			Concepto: det.Concepto, DocTipo: det.DocTipo, DocNro: det.DocNro,
			CbteDesde: det.CbteDesde, CbteHasta: det.CbteHasta, CbteFch: det.CbteFch,
		}
		cae := simulatedCAE(cab.CbteTipo, cab.PtoVta, det.CbteDesde)
		due := s.dueDate()
		stored := &afip.FECompConsResponse{
			Concepto: det.Concepto, DocTipo: det.DocTipo, DocNro: det.DocNro, CbteDesde: det.CbteDesde,
			CbteHasta: det.CbteHasta, CbteFch: det.CbteFch, ImpTotal: det.ImpTotal, ImpNeto: det.ImpNeto,
			ImpIVA: det.ImpIVA, MonID: det.MonID, MonCotiz: det.MonCotiz, Resultado: afip.ResultApproved,
			CodAutor: cae, FchVto: due, PtoVta: cab.PtoVta, CbteTipo: cab.CbteTipo, FchProceso: resp.FeCabResp.FchProceso,
		}
		if s.approve(cab.PtoVta, cab.CbteTipo, det.CbteDesde, stored) {
			out.Resultado, out.CAE, out.CAEFchVto = afip.ResultApproved, cae, due
		} else {
			out.Resultado = afip.ResultRejected
			out.Observaciones = []afip.Message{{Code: 10016, Msg: "El numero de comprobante no es el proximo a autorizar"}}
			resp.FeCabResp.Resultado = afip.ResultRejected
		}
		resp.FeDetResp = append(resp.FeDetResp, out)
	}
	return resp, nil
}

// QueryReceipt implementa billing.ReceiptQuerier sobre los comprobantes aprobados en memoria.
func (d *SimulatedDomestic) QueryReceipt(_ context.Context, receiptType, pointOfSale int, number int64) (*afip.FECompConsResponse, error) {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()
	r, ok := d.s.receipts[[3]int64{int64(receiptType), int64(pointOfSale), number}]
	if !ok {
		return nil, fmt.Errorf("simulador: comprobante %d-%d-%d: %w", receiptType, pointOfSale, number, domain.ErrNotFound)
	}
	return r, nil
}

// LastAuthorized implementa billing.ExportAuthority.
func (e *SimulatedExport) LastAuthorized(_ context.Context, pointOfSale, receiptType int) (int64, error) {
	return e.s.lastFor(pointOfSale, receiptType), nil
}

// LastID último Id de solicitud recibido.
func (e *SimulatedExport) LastID(_ context.Context) (int64, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()
	return e.s.lastID, nil
}

// Authorize aprueba si el número es el siguiente y el Id no fue usado.
func (e *SimulatedExport) Authorize(_ context.Context, req *afip.FEXRequest) (*afip.FEXResponseAuthorize, error) {
	s := e.s
	s.mu.Lock()
	if req.ID <= s.lastID {
		s.mu.Unlock()
		return &afip.FEXResponseAuthorize{FEXErr: &afip.FEXErr{ErrCode: 1000, ErrMsg: "Id de solicitud ya utilizado"}}, nil
	}
	s.lastID = req.ID
	s.mu.Unlock()

	res := &afip.FEXResultAuth{
		ID: req.ID, Cuit: s.cuit, FchCbte: req.FechaCbte, Reproceso: "N",
		CbteTipo: req.CbteTipo, PuntoVta: req.PuntoVta, CbteNro: req.CbteNro,
	}
	cae := simulatedCAE(req.CbteTipo, req.PuntoVta, req.CbteNro)
	due := s.dueDate()
	stored := &afip.FECompConsResponse{
		CbteDesde: req.CbteNro, CbteHasta: req.CbteNro, CbteFch: req.FechaCbte, ImpTotal: req.ImpTotal,
		MonID: req.MonedaID, MonCotiz: req.MonedaCtz, Resultado: afip.ResultApproved, CodAutor: cae,
		FchVto: due, PtoVta: req.PuntoVta, CbteTipo: req.CbteTipo,
	}
	if s.approve(req.PuntoVta, req.CbteTipo, req.CbteNro, stored) {
		res.Resultado, res.Cae, res.FchVencCae = afip.ResultApproved, cae, due
	} else {
		res.Resultado = afip.ResultRejected
		res.MotivosObs = "El numero de comprobante no es el proximo a autorizar"
	}
	return &afip.FEXResponseAuthorize{FEXResultAuth: res, FEXErr: &afip.FEXErr{}}, nil
}
