package afip

import "github.com/shopspring/decimal"

// ── WSFEv1: comprobantes domésticos (A/B) ─────────────────────────────────────

// FECAERequest cuerpo de FECAESolicitar (FeCAEReq).
type FECAERequest struct {
	FeCabReq FECAECabRequest   `xml:"FeCabReq"`
	FeDetReq []FECAEDetRequest `xml:"FeDetReq>FECAEDetRequest"`
}

// FECAECabRequest cabecera: cantidad de registros, punto de venta y tipo de comprobante AFIP.
type FECAECabRequest struct {
	CantReg  int `xml:"CantReg"`
	PtoVta   int `xml:"PtoVta"`
	CbteTipo int `xml:"CbteTipo"`
}

// FECAEDetRequest detalle del comprobante. Los importes viajan siempre en valor absoluto.
type FECAEDetRequest struct {
	Concepto     int             `xml:"Concepto"`
	DocTipo      int             `xml:"DocTipo"`
	DocNro       int64           `xml:"DocNro"`
	CbteDesde    int64           `xml:"CbteDesde"`
	CbteHasta    int64           `xml:"CbteHasta"`
	CbteFch      string          `xml:"CbteFch"`
	ImpTotal     decimal.Decimal `xml:"ImpTotal"`
	ImpTotConc   decimal.Decimal `xml:"ImpTotConc"`
	ImpNeto      decimal.Decimal `xml:"ImpNeto"`
	ImpOpEx      decimal.Decimal `xml:"ImpOpEx"`
	ImpTrib      decimal.Decimal `xml:"ImpTrib"`
	ImpIVA       decimal.Decimal `xml:"ImpIVA"`
	FchServDesde string          `xml:"FchServDesde,omitempty"`
	FchServHasta string          `xml:"FchServHasta,omitempty"`
	FchVtoPago   string          `xml:"FchVtoPago,omitempty"`
	MonID        string          `xml:"MonId"`
	MonCotiz     decimal.Decimal `xml:"MonCotiz"`
	Tributos     []Tributo       `xml:"Tributos>Tributo,omitempty"`
	Iva          []AlicIva       `xml:"Iva>AlicIva,omitempty"`
}

// Tributo percepción/impuesto distinto de IVA.
type Tributo struct {
	ID      int             `xml:"Id"`
	Desc    string          `xml:"Desc,omitempty"`
	BaseImp decimal.Decimal `xml:"BaseImp"`
	Alic    decimal.Decimal `xml:"Alic"`
	Importe decimal.Decimal `xml:"Importe"`
}

// AlicIva una alícuota de IVA.
type AlicIva struct {
	ID      int             `xml:"Id"`
	BaseImp decimal.Decimal `xml:"BaseImp"`
	Importe decimal.Decimal `xml:"Importe"`
}

// FECAEResponse resultado de FECAESolicitar.
type FECAEResponse struct {
	FeCabResp *FECabResponse     `xml:"FeCabResp"`
	FeDetResp []FECAEDetResponse `xml:"FeDetResp>FECAEDetResponse"`
	Errors    []Message          `xml:"Errors>Err"`
	Events    []Message          `xml:"Events>Evt"`
}

// FECabResponse cabecera de la respuesta; Resultado "A" = aprobado.
type FECabResponse struct {
	Cuit       int64  `xml:"Cuit"`
	PtoVta     int    `xml:"PtoVta"`
	CbteTipo   int    `xml:"CbteTipo"`
	FchProceso string `xml:"FchProceso"`
	CantReg    int    `xml:"CantReg"`
	Resultado  string `xml:"Resultado"`
	Reproceso  string `xml:"Reproceso"`
}

// FECAEDetResponse detalle con CAE y vencimiento (CAEFchVto yyyyMMdd).
type FECAEDetResponse struct {
	Concepto      int       `xml:"Concepto"`
	DocTipo       int       `xml:"DocTipo"`
	DocNro        int64     `xml:"DocNro"`
	CbteDesde     int64     `xml:"CbteDesde"`
	CbteHasta     int64     `xml:"CbteHasta"`
	CbteFch       string    `xml:"CbteFch"`
	Resultado     string    `xml:"Resultado"`
	Observaciones []Message `xml:"Observaciones>Obs"`
	CAE           string    `xml:"CAE"`
	CAEFchVto     string    `xml:"CAEFchVto"`
}

// Message error, evento u observación de AFIP.
type Message struct {
	Code int    `xml:"Code"`
	Msg  string `xml:"Msg"`
}

// FERecuperaLastCbteResponse resultado de FECompUltimoAutorizado.
type FERecuperaLastCbteResponse struct {
	PtoVta   int       `xml:"PtoVta"`
	CbteTipo int       `xml:"CbteTipo"`
	CbteNro  int64     `xml:"CbteNro"`
	Errors   []Message `xml:"Errors>Err"`
}

// FECompConsultaResponse resultado de FECompConsultar (comprobante ya autorizado).
type FECompConsultaResponse struct {
	ResultGet *FECompConsResponse `xml:"ResultGet"`
	Errors    []Message           `xml:"Errors>Err"`
}

// FECompConsResponse datos del comprobante registrados en AFIP.
type FECompConsResponse struct {
	Concepto   int             `xml:"Concepto"      json:"concepto"`
	DocTipo    int             `xml:"DocTipo"       json:"doc_tipo"`
	DocNro     int64           `xml:"DocNro"        json:"doc_nro"`
	CbteDesde  int64           `xml:"CbteDesde"     json:"cbte_desde"`
	CbteHasta  int64           `xml:"CbteHasta"     json:"cbte_hasta"`
	CbteFch    string          `xml:"CbteFch"       json:"cbte_fch"`
	ImpTotal   decimal.Decimal `xml:"ImpTotal"      json:"imp_total"`
	ImpNeto    decimal.Decimal `xml:"ImpNeto"       json:"imp_neto"`
	ImpIVA     decimal.Decimal `xml:"ImpIVA"        json:"imp_iva"`
	MonID      string          `xml:"MonId"         json:"mon_id"`
	MonCotiz   decimal.Decimal `xml:"MonCotiz"      json:"mon_cotiz"`
	Resultado  string          `xml:"Resultado"     json:"resultado"`
	CodAutor   string          `xml:"CodAutorizacion" json:"cod_autorizacion"`
	FchVto     string          `xml:"FchVto"        json:"fch_vto"`
	PtoVta     int             `xml:"PtoVta"        json:"pto_vta"`
	CbteTipo   int             `xml:"CbteTipo"      json:"cbte_tipo"`
	FchProceso string          `xml:"FchProceso"    json:"fch_proceso"`
}
