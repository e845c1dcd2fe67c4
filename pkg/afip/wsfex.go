package afip

import "github.com/shopspring/decimal"

// ── WSFEXv1: comprobantes de exportación (E) ─────────────────────────────────

// FEXRequest cuerpo de FEXAuthorize (ClsFEXRequest).
type FEXRequest struct {
	ID               int64           `xml:"Id"`
	FechaCbte        string          `xml:"Fecha_cbte"`
	CbteTipo         int             `xml:"Cbte_Tipo"`
	PuntoVta         int             `xml:"Punto_vta"`
	CbteNro          int64           `xml:"Cbte_nro"`
	TipoExpo         int             `xml:"Tipo_expo"`
	PermisoExistente string          `xml:"Permiso_existente"`
	DstCmp           int             `xml:"Dst_cmp"`
	Cliente          string          `xml:"Cliente"`
	CuitPaisCliente  int64           `xml:"Cuit_pais_cliente"`
	DomicilioCliente string          `xml:"Domicilio_cliente"`
	IDImpositivo     string          `xml:"Id_impositivo,omitempty"`
	MonedaID         string          `xml:"Moneda_Id"`
	MonedaCtz        decimal.Decimal `xml:"Moneda_ctz"`
	ObsComerciales   string          `xml:"Obs_comerciales,omitempty"`
	ImpTotal         decimal.Decimal `xml:"Imp_total"`
	Obs              string          `xml:"Obs,omitempty"`
	FormaPago        string          `xml:"Forma_pago,omitempty"`
	Incoterms        string          `xml:"Incoterms,omitempty"`
	IdiomaCbte       int             `xml:"Idioma_cbte"`
	Items            []FEXItem       `xml:"Items>Item"`
}

// FEXItem línea del comprobante de exportación.
// Sin unidad de medida se envían precio y cantidad en cero (convención AFIP para ítems no medidos).
type FEXItem struct {
	ProCodigo       string          `xml:"Pro_codigo,omitempty"`
	ProDs           string          `xml:"Pro_ds"`
	ProQty          decimal.Decimal `xml:"Pro_qty"`
	ProUmed         int             `xml:"Pro_umed"`
	ProPrecioUni    decimal.Decimal `xml:"Pro_precio_uni"`
	ProBonificacion decimal.Decimal `xml:"Pro_bonificacion"`
	ProTotalItem    decimal.Decimal `xml:"Pro_total_item"`
}

// FEXResponseAuthorize resultado de FEXAuthorize.
type FEXResponseAuthorize struct {
	FEXResultAuth *FEXResultAuth `xml:"FEXResultAuth"`
	FEXErr        *FEXErr        `xml:"FEXErr"`
	FEXEvents     *FEXEvents     `xml:"FEXEvents"`
}

// FEXResultAuth datos de la autorización; Resultado "A" = aprobado.
type FEXResultAuth struct {
	ID         int64  `xml:"Id"`
	Cuit       int64  `xml:"Cuit"`
	Cae        string `xml:"Cae"`
	FchCbte    string `xml:"Fch_cbte"`
	FchVencCae string `xml:"Fch_venc_Cae"`
	Resultado  string `xml:"Resultado"`
	Reproceso  string `xml:"Reproceso"`
	MotivosObs string `xml:"Motivos_Obs"`
	CbteTipo   int    `xml:"Cbte_tipo"`
	PuntoVta   int    `xml:"Punto_vta"`
	CbteNro    int64  `xml:"Cbte_nro"`
}

// FEXErr error de WSFEX (ErrCode 0 = sin error).
type FEXErr struct {
	ErrCode int    `xml:"ErrCode"`
	ErrMsg  string `xml:"ErrMsg"`
}

// FEXEvents evento informativo de WSFEX.
type FEXEvents struct {
	EventCode int    `xml:"EventCode"`
	EventMsg  string `xml:"EventMsg"`
}

// FEXGetLastCMPResponse resultado de FEXGetLast_CMP.
type FEXGetLastCMPResponse struct {
	FEXResultLastCMP *struct {
		CbteNro   int64  `xml:"Cbte_nro"`
		CbteFecha string `xml:"Cbte_fecha"`
	} `xml:"FEXResult_LastCMP"`
	FEXErr *FEXErr `xml:"FEXErr"`
}

// FEXGetLastIDResponse resultado de FEXGetLast_ID.
type FEXGetLastIDResponse struct {
	FEXResultGet *struct {
		ID int64 `xml:"Id"`
	} `xml:"FEXResultGet"`
	FEXErr *FEXErr `xml:"FEXErr"`
}
