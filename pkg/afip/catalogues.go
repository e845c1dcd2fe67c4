// Package afip contiene catálogos, formas de request/response y utilidades
// de los web services de factura electrónica de AFIP (WSFEv1 y WSFEXv1).
package afip

// =============================================================================
// Resultado de la autorización
// "E" no lo devuelve AFIP: marca una solicitud que nunca salió por validación local.
// =============================================================================

const (
	ResultApproved = "A"
	ResultRejected = "R"
	ResultPartial  = "P"
	ResultInvalid  = "E"
)

// =============================================================================
// Concepto del comprobante (WSFEv1 - Concepto)
// =============================================================================

const (
	ConceptUnclassified        = 0
	ConceptProducts            = 1
	ConceptServices            = 2
	ConceptProductsAndServices = 3
)

// RequiresServicePeriod indica si el concepto exige FchServDesde/FchServHasta/FchVtoPago.
func RequiresServicePeriod(concept int) bool {
	return concept == ConceptServices || concept == ConceptProductsAndServices
}

// =============================================================================
// Tipos de comprobante internos del ERP (no son los códigos AFIP)
// =============================================================================

const (
	ReceiptTypeInvoice    = "0"
	ReceiptTypeDebitNote  = "1"
	ReceiptTypeCreditNote = "2"
)

// Letras de comprobante.
const (
	LetterA = "A"
	LetterB = "B"
	LetterE = "E"
)

// =============================================================================
// Exportación (WSFEXv1)
// =============================================================================

// Tipos de comprobante AFIP de exportación.
const (
	ExportReceiptInvoice    = 19
	ExportReceiptDebitNote  = 20
	ExportReceiptCreditNote = 21
)

// Tipo_expo.
const (
	ExportTypeGoods    = 1
	ExportTypeServices = 2
	ExportTypeOther    = 4
)

// Selección del usuario sobre el permiso de embarque.
const (
	ExportPermitYes = 1
	ExportPermitNo  = 2
)

// Permiso_existente.
const (
	PermitExisting    = "S"
	PermitNotExisting = "N"
	PermitNotApplies  = ""
)

// LanguageSpanish Idioma_cbte = 1 (español).
const LanguageSpanish = 1

// =============================================================================
// Otros códigos
// =============================================================================

const (
	DocTypeCUIT     = 80    // DocTipo por defecto del comprador
	TributeOther    = 99    // Tributo "Otros": exige descripción libre
	DefaultCurrency = "PES" // MonId cuando la moneda no está mapeada
	VATDescription  = "IVA" // descripción de la tabla de alícuotas del ERP

	ErrCodeReceiptNotFound = 602 // FECompConsultar: sin datos para los parámetros
)

// Tipos de orden del ERP que determinan el concepto.
const (
	OrderTypeSales           = "OV"
	OrderTypeContractService = "CS"
	OrderTypeService         = "OS"

	ServiceMaterialService = "SE"
	ServiceMaterialMixed   = "MS"
)

// DateLayout formato de fecha de los web services (yyyyMMdd).
const DateLayout = "20060102"
