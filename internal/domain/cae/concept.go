package cae

import (
	"github.com/jhoicas/factura-afip/internal/domain/entity"
	"github.com/jhoicas/factura-afip/pkg/afip"
)

// Concept clasifica la orden para AFIP: 1 productos, 2 servicios, 3 ambos, 0 sin clasificar.
func Concept(h *entity.OrderHeader) int {
	switch {
	case h.OrderType == afip.OrderTypeSales && (h.SalesOrderType == 1 || h.SalesOrderType == 2 || h.SalesOrderType == 4):
		return afip.ConceptProducts
	case h.OrderType == afip.OrderTypeContractService,
		h.OrderType == afip.OrderTypeService && h.ServiceMaterial == afip.ServiceMaterialService:
		return afip.ConceptServices
	case h.OrderType == afip.OrderTypeService && h.ServiceMaterial == afip.ServiceMaterialMixed:
		return afip.ConceptProductsAndServices
	}
	return afip.ConceptUnclassified
}

// ExportPermit valor de Permiso_existente según el comprobante AFIP de exportación.
//
//	nota de débito / crédito          -> ""
//	factura de servicios u otros      -> ""
//	factura con permiso marcado "sí"  -> "S"
//	resto                             -> "N"
func ExportPermit(receiptType, exportType, permit int) string {
	switch {
	case receiptType == afip.ExportReceiptDebitNote, receiptType == afip.ExportReceiptCreditNote:
		return afip.PermitNotApplies
	case receiptType == afip.ExportReceiptInvoice &&
		(exportType == afip.ExportTypeServices || exportType == afip.ExportTypeOther):
		return afip.PermitNotApplies
	case receiptType == afip.ExportReceiptInvoice && permit == afip.ExportPermitYes:
		return afip.PermitExisting
	}
	return afip.PermitNotExisting
}

// Incoterms primeros 3 caracteres de la condición de entrega; vacío si es más corta.
func Incoterms(termsOfDelivery string) string {
	r := []rune(termsOfDelivery)
	if len(r) < 3 {
		return ""
	}
	return string(r[:3])
}
