package cae

import (
	"fmt"
	"strconv"

	"github.com/jhoicas/factura-afip/pkg/afip"
)

// InvoiceNumber arma el número de comprobante: <letra><pto. venta 5>-<número 8>.
//
//	InvoiceNumber("A", "5", 42) == "A00005-00000042"
func InvoiceNumber(letter, pointOfSale string, sequence int64) string {
	return fmt.Sprintf("%s%s-%s", letter, afip.PadLeft(pointOfSale, 5), afip.PadLeft(strconv.FormatInt(sequence, 10), 8))
}

// InvoiceCode código AFIP del comprobante a 3 dígitos (1 -> "001").
func InvoiceCode(afipReceiptType int) string {
	return afip.PadLeft(strconv.Itoa(afipReceiptType), 3)
}

// ReportURL ruta relativa del PDF según el tipo interno del comprobante.
func ReportURL(receiptType, invoiceNumber string) string {
	var dir string
	switch receiptType {
	case afip.ReceiptTypeInvoice:
		dir = "/invoices/"
	case afip.ReceiptTypeDebitNote:
		dir = "/debit-notes/"
	case afip.ReceiptTypeCreditNote:
		dir = "/credit-notes/"
	}
	return dir + invoiceNumber + ".pdf"
}

// ERPInvoiceNumber número con el que el ERP identifica el comprobante:
// las notas de débito llevan sufijo "D" y las de crédito "C".
func ERPInvoiceNumber(receiptType, invoiceNumber string) string {
	switch receiptType {
	case afip.ReceiptTypeDebitNote:
		return invoiceNumber + "D"
	case afip.ReceiptTypeCreditNote:
		return invoiceNumber + "C"
	}
	return invoiceNumber
}
