// Package pdf implementa la representación impresa de los comprobantes autorizados por AFIP.
//
// Layout de la página A4:
//
//	┌─────────────────────────────────────────────────────────────┐
//	│  HEADER: Emisor + CUIT       │  Letra │ N° Comprobante + Fecha│
//	│  ─────────────────────────────────────────────────────────  │
//	│  CLIENTE: Razón social / CUIT / IVA / Domicilios             │
//	│  ORDEN: N° orden, remitos, OC, condición de pago             │
//	│  ─────────────────────────────────────────────────────────  │
//	│  TABLA: Código | Descripción | Cant. | P.Unit | Importe      │
//	│  ─────────────────────────────────────────────────────────  │
//	│  IMPUESTOS: IVA por alícuota y tributos                      │
//	│  TOTALES: Subtotal / Total / Total en pesos                  │
//	│  ─────────────────────────────────────────────────────────  │
//	│  FOOTER AFIP: CAE + vencimiento + código de barras + leyenda │
//	└─────────────────────────────────────────────────────────────┘
package pdf

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	maroto "github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/code"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/row"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/jhoicas/factura-afip/internal/application/billing"
	"github.com/jhoicas/factura-afip/internal/domain/cae"
	"github.com/jhoicas/factura-afip/internal/domain/entity"
	"github.com/jhoicas/factura-afip/pkg/afip"
	"github.com/jhoicas/factura-afip/pkg/logger"
)

var _ billing.ReportGenerator = (*MarotoPDFGenerator)(nil)

// ── Paleta de colores ─────────────────────────────────────────────────────────

var (
	colorPrimary = &props.Color{Red: 0, Green: 70, Blue: 127}
	colorGray    = &props.Color{Red: 100, Green: 100, Blue: 100}
	colorWhite   = &props.Color{Red: 255, Green: 255, Blue: 255}
)

var esAR = message.NewPrinter(language.MustParse("es-AR"))

// ── Generator ─────────────────────────────────────────────────────────────────

// MarotoPDFGenerator implementa billing.ReportGenerator: arma el PDF con Maroto v2 y lo guarda en dir.
type MarotoPDFGenerator struct {
	dir         string
	companyName string
	companyCUIT string
	log         *logger.Logger
}

// NewMarotoPDFGenerator construye el generador. dir es la raíz de los reportes (REPORTS_DIR).
func NewMarotoPDFGenerator(dir, companyName, companyCUIT string, log *logger.Logger) *MarotoPDFGenerator {
	if log == nil {
		log = logger.Nop()
	}
	return &MarotoPDFGenerator{dir: dir, companyName: companyName, companyCUIT: companyCUIT, log: log.Named("pdf")}
}

// Generate guarda el PDF en <dir>/<invoices|debit-notes|credit-notes>/<número>.pdf y devuelve la ruta.
func (g *MarotoPDFGenerator) Generate(ctx context.Context, invoice *entity.Invoice) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	bytes, err := g.Render(invoice)
	if err != nil {
		return "", err
	}
	path := filepath.Join(g.dir, filepath.FromSlash(cae.ReportURL(invoice.InvoiceType, invoice.InvoiceNumber)))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("pdf: crear directorio: %w", err)
	}
	if err := os.WriteFile(path, bytes, 0o644); err != nil {
		return "", fmt.Errorf("pdf: guardar %s: %w", path, err)
	}
	g.log.Info().Str("invoice_number", invoice.InvoiceNumber).Str("path", path).Msg("reporte generado")
	return path, nil
}

// Render genera el PDF y devuelve sus bytes.
func (g *MarotoPDFGenerator) Render(invoice *entity.Invoice) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(10).WithRightMargin(10).
		WithTopMargin(10).WithBottomMargin(10).
		WithDefaultFont(&props.Font{Family: "helvetica", Size: 9}).
		WithTitle(receiptTitle(invoice.InvoiceType)+" "+invoice.InvoiceNumber, true).
		WithAuthor(g.companyName, true).
		Build()

	m := maroto.New(cfg)

	m.AddRows(g.headerRow(invoice))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.5}))
	m.AddRows(clientRow(invoice))
	m.AddRows(orderRow(invoice))
	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))

	m.AddRows(tableHeaderRow())
	m.AddRows(tableDetailRows(invoice)...)

	m.AddRows(line.NewRow(1, props.Line{Color: colorPrimary, Thickness: 0.3}))
	m.AddRows(taxRows(invoice)...)
	m.AddRows(totalsRow(invoice))

	m.AddRows(line.NewRow(3))
	m.AddRows(line.NewRow(1, props.Line{Color: colorGray, Thickness: 0.3}))
	m.AddRows(afipFooterRows(invoice)...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("pdf: generar documento: %w", err)
	}
	return doc.GetBytes(), nil
}

// ── Secciones ─────────────────────────────────────────────────────────────────

// headerRow: emisor (izq), letra (centro) y número + fecha (der).
func (g *MarotoPDFGenerator) headerRow(invoice *entity.Invoice) core.Row {
	return row.New(20).Add(
		col.New(5).Add(
			text.New(g.companyName, props.Text{
				Style: fontstyle.Bold, Size: 13, Color: colorPrimary, Top: 1,
			}),
			text.New("CUIT: "+g.companyCUIT, props.Text{
				Size: 9, Top: 9, Color: colorGray,
			}),
		),
		col.New(2).Add(
			text.New(invoice.InvoiceLetter, props.Text{
				Style: fontstyle.Bold, Size: 22, Align: align.Center, Top: 1,
			}),
			text.New("Cód. "+invoice.InvoiceCode, props.Text{
				Size: 7, Align: align.Center, Top: 12, Color: colorGray,
			}),
		),
		col.New(5).Add(
			text.New(strings.ToUpper(receiptTitle(invoice.InvoiceType)), props.Text{
				Style: fontstyle.Bold, Size: 8, Align: align.Right, Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.InvoiceNumber, props.Text{
				Style: fontstyle.Bold, Size: 12, Align: align.Right, Top: 7,
			}),
			text.New("Fecha: "+invoice.InvoiceDate.Format("02/01/2006"), props.Text{
				Size: 8, Align: align.Right, Top: 14, Color: colorGray,
			}),
		),
	)
}

// clientRow: datos del comprador.
func clientRow(invoice *entity.Invoice) core.Row {
	address := joinNonEmpty(" ", invoice.Address1, invoice.Address2, invoice.Address3, invoice.ZipCode)
	delivery := joinNonEmpty(" ", invoice.DeliveryAddress1, invoice.DeliveryAddress2, invoice.DeliveryAddress3, invoice.DeliveryAddress4)
	return row.New(20).Add(
		col.New(12).Add(
			text.New("CLIENTE", props.Text{
				Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
			}),
			text.New(invoice.BusinessName+" ("+invoice.ClientCode+")", props.Text{
				Style: fontstyle.Bold, Size: 10, Top: 5,
			}),
			text.New(fmt.Sprintf("CUIT: %s   |   IVA: %s   |   IIBB: %s",
				nonEmpty(invoice.CUIT, "—"),
				nonEmpty(invoice.IVACondition, "—"),
				nonEmpty(invoice.IIBB, "—"),
			), props.Text{Size: 8, Top: 10, Color: colorGray}),
			text.New(fmt.Sprintf("Domicilio: %s   |   Entrega: %s",
				nonEmpty(address, "—"),
				nonEmpty(delivery, "—"),
			), props.Text{Size: 8, Top: 15, Color: colorGray}),
		),
	)
}

// orderRow: referencias de la orden del ERP.
func orderRow(invoice *entity.Invoice) core.Row {
	due := "—"
	if !invoice.DueDate.IsZero() {
		due = invoice.DueDate.Format("02/01/2006")
	}
	return row.New(10).Add(
		col.New(12).Add(
			text.New(fmt.Sprintf("Orden: %s   |   Remitos: %s   |   OC: %s   |   Condición de pago: %s   |   Vencimiento: %s",
				invoice.OrderNumber,
				nonEmpty(invoice.DeliveryNotes, invoice.DeliveryNoteNumber),
				nonEmpty(invoice.PurchaseOrderNumber, "—"),
				nonEmpty(invoice.PaymentCondition, "—"),
				due,
			), props.Text{Size: 8, Top: 2, Color: colorGray}),
		),
	)
}

// tableHeaderRow: cabecera de la tabla de líneas.
func tableHeaderRow() core.Row {
	h := func(label string, size int, a align.Type) core.Col {
		return col.New(size).Add(text.New(label, props.Text{
			Style: fontstyle.Bold, Size: 8, Align: a,
			Color: colorWhite, Top: 2, Left: 1, Right: 1,
		}))
	}
	return row.New(8).Add(
		h("Código", 2, align.Left),
		h("Descripción", 4, align.Left),
		h("Cant.", 1, align.Center),
		h("Precio Unit.", 2, align.Right),
		h("Bonif.", 1, align.Center),
		h("Importe", 2, align.Right),
	).WithStyle(&props.Cell{BackgroundColor: colorPrimary})
}

// tableDetailRows: una fila por línea de la factura.
func tableDetailRows(invoice *entity.Invoice) []core.Row {
	result := make([]core.Row, 0, len(invoice.Lines))
	for _, l := range invoice.Lines {
		desc := joinNonEmpty(" ", l.Detail1, l.Detail2)
		result = append(result, row.New(7).Add(
			col.New(2).Add(text.New(l.Code, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(4).Add(text.New(desc, props.Text{Size: 8, Top: 1, Left: 1})),
			col.New(1).Add(text.New(formatNumber(l.Quantity, 2), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(money(invoice.CurrencySymbol, l.UnitPrice), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
			col.New(1).Add(text.New(percent(l.LineDiscount), props.Text{Size: 8, Align: align.Center, Top: 1})),
			col.New(2).Add(text.New(money(invoice.CurrencySymbol, l.Amount), props.Text{Size: 8, Align: align.Right, Top: 1, Right: 1})),
		))
	}
	return result
}

// taxRows: una fila por impuesto (IVA por alícuota y tributos).
func taxRows(invoice *entity.Invoice) []core.Row {
	rows := make([]core.Row, 0, len(invoice.Taxes))
	for _, t := range invoice.Taxes {
		label := t.Description
		if t.IsVAT() {
			label = "IVA " + percent(t.Aliquot)
		}
		rows = append(rows, row.New(5).Add(
			col.New(6),
			col.New(3).Add(text.New(label+":", props.Text{Size: 8, Align: align.Right, Right: 2})),
			col.New(3).Add(text.New(money(invoice.CurrencySymbol, t.TaxAmount), props.Text{Size: 8, Align: align.Right, Right: 1})),
		))
	}
	return rows
}

// totalsRow: bloque de totales alineado a la derecha.
func totalsRow(invoice *entity.Invoice) core.Row {
	label := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right, Right: 2})
	}
	value := func(s string) core.Component {
		return text.New(s, props.Text{Size: 9, Align: align.Right, Right: 1})
	}
	grandLabel := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 2, Top: 10})
	}
	grandValue := func(s string) core.Component {
		return text.New(s, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right, Color: colorPrimary, Right: 1, Top: 10})
	}

	labels := []core.Component{label("Subtotal:"), grandLabel("TOTAL:")}
	values := []core.Component{value(money(invoice.CurrencySymbol, invoice.SubTotal)), grandValue(money(invoice.CurrencySymbol, invoice.GrandTotal))}
	if invoice.CurrencySymbol != "$" {
		labels = append(labels, text.New("Total en pesos:", props.Text{Size: 8, Align: align.Right, Right: 2, Top: 17}))
		values = append(values, text.New(money("$", invoice.AmountInPesos), props.Text{Size: 8, Align: align.Right, Right: 1, Top: 17}))
	}
	return row.New(24).Add(
		col.New(6),
		col.New(3).Add(labels...),
		col.New(3).Add(values...),
	)
}

// afipFooterRows: CAE, vencimiento, código de barras y leyenda.
func afipFooterRows(invoice *entity.Invoice) []core.Row {
	rows := []core.Row{
		row.New(12).Add(
			col.New(6).Add(
				text.New("COMPROBANTE AUTORIZADO POR AFIP", props.Text{
					Style: fontstyle.Bold, Size: 8, Color: colorPrimary, Top: 1,
				}),
				text.New("CAE N°: "+invoice.CAE, props.Text{Style: fontstyle.Bold, Size: 9, Top: 6}),
			),
			col.New(6).Add(
				text.New("Vto. CAE: "+invoice.CAEDueDate.Format("02/01/2006"), props.Text{
					Style: fontstyle.Bold, Size: 9, Align: align.Right, Top: 6,
				}),
			),
		),
	}

	if invoice.Barcode != "" {
		rows = append(rows,
			row.New(16).Add(col.New(12).Add(code.NewBar(invoice.Barcode, props.Barcode{
				Percent: 90,
				Center:  true,
			}))),
			row.New(5).Add(col.New(12).Add(text.New(invoice.Barcode, props.Text{
				Size: 7, Align: align.Center, Color: colorGray,
			}))),
		)
	}

	if legend := legendText(invoice.Legend); legend != "" {
		rows = append(rows, row.New(14).Add(col.New(12).Add(
			text.New(legend, props.Text{Size: 7, Color: colorGray, Top: 3}),
		)))
	}
	return rows
}

// ── helpers ───────────────────────────────────────────────────────────────────

func receiptTitle(receiptType string) string {
	switch receiptType {
	case afip.ReceiptTypeDebitNote:
		return "Nota de Débito"
	case afip.ReceiptTypeCreditNote:
		return "Nota de Crédito"
	default:
		return "Factura"
	}
}

var legendTags = strings.NewReplacer("<div>", "", "</div>", "", "<p>", "", "</p>", " ")

// legendText convierte la leyenda HTML en una sola línea de texto.
func legendText(html string) string {
	return strings.TrimSpace(legendTags.Replace(html))
}

// money formatea un importe en es-AR con el símbolo de la moneda: "US$ 1.234,56".
func money(symbol string, d decimal.Decimal) string {
	return nonEmpty(symbol, "$") + " " + formatNumber(d, 2)
}

func formatNumber(d decimal.Decimal, scale int) string {
	return esAR.Sprint(number.Decimal(d.InexactFloat64(), number.Scale(scale)))
}

// percent muestra una fracción como porcentaje (0.21 -> "21%").
func percent(fraction decimal.Decimal) string {
	if fraction.IsZero() {
		return "—"
	}
	return fraction.Mul(decimal.NewFromInt(100)).String() + "%"
}

func nonEmpty(s, fallback string) string {
	if s != "" {
		return s
	}
	return fallback
}

func joinNonEmpty(sep string, parts ...string) string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
