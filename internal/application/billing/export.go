package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/factura-afip/internal/domain/cae"
	"github.com/jhoicas/factura-afip/internal/domain/entity"
	"github.com/jhoicas/factura-afip/pkg/afip"
)

// exportVariant WSFEXv1: comprobantes E.
type exportVariant struct {
	authority   ExportAuthority
	tables      *cae.CodeTables
	companyCUIT string
}

func (v *exportVariant) name() string { return entity.VariantExport }

func (v *exportVariant) build(ctx context.Context, in *orderSnapshot) (*preparedRequest, error) {
	h := in.header
	c := in.client
	receiptType, err := v.tables.ReceiptType(h.ReceiptLetter, h.ReceiptType)
	if err != nil {
		return nil, err
	}
	pos, err := afip.PointOfSaleNumber(h.PointOfSale)
	if err != nil {
		return nil, cae.Failf(cae.ReasonPointOfSale, h.PointOfSale)
	}
	country, err := v.tables.Country(c.CountryCode)
	if err != nil {
		return nil, err
	}
	countryCUIT, err := afip.ParseCUIT(c.CountryCUIT)
	if err != nil {
		return nil, cae.Fail(cae.ReasonClientTaxID)
	}

	items := make([]afip.FEXItem, 0, len(in.lines))
	for _, l := range in.lines {
		item := afip.FEXItem{
			ProDs:        l.Description,
			ProTotalItem: afip.FormatAbs(l.Amount),
			ProQty:       decimal.Zero,
			ProPrecioUni: decimal.Zero,
		}
		if l.MeasurementUnit != 0 {
			unit, err := v.tables.MeasurementUnit(l.MeasurementUnit)
			if err != nil {
				return nil, err
			}
			item.ProUmed = unit
			item.ProPrecioUni = afip.FormatNumber(l.UnitPrice)
			item.ProQty = afip.FormatAbs(l.Quantity)
		}
		items = append(items, item)
	}

	last, err := v.authority.LastAuthorized(ctx, pos, receiptType)
	if err != nil {
		return nil, fmt.Errorf("wsfex: último comprobante autorizado: %w", err)
	}
	lastID, err := v.authority.LastID(ctx)
	if err != nil {
		return nil, fmt.Errorf("wsfex: último id: %w", err)
	}
	next := last + 1

	req := &afip.FEXRequest{
		ID:               lastID + 1,
		FechaCbte:        in.receiptDate.Format(afip.DateLayout),
		CbteTipo:         receiptType,
		PuntoVta:         pos,
		CbteNro:          next,
		TipoExpo:         in.cmd.ExportTypeID,
		PermisoExistente: cae.ExportPermit(receiptType, in.cmd.ExportTypeID, in.cmd.ExportPermitID),
		DstCmp:           country,
		Cliente:          c.BusinessName,
		CuitPaisCliente:  countryCUIT,
		DomicilioCliente: clientAddress(c),
		MonedaID:         v.tables.Currency(h.CurrencyCode),
		MonedaCtz:        afip.FormatNumber(in.cmd.ExchangeRate),
		ImpTotal:         afip.FormatNumber(in.taxes.Total),
		Incoterms:        cae.Incoterms(h.TermsOfDelivery),
		IdiomaCbte:       afip.LanguageSpanish,
		Items:            items,
	}

	return &preparedRequest{
		variant:     entity.VariantExport,
		pointOfSale: pos,
		receiptType: receiptType,
		sequence:    next,
		export:      req,
	}, nil
}

// clientAddress domicilio en una línea; si el ERP no trae Address lo arma con las líneas sueltas.
func clientAddress(c *entity.Client) string {
	if strings.TrimSpace(c.Address) != "" {
		return c.Address
	}
	var parts []string
	for _, p := range []string{c.Address1, c.Address2, c.Address3} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, " ")
}

func (v *exportVariant) submit(ctx context.Context, req *preparedRequest) (authorityOutcome, error) {
	resp, err := v.authority.Authorize(ctx, req.export)
	if err != nil {
		return authorityOutcome{}, err
	}
	return interpretExport(resp), nil
}

// interpretExport aprobado = FEXResultAuth presente con Resultado "A".
// WSFEX devuelve FEXErr/FEXEvents con código 0 cuando no hay nada que informar.
func interpretExport(resp *afip.FEXResponseAuthorize) authorityOutcome {
	var out authorityOutcome
	if resp == nil {
		return out
	}
	out.payload = marshalPayload(resp)
	if resp.FEXErr != nil && resp.FEXErr.ErrCode != 0 {
		out.errors = append(out.errors, entity.AuthorityMessage{Code: resp.FEXErr.ErrCode, Message: resp.FEXErr.ErrMsg})
	}
	if resp.FEXEvents != nil && resp.FEXEvents.EventCode != 0 {
		out.observations = append(out.observations, entity.AuthorityMessage{Code: resp.FEXEvents.EventCode, Message: resp.FEXEvents.EventMsg})
	}
	if r := resp.FEXResultAuth; r != nil {
		out.present = true
		out.result = r.Resultado
		out.reprocessed = r.Reproceso
		out.cae = r.Cae
		out.caeDueDate = r.FchVencCae
		out.sequence = r.CbteNro
		if r.MotivosObs != "" {
			out.observations = append(out.observations, entity.AuthorityMessage{Message: r.MotivosObs})
		}
	}
	return out
}

func (v *exportVariant) buildInvoice(in *orderSnapshot, req *preparedRequest, out authorityOutcome) (*entity.Invoice, error) {
	if !out.approved() {
		return nil, errors.New("wsfex: no se puede registrar un comprobante no aprobado")
	}
	r := req.export
	invoiceDate, err := time.Parse(afip.DateLayout, r.FechaCbte)
	if err != nil {
		return nil, fmt.Errorf("wsfex: fecha del comprobante %q: %w", r.FechaCbte, err)
	}
	dueDate, err := out.dueDate()
	if err != nil || dueDate == nil {
		return nil, fmt.Errorf("wsfex: vencimiento del CAE %q inválido", out.caeDueDate)
	}
	number := cae.InvoiceNumber(in.header.ReceiptLetter, strconv.Itoa(r.PuntoVta), r.CbteNro)

	inv := newInvoice(in, v.companyCUIT, r.CbteTipo, number, r.CbteNro, invoiceDate, out.cae, *dueDate, r.ImpTotal)
	t := in.taxes
	inv.NetAmountTotal = afip.FormatNumber(t.NetAmountTotal)
	inv.NotTaxedTotal = afip.FormatNumber(t.NotTaxedTotal)
	inv.ExemptTotal = afip.FormatNumber(t.ExemptTotal)
	inv.SubTotal = r.ImpTotal
	inv.ExportPermit = in.cmd.ExportPermitID
	inv.ExportType = r.TipoExpo

	// Las filas de exportación no llevan importes en pesos; la base es el total de líneas.
	for _, iva := range t.IVAs {
		inv.Taxes = append(inv.Taxes, newTax(inv, afip.VATDescription, iva.Aliquot.Div(hundred), inv.LinesTotal, afip.FormatNumber(iva.Amount)))
	}
	for _, tr := range t.Tributes {
		desc := tr.Description
		if desc == "" {
			desc = v.tables.Tribute(tr.Type).Description
		}
		if desc == "" {
			desc = "Tributo " + tr.Type
		}
		inv.Taxes = append(inv.Taxes, newTax(inv, desc, tr.Aliquot.Div(hundred), inv.LinesTotal, afip.FormatNumber(tr.Amount)))
	}
	return inv, nil
}
