package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/factura-afip/internal/domain/cae"
	"github.com/jhoicas/factura-afip/internal/domain/entity"
	"github.com/jhoicas/factura-afip/pkg/afip"
)

// domesticVariant WSFEv1: facturas, notas de débito y crédito A/B.
type domesticVariant struct {
	authority   DomesticAuthority
	tables      *cae.CodeTables
	companyCUIT string
	docType     int
}

func (v *domesticVariant) name() string { return entity.VariantDomestic }

func (v *domesticVariant) build(ctx context.Context, in *orderSnapshot) (*preparedRequest, error) {
	h := in.header
	receiptType, err := v.tables.ReceiptType(h.ReceiptLetter, h.ReceiptType)
	if err != nil {
		return nil, err
	}
	pos, err := afip.PointOfSaleNumber(h.PointOfSale)
	if err != nil {
		return nil, cae.Failf(cae.ReasonPointOfSale, h.PointOfSale)
	}
	docNumber, err := afip.ParseCUIT(in.client.CUIT)
	if err != nil {
		return nil, cae.Fail(cae.ReasonClientTaxID)
	}

	last, err := v.authority.LastAuthorized(ctx, pos, receiptType)
	if err != nil {
		return nil, fmt.Errorf("wsfe: último comprobante autorizado: %w", err)
	}
	next := last + 1
	concept := cae.Concept(h)
	t := in.taxes

	det := afip.FECAEDetRequest{
		Concepto:   concept,
		DocTipo:    v.docType,
		DocNro:     docNumber,
		CbteDesde:  next,
		CbteHasta:  next,
		CbteFch:    in.receiptDate.Format(afip.DateLayout),
		ImpTotal:   afip.FormatAbs(t.Total),
		ImpNeto:    afip.FormatAbs(t.NetAmountTotal),
		ImpTotConc: afip.FormatAbs(t.NotTaxedTotal),
		ImpOpEx:    afip.FormatAbs(t.ExemptTotal),
		ImpTrib:    afip.FormatAbs(t.TributesTotal),
		ImpIVA:     afip.FormatAbs(t.IVATotal),
		MonID:      v.tables.Currency(h.CurrencyCode),
		MonCotiz:   in.cmd.ExchangeRate,
	}

	if afip.RequiresServicePeriod(concept) {
		if h.ContractFromDate == nil || h.ContractToDate == nil {
			return nil, cae.Fail(cae.ReasonServicePeriod)
		}
		det.FchServDesde = h.ContractFromDate.Format(afip.DateLayout)
		det.FchServHasta = h.ContractToDate.Format(afip.DateLayout)
		det.FchVtoPago = in.receiptDate.AddDate(0, 0, h.InvoiceExpirationDays).Format(afip.DateLayout)
	}

	for _, tr := range t.Tributes {
		code := v.tables.Tribute(tr.Type)
		tributo := afip.Tributo{
			ID:      code.AfipID,
			BaseImp: afip.FormatAbs(tr.TaxBase),
			Alic:    afip.FormatNumber(tr.Aliquot),
			Importe: afip.FormatAbs(tr.Amount),
		}
		if tributo.ID == afip.TributeOther {
			tributo.Desc = tr.Description
		}
		det.Tributos = append(det.Tributos, tributo)
	}

	if det.ImpIVA.IsPositive() {
		for _, iva := range t.IVAs {
			if iva.TaxBase.IsZero() && iva.Amount.IsZero() {
				continue
			}
			id, err := v.tables.VATID(afip.VATDescription, iva.Aliquot)
			if err != nil {
				return nil, err
			}
			det.Iva = append(det.Iva, afip.AlicIva{
				ID:      id,
				BaseImp: afip.FormatAbs(iva.TaxBase),
				Importe: afip.FormatAbs(iva.Amount),
			})
		}
	}

	return &preparedRequest{
		variant:     entity.VariantDomestic,
		pointOfSale: pos,
		receiptType: receiptType,
		sequence:    next,
		domestic: &afip.FECAERequest{
			FeCabReq: afip.FECAECabRequest{CantReg: 1, PtoVta: pos, CbteTipo: receiptType},
			FeDetReq: []afip.FECAEDetRequest{det},
		},
	}, nil
}

func (v *domesticVariant) submit(ctx context.Context, req *preparedRequest) (authorityOutcome, error) {
	resp, err := v.authority.Authorize(ctx, req.domestic)
	if err != nil {
		return authorityOutcome{}, err
	}
	return interpretDomestic(resp), nil
}

// interpretDomestic aprobado = cabecera presente con Resultado "A"; CAE y vencimiento del primer detalle.
func interpretDomestic(resp *afip.FECAEResponse) authorityOutcome {
	var out authorityOutcome
	if resp == nil {
		return out
	}
	out.payload = marshalPayload(resp)
	for _, e := range resp.Errors {
		out.errors = append(out.errors, entity.AuthorityMessage{Code: e.Code, Message: e.Msg})
	}
	if resp.FeCabResp != nil {
		out.present = true
		out.result = resp.FeCabResp.Resultado
		out.reprocessed = resp.FeCabResp.Reproceso
	}
	for i, d := range resp.FeDetResp {
		for _, o := range d.Observaciones {
			out.observations = append(out.observations, entity.AuthorityMessage{Code: o.Code, Message: o.Msg})
		}
		if i == 0 {
			out.cae = d.CAE
			out.caeDueDate = d.CAEFchVto
			out.sequence = d.CbteHasta
		}
	}
	return out
}

func (v *domesticVariant) buildInvoice(in *orderSnapshot, req *preparedRequest, out authorityOutcome) (*entity.Invoice, error) {
	if !out.approved() {
		return nil, errors.New("wsfe: no se puede registrar un comprobante no aprobado")
	}
	det := req.domestic.FeDetReq[0]
	invoiceDate, err := time.Parse(afip.DateLayout, det.CbteFch)
	if err != nil {
		return nil, fmt.Errorf("wsfe: fecha del comprobante %q: %w", det.CbteFch, err)
	}
	dueDate, err := out.dueDate()
	if err != nil || dueDate == nil {
		return nil, fmt.Errorf("wsfe: vencimiento del CAE %q inválido", out.caeDueDate)
	}
	sequence := out.sequence
	if sequence == 0 {
		sequence = req.sequence
	}
	number := cae.InvoiceNumber(in.header.ReceiptLetter, strconv.Itoa(req.domestic.FeCabReq.PtoVta), sequence)

	inv := newInvoice(in, v.companyCUIT, req.receiptType, number, sequence, invoiceDate, out.cae, *dueDate, det.ImpTotal)
	inv.NetAmountTotal = det.ImpNeto
	inv.NotTaxedTotal = det.ImpTotConc
	inv.ExemptTotal = det.ImpOpEx
	inv.SubTotal = det.ImpNeto

	rate := in.cmd.ExchangeRate
	for _, iva := range det.Iva {
		aliquot, _ := v.tables.VATAliquot(iva.ID)
		tax := newTax(inv, afip.VATDescription, aliquot, iva.BaseImp, iva.Importe)
		tax.SubTotalInPesos = decimal.NewNullDecimal(afip.ToPesos(iva.BaseImp, rate))
		tax.TaxAmountInPesos = decimal.NewNullDecimal(afip.ToPesos(iva.Importe, rate))
		inv.Taxes = append(inv.Taxes, tax)
	}
	for i, tr := range det.Tributos {
		tax := newTax(inv, v.tributeDescription(tr, in.taxes, i), tr.Alic.Div(hundred), tr.BaseImp, tr.Importe)
		tax.SubTotalInPesos = decimal.NewNullDecimal(afip.ToPesos(tr.BaseImp, rate))
		tax.TaxAmountInPesos = decimal.NewNullDecimal(afip.ToPesos(tr.Importe, rate))
		inv.Taxes = append(inv.Taxes, tax)
	}
	return inv, nil
}

// tributeDescription la descripción enviada (tributo 99), la del cálculo de impuestos o la de la tabla.
func (v *domesticVariant) tributeDescription(tr afip.Tributo, taxes *entity.TaxResult, i int) string {
	if tr.Desc != "" {
		return tr.Desc
	}
	if i < len(taxes.Tributes) {
		if d := taxes.Tributes[i].Description; d != "" {
			return d
		}
		if d := v.tables.Tribute(taxes.Tributes[i].Type).Description; d != "" {
			return d
		}
	}
	return fmt.Sprintf("Tributo %d", tr.ID)
}
