package cae

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/factura-afip/internal/domain"
	"github.com/jhoicas/factura-afip/internal/domain/entity"
	"github.com/jhoicas/factura-afip/pkg/afip"
)

// CodeTables equivalencias ERP -> AFIP, inmutables después de construidas.
// Se cargan una vez al iniciar el proceso y se inyectan en los constructores de request.
type CodeTables struct {
	receiptTypes map[string]int
	vatIDs       map[string]int
	vatAliquots  map[int]decimal.Decimal
	tributes     map[string]entity.TributeCode
	currencies   map[int]string
	countries    map[string]int
	units        map[int]int
}

// NewCodeTables indexa las tablas leídas de la base.
func NewCodeTables(set *entity.CodeTableSet) *CodeTables {
	t := &CodeTables{
		receiptTypes: make(map[string]int, len(set.ReceiptTypes)),
		vatIDs:       make(map[string]int, len(set.IVAs)),
		vatAliquots:  make(map[int]decimal.Decimal, len(set.IVAs)),
		tributes:     make(map[string]entity.TributeCode, len(set.Tributes)),
		currencies:   make(map[int]string, len(set.Currencies)),
		countries:    make(map[string]int, len(set.Countries)),
		units:        make(map[int]int, len(set.MeasurementUnits)),
	}
	for _, r := range set.ReceiptTypes {
		t.receiptTypes[receiptKey(r.Letter, r.Type)] = r.AfipID
	}
	for _, v := range set.IVAs {
		t.vatIDs[vatKey(v.Description, v.Aliquot)] = v.AfipID
		t.vatAliquots[v.AfipID] = v.Aliquot
	}
	for _, tr := range set.Tributes {
		t.tributes[strings.TrimSpace(tr.InternalID)] = tr
	}
	for _, c := range set.Currencies {
		t.currencies[c.InternalCode] = c.AfipID
	}
	for _, c := range set.Countries {
		t.countries[strings.TrimSpace(c.InternalCode)] = c.AfipID
	}
	for _, u := range set.MeasurementUnits {
		t.units[u.InternalID] = u.AfipID
	}
	return t
}

// ReceiptType código de comprobante AFIP para letra + tipo interno.
func (t *CodeTables) ReceiptType(letter, receiptType string) (int, error) {
	id, ok := t.receiptTypes[receiptKey(letter, receiptType)]
	if !ok {
		return 0, fmt.Errorf("%w: comprobante letra %q tipo %q", domain.ErrCodeNotMapped, letter, receiptType)
	}
	return id, nil
}

// VATID Id de alícuota AFIP. aliquotPercent viene en porcentaje (21); la tabla guarda fracción (0.21).
func (t *CodeTables) VATID(description string, aliquotPercent decimal.Decimal) (int, error) {
	fraction := aliquotPercent.Mul(decimal.RequireFromString("0.01"))
	id, ok := t.vatIDs[vatKey(description, fraction)]
	if !ok {
		return 0, fmt.Errorf("%w: IVA %q alícuota %s", domain.ErrCodeNotMapped, description, aliquotPercent.String())
	}
	return id, nil
}

// VATAliquot alícuota (fracción) de un Id AFIP.
func (t *CodeTables) VATAliquot(afipID int) (decimal.Decimal, bool) {
	a, ok := t.vatAliquots[afipID]
	return a, ok
}

// Tribute tributo AFIP para el tributo interno; sin equivalencia devuelve 99 ("Otros").
func (t *CodeTables) Tribute(internalID string) entity.TributeCode {
	if tr, ok := t.tributes[strings.TrimSpace(internalID)]; ok {
		return tr
	}
	return entity.TributeCode{InternalID: internalID, AfipID: afip.TributeOther}
}

// Currency MonId AFIP; sin equivalencia devuelve "PES".
func (t *CodeTables) Currency(code int) string {
	if id, ok := t.currencies[code]; ok && id != "" {
		return id
	}
	return afip.DefaultCurrency
}

// Country Dst_cmp AFIP del país del ERP.
func (t *CodeTables) Country(code string) (int, error) {
	id, ok := t.countries[strings.TrimSpace(code)]
	if !ok {
		return 0, fmt.Errorf("%w: país %q", domain.ErrCodeNotMapped, code)
	}
	return id, nil
}

// MeasurementUnit Pro_umed AFIP de la unidad del ERP.
func (t *CodeTables) MeasurementUnit(id int) (int, error) {
	u, ok := t.units[id]
	if !ok {
		return 0, fmt.Errorf("%w: unidad de medida %d", domain.ErrCodeNotMapped, id)
	}
	return u, nil
}

func receiptKey(letter, receiptType string) string {
	return strings.ToUpper(strings.TrimSpace(letter)) + "|" + strings.TrimSpace(receiptType)
}

func vatKey(description string, aliquot decimal.Decimal) string {
	return strings.ToUpper(strings.TrimSpace(description)) + "|" + aliquot.String()
}
