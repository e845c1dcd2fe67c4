package postgres_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factura-afip/internal/domain/entity"
	"github.com/jhoicas/factura-afip/internal/infrastructure/postgres"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestSummarizeTaxes_IVAYTributos(t *testing.T) {
	rows := []postgres.TaxRow{
		{Kind: postgres.TaxKindVAT, Aliquot: d("21"), TaxBase: d("100"), Amount: d("21")},
		{Kind: postgres.TaxKindVAT, Aliquot: d("10.5"), TaxBase: d("50"), Amount: d("5.25")},
		{Kind: postgres.TaxKindTribute, Type: "IIBB-BA", Description: "Percepción IIBB", Aliquot: d("3"), TaxBase: d("150"), Amount: d("4.5")},
	}
	r := postgres.SummarizeTaxes(&entity.OrderHeader{}, nil, rows)

	assert.Equal(t, "150", r.NetAmountTotal.String())
	assert.Equal(t, "26.25", r.IVATotal.String())
	assert.Equal(t, "4.5", r.TributesTotal.String())
	assert.Equal(t, "150", r.TaxBase.String())
	assert.Equal(t, "180.75", r.Total.String())
	require.Len(t, r.IVAs, 2)
	require.Len(t, r.Tributes, 1)
	assert.Equal(t, "IIBB-BA", r.Tributes[0].Type)
}

func TestSummarizeTaxes_NoGravadoYExento(t *testing.T) {
	rows := []postgres.TaxRow{
		{Kind: postgres.TaxKindNotTaxed, TaxBase: d("30")},
		{Kind: postgres.TaxKindExempt, TaxBase: d("20")},
	}
	r := postgres.SummarizeTaxes(&entity.OrderHeader{}, nil, rows)

	assert.Equal(t, "30", r.NotTaxedTotal.String())
	assert.Equal(t, "20", r.ExemptTotal.String())
	assert.Equal(t, "50", r.Total.String())
	assert.True(t, r.IVATotal.IsZero())
}

func TestSummarizeTaxes_SinFilasEsExentoConDescuento(t *testing.T) {
	lines := []entity.OrderLine{{Amount: d("80")}, {Amount: d("20")}}
	r := postgres.SummarizeTaxes(&entity.OrderHeader{OrderDiscount: d("10")}, lines, nil)

	assert.Equal(t, "90", r.ExemptTotal.String())
	assert.Equal(t, "90", r.Total.String())
	assert.Equal(t, "90", r.TaxBase.String())
}

func TestSummarizeTaxes_NotaDeCreditoConservaSigno(t *testing.T) {
	rows := []postgres.TaxRow{{Kind: postgres.TaxKindVAT, Aliquot: d("21"), TaxBase: d("-100"), Amount: d("-21")}}
	r := postgres.SummarizeTaxes(&entity.OrderHeader{ReceiptType: "2"}, nil, rows)

	assert.True(t, r.TaxBase.IsNegative())
	assert.Equal(t, "-121", r.Total.String())
}
