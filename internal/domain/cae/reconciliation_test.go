package cae_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factura-afip/internal/domain/cae"
	"github.com/jhoicas/factura-afip/internal/domain/entity"
)

func nd(s string) decimal.NullDecimal { return decimal.NewNullDecimal(d(s)) }

func TestReconcilePesos_Consistente(t *testing.T) {
	inv := &entity.Invoice{
		ExchangeRate:  d("1"),
		AmountInPesos: d("121"),
		Taxes: []entity.InvoiceTax{
			{Description: "IVA", SubTotalInPesos: nd("100"), TaxAmountInPesos: nd("21")},
		},
	}
	r := cae.ReconcilePesos(inv)
	assert.True(t, r.Balanced())
	assert.False(t, r.Applied)
	assert.Empty(t, r.Message())
	assert.Equal(t, "21", inv.Taxes[0].TaxAmountInPesos.Decimal.String())
}

func TestReconcilePesos_DiferenciaEnPrimerIVA(t *testing.T) {
	// Dos alícuotas: toda la diferencia va a la primera fila de IVA (política vigente, no proporcional).
	inv := &entity.Invoice{
		ExchangeRate:  d("850.5"),
		AmountInPesos: d("10000.02"),
		ExemptTotal:   d("1"),
		Taxes: []entity.InvoiceTax{
			{Description: "Percepción IIBB", TaxAmountInPesos: nd("100")},
			{Description: "IVA", SubTotalInPesos: nd("7000"), TaxAmountInPesos: nd("1470")},
			{Description: "IVA", SubTotalInPesos: nd("500"), TaxAmountInPesos: nd("52.50")},
		},
	}
	// calculado = 100 + 1470 + 52.50 + 7000 + 500 + 850.50 = 9973
	r := cae.ReconcilePesos(inv)
	require.False(t, r.Balanced())
	assert.True(t, r.Applied)
	assert.Equal(t, "9973.00", r.Calculated.StringFixed(2))
	assert.Equal(t, "27.02", r.Difference.StringFixed(2))
	assert.Equal(t, "1497.02", inv.Taxes[1].TaxAmountInPesos.Decimal.StringFixed(2))
	assert.Equal(t, "52.50", inv.Taxes[2].TaxAmountInPesos.Decimal.StringFixed(2))
	assert.Contains(t, r.Message(), "10000.02")
	assert.Contains(t, r.Message(), "9973.00")

	// Después del ajuste la factura cuadra.
	assert.True(t, cae.CalculateAmountInPesos(inv).Equal(inv.AmountInPesos))
}

func TestReconcilePesos_SinIVANotifica(t *testing.T) {
	inv := &entity.Invoice{
		ExchangeRate:  d("1"),
		AmountInPesos: d("100.01"),
		NotTaxedTotal: d("100"),
	}
	r := cae.ReconcilePesos(inv)
	assert.False(t, r.Balanced())
	assert.False(t, r.Applied)
	assert.Contains(t, r.Message(), "no tiene filas de IVA")
}

func TestReconcilePesos_IVASinImporteEnPesos(t *testing.T) {
	// Exportación: las filas de IVA no tienen importes en pesos; la diferencia igual se asigna.
	inv := &entity.Invoice{
		ExchangeRate:  d("2"),
		AmountInPesos: d("200"),
		ExemptTotal:   d("90"),
		Taxes:         []entity.InvoiceTax{{Description: "IVA"}},
	}
	r := cae.ReconcilePesos(inv)
	assert.True(t, r.Applied)
	assert.Equal(t, "20", inv.Taxes[0].TaxAmountInPesos.Decimal.String())
}
