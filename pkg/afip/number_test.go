package afip_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/factura-afip/pkg/afip"
)

func TestFormatNumber_RedondeoComercial(t *testing.T) {
	cases := map[string]string{
		"10.005":  "10.01",
		"10.004":  "10",
		"-10.005": "-10.01",
		"121":     "121",
		"0.125":   "0.13",
	}
	for in, want := range cases {
		got := afip.FormatNumber(decimal.RequireFromString(in))
		assert.True(t, got.Equal(decimal.RequireFromString(want)), "%s -> %s (obtenido %s)", in, want, got)
	}
}

func TestFormatAbs_SiempreNoNegativo(t *testing.T) {
	got := afip.FormatAbs(decimal.RequireFromString("-121.456"))
	assert.Equal(t, "121.46", got.StringFixed(2))
}

func TestToPesos(t *testing.T) {
	got := afip.ToPesos(decimal.RequireFromString("100.10"), decimal.RequireFromString("850.333"))
	assert.Equal(t, "85118.33", got.StringFixed(2))
}

func TestPointOfSale_Relleno(t *testing.T) {
	assert.Equal(t, "00005", afip.PointOfSale("5"))
	assert.Equal(t, "00005", afip.PointOfSale(" 00005 "))
	assert.Equal(t, "123456", afip.PointOfSale("123456"))
}

func TestRequiresServicePeriod(t *testing.T) {
	assert.False(t, afip.RequiresServicePeriod(afip.ConceptProducts))
	assert.True(t, afip.RequiresServicePeriod(afip.ConceptServices))
	assert.True(t, afip.RequiresServicePeriod(afip.ConceptProductsAndServices))
	assert.False(t, afip.RequiresServicePeriod(afip.ConceptUnclassified))
}
