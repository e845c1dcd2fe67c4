package afip_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factura-afip/pkg/afip"
)

func TestValidateCUIT_Validos(t *testing.T) {
	for _, cuit := range []string{"30000000007", "30-00000000-7", "20-12345678-6", "30712345671"} {
		assert.NoError(t, afip.ValidateCUIT(cuit), cuit)
	}
}

func TestValidateCUIT_DigitoIncorrecto(t *testing.T) {
	err := afip.ValidateCUIT("20-12345678-5")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "esperado 6")
}

func TestValidateCUIT_LongitudIncorrecta(t *testing.T) {
	assert.Error(t, afip.ValidateCUIT("2012345678"))
	assert.Error(t, afip.ValidateCUIT(""))
}

func TestComputeCUITCheckDigit_Resto11DaCero(t *testing.T) {
	// 3,0,0,0,0,0,0,0,0,0 -> suma 15, 15 % 11 = 4, 11 - 4 = 7
	d, err := afip.ComputeCUITCheckDigit("3000000000")
	require.NoError(t, err)
	assert.Equal(t, byte('7'), d)
}

func TestParseCUIT_QuitaGuiones(t *testing.T) {
	n, err := afip.ParseCUIT("30-71234567-1")
	require.NoError(t, err)
	assert.Equal(t, int64(30712345671), n)

	_, err = afip.ParseCUIT("--")
	assert.Error(t, err)
}
