package billing_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/factura-afip/internal/application/billing"
	"github.com/jhoicas/factura-afip/internal/domain"
	"github.com/jhoicas/factura-afip/pkg/afip"
)

type fakeQuerier struct {
	resp  *afip.FECompConsResponse
	calls int
}

func (f *fakeQuerier) QueryReceipt(context.Context, int, int, int64) (*afip.FECompConsResponse, error) {
	f.calls++
	return f.resp, nil
}

func TestReceiptQuery_ArgumentosInvalidos(t *testing.T) {
	q := &fakeQuerier{}
	uc := billing.NewReceiptQueryUseCase(q)

	_, err := uc.Get(context.Background(), 1, 0, 10)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.Zero(t, q.calls)
}

func TestReceiptQuery_NoEncontrado(t *testing.T) {
	uc := billing.NewReceiptQueryUseCase(&fakeQuerier{})

	_, err := uc.Get(context.Background(), 1, 5, 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReceiptQuery_DevuelveComprobante(t *testing.T) {
	q := &fakeQuerier{resp: &afip.FECompConsResponse{CbteDesde: 10, CodAutor: "74123456789012", Resultado: "A"}}
	uc := billing.NewReceiptQueryUseCase(q)

	r, err := uc.Get(context.Background(), 1, 5, 10)
	require.NoError(t, err)
	assert.Equal(t, "74123456789012", r.CodAutor)
	assert.Equal(t, 1, q.calls)
}
