package cae

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/factura-afip/internal/domain/entity"
	"github.com/jhoicas/factura-afip/pkg/afip"
)

// Reconciliation resultado de comparar el importe en pesos guardado contra el recalculado.
type Reconciliation struct {
	Stored     decimal.Decimal
	Calculated decimal.Decimal
	Difference decimal.Decimal
	Applied    bool // la diferencia se cargó en la primera fila de IVA
}

// Balanced indica que no hubo diferencia.
func (r Reconciliation) Balanced() bool {
	return r.Difference.IsZero()
}

// Message texto de la notificación administrativa; vacío si no hubo diferencia.
func (r Reconciliation) Message() string {
	switch {
	case r.Balanced():
		return ""
	case r.Applied:
		return fmt.Sprintf("Se ajustó la diferencia de redondeo en pesos. Importe de la factura: %s. Importe calculado: %s.",
			r.Stored.StringFixed(2), r.Calculated.StringFixed(2))
	default:
		return fmt.Sprintf("No se pudo ajustar automáticamente la diferencia de redondeo en pesos: la factura no tiene filas de IVA. Importe de la factura: %s. Importe calculado: %s.",
			r.Stored.StringFixed(2), r.Calculated.StringFixed(2))
	}
}

// CalculateAmountInPesos recalcula el total en pesos desde los impuestos:
// suma de impuestos en pesos + bases de IVA en pesos + exento y no gravado convertidos.
func CalculateAmountInPesos(inv *entity.Invoice) decimal.Decimal {
	total := decimal.Zero
	for _, t := range inv.Taxes {
		if t.TaxAmountInPesos.Valid {
			total = total.Add(t.TaxAmountInPesos.Decimal)
		}
		if t.IsVAT() && t.SubTotalInPesos.Valid {
			total = total.Add(t.SubTotalInPesos.Decimal)
		}
	}
	total = total.Add(afip.ToPesos(inv.ExemptTotal, inv.ExchangeRate))
	total = total.Add(afip.ToPesos(inv.NotTaxedTotal, inv.ExchangeRate))
	return total
}

// ReconcilePesos compara AmountInPesos contra el recálculo. Si difieren, carga toda la
// diferencia sobre la primera fila de IVA (aunque haya varias alícuotas: la distribución
// no es proporcional y los reportes existentes dependen de ello).
func ReconcilePesos(inv *entity.Invoice) Reconciliation {
	calculated := CalculateAmountInPesos(inv)
	r := Reconciliation{
		Stored:     inv.AmountInPesos,
		Calculated: calculated,
		Difference: inv.AmountInPesos.Sub(calculated),
	}
	if r.Balanced() {
		return r
	}
	for i := range inv.Taxes {
		if !inv.Taxes[i].IsVAT() {
			continue
		}
		current := inv.Taxes[i].TaxAmountInPesos.Decimal // cero si no es Valid
		inv.Taxes[i].TaxAmountInPesos = decimal.NewNullDecimal(current.Add(r.Difference))
		r.Applied = true
		break
	}
	return r
}
