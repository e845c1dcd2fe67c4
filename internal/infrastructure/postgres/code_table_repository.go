package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/factura-afip/internal/domain/entity"
	"github.com/jhoicas/factura-afip/internal/domain/repository"
)

var _ repository.CodeTableRepository = (*CodeTableRepo)(nil)

// CodeTableRepo lee las tablas de equivalencias ERP -> AFIP.
type CodeTableRepo struct {
	q Querier
}

// NewCodeTableRepository construye el adaptador.
func NewCodeTableRepository(q Querier) *CodeTableRepo {
	return &CodeTableRepo{q: q}
}

// Load lee todas las tablas. Se llama una vez al iniciar.
func (r *CodeTableRepo) Load(ctx context.Context) (*entity.CodeTableSet, error) {
	set := &entity.CodeTableSet{}
	var err error

	if set.ReceiptTypes, err = collect(ctx, r.q, `SELECT letter, receipt_type, afip_id FROM afip_receipt_types`,
		func(row pgx.CollectableRow) (entity.ReceiptTypeCode, error) {
			var c entity.ReceiptTypeCode
			err := row.Scan(&c.Letter, &c.Type, &c.AfipID)
			return c, err
		}); err != nil {
		return nil, fmt.Errorf("tabla de comprobantes: %w", err)
	}
	if set.IVAs, err = collect(ctx, r.q, `SELECT description, aliquot, afip_id FROM afip_vat_aliquots`,
		func(row pgx.CollectableRow) (entity.IVACode, error) {
			var c entity.IVACode
			err := row.Scan(&c.Description, &c.Aliquot, &c.AfipID)
			return c, err
		}); err != nil {
		return nil, fmt.Errorf("tabla de alícuotas: %w", err)
	}
	if set.Tributes, err = collect(ctx, r.q, `SELECT internal_id, afip_id, description FROM afip_tributes`,
		func(row pgx.CollectableRow) (entity.TributeCode, error) {
			var c entity.TributeCode
			err := row.Scan(&c.InternalID, &c.AfipID, &c.Description)
			return c, err
		}); err != nil {
		return nil, fmt.Errorf("tabla de tributos: %w", err)
	}
	if set.Currencies, err = collect(ctx, r.q, `SELECT internal_code, afip_id FROM afip_currencies`,
		func(row pgx.CollectableRow) (entity.CurrencyCode, error) {
			var c entity.CurrencyCode
			err := row.Scan(&c.InternalCode, &c.AfipID)
			return c, err
		}); err != nil {
		return nil, fmt.Errorf("tabla de monedas: %w", err)
	}
	if set.Countries, err = collect(ctx, r.q, `SELECT internal_code, afip_id FROM afip_countries`,
		func(row pgx.CollectableRow) (entity.CountryCode, error) {
			var c entity.CountryCode
			err := row.Scan(&c.InternalCode, &c.AfipID)
			return c, err
		}); err != nil {
		return nil, fmt.Errorf("tabla de países: %w", err)
	}
	if set.MeasurementUnits, err = collect(ctx, r.q, `SELECT internal_id, afip_id FROM afip_measurement_units`,
		func(row pgx.CollectableRow) (entity.MeasurementUnitCode, error) {
			var c entity.MeasurementUnitCode
			err := row.Scan(&c.InternalID, &c.AfipID)
			return c, err
		}); err != nil {
		return nil, fmt.Errorf("tabla de unidades de medida: %w", err)
	}
	return set, nil
}

func collect[T any](ctx context.Context, q Querier, sql string, fn pgx.RowToFunc[T], args ...any) ([]T, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, fn)
}
