package repository

import (
	"context"

	"github.com/jhoicas/factura-afip/internal/domain/entity"
)

// CodeTableRepository lee las tablas de equivalencias ERP -> AFIP (una vez, al iniciar).
type CodeTableRepository interface {
	Load(ctx context.Context) (*entity.CodeTableSet, error)
}
