package repository

import (
	"context"

	"github.com/jhoicas/factura-afip/internal/domain/entity"
)

// AuthorizationLogRepository auditoría de solicitudes y respuestas AFIP.
type AuthorizationLogRepository interface {
	CreateRequest(ctx context.Context, req *entity.AuthorizationRequest) error
	CreateResponse(ctx context.Context, resp *entity.AuthorizationResponse) error
	ListByOrder(ctx context.Context, orderID string) ([]*entity.AuthorizationResponse, error)
}
