package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/factura-afip/internal/domain/entity"
	"github.com/jhoicas/factura-afip/internal/domain/repository"
)

var _ repository.AuthorizationLogRepository = (*AuthorizationLogRepo)(nil)

// AuthorizationLogRepo auditoría de solicitudes y respuestas AFIP. Sólo inserta: las filas son inmutables.
type AuthorizationLogRepo struct {
	q Querier
}

// NewAuthorizationLogRepository construye el adaptador. Pasar pool o tx (Querier).
func NewAuthorizationLogRepository(q Querier) *AuthorizationLogRepo {
	return &AuthorizationLogRepo{q: q}
}

// CreateRequest registra la solicitud antes del envío.
func (r *AuthorizationLogRepo) CreateRequest(ctx context.Context, req *entity.AuthorizationRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO authorization_requests (id, order_id, correlation_id, variant, point_of_sale, receipt_type,
		                                    sequence, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		req.ID, req.OrderID, req.CorrelationID, req.Variant, req.PointOfSale, req.ReceiptType,
		req.Sequence, req.Payload, req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert authorization request: %w", err)
	}
	return nil
}

// CreateResponse registra la respuesta (o la falla de transporte). Errores y observaciones van como JSONB.
func (r *AuthorizationLogRepo) CreateResponse(ctx context.Context, resp *entity.AuthorizationResponse) error {
	if resp.ID == "" {
		resp.ID = uuid.New().String()
	}
	errs := resp.Errors
	if errs == nil {
		errs = []entity.AuthorityMessage{}
	}
	obs := resp.Observations
	if obs == nil {
		obs = []entity.AuthorityMessage{}
	}
	_, err := r.q.Exec(ctx, `
		INSERT INTO authorization_responses (id, request_id, order_id, result, reprocessed, cae, cae_due_date,
		                                     errors, observations, payload, transport_error, duration_ms, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		resp.ID, resp.RequestID, resp.OrderID, resp.Result, resp.Reprocessed, resp.CAE, resp.CAEDueDate,
		errs, obs, resp.Payload, resp.TransportError, resp.DurationMS, resp.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert authorization response: %w", err)
	}
	return nil
}

// ListByOrder respuestas de una orden, de la más vieja a la más nueva.
func (r *AuthorizationLogRepo) ListByOrder(ctx context.Context, orderID string) ([]*entity.AuthorizationResponse, error) {
	rows, err := r.q.Query(ctx, `
		SELECT id, request_id, order_id, result, reprocessed, cae, cae_due_date, errors, observations,
		       payload, transport_error, duration_ms, created_at
		FROM authorization_responses WHERE order_id = $1 ORDER BY created_at`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list authorization responses: %w", err)
	}
	defer rows.Close()
	var list []*entity.AuthorizationResponse
	for rows.Next() {
		var a entity.AuthorizationResponse
		if err := rows.Scan(&a.ID, &a.RequestID, &a.OrderID, &a.Result, &a.Reprocessed, &a.CAE, &a.CAEDueDate,
			&a.Errors, &a.Observations, &a.Payload, &a.TransportError, &a.DurationMS, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan authorization response: %w", err)
		}
		list = append(list, &a)
	}
	return list, rows.Err()
}
