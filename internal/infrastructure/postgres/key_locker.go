package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhoicas/factura-afip/internal/application/billing"
	"github.com/jhoicas/factura-afip/internal/domain/entity"
	"github.com/jhoicas/factura-afip/pkg/logger"
)

var _ billing.KeyLocker = (*AdvisoryLocker)(nil)

// AdvisoryLocker serializa las solicitudes de CAE por (punto de venta, tipo, letra) con un advisory
// lock de sesión. El lock vive en una conexión dedicada del pool hasta que se llama unlock; así
// cubre varias transacciones (registro de la solicitud, envío y commit final).
type AdvisoryLocker struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

// NewAdvisoryLocker construye el locker.
func NewAdvisoryLocker(pool *pgxpool.Pool, log *logger.Logger) *AdvisoryLocker {
	if log == nil {
		log = logger.Nop()
	}
	return &AdvisoryLocker{pool: pool, log: log.Named("advisory_lock")}
}

// Lock bloquea hasta obtener el lock de la clave o hasta que ctx se cancele.
func (l *AdvisoryLocker) Lock(ctx context.Context, key entity.ReceiptKey) (func(), error) {
	conn, err := l.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("advisory lock: conexión: %w", err)
	}
	if _, err := conn.Exec(ctx, `SELECT pg_advisory_lock(hashtextextended($1, 0))`, key.String()); err != nil {
		conn.Release()
		if isQueryCanceled(err) || ctx.Err() != nil {
			return nil, fmt.Errorf("advisory lock %s: %w", key, context.Cause(ctx))
		}
		return nil, fmt.Errorf("advisory lock %s: %w", key, err)
	}

	return func() {
		// Desbloquear aunque el contexto del llamador ya no exista.
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := conn.Exec(ctx, `SELECT pg_advisory_unlock(hashtextextended($1, 0))`, key.String()); err != nil {
			// Sin unlock la sesión conserva el lock: se descarta la conexión.
			l.log.Error().Err(err).Str("key", key.String()).Msg("no se pudo liberar el advisory lock")
			_ = conn.Conn().Close(ctx)
		}
		conn.Release()
	}, nil
}
