// Package redislock serializa escaneos de la misma clave (SKU, ubicación) entre varios
// procesos usando bloqueos de Redis.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"time"

	bsmlock "github.com/bsm/redislock"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/inventario-audit/internal/application/audit"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
	"github.com/jhoicas/inventario-audit/pkg/config"
	"github.com/jhoicas/inventario-audit/pkg/logger"
)

const (
	keyPrefix    = "audit:scan"
	retryBackoff = 25 * time.Millisecond
	defaultTTL   = 5 * time.Second
)

// ErrLockTimeout no se obtuvo el bloqueo dentro del TTL. El motor lo informa como conflicto.
var ErrLockTimeout = audit.ErrLockTimeout

var _ audit.Locker = (*Locker)(nil)

// Locker implementa audit.Locker sobre redislock.
type Locker struct {
	client *bsmlock.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewClient abre el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// New construye el Locker. ttl acota tanto la vida del bloqueo como la espera para obtenerlo.
func New(rdb redis.UniversalClient, ttl time.Duration, log *logger.Logger) *Locker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if log == nil {
		log = logger.Nop()
	}
	return &Locker{client: bsmlock.New(rdb), ttl: ttl, log: log.Component("scan_lock")}
}

// Key clave Redis del bloqueo de un ítem.
func Key(k entity.ItemKey) string {
	return fmt.Sprintf("%s:%s:%s", keyPrefix, k.Location, k.SKU)
}

// Lock reintenta hasta obtener el bloqueo o agotar el TTL.
func (l *Locker) Lock(ctx context.Context, key entity.ItemKey) (func(), error) {
	waitCtx, cancel := context.WithTimeout(ctx, l.ttl)
	defer cancel()

	lock, err := l.client.Obtain(waitCtx, Key(key), l.ttl, &bsmlock.Options{
		RetryStrategy: bsmlock.LinearBackoff(retryBackoff),
	})
	if err != nil && ctx.Err() != nil {
		// la petición se canceló mientras esperaba; no es un conflicto
		return nil, ctx.Err()
	}
	if errors.Is(err, bsmlock.ErrNotObtained) || (err != nil && waitCtx.Err() != nil) {
		return nil, fmt.Errorf("%s/%s: %w", key.Location, key.SKU, ErrLockTimeout)
	}
	if err != nil {
		return nil, fmt.Errorf("obtener bloqueo: %w", err)
	}
	return func() {
		// el contexto de la petición puede estar cancelado; liberar igual
		relCtx, relCancel := context.WithTimeout(context.Background(), time.Second)
		defer relCancel()
		if err := lock.Release(relCtx); err != nil && !errors.Is(err, bsmlock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("sku", key.SKU).Str("location", key.Location).Msg("liberar bloqueo de escaneo")
		}
	}, nil
}
