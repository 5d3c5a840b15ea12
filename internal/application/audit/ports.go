package audit

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/jhoicas/inventario-audit/internal/domain"
	"github.com/jhoicas/inventario-audit/internal/domain/entity"
)

// Locker serializa escrituras sobre la misma clave (SKU, ubicación).
// La implementación local cubre un proceso; la de Redis cubre varias estaciones de escaneo.
type Locker interface {
	Lock(ctx context.Context, key entity.ItemKey) (unlock func(), err error)
}

// Metrics contadores operativos del motor. Lo implementa infrastructure/metrics.
type Metrics interface {
	ScanCompleted(state string)
	ImportCompleted(kind string, rows int)
	PersistenceFailed(op string)
}

// NopMetrics implementación vacía de Metrics.
type NopMetrics struct{}

func (NopMetrics) ScanCompleted(string)        {}
func (NopMetrics) ImportCompleted(string, int) {}
func (NopMetrics) PersistenceFailed(string)    {}

// ErrLockTimeout no se obtuvo el bloqueo de la clave a tiempo. Las implementaciones de Locker
// lo envuelven para que el motor lo informe como conflicto.
var ErrLockTimeout = errors.New("bloqueo de clave no obtenido")

// lockError clasifica un error de Locker: espera agotada → ErrConflict; cancelación u otros
// errores pasan sin cambios.
func lockError(key entity.ItemKey, err error) error {
	if errors.Is(err, ErrLockTimeout) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("bloquear %s/%s: %w: %w", key.Location, key.SKU, domain.ErrConflict, err)
	}
	return err
}

// LocalLocker bloqueo por clave dentro del proceso.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[entity.ItemKey]*keyLock
}

// keyLock semáforo de una clave; ch con capacidad 1 lleno = tomado.
type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewLocalLocker construye el bloqueo en memoria.
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[entity.ItemKey]*keyLock)}
}

// Lock bloquea la clave hasta que se invoque unlock. Si ctx se cancela o vence mientras
// espera, devuelve ctx.Err() sin tomar el bloqueo.
func (l *LocalLocker) Lock(ctx context.Context, key entity.ItemKey) (func(), error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(key, kl)
		return nil, ctx.Err()
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			<-kl.ch
			l.release(key, kl)
		})
	}, nil
}

func (l *LocalLocker) release(key entity.ItemKey, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}
