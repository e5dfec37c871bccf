// Package lock implementa inventory.Locker: exclusión mutua por material en proceso o con Redis.
package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
)

var _ inventory.Locker = (*LocalLocker)(nil)

// LocalLocker mutex por clave dentro del proceso. Las entradas se eliminan cuando nadie las usa.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
	wait  time.Duration
}

type keyLock struct {
	sem  chan struct{} // capacidad 1: ocupado = lock tomado
	refs int           // holders + waiters
}

// NewLocalLocker wait acota la espera por el lock (0 = solo el deadline del contexto).
func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{locks: make(map[string]*keyLock), wait: wait}
}

// Acquire bloquea key hasta obtenerla, hasta que venza wait o se cancele ctx.
func (l *LocalLocker) Acquire(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{sem: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	waitCtx := ctx
	if l.wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.wait)
		defer cancel()
	}

	select {
	case kl.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-kl.sem
				l.unref(key, kl)
			})
		}, nil
	case <-waitCtx.Done():
		l.unref(key, kl)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("lock %q: espera agotada tras %s: %w", key, l.wait, domain.ErrConflict)
	}
}

func (l *LocalLocker) unref(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// size entradas vivas (pruebas).
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
