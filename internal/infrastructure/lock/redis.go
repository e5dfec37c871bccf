package lock

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jhoicas/almoxarifado-api/internal/application/inventory"
	"github.com/jhoicas/almoxarifado-api/internal/domain"
	"github.com/jhoicas/almoxarifado-api/pkg/logger"
)

var _ inventory.Locker = (*RedisLocker)(nil)

// releaseScript borra la clave solo si el lease sigue siendo nuestro.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// RedisOptions configuración del lease lock.
type RedisOptions struct {
	Prefix   string        // prefijo de las claves, ej. "almox:lock:material:"
	LeaseTTL time.Duration // un holder caído libera el material al vencer
	Wait     time.Duration // espera máxima para adquirir
	Poll     time.Duration // intervalo entre intentos
}

// RedisLocker lease lock (SET NX PX + token) compartido entre réplicas.
type RedisLocker struct {
	rdb  redis.UniversalClient
	opts RedisOptions
	log  *logger.Logger
}

// NewRedisLocker construye el locker. LeaseTTL debe superar el timeout de la mutación.
func NewRedisLocker(rdb redis.UniversalClient, opts RedisOptions, log *logger.Logger) *RedisLocker {
	if opts.Prefix == "" {
		opts.Prefix = "almox:lock:material:"
	}
	if opts.LeaseTTL <= 0 {
		opts.LeaseTTL = 10 * time.Second
	}
	if opts.Poll <= 0 {
		opts.Poll = 10 * time.Millisecond
	}
	if log == nil {
		log = logger.Nop()
	}
	return &RedisLocker{rdb: rdb, opts: opts, log: log}
}

// NewRedisClient crea el cliente y verifica la conexión con PING.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    password,
		DB:          db,
		DialTimeout: 5 * time.Second,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

// Acquire intenta SET NX hasta obtener el lease, vencer Wait o cancelarse ctx.
func (l *RedisLocker) Acquire(ctx context.Context, key string) (func(), error) {
	k := l.opts.Prefix + key
	token := uuid.New().String()

	waitCtx := ctx
	if l.opts.Wait > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = context.WithTimeout(ctx, l.opts.Wait)
		defer cancel()
	}

	ticker := time.NewTicker(l.opts.Poll)
	defer ticker.Stop()
	for {
		ok, err := l.rdb.SetNX(waitCtx, k, token, l.opts.LeaseTTL).Result()
		if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("redis lock %q: %w", key, err)
		}
		if ok {
			return l.releaser(k, token), nil
		}
		select {
		case <-waitCtx.Done():
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("lock %q: espera agotada tras %s: %w", key, l.opts.Wait, domain.ErrConflict)
		case <-ticker.C:
		}
	}
}

// releaser usa un contexto propio: el del movimiento puede haber vencido.
func (l *RedisLocker) releaser(k, token string) func() {
	var once sync.Once
	return func() {
		once.Do(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			if err := releaseScript.Run(ctx, l.rdb, []string{k}, token).Err(); err != nil {
				l.log.Warn().Err(err).Str("key", k).Msg("no se pudo liberar el lease; vencerá por TTL")
			}
		})
	}
}
