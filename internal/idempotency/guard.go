package idempotency

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	redis "github.com/redis/go-redis/v9"
	"github.com/smallbiznis/agrichar/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	HeaderKey    = "Idempotency-Key"
	maxKeyLength = 128
	keyFormat    = "idempotency:%s:%s:%s"
)

var (
	ErrDuplicateRequest = errors.New("duplicate_request")
	ErrInvalidKey       = errors.New("invalid_idempotency_key")
)

// Guard rejects a replayed Idempotency-Key on consumption endpoints within
// the configured TTL. A nil store disables it.
type Guard struct {
	store Store
	ttl   time.Duration
	log   *zap.Logger
}

// Claim is a held key. Release it when the request failed so the client can
// retry with the same key.
type Claim struct {
	Key   string
	Token string
}

type Params struct {
	fx.In

	Lc  fx.Lifecycle `optional:"true"`
	Cfg config.Config
	Log *zap.Logger
}

func NewGuard(p Params) (*Guard, error) {
	log := p.Log.Named("idempotency")
	addr := strings.TrimSpace(p.Cfg.RedisAddr)
	if addr == "" {
		log.Info("idempotency guard disabled, redis not configured")
		return &Guard{log: log}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: strings.TrimSpace(p.Cfg.RedisPassword),
		DB:       p.Cfg.RedisDB,
	})
	store := NewRedisStore(client)

	if p.Lc != nil {
		p.Lc.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return client.Ping(ctx).Err()
			},
			OnStop: func(ctx context.Context) error {
				return store.Close()
			},
		})
	}

	return NewGuardWithStore(store, p.Cfg.IdempotencyTTL, log), nil
}

func NewGuardWithStore(store Store, ttl time.Duration, log *zap.Logger) *Guard {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Guard{store: store, ttl: ttl, log: log}
}

func (g *Guard) Enabled() bool {
	return g != nil && g.store != nil
}

// Begin claims key for ownerID on scope. An empty key is not guarded and
// yields a nil claim.
func (g *Guard) Begin(ctx context.Context, ownerID, scope, key string) (*Claim, error) {
	key = strings.TrimSpace(key)
	if !g.Enabled() || key == "" {
		return nil, nil
	}
	if len(key) > maxKeyLength {
		return nil, ErrInvalidKey
	}

	claim := &Claim{
		Key:   fmt.Sprintf(keyFormat, strings.TrimSpace(ownerID), scope, key),
		Token: uuid.NewString(),
	}
	ok, err := g.store.Claim(ctx, claim.Key, claim.Token, g.ttl)
	if err != nil {
		return nil, err
	}
	if !ok {
		g.log.Info("duplicate submission rejected",
			zap.String("owner_id", ownerID),
			zap.String("scope", scope),
		)
		return nil, ErrDuplicateRequest
	}
	return claim, nil
}

func (g *Guard) Release(ctx context.Context, claim *Claim) {
	if !g.Enabled() || claim == nil {
		return
	}
	if err := g.store.Release(ctx, claim.Key, claim.Token); err != nil {
		g.log.Warn("release idempotency key failed", zap.Error(err))
	}
}
