package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-onboarding/internal/application/service"
	"github.com/khoahotran/portfolio-onboarding/internal/config"
	"github.com/khoahotran/portfolio-onboarding/internal/domain/onboarding"
	"github.com/khoahotran/portfolio-onboarding/pkg/logger"
)

const (
	claimKeyPrefix = "username:claim:"
	draftKeyPrefix = "onboarding:draft:"
)

func NewRedisClient(cfg config.Config, log logger.Logger) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("can not connect Redis: %w", err)
	}

	log.Info("Connect Redis successfully.", zap.String("addr", cfg.Redis.Addr))
	return rdb, nil
}

// releaseScript deletes the claim only when the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

type redisClaimStore struct {
	rdb *redis.Client
}

func NewRedisClaimStore(rdb *redis.Client) service.ClaimStore {
	return &redisClaimStore{rdb: rdb}
}

func (s *redisClaimStore) Claim(ctx context.Context, username, token string, ttl time.Duration) (bool, error) {
	key := claimKeyPrefix + username
	ok, err := s.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim username: %w", err)
	}
	if ok {
		return true, nil
	}

	holder, err := s.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET
		return s.rdb.SetNX(ctx, key, token, ttl).Result()
	}
	if err != nil {
		return false, fmt.Errorf("failed to read username claim: %w", err)
	}
	return holder == token, nil
}

func (s *redisClaimStore) Release(ctx context.Context, username, token string) error {
	err := releaseScript.Run(ctx, s.rdb, []string{claimKeyPrefix + username}, token).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return fmt.Errorf("failed to release username claim: %w", err)
	}
	return nil
}

func (s *redisClaimStore) Claimed(ctx context.Context, names []string) (map[string]bool, error) {
	out := make(map[string]bool)
	if len(names) == 0 {
		return out, nil
	}
	keys := make([]string, len(names))
	for i, n := range names {
		keys[i] = claimKeyPrefix + n
	}
	vals, err := s.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read username claims: %w", err)
	}
	for i, v := range vals {
		if v != nil {
			out[names[i]] = true
		}
	}
	return out, nil
}

type redisDraftRepo struct {
	rdb *redis.Client
}

func NewRedisDraftRepo(rdb *redis.Client) onboarding.DraftRepository {
	return &redisDraftRepo{rdb: rdb}
}

func (r *redisDraftRepo) Save(ctx context.Context, d *onboarding.Draft, ttl time.Duration) error {
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to marshal draft: %w", err)
	}
	if err := r.rdb.Set(ctx, draftKeyPrefix+d.ID.String(), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save draft: %w", err)
	}
	return nil
}

func (r *redisDraftRepo) FindByID(ctx context.Context, id uuid.UUID) (*onboarding.Draft, error) {
	payload, err := r.rdb.Get(ctx, draftKeyPrefix+id.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, onboarding.ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load draft: %w", err)
	}
	var d onboarding.Draft
	if err := json.Unmarshal(payload, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal draft: %w", err)
	}
	return &d, nil
}

func (r *redisDraftRepo) Delete(ctx context.Context, id uuid.UUID) error {
	if err := r.rdb.Del(ctx, draftKeyPrefix+id.String()).Err(); err != nil {
		return fmt.Errorf("failed to delete draft: %w", err)
	}
	return nil
}
