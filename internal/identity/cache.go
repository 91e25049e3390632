package identity

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/codeclash/codeclash-backend/internal/models"
)

const cacheKeyPrefix = "identity:"

// CachedResolver Redis read-through 캐시를 얹은 해석기
//
// 캐시 오류는 fail-open: 로그만 남기고 원본 스토어로 조회한다.
// 레이팅/레벨은 연결 시점 스냅샷이므로 짧은 TTL이면 충분하다.
type CachedResolver struct {
	inner  Resolver
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedResolver 캐시 해석기 생성
func NewCachedResolver(inner Resolver, client *redis.Client, ttl time.Duration, logger *zap.Logger) *CachedResolver {
	return &CachedResolver{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// Resolve 캐시 우선 조회, 미스 시 원본 스토어 조회 후 캐시 적재
func (c *CachedResolver) Resolve(ctx context.Context, userID string) (*models.User, error) {
	key := cacheKeyPrefix + userID

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var user models.User
		if err := json.Unmarshal(data, &user); err == nil && user.ID != "" {
			return &user, nil
		}
		// 깨진 캐시 엔트리는 버리고 원본 조회
		c.client.Del(ctx, key)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.Warn("Identity cache read failed",
			zap.String("userId", userID),
			zap.Error(err))
	}

	user, err := c.inner.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(user); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("Identity cache write failed",
				zap.String("userId", userID),
				zap.Error(err))
		}
	}

	return user, nil
}
