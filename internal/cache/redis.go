package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/terraincognita07/dailyglow/internal/models"
)

const keyPrefix = "dailyglow:daily:"

type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

func NewRedisClient(options RedisOptions) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         options.Addr,
		Password:     options.Password,
		DB:           options.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// RedisDailyChallengeCache stores the chosen daily challenge per user and
// local day so every instance serves the same pick until midnight.
type RedisDailyChallengeCache struct {
	client redis.Cmdable
}

func NewRedisDailyChallengeCache(client redis.Cmdable) *RedisDailyChallengeCache {
	return &RedisDailyChallengeCache{client: client}
}

func dailyKey(userID uuid.UUID, dayKey string) string {
	return keyPrefix + userID.String() + ":" + dayKey
}

func (cache *RedisDailyChallengeCache) GetDailyChallenge(ctx context.Context, userID uuid.UUID, dayKey string) (*models.Challenge, bool, error) {
	raw, err := cache.client.Get(ctx, dailyKey(userID, dayKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read daily challenge cache: %w", err)
	}
	return decodeEntry(raw)
}

func (cache *RedisDailyChallengeCache) SetDailyChallenge(ctx context.Context, userID uuid.UUID, dayKey string, challenge *models.Challenge, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	raw, err := json.Marshal(entry{Challenge: challenge})
	if err != nil {
		return fmt.Errorf("encode daily challenge: %w", err)
	}
	if err := cache.client.Set(ctx, dailyKey(userID, dayKey), raw, ttl).Err(); err != nil {
		return fmt.Errorf("write daily challenge cache: %w", err)
	}
	return nil
}

func (cache *RedisDailyChallengeCache) Ping(ctx context.Context) error {
	return cache.client.Ping(ctx).Err()
}

// entry wraps the challenge so a cached "nothing left today" is
// distinguishable from a miss.
type entry struct {
	Challenge *models.Challenge `json:"challenge"`
}

func decodeEntry(raw []byte) (*models.Challenge, bool, error) {
	var decoded entry
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, false, fmt.Errorf("decode daily challenge cache: %w", err)
	}
	return decoded.Challenge, true, nil
}
