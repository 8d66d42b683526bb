package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/terraincognita07/dailyglow/internal/models"
)

type memoryEntry struct {
	challenge *models.Challenge
	expiresAt time.Time
}

// MemoryDailyChallengeCache is the single-instance fallback when no redis
// address is configured.
type MemoryDailyChallengeCache struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryDailyChallengeCache() *MemoryDailyChallengeCache {
	return &MemoryDailyChallengeCache{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (cache *MemoryDailyChallengeCache) GetDailyChallenge(_ context.Context, userID uuid.UUID, dayKey string) (*models.Challenge, bool, error) {
	cache.mu.Lock()
	defer cache.mu.Unlock()

	key := dailyKey(userID, dayKey)
	stored, ok := cache.entries[key]
	if !ok {
		return nil, false, nil
	}
	if !cache.now().Before(stored.expiresAt) {
		delete(cache.entries, key)
		return nil, false, nil
	}
	if stored.challenge == nil {
		return nil, true, nil
	}
	copied := *stored.challenge
	return &copied, true, nil
}

func (cache *MemoryDailyChallengeCache) SetDailyChallenge(_ context.Context, userID uuid.UUID, dayKey string, challenge *models.Challenge, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	cache.mu.Lock()
	defer cache.mu.Unlock()

	now := cache.now()
	cache.evictExpired(now)

	var stored *models.Challenge
	if challenge != nil {
		copied := *challenge
		stored = &copied
	}
	cache.entries[dailyKey(userID, dayKey)] = memoryEntry{challenge: stored, expiresAt: now.Add(ttl)}
	return nil
}

func (cache *MemoryDailyChallengeCache) evictExpired(now time.Time) {
	for key, stored := range cache.entries {
		if !now.Before(stored.expiresAt) {
			delete(cache.entries, key)
		}
	}
}

func (cache *MemoryDailyChallengeCache) Len() int {
	cache.mu.Lock()
	defer cache.mu.Unlock()
	return len(cache.entries)
}
