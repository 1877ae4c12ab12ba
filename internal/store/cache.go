package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"sais/internal/attendance"
)

// SummaryCache keeps computed attendance summaries in redis per user.
// The DB stays authoritative: every error path reports a miss so the
// service recomputes.
type SummaryCache struct {
	redis *Redis
	ttl   time.Duration
	log   *logrus.Logger
}

// NewSummaryCache creates a cache. A nil redis client disables caching.
func NewSummaryCache(r *Redis, ttl time.Duration, log *logrus.Logger) *SummaryCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &SummaryCache{redis: r, ttl: ttl, log: log}
}

func (c *SummaryCache) key(userID string) string {
	return "sais:summaries:" + userID
}

// Get returns the cached summary list for a user, or a miss.
func (c *SummaryCache) Get(ctx context.Context, userID string) ([]attendance.Summary, bool) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return nil, false
	}
	raw, err := c.redis.Client.Get(ctx, c.key(userID)).Bytes()
	if err != nil {
		return nil, false
	}
	var summaries []attendance.Summary
	if err := json.Unmarshal(raw, &summaries); err != nil {
		c.log.WithError(err).Warn("summary cache: bad payload, dropping")
		c.Invalidate(ctx, userID)
		return nil, false
	}
	return summaries, true
}

// Set stores the summary list with the configured TTL.
func (c *SummaryCache) Set(ctx context.Context, userID string, summaries []attendance.Summary) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return
	}
	raw, err := json.Marshal(summaries)
	if err != nil {
		return
	}
	if err := c.redis.Client.Set(ctx, c.key(userID), raw, c.ttl).Err(); err != nil {
		c.log.WithError(err).Debug("summary cache: set failed")
	}
}

// Invalidate drops the cached list after any write to the ledger.
func (c *SummaryCache) Invalidate(ctx context.Context, userID string) {
	if c == nil || c.redis == nil || c.redis.Client == nil {
		return
	}
	if err := c.redis.Client.Del(ctx, c.key(userID)).Err(); err != nil {
		c.log.WithError(err).Debug("summary cache: invalidate failed")
	}
}
