package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/yourusername/resumatch-api/internal/model"
)

const jobKeyPrefix = "jobrec:"

func NewRedisClient(ctx context.Context, addr, password string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       0,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return rdb, nil
}

// JobCache stores parsed job records keyed by a hash of the description
// text. Failures are logged and treated as misses.
type JobCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewJobCache(rdb redis.Cmdable, ttl time.Duration) *JobCache {
	return &JobCache{rdb: rdb, ttl: ttl}
}

func jobKey(jobDescription string) string {
	sum := sha256.Sum256([]byte(jobDescription))
	return jobKeyPrefix + hex.EncodeToString(sum[:])
}

func (c *JobCache) Get(ctx context.Context, jobDescription string) (*model.JobRecord, bool) {
	raw, err := c.rdb.Get(ctx, jobKey(jobDescription)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		log.Warn().Err(err).Msg("Job cache read failed")
		return nil, false
	}

	var rec model.JobRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		log.Warn().Err(err).Msg("Discarding corrupt job cache entry")
		return nil, false
	}
	return &rec, true
}

func (c *JobCache) Set(ctx context.Context, jobDescription string, rec *model.JobRecord) {
	raw, err := json.Marshal(rec)
	if err != nil {
		log.Warn().Err(err).Msg("Encoding job cache entry failed")
		return
	}
	if err := c.rdb.Set(ctx, jobKey(jobDescription), raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("Job cache write failed")
	}
}
