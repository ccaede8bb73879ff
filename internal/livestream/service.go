package livestream

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const cacheKey = "parish:livestream:status"

// Service fronts the Client with a short-TTL Redis cache. With no Redis
// configured every poll hits the API, which is fine for development.
type Service struct {
	client *Client
	rdb    *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewService(client *Client, rdb *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	if ttl <= 0 {
		ttl = time.Minute
	}
	return &Service{client: client, rdb: rdb, ttl: ttl, logger: logger}
}

func (s *Service) Status(ctx context.Context) (Status, error) {
	if st, ok := s.cached(ctx); ok {
		return st, nil
	}

	st, err := s.client.Status(ctx)
	if err != nil {
		return Status{}, err
	}
	s.store(ctx, st)
	return st, nil
}

func (s *Service) cached(ctx context.Context) (Status, bool) {
	if s.rdb == nil {
		return Status{}, false
	}
	raw, err := s.rdb.Get(ctx, cacheKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("livestream cache read failed", "err", err)
		}
		return Status{}, false
	}
	var st Status
	if err := json.Unmarshal(raw, &st); err != nil {
		return Status{}, false
	}
	return st, true
}

func (s *Service) store(ctx context.Context, st Status) {
	if s.rdb == nil {
		return
	}
	raw, err := json.Marshal(st)
	if err != nil {
		return
	}
	if err := s.rdb.Set(ctx, cacheKey, raw, s.ttl).Err(); err != nil {
		s.logger.Warn("livestream cache write failed", "err", err)
	}
}
