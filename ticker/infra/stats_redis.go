package infra

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ticker-gateway/ticker/domain"

	"github.com/redis/go-redis/v9"
)

// RedisStatsStore grava os contadores de consumo em hashes do Redis:
//
//	<prefix>:total              campo = kind
//	<prefix>:minute:<yyyymmddhhmm>  campo = kind (com TTL)
//	<prefix>:ticker:<nome>       campo = kind (com TTL, opcional)
type RedisStatsStore struct {
	rdb redis.Cmdable

	prefix string
	// ttl aplica apenas em chaves de série temporal / por ticker.
	// total é cumulativo e não expira.
	ttl          time.Duration
	bucket       string // "minute" (padrão) ou "none"
	trackTickers bool
}

type RedisStatsOption func(*RedisStatsStore)

func WithStatsPrefix(prefix string) RedisStatsOption {
	return func(s *RedisStatsStore) {
		if p := strings.Trim(prefix, ":"); p != "" {
			s.prefix = p
		}
	}
}

func WithStatsTTL(d time.Duration) RedisStatsOption {
	return func(s *RedisStatsStore) { s.ttl = d }
}

func WithStatsBucket(bucket string) RedisStatsOption {
	return func(s *RedisStatsStore) { s.bucket = strings.ToLower(strings.TrimSpace(bucket)) }
}

func WithStatsTrackTickers(track bool) RedisStatsOption {
	return func(s *RedisStatsStore) { s.trackTickers = track }
}

// NewRedisStatsStore aceita *redis.Client, *redis.ClusterClient ou qualquer
// redis.Cmdable.
func NewRedisStatsStore(rdb redis.Cmdable, opts ...RedisStatsOption) *RedisStatsStore {
	s := &RedisStatsStore{
		rdb:    rdb,
		prefix: "ticker:stats",
		ttl:    24 * time.Hour,
		bucket: "minute",
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Keys lista as chaves que um evento atualiza, na ordem do pipeline.
func (s *RedisStatsStore) Keys(ev domain.StatsEvent) []string {
	keys := []string{s.prefix + ":total"}
	if s.bucket == "minute" {
		keys = append(keys, fmt.Sprintf("%s:minute:%s", s.prefix, s.at(ev).UTC().Format("200601021504")))
	}
	if s.trackTickers {
		if name := strings.TrimSpace(ev.Ticker); name != "" {
			keys = append(keys, s.prefix+":ticker:"+name)
		}
	}
	return keys
}

func (s *RedisStatsStore) Record(ctx context.Context, ev domain.StatsEvent) error {
	if s == nil || s.rdb == nil {
		return nil
	}

	field := string(ev.Kind)
	pipe := s.rdb.Pipeline()
	for i, key := range s.Keys(ev) {
		pipe.HIncrBy(ctx, key, field, 1)
		// a primeira chave é o total, que não expira
		if i > 0 && s.ttl > 0 {
			pipe.Expire(ctx, key, s.ttl)
		}
	}

	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStatsStore) at(ev domain.StatsEvent) time.Time {
	if ev.At.IsZero() {
		return time.Now()
	}
	return ev.At
}
