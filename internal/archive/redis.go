package archive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/park285/darkchess/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix  = "darkchess:game:"
	recentKey  = "darkchess:index:recent"
	recentKeep = 500
)

// RedisStore keeps records as JSON with a TTL plus a sorted index by end time.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore connects to redisURL (redis:// or rediss://). A zero ttl keeps records forever.
func NewRedisStore(redisURL string, ttl time.Duration) (*RedisStore, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, errors.New("REDIS_URL required for redis archive")
	}
	opts, err := parseRedisURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

func (s *RedisStore) Close() error {
	if s == nil || s.rdb == nil {
		return nil
	}
	return s.rdb.Close()
}

func (s *RedisStore) Save(ctx context.Context, rec *domain.GameRecord) error {
	if rec == nil || strings.TrimSpace(rec.SessionUUID) == "" {
		return errors.New("redis archive: record without session id")
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("redis archive: encode: %w", err)
	}
	score := float64(rec.EndedAt.Unix())
	_, err = s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Set(ctx, gameKey(rec.SessionUUID), raw, s.ttl)
		p.ZAdd(ctx, recentKey, redis.Z{Score: score, Member: rec.SessionUUID})
		p.ZRemRangeByRank(ctx, recentKey, 0, -recentKeep-1)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis archive: save %s: %w", rec.SessionUUID, err)
	}
	return nil
}

// Get loads one record.
func (s *RedisStore) Get(ctx context.Context, id string) (*domain.GameRecord, error) {
	raw, err := s.rdb.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis archive: get %s: %w", id, err)
	}
	var rec domain.GameRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("redis archive: decode %s: %w", id, err)
	}
	return &rec, nil
}

// Recent returns up to limit records, newest first. Index entries whose record
// expired are dropped from the index.
func (s *RedisStore) Recent(ctx context.Context, limit int) ([]*domain.GameRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	ids, err := s.rdb.ZRevRange(ctx, recentKey, 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("redis archive: recent: %w", err)
	}
	out := make([]*domain.GameRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			_ = s.rdb.ZRem(ctx, recentKey, id).Err()
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func gameKey(id string) string { return keyPrefix + strings.TrimSpace(id) }

func parseRedisURL(raw string) (*redis.Options, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	if u.Scheme != "redis" && u.Scheme != "rediss" {
		return nil, fmt.Errorf("unsupported scheme: %s", u.Scheme)
	}
	db := 0
	if p := strings.TrimPrefix(u.Path, "/"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid redis db %q", p)
		}
		db = n
	}
	pass, _ := u.User.Password()
	return &redis.Options{Addr: u.Host, Username: u.User.Username(), Password: pass, DB: db}, nil
}
