// Package session tracks which refresh-token sessions are still live. A
// record keyed by the token's jti is the sole authority for refresh validity:
// a structurally valid refresh token whose jti has no record here is revoked.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/prasetyow/warecash/internal/logging"
)

// TTL is the lifetime of a session record, matching the refresh token expiry.
const TTL = 7 * 24 * time.Hour

var ErrNotFound = errors.New("session: record not found")

// Record captures where a session was opened from, for audit.
type Record struct {
	Username  string `json:"username"`
	OriginIP  string `json:"origin_ip"`
	UserAgent string `json:"user_agent"`
}

// Store is the strict API: every operation reports its real outcome. The
// Try* variants degrade instead (log and swallow), so a redis outage weakens
// revocation but never fails a login.
type Store struct {
	client *redis.Client
}

// Config mirrors the redis connection settings from the environment.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// NewStore builds a store with bounded retries and short timeouts. The
// connection is established lazily on first use; while redis is unreachable
// each request fails fast after the retry budget instead of blocking.
func NewStore(cfg Config) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		DialTimeout:     2 * time.Second,
		ReadTimeout:     1 * time.Second,
		WriteTimeout:    1 * time.Second,
		MaxRetries:      3,
		MinRetryBackoff: 50 * time.Millisecond,
		MaxRetryBackoff: 500 * time.Millisecond,
	})
	return &Store{client: rdb}
}

func key(jti string) string { return "session:" + jti }

// Get returns the record for jti. Any transport failure is reported as
// ErrNotFound: an unverifiable session counts as revoked, forcing the caller
// back through login.
func (s *Store) Get(ctx context.Context, jti string) (*Record, error) {
	val, err := s.client.Get(ctx, key(jti)).Result()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		logging.FromContext(ctx).Warn("session store get failed", "jti", jti, "error", err)
		return nil, ErrNotFound
	}
	var rec Record
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, ErrNotFound
	}
	return &rec, nil
}

func (s *Store) Put(ctx context.Context, jti string, rec Record, ttl time.Duration) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, key(jti), data, ttl).Err()
}

// Delete removes the record for jti. Deleting an absent key is a no-op.
func (s *Store) Delete(ctx context.Context, jti string) error {
	return s.client.Del(ctx, key(jti)).Err()
}

// TryPut is the best-effort variant of Put.
func (s *Store) TryPut(ctx context.Context, jti string, rec Record, ttl time.Duration) {
	if err := s.Put(ctx, jti, rec, ttl); err != nil {
		logging.FromContext(ctx).Warn("session store put failed", "jti", jti, "error", err)
	}
}

// TryDelete is the best-effort variant of Delete.
func (s *Store) TryDelete(ctx context.Context, jti string) {
	if err := s.Delete(ctx, jti); err != nil {
		logging.FromContext(ctx).Warn("session store delete failed", "jti", jti, "error", err)
	}
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
