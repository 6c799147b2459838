package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// A store pointed at a closed port: every operation must fail fast and the
// degrade rules apply (reads report not-found, writes are best-effort).
func unreachableStore() *Store {
	return NewStore(Config{Addr: "127.0.0.1:1"})
}

func TestGetDegradesToNotFound(t *testing.T) {
	s := unreachableStore()
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := s.Get(ctx, "some-jti")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStrictPutReportsFailure(t *testing.T) {
	s := unreachableStore()
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := s.Put(ctx, "some-jti", Record{Username: "alice"}, TTL)
	require.Error(t, err)
}

func TestBestEffortVariantsSwallow(t *testing.T) {
	s := unreachableStore()
	defer s.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// must not panic or propagate
	s.TryPut(ctx, "some-jti", Record{Username: "alice"}, TTL)
	s.TryDelete(ctx, "some-jti")
}
