package cache

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/cimillas/attendance-nft/internal/clock"
	"github.com/ethereum/go-ethereum/common"
	"github.com/redis/go-redis/v9"
)

// DefaultTTL bounds how stale a cached aggregate can get when other accounts
// mint without this service observing it.
const DefaultTTL = 5 * time.Minute

// RedisAggregates keeps aggregates under a key scoped to one deployment.
type RedisAggregates struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisAggregates(client *redis.Client, chainID uint64, contract common.Address, ttl time.Duration) *RedisAggregates {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisAggregates{
		client: client,
		prefix: fmt.Sprintf("nft:%d:%s:", chainID, strings.ToLower(contract.Hex())),
		ttl:    ttl,
	}
}

func (s *RedisAggregates) TotalMinted(ctx context.Context) (*big.Int, bool, error) {
	raw, err := s.client.Get(ctx, s.prefix+"total_minted").Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	total, ok := new(big.Int).SetString(raw, 10)
	if !ok {
		// Treat an unreadable value as a miss so it gets overwritten.
		return nil, false, nil
	}
	return total, true, nil
}

func (s *RedisAggregates) SetTotalMinted(ctx context.Context, total *big.Int) error {
	if total == nil {
		return s.client.Del(ctx, s.prefix+"total_minted").Err()
	}
	return s.client.Set(ctx, s.prefix+"total_minted", total.String(), s.ttl).Err()
}

// MemoryAggregates is the in-process fallback when no Redis is configured.
type MemoryAggregates struct {
	mu      sync.Mutex
	clock   clock.Clock
	ttl     time.Duration
	total   *big.Int
	expires time.Time
}

func NewMemoryAggregates(clk clock.Clock, ttl time.Duration) *MemoryAggregates {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryAggregates{clock: clk, ttl: ttl}
}

func (m *MemoryAggregates) TotalMinted(_ context.Context) (*big.Int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.total == nil || !m.clock.Now().Before(m.expires) {
		return nil, false, nil
	}
	return new(big.Int).Set(m.total), true, nil
}

func (m *MemoryAggregates) SetTotalMinted(_ context.Context, total *big.Int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if total == nil {
		m.total = nil
		return nil
	}
	m.total = new(big.Int).Set(total)
	m.expires = m.clock.Now().Add(m.ttl)
	return nil
}
