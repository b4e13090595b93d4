package cache

import (
	"context"
	"math/big"
	"os"
	"testing"
	"time"

	"github.com/cimillas/attendance-nft/internal/clock"
	"github.com/ethereum/go-ethereum/common"
)

var testContract = common.HexToAddress("0xef83c6e7953d028d637e416f581ae2fa836ebae8")

func TestMemoryAggregates(t *testing.T) {
	t.Parallel()

	clk := clock.NewManual(time.Date(2025, 9, 12, 15, 0, 0, 0, time.UTC))
	store := NewMemoryAggregates(clk, time.Minute)
	ctx := context.Background()

	if _, ok, _ := store.TotalMinted(ctx); ok {
		t.Fatalf("expected empty cache to miss")
	}

	total := big.NewInt(7)
	if err := store.SetTotalMinted(ctx, total); err != nil {
		t.Fatalf("set: %v", err)
	}
	total.SetInt64(99)

	got, ok, err := store.TotalMinted(ctx)
	if err != nil || !ok || got.Int64() != 7 {
		t.Fatalf("expected cached 7, got %v ok=%v err=%v", got, ok, err)
	}

	clk.Advance(time.Minute)
	if _, ok, _ := store.TotalMinted(ctx); ok {
		t.Fatalf("expected entry to expire after ttl")
	}
}

func TestRedisAggregates(t *testing.T) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		t.Skip("REDIS_URL not set")
	}
	ctx := context.Background()
	client, err := Connect(ctx, redisURL)
	if err != nil {
		t.Skipf("redis not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisAggregates(client, 31337, testContract, time.Minute)
	if err := store.SetTotalMinted(ctx, nil); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if _, ok, err := store.TotalMinted(ctx); err != nil || ok {
		t.Fatalf("expected miss after clear, ok=%v err=%v", ok, err)
	}

	want, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	if err := store.SetTotalMinted(ctx, want); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, ok, err := store.TotalMinted(ctx)
	if err != nil || !ok || got.Cmp(want) != 0 {
		t.Fatalf("expected %v, got %v ok=%v err=%v", want, got, ok, err)
	}

	ttl, err := client.TTL(ctx, store.prefix+"total_minted").Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Fatalf("expected ttl within a minute, got %v (err %v)", ttl, err)
	}
	_ = store.SetTotalMinted(ctx, nil)
}
