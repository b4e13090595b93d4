package migrations_test

import (
	"context"
	"testing"

	"github.com/cimillas/attendance-nft/internal/testutil"
	"github.com/cimillas/attendance-nft/migrations"
)

func TestApply_RecordsMigrations(t *testing.T) {
	pool := testutil.NewTestPool(t)
	ctx := context.Background()

	if _, err := pool.Exec(ctx, `DROP TABLE IF EXISTS submissions; DROP TABLE IF EXISTS schema_migrations`); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	applied, err := migrations.Apply(ctx, pool)
	if err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	if len(applied) < 2 || applied[0] != "001_submissions.sql" {
		t.Fatalf("expected ordered migrations, got %v", applied)
	}

	var exists bool
	if err := pool.QueryRow(ctx, `SELECT to_regclass('public.submissions') IS NOT NULL`).Scan(&exists); err != nil {
		t.Fatalf("check table: %v", err)
	}
	if !exists {
		t.Fatalf("expected submissions table")
	}

	again, err := migrations.Apply(ctx, pool)
	if err != nil {
		t.Fatalf("re-apply migrations: %v", err)
	}
	if len(again) != 0 {
		t.Fatalf("expected nothing to apply twice, got %v", again)
	}

	var count int
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&count); err != nil {
		t.Fatalf("count migrations: %v", err)
	}
	if count != len(applied) {
		t.Fatalf("expected %d recorded migrations, got %d", len(applied), count)
	}
}
