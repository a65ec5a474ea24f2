package migrate_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mosaicfw/mosaic/db"
	"github.com/mosaicfw/mosaic/migrate"
)

func sqlStore(t *testing.T) *migrate.SQLStore {
	t.Helper()
	pool, err := db.Open(filepath.Join(t.TempDir(), "ledger.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	store, err := migrate.NewSQLStore(context.Background(), pool)
	if err != nil {
		t.Fatalf("NewSQLStore error = %v", err)
	}
	return store
}

func TestSQLStore_ApplyRecordsEntry(t *testing.T) {
	store := sqlStore(t)
	m := migrate.Migration{Module: "books", ID: "0001_create", Script: "CREATE TABLE books(id TEXT);"}

	if err := store.Apply(context.Background(), m); err != nil {
		t.Fatalf("Apply error = %v", err)
	}

	applied, err := store.Applied(context.Background())
	if err != nil {
		t.Fatalf("Applied error = %v", err)
	}
	entry, ok := applied["books/0001_create"]
	if !ok {
		t.Fatalf("ledger missing entry, have %v", applied)
	}
	if entry.Checksum != m.Checksum() {
		t.Errorf("entry checksum = %q, want %q", entry.Checksum, m.Checksum())
	}
	if entry.AppliedAt.IsZero() {
		t.Error("entry applied_at not recorded")
	}
}

func TestSQLStore_FailedScriptLeavesNoEntry(t *testing.T) {
	store := sqlStore(t)
	bad := migrate.Migration{Module: "books", ID: "0001_bad", Script: "THIS IS NOT SQL"}

	if err := store.Apply(context.Background(), bad); err == nil {
		t.Fatal("Apply accepted an invalid script")
	}

	applied, err := store.Applied(context.Background())
	if err != nil {
		t.Fatalf("Applied error = %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("ledger has %d entries after failed apply, want 0", len(applied))
	}
}

func TestSQLStore_EndToEndIdempotence(t *testing.T) {
	store := sqlStore(t)
	declared := []migrate.Migration{
		{Module: "alpha", ID: "0001", Script: "CREATE TABLE alpha_a(x);"},
		{Module: "alpha", ID: "0002", Script: "CREATE TABLE alpha_b(x);"},
		{Module: "beta", ID: "0001", Script: "CREATE TABLE beta_a(x);"},
	}

	plan, err := migrate.NewPlan(context.Background(), store, declared)
	if err != nil {
		t.Fatalf("NewPlan error = %v", err)
	}
	assertKeys(t, plan.Pending, "alpha/0001", "alpha/0002", "beta/0001")

	if _, err := migrate.NewRunner(store, discard()).Apply(context.Background(), plan.Pending); err != nil {
		t.Fatalf("Apply error = %v", err)
	}

	replan, err := migrate.NewPlan(context.Background(), store, declared)
	if err != nil {
		t.Fatalf("replan error = %v", err)
	}
	if len(replan.Pending) != 0 {
		t.Errorf("pending after apply = %v, want none", keysOf(replan.Pending))
	}

	// Applying an empty pending set is a no-op.
	applied, err := migrate.NewRunner(store, discard()).Apply(context.Background(), replan.Pending)
	if err != nil || applied != 0 {
		t.Errorf("second Apply = (%d, %v), want (0, nil)", applied, err)
	}
}
