package migrate

import (
	"context"
	"fmt"
	"log/slog"
)

// Plan is the canonical ordered view of every declared migration, split into
// the subset the ledger already recorded and the subset still pending.
type Plan struct {
	All     []Migration
	Applied []Migration
	Pending []Migration
}

// NewPlan validates and orders the declared migrations, then partitions them
// with a single ledger read. It is side-effect free: calling it repeatedly
// without an Apply in between yields the same pending set.
//
// Validation failures (duplicate keys, script changed after being applied)
// are configuration errors and are returned before anything is partitioned.
func NewPlan(ctx context.Context, store Store, migs []Migration) (*Plan, error) {
	all := make([]Migration, len(migs))
	copy(all, migs)
	sortMigrations(all)

	seen := make(map[string]struct{}, len(all))
	for _, m := range all {
		if _, dup := seen[m.Key()]; dup {
			return nil, &DuplicateKeyError{Key: m.Key()}
		}
		seen[m.Key()] = struct{}{}
	}

	recorded, err := store.Applied(ctx)
	if err != nil {
		return nil, err
	}

	plan := &Plan{All: all}
	for _, m := range all {
		entry, ok := recorded[m.Key()]
		if !ok {
			plan.Pending = append(plan.Pending, m)
			continue
		}
		if entry.Checksum != "" && entry.Checksum != m.Checksum() {
			return nil, &ChecksumError{Key: m.Key()}
		}
		plan.Applied = append(plan.Applied, m)
	}
	return plan, nil
}

// ApplyError reports a failed migration script. Every migration before it in
// plan order is recorded in the ledger; nothing after it was attempted.
type ApplyError struct {
	Module string
	ID     string
	Err    error
}

func (e *ApplyError) Error() string {
	return fmt.Sprintf("migration %s/%s failed: %v", e.Module, e.ID, e.Err)
}

func (e *ApplyError) Unwrap() error { return e.Err }

// Runner applies pending migrations strictly in plan order.
type Runner struct {
	store Store
	log   *slog.Logger
}

func NewRunner(store Store, log *slog.Logger) *Runner {
	return &Runner{store: store, log: log}
}

// Apply executes each pending migration and halts on the first failure,
// leaving already-recorded entries intact and later migrations untouched.
// It returns the number of migrations applied.
func (r *Runner) Apply(ctx context.Context, pending []Migration) (int, error) {
	for i, m := range pending {
		if err := r.store.Apply(ctx, m); err != nil {
			return i, &ApplyError{Module: m.Module, ID: m.ID, Err: err}
		}
		appliedTotal.Inc()
		r.log.Info("migration applied", "module", m.Module, "id", m.ID)
	}
	return len(pending), nil
}
