package migrate

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Entry is one persisted "migration applied" fact. Entries are append-only
// and never updated: the existence of an entry means the script ran to
// completion against the backing store.
type Entry struct {
	Module    string
	ID        string
	Checksum  string
	AppliedAt time.Time
}

// Store is the persistence boundary for the migration ledger.
//
// Apply must execute the migration script and record its ledger entry as a
// single transactional unit, so a crash can never leave a migration marked
// applied without its effects being durable (or vice versa).
type Store interface {
	// Applied returns every ledger entry keyed by Migration.Key().
	Applied(ctx context.Context) (map[string]Entry, error)
	// Apply runs the migration script and appends its ledger entry atomically.
	Apply(ctx context.Context, m Migration) error
}

const ledgerTable = `
CREATE TABLE IF NOT EXISTS mosaic_migrations (
	module     TEXT NOT NULL,
	id         TEXT NOT NULL,
	checksum   TEXT NOT NULL,
	applied_at TEXT NOT NULL,
	PRIMARY KEY (module, id)
);`

// SQLStore is the sqlite-backed ledger. One row per applied migration.
type SQLStore struct {
	db  *sql.DB
	now func() time.Time
}

// NewSQLStore bootstraps the ledger table and returns a store over db.
func NewSQLStore(ctx context.Context, db *sql.DB) (*SQLStore, error) {
	if _, err := db.ExecContext(ctx, ledgerTable); err != nil {
		return nil, fmt.Errorf("create migration ledger: %w", err)
	}
	return &SQLStore{db: db, now: time.Now}, nil
}

func (s *SQLStore) Applied(ctx context.Context) (map[string]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT module, id, checksum, applied_at FROM mosaic_migrations`)
	if err != nil {
		return nil, fmt.Errorf("read migration ledger: %w", err)
	}
	defer rows.Close()

	applied := make(map[string]Entry)
	for rows.Next() {
		var e Entry
		var appliedAt string
		if err := rows.Scan(&e.Module, &e.ID, &e.Checksum, &appliedAt); err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}
		if ts, err := time.Parse(time.RFC3339, appliedAt); err == nil {
			e.AppliedAt = ts
		}
		applied[e.Module+"/"+e.ID] = e
	}
	return applied, rows.Err()
}

// Apply executes the script and appends the ledger entry in one transaction.
// sqlite runs DDL inside transactions, so commit makes both durable together.
func (s *SQLStore) Apply(ctx context.Context, m Migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, m.Script); err != nil {
		return fmt.Errorf("execute script: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO mosaic_migrations(module, id, checksum, applied_at) VALUES (?,?,?,?)`,
		m.Module, m.ID, m.Checksum(), s.now().UTC().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("record ledger entry: %w", err)
	}
	return tx.Commit()
}
