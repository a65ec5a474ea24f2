package migrate

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
)

// Migration is one irreversible schema change declared by a module.
// The pair (Module, ID) is the ledger key and must be globally unique.
// A migration is declared at build time and never mutated afterwards;
// changing the script of an already-applied migration is detected via
// its checksum and rejected during planning.
type Migration struct {
	Module string
	ID     string
	Script string
}

// Key returns the ledger key for this migration.
func (m Migration) Key() string {
	return m.Module + "/" + m.ID
}

// Checksum returns the hex-encoded SHA-256 of the migration script.
func (m Migration) Checksum() string {
	sum := sha256.Sum256([]byte(m.Script))
	return hex.EncodeToString(sum[:])
}

// DuplicateKeyError reports two migrations sharing the same (module, id) pair.
// It is a configuration error and is raised before any migration runs.
type DuplicateKeyError struct {
	Key string
}

func (e *DuplicateKeyError) Error() string {
	return fmt.Sprintf("duplicate migration key %q", e.Key)
}

// ChecksumError reports that the declared script for an already-applied
// migration no longer matches what the ledger recorded.
type ChecksumError struct {
	Key string
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("migration %q was applied with a different script; applied migrations are immutable", e.Key)
}

// sortMigrations orders migrations by (module, id) lexicographically.
// The ordering is canonical and independent of module registration order,
// so it stays stable even if the process entry point reorders modules.
func sortMigrations(migs []Migration) {
	sort.SliceStable(migs, func(i, j int) bool {
		if migs[i].Module != migs[j].Module {
			return migs[i].Module < migs[j].Module
		}
		return migs[i].ID < migs[j].ID
	})
}
