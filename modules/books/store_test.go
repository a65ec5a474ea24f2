package books

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/mosaicfw/mosaic/db"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	pool, err := db.Open(filepath.Join(t.TempDir(), "books.db"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	for _, script := range []string{migrationCreateBooks, migrationAuthorIndex} {
		if _, err := pool.ExecContext(context.Background(), script); err != nil {
			t.Fatalf("apply schema: %v", err)
		}
	}
	return pool
}

func TestStore_CreateAndGet(t *testing.T) {
	store := NewStore(testDB(t))

	created, err := store.Create(context.Background(), "The Go Programming Language", "Donovan")
	if err != nil {
		t.Fatalf("Create error = %v", err)
	}
	if created.ID == "" || created.CreatedAt == "" {
		t.Errorf("Create returned incomplete book: %+v", created)
	}

	got, err := store.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get error = %v", err)
	}
	if got != created {
		t.Errorf("Get = %+v, want %+v", got, created)
	}
}

func TestStore_GetUnknownID(t *testing.T) {
	store := NewStore(testDB(t))
	if _, err := store.Get(context.Background(), "no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}
}

func TestStore_ListIsEmptySliceNotNil(t *testing.T) {
	store := NewStore(testDB(t))
	list, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if list == nil {
		t.Error("List = nil, want empty slice")
	}
	if len(list) != 0 {
		t.Errorf("List = %v, want empty", list)
	}
}

func TestStore_ListReturnsAll(t *testing.T) {
	store := NewStore(testDB(t))
	for _, title := range []string{"first", "second", "third"} {
		if _, err := store.Create(context.Background(), title, "author"); err != nil {
			t.Fatalf("Create(%q) error = %v", title, err)
		}
	}
	list, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List error = %v", err)
	}
	if len(list) != 3 {
		t.Errorf("List returned %d books, want 3", len(list))
	}
}
