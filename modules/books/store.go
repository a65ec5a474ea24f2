package books

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when no book matches the requested id.
var ErrNotFound = errors.New("book not found")

type Book struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	CreatedAt string `json:"created_at"`
}

// Store persists books through the shared connection pool. It is created
// during init and published into the shared container so other modules can
// read books without depending on this package's wiring.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) List(ctx context.Context) ([]Book, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, title, author, created_at FROM books ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	books := []Book{}
	for rows.Next() {
		var b Book
		if err := rows.Scan(&b.ID, &b.Title, &b.Author, &b.CreatedAt); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (s *Store) Get(ctx context.Context, id string) (Book, error) {
	var b Book
	err := s.db.QueryRowContext(ctx,
		`SELECT id, title, author, created_at FROM books WHERE id = ?`, id).
		Scan(&b.ID, &b.Title, &b.Author, &b.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Book{}, ErrNotFound
	}
	return b, err
}

func (s *Store) Create(ctx context.Context, title, author string) (Book, error) {
	b := Book{
		ID:        uuid.NewString(),
		Title:     title,
		Author:    author,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO books(id, title, author, created_at) VALUES (?,?,?,?)`,
		b.ID, b.Title, b.Author, b.CreatedAt)
	if err != nil {
		return Book{}, fmt.Errorf("create book: %w", err)
	}
	return b, nil
}
