package books

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mosaicfw/mosaic/core"
	"github.com/mosaicfw/mosaic/events"
	"github.com/mosaicfw/mosaic/migrate"
)

const Name = "books"

// Created is published on the bus after a book is stored. Subscribers learn
// about new books without importing this package's wiring.
type Created struct {
	ID    string
	Title string
}

func (Created) Kind() string { return "books.created" }

type module struct {
	core.Base
}

// New returns the books feature module: a store, routes under /api/books,
// two schema migrations, and a creation event.
func New() core.Module { return &module{} }

func (m *module) Name() string { return Name }

func (m *module) Init(ctx context.Context, mc *core.Context) (core.Contribution, error) {
	store := NewStore(mc.DB)
	core.Put[*Store](mc.Shared, store)

	return core.Contribution{
		Routes:  m.routes(store, mc),
		OpenAPI: []byte(openAPIFragment),
		Migrations: []migrate.Migration{
			{ID: "0001_create_books", Script: migrationCreateBooks},
			{ID: "0002_books_author_index", Script: migrationAuthorIndex},
		},
	}, nil
}

func (m *module) routes(store *Store, mc *core.Context) func(r gin.IRouter) {
	return func(r gin.IRouter) {
		r.GET("", func(c *gin.Context) {
			list, err := store.List(c.Request.Context())
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, list)
		})

		r.GET("/:id", func(c *gin.Context) {
			b, err := store.Get(c.Request.Context(), c.Param("id"))
			if errors.Is(err, ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "book not found"})
				return
			}
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusOK, b)
		})

		r.POST("", func(c *gin.Context) {
			var req struct {
				Title  string `json:"title" binding:"required"`
				Author string `json:"author" binding:"required"`
			}
			if err := c.ShouldBindJSON(&req); err != nil {
				c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			b, err := store.Create(c.Request.Context(), req.Title, req.Author)
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
				return
			}
			mc.Bus.Publish(Created{ID: b.ID, Title: b.Title})
			// Indexing is best-effort background work; a full queue is not a
			// reason to fail the request.
			if err := mc.Tasks.TryEnqueue(events.Task{Kind: "books.index", Payload: b.ID}); err != nil {
				mc.Log.Warn("index task not enqueued", "book", b.ID, "error", err)
			}
			c.JSON(http.StatusCreated, b)
		})
	}
}

const migrationCreateBooks = `
CREATE TABLE books (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	author     TEXT NOT NULL,
	created_at TEXT NOT NULL
);`

const migrationAuthorIndex = `
CREATE INDEX idx_books_author ON books(author);`

const openAPIFragment = `
paths:
  /:
    get:
      summary: List books
      tags: [Books]
      responses:
        "200":
          description: List of books
          content:
            application/json:
              schema:
                type: array
                items:
                  $ref: "#/components/schemas/Book"
    post:
      summary: Create a book
      tags: [Books]
      responses:
        "201":
          description: Created book
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Book"
  /{id}:
    get:
      summary: Get a book
      tags: [Books]
      parameters:
        - name: id
          in: path
          required: true
          schema:
            type: string
      responses:
        "200":
          description: The book
          content:
            application/json:
              schema:
                $ref: "#/components/schemas/Book"
        "404":
          description: Not found
components:
  schemas:
    Book:
      type: object
      required: [id, title, author, created_at]
      properties:
        id:
          type: string
        title:
          type: string
        author:
          type: string
        created_at:
          type: string
          format: date-time
`
