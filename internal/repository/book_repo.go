package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bookreview/internal/models"
)

type BookRepository struct {
	db DBTX
}

func NewBookRepository(db DBTX) *BookRepository {
	return &BookRepository{db: db}
}

var _ Books = (*BookRepository)(nil)

const (
	selectBookByISBNSQL = `SELECT isbn, title, author, year FROM books WHERE isbn = ?`

	searchBooksSQL = `SELECT isbn, title, author, year FROM books
		WHERE LOWER(isbn) LIKE ? ESCAPE '\' OR LOWER(author) LIKE ? ESCAPE '\' OR LOWER(title) LIKE ? ESCAPE '\'
		LIMIT ?`

	insertBookSQL = `INSERT INTO books (isbn, title, author, year) VALUES (?, ?, ?, ?) ON CONFLICT (isbn) DO NOTHING`
)

// likeEscaper makes user text match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern lower-cases text and wraps it as a substring LIKE pattern.
func containsPattern(text string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(text)) + "%"
}

// GetByISBN fetches a book. Returns (nil, nil) if not found.
func (r *BookRepository) GetByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	var b models.Book
	if err := r.db.GetContext(ctx, &b, r.db.Rebind(selectBookByISBNSQL), isbn); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select book %q: %w", isbn, err)
	}
	return &b, nil
}

// Search returns up to limit books whose isbn, author or title contains text,
// case-insensitively, in the store's natural order.
func (r *BookRepository) Search(ctx context.Context, text string, limit int) ([]models.Book, error) {
	pattern := containsPattern(text)
	books := make([]models.Book, 0, limit)
	if err := r.db.SelectContext(ctx, &books, r.db.Rebind(searchBooksSQL), pattern, pattern, pattern, limit); err != nil {
		return nil, fmt.Errorf("search books %q: %w", text, err)
	}
	return books, nil
}

// Insert adds a book unless its ISBN already exists. Reports whether a row was written.
func (r *BookRepository) Insert(ctx context.Context, b models.Book) (bool, error) {
	res, err := r.db.ExecContext(ctx, r.db.Rebind(insertBookSQL), b.ISBN, b.Title, b.Author, b.Year)
	if err != nil {
		return false, fmt.Errorf("insert book %q: %w", b.ISBN, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected for book %q: %w", b.ISBN, err)
	}
	return n > 0, nil
}
