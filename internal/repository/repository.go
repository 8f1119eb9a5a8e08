package repository

import (
	"context"
	"errors"

	"bookreview/internal/models"

	"github.com/jmoiron/sqlx"
)

// ErrUniqueViolation is returned when an insert collides with a UNIQUE constraint.
var ErrUniqueViolation = errors.New("unique constraint violation")

// DBTX is the subset of sqlx used by the repositories.
// Both *sqlx.DB and *sqlx.Tx satisfy it.
type DBTX interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
	SelectContext(ctx context.Context, dest interface{}, query string, args ...interface{}) error
}

type Users interface {
	Create(ctx context.Context, username, hash string) (int, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
}

type Books interface {
	GetByISBN(ctx context.Context, isbn string) (*models.Book, error)
	Search(ctx context.Context, text string, limit int) ([]models.Book, error)
	Insert(ctx context.Context, b models.Book) (bool, error)
}

type Reviews interface {
	Exists(ctx context.Context, userID int, isbn string) (bool, error)
	Create(ctx context.Context, r models.Review) (int, error)
	ListByISBN(ctx context.Context, isbn string, limit int) ([]models.ReviewWithAuthor, error)
	Stats(ctx context.Context, isbn string) (models.ReviewStats, error)
}

// Transactor runs fn against repositories bound to a single transaction.
type Transactor interface {
	WithTx(ctx context.Context, fn func(tx *Repository) error) error
}

type Repository struct {
	Users   Users
	Books   Books
	Reviews Reviews

	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	r := bind(db)
	r.db = db
	return r
}

func bind(q DBTX) *Repository {
	return &Repository{
		Users:   NewUserRepository(q),
		Books:   NewBookRepository(q),
		Reviews: NewReviewRepository(q),
	}
}
