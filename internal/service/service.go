package service

import (
	"context"

	"bookreview/internal/models"
	"bookreview/internal/repository"
)

type Authorization interface {
	Register(ctx context.Context, username, password string) (int, error)
	Verify(ctx context.Context, username, password string) (int, error)
}

// Catalog answers book lookups and searches.
type Catalog interface {
	FindByISBN(ctx context.Context, isbn string) (*models.Book, error)
	Search(ctx context.Context, text string) ([]models.Book, error)
}

// Reviews accepts new reviews and lists existing ones.
type Reviews interface {
	SubmitReview(ctx context.Context, userID int, isbn string, rating int, text string) error
	ReviewsFor(ctx context.Context, isbn string, limit int) (ReviewPage, error)
	Stats(ctx context.Context, isbn string) (models.ReviewStats, error)
	RatingRange() (int, int)
}

// Ratings fetches aggregate ratings from the external service.
type Ratings interface {
	FetchRating(ctx context.Context, isbn string) (models.Rating, error)
}

type Service struct {
	Authorization
	Catalog
	Reviews
	Ratings
}

// Options carries the tunables read from config.
type Options struct {
	Hasher PasswordHasher
	Review ReviewOptions
}

// NewService wires the repository layer and the ratings client into the services.
func NewService(repos *repository.Repository, ratings Ratings, opts Options) (*Service, error) {
	auth, err := NewAuthService(repos.Users, opts.Hasher)
	if err != nil {
		return nil, err
	}
	return &Service{
		Authorization: auth,
		Catalog:       NewCatalogService(repos.Books),
		Reviews:       NewReviewService(repos, repos.Reviews, opts.Review),
		Ratings:       ratings,
	}, nil
}
