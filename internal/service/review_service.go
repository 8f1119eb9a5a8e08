package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookreview/internal/metrics"
	"bookreview/internal/models"
	"bookreview/internal/repository"
)

const (
	DefaultMinRating = 1
	DefaultMaxRating = 5
	DefaultPageSize  = 5
)

// ReviewPage is the newest-first slice of a book's reviews.
type ReviewPage struct {
	Reviews    []models.ReviewWithAuthor `json:"reviews"`
	HasReviews bool                      `json:"has_reviews"`
}

// ReviewOptions bounds accepted ratings and the default page size.
type ReviewOptions struct {
	MinRating int
	MaxRating int
	PageSize  int
}

type ReviewService struct {
	tx      repository.Transactor
	reviews repository.Reviews
	opts    ReviewOptions
	now     func() time.Time
}

func NewReviewService(tx repository.Transactor, reviews repository.Reviews, opts ReviewOptions) *ReviewService {
	if opts.MinRating == 0 && opts.MaxRating == 0 {
		opts.MinRating, opts.MaxRating = DefaultMinRating, DefaultMaxRating
	}
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	return &ReviewService{tx: tx, reviews: reviews, opts: opts, now: time.Now}
}

// RatingRange returns the inclusive bounds accepted by SubmitReview.
func (s *ReviewService) RatingRange() (int, int) {
	return s.opts.MinRating, s.opts.MaxRating
}

// SubmitReview stores one review of isbn by userID. The book lookup, the
// duplicate check and the insert share a single transaction.
func (s *ReviewService) SubmitReview(ctx context.Context, userID int, isbn string, rating int, text string) error {
	if rating < s.opts.MinRating || rating > s.opts.MaxRating {
		metrics.RecordReviewSubmission("invalid")
		return newValidationError("rating", RatingRangeMessage(s.opts.MinRating, s.opts.MaxRating))
	}
	if strings.TrimSpace(text) == "" {
		metrics.RecordReviewSubmission("invalid")
		return newValidationError("review", MsgEnterReview)
	}

	err := s.tx.WithTx(ctx, func(tx *repository.Repository) error {
		book, err := tx.Books.GetByISBN(ctx, isbn)
		if err != nil {
			return err
		}
		if book == nil {
			return ErrBookNotFound
		}

		exists, err := tx.Reviews.Exists(ctx, userID, isbn)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateReview
		}

		_, err = tx.Reviews.Create(ctx, models.Review{
			Text:      text,
			Rating:    rating,
			ISBN:      isbn,
			UserID:    userID,
			CreatedAt: s.now().UTC(),
		})
		if errors.Is(err, repository.ErrUniqueViolation) {
			return ErrDuplicateReview
		}
		return err
	})

	switch {
	case err == nil:
		metrics.RecordReviewSubmission("ok")
		return nil
	case errors.Is(err, ErrDuplicateReview):
		metrics.RecordReviewSubmission("duplicate")
		return err
	case errors.Is(err, ErrBookNotFound):
		metrics.RecordReviewSubmission("missing_book")
		return err
	default:
		metrics.RecordReviewSubmission("error")
		return fmt.Errorf("submit review of %q by user %d: %w", isbn, userID, err)
	}
}

// ReviewsFor returns up to limit reviews of isbn, newest first.
// A non-positive limit uses the configured page size.
func (s *ReviewService) ReviewsFor(ctx context.Context, isbn string, limit int) (ReviewPage, error) {
	if limit <= 0 {
		limit = s.opts.PageSize
	}
	list, err := s.reviews.ListByISBN(ctx, isbn, limit)
	if err != nil {
		return ReviewPage{}, fmt.Errorf("reviews for %q: %w", isbn, err)
	}
	if list == nil {
		list = []models.ReviewWithAuthor{}
	}
	return ReviewPage{Reviews: list, HasReviews: len(list) > 0}, nil
}

// Stats returns local review count and mean rating for isbn.
func (s *ReviewService) Stats(ctx context.Context, isbn string) (models.ReviewStats, error) {
	st, err := s.reviews.Stats(ctx, isbn)
	if err != nil {
		return models.ReviewStats{}, fmt.Errorf("stats for %q: %w", isbn, err)
	}
	return st, nil
}
