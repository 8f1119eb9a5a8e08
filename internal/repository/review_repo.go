package repository

import (
	"context"
	"fmt"
	"time"

	"bookreview/internal/models"
	"bookreview/internal/repository/db"
)

type ReviewRepository struct {
	db DBTX
}

func NewReviewRepository(db DBTX) *ReviewRepository {
	return &ReviewRepository{db: db}
}

var _ Reviews = (*ReviewRepository)(nil)

const (
	countUserReviewSQL = `SELECT COUNT(*) FROM reviews WHERE user_id = ? AND isbn = ?`

	insertReviewSQL = `INSERT INTO reviews (review, rating, isbn, user_id, created_at)
		VALUES (?, ?, ?, ?, ?) RETURNING id`

	selectReviewsByISBNSQL = `SELECT r.id, r.review, r.rating, r.isbn, r.user_id, r.created_at, u.username
		FROM reviews r JOIN users u ON u.id = r.user_id
		WHERE r.isbn = ?
		ORDER BY r.created_at DESC, r.id DESC
		LIMIT ?`

	selectReviewStatsSQL = `SELECT COUNT(*) AS review_count, COALESCE(AVG(rating), 0) AS average_score
		FROM reviews WHERE isbn = ?`
)

// Exists reports whether userID already reviewed isbn.
func (r *ReviewRepository) Exists(ctx context.Context, userID int, isbn string) (bool, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(countUserReviewSQL), userID, isbn); err != nil {
		return false, fmt.Errorf("count reviews of user %d for %q: %w", userID, isbn, err)
	}
	return n > 0, nil
}

// Create inserts a review and returns its ID. CreatedAt is persisted as UTC.
// A second review for the same (user, isbn) yields an error wrapping ErrUniqueViolation.
func (r *ReviewRepository) Create(ctx context.Context, rv models.Review) (int, error) {
	createdAt := rv.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	var id int
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(insertReviewSQL),
		rv.Text,
		rv.Rating,
		rv.ISBN,
		rv.UserID,
		createdAt.UTC(),
	).Scan(&id)
	if err != nil {
		if db.IsUniqueViolation(err) {
			return 0, fmt.Errorf("insert review of user %d for %q: %w", rv.UserID, rv.ISBN, ErrUniqueViolation)
		}
		return 0, fmt.Errorf("insert review of user %d for %q: %w", rv.UserID, rv.ISBN, err)
	}
	return id, nil
}

// ListByISBN returns up to limit reviews of isbn with reviewer names, newest first.
func (r *ReviewRepository) ListByISBN(ctx context.Context, isbn string, limit int) ([]models.ReviewWithAuthor, error) {
	out := make([]models.ReviewWithAuthor, 0, limit)
	if err := r.db.SelectContext(ctx, &out, r.db.Rebind(selectReviewsByISBNSQL), isbn, limit); err != nil {
		return nil, fmt.Errorf("list reviews for %q: %w", isbn, err)
	}
	for i := range out {
		out[i].CreatedAt = out[i].CreatedAt.UTC()
	}
	return out, nil
}

// Stats returns the number of local reviews of isbn and their mean rating.
func (r *ReviewRepository) Stats(ctx context.Context, isbn string) (models.ReviewStats, error) {
	var s models.ReviewStats
	if err := r.db.GetContext(ctx, &s, r.db.Rebind(selectReviewStatsSQL), isbn); err != nil {
		return models.ReviewStats{}, fmt.Errorf("review stats for %q: %w", isbn, err)
	}
	return s, nil
}
