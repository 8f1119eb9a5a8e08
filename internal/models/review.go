package models

import "time"

// Review is a single user's review of a book. At most one exists per (UserID, ISBN).
type Review struct {
	ID        int       `db:"id" json:"id"`
	Text      string    `db:"review" json:"review"`
	Rating    int       `db:"rating" json:"rating"`
	ISBN      string    `db:"isbn" json:"isbn"`
	UserID    int       `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ReviewWithAuthor is a review joined with the reviewer's username.
type ReviewWithAuthor struct {
	Review
	Username string `db:"username" json:"username"`
}

// ReviewStats aggregates the locally stored reviews of one book.
type ReviewStats struct {
	Count   int     `db:"review_count" json:"review_count"`
	Average float64 `db:"average_score" json:"average_score"`
}
