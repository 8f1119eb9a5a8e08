package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"bookreview/internal/models"
	"bookreview/internal/ratings"
	"bookreview/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) searchForm(c *gin.Context) {
	h.render(c, http.StatusOK, "search.html", pageData{Title: "Search"})
}

func (h *Handler) search(c *gin.Context) {
	text := c.PostForm("search")

	books, err := h.services.Search(c.Request.Context(), text)
	if err != nil {
		h.fail(c, err, "/search", "search", text)
		return
	}
	if len(books) == 0 {
		h.renderError(c, http.StatusOK, msgNoMatches, "/search")
		return
	}
	h.render(c, http.StatusOK, "results.html", pageData{Title: "Results", Books: books})
}

// book shows a book with its external rating and the latest reviews.
// A failing ratings service only hides the rating.
func (h *Handler) book(c *gin.Context) {
	ctx := c.Request.Context()
	isbn := c.Param("isbn")

	b, err := h.services.FindByISBN(ctx, isbn)
	if err != nil {
		h.fail(c, err, "/search", "isbn", isbn)
		return
	}

	var rating *models.Rating
	if h.services.Ratings != nil {
		r, err := h.services.FetchRating(ctx, isbn)
		if err != nil {
			h.logGatewayError(isbn, err)
		} else {
			rating = &r
		}
	}

	page, err := h.services.ReviewsFor(ctx, isbn, 0)
	if err != nil {
		h.fail(c, err, "/search", "isbn", isbn)
		return
	}

	lo, hi := h.services.RatingRange()
	h.render(c, http.StatusOK, "book.html", pageData{
		Title:   b.Title,
		Book:    b,
		Rating:  rating,
		Page:    page,
		Ratings: ratingChoices(lo, hi),
	})
}

func (h *Handler) submitReview(c *gin.Context) {
	ctx := c.Request.Context()
	isbn := c.Param("isbn")
	back := "/books/" + isbn

	lo, hi := h.services.RatingRange()
	rating, err := strconv.Atoi(c.PostForm("rating"))
	if err != nil {
		h.fail(c, &service.ValidationError{Field: "rating", Message: service.RatingRangeMessage(lo, hi)}, back)
		return
	}

	uid := identityFrom(c).UserID
	err = h.services.SubmitReview(ctx, uid, isbn, rating, c.PostForm("review"))
	switch {
	case errors.Is(err, service.ErrDuplicateReview), errors.Is(err, service.ErrBookNotFound):
		h.fail(c, err, "/search", "isbn", isbn, "user_id", uid)
		return
	case err != nil:
		h.fail(c, err, back, "isbn", isbn, "user_id", uid)
		return
	}

	h.log.Infow("review_submitted", "isbn", isbn, "user_id", uid, "rating", rating)
	c.Redirect(http.StatusFound, back)
}

func (h *Handler) logGatewayError(isbn string, err error) {
	var gwErr *ratings.GatewayError
	if errors.As(err, &gwErr) {
		h.log.Warnw("ratings_unavailable", "isbn", isbn, "op", gwErr.Op, "err", gwErr.Err)
		return
	}
	h.log.Warnw("ratings_unavailable", "isbn", isbn, "err", err)
}
