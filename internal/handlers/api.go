package handlers

import (
	"errors"
	"net/http"

	"bookreview/internal/service"

	"github.com/gin-gonic/gin"
)

const (
	statusOK         = "ok"
	errBookNotFound  = "book not found"
	errInternalError = "internal error"
)

// BookStats is the JSON body of GET /api/{isbn}.
type BookStats struct {
	Title        string  `json:"title" example:"Krondor: The Betrayal"`
	Author       string  `json:"author" example:"Raymond E. Feist"`
	Year         int     `json:"year" example:"1998"`
	ISBN         string  `json:"isbn" example:"0380795272"`
	ReviewCount  int     `json:"review_count" example:"6772"`
	AverageScore float64 `json:"average_score" example:"3.92"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Book details with rating statistics
// @Description  Ratings come from the external ratings service, or from local reviews when it is unavailable.
// @Tags         books
// @Produce      json
// @Param        isbn  path      string  true  "Book ISBN"
// @Success      200   {object}  BookStats
// @Failure      404   {object}  map[string]string
// @Failure      500   {object}  map[string]string
// @Router       /api/{isbn} [get]
func (h *Handler) bookAPI(c *gin.Context) {
	ctx := c.Request.Context()
	isbn := c.Param("isbn")

	b, err := h.services.FindByISBN(ctx, isbn)
	if errors.Is(err, service.ErrBookNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": errBookNotFound})
		return
	}
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errInternalError, "api_find_book_failed", err, "isbn", isbn)
		return
	}

	resp := BookStats{Title: b.Title, Author: b.Author, Year: b.Year, ISBN: b.ISBN}

	var gatewayErr error
	if h.services.Ratings != nil {
		r, err := h.services.FetchRating(ctx, isbn)
		if err == nil {
			resp.ReviewCount = r.RatingsCount
			resp.AverageScore = r.AverageRating
			c.JSON(http.StatusOK, resp)
			return
		}
		gatewayErr = err
		h.logGatewayError(isbn, err)
	}

	st, err := h.services.Stats(ctx, isbn)
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errInternalError, "api_stats_failed", err, "isbn", isbn, "gateway_err", gatewayErr)
		return
	}
	resp.ReviewCount = st.Count
	resp.AverageScore = st.Average
	c.JSON(http.StatusOK, resp)
}

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}
