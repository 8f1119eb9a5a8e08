package handlers

import (
	"embed"
	"errors"
	"html/template"
	"net/http"

	"bookreview/internal/models"
	"bookreview/internal/service"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var templateFS embed.FS

// User-facing messages that do not originate in the service layer.
const (
	msgUsernameExists     = "Sorry! Username already exists. Go back and try again!"
	msgInvalidCredentials = "Username or password is incorrect! Go back and try again!"
	msgNoMatches          = "Sorry there were no matches! Please Try again!"
	msgDuplicateReview    = "Sorry, you have already posted a review for this book!"
	msgBookNotFound       = "Sorry, that book does not exist!"
	msgInternal           = "Something went wrong on our side. Go back and try again!"
	msgBadForm            = "The form could not be read. Go back and try again!"
)

// pageData is the view model shared by all HTML templates.
type pageData struct {
	Title    string
	LoggedIn bool
	Username string

	Error string
	Back  string

	Books   []models.Book
	Book    *models.Book
	Rating  *models.Rating
	Page    service.ReviewPage
	Ratings []int
}

func loadTemplates() *template.Template {
	return template.Must(template.ParseFS(templateFS, "templates/*.html"))
}

func (h *Handler) render(c *gin.Context, status int, name string, data pageData) {
	data.LoggedIn = identityFrom(c).Authenticated()
	c.HTML(status, name, data)
}

// renderError shows the error page with a link back to where the user came from.
func (h *Handler) renderError(c *gin.Context, status int, msg, back string) {
	h.render(c, status, "error.html", pageData{Title: "Error", Error: msg, Back: back})
}

// fail maps a service error to a status code and message and renders it.
func (h *Handler) fail(c *gin.Context, err error, back string, kv ...interface{}) {
	status, msg := classify(err)
	if status == http.StatusInternalServerError {
		h.log.Errorw("request_failed", append([]interface{}{"path", c.Request.URL.Path, "err", err}, kv...)...)
	} else {
		h.log.Infow("request_rejected", append([]interface{}{"path", c.Request.URL.Path, "status", status, "err", err}, kv...)...)
	}
	h.renderError(c, status, msg, back)
}

func classify(err error) (int, string) {
	var vErr *service.ValidationError
	switch {
	case errors.As(err, &vErr):
		return http.StatusBadRequest, vErr.Message
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized, msgInvalidCredentials
	case errors.Is(err, service.ErrBookNotFound):
		return http.StatusNotFound, msgBookNotFound
	case errors.Is(err, service.ErrAlreadyExists):
		return http.StatusConflict, msgUsernameExists
	case errors.Is(err, service.ErrDuplicateReview):
		return http.StatusConflict, msgDuplicateReview
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func ratingChoices(lo, hi int) []int {
	out := make([]int, 0, hi-lo+1)
	for r := hi; r >= lo; r-- {
		out = append(out, r)
	}
	return out
}
