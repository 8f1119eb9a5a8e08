// Package ratings fetches aggregate book ratings from the external review-counts service.
package ratings

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"bookreview/internal/metrics"
	"bookreview/internal/models"

	"github.com/tidwall/gjson"
)

// maxBodyBytes bounds how much of a response is read.
const maxBodyBytes = 1 << 20

var (
	errEmptyISBN    = errors.New("empty isbn")
	errBadStatus    = errors.New("unexpected status")
	errInvalidJSON  = errors.New("response is not valid json")
	errBookMissing  = errors.New("no rating data for isbn")
	errFieldMissing = errors.New("rating fields missing")
)

// GatewayError wraps any failure talking to the ratings service.
// It is never retried; callers degrade by omitting the rating.
type GatewayError struct {
	ISBN string
	Op   string
	Err  error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("ratings gateway: %s %q: %v", e.Op, e.ISBN, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// Client calls GET {baseURL}?key=<apiKey>&isbns=<isbn>.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient builds a Client. A zero timeout leaves the request bounded only by ctx.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
	}
}

// FetchRating returns the average rating and ratings count for isbn.
func (c *Client) FetchRating(ctx context.Context, isbn string) (models.Rating, error) {
	start := time.Now()
	rating, err := c.fetch(ctx, isbn)
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.RecordRatingsRequest(outcome, time.Since(start))
	return rating, err
}

func (c *Client) fetch(ctx context.Context, isbn string) (models.Rating, error) {
	if isbn == "" {
		return models.Rating{}, &GatewayError{ISBN: isbn, Op: "build request", Err: errEmptyISBN}
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return models.Rating{}, &GatewayError{ISBN: isbn, Op: "build request", Err: err}
	}
	q := u.Query()
	if c.apiKey != "" {
		q.Set("key", c.apiKey)
	}
	q.Set("isbns", isbn)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return models.Rating{}, &GatewayError{ISBN: isbn, Op: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return models.Rating{}, &GatewayError{ISBN: isbn, Op: "request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return models.Rating{}, &GatewayError{ISBN: isbn, Op: "read body", Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return models.Rating{}, &GatewayError{ISBN: isbn, Op: "request", Err: fmt.Errorf("%w %d", errBadStatus, resp.StatusCode)}
	}
	return parseRating(isbn, body)
}

// parseRating reads books[0].average_rating (string or number) and
// books[0].work_ratings_count from a review-counts response.
func parseRating(isbn string, body []byte) (models.Rating, error) {
	if !gjson.ValidBytes(body) {
		return models.Rating{}, &GatewayError{ISBN: isbn, Op: "decode", Err: errInvalidJSON}
	}
	book := gjson.GetBytes(body, "books.0")
	if !book.Exists() || !book.IsObject() {
		return models.Rating{}, &GatewayError{ISBN: isbn, Op: "decode", Err: errBookMissing}
	}

	avg := book.Get("average_rating")
	count := book.Get("work_ratings_count")
	if !avg.Exists() || !count.Exists() || !isNumeric(avg) || !isNumeric(count) {
		return models.Rating{}, &GatewayError{ISBN: isbn, Op: "decode", Err: errFieldMissing}
	}
	return models.Rating{
		AverageRating: avg.Float(),
		RatingsCount:  int(count.Int()),
	}, nil
}

// isNumeric accepts JSON numbers and numeric strings such as "3.92".
func isNumeric(r gjson.Result) bool {
	switch r.Type {
	case gjson.Number:
		return true
	case gjson.String:
		var f float64
		_, err := fmt.Sscanf(r.Str, "%g", &f)
		return err == nil
	default:
		return false
	}
}
