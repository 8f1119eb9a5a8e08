package handlers

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"bookreview/internal/models"
	"bookreview/internal/ratings"
	"bookreview/internal/service"
)

var testBook = models.Book{ISBN: "0380795272", Title: "Krondor: The Betrayal", Author: "Raymond E. Feist", Year: 1998}

func loggedIn() (*mockSessions, *http.Cookie) {
	s := newMockSessions()
	s.users["tok-1"] = 1
	return s, sessionCookie("tok-1")
}

func TestSearch(t *testing.T) {
	sessions, cookie := loggedIn()
	catalog := &mockCatalog{results: []models.Book{testBook}}
	r := newTestRouter(&service.Service{Catalog: catalog}, sessions)

	w := postForm(r, "/search", url.Values{"search": {"Krondor"}}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `href="/books/0380795272"`) {
		t.Fatalf("expected result link, got %s", w.Body.String())
	}
	if catalog.lastSearch != "Krondor" {
		t.Fatalf("unexpected search text %q", catalog.lastSearch)
	}
}

func TestSearch_NoMatches(t *testing.T) {
	sessions, cookie := loggedIn()
	r := newTestRouter(&service.Service{Catalog: &mockCatalog{results: []models.Book{}}}, sessions)

	w := postForm(r, "/search", url.Values{"search": {"zzz"}}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Sorry there were no matches! Please Try again!") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestSearch_RequiresLogin(t *testing.T) {
	r := newTestRouter(&service.Service{Catalog: &mockCatalog{}}, newMockSessions())

	for _, w := range []*httptest.ResponseRecorder{
		get(r, "/search"),
		postForm(r, "/search", url.Values{"search": {"x"}}),
		get(r, "/books/0380795272"),
	} {
		if w.Code != http.StatusFound || w.Header().Get("Location") != "/login" {
			t.Fatalf("expected redirect to /login, got %d", w.Code)
		}
	}
}

func TestBookPage(t *testing.T) {
	sessions, cookie := loggedIn()
	reviews := &mockReviews{page: service.ReviewPage{
		Reviews: []models.ReviewWithAuthor{
			{Review: models.Review{ID: 1, Text: "Loved it", Rating: 5, CreatedAt: time.Now()}, Username: "alice"},
		},
		HasReviews: true,
	}}
	s := &service.Service{
		Catalog: &mockCatalog{books: map[string]models.Book{testBook.ISBN: testBook}},
		Reviews: reviews,
		Ratings: &mockRatings{rating: models.Rating{AverageRating: 3.92, RatingsCount: 6772}},
	}
	r := newTestRouter(s, sessions)

	w := get(r, "/books/0380795272", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{"Krondor: The Betrayal", "3.92", "6772", "alice", "Loved it"} {
		if !strings.Contains(body, want) {
			t.Errorf("body does not contain %q", want)
		}
	}
}

func TestBookPage_GatewayFailureHidesRating(t *testing.T) {
	sessions, cookie := loggedIn()
	s := &service.Service{
		Catalog: &mockCatalog{books: map[string]models.Book{testBook.ISBN: testBook}},
		Reviews: &mockReviews{},
		Ratings: &mockRatings{err: &ratings.GatewayError{ISBN: testBook.ISBN, Op: "request", Err: errors.New("timeout")}},
	}
	r := newTestRouter(s, sessions)

	w := get(r, "/books/0380795272", cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Rating data is unavailable") {
		t.Fatalf("expected degraded rating, got %s", w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "No reviews yet.") {
		t.Fatalf("expected empty review list, got %s", w.Body.String())
	}
}

func TestBookPage_NotFound(t *testing.T) {
	sessions, cookie := loggedIn()
	s := &service.Service{Catalog: &mockCatalog{}, Reviews: &mockReviews{}}
	r := newTestRouter(s, sessions)

	w := get(r, "/books/missing", cookie)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Sorry, that book does not exist!") {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
}

func TestSubmitReview(t *testing.T) {
	cases := []struct {
		name      string
		form      url.Values
		submitErr error
		wantCode  int
		wantLoc   string
		wantMsg   string
		wantCalls int
	}{
		{
			name:      "success",
			form:      url.Values{"rating": {"5"}, "review": {"Great"}},
			wantCode:  http.StatusFound,
			wantLoc:   "/books/0380795272",
			wantCalls: 1,
		},
		{
			name:     "non numeric rating",
			form:     url.Values{"rating": {"five"}, "review": {"Great"}},
			wantCode: http.StatusBadRequest,
			wantMsg:  "Please choose a rating between 1 and 5. Go back and try again!",
		},
		{
			name:      "duplicate",
			form:      url.Values{"rating": {"4"}, "review": {"Again"}},
			submitErr: service.ErrDuplicateReview,
			wantCode:  http.StatusConflict,
			wantMsg:   "Sorry, you have already posted a review for this book!",
			wantCalls: 1,
		},
		{
			name:      "empty review",
			form:      url.Values{"rating": {"4"}, "review": {""}},
			submitErr: &service.ValidationError{Field: "review", Message: service.MsgEnterReview},
			wantCode:  http.StatusBadRequest,
			wantMsg:   service.MsgEnterReview,
			wantCalls: 1,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sessions, cookie := loggedIn()
			reviews := &mockReviews{submitErr: tc.submitErr}
			s := &service.Service{
				Catalog: &mockCatalog{books: map[string]models.Book{testBook.ISBN: testBook}},
				Reviews: reviews,
			}
			r := newTestRouter(s, sessions)

			w := postForm(r, "/books/0380795272", tc.form, cookie)
			if w.Code != tc.wantCode {
				t.Fatalf("status: got %d, want %d (body=%s)", w.Code, tc.wantCode, w.Body.String())
			}
			if tc.wantLoc != "" && w.Header().Get("Location") != tc.wantLoc {
				t.Fatalf("Location: got %q, want %q", w.Header().Get("Location"), tc.wantLoc)
			}
			if tc.wantMsg != "" && !strings.Contains(w.Body.String(), tc.wantMsg) {
				t.Fatalf("body does not contain %q: %s", tc.wantMsg, w.Body.String())
			}
			if len(reviews.submitted) != tc.wantCalls {
				t.Fatalf("SubmitReview calls: got %d, want %d", len(reviews.submitted), tc.wantCalls)
			}
			if tc.wantCalls > 0 && reviews.submitted[0].userID != 1 {
				t.Fatalf("review attributed to user %d, want 1", reviews.submitted[0].userID)
			}
		})
	}
}
