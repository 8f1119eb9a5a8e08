package handlers

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"bookreview/internal/models"
	"bookreview/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	registerID  int
	registerErr error
	verifyID    int
	verifyErr   error

	registerCalls    int
	lastRegisterUser string
	lastRegisterPass string
	lastVerifyUser   string
	lastVerifyPass   string
}

func (m *mockAuth) Register(_ context.Context, username, password string) (int, error) {
	m.registerCalls++
	m.lastRegisterUser = username
	m.lastRegisterPass = password
	return m.registerID, m.registerErr
}
func (m *mockAuth) Verify(_ context.Context, username, password string) (int, error) {
	m.lastVerifyUser = username
	m.lastVerifyPass = password
	return m.verifyID, m.verifyErr
}

type mockCatalog struct {
	books     map[string]models.Book
	findErr   error
	results   []models.Book
	searchErr error

	lastSearch string
}

func (m *mockCatalog) FindByISBN(_ context.Context, isbn string) (*models.Book, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	b, ok := m.books[isbn]
	if !ok {
		return nil, service.ErrBookNotFound
	}
	return &b, nil
}
func (m *mockCatalog) Search(_ context.Context, text string) ([]models.Book, error) {
	m.lastSearch = text
	return m.results, m.searchErr
}

type submittedReview struct {
	userID int
	isbn   string
	rating int
	text   string
}

type mockReviews struct {
	mu sync.Mutex

	submitErr error
	page      service.ReviewPage
	pageErr   error
	stats     models.ReviewStats
	statsErr  error

	submitted []submittedReview
	pageCalls int
}

func (m *mockReviews) SubmitReview(_ context.Context, userID int, isbn string, rating int, text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitted = append(m.submitted, submittedReview{userID: userID, isbn: isbn, rating: rating, text: text})
	return m.submitErr
}
func (m *mockReviews) ReviewsFor(_ context.Context, _ string, _ int) (service.ReviewPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageCalls++
	return m.page, m.pageErr
}
func (m *mockReviews) Stats(context.Context, string) (models.ReviewStats, error) {
	return m.stats, m.statsErr
}
func (m *mockReviews) RatingRange() (int, int) { return 1, 5 }

func (m *mockReviews) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pageCalls
}

type mockRatings struct {
	rating models.Rating
	err    error
}

func (m *mockRatings) FetchRating(context.Context, string) (models.Rating, error) {
	return m.rating, m.err
}

// mockSessions maps tokens "tok-<n>" to user ids.
type mockSessions struct {
	users    map[string]int
	startErr error
	cleared  []string
}

func newMockSessions() *mockSessions {
	return &mockSessions{users: map[string]int{}}
}

func (m *mockSessions) Start(_ context.Context, userID int) (string, error) {
	if m.startErr != nil {
		return "", m.startErr
	}
	token := "tok-" + strconv.Itoa(userID)
	m.users[token] = userID
	return token, nil
}
func (m *mockSessions) Clear(_ context.Context, token string) error {
	m.cleared = append(m.cleared, token)
	delete(m.users, token)
	return nil
}
func (m *mockSessions) CurrentUser(_ context.Context, token string) (int, bool, error) {
	uid, ok := m.users[token]
	return uid, ok, nil
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service, sessions Sessions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewHandler(s, sessions, nil, Options{CookieName: "session"})
	return h.InitRoutes()
}

// sessionCookie returns the cookie a logged-in client would send.
func sessionCookie(token string) *http.Cookie {
	return &http.Cookie{Name: "session", Value: token}
}
