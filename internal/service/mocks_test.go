package service

import (
	"context"

	"bookreview/internal/models"
	"bookreview/internal/repository"
)

// mockUsers is a lightweight in-test mock for repository.Users.
type mockUsers struct {
	CreateFn        func(username, hash string) (int, error)
	GetByUsernameFn func(username string) (*models.User, error)

	createCalls []struct {
		username string
		hash     string
	}
	getCalls []string
}

func (m *mockUsers) Create(_ context.Context, username, hash string) (int, error) {
	m.createCalls = append(m.createCalls, struct {
		username string
		hash     string
	}{username: username, hash: hash})
	return m.CreateFn(username, hash)
}

func (m *mockUsers) GetByUsername(_ context.Context, username string) (*models.User, error) {
	m.getCalls = append(m.getCalls, username)
	return m.GetByUsernameFn(username)
}

type mockBooks struct {
	GetByISBNFn func(isbn string) (*models.Book, error)
	SearchFn    func(text string, limit int) ([]models.Book, error)
}

func (m *mockBooks) GetByISBN(_ context.Context, isbn string) (*models.Book, error) {
	return m.GetByISBNFn(isbn)
}

func (m *mockBooks) Search(_ context.Context, text string, limit int) ([]models.Book, error) {
	return m.SearchFn(text, limit)
}

func (m *mockBooks) Insert(context.Context, models.Book) (bool, error) {
	return false, nil
}

type mockReviews struct {
	ExistsFn     func(userID int, isbn string) (bool, error)
	CreateFn     func(r models.Review) (int, error)
	ListByISBNFn func(isbn string, limit int) ([]models.ReviewWithAuthor, error)
	StatsFn      func(isbn string) (models.ReviewStats, error)

	created []models.Review
}

func (m *mockReviews) Exists(_ context.Context, userID int, isbn string) (bool, error) {
	return m.ExistsFn(userID, isbn)
}

func (m *mockReviews) Create(_ context.Context, r models.Review) (int, error) {
	m.created = append(m.created, r)
	return m.CreateFn(r)
}

func (m *mockReviews) ListByISBN(_ context.Context, isbn string, limit int) ([]models.ReviewWithAuthor, error) {
	return m.ListByISBNFn(isbn, limit)
}

func (m *mockReviews) Stats(_ context.Context, isbn string) (models.ReviewStats, error) {
	return m.StatsFn(isbn)
}

// mockTx runs fn against the mock repositories and records the outcome.
type mockTx struct {
	repo *repository.Repository

	calls   int
	lastErr error
}

func (m *mockTx) WithTx(_ context.Context, fn func(tx *repository.Repository) error) error {
	m.calls++
	m.lastErr = fn(m.repo)
	return m.lastErr
}
