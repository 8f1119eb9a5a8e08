package service

import (
	"context"
	"fmt"

	"bookreview/internal/models"
	"bookreview/internal/repository"
)

// SearchLimit caps the number of books returned by a catalog search.
const SearchLimit = 7

type CatalogService struct {
	books repository.Books
}

func NewCatalogService(repo repository.Books) *CatalogService {
	return &CatalogService{books: repo}
}

// FindByISBN returns the book or ErrBookNotFound.
func (s *CatalogService) FindByISBN(ctx context.Context, isbn string) (*models.Book, error) {
	b, err := s.books.GetByISBN(ctx, isbn)
	if err != nil {
		return nil, fmt.Errorf("find book %q: %w", isbn, err)
	}
	if b == nil {
		return nil, ErrBookNotFound
	}
	return b, nil
}

// Search matches text case-insensitively against isbn, author and title.
// No matches is an empty slice, not an error.
func (s *CatalogService) Search(ctx context.Context, text string) ([]models.Book, error) {
	books, err := s.books.Search(ctx, text, SearchLimit)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", text, err)
	}
	if books == nil {
		books = []models.Book{}
	}
	return books, nil
}
