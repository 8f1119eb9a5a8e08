// Package importer loads the book catalog from CSV.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bookreview/internal/logger"
	"bookreview/internal/models"
	"bookreview/internal/repository"
)

var expectedHeader = []string{"isbn", "title", "author", "year"}

var ErrBadHeader = errors.New("csv header must be isbn,title,author,year")

// Result counts what an import did.
type Result struct {
	Inserted int
	Skipped  int
}

type Importer struct {
	books repository.Books
	log   *logger.Logger
}

func New(books repository.Books, log *logger.Logger) *Importer {
	if log == nil {
		log = logger.Nop()
	}
	return &Importer{books: books, log: log}
}

// Import reads books from r and inserts those whose ISBN is not yet stored.
// It stops at the first malformed row and reports its line number.
func (im *Importer) Import(ctx context.Context, r io.Reader) (Result, error) {
	var res Result

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(expectedHeader)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return res, ErrBadHeader
	}
	if err != nil {
		return res, fmt.Errorf("read header: %w", err)
	}
	for i, col := range header {
		if strings.ToLower(strings.TrimSpace(strings.TrimPrefix(col, "\ufeff"))) != expectedHeader[i] {
			return res, ErrBadHeader
		}
	}

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return res, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)

		book, err := parseRecord(rec)
		if err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}

		inserted, err := im.books.Insert(ctx, book)
		if err != nil {
			return res, fmt.Errorf("line %d: %w", line, err)
		}
		if inserted {
			res.Inserted++
		} else {
			res.Skipped++
			im.log.Debugw("import_book_skipped", "isbn", book.ISBN, "line", line)
		}
	}

	im.log.Infow("import_finished", "inserted", res.Inserted, "skipped", res.Skipped)
	return res, nil
}

func parseRecord(rec []string) (models.Book, error) {
	isbn := strings.TrimSpace(rec[0])
	if isbn == "" {
		return models.Book{}, errors.New("empty isbn")
	}
	year, err := strconv.Atoi(strings.TrimSpace(rec[3]))
	if err != nil {
		return models.Book{}, fmt.Errorf("year %q: %w", rec[3], err)
	}
	return models.Book{
		ISBN:   isbn,
		Title:  strings.TrimSpace(rec[1]),
		Author: strings.TrimSpace(rec[2]),
		Year:   year,
	}, nil
}
