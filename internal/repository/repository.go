package repository

import (
	"context"

	"github.com/Katty020/Book-Review-Platform/internal/domain"
)

// BookFilter defines filter criteria for listing books.
type BookFilter struct {
	Search  *string
	Genre   *string
	Author  *string
	Sort    string
	Page    int
	PerPage int
}

// BookRepository defines the interface for book persistence operations.
type BookRepository interface {
	// Create inserts a new book into the store and fills in the
	// server-generated timestamp.
	Create(ctx context.Context, book *domain.Book) error

	// GetByID retrieves a book with its aggregate ratings by its
	// unique identifier.
	GetByID(ctx context.Context, id string) (*domain.BookWithRatings, error)

	// List returns books with aggregates matching the given filter along
	// with the total count under that filter.
	List(ctx context.Context, filter BookFilter) ([]domain.BookWithRatings, int, error)

	// DistinctGenres returns every genre value present in the catalog,
	// sorted ascending.
	DistinctGenres(ctx context.Context) ([]string, error)

	// DistinctAuthors returns every author value present in the catalog,
	// sorted ascending.
	DistinctAuthors(ctx context.Context) ([]string, error)
}

// ReviewRepository defines the interface for review persistence operations.
type ReviewRepository interface {
	// ListByBookID returns paginated reviews for a book, newest first,
	// along with the total count.
	ListByBookID(ctx context.Context, bookID string, page, perPage int) ([]domain.Review, int, error)

	// GetByBookAndReviewer retrieves the one review a reviewer holds for
	// a book, if any.
	GetByBookAndReviewer(ctx context.Context, bookID, reviewerID string) (*domain.Review, error)

	// Upsert inserts the review, or replaces the rating, text and name of
	// the reviewer's existing review for the same book. The store enforces
	// one review per (book, reviewer) pair.
	Upsert(ctx context.Context, review *domain.Review) error
}
