package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/Katty020/Book-Review-Platform/internal/domain"
	"github.com/Katty020/Book-Review-Platform/internal/event"
	"github.com/Katty020/Book-Review-Platform/internal/repository"
	apperrors "github.com/Katty020/Book-Review-Platform/pkg/errors"
	"github.com/Katty020/Book-Review-Platform/pkg/pagination"
)

// BookService implements the business logic for catalog operations.
type BookService struct {
	repo     repository.BookRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(repo repository.BookRepository, producer *event.Producer, logger *slog.Logger) *BookService {
	return &BookService{
		repo:     repo,
		producer: producer,
		logger:   logger,
	}
}

// CreateBookInput holds the parameters for adding a book to the catalog.
type CreateBookInput struct {
	Title     string
	Author    string
	Genre     string
	CreatedBy string
}

// BookDetail is a book with its aggregates and rating display.
type BookDetail struct {
	domain.BookWithRatings
	Rating domain.RatingDisplay `json:"rating"`
}

// CreateBook adds a new book to the catalog attributed to the submitting
// user and returns it with zeroed aggregates.
func (s *BookService) CreateBook(ctx context.Context, input *CreateBookInput) (*BookDetail, error) {
	title := strings.TrimSpace(input.Title)
	author := strings.TrimSpace(input.Author)
	genre := strings.TrimSpace(input.Genre)

	if title == "" {
		return nil, apperrors.InvalidInput("title is required")
	}
	if author == "" {
		return nil, apperrors.InvalidInput("author is required")
	}
	if genre == "" {
		return nil, apperrors.InvalidInput("genre is required")
	}
	if input.CreatedBy == "" {
		return nil, apperrors.Unauthorized("sign in to add a book")
	}

	book := &domain.Book{
		ID:        uuid.New().String(),
		Title:     title,
		Author:    author,
		Genre:     genre,
		CreatedBy: input.CreatedBy,
	}

	if err := s.repo.Create(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	if err := s.producer.PublishBookCreated(ctx, book); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish book.created event",
			slog.String("book_id", book.ID),
			slog.String("error", err.Error()),
		)
		// Do not fail the operation if event publishing fails.
	}

	s.logger.InfoContext(ctx, "book created",
		slog.String("book_id", book.ID),
		slog.String("title", book.Title),
	)

	return newBookDetail(domain.BookWithRatings{Book: *book}), nil
}

// GetBook retrieves a book with its current aggregates by ID.
func (s *BookService) GetBook(ctx context.Context, id string) (*BookDetail, error) {
	book, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get book by id: %w", err)
	}
	return newBookDetail(*book), nil
}

// ListBooks returns a filtered, sorted, paginated page of book summaries.
// An unknown sort key is rejected rather than silently remapped.
func (s *BookService) ListBooks(ctx context.Context, filter repository.BookFilter) (*pagination.Result[domain.BookSummary], error) {
	if filter.Sort == "" {
		filter.Sort = domain.SortNewest
	}
	if !domain.IsValidSortKey(filter.Sort) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("invalid sort %q, must be one of: %s", filter.Sort, strings.Join(domain.ValidSortKeys(), ", ")))
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PerPage <= 0 {
		filter.PerPage = pagination.DefaultPerPage
	}
	if filter.PerPage > pagination.MaxPerPage {
		filter.PerPage = pagination.MaxPerPage
	}

	books, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}

	summaries := make([]domain.BookSummary, len(books))
	for i, b := range books {
		summaries[i] = b.Summary()
	}

	result := pagination.NewResult(summaries, total, pagination.Params{Page: filter.Page, PerPage: filter.PerPage})
	return &result, nil
}

// FilterOptions returns the distinct genre and author values across the
// whole catalog for populating filter controls.
func (s *BookService) FilterOptions(ctx context.Context) (*domain.FilterOptions, error) {
	genres, err := s.repo.DistinctGenres(ctx)
	if err != nil {
		return nil, fmt.Errorf("distinct genres: %w", err)
	}

	authors, err := s.repo.DistinctAuthors(ctx)
	if err != nil {
		return nil, fmt.Errorf("distinct authors: %w", err)
	}

	return &domain.FilterOptions{
		Genres:  genres,
		Authors: authors,
	}, nil
}

func newBookDetail(b domain.BookWithRatings) *BookDetail {
	return &BookDetail{
		BookWithRatings: b,
		Rating:          domain.NewRatingDisplay(b.AverageRating, domain.RatingScale),
	}
}
