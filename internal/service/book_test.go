package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Katty020/Book-Review-Platform/internal/domain"
	"github.com/Katty020/Book-Review-Platform/internal/repository"
	apperrors "github.com/Katty020/Book-Review-Platform/pkg/errors"
)

func TestCreateBook_Success(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestBookService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Book")).Return(nil)

	input := CreateBookInput{
		Title:     "  The Dispossessed  ",
		Author:    "Ursula K. Le Guin",
		Genre:     "Science Fiction",
		CreatedBy: "user-1",
	}

	book, err := svc.CreateBook(ctx, &input)

	require.NoError(t, err)
	assert.NotEmpty(t, book.ID)
	assert.Equal(t, "The Dispossessed", book.Title)
	assert.Equal(t, "Ursula K. Le Guin", book.Author)
	assert.Equal(t, "user-1", book.CreatedBy)
	assert.Equal(t, 0, book.ReviewCount)
	assert.Equal(t, 0.0, book.AverageRating)
	assert.Equal(t, "0.0", book.Rating.Label)

	repo.AssertExpectations(t)
}

func TestCreateBook_ValidationError_BlankTitle(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestBookService(repo)

	input := CreateBookInput{
		Title:     "   ",
		Author:    "Someone",
		Genre:     "Fiction",
		CreatedBy: "user-1",
	}

	book, err := svc.CreateBook(context.Background(), &input)

	assert.Nil(t, book)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateBook_ValidationError_MissingAuthor(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestBookService(repo)

	input := CreateBookInput{
		Title:     "Title",
		Author:    "",
		Genre:     "Fiction",
		CreatedBy: "user-1",
	}

	book, err := svc.CreateBook(context.Background(), &input)

	assert.Nil(t, book)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestCreateBook_RequiresSession(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestBookService(repo)

	input := CreateBookInput{
		Title:  "Title",
		Author: "Author",
		Genre:  "Fiction",
	}

	book, err := svc.CreateBook(context.Background(), &input)

	assert.Nil(t, book)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestCreateBook_RepositoryError(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestBookService(repo)
	ctx := context.Background()

	repo.On("Create", ctx, mock.AnythingOfType("*domain.Book")).
		Return(fmt.Errorf("database connection failed"))

	input := CreateBookInput{
		Title:     "Title",
		Author:    "Author",
		Genre:     "Fiction",
		CreatedBy: "user-1",
	}

	book, err := svc.CreateBook(ctx, &input)

	assert.Nil(t, book)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "create book")

	repo.AssertExpectations(t)
}

func TestGetBook_Success(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestBookService(repo)
	ctx := context.Background()

	stored := &domain.BookWithRatings{
		Book:          domain.Book{ID: "book-1", Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction"},
		AverageRating: 4.5,
		ReviewCount:   8,
	}
	repo.On("GetByID", ctx, "book-1").Return(stored, nil)

	book, err := svc.GetBook(ctx, "book-1")

	require.NoError(t, err)
	assert.Equal(t, "Dune", book.Title)
	assert.Equal(t, 4, book.Rating.Filled)
	assert.Equal(t, 1, book.Rating.Half)
	assert.Equal(t, "4.5", book.Rating.Label)

	repo.AssertExpectations(t)
}

func TestGetBook_NotFound(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestBookService(repo)
	ctx := context.Background()

	repo.On("GetByID", ctx, "missing").Return(nil, apperrors.NotFound("book", "missing"))

	book, err := svc.GetBook(ctx, "missing")

	assert.Nil(t, book)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	repo.AssertExpectations(t)
}

func TestListBooks_DefaultsAndSummaries(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestBookService(repo)
	ctx := context.Background()

	stored := []domain.BookWithRatings{
		{
			Book:          domain.Book{ID: "book-1", Title: "Dune", Author: "Frank Herbert", Genre: "Science Fiction"},
			AverageRating: 4.5,
			ReviewCount:   8,
		},
	}

	expectedFilter := repository.BookFilter{Sort: domain.SortNewest, Page: 1, PerPage: 12}
	repo.On("List", ctx, expectedFilter).Return(stored, 13, nil)

	result, err := svc.ListBooks(ctx, repository.BookFilter{})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Page)
	assert.Equal(t, 12, result.PerPage)
	assert.Equal(t, 13, result.TotalCount)
	assert.Equal(t, 2, result.TotalPages)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "4.5", result.Data[0].Rating.Label)

	repo.AssertExpectations(t)
}

func TestListBooks_InvalidSort(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestBookService(repo)

	result, err := svc.ListBooks(context.Background(), repository.BookFilter{Sort: "price"})

	assert.Nil(t, result)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}

func TestListBooks_CapPerPage(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestBookService(repo)
	ctx := context.Background()

	expectedFilter := repository.BookFilter{Sort: domain.SortTitle, Page: 1, PerPage: 100}
	repo.On("List", ctx, expectedFilter).Return([]domain.BookWithRatings{}, 0, nil)

	result, err := svc.ListBooks(ctx, repository.BookFilter{Sort: domain.SortTitle, Page: 1, PerPage: 500})

	require.NoError(t, err)
	assert.Equal(t, 100, result.PerPage)
	assert.Empty(t, result.Data)

	repo.AssertExpectations(t)
}

func TestListBooks_RepositoryError(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestBookService(repo)
	ctx := context.Background()

	expectedFilter := repository.BookFilter{Sort: domain.SortNewest, Page: 1, PerPage: 12}
	repo.On("List", ctx, expectedFilter).Return([]domain.BookWithRatings{}, 0, fmt.Errorf("database error"))

	result, err := svc.ListBooks(ctx, repository.BookFilter{})

	assert.Nil(t, result)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "list books")

	repo.AssertExpectations(t)
}

func TestFilterOptions_Success(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestBookService(repo)
	ctx := context.Background()

	repo.On("DistinctGenres", ctx).Return([]string{"Fantasy", "Science Fiction"}, nil)
	repo.On("DistinctAuthors", ctx).Return([]string{"Frank Herbert", "Ursula K. Le Guin"}, nil)

	opts, err := svc.FilterOptions(ctx)

	require.NoError(t, err)
	assert.Equal(t, []string{"Fantasy", "Science Fiction"}, opts.Genres)
	assert.Equal(t, []string{"Frank Herbert", "Ursula K. Le Guin"}, opts.Authors)

	repo.AssertExpectations(t)
}

func TestFilterOptions_GenreError(t *testing.T) {
	repo := new(mockBookRepository)
	svc := newTestBookService(repo)
	ctx := context.Background()

	repo.On("DistinctGenres", ctx).Return(nil, fmt.Errorf("database error"))

	opts, err := svc.FilterOptions(ctx)

	assert.Nil(t, opts)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "distinct genres")

	repo.AssertExpectations(t)
}
