package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/Katty020/Book-Review-Platform/internal/domain"
	"github.com/Katty020/Book-Review-Platform/internal/repository"
	"github.com/Katty020/Book-Review-Platform/pkg/database"
	apperrors "github.com/Katty020/Book-Review-Platform/pkg/errors"
)

// BookRepository implements repository.BookRepository using PostgreSQL.
// Reads go through the books_with_ratings view so average_rating and
// review_count always reflect the current review set.
type BookRepository struct {
	pool database.DBTX
}

// NewBookRepository creates a new PostgreSQL-backed book repository.
func NewBookRepository(pool database.DBTX) *BookRepository {
	return &BookRepository{pool: pool}
}

// Create inserts a new book and reads back the stored timestamps.
func (r *BookRepository) Create(ctx context.Context, b *domain.Book) error {
	query := `
		INSERT INTO books (id, title, author, genre, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		b.ID,
		b.Title,
		b.Author,
		b.Genre,
		b.CreatedBy,
	).Scan(&b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return apperrors.AlreadyExists("book", "id", b.ID)
		}
		return fmt.Errorf("insert book: %w", err)
	}

	return nil
}

// GetByID retrieves a book with its aggregate ratings by its ID.
func (r *BookRepository) GetByID(ctx context.Context, id string) (*domain.BookWithRatings, error) {
	query := `
		SELECT id, title, author, genre, created_by, created_at, updated_at, average_rating, review_count
		FROM books_with_ratings
		WHERE id = $1`

	var b domain.BookWithRatings

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.Genre,
		&b.CreatedBy,
		&b.CreatedAt,
		&b.UpdatedAt,
		&b.AverageRating,
		&b.ReviewCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("book", id)
		}
		return nil, fmt.Errorf("scan book: %w", err)
	}

	return &b, nil
}

// List returns books with aggregates matching the given filter and the
// total count under that filter.
func (r *BookRepository) List(ctx context.Context, filter repository.BookFilter) ([]domain.BookWithRatings, int, error) {
	var (
		conditions []string
		args       []any
		argIndex   = 1
	)

	if filter.Search != nil {
		conditions = append(conditions, fmt.Sprintf("(title ILIKE $%d OR author ILIKE $%d)", argIndex, argIndex))
		args = append(args, "%"+*filter.Search+"%")
		argIndex++
	}

	if filter.Genre != nil {
		conditions = append(conditions, fmt.Sprintf("genre = $%d", argIndex))
		args = append(args, *filter.Genre)
		argIndex++
	}

	if filter.Author != nil {
		conditions = append(conditions, fmt.Sprintf("author = $%d", argIndex))
		args = append(args, *filter.Author)
		argIndex++
	}

	whereClause := ""
	if len(conditions) > 0 {
		whereClause = "WHERE " + strings.Join(conditions, " AND ")
	}

	// Use count(*) OVER() for total count in a single query.
	query := fmt.Sprintf(`
		SELECT id, title, author, genre, created_by, created_at, updated_at, average_rating, review_count,
			   count(*) OVER() AS total_count
		FROM books_with_ratings
		%s
		ORDER BY %s
		LIMIT $%d OFFSET $%d`,
		whereClause, orderClause(filter.Sort), argIndex, argIndex+1,
	)

	limit := filter.PerPage
	if limit <= 0 {
		limit = 12
	}
	offset := 0
	if filter.Page > 1 {
		offset = (filter.Page - 1) * limit
	}

	args = append(args, limit, offset)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list books: %w", err)
	}
	defer rows.Close()

	var (
		books      []domain.BookWithRatings
		totalCount int
	)

	for rows.Next() {
		var b domain.BookWithRatings

		if err := rows.Scan(
			&b.ID,
			&b.Title,
			&b.Author,
			&b.Genre,
			&b.CreatedBy,
			&b.CreatedAt,
			&b.UpdatedAt,
			&b.AverageRating,
			&b.ReviewCount,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan book row: %w", err)
		}

		books = append(books, b)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate book rows: %w", err)
	}

	// A page past the last row yields no rows and with them no window
	// count; fall back to a plain count so the total stays accurate.
	if len(books) == 0 && offset > 0 {
		countQuery := fmt.Sprintf(`SELECT count(*) FROM books_with_ratings %s`, whereClause)
		if err := r.pool.QueryRow(ctx, countQuery, args[:len(args)-2]...).Scan(&totalCount); err != nil {
			return nil, 0, fmt.Errorf("count books: %w", err)
		}
	}

	if books == nil {
		books = []domain.BookWithRatings{}
	}

	return books, totalCount, nil
}

// DistinctGenres returns every genre value present in the catalog.
func (r *BookRepository) DistinctGenres(ctx context.Context) ([]string, error) {
	return r.distinctColumn(ctx, `SELECT DISTINCT genre FROM books ORDER BY genre`)
}

// DistinctAuthors returns every author value present in the catalog.
func (r *BookRepository) DistinctAuthors(ctx context.Context) ([]string, error) {
	return r.distinctColumn(ctx, `SELECT DISTINCT author FROM books ORDER BY author`)
}

func (r *BookRepository) distinctColumn(ctx context.Context, query string) ([]string, error) {
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("distinct values: %w", err)
	}
	defer rows.Close()

	values := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan distinct value: %w", err)
		}
		values = append(values, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate distinct values: %w", err)
	}

	return values, nil
}

// orderClause maps a sort key to its ORDER BY expression. Unknown keys
// fall back to newest first.
func orderClause(sort string) string {
	switch sort {
	case domain.SortTitle:
		return "title ASC, created_at DESC"
	case domain.SortRating:
		return "average_rating DESC, review_count DESC, created_at DESC"
	default:
		return "created_at DESC"
	}
}
