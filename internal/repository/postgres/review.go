package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/Katty020/Book-Review-Platform/internal/domain"
	"github.com/Katty020/Book-Review-Platform/pkg/database"
	apperrors "github.com/Katty020/Book-Review-Platform/pkg/errors"
)

// ReviewRepository implements repository.ReviewRepository using PostgreSQL.
type ReviewRepository struct {
	pool database.DBTX
}

// NewReviewRepository creates a new PostgreSQL-backed review repository.
func NewReviewRepository(pool database.DBTX) *ReviewRepository {
	return &ReviewRepository{pool: pool}
}

// ListByBookID returns paginated reviews for a book, newest first, along
// with the total count.
func (r *ReviewRepository) ListByBookID(ctx context.Context, bookID string, page, perPage int) ([]domain.Review, int, error) {
	limit := perPage
	if limit <= 0 {
		limit = 12
	}
	offset := 0
	if page > 1 {
		offset = (page - 1) * limit
	}

	query := `
		SELECT id, book_id, reviewer_id, reviewer_name, rating, review_text, created_at, updated_at,
		       count(*) OVER() AS total_count
		FROM reviews
		WHERE book_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, bookID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var (
		reviews    []domain.Review
		totalCount int
	)

	for rows.Next() {
		var rv domain.Review

		if err := rows.Scan(
			&rv.ID,
			&rv.BookID,
			&rv.ReviewerID,
			&rv.ReviewerName,
			&rv.Rating,
			&rv.Text,
			&rv.CreatedAt,
			&rv.UpdatedAt,
			&totalCount,
		); err != nil {
			return nil, 0, fmt.Errorf("scan review row: %w", err)
		}

		reviews = append(reviews, rv)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate review rows: %w", err)
	}

	// A page past the last row yields no rows and with them no window
	// count; fall back to a plain count so the total stays accurate.
	if len(reviews) == 0 && offset > 0 {
		countQuery := `SELECT count(*) FROM reviews WHERE book_id = $1`
		if err := r.pool.QueryRow(ctx, countQuery, bookID).Scan(&totalCount); err != nil {
			return nil, 0, fmt.Errorf("count reviews: %w", err)
		}
	}

	if reviews == nil {
		reviews = []domain.Review{}
	}

	return reviews, totalCount, nil
}

// GetByBookAndReviewer retrieves the one review a reviewer holds for a book.
func (r *ReviewRepository) GetByBookAndReviewer(ctx context.Context, bookID, reviewerID string) (*domain.Review, error) {
	query := `
		SELECT id, book_id, reviewer_id, reviewer_name, rating, review_text, created_at, updated_at
		FROM reviews
		WHERE book_id = $1 AND reviewer_id = $2`

	var rv domain.Review

	err := r.pool.QueryRow(ctx, query, bookID, reviewerID).Scan(
		&rv.ID,
		&rv.BookID,
		&rv.ReviewerID,
		&rv.ReviewerName,
		&rv.Rating,
		&rv.Text,
		&rv.CreatedAt,
		&rv.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("scan review: %w", err)
	}

	return &rv, nil
}

// Upsert inserts the review or, when the reviewer already reviewed the
// book, replaces the rating, text and display name of the existing row.
// Uniqueness of (book_id, reviewer_id) is a table constraint, so two
// concurrent submissions collapse into one row either way. The stored
// identity and timestamps are read back into the review.
func (r *ReviewRepository) Upsert(ctx context.Context, review *domain.Review) error {
	query := `
		INSERT INTO reviews (id, book_id, reviewer_id, reviewer_name, rating, review_text)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (book_id, reviewer_id) DO UPDATE
		SET rating = EXCLUDED.rating,
		    review_text = EXCLUDED.review_text,
		    reviewer_name = EXCLUDED.reviewer_name,
		    updated_at = now()
		RETURNING id, created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		review.ID,
		review.BookID,
		review.ReviewerID,
		review.ReviewerName,
		review.Rating,
		review.Text,
	).Scan(&review.ID, &review.CreatedAt, &review.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return apperrors.NotFound("book", review.BookID)
		}
		return fmt.Errorf("upsert review: %w", err)
	}

	return nil
}
