package service

import (
	"context"
	"errors"
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

// SubmitReviewInput holds the parameters for submitting a review.
type SubmitReviewInput struct {
	BookID        string
	ReviewerID    string
	ReviewerName  string
	ReviewerEmail string
	Rating        int
	Text          string
}

// SubmitReviewResult is the outcome of a review submission: the stored
// review, whether it replaced a prior one, and the book's refreshed
// aggregates.
type SubmitReviewResult struct {
	Review  domain.Review `json:"review"`
	Updated bool          `json:"updated"`
	Book    *BookDetail   `json:"book"`
}

// ReviewService implements the business logic for review operations.
type ReviewService struct {
	reviews  repository.ReviewRepository
	books    repository.BookRepository
	producer *event.Producer
	logger   *slog.Logger
}

// NewReviewService creates a new review service.
func NewReviewService(reviews repository.ReviewRepository, books repository.BookRepository, producer *event.Producer, logger *slog.Logger) *ReviewService {
	return &ReviewService{
		reviews:  reviews,
		books:    books,
		producer: producer,
		logger:   logger,
	}
}

// SubmitReview stores the reviewer's rating and text for a book. A reviewer
// holds at most one review per book, so a second submission replaces the
// first; the database upsert makes that hold under concurrent submissions
// too. The book's aggregates are re-read after the write.
func (s *ReviewService) SubmitReview(ctx context.Context, input *SubmitReviewInput) (*SubmitReviewResult, error) {
	if input.BookID == "" {
		return nil, apperrors.InvalidInput("book_id is required")
	}
	if input.ReviewerID == "" {
		return nil, apperrors.Unauthorized("sign in to submit a review")
	}
	if !domain.IsValidRating(input.Rating) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("rating must be between 1 and %d", domain.RatingScale))
	}
	text := strings.TrimSpace(input.Text)
	if text == "" {
		return nil, apperrors.InvalidInput("review text is required")
	}

	updated := false
	if _, err := s.reviews.GetByBookAndReviewer(ctx, input.BookID, input.ReviewerID); err == nil {
		updated = true
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("check existing review: %w", err)
	}

	review := &domain.Review{
		ID:           uuid.New().String(),
		BookID:       input.BookID,
		ReviewerID:   input.ReviewerID,
		ReviewerName: domain.ReviewerDisplayName(input.ReviewerName, input.ReviewerEmail),
		Rating:       input.Rating,
		Text:         text,
	}

	if err := s.reviews.Upsert(ctx, review); err != nil {
		return nil, fmt.Errorf("submit review: %w", err)
	}

	if err := s.producer.PublishReviewSubmitted(ctx, review, updated); err != nil {
		s.logger.ErrorContext(ctx, "failed to publish review.submitted event",
			slog.String("review_id", review.ID),
			slog.String("error", err.Error()),
		)
	}

	s.logger.InfoContext(ctx, "review submitted",
		slog.String("review_id", review.ID),
		slog.String("book_id", review.BookID),
		slog.Int("rating", review.Rating),
		slog.Bool("updated", updated),
	)

	result := &SubmitReviewResult{
		Review:  *review,
		Updated: updated,
	}

	book, err := s.books.GetByID(ctx, input.BookID)
	if err != nil {
		// The write succeeded; stale aggregates are better than a failure.
		s.logger.ErrorContext(ctx, "failed to refresh book aggregates",
			slog.String("book_id", input.BookID),
			slog.String("error", err.Error()),
		)
		return result, nil
	}
	result.Book = newBookDetail(*book)

	return result, nil
}

// ListReviews returns paginated reviews for a book, newest first.
func (s *ReviewService) ListReviews(ctx context.Context, bookID string, page, perPage int) (*pagination.Result[domain.Review], error) {
	if bookID == "" {
		return nil, apperrors.InvalidInput("book_id is required")
	}
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = pagination.DefaultPerPage
	}
	if perPage > pagination.MaxPerPage {
		perPage = pagination.MaxPerPage
	}

	reviews, total, err := s.reviews.ListByBookID(ctx, bookID, page, perPage)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}

	result := pagination.NewResult(reviews, total, pagination.Params{Page: page, PerPage: perPage})
	return &result, nil
}

// GetOwnReview retrieves the current user's review for a book, so the
// client can pre-fill the form and label the action as an update.
func (s *ReviewService) GetOwnReview(ctx context.Context, bookID, reviewerID string) (*domain.Review, error) {
	if reviewerID == "" {
		return nil, apperrors.Unauthorized("sign in to view your review")
	}

	review, err := s.reviews.GetByBookAndReviewer(ctx, bookID, reviewerID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NotFoundMsg(fmt.Sprintf("no review for book %s", bookID))
		}
		return nil, fmt.Errorf("get own review: %w", err)
	}

	return review, nil
}
