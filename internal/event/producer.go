package event

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Katty020/Book-Review-Platform/internal/domain"
	pkgkafka "github.com/Katty020/Book-Review-Platform/pkg/kafka"
)

// Kafka topic constants for book review domain events.
const (
	TopicBookCreated     = "bookreview.book.created"
	TopicReviewSubmitted = "bookreview.review.submitted"
)

// Aggregate type constants.
const (
	AggregateTypeBook   = "book"
	AggregateTypeReview = "review"
)

// Source identifier for events originating from this service.
const SourceBookReviewService = "bookreview-service"

// BookCreatedData is the payload for a book.created event.
type BookCreatedData struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Genre     string `json:"genre"`
	CreatedBy string `json:"created_by"`
}

// ReviewSubmittedData is the payload for a review.submitted event. Updated
// reports whether the submission replaced an existing review.
type ReviewSubmittedData struct {
	ID         string `json:"id"`
	BookID     string `json:"book_id"`
	ReviewerID string `json:"reviewer_id"`
	Rating     int    `json:"rating"`
	Updated    bool   `json:"updated"`
}

// Producer publishes book review domain events to Kafka. A Producer built
// with a nil Kafka producer is a no-op, used when eventing is disabled.
type Producer struct {
	kafka  *pkgkafka.Producer
	logger *slog.Logger
}

// NewProducer creates a new event producer.
func NewProducer(kafka *pkgkafka.Producer, logger *slog.Logger) *Producer {
	return &Producer{
		kafka:  kafka,
		logger: logger,
	}
}

// PublishBookCreated publishes a book.created event.
func (p *Producer) PublishBookCreated(ctx context.Context, book *domain.Book) error {
	if p == nil || p.kafka == nil {
		return nil
	}

	data := BookCreatedData{
		ID:        book.ID,
		Title:     book.Title,
		Author:    book.Author,
		Genre:     book.Genre,
		CreatedBy: book.CreatedBy,
	}

	event, err := pkgkafka.NewEvent(TopicBookCreated, book.ID, AggregateTypeBook, SourceBookReviewService, data)
	if err != nil {
		return fmt.Errorf("create book.created event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicBookCreated, event); err != nil {
		return fmt.Errorf("publish book.created event: %w", err)
	}

	p.logger.DebugContext(ctx, "published book.created event",
		slog.String("book_id", book.ID),
	)

	return nil
}

// PublishReviewSubmitted publishes a review.submitted event.
func (p *Producer) PublishReviewSubmitted(ctx context.Context, review *domain.Review, updated bool) error {
	if p == nil || p.kafka == nil {
		return nil
	}

	data := ReviewSubmittedData{
		ID:         review.ID,
		BookID:     review.BookID,
		ReviewerID: review.ReviewerID,
		Rating:     review.Rating,
		Updated:    updated,
	}

	event, err := pkgkafka.NewEvent(TopicReviewSubmitted, review.BookID, AggregateTypeReview, SourceBookReviewService, data)
	if err != nil {
		return fmt.Errorf("create review.submitted event: %w", err)
	}

	if err := p.kafka.Publish(ctx, TopicReviewSubmitted, event); err != nil {
		return fmt.Errorf("publish review.submitted event: %w", err)
	}

	p.logger.DebugContext(ctx, "published review.submitted event",
		slog.String("review_id", review.ID),
		slog.String("book_id", review.BookID),
	)

	return nil
}
