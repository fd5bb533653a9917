package domain

import (
	"time"
)

// AnonymousReviewer is the display name used when a reviewer's profile
// carries neither a name nor an email.
const AnonymousReviewer = "Anonymous"

// Review represents a book review submitted by a user. Each user holds at
// most one review per book; resubmitting replaces the text and rating.
type Review struct {
	ID           string    `json:"id"`
	BookID       string    `json:"book_id"`
	ReviewerID   string    `json:"reviewer_id"`
	ReviewerName string    `json:"reviewer_name"`
	Rating       int       `json:"rating"`
	Text         string    `json:"text"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ReviewerDisplayName resolves the name shown alongside a review: the
// profile name when present, the email otherwise, and an anonymous label
// when neither is set.
func ReviewerDisplayName(name, email string) string {
	if name != "" {
		return name
	}
	if email != "" {
		return email
	}
	return AnonymousReviewer
}
