package domain

import (
	"time"
)

// Sort keys accepted by the catalog listing.
const (
	SortNewest = "newest"
	SortTitle  = "title"
	SortRating = "rating"
)

// Book represents a book in the catalog.
type Book struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	Genre     string    `json:"genre"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookWithRatings is a Book joined with its aggregate review statistics,
// read from the books_with_ratings view. AverageRating is 0 and
// ReviewCount is 0 for a book with no reviews.
type BookWithRatings struct {
	Book
	AverageRating float64 `json:"average_rating"`
	ReviewCount   int     `json:"review_count"`
}

// BookSummary is the listing representation of a book: the fields a
// catalog card needs, including the precomputed rating display.
type BookSummary struct {
	ID            string        `json:"id"`
	Title         string        `json:"title"`
	Author        string        `json:"author"`
	Genre         string        `json:"genre"`
	AverageRating float64       `json:"average_rating"`
	ReviewCount   int           `json:"review_count"`
	Rating        RatingDisplay `json:"rating"`
	CreatedAt     time.Time     `json:"created_at"`
}

// Summary converts a rated book into its listing form.
func (b BookWithRatings) Summary() BookSummary {
	return BookSummary{
		ID:            b.ID,
		Title:         b.Title,
		Author:        b.Author,
		Genre:         b.Genre,
		AverageRating: b.AverageRating,
		ReviewCount:   b.ReviewCount,
		Rating:        NewRatingDisplay(b.AverageRating, RatingScale),
		CreatedAt:     b.CreatedAt,
	}
}

// ValidSortKeys returns the sort keys the listing accepts.
func ValidSortKeys() []string {
	return []string{SortNewest, SortTitle, SortRating}
}

// IsValidSortKey checks whether the given key is an accepted sort key.
func IsValidSortKey(key string) bool {
	for _, k := range ValidSortKeys() {
		if k == key {
			return true
		}
	}
	return false
}

// FilterOptions holds the distinct genre and author values present in the
// catalog, used to populate filter controls.
type FilterOptions struct {
	Genres  []string `json:"genres"`
	Authors []string `json:"authors"`
}
