package domain

import (
	"fmt"
	"math"
)

// RatingScale is the maximum rating a review may carry.
const RatingScale = 5

// RatingDisplay describes how an aggregate rating renders as discrete
// units: Filled whole units, at most one Half unit, and Empty for the
// remainder of the scale. Label is the value formatted to one decimal,
// "0.0" for an unrated book.
type RatingDisplay struct {
	Filled int    `json:"filled"`
	Half   int    `json:"half"`
	Empty  int    `json:"empty"`
	Label  string `json:"label"`
}

// NewRatingDisplay computes the unit breakdown for value on a scale of
// max units. A fractional part of 0.25 or more but under 0.75 renders a
// half unit; 0.75 and above rounds up to a filled unit. Values are
// clamped to [0, max].
func NewRatingDisplay(value float64, max int) RatingDisplay {
	if max < 1 {
		max = RatingScale
	}
	clamped := math.Min(math.Max(value, 0), float64(max))

	filled := int(clamped)
	frac := clamped - float64(filled)

	half := 0
	switch {
	case frac >= 0.75:
		filled++
	case frac >= 0.25:
		half = 1
	}

	return RatingDisplay{
		Filled: filled,
		Half:   half,
		Empty:  max - filled - half,
		Label:  fmt.Sprintf("%.1f", clamped),
	}
}

// IsValidRating checks that a submitted rating lies within the scale.
func IsValidRating(rating int) bool {
	return rating >= 1 && rating <= RatingScale
}
