// Package places holds the place, review and favorite domain model shared
// by the remote client and the reconciliation logic.
package places

import (
	"time"

	"github.com/google/uuid"
)

// ReviewSource identifies where a review originated.
type ReviewSource string

// Review sources. Google-sourced reviews are synchronized into the backend
// on first place lookup; user reviews are submitted through the app.
const (
	SourceGoogle ReviewSource = "google"
	SourceUser   ReviewSource = "user"
)

// reviewDateLayout is the ISO date carried in Review.ReviewDate.
const reviewDateLayout = "2006-01-02"

// PlaceSummary is the result of a name-based place search.
type PlaceSummary struct {
	PlaceID string `json:"placeId"`
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Review is a single place review from either source. The server governs
// list ordering; the only client-side guarantee is that a freshly submitted
// user review is prepended locally until the next refetch.
type Review struct {
	ID         string       `json:"id"`
	PlaceID    string       `json:"place_id"`
	PlaceName  string       `json:"place_name"`
	UserName   string       `json:"user_name"`
	Rating     int          `json:"rating"`
	Comment    string       `json:"comment"`
	ReviewDate string       `json:"review_date"`
	Source     ReviewSource `json:"source"`
	CreatedAt  string       `json:"created_at,omitempty"`
	UpdatedAt  string       `json:"updated_at,omitempty"`
}

// Activity is a recommended activity attached to a place.
type Activity struct {
	ID              int    `json:"id"`
	PlaceID         string `json:"place_id"`
	ActivityType    string `json:"activity_type"`
	Description     string `json:"description"`
	RecommendedTime string `json:"recommended_time"`
}

// PlaceDetail is the full place record, including reviews and activities.
// AverageRating is derived from the review ratings.
type PlaceDetail struct {
	PlaceID       string     `json:"place_id"`
	Name          string     `json:"name"`
	Description   string     `json:"description,omitempty"`
	Address       string     `json:"address,omitempty"`
	Phone         string     `json:"phone,omitempty"`
	OpeningHours  string     `json:"opening_hours,omitempty"`
	ClosedDays    string     `json:"closed_days,omitempty"`
	Latitude      float64    `json:"latitude,omitempty"`
	Longitude     float64    `json:"longitude,omitempty"`
	AverageRating float64    `json:"average_rating,omitempty"`
	Reviews       []Review   `json:"reviews,omitempty"`
	Activities    []Activity `json:"activities,omitempty"`
}

// Favorite is a user-to-place bookmark as returned by the list endpoint.
// Existence is the whole payload; CreatedAt is the only surfaced metadata.
type Favorite struct {
	PlaceID   string `json:"place_id"`
	Name      string `json:"name,omitempty"`
	Address   string `json:"address,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

// NewLocalReview synthesizes the optimistic local review shown immediately
// after a successful submission. The id is client-generated and the date is
// today; both are replaced by server values on the next full refetch.
func NewLocalReview(placeID, placeName, userName string, rating int, comment string) Review {
	return Review{
		ID:         uuid.NewString(),
		PlaceID:    placeID,
		PlaceName:  placeName,
		UserName:   userName,
		Rating:     rating,
		Comment:    comment,
		ReviewDate: time.Now().Format(reviewDateLayout),
		Source:     SourceUser,
	}
}

// PrependLocalReview inserts a freshly submitted review at the head of the
// list and recomputes AverageRating over all reviews including it.
func (d *PlaceDetail) PrependLocalReview(r Review) {
	d.Reviews = append([]Review{r}, d.Reviews...)
	d.AverageRating = averageRating(d.Reviews)
}

func averageRating(reviews []Review) float64 {
	if len(reviews) == 0 {
		return 0
	}
	sum := 0
	for _, r := range reviews {
		sum += r.Rating
	}
	return float64(sum) / float64(len(reviews))
}
