package places_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tripway/tripway/internal/places"
)

func TestNewLocalReview(t *testing.T) {
	r := places.NewLocalReview("pid-1", "Gyeongbokgung", "Traveler", 5, "Stunning at dusk")

	assert.NotEmpty(t, r.ID)
	assert.Equal(t, "pid-1", r.PlaceID)
	assert.Equal(t, "Gyeongbokgung", r.PlaceName)
	assert.Equal(t, places.SourceUser, r.Source)
	assert.Equal(t, time.Now().Format("2006-01-02"), r.ReviewDate)

	other := places.NewLocalReview("pid-1", "Gyeongbokgung", "Traveler", 5, "Stunning at dusk")
	assert.NotEqual(t, r.ID, other.ID)
}

func TestPlaceDetail_PrependLocalReview(t *testing.T) {
	detail := &places.PlaceDetail{
		PlaceID: "pid-1",
		Name:    "Gyeongbokgung",
		Reviews: []places.Review{
			{ID: "r1", Rating: 4, Source: places.SourceGoogle},
			{ID: "r2", Rating: 2, Source: places.SourceGoogle},
		},
		AverageRating: 3,
	}

	local := places.NewLocalReview("pid-1", "Gyeongbokgung", "Traveler", 5, "Great")
	detail.PrependLocalReview(local)

	require.Len(t, detail.Reviews, 3)
	assert.Equal(t, local.ID, detail.Reviews[0].ID)
	assert.Equal(t, "r1", detail.Reviews[1].ID)

	// (4 + 2 + 5) / 3
	assert.InDelta(t, 11.0/3.0, detail.AverageRating, 1e-9)
}

func TestPlaceDetail_PrependLocalReviewIntoEmpty(t *testing.T) {
	detail := &places.PlaceDetail{PlaceID: "pid-1"}
	detail.PrependLocalReview(places.NewLocalReview("pid-1", "N Seoul Tower", "Traveler", 4, "Nice view"))

	require.Len(t, detail.Reviews, 1)
	assert.InDelta(t, 4.0, detail.AverageRating, 1e-9)
}
