package handlers

import (
	"testing"

	"wearmart/internal/models"
)

func TestSummarizeRatingsMean(t *testing.T) {
	reviews := []models.Review{
		{Rating: 5},
		{Rating: 4},
		{Rating: 2},
	}

	rating, count := summarizeRatings(reviews)
	if count != 3 {
		t.Fatalf("expected count 3, got %d", count)
	}
	want := float64(5+4+2) / 3
	if rating != want {
		t.Fatalf("expected rating %v, got %v", want, rating)
	}
}

func TestSummarizeRatingsSingleReview(t *testing.T) {
	rating, count := summarizeRatings([]models.Review{{Rating: 4}})
	if rating != 4 || count != 1 {
		t.Fatalf("expected 4/1, got %v/%d", rating, count)
	}
}

// Deleting the last review resets the aggregate to exactly zero.
func TestSummarizeRatingsEmptyResetsToZero(t *testing.T) {
	rating, count := summarizeRatings(nil)
	if rating != 0 || count != 0 {
		t.Fatalf("expected 0/0, got %v/%d", rating, count)
	}

	rating, count = summarizeRatings([]models.Review{})
	if rating != 0 || count != 0 {
		t.Fatalf("expected 0/0 for empty slice, got %v/%d", rating, count)
	}
}
