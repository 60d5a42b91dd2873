package handlers

import "wearmart/internal/models"

// summarizeRatings recomputes a product's rating aggregate from its reviews.
// An empty slice resets the mean to exactly 0 rather than leaving NaN behind.
func summarizeRatings(reviews []models.Review) (rating float64, count int) {
	if len(reviews) == 0 {
		return 0, 0
	}

	sum := 0
	for _, review := range reviews {
		sum += review.Rating
	}
	return float64(sum) / float64(len(reviews)), len(reviews)
}
