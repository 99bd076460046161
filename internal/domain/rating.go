package domain

import "math"

// RatingSummary is the denormalized review aggregate stored on each book.
// Invariant: Count == sum of Distribution values, and Distribution always
// carries exactly the keys 1..5.
type RatingSummary struct {
	Average      float64     `json:"average"`
	Count        int         `json:"count"`
	Distribution map[int]int `json:"distribution"`
}

// ZeroRatingSummary returns the summary for a book with no approved reviews:
// zero average, zero count, all-zero star distribution.
func ZeroRatingSummary() RatingSummary {
	return RatingSummary{
		Average:      0,
		Count:        0,
		Distribution: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
	}
}

// SummarizeRatings computes the rating summary for the given set of approved
// review ratings. The average is the mean rounded to one decimal place
// (half away from zero). Ratings outside 1..5 never reach this function;
// the repository enforces the range on write.
func SummarizeRatings(ratings []int) RatingSummary {
	if len(ratings) == 0 {
		return ZeroRatingSummary()
	}

	summary := ZeroRatingSummary()
	summary.Count = len(ratings)

	var total int
	for _, r := range ratings {
		total += r
		summary.Distribution[r]++
	}

	mean := float64(total) / float64(len(ratings))
	summary.Average = math.Round(mean*10) / 10

	return summary
}
