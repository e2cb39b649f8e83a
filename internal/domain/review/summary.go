package review

import "math"

// Summary aggregates the approved ratings of a product
type Summary struct {
	Count     int         `json:"count"`
	Average   float64     `json:"average"`
	Histogram map[int]int `json:"histogram"`
}

// Summarize builds a summary from approved reviews only
func Summarize(reviews []Review) Summary {
	s := Summary{Histogram: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	total := 0
	for _, r := range reviews {
		if !r.IsVisible() {
			continue
		}
		s.Count++
		s.Histogram[r.Rating]++
		total += r.Rating
	}
	if s.Count > 0 {
		s.Average = math.Round(float64(total)/float64(s.Count)*10) / 10
	}
	return s
}

// SummaryFromCounts builds a summary from per-star counts, as returned by a
// grouped query
func SummaryFromCounts(counts map[int]int) Summary {
	s := Summary{Histogram: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	total := 0
	for star, n := range counts {
		if star < MinRating || star > MaxRating {
			continue
		}
		s.Histogram[star] = n
		s.Count += n
		total += star * n
	}
	if s.Count > 0 {
		s.Average = math.Round(float64(total)/float64(s.Count)*10) / 10
	}
	return s
}
