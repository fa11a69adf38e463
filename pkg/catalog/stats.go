package catalog

import "math"

// Stats summarizes a catalog.
type Stats struct {
	Total       int            `json:"total"`
	HeightRange HeightRange    `json:"height_range"`
	ByGender    map[string]int `json:"by_gender"`
	// ByCategory counts characters by primary (first) category ID.
	ByCategory map[int]int `json:"by_category"`
}

// HeightRange is in centimeters. Average is rounded to whole centimeters.
type HeightRange struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Average float64 `json:"average"`
}

// ComputeStats summarizes chars. Characters without a gender count as
// "unknown"; characters without categories are left out of ByCategory.
func ComputeStats(chars []Character) Stats {
	s := Stats{
		Total:      len(chars),
		ByGender:   make(map[string]int),
		ByCategory: make(map[int]int),
	}
	if len(chars) == 0 {
		return s
	}

	s.HeightRange.Min = math.Inf(1)
	s.HeightRange.Max = math.Inf(-1)
	var sum float64
	for _, c := range chars {
		s.HeightRange.Min = math.Min(s.HeightRange.Min, c.Height)
		s.HeightRange.Max = math.Max(s.HeightRange.Max, c.Height)
		sum += c.Height

		g := c.Gender
		if g == "" {
			g = "unknown"
		}
		s.ByGender[g]++
		if len(c.CategoryIDs) > 0 {
			s.ByCategory[c.CategoryIDs[0]]++
		}
	}
	s.HeightRange.Average = math.Floor(sum/float64(len(chars)) + 0.5)
	return s
}
