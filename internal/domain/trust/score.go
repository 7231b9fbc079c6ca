// Package trust turns stored mechanic trust scores into presentation values
// and derives scores from review ratings.
package trust

import "math"

const (
	MinScore = 1.0
	MaxScore = 10.0

	// DefaultScore is assigned to mechanics without reviews
	DefaultScore = 5.0

	highThreshold   = 8.0
	mediumThreshold = 6.0
)

// Tier buckets a score for colour selection
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// Score is the presentation form of a trust score
type Score struct {
	Value    float64 `json:"value"`
	Tier     Tier    `json:"tier"`
	Progress float64 `json:"progress"`
}

// Metric is one row of the score breakdown
type Metric struct {
	Label string `json:"label"`
	Score Score  `json:"score"`
}

// Normalize clamps s to [1,10]. NaN maps to 1.
func Normalize(s float64) float64 {
	if math.IsNaN(s) {
		return MinScore
	}
	return math.Max(MinScore, math.Min(MaxScore, s))
}

// TierOf classifies the clamped score
func TierOf(s float64) Tier {
	v := Normalize(s)
	switch {
	case v >= highThreshold:
		return TierHigh
	case v >= mediumThreshold:
		return TierMedium
	default:
		return TierLow
	}
}

// Progress maps the clamped score linearly onto [0,1]
func Progress(s float64) float64 {
	return (Normalize(s) - MinScore) / (MaxScore - MinScore)
}

// Describe bundles the clamped value, tier and progress
func Describe(s float64) Score {
	return Score{
		Value:    Normalize(s),
		Tier:     TierOf(s),
		Progress: Progress(s),
	}
}

// Breakdown derives the per-aspect gauges shown on a mechanic profile
func Breakdown(s float64) []Metric {
	return []Metric{
		{Label: "Quality", Score: Describe(s)},
		{Label: "Reliability", Score: Describe(s - 0.3)},
		{Label: "Communication", Score: Describe(s + 0.2)},
		{Label: "Value", Score: Describe(s - 0.1)},
	}
}

// FromRatings converts the sum and count of 1-5 star ratings into a trust score,
// mapping an average of 1 to 1.0 and 5 to 10.0, rounded to one decimal.
func FromRatings(sum, count int) float64 {
	if count <= 0 {
		return DefaultScore
	}
	avg := float64(sum) / float64(count)
	score := MinScore + (avg-1)*(MaxScore-MinScore)/4
	return math.Round(Normalize(score)*10) / 10
}
