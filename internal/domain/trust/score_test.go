package trust

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

var samples = []float64{
	math.Inf(-1), -100, -1, 0, 0.99, 1, 1.5, 5, 5.99, 6, 7.99, 8, 9.2, 10, 10.01, 42, math.Inf(1), math.NaN(),
}

func TestNormalize_RangeAndIdempotence(t *testing.T) {
	for _, s := range samples {
		n := Normalize(s)
		assert.GreaterOrEqual(t, n, MinScore, "score %v", s)
		assert.LessOrEqual(t, n, MaxScore, "score %v", s)
		assert.Equal(t, n, Normalize(n), "idempotent for %v", s)
	}
	assert.Equal(t, 8.5, Normalize(8.5))
	assert.Equal(t, 10.0, Normalize(11))
	assert.Equal(t, 1.0, Normalize(-3))
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0.0, Progress(1))
	assert.Equal(t, 1.0, Progress(10))
	assert.InDelta(t, 0.5, Progress(5.5), 1e-9)
	assert.Equal(t, 0.0, Progress(-7))
	assert.Equal(t, 1.0, Progress(99))

	prev := -1.0
	for s := -2.0; s <= 12; s += 0.25 {
		p := Progress(s)
		assert.GreaterOrEqual(t, p, prev, "monotonic at %v", s)
		prev = p
	}
}

func TestTierOf(t *testing.T) {
	tests := []struct {
		score float64
		want  Tier
	}{
		{10, TierHigh},
		{8.0, TierHigh},
		{7.99, TierMedium},
		{6.0, TierMedium},
		{5.99, TierLow},
		{1, TierLow},
		{-4, TierLow},
		{15, TierHigh},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierOf(tt.score), "score %v", tt.score)
	}
}

func TestDescribe(t *testing.T) {
	got := Describe(12)
	assert.Equal(t, Score{Value: 10, Tier: TierHigh, Progress: 1}, got)
}

func TestBreakdown(t *testing.T) {
	b := Breakdown(9.9)
	if assert.Len(t, b, 4) {
		assert.Equal(t, "Quality", b[0].Label)
		assert.InDelta(t, 9.6, b[1].Score.Value, 1e-9)
		assert.Equal(t, 10.0, b[2].Score.Value, "communication is clamped")
		assert.InDelta(t, 9.8, b[3].Score.Value, 1e-9)
	}
}

func TestFromRatings(t *testing.T) {
	assert.Equal(t, DefaultScore, FromRatings(0, 0))
	assert.Equal(t, 10.0, FromRatings(15, 3))
	assert.Equal(t, 1.0, FromRatings(2, 2))
	assert.Equal(t, 5.5, FromRatings(3, 1))
	// avg 4.5 -> 1 + 3.5*2.25 = 8.875 -> 8.9
	assert.Equal(t, 8.9, FromRatings(9, 2))
}
