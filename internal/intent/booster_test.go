package intent

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucketForHour(t *testing.T) {
	tests := []struct {
		hour int
		want TimeBucket
	}{
		{0, BucketNight},
		{4, BucketNight},
		{5, BucketMorning},
		{11, BucketMorning},
		{12, BucketAfternoon},
		{16, BucketAfternoon},
		{17, BucketEvening},
		{20, BucketEvening},
		{21, BucketNight},
		{23, BucketNight},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, BucketForHour(tt.hour), "hour %d", tt.hour)
	}
}

func TestBoostLastIntent(t *testing.T) {
	matches := []Match{
		{Intent: "find_video", Confidence: 0.65},
		{Intent: "get_info", Confidence: 0.6},
	}

	boosted := Boost(matches, Snapshot{LastIntent: "get_info", TimeBucket: BucketAfternoon})
	require.Len(t, boosted, 2)
	assert.Equal(t, "get_info", boosted[0].Intent)
	assert.InDelta(t, 0.7, boosted[0].Confidence, 1e-9)
	assert.Equal(t, "find_video", boosted[1].Intent)
	assert.InDelta(t, 0.65, boosted[1].Confidence, 1e-9)
}

func TestBoostTimeBucket(t *testing.T) {
	matches := []Match{
		{Intent: "news_update", Confidence: 0.6},
		{Intent: "shopping", Confidence: 0.6},
	}

	tests := []struct {
		bucket   TimeBucket
		wantTop  string
		wantConf float64
	}{
		{BucketMorning, "news_update", 0.65},
		// Afternoon boosts nothing; the tie keeps input order.
		{BucketAfternoon, "news_update", 0.6},
		{BucketEvening, "news_update", 0.6},
	}
	for _, tt := range tests {
		t.Run(string(tt.bucket), func(t *testing.T) {
			boosted := Boost(matches, Snapshot{TimeBucket: tt.bucket})
			require.Len(t, boosted, 2)
			assert.Equal(t, tt.wantTop, boosted[0].Intent)
			assert.InDelta(t, tt.wantConf, boosted[0].Confidence, 1e-9)
		})
	}
}

func TestBoostStacksAndCaps(t *testing.T) {
	matches := []Match{{Intent: "entertainment", Confidence: 0.95}}

	// Last intent (+0.1) and evening bucket (+0.05) both apply, each capped.
	boosted := Boost(matches, Snapshot{LastIntent: "entertainment", TimeBucket: BucketEvening})
	require.Len(t, boosted, 1)
	assert.Equal(t, 1.0, boosted[0].Confidence)
}

func TestBoostDoesNotMutateInput(t *testing.T) {
	matches := []Match{
		{Intent: "play_music", Confidence: 0.4},
		{Intent: "entertainment", Confidence: 0.4},
	}
	original := []Match{
		{Intent: "play_music", Confidence: 0.4},
		{Intent: "entertainment", Confidence: 0.4},
	}

	_ = Boost(matches, Snapshot{LastIntent: "entertainment", TimeBucket: BucketNight})
	assert.Empty(t, cmp.Diff(original, matches))
}

func TestBoostEmpty(t *testing.T) {
	assert.Nil(t, Boost(nil, Snapshot{}))
	assert.Nil(t, Boost([]Match{}, Snapshot{TimeBucket: BucketMorning}))
}
