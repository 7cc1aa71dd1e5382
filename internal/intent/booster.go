package intent

import "sort"

// TimeBucket is a coarse time-of-day bucket used for context boosting.
type TimeBucket string

const (
	BucketMorning   TimeBucket = "morning"
	BucketAfternoon TimeBucket = "afternoon"
	BucketEvening   TimeBucket = "evening"
	BucketNight     TimeBucket = "night"
)

// BucketForHour maps an hour of day (0-23) to its bucket.
func BucketForHour(hour int) TimeBucket {
	switch {
	case hour >= 5 && hour < 12:
		return BucketMorning
	case hour >= 12 && hour < 17:
		return BucketAfternoon
	case hour >= 17 && hour < 21:
		return BucketEvening
	default:
		return BucketNight
	}
}

// Snapshot is the slice of session context the booster reads. Copied out of
// the coordinator so the booster stays a pure function.
type Snapshot struct {
	LastIntent string
	TimeBucket TimeBucket
}

// Intents favored per time bucket. Afternoon deliberately boosts nothing.
var timeBoosts = map[TimeBucket][]string{
	BucketMorning: {"news_update", "productivity"},
	BucketEvening: {"entertainment", "find_video"},
	BucketNight:   {"entertainment", "play_music"},
}

const (
	lastIntentBoost = 0.1
	timeBucketBoost = 0.05
)

// Boost applies context-based confidence adjustments and re-ranks.
// Both rules are independent and additive, each capped at 1.0; boosting is
// monotonic (confidence never decreases). The input slice is not mutated -
// adjustments happen on copies - but callers must not rely on the input
// ordering afterwards.
func Boost(matches []Match, snap Snapshot) []Match {
	if len(matches) == 0 {
		return nil
	}

	boosted := make([]Match, len(matches))
	copy(boosted, matches)

	for i := range boosted {
		if snap.LastIntent != "" && boosted[i].Intent == snap.LastIntent {
			boosted[i].Confidence = capped(boosted[i].Confidence + lastIntentBoost)
		}
		for _, favored := range timeBoosts[snap.TimeBucket] {
			if boosted[i].Intent == favored {
				boosted[i].Confidence = capped(boosted[i].Confidence + timeBucketBoost)
				break
			}
		}
	}

	// The re-sort may change the winning intent relative to the raw ranking;
	// that reordering is the point of context boosting.
	sort.SliceStable(boosted, func(i, j int) bool {
		return boosted[i].Confidence > boosted[j].Confidence
	})
	return boosted
}

func capped(v float64) float64 {
	if v > 1.0 {
		return 1.0
	}
	return v
}
