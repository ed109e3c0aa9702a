package spaced_repetition

import (
	"math"
	"time"
)

const (
	// PassThreshold is the lowest quality grade counted as a successful recall
	PassThreshold = 3
	// MinEasinessFactor is the hard floor for the SM-2 ease factor
	MinEasinessFactor = 1.3
	// DefaultEasinessFactor is the starting ease for a question never answered before
	DefaultEasinessFactor = 2.5
	// SecondInterval is the interval in days granted after the second successful recall
	SecondInterval = 6
)

// Quality grades in the 0-5 SM-2 scale.
const (
	// Complete blackout, unable to recall
	QualityBlackout = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar = 2
	// Correct response but required significant effort
	QualityCorrectDifficult = 3
	// Correct response after some hesitation
	QualityCorrectHesitation = 4
	// Perfect response with no hesitation
	QualityPerfect = 5
)

// ValidQuality reports whether q is inside the 0-5 grade scale. Callers must
// reject out-of-range grades at the boundary; ComputeSchedule does not clamp.
func ValidQuality(q int) bool {
	return q >= QualityBlackout && q <= QualityPerfect
}

// Schedule is the review state computed for a (user, question) pair
type Schedule struct {
	Interval       int       `json:"interval"`
	Repetition     int       `json:"repetition"`
	EasinessFactor float64   `json:"easiness_factor"`
	NextReview     time.Time `json:"next_review"`
}

// NewSchedule returns the prior state used for a question answered for the first time
func NewSchedule() Schedule {
	return Schedule{EasinessFactor: DefaultEasinessFactor}
}

// ComputeSchedule runs one SM-2 update. quality is the 0-5 recall grade,
// prevInterval/prevRepetition/prevEF are the stored state (zero values plus
// DefaultEasinessFactor for a new question) and now anchors the next review
// date. A grade below PassThreshold restarts the ladder at a one day
// interval; a passing grade climbs 1 day, then 6, then prevInterval times
// the updated ease factor. The ease factor is recomputed on every call,
// floored at MinEasinessFactor and rounded to two decimals.
func ComputeSchedule(quality, prevInterval, prevRepetition int, prevEF float64, now time.Time) Schedule {
	if prevEF < MinEasinessFactor {
		prevEF = MinEasinessFactor
	}

	ef := prevEF + (0.1 - float64(5-quality)*(0.08+float64(5-quality)*0.02))
	if ef < MinEasinessFactor {
		ef = MinEasinessFactor
	}
	ef = math.Round(ef*100) / 100

	s := Schedule{EasinessFactor: ef}

	if quality < PassThreshold {
		// Failed recall restarts the ladder for this item
		s.Repetition = 0
		s.Interval = 1
	} else {
		s.Repetition = prevRepetition + 1
		switch s.Repetition {
		case 1:
			s.Interval = 1
		case 2:
			s.Interval = SecondInterval
		default:
			s.Interval = int(math.Round(float64(prevInterval) * ef))
			if s.Interval < 1 {
				s.Interval = 1
			}
		}
	}

	s.NextReview = now.AddDate(0, 0, s.Interval)
	return s
}
