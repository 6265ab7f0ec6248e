package recurrence

import (
	"errors"
	"math"
	"time"

	"wartungsmanager/internal/domain"
)

// ErrNoBaseDate is returned when there is no date to advance from.
var ErrNoBaseDate = errors.New("recurrence: base date is not set")

// ErrInvalidInterval is returned for non-positive intervals or units.
var ErrInvalidInterval = errors.New("recurrence: interval and unit must be positive")

// ErrIntervalTooLong is returned when interval*unit exceeds what a time.Duration holds.
var ErrIntervalTooLong = errors.New("recurrence: interval exceeds the supported range")

// maxStepSeconds is the longest step, in seconds, a time.Duration can represent.
const maxStepSeconds = float64(math.MaxInt64 / int64(time.Second))

// ValidateInterval checks that interval*unit is a positive step that fits a time.Duration.
func ValidateInterval(interval float64, unit domain.IntervalUnit) error {
	if interval <= 0 || unit <= 0 || math.IsNaN(interval) || math.IsInf(interval, 0) {
		return ErrInvalidInterval
	}
	if interval*float64(unit) > maxStepSeconds {
		return ErrIntervalTooLong
	}
	return nil
}

// NextOccurrence advances date by interval*unit seconds and then moves the
// result forward one UTC calendar day at a time until it is a weekday.
func NextOccurrence(date *time.Time, interval float64, unit domain.IntervalUnit) (time.Time, error) {
	if date == nil {
		return time.Time{}, ErrNoBaseDate
	}
	if err := ValidateInterval(interval, unit); err != nil {
		return time.Time{}, err
	}

	step := time.Duration(interval * float64(unit) * float64(time.Second))
	candidate := date.UTC().Add(step)
	for isWeekend(candidate) {
		candidate = candidate.AddDate(0, 0, 1)
	}
	return candidate, nil
}

// Advance is NextOccurrence for optional fields: a nil date stays nil.
func Advance(date *time.Time, interval float64, unit domain.IntervalUnit) (*time.Time, error) {
	next, err := NextOccurrence(date, interval, unit)
	if errors.Is(err, ErrNoBaseDate) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &next, nil
}

func isWeekend(t time.Time) bool {
	day := t.UTC().Weekday()
	return day == time.Saturday || day == time.Sunday
}
