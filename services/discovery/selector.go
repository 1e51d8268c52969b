package discovery

import (
	"errors"
	"time"
)

// ErrEmptyTable indicates a selection was attempted against an empty
// descriptor table. Static tables are validated at startup, so hitting
// this at runtime is a configuration bug.
var ErrEmptyTable = errors.New("discovery: empty descriptor table")

// ErrUnknownMood indicates a mood identifier outside the static mood table.
var ErrUnknownMood = errors.New("discovery: unknown mood")

// DayIndex returns the zero-based day-of-year ordinal for the local
// calendar date. The cycle resets every January 1st.
func DayIndex(day time.Time) int {
	return day.YearDay() - 1
}

// SelectForDay picks the descriptor shown on the given calendar day.
// Distinct per-family offsets keep families rotating out of phase while
// sharing the same day counter. Pure and deterministic: identical inputs
// always yield the same descriptor.
func SelectForDay(day time.Time, table []Descriptor, offset int) (Descriptor, error) {
	if len(table) == 0 {
		return Descriptor{}, ErrEmptyTable
	}
	idx := (DayIndex(day) + offset) % len(table)
	return table[idx], nil
}

// MoodSeed folds a hash of the mood identifier into the day counter so
// each mood rotates on its own schedule without a per-mood offset table.
func MoodSeed(day time.Time, moodID string) int {
	sum := 0
	for _, r := range moodID {
		sum += int(r)
	}
	return DayIndex(day) + sum
}

// SelectMoodForDay picks the candidate slot for a mood on the given day.
func SelectMoodForDay(day time.Time, moodID string, tableLen int) (int, error) {
	if tableLen <= 0 {
		return 0, ErrEmptyTable
	}
	return MoodSeed(day, moodID) % tableLen, nil
}
