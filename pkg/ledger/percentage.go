package ledger

import "math"

// Standing is how an attendance percentage compares to its target.
type Standing string

// These constants refer to the three standings a percentage can have.
const (
	Deficit Standing = "deficit"
	Neutral Standing = "neutral"
	Surplus Standing = "surplus"
)

// Percentage returns present/total as a percentage rounded to one decimal, or 0 when
// nothing has been marked yet.
func Percentage(present, total int) float64 {
	if total == 0 {
		return 0
	}

	return math.Round(float64(present)/float64(total)*1000) / 10
}

// Classify compares a percentage with a target.
func Classify(percentage float64, target int) Standing {
	switch t := float64(target); {
	case percentage < t:
		return Deficit
	case percentage > t:
		return Surplus
	default:
		return Neutral
	}
}

// ClassesToAttend returns how many consecutive classes must be attended for the
// percentage to reach target. It returns -1 when the target can never be reached.
func ClassesToAttend(present, total, target int) int {
	missing := target*total - 100*present
	if missing <= 0 {
		return 0
	}

	gain := 100 - target
	if gain <= 0 {
		return -1
	}

	return (missing + gain - 1) / gain
}

// ClassesCanSkip returns how many consecutive classes can be missed while the percentage
// stays at or above target. It returns -1 when any number can be missed.
func ClassesCanSkip(present, total, target int) int {
	if target <= 0 {
		return -1
	}

	spare := 100*present - target*total
	if spare <= 0 {
		return 0
	}

	return spare / target
}

// Summary aggregates attendance over every card of a register.
type Summary struct {
	Cards      int
	Present    int
	Total      int
	Percentage float64
	Standing   Standing
}

// Summarize totals a register's cards and classifies the result against target.
func Summarize(reg Register, target int) Summary {
	s := Summary{Cards: len(reg.Cards)}

	for _, card := range reg.Cards {
		s.Present += card.Present
		s.Total += card.Total
	}

	s.Percentage = Percentage(s.Present, s.Total)
	s.Standing = Classify(s.Percentage, target)

	return s
}
