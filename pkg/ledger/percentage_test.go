package ledger_test

import (
	"testing"

	"github.com/matt-steen/attendance-tracker/pkg/ledger"
	"github.com/stretchr/testify/assert"
)

func TestPercentage(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	assert.Equal(0.0, ledger.Percentage(0, 0))
	assert.Equal(75.0, ledger.Percentage(15, 20))
	assert.Equal(50.0, ledger.Percentage(10, 20))
	assert.Equal(80.0, ledger.Percentage(16, 20))
	assert.Equal(66.7, ledger.Percentage(2, 3))
	assert.Equal(33.3, ledger.Percentage(1, 3))
	assert.Equal(100.0, ledger.Percentage(7, 7))
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		present, total, target int
		want                   ledger.Standing
	}{
		{15, 20, 75, ledger.Neutral},
		{10, 20, 75, ledger.Deficit},
		{16, 20, 75, ledger.Surplus},
		{0, 0, 75, ledger.Deficit},
		{0, 0, 0, ledger.Neutral},
	}

	for _, tt := range tests {
		got := ledger.Classify(ledger.Percentage(tt.present, tt.total), tt.target)
		assert.Equal(t, tt.want, got, "%d/%d against %d", tt.present, tt.total, tt.target)
	}
}

func TestCardStanding(t *testing.T) {
	t.Parallel()

	card := ledger.NewCard(0, "Maths", 75, "red")
	card.Present = 16
	card.Total = 20

	assert.Equal(t, 80.0, card.Percentage())
	assert.Equal(t, ledger.Surplus, card.Standing())
}

func TestClassesToAttend(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	assert.Equal(0, ledger.ClassesToAttend(15, 20, 75))
	// (10+n)/(20+n) >= 0.75 -> n >= 20
	assert.Equal(20, ledger.ClassesToAttend(10, 20, 75))
	// (2+n)/(3+n) >= 0.8 -> n >= 2
	assert.Equal(2, ledger.ClassesToAttend(2, 3, 80))
	assert.Equal(0, ledger.ClassesToAttend(0, 0, 75))
	assert.Equal(-1, ledger.ClassesToAttend(9, 10, 100))
	assert.Equal(0, ledger.ClassesToAttend(10, 10, 100))
}

func TestClassesCanSkip(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	assert.Equal(0, ledger.ClassesCanSkip(15, 20, 75))
	// 16/(20+n) >= 0.75 -> n <= 1.33
	assert.Equal(1, ledger.ClassesCanSkip(16, 20, 75))
	assert.Equal(0, ledger.ClassesCanSkip(10, 20, 75))
	assert.Equal(-1, ledger.ClassesCanSkip(3, 10, 0))
}

func TestSummarize(t *testing.T) {
	t.Parallel()

	reg := ledger.Register{Name: "r"}

	for _, counts := range [][2]int{{8, 10}, {7, 10}} {
		card := ledger.NewCard(len(reg.Cards), "c", 75, "")
		card.Present = counts[0]
		card.Total = counts[1]
		reg.Cards = append(reg.Cards, card)
	}

	summary := ledger.Summarize(reg, 75)
	assert.Equal(t, 2, summary.Cards)
	assert.Equal(t, 15, summary.Present)
	assert.Equal(t, 20, summary.Total)
	assert.Equal(t, 75.0, summary.Percentage)
	assert.Equal(t, ledger.Neutral, summary.Standing)

	empty := ledger.Summarize(ledger.Register{}, 75)
	assert.Equal(t, 0.0, empty.Percentage)
	assert.Equal(t, ledger.Deficit, empty.Standing)
}

func TestScheduleAddSlot(t *testing.T) {
	t.Parallel()

	assert := assert.New(t)

	schedule := ledger.NewSchedule()
	assert.Len(schedule, 7)

	for i := 0; i < ledger.MaxSlotsPerDay; i++ {
		assert.True(schedule.AddSlot(ledger.Friday, ledger.TimeSlot{Start: "08:00", End: "09:00"}))
	}

	assert.False(schedule.AddSlot(ledger.Friday, ledger.TimeSlot{Start: "10:00", End: "11:00"}))
	assert.Len(schedule[ledger.Friday], ledger.MaxSlotsPerDay)
	assert.False(schedule.AddSlot(ledger.Weekday("funday"), ledger.TimeSlot{}))
}
