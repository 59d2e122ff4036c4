package ledger

import "time"

// CardSize controls how densely a register's cards are displayed.
type CardSize string

// These constants refer to the card sizes supported by the app.
const (
	CardSizeSmall  CardSize = "small"
	CardSizeNormal CardSize = "normal"
	CardSizeMini   CardSize = "mini"
)

// Weekday keys a card's schedule.
type Weekday string

// These constants refer to the 7 fixed schedule keys.
const (
	Monday    Weekday = "mon"
	Tuesday   Weekday = "tue"
	Wednesday Weekday = "wed"
	Thursday  Weekday = "thu"
	Friday    Weekday = "fri"
	Saturday  Weekday = "sat"
	Sunday    Weekday = "sun"
)

// MaxSlotsPerDay is the most time slots a card may hold for a single weekday.
const MaxSlotsPerDay = 3

// Weekdays returns the schedule keys in calendar order, starting on Monday.
func Weekdays() []Weekday {
	return []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday, Saturday, Sunday}
}

// TimeSlot is one scheduled class. It is display-only and has no effect on attendance.
type TimeSlot struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Room  string `json:"roomNumber,omitempty"`
}

// Schedule maps every weekday to its ordered time slots.
type Schedule map[Weekday][]TimeSlot

// NewSchedule returns a schedule with all 7 weekdays present and no slots.
func NewSchedule() Schedule {
	s := Schedule{}
	for _, day := range Weekdays() {
		s[day] = []TimeSlot{}
	}

	return s
}

// AddSlot appends a slot to the given day. It reports false, leaving the schedule
// unchanged, when the day is unknown or already holds MaxSlotsPerDay slots.
func (s Schedule) AddSlot(day Weekday, slot TimeSlot) bool {
	slots, ok := s[day]
	if !ok || len(slots) >= MaxSlotsPerDay {
		return false
	}

	s[day] = append(slots, slot)

	return true
}

func (s Schedule) clone() Schedule {
	if s == nil {
		return nil
	}

	out := make(Schedule, len(s))
	for day, slots := range s {
		if slots == nil {
			out[day] = nil

			continue
		}

		out[day] = append([]TimeSlot{}, slots...)
	}

	return out
}

// Marking is a single attendance entry in a card's log.
// IDs run 1..N with no gaps and are renumbered after every removal.
type Marking struct {
	ID        int       `json:"id"`
	Date      time.Time `json:"date"`
	IsPresent bool      `json:"isPresent"`
}

// Card is one trackable subject within a register.
type Card struct {
	ID               int       `json:"id"`
	Title            string    `json:"title"`
	Present          int       `json:"present"`
	Total            int       `json:"total"`
	TargetPercentage int       `json:"target_percentage"`
	TagColor         string    `json:"tagColor"`
	Days             Schedule  `json:"days"`
	Markings         []Marking `json:"markedAt"`
}

// NewCard returns a card with zero attendance and an empty schedule.
func NewCard(id int, title string, targetPercentage int, tagColor string) Card {
	return Card{
		ID:               id,
		Title:            title,
		TargetPercentage: targetPercentage,
		TagColor:         tagColor,
		Days:             NewSchedule(),
		Markings:         []Marking{},
	}
}

// Percentage returns the card's attendance percentage, rounded to one decimal.
func (c Card) Percentage() float64 {
	return Percentage(c.Present, c.Total)
}

// Standing classifies the card's percentage against its own target.
func (c Card) Standing() Standing {
	return Classify(c.Percentage(), c.TargetPercentage)
}

func (c Card) clone() Card {
	out := c
	out.Days = c.Days.clone()

	if c.Markings != nil {
		out.Markings = append([]Marking{}, c.Markings...)
	}

	return out
}

// drop removes the marking at index i, renumbers the remainder and adjusts the counters.
func (c *Card) drop(i int) {
	removed := c.Markings[i]

	c.Markings = append(c.Markings[:i], c.Markings[i+1:]...)
	for j := range c.Markings {
		c.Markings[j].ID = j + 1
	}

	if c.Total > 0 {
		c.Total--
	}

	if removed.IsPresent && c.Present > 0 {
		c.Present--
	}
}

// Register is a named collection of cards, e.g. a semester.
type Register struct {
	Name     string   `json:"name"`
	Cards    []Card   `json:"cards"`
	CardSize CardSize `json:"card_size"`
	// NextCardID is only maintained under StableIDs so that ids of removed cards are
	// never handed out again.
	NextCardID int `json:"nextCardId,omitempty"`
}

func (r *Register) clone() Register {
	out := *r
	if r.Cards != nil {
		out.Cards = make([]Card, len(r.Cards))
		for i, card := range r.Cards {
			out.Cards[i] = card.clone()
		}
	}

	return out
}

func (r *Register) cardIndex(cardID int) int {
	for i, card := range r.Cards {
		if card.ID == cardID {
			return i
		}
	}

	return -1
}

// State is the whole persisted document.
type State struct {
	Registers               map[int]*Register `json:"registers"`
	ActiveRegister          int               `json:"activeRegister"`
	CopyRegister            int               `json:"copyRegister"`
	DefaultTargetPercentage int               `json:"defaultTargetPercentage"`
	UpdatedAt               *time.Time        `json:"updatedAt"`
}

func (s *State) clone() State {
	out := *s
	out.Registers = make(map[int]*Register, len(s.Registers))

	for id, reg := range s.Registers {
		r := reg.clone()
		out.Registers[id] = &r
	}

	if s.UpdatedAt != nil {
		t := *s.UpdatedAt
		out.UpdatedAt = &t
	}

	return out
}
