package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// StorageKey is the key the whole state is persisted under.
const StorageKey = "attendance-storage"

// DefaultTargetPercentage is used until the user picks a different default.
const DefaultTargetPercentage = 75

// ErrKeyNotFound is returned (possibly wrapped) by a Storage when a key has never been set.
var ErrKeyNotFound = errors.New("key not found")

// Storage is the durable key-value backend the store writes through to.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
}

// Store holds the attendance state in memory and persists it after every mutation.
//
// Operations that reference a register, card or marking that does not exist leave the
// state untouched and report nothing. A Store is meant to be owned by a single goroutine
// (the UI loop); persistence happens in the background.
type Store struct {
	state         State
	key           string
	policy        CardIDPolicy
	defaultTarget int
	now           func() time.Time
	logger        zerolog.Logger
	writer        *writer
}

// Open rehydrates a store from storage. A missing key yields an empty state.
func Open(ctx context.Context, storage Storage, opts ...Option) (*Store, error) {
	s := &Store{
		key:           StorageKey,
		policy:        PositionalIDs,
		defaultTarget: DefaultTargetPercentage,
		now:           time.Now,
		logger:        log.Logger,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.state = State{
		Registers:               map[int]*Register{},
		DefaultTargetPercentage: s.defaultTarget,
	}

	blob, err := storage.Get(ctx, s.key)

	switch {
	case errors.Is(err, ErrKeyNotFound):
		s.logger.Info().Str("key", s.key).Msg("no persisted state, starting empty")
	case err != nil:
		return nil, fmt.Errorf("error loading state from %s: %w", s.key, err)
	default:
		if err := json.Unmarshal(blob, &s.state); err != nil {
			return nil, fmt.Errorf("error decoding state from %s: %w", s.key, err)
		}

		if s.state.Registers == nil {
			s.state.Registers = map[int]*Register{}
		}

		s.logger.Info().Str("key", s.key).Int("registers", len(s.state.Registers)).Msg("loaded persisted state")
	}

	s.writer = newWriter(storage, s.key, s.logger)

	return s, nil
}

// Flush waits for pending writes to reach the storage.
func (s *Store) Flush(ctx context.Context) error {
	return s.writer.flush(ctx)
}

// Close flushes pending writes.
func (s *Store) Close(ctx context.Context) error {
	if err := s.Flush(ctx); err != nil {
		return fmt.Errorf("error flushing state: %w", err)
	}

	return nil
}

// commit stamps the state and hands a serialized copy to the writer.
func (s *Store) commit(op string) {
	now := s.now()
	s.state.UpdatedAt = &now

	blob, err := json.Marshal(s.state)
	if err != nil {
		s.logger.Error().Err(err).Str("op", op).Msg("error encoding state")

		return
	}

	s.logger.Debug().Str("op", op).Msg("state changed")
	s.writer.enqueue(blob)
}

func (s *Store) register(registerID int) *Register {
	return s.state.Registers[registerID]
}

func (s *Store) card(registerID, cardID int) *Card {
	reg := s.register(registerID)
	if reg == nil {
		return nil
	}

	if i := reg.cardIndex(cardID); i >= 0 {
		return &reg.Cards[i]
	}

	return nil
}

// AddRegister creates an empty register. An existing register with the same id is replaced.
func (s *Store) AddRegister(registerID int, name string) {
	s.state.Registers[registerID] = &Register{
		Name:     name,
		Cards:    []Card{},
		CardSize: CardSizeNormal,
	}

	s.commit("add register")
}

// RenameRegister changes a register's name.
func (s *Store) RenameRegister(registerID int, name string) {
	reg := s.register(registerID)
	if reg == nil {
		return
	}

	reg.Name = name

	s.commit("rename register")
}

// RemoveRegister deletes a register. Removing the active register makes register 0 active,
// whether or not it exists.
func (s *Store) RemoveRegister(registerID int) {
	if s.register(registerID) == nil {
		return
	}

	delete(s.state.Registers, registerID)

	if s.state.ActiveRegister == registerID {
		s.state.ActiveRegister = 0
	}

	s.commit("remove register")
}

// SetActiveRegister points the UI at registerID.
func (s *Store) SetActiveRegister(registerID int) {
	s.state.ActiveRegister = registerID

	s.commit("set active register")
}

// ChangeCopyRegister sets the register CopyCards copies from.
func (s *Store) ChangeCopyRegister(registerID int) {
	s.state.CopyRegister = registerID

	s.commit("change copy register")
}

// SetDefaultTargetPercentage sets the target new cards start with.
func (s *Store) SetDefaultTargetPercentage(target int) {
	s.state.DefaultTargetPercentage = target

	s.commit("set default target")
}

// SetRegisterCardSize sets a register's display density.
func (s *Store) SetRegisterCardSize(registerID int, size CardSize) {
	reg := s.register(registerID)
	if reg == nil {
		return
	}

	reg.CardSize = size

	s.commit("set card size")
}

// AddCard appends a copy of card to the register. The caller picks the id, usually
// via NextCardID.
func (s *Store) AddCard(registerID int, card Card) {
	reg := s.register(registerID)
	if reg == nil {
		return
	}

	reg.Cards = append(reg.Cards, card.clone())
	s.reserve(reg, card.ID)

	s.commit("add card")
}

// EditCard replaces the card matching cardID with card. The replacement keeps cardID and
// its markings are renumbered 1..N.
func (s *Store) EditCard(registerID int, card Card, cardID int) {
	reg := s.register(registerID)
	if reg == nil {
		return
	}

	i := reg.cardIndex(cardID)
	if i < 0 {
		return
	}

	edited := card.clone()
	edited.ID = cardID

	for j := range edited.Markings {
		edited.Markings[j].ID = j + 1
	}

	reg.Cards[i] = edited

	s.commit("edit card")
}

// RemoveCard deletes a card. Under PositionalIDs every remaining card is renumbered to its
// new index, so ids held by callers may now refer to a different card.
func (s *Store) RemoveCard(registerID, cardID int) {
	reg := s.register(registerID)
	if reg == nil {
		return
	}

	i := reg.cardIndex(cardID)
	if i < 0 {
		return
	}

	reg.Cards = append(reg.Cards[:i], reg.Cards[i+1:]...)

	if s.policy == PositionalIDs {
		for j := range reg.Cards {
			reg.Cards[j].ID = j
		}
	}

	s.commit("remove card")
}

// NextCardID returns the id the next card added to the register should carry.
func (s *Store) NextCardID(registerID int) int {
	reg := s.register(registerID)
	if reg == nil {
		return 0
	}

	return nextCardID(reg, s.policy)
}

func nextCardID(reg *Register, policy CardIDPolicy) int {
	if policy == PositionalIDs {
		return len(reg.Cards)
	}

	next := reg.NextCardID
	for _, card := range reg.Cards {
		if card.ID >= next {
			next = card.ID + 1
		}
	}

	return next
}

// reserve records that id is taken so StableIDs never reuses it.
func (s *Store) reserve(reg *Register, id int) {
	if s.policy == StableIDs && id >= reg.NextCardID {
		reg.NextCardID = id + 1
	}
}

// NextRegisterID returns one more than the highest register id, or 0 for an empty store.
func (s *Store) NextRegisterID() int {
	next := 0
	for id := range s.state.Registers {
		if id >= next {
			next = id + 1
		}
	}

	return next
}

// CopyCards appends every card of the copy register to registerID with attendance reset.
func (s *Store) CopyCards(registerID int) {
	from := s.register(s.state.CopyRegister)
	to := s.register(registerID)

	if from == nil || to == nil || s.state.CopyRegister == registerID {
		return
	}

	for _, card := range from.Cards {
		c := card.clone()
		c.ID = nextCardID(to, s.policy)
		c.Present = 0
		c.Total = 0
		c.Markings = []Marking{}

		to.Cards = append(to.Cards, c)
		s.reserve(to, c.ID)
	}

	s.commit("copy cards")
}

// MarkPresent records an attendance for now.
func (s *Store) MarkPresent(registerID, cardID int) {
	s.mark(registerID, cardID, s.now(), true)
}

// MarkAbsent records an absence for now.
func (s *Store) MarkAbsent(registerID, cardID int) {
	s.mark(registerID, cardID, s.now(), false)
}

// MarkPresentWithDate records an attendance at the given date.
func (s *Store) MarkPresentWithDate(date time.Time, cardID, registerID int) {
	s.mark(registerID, cardID, date, true)
}

// MarkAbsentWithDate records an absence at the given date.
func (s *Store) MarkAbsentWithDate(date time.Time, cardID, registerID int) {
	s.mark(registerID, cardID, date, false)
}

func (s *Store) mark(registerID, cardID int, date time.Time, present bool) {
	card := s.card(registerID, cardID)
	if card == nil {
		return
	}

	card.Markings = append(card.Markings, Marking{
		ID:        len(card.Markings) + 1,
		Date:      date,
		IsPresent: present,
	})

	card.Total++
	if present {
		card.Present++
	}

	s.logger.Debug().
		Int("register", registerID).
		Int("card", cardID).
		Bool("present", present).
		Time("date", date).
		Msg("marked attendance")

	s.commit("mark")
}

// RemoveMarking deletes the marking with the given id and renumbers the rest.
func (s *Store) RemoveMarking(registerID, cardID, markingID int) {
	card := s.card(registerID, cardID)
	if card == nil {
		return
	}

	for i, m := range card.Markings {
		if m.ID == markingID {
			card.drop(i)
			s.commit("remove marking")

			return
		}
	}
}

// UndoChanges removes the most recent marking of a card.
func (s *Store) UndoChanges(registerID, cardID int) {
	card := s.card(registerID, cardID)
	if card == nil || len(card.Markings) == 0 {
		return
	}

	card.drop(len(card.Markings) - 1)

	s.commit("undo")
}

// ClearCardsAttendance resets every card of the register to no attendance, log included.
func (s *Store) ClearCardsAttendance(registerID int) {
	reg := s.register(registerID)
	if reg == nil {
		return
	}

	for i := range reg.Cards {
		reg.Cards[i].Present = 0
		reg.Cards[i].Total = 0
		reg.Cards[i].Markings = []Marking{}
	}

	s.commit("clear attendance")
}

// Snapshot returns a deep copy of the whole state.
func (s *Store) Snapshot() State {
	return s.state.clone()
}

// Register returns a copy of the register with the given id.
func (s *Store) Register(registerID int) (Register, bool) {
	reg := s.register(registerID)
	if reg == nil {
		return Register{}, false
	}

	return reg.clone(), true
}

// Card returns a copy of a single card.
func (s *Store) Card(registerID, cardID int) (Card, bool) {
	card := s.card(registerID, cardID)
	if card == nil {
		return Card{}, false
	}

	return card.clone(), true
}

// RegisterIDs returns the ids of all registers in ascending order.
func (s *Store) RegisterIDs() []int {
	ids := make([]int, 0, len(s.state.Registers))
	for id := range s.state.Registers {
		ids = append(ids, id)
	}

	sort.Ints(ids)

	return ids
}

// ActiveRegister returns the id of the register currently viewed.
func (s *Store) ActiveRegister() int {
	return s.state.ActiveRegister
}

// CopyRegister returns the id of the register cards are copied from.
func (s *Store) CopyRegister() int {
	return s.state.CopyRegister
}

// DefaultTarget returns the target percentage new cards start with.
func (s *Store) DefaultTarget() int {
	return s.state.DefaultTargetPercentage
}

// UpdatedAt returns when the state last changed, or nil if it never did.
func (s *Store) UpdatedAt() *time.Time {
	if s.state.UpdatedAt == nil {
		return nil
	}

	t := *s.state.UpdatedAt

	return &t
}
