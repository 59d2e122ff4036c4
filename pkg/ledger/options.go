package ledger

import (
	"time"

	"github.com/rs/zerolog"
)

// CardIDPolicy decides how card ids are assigned and whether they survive removals.
type CardIDPolicy int

const (
	// PositionalIDs keeps every card's id equal to its index in the register; removing a
	// card renumbers the cards after it.
	PositionalIDs CardIDPolicy = iota
	// StableIDs assigns max(id)+1 on creation and never renumbers.
	StableIDs
)

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for timestamps of markings and updates.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithLogger sets the logger used for mutations and persistence failures.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// WithCardIDPolicy selects how card ids are assigned.
func WithCardIDPolicy(policy CardIDPolicy) Option {
	return func(s *Store) {
		s.policy = policy
	}
}

// WithDefaultTarget sets the default target percentage used when no state was persisted yet.
func WithDefaultTarget(target int) Option {
	return func(s *Store) {
		s.defaultTarget = target
	}
}

// WithStorageKey overrides StorageKey.
func WithStorageKey(key string) Option {
	return func(s *Store) {
		s.key = key
	}
}
