// Package match holds the entity model, the shared roster, and the
// eligibility gate that decides whether a pair may pulse or nudge.
package match

import (
	"errors"
	"fmt"
	"time"

	"github.com/talgya/spazz-core/internal/geo"
)

// EntityID is a unique identifier, stable across ticks.
type EntityID uint64

// Kind separates human-controlled entities from simulated wanderers.
type Kind uint8

const (
	KindPlayer   Kind = 0
	KindWanderer Kind = 1
)

// InterestEveryone is the wildcard interest: open to all genders.
const InterestEveryone = "everyone"

// Preference gates full-pulse matching between two players. Irrelevant for
// wanderers.
type Preference struct {
	AgeMin    uint16   `json:"age_min"`
	AgeMax    uint16   `json:"age_max"`
	Interests []string `json:"interests"` // gender labels, or the wildcard
}

// AcceptsAge reports whether an age falls inside the preferred range.
func (p Preference) AcceptsAge(age uint16) bool {
	return age >= p.AgeMin && age <= p.AgeMax
}

// AcceptsGender reports whether a gender is in the interest set. The
// wildcard accepts anything.
func (p Preference) AcceptsGender(gender string) bool {
	for _, in := range p.Interests {
		if in == InterestEveryone || in == gender {
			return true
		}
	}
	return false
}

// Entity is a positioned actor: a player on (or off) the clock, or a
// simulated wanderer driven by the presence simulator.
type Entity struct {
	ID   EntityID `json:"id"`
	Name string   `json:"name"`
	Kind Kind     `json:"kind"`

	Position geo.LatLon `json:"position"`

	// OnDuty is the "on the clock" toggle. Off-duty players get nudges
	// instead of full pulses. Wanderers are spawned on-duty and stay there.
	OnDuty bool `json:"on_duty"`

	Age    uint16     `json:"age"`
	Gender string     `json:"gender"`
	Pref   Preference `json:"pref"`

	// Social state. Blocked is declared by this entity against others;
	// Likes records one-way interest, full pulses need reciprocity.
	Blocked map[EntityID]struct{} `json:"-"`
	Likes   map[EntityID]struct{} `json:"-"`

	// LastNudge rate-limits off-duty nudges. Zero means never nudged.
	LastNudge time.Time `json:"last_nudge"`

	// Daily like budget bookkeeping. Premium holders are exempt.
	BudgetUsed  int       `json:"budget_used"`
	BudgetStamp time.Time `json:"budget_stamp"` // day the counter belongs to
	Premium     bool      `json:"premium"`

	// Rizz-token balance, spendable in the boost store. Never negative.
	Credits uint64 `json:"credits"`

	CreatedAt time.Time `json:"created_at"`
}

var (
	// ErrUnknownEntity is returned for lookups of ids the roster never issued.
	ErrUnknownEntity = errors.New("match: unknown entity")

	errMissingName = errors.New("match: entity name required")
	errBadAgeRange = errors.New("match: age range min exceeds max")
)

// NewPlayer builds a player entity with validated required fields and
// defaulted social state. Positions are validated at construction, not at
// first use.
func NewPlayer(name string, pos geo.LatLon, age uint16, gender string, pref Preference, now time.Time) (*Entity, error) {
	if name == "" {
		return nil, errMissingName
	}
	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("player %s: %w", name, err)
	}
	if pref.AgeMax != 0 && pref.AgeMin > pref.AgeMax {
		return nil, errBadAgeRange
	}
	if pref.AgeMax == 0 {
		pref.AgeMin, pref.AgeMax = 18, 99
	}
	if len(pref.Interests) == 0 {
		pref.Interests = []string{InterestEveryone}
	}
	return &Entity{
		Name:      name,
		Kind:      KindPlayer,
		Position:  pos,
		Age:       age,
		Gender:    gender,
		Pref:      pref,
		Blocked:   make(map[EntityID]struct{}),
		Likes:     make(map[EntityID]struct{}),
		CreatedAt: now,
	}, nil
}

// NewWanderer builds a simulated entity. Preference and duty fields never
// gate wanderers, so only name and position matter.
func NewWanderer(name string, pos geo.LatLon, now time.Time) (*Entity, error) {
	if err := pos.Validate(); err != nil {
		return nil, fmt.Errorf("wanderer %s: %w", name, err)
	}
	return &Entity{
		Name:      name,
		Kind:      KindWanderer,
		Position:  pos,
		OnDuty:    true,
		Blocked:   make(map[EntityID]struct{}),
		Likes:     make(map[EntityID]struct{}),
		CreatedAt: now,
	}, nil
}

// HasLiked reports one-way interest in another entity.
func (e *Entity) HasLiked(other EntityID) bool {
	_, ok := e.Likes[other]
	return ok
}

// HasBlocked reports whether this entity blocked another.
func (e *Entity) HasBlocked(other EntityID) bool {
	_, ok := e.Blocked[other]
	return ok
}

// BudgetExhausted reports whether the daily like budget is spent. The counter
// belongs to a calendar day; a stamp from an earlier day means a fresh budget.
// Premium holders are never exhausted.
func (e *Entity) BudgetExhausted(limit int, now time.Time) bool {
	if e.Premium {
		return false
	}
	if !sameDay(e.BudgetStamp, now) {
		return false
	}
	return e.BudgetUsed >= limit
}

// SpendBudget counts one action against today's budget, resetting the counter
// on day rollover. Callers hold the roster lock.
func (e *Entity) SpendBudget(now time.Time) {
	if !sameDay(e.BudgetStamp, now) {
		e.BudgetUsed = 0
		e.BudgetStamp = now
	}
	e.BudgetUsed++
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.UTC().Date()
	by, bm, bd := b.UTC().Date()
	return ay == by && am == bm && ad == bd
}

// Clone deep-copies the entity, including its social sets, so gate
// evaluations read a frozen snapshot.
func (e *Entity) Clone() Entity {
	cp := *e
	cp.Blocked = make(map[EntityID]struct{}, len(e.Blocked))
	for id := range e.Blocked {
		cp.Blocked[id] = struct{}{}
	}
	cp.Likes = make(map[EntityID]struct{}, len(e.Likes))
	for id := range e.Likes {
		cp.Likes[id] = struct{}{}
	}
	cp.Pref.Interests = append([]string(nil), e.Pref.Interests...)
	return cp
}
