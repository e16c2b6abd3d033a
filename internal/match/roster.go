package match

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/talgya/spazz-core/internal/economy"
	"github.com/talgya/spazz-core/internal/geo"
)

// Roster is the single shared mutable collection of entities. Every reader
// and writer — request handlers and the presence simulator alike — goes
// through its mutex, and evaluations work on Clone snapshots taken under the
// lock so position and duty state are never torn apart mid-read.
type Roster struct {
	mu       sync.Mutex
	entities map[EntityID]*Entity
	nextID   EntityID
}

// NewRoster creates an empty roster issuing ids from 1.
func NewRoster() *Roster {
	return &Roster{
		entities: make(map[EntityID]*Entity),
		nextID:   1,
	}
}

// Add registers an entity and issues it a fresh id.
func (r *Roster) Add(e *Entity) EntityID {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = r.nextID
	r.nextID++
	r.entities[e.ID] = e
	return e.ID
}

// Get returns a deep copy of an entity.
func (r *Roster) Get(id EntityID) (Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entities[id]
	if !ok {
		return Entity{}, fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	return e.Clone(), nil
}

// Pair returns frozen copies of two entities under one lock acquisition,
// so an evaluation sees a consistent snapshot of both.
func (r *Roster) Pair(a, b EntityID) (Entity, Entity, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ea, ok := r.entities[a]
	if !ok {
		return Entity{}, Entity{}, fmt.Errorf("%w: %d", ErrUnknownEntity, a)
	}
	eb, ok := r.entities[b]
	if !ok {
		return Entity{}, Entity{}, fmt.Errorf("%w: %d", ErrUnknownEntity, b)
	}
	return ea.Clone(), eb.Clone(), nil
}

// Move updates an entity's position after validating it.
func (r *Roster) Move(id EntityID, pos geo.LatLon) error {
	if err := pos.Validate(); err != nil {
		return err
	}
	return r.update(id, func(e *Entity) { e.Position = pos })
}

// SetDuty toggles the on-the-clock state.
func (r *Roster) SetDuty(id EntityID, onDuty bool) error {
	return r.update(id, func(e *Entity) { e.OnDuty = onDuty })
}

// Like records one-way interest. Budget accounting happens at dispatch
// commit time, not here, so a like that never fires costs nothing.
func (r *Roster) Like(from, to EntityID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	src, ok := r.entities[from]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, from)
	}
	if _, ok := r.entities[to]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, to)
	}
	src.Likes[to] = struct{}{}
	return nil
}

// Block records a block declared by from against to.
func (r *Roster) Block(from, to EntityID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	src, ok := r.entities[from]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, from)
	}
	if _, ok := r.entities[to]; !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, to)
	}
	src.Blocked[to] = struct{}{}
	return nil
}

// RecordNudge stamps the cooldown clock. Called only after a confirmed
// delivery, never speculatively.
func (r *Roster) RecordNudge(id EntityID, now time.Time) error {
	return r.update(id, func(e *Entity) { e.LastNudge = now })
}

// SpendBudget counts a dispatched like-action against the sender's day.
func (r *Roster) SpendBudget(id EntityID, now time.Time) error {
	return r.update(id, func(e *Entity) { e.SpendBudget(now) })
}

// GrantCredits adds rizz tokens to an entity's balance.
func (r *Roster) GrantCredits(id EntityID, amount uint64) error {
	return r.update(id, func(e *Entity) { e.Credits = economy.Grant(e.Credits, amount) })
}

// SpendCredits deducts a purchase, refusing to go negative.
func (r *Roster) SpendCredits(id EntityID, cost uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entities[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	next, err := economy.Spend(e.Credits, cost)
	if err != nil {
		return err
	}
	e.Credits = next
	return nil
}

// SetPremium toggles the premium flag, which exempts the daily budget.
func (r *Roster) SetPremium(id EntityID, premium bool) error {
	return r.update(id, func(e *Entity) { e.Premium = premium })
}

// WandererCount returns how many simulated entities are registered.
func (r *Roster) WandererCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, e := range r.entities {
		if e.Kind == KindWanderer {
			n++
		}
	}
	return n
}

// Wanderers returns ids of all simulated entities, sorted for deterministic
// iteration.
func (r *Roster) Wanderers() []EntityID {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]EntityID, 0)
	for id, e := range r.entities {
		if e.Kind == KindWanderer {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Snapshot exports deep copies of every entity, sorted by id. This is the
// load/save boundary: the storage collaborator gets a complete list and owes
// back a complete list, nothing about its encoding leaks in here.
func (r *Roster) Snapshot() []Entity {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Entity, 0, len(r.entities))
	for _, e := range r.entities {
		out = append(out, e.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Restore replaces the roster contents from a stored snapshot and advances
// the id counter past the highest restored id.
func (r *Roster) Restore(entities []Entity) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entities = make(map[EntityID]*Entity, len(entities))
	var maxID EntityID
	for i := range entities {
		e := entities[i].Clone()
		r.entities[e.ID] = &e
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	r.nextID = maxID + 1
}

// Len returns the total entity count.
func (r *Roster) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entities)
}

func (r *Roster) update(id EntityID, fn func(*Entity)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entities[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownEntity, id)
	}
	fn(e)
	return nil
}
