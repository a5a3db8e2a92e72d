package kb

import (
	"errors"
	"fmt"
	"sync"

	"github.com/signalsfoundry/impact-simulator/model"
)

var (
	// ErrDuplicateProfile is returned when a profile ID is already catalogued.
	ErrDuplicateProfile = errors.New("duplicate asteroid profile")
	// ErrReservedProfile is returned for the ID kept for the custom profile.
	ErrReservedProfile = errors.New("reserved asteroid profile id")
)

// EventType indicates what kind of change happened in the catalog.
type EventType int

const (
	EventProfileAdded EventType = iota
	EventEarthOrbitSet
)

// Event is emitted to subscribers when the catalog changes. Profile is set
// for EventProfileAdded, Samples for EventEarthOrbitSet.
type Event struct {
	Type    EventType
	Profile model.AsteroidProfile
	Samples int
}

type subscriber struct {
	id int
	fn func(Event)
}

// Catalog is an in-memory, thread-safe store of asteroid profiles. It keeps
// insertion order so selectors list asteroids the way the document did.
type Catalog struct {
	mu sync.RWMutex

	profiles   map[string]model.AsteroidProfile
	order      []string
	earthOrbit []model.Point

	subs   []subscriber
	nextID int
}

// NewCatalog constructs an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		profiles: make(map[string]model.AsteroidProfile),
	}
}

// AddProfile catalogues p. The ID must be non-empty and unused; the custom
// profile ID is reserved.
func (c *Catalog) AddProfile(p model.AsteroidProfile) error {
	return c.AddProfiles([]model.AsteroidProfile{p})
}

// AddProfiles catalogues ps as one batch: either every profile is added, in
// order, or none is.
func (c *Catalog) AddProfiles(ps []model.AsteroidProfile) error {
	c.mu.Lock()
	batch := make(map[string]struct{}, len(ps))
	for _, p := range ps {
		if err := c.checkIDLocked(p.ID, batch); err != nil {
			c.mu.Unlock()
			return err
		}
		batch[p.ID] = struct{}{}
	}
	for _, p := range ps {
		c.profiles[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	subs := c.snapshotSubs()
	c.mu.Unlock()

	// Notify outside the lock so subscribers may read the catalog.
	for _, p := range ps {
		notify(subs, Event{Type: EventProfileAdded, Profile: p})
	}
	return nil
}

func (c *Catalog) checkIDLocked(id string, batch map[string]struct{}) error {
	if id == "" {
		return fmt.Errorf("asteroid profile with empty id")
	}
	if id == model.CustomProfileID {
		return fmt.Errorf("profile %q: %w", id, ErrReservedProfile)
	}
	if _, exists := c.profiles[id]; exists {
		return fmt.Errorf("profile %q: %w", id, ErrDuplicateProfile)
	}
	if _, exists := batch[id]; exists {
		return fmt.Errorf("profile %q: %w", id, ErrDuplicateProfile)
	}
	return nil
}

// GetProfile returns the profile with the given ID.
func (c *Catalog) GetProfile(id string) (model.AsteroidProfile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	p, ok := c.profiles[id]
	return p, ok
}

// ListProfiles returns a snapshot of all profiles in insertion order.
func (c *Catalog) ListProfiles() []model.AsteroidProfile {
	c.mu.RLock()
	defer c.mu.RUnlock()

	res := make([]model.AsteroidProfile, 0, len(c.order))
	for _, id := range c.order {
		res = append(res, c.profiles[id])
	}
	return res
}

// Len returns the number of catalogued profiles.
func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// SetEarthOrbit stores the planet's sampled orbit.
func (c *Catalog) SetEarthOrbit(points []model.Point) {
	c.mu.Lock()
	c.earthOrbit = append([]model.Point(nil), points...)
	subs := c.snapshotSubs()
	c.mu.Unlock()

	notify(subs, Event{Type: EventEarthOrbitSet, Samples: len(points)})
}

// EarthOrbit returns a copy of the planet's sampled orbit.
func (c *Catalog) EarthOrbit() []model.Point {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Point(nil), c.earthOrbit...)
}

// Subscribe registers a callback for catalog events. It returns an
// unsubscribe function; calling it more than once is harmless.
func (c *Catalog) Subscribe(fn func(Event)) (unsubscribe func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nextID++
	id := c.nextID
	c.subs = append(c.subs, subscriber{id: id, fn: fn})

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		for i, s := range c.subs {
			if s.id == id {
				c.subs = append(c.subs[:i], c.subs[i+1:]...)
				return
			}
		}
	}
}

func (c *Catalog) snapshotSubs() []subscriber {
	return append([]subscriber(nil), c.subs...)
}

func notify(subs []subscriber, ev Event) {
	for _, s := range subs {
		s.fn(ev)
	}
}
