package entity

import (
	"errors"
	"sort"
	"sync"
)

var (
	ErrNilEntity     = errors.New("entity is nil")
	ErrDuplicateID   = errors.New("entity id already exists")
	ErrNotFound      = errors.New("entity not found")
	ErrFeedNotActive = errors.New("feed is not attached")
)

// ChangeSet is one batch of collection mutations.
type ChangeSet struct {
	Added   []*Entity
	Changed []*Entity
	Removed []*Entity
}

func (c ChangeSet) Empty() bool {
	return len(c.Added) == 0 && len(c.Changed) == 0 && len(c.Removed) == 0
}

// Collection is the live entity set. Mutations are recorded into every
// attached Feed; consumers drain their feed when they are ready, so no
// callback ever runs inside a mutation.
type Collection struct {
	mu       sync.Mutex
	entities map[ID]*Entity
	feeds    map[*Feed]struct{}
}

func NewCollection() *Collection {
	return &Collection{
		entities: make(map[ID]*Entity),
		feeds:    make(map[*Feed]struct{}),
	}
}

func (c *Collection) Add(e *Entity) error {
	if e == nil {
		return ErrNilEntity
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entities[e.id]; exists {
		return ErrDuplicateID
	}
	c.entities[e.id] = e
	for f := range c.feeds {
		f.recordAdd(e)
	}
	return nil
}

// Remove deletes the entity with id and reports whether it existed.
func (c *Collection) Remove(id ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, exists := c.entities[id]
	if !exists {
		return false
	}
	delete(c.entities, id)
	for f := range c.feeds {
		f.recordRemove(e)
	}
	return true
}

// Touch marks an entity as changed after its fields were edited in place.
func (c *Collection) Touch(id ID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, exists := c.entities[id]
	if !exists {
		return false
	}
	for f := range c.feeds {
		f.recordChange(e)
	}
	return true
}

// Update edits the entity with id under the collection lock and marks it
// changed.
func (c *Collection) Update(id ID, fn func(*Entity)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, exists := c.entities[id]
	if !exists {
		return ErrNotFound
	}
	fn(e)
	for f := range c.feeds {
		f.recordChange(e)
	}
	return nil
}

func (c *Collection) Get(id ID) (*Entity, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entities[id]
	return e, ok
}

func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entities)
}

// Entities returns a snapshot of the current members ordered by id.
func (c *Collection) Entities() []*Entity {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]*Entity, 0, len(c.entities))
	for _, e := range c.entities {
		out = append(out, e)
	}
	sortByID(out)
	return out
}

// Attach registers a new feed. It starts empty; current members are not
// replayed into it.
func (c *Collection) Attach() *Feed {
	c.mu.Lock()
	defer c.mu.Unlock()
	f := newFeed(c)
	c.feeds[f] = struct{}{}
	return f
}

// Detach stops recording into f and drops whatever it still holds.
func (c *Collection) Detach(f *Feed) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.feeds[f]; !ok {
		return ErrFeedNotActive
	}
	delete(c.feeds, f)
	f.detached = true
	f.reset()
	return nil
}

func sortByID(list []*Entity) {
	sort.Slice(list, func(i, j int) bool { return list[i].id < list[j].id })
}
