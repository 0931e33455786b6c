package entity

// Feed accumulates the mutations of one collection for one consumer and
// coalesces them per entity: an entity added and then removed before a drain
// never shows up, and an entity removed and added back shows up as changed.
type Feed struct {
	collection *Collection
	detached   bool

	added   map[ID]*Entity
	changed map[ID]*Entity
	removed map[ID]*Entity
}

func newFeed(c *Collection) *Feed {
	f := &Feed{collection: c}
	f.reset()
	return f
}

// Drain returns the accumulated batch, each list ordered by id, and empties
// the feed.
func (f *Feed) Drain() ChangeSet {
	f.collection.mu.Lock()
	defer f.collection.mu.Unlock()

	cs := ChangeSet{
		Added:   values(f.added),
		Changed: values(f.changed),
		Removed: values(f.removed),
	}
	f.reset()
	return cs
}

// Pending reports whether a Drain would return a non-empty batch.
func (f *Feed) Pending() bool {
	f.collection.mu.Lock()
	defer f.collection.mu.Unlock()
	return len(f.added)+len(f.changed)+len(f.removed) > 0
}

func (f *Feed) Detached() bool {
	f.collection.mu.Lock()
	defer f.collection.mu.Unlock()
	return f.detached
}

func (f *Feed) reset() {
	f.added = make(map[ID]*Entity)
	f.changed = make(map[ID]*Entity)
	f.removed = make(map[ID]*Entity)
}

func (f *Feed) recordAdd(e *Entity) {
	if _, wasRemoved := f.removed[e.id]; wasRemoved {
		delete(f.removed, e.id)
		f.changed[e.id] = e
		return
	}
	f.added[e.id] = e
}

func (f *Feed) recordChange(e *Entity) {
	if _, isNew := f.added[e.id]; isNew {
		return
	}
	f.changed[e.id] = e
}

func (f *Feed) recordRemove(e *Entity) {
	if _, isNew := f.added[e.id]; isNew {
		delete(f.added, e.id)
		return
	}
	delete(f.changed, e.id)
	f.removed[e.id] = e
}

func values(m map[ID]*Entity) []*Entity {
	if len(m) == 0 {
		return nil
	}
	out := make([]*Entity, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}
	sortByID(out)
	return out
}
