// Package visualizer maps a live entity collection onto proxy primitives. It
// keeps the tracked set in step with collection changes, builds each entity's
// representations on its first visible frame and pushes only the attributes
// that changed since the previous frame.
package visualizer

import (
	"errors"
	"fmt"
	"image/color"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/proxyviz/internal/core/entity"
	"github.com/zeusync/proxyviz/internal/core/events/bus"
	"github.com/zeusync/proxyviz/internal/core/frame"
	"github.com/zeusync/proxyviz/internal/core/geo"
	"github.com/zeusync/proxyviz/internal/core/graphics"
	"github.com/zeusync/proxyviz/internal/core/observability/log"
	"github.com/zeusync/proxyviz/internal/core/property"
	"github.com/zeusync/proxyviz/internal/core/proxy"
)

// Factory builds one representation from its descriptor. init carries the
// entity's resolved appearance at the frame of construction.
type Factory interface {
	Create(owner *entity.Entity, d graphics.Descriptor, init graphics.Appearance) (proxy.Renderable, error)
}

// ChangeSource is the entity collection being visualized.
type ChangeSource interface {
	Entities() []*entity.Entity
	Attach() *entity.Feed
	Detach(f *entity.Feed) error
}

type Viewer interface {
	Position() mgl64.Vec3
}

// Config holds the fallbacks used when a property has no value.
type Config struct {
	DefaultColor color.NRGBA
	DefaultScale float64
}

func DefaultConfig() Config {
	return Config{
		DefaultColor: proxy.White,
		DefaultScale: 1,
	}
}

type Option func(*Visualizer)

// WithEventBus publishes lifecycle events to b.
func WithEventBus(b bus.EventBus) Option {
	return func(v *Visualizer) { v.events = b }
}

// Visualizer is driven from a single render loop; none of its methods may
// run concurrently.
type Visualizer struct {
	cfg     Config
	source  ChangeSource
	feed    *entity.Feed
	factory Factory
	viewer  Viewer
	logger  log.Log
	events  bus.EventBus

	tracked map[entity.ID]*entry
	pending []bus.Event
	stats   Stats

	destroyed bool
}

// New attaches to source and starts tracking every visualizable entity it
// already holds.
func New(cfg Config, source ChangeSource, factory Factory, viewer Viewer, logger log.Log, opts ...Option) (*Visualizer, error) {
	switch {
	case source == nil:
		return nil, ErrNilSource
	case factory == nil:
		return nil, ErrNilFactory
	case viewer == nil:
		return nil, ErrNilViewer
	}
	if logger == nil {
		logger = log.NewNop()
	}
	if cfg.DefaultScale == 0 {
		cfg.DefaultScale = 1
	}

	v := &Visualizer{
		cfg:     cfg,
		source:  source,
		factory: factory,
		viewer:  viewer,
		logger:  logger.Named("visualizer"),
		tracked: make(map[entity.ID]*entry),
	}
	for _, opt := range opts {
		opt(v)
	}

	v.feed = source.Attach()
	if err := v.OnCollectionChanged(source.Entities(), nil, nil); err != nil {
		return nil, err
	}
	return v, nil
}

// OnCollectionChanged updates the tracked set from one batch of changes. It
// never builds representations.
func (v *Visualizer) OnCollectionChanged(added, changed, removed []*entity.Entity) error {
	if v.destroyed {
		return ErrDestroyed
	}

	for _, e := range added {
		v.track(e)
	}
	for _, e := range changed {
		v.track(e)
	}
	for _, e := range removed {
		if e != nil {
			v.untrack(e.ID())
		}
	}

	v.flush()
	return nil
}

// Sync drains the change feed and applies it.
func (v *Visualizer) Sync() error {
	if v.destroyed {
		return ErrDestroyed
	}
	cs := v.feed.Drain()
	if cs.Empty() {
		return nil
	}
	return v.OnCollectionChanged(cs.Added, cs.Changed, cs.Removed)
}

// Update renders the frame at t for the current viewer position.
func (v *Visualizer) Update(t time.Time) bool {
	if v.destroyed {
		return false
	}
	return v.UpdateFrame(frame.NewState(v.stats.Frames+1, t, v.viewer.Position()))
}

// UpdateFrame drives every tracked entity for fs.Time. Failures are isolated
// per entity; the result is false only once the visualizer is destroyed or
// fs is nil.
func (v *Visualizer) UpdateFrame(fs *frame.State) bool {
	if v.destroyed || fs == nil {
		return false
	}
	v.stats.Frames++
	viewer := v.viewer.Position()

	for id, e := range v.tracked {
		if err := v.updateEntity(e, fs.Time, viewer, fs); err != nil {
			v.stats.Errors++
			v.logger.Warn("entity update failed",
				log.String("entity_id", string(id)),
				log.Uint64("frame", fs.Number),
				log.Error(err))
		}
	}

	v.flush()
	return true
}

// Destroy detaches from the source and destroys every primitive. A second
// call returns ErrAlreadyDestroyed.
func (v *Visualizer) Destroy() error {
	if v.destroyed {
		return ErrAlreadyDestroyed
	}

	var errs error
	if err := v.source.Detach(v.feed); err != nil {
		errs = errors.Join(errs, fmt.Errorf("detach feed: %w", err))
	}
	for id := range v.tracked {
		v.untrack(id)
	}
	v.flush()

	v.tracked = nil
	v.feed = nil
	v.destroyed = true
	v.logger.Debug("visualizer destroyed", log.Uint64("frames", v.stats.Frames))
	return errs
}

func (v *Visualizer) IsDestroyed() bool { return v.destroyed }

func (v *Visualizer) Len() int { return len(v.tracked) }

func (v *Visualizer) Tracked(id entity.ID) bool {
	_, ok := v.tracked[id]
	return ok
}

// Primitive returns the primitive of a tracked entity once it was built.
func (v *Visualizer) Primitive(id entity.ID) (*proxy.Primitive, bool) {
	e, ok := v.tracked[id]
	if !ok || e.primitive == nil {
		return nil, false
	}
	return e.primitive, true
}

func (v *Visualizer) track(e *entity.Entity) {
	if e == nil {
		return
	}
	id := e.ID()
	if !e.Visualizable() {
		v.untrack(id)
		return
	}

	c, ok := v.tracked[id]
	if !ok {
		v.tracked[id] = newEntry(e)
		return
	}
	if c.entity != e || c.builtFrom != e.Proxy {
		v.destroyPrimitive(id, c)
		c.entity = e
	}
}

func (v *Visualizer) untrack(id entity.ID) {
	c, ok := v.tracked[id]
	if !ok {
		return
	}
	v.destroyPrimitive(id, c)
	delete(v.tracked, id)
}

func (v *Visualizer) destroyPrimitive(id entity.ID, c *entry) {
	if c.primitive == nil {
		return
	}
	if err := c.primitive.Destroy(); err != nil {
		v.stats.Errors++
		v.logger.Warn("destroy proxy failed", log.String("entity_id", string(id)), log.Error(err))
	}
	v.stats.Destroyed++
	v.emit(EventProxyDestroyed, ProxyEvent{EntityID: string(id), ActiveIndex: c.activeIndex, Previous: -1})
	c.forget()
}

func (v *Visualizer) updateEntity(c *entry, t time.Time, viewer mgl64.Vec3, fs *frame.State) error {
	e := c.entity
	g := e.Proxy

	show := e.IsAvailable(t) && property.ValueOrDefault(g.Show, t, true)
	var position mgl64.Vec3
	if show {
		var ok bool
		position, ok = property.Resolve(e.Position, t)
		show = ok
	}
	if !show {
		if c.primitive != nil && c.primitive.Show() {
			return c.primitive.SetShow(false)
		}
		return nil
	}

	rotation := property.ValueOrDefault(g.Rotation, t, 0)
	scale := property.ValueOrDefault(g.Scale, t, v.cfg.DefaultScale)
	col := property.ValueOrDefault(g.Color, t, v.cfg.DefaultColor)

	if c.primitive == nil {
		if !geo.IsFinite(position) || len(g.Objects) == 0 {
			return nil
		}
		if err := v.materialize(c, graphics.Appearance{
			Position: position,
			Rotation: rotation,
			Scale:    scale,
			Color:    col,
		}); err != nil {
			return err
		}
	}

	w, err := c.push(position, rotation, scale, col)
	v.stats.AttributeWrites += w.made
	v.stats.SuppressedWrites += w.skipped
	if err != nil {
		return err
	}

	p := c.primitive
	if !p.Show() {
		if err := p.SetShow(true); err != nil {
			return err
		}
	}
	if err := p.Tick(viewer, fs); err != nil {
		return err
	}

	if idx := p.ActiveIndex(); idx != c.activeIndex {
		v.emit(EventProxyLODChanged, ProxyEvent{EntityID: string(e.ID()), ActiveIndex: idx, Previous: c.activeIndex})
		c.activeIndex = idx
	}
	return nil
}

// materialize builds the representation list and the primitive. A
// descriptor the factory rejects is skipped; the entity is retried next frame
// if none could be built.
func (v *Visualizer) materialize(c *entry, init graphics.Appearance) error {
	e := c.entity
	id := string(e.ID())

	objects := e.Proxy.SortedObjects()
	reps := make([]proxy.Representation, 0, len(objects))
	for i, d := range objects {
		if d == nil {
			v.stats.FactoryErrors++
			continue
		}
		h, err := v.factory.Create(e, d, init)
		if err != nil || h == nil {
			v.stats.FactoryErrors++
			v.logger.Warn("representation skipped",
				log.String("entity_id", id),
				log.Int("object", i),
				log.String("kind", d.Kind().String()),
				log.Error(err))
			continue
		}
		reps = append(reps, proxy.NewRepresentation(h, d.Threshold()))
	}
	if len(reps) == 0 {
		return ErrNoRepresentation
	}

	p, err := proxy.New(init.Position, init.Rotation, init.Scale, reps,
		proxy.WithID(id),
		proxy.WithColor(init.Color))
	if err != nil {
		release(reps)
		return fmt.Errorf("build proxy: %w", err)
	}

	c.remember(p, e.Proxy)
	v.stats.Created++
	v.emit(EventProxyCreated, ProxyEvent{EntityID: id, ActiveIndex: -1, Previous: -1})
	v.logger.Debug("proxy created", log.String("entity_id", id), log.Int("levels", len(reps)))
	return nil
}

func release(reps []proxy.Representation) {
	for _, r := range reps {
		if h, ok := r.Handle.(proxy.Releasable); ok {
			h.Release()
		}
	}
}

func (v *Visualizer) emit(eventType string, payload ProxyEvent) {
	if v.events == nil {
		return
	}
	v.pending = append(v.pending, bus.NewEvent(eventType, eventSource, payload, nil))
}

// flush publishes the events gathered since the last call. Handler errors
// are logged and never reach the render loop.
func (v *Visualizer) flush() {
	if len(v.pending) == 0 {
		return
	}
	events := v.pending
	v.pending = nil
	if err := v.events.PublishBatch(events...); err != nil {
		v.logger.Warn("lifecycle event handler failed", log.Int("events", len(events)), log.Error(err))
	}
}
