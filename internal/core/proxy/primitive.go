// Package proxy implements the per-entity LOD switch: one Primitive owns the
// alternative representations of an entity, keeps exactly one of them shown
// according to viewer distance and pushes transform updates into it.
package proxy

import (
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/proxyviz/internal/core/frame"
	"github.com/zeusync/proxyviz/internal/core/geo"
	"github.com/zeusync/proxyviz/internal/core/lod"
)

// White is the color a primitive starts with unless WithColor is given.
var White = color.NRGBA{R: 255, G: 255, B: 255, A: 255}

// Primitive is not safe for concurrent use; it is driven from the render loop.
type Primitive struct {
	id string

	position mgl64.Vec3
	rotation float64
	scale    float64
	color    color.NRGBA
	show     bool

	reps       []Representation
	thresholds []float64

	activeIndex int
	destroyed   bool
}

type Option func(*Primitive)

func WithID(id string) Option {
	return func(p *Primitive) { p.id = id }
}

func WithColor(c color.NRGBA) Option {
	return func(p *Primitive) { p.color = c }
}

func WithShow(show bool) Option {
	return func(p *Primitive) { p.show = show }
}

// New builds a primitive over reps, which must be non-empty, carry non-nil
// handles and have non-negative, non-decreasing thresholds. No representation
// is shown until the first Tick.
func New(position mgl64.Vec3, rotation, scale float64, reps []Representation, opts ...Option) (*Primitive, error) {
	if len(reps) == 0 {
		return nil, ErrNoRepresentations
	}
	if !geo.IsFinite(position) {
		return nil, ErrInvalidPosition
	}

	thresholds := make([]float64, len(reps))
	owned := make([]Representation, len(reps))
	for i, r := range reps {
		if r.Handle == nil {
			return nil, fmt.Errorf("representation %d: %w", i, ErrNilHandle)
		}
		thresholds[i] = r.DistanceThreshold
		owned[i] = Representation{Handle: r.Handle, DistanceThreshold: r.DistanceThreshold}
	}
	if err := lod.Validate(thresholds); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidThresholds, err)
	}

	p := &Primitive{
		position:    position,
		rotation:    rotation,
		scale:       scale,
		color:       White,
		show:        true,
		reps:        owned,
		thresholds:  thresholds,
		activeIndex: -1,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

func (p *Primitive) ID() string { return p.id }

// ActiveIndex is the representation chosen by the last LOD decision, or -1
// before the first one.
func (p *Primitive) ActiveIndex() int { return p.activeIndex }

func (p *Primitive) Show() bool              { return p.show }
func (p *Primitive) Position() mgl64.Vec3    { return p.position }
func (p *Primitive) Rotation() float64       { return p.rotation }
func (p *Primitive) Scale() float64          { return p.scale }
func (p *Primitive) Color() color.NRGBA      { return p.color }
func (p *Primitive) Len() int                { return len(p.reps) }
func (p *Primitive) IsDestroyed() bool       { return p.destroyed }
func (p *Primitive) Thresholds() []float64   { return append([]float64(nil), p.thresholds...) }
func (p *Primitive) Handle(i int) Renderable { return p.reps[i].Handle }

// SetAttributes updates the transform state. With show false the transform is
// left alone and every representation is hidden right away.
func (p *Primitive) SetAttributes(position mgl64.Vec3, rotation, scale float64, show bool) error {
	if p.destroyed {
		return ErrDestroyed
	}
	if !show {
		p.hide()
		return nil
	}
	p.position = position
	p.rotation = rotation
	p.scale = scale
	p.show = true
	return nil
}

func (p *Primitive) SetPosition(position mgl64.Vec3) error {
	if p.destroyed {
		return ErrDestroyed
	}
	p.position = position
	return nil
}

func (p *Primitive) SetRotation(rotation float64) error {
	if p.destroyed {
		return ErrDestroyed
	}
	p.rotation = rotation
	return nil
}

func (p *Primitive) SetScale(scale float64) error {
	if p.destroyed {
		return ErrDestroyed
	}
	p.scale = scale
	return nil
}

func (p *Primitive) SetColor(c color.NRGBA) error {
	if p.destroyed {
		return ErrDestroyed
	}
	p.color = c
	return nil
}

// SetShow toggles overall visibility; hiding takes effect immediately.
func (p *Primitive) SetShow(show bool) error {
	if p.destroyed {
		return ErrDestroyed
	}
	if !show {
		p.hide()
		return nil
	}
	p.show = true
	return nil
}

// Tick runs the LOD decision for the current viewer position, shows the
// selected representation, hides the others and updates the active one.
// When the distance cannot be computed the previous state is kept.
func (p *Primitive) Tick(viewer mgl64.Vec3, fs *frame.State) error {
	if p.destroyed {
		return ErrDestroyed
	}
	if !p.show || p.gateClosed() {
		p.hide()
		return nil
	}

	index, ok := lod.Select(p.thresholds, geo.Distance(p.position, viewer))
	if !ok {
		return nil
	}

	for i := range p.reps {
		setShown(p.reps[i].Handle, i == index)
	}

	active := &p.reps[index]
	p.apply(active)

	if u, isUpdatable := active.Handle.(Updatable); isUpdatable {
		u.Update(fs)
	}

	p.activeIndex = index
	return nil
}

// Destroy hides every representation and releases the handles. A second call
// returns ErrAlreadyDestroyed without touching anything.
func (p *Primitive) Destroy() error {
	if p.destroyed {
		return ErrAlreadyDestroyed
	}
	p.hide()
	for i := range p.reps {
		if r, ok := p.reps[i].Handle.(Releasable); ok {
			r.Release()
		}
	}
	p.reps = nil
	p.thresholds = nil
	p.destroyed = true
	return nil
}

func (p *Primitive) hide() {
	p.show = false
	for i := range p.reps {
		setShown(p.reps[i].Handle, false)
	}
}

// gateClosed reports whether the host switched off the active representation.
func (p *Primitive) gateClosed() bool {
	if p.activeIndex < 0 || p.activeIndex >= len(p.reps) {
		return false
	}
	g, ok := p.reps[p.activeIndex].Handle.(Gated)
	return ok && !g.Enabled()
}

// apply writes the current transform into rep, skipping values the handle
// already holds.
func (p *Primitive) apply(rep *Representation) {
	a := &rep.applied

	switch h := rep.Handle.(type) {
	case Posable:
		if !a.pose || a.posePos != p.position || a.poseRot != p.rotation || a.poseScl != p.scale {
			h.SetModelMatrix(geo.Pose(p.position, p.rotation, p.scale))
			a.pose = true
			a.posePos, a.poseRot, a.poseScl = p.position, p.rotation, p.scale
		}
	case Placeable:
		if a.position == nil || *a.position != p.position {
			h.SetPosition(p.position)
			pos := p.position
			a.position = &pos
		}
		if a.rotation == nil || *a.rotation != p.rotation {
			h.SetRotation(p.rotation)
			rot := p.rotation
			a.rotation = &rot
		}
		if a.scale == nil || *a.scale != p.scale {
			h.SetScale(p.scale)
			scl := p.scale
			a.scale = &scl
		}
	}

	if c, ok := rep.Handle.(Colorable); ok {
		if a.color == nil || *a.color != p.color {
			c.SetColor(p.color)
			col := p.color
			a.color = &col
		}
	}
}

func setShown(r Renderable, shown bool) {
	if r.Shown() != shown {
		r.SetShow(shown)
	}
}
