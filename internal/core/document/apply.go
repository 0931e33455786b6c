package document

import (
	"errors"
	"fmt"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/proxyviz/internal/core/entity"
	"github.com/zeusync/proxyviz/internal/core/geo"
	"github.com/zeusync/proxyviz/internal/core/graphics"
	"github.com/zeusync/proxyviz/internal/core/property"
)

// Apply merges every packet into c in document order. A packet that cannot be
// converted is skipped and reported; the rest are still applied.
func (d *Document) Apply(c *entity.Collection, ellipsoid geo.Ellipsoid) error {
	var errs error
	for i := range d.Packets {
		if err := d.Packets[i].apply(c, ellipsoid); err != nil {
			errs = errors.Join(errs, fmt.Errorf("packet %d (%s): %w", i, d.Packets[i].ID, err))
		}
	}
	return errs
}

type converted struct {
	position     property.Property[mgl64.Vec3]
	proxy        *graphics.ProxyGraphics
	availability *property.Interval
}

func (p *Packet) apply(c *entity.Collection, ellipsoid geo.Ellipsoid) error {
	if p.ID == "" {
		return ErrMissingID
	}
	if p.Delete {
		c.Remove(entity.ID(p.ID))
		return nil
	}

	conv, err := p.convert(ellipsoid)
	if err != nil {
		return err
	}

	if _, exists := c.Get(entity.ID(p.ID)); exists {
		return c.Update(entity.ID(p.ID), func(e *entity.Entity) { p.merge(e, conv) })
	}
	e := entity.New(p.ID)
	p.merge(e, conv)
	return c.Add(e)
}

// merge layers the packet on top of e. Proxy graphics are resolved into a new
// value so the previous one is never mutated.
func (p *Packet) merge(e *entity.Entity, conv converted) {
	if p.Name != "" {
		e.Name = p.Name
	}
	if conv.position != nil {
		e.Position = conv.position
	}
	if conv.availability != nil {
		e.Availability = conv.availability
	}
	if conv.proxy != nil {
		e.Proxy = graphics.Resolve(e.Proxy, conv.proxy)
	}
}

func (p *Packet) convert(ellipsoid geo.Ellipsoid) (converted, error) {
	var out converted
	if p.Availability != nil {
		out.availability = p.Availability.interval()
	}
	if p.Position != nil {
		pos, err := p.Position.toProperty(ellipsoid)
		if err != nil {
			return out, fmt.Errorf("position: %w", err)
		}
		out.position = pos
	}
	if p.Proxy != nil {
		g, err := p.Proxy.toGraphics()
		if err != nil {
			return out, fmt.Errorf("proxy: %w", err)
		}
		out.proxy = g
	}
	return out, nil
}

func (iv *IntervalDoc) interval() *property.Interval {
	return &property.Interval{Start: iv.Start, Stop: iv.Stop}
}

func (p *PositionDoc) toProperty(ellipsoid geo.Ellipsoid) (property.Property[mgl64.Vec3], error) {
	set := 0
	for _, present := range []bool{p.Degrees != nil, p.Cartesian != nil, len(p.Samples) > 0} {
		if present {
			set++
		}
	}
	if set != 1 {
		return nil, ErrInvalidPosition
	}

	if len(p.Samples) == 0 {
		v, err := vector(ellipsoid, p.Degrees, p.Cartesian)
		if err != nil {
			return nil, err
		}
		return property.NewConstant(v), nil
	}

	interp, err := interpolator[mgl64.Vec3](p.Interpolation, property.LerpVec3)
	if err != nil {
		return nil, err
	}
	s := property.NewSampled(interp)
	if p.Hold {
		s.Forward, s.Backward = property.ExtrapolateHold, property.ExtrapolateHold
	}
	for i, sample := range p.Samples {
		v, err := vector(ellipsoid, sample.Degrees, sample.Cartesian)
		if err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
		s.AddSample(sample.Time, v)
	}
	return s, nil
}

func vector(ellipsoid geo.Ellipsoid, degrees, cartesian []float64) (mgl64.Vec3, error) {
	switch {
	case degrees != nil && cartesian == nil:
		if len(degrees) != 3 {
			return mgl64.Vec3{}, ErrInvalidVector
		}
		return ellipsoid.FromDegrees(degrees[0], degrees[1], degrees[2]), nil
	case cartesian != nil && degrees == nil:
		if len(cartesian) != 3 {
			return mgl64.Vec3{}, ErrInvalidVector
		}
		return mgl64.Vec3{cartesian[0], cartesian[1], cartesian[2]}, nil
	default:
		return mgl64.Vec3{}, ErrInvalidPosition
	}
}

func interpolator[T any](name string, linear property.Interpolator[T]) (property.Interpolator[T], error) {
	switch name {
	case "", "linear":
		return linear, nil
	case "step":
		return property.Step[T], nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownInterp, name)
	}
}

func (n *NumberDoc) toProperty() (property.Property[float64], error) {
	if n.Value != nil {
		return property.NewConstant(*n.Value), nil
	}
	if len(n.Samples) == 0 {
		return nil, ErrEmptyProperty
	}
	interp, err := interpolator[float64](n.Interpolation, property.LerpFloat64)
	if err != nil {
		return nil, err
	}
	s := property.NewSampled(interp)
	if n.Hold {
		s.Forward, s.Backward = property.ExtrapolateHold, property.ExtrapolateHold
	}
	for _, sample := range n.Samples {
		s.AddSample(sample.Time, sample.Value)
	}
	return s, nil
}

func (c *ColorDoc) nrgba() color.NRGBA {
	return color.NRGBA{R: c.RGBA[0], G: c.RGBA[1], B: c.RGBA[2], A: c.RGBA[3]}
}

func (d *ProxyDoc) toGraphics() (*graphics.ProxyGraphics, error) {
	g := &graphics.ProxyGraphics{}
	var iv *property.Interval
	if d.Interval != nil {
		iv = d.Interval.interval()
	}

	if d.Show != nil {
		g.Show = within[bool](property.NewConstant(*d.Show), iv)
	}
	if d.Rotation != nil {
		r, err := d.Rotation.toProperty()
		if err != nil {
			return nil, fmt.Errorf("rotation: %w", err)
		}
		g.Rotation = within(r, iv)
	}
	if d.Scale != nil {
		s, err := d.Scale.toProperty()
		if err != nil {
			return nil, fmt.Errorf("scale: %w", err)
		}
		g.Scale = within(s, iv)
	}
	if d.Color != nil {
		g.Color = within[color.NRGBA](property.NewConstant(d.Color.nrgba()), iv)
	}

	for i, o := range d.Objects {
		desc, err := o.descriptor()
		if err != nil {
			return nil, fmt.Errorf("object %d: %w", i, err)
		}
		g.Objects = append(g.Objects, desc)
	}
	return g, nil
}

// within limits p to iv. Without an interval p is returned as is.
func within[T any](p property.Property[T], iv *property.Interval) property.Property[T] {
	if iv == nil {
		return p
	}
	return property.NewIntervals(property.TimedValue[T]{Interval: *iv, Data: p})
}

func (o *ObjectDoc) descriptor() (graphics.Descriptor, error) {
	kind, err := graphics.ParseKind(o.Type)
	if err != nil {
		return nil, err
	}

	var d graphics.Descriptor
	switch kind {
	case graphics.KindModel:
		d = graphics.ModelDescriptor{
			URI:              o.URI,
			MinimumPixelSize: o.MinimumPixelSize,
			Scale:            o.Scale,
			Distance:         o.Distance,
		}
	case graphics.KindBillboard:
		b := graphics.BillboardDescriptor{
			Image:    o.Image,
			Scale:    o.Scale,
			Rotation: o.Rotation,
			Distance: o.Distance,
		}
		if o.Color != nil {
			c := o.Color.nrgba()
			b.Color = &c
		}
		d = b
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return d, nil
}
