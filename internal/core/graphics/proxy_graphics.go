// Package graphics describes what a proxy looks like: the time-dynamic
// attributes of an entity's proxy and the declarative list of representations
// it switches between.
package graphics

import (
	"fmt"
	"image/color"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/proxyviz/internal/core/property"
)

// ProxyGraphics is the proxy part of an entity. Nil properties are undefined
// and fall back to defaults at evaluation time.
type ProxyGraphics struct {
	Show     property.Property[bool]
	Rotation property.Property[float64]
	Scale    property.Property[float64]
	Color    property.Property[color.NRGBA]
	Objects  []Descriptor
}

// Clone returns a shallow copy with its own Objects slice. Properties are
// shared; they are treated as immutable.
func (g *ProxyGraphics) Clone() *ProxyGraphics {
	if g == nil {
		return nil
	}
	out := *g
	out.Objects = append([]Descriptor(nil), g.Objects...)
	return &out
}

// Resolve layers override on top of base and returns a new value. Every field
// defined on override wins; undefined fields come from base. Neither input is
// modified.
func Resolve(base, override *ProxyGraphics) *ProxyGraphics {
	switch {
	case base == nil:
		return override.Clone()
	case override == nil:
		return base.Clone()
	}

	out := base.Clone()
	if override.Show != nil {
		out.Show = override.Show
	}
	if override.Rotation != nil {
		out.Rotation = override.Rotation
	}
	if override.Scale != nil {
		out.Scale = override.Scale
	}
	if override.Color != nil {
		out.Color = override.Color
	}
	if len(override.Objects) > 0 {
		out.Objects = append([]Descriptor(nil), override.Objects...)
	}
	return out
}

// ResolveLayers folds layers from lowest to highest priority.
func ResolveLayers(layers ...*ProxyGraphics) *ProxyGraphics {
	var out *ProxyGraphics
	for _, l := range layers {
		out = Resolve(out, l)
	}
	return out
}

// SortedObjects returns the descriptors ordered by threshold. Equal
// thresholds keep their declared order; nil entries go last.
func (g *ProxyGraphics) SortedObjects() []Descriptor {
	out := append([]Descriptor(nil), g.Objects...)
	sort.SliceStable(out, func(i, j int) bool {
		switch {
		case out[i] == nil:
			return false
		case out[j] == nil:
			return true
		}
		return out[i].Threshold() < out[j].Threshold()
	})
	return out
}

// Validate checks every descriptor.
func (g *ProxyGraphics) Validate() error {
	for i, d := range g.Objects {
		if d == nil {
			return fmt.Errorf("object %d: %w", i, ErrUnknownKind)
		}
		if err := d.Validate(); err != nil {
			return fmt.Errorf("object %d: %w", i, err)
		}
	}
	return nil
}

// Appearance is the resolved state of an entity at the frame a representation
// is built; factories use it for initial values.
type Appearance struct {
	Position mgl64.Vec3
	Rotation float64
	Scale    float64
	Color    color.NRGBA
}
