package visualizer

import (
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/proxyviz/internal/core/entity"
	"github.com/zeusync/proxyviz/internal/core/geo"
	"github.com/zeusync/proxyviz/internal/core/graphics"
	"github.com/zeusync/proxyviz/internal/core/proxy"
)

// entry is the per-entity state: the primitive (nil until first visible frame)
// and the values last pushed into it.
type entry struct {
	entity    *entity.Entity
	primitive *proxy.Primitive

	// graphics the primitive was built from; a different pointer on a
	// change batch forces a rebuild
	builtFrom *graphics.ProxyGraphics

	position    mgl64.Vec3
	rotation    float64
	scale       float64
	color       color.NRGBA
	activeIndex int
}

func newEntry(e *entity.Entity) *entry {
	return &entry{entity: e, activeIndex: -1}
}

// remember records the values a fresh primitive was constructed with.
func (c *entry) remember(p *proxy.Primitive, from *graphics.ProxyGraphics) {
	c.primitive = p
	c.builtFrom = from
	c.position = p.Position()
	c.rotation = p.Rotation()
	c.scale = p.Scale()
	c.color = p.Color()
	c.activeIndex = -1
}

func (c *entry) forget() {
	c.primitive = nil
	c.builtFrom = nil
	c.activeIndex = -1
}

// writes counts setter calls made and skipped while diffing one entity.
type writes struct {
	made, skipped uint64
}

// push writes every attribute that differs from the cached value.
func (c *entry) push(position mgl64.Vec3, rotation, scale float64, col color.NRGBA) (writes, error) {
	var w writes
	p := c.primitive

	if !samePosition(position, c.position) {
		if err := p.SetPosition(position); err != nil {
			return w, err
		}
		c.position = position
		w.made++
	} else {
		w.skipped++
	}

	if !sameFloat(rotation, c.rotation) {
		if err := p.SetRotation(rotation); err != nil {
			return w, err
		}
		c.rotation = rotation
		w.made++
	} else {
		w.skipped++
	}

	if !sameFloat(scale, c.scale) {
		if err := p.SetScale(scale); err != nil {
			return w, err
		}
		c.scale = scale
		w.made++
	} else {
		w.skipped++
	}

	if col != c.color {
		if err := p.SetColor(col); err != nil {
			return w, err
		}
		c.color = col
		w.made++
	} else {
		w.skipped++
	}
	return w, nil
}

// samePosition treats any two non-finite positions as equal, so an entity
// parked on an unresolvable position is not rewritten every frame.
func samePosition(a, b mgl64.Vec3) bool {
	if a == b {
		return true
	}
	return !geo.IsFinite(a) && !geo.IsFinite(b)
}

func sameFloat(a, b float64) bool {
	return a == b || (math.IsNaN(a) && math.IsNaN(b))
}
