package render

import (
	"errors"
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/proxyviz/internal/core/frame"
	"github.com/zeusync/proxyviz/pkg/generic"
)

var ErrCollectionDestroyed = errors.New("billboard collection is destroyed")

// Billboard is a sprite owned by a BillboardCollection.
type Billboard struct {
	collection *BillboardCollection
	owner      string
	image      string

	// per-instance adjustments applied on top of proxy-driven values
	baseScale    float64
	baseRotation float64
	fixedColor   *color.NRGBA

	show     bool
	position mgl64.Vec3
	rotation float64
	scale    float64
	color    color.NRGBA
}

func (b *Billboard) SetShow(show bool)        { b.show = show }
func (b *Billboard) Shown() bool              { return b.show }
func (b *Billboard) SetPosition(p mgl64.Vec3) { b.position = p }
func (b *Billboard) SetRotation(r float64)    { b.rotation = r + b.baseRotation }
func (b *Billboard) SetScale(s float64)       { b.scale = s * b.baseScale }
func (b *Billboard) Position() mgl64.Vec3     { return b.position }
func (b *Billboard) Rotation() float64        { return b.rotation }
func (b *Billboard) Scale() float64           { return b.scale }
func (b *Billboard) Color() color.NRGBA       { return b.color }
func (b *Billboard) Image() string            { return b.image }

// SetColor is ignored when the billboard was created with a fixed color.
func (b *Billboard) SetColor(c color.NRGBA) {
	if b.fixedColor == nil {
		b.color = c
	}
}

func (b *Billboard) Collection() *BillboardCollection { return b.collection }

// Enabled follows the visibility of the owning collection.
func (b *Billboard) Enabled() bool {
	return b.collection != nil && b.collection.Show
}

// Release returns the billboard to its collection.
func (b *Billboard) Release() {
	if b.collection != nil {
		b.collection.remove(b)
	}
}

// BillboardOptions are the initial values of a new billboard. BaseScale
// multiplies and BaseRotation offsets every later SetScale/SetRotation; a
// non-nil FixedColor pins the color.
type BillboardOptions struct {
	Owner        string
	Image        string
	Show         bool
	Position     mgl64.Vec3
	Rotation     float64
	Scale        float64
	Color        color.NRGBA
	BaseScale    float64
	BaseRotation float64
	FixedColor   *color.NRGBA
}

// BillboardCollection owns a set of billboards and draws the shown ones in a
// single pass. It is created by whoever owns the scene and must outlive every
// proxy that holds one of its billboards.
type BillboardCollection struct {
	Show bool

	pool       *generic.Pool[*Billboard]
	billboards map[*Billboard]struct{}
	destroyed  bool
}

func NewBillboardCollection() *BillboardCollection {
	return &BillboardCollection{
		Show: true,
		pool: generic.NewPool(
			func() *Billboard { return &Billboard{} },
			func(b *Billboard) { *b = Billboard{} },
		),
		billboards: make(map[*Billboard]struct{}),
	}
}

func (c *BillboardCollection) Add(opts BillboardOptions) (*Billboard, error) {
	if c.destroyed {
		return nil, ErrCollectionDestroyed
	}
	base := opts.BaseScale
	if base == 0 {
		base = 1
	}
	scale := opts.Scale
	if scale == 0 {
		scale = 1
	}
	b := c.pool.Get()
	*b = Billboard{
		collection:   c,
		owner:        opts.Owner,
		image:        opts.Image,
		baseScale:    base,
		baseRotation: opts.BaseRotation,
		fixedColor:   opts.FixedColor,
		show:         opts.Show,
		position:     opts.Position,
	}
	b.SetRotation(opts.Rotation)
	b.SetScale(scale)
	b.color = opts.Color
	if opts.FixedColor != nil {
		b.color = *opts.FixedColor
	}
	c.billboards[b] = struct{}{}
	return b, nil
}

func (c *BillboardCollection) Len() int { return len(c.billboards) }

func (c *BillboardCollection) Contains(b *Billboard) bool {
	_, ok := c.billboards[b]
	return ok
}

func (c *BillboardCollection) IsDestroyed() bool { return c.destroyed }

// Update queues a draw command for every shown billboard.
func (c *BillboardCollection) Update(fs *frame.State) {
	if c.destroyed || !c.Show || fs == nil || fs.Commands == nil {
		return
	}
	for b := range c.billboards {
		if !b.show {
			continue
		}
		fs.Commands.Push(frame.Command{
			Owner: b.owner,
			Kind:  "billboard",
			Asset: b.image,
			ModelMatrix: mgl64.Translate3D(b.position[0], b.position[1], b.position[2]).
				Mul4(mgl64.HomogRotate3DZ(b.rotation)).
				Mul4(mgl64.Scale3D(b.scale, b.scale, b.scale)),
		})
	}
}

// Destroy drops every remaining billboard. Proxies holding billboards must be
// destroyed first.
func (c *BillboardCollection) Destroy() error {
	if c.destroyed {
		return ErrCollectionDestroyed
	}
	for b := range c.billboards {
		delete(c.billboards, b)
		c.pool.Put(b)
	}
	c.destroyed = true
	return nil
}

func (c *BillboardCollection) remove(b *Billboard) {
	if _, ok := c.billboards[b]; !ok {
		return
	}
	delete(c.billboards, b)
	c.pool.Put(b)
}
