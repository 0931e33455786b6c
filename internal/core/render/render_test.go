package render

import (
	"image/color"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zeusync/proxyviz/internal/core/entity"
	"github.com/zeusync/proxyviz/internal/core/frame"
	"github.com/zeusync/proxyviz/internal/core/graphics"
	"github.com/zeusync/proxyviz/internal/core/proxy"
)

var (
	_ proxy.Posable    = (*Model)(nil)
	_ proxy.Updatable  = (*Model)(nil)
	_ proxy.Releasable = (*Model)(nil)
	_ proxy.Gated      = (*Model)(nil)
	_ proxy.Placeable  = (*Billboard)(nil)
	_ proxy.Colorable  = (*Billboard)(nil)
	_ proxy.Gated      = (*Billboard)(nil)
	_ proxy.Releasable = (*Billboard)(nil)
)

func testFrame() *frame.State {
	return frame.NewState(1, time.Unix(0, 0), mgl64.Vec3{})
}

func TestFactoryCreatesModelsWithSharedTemplates(t *testing.T) {
	f := NewFactory(NewBillboardCollection())
	owner := entity.New("plane")

	r1, err := f.Create(owner, graphics.ModelDescriptor{URI: "plane.glb", Scale: 2, Distance: 10000}, graphics.Appearance{})
	require.NoError(t, err)
	r2, err := f.Create(owner, graphics.ModelDescriptor{URI: "plane.glb"}, graphics.Appearance{})
	require.NoError(t, err)
	_, err = f.Create(owner, graphics.ModelDescriptor{URI: "truck.glb"}, graphics.Appearance{})
	require.NoError(t, err)

	m1, m2 := r1.(*Model), r2.(*Model)
	assert.Same(t, m1.template, m2.template)
	assert.Equal(t, 2, f.Templates())
	assert.False(t, m1.Shown())
	assert.Equal(t, "plane.glb", m1.URI())
}

func TestFactoryCreatesBillboardsFromAppearance(t *testing.T) {
	billboards := NewBillboardCollection()
	f := NewFactory(billboards)
	red := color.NRGBA{R: 255, A: 255}

	r, err := f.Create(entity.New("a"), graphics.BillboardDescriptor{Image: "a.png"}, graphics.Appearance{
		Position: mgl64.Vec3{1, 2, 3},
		Rotation: 0.5,
		Scale:    3,
		Color:    red,
	})
	require.NoError(t, err)
	b := r.(*Billboard)
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, b.Position())
	assert.Equal(t, 3.0, b.Scale())
	assert.Equal(t, red, b.Color())
	assert.Equal(t, 1, billboards.Len())

	blue := color.NRGBA{B: 255, A: 255}
	r, err = f.Create(nil, graphics.BillboardDescriptor{Image: "b.png", Scale: 0.5, Color: &blue}, graphics.Appearance{Scale: 3, Color: red})
	require.NoError(t, err)
	b = r.(*Billboard)
	assert.Equal(t, 1.5, b.Scale())
	assert.Equal(t, blue, b.Color())

	// proxy-driven writes keep the per-instance adjustments
	b.SetScale(4)
	b.SetColor(red)
	assert.Equal(t, 2.0, b.Scale())
	assert.Equal(t, blue, b.Color())
}

type unknownDescriptor struct{ graphics.ModelDescriptor }

func TestFactoryRejectsBadDescriptors(t *testing.T) {
	f := NewFactory(NewBillboardCollection())

	_, err := f.Create(nil, graphics.ModelDescriptor{}, graphics.Appearance{})
	assert.ErrorIs(t, err, graphics.ErrMissingAsset)

	_, err = f.Create(nil, unknownDescriptor{graphics.ModelDescriptor{URI: "x"}}, graphics.Appearance{})
	assert.ErrorIs(t, err, ErrUnsupportedDescriptor)

	_, err = NewFactory(nil).Create(nil, graphics.BillboardDescriptor{Image: "a.png"}, graphics.Appearance{})
	assert.Error(t, err)
}

func TestModelUpdateQueuesCommand(t *testing.T) {
	m := newModel("e", &ModelTemplate{URI: "m.glb"}, 64, 2)
	fs := testFrame()

	m.Update(fs)
	assert.Equal(t, 0, fs.Commands.Len())

	m.SetShow(true)
	m.SetModelMatrix(mgl64.Translate3D(1, 0, 0))
	m.Update(fs)
	require.Equal(t, 1, fs.Commands.Len())
	cmd := fs.Commands.Commands()[0]
	assert.Equal(t, "model", cmd.Kind)
	assert.Equal(t, "m.glb", cmd.Asset)
	assert.Equal(t, 2.0, cmd.ModelMatrix.At(0, 0))
	assert.Equal(t, 1.0, cmd.ModelMatrix.At(0, 3))

	m.Release()
	assert.True(t, m.Released())
	m.Update(fs)
	assert.Equal(t, 1, fs.Commands.Len())
}

func TestBillboardCollectionLifecycle(t *testing.T) {
	c := NewBillboardCollection()
	b, err := c.Add(BillboardOptions{Owner: "e", Image: "a.png", Show: true})
	require.NoError(t, err)
	hidden, err := c.Add(BillboardOptions{Image: "b.png"})
	require.NoError(t, err)
	assert.Equal(t, 1.0, hidden.Scale())
	assert.True(t, b.Enabled())

	fs := testFrame()
	c.Update(fs)
	assert.Equal(t, 1, fs.Commands.Len())

	c.Show = false
	assert.False(t, b.Enabled())
	fs = testFrame()
	c.Update(fs)
	assert.Equal(t, 0, fs.Commands.Len())
	c.Show = true

	hidden.Release()
	assert.Equal(t, 1, c.Len())
	assert.False(t, c.Contains(hidden))
	hidden.Release()
	assert.Equal(t, 1, c.Len())

	require.NoError(t, c.Destroy())
	assert.True(t, c.IsDestroyed())
	assert.Equal(t, 0, c.Len())
	assert.ErrorIs(t, c.Destroy(), ErrCollectionDestroyed)
	_, err = c.Add(BillboardOptions{Image: "c.png"})
	assert.ErrorIs(t, err, ErrCollectionDestroyed)
}
