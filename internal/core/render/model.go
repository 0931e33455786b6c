// Package render provides reference representations for proxies: posed 3D
// models and pooled billboards, plus the factory that builds them from
// declarative descriptors. Actual GPU submission is left to the host, which
// receives frame.Command values.
package render

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/proxyviz/internal/core/frame"
)

// ModelTemplate is the shared, per-asset part of a model.
type ModelTemplate struct {
	URI string
	Key uint64
}

// Model is a posed glTF-style model instance.
type Model struct {
	owner            string
	template         *ModelTemplate
	minimumPixelSize float64
	scale            float64

	show     bool
	enabled  bool
	matrix   mgl64.Mat4
	released bool
}

func newModel(owner string, template *ModelTemplate, minimumPixelSize, scale float64) *Model {
	if scale == 0 {
		scale = 1
	}
	return &Model{
		owner:            owner,
		template:         template,
		minimumPixelSize: minimumPixelSize,
		scale:            scale,
		enabled:          true,
		matrix:           mgl64.Ident4(),
	}
}

func (m *Model) SetShow(show bool)           { m.show = show }
func (m *Model) Shown() bool                 { return m.show }
func (m *Model) SetModelMatrix(x mgl64.Mat4) { m.matrix = x }
func (m *Model) ModelMatrix() mgl64.Mat4     { return m.matrix }
func (m *Model) URI() string                 { return m.template.URI }
func (m *Model) MinimumPixelSize() float64   { return m.minimumPixelSize }
func (m *Model) Released() bool              { return m.released }

// Enabled is the host switch for this instance.
func (m *Model) Enabled() bool { return m.enabled }

func (m *Model) SetEnabled(enabled bool) { m.enabled = enabled }

// Update queues one draw command while the model is shown.
func (m *Model) Update(fs *frame.State) {
	if !m.show || m.released || fs == nil || fs.Commands == nil {
		return
	}
	fs.Commands.Push(frame.Command{
		Owner:       m.owner,
		Kind:        "model",
		Asset:       m.template.URI,
		ModelMatrix: m.matrix.Mul4(mgl64.Scale3D(m.scale, m.scale, m.scale)),
	})
}

func (m *Model) Release() {
	m.show = false
	m.released = true
}
