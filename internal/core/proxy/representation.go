package proxy

import (
	"image/color"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/proxyviz/internal/core/frame"
)

// Renderable is the minimal contract of a representation handle supplied by
// the host renderer. It must tolerate repeated hide/show.
type Renderable interface {
	SetShow(bool)
	Shown() bool
}

// Posable handles take a full model matrix.
type Posable interface {
	SetModelMatrix(mgl64.Mat4)
}

// Placeable handles take discrete transform fields instead of a matrix.
type Placeable interface {
	SetPosition(mgl64.Vec3)
	SetRotation(float64)
	SetScale(float64)
}

type Colorable interface {
	SetColor(color.NRGBA)
}

// Updatable handles run their own per-frame hook while active.
type Updatable interface {
	Update(fs *frame.State)
}

// Gated handles expose a host-controlled switch independent of the LOD
// decision, e.g. the visibility of the collection they belong to.
type Gated interface {
	Enabled() bool
}

// Releasable handles return their resources to an owning pool.
type Releasable interface {
	Release()
}

// Representation is one alternative visual of an entity, eligible from
// DistanceThreshold meters onwards.
type Representation struct {
	Handle            Renderable
	DistanceThreshold float64

	applied applied
}

// applied records what was last written into the handle.
type applied struct {
	pose     bool
	posePos  mgl64.Vec3
	poseRot  float64
	poseScl  float64
	position *mgl64.Vec3
	rotation *float64
	scale    *float64
	color    *color.NRGBA
}

// NewRepresentation is shorthand for a Representation literal.
func NewRepresentation(handle Renderable, threshold float64) Representation {
	return Representation{Handle: handle, DistanceThreshold: threshold}
}
