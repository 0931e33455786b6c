package scene

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zeusync/proxyviz/internal/core/geo"
	"github.com/zeusync/proxyviz/internal/core/property"
)

// Camera is the viewer. Its position follows a time-dynamic path and holds
// the last known value while the path has none.
type Camera struct {
	path     property.Property[mgl64.Vec3]
	position mgl64.Vec3
}

func NewCamera(path property.Property[mgl64.Vec3], start mgl64.Vec3) *Camera {
	return &Camera{path: path, position: start}
}

// Keyframe is one camera waypoint in geodetic degrees.
type Keyframe struct {
	At     time.Time
	Lon    float64
	Lat    float64
	Height float64
}

// NewFlightCamera interpolates linearly between keyframes and holds the end
// positions outside them.
func NewFlightCamera(ellipsoid geo.Ellipsoid, keyframes ...Keyframe) *Camera {
	path := property.NewSampled[mgl64.Vec3](property.LerpVec3)
	path.Forward, path.Backward = property.ExtrapolateHold, property.ExtrapolateHold
	for _, k := range keyframes {
		path.AddSample(k.At, ellipsoid.FromDegrees(k.Lon, k.Lat, k.Height))
	}
	var start mgl64.Vec3
	if len(keyframes) > 0 {
		start = ellipsoid.FromDegrees(keyframes[0].Lon, keyframes[0].Lat, keyframes[0].Height)
	}
	return NewCamera(path, start)
}

// MoveTo evaluates the path at t.
func (c *Camera) MoveTo(t time.Time) mgl64.Vec3 {
	if p, ok := property.Resolve(c.path, t); ok && geo.IsFinite(p) {
		c.position = p
	}
	return c.position
}

func (c *Camera) Position() mgl64.Vec3 { return c.position }
