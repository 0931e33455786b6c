package geo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const poleEpsilon = 1e-14

// EastNorthUpToFixedFrame returns the matrix taking a local east-north-up
// frame centered at origin to the earth-fixed frame. At the poles east is
// fixed to +Y; at the center of the earth only the translation is kept.
func (e Ellipsoid) EastNorthUpToFixedFrame(origin mgl64.Vec3) mgl64.Mat4 {
	up, ok := e.GeodeticSurfaceNormal(origin)
	if !ok {
		return mgl64.Translate3D(origin[0], origin[1], origin[2])
	}

	var east, north mgl64.Vec3
	if math.Abs(origin[0]) < poleEpsilon && math.Abs(origin[1]) < poleEpsilon {
		sign := 1.0
		if origin[2] < 0 {
			sign = -1.0
		}
		east = mgl64.Vec3{0, 1, 0}
		north = mgl64.Vec3{-sign, 0, 0}
		up = mgl64.Vec3{0, 0, sign}
	} else {
		east = mgl64.Vec3{-origin[1], origin[0], 0}.Normalize()
		north = up.Cross(east)
	}

	return mgl64.Mat4FromCols(
		east.Vec4(0),
		north.Vec4(0),
		up.Vec4(0),
		origin.Vec4(1),
	)
}

// Pose composes the model matrix of a proxy: the east-north-up frame at
// position, a yaw of heading radians about local up and a uniform scale.
func Pose(position mgl64.Vec3, heading, scale float64) mgl64.Mat4 {
	return WGS84.EastNorthUpToFixedFrame(position).
		Mul4(mgl64.HomogRotate3DZ(heading)).
		Mul4(mgl64.Scale3D(scale, scale, scale))
}
