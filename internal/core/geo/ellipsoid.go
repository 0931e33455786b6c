// Package geo holds the earth-fixed math used to place proxies: WGS84
// geodetic conversion, local east-north-up frames and pose matrices.
package geo

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Ellipsoid is an oblate spheroid given by its three radii in meters.
type Ellipsoid struct {
	Radii mgl64.Vec3
}

// WGS84 is the ellipsoid used for every conversion in this module.
var WGS84 = Ellipsoid{Radii: mgl64.Vec3{6378137.0, 6378137.0, 6356752.3142451793}}

func (e Ellipsoid) radiiSquared() mgl64.Vec3 {
	return mgl64.Vec3{e.Radii[0] * e.Radii[0], e.Radii[1] * e.Radii[1], e.Radii[2] * e.Radii[2]}
}

// FromDegrees converts longitude, latitude (degrees) and height above the
// ellipsoid (meters) to an earth-fixed cartesian position.
func (e Ellipsoid) FromDegrees(lon, lat, height float64) mgl64.Vec3 {
	return e.FromRadians(mgl64.DegToRad(lon), mgl64.DegToRad(lat), height)
}

// FromRadians is FromDegrees with angles in radians.
func (e Ellipsoid) FromRadians(lon, lat, height float64) mgl64.Vec3 {
	cosLat := math.Cos(lat)
	n := mgl64.Vec3{cosLat * math.Cos(lon), cosLat * math.Sin(lon), math.Sin(lat)}.Normalize()

	r2 := e.radiiSquared()
	k := mgl64.Vec3{r2[0] * n[0], r2[1] * n[1], r2[2] * n[2]}
	gamma := math.Sqrt(n.Dot(k))
	k = k.Mul(1 / gamma)

	return k.Add(n.Mul(height))
}

// GeodeticSurfaceNormal returns the outward unit normal of the ellipsoid
// surface through p. ok is false at the center, where no normal exists.
func (e Ellipsoid) GeodeticSurfaceNormal(p mgl64.Vec3) (mgl64.Vec3, bool) {
	r2 := e.radiiSquared()
	n := mgl64.Vec3{p[0] / r2[0], p[1] / r2[1], p[2] / r2[2]}
	if n.Len() == 0 {
		return mgl64.Vec3{}, false
	}
	return n.Normalize(), true
}

// IsFinite reports whether every component of v is a finite number.
func IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// Distance is the euclidean distance between two positions.
func Distance(a, b mgl64.Vec3) float64 {
	return b.Sub(a).Len()
}
