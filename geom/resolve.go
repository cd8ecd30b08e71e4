package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Reflect returns the velocity of a disk after a specular bounce off a
// boundary centered on the origin: the normal component flips and the
// tangential one is untouched. f must be the frame of the disk at the instant
// of contact.
func Reflect(f RadialFrame, vel mgl64.Vec2) mgl64.Vec2 {
	vn, vt := f.Decompose(vel)
	return f.Compose(-vn, vt)
}

// Impulse computes the impulse exchanged by two disks in contact. dr and dv
// are pos2 - pos1 and vel2 - vel1. The returned vector J should be added to
// the first disk's momentum and subtracted from the second's, i.e.
// vel1 += J/m1, vel2 -= J/m2. The magnitude of J is also returned.
//
// dr is rescaled to length sigma before use, so predicted contacts that are
// off by rounding error still exchange exactly the energy-conserving impulse.
func Impulse(dr, dv mgl64.Vec2, m1, m2, sigma float64) (mgl64.Vec2, float64) {
	dist := math.Sqrt(dr.Dot(dr))
	if dist > 0 {
		dr = dr.Mul(sigma / dist)
	}

	dvdr := dr.Dot(dv)
	j := 2 * m1 * m2 * dvdr / ((m1 + m2) * sigma)
	return dr.Mul(j / sigma), math.Abs(j)
}
