/*package geom contains the kinematics of disks moving inside a circular
container centered on the origin: conversions into the local radial frame and
analytic contact times against the wall, the central obstacle, and other
disks.

All routines are pure. Degenerate inputs resolve to sentinel values instead of
errors: a contact that never happens has time Never, and a frame centered on
the origin has a zero normal.
*/
package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// RadialFrame is the local frame of a point relative to the container's
// center. N is the unit vector pointing away from the center and R is the
// distance to it.
type RadialFrame struct {
	R      float64
	Nx, Ny float64
}

// Radial computes the radial frame at pos. If pos is the origin the normal is
// left as zero.
func Radial(pos mgl64.Vec2) RadialFrame {
	r := math.Sqrt(pos[0]*pos[0] + pos[1]*pos[1])
	if r == 0 {
		return RadialFrame{}
	}
	return RadialFrame{R: r, Nx: pos[0] / r, Ny: pos[1] / r}
}

// Polar returns the polar radius and angle of pos. The angle of the origin is
// defined to be 0.
func Polar(pos mgl64.Vec2) (r, angle float64) {
	if pos[0] == 0 && pos[1] == 0 {
		return 0, 0
	}
	return math.Sqrt(pos[0]*pos[0] + pos[1]*pos[1]), math.Atan2(pos[1], pos[0])
}

// Decompose splits vel into its normal (outward) and tangential components.
func (f RadialFrame) Decompose(vel mgl64.Vec2) (vn, vt float64) {
	vn = vel[0]*f.Nx + vel[1]*f.Ny
	vt = -vel[0]*f.Ny + vel[1]*f.Nx
	return vn, vt
}

// Compose is the inverse of Decompose. It must be called on the same frame
// that produced vn and vt, not on one recomputed after the point moved.
func (f RadialFrame) Compose(vn, vt float64) mgl64.Vec2 {
	return mgl64.Vec2{
		vn*f.Nx - vt*f.Ny,
		vn*f.Ny + vt*f.Nx,
	}
}

// Degenerate returns true if the frame has no defined normal.
func (f RadialFrame) Degenerate() bool { return f.R == 0 }
