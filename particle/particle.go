package particle

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/TheJohnFaraday/SystemSimulations-TP3/geom"
)

// Particle is a rigid disk. Collisions is incremented every time the disk's
// velocity changes and serves as a version number for scheduled events.
type Particle struct {
	ID           int
	Radius, Mass float64
	Pos, Vel     mgl64.Vec2
	Collisions   int
}

// Radial returns the disk's frame relative to the container's center.
func (p *Particle) Radial() geom.RadialFrame { return geom.Radial(p.Pos) }

// PolarRadius is the distance of the disk's center from the origin.
func (p *Particle) PolarRadius() float64 { return p.Radial().R }

// NormalVelocity is the outward radial component of the disk's velocity.
func (p *Particle) NormalVelocity() float64 {
	vn, _ := p.Radial().Decompose(p.Vel)
	return vn
}

// Advance moves the disk along a straight line for a time dt.
func (p *Particle) Advance(dt float64) {
	p.Pos[0] += p.Vel[0] * dt
	p.Pos[1] += p.Vel[1] * dt
}

// Overlaps returns true if the two disks intersect. Disks which are exactly
// in contact do not overlap.
func (p *Particle) Overlaps(q *Particle) bool {
	dr := q.Pos.Sub(p.Pos)
	sigma := p.Radius + q.Radius
	return dr.Dot(dr) < sigma*sigma
}

// KineticEnergy returns m v^2 / 2.
func (p *Particle) KineticEnergy() float64 {
	return 0.5 * p.Mass * p.Vel.Dot(p.Vel)
}

// Momentum returns m v.
func (p *Particle) Momentum() mgl64.Vec2 { return p.Vel.Mul(p.Mass) }

func (p Particle) String() string {
	return fmt.Sprintf(
		"Particle{id=%d, pos=(%g, %g), vel=(%g, %g), r=%g, m=%g, n=%d}",
		p.ID, p.Pos[0], p.Pos[1], p.Vel[0], p.Vel[1],
		p.Radius, p.Mass, p.Collisions,
	)
}
