package geom

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Never is the contact time of two bodies which never touch.
var Never = math.Inf(+1)

// Collides returns true if t is a real contact time.
func Collides(t float64) bool { return !math.IsInf(t, +1) && !math.IsNaN(t) }

// TimeToWall returns the time until a disk of the given radius at pos, moving
// with velocity vel, touches a container wall of radius containerRadius. It is
// the later root of |pos + vel t| = containerRadius - radius, so the disk
// reaches the wall along its chord whichever way it is moving. Only a disk at
// rest never touches the wall.
func TimeToWall(pos, vel mgl64.Vec2, radius, containerRadius float64) float64 {
	speed := vel.Len()
	if speed == 0 {
		return Never
	}
	u := vel.Mul(1 / speed)

	l := containerRadius - radius
	b := pos.Dot(u)
	c := pos.Dot(pos) - l*l
	// d < 0 only when rounding has left the disk just outside the wall.
	d := math.Max(b*b-c, 0)

	var s float64
	if b > 0 {
		s = -c / (b + math.Sqrt(d))
	} else {
		s = math.Sqrt(d) - b
	}
	return s / speed
}

// TimeToObstacle returns the time until a disk touches the central obstacle.
// It is the earlier root of |pos + vel t| = obstacleRadius + radius. Disks
// moving away from the center and disks whose path passes the obstacle never
// touch it.
func TimeToObstacle(pos, vel mgl64.Vec2, radius, obstacleRadius float64) float64 {
	speed := vel.Len()
	if speed == 0 {
		return Never
	}
	u := vel.Mul(1 / speed)

	b := pos.Dot(u)
	if b >= 0 {
		return Never
	}
	l := obstacleRadius + radius
	c := pos.Dot(pos) - l*l
	d := b*b - c
	if d < 0 {
		return Never // passes the obstacle
	}

	return c / (math.Sqrt(d) - b) / speed
}

// TimeToContact returns the time until two disks whose centers are separated
// by dr = pos2 - pos1 and whose relative velocity is dv = vel2 - vel1 come
// within sigma = r1 + r2 of each other. It is the smaller root of
// |dr + dv t|^2 = sigma^2.
func TimeToContact(dr, dv mgl64.Vec2, sigma float64) float64 {
	dvdr := dr.Dot(dv)
	if dvdr >= 0 {
		return Never // separating
	}

	dvdv := dv.Dot(dv)
	drdr := dr.Dot(dr)
	d := dvdr*dvdr - dvdv*(drdr-sigma*sigma)
	if d < 0 {
		return Never // trajectories miss
	}

	return -(dvdr + math.Sqrt(d)) / dvdv
}
