/*package generate places the initial disks of a simulation.

Positions are drawn by rejection sampling in the annulus between the obstacle
and the wall. Every disk receives the same speed in a uniformly random
direction. For a given Seed the output is always the same.
*/
package generate

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/TheJohnFaraday/SystemSimulations-TP3/particle"
)

// DefaultMaxAttempts is the number of positions tried for a single disk
// before giving up.
const DefaultMaxAttempts = 1 << 16

// Settings are the parameters of a random initial state.
type Settings struct {
	N               int
	Radius, Mass    float64
	InitialVelocity float64
	Seed            int64
	ContainerRadius float64
	ObstacleRadius  float64
	ObstacleMass    float64
	// MaxAttempts <= 0 means DefaultMaxAttempts.
	MaxAttempts int
}

// SettingsError lists every invalid field of a Settings.
type SettingsError struct {
	Problems []string
}

func (err *SettingsError) Error() string {
	return fmt.Sprintf(
		"Invalid generator settings:\n  %s", strings.Join(err.Problems, "\n  "),
	)
}

// Check returns a *SettingsError if any field is invalid and nil otherwise.
func (s *Settings) Check() error {
	probs := []string{}
	if s.N < 0 {
		probs = append(probs, fmt.Sprintf("N must be non-negative, but is %d.", s.N))
	}
	if !(s.Radius > 0) {
		probs = append(probs, fmt.Sprintf("Radius must be positive, but is %g.", s.Radius))
	}
	if !(s.Mass > 0) {
		probs = append(probs, fmt.Sprintf("Mass must be positive, but is %g.", s.Mass))
	}
	if s.InitialVelocity < 0 || math.IsNaN(s.InitialVelocity) {
		probs = append(probs, fmt.Sprintf(
			"InitialVelocity must be non-negative, but is %g.", s.InitialVelocity,
		))
	}
	if s.ObstacleRadius < 0 {
		probs = append(probs, fmt.Sprintf(
			"ObstacleRadius must be non-negative, but is %g.", s.ObstacleRadius,
		))
	}
	if s.ObstacleMass < 0 {
		probs = append(probs, fmt.Sprintf(
			"ObstacleMass must be non-negative, but is %g.", s.ObstacleMass,
		))
	}
	if s.ObstacleRadius+2*s.Radius >= s.ContainerRadius {
		probs = append(probs, fmt.Sprintf(
			"A disk of radius %g does not fit between the obstacle (%g) and "+
				"the wall (%g).", s.Radius, s.ObstacleRadius, s.ContainerRadius,
		))
	}

	if len(probs) > 0 {
		return &SettingsError{probs}
	}
	return nil
}

// Particles returns the N disks described by s, with IDs 0 to N-1. If
// ObstacleMass > 0, the obstacle is appended as a resting disk with ID N at
// the origin.
func Particles(s Settings) ([]particle.Particle, error) {
	if err := s.Check(); err != nil {
		return nil, err
	}
	maxAttempts := s.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}

	gen := rand.New(rand.NewSource(s.Seed))
	ps := make([]particle.Particle, 0, s.N+1)

	rMin := s.ObstacleRadius + s.Radius
	rMax := s.ContainerRadius - s.Radius

	for id := 0; id < s.N; id++ {
		p := particle.Particle{ID: id, Radius: s.Radius, Mass: s.Mass}

		placed := false
		for attempt := 0; attempt < maxAttempts; attempt++ {
			angle := gen.Float64() * 2 * math.Pi
			r := rMin + gen.Float64()*(rMax-rMin)
			p.Pos = mgl64.Vec2{r * math.Cos(angle), r * math.Sin(angle)}

			if r := p.PolarRadius(); r < rMin || r > rMax {
				continue
			}
			if !overlapsAny(&p, ps) {
				placed = true
				break
			}
		}
		if !placed {
			return nil, fmt.Errorf(
				"Could not place disk %d of %d after %d attempts. The "+
					"container is too crowded.", id+1, s.N, maxAttempts,
			)
		}

		angle := gen.Float64() * 2 * math.Pi
		p.Vel = mgl64.Vec2{
			s.InitialVelocity * math.Cos(angle),
			s.InitialVelocity * math.Sin(angle),
		}
		ps = append(ps, p)
	}

	if s.ObstacleMass > 0 {
		ps = append(ps, Obstacle(s.N, s.ObstacleRadius, s.ObstacleMass))
	}

	return ps, nil
}

// Obstacle returns the central obstacle as a resting disk.
func Obstacle(id int, radius, mass float64) particle.Particle {
	return particle.Particle{ID: id, Radius: radius, Mass: mass}
}

func overlapsAny(p *particle.Particle, ps []particle.Particle) bool {
	for i := range ps {
		if ps[i].Overlaps(p) {
			return true
		}
	}
	return false
}
