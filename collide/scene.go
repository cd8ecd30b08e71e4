/*package collide predicts and resolves contacts between disks, the container
wall, and the central obstacle.

A Processor reads particle state from a particle.Store, pushes predictions
into an event.Schedule, and returns the post-collision state of the particles
an event touches. It never writes to the Store itself.
*/
package collide

import (
	"fmt"
	"strings"
)

// Scene contains the static parameters of the container.
type Scene struct {
	ContainerRadius float64
	ObstacleRadius  float64
	// If ObstacleMass > 0, the obstacle is an ordinary particle in the store
	// and is not treated as a fixed boundary.
	ObstacleMass       float64
	InternalCollisions bool
}

// MassiveObstacle returns true if the obstacle is simulated as a particle.
func (sc *Scene) MassiveObstacle() bool { return sc.ObstacleMass > 0 }

// Check returns a description of every invalid field in the scene.
func (sc *Scene) Check() []string {
	probs := []string{}
	if sc.ContainerRadius <= 0 {
		probs = append(probs, fmt.Sprintf(
			"ContainerRadius must be positive, but is %g.", sc.ContainerRadius,
		))
	}
	if sc.ObstacleRadius < 0 {
		probs = append(probs, fmt.Sprintf(
			"ObstacleRadius must be non-negative, but is %g.", sc.ObstacleRadius,
		))
	} else if sc.ContainerRadius > 0 && sc.ObstacleRadius >= sc.ContainerRadius {
		probs = append(probs, fmt.Sprintf(
			"ObstacleRadius, %g, must be smaller than ContainerRadius, %g.",
			sc.ObstacleRadius, sc.ContainerRadius,
		))
	}
	if sc.ObstacleMass < 0 {
		probs = append(probs, fmt.Sprintf(
			"ObstacleMass must be non-negative, but is %g.", sc.ObstacleMass,
		))
	}
	return probs
}

// Strategy is the way predictions are brought up to date after a collision.
type Strategy int

const (
	// Lazy re-predicts only the particles whose velocities changed and leaves
	// stale events in the schedule to be discarded when they are popped.
	Lazy Strategy = iota
	// Rebuild clears the schedule and re-predicts every particle.
	Rebuild
)

func (s Strategy) String() string {
	switch s {
	case Lazy:
		return "Lazy"
	case Rebuild:
		return "Rebuild"
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// ParseStrategy converts a strategy name into a Strategy. Matching is case
// insensitive.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "lazy", "":
		return Lazy, nil
	case "rebuild":
		return Rebuild, nil
	}
	return Lazy, fmt.Errorf(
		"Strategy '%s' not recognized. Must be one of [Lazy | Rebuild].", name,
	)
}
