/*package analyze turns event logs into the observables of a run: pressure on
the container and the obstacle over time, event counts, and the number of
distinct disks that have reached the obstacle.
*/
package analyze

import (
	"fmt"
	"io"
	"math"
	"sort"

	"github.com/TheJohnFaraday/SystemSimulations-TP3/collide"
	"github.com/TheJohnFaraday/SystemSimulations-TP3/event"
	"github.com/TheJohnFaraday/SystemSimulations-TP3/sim"
)

// Bin is the average pressure over the interval [Start, End).
type Bin struct {
	Start, End          float64
	Container, Obstacle float64
	// Impulse delivered to each boundary during the interval.
	ContainerImpulse, ObstacleImpulse float64
}

// Pressure splits [0, horizon] into n equal intervals and computes the
// pressure on each boundary as the total impulse it received divided by the
// interval's length and the boundary's perimeter. Events outside of
// [0, horizon] are ignored.
//
// If obstacleID >= 0, collisions with that disk are counted as obstacle hits,
// which is the case when the obstacle was simulated as a moving disk.
func Pressure(
	events []sim.EventRecord, sc collide.Scene, horizon float64,
	n, obstacleID int,
) ([]Bin, error) {
	if n <= 0 {
		return nil, fmt.Errorf("Bin count must be positive, but is %d.", n)
	} else if !(horizon > 0) || math.IsInf(horizon, 0) {
		return nil, fmt.Errorf("Horizon must be positive, but is %g.", horizon)
	} else if !(sc.ContainerRadius > 0) {
		return nil, fmt.Errorf(
			"ContainerRadius must be positive, but is %g.", sc.ContainerRadius,
		)
	}

	dt := horizon / float64(n)
	bins := make([]Bin, n)
	for i := range bins {
		bins[i].Start = dt * float64(i)
		bins[i].End = dt * float64(i+1)
	}
	bins[n-1].End = horizon

	for i := range events {
		e := &events[i]
		if e.Time < 0 || e.Time > horizon {
			continue
		}
		idx := int(e.Time / dt)
		if idx >= n {
			idx = n - 1
		}

		switch {
		case e.Type == event.Wall:
			bins[idx].ContainerImpulse += e.Impulse
		case e.Type == event.Obstacle, hitsObstacle(e, obstacleID):
			bins[idx].ObstacleImpulse += e.Impulse
		}
	}

	containerPerim := 2 * math.Pi * sc.ContainerRadius
	obstaclePerim := 2 * math.Pi * sc.ObstacleRadius
	for i := range bins {
		b := &bins[i]
		width := b.End - b.Start
		b.Container = b.ContainerImpulse / (width * containerPerim)
		if obstaclePerim > 0 {
			b.Obstacle = b.ObstacleImpulse / (width * obstaclePerim)
		}
	}

	return bins, nil
}

func hitsObstacle(e *sim.EventRecord, obstacleID int) bool {
	return obstacleID >= 0 && e.Type == event.Particle &&
		(e.Subject == obstacleID || e.Other == obstacleID)
}

// Counts returns the number of events of each type.
func Counts(events []sim.EventRecord) map[event.Type]int {
	counts := map[event.Type]int{
		event.Wall: 0, event.Obstacle: 0, event.Particle: 0,
	}
	for i := range events {
		counts[events[i].Type]++
	}
	return counts
}

// FirstHits returns, in increasing order, the time at which each distinct
// disk first reached the obstacle. Events must be in time order.
func FirstHits(events []sim.EventRecord, obstacleID int) []float64 {
	seen := map[int]bool{}
	ts := []float64{}
	for i := range events {
		e := &events[i]

		id := -1
		switch {
		case e.Type == event.Obstacle:
			id = e.Subject
		case hitsObstacle(e, obstacleID):
			id = e.Subject
			if id == obstacleID {
				id = e.Other
			}
		default:
			continue
		}

		if !seen[id] {
			seen[id] = true
			ts = append(ts, e.Time)
		}
	}
	sort.Float64s(ts)
	return ts
}

// WriteBins writes bins as a whitespace-separated table.
func WriteBins(w io.Writer, bins []Bin) error {
	_, err := fmt.Fprintln(w, "# t_start t_end p_container p_obstacle")
	if err != nil {
		return err
	}
	for _, b := range bins {
		_, err := fmt.Fprintf(
			w, "%.8g %.8g %.8g %.8g\n", b.Start, b.End, b.Container, b.Obstacle,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
