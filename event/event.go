/*package event contains predicted contacts and the time-ordered schedule that
holds them.

Events are never removed from a Schedule when they go out of date. The
collision counts recorded at prediction time let the consumer recognize and
drop them when they are popped.
*/
package event

import (
	"fmt"
)

// Type is the kind of body a particle is predicted to hit.
type Type int

const (
	Wall Type = iota
	Obstacle
	Particle
)

func (t Type) String() string {
	switch t {
	case Wall:
		return "WALL"
	case Obstacle:
		return "OBSTACLE"
	case Particle:
		return "PARTICLE"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// NoParticle is the Other field of boundary events.
const NoParticle = -1

// Event is a predicted contact. It is a value type and is never modified after
// creation.
type Event struct {
	Time float64
	Type Type

	Subject, SubjectCount int
	// Only set for Particle events.
	Other, OtherCount int
}

// NewBoundary creates a Wall or Obstacle event for the given particle.
func NewBoundary(t float64, typ Type, subject, count int) Event {
	return Event{
		Time: t, Type: typ, Subject: subject, SubjectCount: count,
		Other: NoParticle,
	}
}

// NewPair creates a Particle event between two particles.
func NewPair(t float64, subject, count, other, otherCount int) Event {
	return Event{
		Time: t, Type: Particle, Subject: subject, SubjectCount: count,
		Other: other, OtherCount: otherCount,
	}
}

// IDs returns the particle IDs referenced by the event.
func (e Event) IDs() []int {
	if e.Type == Particle {
		return []int{e.Subject, e.Other}
	}
	return []int{e.Subject}
}

// Less orders events by time. Simultaneous events are ordered by subject ID,
// then type, then partner ID, then the recorded collision counts, so that any
// two distinct events have a fixed order.
func Less(a, b *Event) bool {
	switch {
	case a.Time != b.Time:
		return a.Time < b.Time
	case a.Subject != b.Subject:
		return a.Subject < b.Subject
	case a.Type != b.Type:
		return a.Type < b.Type
	case a.Other != b.Other:
		return a.Other < b.Other
	case a.SubjectCount != b.SubjectCount:
		return a.SubjectCount < b.SubjectCount
	}
	return a.OtherCount < b.OtherCount
}

func (e Event) String() string {
	if e.Type == Particle {
		return fmt.Sprintf(
			"%s{t=%g, %d#%d, %d#%d}", e.Type, e.Time,
			e.Subject, e.SubjectCount, e.Other, e.OtherCount,
		)
	}
	return fmt.Sprintf(
		"%s{t=%g, %d#%d}", e.Type, e.Time, e.Subject, e.SubjectCount,
	)
}
