package collide

import (
	"math"

	"github.com/TheJohnFaraday/SystemSimulations-TP3/event"
	"github.com/TheJohnFaraday/SystemSimulations-TP3/geom"
	"github.com/TheJohnFaraday/SystemSimulations-TP3/particle"
)

// Processor enumerates future contacts and computes the effect of the ones
// that happen.
type Processor struct {
	scene    Scene
	store    *particle.Store
	sched    *event.Schedule
	strategy Strategy
}

// Outcome is the result of resolving an event: copies of the particles whose
// velocities changed, and the magnitude of the impulse they received.
type Outcome struct {
	Updated []particle.Particle
	Impulse float64
}

// NewProcessor creates a Processor which reads from store and writes
// predictions to sched.
func NewProcessor(
	scene Scene, store *particle.Store, sched *event.Schedule, strategy Strategy,
) *Processor {
	return &Processor{
		scene: scene, store: store, sched: sched, strategy: strategy,
	}
}

// Strategy returns the re-prediction strategy used by the processor.
func (proc *Processor) Strategy() Strategy { return proc.strategy }

// Seed pushes every future contact of every particle, assuming the current
// time is now. Each pair of particles is only considered once.
func (proc *Processor) Seed(now float64) {
	ids := proc.store.IDs()
	for i, id := range ids {
		p, _ := proc.store.Get(id)
		proc.predictBoundaries(&p, now)

		if !proc.scene.InternalCollisions {
			continue
		}
		for _, otherID := range ids[i+1:] {
			q, _ := proc.store.Get(otherID)
			proc.predictPair(&p, &q, now)
		}
	}
}

// Predict pushes every future contact of a single particle: the wall, the
// obstacle, and every other particle.
func (proc *Processor) Predict(id int, now float64) {
	proc.predict(id, now, nil)
}

func (proc *Processor) predict(id int, now float64, done []int) {
	p, ok := proc.store.Get(id)
	if !ok {
		return
	}
	proc.predictBoundaries(&p, now)

	if !proc.scene.InternalCollisions {
		return
	}
	for _, otherID := range proc.store.IDs() {
		if otherID == id || containsID(done, otherID) {
			continue
		}
		q, _ := proc.store.Get(otherID)
		proc.predictPair(&p, &q, now)
	}
}

func containsID(ids []int, id int) bool {
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}

func (proc *Processor) predictBoundaries(p *particle.Particle, now float64) {
	// A massive obstacle is a particle and is found by predictPair.
	if !proc.scene.MassiveObstacle() {
		to := geom.TimeToObstacle(p.Pos, p.Vel, p.Radius, proc.scene.ObstacleRadius)
		if geom.Collides(to) {
			// The wall lies behind the obstacle.
			proc.sched.Push(event.NewBoundary(
				now+to, event.Obstacle, p.ID, p.Collisions,
			))
			return
		}
	}

	tw := geom.TimeToWall(p.Pos, p.Vel, p.Radius, proc.scene.ContainerRadius)
	if geom.Collides(tw) {
		proc.sched.Push(event.NewBoundary(now+tw, event.Wall, p.ID, p.Collisions))
	}
}

func (proc *Processor) predictPair(p, q *particle.Particle, now float64) {
	t := geom.TimeToContact(q.Pos.Sub(p.Pos), q.Vel.Sub(p.Vel), p.Radius+q.Radius)
	if geom.Collides(t) {
		proc.sched.Push(event.NewPair(
			now+t, p.ID, p.Collisions, q.ID, q.Collisions,
		))
	}
}

// Valid returns true if every particle referenced by e still exists and has
// not collided since e was predicted.
func (proc *Processor) Valid(e event.Event) bool {
	p, ok := proc.store.Get(e.Subject)
	if !ok || p.Collisions != e.SubjectCount {
		return false
	}
	if e.Type != event.Particle {
		return true
	}
	q, ok := proc.store.Get(e.Other)
	return ok && q.Collisions == e.OtherCount
}

// Resolve computes the state of the particles involved in e immediately after
// the contact. The particles must already have been advanced to the contact.
// ok is false if a referenced particle does not exist.
func (proc *Processor) Resolve(e event.Event) (out Outcome, ok bool) {
	p, ok := proc.store.Get(e.Subject)
	if !ok {
		return Outcome{}, false
	}

	switch e.Type {
	case event.Wall, event.Obstacle:
		f := p.Radial()
		vn, _ := f.Decompose(p.Vel)
		p.Vel = geom.Reflect(f, p.Vel)
		p.Collisions++
		return Outcome{
			Updated: []particle.Particle{p},
			Impulse: 2 * p.Mass * math.Abs(vn),
		}, true

	case event.Particle:
		q, ok := proc.store.Get(e.Other)
		if !ok {
			return Outcome{}, false
		}
		J, mag := geom.Impulse(
			q.Pos.Sub(p.Pos), q.Vel.Sub(p.Vel),
			p.Mass, q.Mass, p.Radius+q.Radius,
		)
		p.Vel[0] += J[0] / p.Mass
		p.Vel[1] += J[1] / p.Mass
		q.Vel[0] -= J[0] / q.Mass
		q.Vel[1] -= J[1] / q.Mass
		p.Collisions++
		q.Collisions++
		return Outcome{Updated: []particle.Particle{p, q}, Impulse: mag}, true
	}

	return Outcome{}, false
}

// Repredict brings the schedule up to date after the particles in ids changed
// velocity at time now.
func (proc *Processor) Repredict(ids []int, now float64) {
	switch proc.strategy {
	case Rebuild:
		proc.sched.Clear()
		proc.Seed(now)
	default:
		for i, id := range ids {
			proc.predict(id, now, ids[:i])
		}
	}
}
