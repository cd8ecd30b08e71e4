/*package sim runs the event-driven simulation loop.

A Simulation owns the particle store and the event schedule. Each step pops
the earliest prediction, drops it if it is stale, advances every particle to
the instant of contact, writes the state to a Sink, applies the collision,
and re-predicts. The loop ends when the schedule is empty or the next event
lies beyond the horizon.
*/
package sim

import (
	"fmt"
	"log"
	"math"
	"runtime"
	"strings"

	"github.com/TheJohnFaraday/SystemSimulations-TP3/collide"
	"github.com/TheJohnFaraday/SystemSimulations-TP3/event"
	"github.com/TheJohnFaraday/SystemSimulations-TP3/particle"
)

// overlapTol is the relative slack allowed in the initial placement checks.
const overlapTol = 1e-12

// State is the stage of a Simulation's life.
type State int

const (
	Initialized State = iota
	Running
	Finished
)

func (s State) String() string {
	switch s {
	case Initialized:
		return "INITIALIZED"
	case Running:
		return "RUNNING"
	case Finished:
		return "FINISHED"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Config contains the parameters of a run which are not particle state.
type Config struct {
	Scene    collide.Scene
	Horizon  float64
	Strategy collide.Strategy
	// If OutputEvery > 1, only every OutputEvery-th accepted event produces a
	// frame.
	OutputEvery int
	// Seed is only reported in the Header.
	Seed int64
	// Log enables progress messages through the log package.
	Log bool
}

// Stats counts what happened to the events popped from the schedule.
type Stats struct {
	Accepted     int // applied
	Stale        int // discarded, a referenced particle had collided
	Simultaneous int // discarded, zero time step
	Late         int // applied without advancing time
	Frames       int

	Wall, Obstacle, Pair int
}

// ValidationError lists every problem found with a configuration.
type ValidationError struct {
	Problems []string
}

func (err *ValidationError) Error() string {
	return fmt.Sprintf(
		"Invalid simulation configuration:\n  %s",
		strings.Join(err.Problems, "\n  "),
	)
}

// Simulation is the event loop.
type Simulation struct {
	con   Config
	store *particle.Store
	sched *event.Schedule
	proc  *collide.Processor
	sink  Sink

	state       State
	now         float64
	sinceOutput int
	stats       Stats

	buf     []particle.Particle
	nextLog float64
	ms      runtime.MemStats
}

// New checks the configuration and initial state and creates a Simulation.
// Any problem is reported as a *ValidationError.
func New(con Config, ps []particle.Particle, sink Sink) (*Simulation, error) {
	probs := check(&con, ps)
	store, err := particle.NewStore(ps)
	if err != nil {
		probs = append(probs, err.Error())
	}
	if sink == nil {
		probs = append(probs, "No Sink given.")
	}
	if len(probs) > 0 {
		return nil, &ValidationError{probs}
	}

	sched := event.NewSchedule(4 * len(ps))
	sim := &Simulation{
		con:   con,
		store: store,
		sched: sched,
		proc:  collide.NewProcessor(con.Scene, store, sched, con.Strategy),
		sink:  sink,
		state: Initialized,
	}
	return sim, nil
}

func check(con *Config, ps []particle.Particle) []string {
	probs := con.Scene.Check()
	if !(con.Horizon > 0) || math.IsInf(con.Horizon, 0) {
		probs = append(probs, fmt.Sprintf(
			"Horizon must be positive and finite, but is %g.", con.Horizon,
		))
	}
	if con.OutputEvery < 0 {
		probs = append(probs, fmt.Sprintf(
			"OutputEvery must be non-negative, but is %d.", con.OutputEvery,
		))
	}
	if con.Strategy != collide.Lazy && con.Strategy != collide.Rebuild {
		probs = append(probs, fmt.Sprintf(
			"Unknown strategy %s.", con.Strategy,
		))
	}

	sc := &con.Scene
	for i := range ps {
		p := &ps[i]
		if !(p.Radius > 0) {
			probs = append(probs, fmt.Sprintf(
				"Particle %d has non-positive radius %g.", p.ID, p.Radius,
			))
		}
		if !(p.Mass > 0) {
			probs = append(probs, fmt.Sprintf(
				"Particle %d has non-positive mass %g.", p.ID, p.Mass,
			))
		}
		if !finite(p.Pos[0], p.Pos[1], p.Vel[0], p.Vel[1]) {
			probs = append(probs, fmt.Sprintf(
				"Particle %d has a non-finite position or velocity.", p.ID,
			))
			continue
		}

		r := p.PolarRadius()
		if sc.ContainerRadius > 0 &&
			r+p.Radius > sc.ContainerRadius*(1+overlapTol) {
			probs = append(probs, fmt.Sprintf(
				"Particle %d at r = %g crosses the wall.", p.ID, r,
			))
		}
		if !sc.MassiveObstacle() &&
			r-p.Radius < sc.ObstacleRadius*(1-overlapTol) {
			probs = append(probs, fmt.Sprintf(
				"Particle %d at r = %g overlaps the obstacle.", p.ID, r,
			))
		}
	}

	for i := range ps {
		for j := i + 1; j < len(ps); j++ {
			if overlapping(&ps[i], &ps[j]) {
				probs = append(probs, fmt.Sprintf(
					"Particles %d and %d overlap.", ps[i].ID, ps[j].ID,
				))
			}
		}
	}

	return probs
}

func finite(xs ...float64) bool {
	for _, x := range xs {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func overlapping(p, q *particle.Particle) bool {
	dr := q.Pos.Sub(p.Pos)
	sigma := (p.Radius + q.Radius) * (1 - overlapTol)
	return dr.Dot(dr) < sigma*sigma
}

// Now returns the current simulation time.
func (sim *Simulation) Now() float64 { return sim.now }

// State returns the current stage of the simulation.
func (sim *Simulation) State() State { return sim.state }

// Stats returns the event counters so far.
func (sim *Simulation) Stats() Stats { return sim.stats }

// Particles returns a copy of every particle, in ID order.
func (sim *Simulation) Particles() []particle.Particle {
	return sim.store.Snapshot(nil)
}

// Particle returns a copy of a single particle.
func (sim *Simulation) Particle(id int) (particle.Particle, bool) {
	return sim.store.Get(id)
}

// Pending returns the scheduled events which are still valid, in order.
func (sim *Simulation) Pending() []event.Event {
	all := sim.sched.Events()
	out := make([]event.Event, 0, len(all))
	for _, e := range all {
		if sim.proc.Valid(e) {
			out = append(out, e)
		}
	}
	return out
}

// Run steps the simulation until it finishes.
func (sim *Simulation) Run() error {
	for {
		more, err := sim.Step()
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
}

// Step pops a single event from the schedule and handles it. It returns false
// once the simulation has finished.
func (sim *Simulation) Step() (bool, error) {
	switch sim.state {
	case Finished:
		return false, nil
	case Initialized:
		if err := sim.start(); err != nil {
			return false, sim.abort(err)
		}
	}

	if sim.now >= sim.con.Horizon {
		return false, sim.finish()
	}
	e, ok := sim.sched.Pop()
	if !ok || e.Time > sim.con.Horizon {
		return false, sim.finish()
	}

	if !sim.proc.Valid(e) {
		sim.stats.Stale++
		return true, nil
	}

	dt := e.Time - sim.now
	switch {
	case dt == 0:
		sim.stats.Simultaneous++
		return true, nil
	case dt > 0:
		sim.store.Advance(dt)
		sim.now = e.Time
	default:
		sim.stats.Late++
	}

	sim.sinceOutput++
	if sim.con.OutputEvery <= 1 || sim.sinceOutput >= sim.con.OutputEvery {
		if err := sim.emitFrame(); err != nil {
			return false, sim.abort(err)
		}
	}

	out, ok := sim.proc.Resolve(e)
	if !ok {
		sim.stats.Stale++
		return true, nil
	}
	ids := make([]int, len(out.Updated))
	for i := range out.Updated {
		sim.store.Set(out.Updated[i])
		ids[i] = out.Updated[i].ID
	}
	sim.count(e)

	if err := sim.sink.Event(sim.eventRecord(e, out.Impulse)); err != nil {
		return false, sim.abort(err)
	}

	sim.proc.Repredict(ids, sim.now)
	sim.logProgress()
	return true, nil
}

func (sim *Simulation) start() error {
	sim.state = Running
	sim.nextLog = 0

	err := sim.sink.Header(Header{
		ContainerRadius:    sim.con.Scene.ContainerRadius,
		ObstacleRadius:     sim.con.Scene.ObstacleRadius,
		ObstacleMass:       sim.con.Scene.ObstacleMass,
		Particles:          sim.store.Len(),
		Seed:               sim.con.Seed,
		InternalCollisions: sim.con.Scene.InternalCollisions,
		Horizon:            sim.con.Horizon,
	})
	if err != nil {
		return err
	}

	sim.proc.Seed(sim.now)
	if sim.con.Log {
		log.Printf(
			"Seeded %d predictions for %d particles (%s strategy).",
			sim.sched.Len(), sim.store.Len(), sim.con.Strategy,
		)
	}
	return sim.emitFrame()
}

func (sim *Simulation) emitFrame() error {
	sim.buf = sim.store.Snapshot(sim.buf[:0])
	f := Frame{Time: sim.now, Records: make([]Record, len(sim.buf))}
	for i := range sim.buf {
		f.Records[i] = NewRecord(sim.now, &sim.buf[i])
	}
	sim.sinceOutput = 0
	sim.stats.Frames++
	return sim.sink.Frame(f)
}

func (sim *Simulation) eventRecord(e event.Event, impulse float64) EventRecord {
	p, _ := sim.store.Get(e.Subject)
	r := p.PolarRadius()
	return EventRecord{
		Time:               sim.now,
		Type:               e.Type,
		Subject:            e.Subject,
		Other:              e.Other,
		Impulse:            impulse,
		DistanceToObstacle: r - (p.Radius + sim.con.Scene.ObstacleRadius),
		DistanceToWall:     sim.con.Scene.ContainerRadius - (r + p.Radius),
	}
}

func (sim *Simulation) count(e event.Event) {
	sim.stats.Accepted++
	switch e.Type {
	case event.Wall:
		sim.stats.Wall++
	case event.Obstacle:
		sim.stats.Obstacle++
	case event.Particle:
		sim.stats.Pair++
	}
}

// finish writes the final state if thinning skipped it and closes the sink.
func (sim *Simulation) finish() error {
	sim.state = Finished

	if sim.sinceOutput > 0 {
		if err := sim.emitFrame(); err != nil {
			return sim.abort(err)
		}
	}

	if sim.con.Log {
		st := &sim.stats
		log.Printf(
			"Finished at t = %.6g: %d events applied (%d wall, %d obstacle, "+
				"%d pair), %d stale, %d simultaneous, %d late, %d frames.",
			sim.now, st.Accepted, st.Wall, st.Obstacle, st.Pair,
			st.Stale, st.Simultaneous, st.Late, st.Frames,
		)
		runtime.ReadMemStats(&sim.ms)
		log.Printf(
			"Alloc: %5d MB, Sys: %5d MB",
			sim.ms.Alloc>>20, sim.ms.Sys>>20,
		)
	}

	return sim.sink.Finish()
}

// abort ends the run after a sink failure.
func (sim *Simulation) abort(err error) error {
	sim.state = Finished
	if ferr := sim.sink.Finish(); ferr != nil {
		return ferr
	}
	return err
}

func (sim *Simulation) logProgress() {
	if !sim.con.Log || sim.now < sim.nextLog {
		return
	}
	log.Printf(
		"t = %.6g/%.6g, %d events applied, %d stale, %d scheduled.",
		sim.now, sim.con.Horizon,
		sim.stats.Accepted, sim.stats.Stale, sim.sched.Len(),
	)
	for sim.nextLog <= sim.now {
		sim.nextLog += sim.con.Horizon / 10
	}
}
