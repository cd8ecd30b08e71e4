package sim

import (
	"math"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TheJohnFaraday/SystemSimulations-TP3/collide"
	"github.com/TheJohnFaraday/SystemSimulations-TP3/event"
	"github.com/TheJohnFaraday/SystemSimulations-TP3/generate"
	"github.com/TheJohnFaraday/SystemSimulations-TP3/particle"
)

func disk(id int, x, y, vx, vy float64) particle.Particle {
	return particle.Particle{
		ID: id, Radius: 0.01, Mass: 1,
		Pos: mgl64.Vec2{x, y}, Vel: mgl64.Vec2{vx, vy},
	}
}

func testConfig(horizon float64, strat collide.Strategy) Config {
	return Config{
		Scene: collide.Scene{
			ContainerRadius: 1, ObstacleRadius: 0.1, InternalCollisions: true,
		},
		Horizon:  horizon,
		Strategy: strat,
	}
}

func run(t *testing.T, con Config, ps ...particle.Particle) (*Simulation, *Recorder) {
	rec := &Recorder{}
	sim, err := New(con, ps, rec)
	require.NoError(t, err)
	require.NoError(t, sim.Run())
	return sim, rec
}

// Two disks approach head on with the obstacle out of the way.
func TestHeadOnPair(t *testing.T) {
	con := testConfig(0.5, collide.Lazy)
	con.Scene.ObstacleMass = 1

	sim, rec := run(t, con, disk(0, -0.02, 0, 1, 0), disk(1, 0.02, 0, -1, 0))

	assert.Equal(t, Finished, sim.State())
	assert.True(t, rec.Finished)
	assert.InDelta(t, 0.01, sim.Now(), 1e-12)

	st := sim.Stats()
	assert.Equal(t, 1, st.Accepted)
	assert.Equal(t, 1, st.Pair)
	assert.Equal(t, 0, st.Wall+st.Obstacle)

	ps := sim.Particles()
	require.Len(t, ps, 2)
	assert.InDelta(t, -1, ps[0].Vel[0], 1e-12)
	assert.InDelta(t, 1, ps[1].Vel[0], 1e-12)
	assert.InDelta(t, -0.01, ps[0].Pos[0], 1e-12)
	assert.InDelta(t, 0.01, ps[1].Pos[0], 1e-12)
	assert.Equal(t, 1, ps[0].Collisions)
	assert.Equal(t, 1, ps[1].Collisions)

	for _, e := range sim.Pending() {
		assert.NotEqual(t, event.Particle, e.Type, "%s", e)
	}

	require.Len(t, rec.Events, 1)
	ev := rec.Events[0]
	assert.Equal(t, event.Particle, ev.Type)
	assert.Equal(t, 0, ev.Subject)
	assert.Equal(t, 1, ev.Other)
	assert.InDelta(t, 2, ev.Impulse, 1e-12)

	require.Len(t, rec.Frames, 2)
	assert.Equal(t, 0.0, rec.Frames[0].Time)
	assert.InDelta(t, 0.01, rec.Frames[1].Time, 1e-12)
	assert.InDelta(t, 1, rec.Frames[1].Records[0].Vx, 1e-12,
		"frames are written before the collision is applied")

	assert.Equal(t, 2, rec.Head.Particles)
	assert.Equal(t, 0.5, rec.Head.Horizon)
}

func TestWallAndObstacleBounces(t *testing.T) {
	con := testConfig(4.5, collide.Lazy)
	sim, rec := run(t, con, disk(0, 0.5, 0, 1, 0))

	times := []float64{0.49, 1.37, 2.25, 3.13, 4.01}
	types := []event.Type{
		event.Wall, event.Obstacle, event.Wall, event.Obstacle, event.Wall,
	}
	require.Len(t, rec.Events, len(times))
	for i := range times {
		assert.InDelta(t, times[i], rec.Events[i].Time, 1e-9, "%d)", i+1)
		assert.Equal(t, types[i], rec.Events[i].Type, "%d)", i+1)
		assert.InDelta(t, 2, rec.Events[i].Impulse, 1e-9, "%d)", i+1)
		assert.Equal(t, event.NoParticle, rec.Events[i].Other)
	}

	assert.InDelta(t, 0, rec.Events[0].DistanceToWall, 1e-9)
	assert.InDelta(t, 0, rec.Events[1].DistanceToObstacle, 1e-9)

	st := sim.Stats()
	assert.Equal(t, 3, st.Wall)
	assert.Equal(t, 2, st.Obstacle)
	assert.InDelta(t, 4.01, sim.Now(), 1e-9)
	assert.True(t, sim.Now() <= con.Horizon)
}

func TestHorizonBeforeFirstEvent(t *testing.T) {
	sim, rec := run(t, testConfig(0.2, collide.Lazy), disk(0, 0.5, 0, 1, 0))

	assert.Equal(t, 0.0, sim.Now())
	assert.Equal(t, 0, sim.Stats().Accepted)
	assert.Empty(t, rec.Events)
	require.Len(t, rec.Frames, 1)
	assert.InDelta(t, 0.5, rec.Frames[0].Records[0].X, 1e-15)
	assert.True(t, rec.Finished)

	more, err := sim.Step()
	assert.False(t, more)
	assert.NoError(t, err)
}

func TestOutputEvery(t *testing.T) {
	tests := []struct {
		every int
		times []float64
	}{
		{0, []float64{0, 0.49, 1.37, 2.25, 3.13, 4.01}},
		{1, []float64{0, 0.49, 1.37, 2.25, 3.13, 4.01}},
		{2, []float64{0, 1.37, 3.13, 4.01}},
		{5, []float64{0, 4.01}},
		{10, []float64{0, 4.01}},
	}

	for i, test := range tests {
		con := testConfig(4.5, collide.Lazy)
		con.OutputEvery = test.every
		_, rec := run(t, con, disk(0, 0.5, 0, 1, 0))

		assert.Len(t, rec.Events, 5, "%d)", i+1)
		require.Len(t, rec.Frames, len(test.times), "%d)", i+1)
		for j := range test.times {
			assert.InDelta(t, test.times[j], rec.Frames[j].Time, 1e-9,
				"%d) frame %d", i+1, j)
		}
	}

	// The final frame shows the state after the last collision.
	con := testConfig(4.5, collide.Lazy)
	con.OutputEvery = 2
	_, rec := run(t, con, disk(0, 0.5, 0, 1, 0))
	last := rec.Frames[len(rec.Frames)-1].Records[0]
	assert.InDelta(t, -1, last.Vx, 1e-12)
}

func TestStaleEventsAreSkipped(t *testing.T) {
	for _, strat := range []collide.Strategy{collide.Lazy, collide.Rebuild} {
		rec := &Recorder{}
		sim, err := New(
			testConfig(1, strat),
			[]particle.Particle{disk(0, 0.9, 0, 1, 0), disk(1, 0.5, 0, 2, 0)},
			rec,
		)
		require.NoError(t, err)

		for {
			before := sim.Stats()
			now, ps := sim.Now(), sim.Particles()

			more, err := sim.Step()
			require.NoError(t, err)
			if !more {
				break
			}

			if sim.Stats().Stale > before.Stale {
				assert.Equal(t, now, sim.Now(), strat.String())
				assert.Equal(t, ps, sim.Particles(), strat.String())
				assert.Equal(t, before.Accepted, sim.Stats().Accepted)
			}
		}

		if strat == collide.Lazy {
			assert.True(t, sim.Stats().Stale > 0, "no stale events popped")
		} else {
			assert.Equal(t, 0, sim.Stats().Stale)
		}
	}
}

func TestMassiveObstacle(t *testing.T) {
	con := testConfig(0.45, collide.Lazy)
	con.Scene.ObstacleMass = 1
	obstacle := generate.Obstacle(1, 0.1, 1)

	sim, rec := run(t, con, disk(0, -0.5, 0, 1, 0), obstacle)

	st := sim.Stats()
	assert.Equal(t, 0, st.Obstacle)
	assert.Equal(t, 1, st.Pair)
	require.Len(t, rec.Events, 1)
	assert.Equal(t, 1, rec.Events[0].Other)
	assert.InDelta(t, 0.39, rec.Events[0].Time, 1e-12)

	p, _ := sim.Particle(0)
	o, _ := sim.Particle(1)
	assert.InDelta(t, 0, p.Vel.Len(), 1e-12)
	assert.InDelta(t, 1, o.Vel[0], 1e-12)
	assert.InDelta(t, 0, o.Vel[1], 1e-12)
}

func gas(t testing.TB, n int, massive bool) []particle.Particle {
	s := generate.Settings{
		N: n, Radius: 0.02, Mass: 1, InitialVelocity: 1, Seed: 3,
		ContainerRadius: 1, ObstacleRadius: 0.1,
	}
	if massive {
		s.ObstacleMass = 5
	}
	ps, err := generate.Particles(s)
	require.NoError(t, err)
	return ps
}

func TestConservation(t *testing.T) {
	for _, strat := range []collide.Strategy{collide.Lazy, collide.Rebuild} {
		for _, massive := range []bool{false, true} {
			con := testConfig(2, strat)
			if massive {
				con.Scene.ObstacleMass = 5
			}
			ps := gas(t, 40, massive)
			e0 := 0.0
			for i := range ps {
				e0 += ps[i].KineticEnergy()
			}
			msg := strat.String()
			if massive {
				msg += " massive"
			}

			rec := &Recorder{}
			sim, err := New(con, ps, rec)
			require.NoError(t, err)
			for {
				accepted := sim.Stats().Accepted
				more, err := sim.Step()
				require.NoError(t, err)
				if !more {
					break
				}
				if sim.Stats().Accepted > accepted {
					assert.InEpsilon(t, e0, sim.store.KineticEnergy(), 1e-9,
						"%s: event %d", msg, accepted+1)
				}
			}

			assert.True(t, sim.Stats().Accepted > 20, msg)

			prev := 0.0
			for _, f := range rec.Frames {
				assert.True(t, f.Time >= prev, msg)
				prev = f.Time
				checkFrame(t, &con.Scene, f, msg)
			}
		}
	}
}

// A disk on a chord reaches the wall long before its radial velocity alone
// would carry it there.
func TestChordStaysInside(t *testing.T) {
	for _, strat := range []collide.Strategy{collide.Lazy, collide.Rebuild} {
		con := testConfig(60, strat)
		sim, rec := run(t, con, disk(0, 0.5, 0, 0.01, 1))

		require.True(t, len(rec.Events) > 10, strat.String())
		first := rec.Events[0]
		assert.Equal(t, event.Wall, first.Type, strat.String())
		assert.True(t, first.Time < 1, "%s: first contact at t = %g",
			strat.String(), first.Time)

		for i, e := range rec.Events {
			switch e.Type {
			case event.Wall:
				assert.InDelta(t, 0, e.DistanceToWall, 1e-9, "%s %d)", strat, i+1)
			case event.Obstacle:
				assert.InDelta(t, 0, e.DistanceToObstacle, 1e-9, "%s %d)", strat, i+1)
			}
		}
		for _, f := range rec.Frames {
			checkFrame(t, &con.Scene, f, strat.String())
		}

		p, _ := sim.Particle(0)
		assert.InDelta(t, math.Hypot(0.01, 1), p.Vel.Len(), 1e-12)
	}
}

// Disks which overlap by rounding error and still approach collide at once.
func TestLateEvent(t *testing.T) {
	con := testConfig(0.5, collide.Lazy)
	con.Scene.ObstacleMass = 1
	rec := &Recorder{}
	sim, err := New(con, []particle.Particle{
		disk(0, -0.01+1e-15, 0, 1, 0), disk(1, 0.01-1e-15, 0, -1, 0),
	}, rec)
	require.NoError(t, err)

	more, err := sim.Step()
	require.NoError(t, err)
	require.True(t, more)

	st := sim.Stats()
	assert.Equal(t, 1, st.Late)
	assert.Equal(t, 1, st.Accepted)
	assert.Equal(t, 0.0, sim.Now())

	require.Len(t, rec.Events, 1)
	assert.Equal(t, event.Particle, rec.Events[0].Type)
	assert.Equal(t, 0.0, rec.Events[0].Time)

	ps := sim.Particles()
	assert.InDelta(t, -1, ps[0].Vel[0], 1e-12)
	assert.InDelta(t, 1, ps[1].Vel[0], 1e-12)

	require.NoError(t, sim.Run())
	assert.Equal(t, 1, sim.Stats().Pair)
	assert.Equal(t, 1, sim.Stats().Late)
}

func checkFrame(t *testing.T, sc *collide.Scene, f Frame, msg string) {
	const eps = 1e-9
	for i, a := range f.Records {
		if a.PolarRadius+a.Radius > sc.ContainerRadius+eps {
			t.Errorf("%s: t = %g, disk %d crosses the wall", msg, f.Time, a.ID)
		}
		if !sc.MassiveObstacle() &&
			a.PolarRadius-a.Radius < sc.ObstacleRadius-eps {
			t.Errorf("%s: t = %g, disk %d enters the obstacle", msg, f.Time, a.ID)
		}
		for _, b := range f.Records[i+1:] {
			d := math.Hypot(a.X-b.X, a.Y-b.Y)
			if d < a.Radius+b.Radius-eps {
				t.Errorf("%s: t = %g, disks %d and %d overlap by %g",
					msg, f.Time, a.ID, b.ID, a.Radius+b.Radius-d)
			}
		}
	}
}

// Both strategies see the same collisions until rounding differences grow.
func TestStrategiesAgree(t *testing.T) {
	ps := gas(t, 30, false)
	_, lazy := run(t, testConfig(1, collide.Lazy), ps...)
	_, rebuild := run(t, testConfig(1, collide.Rebuild), ps...)

	require.True(t, len(lazy.Events) >= 10)
	require.True(t, len(rebuild.Events) >= 10)
	for i := 0; i < 10; i++ {
		a, b := lazy.Events[i], rebuild.Events[i]
		assert.Equal(t, a.Type, b.Type, "%d)", i+1)
		assert.Equal(t, a.Subject, b.Subject, "%d)", i+1)
		assert.Equal(t, a.Other, b.Other, "%d)", i+1)
		assert.InDelta(t, a.Time, b.Time, 1e-9, "%d)", i+1)
	}
}

func TestValidation(t *testing.T) {
	good := testConfig(1, collide.Lazy)

	tests := []struct {
		con  Config
		ps   []particle.Particle
		want string
	}{
		{good, []particle.Particle{disk(0, 0.5, 0, 0, 0), disk(1, 0.505, 0, 0, 0)},
			"overlap"},
		{good, []particle.Particle{disk(0, 0.995, 0, 0, 0)}, "wall"},
		{good, []particle.Particle{disk(0, 0.1, 0, 0, 0)}, "obstacle"},
		{good, []particle.Particle{disk(0, 0.5, 0, 0, 0), disk(0, -0.5, 0, 0, 0)},
			"more than once"},
		{good, []particle.Particle{disk(-1, 0.5, 0, 0, 0)}, "negative"},
		{good, []particle.Particle{{ID: 0, Radius: -1, Mass: 1,
			Pos: mgl64.Vec2{0.5, 0}}}, "radius"},
		{good, []particle.Particle{{ID: 0, Radius: 0.01, Mass: 0,
			Pos: mgl64.Vec2{0.5, 0}}}, "mass"},
		{good, []particle.Particle{disk(0, math.NaN(), 0, 0, 0)}, "non-finite"},
		{testConfig(0, collide.Lazy), nil, "Horizon"},
		{testConfig(math.Inf(1), collide.Lazy), nil, "Horizon"},
		{testConfig(1, collide.Strategy(9)), nil, "strategy"},
		{Config{Horizon: 1}, nil, "ContainerRadius"},
	}

	for i, test := range tests {
		_, err := New(test.con, test.ps, &Recorder{})
		if !assert.Error(t, err, "%d)", i+1) {
			continue
		}
		verr, ok := err.(*ValidationError)
		require.True(t, ok, "%d)", i+1)
		assert.Contains(t, strings.ToLower(verr.Error()),
			strings.ToLower(test.want), "%d)", i+1)
	}

	bad := good
	bad.OutputEvery = -1
	_, err := New(bad, []particle.Particle{disk(0, 0.5, 0, 0, 0)}, nil)
	require.Error(t, err)
	assert.Len(t, err.(*ValidationError).Problems, 2)

	// Touching disks and disks touching the walls are valid.
	_, err = New(good, []particle.Particle{
		disk(0, 0.5, 0, 0, 0), disk(1, 0.52, 0, 0, 0),
		disk(2, 0.99, 0, 0, 0), disk(3, 0, 0.11, 0, 0),
	}, &Recorder{})
	assert.NoError(t, err)

	// Disks may sit on the obstacle's footprint when it is a particle.
	massive := good
	massive.Scene.ObstacleMass = 1
	_, err = New(massive, []particle.Particle{disk(0, 0.05, 0, 0, 0)}, &Recorder{})
	assert.NoError(t, err)
}

type failingSink struct {
	Recorder
	failFrame int
	finishErr error
}

var errDiskFull = errors.New("disk full")

func (s *failingSink) Frame(f Frame) error {
	if len(s.Frames) == s.failFrame {
		return errDiskFull
	}
	return s.Recorder.Frame(f)
}

func (s *failingSink) Finish() error {
	s.Recorder.Finish()
	return s.finishErr
}

func TestSinkErrorsAbort(t *testing.T) {
	sink := &failingSink{failFrame: 2}
	sim, err := New(testConfig(4.5, collide.Lazy),
		[]particle.Particle{disk(0, 0.5, 0, 1, 0)}, sink)
	require.NoError(t, err)

	err = sim.Run()
	assert.Equal(t, errDiskFull, err)
	assert.Equal(t, Finished, sim.State())
	assert.True(t, sink.Finished)
	assert.Len(t, sink.Frames, 2)

	sink = &failingSink{failFrame: 0, finishErr: errors.New("close failed")}
	sim, err = New(testConfig(4.5, collide.Lazy),
		[]particle.Particle{disk(0, 0.5, 0, 1, 0)}, sink)
	require.NoError(t, err)
	more, err := sim.Step()
	assert.False(t, more)
	assert.EqualError(t, err, "close failed")
}

func TestRunWithAsyncSink(t *testing.T) {
	ps := gas(t, 20, false)
	_, want := run(t, testConfig(1, collide.Lazy), ps...)

	rec := &Recorder{}
	sim, err := New(testConfig(1, collide.Lazy), ps, NewAsyncSink(rec, 4))
	require.NoError(t, err)
	require.NoError(t, sim.Run())

	assert.True(t, rec.Finished)
	assert.Equal(t, want.Head, rec.Head)
	assert.Equal(t, want.Frames, rec.Frames)
	assert.Equal(t, want.Events, rec.Events)
}

func BenchmarkStep(b *testing.B) {
	s := generate.Settings{
		N: 250, Radius: 5e-4, Mass: 1, InitialVelocity: 1, Seed: 1,
		ContainerRadius: 0.05, ObstacleRadius: 0.005,
	}
	ps, err := generate.Particles(s)
	require.NoError(b, err)

	con := Config{
		Scene: collide.Scene{
			ContainerRadius: 0.05, ObstacleRadius: 0.005,
			InternalCollisions: true,
		},
		Horizon: math.MaxFloat64, OutputEvery: 1 << 30,
	}
	sim, err := New(con, ps, &Recorder{})
	require.NoError(b, err)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := sim.Step(); err != nil {
			b.Fatal(err)
		}
	}
}
