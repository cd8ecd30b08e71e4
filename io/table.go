package io

import (
	"bufio"
	"fmt"
	"math"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/phil-mansfield/table"
	"github.com/pkg/errors"

	"github.com/TheJohnFaraday/SystemSimulations-TP3/event"
	"github.com/TheJohnFaraday/SystemSimulations-TP3/particle"
	"github.com/TheJohnFaraday/SystemSimulations-TP3/sim"
)

// ReadParticles reads an initial state from a whitespace-separated table
// with the columns
//
//	id radius mass x y vx vy
//
// Lines starting with '#' are ignored.
func ReadParticles(fname string) ([]particle.Particle, error) {
	cols, err := table.ReadTable(fname, []int{0, 1, 2, 3, 4, 5, 6}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "reading initial conditions %s", fname)
	}

	ids, rs, ms := cols[0], cols[1], cols[2]
	xs, ys, vxs, vys := cols[3], cols[4], cols[5], cols[6]

	ps := make([]particle.Particle, len(ids))
	for i := range ps {
		id, err := integer(ids[i])
		if err != nil {
			return nil, errors.Wrapf(err, "row %d of %s", i+1, fname)
		}
		ps[i] = particle.Particle{
			ID: id, Radius: rs[i], Mass: ms[i],
			Pos: mgl64.Vec2{xs[i], ys[i]}, Vel: mgl64.Vec2{vxs[i], vys[i]},
		}
	}
	return ps, nil
}

// WriteParticles writes ps to fname in the format read by ReadParticles.
func WriteParticles(fname string, ps []particle.Particle) error {
	f, err := os.Create(fname)
	if err != nil {
		return errors.Wrapf(err, "creating %s", fname)
	}
	w := bufio.NewWriter(f)

	fmt.Fprintln(w, "# id radius mass x y vx vy")
	for i := range ps {
		p := &ps[i]
		fmt.Fprintf(
			w, "%d %s %s %s %s %s %s\n", p.ID,
			formatFloat(p.Radius), formatFloat(p.Mass),
			formatFloat(p.Pos[0]), formatFloat(p.Pos[1]),
			formatFloat(p.Vel[0]), formatFloat(p.Vel[1]),
		)
	}

	if err := w.Flush(); err != nil {
		f.Close()
		return errors.Wrapf(err, "writing %s", fname)
	}
	return errors.Wrapf(f.Close(), "closing %s", fname)
}

// ReadEventLog reads an event log written by a CSVSink.
func ReadEventLog(fname string) ([]sim.EventRecord, error) {
	cols, err := table.ReadTable(fname, []int{0, 1, 2, 3, 4, 5, 6}, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "reading event log %s", fname)
	}

	ts, types, subjects, others := cols[0], cols[1], cols[2], cols[3]
	impulses, dObs, dWall := cols[4], cols[5], cols[6]

	evs := make([]sim.EventRecord, len(ts))
	for i := range evs {
		typ, err := integer(types[i])
		if err == nil && (typ < int(event.Wall) || typ > int(event.Particle)) {
			err = fmt.Errorf("Unknown event type %d.", typ)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "row %d of %s", i+1, fname)
		}
		subject, err := integer(subjects[i])
		if err != nil {
			return nil, errors.Wrapf(err, "row %d of %s", i+1, fname)
		}
		other, err := integer(others[i])
		if err != nil {
			return nil, errors.Wrapf(err, "row %d of %s", i+1, fname)
		}

		evs[i] = sim.EventRecord{
			Time: ts[i], Type: event.Type(typ),
			Subject: subject, Other: other, Impulse: impulses[i],
			DistanceToObstacle: dObs[i], DistanceToWall: dWall[i],
		}
	}
	return evs, nil
}

func integer(x float64) (int, error) {
	if x != math.Trunc(x) || math.IsInf(x, 0) {
		return 0, fmt.Errorf("Expected an integer, got %g.", x)
	}
	return int(x), nil
}
