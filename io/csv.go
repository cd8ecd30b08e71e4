/*package io reads and writes the files used by the simulation: configuration
files, trajectory and event output, and initial-condition tables.
*/
package io

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/pkg/errors"

	"github.com/TheJohnFaraday/SystemSimulations-TP3/sim"
)

const (
	trajectoryParamHeader = "L/2,n,R,m_R,seed\n"
	trajectoryHeader      = "time,id,x,y,vx,vy,radius,m,r,v_n\n"
	eventLogHeader        = "# time type subject other impulse d_obstacle d_wall\n" +
		"# type: 0 = WALL, 1 = OBSTACLE, 2 = PARTICLE\n"
)

// CSVSink writes frames as comma-separated rows and, optionally, events as a
// whitespace-separated table that can be read back with ReadEventLog.
type CSVSink struct {
	traj, events *bufio.Writer
	closers      []io.Closer
}

var _ sim.Sink = &CSVSink{}

// NewCSVSink writes trajectories to traj and events to events. events may be
// nil, in which case events are discarded.
func NewCSVSink(traj, events io.Writer) *CSVSink {
	s := &CSVSink{traj: bufio.NewWriter(traj)}
	if events != nil {
		s.events = bufio.NewWriter(events)
	}
	return s
}

// OpenFileSink creates the files at trajPath and eventPath and returns a
// CSVSink writing to them. If eventPath is empty, no event log is written.
// The files are closed by Finish.
func OpenFileSink(trajPath, eventPath string) (*CSVSink, error) {
	traj, err := os.Create(trajPath)
	if err != nil {
		return nil, errors.Wrapf(err, "opening trajectory file %s", trajPath)
	}
	if eventPath == "" {
		s := NewCSVSink(traj, nil)
		s.closers = []io.Closer{traj}
		return s, nil
	}

	events, err := os.Create(eventPath)
	if err != nil {
		traj.Close()
		return nil, errors.Wrapf(err, "opening event file %s", eventPath)
	}
	s := NewCSVSink(traj, events)
	s.closers = []io.Closer{traj, events}
	return s, nil
}

func (s *CSVSink) Header(h sim.Header) error {
	_, err := fmt.Fprintf(
		s.traj, "%s%.8f,%d,%.8f,%.8f,%d\n%s",
		trajectoryParamHeader, h.ContainerRadius, h.Particles,
		h.ObstacleRadius, h.ObstacleMass, h.Seed, trajectoryHeader,
	)
	if err != nil {
		return errors.Wrap(err, "writing trajectory header")
	}

	if s.events != nil {
		if _, err := s.events.WriteString(eventLogHeader); err != nil {
			return errors.Wrap(err, "writing event log header")
		}
	}
	return nil
}

func (s *CSVSink) Frame(f sim.Frame) error {
	for i := range f.Records {
		r := &f.Records[i]
		_, err := fmt.Fprintf(
			s.traj, "%.8f,%d,%s,%s,%.8f,%.8f,%.8f,%.8f,%s,%.8f\n",
			r.Time, r.ID, formatFloat(r.X), formatFloat(r.Y),
			r.Vx, r.Vy, r.Radius, r.Mass,
			formatFloat(r.PolarRadius), r.NormalVelocity,
		)
		if err != nil {
			return errors.Wrapf(err, "writing frame at t = %g", f.Time)
		}
	}
	return nil
}

func (s *CSVSink) Event(e sim.EventRecord) error {
	if s.events == nil {
		return nil
	}
	_, err := fmt.Fprintf(
		s.events, "%s %d %d %d %s %s %s\n",
		formatFloat(e.Time), int(e.Type), e.Subject, e.Other,
		formatFloat(e.Impulse), formatFloat(e.DistanceToObstacle),
		formatFloat(e.DistanceToWall),
	)
	if err != nil {
		return errors.Wrapf(err, "writing event at t = %g", e.Time)
	}
	return nil
}

// Finish flushes all buffered output and closes any files opened by
// OpenFileSink.
func (s *CSVSink) Finish() error {
	var first error
	if err := s.traj.Flush(); err != nil {
		first = errors.Wrap(err, "flushing trajectory")
	}
	if s.events != nil {
		if err := s.events.Flush(); err != nil && first == nil {
			first = errors.Wrap(err, "flushing event log")
		}
	}
	for _, c := range s.closers {
		if err := c.Close(); err != nil && first == nil {
			first = errors.Wrap(err, "closing output")
		}
	}
	s.closers = nil
	return first
}

func formatFloat(x float64) string {
	return strconv.FormatFloat(x, 'g', -1, 64)
}
