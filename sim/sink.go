package sim

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/TheJohnFaraday/SystemSimulations-TP3/event"
	"github.com/TheJohnFaraday/SystemSimulations-TP3/particle"
)

// Header describes the static parameters of a run. It is written once,
// before any frame.
type Header struct {
	ContainerRadius, ObstacleRadius, ObstacleMass float64
	Particles                                     int
	Seed                                          int64
	InternalCollisions                            bool
	Horizon                                       float64
}

// Record is the observable state of one particle at one instant.
type Record struct {
	Time                       float64
	ID                         int
	X, Y, Vx, Vy, Radius, Mass float64
	PolarRadius                float64
	NormalVelocity             float64
}

// Frame is the state of every particle at one instant, sorted by ID.
type Frame struct {
	Time    float64
	Records []Record
}

// EventRecord describes an event after it has been applied.
type EventRecord struct {
	Time           float64
	Type           event.Type
	Subject, Other int
	// Impulse is the magnitude of the momentum exchanged.
	Impulse float64
	// Gaps between the subject and the two boundaries at the contact.
	DistanceToObstacle, DistanceToWall float64
}

// Sink consumes the output stream of a Simulation. Calls arrive in time
// order: Header, then any mix of Frame and Event, then Finish.
type Sink interface {
	Header(h Header) error
	Frame(f Frame) error
	Event(e EventRecord) error
	// Finish marks the end of the stream.
	Finish() error
}

// NewRecord computes the observable state of p at time t.
func NewRecord(t float64, p *particle.Particle) Record {
	f := p.Radial()
	vn, _ := f.Decompose(p.Vel)
	return Record{
		Time: t, ID: p.ID,
		X: p.Pos[0], Y: p.Pos[1], Vx: p.Vel[0], Vy: p.Vel[1],
		Radius: p.Radius, Mass: p.Mass,
		PolarRadius: f.R, NormalVelocity: vn,
	}
}

// Recorder is a Sink which keeps everything in memory.
type Recorder struct {
	Head     Header
	Frames   []Frame
	Events   []EventRecord
	Finished bool
}

func (r *Recorder) Header(h Header) error {
	r.Head = h
	return nil
}

func (r *Recorder) Frame(f Frame) error {
	r.Frames = append(r.Frames, f)
	return nil
}

func (r *Recorder) Event(e EventRecord) error {
	r.Events = append(r.Events, e)
	return nil
}

func (r *Recorder) Finish() error {
	r.Finished = true
	return nil
}

// ErrSinkFinished is returned when writing to an AsyncSink after Finish.
var ErrSinkFinished = errors.New("sink has already been finished")

type messageKind int

const (
	headerMessage messageKind = iota
	frameMessage
	eventMessage
)

type message struct {
	kind   messageKind
	header Header
	frame  Frame
	event  EventRecord
}

// AsyncSink forwards output to another Sink from a separate goroutine. At most
// depth messages are buffered: once the buffer is full, writes block until
// the consumer catches up.
type AsyncSink struct {
	inner    Sink
	msgs     chan message
	done     chan struct{}
	finished bool

	mu  sync.Mutex
	err error
}

// NewAsyncSink starts a goroutine which writes to inner.
func NewAsyncSink(inner Sink, depth int) *AsyncSink {
	if depth < 1 {
		depth = 1
	}
	as := &AsyncSink{
		inner: inner,
		msgs:  make(chan message, depth),
		done:  make(chan struct{}),
	}
	go as.run()
	return as
}

func (as *AsyncSink) run() {
	defer close(as.done)

	for m := range as.msgs {
		// After a failure, keep draining so the producer never blocks.
		if as.Err() != nil {
			continue
		}

		var err error
		switch m.kind {
		case headerMessage:
			err = as.inner.Header(m.header)
		case frameMessage:
			err = as.inner.Frame(m.frame)
		case eventMessage:
			err = as.inner.Event(m.event)
		}
		as.setErr(err)
	}

	as.setErr(as.inner.Finish())
}

func (as *AsyncSink) setErr(err error) {
	if err == nil {
		return
	}
	as.mu.Lock()
	if as.err == nil {
		as.err = err
	}
	as.mu.Unlock()
}

// Err returns the first error returned by the inner sink, if any.
func (as *AsyncSink) Err() error {
	as.mu.Lock()
	defer as.mu.Unlock()
	return as.err
}

func (as *AsyncSink) send(m message) error {
	if as.finished {
		return ErrSinkFinished
	}
	if err := as.Err(); err != nil {
		return err
	}
	as.msgs <- m
	return nil
}

func (as *AsyncSink) Header(h Header) error {
	return as.send(message{kind: headerMessage, header: h})
}

// Frame queues f. f.Records must not be modified afterwards.
func (as *AsyncSink) Frame(f Frame) error {
	return as.send(message{kind: frameMessage, frame: f})
}

func (as *AsyncSink) Event(e EventRecord) error {
	return as.send(message{kind: eventMessage, event: e})
}

// Finish waits until every queued message has been written, finishes the
// inner sink, and returns the first error encountered.
func (as *AsyncSink) Finish() error {
	if !as.finished {
		as.finished = true
		close(as.msgs)
	}
	<-as.done
	return as.Err()
}
