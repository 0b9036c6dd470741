package tracker

import (
	"github.com/karisont/notespan"
)

type (
	// Player is one playback session over a score: one cursor per
	// track, all advanced to the same time on each update. Updates are
	// keyed by an external step counter, typically the host's frame
	// count: the first call within a step pulls the time from the
	// source and advances every cursor, repeated calls within the same
	// step do nothing. Querying the time or the volume any number of
	// times per step is therefore free and produces no extra events.
	//
	// A Player must be driven from a single goroutine. The Score it
	// plays is read-only and may be shared between any number of
	// players, each with its own cursors.
	Player struct {
		score   *notespan.Score
		source  notespan.TimeSource
		cursors []Cursor

		shape     ShapeFunc
		weighting Weighting
		broker    *Broker

		started   []func(BlockEvent)
		completed []func(BlockEvent)

		step        int
		synced      bool
		time        float64
		volume      float64
		volumeValid bool
	}

	// BlockEvent reports one block crossing into or out of the active
	// set of one track.
	BlockEvent struct {
		Track int // index of the track within the score
		Index int // index of the block within the track
		Block *notespan.Block
		On    bool    // true when the block started, false when it completed
		Time  float64 // playback time of the update that crossed the boundary
	}

	PlayerOption func(*Player)
)

// WithShape sets the shaping function used for the volume. The default
// is LinearRamp.
func WithShape(shape ShapeFunc) PlayerOption {
	return func(p *Player) { p.shape = shape }
}

// WithWeighting sets how velocities scale volume contributions. The
// default is TrackWeighting.
func WithWeighting(w Weighting) PlayerOption {
	return func(p *Player) { p.weighting = w }
}

// WithBroker attaches a broker: every block event is also offered to
// its Events channel, non-blocking, after the callbacks have run.
func WithBroker(b *Broker) PlayerOption {
	return func(p *Player) { p.broker = b }
}

func NewPlayer(score *notespan.Score, source notespan.TimeSource, opts ...PlayerOption) *Player {
	p := &Player{
		score:  score,
		source: source,
		shape:  LinearRamp,
	}
	p.cursors = make([]Cursor, len(score.Tracks))
	for i := range p.cursors {
		p.cursors[i] = NewCursor(&score.Tracks[i])
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// OnBlockStarted registers fn to be called synchronously during Update
// for every block that starts. Within one update of a track, started
// callbacks run before completed callbacks.
func (p *Player) OnBlockStarted(fn func(BlockEvent)) {
	p.started = append(p.started, fn)
}

// OnBlockCompleted registers fn to be called synchronously during
// Update for every block that ends or is scrubbed out of.
func (p *Player) OnBlockCompleted(fn func(BlockEvent)) {
	p.completed = append(p.completed, fn)
}

// Update advances the session to the given step: pulls the current
// time from the source and moves every cursor to it, firing events for
// the blocks crossed. Calling Update again with the same step is a
// no-op until Invalidate is called or the step changes.
func (p *Player) Update(step int) {
	if p.synced && step == p.step {
		return
	}
	p.step = step
	p.synced = true
	p.time = p.source.Now()
	p.volumeValid = false
	for ti := range p.cursors {
		entered, exited := p.cursors[ti].Update(p.time)
		for _, i := range entered {
			p.fire(ti, i, true)
		}
		for _, i := range exited {
			p.fire(ti, i, false)
		}
	}
}

func (p *Player) fire(track, index int, on bool) {
	e := BlockEvent{
		Track: track,
		Index: index,
		Block: &p.score.Tracks[track].Blocks[index],
		On:    on,
		Time:  p.time,
	}
	if on {
		for _, fn := range p.started {
			fn(e)
		}
	} else {
		for _, fn := range p.completed {
			fn(e)
		}
	}
	if p.broker != nil {
		TrySend(p.broker.Events, e)
	}
}

// Time returns the playback time of the given step, advancing the
// session first if it has not seen this step yet.
func (p *Player) Time(step int) float64 {
	p.Update(step)
	return p.time
}

// Volume returns the summed volume of all blocks sounding at the given
// step. It is computed on the first request within a step and cached
// until the step changes or Invalidate is called.
func (p *Player) Volume(step int) float64 {
	p.Update(step)
	if !p.volumeValid {
		p.volume = volume(p.cursors, p.time, p.shape, p.weighting)
		p.volumeValid = true
	}
	return p.volume
}

// Invalidate drops the memoized time and volume, so that the next
// query recomputes them even within the same step.
func (p *Player) Invalidate() {
	p.synced = false
	p.volumeValid = false
}

// Cursor returns the cursor of the given track, for inspecting its
// active set directly.
func (p *Player) Cursor(track int) *Cursor {
	return &p.cursors[track]
}

// Reset returns every cursor to its initial state, before the first
// block with an empty active set, without firing any events.
func (p *Player) Reset() {
	for i := range p.cursors {
		p.cursors[i] = NewCursor(p.cursors[i].track)
	}
	p.synced = false
	p.volumeValid = false
}
