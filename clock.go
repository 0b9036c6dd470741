package notespan

import "time"

type (
	// TimeSource supplies the current playback time, in seconds. The
	// value may be negative and may move backwards or jump arbitrarily
	// between updates; the tracker converges regardless. Implementations
	// decide what the time is derived from: a fixed value, the wall
	// clock, an audio device position, or an external timeline.
	TimeSource interface {
		Now() float64
	}

	// TimeSourceFunc adapts a plain function to a TimeSource.
	TimeSourceFunc func() float64

	// ManualTime is a fixed, settable time value, for scrubbing and
	// for driving playback from tests.
	ManualTime struct {
		T float64
	}

	// SystemTime derives the time from the wall clock: seconds elapsed
	// since Start, minus Offset.
	SystemTime struct {
		Start  time.Time
		Offset float64
	}

	// OffsetTime subtracts a fixed offset from another source, for
	// timeline clocks that begin mid-score.
	OffsetTime struct {
		Source TimeSource
		Offset float64
	}
)

func (f TimeSourceFunc) Now() float64 { return f() }

func (m *ManualTime) Now() float64 { return m.T }

// Set moves the manual clock to t; the next update sees the new value.
func (m *ManualTime) Set(t float64) { m.T = t }

// NewSystemTime returns a SystemTime whose zero is the current wall
// time.
func NewSystemTime() *SystemTime {
	return &SystemTime{Start: time.Now()}
}

func (s *SystemTime) Now() float64 {
	return time.Since(s.Start).Seconds() - s.Offset
}

func (o OffsetTime) Now() float64 {
	return o.Source.Now() - o.Offset
}
