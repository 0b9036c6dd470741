package tracker

type (
	// ShapeFunc shapes the volume contribution of a single sounding
	// block as a function of how far into the block the playhead is,
	// with progress in [0,1]. Any pure function works; a keyframed
	// curve evaluator can be wrapped into one.
	ShapeFunc func(progress float64) float64

	// Weighting selects how a block's velocity scales its volume
	// contribution.
	Weighting int
)

const (
	// TrackWeighting scales each block by its velocity relative to the
	// maximum velocity of its own track.
	TrackWeighting Weighting = iota

	// GlobalWeighting scales each block by its velocity relative to
	// the full MIDI velocity range (127).
	GlobalWeighting
)

// LinearRamp is the default shape: full volume when a block starts,
// fading linearly to zero by its end.
func LinearRamp(progress float64) float64 { return 1 - progress }

// volume reduces the active sets of all cursors to one scalar at time
// t: shape(progress) times the velocity weight, summed over every
// active block of every track. The sum is deliberately not clamped;
// overlapping blocks can push it past one.
func volume(cursors []Cursor, t float64, shape ShapeFunc, w Weighting) float64 {
	v := 0.0
	for ci := range cursors {
		c := &cursors[ci]
		for _, i := range c.active {
			b := &c.track.Blocks[i]
			weight := b.NormVelocity()
			if w == GlobalWeighting {
				weight = float64(b.Velocity) / 127
			}
			v += shape(b.Progress(t)) * weight
		}
	}
	return v
}
