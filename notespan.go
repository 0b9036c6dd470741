package notespan

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type (
	// Block is a single timed event on a track: a note-like identifier
	// and a velocity, sounding over the half-open time range
	// [Start,End). Blocks are immutable once their Score has been
	// built; playback code only ever reads them. A block with
	// Start == End has an empty range and can never sound.
	Block struct {
		Start    float64 `yaml:"start"`
		End      float64 `yaml:"end"`
		Note     int     `yaml:"note"`
		Velocity int     `yaml:"velocity"`

		norm float64 // Velocity relative to the track maximum, set by finalize
	}

	// Track is a sequence of Blocks sorted ascending by Start. Blocks
	// within a track may overlap each other freely; only the start
	// times need to be in order, as the cursor's incremental search
	// depends on it. The aggregate fields are derived from the blocks
	// when the score is built, for note-range display and velocity
	// normalization; they are never read back from a file.
	Track struct {
		Name   string  `yaml:",omitempty"`
		Blocks []Block `yaml:"blocks"`

		MinNote     int `yaml:"-" json:"-"`
		MaxNote     int `yaml:"-" json:"-"`
		MaxVelocity int `yaml:"-" json:"-"`
	}

	// Score is a collection of parallel tracks: the shared read-only
	// asset of playback. One Score may back any number of concurrent
	// sessions, as nothing mutates it after Finalize.
	Score struct {
		Tracks []Track
	}
)

// Contains reports whether t falls within the block's [Start,End)
// range: the start is inclusive, the end exclusive.
func (b *Block) Contains(t float64) bool {
	return b.Start <= t && t < b.End
}

// Progress returns the normalized position of t within the block, 0 at
// Start and 1 at End. Only meaningful for blocks with End > Start,
// which every sounding block has.
func (b *Block) Progress(t float64) float64 {
	return (t - b.Start) / (b.End - b.Start)
}

// NormVelocity returns the velocity divided by the maximum velocity of
// the owning track, precomputed when the score was built.
func (b *Block) NormVelocity() float64 {
	return b.norm
}

// Copy makes a deep copy of a Track.
func (t *Track) Copy() Track {
	blocks := make([]Block, len(t.Blocks))
	copy(blocks, t.Blocks)
	return Track{
		Name:        t.Name,
		Blocks:      blocks,
		MinNote:     t.MinNote,
		MaxNote:     t.MaxNote,
		MaxVelocity: t.MaxVelocity,
	}
}

func (t *Track) finalize() {
	t.MinNote, t.MaxNote, t.MaxVelocity = 0, 0, 0
	for i, b := range t.Blocks {
		if i == 0 || b.Note < t.MinNote {
			t.MinNote = b.Note
		}
		if i == 0 || b.Note > t.MaxNote {
			t.MaxNote = b.Note
		}
		if b.Velocity > t.MaxVelocity {
			t.MaxVelocity = b.Velocity
		}
	}
	for i := range t.Blocks {
		if t.MaxVelocity > 0 {
			t.Blocks[i].norm = float64(t.Blocks[i].Velocity) / float64(t.MaxVelocity)
		} else {
			t.Blocks[i].norm = 0
		}
	}
}

// Copy makes a deep copy of a Score.
func (s *Score) Copy() Score {
	tracks := make([]Track, len(s.Tracks))
	for i, t := range s.Tracks {
		tracks[i] = t.Copy()
	}
	return Score{Tracks: tracks}
}

// Validate checks the preconditions the playback code relies on: every
// track sorted ascending by block start time, and no negative-duration
// blocks. Cursor behavior on a score violating these is undefined, so
// they are checked here, when the asset is built, not during playback.
func (s *Score) Validate() error {
	for i, t := range s.Tracks {
		for j, b := range t.Blocks {
			if b.End < b.Start {
				return fmt.Errorf("track %v block %v has negative duration (%v > %v)", i, j, b.Start, b.End)
			}
			if j > 0 && t.Blocks[j-1].Start > b.Start {
				return fmt.Errorf("track %v blocks are not sorted by start time (block %v)", i, j)
			}
		}
	}
	return nil
}

// Finalize recomputes the derived per-track aggregates and the
// normalized velocities. ReadScore calls it; call it yourself after
// constructing a Score programmatically.
func (s *Score) Finalize() {
	for i := range s.Tracks {
		s.Tracks[i].finalize()
	}
}

// End returns the end time of the latest-ending block in the score, or
// 0 for a score with no blocks.
func (s *Score) End() float64 {
	ret := 0.0
	for _, t := range s.Tracks {
		for _, b := range t.Blocks {
			if b.End > ret {
				ret = b.End
			}
		}
	}
	return ret
}

// NumBlocks returns the total number of blocks over all tracks.
func (s *Score) NumBlocks() int {
	ret := 0
	for _, t := range s.Tracks {
		ret += len(t.Blocks)
	}
	return ret
}

// ReadScore parses a score from json or yaml contents, validates it
// and computes the derived data.
func ReadScore(data []byte) (Score, error) {
	var s Score
	if errJSON := json.Unmarshal(data, &s); errJSON != nil {
		if errYaml := yaml.Unmarshal(data, &s); errYaml != nil {
			return Score{}, fmt.Errorf("the score could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
		}
	}
	if err := s.Validate(); err != nil {
		return Score{}, err
	}
	s.Finalize()
	return s, nil
}

// Write writes the score to w as yaml.
func (s *Score) Write(w io.Writer) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling score failed: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing score failed: %w", err)
	}
	return nil
}
