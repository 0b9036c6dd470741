package oto

import (
	"fmt"
	"sync/atomic"

	"github.com/hajimehoshi/oto"
)

// SampleRate is the fixed output sample rate of the audio device.
const SampleRate = 44100

const otoBufferSize = 8192

type Context oto.Context

// Output writes interleaved stereo float32 audio to the audio device
// and counts the frames written, so that the playback position can
// serve as an audio-derived time source for a player.
type Output struct {
	player    *oto.Player
	tmpBuffer []byte
	frames    atomic.Int64
}

func NewContext() (*Context, error) {
	context, err := oto.NewContext(SampleRate, 2, 2, otoBufferSize)
	if err != nil {
		return nil, fmt.Errorf("cannot create oto context: %w", err)
	}
	return (*Context)(context), nil
}

func (c *Context) Output() *Output {
	return &Output{player: (*oto.Context)(c).NewPlayer(), tmpBuffer: make([]byte, 0)}
}

func (c *Context) Close() error {
	if err := (*oto.Context)(c).Close(); err != nil {
		return fmt.Errorf("cannot close oto context: %w", err)
	}
	return nil
}

// WriteAudio writes an interleaved stereo float32 buffer to the
// device, blocking once the device buffer is full; the blocking is
// what paces a playback loop running against the audio clock.
func (o *Output) WriteAudio(buffer []float32) error {
	// reuse the old capacity of tmpBuffer by truncating it to zero,
	// then save it for the next call
	o.tmpBuffer = floatBufferTo16BitLE(buffer, o.tmpBuffer[:0])
	if _, err := o.player.Write(o.tmpBuffer); err != nil {
		return fmt.Errorf("cannot write to player: %w", err)
	}
	o.frames.Add(int64(len(buffer) / 2))
	return nil
}

// Position returns the seconds of audio written so far. It runs ahead
// of the audible output by at most the device buffer, close enough to
// drive a tracker session in sync with what is heard.
func (o *Output) Position() float64 {
	return float64(o.frames.Load()) / SampleRate
}

func (o *Output) Close() error {
	if err := o.player.Close(); err != nil {
		return fmt.Errorf("cannot close oto player: %w", err)
	}
	return nil
}
