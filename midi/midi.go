// Package midi bridges block events to live MIDI messages. It does not
// read or write MIDI files; it only translates started and completed
// events into channel voice messages for whatever output the caller
// provides, for example an outport Send function from a gomidi driver.
package midi

import (
	"gitlab.com/gomidi/midi/v2"

	"github.com/karisont/notespan/tracker"
)

// SendFunc delivers one MIDI message to an output.
type SendFunc func(midi.Message) error

// Writer converts block events to note on/off messages on a fixed
// channel. Blocks whose note falls outside the 0..127 MIDI range are
// skipped; velocities are clamped to 127. Register BlockStarted and
// BlockCompleted with the player's callbacks.
type Writer struct {
	send    SendFunc
	channel uint8
	err     error
}

func NewWriter(send SendFunc, channel uint8) *Writer {
	return &Writer{send: send, channel: channel}
}

// BlockStarted emits a note-on for the event's block.
func (w *Writer) BlockStarted(e tracker.BlockEvent) {
	if e.Block.Note < 0 || e.Block.Note > 127 {
		return
	}
	velocity := e.Block.Velocity
	if velocity > 127 {
		velocity = 127
	}
	if velocity < 0 {
		velocity = 0
	}
	w.emit(midi.NoteOn(w.channel, uint8(e.Block.Note), uint8(velocity)))
}

// BlockCompleted emits a note-off for the event's block.
func (w *Writer) BlockCompleted(e tracker.BlockEvent) {
	if e.Block.Note < 0 || e.Block.Note > 127 {
		return
	}
	w.emit(midi.NoteOff(w.channel, uint8(e.Block.Note)))
}

func (w *Writer) emit(msg midi.Message) {
	if w.err != nil {
		return
	}
	w.err = w.send(msg)
}

// Err returns the first error the send function reported; once it is
// non-nil the writer stops sending.
func (w *Writer) Err() error { return w.err }
