package tracker

import (
	"slices"

	"github.com/karisont/notespan"
)

// Cursor tracks which blocks of a single track are sounding at the
// current playback time: the index of the block last visited by the
// search, and the set of currently active block indices. It is the
// per-track mutable state of a playback session; the Track it
// references is read-only and may be shared, the Cursor itself must
// only be advanced from one goroutine.
type Cursor struct {
	track     *notespan.Track
	lastIndex int   // -1 = before the first block
	active    []int // blocks whose [Start,End) contained the last seen time

	entered []int // scratch, reused between updates
	exited  []int
}

// NewCursor returns a cursor positioned before the first block, with
// an empty active set.
func NewCursor(track *notespan.Track) Cursor {
	return Cursor{track: track, lastIndex: -1}
}

// Track returns the track this cursor runs over.
func (c *Cursor) Track() *notespan.Track { return c.track }

// LastIndex returns the index of the block the search visited last, or
// -1 when the cursor sits before the first block.
func (c *Cursor) LastIndex() int { return c.lastIndex }

// Active returns the indices of the blocks active at the last update.
// The slice is owned by the cursor and valid only until the next
// Update; its order is incidental.
func (c *Cursor) Active() []int { return c.active }

// Update moves the cursor to time t and returns the indices of the
// blocks that started and ended during this update, in that order.
// Both slices are reused by the next Update. Updating an empty track
// is a no-op.
//
// The search direction depends on the start time of the block at
// lastIndex, not on whether t moved forward in absolute terms: with
// overlapping blocks the cursor can sit mid-block while t decreases,
// and the forward branch is still the right one as long as later
// starts lie behind t.
func (c *Cursor) Update(t float64) (entered, exited []int) {
	c.entered = c.entered[:0]
	c.exited = c.exited[:0]
	if c.lastIndex < 0 || c.track.Blocks[c.lastIndex].Start < t {
		c.forward(t)
	} else {
		c.backward(t)
	}
	c.sweep(t)
	return c.entered, c.exited
}

// forward scans upward from the last visited block, activating every
// block that has started but not yet ended, and stops at the first
// block that has not started, leaving it unvisited. The block at
// lastIndex is re-examined on purpose: the sweep may have expired it
// earlier even though the playhead has since come back inside it.
func (c *Cursor) forward(t float64) {
	blocks := c.track.Blocks
	i := c.lastIndex
	if i < 0 {
		i = 0
	}
	for i < len(blocks) && blocks[i].Start <= t {
		if t < blocks[i].End {
			c.activate(i)
		}
		c.lastIndex = i
		i++
	}
}

// backward steps toward the beginning until it finds a block that has
// started; that one block alone is activated, even when its end has
// already passed (the sweep expires it again in the same update).
// Blocks skipped on the way down leave the active set through the
// sweep, not here. Running past the beginning parks the cursor at -1.
func (c *Cursor) backward(t float64) {
	for i := c.lastIndex; ; i-- {
		if i < 0 {
			c.lastIndex = -1
			return
		}
		if c.track.Blocks[i].Start <= t {
			c.activate(i)
			c.lastIndex = i
			return
		}
	}
}

// activate inserts block i into the active set; re-activating an
// already active block is a no-op and reports no event.
func (c *Cursor) activate(i int) {
	if slices.Contains(c.active, i) {
		return
	}
	c.active = append(c.active, i)
	c.entered = append(c.entered, i)
}

// sweep expires every active block that no longer contains t. This
// scans the whole active set on every update, which is fine as active
// sets stay small: a handful of simultaneously sounding blocks.
func (c *Cursor) sweep(t float64) {
	blocks := c.track.Blocks
	n := 0
	for _, i := range c.active {
		if t >= blocks[i].End || t < blocks[i].Start {
			c.exited = append(c.exited, i)
			continue
		}
		c.active[n] = i
		n++
	}
	c.active = c.active[:n]
}
