package tracker_test

import (
	"math"
	"testing"
	"time"

	"github.com/karisont/notespan"
	"github.com/karisont/notespan/tracker"
)

func makeScore(t *testing.T, tracks ...notespan.Track) *notespan.Score {
	t.Helper()
	score := notespan.Score{Tracks: tracks}
	if err := score.Validate(); err != nil {
		t.Fatalf("invalid test score: %v", err)
	}
	score.Finalize()
	return &score
}

func flatShape(float64) float64 { return 1 }

func TestVolumeAdditivity(t *testing.T) {
	// the later blocks only set each track's maximum velocity; at t=5
	// the active blocks weigh 60/100 and 40/100
	score := makeScore(t,
		notespan.Track{Blocks: []notespan.Block{
			{Start: 0, End: 10, Note: 60, Velocity: 60},
			{Start: 20, End: 30, Note: 62, Velocity: 100},
		}},
		notespan.Track{Blocks: []notespan.Block{
			{Start: 0, End: 10, Note: 48, Velocity: 40},
			{Start: 20, End: 30, Note: 50, Velocity: 100},
		}},
	)
	clock := &notespan.ManualTime{T: 5}
	player := tracker.NewPlayer(score, clock, tracker.WithShape(flatShape))
	if v := player.Volume(0); math.Abs(v-1.0) > 1e-9 {
		t.Errorf("volume = %v, expected 1.0 (0.6 + 0.4, uncapped)", v)
	}
}

func TestDefaultShapeIsLinearRamp(t *testing.T) {
	score := makeScore(t, notespan.Track{Blocks: []notespan.Block{
		{Start: 0, End: 2, Note: 60, Velocity: 100},
	}})
	clock := &notespan.ManualTime{T: 1}
	player := tracker.NewPlayer(score, clock)
	if v := player.Volume(0); math.Abs(v-0.5) > 1e-9 {
		t.Errorf("volume = %v, expected 0.5 at half progress", v)
	}
}

func TestWeighting(t *testing.T) {
	score := makeScore(t, notespan.Track{Blocks: []notespan.Block{
		{Start: 0, End: 10, Note: 60, Velocity: 100},
	}})
	clock := &notespan.ManualTime{T: 0}
	trackWeighted := tracker.NewPlayer(score, clock, tracker.WithShape(flatShape))
	if v := trackWeighted.Volume(0); math.Abs(v-1.0) > 1e-9 {
		t.Errorf("track-weighted volume = %v, expected 1.0", v)
	}
	global := tracker.NewPlayer(score, clock,
		tracker.WithShape(flatShape), tracker.WithWeighting(tracker.GlobalWeighting))
	if v := global.Volume(0); math.Abs(v-100.0/127) > 1e-9 {
		t.Errorf("globally weighted volume = %v, expected 100/127", v)
	}
}

func TestStepMemoization(t *testing.T) {
	score := makeScore(t, notespan.Track{Blocks: []notespan.Block{
		{Start: 0, End: 1, Note: 60, Velocity: 100},
		{Start: 1, End: 2, Note: 62, Velocity: 100},
	}})
	clock := &notespan.ManualTime{T: 0.5}
	player := tracker.NewPlayer(score, clock)
	var eventCount int
	player.OnBlockStarted(func(tracker.BlockEvent) { eventCount++ })
	player.OnBlockCompleted(func(tracker.BlockEvent) { eventCount++ })

	player.Update(0)
	if eventCount != 1 {
		t.Fatalf("expected 1 event after first update, got %v", eventCount)
	}
	// within the same step the time source is not consulted again and
	// no events fire, no matter what the clock now says
	clock.Set(1.5)
	if got := player.Time(0); got != 0.5 {
		t.Errorf("time re-pulled within the same step: %v", got)
	}
	player.Update(0)
	if eventCount != 1 {
		t.Errorf("repeated update within the same step fired events, total %v", eventCount)
	}
	// the next step sees the new time: block 0 exits, block 1 enters
	player.Update(1)
	if eventCount != 3 {
		t.Errorf("expected 3 events total after step change, got %v", eventCount)
	}
}

func TestInvalidate(t *testing.T) {
	score := makeScore(t, notespan.Track{Blocks: []notespan.Block{
		{Start: 0, End: 2, Note: 60, Velocity: 100},
	}})
	clock := &notespan.ManualTime{T: 0}
	player := tracker.NewPlayer(score, clock, tracker.WithShape(flatShape))
	if v := player.Volume(0); v != 1.0 {
		t.Fatalf("volume = %v, expected 1.0", v)
	}
	clock.Set(5)
	if v := player.Volume(0); v != 1.0 {
		t.Errorf("cached volume changed without invalidation: %v", v)
	}
	player.Invalidate()
	if v := player.Volume(0); v != 0 {
		t.Errorf("volume after invalidation = %v, expected 0", v)
	}
}

func TestEnterReportedBeforeExit(t *testing.T) {
	score := makeScore(t, notespan.Track{Blocks: []notespan.Block{
		{Start: 0, End: 1, Note: 60, Velocity: 100},
		{Start: 1, End: 2, Note: 62, Velocity: 100},
	}})
	clock := &notespan.ManualTime{T: 0.5}
	player := tracker.NewPlayer(score, clock)
	var order []string
	player.OnBlockStarted(func(e tracker.BlockEvent) { order = append(order, "on") })
	player.OnBlockCompleted(func(e tracker.BlockEvent) { order = append(order, "off") })
	player.Update(0)
	clock.Set(1.5)
	player.Update(1)
	want := []string{"on", "on", "off"}
	if len(order) != len(want) {
		t.Fatalf("got %v events, expected %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("event order %v, expected %v", order, want)
		}
	}
}

func TestBrokerDelivery(t *testing.T) {
	score := makeScore(t, notespan.Track{Blocks: []notespan.Block{
		{Start: 0, End: 1, Note: 60, Velocity: 100},
	}})
	clock := &notespan.ManualTime{T: 0.5}
	broker := tracker.NewBroker()
	player := tracker.NewPlayer(score, clock, tracker.WithBroker(broker))
	player.Update(0)
	e, ok := tracker.TimeoutReceive(broker.Events, time.Second)
	if !ok {
		t.Fatal("no event received from broker")
	}
	if !e.On || e.Track != 0 || e.Index != 0 || e.Block.Note != 60 || e.Time != 0.5 {
		t.Errorf("unexpected event: %+v", e)
	}
	clock.Set(2)
	player.Update(1)
	e, ok = tracker.TimeoutReceive(broker.Events, time.Second)
	if !ok || e.On {
		t.Errorf("expected a completed event, got %+v (ok %v)", e, ok)
	}
}

func TestReset(t *testing.T) {
	score := makeScore(t, notespan.Track{Blocks: []notespan.Block{
		{Start: 0, End: 10, Note: 60, Velocity: 100},
	}})
	clock := &notespan.ManualTime{T: 5}
	player := tracker.NewPlayer(score, clock)
	var count int
	player.OnBlockStarted(func(tracker.BlockEvent) { count++ })
	player.Update(0)
	if count != 1 || len(player.Cursor(0).Active()) != 1 {
		t.Fatalf("block did not activate")
	}
	player.Reset()
	if len(player.Cursor(0).Active()) != 0 || player.Cursor(0).LastIndex() != -1 {
		t.Errorf("reset did not clear the cursor")
	}
	// the same step re-runs after a reset and the block re-enters
	player.Update(0)
	if count != 2 {
		t.Errorf("expected the block to re-enter after reset, events: %v", count)
	}
}
