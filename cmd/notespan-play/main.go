package main

import (
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/karisont/notespan"
	"github.com/karisont/notespan/oto"
	"github.com/karisont/notespan/tracker"
	"github.com/karisont/notespan/version"
)

func main() {
	rate := flag.Int("r", 60, "Updates per second.")
	audible := flag.Bool("a", false, "Play the volume signal as a tone through the audio device, clocking playback from the device position.")
	quiet := flag.Bool("q", false, "Do not print block events.")
	global := flag.Bool("g", false, "Normalize velocities against the full MIDI range instead of each track's own maximum.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(0)
	}
	retval := 0
	for _, param := range flag.Args() {
		if err := process(param, *rate, *audible, *quiet, *global); err != nil {
			fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
			retval = 1
		}
	}
	os.Exit(retval)
}

func process(filename string, rate int, audible, quiet, global bool) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("could not read file %v: %v", filename, err)
	}
	score, err := notespan.ReadScore(data)
	if err != nil {
		return err
	}
	var opts []tracker.PlayerOption
	if global {
		opts = append(opts, tracker.WithWeighting(tracker.GlobalWeighting))
	}
	var source notespan.TimeSource
	var out *oto.Output
	if audible {
		ctx, err := oto.NewContext()
		if err != nil {
			return fmt.Errorf("could not acquire audio context: %v", err)
		}
		defer ctx.Close()
		out = ctx.Output()
		defer out.Close()
		source = notespan.TimeSourceFunc(out.Position)
	} else {
		source = notespan.NewSystemTime()
	}
	player := tracker.NewPlayer(&score, source, opts...)
	if !quiet {
		player.OnBlockStarted(func(e tracker.BlockEvent) {
			fmt.Printf("%8.3f  track %v  note %3v on   velocity %v\n", e.Time, e.Track, e.Block.Note, e.Block.Velocity)
		})
		player.OnBlockCompleted(func(e tracker.BlockEvent) {
			fmt.Printf("%8.3f  track %v  note %3v off\n", e.Time, e.Track, e.Block.Note)
		})
	}
	end := score.End()
	tone := newTone(rate)
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()
	for step := 0; ; step++ {
		if audible {
			// the blocking write paces the loop against the audio clock
			if err := out.WriteAudio(tone.render(player.Volume(step))); err != nil {
				return err
			}
		} else {
			<-ticker.C
		}
		if player.Time(step) >= end {
			break
		}
	}
	return nil
}

// tone renders the volume signal as a plain sine so that the shape of
// the aggregate can be heard while the events print.
type tone struct {
	buf   []float32
	phase float64
}

func newTone(rate int) *tone {
	return &tone{buf: make([]float32, 2*(oto.SampleRate/rate))}
}

func (t *tone) render(vol float64) []float32 {
	const freq = 440.0
	for i := 0; i+1 < len(t.buf); i += 2 {
		s := float32(math.Sin(2*math.Pi*t.phase) * vol * 0.2)
		t.buf[i], t.buf[i+1] = s, s
		t.phase += freq / oto.SampleRate
		if t.phase > 1 {
			t.phase -= 1
		}
	}
	return t.buf
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Command line utility for playing .yml/.json score files and printing their block events.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
