// Package sound plays short synthesized cues for game events.
package sound

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"

	"github.com/tatianab/falliant/internal/engine"
)

const sampleRate = beep.SampleRate(44100)

// Event is a sound cue.
type Event int

const (
	Lock Event = iota
	Line1
	Line2
	Line3
	Line4
	LevelUp
	GameOver
)

func (e Event) String() string {
	switch e {
	case Lock:
		return "lock"
	case Line1:
		return "line1"
	case Line2:
		return "line2"
	case Line3:
		return "line3"
	case Line4:
		return "line4"
	case LevelUp:
		return "levelup"
	case GameOver:
		return "gameover"
	default:
		return "unknown"
	}
}

// Tone is one note of a cue.
type Tone struct {
	Freq     float64
	Duration time.Duration
}

// Tones returns the notes for e, played in order.
func Tones(e Event) []Tone {
	switch e {
	case Lock:
		return []Tone{{196, 40 * time.Millisecond}}
	case Line1:
		return []Tone{{523.25, 80 * time.Millisecond}}
	case Line2:
		return []Tone{{523.25, 70 * time.Millisecond}, {659.25, 90 * time.Millisecond}}
	case Line3:
		return []Tone{{523.25, 60 * time.Millisecond}, {659.25, 60 * time.Millisecond}, {783.99, 100 * time.Millisecond}}
	case Line4:
		return []Tone{
			{523.25, 60 * time.Millisecond},
			{659.25, 60 * time.Millisecond},
			{783.99, 60 * time.Millisecond},
			{1046.5, 160 * time.Millisecond},
		}
	case LevelUp:
		return []Tone{{880, 70 * time.Millisecond}, {1174.66, 120 * time.Millisecond}}
	case GameOver:
		return []Tone{{392, 150 * time.Millisecond}, {311.13, 150 * time.Millisecond}, {261.63, 300 * time.Millisecond}}
	default:
		return nil
	}
}

// EventsFor picks the cues for one engine step. A line clear replaces the
// plain lock click. Every way of ending the game gets the GameOver cue.
func EventsFor(ev engine.Events) []Event {
	var out []Event
	switch {
	case ev.Cleared >= 4:
		out = append(out, Line4)
	case ev.Cleared > 0:
		out = append(out, Line1+Event(ev.Cleared-1))
	case ev.Locked:
		out = append(out, Lock)
	}
	if ev.LevelUps > 0 {
		out = append(out, LevelUp)
	}
	if ev.Ended {
		out = append(out, GameOver)
	}
	return out
}

// Stream synthesizes e at sr.
func Stream(e Event, sr beep.SampleRate) (beep.Streamer, error) {
	tones := Tones(e)
	if len(tones) == 0 {
		return nil, fmt.Errorf("no tones for %s", e)
	}
	parts := make([]beep.Streamer, 0, len(tones))
	for _, t := range tones {
		sine, err := generators.SineTone(sr, t.Freq)
		if err != nil {
			return nil, fmt.Errorf("tone %.0fHz: %w", t.Freq, err)
		}
		parts = append(parts, beep.Take(sr.N(t.Duration), sine))
	}
	return volume(beep.Seq(parts...), 0.25), nil
}

func volume(s beep.Streamer, v float64) beep.Streamer {
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(v)}
}

// Player mixes cues onto the speaker. A disabled player ignores Play.
type Player struct {
	mu      sync.Mutex
	mixer   *beep.Mixer
	enabled bool
}

// New returns a player. With enabled set it opens the speaker; if that
// fails the player comes back disabled along with the error, and the game
// carries on silently.
func New(enabled bool) (*Player, error) {
	p := &Player{mixer: &beep.Mixer{}}
	if !enabled {
		return p, nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return p, fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(p.mixer)
	p.enabled = true
	return p, nil
}

// Enabled reports whether cues reach the speaker.
func (p *Player) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

// Play queues e.
func (p *Player) Play(e Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return
	}
	s, err := Stream(e, sampleRate)
	if err != nil {
		return
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
}

// PlayAll queues each of events.
func (p *Player) PlayAll(events []Event) {
	for _, e := range events {
		p.Play(e)
	}
}

// Close silences anything still playing.
func (p *Player) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.enabled {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.enabled = false
}
