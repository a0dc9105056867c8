package sound

import (
	"testing"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tatianab/falliant/internal/engine"
)

func TestEventsFor(t *testing.T) {
	tests := []struct {
		name string
		ev   engine.Events
		want []Event
	}{
		{"nothing", engine.Events{Moved: true}, nil},
		{"lock", engine.Events{Locked: true}, []Event{Lock}},
		{"double", engine.Events{Locked: true, Cleared: 2}, []Event{Line2}},
		{"tetris level up", engine.Events{Locked: true, Cleared: 4, LevelUps: 1}, []Event{Line4, LevelUp}},
		{"top out", engine.Events{Locked: true, ToppedOut: true, Ended: true}, []Event{Lock, GameOver}},
		{"quit", engine.Events{Ended: true}, []Event{GameOver}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EventsFor(tt.ev))
		})
	}
}

func TestStreamLength(t *testing.T) {
	sr := beep.SampleRate(8000)
	for e := Lock; e <= GameOver; e++ {
		t.Run(e.String(), func(t *testing.T) {
			want := 0
			for _, tone := range Tones(e) {
				want += sr.N(tone.Duration)
			}
			require.NotZero(t, want)

			s, err := Stream(e, sr)
			require.NoError(t, err)
			buf := make([][2]float64, 512)
			got := 0
			for {
				n, ok := s.Stream(buf)
				got += n
				if !ok {
					break
				}
			}
			assert.Equal(t, want, got)
		})
	}
}

func TestStreamUnknownEvent(t *testing.T) {
	_, err := Stream(Event(99), sampleRate)
	assert.Error(t, err)
}

func TestDisabledPlayer(t *testing.T) {
	p, err := New(false)
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	p.PlayAll([]Event{Lock, Line4})
	p.Close()
}
