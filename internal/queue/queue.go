// Package queue produces the sequence of upcoming piece kinds.
//
// A Queue wraps a Generator strategy and keeps a preview window filled.
// Generators are seeded explicitly so a session can be replayed.
package queue

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"

	apperrors "github.com/tatianab/falliant/internal/errors"
	"github.com/tatianab/falliant/internal/piece"
)

const (
	GeneratorBag    = "bag"
	GeneratorRandom = "random"
)

// Generator yields piece kinds one at a time.
type Generator interface {
	Next() piece.Kind
}

// Bag deals every kind exactly once per shuffled set of seven.
type Bag struct {
	rng *rand.Rand
	bag []piece.Kind
}

// NewBag returns a 7-bag generator drawing from rng.
func NewBag(rng *rand.Rand) *Bag {
	return &Bag{rng: rng}
}

func (b *Bag) Next() piece.Kind {
	if len(b.bag) == 0 {
		b.bag = piece.Kinds()
		b.rng.Shuffle(len(b.bag), func(i, j int) {
			b.bag[i], b.bag[j] = b.bag[j], b.bag[i]
		})
	}
	k := b.bag[0]
	b.bag = b.bag[1:]
	return k
}

// Random picks every kind uniformly and independently.
type Random struct {
	rng *rand.Rand
}

// NewRandom returns a pure random generator drawing from rng.
func NewRandom(rng *rand.Rand) *Random {
	return &Random{rng: rng}
}

func (r *Random) Next() piece.Kind {
	return piece.Kind(r.rng.IntN(piece.KindCount))
}

// NewGenerator builds the named strategy seeded with seed.
func NewGenerator(name string, seed uint64) (Generator, error) {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	switch name {
	case GeneratorBag, "":
		return NewBag(rng), nil
	case GeneratorRandom:
		return NewRandom(rng), nil
	default:
		return nil, apperrors.InvalidArgument("unknown generator %q", name)
	}
}

// NewSeed generates a random seed using crypto/rand.
func NewSeed() (uint64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}

// Queue is the ordered list of upcoming kinds.
type Queue struct {
	gen     Generator
	preview int
	items   []piece.Kind
}

// New creates a queue exposing preview upcoming kinds. preview is at least 1.
func New(gen Generator, preview int) *Queue {
	if preview < 1 {
		preview = 1
	}
	q := &Queue{gen: gen, preview: preview}
	q.fill()
	return q
}

func (q *Queue) fill() {
	for len(q.items) < q.preview {
		q.items = append(q.items, q.gen.Next())
	}
}

// Pop removes and returns the next kind.
func (q *Queue) Pop() piece.Kind {
	q.fill()
	k := q.items[0]
	q.items = q.items[1:]
	q.fill()
	return k
}

// Peek returns a copy of the preview window, next kind first.
func (q *Queue) Peek() []piece.Kind {
	q.fill()
	out := make([]piece.Kind, q.preview)
	copy(out, q.items)
	return out
}

// Len returns the preview size.
func (q *Queue) Len() int {
	return q.preview
}
