// Package entropy provides the random source behind every stochastic draw in
// the game: market moves, event shocks, and property generation. All
// subsystems take a Source so tests can supply fixed sequences and verify
// exact outputs.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

// Source yields uniform random draws.
type Source interface {
	// Float64 returns a uniform value in [0, 1).
	Float64() float64
	// Intn returns a uniform integer in [0, n).
	Intn(n int) int
}

// NewSeeded returns a deterministic source. Two sources built from the same
// seed produce identical sequences, which makes whole sessions replayable.
func NewSeeded(seed int64) Source {
	return &seeded{rng: mrand.New(mrand.NewSource(seed))}
}

type seeded struct {
	rng *mrand.Rand
}

func (s *seeded) Float64() float64 { return s.rng.Float64() }
func (s *seeded) Intn(n int) int   { return s.rng.Intn(n) }

// Crypto returns a source backed by crypto/rand, for sessions that should
// not be replayable.
func Crypto() Source {
	return cryptoSource{}
}

type cryptoSource struct{}

func (cryptoSource) Float64() float64 {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		// Should never happen; 0.5 keeps the game moving.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

func (c cryptoSource) Intn(n int) int {
	return int(c.Float64() * float64(n))
}

// Fixed is a test source that replays a preset sequence of floats, cycling
// when exhausted. Intn derives from the same sequence.
type Fixed struct {
	Seq []float64
	i   int
}

// NewFixed builds a Fixed source from the given draws.
func NewFixed(seq ...float64) *Fixed {
	return &Fixed{Seq: seq}
}

func (f *Fixed) Float64() float64 {
	if len(f.Seq) == 0 {
		return 0.5
	}
	v := f.Seq[f.i%len(f.Seq)]
	f.i++
	return v
}

func (f *Fixed) Intn(n int) int {
	return int(f.Float64() * float64(n))
}
