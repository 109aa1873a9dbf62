package hal

import (
	"fmt"
	"math/rand"
	"sync"

	"github.com/etongue-project/etongue/internal/model/entities"
)

// SimBoard is an in-memory sensing board. Each analog read applies a small
// random walk around the channel's current level so a dev setup produces a
// plausibly moving signal; with Jitter 0 the board is fully deterministic,
// which is what the tests use.
type SimBoard struct {
	mu      sync.Mutex
	rng     *rand.Rand
	jitter  int
	analog  map[entities.Channel]int
	digital map[entities.Channel]int
}

// NewSimBoard builds a simulated board with the default channel wiring and
// mid-scale starting levels.
func NewSimBoard(seed int64, jitter int) *SimBoard {
	ldrA, ldrD, phA := entities.DefaultChannels()
	return &SimBoard{
		rng:    rand.New(rand.NewSource(seed)),
		jitter: jitter,
		analog: map[entities.Channel]int{
			ldrA: 512,
			phA:  614,
		},
		digital: map[entities.Channel]int{
			ldrD: 1,
		},
	}
}

// SetAnalog pins an analog channel to a raw level.
func (s *SimBoard) SetAnalog(ch entities.Channel, raw int) {
	s.mu.Lock()
	s.analog[ch] = clampRaw(raw)
	s.mu.Unlock()
}

// SetDigital pins a digital channel to 0 or 1.
func (s *SimBoard) SetDigital(ch entities.Channel, v int) {
	s.mu.Lock()
	if v != 0 {
		v = 1
	}
	s.digital[ch] = v
	s.mu.Unlock()
}

func (s *SimBoard) ReadAnalog(ch entities.Channel) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	level, ok := s.analog[ch]
	if !ok {
		return 0, fmt.Errorf("hal: unmapped analog channel %s", ch)
	}
	if s.jitter > 0 {
		level = clampRaw(level + s.rng.Intn(2*s.jitter+1) - s.jitter)
		s.analog[ch] = level
	}
	return level, nil
}

func (s *SimBoard) ReadDigital(ch entities.Channel) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.digital[ch]
	if !ok {
		return 0, fmt.Errorf("hal: unmapped digital channel %s", ch)
	}
	return v, nil
}

func (s *SimBoard) Close() error { return nil }

func clampRaw(v int) int {
	if v < RawMin {
		return RawMin
	}
	if v > RawMax {
		return RawMax
	}
	return v
}
