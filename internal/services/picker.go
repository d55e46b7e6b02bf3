package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
	mrand "math/rand"
	"sync"
)

// Picker chooses a uniform index in [0, n).
type Picker interface {
	Pick(n int) (int, error)
}

type seededPicker struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeededPicker returns a deterministic picker. The same seed over the same
// eligible set reproduces the same draw.
func NewSeededPicker(seed int64) Picker {
	return &seededPicker{rng: mrand.New(mrand.NewSource(seed))}
}

func (p *seededPicker) Pick(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("pick from empty range")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rng.Intn(n), nil
}

type cryptoPicker struct{}

// NewCryptoPicker returns a picker backed by crypto/rand.
func NewCryptoPicker() Picker {
	return cryptoPicker{}
}

func (cryptoPicker) Pick(n int) (int, error) {
	if n <= 0 {
		return 0, fmt.Errorf("pick from empty range")
	}
	v, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		return 0, fmt.Errorf("read random index: %w", err)
	}
	return int(v.Int64()), nil
}
