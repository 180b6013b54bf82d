package systems_test

import (
	"math/rand"
	"testing"

	"github.com/pthm-cable/tilt/systems"
)

// BenchmarkSpinCycle measures one full spin on a 100×100 random platform,
// the size of a real puzzle input.
func BenchmarkSpinCycle(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	g := randomGrid(b, rng, 100, 100)
	s, err := systems.NewSpinCycle(systems.DefaultOrder)
	if err != nil {
		b.Fatalf("NewSpinCycle: %v", err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		s.Apply(g)
	}
}

func BenchmarkFingerprint(b *testing.B) {
	rng := rand.New(rand.NewSource(42))
	g := randomGrid(b, rng, 100, 100)

	for _, name := range []string{systems.CanonRaw, systems.CanonRLE, systems.CanonXXHash} {
		c, err := systems.NewCanonicalizer(name)
		if err != nil {
			b.Fatalf("NewCanonicalizer(%q): %v", name, err)
		}
		b.Run(name, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				_ = c.Fingerprint(g)
			}
		})
	}
}
