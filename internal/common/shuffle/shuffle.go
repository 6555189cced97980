package shuffle

import (
	"math/rand"
	"time"
)

//go:generate mockgen -package=mocks -destination=mocks/mock_shuffler.go github.com/guesswho-game/guesswho/internal/common/shuffle Shuffler

// Shuffler produces random orderings and picks. Injected so services
// can be tested with deterministic permutations.
type Shuffler interface {
	// Perm returns a uniformly random permutation of [0, n)
	Perm(n int) []int

	// Intn returns a uniformly random int in [0, n)
	Intn(n int) int
}

// DefaultShuffler implements Shuffler using math/rand with a
// Fisher-Yates permutation
type DefaultShuffler struct {
	rand *rand.Rand
}

func New() *DefaultShuffler {
	return &DefaultShuffler{
		rand: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Perm returns a uniformly random permutation of [0, n)
func (s *DefaultShuffler) Perm(n int) []int {
	return s.rand.Perm(n)
}

// Intn returns a uniformly random int in [0, n)
func (s *DefaultShuffler) Intn(n int) int {
	return s.rand.Intn(n)
}
