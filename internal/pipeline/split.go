package pipeline

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// Split partitions indices [0, n) into a shuffled train and test set.
// The same seed always yields the same partition.
func Split(n int, testFraction float64, seed uint64) (train, test []int, err error) {
	if testFraction <= 0 || testFraction >= 1 {
		return nil, nil, fmt.Errorf("test fraction %.2f must be in (0, 1)", testFraction)
	}

	testSize := int(math.Ceil(testFraction * float64(n)))
	if testSize < 1 || n-testSize < 1 {
		return nil, nil, fmt.Errorf("cannot split %d samples with test fraction %.2f", n, testFraction)
	}

	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	perm := rng.Perm(n)

	return perm[testSize:], perm[:testSize], nil
}
