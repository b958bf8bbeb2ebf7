package progression

import (
	"math/rand/v2"

	"github.com/AccelByte/extend-runner-progression/pkg/domain"
	"github.com/AccelByte/extend-runner-progression/pkg/errors"
)

// pickTemplates draws n templates from pool uniformly at random without
// replacement. The result keeps draw order; pool is not modified.
func pickTemplates(rng *rand.Rand, pool []domain.MissionTemplate, n int) ([]domain.MissionTemplate, error) {
	if n <= 0 {
		return nil, errors.ErrInvalidInput("active mission count must be positive")
	}
	if len(pool) < n {
		return nil, errors.ErrInsufficientTemplates(len(pool), n)
	}

	idx := make([]int, len(pool))
	for i := range idx {
		idx[i] = i
	}
	// Partial Fisher-Yates: only the first n slots are needed.
	for i := 0; i < n; i++ {
		j := i + rng.IntN(len(idx)-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	picked := make([]domain.MissionTemplate, n)
	for i := 0; i < n; i++ {
		picked[i] = pool[idx[i]]
	}
	return picked, nil
}
