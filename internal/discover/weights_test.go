package discover

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidateWeightRewardsRatingAndProximity(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	f := Filters{YearFrom: 2000, YearTo: 2010}

	strong := map[string]any{
		"vote_average": 8.4,
		"popularity":   55.0,
		"vote_count":   12000.0,
		"release_date": "2005-06-01",
	}
	weak := map[string]any{
		"vote_average": 5.1,
		"popularity":   2.0,
		"vote_count":   40.0,
		"release_date": "1971-01-01",
	}

	assert.Greater(t, candidateWeight(rng, strong, f), candidateWeight(rng, weak, f))
}

func TestCandidateWeightJittersOnlyWithRuntimeBounds(t *testing.T) {
	item := map[string]any{"vote_average": 7.0}

	a := candidateWeight(rand.New(rand.NewSource(1)), item, Filters{})
	b := candidateWeight(rand.New(rand.NewSource(2)), item, Filters{})
	assert.Equal(t, a, b)

	bounded := Filters{RuntimeFrom: 90}
	c := candidateWeight(rand.New(rand.NewSource(1)), item, bounded)
	d := candidateWeight(rand.New(rand.NewSource(2)), item, bounded)
	assert.NotEqual(t, c, d)
}

func TestWeightedDrawIsAPermutation(t *testing.T) {
	rng := rand.New(rand.NewSource(9))
	cands := []candidate{
		{id: 1, weight: 1},
		{id: 2, weight: 10},
		{id: 3, weight: 0.5},
		{id: 4, weight: 4},
	}

	out := weightedDraw(rng, cands)
	assert.Len(t, out, len(cands))
	seen := map[int]bool{}
	for _, c := range out {
		assert.False(t, seen[c.id])
		seen[c.id] = true
	}
}

func TestOrderCandidatesRankedKeepsBlockMembership(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	cands := make([]candidate, 21)
	for i := range cands {
		cands[i] = candidate{id: i + 1, weight: float64(len(cands) - i)}
	}

	out := orderCandidates(rng, cands, false)
	assert.Len(t, out, 21)

	// Weight ranking is preserved at block granularity: entries land within
	// their original block of seven.
	for pos, c := range out {
		assert.Equal(t, (c.id-1)/7, pos/7)
	}
}
