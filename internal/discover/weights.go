package discover

import (
	"math"
	"math/rand"
	"sort"
	"strconv"
)

// candidate is one listing entry carrying its selection weight.
type candidate struct {
	id     int
	weight float64
}

// candidateWeight scores a listing entry for the weighted draw. Rating,
// popularity and vote count all contribute sublinearly; proximity to the
// requested year-range midpoint adds a bonus, and runtime bounds add a small
// random jitter because listings do not carry runtime.
func candidateWeight(rng *rand.Rand, item map[string]any, f Filters) float64 {
	weight := 1.0
	if rating, ok := getFloat(item, "vote_average"); ok && rating > 0 {
		weight += rating / 2
	}
	if popularity, ok := getFloat(item, "popularity"); ok && popularity > 0 {
		weight += math.Log1p(popularity)
	}
	if votes, ok := getFloat(item, "vote_count"); ok && votes > 0 {
		weight += math.Log1p(votes) / 2
	}
	if mid := f.yearMidpoint(); mid > 0 {
		if year := releaseYear(item); year > 0 {
			distance := math.Abs(float64(year - mid))
			weight += 3 / (1 + distance/5)
		}
	}
	if f.hasRuntimeBounds() {
		weight *= 0.9 + 0.2*rng.Float64()
	}
	return weight
}

func releaseYear(item map[string]any) int {
	date := getString(item, "release_date")
	if len(date) < 4 {
		return 0
	}
	year, err := strconv.Atoi(date[:4])
	if err != nil {
		return 0
	}
	return year
}

// orderCandidates produces the resolve order for a partition. Shuffling
// strategies use a weighted draw without replacement; ranking strategies
// keep weight order but shuffle within fixed-size blocks so repeated
// requests do not always land on the same head entries.
func orderCandidates(rng *rand.Rand, cands []candidate, shuffle bool) []candidate {
	if shuffle {
		return weightedDraw(rng, cands)
	}
	ordered := make([]candidate, len(cands))
	copy(ordered, cands)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].weight > ordered[j].weight })
	blockShuffle(rng, ordered, 7)
	return ordered
}

// weightedDraw samples the whole slice without replacement, each pick
// proportional to the remaining weights.
func weightedDraw(rng *rand.Rand, cands []candidate) []candidate {
	pool := make([]candidate, len(cands))
	copy(pool, cands)
	total := 0.0
	for _, c := range pool {
		total += c.weight
	}
	out := make([]candidate, 0, len(pool))
	for len(pool) > 0 {
		pick := len(pool) - 1
		r := rng.Float64() * total
		for i, c := range pool {
			r -= c.weight
			if r <= 0 {
				pick = i
				break
			}
		}
		chosen := pool[pick]
		out = append(out, chosen)
		total -= chosen.weight
		pool = append(pool[:pick], pool[pick+1:]...)
	}
	return out
}

func blockShuffle(rng *rand.Rand, cands []candidate, block int) {
	for start := 0; start < len(cands); start += block {
		end := start + block
		if end > len(cands) {
			end = len(cands)
		}
		window := cands[start:end]
		rng.Shuffle(len(window), func(i, j int) { window[i], window[j] = window[j], window[i] })
	}
}
