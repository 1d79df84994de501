package seeds

import (
	"hash/fnv"
	"math/rand"
	"strings"

	"reading-club/internal/reference"
)

// Picker chooses seed passages from the curated catalog. The randomness
// source is injectable so callers can pin outcomes in tests or derive
// them from a date.
type Picker struct {
	rand func() float64
}

func NewPicker(randFn func() float64) *Picker {
	if randFn == nil {
		randFn = rand.Float64
	}
	return &Picker{rand: randFn}
}

// Pick returns up to count passages not present in excluded, cycling
// through catalog categories so a single ballot spans different parts
// of Scripture. Excluded references are matched after normalization.
func (p *Picker) Pick(count int, excluded []string) []Passage {
	return pickWith(p.rand, count, excluded)
}

// PickForDate picks deterministically for a given week start date
// (YYYY-MM-DD): the same date always yields the same ballot.
func PickForDate(startDate string, count int, excluded []string) []Passage {
	h := fnv.New32a()
	h.Write([]byte(startDate))
	src := rand.New(rand.NewSource(int64(h.Sum32())))
	return pickWith(src.Float64, count, excluded)
}

func pickWith(randFn func() float64, count int, excluded []string) []Passage {
	if count <= 0 {
		return []Passage{}
	}

	skip := make(map[string]struct{}, len(excluded))
	for _, ref := range excluded {
		skip[strings.ToLower(reference.Normalize(ref))] = struct{}{}
	}

	// Bucket candidates by category, keeping the catalog's category
	// order stable so the rotation is reproducible.
	var order []string
	buckets := make(map[string][]Passage)
	for _, entry := range catalog {
		if _, ok := skip[strings.ToLower(entry.Reference)]; ok {
			continue
		}
		if _, ok := buckets[entry.Category]; !ok {
			order = append(order, entry.Category)
		}
		buckets[entry.Category] = append(buckets[entry.Category], Passage{
			Reference: entry.Reference,
			Note:      entry.Note,
		})
	}

	picked := make([]Passage, 0, count)
	if len(order) == 0 {
		return picked
	}

	at := pickIndex(randFn, len(order))
	for len(picked) < count {
		remaining := 0
		for _, c := range order {
			remaining += len(buckets[c])
		}
		if remaining == 0 {
			break
		}

		category := order[at%len(order)]
		at++
		candidates := buckets[category]
		if len(candidates) == 0 {
			continue
		}

		i := pickIndex(randFn, len(candidates))
		picked = append(picked, candidates[i])
		buckets[category] = append(candidates[:i], candidates[i+1:]...)
	}
	return picked
}

// pickIndex maps a [0,1) sample onto a slice index, tolerating sources
// that can return exactly 1.
func pickIndex(randFn func() float64, n int) int {
	r := randFn()
	if r < 0 {
		r = 0
	}
	if r > 0.999999 {
		r = 0.999999
	}
	return int(r * float64(n))
}
