// Package scoring assembles an outfit from a wardrobe by scoring every
// candidate against the weather and the pieces already chosen. Lower scores
// are better.
package scoring

import (
	"math/rand/v2"
	"sort"
	"sync"

	"github.com/atinyakov/wardrobix/internal/models"
)

// Order in which garment slots are filled. Later slots are scored against
// the earlier picks.
var slotOrder = []string{
	models.TypeTop,
	models.TypeBottom,
	models.TypeFootwear,
	models.TypeOuterwear,
	models.TypeHeadwear,
}

var optionalSlots = map[string]bool{
	models.TypeOuterwear: true,
	models.TypeHeadwear:  true,
}

const (
	// coldF is the temperature at or below which optional layers are always worn.
	coldF = 40
	// optionalCutoff is the score an optional pick must stay under otherwise.
	optionalCutoff = 4
	// candidatePool caps how many best/second-best candidates are considered.
	candidatePool = 5
	// finalists is how many shuffled candidates enter the weighted draw.
	finalists = 3
)

// Conditions describes the weather an outfit is picked for.
type Conditions struct {
	// TempF is the current temperature in Fahrenheit.
	TempF float64
	// Weather is a simplified condition such as "sunny" or "rainy".
	Weather string
}

// Engine scores clothing items and picks outfits. It is safe for concurrent use.
type Engine struct {
	t *tables

	mu  sync.Mutex
	rnd *rand.Rand
}

// New returns an Engine backed by the built-in scoring tables. src drives the
// random choice between similarly scored items; nil uses a random seed.
func New(src rand.Source) (*Engine, error) {
	return NewFromYAML(defaultTables, src)
}

// NewFromYAML returns an Engine backed by custom scoring tables.
func NewFromYAML(data []byte, src rand.Source) (*Engine, error) {
	t, err := parseTables(data)
	if err != nil {
		return nil, err
	}
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Engine{t: t, rnd: rand.New(src)}, nil
}

// TemperatureScore is 0 inside the subtype's comfort range, 2 within ten
// degrees of it and 5 beyond. Unknown subtypes score 0.
func (e *Engine) TemperatureScore(subtype string, tempF float64) int {
	r, ok := e.t.temperature[subtype]
	switch {
	case !ok:
		return 0
	case tempF >= r.min && tempF <= r.max:
		return 0
	case tempF < r.min-10 || tempF > r.max+10:
		return 5
	default:
		return 2
	}
}

// ColorScore counts the outfit pieces whose color clashes with item.
func (e *Engine) ColorScore(item models.ClothingItem, outfit []models.ClothingItem) int {
	clashes := e.t.clashes[item.Color]
	score := 0
	for _, o := range outfit {
		if clashes[o.Color] {
			score++
		}
	}
	return score
}

// CompatibilityScore sums the subtype edge weights between item and every
// outfit piece.
func (e *Engine) CompatibilityScore(item models.ClothingItem, outfit []models.ClothingItem) int {
	edges := e.t.compat[item.Subtype]
	score := 0
	for _, o := range outfit {
		w, ok := edges[o.Subtype]
		if !ok {
			w = defaultCompatibility
		}
		score += w
	}
	return score
}

// WeatherScore is 0 for subtypes suited to the condition, 3 for ones that
// fight it and 1 otherwise. Unknown conditions score 0.
func (e *Engine) WeatherScore(subtype, weather string) int {
	ideal, ok := e.t.ideal[weather]
	if !ok {
		return 0
	}
	if ideal[subtype] {
		return 0
	}
	if e.t.bad[weather][subtype] {
		return 3
	}
	return 1
}

// Score is the total score of item given the pieces chosen so far.
func (e *Engine) Score(item models.ClothingItem, cond Conditions, outfit []models.ClothingItem) int {
	return e.TemperatureScore(item.Subtype, cond.TempF) +
		e.ColorScore(item, outfit) +
		e.CompatibilityScore(item, outfit) +
		e.WeatherScore(item.Subtype, cond.Weather)
}

type scored struct {
	item  models.ClothingItem
	score int
}

// Outfit fills each slot that has options with one item. Required slots
// always get a pick. Optional slots get one only when it is cold or the pick
// scores under the cutoff.
func (e *Engine) Outfit(options map[string][]models.ClothingItem, cond Conditions) models.Outfit {
	chosen := make([]models.ClothingItem, 0, len(slotOrder))
	for _, slot := range slotOrder {
		items := options[slot]
		if len(items) == 0 {
			continue
		}
		pick := e.pick(items, cond, chosen)
		if optionalSlots[slot] && !keepOptional(pick, cond) {
			continue
		}
		chosen = append(chosen, pick.item)
	}

	outfit := make(models.Outfit, len(chosen))
	for i := range chosen {
		outfit[i] = &chosen[i]
	}
	return outfit
}

func keepOptional(pick scored, cond Conditions) bool {
	if cond.TempF <= coldF && pick.item.Subtype != "cap" {
		return true
	}
	return pick.score < optionalCutoff
}

func (e *Engine) pick(items []models.ClothingItem, cond Conditions, outfit []models.ClothingItem) scored {
	all := make([]scored, len(items))
	for i, it := range items {
		all[i] = scored{item: it, score: e.Score(it, cond, outfit)}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].score < all[j].score })

	pool := topCandidates(all)

	e.mu.Lock()
	defer e.mu.Unlock()
	e.rnd.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	if len(pool) > finalists {
		pool = pool[:finalists]
	}
	return weightedPick(pool, e.rnd)
}

// topCandidates returns every best-scored entry plus, while fewer than the
// pool size, entries of the second-best score. sorted must be ascending.
func topCandidates(sorted []scored) []scored {
	best := sorted[0].score
	pool := make([]scored, 0, candidatePool)
	i := 0
	for ; i < len(sorted) && sorted[i].score == best; i++ {
		pool = append(pool, sorted[i])
	}
	if len(pool) >= candidatePool || i == len(sorted) {
		return pool
	}
	second := sorted[i].score
	for ; i < len(sorted) && sorted[i].score == second && len(pool) < candidatePool; i++ {
		pool = append(pool, sorted[i])
	}
	return pool
}

// weightedPick draws one entry, weighting each by how far its score sits
// below the pool total. The total starts at 1 so a lone zero score still
// has weight.
func weightedPick(pool []scored, rnd *rand.Rand) scored {
	total := 1
	for _, s := range pool {
		total += s.score
	}
	weights := 0
	for _, s := range pool {
		weights += total - s.score
	}
	n := rnd.IntN(weights)
	for _, s := range pool {
		n -= total - s.score
		if n < 0 {
			return s
		}
	}
	return pool[len(pool)-1]
}
