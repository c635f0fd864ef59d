package scoring

import (
	_ "embed"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

//go:embed tables.yaml
var defaultTables []byte

// defaultCompatibility scores a subtype pair with no edge in the graph.
const defaultCompatibility = 3

type weatherFit struct {
	Ideal []string `yaml:"ideal"`
	Bad   []string `yaml:"bad"`
}

type rawTables struct {
	Temperature   map[string][]float64  `yaml:"temperature"`
	Incompatible  map[string][]string   `yaml:"incompatible"`
	Compatibility [][]string            `yaml:"compatibility"`
	Weather       map[string]weatherFit `yaml:"weather"`
}

type tempRange struct {
	min, max float64
}

// tables is the parsed, lookup-friendly form of the scoring data.
type tables struct {
	temperature map[string]tempRange
	clashes     map[string]map[string]bool
	compat      map[string]map[string]int
	ideal       map[string]map[string]bool
	bad         map[string]map[string]bool
}

func set(values []string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

func parseTables(data []byte) (*tables, error) {
	var raw rawTables
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse scoring tables: %w", err)
	}

	t := &tables{
		temperature: make(map[string]tempRange, len(raw.Temperature)),
		clashes:     make(map[string]map[string]bool, len(raw.Incompatible)),
		compat:      make(map[string]map[string]int),
		ideal:       make(map[string]map[string]bool, len(raw.Weather)),
		bad:         make(map[string]map[string]bool, len(raw.Weather)),
	}

	for subtype, r := range raw.Temperature {
		if len(r) != 2 {
			return nil, fmt.Errorf("temperature range for %q: want [min, max], got %v", subtype, r)
		}
		t.temperature[subtype] = tempRange{min: r[0], max: r[1]}
	}
	for color, others := range raw.Incompatible {
		t.clashes[color] = set(others)
	}
	for _, edge := range raw.Compatibility {
		if len(edge) != 3 {
			return nil, fmt.Errorf("compatibility edge %v: want [a, b, score]", edge)
		}
		score, err := strconv.Atoi(edge[2])
		if err != nil {
			return nil, fmt.Errorf("compatibility edge %v: %w", edge, err)
		}
		t.addEdge(edge[0], edge[1], score)
	}
	for condition, fit := range raw.Weather {
		t.ideal[condition] = set(fit.Ideal)
		t.bad[condition] = set(fit.Bad)
	}
	return t, nil
}

// addEdge records an undirected compatibility edge.
func (t *tables) addEdge(a, b string, score int) {
	if t.compat[a] == nil {
		t.compat[a] = map[string]int{}
	}
	if t.compat[b] == nil {
		t.compat[b] = map[string]int{}
	}
	t.compat[a][b] = score
	t.compat[b][a] = score
}
