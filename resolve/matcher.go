package resolve

import (
	"runtime"
	"strings"
	"sync"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
)

// minMatchLength is the shortest normalized substation name worth matching;
// anything shorter collides with half the registry.
const minMatchLength = 3

// Similarity scores two normalized names on a 0-1 scale by blending
// Jaro-Winkler with a length-normalized Levenshtein ratio (70/30). The blend
// rewards shared prefixes, which is how ERCOT abbreviates substations, while
// the edit-distance term keeps wholesale rearrangements from scoring high.
func Similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	jw := smetrics.JaroWinkler(a, b, 0.7, 4)
	maxLen := len(a)
	if len(b) > maxLen {
		maxLen = len(b)
	}
	lev := 1.0 - float64(levenshtein.ComputeDistance(a, b))/float64(maxLen)
	return 0.7*jw + 0.3*lev
}

// Matcher resolves nodes against the plant registry with staged strategies:
// prefix, then substring, then fuzzy similarity. A plant claimed by one node
// leaves the pool for every later node and stage.
type Matcher struct {
	plants     []Plant
	norms      []string // normalized plant names, parallel to plants
	claimed    []bool
	cutoff     float64
	normalizer *Normalizer
}

// NewMatcher builds a matcher over the plant registry. The registry is
// normalized once up front; cutoff is the minimum fuzzy similarity.
func NewMatcher(plants []Plant, suffixes []string, cutoff float64) *Matcher {
	m := &Matcher{
		plants:     plants,
		norms:      make([]string, len(plants)),
		claimed:    make([]bool, len(plants)),
		cutoff:     cutoff,
		normalizer: NewNormalizer(suffixes),
	}
	for i, p := range plants {
		m.norms[i] = NormalizeText(p.Name)
	}
	return m
}

// better reports whether plant index i beats index j as a match candidate.
// Shorter normalized name wins, then lexicographic order, then registry
// position; ambiguous ties therefore resolve the same way on every run.
func (m *Matcher) better(i, j int) bool {
	if j < 0 {
		return true
	}
	if len(m.norms[i]) != len(m.norms[j]) {
		return len(m.norms[i]) < len(m.norms[j])
	}
	if m.norms[i] != m.norms[j] {
		return m.norms[i] < m.norms[j]
	}
	return i < j
}

// matchScan runs one deterministic scan stage (prefix or substring) over the
// unclaimed pool and returns the winning plant index, or -1.
func (m *Matcher) matchScan(name string, accept func(norm string) bool) int {
	best := -1
	for i := range m.plants {
		if m.claimed[i] || !accept(m.norms[i]) {
			continue
		}
		if m.better(i, best) {
			best = i
		}
	}
	return best
}

// fuzzyScore pairs a plant index with its similarity to the probe name
type fuzzyScore struct {
	index int
	score float64
}

// matchFuzzy scores the probe against every unclaimed plant and returns the
// best index at or above the cutoff, or -1. Scoring fans out across
// goroutine chunks; the reduction uses the same total order as the scan
// stages, so the answer does not depend on scheduling.
func (m *Matcher) matchFuzzy(name string) int {
	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}
	if workers < 1 || len(m.plants) < 64 {
		workers = 1
	}

	results := make([]fuzzyScore, workers)
	chunk := (len(m.plants) + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := lo + chunk
		if hi > len(m.plants) {
			hi = len(m.plants)
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			local := fuzzyScore{index: -1}
			for i := lo; i < hi; i++ {
				if m.claimed[i] {
					continue
				}
				score := Similarity(name, m.norms[i])
				if score < m.cutoff {
					continue
				}
				if score > local.score || (score == local.score && m.better(i, local.index)) {
					local = fuzzyScore{index: i, score: score}
				}
			}
			results[w] = local
		}(w, lo, hi)
	}
	wg.Wait()

	best := fuzzyScore{index: -1}
	for _, r := range results {
		if r.index == -1 {
			continue
		}
		if best.index == -1 || r.score > best.score || (r.score == best.score && m.better(r.index, best.index)) {
			best = r
		}
	}
	return best.index
}

// MatchNode attempts to resolve a single node against the unclaimed pool,
// trying prefix, substring and fuzzy stages in order until one succeeds.
// A successful match claims the plant. Returns false when every stage
// misses, which is an expected outcome, not an error.
func (m *Matcher) MatchNode(node Node) (Candidate, bool) {
	name := m.normalizer.Normalize(node.Substation)
	if len(name) < minMatchLength {
		return Candidate{}, false
	}

	if i := m.matchScan(name, func(norm string) bool { return strings.HasPrefix(norm, name) }); i >= 0 {
		return m.claim(node, i, MethodPrefix, 0), true
	}
	if i := m.matchScan(name, func(norm string) bool { return strings.Contains(norm, name) }); i >= 0 {
		return m.claim(node, i, MethodSubstring, 0), true
	}
	if i := m.matchFuzzy(name); i >= 0 {
		return m.claim(node, i, MethodFuzzy, Similarity(name, m.norms[i])), true
	}

	return Candidate{}, false
}

// Match resolves nodes in order against the registry. Claims commit in the
// given node order, so identical inputs always produce identical output.
func (m *Matcher) Match(nodes []Node) []Candidate {
	var matched []Candidate
	for _, node := range nodes {
		if c, ok := m.MatchNode(node); ok {
			matched = append(matched, c)
		}
	}
	return matched
}

func (m *Matcher) claim(node Node, i int, method Method, score float64) Candidate {
	m.claimed[i] = true
	p := m.plants[i]
	return Candidate{
		NodeID:    node.ID,
		Lat:       p.Lat,
		Lon:       p.Lon,
		PlantName: p.Name,
		Method:    method,
		Score:     score,
	}
}
