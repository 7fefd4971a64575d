package standardize

import (
	"math"
	"sort"
	"strings"

	"github.com/ortelius/advisor-backend/catalog"
	"github.com/ortelius/advisor-backend/model"
)

// Stop words stripped before vectorization, mention and catalog side alike.
var stopWords = map[string]bool{
	"of":      true,
	"for":     true,
	"version": true,
	"edition": true,
	"the":     true,
	"a":       true,
	"an":      true,
	"on":      true,
	"in":      true,
}

// Matcher scores mentions against the catalog with cosine similarity over
// document-frequency-weighted sparse term vectors. The reference vectors are
// built once from each entity's canonical name, keyword text and hierarchy
// path, then shared read-only across requests.
type Matcher struct {
	store *catalog.Store
	vocab map[string]int
	idf   []float64
	refs  []sparseVec // one per entity, catalog order
}

type sparseVec struct {
	idx  []int
	val  []float64
	norm float64
}

// NewMatcher builds the vocabulary and reference vectors for the store.
func NewMatcher(store *catalog.Store) *Matcher {
	m := &Matcher{
		store: store,
		vocab: make(map[string]int),
	}

	docs := make([][]string, len(store.Entities))
	df := make(map[string]int)
	for i, e := range store.Entities {
		doc := Tokenize(e.Name + " " + e.Keywords)
		docs[i] = doc
		for _, t := range uniqueTerms(doc) {
			df[t]++
		}
	}

	for i := range store.Entities {
		for _, t := range docs[i] {
			if _, ok := m.vocab[t]; !ok {
				m.vocab[t] = len(m.vocab)
			}
		}
	}

	n := float64(len(store.Entities))
	m.idf = make([]float64, len(m.vocab))
	for t, i := range m.vocab {
		m.idf[i] = math.Log(n/float64(df[t])) + 1
	}

	m.refs = make([]sparseVec, len(store.Entities))
	for i := range store.Entities {
		m.refs[i] = m.vectorize(docs[i])
	}
	return m
}

// Tokenize lowercases and splits on delimiter characters, dropping stop
// words. The hierarchy separator "|" and the slash both split here, so a
// mention like "unix/mainframe" and the entity name "Unix|Mainframe"
// produce the same terms.
func Tokenize(s string) []string {
	s = strings.ToLower(s)
	fields := strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case ' ', '\t', '\n', ',', '/', '\\', ':', ';', '|', '&', '(', ')', '[', ']', '{', '}', '"', '\'':
			return true
		}
		return false
	})
	out := fields[:0]
	for _, f := range fields {
		if stopWords[f] {
			continue
		}
		out = append(out, f)
	}
	return out
}

func uniqueTerms(doc []string) []string {
	seen := make(map[string]bool, len(doc))
	var out []string
	for _, t := range doc {
		if !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	return out
}

// vectorize maps tokens onto the catalog vocabulary; out-of-vocabulary terms
// are dropped so the transform matches the one the reference vectors used.
func (m *Matcher) vectorize(tokens []string) sparseVec {
	tf := make(map[int]float64)
	for _, t := range tokens {
		if i, ok := m.vocab[t]; ok {
			tf[i]++
		}
	}

	idx := make([]int, 0, len(tf))
	for i := range tf {
		idx = append(idx, i)
	}
	sort.Ints(idx)

	v := sparseVec{idx: idx, val: make([]float64, len(idx))}
	for k, i := range idx {
		w := tf[i] * m.idf[i]
		v.val[k] = w
		v.norm += w * w
	}
	v.norm = math.Sqrt(v.norm)
	return v
}

func cosine(a, b sparseVec) float64 {
	if a.norm == 0 || b.norm == 0 {
		return 0
	}
	var dot float64
	i, j := 0, 0
	for i < len(a.idx) && j < len(b.idx) {
		switch {
		case a.idx[i] == b.idx[j]:
			dot += a.val[i] * b.val[j]
			i++
			j++
		case a.idx[i] < b.idx[j]:
			i++
		default:
			j++
		}
	}
	score := dot / (a.norm * b.norm)
	// Guard the exact-match invariant against floating-point rounding.
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}

// Match scores a mention against every reference vector and returns the
// candidates in descending score order. Ties keep catalog order, so the
// first-seen entity wins. A mention that collapses to nothing after
// stop-word removal returns nil.
func (m *Matcher) Match(text string) []model.MatchCandidate {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}
	mv := m.vectorize(tokens)
	if mv.norm == 0 {
		return nil
	}

	cands := make([]model.MatchCandidate, 0, 8)
	for i := range m.refs {
		score := cosine(mv, m.refs[i])
		if score <= 0 {
			continue
		}
		e := &m.store.Entities[i]
		cands = append(cands, model.MatchCandidate{
			Entity:   e,
			EntityID: e.ID,
			Name:     e.Name,
			Category: e.Category,
			Score:    score,
		})
	}

	// Stable insertion sort by descending score; catalog order breaks ties.
	for i := 1; i < len(cands); i++ {
		for j := i; j > 0 && cands[j].Score > cands[j-1].Score; j-- {
			cands[j], cands[j-1] = cands[j-1], cands[j]
		}
	}
	return cands
}
