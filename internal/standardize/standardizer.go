package standardize

import (
	"sort"
	"strings"

	"github.com/ortelius/advisor-backend/catalog"
	"github.com/ortelius/advisor-backend/model"
)

// Sentinels for "no version detected" and "best score below the similarity
// floor".
const (
	NAVersion  = "NA_VERSION"
	NACategory = "NA_CATEGORY"
)

// Config holds the confidence-tier thresholds. HighThreshold returns a
// single candidate, MediumThreshold widens the window to three, anything
// lower returns two; a score at or below SimilarityFloor terminates the
// window with the NA_CATEGORY placeholder.
type Config struct {
	HighThreshold   float64
	MediumThreshold float64
	SimilarityFloor float64
}

// DefaultConfig returns the documented threshold defaults.
func DefaultConfig() Config {
	return Config{HighThreshold: 0.8, MediumThreshold: 0.3, SimilarityFloor: 0.0}
}

// Standardizer resolves mentions to catalog entities and versions.
type Standardizer struct {
	store   *catalog.Store
	matcher *Matcher
	cfg     Config
}

// New builds a Standardizer, constructing the similarity model for the store.
func New(store *catalog.Store, cfg Config) *Standardizer {
	return &Standardizer{store: store, matcher: NewMatcher(store), cfg: cfg}
}

// Standardize returns the confidence-tier window of candidates for one
// mention, at most one candidate per top-level category root. An empty
// result signals that the mention produced no entity.
func (s *Standardizer) Standardize(text string) []model.MatchCandidate {
	scored := s.matcher.Match(text)
	if len(scored) == 0 {
		return nil
	}

	deduped := dedupeRoots(scored)

	limit := 2
	switch {
	case deduped[0].Score >= s.cfg.HighThreshold:
		limit = 1
	case deduped[0].Score >= s.cfg.MediumThreshold:
		limit = 3
	}

	var out []model.MatchCandidate
	for i := 0; i < limit && i < len(deduped); i++ {
		c := deduped[i]
		if c.Score <= s.cfg.SimilarityFloor {
			out = append(out, model.MatchCandidate{
				EntityID: -1,
				Name:     NACategory,
				Score:    c.Score,
			})
			break
		}
		out = append(out, c)
	}
	return out
}

// dedupeRoots collapses candidates sharing a top-level category root,
// keeping the first (highest-scoring) occurrence per root.
func dedupeRoots(cands []model.MatchCandidate) []model.MatchCandidate {
	seen := make(map[string]bool)
	out := cands[:0:0]
	for _, c := range cands {
		root := strings.ToLower(c.Entity.Root())
		if seen[root] {
			continue
		}
		seen[root] = true
		out = append(out, c)
	}
	return out
}

// Apply extracts mentions from the tech-stack text and fills the component's
// category buckets, unknown list and low/medium confidence map. Standalone
// mentions are assigned directly; each combination group is resolved from its
// full word sequence.
func (s *Standardizer) Apply(comp *model.Component, text string) {
	for _, m := range Extract(text) {
		if m.Group == 0 {
			s.assign(comp, m.Text, s.Standardize(m.Text))
			continue
		}
		// The full-span fragment leads its group; the shorter fragments are
		// regenerated per remainder during recursive resolution.
		if m.Text == m.Raw {
			s.resolveSpan(comp, strings.Fields(m.Text))
		}
	}
}

// resolveSpan assigns the longest confidently matched fragment of a word
// sequence, then recurses into the words left and right of the winner. A
// sequence with no confident fragment is assigned whole, landing in
// low_medium_confidence or unknown depending on what it scored.
func (s *Standardizer) resolveSpan(comp *model.Component, words []string) {
	if len(words) == 0 {
		return
	}

	frags := fragments(strings.Join(words, " "), words, 0)
	sort.SliceStable(frags, func(i, j int) bool {
		return frags[i].Words() > frags[j].Words()
	})

	var fullCands []model.MatchCandidate
	for i, m := range frags {
		cands := s.Standardize(m.Text)
		if i == 0 {
			fullCands = cands
		}
		if len(cands) == 0 || cands[0].Entity == nil || cands[0].Score < s.cfg.HighThreshold {
			continue
		}
		s.assign(comp, m.Text, cands)
		s.resolveSpan(comp, words[:m.Start])
		s.resolveSpan(comp, words[m.End:])
		return
	}
	s.assign(comp, strings.Join(words, " "), fullCands)
}

// assign routes one mention's candidate window into the component record.
// High-confidence single candidates land in their category bucket (or the
// general-technology list); anything else is kept with all candidates under
// low_medium_confidence. The two destinations are mutually exclusive per
// mention, first insertion wins.
func (s *Standardizer) assign(comp *model.Component, mention string, cands []model.MatchCandidate) {
	if comp.HasMention(mention) {
		return
	}
	if comp.LowMediumConfidence.Has(mention) {
		return
	}

	if len(cands) == 0 || cands[0].Entity == nil {
		comp.AddUnknown(mention)
		return
	}

	if len(cands) > 1 || cands[0].Score < s.cfg.HighThreshold {
		if comp.LowMediumConfidence == nil {
			comp.LowMediumConfidence = model.NewCandidateMap()
		}
		comp.LowMediumConfidence.Set(mention, cands)
		return
	}

	e := cands[0].Entity
	detected := DetectVersion(mention)
	standardized := s.StandardizeVersion(detected, e)
	comp.Bucket(e.Category).Set(mention, model.StandardizedTech{
		Name:                e.Name,
		EntityID:            e.ID,
		DetectedVersion:     detected,
		StandardizedVersion: standardized,
		Score:               cands[0].Score,
	})
}
