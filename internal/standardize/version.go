package standardize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ortelius/advisor-backend/model"
	"github.com/ortelius/advisor-backend/util"
)

// Alphanumeric tokens whose digits are product naming, not versions.
var versionMaskPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bdb2\b`),
	regexp.MustCompile(`\blog4j\b`),
	regexp.MustCompile(`\blog4shell\b`),
	regexp.MustCompile(`\b\d+\s*-?\s*bit\b`),
	regexp.MustCompile(`\bx86\b`),
	regexp.MustCompile(`\bx64\b`),
	regexp.MustCompile(`\bi386\b`),
	regexp.MustCompile(`\bamd64\b`),
	regexp.MustCompile(`\barm64\b`),
	regexp.MustCompile(`\bs390x?\b`),
	regexp.MustCompile(`\butf-?8\b`),
}

// Trailing words kept while collecting a version phrase. Anything alphabetic
// outside this list ends the phrase.
var versionKeepWords = map[string]bool{
	"service":    true,
	"pack":       true,
	"sp":         true,
	"standard":   true,
	"edition":    true,
	"edit":       true,
	"enterprise": true,
	"release":    true,
	"update":     true,
	"r2":         true,
}

var trailingNumberPattern = regexp.MustCompile(`[0-9]+(?:\.[0-9]+)*$`)

// DetectVersion extracts the version phrase from a mention, or NAVersion
// when the mention carries none.
func DetectVersion(mention string) string {
	s := strings.ToLower(mention)
	for _, p := range versionMaskPatterns {
		s = p.ReplaceAllString(s, " ")
	}

	tokens := strings.Fields(s)
	first := -1
	for i, t := range tokens {
		if util.HasDigit(t) {
			first = i
			break
		}
	}
	if first < 0 {
		return NAVersion
	}

	collected := []string{tokens[first]}
	for _, t := range tokens[first+1:] {
		if util.HasDigit(t) || versionKeepWords[t] {
			collected = append(collected, t)
			continue
		}
		break
	}

	// Trailing keep-words without a number behind them are noise.
	for len(collected) > 0 && !util.HasDigit(collected[len(collected)-1]) {
		collected = collected[:len(collected)-1]
	}
	if len(collected) == 0 {
		return NAVersion
	}

	ver := strings.Join(collected, " ")
	ver = strings.TrimPrefix(ver, "v")

	// Keep forms like "java8": no separator and a non-digit head means the
	// version is the numeric suffix.
	if !strings.ContainsAny(ver, ". ") && ver != "" && (ver[0] < '0' || ver[0] > '9') {
		suffix := trailingNumberPattern.FindString(ver)
		if suffix == "" {
			return NAVersion
		}
		ver = suffix
	}
	if ver == "" {
		return NAVersion
	}
	return ver
}

// StandardizeVersion maps a detected version onto the best-known compatible
// release in the entity's version history. The sentinel resolves to the
// entity's precomputed latest version; otherwise the history is walked for
// versions sharing the detected leading segment, and any history version
// that dominates the current baseline segment-by-segment becomes the new
// baseline. The original detected version survives when nothing dominates it.
func (s *Standardizer) StandardizeVersion(detected string, e *model.Entity) string {
	if detected == NAVersion {
		if latest, ok := s.store.LatestVersion(e.ID); ok {
			return latest
		}
		return NAVersion
	}

	bestSegs := versionSegments(detected)
	if len(bestSegs) == 0 {
		return detected
	}
	best := detected
	leading := bestSegs[0]

	for _, vr := range s.store.VersionsOf(e.ID) {
		hs := versionSegments(vr.Version)
		if len(hs) == 0 || !segmentEqual(hs[0], leading) {
			continue
		}
		if dominates(hs, bestSegs) {
			best = vr.Version
			bestSegs = hs
		}
	}
	return best
}

// dominates reports whether history segments h supersede baseline b: greater
// at the first differing numeric segment, textually equal on non-numeric
// segments, or a strict extension of b with all shared segments equal.
func dominates(h, b []string) bool {
	n := len(h)
	if len(b) < n {
		n = len(b)
	}
	for i := 1; i < n; i++ {
		hn, herr := strconv.Atoi(h[i])
		bn, berr := strconv.Atoi(b[i])
		if herr == nil && berr == nil {
			if hn > bn {
				return true
			}
			if hn < bn {
				return false
			}
			continue
		}
		if h[i] != b[i] {
			return false
		}
	}
	return len(h) > len(b)
}

func versionSegments(v string) []string {
	return strings.FieldsFunc(strings.ToLower(v), func(r rune) bool {
		return r == '.' || r == ' '
	})
}

func segmentEqual(a, b string) bool {
	an, aerr := strconv.Atoi(a)
	bn, berr := strconv.Atoi(b)
	if aerr == nil && berr == nil {
		return an == bn
	}
	return a == b
}
