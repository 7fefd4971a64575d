package catalog

import (
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// CompareVersions orders two version strings with dotted-numeric awareness.
// Strings that parse as semantic versions are compared with semver; release
// strings that do not (e.g. "2008 R2", "1.4.2.17") fall back to a
// segment-by-segment walk where numeric segments compare numerically and the
// longer of two otherwise-equal versions wins.
func CompareVersions(a, b string) int {
	va, errA := semver.NewVersion(a)
	vb, errB := semver.NewVersion(b)
	if errA == nil && errB == nil {
		return va.Compare(vb)
	}

	as := SplitSegments(a)
	bs := SplitSegments(b)
	n := len(as)
	if len(bs) < n {
		n = len(bs)
	}
	for i := 0; i < n; i++ {
		an, aerr := strconv.Atoi(as[i])
		bn, berr := strconv.Atoi(bs[i])
		if aerr == nil && berr == nil {
			if an != bn {
				if an > bn {
					return 1
				}
				return -1
			}
			continue
		}
		if as[i] != bs[i] {
			return strings.Compare(as[i], bs[i])
		}
	}
	switch {
	case len(as) > len(bs):
		return 1
	case len(as) < len(bs):
		return -1
	}
	return 0
}

// SplitSegments breaks a version string into comparable segments on dots and
// spaces, lowercased.
func SplitSegments(v string) []string {
	return strings.FieldsFunc(strings.ToLower(v), func(r rune) bool {
		return r == '.' || r == ' ' || r == '-'
	})
}
