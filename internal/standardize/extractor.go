// Package standardize implements mention extraction, entity standardization
// and version resolution against the technology catalog.
package standardize

import (
	"regexp"
	"strings"

	"github.com/ortelius/advisor-backend/model"
	"github.com/ortelius/advisor-backend/util"
)

var bracketReplacer = strings.NewReplacer(
	"(", " ", ")", " ", "[", " ", "]", " ", "{", " ", "}", " ",
	`"`, " ", "'", " ", "`", " ",
)

// Compact spellings rewritten to their spaced equivalents before delimiter
// splitting.
var ambiguousTokens = map[string]string{
	"visualbasic": "visual basic",
	"shellscript": "shell script",
	"javaee":      "java ee",
	"javascripts": "javascript",
	"dotnet":      ".net",
}

// Slash-containing tokens that must survive delimiter splitting intact.
// "n/a" stays whole so the noise filter can drop it.
var slashAllowList = map[string]bool{
	"n/a":            true,
	"os/2":           true,
	"os/360":         true,
	"os/390":         true,
	"os/400":         true,
	"z/os":           true,
	"z/vm":           true,
	"z/vse":          true,
	"s/390":          true,
	"a/ux":           true,
	"tcp/ip":         true,
	"pl/1":           true,
	"pl/i":           true,
	"pl/sql":         true,
	"unix/mainframe": true,
}

// Words that qualify a version number; a combination boundary never
// separates them from an adjacent numeric word.
var versionSuffixVocab = map[string]bool{
	"service":    true,
	"pack":       true,
	"sp":         true,
	"edition":    true,
	"standard":   true,
	"enterprise": true,
	"datacenter": true,
	"release":    true,
	"update":     true,
	"r2":         true,
}

var (
	numericRangePattern = regexp.MustCompile(`^\d+(/\d+)+$`)
	pureNumberPattern   = regexp.MustCompile(`^[\d.\s]+$`)
	andWordPattern      = regexp.MustCompile(`\band\b`)
)

var noiseMentions = map[string]bool{
	"":               true,
	"n/a":            true,
	"na":             true,
	"none":           true,
	"nil":            true,
	"null":           true,
	"tbd":            true,
	"unknown":        true,
	"-":              true,
	"not applicable": true,
}

// Extract splits raw free-text into normalized candidate mentions and, for
// every multi-word mention, the prefix/suffix fragments of its combination
// group. Fragment selection happens later, once match results exist.
func Extract(text string) []model.Mention {
	base := splitMentions(text)

	var mentions []model.Mention
	group := 0
	for _, m := range base {
		words := strings.Fields(m)
		if len(words) <= 1 {
			mentions = append(mentions, model.Mention{Raw: m, Text: m, Start: 0, End: len(words)})
			continue
		}
		group++
		mentions = append(mentions, fragments(m, words, group)...)
	}
	return mentions
}

// splitMentions performs the primary comma split, textual normalization and
// guarded secondary-delimiter split, then drops noise and de-duplicates
// case-sensitively in first-seen order.
func splitMentions(text string) []string {
	var out []string
	seen := make(map[string]bool)

	for _, part := range strings.Split(text, ",") {
		for _, seg := range splitSegment(part) {
			seg = strings.Join(strings.Fields(seg), " ")
			if isNoise(seg) {
				continue
			}
			if seen[seg] {
				continue
			}
			seen[seg] = true
			out = append(out, seg)
		}
	}
	return out
}

func splitSegment(seg string) []string {
	seg = bracketReplacer.Replace(seg)

	words := strings.Fields(seg)
	for i, w := range words {
		if repl, ok := ambiguousTokens[strings.ToLower(w)]; ok {
			words[i] = repl
			continue
		}
		words[i] = splitSlashes(w)
	}
	seg = strings.Join(words, " ")

	// Colon, ampersand and the word "and" always split.
	seg = strings.ReplaceAll(seg, ":", ",")
	seg = strings.ReplaceAll(seg, "&", ",")
	seg = andWordPattern.ReplaceAllString(seg, ",")

	return strings.Split(seg, ",")
}

// splitSlashes turns slashes in a word into mention boundaries unless the
// word is a recognized numeric range ("3/4/5/6/7") or an allow-listed
// slash-containing name ("z/os").
func splitSlashes(w string) string {
	if !strings.Contains(w, "/") {
		return w
	}
	lower := strings.ToLower(w)
	if slashAllowList[lower] || numericRangePattern.MatchString(lower) {
		return w
	}
	return strings.ReplaceAll(w, "/", ",")
}

func isNoise(seg string) bool {
	if noiseMentions[strings.ToLower(seg)] {
		return true
	}
	return pureNumberPattern.MatchString(seg)
}

// fragments generates every prefix and suffix word-subsequence of a
// multi-word mention down to length 1, all tagged with the shared group id.
// The full mention is always first so the longest match wins ties.
func fragments(raw string, words []string, group int) []model.Mention {
	type span struct{ start, end int }
	var spans []span
	seen := make(map[span]bool)

	add := func(start, end int) {
		sp := span{start, end}
		if seen[sp] {
			return
		}
		seen[sp] = true
		spans = append(spans, sp)
	}

	add(0, len(words))
	for end := len(words) - 1; end >= 1; end-- {
		if cutAllowed(words, end) {
			add(0, end)
		}
	}
	for start := 1; start < len(words); start++ {
		if cutAllowed(words, start) {
			add(start, len(words))
		}
	}

	out := make([]model.Mention, 0, len(spans))
	for _, sp := range spans {
		out = append(out, model.Mention{
			Raw:   raw,
			Text:  strings.Join(words[sp.start:sp.end], " "),
			Group: group,
			Start: sp.start,
			End:   sp.end,
		})
	}
	return out
}

// cutAllowed reports whether a fragment boundary may fall before word i.
// A boundary never separates a version-suffix word from the number it
// qualifies, so "2008 | r2" and "pack | 2" are rejected.
func cutAllowed(words []string, i int) bool {
	left := strings.ToLower(words[i-1])
	right := strings.ToLower(words[i])
	if versionSuffixVocab[left] && util.HasDigit(right) {
		return false
	}
	if util.HasDigit(left) && versionSuffixVocab[right] {
		return false
	}
	return true
}
