package linker

import (
	"strings"

	"github.com/coregx/ahocorasick"

	"github.com/corevault/corevault/internal/model"
)

// keywordScanner wraps a single Aho-Corasick automaton built from a task's
// extracted terms, so every candidate memory is scanned once instead of
// doing len(terms)*len(memories) substring checks.
type keywordScanner struct {
	ac    *ahocorasick.Automaton
	terms []string
}

func newKeywordScanner(terms []string) (*keywordScanner, error) {
	if len(terms) == 0 {
		return &keywordScanner{}, nil
	}
	ac, err := ahocorasick.NewBuilder().
		AddStrings(terms).
		SetMatchKind(ahocorasick.LeftmostLongest).
		SetPrefilter(true).
		Build()
	if err != nil {
		return nil, err
	}
	return &keywordScanner{ac: ac, terms: terms}, nil
}

// matches scans a memory's body/tags/category and returns the distinct
// extracted terms found in it.
func (k *keywordScanner) matches(m model.Memory) []string {
	if k.ac == nil {
		return nil
	}
	haystack := strings.ToLower(m.Body + " " + strings.Join(m.Tags, " ") + " " + string(m.Category))
	hits := k.ac.FindAllOverlapping([]byte(haystack))
	if len(hits) == 0 {
		return nil
	}
	seen := make(map[string]bool, len(hits))
	out := make([]string, 0, len(hits))
	for _, h := range hits {
		if h.PatternID < 0 || h.PatternID >= len(k.terms) {
			continue
		}
		term := k.terms[h.PatternID]
		if seen[term] {
			continue
		}
		seen[term] = true
		out = append(out, term)
	}
	return out
}
