// Package linker computes candidate memories for a task, scores them on
// several independent signals, and persists the surviving connections
// bidirectionally through the store.
package linker

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/orsinium-labs/stopwords"
)

var english = stopwords.MustGet("en")

const minTermLength = 3

// ExtractTerms lowercases title+description+tags, strips punctuation, splits
// on whitespace, drops stopwords, and keeps tokens of at least minTermLength
// runes. Duplicate tokens collapse to a single occurrence; order of first
// appearance is preserved so density calculations stay stable.
func ExtractTerms(title, description string, tags []string) []string {
	fields := strings.Fields(strings.ToLower(title + " " + description + " " + strings.Join(tags, " ")))

	seen := make(map[string]bool, len(fields))
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := strings.TrimFunc(f, func(r rune) bool {
			return unicode.IsPunct(r) || unicode.IsSymbol(r)
		})
		if utf8.RuneCountInString(tok) < minTermLength || seen[tok] {
			continue
		}
		if english.Contains(tok) {
			continue
		}
		seen[tok] = true
		terms = append(terms, tok)
	}
	return terms
}

// technicalTerms are domain-ish tokens that earn the technical-term bonus
// when a task term and a memory hit on one of them in common.
var technicalTerms = map[string]bool{
	"api": true, "sql": true, "http": true, "json": true, "yaml": true,
	"grpc": true, "rest": true, "select": true, "insert": true, "update": true,
	"delete": true, "join": true, "index": true, "schema": true, "auth": true,
	"oauth": true, "jwt": true, "tls": true, "ssh": true, "regex": true,
	"async": true, "mutex": true, "goroutine": true, "channel": true,
	"docker": true, "kubernetes": true, "cli": true, "cron": true,
	"retry": true, "backoff": true, "timeout": true, "queue": true,
	"cache": true,
}

// hasTechnicalOverlap reports whether any term appears in both sets and is a
// recognized technical term.
func hasTechnicalOverlap(taskTerms []string, memoryTerms map[string]bool) bool {
	for _, t := range taskTerms {
		if technicalTerms[t] && memoryTerms[t] {
			return true
		}
	}
	return false
}
