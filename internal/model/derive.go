package model

import (
	"regexp"
	"strings"
)

var (
	codeFence    = regexp.MustCompile("```")
	sqlSelect    = regexp.MustCompile(`(?is)\bselect\b.+\bfrom\b`)
	jsonPrelude  = regexp.MustCompile(`^\s*[\{\[]`)
	yamlPrelude  = regexp.MustCompile(`^\s*[a-zA-Z_][\w-]*:\s`)
	mermaidBlock = regexp.MustCompile("(?i)```mermaid")
)

// DeriveContentType classifies a memory body as code, structured data
// (JSON/YAML/mermaid), or plain text.
func DeriveContentType(body string) ContentType {
	if mermaidBlock.MatchString(body) {
		return ContentTypeStructured
	}
	if codeFence.MatchString(body) ||
		strings.Contains(body, "function ") || strings.Contains(body, "function(") ||
		strings.Contains(body, "class ") ||
		strings.Contains(body, "import ") ||
		sqlSelect.MatchString(body) {
		return ContentTypeCode
	}
	trimmed := strings.TrimSpace(body)
	if jsonPrelude.MatchString(trimmed) || yamlPrelude.MatchString(trimmed) {
		return ContentTypeStructured
	}
	return ContentTypeText
}

// HasMermaidDiagram reports whether the body contains a mermaid code block.
func HasMermaidDiagram(body string) bool {
	return mermaidBlock.MatchString(body)
}

var nonWord = regexp.MustCompile(`[^\w\s-]`)
var multiSpace = regexp.MustCompile(`\s+`)

// Slugify derives a filename-safe slug from the first ~30 characters of
// content: strip non-word characters, collapse whitespace to single hyphens.
func Slugify(content string) string {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) > 30 {
		runes = runes[:30]
	}
	s := nonWord.ReplaceAllString(string(runes), "")
	s = multiSpace.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	s = strings.ToLower(s)
	if s == "" {
		s = "memory"
	}
	return s
}
