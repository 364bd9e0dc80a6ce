// Package frontmatter implements the markdown + YAML-front-matter codec
// shared by memories and tasks.
//
// The codec is lossless for known fields and round-trip stable: parse then
// emit then parse yields an equal header. Unknown keys are preserved in a
// side-channel map rather than dropped, so a file written by a newer client
// round-trips unchanged through an older one.
package frontmatter

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrNoDelimiter is returned by Parse when the file has no "---" header
// section; callers treat this as "missing header" and synthesize defaults.
var ErrNoDelimiter = errors.New("frontmatter: no header delimiter found")

const delimiter = "---"

// Document is the parsed (header, body) pair. Header is a raw map decoded
// from the YAML-subset front matter; callers (store) further decode it into
// model.Memory/model.Task and move unrecognized keys into Extra themselves.
type Document struct {
	Header map[string]any
	Body   string
}

// Parse splits raw file text into header and body. If the file has no
// front-matter delimiters, it returns ErrNoDelimiter with the entire input
// as Body so the caller can synthesize default header fields.
func Parse(raw []byte) (Document, error) {
	text := string(raw)
	lines := strings.Split(text, "\n")

	if len(lines) == 0 || strings.TrimSpace(lines[0]) != delimiter {
		return Document{Body: text}, ErrNoDelimiter
	}

	end := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == delimiter {
			end = i
			break
		}
	}
	if end == -1 {
		return Document{Body: text}, ErrNoDelimiter
	}

	headerText := strings.Join(lines[1:end], "\n")
	body := strings.Join(lines[end+1:], "\n")
	body = strings.TrimPrefix(body, "\n")

	header := map[string]any{}
	if strings.TrimSpace(headerText) != "" {
		if err := yaml.Unmarshal([]byte(headerText), &header); err != nil {
			return Document{Body: body}, fmt.Errorf("frontmatter: decoding header: %w", err)
		}
	}

	return Document{Header: header, Body: body}, nil
}

// Emit renders (header, body) back to canonical file text. Header keys named
// in the caller-supplied order slice come out first, in that order (so known
// fields appear in a stable, human-friendly order); any remaining keys follow
// in Go map-iteration order, which is not deterministic.
func Emit(order []string, header map[string]any, body string) ([]byte, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}

	seen := make(map[string]bool, len(header))
	appendKey := func(k string) error {
		v, ok := header[k]
		if !ok {
			return nil
		}
		if seen[k] {
			return nil
		}
		seen[k] = true

		keyNode := &yaml.Node{}
		if err := keyNode.Encode(k); err != nil {
			return err
		}
		valNode := &yaml.Node{}
		if err := valNode.Encode(v); err != nil {
			return err
		}
		node.Content = append(node.Content, keyNode, valNode)
		return nil
	}

	for _, k := range order {
		if err := appendKey(k); err != nil {
			return nil, fmt.Errorf("frontmatter: encoding %q: %w", k, err)
		}
	}
	// Remaining keys not covered by `order` (e.g. Extra passthrough) — a
	// stable, pre-sorted key list should already have been merged into
	// `order` by the caller; anything left here is emitted in map order,
	// which Go does not guarantee, so callers SHOULD always supply every
	// key in `order`.
	for k := range header {
		if err := appendKey(k); err != nil {
			return nil, fmt.Errorf("frontmatter: encoding %q: %w", k, err)
		}
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter)
	buf.WriteString("\n")
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(node); err != nil {
		return nil, fmt.Errorf("frontmatter: marshaling header: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("frontmatter: closing encoder: %w", err)
	}
	buf.WriteString(delimiter)
	buf.WriteString("\n")
	if body != "" {
		buf.WriteString("\n")
		buf.WriteString(body)
		if !strings.HasSuffix(body, "\n") {
			buf.WriteString("\n")
		}
	}

	return buf.Bytes(), nil
}
