package frontmatter

import "strings"

// ParseMulti splits a task file's raw text into one Document per "---"
// delimited block, since multiple tasks may share a single file. Task
// documents carry no markdown body — their content lives in the
// "description" header field — so each block is exactly one header pair; a
// block whose header fails to decode is dropped from the result rather than
// failing the whole file, and no error is reported for it.
func ParseMulti(raw []byte) []Document {
	lines := strings.Split(string(raw), "\n")

	var docs []Document
	i := 0
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) != delimiter {
			i++
			continue
		}
		end := -1
		for j := i + 1; j < len(lines); j++ {
			if strings.TrimSpace(lines[j]) == delimiter {
				end = j
				break
			}
		}
		if end == -1 {
			break
		}

		headerText := strings.Join(lines[i+1:end], "\n")
		doc, err := Parse([]byte(delimiter + "\n" + headerText + "\n" + delimiter + "\n"))
		if err == nil {
			docs = append(docs, doc)
		}
		i = end + 1
	}
	return docs
}

// EmitMulti concatenates already-encoded per-entity blocks into one file.
func EmitMulti(blocks [][]byte) []byte {
	var out []byte
	for i, b := range blocks {
		if i > 0 {
			out = append(out, '\n')
		}
		out = append(out, b...)
	}
	return out
}
