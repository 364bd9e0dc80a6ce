package vector

import "github.com/corevault/corevault/internal/linker"

// linkerAdapter satisfies linker.VectorIndex by forwarding to an Index and
// reshaping Match into linker.VectorMatch.
type linkerAdapter struct {
	idx Index
}

// ForLinker adapts idx to the narrow interface the Auto-Linker consumes.
// Pass a NoopIndex{} here when no embedded index is available at startup;
// the Linker treats every semantic score as 0 in that case.
func ForLinker(idx Index) linker.VectorIndex {
	return linkerAdapter{idx: idx}
}

func (a linkerAdapter) Embed(text string) ([]float32, error) {
	return a.idx.Embed(text)
}

func (a linkerAdapter) Query(vec []float32, k int) ([]linker.VectorMatch, error) {
	matches, err := a.idx.Query(vec, k)
	if err != nil {
		return nil, err
	}
	out := make([]linker.VectorMatch, len(matches))
	for i, m := range matches {
		out[i] = linker.VectorMatch{MemoryID: m.ID, Score: m.Score}
	}
	return out, nil
}
