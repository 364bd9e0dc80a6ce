package vector

import (
	"hash/fnv"
	"math"
	"strings"
)

// EmbedDims is the fixed dimensionality every HashEmbed vector has, so it
// matches the vec0 virtual table's declared column width.
const EmbedDims = 256

// HashEmbed produces a deterministic, dependency-free embedding: each
// lowercased term hashes into one of EmbedDims buckets and increments it,
// then the whole vector is L2-normalized so cosine similarity behaves like
// a sane bag-of-terms comparison. It is not a learned embedding — it gives
// the Linker a real, stable cosine signal to rank on without a network
// call or API key.
func HashEmbed(text string) []float32 {
	vec := make([]float32, EmbedDims)
	for _, term := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(term))
		vec[h.Sum32()%EmbedDims]++
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		return vec
	}
	norm = math.Sqrt(norm)
	for i, v := range vec {
		vec[i] = float32(float64(v) / norm)
	}
	return vec
}

// Cosine computes cosine similarity between two equal-length vectors.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
