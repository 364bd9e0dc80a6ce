package linker

import (
	"math"
	"time"

	"github.com/corevault/corevault/internal/model"
)

// Factor weights. They needn't sum to exactly 1: the combined score is
// clamped to [0,1] after summing, so a memory that scores well on several
// factors at once can still only ever reach 1.0.
const (
	weightSemantic    = 0.40
	weightProject     = 0.25
	weightCategory    = 0.15
	weightTags        = 0.15
	weightKeyword     = 0.10
	weightTechnical   = 0.08
	weightTimeDecay   = 0.04 // low end of the 0.04-0.08 range, so project match plus recency alone (0.29) stays under Threshold
	timeHalfLifeHours = 30 * 24
)

// Threshold is the minimum combined score a candidate must clear to be
// linked at all.
const Threshold = 0.3

// MaxAutoLinks caps how many non-manual connections survive ranking.
const MaxAutoLinks = 5

// scoreInputs bundles everything Score needs for one task/memory pair.
type scoreInputs struct {
	task          model.Task
	taskTerms     []string
	memory        model.Memory
	matchedTerms  []string
	semanticScore float64 // cosine similarity, 0 if no vector index
	taskCreated   time.Time
}

func tagJaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	setA := make(map[string]bool, len(a))
	for _, t := range a {
		setA[t] = true
	}
	setB := make(map[string]bool, len(b))
	for _, t := range b {
		setB[t] = true
	}
	inter, union := 0, len(setB)
	for t := range setA {
		if setB[t] {
			inter++
		} else {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func timeProximity(taskCreated, memoryTimestamp time.Time) float64 {
	delta := taskCreated.Sub(memoryTimestamp)
	if delta < 0 {
		delta = -delta
	}
	hours := delta.Hours()
	return math.Exp(-math.Ln2 * hours / timeHalfLifeHours)
}

// score computes the weighted-sum relevance for one candidate, clamped to
// [0,1].
func score(in scoreInputs) float64 {
	var total float64

	total += weightSemantic * in.semanticScore

	if in.memory.Project != "" && in.memory.Project == in.task.Project {
		total += weightProject
	}

	if string(in.memory.Category) != "" && string(in.memory.Category) == string(in.task.Category) {
		total += weightCategory
	}

	total += weightTags * tagJaccard(in.task.Tags, in.memory.Tags)

	if len(in.taskTerms) > 0 {
		total += weightKeyword * (float64(len(in.matchedTerms)) / float64(len(in.taskTerms)))
	}

	if hasTechnicalOverlap(in.taskTerms, memoryTermSet(in.matchedTerms)) {
		total += weightTechnical
	}

	total += weightTimeDecay * timeProximity(in.taskCreated, in.memory.Timestamp)

	if total > 1 {
		total = 1
	}
	if total < 0 {
		total = 0
	}
	return total
}

func memoryTermSet(terms []string) map[string]bool {
	out := make(map[string]bool, len(terms))
	for _, t := range terms {
		out[t] = true
	}
	return out
}
