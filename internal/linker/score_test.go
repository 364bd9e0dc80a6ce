package linker

import (
	"testing"
	"time"

	"github.com/corevault/corevault/internal/model"
	"github.com/stretchr/testify/require"
)

func TestScoreSameProjectAndCategoryBoostsRelevance(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	task := model.Task{Project: "acme", Category: model.TaskCategoryCode, Tags: []string{"auth"}, Created: now}
	memory := model.Memory{Project: "acme", Category: model.CategoryCode, Tags: []string{"auth"}, Timestamp: now}

	s := score(scoreInputs{task: task, memory: memory, taskCreated: now})
	require.Greater(t, s, Threshold)
}

func TestScoreUnrelatedMemoryStaysBelowThreshold(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	task := model.Task{Project: "acme", Created: now}
	memory := model.Memory{Project: "other", Timestamp: now.AddDate(-2, 0, 0)}

	s := score(scoreInputs{task: task, memory: memory, taskCreated: now})
	require.Less(t, s, Threshold)
}

func TestTimeProximityDecaysWithDistance(t *testing.T) {
	now := time.Date(2026, 7, 30, 0, 0, 0, 0, time.UTC)
	near := timeProximity(now, now.AddDate(0, 0, -1))
	far := timeProximity(now, now.AddDate(-1, 0, 0))
	require.Greater(t, near, far)
}

func TestTagJaccard(t *testing.T) {
	require.InDelta(t, 1.0, tagJaccard([]string{"a", "b"}, []string{"a", "b"}), 0.0001)
	require.InDelta(t, 0.0, tagJaccard([]string{"a"}, []string{"b"}), 0.0001)
	require.InDelta(t, 0.5, tagJaccard([]string{"a", "b"}, []string{"a"}), 0.0001)
}
