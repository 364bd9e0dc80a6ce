package linker

import (
	"testing"

	"github.com/corevault/corevault/internal/model"
	"github.com/corevault/corevault/internal/pathcfg"
	"github.com/corevault/corevault/internal/store"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	roots := pathcfg.Roots{
		MemoriesRoot: t.TempDir(),
		TasksRoot:    t.TempDir(),
		DataRoot:     t.TempDir(),
	}
	s, err := store.Open(roots)
	require.NoError(t, err)
	return s
}

func TestLinkConnectsMatchingMemoryByKeyword(t *testing.T) {
	s := newTestStore(t)

	mem, err := s.Memories.Create(model.Memory{
		Project: "acme",
		Category: model.CategoryCode,
		Body:    "notes about the payment gateway timeout retries",
		Tags:    []string{"payments"},
	})
	require.NoError(t, err)

	task, err := s.Tasks.Create(model.Task{
		Project:     "acme",
		Title:       "Fix payment gateway timeout",
		Description: "retries are failing under load",
		Tags:        []string{"payments"},
	})
	require.NoError(t, err)

	l := New(s, nil)
	require.NoError(t, l.Link(task.ID))

	got, err := s.Tasks.Get(task.ID)
	require.NoError(t, err)
	require.Len(t, got.MemoryConnections, 1)
	require.Equal(t, mem.ID, got.MemoryConnections[0].MemoryID)
	require.NotEmpty(t, got.MemoryConnections[0].MatchedTerms)

	gotMem, err := s.Memories.Get(mem.ID)
	require.NoError(t, err)
	require.Len(t, gotMem.TaskConnections, 1)
	require.Equal(t, task.ID, gotMem.TaskConnections[0].TaskID)
}

func TestLinkIgnoresUnrelatedMemory(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Memories.Create(model.Memory{
		Project: "other-project",
		Body:    "completely unrelated gardening notes",
	})
	require.NoError(t, err)

	task, err := s.Tasks.Create(model.Task{
		Project: "acme",
		Title:   "Rotate database credentials",
	})
	require.NoError(t, err)

	l := New(s, nil)
	require.NoError(t, l.Link(task.ID))

	got, err := s.Tasks.Get(task.ID)
	require.NoError(t, err)
	require.Empty(t, got.MemoryConnections)
}

func TestLinkAlwaysIncludesManualMemoriesAtFullRelevance(t *testing.T) {
	s := newTestStore(t)

	mem, err := s.Memories.Create(model.Memory{Project: "zzz", Body: "nothing related at all"})
	require.NoError(t, err)

	task, err := s.Tasks.Create(model.Task{
		Project:        "acme",
		Title:          "Unrelated title",
		ManualMemories: []string{mem.ID},
	})
	require.NoError(t, err)

	l := New(s, nil)
	require.NoError(t, l.Link(task.ID))

	got, err := s.Tasks.Get(task.ID)
	require.NoError(t, err)
	require.Len(t, got.MemoryConnections, 1)
	require.Equal(t, model.ConnManual, got.MemoryConnections[0].ConnectionType)
	require.Equal(t, 1.0, got.MemoryConnections[0].Relevance)
}

func TestLinkRemovesStaleAutoConnectionsButKeepsManual(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Memories.Create(model.Memory{
		Project: "acme",
		Body:    "payment gateway timeout retries",
	})
	require.NoError(t, err)
	manual, err := s.Memories.Create(model.Memory{Project: "zzz", Body: "kept regardless"})
	require.NoError(t, err)

	task, err := s.Tasks.Create(model.Task{
		Project:        "acme",
		Title:          "Fix payment gateway timeout",
		ManualMemories: []string{manual.ID},
	})
	require.NoError(t, err)

	l := New(s, nil)
	require.NoError(t, l.Link(task.ID))

	got, err := s.Tasks.Get(task.ID)
	require.NoError(t, err)
	require.Len(t, got.MemoryConnections, 2)

	_, err = s.Tasks.Update(task.ID, func(tt *model.Task) error {
		tt.Title = "Something entirely different about gardening"
		tt.Description = ""
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, l.Link(task.ID))

	got, err = s.Tasks.Get(task.ID)
	require.NoError(t, err)
	require.Len(t, got.MemoryConnections, 1)
	require.Equal(t, manual.ID, got.MemoryConnections[0].MemoryID)
}
