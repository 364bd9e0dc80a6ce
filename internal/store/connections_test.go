package store

import (
	"testing"

	"github.com/corevault/corevault/internal/model"
	"github.com/corevault/corevault/internal/pathcfg"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	roots := pathcfg.Roots{
		MemoriesRoot: t.TempDir(),
		TasksRoot:    t.TempDir(),
		DataRoot:     t.TempDir(),
	}
	s, err := Open(roots)
	require.NoError(t, err)
	return s
}

func TestLinkTaskMemoryMirrorsBothSides(t *testing.T) {
	s := newTestStore(t)

	mem, err := s.Memories.Create(model.Memory{Project: "p", Body: "relevant background"})
	require.NoError(t, err)
	task, err := s.Tasks.Create(model.Task{Project: "p", Title: "fix it"})
	require.NoError(t, err)

	err = s.LinkTaskMemory(task.ID, model.MemoryConnection{
		MemoryID:       mem.ID,
		MemorySerial:   mem.Serial,
		ConnectionType: model.ConnResearch,
		Relevance:      0.8,
	}, model.ConnResearch)
	require.NoError(t, err)

	gotTask, err := s.Tasks.Get(task.ID)
	require.NoError(t, err)
	require.Len(t, gotTask.MemoryConnections, 1)
	require.Equal(t, mem.ID, gotTask.MemoryConnections[0].MemoryID)

	gotMem, err := s.Memories.Get(mem.ID)
	require.NoError(t, err)
	require.Len(t, gotMem.TaskConnections, 1)
	require.Equal(t, task.ID, gotMem.TaskConnections[0].TaskID)
}

func TestUnlinkTaskMemoryRemovesBothSides(t *testing.T) {
	s := newTestStore(t)

	mem, err := s.Memories.Create(model.Memory{Project: "p", Body: "context"})
	require.NoError(t, err)
	task, err := s.Tasks.Create(model.Task{Project: "p", Title: "task"})
	require.NoError(t, err)

	require.NoError(t, s.LinkTaskMemory(task.ID, model.MemoryConnection{
		MemoryID: mem.ID, MemorySerial: mem.Serial, ConnectionType: model.ConnManual, Relevance: 1.0,
	}, model.ConnManual))

	require.NoError(t, s.UnlinkTaskMemory(task.ID, mem.ID))

	gotTask, err := s.Tasks.Get(task.ID)
	require.NoError(t, err)
	require.Empty(t, gotTask.MemoryConnections)

	gotMem, err := s.Memories.Get(mem.ID)
	require.NoError(t, err)
	require.Empty(t, gotMem.TaskConnections)
}

func TestDeleteTaskCascadeDetachesParentAndMemories(t *testing.T) {
	s := newTestStore(t)

	mem, err := s.Memories.Create(model.Memory{Project: "p", Body: "context"})
	require.NoError(t, err)
	parent, err := s.Tasks.Create(model.Task{Project: "p", Title: "parent"})
	require.NoError(t, err)
	child, err := s.Tasks.Create(model.Task{Project: "p", Title: "child", ParentTask: parent.ID})
	require.NoError(t, err)

	_, err = s.Tasks.Update(parent.ID, func(tt *model.Task) error {
		tt.Subtasks = append(tt.Subtasks, child.ID)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, s.LinkTaskMemory(child.ID, model.MemoryConnection{
		MemoryID: mem.ID, MemorySerial: mem.Serial, ConnectionType: model.ConnReference, Relevance: 0.5,
	}, model.ConnReference))

	require.NoError(t, s.DeleteTaskCascade(child.ID))

	gotParent, err := s.Tasks.Get(parent.ID)
	require.NoError(t, err)
	require.NotContains(t, gotParent.Subtasks, child.ID)

	gotMem, err := s.Memories.Get(mem.ID)
	require.NoError(t, err)
	require.Empty(t, gotMem.TaskConnections)
}
