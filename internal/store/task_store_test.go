package store

import (
	"testing"

	"github.com/corevault/corevault/internal/model"
	"github.com/stretchr/testify/require"
)

func TestTaskStoreCreateSharesFilePerProject(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenTaskStore(dir)
	require.NoError(t, err)

	t1, err := s.Create(model.Task{Project: "acme", Title: "First"})
	require.NoError(t, err)
	require.Equal(t, "TASK-00001", t1.Serial)

	t2, err := s.Create(model.Task{Project: "acme", Title: "Second"})
	require.NoError(t, err)
	require.Equal(t, "TASK-00002", t2.Serial)
	require.Equal(t, t1.File, t2.File)

	got1, err := s.Get(t1.ID)
	require.NoError(t, err)
	require.Equal(t, "First", got1.Title)

	list, err := s.List(TaskFilter{Project: "acme"})
	require.NoError(t, err)
	require.Len(t, list, 2)
}

func TestTaskStoreSerialSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenTaskStore(dir)
	require.NoError(t, err)
	_, err = s.Create(model.Task{Project: "p", Title: "one"})
	require.NoError(t, err)

	reopened, err := OpenTaskStore(dir)
	require.NoError(t, err)
	second, err := reopened.Create(model.Task{Project: "p", Title: "two"})
	require.NoError(t, err)
	require.Equal(t, "TASK-00002", second.Serial)
}

func TestTaskStoreUpdateTransitionAndPersistence(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenTaskStore(dir)
	require.NoError(t, err)

	task, err := s.Create(model.Task{Project: "p", Title: "needs work", Status: model.StatusTodo})
	require.NoError(t, err)

	updated, err := s.Update(task.ID, func(tt *model.Task) error {
		if !model.ValidTransition(tt.Status, model.StatusInProgress) {
			return model.ErrInvalidTransition
		}
		tt.Status = model.StatusInProgress
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, model.StatusInProgress, updated.Status)
	require.Equal(t, task.ID, updated.ID)
	require.Equal(t, task.Serial, updated.Serial)

	list, err := s.List(TaskFilter{Project: "p", Status: model.StatusInProgress})
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestTaskStoreDeleteRemovesBlockKeepsSiblings(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenTaskStore(dir)
	require.NoError(t, err)

	t1, err := s.Create(model.Task{Project: "p", Title: "keep"})
	require.NoError(t, err)
	t2, err := s.Create(model.Task{Project: "p", Title: "remove"})
	require.NoError(t, err)

	removed, err := s.Delete(t2.ID)
	require.NoError(t, err)
	require.Equal(t, t2.ID, removed.ID)

	_, err = s.Get(t2.ID)
	require.ErrorIs(t, err, model.ErrNotFound)

	still, err := s.Get(t1.ID)
	require.NoError(t, err)
	require.Equal(t, "keep", still.Title)
}

func TestTaskStoreRemoveSubtaskDetachesFromParent(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenTaskStore(dir)
	require.NoError(t, err)

	parent, err := s.Create(model.Task{Project: "p", Title: "parent"})
	require.NoError(t, err)
	child, err := s.Create(model.Task{Project: "p", Title: "child", ParentTask: parent.ID})
	require.NoError(t, err)

	_, err = s.Update(parent.ID, func(tt *model.Task) error {
		tt.Subtasks = append(tt.Subtasks, child.ID)
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, s.RemoveSubtask(parent.ID, child.ID))

	got, err := s.Get(parent.ID)
	require.NoError(t, err)
	require.NotContains(t, got.Subtasks, child.ID)
}
