package store

import (
	"path/filepath"
	"testing"

	"github.com/corevault/corevault/internal/model"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreCreateGetList(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenMemoryStore(dir)
	require.NoError(t, err)

	m, err := s.Create(model.Memory{
		Project: "acme",
		Body:    "Retry logic uses exponential backoff with jitter",
		Tags:    []string{"api"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, m.ID)
	require.Equal(t, "MEM-000001", m.Serial)
	require.FileExists(t, m.File)

	got, err := s.Get(m.ID)
	require.NoError(t, err)
	require.Equal(t, m.ID, got.ID)
	require.Equal(t, "acme", got.Project)

	list, err := s.List(ListFilter{Project: "acme"})
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func TestMemoryStoreSerialIncrementsAndSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenMemoryStore(dir)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := s.Create(model.Memory{Body: "note"})
		require.NoError(t, err)
	}

	reopened, err := OpenMemoryStore(dir)
	require.NoError(t, err)
	m, err := reopened.Create(model.Memory{Body: "fourth note"})
	require.NoError(t, err)
	require.Equal(t, "MEM-000004", m.Serial)
}

func TestMemoryStoreUpdatePreservesIdentity(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenMemoryStore(dir)
	require.NoError(t, err)

	m, err := s.Create(model.Memory{Body: "original"})
	require.NoError(t, err)

	updated, err := s.Update(m.ID, func(mm *model.Memory) {
		mm.ID = "hijacked"
		mm.Serial = "MEM-999999"
		mm.Body = "revised"
	})
	require.NoError(t, err)
	require.Equal(t, m.ID, updated.ID)
	require.Equal(t, m.Serial, updated.Serial)
	require.Equal(t, "revised", updated.Body)
}

func TestMemoryStoreDelete(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenMemoryStore(dir)
	require.NoError(t, err)

	m, err := s.Create(model.Memory{Body: "to be deleted"})
	require.NoError(t, err)

	require.NoError(t, s.Delete(m.ID))
	_, err = s.Get(m.ID)
	require.ErrorIs(t, err, model.ErrNotFound)
}

func TestMemoryStoreFilenameCollisionRetries(t *testing.T) {
	dir := t.TempDir()
	s, err := OpenMemoryStore(dir)
	require.NoError(t, err)

	var files []string
	for i := 0; i < 3; i++ {
		m, err := s.Create(model.Memory{Body: "same content prefix for slug collisions"})
		require.NoError(t, err)
		files = append(files, filepath.Base(m.File))
	}
	require.Equal(t, len(files), len(uniqueStrings(files)))
}

func uniqueStrings(in []string) []string {
	seen := map[string]bool{}
	var out []string
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
