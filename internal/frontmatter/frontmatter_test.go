package frontmatter

import (
	"testing"

	"github.com/corevault/corevault/internal/model"
	"github.com/stretchr/testify/require"
)

func TestMemoryRoundTrip(t *testing.T) {
	m := model.Memory{
		ID:        "mem-1",
		Serial:    "MEM-000001",
		Project:   "p1",
		Category:  model.CategoryCode,
		Tags:      []string{"api", "retry"},
		Priority:  model.PriorityHigh,
		Status:    model.MemoryStatusActive,
		Body:      "API retry logic: exponential backoff with jitter",
		Metadata:  model.Metadata{ContentType: model.ContentTypeText, Size: 10},
		Extra:     map[string]any{},
	}
	m.Complexity = m.DeriveComplexity()

	raw, err := EncodeMemory(m)
	require.NoError(t, err)

	doc, err := Parse(raw)
	require.NoError(t, err)

	got, err := DecodeMemory(doc)
	require.NoError(t, err)

	require.Equal(t, m.ID, got.ID)
	require.Equal(t, m.Project, got.Project)
	require.Equal(t, m.Category, got.Category)
	require.ElementsMatch(t, m.Tags, got.Tags)
	require.Equal(t, m.Priority, got.Priority)
	require.Equal(t, m.Body, got.Body)
}

func TestLegacyTitlePseudoTagPromoted(t *testing.T) {
	raw := []byte("---\ntags: [\"title:My Title\", \"summary:A summary\", \"real-tag\"]\n---\n\nbody text\n")
	doc, err := Parse(raw)
	require.NoError(t, err)

	m, err := DecodeMemory(doc)
	require.NoError(t, err)

	require.Equal(t, "My Title", m.Title)
	require.Equal(t, "A summary", m.Summary)
	require.Equal(t, []string{"real-tag"}, m.Tags)
}

func TestUnknownKeysPreserved(t *testing.T) {
	raw := []byte("---\nid: mem-1\nstatus: active\nfrom_future_client: keep-me\n---\n\nbody\n")
	doc, err := Parse(raw)
	require.NoError(t, err)

	m, err := DecodeMemory(doc)
	require.NoError(t, err)
	require.Equal(t, "keep-me", m.Extra["from_future_client"])

	out, err := EncodeMemory(m)
	require.NoError(t, err)
	require.Contains(t, string(out), "from_future_client")
}

func TestTaskMultiDocRoundTrip(t *testing.T) {
	t1 := model.Task{ID: "t1", Serial: "TASK-00001", Title: "First", Status: model.StatusTodo, Extra: map[string]any{}}
	t2 := model.Task{ID: "t2", Serial: "TASK-00002", Title: "Second", Status: model.StatusInProgress, Extra: map[string]any{}}

	b1, err := EncodeTask(t1)
	require.NoError(t, err)
	b2, err := EncodeTask(t2)
	require.NoError(t, err)

	file := EmitMulti([][]byte{b1, b2})
	docs := ParseMulti(file)
	require.Len(t, docs, 2)

	got1, err := DecodeTask(docs[0])
	require.NoError(t, err)
	got2, err := DecodeTask(docs[1])
	require.NoError(t, err)

	require.Equal(t, "t1", got1.ID)
	require.Equal(t, "t2", got2.ID)
	require.Equal(t, model.StatusInProgress, got2.Status)
}

func TestNoDelimiterSynthesizesDefaults(t *testing.T) {
	_, err := Parse([]byte("just plain text, no front matter"))
	require.ErrorIs(t, err, ErrNoDelimiter)
}
