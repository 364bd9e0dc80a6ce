package gateway

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/corevault/corevault/internal/linker"
	"github.com/corevault/corevault/internal/model"
	"github.com/corevault/corevault/internal/pathcfg"
	"github.com/corevault/corevault/internal/store"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	roots := pathcfg.Roots{
		MemoriesRoot: t.TempDir(),
		TasksRoot:    t.TempDir(),
		DataRoot:     t.TempDir(),
	}
	s, err := store.Open(roots)
	require.NoError(t, err)
	return New(s, linker.New(s, nil), nil, nil)
}

func req(t *testing.T, op string, args any) Request {
	t.Helper()
	raw, err := json.Marshal(args)
	require.NoError(t, err)
	return Request{Operation: op, Args: raw}
}

func decode(t *testing.T, resp Response, v any) {
	t.Helper()
	require.True(t, resp.Success, "expected success, got error: %+v", resp.Error)
	require.NoError(t, json.Unmarshal(resp.Data, v))
}

func TestAddMemoryThenGetMemoryRoundTrips(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	addResp := s.Dispatch(ctx, req(t, OpAddMemory, AddMemoryArgs{
		Content: "remember to rotate the signing key",
		Project: "acme",
		Tags:    []string{"security"},
	}))
	var added AddMemoryResult
	decode(t, addResp, &added)
	require.NotEmpty(t, added.ID)

	getResp := s.Dispatch(ctx, req(t, OpGetMemory, GetMemoryArgs{ID: added.ID}))
	require.True(t, getResp.Success)
}

type fakeEmbeddingIndex struct {
	upserted map[string][]float32
}

func (f *fakeEmbeddingIndex) Embed(text string) ([]float32, error) {
	return []float32{float32(len(text))}, nil
}

func (f *fakeEmbeddingIndex) Upsert(id string, vec []float32) error {
	if f.upserted == nil {
		f.upserted = map[string][]float32{}
	}
	f.upserted[id] = vec
	return nil
}

func TestAddMemoryUpsertsIntoVectorIndex(t *testing.T) {
	s := newTestServer(t)
	fake := &fakeEmbeddingIndex{}
	s.Vector = fake

	addResp := s.Dispatch(context.Background(), req(t, OpAddMemory, AddMemoryArgs{
		Content: "remember to rotate the signing key",
	}))
	var added AddMemoryResult
	decode(t, addResp, &added)

	_, ok := fake.upserted[added.ID]
	require.True(t, ok, "expected add_memory to upsert the new memory into the vector index")
}

func TestAddMemoryRejectsEmptyContent(t *testing.T) {
	s := newTestServer(t)
	resp := s.Dispatch(context.Background(), req(t, OpAddMemory, AddMemoryArgs{}))
	require.False(t, resp.Success)
	require.Equal(t, KindInvalidInput, resp.Error.Kind)
}

func TestGetMemoryNotFoundClassifiesAsNotFound(t *testing.T) {
	s := newTestServer(t)
	resp := s.Dispatch(context.Background(), req(t, OpGetMemory, GetMemoryArgs{ID: "missing"}))
	require.False(t, resp.Success)
	require.Equal(t, KindNotFound, resp.Error.Kind)
}

func TestDeleteMemoryIsIdempotent(t *testing.T) {
	s := newTestServer(t)
	resp := s.Dispatch(context.Background(), req(t, OpDeleteMemory, DeleteMemoryArgs{ID: "never-existed"}))
	var ack AckResult
	decode(t, resp, &ack)
	require.True(t, ack.OK)
}

func TestCreateTaskAutoLinksMatchingMemory(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	memResp := s.Dispatch(ctx, req(t, OpAddMemory, AddMemoryArgs{
		Content:  "payment gateway timeout retries cause duplicate charges",
		Project:  "acme",
		Category: "code",
		Tags:     []string{"payments"},
	}))
	var mem AddMemoryResult
	decode(t, memResp, &mem)

	taskResp := s.Dispatch(ctx, req(t, OpCreateTask, CreateTaskArgs{
		Title:       "Fix payment gateway timeout",
		Description: "retries are failing under load",
		Project:     "acme",
		Tags:        []string{"payments"},
		AutoLink:    true,
	}))
	var created map[string]any
	decode(t, taskResp, &created)

	conns, _ := created["memory_connections"].([]any)
	require.NotEmpty(t, conns)

	conn, _ := conns[0].(map[string]any)
	relevance, _ := conn["relevance"].(float64)
	require.GreaterOrEqual(t, relevance, linker.Threshold)
}

func TestCreateTaskRejectsDanglingParent(t *testing.T) {
	s := newTestServer(t)
	resp := s.Dispatch(context.Background(), req(t, OpCreateTask, CreateTaskArgs{
		Title:      "orphan",
		ParentTask: "does-not-exist",
	}))
	require.False(t, resp.Success)
	require.Equal(t, KindInvalidInput, resp.Error.Kind)
}

func TestUpdateTaskEnforcesStatusTransition(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	taskResp := s.Dispatch(ctx, req(t, OpCreateTask, CreateTaskArgs{Title: "ship it"}))
	var created map[string]any
	decode(t, taskResp, &created)
	id := created["id"].(string)

	badResp := s.Dispatch(ctx, req(t, OpUpdateTask, UpdateTaskArgs{ID: id, Status: statusPtr(model.StatusDone)}))
	require.False(t, badResp.Success)
	require.Equal(t, KindInvalidInput, badResp.Error.Kind)

	okResp := s.Dispatch(ctx, req(t, OpUpdateTask, UpdateTaskArgs{ID: id, Status: statusPtr(model.StatusInProgress)}))
	require.True(t, okResp.Success)
}

func statusPtr(s model.TaskStatus) *model.TaskStatus { return &s }

func TestGetTaskContextShallowIncludesLinkedMemories(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	memResp := s.Dispatch(ctx, req(t, OpAddMemory, AddMemoryArgs{Content: "reference note", Project: "acme"}))
	var mem AddMemoryResult
	decode(t, memResp, &mem)

	taskResp := s.Dispatch(ctx, req(t, OpCreateTask, CreateTaskArgs{
		Title:          "use the reference note",
		Project:        "acme",
		ManualMemories: []string{mem.ID},
	}))
	var created map[string]any
	decode(t, taskResp, &created)
	id := created["id"].(string)

	ctxResp := s.Dispatch(ctx, req(t, OpGetTaskContext, GetTaskContextArgs{ID: id}))
	var tc TaskContextResult
	decode(t, ctxResp, &tc)
	require.Len(t, tc.Memories, 1)
	require.Equal(t, mem.ID, tc.Memories[0].ID)
}

func TestDeleteTaskCascadesConnections(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()

	memResp := s.Dispatch(ctx, req(t, OpAddMemory, AddMemoryArgs{Content: "note", Project: "acme"}))
	var mem AddMemoryResult
	decode(t, memResp, &mem)

	taskResp := s.Dispatch(ctx, req(t, OpCreateTask, CreateTaskArgs{
		Title:          "temp task",
		Project:        "acme",
		ManualMemories: []string{mem.ID},
	}))
	var created map[string]any
	decode(t, taskResp, &created)
	id := created["id"].(string)

	delResp := s.Dispatch(ctx, req(t, OpDeleteTask, DeleteTaskArgs{ID: id}))
	var ack AckResult
	decode(t, delResp, &ack)
	require.True(t, ack.OK)

	getResp := s.Dispatch(ctx, req(t, OpGetMemory, GetMemoryArgs{ID: mem.ID}))
	var m map[string]any
	decode(t, getResp, &m)
	conns, _ := m["task_connections"].([]any)
	require.Empty(t, conns)
}

func TestTestToolEchoesMessage(t *testing.T) {
	s := newTestServer(t)
	resp := s.Dispatch(context.Background(), req(t, OpTestTool, TestToolArgs{Message: "ping"}))
	var out TestToolResult
	decode(t, resp, &out)
	require.True(t, out.Alive)
	require.Equal(t, "ping", out.Echo)
}

func TestDispatchAppliesDefaultTimeoutWhenContextHasNone(t *testing.T) {
	s := newTestServer(t)
	resp := s.Dispatch(context.Background(), req(t, OpListMemories, ListMemoriesArgs{}))
	require.True(t, resp.Success)
}

func TestDispatchRejectsAlreadyExpiredContext(t *testing.T) {
	s := newTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	resp := s.Dispatch(ctx, req(t, OpListMemories, ListMemoriesArgs{}))
	require.False(t, resp.Success)
	require.Equal(t, KindTimeout, resp.Error.Kind)
}

func TestUnknownOperationIsInvalidInput(t *testing.T) {
	s := newTestServer(t)
	resp := s.Dispatch(context.Background(), req(t, "not_a_real_op", struct{}{}))
	require.False(t, resp.Success)
	require.Equal(t, KindInvalidInput, resp.Error.Kind)
}
