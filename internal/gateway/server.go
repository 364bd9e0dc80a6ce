package gateway

import (
	"context"
	"time"

	"github.com/corevault/corevault/internal/backup"
	"github.com/corevault/corevault/internal/enhancer"
	"github.com/corevault/corevault/internal/guard"
	"github.com/corevault/corevault/internal/linker"
	"github.com/corevault/corevault/internal/store"
	"github.com/corevault/corevault/internal/watchbus"
)

// DefaultTimeout is the deadline applied to a Dispatch call whose context
// carries none.
const DefaultTimeout = 30 * time.Second

// Recorder observes per-operation latency and outcome. Telemetry wiring is
// optional: a nil Recorder just means Dispatch skips instrumentation.
type Recorder interface {
	RecordCall(operation string, latency time.Duration, success bool)
}

// EmbeddingIndex is the narrow capability add_memory needs to keep the
// semantic vector index in sync with memory content: embed a memory's body
// and upsert the resulting vector under its id. A nil EmbeddingIndex just
// means memories are never embedded, matching --no-vector/linking
// falling back to keyword-only scoring.
type EmbeddingIndex interface {
	Embed(text string) ([]float32, error)
	Upsert(id string, vec []float32) error
}

// Server holds everything a gateway operation needs to run.
type Server struct {
	Store    *store.Store
	Linker   *linker.Linker
	Backup   *backup.Snapshotter
	Bus      *watchbus.Bus
	Recorder Recorder

	// Enhancer fills in a memory's title/summary when add_memory doesn't
	// supply them. Defaults to enhancer.NoopEnhancer; set Server.Enhancer
	// after New to opt into an AI-backed one.
	Enhancer enhancer.Enhancer

	// Vector embeds and upserts new memory content so the Linker's semantic
	// branch has something to query. Nil by default; set Server.Vector
	// after New when a vector.Index was opened successfully at startup.
	Vector EmbeddingIndex

	// taskLocks serializes the read-link-write sequence create_task/
	// update_task run per task id, so two concurrent Dispatch calls
	// touching the same task can't interleave their auto-link rewrite.
	taskLocks *guard.KeyedLock
}

// New returns a Server wired to the given subsystems. backup and bus may be
// nil if the caller doesn't need snapshotting or change notifications.
func New(s *store.Store, l *linker.Linker, b *backup.Snapshotter, bus *watchbus.Bus) *Server {
	return &Server{
		Store:     s,
		Linker:    l,
		Backup:    b,
		Bus:       bus,
		Enhancer:  enhancer.NoopEnhancer{},
		taskLocks: guard.NewKeyedLock(),
	}
}

// Dispatch validates and routes req, enforcing a deadline (30s by default)
// and recording latency/outcome if a Recorder is attached.
func (s *Server) Dispatch(ctx context.Context, req Request) Response {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, DefaultTimeout)
		defer cancel()
	}

	start := time.Now()
	resp := s.route(ctx, req)
	if s.Recorder != nil {
		s.Recorder.RecordCall(req.Operation, time.Since(start), resp.Success)
	}
	return resp
}

func (s *Server) route(ctx context.Context, req Request) Response {
	if err := ctx.Err(); err != nil {
		return errorResponse(newError(KindTimeout, "deadline exceeded before dispatch", err))
	}

	switch req.Operation {
	case OpAddMemory:
		return s.handleAddMemory(ctx, req)
	case OpGetMemory:
		return s.handleGetMemory(ctx, req)
	case OpListMemories:
		return s.handleListMemories(ctx, req)
	case OpSearchMemories:
		return s.handleSearchMemories(ctx, req)
	case OpDeleteMemory:
		return s.handleDeleteMemory(ctx, req)
	case OpCreateTask:
		return s.handleCreateTask(ctx, req)
	case OpUpdateTask:
		return s.handleUpdateTask(ctx, req)
	case OpListTasks:
		return s.handleListTasks(ctx, req)
	case OpGetTaskContext:
		return s.handleGetTaskContext(ctx, req)
	case OpDeleteTask:
		return s.handleDeleteTask(ctx, req)
	case OpTestTool:
		return s.handleTestTool(req)
	default:
		return errorResponse(invalidInput("unknown operation: " + req.Operation))
	}
}

// publish notifies the bus of a change, tolerating a nil Bus (no
// subscribers configured).
func (s *Server) publish(evtType watchbus.EventType, action watchbus.Action, file, project, id string) {
	if s.Bus == nil {
		return
	}
	s.Bus.Publish(watchbus.Event{
		Type: evtType,
		Data: watchbus.EventData{Action: action, File: file, Project: project, ID: id},
	})
}
