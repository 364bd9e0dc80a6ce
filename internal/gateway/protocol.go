// Package gateway exposes the core operations (add_memory, create_task,
// and siblings) behind a single typed Request/Response envelope, validating
// input, dispatching into the store/linker/backup/watchbus subsystems, and
// returning either a typed success payload or a typed Error.
package gateway

import "encoding/json"

// Operation name constants — part of the external contract.
const (
	OpAddMemory      = "add_memory"
	OpGetMemory      = "get_memory"
	OpListMemories   = "list_memories"
	OpSearchMemories = "search_memories"
	OpDeleteMemory   = "delete_memory"
	OpCreateTask     = "create_task"
	OpUpdateTask     = "update_task"
	OpListTasks      = "list_tasks"
	OpGetTaskContext = "get_task_context"
	OpDeleteTask     = "delete_task"
	OpTestTool       = "test_tool"
)

// Request is the typed envelope every operation arrives in. Args is decoded
// into the operation-specific *Args struct by the matching handler.
type Request struct {
	Operation string          `json:"operation"`
	Args      json.RawMessage `json:"args,omitempty"`
}

// Response is the typed envelope every operation returns: exactly one of
// Data or Error is populated.
type Response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

func ok(v any) Response {
	data, err := json.Marshal(v)
	if err != nil {
		return errorResponse(newError(KindInternal, "marshaling result", err))
	}
	return Response{Success: true, Data: data}
}

func errorResponse(e *Error) Response {
	return Response{Success: false, Error: e}
}
