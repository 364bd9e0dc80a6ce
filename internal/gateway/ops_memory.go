package gateway

import (
	"context"

	"github.com/corevault/corevault/internal/model"
	"github.com/corevault/corevault/internal/store"
	"github.com/corevault/corevault/internal/watchbus"
)

// AddMemoryArgs is the add_memory operation's input schema.
type AddMemoryArgs struct {
	Content         string         `json:"content"`
	Tags            []string       `json:"tags,omitempty"`
	Category        model.Category `json:"category,omitempty"`
	Project         string         `json:"project,omitempty"`
	Priority        model.Priority `json:"priority,omitempty"`
	Status          string         `json:"status,omitempty"`
	RelatedMemories []string       `json:"related_memories,omitempty"`
	Language        string         `json:"language,omitempty"`
	Title           string         `json:"title,omitempty"`
	Summary         string         `json:"summary,omitempty"`
}

// AddMemoryResult is add_memory's output shape.
type AddMemoryResult struct {
	ID          string            `json:"id"`
	File        string            `json:"file"`
	Complexity  int               `json:"complexity"`
	ContentType model.ContentType `json:"content_type"`
}

func (s *Server) handleAddMemory(ctx context.Context, req Request) Response {
	var args AddMemoryArgs
	if derr := decodeArgs(req, &args); derr != nil {
		return errorResponse(derr)
	}
	if args.Content == "" {
		return errorResponse(invalidInput("content is required"))
	}
	if err := model.ValidateMemoryCategory(args.Category); err != nil {
		return errorResponse(invalidInput(err.Error()))
	}
	if err := model.ValidatePriority(args.Priority, false); err != nil {
		return errorResponse(invalidInput(err.Error()))
	}
	status := model.MemoryStatus(args.Status)
	if err := model.ValidateMemoryStatus(status); err != nil {
		return errorResponse(invalidInput(err.Error()))
	}

	if args.Title == "" && args.Summary == "" && s.Enhancer != nil {
		if title, summary, err := s.Enhancer.Enhance(ctx, args.Content); err == nil {
			args.Title, args.Summary = title, summary
		}
	}

	m := model.Memory{
		Body:            args.Content,
		Tags:            args.Tags,
		Category:        args.Category,
		Project:         args.Project,
		Priority:        args.Priority,
		Status:          status,
		RelatedMemories: args.RelatedMemories,
		Title:           args.Title,
		Summary:         args.Summary,
	}
	if args.Language != "" {
		m.Metadata.Language = args.Language
	}

	created, err := s.Store.Memories.Create(m)
	if err != nil {
		return errorResponse(classify("add_memory", err))
	}

	if s.Vector != nil {
		if vec, err := s.Vector.Embed(created.Body); err == nil {
			_ = s.Vector.Upsert(created.ID, vec) // best-effort; a missed upsert just means a weaker semantic score
		}
	}

	s.publish(watchbus.EventMemoryChange, watchbus.ActionAdd, created.File, created.Project, created.ID)

	return ok(AddMemoryResult{
		ID:          created.ID,
		File:        created.File,
		Complexity:  created.Complexity,
		ContentType: created.Metadata.ContentType,
	})
}

// GetMemoryArgs is get_memory's input schema.
type GetMemoryArgs struct {
	ID string `json:"id"`
}

func (s *Server) handleGetMemory(_ context.Context, req Request) Response {
	var args GetMemoryArgs
	if derr := decodeArgs(req, &args); derr != nil {
		return errorResponse(derr)
	}
	if args.ID == "" {
		return errorResponse(invalidInput("id is required"))
	}

	m, err := s.Store.Memories.Get(args.ID)
	if err != nil {
		return errorResponse(classify("get_memory", err))
	}
	if err := s.Store.Memories.Touch(args.ID); err != nil {
		return errorResponse(classify("get_memory: recording access", err))
	}
	return ok(m)
}

// ListMemoriesArgs is list_memories' input schema.
type ListMemoriesArgs struct {
	Project string `json:"project,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

func (s *Server) handleListMemories(_ context.Context, req Request) Response {
	var args ListMemoriesArgs
	if derr := decodeArgs(req, &args); derr != nil {
		return errorResponse(derr)
	}

	memories, err := s.Store.Memories.List(store.ListFilter{Project: args.Project})
	if err != nil {
		return errorResponse(classify("list_memories", err))
	}
	if args.Limit > 0 && len(memories) > args.Limit {
		memories = memories[:args.Limit]
	}
	return ok(memories)
}

// SearchMemoriesArgs is search_memories' input schema.
type SearchMemoriesArgs struct {
	Query   string `json:"query"`
	Project string `json:"project,omitempty"`
}

func (s *Server) handleSearchMemories(ctx context.Context, req Request) Response {
	var args SearchMemoriesArgs
	if derr := decodeArgs(req, &args); derr != nil {
		return errorResponse(derr)
	}
	if args.Query == "" {
		return errorResponse(invalidInput("query is required"))
	}

	results, err := s.Store.Memories.List(store.ListFilter{Project: args.Project, Query: args.Query})
	if err != nil {
		return errorResponse(classify("search_memories", err))
	}

	// Best-effort: Search checks the deadline between candidates and
	// returns whatever has been ranked so far rather than erroring, per
	// the default best-effort search policy.
	out := make([]model.Memory, 0, len(results))
	for _, m := range results {
		if ctx.Err() != nil {
			break
		}
		out = append(out, m)
	}
	return ok(out)
}

// DeleteMemoryArgs is delete_memory's input schema.
type DeleteMemoryArgs struct {
	ID string `json:"id"`
}

// AckResult is the shape every delete_* operation returns.
type AckResult struct {
	ID string `json:"id"`
	OK bool   `json:"ok"`
}

func (s *Server) handleDeleteMemory(_ context.Context, req Request) Response {
	var args DeleteMemoryArgs
	if derr := decodeArgs(req, &args); derr != nil {
		return errorResponse(derr)
	}
	if args.ID == "" {
		return errorResponse(invalidInput("id is required"))
	}

	m, err := s.Store.Memories.Get(args.ID)
	if err != nil {
		// Deletes are idempotent: a missing id is still a successful ack.
		return ok(AckResult{ID: args.ID, OK: true})
	}

	for _, tc := range m.TaskConnections {
		if err := s.Store.UnlinkTaskMemory(tc.TaskID, args.ID); err != nil {
			continue // dangling task reference; surfaced by the health check
		}
	}

	if err := s.Store.Memories.Delete(args.ID); err != nil {
		return errorResponse(classify("delete_memory", err))
	}
	s.publish(watchbus.EventMemoryChange, watchbus.ActionUnlink, m.File, m.Project, args.ID)
	return ok(AckResult{ID: args.ID, OK: true})
}
