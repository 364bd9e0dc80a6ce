package gateway

import (
	"context"

	"github.com/corevault/corevault/internal/model"
	"github.com/corevault/corevault/internal/store"
	"github.com/corevault/corevault/internal/watchbus"
)

// CreateTaskArgs is create_task's input schema.
type CreateTaskArgs struct {
	Title          string             `json:"title"`
	Description    string             `json:"description,omitempty"`
	Project        string             `json:"project,omitempty"`
	Category       model.TaskCategory `json:"category,omitempty"`
	Priority       model.Priority     `json:"priority,omitempty"`
	ParentTask     string             `json:"parent_task,omitempty"`
	Tags           []string           `json:"tags,omitempty"`
	AutoLink       bool               `json:"auto_link,omitempty"`
	ManualMemories []string           `json:"manual_memories,omitempty"`
}

func (s *Server) handleCreateTask(_ context.Context, req Request) Response {
	var args CreateTaskArgs
	if derr := decodeArgs(req, &args); derr != nil {
		return errorResponse(derr)
	}
	if args.Title == "" {
		return errorResponse(invalidInput("title is required"))
	}
	if err := model.ValidateTaskCategory(args.Category); err != nil {
		return errorResponse(invalidInput(err.Error()))
	}
	if err := model.ValidatePriority(args.Priority, true); err != nil {
		return errorResponse(invalidInput(err.Error()))
	}
	if args.ParentTask != "" {
		if _, err := s.Store.Tasks.Get(args.ParentTask); err != nil {
			return errorResponse(invalidInput(model.ErrDanglingParent.Error()))
		}
	}

	t := model.Task{
		Title:          args.Title,
		Description:    args.Description,
		Project:        args.Project,
		Category:       args.Category,
		Priority:       args.Priority,
		ParentTask:     args.ParentTask,
		Tags:           args.Tags,
		ManualMemories: args.ManualMemories,
	}

	created, err := s.Store.Tasks.Create(t)
	if err != nil {
		return errorResponse(classify("create_task", err))
	}

	if created.ParentTask != "" {
		unlockParent := s.taskLocks.Lock(created.ParentTask)
		_, err := s.Store.Tasks.Update(created.ParentTask, func(parent *model.Task) error {
			parent.Subtasks = append(parent.Subtasks, created.ID)
			return nil
		})
		unlockParent()
		if err != nil {
			return errorResponse(classify("create_task: attaching to parent", err))
		}
	}

	if args.AutoLink || len(args.ManualMemories) > 0 {
		if s.Linker != nil {
			unlock := s.taskLocks.Lock(created.ID)
			linkErr := s.Linker.Link(created.ID)
			var reloaded model.Task
			var getErr error
			if linkErr == nil {
				reloaded, getErr = s.Store.Tasks.Get(created.ID)
			}
			unlock()
			if linkErr != nil {
				return errorResponse(newError(KindDegraded, "create_task: auto-link failed: "+linkErr.Error(), linkErr))
			}
			if getErr != nil {
				return errorResponse(classify("create_task: reloading after link", getErr))
			}
			created = reloaded
		}
	}

	s.publish(watchbus.EventTaskChange, watchbus.ActionAdd, created.File, created.Project, created.ID)
	return ok(created)
}

// UpdateTaskArgs is update_task's input schema. Pointer fields distinguish
// "not supplied" from "set to zero value".
type UpdateTaskArgs struct {
	ID          string              `json:"id"`
	Title       *string             `json:"title,omitempty"`
	Description *string             `json:"description,omitempty"`
	Status      *model.TaskStatus   `json:"status,omitempty"`
	Priority    *model.Priority     `json:"priority,omitempty"`
	Category    *model.TaskCategory `json:"category,omitempty"`
	Tags        []string            `json:"tags,omitempty"`
	Project     *string             `json:"project,omitempty"`
}

func (s *Server) handleUpdateTask(_ context.Context, req Request) Response {
	var args UpdateTaskArgs
	if derr := decodeArgs(req, &args); derr != nil {
		return errorResponse(derr)
	}
	if args.ID == "" {
		return errorResponse(invalidInput("id is required"))
	}
	if args.Priority != nil {
		if err := model.ValidatePriority(*args.Priority, true); err != nil {
			return errorResponse(invalidInput(err.Error()))
		}
	}
	if args.Category != nil {
		if err := model.ValidateTaskCategory(*args.Category); err != nil {
			return errorResponse(invalidInput(err.Error()))
		}
	}

	relinkNeeded := args.Title != nil || args.Description != nil || args.Tags != nil || args.Project != nil

	unlock := s.taskLocks.Lock(args.ID)
	defer unlock()

	updated, err := s.Store.Tasks.Update(args.ID, func(t *model.Task) error {
		if args.Title != nil {
			t.Title = *args.Title
		}
		if args.Description != nil {
			t.Description = *args.Description
		}
		if args.Priority != nil {
			t.Priority = *args.Priority
		}
		if args.Category != nil {
			t.Category = *args.Category
		}
		if args.Tags != nil {
			t.Tags = args.Tags
		}
		if args.Project != nil {
			t.Project = *args.Project
		}
		if args.Status != nil {
			if err := model.ValidateStatusTransition(t.Status, *args.Status); err != nil {
				return err
			}
			t.Status = *args.Status
			if t.Status == model.StatusDone {
				t.CompletedOnce = true
			}
		}
		return nil
	})
	if err != nil {
		return errorResponse(classify("update_task", err))
	}

	if relinkNeeded && s.Linker != nil {
		if err := s.Linker.Link(updated.ID); err != nil {
			return errorResponse(newError(KindDegraded, "update_task: re-link failed: "+err.Error(), err))
		}
		if updated, err = s.Store.Tasks.Get(updated.ID); err != nil {
			return errorResponse(classify("update_task: reloading after link", err))
		}
	}

	s.publish(watchbus.EventTaskChange, watchbus.ActionChange, updated.File, updated.Project, updated.ID)
	return ok(updated)
}

// ListTasksArgs is list_tasks' input schema.
type ListTasksArgs struct {
	Project  string             `json:"project,omitempty"`
	Status   model.TaskStatus   `json:"status,omitempty"`
	Category model.TaskCategory `json:"category,omitempty"`
}

func (s *Server) handleListTasks(_ context.Context, req Request) Response {
	var args ListTasksArgs
	if derr := decodeArgs(req, &args); derr != nil {
		return errorResponse(derr)
	}

	tasks, err := s.Store.Tasks.List(store.TaskFilter{
		Project:  args.Project,
		Status:   args.Status,
		Category: args.Category,
	})
	if err != nil {
		return errorResponse(classify("list_tasks", err))
	}
	return ok(tasks)
}

// GetTaskContextArgs is get_task_context's input schema.
type GetTaskContextArgs struct {
	ID    string `json:"id"`
	Depth string `json:"depth,omitempty"` // "shallow" (default) or "deep"
}

// TaskContextResult bundles a task with its linked memories and, at depth
// "deep", its subtasks and their own linked memories.
type TaskContextResult struct {
	Task     model.Task          `json:"task"`
	Memories []model.Memory      `json:"memories"`
	Subtasks []TaskContextResult `json:"subtasks,omitempty"`
}

func (s *Server) handleGetTaskContext(_ context.Context, req Request) Response {
	var args GetTaskContextArgs
	if derr := decodeArgs(req, &args); derr != nil {
		return errorResponse(derr)
	}
	if args.ID == "" {
		return errorResponse(invalidInput("id is required"))
	}
	depth := args.Depth
	if depth == "" {
		depth = "shallow"
	}
	if depth != "shallow" && depth != "deep" {
		return errorResponse(invalidInput("depth must be \"shallow\" or \"deep\""))
	}

	result, gerr := s.buildTaskContext(args.ID, depth == "deep")
	if gerr != nil {
		return errorResponse(gerr)
	}
	return ok(result)
}

func (s *Server) buildTaskContext(taskID string, deep bool) (*TaskContextResult, *Error) {
	task, err := s.Store.Tasks.Get(taskID)
	if err != nil {
		return nil, classify("get_task_context", err)
	}

	memories := make([]model.Memory, 0, len(task.MemoryConnections))
	for _, mc := range task.MemoryConnections {
		m, err := s.Store.Memories.Get(mc.MemoryID)
		if err != nil {
			continue // dangling connection; surfaced by the health check
		}
		memories = append(memories, m)
	}

	result := &TaskContextResult{Task: task, Memories: memories}

	if deep {
		for _, subID := range task.Subtasks {
			sub, gerr := s.buildTaskContext(subID, false)
			if gerr != nil {
				continue
			}
			result.Subtasks = append(result.Subtasks, *sub)
		}
	}
	return result, nil
}

// DeleteTaskArgs is delete_task's input schema.
type DeleteTaskArgs struct {
	ID string `json:"id"`
}

func (s *Server) handleDeleteTask(_ context.Context, req Request) Response {
	var args DeleteTaskArgs
	if derr := decodeArgs(req, &args); derr != nil {
		return errorResponse(derr)
	}
	if args.ID == "" {
		return errorResponse(invalidInput("id is required"))
	}

	unlock := s.taskLocks.Lock(args.ID)
	defer unlock()

	task, err := s.Store.Tasks.Get(args.ID)
	if err != nil {
		// Deletes are idempotent: a missing id is still a successful ack.
		return ok(AckResult{ID: args.ID, OK: true})
	}

	if s.Backup != nil {
		if _, err := s.Backup.Snapshot("pre-delete-task"); err != nil {
			return errorResponse(newError(KindDegraded, "delete_task: pre-delete snapshot failed: "+err.Error(), err))
		}
	}

	if err := s.Store.DeleteTaskCascade(args.ID); err != nil {
		return errorResponse(classify("delete_task", err))
	}

	s.publish(watchbus.EventTaskChange, watchbus.ActionUnlink, task.File, task.Project, args.ID)
	return ok(AckResult{ID: args.ID, OK: true})
}
