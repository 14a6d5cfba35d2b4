package service

import (
	"context"
	"net/http"

	"github.com/hugo-lorenzo-mato/lifeboard/internal/core"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/gateway"
)

// TaskService serves CRUD over tasks.
type TaskService struct {
	base
	repo core.TaskRepository
}

type createTaskRequest struct {
	Title       core.Field[string]  `json:"title"`
	Description core.Field[string]  `json:"description"`
	ChecklistID core.Field[core.ID] `json:"checklist_id"`
	SphereID    core.Field[core.ID] `json:"sphere_id"`
	Priority    core.Field[string]  `json:"priority"`
}

type updateTaskRequest struct {
	ID          core.Field[core.ID] `json:"id"`
	Title       core.Field[string]  `json:"title"`
	Description core.Field[string]  `json:"description"`
	IsCompleted core.Field[bool]    `json:"is_completed"`
	Priority    core.Field[string]  `json:"priority"`
}

// NewTaskService creates the task handler.
func NewTaskService(repo core.TaskRepository, opts ...Option) *TaskService {
	s := &TaskService{base: newBase(FunctionTasks, opts), repo: repo}
	s.mux.HandleFunc(http.MethodGet, s.get)
	s.mux.HandleFunc(http.MethodPost, s.create)
	s.mux.HandleFunc(http.MethodPut, s.update)
	s.mux.HandleFunc(http.MethodDelete, s.delete)
	return s
}

// get filters by checklist_id first, then reads by id, then lists all.
func (s *TaskService) get(ctx context.Context, req gateway.Request) (gateway.Response, error) {
	checklistID, _, byChecklist, err := idParam(req, "checklist_id")
	if err != nil {
		return s.fail(req, err, false)
	}
	if byChecklist {
		tasks, err := s.repo.ListTasksByChecklist(ctx, checklistID)
		if err != nil {
			return s.fail(req, err, false)
		}
		return s.ok(http.StatusOK, tasks)
	}

	id, _, byID, err := idParam(req, "id")
	if err != nil {
		return s.fail(req, err, false)
	}
	if byID {
		task, err := s.repo.GetTask(ctx, id)
		if err != nil {
			return s.fail(req, err, true)
		}
		return s.ok(http.StatusOK, task)
	}

	tasks, err := s.repo.ListTasks(ctx)
	if err != nil {
		return s.fail(req, err, false)
	}
	return s.ok(http.StatusOK, tasks)
}

func (s *TaskService) create(ctx context.Context, req gateway.Request) (gateway.Response, error) {
	var body createTaskRequest
	if err := gateway.DecodeBody(req, &body); err != nil {
		return s.fail(req, err, false)
	}

	task, err := s.repo.CreateTask(ctx, core.NewTask{
		Title:       body.Title.Ptr(),
		Description: body.Description.PtrOr(core.DefaultDescription),
		ChecklistID: core.IDPtr(body.ChecklistID),
		SphereID:    core.IDPtr(body.SphereID),
		Priority:    body.Priority.PtrOr(core.DefaultTaskPriority),
	})
	if err != nil {
		return s.fail(req, err, false)
	}
	return s.ok(http.StatusCreated, task)
}

func (s *TaskService) update(ctx context.Context, req gateway.Request) (gateway.Response, error) {
	var body updateTaskRequest
	if err := gateway.DecodeBody(req, &body); err != nil {
		return s.fail(req, err, false)
	}

	task, err := s.repo.UpdateTask(ctx, core.IDPtr(body.ID), core.TaskValues{
		Title:       body.Title.Ptr(),
		Description: body.Description.Ptr(),
		IsCompleted: body.IsCompleted.Ptr(),
		Priority:    body.Priority.Ptr(),
	})
	if err != nil {
		return s.fail(req, err, true)
	}
	return s.ok(http.StatusOK, task)
}

func (s *TaskService) delete(ctx context.Context, req gateway.Request) (gateway.Response, error) {
	return s.deleteByID(ctx, req, s.repo.DeleteTask)
}
