package service

import (
	"context"
	"net/http"

	"github.com/hugo-lorenzo-mato/lifeboard/internal/core"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/gateway"
)

// ChecklistService serves CRUD over checklists. Reads carry sphere metadata
// and task counts; a checklist read by id also carries its tasks.
type ChecklistService struct {
	base
	repo core.ChecklistRepository
}

type createChecklistRequest struct {
	Title       core.Field[string]  `json:"title"`
	Description core.Field[string]  `json:"description"`
	SphereID    core.Field[core.ID] `json:"sphere_id"`
}

type updateChecklistRequest struct {
	ID          core.Field[core.ID] `json:"id"`
	Title       core.Field[string]  `json:"title"`
	Description core.Field[string]  `json:"description"`
	SphereID    core.Field[core.ID] `json:"sphere_id"`
}

// NewChecklistService creates the checklist handler.
func NewChecklistService(repo core.ChecklistRepository, opts ...Option) *ChecklistService {
	s := &ChecklistService{base: newBase(FunctionChecklists, opts), repo: repo}
	s.mux.HandleFunc(http.MethodGet, s.get)
	s.mux.HandleFunc(http.MethodPost, s.create)
	s.mux.HandleFunc(http.MethodPut, s.update)
	s.mux.HandleFunc(http.MethodDelete, s.delete)
	return s
}

func (s *ChecklistService) get(ctx context.Context, req gateway.Request) (gateway.Response, error) {
	id, _, present, err := idParam(req, "id")
	if err != nil {
		return s.fail(req, err, false)
	}

	if !present {
		checklists, err := s.repo.ListChecklists(ctx)
		if err != nil {
			return s.fail(req, err, false)
		}
		return s.ok(http.StatusOK, checklists)
	}

	// A missing checklist is always 404, in either not-found mode.
	checklist, err := s.repo.GetChecklist(ctx, id)
	if err != nil {
		return s.fail(req, err, false)
	}
	return s.ok(http.StatusOK, checklist)
}

func (s *ChecklistService) create(ctx context.Context, req gateway.Request) (gateway.Response, error) {
	var body createChecklistRequest
	if err := gateway.DecodeBody(req, &body); err != nil {
		return s.fail(req, err, false)
	}

	checklist, err := s.repo.CreateChecklist(ctx, core.ChecklistValues{
		Title:       body.Title.Ptr(),
		Description: body.Description.PtrOr(core.DefaultDescription),
		SphereID:    core.IDPtr(body.SphereID),
	})
	if err != nil {
		return s.fail(req, err, false)
	}
	return s.ok(http.StatusCreated, checklist)
}

func (s *ChecklistService) update(ctx context.Context, req gateway.Request) (gateway.Response, error) {
	var body updateChecklistRequest
	if err := gateway.DecodeBody(req, &body); err != nil {
		return s.fail(req, err, false)
	}

	checklist, err := s.repo.UpdateChecklist(ctx, core.IDPtr(body.ID), core.ChecklistValues{
		Title:       body.Title.Ptr(),
		Description: body.Description.Ptr(),
		SphereID:    core.IDPtr(body.SphereID),
	})
	if err != nil {
		return s.fail(req, err, true)
	}
	return s.ok(http.StatusOK, checklist)
}

func (s *ChecklistService) delete(ctx context.Context, req gateway.Request) (gateway.Response, error) {
	return s.deleteByID(ctx, req, s.repo.DeleteChecklist)
}
