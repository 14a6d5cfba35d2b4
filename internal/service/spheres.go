package service

import (
	"context"
	"net/http"

	"github.com/hugo-lorenzo-mato/lifeboard/internal/core"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/gateway"
)

// SphereService serves CRUD over life spheres.
type SphereService struct {
	base
	repo core.SphereRepository
}

type createSphereRequest struct {
	Name  core.Field[string] `json:"name"`
	Icon  core.Field[string] `json:"icon"`
	Color core.Field[string] `json:"color"`
}

type updateSphereRequest struct {
	ID    core.Field[core.ID] `json:"id"`
	Name  core.Field[string]  `json:"name"`
	Icon  core.Field[string]  `json:"icon"`
	Color core.Field[string]  `json:"color"`
}

// NewSphereService creates the sphere handler.
func NewSphereService(repo core.SphereRepository, opts ...Option) *SphereService {
	s := &SphereService{base: newBase(FunctionSpheres, opts), repo: repo}
	s.mux.HandleFunc(http.MethodGet, s.get)
	s.mux.HandleFunc(http.MethodPost, s.create)
	s.mux.HandleFunc(http.MethodPut, s.update)
	s.mux.HandleFunc(http.MethodDelete, s.delete)
	return s
}

func (s *SphereService) get(ctx context.Context, req gateway.Request) (gateway.Response, error) {
	id, _, present, err := idParam(req, "id")
	if err != nil {
		return s.fail(req, err, false)
	}

	if !present {
		spheres, err := s.repo.ListSpheres(ctx)
		if err != nil {
			return s.fail(req, err, false)
		}
		return s.ok(http.StatusOK, spheres)
	}

	sphere, err := s.repo.GetSphere(ctx, id)
	if err != nil {
		return s.fail(req, err, true)
	}
	return s.ok(http.StatusOK, sphere)
}

func (s *SphereService) create(ctx context.Context, req gateway.Request) (gateway.Response, error) {
	var body createSphereRequest
	if err := gateway.DecodeBody(req, &body); err != nil {
		return s.fail(req, err, false)
	}

	sphere, err := s.repo.CreateSphere(ctx, core.SphereValues{
		Name:  body.Name.Ptr(),
		Icon:  body.Icon.PtrOr(core.DefaultSphereIcon),
		Color: body.Color.PtrOr(core.DefaultSphereColor),
	})
	if err != nil {
		return s.fail(req, err, false)
	}
	return s.ok(http.StatusCreated, sphere)
}

func (s *SphereService) update(ctx context.Context, req gateway.Request) (gateway.Response, error) {
	var body updateSphereRequest
	if err := gateway.DecodeBody(req, &body); err != nil {
		return s.fail(req, err, false)
	}

	sphere, err := s.repo.UpdateSphere(ctx, core.IDPtr(body.ID), core.SphereValues{
		Name:  body.Name.Ptr(),
		Icon:  body.Icon.Ptr(),
		Color: body.Color.Ptr(),
	})
	if err != nil {
		return s.fail(req, err, true)
	}
	return s.ok(http.StatusOK, sphere)
}

func (s *SphereService) delete(ctx context.Context, req gateway.Request) (gateway.Response, error) {
	return s.deleteByID(ctx, req, s.repo.DeleteSphere)
}
