package core

import "context"

// SphereRepository persists life spheres.
//
// Update and Delete take a nullable id: a nil id is bound as NULL and matches
// no row. Get and Update report a missing row with a not-found DomainError.
type SphereRepository interface {
	ListSpheres(ctx context.Context) ([]Sphere, error)
	GetSphere(ctx context.Context, id int64) (*Sphere, error)
	CreateSphere(ctx context.Context, v SphereValues) (*Sphere, error)
	UpdateSphere(ctx context.Context, id *int64, v SphereValues) (*Sphere, error)
	DeleteSphere(ctx context.Context, id *int64) error
}

// ChecklistRepository persists checklists.
type ChecklistRepository interface {
	ListChecklists(ctx context.Context) ([]ChecklistSummary, error)
	GetChecklist(ctx context.Context, id int64) (*ChecklistDetail, error)
	CreateChecklist(ctx context.Context, v ChecklistValues) (*Checklist, error)
	UpdateChecklist(ctx context.Context, id *int64, v ChecklistValues) (*Checklist, error)
	DeleteChecklist(ctx context.Context, id *int64) error
}

// TaskRepository persists tasks.
type TaskRepository interface {
	ListTasks(ctx context.Context) ([]Task, error)
	ListTasksByChecklist(ctx context.Context, checklistID int64) ([]Task, error)
	GetTask(ctx context.Context, id int64) (*Task, error)
	CreateTask(ctx context.Context, v NewTask) (*Task, error)
	UpdateTask(ctx context.Context, id *int64, v TaskValues) (*Task, error)
	DeleteTask(ctx context.Context, id *int64) error
}
