// Package core holds the life sphere, checklist and task model shared by the
// store and the request handlers.
package core

import "time"

// Defaults applied when a create request omits the key.
const (
	DefaultSphereIcon   = "Circle"
	DefaultSphereColor  = "#8B5CF6"
	DefaultDescription  = ""
	DefaultTaskPriority = "medium"
)

// Sphere is a user-defined life category used to tag checklists and tasks.
type Sphere struct {
	ID        int64     `json:"id"`
	Name      *string   `json:"name"`
	Icon      *string   `json:"icon"`
	Color     *string   `json:"color"`
	CreatedAt time.Time `json:"created_at"`
}

// Checklist is a named collection of tasks, optionally tagged with a sphere.
type Checklist struct {
	ID          int64      `json:"id"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	SphereID    *int64     `json:"sphere_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// ChecklistSummary is a checklist joined with its sphere metadata and the
// number of tasks that reference it.
type ChecklistSummary struct {
	Checklist
	SphereName  *string `json:"sphere_name"`
	SphereColor *string `json:"sphere_color"`
	SphereIcon  *string `json:"sphere_icon"`
	TasksCount  int64   `json:"tasks_count"`
}

// ChecklistDetail is a checklist summary with its tasks, oldest first.
type ChecklistDetail struct {
	ChecklistSummary
	Tasks []Task `json:"tasks"`
}

// Task is a single actionable item belonging to a checklist.
type Task struct {
	ID          int64      `json:"id"`
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	ChecklistID *int64     `json:"checklist_id"`
	SphereID    *int64     `json:"sphere_id"`
	Priority    *string    `json:"priority"`
	IsCompleted *bool      `json:"is_completed"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at"`
}

// SphereValues are the writable sphere columns. Nil writes NULL.
type SphereValues struct {
	Name  *string
	Icon  *string
	Color *string
}

// ChecklistValues are the writable checklist columns. Nil writes NULL.
type ChecklistValues struct {
	Title       *string
	Description *string
	SphereID    *int64
}

// NewTask holds the columns written when a task is created.
type NewTask struct {
	Title       *string
	Description *string
	ChecklistID *int64
	SphereID    *int64
	Priority    *string
}

// TaskValues are the task columns replaced by an update. Nil writes NULL.
type TaskValues struct {
	Title       *string
	Description *string
	IsCompleted *bool
	Priority    *string
}
