package testutil

import (
	"context"
	"sync"
	"time"

	"github.com/hugo-lorenzo-mato/lifeboard/internal/core"
)

// MockCall records a call to the mock.
type MockCall struct {
	Method    string
	Args      interface{}
	Timestamp time.Time
}

// MockRepository implements the sphere, checklist and task repositories
// without a database. By default reads return empty results and writes echo
// their input; WithError makes every call fail.
type MockRepository struct {
	mu    sync.Mutex
	calls []MockCall
	err   error
}

var (
	_ core.SphereRepository    = (*MockRepository)(nil)
	_ core.ChecklistRepository = (*MockRepository)(nil)
	_ core.TaskRepository      = (*MockRepository)(nil)
)

// NewMockRepository creates a new mock repository.
func NewMockRepository() *MockRepository {
	return &MockRepository{calls: make([]MockCall, 0)}
}

// WithError configures every call to return err.
func (m *MockRepository) WithError(err error) *MockRepository {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Calls returns all recorded calls.
func (m *MockRepository) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// CallCount returns the number of calls to a method, or to any method when
// method is empty.
func (m *MockRepository) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	if method == "" {
		return len(m.calls)
	}
	count := 0
	for _, c := range m.calls {
		if c.Method == method {
			count++
		}
	}
	return count
}

// Reset clears recorded calls.
func (m *MockRepository) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make([]MockCall, 0)
}

func (m *MockRepository) record(method string, args interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{Method: method, Args: args, Timestamp: time.Now()})
	return m.err
}

func deref(id *int64) int64 {
	if id == nil {
		return 0
	}
	return *id
}

// ListSpheres mocks listing spheres.
func (m *MockRepository) ListSpheres(_ context.Context) ([]core.Sphere, error) {
	if err := m.record("ListSpheres", nil); err != nil {
		return nil, err
	}
	return []core.Sphere{}, nil
}

// GetSphere mocks reading a sphere.
func (m *MockRepository) GetSphere(_ context.Context, id int64) (*core.Sphere, error) {
	if err := m.record("GetSphere", id); err != nil {
		return nil, err
	}
	return &core.Sphere{ID: id}, nil
}

// CreateSphere mocks inserting a sphere.
func (m *MockRepository) CreateSphere(_ context.Context, v core.SphereValues) (*core.Sphere, error) {
	if err := m.record("CreateSphere", v); err != nil {
		return nil, err
	}
	return &core.Sphere{ID: 1, Name: v.Name, Icon: v.Icon, Color: v.Color}, nil
}

// UpdateSphere mocks replacing a sphere.
func (m *MockRepository) UpdateSphere(_ context.Context, id *int64, v core.SphereValues) (*core.Sphere, error) {
	if err := m.record("UpdateSphere", v); err != nil {
		return nil, err
	}
	return &core.Sphere{ID: deref(id), Name: v.Name, Icon: v.Icon, Color: v.Color}, nil
}

// DeleteSphere mocks deleting a sphere.
func (m *MockRepository) DeleteSphere(_ context.Context, id *int64) error {
	return m.record("DeleteSphere", id)
}

// ListChecklists mocks listing checklists.
func (m *MockRepository) ListChecklists(_ context.Context) ([]core.ChecklistSummary, error) {
	if err := m.record("ListChecklists", nil); err != nil {
		return nil, err
	}
	return []core.ChecklistSummary{}, nil
}

// GetChecklist mocks reading a checklist.
func (m *MockRepository) GetChecklist(_ context.Context, id int64) (*core.ChecklistDetail, error) {
	if err := m.record("GetChecklist", id); err != nil {
		return nil, err
	}
	d := &core.ChecklistDetail{Tasks: []core.Task{}}
	d.ID = id
	return d, nil
}

// CreateChecklist mocks inserting a checklist.
func (m *MockRepository) CreateChecklist(_ context.Context, v core.ChecklistValues) (*core.Checklist, error) {
	if err := m.record("CreateChecklist", v); err != nil {
		return nil, err
	}
	return &core.Checklist{ID: 1, Title: v.Title, Description: v.Description, SphereID: v.SphereID}, nil
}

// UpdateChecklist mocks replacing a checklist.
func (m *MockRepository) UpdateChecklist(_ context.Context, id *int64, v core.ChecklistValues) (*core.Checklist, error) {
	if err := m.record("UpdateChecklist", v); err != nil {
		return nil, err
	}
	return &core.Checklist{ID: deref(id), Title: v.Title, Description: v.Description, SphereID: v.SphereID}, nil
}

// DeleteChecklist mocks deleting a checklist.
func (m *MockRepository) DeleteChecklist(_ context.Context, id *int64) error {
	return m.record("DeleteChecklist", id)
}

// ListTasks mocks listing tasks.
func (m *MockRepository) ListTasks(_ context.Context) ([]core.Task, error) {
	if err := m.record("ListTasks", nil); err != nil {
		return nil, err
	}
	return []core.Task{}, nil
}

// ListTasksByChecklist mocks listing the tasks of a checklist.
func (m *MockRepository) ListTasksByChecklist(_ context.Context, checklistID int64) ([]core.Task, error) {
	if err := m.record("ListTasksByChecklist", checklistID); err != nil {
		return nil, err
	}
	return []core.Task{}, nil
}

// GetTask mocks reading a task.
func (m *MockRepository) GetTask(_ context.Context, id int64) (*core.Task, error) {
	if err := m.record("GetTask", id); err != nil {
		return nil, err
	}
	return &core.Task{ID: id}, nil
}

// CreateTask mocks inserting a task.
func (m *MockRepository) CreateTask(_ context.Context, v core.NewTask) (*core.Task, error) {
	if err := m.record("CreateTask", v); err != nil {
		return nil, err
	}
	return &core.Task{ID: 1, Title: v.Title, Description: v.Description,
		ChecklistID: v.ChecklistID, SphereID: v.SphereID, Priority: v.Priority}, nil
}

// UpdateTask mocks replacing a task.
func (m *MockRepository) UpdateTask(_ context.Context, id *int64, v core.TaskValues) (*core.Task, error) {
	if err := m.record("UpdateTask", v); err != nil {
		return nil, err
	}
	return &core.Task{ID: deref(id), Title: v.Title, Description: v.Description,
		IsCompleted: v.IsCompleted, Priority: v.Priority}, nil
}

// DeleteTask mocks deleting a task.
func (m *MockRepository) DeleteTask(_ context.Context, id *int64) error {
	return m.record("DeleteTask", id)
}
