package service_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hugo-lorenzo-mato/lifeboard/internal/config"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/core"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/gateway"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/service"
	"github.com/hugo-lorenzo-mato/lifeboard/internal/testutil"
)

type services struct {
	spheres    *service.SphereService
	checklists *service.ChecklistService
	tasks      *service.TaskService
	metrics    *service.MetricsCollector
}

func newServices(t *testing.T, opts ...service.Option) services {
	t.Helper()
	s := testutil.NewTestStore(t)
	metrics := service.NewMetricsCollector()
	opts = append([]service.Option{service.WithMetrics(metrics)}, opts...)
	return services{
		spheres:    service.NewSphereService(s, opts...),
		checklists: service.NewChecklistService(s, opts...),
		tasks:      service.NewTaskService(s, opts...),
		metrics:    metrics,
	}
}

func call(t *testing.T, h gateway.Handler, method, body string, query map[string]string) gateway.Response {
	t.Helper()
	resp, err := h.Handle(context.Background(), gateway.Request{
		HTTPMethod:            method,
		Body:                  body,
		QueryStringParameters: query,
		Headers:               map[string]string{"X-User-Id": "user-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "*", resp.Headers[gateway.HeaderAllowOrigin], "every response carries the CORS origin")
	return resp
}

func decode(t *testing.T, resp gateway.Response) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out), resp.Body)
	return out
}

func decodeList(t *testing.T, resp gateway.Response) []map[string]interface{} {
	t.Helper()
	var out []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &out), resp.Body)
	return out
}

func idOf(t *testing.T, obj map[string]interface{}) string {
	t.Helper()
	id, ok := obj["id"].(float64)
	require.True(t, ok, "id missing in %v", obj)
	return fmt.Sprintf("%d", int64(id))
}

func TestSphereService_CreateAppliesDefaults(t *testing.T) {
	svc := newServices(t)

	resp := call(t, svc.spheres, http.MethodPost, `{"name":"Health"}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, resp.Body)
	assert.Equal(t, "application/json", resp.Headers[gateway.HeaderContentType])

	created := decode(t, resp)
	assert.Equal(t, "Health", created["name"])
	assert.Equal(t, "Circle", created["icon"])
	assert.Equal(t, "#8B5CF6", created["color"])
	assert.NotEmpty(t, created["created_at"])

	got := decode(t, call(t, svc.spheres, http.MethodGet, "", map[string]string{"id": idOf(t, created)}))
	assert.Equal(t, created, got)
}

func TestSphereService_CreateWithoutNameAndExplicitNull(t *testing.T) {
	svc := newServices(t)

	created := decode(t, call(t, svc.spheres, http.MethodPost, `{"icon":null}`, nil))
	assert.Nil(t, created["name"], "missing name is stored as NULL")
	assert.Nil(t, created["icon"], "explicit null bypasses the default")
	assert.Equal(t, "#8B5CF6", created["color"])
}

func TestSphereService_UpdateReplacesAllFields(t *testing.T) {
	svc := newServices(t)

	created := decode(t, call(t, svc.spheres, http.MethodPost, `{"name":"Work","icon":"Briefcase","color":"#000"}`, nil))
	id := idOf(t, created)

	resp := call(t, svc.spheres, http.MethodPut, fmt.Sprintf(`{"id":%s,"name":"Career"}`, id), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got := decode(t, call(t, svc.spheres, http.MethodGet, "", map[string]string{"id": id}))
	assert.Equal(t, "Career", got["name"])
	assert.Nil(t, got["icon"])
	assert.Nil(t, got["color"])
}

func TestSphereService_UpdateUnknownReturnsNull(t *testing.T) {
	svc := newServices(t)

	resp := call(t, svc.spheres, http.MethodPut, `{"id":999,"name":"x"}`, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "null", resp.Body)

	resp = call(t, svc.spheres, http.MethodPut, `{"name":"no id"}`, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "null", resp.Body)
}

func TestSphereService_DeleteThenRead(t *testing.T) {
	svc := newServices(t)

	id := idOf(t, decode(t, call(t, svc.spheres, http.MethodPost, `{"name":"Temp"}`, nil)))

	for i := 0; i < 2; i++ {
		resp := call(t, svc.spheres, http.MethodDelete, "", map[string]string{"id": id})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, fmt.Sprintf(`{"success":true,"id":%q}`, id), resp.Body)
	}

	resp := call(t, svc.spheres, http.MethodGet, "", map[string]string{"id": id})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "null", resp.Body)
}

func TestSphereService_DeleteWithoutID(t *testing.T) {
	svc := newServices(t)

	resp := call(t, svc.spheres, http.MethodDelete, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"id":null}`, resp.Body)
}

func TestSphereService_DeleteEmptyIDEchoed(t *testing.T) {
	svc := newServices(t)

	resp := call(t, svc.spheres, http.MethodDelete, "", map[string]string{"id": ""})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"success":true,"id":""}`, resp.Body)
}

func TestSphereService_ListNewestFirst(t *testing.T) {
	svc := newServices(t)

	for _, name := range []string{"a", "b", "c"} {
		call(t, svc.spheres, http.MethodPost, fmt.Sprintf(`{"name":%q}`, name), nil)
	}

	list := decodeList(t, call(t, svc.spheres, http.MethodGet, "", nil))
	require.Len(t, list, 3)
	assert.Equal(t, "c", list[0]["name"])
	assert.Equal(t, "a", list[2]["name"])
}

func TestSphereService_EmptyListIsArray(t *testing.T) {
	svc := newServices(t)
	resp := call(t, svc.spheres, http.MethodGet, "", nil)
	assert.Equal(t, "[]", resp.Body)
}

func TestChecklistService_CreateExample(t *testing.T) {
	svc := newServices(t)

	for i := 0; i < 3; i++ {
		call(t, svc.spheres, http.MethodPost, `{"name":"s"}`, nil)
	}

	resp := call(t, svc.checklists, http.MethodPost, `{"title":"Morning routine","sphere_id":3}`, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, resp.Body)

	created := decode(t, resp)
	assert.NotNil(t, created["id"])
	assert.Equal(t, "Morning routine", created["title"])
	assert.Equal(t, "", created["description"])
	assert.Equal(t, float64(3), created["sphere_id"])
	assert.NotContains(t, created, "tasks_count")
	assert.Nil(t, created["updated_at"])
}

func TestChecklistService_GetUnknownIs404(t *testing.T) {
	svc := newServices(t)

	resp := call(t, svc.checklists, http.MethodGet, "", map[string]string{"id": "12345"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.JSONEq(t, `{"error":"Not found"}`, resp.Body)
}

func TestChecklistService_DetailAndCounts(t *testing.T) {
	svc := newServices(t)

	sphere := decode(t, call(t, svc.spheres, http.MethodPost, `{"name":"Home","icon":"House","color":"#F00"}`, nil))
	empty := decode(t, call(t, svc.checklists, http.MethodPost, `{"title":"empty"}`, nil))
	busy := decode(t, call(t, svc.checklists, http.MethodPost,
		fmt.Sprintf(`{"title":"busy","sphere_id":%s}`, idOf(t, sphere)), nil))

	for _, title := range []string{"first", "second"} {
		resp := call(t, svc.tasks, http.MethodPost,
			fmt.Sprintf(`{"title":%q,"checklist_id":%s}`, title, idOf(t, busy)), nil)
		require.Equal(t, http.StatusCreated, resp.StatusCode, resp.Body)
	}

	list := decodeList(t, call(t, svc.checklists, http.MethodGet, "", nil))
	require.Len(t, list, 2)
	assert.Equal(t, idOf(t, busy), idOf(t, list[0]), "newest first")
	assert.Equal(t, float64(2), list[0]["tasks_count"])
	assert.Equal(t, "Home", list[0]["sphere_name"])
	assert.Equal(t, "#F00", list[0]["sphere_color"])
	assert.Equal(t, "House", list[0]["sphere_icon"])
	assert.Equal(t, float64(0), list[1]["tasks_count"])
	assert.Nil(t, list[1]["sphere_name"])
	assert.Equal(t, idOf(t, empty), idOf(t, list[1]))

	detail := decode(t, call(t, svc.checklists, http.MethodGet, "", map[string]string{"id": idOf(t, busy)}))
	assert.Equal(t, float64(2), detail["tasks_count"])
	tasks, ok := detail["tasks"].([]interface{})
	require.True(t, ok)
	require.Len(t, tasks, 2)
	assert.Equal(t, "first", tasks[0].(map[string]interface{})["title"])
	assert.Equal(t, "second", tasks[1].(map[string]interface{})["title"])

	emptyDetail := decode(t, call(t, svc.checklists, http.MethodGet, "", map[string]string{"id": idOf(t, empty)}))
	assert.Equal(t, []interface{}{}, emptyDetail["tasks"])
}

func TestChecklistService_UpdateSetsUpdatedAt(t *testing.T) {
	svc := newServices(t)

	created := decode(t, call(t, svc.checklists, http.MethodPost, `{"title":"Old","description":"keep?"}`, nil))
	id := idOf(t, created)

	updated := decode(t, call(t, svc.checklists, http.MethodPut, fmt.Sprintf(`{"id":"%s","title":"New"}`, id), nil))
	assert.Equal(t, "New", updated["title"])
	assert.Nil(t, updated["description"], "omitted description is replaced with NULL")
	assert.Nil(t, updated["sphere_id"])
	assert.NotNil(t, updated["updated_at"])
}

func TestChecklistService_DeleteThenRead(t *testing.T) {
	svc := newServices(t)

	id := idOf(t, decode(t, call(t, svc.checklists, http.MethodPost, `{"title":"gone"}`, nil)))

	resp := call(t, svc.checklists, http.MethodDelete, "", map[string]string{"id": id})
	assert.JSONEq(t, fmt.Sprintf(`{"success":true,"id":%q}`, id), resp.Body)

	resp = call(t, svc.checklists, http.MethodGet, "", map[string]string{"id": id})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = call(t, svc.checklists, http.MethodDelete, "", map[string]string{"id": id})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Body, `"success":true`)
}

func TestTaskService_CreateAppliesDefaults(t *testing.T) {
	svc := newServices(t)

	checklist := decode(t, call(t, svc.checklists, http.MethodPost, `{"title":"c"}`, nil))
	resp := call(t, svc.tasks, http.MethodPost,
		fmt.Sprintf(`{"title":"Stretch","checklist_id":%s,"is_completed":true}`, idOf(t, checklist)), nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode, resp.Body)

	task := decode(t, resp)
	assert.Equal(t, "Stretch", task["title"])
	assert.Equal(t, "", task["description"])
	assert.Equal(t, "medium", task["priority"])
	assert.Equal(t, false, task["is_completed"], "is_completed always takes the column default on create")
	assert.Nil(t, task["sphere_id"])
}

func TestTaskService_FilterByChecklistAscending(t *testing.T) {
	svc := newServices(t)

	c7 := decode(t, call(t, svc.checklists, http.MethodPost, `{"title":"seven"}`, nil))
	other := decode(t, call(t, svc.checklists, http.MethodPost, `{"title":"other"}`, nil))

	call(t, svc.tasks, http.MethodPost, fmt.Sprintf(`{"title":"one","checklist_id":%s}`, idOf(t, c7)), nil)
	call(t, svc.tasks, http.MethodPost, fmt.Sprintf(`{"title":"elsewhere","checklist_id":%s}`, idOf(t, other)), nil)
	call(t, svc.tasks, http.MethodPost, fmt.Sprintf(`{"title":"two","checklist_id":%s}`, idOf(t, c7)), nil)

	resp := call(t, svc.tasks, http.MethodGet, "", map[string]string{"checklist_id": idOf(t, c7)})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	tasks := decodeList(t, resp)
	require.Len(t, tasks, 2)
	assert.Equal(t, "one", tasks[0]["title"])
	assert.Equal(t, "two", tasks[1]["title"])

	all := decodeList(t, call(t, svc.tasks, http.MethodGet, "", nil))
	require.Len(t, all, 3)
	assert.Equal(t, "two", all[0]["title"], "unfiltered list is newest first")
}

func TestTaskService_UpdateAndDelete(t *testing.T) {
	svc := newServices(t)

	checklist := decode(t, call(t, svc.checklists, http.MethodPost, `{"title":"c"}`, nil))
	task := decode(t, call(t, svc.tasks, http.MethodPost,
		fmt.Sprintf(`{"title":"t","priority":"high","checklist_id":%s}`, idOf(t, checklist)), nil))
	id := idOf(t, task)

	updated := decode(t, call(t, svc.tasks, http.MethodPut, fmt.Sprintf(`{"id":%s,"is_completed":true}`, id), nil))
	assert.Equal(t, true, updated["is_completed"])
	assert.Nil(t, updated["title"])
	assert.Nil(t, updated["priority"])
	assert.NotNil(t, updated["updated_at"])

	resp := call(t, svc.tasks, http.MethodPut, `{"title":"no id"}`, nil)
	assert.Equal(t, "null", resp.Body)

	call(t, svc.tasks, http.MethodDelete, "", map[string]string{"id": id})
	resp = call(t, svc.tasks, http.MethodGet, "", map[string]string{"id": id})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "null", resp.Body)

	resp = call(t, svc.tasks, http.MethodDelete, "", map[string]string{"id": id})
	assert.JSONEq(t, fmt.Sprintf(`{"success":true,"id":%q}`, id), resp.Body)
}

func TestTaskService_UnknownChecklistIsConstraintError(t *testing.T) {
	svc := newServices(t)

	resp := call(t, svc.tasks, http.MethodPost, `{"title":"t","checklist_id":987654}`, nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	body := decode(t, resp)
	assert.Equal(t, "constraint", body["kind"])
}

func TestUniformNotFoundMode(t *testing.T) {
	svc := newServices(t, service.WithNotFoundMode(config.NotFoundUniform))

	tests := []struct {
		name    string
		handler gateway.Handler
		method  string
		body    string
		query   map[string]string
	}{
		{"sphere get", svc.spheres, http.MethodGet, "", map[string]string{"id": "404"}},
		{"sphere put", svc.spheres, http.MethodPut, `{"id":404}`, nil},
		{"checklist get", svc.checklists, http.MethodGet, "", map[string]string{"id": "404"}},
		{"checklist put", svc.checklists, http.MethodPut, `{"id":404}`, nil},
		{"task get", svc.tasks, http.MethodGet, "", map[string]string{"id": "404"}},
		{"task put", svc.tasks, http.MethodPut, `{"id":404}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, tt.handler, tt.method, tt.body, tt.query)
			assert.Equal(t, http.StatusNotFound, resp.StatusCode)
			assert.JSONEq(t, `{"error":"Not found"}`, resp.Body)
		})
	}
}

func TestMalformedInput(t *testing.T) {
	svc := newServices(t)

	tests := []struct {
		name    string
		handler gateway.Handler
		method  string
		body    string
		query   map[string]string
	}{
		{"bad json", svc.spheres, http.MethodPost, `{"name":`, nil},
		{"non integer id", svc.checklists, http.MethodGet, "", map[string]string{"id": "abc"}},
		{"non integer delete id", svc.tasks, http.MethodDelete, "", map[string]string{"id": "1; DROP"}},
		{"non integer checklist filter", svc.tasks, http.MethodGet, "", map[string]string{"checklist_id": "x"}},
		{"non integer body id", svc.tasks, http.MethodPut, `{"id":"seven"}`, nil},
		{"wrong type", svc.tasks, http.MethodPut, `{"id":1,"is_completed":"yes"}`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, tt.handler, tt.method, tt.body, tt.query)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode, resp.Body)
			assert.Equal(t, "validation", decode(t, resp)["kind"])
		})
	}
}

func TestWrongFieldTypeNamesField(t *testing.T) {
	svc := newServices(t)

	tests := []struct {
		name    string
		handler gateway.Handler
		method  string
		body    string
		want    string
	}{
		{"string field", svc.checklists, http.MethodPost, `{"title":5}`, "title must be a string"},
		{"boolean field", svc.tasks, http.MethodPut, `{"id":1,"is_completed":"yes"}`, "is_completed must be a boolean"},
		{"id field", svc.tasks, http.MethodPost, `{"title":"t","checklist_id":"x"}`, "checklist_id must be an integer"},
		{"not an object", svc.spheres, http.MethodPost, `[1]`, "request body must be a JSON object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := call(t, tt.handler, tt.method, tt.body, nil)
			testutil.AssertEqual(t, resp.StatusCode, http.StatusBadRequest)
			testutil.AssertContains(t, resp.Body, tt.want)
		})
	}
}

func TestCustomCORSPolicy(t *testing.T) {
	policy := gateway.DefaultCORSPolicy()
	policy.AllowOrigin = "https://app.example"
	policy.MaxAge = 600
	svc := service.NewSphereService(testutil.NewMockRepository(), service.WithCORS(policy))

	resp, err := svc.Handle(context.Background(), gateway.Request{HTTPMethod: http.MethodGet})
	require.NoError(t, err)
	assert.Equal(t, "https://app.example", resp.Headers[gateway.HeaderAllowOrigin])

	resp, err = svc.Handle(context.Background(), gateway.Request{HTTPMethod: http.MethodOptions})
	require.NoError(t, err)
	assert.Equal(t, "600", resp.Headers[gateway.HeaderMaxAge])
}

func TestOptionsNeverTouchesStore(t *testing.T) {
	repo := testutil.NewMockRepository().WithError(testutil.ErrTest)
	handlers := map[string]gateway.Handler{
		"spheres":    service.NewSphereService(repo),
		"checklists": service.NewChecklistService(repo),
		"tasks":      service.NewTaskService(repo),
	}

	for name, h := range handlers {
		t.Run(name, func(t *testing.T) {
			resp := call(t, h, http.MethodOptions, "", nil)
			assert.Equal(t, http.StatusOK, resp.StatusCode)
			assert.Empty(t, resp.Body)
			assert.Equal(t, "GET, POST, PUT, DELETE, OPTIONS", resp.Headers[gateway.HeaderAllowMethods])
			assert.Equal(t, "Content-Type, X-User-Id", resp.Headers[gateway.HeaderAllowHeaders])
			assert.Equal(t, "86400", resp.Headers[gateway.HeaderMaxAge])
		})
	}
	assert.Zero(t, repo.CallCount(""))
}

func TestMethodNotAllowed(t *testing.T) {
	repo := testutil.NewMockRepository()
	for _, h := range []gateway.Handler{
		service.NewSphereService(repo),
		service.NewChecklistService(repo),
		service.NewTaskService(repo),
	} {
		resp := call(t, h, http.MethodPatch, `{}`, nil)
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.JSONEq(t, `{"error":"Method not allowed"}`, resp.Body)
	}
	assert.Empty(t, repo.Calls())
}

func TestDatabaseFailureEnvelope(t *testing.T) {
	repo := testutil.NewMockRepository().WithError(core.ErrDatabase("database operation failed").WithCause(testutil.ErrTest))
	svc := service.NewSphereService(repo)

	resp := call(t, svc, http.MethodGet, "", nil)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.JSONEq(t, `{"error":"internal error","kind":"database"}`, resp.Body)
}

func TestRequestTimeout(t *testing.T) {
	svc := service.NewTaskService(slowRepo{MockRepository: testutil.NewMockRepository()},
		service.WithRequestTimeout(10*time.Millisecond))

	resp := call(t, svc, http.MethodGet, "", nil)
	assert.Equal(t, http.StatusGatewayTimeout, resp.StatusCode)
	assert.Equal(t, "timeout", decode(t, resp)["kind"])
}

// slowRepo blocks ListTasks until the request context ends.
type slowRepo struct {
	*testutil.MockRepository
}

func (r slowRepo) ListTasks(ctx context.Context) ([]core.Task, error) {
	<-ctx.Done()
	return nil, ctx.Err()
}

func TestMetricsRecorded(t *testing.T) {
	svc := newServices(t)

	call(t, svc.spheres, http.MethodGet, "", nil)
	call(t, svc.spheres, http.MethodOptions, "", nil)
	call(t, svc.tasks, http.MethodPatch, "", nil)

	spheres, ok := svc.metrics.GetFunctionMetrics(service.FunctionSpheres)
	require.True(t, ok)
	assert.Equal(t, 2, spheres.Invocations)
	assert.Equal(t, 2, spheres.ByStatus[http.StatusOK])

	tasks, ok := svc.metrics.GetFunctionMetrics(service.FunctionTasks)
	require.True(t, ok)
	assert.Equal(t, 1, tasks.ByStatus[http.StatusMethodNotAllowed])
	assert.Zero(t, tasks.Errors)
}
