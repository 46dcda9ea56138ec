package googletasks_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"todoapp/internal/mirror"
	"todoapp/internal/mirror/googletasks"
)

// fakeAPI serves the subset of the Tasks REST API the client uses.
type fakeAPI struct {
	mu       sync.Mutex
	lists    []map[string]string
	tasks    map[string][]map[string]string
	status   int
	requests []string
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)

	if f.status != 0 {
		http.Error(w, `{"error":{"code":401,"message":"unauthorized"}}`, f.status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	path := r.URL.Path
	switch {
	case strings.HasSuffix(path, "/users/@me/lists") && r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(map[string]any{"items": f.lists})
	case strings.HasSuffix(path, "/users/@me/lists") && r.Method == http.MethodPost:
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		body["id"] = "created-list"
		f.lists = append(f.lists, body)
		json.NewEncoder(w).Encode(body)
	case strings.HasSuffix(path, "/tasks") && r.Method == http.MethodGet:
		listID := listIDFromPath(path)
		json.NewEncoder(w).Encode(map[string]any{"items": f.tasks[listID]})
	case strings.HasSuffix(path, "/tasks") && r.Method == http.MethodPost:
		listID := listIDFromPath(path)
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		f.tasks[listID] = append(f.tasks[listID], body)
		json.NewEncoder(w).Encode(body)
	default:
		http.NotFound(w, r)
	}
}

func listIDFromPath(path string) string {
	parts := strings.Split(strings.TrimSuffix(path, "/tasks"), "/")
	return parts[len(parts)-1]
}

func newClient(t *testing.T, api *fakeAPI) *googletasks.Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	c, err := googletasks.NewWithEndpoint(context.Background(), srv.Client(), srv.URL+"/")
	if err != nil {
		t.Fatalf("failed to create client: %v", err)
	}
	return c
}

func TestEnsureList_Existing(t *testing.T) {
	api := &fakeAPI{
		lists: []map[string]string{{"id": "L1", "title": "Todoapp: Alice "}},
		tasks: map[string][]map[string]string{},
	}
	c := newClient(t, api)

	id, err := c.EnsureList(context.Background(), "todoapp: alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "L1" {
		t.Errorf("expected L1, got %q", id)
	}
}

func TestEnsureList_Creates(t *testing.T) {
	api := &fakeAPI{tasks: map[string][]map[string]string{}}
	c := newClient(t, api)

	id, err := c.EnsureList(context.Background(), "todoapp: Alice")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "created-list" {
		t.Errorf("expected created-list, got %q", id)
	}
	if len(api.lists) != 1 || api.lists[0]["title"] != "todoapp: Alice" {
		t.Errorf("expected list to be created, got %v", api.lists)
	}
}

func TestEnsureList_Ambiguous(t *testing.T) {
	api := &fakeAPI{
		lists: []map[string]string{{"id": "L1", "title": "Work"}, {"id": "L2", "title": "work"}},
		tasks: map[string][]map[string]string{},
	}
	c := newClient(t, api)

	_, err := c.EnsureList(context.Background(), "Work")
	if err == nil || !strings.Contains(err.Error(), "ambiguous") {
		t.Errorf("expected ambiguous error, got %v", err)
	}
}

func TestListTitlesAndInsert(t *testing.T) {
	api := &fakeAPI{
		tasks: map[string][]map[string]string{
			"L1": {{"id": "t1", "title": "Buy milk", "status": "needsAction"}},
		},
	}
	c := newClient(t, api)
	ctx := context.Background()

	titles, err := c.ListTitles(ctx, "L1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(titles) != 1 || titles[0] != "Buy milk" {
		t.Errorf("expected [Buy milk], got %v", titles)
	}

	err = c.Insert(ctx, "L1", mirror.Task{Title: "Gym", Notes: "priority: alta", Completed: true})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := api.tasks["L1"][1]
	if got["title"] != "Gym" || got["status"] != "completed" || got["notes"] != "priority: alta" {
		t.Errorf("unexpected inserted task: %v", got)
	}
}

func TestAuthErrorIsWrapped(t *testing.T) {
	api := &fakeAPI{status: http.StatusUnauthorized}
	c := newClient(t, api)

	_, err := c.ListTitles(context.Background(), "L1")
	if err == nil || !strings.Contains(err.Error(), "run: todoapp link") {
		t.Errorf("expected auth hint, got %v", err)
	}
}
