package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/connermo/ai4s/internal/model"
	"github.com/connermo/ai4s/internal/refresh"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeController struct {
	mu       sync.Mutex
	snap     refresh.Snapshot
	accept   bool
	requests []refresh.TargetID
}

func (f *fakeController) Snapshot() refresh.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

func (f *fakeController) RequestRefresh(id refresh.TargetID, _ refresh.Reason) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, id)
	return f.accept
}

func newTestServer(t *testing.T, ctrl *fakeController) (*Server, http.Handler) {
	t.Helper()
	srv := NewServer("", ctrl)
	return srv, srv.Handler()
}

func serve(t *testing.T, h http.Handler, method, path string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	var body map[string]interface{}
	if w.Body.Len() > 0 && strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal %s: %v", path, err)
		}
	}
	return w, body
}

func TestHealthEndpoint(t *testing.T) {
	ctrl := &fakeController{snap: refresh.Snapshot{Targets: []refresh.TargetStatus{{Target: refresh.TargetUsers}}}}
	_, h := newTestServer(t, ctrl)

	w, body := serve(t, h, http.MethodGet, "/api/health")
	if w.Code != http.StatusOK {
		t.Fatalf("health status = %d, want %d", w.Code, http.StatusOK)
	}
	if body["status"] != "ok" {
		t.Fatalf("health status = %v, want ok", body["status"])
	}

	ctrl.snap.Targets[0].ConsecutiveErrs = 2
	_, body = serve(t, h, http.MethodGet, "/api/health")
	if body["status"] != "degraded" {
		t.Fatalf("health status = %v, want degraded", body["status"])
	}
}

func TestHealthEndpoint_WrongMethod(t *testing.T) {
	_, h := newTestServer(t, &fakeController{})

	w, body := serve(t, h, http.MethodPost, "/api/health")
	if w.Code != http.StatusMethodNotAllowed && w.Code != http.StatusNotFound {
		t.Fatalf("health POST status = %d, want 405 or 404", w.Code)
	}
	if body != nil {
		t.Fatalf("health POST body = %v, want no JSON", body)
	}
}

func TestStatusEndpoint(t *testing.T) {
	ctrl := &fakeController{snap: refresh.Snapshot{
		Section: refresh.SectionContainers,
		Targets: []refresh.TargetStatus{{Target: refresh.TargetContainers, Dropped: 3}},
	}}
	srv, h := newTestServer(t, ctrl)
	srv.Observe(refresh.Result{Target: refresh.TargetContainers, Phase: refresh.PhaseFailed, Err: errors.New("HTTP 502")})

	w, body := serve(t, h, http.MethodGet, "/api/status")
	if w.Code != http.StatusOK {
		t.Fatalf("status code = %d, want 200", w.Code)
	}
	session, _ := body["session"].(map[string]interface{})
	if session["section"] != "containers" {
		t.Fatalf("section = %v, want containers", session["section"])
	}
	errs, _ := body["errors"].(map[string]interface{})
	if errs["containers"] != "HTTP 502" {
		t.Fatalf("errors = %v", errs)
	}
}

func TestSummaryEndpoint(t *testing.T) {
	srv, h := newTestServer(t, &fakeController{})

	w, _ := serve(t, h, http.MethodGet, "/api/summary")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("summary before data = %d, want 503", w.Code)
	}

	now := time.Now()
	srv.Observe(refresh.Result{Target: refresh.TargetUsers, Phase: refresh.PhaseLoading, Users: []model.User{{ID: 99}}})
	srv.Observe(refresh.Result{Target: refresh.TargetUsers, Phase: refresh.PhaseDone, At: now, Users: []model.User{
		{ID: 1, IsActive: true}, {ID: 2},
	}})
	srv.Observe(refresh.Result{Target: refresh.TargetContainers, Phase: refresh.PhaseDone, At: now, Containers: []model.Container{
		{ID: "a", Status: "running"}, {ID: "b", Status: "stopped"}, {ID: "c", Status: "stopped", ActualStatus: "running"},
	}})

	w, body := serve(t, h, http.MethodGet, "/api/summary")
	if w.Code != http.StatusOK {
		t.Fatalf("summary = %d, want 200", w.Code)
	}
	sum, _ := body["summary"].(map[string]interface{})
	if sum["total_users"] != float64(2) || sum["active_users"] != float64(1) {
		t.Fatalf("user counts = %v", sum)
	}
	if sum["running_containers"] != float64(2) || sum["total_containers"] != float64(3) {
		t.Fatalf("container counts = %v", sum)
	}
}

func TestRefreshEndpoint(t *testing.T) {
	ctrl := &fakeController{accept: true}
	_, h := newTestServer(t, ctrl)

	w, body := serve(t, h, http.MethodPost, "/api/refresh/containers")
	if w.Code != http.StatusAccepted || body["started"] != true {
		t.Fatalf("refresh = %d %v, want 202 started", w.Code, body)
	}

	ctrl.accept = false
	w, _ = serve(t, h, http.MethodPost, "/api/refresh/user-options")
	if w.Code != http.StatusConflict {
		t.Fatalf("dropped refresh = %d, want 409", w.Code)
	}

	w, _ = serve(t, h, http.MethodPost, "/api/refresh/gpus")
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown target = %d, want 404", w.Code)
	}
	if len(ctrl.requests) != 2 || ctrl.requests[1] != refresh.TargetUserOptions {
		t.Fatalf("requests = %v", ctrl.requests)
	}
}

func TestStartStop(t *testing.T) {
	srv := NewServer("127.0.0.1:0", &fakeController{})
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	resp, err := http.Get("http://" + srv.Addr() + "/api/health")
	if err != nil {
		t.Fatalf("GET health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health = %d, want 200", resp.StatusCode)
	}
	if err := srv.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	select {
	case err, ok := <-srv.Errors():
		if ok {
			t.Fatalf("serve error after Stop = %v, want closed channel", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Errors not closed after Stop")
	}
}

func TestServeFailureReported(t *testing.T) {
	srv := NewServer("127.0.0.1:0", &fakeController{})
	if err := srv.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	t.Cleanup(func() { _ = srv.Stop() })

	_ = srv.listener.Close()
	select {
	case err := <-srv.Errors():
		if err == nil {
			t.Fatal("serve error = nil, want listener failure")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("listener failure not reported")
	}
}
