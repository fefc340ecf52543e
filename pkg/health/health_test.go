package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestNewChecker(t *testing.T) {
	c := NewChecker()
	resp := c.Check()
	if resp.Status != StatusHealthy {
		t.Errorf("empty checker status = %s, want healthy", resp.Status)
	}
	if len(resp.Checks) != 0 {
		t.Errorf("empty checker ran %d checks", len(resp.Checks))
	}
}

func TestRegisterReadinessCheck(t *testing.T) {
	c := NewChecker()
	called := false
	c.RegisterReadinessCheck("ready", func() Check {
		called = true
		return Check{Status: StatusHealthy}
	})

	c.Check()
	if called {
		t.Error("readiness check ran for Check()")
	}
	resp := c.CheckReadiness()
	if !called {
		t.Error("readiness check was not called")
	}
	if got := resp.Checks["ready"].Name; got != "ready" {
		t.Errorf("check name = %q, want ready", got)
	}
}

func TestWorstStatusWins(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one degraded", []Status{StatusHealthy, StatusDegraded}, StatusDegraded},
		{"unhealthy beats degraded", []Status{StatusDegraded, StatusUnhealthy, StatusHealthy}, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewChecker()
			for i, s := range tt.statuses {
				c.RegisterCheck(string(rune('a'+i)), func() Check { return Check{Status: s} })
			}
			if got := c.Check().Status; got != tt.want {
				t.Errorf("status = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestCacheCheck(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		root string
		want Status
	}{
		{"directory", dir, StatusHealthy},
		{"missing", filepath.Join(dir, "missing"), StatusDegraded},
		{"file", file, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			check := CacheCheck(tt.root)()
			if check.Status != tt.want {
				t.Errorf("status = %s (%s), want %s", check.Status, check.Message, tt.want)
			}
			if check.Details["path"] != tt.root {
				t.Errorf("path detail = %v, want %s", check.Details["path"], tt.root)
			}
		})
	}
}

func TestMemoryCheck(t *testing.T) {
	usage := func() (uint64, uint64) { return 800, 1000 }

	if got := memoryCheck(0, usage)().Status; got != StatusHealthy {
		t.Errorf("no limit: status = %s, want healthy", got)
	}
	if got := memoryCheck(1000, usage)().Status; got != StatusHealthy {
		t.Errorf("under limit: status = %s, want healthy", got)
	}
	check := memoryCheck(500, usage)()
	if check.Status != StatusDegraded {
		t.Errorf("over limit: status = %s, want degraded", check.Status)
	}
	if check.Details["heap_bytes"] != uint64(800) {
		t.Errorf("heap_bytes = %v, want 800", check.Details["heap_bytes"])
	}

	if got := MemoryCheck(0)().Status; got != StatusHealthy {
		t.Errorf("runtime check status = %s, want healthy", got)
	}
}

func TestStage(t *testing.T) {
	s := NewStage("loading")
	if got := s.Check().Status; got != StatusUnhealthy {
		t.Errorf("before load: status = %s, want unhealthy", got)
	}

	s.Loaded("ButyricimonasSynergistica")
	s.Set("walks")
	check := s.Check()
	if check.Status != StatusHealthy {
		t.Errorf("after load: status = %s, want healthy", check.Status)
	}
	if check.Details["stage"] != "walks" || check.Details["graph"] != "ButyricimonasSynergistica" {
		t.Errorf("details = %v", check.Details)
	}
}

func TestHandlers(t *testing.T) {
	c := NewChecker()
	stage := NewStage("loading")
	c.RegisterCheck("memory", MemoryCheck(0))
	c.RegisterReadinessCheck("graph", stage.Check)

	mux := http.NewServeMux()
	c.Register(mux)
	srv := httptest.NewServer(mux)
	defer srv.Close()

	get := func(path string) (int, Response) {
		t.Helper()
		res, err := http.Get(srv.URL + path)
		if err != nil {
			t.Fatal(err)
		}
		defer res.Body.Close()
		if ct := res.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("%s content type = %q", path, ct)
		}
		var resp Response
		if err := json.NewDecoder(res.Body).Decode(&resp); err != nil {
			t.Fatal(err)
		}
		return res.StatusCode, resp
	}

	if code, resp := get("/healthz"); code != http.StatusOK || resp.Status != StatusHealthy {
		t.Errorf("/healthz = %d %s, want 200 healthy", code, resp.Status)
	}
	if code, _ := get("/readyz"); code != http.StatusServiceUnavailable {
		t.Errorf("/readyz before load = %d, want 503", code)
	}
	stage.Loaded("toy")
	code, resp := get("/readyz")
	if code != http.StatusOK {
		t.Errorf("/readyz after load = %d, want 200", code)
	}
	if resp.Checks["graph"].Details["graph"] != "toy" {
		t.Errorf("graph detail = %v, want toy", resp.Checks["graph"].Details["graph"])
	}
}

func TestHTTPHandler_Unhealthy(t *testing.T) {
	c := NewChecker()
	c.RegisterCheck("cache", func() Check { return Check{Status: StatusUnhealthy, Message: "broken"} })

	rec := httptest.NewRecorder()
	c.HTTPHandler()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("code = %d, want 503", rec.Code)
	}
}

func TestResponseJSON(t *testing.T) {
	c := NewChecker()
	c.RegisterCheck("cache", func() Check { return Check{Status: StatusDegraded, Message: "missing"} })

	data, err := json.Marshal(c.Check())
	if err != nil {
		t.Fatal(err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"status", "timestamp", "checks", "uptime_seconds"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("response lacks %q: %s", key, data)
		}
	}
	check := raw["checks"].(map[string]any)["cache"].(map[string]any)
	if check["status"] != "degraded" || check["message"] != "missing" || check["name"] != "cache" {
		t.Errorf("cache check = %v", check)
	}
}
