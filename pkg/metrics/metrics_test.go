package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestNewRegistry(t *testing.T) {
	r := NewRegistry()
	if r == nil {
		t.Fatal("NewRegistry() returned nil")
	}
	if r.GraphsLoadedTotal == nil || r.WalksTotal == nil || r.HoldoutsTotal == nil || r.UptimeSeconds == nil {
		t.Error("Collectors not initialized")
	}
	if r.GetPrometheusRegistry() == nil {
		t.Error("Prometheus registry not initialized")
	}
}

func TestDefaultRegistry(t *testing.T) {
	if DefaultRegistry() != DefaultRegistry() {
		t.Error("DefaultRegistry() should return the same instance")
	}
}

func TestRecordGraphLoad(t *testing.T) {
	r := NewRegistry()

	r.RecordGraphLoad("dataset", "HomoSapiens", 19566, 11938498, 2*time.Second, nil)
	r.RecordGraphLoad("dataset", "Missing", 0, 0, time.Millisecond, errors.New("not cached"))

	if got := testutil.ToFloat64(r.GraphsLoadedTotal.WithLabelValues("dataset", StatusSuccess)); got != 1 {
		t.Errorf("Success counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.GraphsLoadedTotal.WithLabelValues("dataset", StatusError)); got != 1 {
		t.Errorf("Error counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.GraphEdges.WithLabelValues("HomoSapiens")); got != 11938498 {
		t.Errorf("Edges gauge = %v, want 11938498", got)
	}
	if got := testutil.CollectAndCount(r.GraphNodes); got != 1 {
		t.Errorf("Failed loads must not create size gauges, got %d series", got)
	}
}

func TestRecordWalks(t *testing.T) {
	r := NewRegistry()

	r.RecordWalks("complete", 100, 8000, 50*time.Millisecond)
	r.RecordWalks("complete", 100, 7900, 60*time.Millisecond)

	if got := testutil.ToFloat64(r.WalksTotal.WithLabelValues("complete")); got != 200 {
		t.Errorf("Walks = %v, want 200", got)
	}
	if got := testutil.ToFloat64(r.WalkStepsTotal.WithLabelValues("complete")); got != 15900 {
		t.Errorf("Steps = %v, want 15900", got)
	}

	var metric dto.Metric
	hist, err := r.WalkDuration.GetMetricWithLabelValues("complete")
	if err != nil {
		t.Fatalf("Failed to get metric: %v", err)
	}
	if err := hist.(interface{ Write(*dto.Metric) error }).Write(&metric); err != nil {
		t.Fatalf("Failed to write metric: %v", err)
	}
	if metric.Histogram.GetSampleCount() != 2 {
		t.Errorf("Histogram samples = %d, want 2", metric.Histogram.GetSampleCount())
	}
}

func TestTrackWalkBatch(t *testing.T) {
	r := NewRegistry()

	done := r.TrackWalkBatch()
	if got := testutil.ToFloat64(r.WalkBatchesBusy); got != 1 {
		t.Errorf("In flight = %v, want 1", got)
	}
	done()
	if got := testutil.ToFloat64(r.WalkBatchesBusy); got != 0 {
		t.Errorf("In flight = %v, want 0", got)
	}
}

func TestRecordHoldout(t *testing.T) {
	r := NewRegistry()

	r.RecordHoldout("connected", 420, time.Second, nil)
	r.RecordHoldout("connected", 0, time.Second, errors.New("tree too large"))
	r.RecordEdgeScores("adamic_adar", 420)

	if got := testutil.ToFloat64(r.HoldoutValidationEdges.WithLabelValues("connected")); got != 420 {
		t.Errorf("Validation edges = %v, want 420", got)
	}
	if got := testutil.ToFloat64(r.HoldoutsTotal.WithLabelValues("connected", StatusError)); got != 1 {
		t.Errorf("Error counter = %v, want 1", got)
	}
	if got := testutil.ToFloat64(r.EdgesScoredTotal.WithLabelValues("adamic_adar")); got != 420 {
		t.Errorf("Scored = %v, want 420", got)
	}
}

func TestUpdateSystemMetrics(t *testing.T) {
	r := NewRegistry()
	r.UpdateSystemMetrics()

	if got := testutil.ToFloat64(r.GoRoutines); got < 1 {
		t.Errorf("Goroutines = %v, want >= 1", got)
	}

	expected := `
# HELP graphwalk_walk_batches_in_flight Number of walk batches currently running
# TYPE graphwalk_walk_batches_in_flight gauge
graphwalk_walk_batches_in_flight 0
`
	if err := testutil.GatherAndCompare(r.GetPrometheusRegistry(), strings.NewReader(expected), "graphwalk_walk_batches_in_flight"); err != nil {
		t.Error(err)
	}
}

func TestHandler(t *testing.T) {
	r := NewRegistry()
	r.RecordWalks("complete", 3, 30, time.Millisecond)

	srv := httptest.NewServer(r.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET metrics: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	if !strings.Contains(string(body), `graphwalk_walks_total{mode="complete"} 3`) {
		t.Errorf("walk counter missing from exposition:\n%s", body)
	}
}
