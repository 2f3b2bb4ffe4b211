package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics(t *testing.T) {
	m := New()

	m.RPC("/mealsplit.v1.SplitService/Calculate", "ok", 5*time.Millisecond)
	m.Suggestion("guess", "ok")
	m.Suggestion("guess", "stale")
	m.CacheLookup("suggest", true)
	m.CacheLookup("suggest", false)
	m.Export("error")

	if got := testutil.ToFloat64(m.rpcRequests.WithLabelValues("/mealsplit.v1.SplitService/Calculate", "ok")); got != 1 {
		t.Errorf("rpc_requests_total = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.suggestions.WithLabelValues("guess", "stale")); got != 1 {
		t.Errorf("suggestions_total{stale} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cache.WithLabelValues("suggest", "hit")); got != 1 {
		t.Errorf("cache hits = %v, want 1", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), "mealsplit_image_exports_total") {
		t.Error("metrics output missing mealsplit_image_exports_total")
	}
}
