package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewHTTPMetrics(reg)

	m.ObserveRequest("GET", "/api/v1/products", "200", 25*time.Millisecond)
	m.ObserveRequest("GET", "/api/v1/products", "200", 30*time.Millisecond)
	m.ObserveRequest("POST", "", "500", time.Millisecond)

	if got := testutil.CollectAndCount(reg, "http_requests_total"); got != 2 {
		t.Fatalf("expected 2 request series, got %d", got)
	}
}

func TestObserveRequest_NilSafe(t *testing.T) {
	var m *HTTPMetrics
	m.ObserveRequest("GET", "/x", "200", time.Millisecond)

	empty := NewHTTPMetrics(nil)
	empty.ObserveRequest("GET", "/x", "200", time.Millisecond)
}
