package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/vovakirdan/wirechat-dm/internal/core"
)

var _ core.Metrics = (*Collector)(nil)

func TestCollectorCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.SetLiveConnections(3)
	c.AdmissionRejected()
	c.MessagePersisted()
	c.MessagePersisted()
	c.MessageRouted(true)
	c.MessageRouted(false)
	c.MessageRouted(false)
	c.PersistenceFailed("presence")
	c.PresenceBroadcast(true)
	c.DeliveryDropped("user-typing")

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"live connections", testutil.ToFloat64(c.liveConnections), 3},
		{"admissions rejected", testutil.ToFloat64(c.admissionsRejected), 1},
		{"messages persisted", testutil.ToFloat64(c.messagesPersisted), 2},
		{"routed live", testutil.ToFloat64(c.messagesRouted.WithLabelValues("true")), 1},
		{"routed offline", testutil.ToFloat64(c.messagesRouted.WithLabelValues("false")), 2},
		{"presence failures", testutil.ToFloat64(c.persistenceFailed.WithLabelValues("presence")), 1},
		{"online broadcasts", testutil.ToFloat64(c.presenceBroadcasts.WithLabelValues("online")), 1},
		{"dropped typing", testutil.ToFloat64(c.deliveriesDropped.WithLabelValues("user-typing")), 1},
	}
	for _, tc := range checks {
		if tc.got != tc.want {
			t.Errorf("%s = %v, want %v", tc.name, tc.got, tc.want)
		}
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.SessionSuperseded()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "wirechat_sessions_superseded_total 1") {
		t.Fatalf("metrics output missing superseded counter:\n%s", body)
	}
}
