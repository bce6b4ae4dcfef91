package daemon

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// Metrics tracks daemon counters and serves them in the Prometheus text
// exposition format on /metrics.
type Metrics struct {
	store *Store

	mu           sync.Mutex
	processed    float64
	failed       float64
	lastDuration float64
}

// NewMetrics creates a Metrics handler reading the tracked-jobs gauge from st.
func NewMetrics(st *Store) *Metrics {
	return &Metrics{store: st}
}

// Observe records the outcome of one job run.
func (m *Metrics) Observe(ok bool, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.processed++
	if !ok {
		m.failed++
	}
	m.lastDuration = d.Seconds()
}

// ServeHTTP encodes the current metric families as Prometheus text.
func (m *Metrics) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	m.mu.Lock()
	families := []*dto.MetricFamily{
		counter("frion_jobs_processed_total", "Total spool jobs processed.", m.processed),
		counter("frion_jobs_failed_total", "Total spool jobs that failed.", m.failed),
		gauge("frion_last_job_duration_seconds", "Wall time of the most recent job.", m.lastDuration),
		gauge("frion_jobs_tracked", "Job results currently held in memory.", float64(m.store.Count())),
	}
	m.mu.Unlock()

	format := expfmt.NewFormat(expfmt.TypeTextPlain)
	w.Header().Set("Content-Type", string(format))
	enc := expfmt.NewEncoder(w, format)
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			slog.Error("daemon: encode metrics", "err", err)
			return
		}
	}
}

func counter(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(name),
		Help:   proto.String(help),
		Type:   dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{{Counter: &dto.Counter{Value: proto.Float64(v)}}},
	}
}

func gauge(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(name),
		Help:   proto.String(help),
		Type:   dto.MetricType_GAUGE.Enum(),
		Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(v)}}},
	}
}
