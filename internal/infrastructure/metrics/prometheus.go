// Package metrics exposes Prometheus instruments for the API client, the job poller
// and the fake inventory API.
package metrics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels
const (
	ResultOK       = "ok"
	ResultError    = "error"
	ResultRejected = "rejected"
)

// Config holds configuration for the recorder.
type Config struct {
	// Namespace is the prefix for all metrics.
	// Default: "dashboard"
	Namespace string

	// HistogramBuckets are the buckets for request durations.
	// Default: prometheus.DefBuckets
	HistogramBuckets []float64
}

// DefaultConfig returns default configuration.
func DefaultConfig() Config {
	return Config{
		Namespace:        "dashboard",
		HistogramBuckets: prometheus.DefBuckets,
	}
}

// Recorder owns a private registry with every dashboard instrument.
// A nil *Recorder is valid and records nothing.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Recorder struct {
	mu       sync.Mutex
	config   Config
	registry *prometheus.Registry

	apiRequests      *prometheus.CounterVec
	apiDuration      *prometheus.HistogramVec
	rateLimitWait    prometheus.Histogram
	listFetches      *prometheus.CounterVec
	staleResponses   *prometheus.CounterVec
	jobPolls         *prometheus.CounterVec
	jobsCompleted    *prometheus.CounterVec
	serverRequests   *prometheus.CounterVec
	serverDuration   *prometheus.HistogramVec
	importsSubmitted *prometheus.CounterVec

	server *http.Server
}

// New creates a recorder with its own registry.
func New(config Config) *Recorder {
	if config.Namespace == "" {
		config.Namespace = "dashboard"
	}
	if len(config.HistogramBuckets) == 0 {
		config.HistogramBuckets = prometheus.DefBuckets
	}

	r := &Recorder{
		config:   config,
		registry: prometheus.NewRegistry(),
	}
	r.initMetrics()
	return r
}

func (r *Recorder) initMetrics() {
	ns := r.config.Namespace

	r.apiRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Requests sent to the inventory API.",
		},
		[]string{"endpoint", "status"},
	)
	r.apiDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "Duration of inventory API requests in seconds.",
			Buckets:   r.config.HistogramBuckets,
		},
		[]string{"endpoint"},
	)
	r.rateLimitWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "api",
			Name:      "rate_limit_wait_seconds",
			Help:      "Time spent waiting for the client rate limiter.",
			Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)
	r.listFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "listing",
			Name:      "fetches_total",
			Help:      "Page fetches issued by list controllers.",
		},
		[]string{"resource", "result"},
	)
	r.staleResponses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "listing",
			Name:      "stale_responses_total",
			Help:      "Responses discarded because a newer request was issued.",
		},
		[]string{"resource"},
	)
	r.jobPolls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "jobs",
			Name:      "polls_total",
			Help:      "Job status polls.",
		},
		[]string{"result"},
	)
	r.jobsCompleted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "jobs",
			Name:      "completed_total",
			Help:      "Jobs observed moving into a terminal status.",
		},
		[]string{"status"},
	)
	r.importsSubmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "imports",
			Name:      "submitted_total",
			Help:      "Upload attempts by kind and outcome.",
		},
		[]string{"kind", "result"},
	)
	r.serverRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "mockapi",
			Name:      "http_requests_total",
			Help:      "Requests served by the fake inventory API.",
		},
		[]string{"method", "route", "status"},
	)
	r.serverDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "mockapi",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of requests served by the fake inventory API.",
			Buckets:   r.config.HistogramBuckets,
		},
		[]string{"method", "route"},
	)

	r.registry.MustRegister(
		r.apiRequests,
		r.apiDuration,
		r.rateLimitWait,
		r.listFetches,
		r.staleResponses,
		r.jobPolls,
		r.jobsCompleted,
		r.importsSubmitted,
		r.serverRequests,
		r.serverDuration,
	)
}

// ObserveAPIRequest records one client request. Status 0 means a transport error.
func (r *Recorder) ObserveAPIRequest(endpoint string, status int, d time.Duration) {
	if r == nil {
		return
	}
	label := strconv.Itoa(status)
	if status == 0 {
		label = "error"
	}
	r.apiRequests.WithLabelValues(endpoint, label).Inc()
	r.apiDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveRateLimitWait records time blocked on the client limiter.
func (r *Recorder) ObserveRateLimitWait(d time.Duration) {
	if r == nil {
		return
	}
	r.rateLimitWait.Observe(d.Seconds())
}

// ListFetched records a settled list fetch.
func (r *Recorder) ListFetched(resource, result string) {
	if r == nil {
		return
	}
	r.listFetches.WithLabelValues(resource, result).Inc()
}

// StaleDiscarded records a response dropped by last-request-wins.
func (r *Recorder) StaleDiscarded(resource string) {
	if r == nil {
		return
	}
	r.staleResponses.WithLabelValues(resource).Inc()
}

// JobPolled records one status poll.
func (r *Recorder) JobPolled(result string) {
	if r == nil {
		return
	}
	r.jobPolls.WithLabelValues(result).Inc()
}

// JobCompleted records a terminal transition.
func (r *Recorder) JobCompleted(status string) {
	if r == nil {
		return
	}
	r.jobsCompleted.WithLabelValues(status).Inc()
}

// ImportSubmitted records an upload attempt.
func (r *Recorder) ImportSubmitted(kind, result string) {
	if r == nil {
		return
	}
	r.importsSubmitted.WithLabelValues(kind, result).Inc()
}

// ObserveServerRequest records one request handled by the fake API.
func (r *Recorder) ObserveServerRequest(method, route string, status int, d time.Duration) {
	if r == nil {
		return
	}
	r.serverRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.serverDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the Prometheus registry (for testing).
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Start serves /metrics on addr in the background. Used by long-running CLI commands.
func (r *Recorder) Start(addr string) (net.Addr, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.server != nil {
		return nil, errors.New("metrics server already running")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("starting metrics server: %w", err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	r.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srv := r.server
	go func() {
		_ = srv.Serve(ln)
	}()
	return ln.Addr(), nil
}

// Stop shuts the metrics server down.
func (r *Recorder) Stop(ctx context.Context) error {
	r.mu.Lock()
	srv := r.server
	r.server = nil
	r.mu.Unlock()

	if srv == nil {
		return nil
	}
	if err := srv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
