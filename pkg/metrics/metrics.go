// Package metrics exposes scan activity for Prometheus scraping. The
// Collector subscribes to the scan event stream and serves the standard
// /metrics endpoint from its own registry.
package metrics

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dorkscan/dorkscan/pkg/broadcast"
	"github.com/dorkscan/dorkscan/pkg/defaults"
	"github.com/dorkscan/dorkscan/pkg/events"
)

// Compile-time interface check.
var _ broadcast.Subscriber = (*Collector)(nil)

// Options configures the metrics endpoint.
type Options struct {
	// Port for the metrics server (default: 9090).
	Port int

	// Path for the metrics endpoint (default: "/metrics").
	Path string
}

// Collector turns scan events into Prometheus metrics.
type Collector struct {
	server   *http.Server
	registry *prometheus.Registry
	opts     Options

	urlsScannedTotal   *prometheus.CounterVec
	findingsTotal      *prometheus.CounterVec
	scansCompleted     prometheus.Counter
	osintExposures     prometheus.Counter
	riskScoreHistogram prometheus.Histogram

	mu     sync.Mutex
	closed bool
}

// NewCollector creates a collector and starts its metrics server. The
// server runs until Close.
func NewCollector(opts Options) (*Collector, error) {
	if opts.Port == 0 {
		opts.Port = defaults.MetricsPort
	}
	if opts.Path == "" {
		opts.Path = "/metrics"
	}

	c := &Collector{
		registry: prometheus.NewRegistry(),
		opts:     opts,
	}
	if err := c.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}
	c.startServer()
	return c, nil
}

func (c *Collector) initMetrics() error {
	c.urlsScannedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dorkscan_urls_scanned_total",
			Help: "Total number of URLs scanned, by resulting risk level",
		},
		[]string{"risk_level"},
	)

	c.findingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dorkscan_findings_total",
			Help: "Total number of sensitive-data findings, by type and detector stage",
		},
		[]string{"type", "source"},
	)

	c.scansCompleted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dorkscan_scans_completed_total",
			Help: "Total number of completed scan jobs",
		},
	)

	c.osintExposures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "dorkscan_osint_exposures_total",
			Help: "Total number of high-risk open services reported by OSINT lookups",
		},
	)

	c.riskScoreHistogram = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dorkscan_risk_score",
			Help:    "Distribution of per-URL risk scores",
			Buckets: []float64{0, 10, 20, 40, 60, 75, 90, 100},
		},
	)

	collectors := []prometheus.Collector{
		c.urlsScannedTotal,
		c.findingsTotal,
		c.scansCompleted,
		c.osintExposures,
		c.riskScoreHistogram,
	}
	for _, col := range collectors {
		if err := c.registry.Register(col); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collector) startServer() {
	mux := http.NewServeMux()
	mux.Handle(c.opts.Path, promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}))

	c.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", c.opts.Port),
		Handler:      mux,
		ReadTimeout:  defaults.ServerReadTimeout,
		WriteTimeout: defaults.ServerWriteTimeout,
	}

	go func() {
		if err := c.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("metrics: server error: %v", err)
		}
	}()
}

// Send implements broadcast.Subscriber.
func (c *Collector) Send(ev events.Event) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}

	switch e := ev.(type) {
	case events.ResultEvent:
		c.urlsScannedTotal.WithLabelValues(string(e.Result.RiskLevel)).Inc()
		c.riskScoreHistogram.Observe(float64(e.Result.RiskScore))
		for _, f := range e.Result.Findings {
			c.findingsTotal.WithLabelValues(f.Type, string(f.Source)).Inc()
		}
	case events.OSINTEvent:
		if e.Footprint != nil {
			c.osintExposures.Add(float64(len(e.Footprint.Exposures)))
		}
	case events.FinalResultsEvent:
		c.scansCompleted.Inc()
	}
	return nil
}

// Close shuts down the metrics server.
func (c *Collector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	if c.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), defaults.ServerWriteTimeout)
		defer cancel()
		return c.server.Shutdown(ctx)
	}
	return nil
}

// Addr returns the address where metrics are served.
func (c *Collector) Addr() string {
	return fmt.Sprintf("http://localhost:%d%s", c.opts.Port, c.opts.Path)
}
