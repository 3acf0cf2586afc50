// Package metrics exposes validation activity as Prometheus metrics.
//
// Metrics (namespace from the configuration, "formplan" by default):
//   - validation_calls_total{form,outcome}: finished ValidateData calls
//   - validation_call_duration_seconds{form}: ValidateData latency
//   - validation_steps_total{capability,disposition}: dispatched or skipped steps
//   - validation_field_errors_total{form}: report entries of failed calls
//   - catalog_reloads_total{result}: plan catalog reloads
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	mdwerror "github.com/msto63/formplan/foundation/core/error"
	mdwlog "github.com/msto63/formplan/foundation/core/log"
	"github.com/msto63/formplan/foundation/core/validation"
	"github.com/msto63/formplan/pkg/core/config"
)

// Outcome labels besides the lowercased error codes
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeError   = "error"
)

// Collector records validation metrics on its own registry. It implements
// validation.Observer.
type Collector struct {
	registry *prometheus.Registry

	calls       *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	steps       *prometheus.CounterVec
	fieldErrors *prometheus.CounterVec
	reloads     *prometheus.CounterVec
}

var _ validation.Observer = (*Collector)(nil)

// NewCollector creates a collector. A nil registry gets a fresh one.
func NewCollector(namespace string, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}
	if namespace == "" {
		namespace = "formplan"
	}

	c := &Collector{
		registry: registry,
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "validation",
				Name:      "calls_total",
				Help:      "Total number of finished validation calls",
			},
			[]string{"form", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "validation",
				Name:      "call_duration_seconds",
				Help:      "Duration of validation calls in seconds",
				// 10µs to ~160ms
				Buckets: prometheus.ExponentialBuckets(0.00001, 2, 15),
			},
			[]string{"form"},
		),
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "validation",
				Name:      "steps_total",
				Help:      "Plan steps by capability and whether they were dispatched",
			},
			[]string{"capability", "disposition"},
		),
		fieldErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "validation",
				Name:      "field_errors_total",
				Help:      "Report entries produced by failed validation calls",
			},
			[]string{"form"},
		),
		reloads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "catalog",
				Name:      "reloads_total",
				Help:      "Plan catalog reloads by result",
			},
			[]string{"result"},
		),
	}

	registry.MustRegister(c.calls, c.duration, c.steps, c.fieldErrors, c.reloads)
	return c
}

// FromConfig creates a collector for cfg, or nil when metrics are disabled
func FromConfig(cfg config.MetricsConfig) *Collector {
	if !cfg.Enabled {
		return nil
	}
	return NewCollector(cfg.Namespace, nil)
}

// StepFinished counts one gated step
func (c *Collector) StepFinished(_ string, method validation.CapabilityID, dispatched bool) {
	disposition := "skipped"
	if dispatched {
		disposition = "dispatched"
	}
	c.steps.WithLabelValues(string(method), disposition).Inc()
}

// CallFinished counts one ValidateData call and observes its latency
func (c *Collector) CallFinished(form string, outcome *validation.Outcome, err error, elapsed time.Duration) {
	form = formLabel(form)
	c.calls.WithLabelValues(form, OutcomeLabel(outcome, err)).Inc()
	c.duration.WithLabelValues(form).Observe(elapsed.Seconds())

	if err == nil && outcome != nil && !outcome.Ok() {
		c.fieldErrors.WithLabelValues(form).Add(float64(outcome.Report().Len()))
	}
}

// CatalogReloaded counts a plan catalog reload
func (c *Collector) CatalogReloaded(err error) {
	result := "ok"
	if err != nil {
		result = "failed"
	}
	c.reloads.WithLabelValues(result).Inc()
}

// Registry returns the underlying Prometheus registry
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns the exposition handler for the collector's registry
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
		ErrorHandling:     promhttp.ContinueOnError,
	})
}

// Serve exposes the collector on address under path until ctx is done
func (c *Collector) Serve(ctx context.Context, address, path string, logger *mdwlog.Logger) error {
	if logger == nil {
		logger = mdwlog.Discard()
	}
	mux := http.NewServeMux()
	mux.Handle(path, c.Handler())

	srv := &http.Server{
		Addr:              address,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("metrics endpoint listening", mdwlog.Fields{"address": address, "path": path})
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return mdwerror.Wrap(err, "metrics endpoint failed").
			WithCode(mdwerror.CodeServiceError).
			WithOperation("metrics.Serve").
			WithDetail("address", address)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// OutcomeLabel classifies a finished call: "ok", "invalid", or the
// lowercased error code for programmer errors
func OutcomeLabel(outcome *validation.Outcome, err error) string {
	if err != nil {
		if code := mdwerror.GetCode(err); code != mdwerror.CodeUnknown {
			return strings.ToLower(string(code))
		}
		return OutcomeError
	}
	if outcome == nil || outcome.Ok() {
		return OutcomeOK
	}
	return OutcomeInvalid
}

func formLabel(form string) string {
	if form == "" {
		return "anonymous"
	}
	return form
}
