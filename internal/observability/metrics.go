package observability

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/riskibarqy/playoff-pool/internal/domain/round"
	"github.com/riskibarqy/playoff-pool/internal/usecase"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "playoff-pool"

// Metrics records recalculation runs and HTTP traffic. A Metrics built while
// disabled only keeps the in-process tallies.
type Metrics struct {
	inst *instruments

	mu     sync.Mutex
	runs   map[round.Round]int64
	failed map[round.Round]int64
	last   map[round.Round]usecase.RecalculationResult
}

type instruments struct {
	recalcRuns      metric.Int64Counter
	recalcUpdated   metric.Int64Counter
	recalcFailures  metric.Int64Counter
	recalcLatencyMs metric.Float64Histogram
	requests        metric.Int64Counter
	requestLatency  metric.Float64Histogram
}

func newMetrics(inst *instruments) *Metrics {
	return &Metrics{
		inst:   inst,
		runs:   make(map[round.Round]int64),
		failed: make(map[round.Round]int64),
		last:   make(map[round.Round]usecase.RecalculationResult),
	}
}

// SetupMetrics wires an OpenTelemetry meter provider to a Prometheus registry and
// returns the scrape handler (nil when disabled) plus a shutdown func.
func SetupMetrics(ctx context.Context, enabled bool, serviceName string) (*Metrics, http.Handler, func(context.Context) error, error) {
	if !enabled {
		return newMetrics(nil), nil, func(context.Context) error { return nil }, nil
	}

	reg := prometheus.NewRegistry()
	exporter, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, nil, nil, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(attribute.String("service.name", serviceName)))
	if err != nil {
		return nil, nil, nil, err
	}

	provider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
		sdkmetric.WithResource(res),
	)

	inst, err := newInstruments(provider.Meter(meterName))
	if err != nil {
		_ = provider.Shutdown(ctx)
		return nil, nil, nil, err
	}

	return newMetrics(inst), promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), provider.Shutdown, nil
}

func newInstruments(meter metric.Meter) (*instruments, error) {
	recalcRuns, err := meter.Int64Counter("recalculation_runs_total")
	if err != nil {
		return nil, err
	}
	recalcUpdated, err := meter.Int64Counter("recalculation_participants_updated_total")
	if err != nil {
		return nil, err
	}
	recalcFailures, err := meter.Int64Counter("recalculation_participant_failures_total")
	if err != nil {
		return nil, err
	}
	recalcLatency, err := meter.Float64Histogram("recalculation_duration_ms")
	if err != nil {
		return nil, err
	}
	requests, err := meter.Int64Counter("http_requests_total")
	if err != nil {
		return nil, err
	}
	requestLatency, err := meter.Float64Histogram("http_request_duration_ms")
	if err != nil {
		return nil, err
	}

	return &instruments{
		recalcRuns:      recalcRuns,
		recalcUpdated:   recalcUpdated,
		recalcFailures:  recalcFailures,
		recalcLatencyMs: recalcLatency,
		requests:        requests,
		requestLatency:  requestLatency,
	}, nil
}

// RecordRecalculation satisfies usecase.RecalculationRecorder.
func (m *Metrics) RecordRecalculation(ctx context.Context, result usecase.RecalculationResult) {
	if m == nil {
		return
	}

	m.mu.Lock()
	m.runs[result.Round]++
	m.failed[result.Round] += int64(result.FailedCount)
	m.last[result.Round] = result
	m.mu.Unlock()

	if m.inst == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("round", string(result.Round)))
	m.inst.recalcRuns.Add(ctx, 1, attrs)
	m.inst.recalcUpdated.Add(ctx, int64(result.UpdatedCount), attrs)
	if result.FailedCount > 0 {
		m.inst.recalcFailures.Add(ctx, int64(result.FailedCount), attrs)
	}
	m.inst.recalcLatencyMs.Record(ctx, float64(result.DurationMs), attrs)
}

func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil || m.inst == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status", status),
	)
	m.inst.requests.Add(ctx, 1, attrs)
	m.inst.requestLatency.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecalculationRuns is the number of runs recorded for rd.
func (m *Metrics) RecalculationRuns(rd round.Round) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.runs[rd]
}

// RecalculationFailures sums participant failures recorded for rd.
func (m *Metrics) RecalculationFailures(rd round.Round) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.failed[rd]
}

func (m *Metrics) LastRecalculation(rd round.Round) (usecase.RecalculationResult, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	result, ok := m.last[rd]
	return result, ok
}
