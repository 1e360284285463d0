package metrics

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelExporter provides OpenTelemetry metrics export following OTel standards.
// It also observes webhook requests and outbound sends.
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	registry      *promclient.Registry
	collector     Collector
	logger        zerolog.Logger

	// OTel meters and instruments
	meter              metric.Meter
	successRateGauge   metric.Float64ObservableGauge
	avgProcessingGauge metric.Float64ObservableGauge
	totalGauge         metric.Int64ObservableGauge
	queueLengthGauge   metric.Int64ObservableGauge
	activeWorkersGauge metric.Int64ObservableGauge
	webhookRequests    metric.Int64Counter
	webhookDuration    metric.Float64Histogram
	sendRequests       metric.Int64Counter
}

// NewOTelExporter creates a new OpenTelemetry metrics exporter with Prometheus format
func NewOTelExporter(collector Collector, logger zerolog.Logger) (*OTelExporter, error) {
	registry := promclient.NewRegistry()
	exporter, err := prometheus.New(prometheus.WithRegisterer(registry))
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	meter := meterProvider.Meter(
		"automation-connect",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		registry:      registry,
		collector:     collector,
		logger:        logger.With().Str("component", "metrics").Logger(),
		meter:         meter,
	}

	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

// registerInstruments creates and registers all OpenTelemetry metric instruments
func (oe *OTelExporter) registerInstruments() error {
	var err error

	oe.successRateGauge, err = oe.meter.Float64ObservableGauge(
		"automation.webhook.success_rate",
		metric.WithDescription("Percentage of successful webhooks per service"),
		metric.WithUnit("%"),
	)
	if err != nil {
		return fmt.Errorf("creating success rate gauge: %w", err)
	}

	oe.avgProcessingGauge, err = oe.meter.Float64ObservableGauge(
		"automation.webhook.processing_time.avg",
		metric.WithDescription("Average webhook processing time per service"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return fmt.Errorf("creating processing time gauge: %w", err)
	}

	oe.totalGauge, err = oe.meter.Int64ObservableGauge(
		"automation.webhook.total",
		metric.WithDescription("Number of stored webhook log entries per service"),
		metric.WithUnit("{webhooks}"),
	)
	if err != nil {
		return fmt.Errorf("creating total gauge: %w", err)
	}

	oe.queueLengthGauge, err = oe.meter.Int64ObservableGauge(
		"automation.queue.length",
		metric.WithDescription("Number of pending send jobs"),
		metric.WithUnit("{jobs}"),
		metric.WithInt64Callback(oe.observeQueueLength),
	)
	if err != nil {
		return fmt.Errorf("creating queue length gauge: %w", err)
	}

	oe.activeWorkersGauge, err = oe.meter.Int64ObservableGauge(
		"automation.workers.active",
		metric.WithDescription("Number of queue workers with a live heartbeat"),
		metric.WithUnit("{workers}"),
		metric.WithInt64Callback(oe.observeActiveWorkers),
	)
	if err != nil {
		return fmt.Errorf("creating active workers gauge: %w", err)
	}

	// one callback feeds the three per-service gauges from a single stats read
	if _, err := oe.meter.RegisterCallback(oe.observeServices, oe.successRateGauge, oe.avgProcessingGauge, oe.totalGauge); err != nil {
		return fmt.Errorf("registering service callback: %w", err)
	}

	oe.webhookRequests, err = oe.meter.Int64Counter(
		"automation.webhook.requests",
		metric.WithDescription("Inbound webhook requests by service and status code"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return fmt.Errorf("creating webhook requests counter: %w", err)
	}

	oe.webhookDuration, err = oe.meter.Float64Histogram(
		"automation.webhook.duration",
		metric.WithDescription("Inbound webhook pipeline duration"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return fmt.Errorf("creating webhook duration histogram: %w", err)
	}

	oe.sendRequests, err = oe.meter.Int64Counter(
		"automation.send.requests",
		metric.WithDescription("Outbound sends by driver and outcome"),
		metric.WithUnit("{requests}"),
	)
	if err != nil {
		return fmt.Errorf("creating send requests counter: %w", err)
	}

	return nil
}

func (oe *OTelExporter) observeServices(ctx context.Context, observer metric.Observer) error {
	services, err := oe.collector.GetServiceStats(ctx)
	if err != nil {
		return err
	}

	for service, st := range services {
		attrs := metric.WithAttributes(attribute.String("service", service))
		observer.ObserveFloat64(oe.successRateGauge, st.SuccessRate, attrs)
		observer.ObserveFloat64(oe.avgProcessingGauge, st.AverageProcessingTime, attrs)
		observer.ObserveInt64(oe.totalGauge, st.Total, attrs)
	}

	return nil
}

func (oe *OTelExporter) observeQueueLength(ctx context.Context, observer metric.Int64Observer) error {
	length, err := oe.collector.GetQueueLength(ctx)
	if err != nil {
		return err
	}
	observer.Observe(length)
	return nil
}

func (oe *OTelExporter) observeActiveWorkers(ctx context.Context, observer metric.Int64Observer) error {
	workers, err := oe.collector.GetActiveWorkers(ctx)
	if err != nil {
		return err
	}
	observer.Observe(int64(len(workers)))
	return nil
}

// ObserveWebhook records one processed inbound request
func (oe *OTelExporter) ObserveWebhook(ctx context.Context, service string, statusCode int, elapsed time.Duration) {
	oe.webhookRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("status_code", strconv.Itoa(statusCode)),
	))
	oe.webhookDuration.Record(ctx, float64(elapsed)/float64(time.Millisecond), metric.WithAttributes(
		attribute.String("service", service),
	))
}

// ObserveSend records one outbound send outcome
func (oe *OTelExporter) ObserveSend(ctx context.Context, driver, outcome string) {
	oe.sendRequests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("driver", driver),
		attribute.String("outcome", outcome),
	))
}

// ServeHTTP serves Prometheus-formatted metrics on the given HTTP handler
func (oe *OTelExporter) ServeHTTP() http.Handler {
	return promhttp.HandlerFor(oe.registry, promhttp.HandlerOpts{
		ErrorLog: promErrorLog{oe.logger},
	})
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}

type promErrorLog struct {
	logger zerolog.Logger
}

func (l promErrorLog) Println(v ...interface{}) {
	l.logger.Error().Msg(fmt.Sprint(v...))
}
