// Package otel owns the OpenTelemetry log and meter providers for the extension.
package otel

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Config selects the exporters. With Enabled set, at least one of LogWriter or
// Endpoint is required.
type Config struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	// LogWriter receives pretty-printed log records and, with MetricInterval, metrics.
	LogWriter io.Writer
	Endpoint  string // OTLP/HTTP log collector, host:port
	Insecure  bool
	// MetricInterval is how often metrics are exported to LogWriter. Zero disables export.
	MetricInterval time.Duration
}

// Provider holds the SDK providers. A nil or disabled Provider is a valid no-op.
type Provider struct {
	logProvider   *sdklog.LoggerProvider
	meterProvider *sdkmetric.MeterProvider
	enabled       bool
}

// New builds the providers. The meter provider is installed globally so the
// dispatcher and sweep instruments start recording.
func New(cfg Config) (*Provider, error) {
	p := &Provider{enabled: cfg.Enabled}
	if !cfg.Enabled {
		return p, nil
	}

	ctx := context.Background()
	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)))
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	processors, err := logProcessors(ctx, cfg)
	if err != nil {
		return nil, err
	}
	if len(processors) == 0 {
		return nil, fmt.Errorf("OTel enabled but no log writer or endpoint configured")
	}

	logOpts := []sdklog.LoggerProviderOption{sdklog.WithResource(res)}
	for _, proc := range processors {
		logOpts = append(logOpts, sdklog.WithProcessor(proc))
	}
	p.logProvider = sdklog.NewLoggerProvider(logOpts...)

	p.meterProvider, err = meterProvider(res, cfg)
	if err != nil {
		return nil, err
	}
	otel.SetMeterProvider(p.meterProvider)

	return p, nil
}

func logProcessors(ctx context.Context, cfg Config) ([]sdklog.Processor, error) {
	var out []sdklog.Processor
	batch := sdklog.WithExportTimeout(cfg.BatchTimeout)

	if cfg.LogWriter != nil {
		exp, err := stdoutlog.New(stdoutlog.WithWriter(cfg.LogWriter), stdoutlog.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create file log exporter: %w", err)
		}
		out = append(out, sdklog.NewBatchProcessor(exp, batch))
	}

	if cfg.Endpoint != "" {
		opts := []otlploghttp.Option{otlploghttp.WithEndpoint(cfg.Endpoint)}
		if cfg.Insecure {
			opts = append(opts, otlploghttp.WithInsecure())
		}
		exp, err := otlploghttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("failed to create OTLP log exporter: %w", err)
		}
		out = append(out, sdklog.NewBatchProcessor(exp, batch))
	}

	return out, nil
}

func meterProvider(res *resource.Resource, cfg Config) (*sdkmetric.MeterProvider, error) {
	opts := []sdkmetric.Option{sdkmetric.WithResource(res)}
	if cfg.LogWriter != nil && cfg.MetricInterval > 0 {
		exp, err := stdoutmetric.New(stdoutmetric.WithWriter(cfg.LogWriter))
		if err != nil {
			return nil, fmt.Errorf("failed to create file metric exporter: %w", err)
		}
		opts = append(opts, sdkmetric.WithReader(
			sdkmetric.NewPeriodicReader(exp, sdkmetric.WithInterval(cfg.MetricInterval)),
		))
	}
	return sdkmetric.NewMeterProvider(opts...), nil
}

// LoggerProvider is the otelslog bridge target, nil when disabled.
func (p *Provider) LoggerProvider() *sdklog.LoggerProvider {
	if p == nil {
		return nil
	}
	return p.logProvider
}

// Meter returns a named meter, or a no-op meter when disabled.
func (p *Provider) Meter(name string) metric.Meter {
	if p == nil || p.meterProvider == nil {
		return noop.Meter{}
	}
	return p.meterProvider.Meter(name)
}

// Flush exports pending logs and metrics.
func (p *Provider) Flush(ctx context.Context) error {
	return p.each(
		func(lp *sdklog.LoggerProvider) error { return wrap("log flush", lp.ForceFlush(ctx)) },
		func(mp *sdkmetric.MeterProvider) error { return wrap("metric flush", mp.ForceFlush(ctx)) },
	)
}

// Shutdown flushes and stops both providers. Call once, when the host unloads us.
func (p *Provider) Shutdown(ctx context.Context) error {
	return p.each(
		func(lp *sdklog.LoggerProvider) error { return wrap("log shutdown", lp.Shutdown(ctx)) },
		func(mp *sdkmetric.MeterProvider) error { return wrap("metric shutdown", mp.Shutdown(ctx)) },
	)
}

func (p *Provider) each(logFn func(*sdklog.LoggerProvider) error, meterFn func(*sdkmetric.MeterProvider) error) error {
	if !p.Enabled() {
		return nil
	}
	var errs []error
	if p.logProvider != nil {
		errs = append(errs, logFn(p.logProvider))
	}
	if p.meterProvider != nil {
		errs = append(errs, meterFn(p.meterProvider))
	}
	return errors.Join(errs...)
}

func wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s failed: %w", op, err)
}

// Enabled reports whether exporters are configured.
func (p *Provider) Enabled() bool {
	return p != nil && p.enabled
}
