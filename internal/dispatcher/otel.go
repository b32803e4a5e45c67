package dispatcher

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const instrumentationName = "github.com/sparroh/disablefloatingtext/internal/dispatcher"

func meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// instruments are the dispatcher's OTel metrics. All of them carry a command attribute.
type instruments struct {
	queueSize metric.Int64ObservableGauge
	processed metric.Int64Counter
	dropped   metric.Int64Counter
	panics    metric.Int64Counter
	duration  metric.Float64Histogram
}

func newInstruments(m metric.Meter) (instruments, error) {
	var (
		ins instruments
		err error
	)

	ins.queueSize, err = m.Int64ObservableGauge(
		"dispatcher.queue.size",
		metric.WithDescription("Events waiting in a buffered command's queue"),
	)
	if err != nil {
		return ins, fmt.Errorf("creating queue size gauge: %w", err)
	}

	ins.processed, err = m.Int64Counter(
		"dispatcher.events.processed",
		metric.WithDescription("Events handled"),
	)
	if err != nil {
		return ins, fmt.Errorf("creating processed counter: %w", err)
	}

	ins.dropped, err = m.Int64Counter(
		"dispatcher.events.dropped",
		metric.WithDescription("Events dropped because the queue was full or closed"),
	)
	if err != nil {
		return ins, fmt.Errorf("creating dropped counter: %w", err)
	}

	ins.panics, err = m.Int64Counter(
		"dispatcher.events.panicked",
		metric.WithDescription("Handlers that panicked and were recovered"),
	)
	if err != nil {
		return ins, fmt.Errorf("creating panic counter: %w", err)
	}

	ins.duration, err = m.Float64Histogram(
		"dispatcher.event.duration",
		metric.WithDescription("Handler run time"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return ins, fmt.Errorf("creating duration histogram: %w", err)
	}

	return ins, nil
}

func commandAttr(command string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String("command", command))
}
