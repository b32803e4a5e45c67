package sweep

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// InstrumentationName scopes the sweep instruments.
const InstrumentationName = "github.com/sparroh/disablefloatingtext/internal/sweep"

func meter() metric.Meter {
	return otel.Meter(InstrumentationName)
}
