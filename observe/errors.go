package observe

import "errors"

// Errors returned by Config.Validate. Validate wraps these with the
// offending value, so match with errors.Is.
var (
	ErrMissingServiceName     = errors.New("observe: service name is required")
	ErrInvalidSamplePct       = errors.New("observe: sample percentage must be between 0.0 and 1.0")
	ErrInvalidTracingExporter = errors.New("observe: invalid tracing exporter")
	ErrInvalidMetricsExporter = errors.New("observe: invalid metrics exporter")
	ErrInvalidLogLevel        = errors.New("observe: invalid log level")
)

// Errors returned when building instrumentation.
var (
	// ErrNilObserver is returned when an Observer argument is nil.
	ErrNilObserver = errors.New("observe: observer is nil")

	// ErrMissingConnector is returned when a connector name is empty.
	ErrMissingConnector = errors.New("observe: connector name is required")
)

// Bounds for TracingConfig.SamplePct.
const (
	MinSamplePct = 0.0
	MaxSamplePct = 1.0
)

// ValidTracingExporters lists the accepted TracingConfig.Exporter values.
// Empty means disabled.
var ValidTracingExporters = []string{"otlp", "stdout", "none", ""}

// ValidMetricsExporters lists the accepted MetricsConfig.Exporter values.
var ValidMetricsExporters = []string{"otlp", "prometheus", "stdout", "none", ""}

// ValidLogLevels lists the accepted LoggingConfig.Level values.
var ValidLogLevels = []string{"debug", "info", "warn", "error", ""}

// RedactedFields lists log field keys whose values are replaced before
// emission. Connector calls routinely log request metadata; these keys
// may carry credentials or raw payloads.
var RedactedFields = []string{
	"body",
	"payload",
	"password",
	"secret",
	"token",
	"api_key",
	"apiKey",
	"credential",
	"authorization",
}
