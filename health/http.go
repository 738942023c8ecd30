package health

import (
	"encoding/json"
	"net/http"
	"time"
)

// LivenessHandler returns a handler for liveness probes. It answers 200
// whenever the process is up, without running any checks.
func LivenessHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	}
}

// ReadinessHandler returns a handler for readiness probes. It runs every
// registered check and maps the overall status to a status code: healthy
// and degraded answer 200, unhealthy answers 503. A degraded connector
// (rate limited, breaker half-open) can still take traffic, so it must
// not be pulled out of rotation.
func ReadinessHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := agg.CheckAll(r.Context())
		status := agg.OverallStatus(results)

		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(statusCode(status))
		_, _ = w.Write([]byte(statusBody(status)))
	}
}

// Report is the JSON document served by ReportHandler.
type Report struct {
	Status    string                 `json:"status"`
	CheckedAt string                 `json:"checked_at"`
	Checks    map[string]CheckReport `json:"checks,omitempty"`
}

// CheckReport is one check's entry in a Report.
type CheckReport struct {
	Status   string         `json:"status"`
	Message  string         `json:"message,omitempty"`
	Duration string         `json:"duration,omitempty"`
	Details  map[string]any `json:"details,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// ReportHandler returns a handler serving the full JSON health report,
// one entry per registered check.
func ReportHandler(agg *Aggregator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		results := agg.CheckAll(r.Context())
		status := agg.OverallStatus(results)

		report := Report{
			Status:    status.String(),
			CheckedAt: time.Now().UTC().Format(time.RFC3339),
			Checks:    make(map[string]CheckReport, len(results)),
		}
		for name, result := range results {
			report.Checks[name] = checkReport(result)
		}

		writeJSON(w, statusCode(status), report)
	}
}

// CheckHandler returns a handler that runs one named check. Unknown
// names answer 404.
func CheckHandler(agg *Aggregator, name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := agg.Check(r.Context(), name)
		if err != nil {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
			return
		}

		writeJSON(w, statusCode(result.Status), checkReport(result))
	}
}

// RegisterHandlers mounts the standard probe endpoints on mux:
// /healthz (liveness), /readyz (readiness) and /health (JSON report).
func RegisterHandlers(mux *http.ServeMux, agg *Aggregator) {
	mux.HandleFunc("/healthz", LivenessHandler())
	mux.HandleFunc("/readyz", ReadinessHandler(agg))
	mux.HandleFunc("/health", ReportHandler(agg))
}

func checkReport(result Result) CheckReport {
	report := CheckReport{
		Status:   result.Status.String(),
		Message:  result.Message,
		Duration: result.Duration.String(),
		Details:  result.Details,
	}
	if result.Error != nil {
		report.Error = result.Error.Error()
	}
	return report
}

func statusCode(status Status) int {
	if status == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func statusBody(status Status) string {
	switch status {
	case StatusHealthy:
		return "OK"
	case StatusDegraded:
		return "DEGRADED"
	default:
		return "UNHEALTHY"
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
