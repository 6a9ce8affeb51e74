package monitoring

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ProbeStatus encodes the outcome of a health probe.
type ProbeStatus string

const (
	StatusUp       ProbeStatus = "up"
	StatusDown     ProbeStatus = "down"
	StatusDegraded ProbeStatus = "degraded"
)

const defaultProbeTimeout = 2 * time.Second

// ProbeResult captures a single dependency check outcome.
type ProbeResult struct {
	Component string        `json:"component"`
	Status    ProbeStatus   `json:"status"`
	Details   string        `json:"details,omitempty"`
	Duration  time.Duration `json:"duration"`
}

// HealthReport aggregates probe results for a readiness evaluation.
type HealthReport struct {
	Status ProbeStatus   `json:"status"`
	Checks []ProbeResult `json:"checks"`
}

// Healthy reports whether every probe came back up.
func (r HealthReport) Healthy() bool {
	return r.Status == StatusUp
}

// Probe checks one dependency. Returning nil means the dependency is up.
type Probe struct {
	Name    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

// Evaluate runs every probe sequentially. A probe that times out marks the
// report degraded; any other failure marks it down.
func Evaluate(ctx context.Context, probes ...Probe) HealthReport {
	if ctx == nil {
		ctx = context.Background()
	}

	report := HealthReport{Status: StatusUp, Checks: make([]ProbeResult, 0, len(probes))}
	for _, probe := range probes {
		if probe.Name == "" || probe.Run == nil {
			continue
		}
		result := runProbe(ctx, probe)
		report.Checks = append(report.Checks, result)

		switch result.Status {
		case StatusDown:
			report.Status = StatusDown
		case StatusDegraded:
			if report.Status != StatusDown {
				report.Status = StatusDegraded
			}
		}
	}
	return report
}

func runProbe(ctx context.Context, probe Probe) (result ProbeResult) {
	start := time.Now()
	timeout := probe.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if rec := recover(); rec != nil {
			result = ResultFromError(probe.Name, fmt.Errorf("panic: %v", rec), time.Since(start))
		}
	}()

	return ResultFromError(probe.Name, probe.Run(probeCtx), time.Since(start))
}

// ResultFromError converts an error into a ProbeResult.
func ResultFromError(component string, err error, duration time.Duration) ProbeResult {
	if duration < 0 {
		duration = 0
	}
	if err == nil {
		return ProbeResult{Component: component, Status: StatusUp, Duration: duration}
	}

	status := StatusDown
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		status = StatusDegraded
	}

	return ProbeResult{
		Component: component,
		Status:    status,
		Details:   err.Error(),
		Duration:  duration,
	}
}
