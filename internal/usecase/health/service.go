package health

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/pdfagent/internal/logger"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates a model provider is unreachable.
	Degraded Status = "degraded"
	// Unhealthy indicates the database is unreachable.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

const defaultCheckTimeout = 5 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	db         DBPinger
	embedding  ProviderChecker
	generation ProviderChecker
	timeout    time.Duration
}

// New creates a Service. embedding and generation can be nil.
func New(db DBPinger, embedding, generation ProviderChecker) *Service {
	return &Service{db: db, embedding: embedding, generation: generation, timeout: defaultCheckTimeout}
}

// Check runs health checks against all components. A database failure makes
// the service unhealthy; a provider failure only degrades it.
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)
	status := Healthy

	if s.check(ctx, "database", s.db.Ping, checks) != nil {
		status = Unhealthy
	}
	for name, c := range map[string]ProviderChecker{"embedding": s.embedding, "generation": s.generation} {
		if c == nil {
			continue
		}
		if s.check(ctx, name, c.HealthCheck, checks) != nil && status == Healthy {
			status = Degraded
		}
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) check(ctx context.Context, name string, fn func(context.Context) error, out map[string]CheckResult) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		logger.FromContext(ctx).Warn("Health check failed", zap.String("component", name), zap.Error(err))
		out[name] = CheckError
		return err
	}
	out[name] = CheckOK
	return nil
}
