package services

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/socdash/socdash/internal/metrics"
	"github.com/socdash/socdash/internal/sqlguard"
	"github.com/socdash/socdash/internal/store"
	"github.com/socdash/socdash/internal/utils"
)

// QueryService drafts SQL from analyst requests and runs validated statements
type QueryService struct {
	store    store.EventStore
	pipeline *sqlguard.Pipeline
	metrics  *metrics.Metrics
}

// NewQueryService creates a query service
func NewQueryService(s store.EventStore, pipeline *sqlguard.Pipeline, m *metrics.Metrics) *QueryService {
	return &QueryService{store: s, pipeline: pipeline, metrics: m}
}

// Generate runs the guarded pipeline for one analyst request
func (s *QueryService) Generate(ctx context.Context, request string) (*sqlguard.Candidate, error) {
	c, err := s.pipeline.GenerateAndValidate(ctx, request)
	switch {
	case err != nil:
		s.metrics.ObserveCandidate(metrics.OutcomeError)
		return nil, err
	case c.OK():
		s.metrics.ObserveCandidate(metrics.OutcomeAccepted)
	default:
		s.metrics.ObserveCandidate(metrics.OutcomeRejected)
		log.Printf("SQL candidate rejected (%s) for request %q", c.Rejection.Reason, utils.LogSnippet(request))
	}
	return c, nil
}

// Execute runs a validated statement and returns its rows in store order
func (s *QueryService) Execute(ctx context.Context, stmt sqlguard.Accepted) ([]store.Row, error) {
	start := time.Now()
	rows, err := s.store.Query(ctx, stmt)
	if err != nil {
		s.metrics.ObserveQuery(metrics.OutcomeError, time.Since(start))
		var execErr *store.ExecutionError
		if !errors.As(err, &execErr) {
			err = &store.ExecutionError{Message: err.Error(), Err: err}
		}
		return nil, err
	}
	s.metrics.ObserveQuery(metrics.OutcomeOK, time.Since(start))
	return rows, nil
}

// ValidateAndExecute checks analyst-typed SQL against the policy and runs it.
// Policy failures are *sqlguard.Rejection; store failures *store.ExecutionError.
func (s *QueryService) ValidateAndExecute(ctx context.Context, sql string) ([]store.Row, error) {
	stmt, err := sqlguard.Validate(sql)
	if err != nil {
		log.Printf("Raw query rejected (%v): %s", err, utils.LogSnippet(sql))
		return nil, err
	}
	return s.Execute(ctx, stmt)
}
