// Package changeservice coordinates triage, curation, persistence, report
// archiving and change notifications.
package changeservice

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/starford/changedesk/internal/apperr"
	"github.com/starford/changedesk/internal/metrics"
	"github.com/starford/changedesk/internal/narrative"
	"github.com/starford/changedesk/internal/portfolio"
	"github.com/starford/changedesk/internal/reports"
	"github.com/starford/changedesk/internal/store"
	"github.com/starford/changedesk/internal/triage"
)

// Publisher receives change notifications after successful writes.
type Publisher interface {
	PublishChange(eventType string, data any)
}

// Service is the application layer shared by the REST API, the MCP server
// and the CLI. It holds no per-session state.
type Service struct {
	store         store.ChangeStore
	archive       *reports.Archive
	drafter       *narrative.Drafter
	events        Publisher
	metrics       *metrics.Metrics
	model         triage.Model
	policy        portfolio.Policy
	cohortWeights map[string]float64
	logger        *slog.Logger
	now           func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithArchive enables report archiving for narratives.
func WithArchive(a *reports.Archive) Option { return func(s *Service) { s.archive = a } }

// WithDrafter sets the narrative drafter.
func WithDrafter(d *narrative.Drafter) Option { return func(s *Service) { s.drafter = d } }

// WithPublisher sets the change notification sink.
func WithPublisher(p Publisher) Option { return func(s *Service) { s.events = p } }

// WithMetrics sets the metrics collectors.
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithScoringModel overrides the triage weight tables.
func WithScoringModel(m triage.Model) Option { return func(s *Service) { s.model = m } }

// WithPolicy overrides the portfolio policy.
func WithPolicy(p portfolio.Policy) Option { return func(s *Service) { s.policy = p } }

// WithCohortWeights overrides the cohort execution weights.
func WithCohortWeights(w map[string]float64) Option {
	return func(s *Service) { s.cohortWeights = w }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(s *Service) { s.logger = l } }

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option { return func(s *Service) { s.now = now } }

// New creates a Service over st.
func New(st store.ChangeStore, opts ...Option) *Service {
	s := &Service{
		store:         st,
		model:         triage.DefaultModel(),
		policy:        portfolio.DefaultPolicy(),
		cohortWeights: portfolio.DefaultCohortWeights(),
		logger:        slog.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.drafter == nil {
		s.drafter = narrative.NewDrafter(nil, "", s.logger)
	}
	return s
}

// ScoringModel returns the active triage model.
func (s *Service) ScoringModel() triage.Model { return s.model }

// Policy returns the active portfolio policy.
func (s *Service) Policy() portfolio.Policy { return s.policy }

func (s *Service) publish(eventType string, data any) {
	if s.events != nil {
		s.events.PublishChange(eventType, data)
	}
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", apperr.ErrInvalid, fmt.Sprintf(format, args...))
}

func invalidErr(err error) error {
	return fmt.Errorf("%w: %v", apperr.ErrInvalid, err)
}

func oneOf(v string, allowed []string) bool {
	for _, a := range allowed {
		if v == a {
			return true
		}
	}
	return false
}
