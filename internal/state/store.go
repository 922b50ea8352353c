package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"fjacquet/pnl-forecast/internal/logging"
	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/overlap"
	"fjacquet/pnl-forecast/internal/planerror"
	"fjacquet/pnl-forecast/internal/projection"
	"fjacquet/pnl-forecast/internal/validation"
)

// Store holds the current plan and serializes every change to it.
type Store struct {
	mu     sync.Mutex
	plan   models.Plan
	engine *projection.Engine
	logger logging.Logger

	now          func() time.Time
	guardOverlap bool
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now for LastUpdated stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithOverlapGuard makes AddForecast and AddScenario reject records that
// overlap an active record on a shared account.
func WithOverlapGuard(enabled bool) Option {
	return func(s *Store) { s.guardOverlap = enabled }
}

// NewStore wraps a copy of plan. logger may be nil.
func NewStore(plan models.Plan, logger logging.Logger, opts ...Option) *Store {
	logger = logging.OrDiscard(logger)
	s := &Store{
		plan:   plan.Clone(),
		engine: projection.NewEngine(logger),
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Snapshot returns a copy of the current plan.
func (s *Store) Snapshot() models.Plan {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan.Clone()
}

// Data returns a copy of the current data tree.
func (s *Store) Data() models.FinancialData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.plan.Data.Clone()
}

// Dispatch applies action and commits the result.
func (s *Store) Dispatch(action Action) (models.FinancialData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := reduce(s.plan.Data, action, s.now(), s.engine)
	if err != nil {
		s.logger.WithError(err).Warn("Action rejected", logging.F(logging.FieldOperation, fmt.Sprintf("%T", action)))
		return s.plan.Data.Clone(), err
	}
	s.plan.Data = next
	s.logger.Debug("Action applied", logging.F(logging.FieldOperation, fmt.Sprintf("%T", action)))
	return next.Clone(), nil
}

// AddForecast validates and stores a forecast record. A blank id is generated
// and a blank status defaults to active. The overlap check result is always
// returned; it only fails the call when the overlap guard is on.
func (s *Store) AddForecast(record models.ForecastRecord) (models.ForecastRecord, overlap.Result[models.ForecastRecord], error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Status == "" {
		record.Status = models.StatusActive
	}
	if err := validation.ValidateForecast(record); err != nil {
		return record, overlap.Result[models.ForecastRecord]{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := findForecast(s.plan.Forecasts, record.ID); ok {
		return record, overlap.Result[models.ForecastRecord]{}, &planerror.ValidationError{Subject: "forecast " + record.ID, Reason: "id already in use"}
	}
	res, err := overlap.CheckDateOverlap(s.plan.Forecasts, record.AccountIDs, record.StartDate, record.EndDate, record.ID)
	if err != nil {
		return record, res, err
	}
	if res.HasOverlap && record.IsActive() {
		s.logger.Warn("Forecast overlaps an active forecast",
			logging.F(logging.FieldRecordID, record.ID),
			logging.F(logging.FieldOverlapping, len(res.OverlappingItems)),
			logging.F(logging.FieldAccountIDs, res.OverlappingAccountIDs))
		if s.guardOverlap {
			return record, res, &planerror.ValidationError{Subject: "forecast " + record.ID, Reason: "overlaps an active forecast on the same accounts"}
		}
	}
	s.plan.Forecasts = append(s.plan.Forecasts, record)
	return record, res, nil
}

// AddScenario is AddForecast for scenarios.
func (s *Store) AddScenario(scenario models.ScenarioConfig) (models.ScenarioConfig, overlap.Result[models.ScenarioConfig], error) {
	if scenario.ID == "" {
		scenario.ID = uuid.NewString()
	}
	if scenario.Status == "" {
		scenario.Status = models.StatusActive
	}
	if err := validation.ValidateScenario(scenario); err != nil {
		return scenario, overlap.Result[models.ScenarioConfig]{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := findScenario(s.plan.Scenarios, scenario.ID); ok {
		return scenario, overlap.Result[models.ScenarioConfig]{}, &planerror.ValidationError{Subject: "scenario " + scenario.ID, Reason: "id already in use"}
	}
	res, err := overlap.CheckScenarioOverlap(s.plan.Scenarios, scenario.AccountIDs, scenario.StartDate, scenario.EndDate, scenario.ID)
	if err != nil {
		return scenario, res, err
	}
	if res.HasOverlap && scenario.IsActive() {
		s.logger.Warn("Scenario overlaps an active scenario",
			logging.F(logging.FieldRecordID, scenario.ID),
			logging.F(logging.FieldOverlapping, len(res.OverlappingItems)),
			logging.F(logging.FieldAccountIDs, res.OverlappingAccountIDs))
		if s.guardOverlap {
			return scenario, res, &planerror.ValidationError{Subject: "scenario " + scenario.ID, Reason: "overlaps an active scenario on the same accounts"}
		}
	}
	s.plan.Scenarios = append(s.plan.Scenarios, scenario)
	return scenario, res, nil
}

// DeleteForecast removes a forecast record. Values it already projected stay.
func (s *Store) DeleteForecast(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := findForecast(s.plan.Forecasts, id)
	if !ok {
		return &planerror.NotFoundError{Kind: "forecast", ID: id}
	}
	s.plan.Forecasts = append(s.plan.Forecasts[:i], s.plan.Forecasts[i+1:]...)
	return nil
}

// DeleteScenario removes a scenario. Values it already projected stay.
func (s *Store) DeleteScenario(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := findScenario(s.plan.Scenarios, id)
	if !ok {
		return &planerror.NotFoundError{Kind: "scenario", ID: id}
	}
	s.plan.Scenarios = append(s.plan.Scenarios[:i], s.plan.Scenarios[i+1:]...)
	return nil
}

// ApplyForecastByID applies a stored forecast record.
func (s *Store) ApplyForecastByID(id string) (models.FinancialData, error) {
	s.mu.Lock()
	i, ok := findForecast(s.plan.Forecasts, id)
	var record models.ForecastRecord
	if ok {
		record = s.plan.Forecasts[i]
	}
	s.mu.Unlock()

	if !ok {
		return s.Data(), &planerror.NotFoundError{Kind: "forecast", ID: id}
	}
	return s.Dispatch(ApplyForecast{Record: record})
}

// ApplyScenarioByID applies a stored scenario.
func (s *Store) ApplyScenarioByID(id string) (models.FinancialData, error) {
	s.mu.Lock()
	i, ok := findScenario(s.plan.Scenarios, id)
	var scenario models.ScenarioConfig
	if ok {
		scenario = s.plan.Scenarios[i]
	}
	s.mu.Unlock()

	if !ok {
		return s.Data(), &planerror.NotFoundError{Kind: "scenario", ID: id}
	}
	return s.Dispatch(ApplyScenario{Scenario: scenario})
}

// ApplyActive re-applies every active forecast record and scenario.
func (s *Store) ApplyActive() (models.FinancialData, error) {
	s.mu.Lock()
	action := ApplyActive{
		Forecasts: cloneRecords(s.plan.Forecasts),
		Scenarios: cloneRecords(s.plan.Scenarios),
	}
	s.mu.Unlock()
	return s.Dispatch(action)
}

func cloneRecords[T any](in []T) []T {
	return append([]T(nil), in...)
}

func findForecast(records []models.ForecastRecord, id string) (int, bool) {
	for i, r := range records {
		if r.ID == id {
			return i, true
		}
	}
	return -1, false
}

func findScenario(scenarios []models.ScenarioConfig, id string) (int, bool) {
	for i, sc := range scenarios {
		if sc.ID == id {
			return i, true
		}
	}
	return -1, false
}
