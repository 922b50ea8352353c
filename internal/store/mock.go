package store

import (
	"context"
	"sync"

	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/planerror"
)

// MockPlanStore is an in-memory plan repository for tests.
type MockPlanStore struct {
	mu    sync.Mutex
	Plan  *models.Plan
	Saves int

	// Error fields for testing error conditions
	LoadError error
	SaveError error
}

// LoadPlan returns a copy of the stored plan.
func (m *MockPlanStore) LoadPlan(_ context.Context) (*models.Plan, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadError != nil {
		return nil, m.LoadError
	}
	if m.Plan == nil {
		return nil, &planerror.NotFoundError{Kind: "plan", ID: "memory"}
	}
	// Return a copy to avoid external modifications
	plan := m.Plan.Clone()
	return &plan, nil
}

// SavePlan stores a copy of plan.
func (m *MockPlanStore) SavePlan(_ context.Context, plan *models.Plan) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SaveError != nil {
		return m.SaveError
	}
	c := plan.Clone()
	m.Plan = &c
	m.Saves++
	return nil
}

// Close does nothing.
func (m *MockPlanStore) Close() error { return nil }
