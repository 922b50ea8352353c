// Package store persists a plan as a YAML file.
package store

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"fjacquet/pnl-forecast/internal/logging"
	"fjacquet/pnl-forecast/internal/models"
	"fjacquet/pnl-forecast/internal/planerror"
)

// DefaultPlanFile is used when no plan file is configured.
const DefaultPlanFile = "plan.yaml"

// PlanStore loads and saves a plan from a YAML file. Only non-zero values are
// written; missing months are restored as projected zeros on load.
type PlanStore struct {
	File   string
	logger logging.Logger
}

// NewPlanStore creates a store for file. logger may be nil.
func NewPlanStore(file string, logger logging.Logger) *PlanStore {
	if file == "" {
		file = DefaultPlanFile
	}
	return &PlanStore{File: file, logger: logging.OrDiscard(logger)}
}

// FindPlanFile looks for a plan file in standard locations
func (s *PlanStore) FindPlanFile(filename string) (string, error) {
	// Check if it's an absolute path
	if filepath.IsAbs(filename) {
		if _, err := os.Stat(filename); err == nil {
			return filename, nil
		}
		return "", os.ErrNotExist
	}

	locations := []string{
		filename,
		filepath.Join("data", filename),
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location, nil
		}
	}

	// If still not found, check in user's home directory under .config/pnl-forecast/
	homeDir, err := os.UserHomeDir()
	if err == nil {
		planPath := filepath.Join(homeDir, ".config", "pnl-forecast", filename)
		if _, err := os.Stat(planPath); err == nil {
			return planPath, nil
		}
	}

	return "", os.ErrNotExist
}

// LoadPlan reads the plan file. A missing file is a NotFoundError.
func (s *PlanStore) LoadPlan(ctx context.Context) (*models.Plan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	filePath, err := s.FindPlanFile(s.File)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &planerror.NotFoundError{Kind: "plan file", ID: s.File}
		}
		return nil, fmt.Errorf("error resolving plan file: %w", err)
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, &planerror.StorageError{Backend: "yaml", Op: "read", Err: err}
	}

	var plan models.Plan
	if err := yaml.Unmarshal(data, &plan); err != nil {
		return nil, &planerror.StorageError{Backend: "yaml", Op: "parse", Err: err}
	}
	plan.Data.EnsureHorizon()

	s.logger.Debug("Loaded plan",
		logging.F(logging.FieldFile, filePath),
		logging.F(logging.FieldCount, len(plan.Data.Categories)))
	return &plan, nil
}

// SavePlan writes the plan, creating parent directories as needed.
func (s *PlanStore) SavePlan(ctx context.Context, plan *models.Plan) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if plan == nil {
		return fmt.Errorf("nil plan")
	}

	filePath, err := s.FindPlanFile(s.File)
	if err != nil {
		filePath = s.File
	}

	if dir := filepath.Dir(filePath); dir != "." {
		if err := os.MkdirAll(dir, models.PermissionDirectory); err != nil {
			return fmt.Errorf("error creating directory: %w", err)
		}
	}

	compact := plan.Clone()
	compact.Data = compact.Data.Compact()
	data, err := yaml.Marshal(&compact)
	if err != nil {
		return &planerror.StorageError{Backend: "yaml", Op: "marshal", Err: err}
	}
	if err := os.WriteFile(filePath, data, models.PermissionConfigFile); err != nil {
		return &planerror.StorageError{Backend: "yaml", Op: "write", Err: err}
	}

	s.logger.Debug("Saved plan", logging.F(logging.FieldFile, filePath))
	return nil
}

// Close is a no-op; the file is not held open.
func (s *PlanStore) Close() error { return nil }

// Records is the layout of a forecast/scenario input file.
type Records struct {
	Forecasts []models.ForecastRecord `yaml:"forecasts"`
	Scenarios []models.ScenarioConfig `yaml:"scenarios"`
}

// LoadRecords reads forecast records and scenarios from a YAML file.
func LoadRecords(path string) (Records, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Records{}, fmt.Errorf("error reading records file: %w", err)
	}
	var records Records
	if err := yaml.Unmarshal(data, &records); err != nil {
		return Records{}, fmt.Errorf("error parsing records file: %w", err)
	}
	return records, nil
}
