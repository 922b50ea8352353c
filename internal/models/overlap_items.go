package models

// The methods below let forecast records and scenarios be checked for
// conflicts by the same code.

func (f ForecastRecord) ItemID() string           { return f.ID }
func (f ForecastRecord) IsActive() bool           { return f.Status == StatusActive }
func (f ForecastRecord) Accounts() []string       { return f.AccountIDs }
func (f ForecastRecord) Period() (string, string) { return f.StartDate, f.EndDate }

func (s ScenarioConfig) ItemID() string           { return s.ID }
func (s ScenarioConfig) IsActive() bool           { return s.Status == StatusActive }
func (s ScenarioConfig) Accounts() []string       { return s.AccountIDs }
func (s ScenarioConfig) Period() (string, string) { return s.StartDate, s.EndDate }
