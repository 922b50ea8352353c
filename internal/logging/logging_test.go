package logging

import (
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogrusAdapter(t *testing.T) {
	tests := []struct {
		name      string
		level     string
		format    string
		wantLevel logrus.Level
		wantJSON  bool
	}{
		{"debug text", "debug", "text", logrus.DebugLevel, false},
		{"warn json", "warn", "json", logrus.WarnLevel, true},
		{"invalid level falls back to info", "loud", "text", logrus.InfoLevel, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogrusAdapter(tt.level, tt.format)
			adapter, ok := logger.(*LogrusAdapter)
			require.True(t, ok)
			assert.Equal(t, tt.wantLevel, adapter.logger.GetLevel())
			_, isJSON := adapter.logger.Formatter.(*logrus.JSONFormatter)
			assert.Equal(t, tt.wantJSON, isJSON)
		})
	}
}

func TestLogrusAdapter_WithFieldsKeepsParentUntouched(t *testing.T) {
	parent := NewLogrusAdapter("info", "text").(*LogrusAdapter)
	child := parent.WithFields(F(FieldCategoryID, "gross_profit"), F(FieldYear, 2024)).(*LogrusAdapter)

	assert.Empty(t, parent.entry.Data)
	assert.Equal(t, "gross_profit", child.entry.Data[FieldCategoryID])
	assert.Equal(t, 2024, child.entry.Data[FieldYear])
}

func TestNewLogrusAdapterFromLogger_Nil(t *testing.T) {
	logger := NewLogrusAdapterFromLogger(nil)
	assert.NotNil(t, logger)
	logger.Info("no panic")
}

func TestOrDiscard(t *testing.T) {
	mock := NewMockLogger()
	assert.Same(t, mock, OrDiscard(mock))
	assert.NotNil(t, OrDiscard(nil))
}

func TestMockLogger_SharesEntriesWithChildren(t *testing.T) {
	mock := NewMockLogger()
	mock.WithField(FieldRowID, "r1").Info("projected")
	mock.WithError(errors.New("boom")).Error("save failed", F(FieldBackend, "sqlite"))
	mock.Debug("plain")

	entries := mock.GetEntries()
	require.Len(t, entries, 3)
	assert.Equal(t, []Field{{Key: FieldRowID, Value: "r1"}}, entries[0].Fields)
	assert.EqualError(t, entries[1].Error, "boom")
	assert.Equal(t, "sqlite", entries[1].Fields[0].Value)

	assert.True(t, mock.HasEntry("INFO", "projected"))
	assert.False(t, mock.HasEntry("WARN", "projected"))
	assert.Len(t, mock.GetEntriesByLevel("ERROR"), 1)

	mock.Clear()
	assert.Empty(t, mock.GetEntries())
}

func TestMockLogger_ZeroValueUsable(t *testing.T) {
	var mock MockLogger
	mock.Warn("cycle")
	assert.True(t, mock.HasEntry("WARN", "cycle"))
}
