package root_test

import (
	"context"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/pnl-forecast/cmd/root"
	"fjacquet/pnl-forecast/internal/config"
	"fjacquet/pnl-forecast/internal/container"
	"fjacquet/pnl-forecast/internal/logging"
	"fjacquet/pnl-forecast/internal/store"
)

func init() {
	root.Init()
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "pnl-forecast", root.Cmd.Use)
	assert.Contains(t, root.Cmd.Short, "profit and loss")
	assert.NotNil(t, root.Cmd.Run)
	assert.NotNil(t, root.Cmd.PersistentPreRunE)
	assert.NotNil(t, root.Cmd.PersistentPostRunE)
}

func TestRootCommand_Flags(t *testing.T) {
	tests := []struct {
		name      string
		shorthand string
	}{
		{"config", "c"},
		{"plan", "p"},
		{"log-level", ""},
		{"log-format", ""},
		{"driver", ""},
		{"delimiter", ""},
		{"strict", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := root.Cmd.PersistentFlags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
		})
	}
}

func TestRootCommand_Run(t *testing.T) {
	assert.NotPanics(t, func() {
		root.Cmd.Run(&cobra.Command{}, []string{})
	})
}

func TestBuild_FlagsOverrideConfig(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("PNL_STORAGE_DRIVER", "")
	t.Setenv("PNL_LOG_LEVEL", "")

	require.NoError(t, root.Cmd.PersistentFlags().Set("plan", "custom.yaml"))
	require.NoError(t, root.Cmd.PersistentFlags().Set("log-level", "warn"))
	t.Cleanup(func() {
		_ = root.Cmd.PersistentFlags().Set("plan", "")
		_ = root.Cmd.PersistentFlags().Set("log-level", "")
	})

	c, err := root.Build(root.Cmd)
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, "custom.yaml", c.GetConfig().Plan.File)
	assert.Equal(t, "warn", c.GetConfig().Log.Level)
	assert.Equal(t, config.DriverYAML, c.GetConfig().Storage.Driver)
}

func TestContainerInjection(t *testing.T) {
	root.SetContainer(nil)
	_, err := root.GetContainer()
	assert.Error(t, err)

	cfg := &config.Config{}
	cfg.Export.Delimiter = ","
	c, err := container.NewContainer(context.Background(), cfg,
		container.WithRepository(&store.MockPlanStore{}),
		container.WithLogger(logging.NewMockLogger()))
	require.NoError(t, err)

	root.SetContainer(c)
	defer root.SetContainer(nil)

	got, err := root.GetContainer()
	require.NoError(t, err)
	assert.Same(t, c, got)
	require.NoError(t, root.Cmd.PersistentPreRunE(root.Cmd, nil), "injected container is kept")
	got, _ = root.GetContainer()
	assert.Same(t, c, got)
}
