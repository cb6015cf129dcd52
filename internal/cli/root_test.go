package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "atlas", cmd.Use)
	assert.Contains(t, cmd.Long, "Needs\nRevision")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()

	for _, path := range [][]string{{"validate"}, {"history"}, {"history", "show"}, {"rules"}, {"test"}} {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	levelFlag := cmd.PersistentFlags().Lookup("log-level")
	require.NotNil(t, levelFlag)
	assert.Equal(t, "warn", levelFlag.DefValue)

	require.NotNil(t, cmd.PersistentFlags().Lookup("config"))
}

func TestValidateCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	validateCmd, _, err := cmd.Find([]string{"validate"})
	require.NoError(t, err)

	for _, name := range []string{
		"data-dir", "events", "patterns", "entities", "stack-layers", "action-types",
		"entity-classes", "min-year", "max-year", "strict", "quiet", "watch",
		"metrics-file", "history-db",
	} {
		assert.NotNil(t, validateCmd.Flags().Lookup(name), "flag %s", name)
	}
	assert.Equal(t, "data", validateCmd.Flags().Lookup("data-dir").DefValue)
}

func TestHistoryCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	showCmd, _, err := cmd.Find([]string{"history", "show"})
	require.NoError(t, err)

	assert.NotNil(t, showCmd.InheritedFlags().Lookup("history-db"))

	historyCmd, _, err := cmd.Find([]string{"history"})
	require.NoError(t, err)
	limitFlag := historyCmd.Flags().Lookup("limit")
	require.NotNil(t, limitFlag)
	assert.Equal(t, "20", limitFlag.DefValue)
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	assert.Equal(t, "false", testCmd.Flags().Lookup("update").DefValue)
	assert.NotNil(t, testCmd.Flags().Lookup("filter"))
}

func TestInvalidGlobalFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"format", []string{"--format", "xml", "rules"}, `invalid format "xml"`},
		{"log level", []string{"--log-level", "trace", "rules"}, `invalid log level "trace"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := NewRootCommand()
			cmd.SetOut(&bytes.Buffer{})
			cmd.SetErr(&bytes.Buffer{})
			cmd.SetArgs(tt.args)

			err := cmd.Execute()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, ExitCommandError, GetExitCode(err))
		})
	}
}

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name      string
		opts      RootOptions
		wantDebug bool
		wantInfo  bool
		wantWarn  bool
	}{
		{"default warn", RootOptions{}, false, false, true},
		{"info", RootOptions{LogLevel: "info"}, false, true, true},
		{"error", RootOptions{LogLevel: "error"}, false, false, false},
		{"verbose forces debug", RootOptions{LogLevel: "error", Verbose: true}, true, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger, err := tt.opts.newLogger(buf)
			require.NoError(t, err)

			logger.Debug("debug line")
			logger.Info("info line")
			logger.Warn("warn line")

			out := buf.String()
			assert.Equal(t, tt.wantDebug, bytes.Contains([]byte(out), []byte("debug line")))
			assert.Equal(t, tt.wantInfo, bytes.Contains([]byte(out), []byte("info line")))
			assert.Equal(t, tt.wantWarn, bytes.Contains([]byte(out), []byte("warn line")))
		})
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	opts := RootOptions{LogLevel: "loud"}
	_, err := opts.newLogger(&bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid log level "loud"`)
}
