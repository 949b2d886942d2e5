package cli

import (
	"bytes"
	"context"
	"regexp"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func TestSetLogLevel(t *testing.T) {
	var buf bytes.Buffer
	c := New(&buf, LogInfo)

	c.Logger.Debug("cache lookup")
	if buf.Len() != 0 {
		t.Fatalf("debug line written at info level: %q", buf.String())
	}

	c.SetLogLevel(LogDebug)
	c.Logger.Debug("cache lookup")
	if !bytes.Contains(buf.Bytes(), []byte("cache lookup")) {
		t.Error("debug line missing after SetLogLevel(LogDebug)")
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("Placed 2 experiments")

	if !regexp.MustCompile(`Placed 2 experiments \(\d+(\.\d+)?[µnm]?s\)`).Match(buf.Bytes()) {
		t.Errorf("progress output = %q, want message with elapsed time", buf.String())
	}
}

func TestRootCommandAttachesLogger(t *testing.T) {
	c := New(&bytes.Buffer{}, LogInfo)
	root := c.RootCommand()

	var got *log.Logger
	root.AddCommand(&cobra.Command{
		Use: "capture",
		RunE: func(cmd *cobra.Command, args []string) error {
			got = loggerFromContext(cmd.Context())
			return nil
		},
	})
	root.SetArgs([]string{"capture"})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatal(err)
	}
	if got != c.Logger {
		t.Error("command context does not carry the CLI logger")
	}
}

func TestLoggerFromContextDefault(t *testing.T) {
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext() without a logger should fall back to log.Default()")
	}
}

func TestLayoutLogsAtDebug(t *testing.T) {
	_, experiments, cfg := setupWorkspace(t)

	var logs bytes.Buffer
	c := New(&logs, LogDebug)
	root := c.RootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetArgs([]string{"--config", cfg, "layout", experiments})
	if err := root.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("layout error: %v", err)
	}

	for _, want := range []string{"loaded config", "placed experiments", "Placed 2 experiments"} {
		if !bytes.Contains(logs.Bytes(), []byte(want)) {
			t.Errorf("debug log missing %q", want)
		}
	}
}
