package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewLoggerLevels(t *testing.T) {
	tests := []struct {
		name    string
		level   log.Level
		logFunc func(*log.Logger)
		wantLog bool
	}{
		{"info at info level", log.InfoLevel, func(l *log.Logger) { l.Info("packed") }, true},
		{"debug at info level", log.InfoLevel, func(l *log.Logger) { l.Debug("region ready") }, false},
		{"debug at debug level", log.DebugLevel, func(l *log.Logger) { l.Debug("region ready") }, true},
		{"warn at info level", log.InfoLevel, func(l *log.Logger) { l.Warn("shortfall") }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.logFunc(newLogger(&buf, tt.level))
			if got := buf.Len() > 0; got != tt.wantLog {
				t.Errorf("got log output = %v, want %v", got, tt.wantLog)
			}
		})
	}
}

func TestProgressDone(t *testing.T) {
	var buf bytes.Buffer
	prog := newProgress(newLogger(&buf, log.InfoLevel))
	prog.done("Packed 3 of 4 items")

	out := buf.String()
	if !strings.Contains(out, "Packed 3 of 4 items (") {
		t.Errorf("progress output %q should contain the message and elapsed time", out)
	}
}

func TestLoggerFromContext(t *testing.T) {
	var buf bytes.Buffer
	custom := newLogger(&buf, log.InfoLevel)

	if got := loggerFromContext(withLogger(context.Background(), custom)); got != custom {
		t.Error("loggerFromContext should return the attached logger")
	}
	if loggerFromContext(context.Background()) != log.Default() {
		t.Error("loggerFromContext should fall back to the default logger")
	}
	//nolint:staticcheck // nil context is handled explicitly
	if loggerFromContext(nil) != log.Default() {
		t.Error("loggerFromContext(nil) should return the default logger")
	}
}
