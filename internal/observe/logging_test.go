package observe

import (
	"bytes"
	"strings"
	"testing"

	"github.com/tmarkko/quillcast/internal/config"
	"github.com/tmarkko/quillcast/pkg/status"
)

func TestErrorLogTagsCode(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerTo(&buf, config.LogInfo)

	ErrorLog(logger, status.IOError, "stream died", "device", "mic0")

	out := buf.String()
	for _, want := range []string{"stream died", status.IOError.String(), "mic0"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestErrorLogDropsEmptyMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerTo(&buf, config.LogInfo)

	ErrorLog(logger, status.RuntimeError, "")

	if out := buf.String(); strings.Contains(out, "ERROR") {
		t.Errorf("empty message escalated to an error record: %q", out)
	}
}

func TestNewLoggerLevels(t *testing.T) {
	var buf bytes.Buffer
	logger := newLoggerTo(&buf, config.LogWarn)

	logger.Info("below threshold")
	logger.Warn("at threshold")

	out := buf.String()
	if strings.Contains(out, "below threshold") {
		t.Errorf("info record emitted at warn level: %q", out)
	}
	if !strings.Contains(out, "at threshold") {
		t.Errorf("warn record missing: %q", out)
	}
}
