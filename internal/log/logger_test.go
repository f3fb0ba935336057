package log

import (
	"bytes"
	"os"
	"strings"
	"testing"
)

func TestSetLevel_FiltersDebug(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetLevel("warn")
	})

	SetLevel("warn")
	Debug().Msg("hidden")
	if strings.Contains(buf.String(), "hidden") {
		t.Fatalf("debug event written at warn level: %q", buf.String())
	}

	SetLevel("debug")
	Debug().Str("stage", "flatten").Msg("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Fatalf("debug event missing at debug level: %q", buf.String())
	}
}

func TestParseLogLevel_UnknownFallsBackToWarn(t *testing.T) {
	if got := parseLogLevel("loud"); got.String() != "warn" {
		t.Fatalf("parseLogLevel(loud) = %s, want warn", got)
	}
}
