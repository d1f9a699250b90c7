package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func TestInit_JSON(t *testing.T) {
	t.Cleanup(InitDefault)

	var buf bytes.Buffer
	Init(&Options{Level: "warn", Format: FormatJSON, Out: &buf})

	log.Info().Msg("hidden")
	log.Warn().Str("service", "noona-moon").Msg("visible")

	var line map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line); err != nil {
		t.Fatalf("expected a single JSON line, got %q: %v", buf.String(), err)
	}
	if line["message"] != "visible" || line["service"] != "noona-moon" {
		t.Errorf("unexpected log line: %v", line)
	}
}

func TestInit_UnknownLevel(t *testing.T) {
	t.Cleanup(InitDefault)

	Init(&Options{Level: "loud", Out: &bytes.Buffer{}})
	if zerolog.GlobalLevel() != zerolog.InfoLevel {
		t.Errorf("global level = %s, want info", zerolog.GlobalLevel())
	}
}

func TestInit_ContextFallback(t *testing.T) {
	t.Cleanup(InitDefault)

	var buf bytes.Buffer
	Init(&Options{Level: "debug", Format: FormatJSON, Out: &buf})

	log.Ctx(context.Background()).Info().Msg("outside request")
	if buf.Len() == 0 {
		t.Error("log.Ctx without a request logger should write to the global logger")
	}
}
