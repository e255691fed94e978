package infrastructure

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestNewLogger_JSON(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("warn", "json", &buf)

	logger.Info().Msg("ignoré")
	logger.Warn().Int("rows", 25000).Msg("flush lent")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("lignes = %d, want 1: %q", len(lines), buf.String())
	}

	var entry map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &entry); err != nil {
		t.Fatalf("sortie non JSON: %v", err)
	}
	if entry["level"] != "warn" || entry["message"] != "flush lent" || entry["rows"] != float64(25000) {
		t.Errorf("entrée = %v", entry)
	}
}

func TestNewLogger_UnknownLevelDefaultsToInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger("verbose", "json", &buf)

	logger.Debug().Msg("debug")
	logger.Info().Msg("info")

	if strings.Contains(buf.String(), `"debug"`) || !strings.Contains(buf.String(), `"info"`) {
		t.Errorf("sortie = %q", buf.String())
	}
}
