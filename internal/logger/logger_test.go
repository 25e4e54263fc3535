package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetup_JSONWithRunID(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	Setup("debug", "json", &buf)

	ctx := WithRunID(context.Background(), "01HZX")
	FromContext(ctx).Debug("skipping existing record", "id", 2)

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "skipping existing record", rec["msg"])
	assert.Equal(t, "01HZX", rec["run_id"])
	assert.Equal(t, float64(2), rec["id"])
}

func TestSetup_LevelFilters(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	Setup("warn", "text", &buf)
	WithComponent("ingest").Info("hidden")
	assert.Empty(t, buf.String())

	WithComponent("ingest").Warn("shown")
	assert.Contains(t, buf.String(), "component=ingest")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, parseLevel("DEBUG"))
	assert.Equal(t, slog.LevelError, parseLevel("error"))
	assert.Equal(t, slog.LevelInfo, parseLevel("bogus"))
}
