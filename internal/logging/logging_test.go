package logging_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"testing"

	"github.com/jroosing/minidns/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"DEBUG", slog.LevelDebug},
		{"debug", slog.LevelDebug},
		{"DeBuG", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"WARN", slog.LevelWarn},
		{"WARNING", slog.LevelWarn},
		{"ERROR", slog.LevelError},
		{"", slog.LevelInfo},
		{"INVALID", slog.LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, logging.ParseLevel(tt.in))
		})
	}
}

func TestConfigure_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Configure(logging.Config{Level: "WARN", Output: &buf})
	require.NotNil(t, logger)

	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestConfigure_StructuredJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Configure(logging.Config{
		Level:            "INFO",
		Structured:       true,
		StructuredFormat: "json",
		ExtraFields:      map[string]string{"app": "minidns", "version": "1.0.0"},
		IncludePID:       true,
		Output:           &buf,
	})
	logger.Info("dns listening", "addr", "0.0.0.0:1053")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "dns listening", line["msg"])
	assert.Equal(t, "0.0.0.0:1053", line["addr"])
	assert.Equal(t, "minidns", line["app"])
	assert.Equal(t, "1.0.0", line["version"])
	assert.InDelta(t, float64(os.Getpid()), line["pid"], 0)
}

func TestConfigure_StructuredText(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Configure(logging.Config{
		Level:            "INFO",
		Structured:       true,
		StructuredFormat: "keyvalue",
		Output:           &buf,
	})
	logger.Info("hello", "k", "v")
	assert.True(t, strings.Contains(buf.String(), "k=v"), buf.String())
}

func TestConfigure_ExtraFieldsOrdered(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.Configure(logging.Config{
		ExtraFields: map[string]string{"zeta": "1", "alpha": "2"},
		IncludePID:  true,
		Output:      &buf,
	})
	logger.Info("x")

	out := buf.String()
	a := strings.Index(out, "alpha=2")
	z := strings.Index(out, "zeta=1")
	p := strings.Index(out, "pid="+strconv.Itoa(os.Getpid()))
	require.True(t, a >= 0 && z >= 0 && p >= 0, out)
	assert.Less(t, a, z)
	assert.Less(t, z, p)
}

func TestConfigure_SetsDefault(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	logging.Configure(logging.Config{Output: &buf})
	slog.Info("via default")
	assert.Contains(t, buf.String(), "via default")
}
