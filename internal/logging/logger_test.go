// ABOUTME: Tests for logrus setup.
// ABOUTME: Checks level mapping and JSON output.
package logging

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetLevel(t *testing.T) {
	tests := map[string]logrus.Level{
		"trace":    logrus.TraceLevel,
		"DEBUG":    logrus.DebugLevel,
		"info":     logrus.InfoLevel,
		"warn":     logrus.WarnLevel,
		"error":    logrus.ErrorLevel,
		"fatal":    logrus.FatalLevel,
		"":         logrus.WarnLevel,
		"nonsense": logrus.WarnLevel,
	}
	for in, want := range tests {
		assert.Equal(t, want, GetLevel(in), "level %q", in)
	}
}

func TestSetupJSON(t *testing.T) {
	var buf bytes.Buffer
	log := Setup(SetupParams{LogLevel: "info", LogFormatJSON: true, Output: &buf})
	t.Cleanup(func() { Setup(SetupParams{}) })

	log.WithField("metric", "weight").Info("Fetched 3 weight samples")
	log.Debug("hidden")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "weight", line["metric"])
	assert.Equal(t, "Fetched 3 weight samples", line["msg"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestSetupLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lifetracker")
	log := Setup(SetupParams{LogLevel: "warn", LogFileName: path})
	t.Cleanup(func() { Setup(SetupParams{}) })

	log.Warn("written to file")
	assert.FileExists(t, path+".log")
}
