package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter_ProdWritesJSONAtInfo(t *testing.T) {
	var buf bytes.Buffer
	log := NewWithWriter(EnvProd, &buf)

	log.Debug("hidden")
	log.Info("Related post created", slog.Int64("id", 42))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "Related post created", line["msg"])
	assert.Equal(t, float64(42), line["id"])
	assert.NotContains(t, buf.String(), "hidden")
}

func TestNewWithWriter_DevWritesTextAtDebug(t *testing.T) {
	for _, env := range []string{EnvDev, EnvTest, ""} {
		t.Run(env, func(t *testing.T) {
			var buf bytes.Buffer
			log := NewWithWriter(env, &buf)

			log.Debug("visible", slog.String("key", "value"))

			assert.Contains(t, buf.String(), "msg=visible")
			assert.Contains(t, buf.String(), "key=value")
		})
	}
}
