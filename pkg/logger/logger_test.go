package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(&Config{Level: "loud", Output: "stdout"})
	require.Error(t, err)
}

func TestFieldsAreWrittenAsJSON(t *testing.T) {
	var buf bytes.Buffer
	l := NewWriter(&buf).With(String("component", "forecast"))

	l.Info("done",
		String("commodity", "Wheat"),
		Int("steps", 12),
		Float64("rmse", 1.5),
		Duration("took", 250*time.Millisecond),
		Bool("cached", true),
		Error(errors.New("boom")),
	)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "done", got["message"])
	assert.Equal(t, "forecast", got["component"])
	assert.Equal(t, "Wheat", got["commodity"])
	assert.EqualValues(t, 12, got["steps"])
	assert.EqualValues(t, 1.5, got["rmse"])
	assert.EqualValues(t, 250, got["took"])
	assert.Equal(t, true, got["cached"])
	assert.Equal(t, "boom", got["error"])
}
