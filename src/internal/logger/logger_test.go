package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePayloadMasksSensitiveKeys(t *testing.T) {
	payload := map[string]any{
		"transferCode": "T1",
		"Channel-Key":  "top-secret",
		"nested": map[string]any{
			"password": "p",
			"amount":   "10.00",
		},
	}

	sanitized, ok := SanitizePayload(payload).(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "T1", sanitized["transferCode"])
	assert.Equal(t, "******", sanitized["Channel-Key"])

	nested, ok := sanitized["nested"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "******", nested["password"])
	assert.Equal(t, "10.00", nested["amount"])
}

func TestSanitizePayloadUnmarshalableValue(t *testing.T) {
	assert.Equal(t, "<unavailable>", SanitizePayload(make(chan int)))
}

func TestErrorWritesJSONWithErrorField(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() { SetOutput(bytes.NewBuffer(nil)) })

	Error("commit failed", errors.New("storage down"), Fields{"transferCode": "T9", "token": "abc"})

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "commit failed", line["msg"])
	assert.Equal(t, "storage down", line["error"])
	assert.Equal(t, "T9", line["transferCode"])
	assert.Equal(t, "******", line["token"])
}

func TestConfigureUnknownLevelFallsBackToInfo(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		Configure("info")
		SetOutput(bytes.NewBuffer(nil))
	})

	Configure("chatty")
	Debug("hidden", nil)
	assert.Zero(t, buf.Len())

	Configure("debug")
	Debug("shown", nil)
	assert.Contains(t, buf.String(), "shown")
}
