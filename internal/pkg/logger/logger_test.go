package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_JSONLevel(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Config{Level: "warn", Format: "json"})

	l.Info("hidden")
	assert.Empty(t, buf.String())

	l.Warn("shown", "project_id", "P1")
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "shown", entry["msg"])
	assert.Equal(t, "P1", entry["project_id"])
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	base := New(&buf, Config{Level: "debug", Format: "json"})

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, UserIDKey, "C1")
	WithContext(ctx, base).Info("award")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "req-1", entry["request_id"])
	assert.Equal(t, "C1", entry["user_id"])
}
