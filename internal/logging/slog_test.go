package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlogLogger_WritesJSON(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSON(&buf)

	log.Info(context.Background(), "hello", "key", "value")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "hello", rec["msg"])
	assert.Equal(t, "value", rec["key"])
	assert.Equal(t, "INFO", rec["level"])
}

func TestSlogLogger_WithAddsFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewJSON(&buf).With("module", "test")

	log.Warn(context.Background(), "careful")

	var rec map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
	assert.Equal(t, "test", rec["module"])
	assert.Equal(t, "WARN", rec["level"])
}
