package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseJson_OverlaysFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	body := `{
		"endpoint_addr": ":7070",
		"secret_key": "from-json",
		"reset_token_validity_duration": "20m"
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	origArgs := os.Args
	os.Args = []string{"taskkeeper", "-c", path}
	defer func() { os.Args = origArgs }()

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, ":7070", c.EndpointAddr)
	assert.Equal(t, "from-json", c.SecretKey)
	assert.Equal(t, 20*time.Minute, c.ResetTokenValidityDuration)
	// fields absent from the file keep their defaults
	assert.Equal(t, 15*time.Minute, c.AccessTokenValidityDuration)
}

func TestParseJson_NoFileFlagIsNoop(t *testing.T) {
	origArgs := os.Args
	os.Args = []string{"taskkeeper"}
	defer func() { os.Args = origArgs }()

	var c Config
	c.LoadDefaults()
	parseJson(&c)

	assert.Equal(t, ":8080", c.EndpointAddr)
}

func TestParseJson_BadFilePanics(t *testing.T) {
	origArgs := os.Args
	os.Args = []string{"taskkeeper", "-c", "does-not-exist.json"}
	defer func() { os.Args = origArgs }()

	var c Config
	c.LoadDefaults()
	assert.Panics(t, func() { parseJson(&c) })
}
