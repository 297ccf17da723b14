package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConfig_FileAndEnvironment(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
DB_DRIVER: sqlite
DB_PATH: test.db
JWT_SECRET: from-file
PAYMENT_PROVIDER: midtrans
FALLBACK_RATE: 80.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("JWT_SECRET", "from-env")

	cfg, err := ReadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "test.db", cfg.DBPath)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, "midtrans", cfg.PaymentProvider)
	assert.Equal(t, 80.5, cfg.FallbackRate)
	// untouched keys keep their defaults
	assert.Equal(t, "USD", cfg.BaseCurrency)
	assert.Equal(t, "none", cfg.EventsBackend)
}

func TestReadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := ReadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.DBDriver)
	assert.Equal(t, 83.0, cfg.FallbackRate)
}

func TestReadConfig_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("DB_DRIVER: [unclosed"), 0o600))

	_, err := ReadConfig(path)
	assert.Error(t, err)
}

func TestGetConfig(t *testing.T) {
	SetConfig(Config{DBDriver: "sqlite", IsProd: true, JWTSecret: "s"})

	assert.Equal(t, "sqlite", GetConfig("DB_DRIVER"))
	assert.Equal(t, "true", GetConfig("IsProd"))
	assert.Equal(t, "s", GetConfig("JWT_SECRET"))
	assert.Equal(t, "", GetConfig("NOPE"))
}

func TestRequestStatusValidation(t *testing.T) {
	InitValidator()
	type payload struct {
		Status string `validate:"required,request_status"`
	}

	assert.NoError(t, Validate.Struct(payload{Status: "approved"}))
	assert.Error(t, Validate.Struct(payload{Status: "closed"}))
}
