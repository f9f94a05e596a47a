package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "8081", cfg.WSPort)
	assert.Equal(t, "test-secret", cfg.JWTSecret)
	assert.Equal(t, "shareplate", cfg.DatabaseConfig.Name)
	assert.Contains(t, cfg.DatabaseURL, "sslmode=disable")
	assert.Equal(t, "shareplate", cfg.CloudinaryConfig.UploadFolder)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	t.Setenv("PORT", "9090")
	t.Setenv("PGHOST", "db.internal")
	t.Setenv("PGDATABASE", "shareplate_test")

	cfg := LoadConfig()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "db.internal", cfg.DatabaseConfig.Host)
	assert.Contains(t, cfg.DatabaseURL, "db.internal")
	assert.Contains(t, cfg.DatabaseURL, "/shareplate_test?")
}
