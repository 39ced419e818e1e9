package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, k := range []string{"LISTEN_ADDR", "SCREEN_WIDTH", "SCREEN_HEIGHT", "JPEG_QUALITY", "UPLOAD_DIR", "LOG_LEVEL", "AXIOM_DATASET"} {
		t.Setenv(k, "")
	}

	cfg := FromEnv()

	assert.Equal(t, "127.0.0.1:8080", cfg.Server.ListenAddr)
	assert.Equal(t, "uploads", cfg.Server.UploadDir)
	assert.Equal(t, 24*time.Hour, cfg.Server.UploadMaxAge)
	assert.Equal(t, 1920, cfg.View.ScreenWidth)
	assert.Equal(t, 1080, cfg.View.ScreenHeight)
	assert.Equal(t, 75, cfg.View.JPEGQuality)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "dev_pageselector", cfg.Axiom.Dataset)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9090")
	t.Setenv("SCREEN_WIDTH", "1275")
	t.Setenv("SCREEN_HEIGHT", "1650")
	t.Setenv("JPEG_QUALITY", "90")
	t.Setenv("LOG_COMPRESS", "off")
	t.Setenv("UPLOAD_MAX_AGE", "1h")

	cfg := FromEnv()

	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, 1275, cfg.View.ScreenWidth)
	assert.Equal(t, 1650, cfg.View.ScreenHeight)
	assert.Equal(t, 90, cfg.View.JPEGQuality)
	assert.False(t, cfg.Logging.Compress)
	assert.Equal(t, time.Hour, cfg.Server.UploadMaxAge)
}

func TestFromEnvRejectsInvalidView(t *testing.T) {
	t.Setenv("SCREEN_WIDTH", "-5")
	t.Setenv("SCREEN_HEIGHT", "abc")
	t.Setenv("JPEG_QUALITY", "400")

	cfg := FromEnv()

	assert.Equal(t, 1920, cfg.View.ScreenWidth)
	assert.Equal(t, 1080, cfg.View.ScreenHeight)
	assert.Equal(t, 75, cfg.View.JPEGQuality)
}

func TestParseBool(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"1", true},
		{"true", true},
		{" YES ", true},
		{"on", true},
		{"0", false},
		{"", false},
		{"nope", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseBool(tt.in), tt.in)
	}
}
