package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleYAML = `
app:
  env: production
  port: 9000
  read_timeout: 5s
jwt:
  secret: from-file
mongo:
  uri: mongodb://localhost:27017
  database: campus_test
s3:
  bucket: campus-media
email:
  provider: smtp
  smtp_host: smtp.example.com
  from_email: noreply@example.com
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_FileAndDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "production", cfg.App.Env)
	assert.Equal(t, 9000, cfg.App.Port)
	assert.Equal(t, 5*time.Second, cfg.App.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.App.WriteTimeout)
	assert.Equal(t, 15*time.Minute, cfg.Security.OtpTTL)
	assert.Equal(t, 10, cfg.Security.PasswordHashCost)
	assert.Equal(t, 3, cfg.Mongo.ConnectAttempts)
	assert.False(t, cfg.IsDevelopment())
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("SECRET_KEY", "from-env")
	t.Setenv("PORT", "7000")
	t.Setenv("KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("OTP_TTL", "10m")

	cfg, err := Load(writeConfig(t, sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.JWT.Secret)
	assert.Equal(t, 7000, cfg.App.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, 2*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, 10*time.Minute, cfg.Security.OtpTTL)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		errMsg string
	}{
		{
			name:   "missing secret",
			body:   "mongo:\n  uri: mongodb://x\ns3:\n  bucket: b\n",
			errMsg: "SECRET_KEY is required",
		},
		{
			name:   "missing mongo uri",
			body:   "jwt:\n  secret: s\ns3:\n  bucket: b\n",
			errMsg: "MONGO_URI is required",
		},
		{
			name:   "brevo without key",
			body:   "jwt:\n  secret: s\nmongo:\n  uri: mongodb://x\ns3:\n  bucket: b\n",
			errMsg: "BREVO_API_KEY",
		},
		{
			name:   "unknown provider",
			body:   "jwt:\n  secret: s\nmongo:\n  uri: mongodb://x\ns3:\n  bucket: b\nemail:\n  provider: pigeon\n",
			errMsg: "unknown email provider",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	t.Setenv("SECRET_KEY", "s")
	t.Setenv("MONGO_URI", "mongodb://localhost")
	t.Setenv("S3_BUCKET", "b")
	t.Setenv("EMAIL_PROVIDER", "smtp")
	t.Setenv("SMTP_HOST", "localhost")
	t.Setenv("EMAIL_FROM", "a@b.c")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8000, cfg.App.Port)
	assert.True(t, cfg.IsDevelopment())
}
