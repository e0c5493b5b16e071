package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"APP_ENV", "LOG_LEVEL", "LOG_FORMAT", "CORS_ORIGINS", "PORT", "REQUEST_TIMEOUT_SEC",
		"DB_DRIVER", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "DB_SSLMODE",
		"MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET", "MINIO_REGION",
		"AI_PROVIDER", "AI_API_KEY", "AI_MODEL", "OPENAI_API_KEY", "OPENAI_MODEL", "OPENAI_BASE_URL",
		"GEMINI_API_KEY", "GEMINI_MODEL", "API_KEYS", "RATE_LIMIT_PER_MINUTE", "RATE_LIMIT_BURST",
		"DB_MAX_OPEN_CONNS", "DB_MAX_IDLE_CONNS", "MINIO_PRESIGN_MINUTES",
	} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.False(t, cfg.AI.Configured())
	assert.False(t, cfg.MinioEnabled())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := writeFile(t, `
server:
  port: 9000
database:
  driver: mysql
  host: db
  port: 3307
  user: app
  password: secret
  name: meetings
ai:
  provider: openai
  apiKey: sk-your-openai-api-key-here
  model: gpt-4o-mini
minio:
  endpoint: minio:9000
  bucketName: exports
  presignMinutes: 30
auth:
  apiKeys:
    acme: k1
`)
	t.Setenv("PORT", "9100")
	t.Setenv("OPENAI_API_KEY", "sk-live-abc")
	t.Setenv("API_KEYS", "acme:k2, globex:k3")
	t.Setenv("DB_MAX_OPEN_CONNS", "50")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "sk-live-abc", cfg.AI.APIKey)
	assert.True(t, cfg.AI.Configured())
	assert.Equal(t, map[string]string{"acme": "k2", "globex": "k3"}, cfg.Auth.APIKeys)
	assert.True(t, cfg.MinioEnabled())
	assert.Equal(t, 30, cfg.Minio.PresignMinutes)
	assert.Equal(t, 50, cfg.Database.MaxOpenConns)
	assert.Equal(t, "app:secret@tcp(db:3307)/meetings?parseTime=true&charset=utf8mb4&loc=UTC", cfg.MySQLDSN())
}

func TestLoad_GeminiKeyFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("AI_PROVIDER", "Gemini")
	t.Setenv("GEMINI_API_KEY", "AIza-test")
	t.Setenv("OPENAI_API_KEY", "sk-ignored")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, "AIza-test", cfg.AI.APIKey)
	assert.Equal(t, DefaultGeminiModel, cfg.AI.Model)
}

func TestLoad_ModelDefaultsPerProvider(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, DefaultOpenAIModel, cfg.AI.Model)

	path := writeFile(t, "ai:\n  provider: gemini\n")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultGeminiModel, cfg.AI.Model)

	t.Setenv("GEMINI_MODEL", "gemini-2.5-pro")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini-2.5-pro", cfg.AI.Model)
}

func TestLoad_Invalid(t *testing.T) {
	clearEnv(t)

	_, err := Load(writeFile(t, "server: [not a map"))
	assert.Error(t, err)

	t.Setenv("DB_DRIVER", "sqlite")
	_, err = Load("")
	assert.ErrorContains(t, err, "database.driver")

	t.Setenv("DB_DRIVER", "")
	t.Setenv("PORT", "eighty")
	_, err = Load("")
	assert.ErrorContains(t, err, "PORT")

	t.Setenv("PORT", "")
	t.Setenv("API_KEYS", "no-colon")
	_, err = Load("")
	assert.ErrorContains(t, err, "tenant:key")
}

func TestAIConfigured(t *testing.T) {
	tests := map[string]bool{
		"":                            false,
		"   ":                         false,
		"sk-your-openai-api-key-here": false,
		"your-gemini-key":             false,
		"CHANGEME":                    false,
		"sk-proj-123":                 true,
		"AIzaSyD-real":                true,
	}
	for key, want := range tests {
		assert.Equal(t, want, AI{APIKey: key}.Configured(), key)
	}
}

func TestPostgresDSN(t *testing.T) {
	cfg := Default()
	cfg.Database.Host = "pg"
	cfg.Database.User = "u"
	cfg.Database.Password = "p"
	cfg.Database.Name = "n"
	assert.Equal(t, "host=pg port=5432 user=u password=p dbname=n sslmode=disable", cfg.PostgresDSN())
}
