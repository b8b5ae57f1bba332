package cfg

import (
	"testing"
	"time"

	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setBaseEnv задаёт обязательные переменные и сбрасывает опциональные, чтобы окружение CI не влияло на тест.
func setBaseEnv(t *testing.T) {
	t.Helper()

	for k, v := range map[string]string{
		"POSTGRES_USER":     "nudge",
		"POSTGRES_PASSWORD": "secret",
		"POSTGRES_DB":       "nudge",
		"KAFKA_BROKERS":     "kafka:9092, kafka2:9092",
		"OPENAI_API_KEY":    "sk-test",
	} {
		t.Setenv(k, v)
	}

	for _, k := range []string{
		"AI_PROVIDER", "GEMINI_API_KEY", "VECTOR_BACKEND", "MATCH_THRESHOLD", "VECTOR_SIZE",
		"MINIO_PUBLIC_URL", "MINIO_ENDPOINT", "BUCKET_NAME", "MINIO_USE_SSL",
		"IMAGE_MAX_RETRIES", "IMAGE_RETRY_DELAY", "PROJECT_TTL", "HTTP_WRITE_TIMEOUT", "KAFKA_TOPIC",
	} {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load(logger.NewNop())
	require.NoError(t, err)

	assert.Equal(t, []string{"kafka:9092", "kafka2:9092"}, cfg.Kafka.Brokers)
	assert.Equal(t, "nudge.catalog.events", cfg.Kafka.Topic)
	assert.Equal(t, "http://minio:9000/nudge-assets", cfg.Minio.PublicURL)
	assert.Equal(t, 5*time.Minute, cfg.Http.WriteTimeout)
	assert.Equal(t, 3*time.Minute, cfg.Redis.ProjectTTL)

	assert.Equal(t, ProviderOpenAI, cfg.AI.Provider)
	assert.Equal(t, 1536, cfg.AI.EmbeddingDimensions)
	assert.Equal(t, uint64(1536), cfg.Qdrant.VectorSize)
	assert.Equal(t, "nudge_assets", cfg.Qdrant.QdrantCollectionName)

	assert.Equal(t, 0.5, cfg.Explore.MatchThreshold)
	assert.Equal(t, BackendPgvector, cfg.Explore.VectorBackend)
	assert.Equal(t, 2, cfg.Explore.ImageMaxRetries)
	assert.Equal(t, time.Second, cfg.Explore.ImageRetryDelay)
}

func TestLoad_Gemini(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("AI_PROVIDER", "gemini")

	_, err := Load(logger.NewNop())
	require.Error(t, err, "gemini key is required")

	t.Setenv("GEMINI_API_KEY", "g-key")
	_, err = Load(logger.NewNop())
	require.ErrorIs(t, err, e.ErrUnsupportedBackend, "gemini vectors do not fit the pgvector column")

	t.Setenv("VECTOR_BACKEND", "qdrant")
	cfg, err := Load(logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 768, cfg.AI.EmbeddingDimensions)
	assert.Equal(t, uint64(768), cfg.Qdrant.VectorSize)
}

func TestLoad_InvalidValues(t *testing.T) {
	cases := map[string]struct {
		key, value string
		target     error
	}{
		"threshold above one":  {"MATCH_THRESHOLD", "1.5", e.ErrIncorrectEnvVariable},
		"threshold zero":       {"MATCH_THRESHOLD", "0", e.ErrIncorrectEnvVariable},
		"threshold not number": {"MATCH_THRESHOLD", "half", e.ErrIncorrectEnvVariable},
		"unknown backend":      {"VECTOR_BACKEND", "faiss", e.ErrUnsupportedBackend},
		"unknown provider":     {"AI_PROVIDER", "anthropic", e.ErrUnsupportedProvider},
		"negative retries":     {"IMAGE_MAX_RETRIES", "-1", e.ErrIncorrectEnvVariable},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(tc.key, tc.value)

			_, err := Load(logger.NewNop())
			require.ErrorIs(t, err, tc.target)
		})
	}
}

func TestLoad_RequiredVariables(t *testing.T) {
	for _, key := range []string{"POSTGRES_USER", "POSTGRES_PASSWORD", "POSTGRES_DB", "KAFKA_BROKERS", "OPENAI_API_KEY"} {
		t.Run(key, func(t *testing.T) {
			setBaseEnv(t)
			t.Setenv(key, "")

			_, err := Load(logger.NewNop())
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}

func TestLoadMinIOCfg_PublicURL(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("MINIO_PUBLIC_URL", "https://cdn.example.com/assets/")

	cfg, err := loadMinIOCfg(logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/assets", cfg.PublicURL)

	t.Setenv("MINIO_PUBLIC_URL", "")
	t.Setenv("MINIO_USE_SSL", "true")
	cfg, err = loadMinIOCfg(logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "https://minio:9000/nudge-assets", cfg.PublicURL)
}

func TestLoadDB(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("POSTGRES_HOST", "db")

	cfg, err := LoadDB(logger.NewNop())
	require.NoError(t, err)
	assert.Equal(t, "db", cfg.Host)
	assert.Equal(t, "5432", cfg.Port)
	assert.Equal(t, "disable", cfg.SSLMode)
}
