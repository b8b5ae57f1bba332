package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"github.com/jimlawless/whereami"
)

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"

	BackendPgvector = "pgvector"
	BackendQdrant   = "qdrant"

	openAIVectorSize = 1536
	geminiVectorSize = 768
)

type Config struct {
	Minio   *MinIOCfg
	Http    *HTTPConfig
	Grpc    *GRPCConfig
	Db      *PGDBCfg
	Qdrant  *QdrantCfg
	Redis   *RedisCfg
	Kafka   *KafkaCfg
	AI      *AICfg
	Explore *ExploreCfg
}

type KafkaCfg struct {
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Бакет для сгенерированных изображений
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
	PublicURL         string // Базовый адрес, по которому объекты бакета доступны снаружи
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

type PGDBCfg struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type QdrantCfg struct {
	Port                 int
	Host                 string
	ApiKey               string
	QdrantCollectionName string // имя коллекции в Qdrant
	UseTLS               bool
	VectorSize           uint64
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
	ProjectTTL  time.Duration
}

// AICfg: провайдеры моделей. Изображения всегда генерируются через OpenAI.
type AICfg struct {
	Provider             string
	OpenAIKey            string
	OpenAIBaseURL        string
	ChatModel            string
	EmbeddingModel       string
	EmbeddingDimensions  int
	ImageModel           string
	GeminiKey            string
	GeminiChatModel      string
	GeminiEmbeddingModel string
	Timeout              time.Duration
	ImageTimeout         time.Duration
	PromptsPath          string
}

type ExploreCfg struct {
	MatchThreshold  float64
	VectorBackend   string
	ImageMaxRetries int
	ImageRetryDelay time.Duration
}

// Load безопасно загружает конфигурацию и возвращает ошибку в случае неудачи.
func Load(log logger.Logger) (*Config, error) {
	db, err := loadPGDBCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	redis, err := loadRedisCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	minio, err := loadMinIOCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	ai, err := loadAICfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	explore, err := loadExploreCfg(log, ai)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	qdrant, err := loadQdrantCfg(log, ai)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return &Config{
		Minio:   minio,
		Http:    http,
		Grpc:    loadGRPCConfig(),
		Db:      db,
		Qdrant:  qdrant,
		Redis:   redis,
		Kafka:   kafka,
		AI:      ai,
		Explore: explore,
	}, nil
}

// LoadDB загружает только настройки Postgres (для команды migrate).
func LoadDB(log logger.Logger) (*PGDBCfg, error) {
	return loadPGDBCfg(log)
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultTopic             = "nudge.catalog.events"
	)

	brokerStr := getEnv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}

	brokers := make([]string, 0)
	for _, b := range strings.Split(brokerStr, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Brokers:           brokers,
		Topic:             getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
	}, nil
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL   = false
		defaultEndpoint = "minio:9000"
		defaultBucket   = "nudge-assets"
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	endpoint := getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint)
	bucket := getEnvOrDefault("BUCKET_NAME", defaultBucket)

	scheme := "http"
	if useSSL {
		scheme = "https"
	}
	publicURL := getEnvOrDefault("MINIO_PUBLIC_URL", fmt.Sprintf("%s://%s/%s", scheme, endpoint, bucket))

	return &MinIOCfg{
		MinioEndpoint:     endpoint,
		BucketName:        bucket,
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
		PublicURL:         strings.TrimRight(publicURL, "/"),
	}, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort        = "8080"
		defaultReadTimeout = 15 * time.Second
		// explore генерирует до шести изображений последовательно
		defaultWriteTimeout = 5 * time.Minute
		defaultIdleTimeout  = 60 * time.Second
	)

	port := getEnvOrDefault("HTTP_PORT", defaultPort)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	return &HTTPConfig{
		Port:         port,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}, nil
}

func loadGRPCConfig() *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost    = "localhost"
		defaultPort    = "5432"
		defaultSSLMode = "disable"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:     getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:     getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:     user,
		Password: password,
		DBName:   dbName,
		SSLMode:  getEnvOrDefault("SSL_MODE", defaultSSLMode),
	}, nil
}

// loadQdrantCfg: размер вектора по умолчанию следует за провайдером эмбеддингов.
func loadQdrantCfg(logger logger.Logger, ai *AICfg) (*QdrantCfg, error) {
	const (
		defaultQdrantGRPCPort = "6334"
		defaultUseTLS         = false
		defaultHost           = "qdrant"
		defaultCollection     = "nudge_assets"
	)

	port, err := strconv.Atoi(getEnvOrDefault("QDRANT_GRPC_PORT", defaultQdrantGRPCPort))
	if err != nil {
		logger.Errorf(err, "invalid QDRANT_GRPC_PORT")
		return nil, err
	}

	useTLS, err := strconv.ParseBool(getEnvOrDefault("QDRANT_USE_TLS", strconv.FormatBool(defaultUseTLS)))
	if err != nil {
		logger.Errorf(err, "invalid QDRANT_USE_TLS")
		return nil, err
	}

	defaultVectorSize := strconv.Itoa(ai.EmbeddingDimensions)
	vectorSize, err := strconv.ParseUint(getEnvOrDefault("VECTOR_SIZE", defaultVectorSize), 10, 64)
	if err != nil {
		logger.Errorf(err, "invalid VECTOR_SIZE")
		return nil, err
	}

	return &QdrantCfg{
		Host:                 getEnvOrDefault("QDRANT_HOST", defaultHost),
		Port:                 port,
		ApiKey:               getEnv("QDRANT__SERVICE__API_KEY"),
		QdrantCollectionName: getEnvOrDefault("COLLECTION_NAME", defaultCollection),
		UseTLS:               useTLS,
		VectorSize:           vectorSize,
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
		defaultProjectTTL   = 3 * time.Minute
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	projectTTL, err := parseDurationEnv("PROJECT_TTL", defaultProjectTTL)
	if err != nil {
		log.Errorf(err, "invalid PROJECT_TTL")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
		ProjectTTL:  projectTTL,
	}, nil
}

func loadAICfg(log logger.Logger) (*AICfg, error) {
	const (
		defaultChatModel      = "gpt-4o"
		defaultEmbeddingModel = "text-embedding-3-small"
		defaultImageModel     = "dall-e-3"
		defaultTimeout        = 60 * time.Second
		defaultImageTimeout   = 120 * time.Second
	)

	provider := strings.ToLower(getEnvOrDefault("AI_PROVIDER", ProviderOpenAI))
	if provider != ProviderOpenAI && provider != ProviderGemini {
		err := fmt.Errorf("%w: %s", e.ErrUnsupportedProvider, provider)
		log.Errorf(err, "invalid AI_PROVIDER")
		return nil, err
	}

	// ключ OpenAI нужен всегда: генерация изображений есть только у него
	openAIKey := getEnv("OPENAI_API_KEY")
	if openAIKey == "" {
		err := fmt.Errorf("OPENAI_API_KEY is required")
		log.Errorf(err, "missing OPENAI_API_KEY")
		return nil, err
	}

	geminiKey := getEnv("GEMINI_API_KEY")
	if provider == ProviderGemini && geminiKey == "" {
		err := fmt.Errorf("GEMINI_API_KEY is required for AI_PROVIDER=gemini")
		log.Errorf(err, "missing GEMINI_API_KEY")
		return nil, err
	}

	dimensions := openAIVectorSize
	if provider == ProviderGemini {
		dimensions = geminiVectorSize
	}

	timeout, err := parseDurationEnv("AI_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid AI_TIMEOUT")
		return nil, err
	}

	imageTimeout, err := parseDurationEnv("IMAGE_TIMEOUT", defaultImageTimeout)
	if err != nil {
		log.Errorf(err, "invalid IMAGE_TIMEOUT")
		return nil, err
	}

	return &AICfg{
		Provider:             provider,
		OpenAIKey:            openAIKey,
		OpenAIBaseURL:        getEnv("OPENAI_BASE_URL"),
		ChatModel:            getEnvOrDefault("OPENAI_CHAT_MODEL", defaultChatModel),
		EmbeddingModel:       getEnvOrDefault("OPENAI_EMBEDDING_MODEL", defaultEmbeddingModel),
		EmbeddingDimensions:  dimensions,
		ImageModel:           getEnvOrDefault("OPENAI_IMAGE_MODEL", defaultImageModel),
		GeminiKey:            geminiKey,
		GeminiChatModel:      getEnv("GEMINI_CHAT_MODEL"),
		GeminiEmbeddingModel: getEnv("GEMINI_EMBEDDING_MODEL"),
		Timeout:              timeout,
		ImageTimeout:         imageTimeout,
		PromptsPath:          getEnv("PROMPTS_PATH"),
	}, nil
}

func loadExploreCfg(log logger.Logger, ai *AICfg) (*ExploreCfg, error) {
	const (
		defaultMatchThreshold  = 0.5
		defaultImageMaxRetries = 2
		defaultImageRetryDelay = time.Second
	)

	threshold, err := parseFloatEnv("MATCH_THRESHOLD", defaultMatchThreshold)
	if err != nil || threshold <= 0 || threshold > 1 {
		err = fmt.Errorf("%w: MATCH_THRESHOLD must be in (0, 1]", e.ErrIncorrectEnvVariable)
		log.Errorf(err, "invalid MATCH_THRESHOLD")
		return nil, err
	}

	backend := strings.ToLower(getEnvOrDefault("VECTOR_BACKEND", BackendPgvector))
	if backend != BackendPgvector && backend != BackendQdrant {
		err := fmt.Errorf("%w: %s", e.ErrUnsupportedBackend, backend)
		log.Errorf(err, "invalid VECTOR_BACKEND")
		return nil, err
	}

	// колонка combined_vector имеет размерность 1536, векторы Gemini туда не помещаются
	if ai.Provider == ProviderGemini && backend == BackendPgvector {
		err := fmt.Errorf("%w: AI_PROVIDER=gemini requires VECTOR_BACKEND=qdrant", e.ErrUnsupportedBackend)
		log.Errorf(err, "invalid VECTOR_BACKEND")
		return nil, err
	}

	maxRetries, err := parseIntEnv("IMAGE_MAX_RETRIES", defaultImageMaxRetries)
	if err != nil || maxRetries < 0 {
		err = fmt.Errorf("%w: IMAGE_MAX_RETRIES", e.ErrIncorrectEnvVariable)
		log.Errorf(err, "invalid IMAGE_MAX_RETRIES")
		return nil, err
	}

	retryDelay, err := parseDurationEnv("IMAGE_RETRY_DELAY", defaultImageRetryDelay)
	if err != nil {
		log.Errorf(err, "invalid IMAGE_RETRY_DELAY")
		return nil, err
	}

	return &ExploreCfg{
		MatchThreshold:  threshold,
		VectorBackend:   backend,
		ImageMaxRetries: maxRetries,
		ImageRetryDelay: retryDelay,
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}

func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return f, nil
}
