package app

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/nudge-backend/internal/cfg"
	v1Grpc "github.com/DRSN-tech/nudge-backend/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/nudge-backend/internal/delivery/v1/http"
	"github.com/DRSN-tech/nudge-backend/internal/infrastructure/ai"
	"github.com/DRSN-tech/nudge-backend/internal/infrastructure/ai/gemini"
	"github.com/DRSN-tech/nudge-backend/internal/infrastructure/ai/openai"
	"github.com/DRSN-tech/nudge-backend/internal/infrastructure/kafka"
	minioInfra "github.com/DRSN-tech/nudge-backend/internal/infrastructure/minio"
	s3Repo "github.com/DRSN-tech/nudge-backend/internal/repository/minio"
	"github.com/DRSN-tech/nudge-backend/internal/repository/pgdb"
	pgdbConv "github.com/DRSN-tech/nudge-backend/internal/repository/pgdb/converter"
	qdrantRepo "github.com/DRSN-tech/nudge-backend/internal/repository/qdrant"
	"github.com/DRSN-tech/nudge-backend/internal/repository/redis"
	redisConv "github.com/DRSN-tech/nudge-backend/internal/repository/redis/converter"
	"github.com/DRSN-tech/nudge-backend/internal/usecase"
	"github.com/DRSN-tech/nudge-backend/pkg/clients"
	"github.com/DRSN-tech/nudge-backend/pkg/closer"
	"github.com/DRSN-tech/nudge-backend/pkg/e"
	"github.com/DRSN-tech/nudge-backend/pkg/logger"
	"github.com/DRSN-tech/nudge-backend/pkg/postgres"
	"github.com/DRSN-tech/nudge-backend/pkg/tr"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	initTimeout     = 10 * time.Second
	shutdownTimeout = 15 * time.Second
	topicTimeout    = 10 * time.Second
	cleanupWait     = 5 * time.Second
)

// App держит собранные зависимости и серверы. Ресурсы закрываются closer'ом в обратном порядке.
type App struct {
	cfg    *config.Config
	logger logger.Logger
	closer *closer.Closer

	httpSrv *v1Http.Server
	grpcSrv *v1Grpc.GRPCServer
	outbox  *kafka.OutboxWorker

	// отменяется при остановке, чтобы фоновые задачи (очистка MinIO) не висели
	shutdownCtx    context.Context
	shutdownCancel context.CancelFunc
}

// aiStack: модели выбранного провайдера.
type aiStack struct {
	completer ai.Completer
	embedder  interface {
		usecase.Embedder
		Dimensions() int
	}
	images *openai.ImageGenerator
}

func NewApp(cfg *config.Config, log logger.Logger) (*App, error) {
	shutdownCtx, shutdownCancel := context.WithCancel(context.Background())
	a := &App{
		cfg:            cfg,
		logger:         log,
		closer:         closer.NewCloser(5 * time.Second),
		shutdownCtx:    shutdownCtx,
		shutdownCancel: shutdownCancel,
	}

	if err := a.init(); err != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if cerr := a.closer.Close(ctx); cerr != nil {
			log.Warnf("partial init cleanup: %v", cerr)
		}
		shutdownCancel()
		return nil, err
	}

	return a, nil
}

func (a *App) init() error {
	cfg, log := a.cfg, a.logger

	// === Postgres ===
	db, err := initPGDB(log, cfg)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("postgres", func(context.Context) error {
		db.Close()
		log.Infof("Postgres pool closed")
		return nil
	})
	// срабатывает после ожидания очистки MinIO: прерывает то, что не успело
	a.closer.Add("shutdown context", func(context.Context) error {
		a.shutdownCancel()
		return nil
	})

	projectRepo := pgdb.NewProjectRepo(db.Pool, pgdbConv.NewProjectConverterImpl())
	assetRepo := pgdb.NewAssetRepo(db.Pool, pgdbConv.NewAssetConverterImpl())
	outboxRepo := pgdb.NewOutboxEventRepo(db.Pool, pgdbConv.NewOutboxEventConverterImpl())
	txManager := tr.NewManager(db.Pool)

	// === MinIO ===
	minioClient, err := clients.NewMinIOClient(cfg.Minio)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	minioCtx, minioCancel := context.WithTimeout(context.Background(), initTimeout)
	defer minioCancel()
	if err := clients.EnsureBucket(minioCtx, minioClient, cfg.Minio.BucketName); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	imageRepo := s3Repo.NewImageRepo(minioClient, cfg.Minio)
	imagesInfra := minioInfra.NewMinioInfrastructure(imageRepo, log, a.shutdownCtx)
	a.closer.Add("minio cleanup", func(context.Context) error {
		waitCtx, cancel := context.WithTimeout(context.Background(), cleanupWait)
		defer cancel()
		if err := imagesInfra.WaitForCleanup(waitCtx); err != nil {
			log.Warnf("MinIO cleanup did not finish before shutdown, some temporary objects may remain: %v", err)
			return nil
		}
		log.Infof("MinIO cleanup completed")
		return nil
	})

	// === Qdrant ===
	qdrantClient, err := clients.NewQdrantClient(cfg.Qdrant)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("qdrant", func(context.Context) error {
		return qdrantClient.Close()
	})

	qdrantCtx, qdrantCancel := context.WithTimeout(context.Background(), initTimeout)
	defer qdrantCancel()
	if err := clients.EnsureCollection(qdrantCtx, qdrantClient); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	embRepo := qdrantRepo.NewEmbeddingRepo(qdrantClient.Client, cfg.Qdrant)

	// === Redis ===
	redisClient := clients.NewRedisClient(cfg.Redis)
	a.closer.Add("redis", func(context.Context) error {
		return redisClient.Close()
	})

	redisCtx, redisCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer redisCancel()
	if err := redisClient.Ping(redisCtx); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	cacheRepo := redis.NewCacheRepo(redisClient, redisConv.NewProjectConverterImpl(), cfg.Redis, log)

	// === AI ===
	models, err := a.initAI()
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	if uint64(models.embedder.Dimensions()) != cfg.Qdrant.VectorSize {
		log.Warnf("embedding dimensions %d differ from qdrant vector size %d", models.embedder.Dimensions(), cfg.Qdrant.VectorSize)
	}

	prompts, err := ai.LoadPrompts(cfg.AI.PromptsPath)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	extractor := ai.NewExtractor(models.completer, prompts, log)
	variations := ai.NewVariationGenerator(models.completer, prompts)

	var similarityRepo usecase.SimilarityRepository = assetRepo
	if cfg.Explore.VectorBackend == config.BackendQdrant {
		similarityRepo = embRepo
	}
	log.Infof("similarity search backend: %s", cfg.Explore.VectorBackend)

	// === Usecases ===
	searcher := usecase.NewSimilaritySearch(models.embedder, similarityRepo, cfg.Explore.MatchThreshold, log)
	synthesizer := usecase.NewSynthesizer(variations, models.images, imagesInfra, usecase.SynthesizerCfg{
		PromptPrefix: prompts.ImagePrefix,
		MaxRetries:   cfg.Explore.ImageMaxRetries,
		RetryDelay:   cfg.Explore.ImageRetryDelay,
	}, log)

	projectUC := usecase.NewProjectUC(projectRepo, outboxRepo, txManager, extractor, models.embedder, cacheRepo, log)
	assetUC := usecase.NewAssetUC(assetRepo, outboxRepo, txManager, extractor, models.embedder, embRepo, log)
	exploreUC := usecase.NewExploreUC(extractor, projectUC, searcher, synthesizer, log)

	// === Kafka ===
	producer, err := kafka.NewProducer(log, cfg.Kafka)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.Add("kafka producer", func(context.Context) error {
		return producer.Close()
	})

	if err := producer.EnsureTopic(topicTimeout); err != nil {
		// топик может создаваться брокером автоматически
		log.Warnf("failed to ensure kafka topic %s: %v", cfg.Kafka.Topic, err)
	}

	a.outbox = kafka.NewOutboxWorker(outboxRepo, log, producer, db.Dsn)

	// === Delivery ===
	a.grpcSrv = v1Grpc.NewGRPCServer(cfg.Grpc, log)
	a.grpcSrv.RegisterServices(exploreUC)

	r := chi.NewRouter()
	v1Http.NewRouter(r, log).Init(exploreUC, projectUC, assetUC)
	a.httpSrv = v1Http.NewServer(r, cfg.Http)

	return nil
}

func (a *App) initAI() (*aiStack, error) {
	cfg := a.cfg.AI
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	stack := &aiStack{
		images: openai.NewImageGenerator(cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.ImageModel, cfg.ImageTimeout),
	}

	switch cfg.Provider {
	case config.ProviderGemini:
		client, err := gemini.NewClient(ctx, cfg.GeminiKey, cfg.GeminiChatModel, cfg.GeminiEmbeddingModel, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		a.closer.Add("gemini", func(context.Context) error {
			return client.Close()
		})
		stack.completer = client
		stack.embedder = client

	default:
		chat, err := openai.NewChatCompleter(ctx, cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.ChatModel, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		embedder, err := openai.NewEmbedder(ctx, cfg.OpenAIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel, cfg.EmbeddingDimensions, cfg.Timeout)
		if err != nil {
			return nil, err
		}
		stack.completer = chat
		stack.embedder = embedder
	}

	a.logger.Infof("ai provider: %s", cfg.Provider)
	return stack, nil
}

// Run запускает серверы и outbox-воркер и блокируется до сигнала или падения сервера.
func (a *App) Run() error {
	a.outbox.Start(a.shutdownCtx)
	a.closer.Add("outbox worker", a.outbox.Stop)

	grpcErrCh := make(chan error, 1)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := a.grpcSrv.Start(); err != nil {
			grpcErrCh <- err
		}
	}()
	a.closer.Add("grpc server", func(ctx context.Context) error {
		if err := a.grpcSrv.Stop(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return nil
	})

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := a.httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	a.closer.Add("http server", func(ctx context.Context) error {
		if err := a.httpSrv.Stop(ctx); err != nil {
			return err
		}
		a.logger.Infof("HTTP server stopped")
		return nil
	})

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case appErr = <-grpcErrCh:
		a.logger.Errorf(appErr, "gRPC server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	// === Graceful shutdown ===
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.closer.Close(ctx); err != nil {
		a.logger.Errorf(err, "shutdown finished with errors")
	}

	a.logger.Infof("Application shutdown complete")
	return appErr
}

func initPGDB(logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	ctx, cancel := context.WithTimeout(context.Background(), initTimeout)
	defer cancel()

	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		logger.Errorf(err, "failed to run migrations")
		db.Close()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
