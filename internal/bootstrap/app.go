package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/ai"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/app"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/cache"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/config"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/locator"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/pkg/chunker"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/pkg/pdfextract"
	postgresClient "github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/platform/postgres"
	rabbitmqClient "github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/platform/rabbitmq"
	redisClient "github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/platform/redis"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/repository"
	"github.com/YANCARLOSOFICIAL/chatpdf-IA/internal/worker"
)

type App struct {
	Config *config.Config
	DB     *gorm.DB
	Redis  *redis.Client
	MQConn *amqp.Connection

	IngestService *app.IngestService
	QueryService  *app.QueryService
	SpanWorker    *worker.SpanLocateWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	db, err := postgresClient.New(ctx, cfg.PostgresDSN())
	if err != nil {
		return nil, err
	}
	if err := postgresClient.Migrate(db, cfg.OpenAI.EmbeddingDims); err != nil {
		return nil, err
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(ctx, cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	docRepo := repository.NewDocumentRepository(db)
	chunkRepo := repository.NewChunkRepository(db)
	spanRepo := repository.NewSpanRepository(db)

	providers := ai.NewRegistry(cfg)
	answerCache := cache.NewAnswerCache(redisCli, time.Duration(cfg.Redis.AnswerTTLSeconds)*time.Second)
	publisher := rabbitmqClient.NewSpanTaskPublisher(mqConn, cfg.RabbitMQ.SpanLocateQueue)

	extractor := pdfextract.New(cfg.Ingest.MinNativeText, cfg.Ingest.OCRDPI, cfg.Ingest.OCRLanguage)
	splitter := chunker.New(cfg.Ingest.MaxChunkChars)

	ingestService := app.NewIngestService(
		docRepo,
		chunkRepo,
		spanRepo,
		providers,
		publisher,
		answerCache,
		extractor,
		splitter,
		cfg.Ingest.StorageDir,
	)
	queryService := app.NewQueryService(
		docRepo,
		chunkRepo,
		spanRepo,
		providers,
		answerCache,
		cfg.Query.TopK,
		cfg.Query.PreviewChars,
	)

	spanWorker := worker.NewSpanLocateWorker(
		mqConn,
		docRepo,
		chunkRepo,
		spanRepo,
		locator.New(),
		cfg.RabbitMQ.SpanLocateQueue,
	)
	if err := spanWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start span locate worker failed: %w", err)
	}

	return &App{
		Config:        cfg,
		DB:            db,
		Redis:         redisCli,
		MQConn:        mqConn,
		IngestService: ingestService,
		QueryService:  queryService,
		SpanWorker:    spanWorker,
		StartedAt:     time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.SpanWorker != nil {
		a.SpanWorker.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.DB != nil {
		sqlDB, err := a.DB.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}
