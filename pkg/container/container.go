package container

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"promptstore-backend/internal/config"
	infraCache "promptstore-backend/internal/infrastructure/cache"
	"promptstore-backend/internal/infrastructure/database"
	"promptstore-backend/pkg/cache"

	categoryHandler "promptstore-backend/internal/domains/category/handler"
	categoryRepo "promptstore-backend/internal/domains/category/repository"
	categoryService "promptstore-backend/internal/domains/category/service"
	moderationHandler "promptstore-backend/internal/domains/moderation/handler"
	moderationService "promptstore-backend/internal/domains/moderation/service"
	promptHandler "promptstore-backend/internal/domains/prompt/handler"
	promptRepo "promptstore-backend/internal/domains/prompt/repository"
	promptService "promptstore-backend/internal/domains/prompt/service"
)

// Container chứa toàn bộ dependency graph của application.
// Thứ tự initialization: Config -> Infrastructure -> Repositories ->
// Services -> Handlers. Sai thứ tự sẽ panic (nil pointer).
type Container struct {
	Config *config.Config
	DB     *database.PostgresDB
	Cache  cache.Cache

	PromptRepo   promptRepo.PromptRepository
	DraftRepo    promptRepo.DraftRepository
	ChangeStream promptRepo.ChangeStream
	CategoryRepo categoryRepo.CategoryRepository

	BatchService   *promptService.BatchService
	PublishService *promptService.PublishService
	Registry       *categoryService.Registry
	Reconciler     *moderationService.Reconciler

	BatchHandler      *promptHandler.BatchHandler
	CategoryHandler   *categoryHandler.CategoryHandler
	ModerationHandler *moderationHandler.ModerationHandler
}

// NewContainer khởi tạo toàn bộ dependency graph.
func NewContainer() (*Container, error) {
	c := &Container{}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	c.Config = cfg
	log.Info().Str("environment", cfg.App.Environment).Msg("config loaded")

	dbConfig, err := config.LoadDatabaseConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load database config: %w", err)
	}

	db := database.NewPostgresDB(dbConfig)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := db.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := db.HealthCheck(context.Background()); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}
	c.DB = db

	redisCache := infraCache.NewRedisCache(cfg.Redis.Host, cfg.Redis.Password, cfg.Redis.DB)
	rc, ok := redisCache.(*infraCache.RedisCache)
	if !ok {
		return nil, fmt.Errorf("unexpected redis cache implementation")
	}
	// Redis mất kết nối không phải critical cho startup: drafts và cache
	// degrade, pipeline vẫn chạy được.
	if err := rc.Connect(context.Background()); err != nil {
		log.Warn().Err(err).Msg("redis connection failed (non-critical)")
	}
	c.Cache = redisCache

	c.initRepositories(rc)
	c.initServices()
	c.initHandlers()

	// Reconciler cần stream + backend sẵn sàng, start cuối cùng.
	if err := c.Reconciler.Start(context.Background()); err != nil {
		log.Warn().Err(err).Msg("moderation reconciler start failed (non-critical)")
	}

	log.Info().Msg("DI container initialized")
	return c, nil
}

func (c *Container) initRepositories(rc *infraCache.RedisCache) {
	pool := c.DB.Pool

	c.PromptRepo = promptRepo.NewPostgresRepository(pool)
	c.DraftRepo = promptRepo.NewRedisDraftRepository(c.Cache, c.Config.Ingest.DraftTTL)
	c.ChangeStream = promptRepo.NewRedisChangeStream(rc.Client)
	c.CategoryRepo = categoryRepo.NewPostgresRepository(pool)
}

func (c *Container) initServices() {
	ingest := c.Config.Ingest

	c.Registry = categoryService.NewRegistry(c.CategoryRepo, c.Cache, ingest.CategoryCacheTTL)

	detector := promptService.NewRatioDetector(ingest.RatioTimeout)
	c.BatchService = promptService.NewBatchService(c.DraftRepo, detector, ingest)
	c.PublishService = promptService.NewPublishService(
		c.BatchService,
		c.PromptRepo,
		c.Registry,
		c.ChangeStream,
		ingest.PublishBatchSize,
	)

	c.Reconciler = moderationService.NewReconciler(c.PromptRepo, c.ChangeStream)
}

func (c *Container) initHandlers() {
	c.BatchHandler = promptHandler.NewBatchHandler(c.BatchService, c.PublishService, c.PromptRepo)
	c.CategoryHandler = categoryHandler.NewCategoryHandler(c.Registry)
	c.ModerationHandler = moderationHandler.NewModerationHandler(c.Reconciler)
}

// Cleanup dọn dẹp resources khi graceful shutdown.
func (c *Container) Cleanup() {
	if c.Reconciler != nil {
		c.Reconciler.Stop()
	}

	if c.DB != nil && c.DB.Pool != nil {
		c.DB.Pool.Close()
		log.Info().Msg("database connections closed")
	}

	if rc, ok := c.Cache.(*infraCache.RedisCache); ok {
		if err := rc.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close redis")
		}
	}
}
