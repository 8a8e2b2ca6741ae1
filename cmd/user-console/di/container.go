package di

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-console/cmd/user-console/infrastructure"
	"user-console/internal/adapter/cache"
	"user-console/internal/adapter/db/gormrepo"
	"user-console/internal/adapter/gin/handler"
	"user-console/internal/adapter/gin/middleware"
	"user-console/internal/adapter/gin/router"
	"user-console/internal/adapter/gin/webconsole"
	"user-console/internal/adapter/repository/cached"
	"user-console/internal/adapter/rest"
	"user-console/internal/config"
	"user-console/internal/usecase/user"
	redisclient "user-console/pkg/redis"
)

// Container holds all application dependencies. The API fields are nil when
// API_ENABLED is off.
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	// reference users API
	DB          *gorm.DB
	RedisClient *redisclient.Client
	UserUC      user.Usecase
	RateLimiter *middleware.RateLimiter
	UserHandler *handler.UserHandler

	// web console
	Remote         *rest.Client
	Sessions       *webconsole.Registry
	ConsoleHandler *webconsole.Handler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}

	if cfg.App.APIEnabled {
		if err := c.initAPI(ctx); err != nil {
			_ = c.Close()
			return nil, err
		}
	}

	remote, err := NewRemote(cfg, l)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Remote = remote

	c.Sessions = webconsole.NewRegistry(remote, webconsole.RegistryConfig{
		SessionTTL:      cfg.Console.SessionTTL(),
		NotificationTTL: cfg.Console.NotificationTTL(),
	}, l.Named("console"))

	c.ConsoleHandler = webconsole.NewHandler(c.Sessions, webconsole.Config{
		ServiceName:    cfg.Logger.ServiceName,
		RequestTimeout: cfg.Console.RequestTimeout(),
		SecureCookie:   cfg.App.Env == "production",
	}, l.Named("console"))

	return c, nil
}

// initAPI wires database -> optional Redis cache -> usecase -> handler.
func (c *Container) initAPI(ctx context.Context) error {
	cfg, l := c.Config, c.Logger.Named("api")

	db, err := infrastructure.NewDatabase(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	c.DB = db

	dbRepo := gormrepo.NewUserRepo(db, l)
	if cfg.DB.Seed {
		if err := infrastructure.SeedDatabase(ctx, dbRepo); err != nil {
			return err
		}
	}

	rdb, err := infrastructure.NewRedisClient(ctx, cfg, l)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	c.RedisClient = rdb

	var repo user.Repository = dbRepo
	if rdb != nil {
		userCache := cache.NewRedisUserCache(rdb.Client, time.Duration(cfg.Redis.CacheTTL)*time.Second, l)
		repo = cached.NewUserRepository(dbRepo, userCache, l)

		c.RateLimiter = middleware.NewRateLimiter(rdb.Client, middleware.RateLimitConfig{
			Enabled:           cfg.RateLimit.Enabled,
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.BurstCapacity,
		}, l)
	}

	c.UserUC = user.New(repo, l)
	c.UserHandler = handler.NewUserHandler(c.UserUC, l)
	return nil
}

// NewRemote builds the REST client the consoles use to reach API_BASE_URL.
func NewRemote(cfg *config.Config, l *zap.Logger) (*rest.Client, error) {
	remote, err := rest.NewClient(rest.Config{
		BaseURL: cfg.Console.APIBaseURL,
		Timeout: cfg.Console.RequestTimeout(),
	}, nil, l.Named("rest"))
	if err != nil {
		return nil, fmt.Errorf("failed to create users API client: %w", err)
	}
	return remote, nil
}

// APIRouter returns the users API engine, or nil when the API is disabled.
func (c *Container) APIRouter() *gin.Engine {
	if c.UserHandler == nil {
		return nil
	}
	return router.SetupRouter(c.UserHandler, c.RateLimiter, c.Config.Logger.ServiceName, c.Logger.Named("api"))
}

// ConsoleRouter returns the web console engine.
func (c *Container) ConsoleRouter() (*gin.Engine, error) {
	return webconsole.SetupRouter(c.ConsoleHandler, c.Logger.Named("console"))
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.Sessions != nil {
		c.Sessions.Close()
	}

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
