package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"go.uber.org/zap"

	"user-console/cmd/user-console/di"
	"user-console/cmd/user-console/server"
	"user-console/internal/adapter/tui"
	"user-console/internal/config"
	"user-console/internal/usecase/console"
	"user-console/pkg/logger"
)

// App is the web console server together with the optional users API.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	Server    *server.Server
	Container *di.Container
}

// New loads configuration from configPath and wires the application.
func New(ctx context.Context, configPath string) (*App, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	l, err := initLogger(cfg, cfg.Logger.OutputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	container, err := di.NewContainer(ctx, cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to create container: %w", err)
	}

	consoleRouter, err := container.ConsoleRouter()
	if err != nil {
		_ = container.Close()
		return nil, err
	}

	var api http.Handler
	if r := container.APIRouter(); r != nil {
		api = r
	}
	srvCfg := server.Config{
		ConsoleAddr:     ":" + cfg.App.HTTPPort,
		APIAddr:         ":" + cfg.App.APIPort,
		ShutdownTimeout: time.Duration(cfg.App.ShutdownTimeoutSeconds) * time.Second,
	}

	return &App{
		Config:    cfg,
		Logger:    l,
		Server:    server.New(srvCfg, consoleRouter, api, container.Sessions, l),
		Container: container,
	}, nil
}

// Run serves until ctx is done, then releases every resource.
func (a *App) Run(ctx context.Context) error {
	a.Logger.Info("starting application",
		zap.String("service", a.Config.Logger.ServiceName),
		zap.String("version", a.Config.Logger.ServiceVersion),
		zap.String("environment", a.Config.App.Env),
		zap.String("console_port", a.Config.App.HTTPPort),
		zap.Bool("api_enabled", a.Config.App.APIEnabled),
	)

	runErr := a.Server.Run(ctx)

	var errs []error
	if runErr != nil {
		errs = append(errs, runErr)
	}
	if err := a.Container.Close(); err != nil {
		a.Logger.Error("failed to close container", zap.Error(err))
		errs = append(errs, fmt.Errorf("container close: %w", err))
	}

	a.Logger.Info("application shutdown complete")
	syncLogger(a.Logger)

	return errors.Join(errs...)
}

// RunTUI starts the terminal console against API_BASE_URL. Logs go to the
// configured file, or nowhere when that is the terminal.
func RunTUI(ctx context.Context, configPath string) error {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Console.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	output := cfg.Logger.OutputPath
	if output == "" || output == "stdout" || output == "stderr" {
		output = "discard"
	}
	l, err := initLogger(cfg, output)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer syncLogger(l)

	remote, err := di.NewRemote(cfg, l)
	if err != nil {
		return err
	}

	store := console.NewStore(remote, console.NewNotifications(cfg.Console.NotificationTTL()), l.Named("console"))
	return tui.Run(ctx, store, tui.Options{RequestTimeout: cfg.Console.RequestTimeout()}, l)
}

func initLogger(cfg *config.Config, output string) (*zap.Logger, error) {
	return logger.NewWithConfig(logger.Config{
		Level:            cfg.Logger.Level,
		Format:           cfg.Logger.Format,
		OutputPath:       output,
		SlowQuerySeconds: cfg.Logger.SlowQuerySeconds,
		EnableSampling:   cfg.Logger.EnableSampling,
		ServiceName:      cfg.Logger.ServiceName,
		ServiceVersion:   cfg.Logger.ServiceVersion,
		Environment:      cfg.App.Env,
	})
}

// syncLogger flushes l, ignoring the error stdout and stderr return on sync.
func syncLogger(l *zap.Logger) {
	if err := l.Sync(); err != nil && !errors.Is(err, syscall.EINVAL) && !errors.Is(err, os.ErrInvalid) {
		fmt.Fprintf(os.Stderr, "failed to sync logger: %v\n", err)
	}
}
