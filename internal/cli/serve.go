package cli

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bitbybit/go-battleship/internal/factory"
	"github.com/bitbybit/go-battleship/internal/httpserver"
	redisstorage "github.com/bitbybit/go-battleship/internal/storage/redis"
	"github.com/bitbybit/go-battleship/internal/web"
)

// Port defaults, overridable via flags or PORT_HTTP / PORT_WS
const (
	DefaultPortHTTP = 8181
	DefaultPortWS   = 3000
)

type serveConfig struct {
	PortHTTP    int
	PortWS      int
	StorageType string
	RedisURL    string
	StaticDir   string
}

func newServeCmd() *cobra.Command {
	cfg := serveConfig{
		PortHTTP:    envInt("PORT_HTTP", DefaultPortHTTP),
		PortWS:      envInt("PORT_WS", DefaultPortWS),
		StorageType: envString("STORAGE_TYPE", factory.StorageTypeMemory),
		RedisURL:    os.Getenv("REDIS_URL"),
		StaticDir:   envString("STATIC_DIR", web.FindStaticDir()),
	}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the game and static servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cfg)
		},
	}

	cmd.Flags().IntVar(&cfg.PortHTTP, "http-port", cfg.PortHTTP, "Static server port (env: PORT_HTTP)")
	cmd.Flags().IntVar(&cfg.PortWS, "ws-port", cfg.PortWS, "Websocket server port (env: PORT_WS)")
	cmd.Flags().StringVar(&cfg.StorageType, "storage", cfg.StorageType, "Storage backend: memory, redis (env: STORAGE_TYPE)")
	cmd.Flags().StringVar(&cfg.RedisURL, "redis-url", cfg.RedisURL, "Redis URL when storage is redis (env: REDIS_URL)")
	cmd.Flags().StringVar(&cfg.StaticDir, "static-dir", cfg.StaticDir, "Client bundle directory (env: STATIC_DIR)")

	return cmd
}

func runServe(cfg serveConfig) error {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	factoryCfg := factory.Config{
		Logger:      logger,
		StorageType: cfg.StorageType,
	}
	if cfg.StorageType == factory.StorageTypeRedis {
		redisCfg := redisstorage.DefaultConfig()
		if cfg.RedisURL != "" {
			redisCfg.URL = cfg.RedisURL
		}
		factoryCfg.RedisConfig = &redisCfg
	}

	app, err := factory.New(factoryCfg)
	if err != nil {
		return err
	}

	staticServer := httpserver.New(
		web.NewStaticRouter(cfg.StaticDir, logger),
		httpserver.DefaultConfig(cfg.PortHTTP),
		logger,
	)
	gameServer := httpserver.New(
		web.NewGameRouter(app.Supervisor),
		httpserver.DefaultConfig(cfg.PortWS),
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutdown signal received")
		cancel()
	}()

	errCh := make(chan error, 2)
	go func() { errCh <- staticServer.Start() }()
	go func() { errCh <- gameServer.Start() }()

	logger.Info("battleship server started",
		slog.String("static_addr", staticServer.Addr()),
		slog.String("game_addr", gameServer.Addr()),
	)

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	// Drain live games first, then close the listeners; the process only
	// ends once both listeners report closed.
	shutdownCtx := context.Background()
	if err := app.Supervisor.Shutdown(shutdownCtx); err != nil {
		logger.Error("supervisor shutdown error", slog.String("error", err.Error()))
	}
	if err := gameServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := staticServer.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("battleship server stopped")
	return nil
}

func envString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
