package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	app "github.com/hearthhub/configflow"
	"github.com/hearthhub/configflow/internal/archive"
	"github.com/hearthhub/configflow/internal/config"
	"github.com/hearthhub/configflow/internal/definition"
	"github.com/hearthhub/configflow/internal/discovery"
	"github.com/hearthhub/configflow/internal/engine"
	"github.com/hearthhub/configflow/internal/handlers"
	"github.com/hearthhub/configflow/internal/proxy"
	"github.com/hearthhub/configflow/internal/server"
	"github.com/hearthhub/configflow/internal/store"
	"github.com/hearthhub/configflow/pkg/log"
)

type configflow struct {
	cfg         *config.Config
	flowStore   *store.Store
	definitions *definition.Store
	engine      *engine.Engine
	archiver    *archive.Worker
	apiServer   *server.Server
	httpServer  *http.Server
	quit        chan os.Signal
}

var (
	ErrConnectRedis      = errors.New("failed to connect to redis")
	ErrOpenDefinitions   = errors.New("failed to open definition store")
	ErrOpenArchiveBucket = errors.New("failed to open archive bucket")
	ErrRegisterHandlers  = errors.New("failed to register handlers")
)

func main() {
	cfg := config.NewDefaultConfig()
	if err := cfg.LoadFromEnv(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", log.Error(err))
		os.Exit(1)
	}

	s := &configflow{
		cfg:  cfg,
		quit: make(chan os.Signal, 1),
	}
	s.setupLogging()

	if err := s.run(); err != nil {
		slog.Error("Failed to start application", log.Error(err))
		os.Exit(1)
	}
}

func (s *configflow) run() error {
	if err := s.initializeStores(); err != nil {
		return err
	}

	if err := s.initializeEngine(); err != nil {
		return err
	}
	s.startServer()

	signal.Notify(s.quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(s.quit)
	<-s.quit

	s.shutdown()
	return nil
}

func (s *configflow) setupLogging() {
	level := log.ParseLevel(s.cfg.LogLevel)
	env := os.Getenv("ENV")
	logger := log.NewWithLevel(app.Name, env, app.Version, level)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level)

	slog.Info("Config flow service starting",
		slog.String("log_level", s.cfg.LogLevel))

	slog.Info("Configuration loaded",
		slog.String("redis_addr", s.cfg.FlowStore.Addr),
		slog.Int("redis_db", s.cfg.FlowStore.DB),
		slog.String("definition_db", s.cfg.DefinitionDBPath),
		slog.String("hub_base_url", s.cfg.HubBaseURL),
		slog.String("api_host", s.cfg.APIHost),
		slog.Int("api_port", s.cfg.APIPort))
}

func (s *configflow) initializeStores() error {
	s.flowStore = store.New(s.cfg.FlowStore)
	if err := s.flowStore.Ping(context.Background()); err != nil {
		return fmt.Errorf("%w: %w", ErrConnectRedis, err)
	}

	defs, err := definition.Open(s.cfg.DefinitionDBPath)
	if err != nil {
		_ = s.flowStore.Close()
		return fmt.Errorf("%w: %w", ErrOpenDefinitions, err)
	}
	s.definitions = defs
	return nil
}

func (s *configflow) initializeEngine() error {
	hubClient := proxy.NewHTTPHubClient(
		s.cfg.HubBaseURL, s.cfg.HubToken, s.cfg.HubTimeout,
	)
	registry := engine.NewRegistry(proxy.NewFactory(hubClient))

	err := handlers.RegisterBuiltinHandlers(
		context.Background(), registry, s.definitions, s.cfg.NestAuthURL,
	)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRegisterHandlers, err)
	}

	s.engine = engine.New(engine.Options{
		Registry:         registry,
		Flows:            s.flowStore,
		Definitions:      s.definitions,
		Discovery:        discovery.None{},
		DiscoveryTimeout: s.cfg.DiscoveryTimeout,
	})

	if s.cfg.Archive.Enabled {
		blobs, err := archive.NewBlobArchiver(
			context.Background(), s.cfg.Archive.BucketURL,
		)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrOpenArchiveBucket, err)
		}
		s.archiver = archive.NewWorker(
			s.flowStore, blobs, s.engine.Hub(), archive.Config{
				CheckInterval: s.cfg.Archive.CheckInterval,
				MaxAge:        s.cfg.Archive.MaxAge,
			},
		)
		s.archiver.Start()
	}
	return nil
}

func (s *configflow) startServer() {
	s.apiServer = server.NewServer(s.engine)
	mux := s.apiServer.SetupRoutes()

	s.httpServer = &http.Server{
		Addr:    fmt.Sprintf("%s:%d", s.cfg.APIHost, s.cfg.APIPort),
		Handler: mux,
	}

	go func() {
		slog.Info("HTTP server starting",
			slog.String("addr", s.httpServer.Addr))
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", log.Error(err))
		}
	}()
}

func (s *configflow) shutdown() {
	slog.Info("Shutting down")

	ctx, cancel := context.WithTimeout(
		context.Background(), s.cfg.ShutdownTimeout,
	)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		slog.Error("Shutdown failed", log.Error(err))
	}

	s.apiServer.CloseWebSockets()

	if s.archiver != nil {
		s.archiver.Stop()
	}
	s.engine.Hub().Close()

	if err := s.definitions.Close(); err != nil {
		slog.Error("Definition store close failed", log.Error(err))
	}
	if err := s.flowStore.Close(); err != nil {
		slog.Error("Flow store close failed", log.Error(err))
	}

	slog.Info("Server exited")
}
