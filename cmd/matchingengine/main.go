package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/efreitasn/matchingengine/internal/config"
	"github.com/efreitasn/matchingengine/internal/domain"
	"github.com/efreitasn/matchingengine/internal/engine"
	"github.com/efreitasn/matchingengine/internal/events"
	"github.com/efreitasn/matchingengine/internal/handler"
	"github.com/efreitasn/matchingengine/internal/metrics"
	"github.com/efreitasn/matchingengine/internal/service"
	"github.com/efreitasn/matchingengine/internal/store"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Metrics.
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		logger.Error("failed to register metrics", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Engine.
	books := store.NewBookStore()
	factory := engine.NewBookFactory(engine.NewPriceTimeMatcher(), cfg.PriceScale)

	// Event distribution: Kafka when brokers are configured, log otherwise.
	broker := events.NewBroker(logger, m)
	var kafkaConsumer *events.KafkaConsumer
	if cfg.KafkaEnabled() {
		kafkaConsumer = events.NewKafkaConsumer(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		broker.Subscribe(kafkaConsumer)
		logger.Info("publishing events to kafka",
			slog.Any("brokers", cfg.KafkaBrokers),
			slog.String("topic", cfg.KafkaTopic),
		)
	} else {
		broker.Subscribe(events.NewLogConsumer(logger))
	}

	// Command executor.
	exec := service.NewExecutor(service.ExecutorConfig{
		Workers:   cfg.WorkerCount,
		QueueSize: cfg.WorkerQueueSize,
	}, logger, m)
	exec.Register(domain.CommandTypeCreateInstrument, service.NewInstrumentHandler(books, factory, logger))
	exec.Register(domain.CommandTypePlaceOrder,
		service.NewPlaceOrderHandler(books, service.NewOrderTransformer(cfg.PriceScale), broker, logger))
	exec.Register(domain.CommandTypeCancelOrder, service.NewCancelOrderHandler(books, broker, logger))

	// Router.
	router := handler.NewRouter(exec, books, m.Handler(), logger)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.Int("workers", cfg.WorkerCount),
			slog.Int("price_scale", int(cfg.PriceScale)),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown: stop intake, drain the workers, then drain events.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}

	execCtx, execCancel := context.WithTimeout(context.Background(), cfg.ExecutorShutdownGrace)
	defer execCancel()
	if err := exec.Shutdown(execCtx); err != nil {
		logger.Error("executor shutdown error", slog.String("error", err.Error()))
	}

	brokerCtx, brokerCancel := context.WithTimeout(context.Background(), cfg.BrokerShutdownGrace)
	defer brokerCancel()
	if err := broker.Shutdown(brokerCtx); err != nil {
		logger.Error("event broker shutdown error", slog.String("error", err.Error()))
	}

	if kafkaConsumer != nil {
		if err := kafkaConsumer.Close(); err != nil {
			logger.Error("kafka writer close error", slog.String("error", err.Error()))
		}
	}

	logger.Info("server stopped")
}
