package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/codariq/sentidoc/api/handlers"
	"github.com/codariq/sentidoc/api/routes"
	"github.com/codariq/sentidoc/config"
	"github.com/codariq/sentidoc/internal/decompose"
	"github.com/codariq/sentidoc/internal/enrich"
	"github.com/codariq/sentidoc/internal/extract"
	"github.com/codariq/sentidoc/internal/nlp"
	"github.com/codariq/sentidoc/internal/service/ingest"
	"github.com/codariq/sentidoc/internal/status"
	"github.com/codariq/sentidoc/internal/store/sqlite"
	"github.com/codariq/sentidoc/pkg/logger"
	"github.com/codariq/sentidoc/pkg/queue"
	"github.com/codariq/sentidoc/pkg/storage"
	"github.com/codariq/sentidoc/pkg/worker"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := logger.NewLogger(
		logger.WithLevel(cfg.Log.Level),
		logger.WithEncoding(cfg.Log.Encoding),
		logger.WithOutputPaths(cfg.Log.OutputPaths),
	)
	if err != nil {
		os.Stderr.WriteString("failed to create logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := sqlite.Open(ctx, cfg.Database.Path)
	if err != nil {
		log.Fatal("Failed to open database", logger.Error(err))
	}
	defer store.Close()

	blobs, err := storage.New(storage.Type(cfg.Storage.Backend), cfg.Storage.LocalDir, log)
	if err != nil {
		log.Fatal("Failed to create storage backend", logger.Error(err))
	}

	engine, err := nlp.NewEngine()
	if err != nil {
		log.Fatal("Failed to initialize language engine", logger.Error(err))
	}

	var imageEngine extract.ImageEngine
	switch cfg.OCR.Engine {
	case "textract":
		imageEngine, err = extract.NewTextractEngine(ctx, log)
		if err != nil {
			log.Fatal("Failed to initialize textract", logger.Error(err))
		}
	default:
		imageEngine = extract.NewTesseractEngine(cfg.OCR.Languages, log)
	}
	extractor := extract.New(imageEngine, log)
	decomposer := decompose.New(engine)

	var tracker status.Tracker
	if cfg.Redis.Addr != "" {
		rt, err := status.NewRedisTracker(ctx, cfg.Redis.Addr, os.Getenv("REDIS_PASSWORD"), cfg.Redis.DB)
		if err != nil {
			log.Fatal("Failed to connect to redis", logger.Error(err))
		}
		defer rt.Close()
		tracker = rt
	} else {
		tracker = status.NewMemoryTracker()
	}

	queueOpts := []queue.Option{queue.WithCapacity(cfg.Pipeline.QueueCapacity)}
	if cfg.Pipeline.FullPolicy == "reject" {
		queueOpts = append(queueOpts, queue.WithFullPolicy(queue.Reject))
	}
	taskQueue := queue.New(queueOpts...)

	svc := ingest.New(taskQueue, blobs, store, extractor, decomposer, tracker, log, ingest.Config{})

	pool := worker.NewPool(worker.Config{
		Size:        cfg.Pipeline.Workers,
		DrainOnStop: cfg.Pipeline.DrainOnShutdown,
	}, taskQueue, svc.Process, log.Named("worker"))
	pool.Start(ctx)

	h := handlers.New(svc, store, enrich.New(cfg.Insight), log)
	router := routes.Setup(h)

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		log.Info("Server starting", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server failed", logger.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	// Stop accepting uploads first, then let the pool drain per config.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", logger.Error(err))
	}

	pool.Stop()
	log.Info("Server stopped")
}
