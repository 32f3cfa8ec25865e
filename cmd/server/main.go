package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/ignite/seller-directory/internal/api"
	"github.com/ignite/seller-directory/internal/config"
	"github.com/ignite/seller-directory/internal/importer"
	"github.com/ignite/seller-directory/internal/pkg/logger"
	"github.com/ignite/seller-directory/internal/repository/memory"
	"github.com/ignite/seller-directory/internal/repository/postgres"
	"github.com/ignite/seller-directory/internal/storage"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.SetLevel(logger.ParseLevel(cfg.Logging.Level))
	logger.SetRedactPII(cfg.Logging.RedactPIIEnabled())
	appLog := logger.Default()

	if err := checkPortAvailable(cfg.Server.Host, cfg.Server.Port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", cfg.Server.Port)

	// Corpus store: Postgres when configured, in-memory for local dev
	var store importer.CorpusStore
	var jobs importer.JobStore
	if cfg.Database.URL != "" {
		db, err := sql.Open("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
		if err := db.PingContext(context.Background()); err != nil {
			log.Fatalf("Failed to reach database: %v", err)
		}
		store = postgres.NewCorpusRepo(db)
		jobs = postgres.NewJobRepo(db)
		log.Println("Corpus store: PostgreSQL")
	} else {
		store = memory.NewCorpusStore()
		log.Println("Corpus store: in-memory (no DATABASE_URL configured)")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	progress := importer.NewRedisReporter(redisClient)
	reporter := importer.NewFanout(importer.NewLogReporter(appLog), progress)

	opts := []importer.ServiceOption{
		importer.WithSessionStore(importer.NewRedisSessionStore(redisClient)),
		importer.WithProgress(progress),
		importer.WithConcurrency(cfg.Import.WorkerConcurrency),
		importer.WithRunTimeout(cfg.Import.RunTimeout()),
	}
	if jobs != nil {
		opts = append(opts, importer.WithJobStore(jobs))
	}
	if cfg.Archive.Enabled && cfg.Archive.S3Bucket != "" {
		archive, err := storage.NewS3Archive(context.Background(),
			cfg.Archive.S3Bucket, cfg.Archive.S3Region, cfg.Archive.AWSProfile)
		if err != nil {
			log.Printf("Warning: S3 archive disabled: %v", err)
		} else {
			opts = append(opts, importer.WithArchiver(archive))
			log.Printf("S3 archive enabled: bucket %s", cfg.Archive.S3Bucket)
		}
	}

	decoder := importer.NewDecoder(cfg.Import.MaxFileSizeBytes())
	service := importer.NewService(decoder, store, reporter, appLog, opts...)

	handlers := api.NewImportHandlers(service, cfg.Import.MaxFileSizeBytes())
	router := api.SetupRoutes(handlers, cfg.Server.AllowedOrigins)

	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Starting server on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-done
	log.Println("Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}

	log.Println("Server stopped")
}
