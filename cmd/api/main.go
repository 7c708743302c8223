// cmd/api/main.go

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"

	"convosense/internal/adapter/notify"
	"convosense/internal/adapter/storage"
	"convosense/internal/config"
	"convosense/internal/domain/analysis"
	"convosense/internal/server"
	"convosense/internal/service/acquisition"
	"convosense/internal/service/classify"
	"convosense/internal/service/pipeline"
	"convosense/internal/service/topics"
)

func main() {
	// Load .env for local development; absence is fine
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Setup context with cancellation for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	// Initialize dependencies
	db, err := initDatabase(ctx, cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	natsConn, err := initNATS(cfg.NATS)
	if err != nil {
		log.Fatalf("Failed to connect to NATS: %v", err)
	}
	defer natsConn.Close()

	// Initialize storage adapters
	reportStore := storage.NewReportStore(db)
	userStore := storage.NewUserStore(db)

	// Classifier construction happens once, here, outside any per-run
	// path; instances are shared read-only across all runs.
	fetcher := initFetcher(cfg.Twitter)
	sentiment, sentimentFallback := initSentiment(cfg.Classify)
	toxicity, toxicityFallback := initToxicity(cfg.Classify)
	extractor := topics.NewLDAExtractor(cfg.Topics.TermsPerTopic)

	runner := classify.NewRunner(classify.Options{
		TruncationLength:    cfg.Classify.TruncationLength,
		ChunkSize:           cfg.Classify.ChunkSize,
		InterRequestDelay:   cfg.Classify.InterRequestDelay,
		NeutralityThreshold: cfg.Classify.NeutralityThreshold,
	})

	// Initialize analysis pipeline
	analysisPipeline := pipeline.New(
		fetcher,
		sentiment,
		sentimentFallback,
		toxicity,
		toxicityFallback,
		extractor,
		runner,
		notify.NewNATSSink(natsConn),
		reportStore,
		pipeline.Config{
			MaxItems:  cfg.Twitter.MaxItems,
			NumTopics: cfg.Topics.NumTopics,
		},
	)

	// Initialize HTTP server
	httpServer := server.NewServer(
		cfg.Server,
		natsConn,
		analysisPipeline,
		reportStore,
		userStore,
		server.Health{
			MockMode:       cfg.Twitter.MockMode,
			ToxicityAPISet: cfg.Classify.PerspectiveAPIKey != "",
		},
	)

	// Start HTTP server
	go func() {
		log.Printf("Starting HTTP server on %s:%d", cfg.Server.Host, cfg.Server.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	// Wait for shutdown signal
	<-shutdown
	log.Println("Shutdown signal received")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	// Graceful shutdown
	log.Println("Shutting down services...")

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
}

// Initialize database connection
func initDatabase(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	connString := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database, cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.MaxLifetime

	db, err := pgxpool.ConnectConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	// Test connection
	if err := db.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return db, nil
}

// Initialize NATS connection
func initNATS(cfg config.NATSConfig) (*nats.Conn, error) {
	options := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.Timeout(cfg.ConnectTimeout),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Printf("NATS disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("NATS reconnected to %s", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Printf("NATS connection closed")
		}),
	}

	nc, err := nats.Connect(cfg.URL, options...)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to NATS: %w", err)
	}

	return nc, nil
}

// Initialize the acquisition source
func initFetcher(cfg config.TwitterConfig) analysis.Fetcher {
	if cfg.MockMode || cfg.BearerToken == "" {
		log.Println("Acquisition: sample generator (mock mode)")
		return acquisition.NewSampleFetcher()
	}

	log.Println("Acquisition: Twitter recent search")
	return acquisition.NewTwitterFetcher(cfg.BearerToken)
}

// Initialize sentiment classifiers: the operating variant and the per-item
// fallback the runner substitutes on call failures
func initSentiment(cfg config.ClassifyConfig) (analysis.SentimentClassifier, analysis.SentimentClassifier) {
	fallback := classify.NewLexiconSentimentClassifier()

	if cfg.SentimentEndpoint == "" {
		log.Println("Sentiment: lexicon classifier (no endpoint configured)")
		return fallback, fallback
	}

	log.Println("Sentiment: remote inference endpoint")
	return classify.NewRemoteSentimentClassifier(cfg.SentimentEndpoint, cfg.SentimentToken), fallback
}

// Initialize toxicity classifiers: the operating variant and the per-item
// fallback the runner substitutes on call failures
func initToxicity(cfg config.ClassifyConfig) (analysis.ToxicityClassifier, analysis.ToxicityClassifier) {
	fallback := classify.NewKeywordToxicityClassifier()

	if cfg.PerspectiveAPIKey == "" {
		log.Println("Toxicity: keyword classifier (no API key configured)")
		return fallback, fallback
	}

	log.Println("Toxicity: Perspective API")
	return classify.NewPerspectiveClassifier(cfg.PerspectiveAPIKey), fallback
}
