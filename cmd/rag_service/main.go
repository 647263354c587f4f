package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"taxcopilot/internal/config"
	"taxcopilot/internal/database/kafka"
	"taxcopilot/internal/database/milvus"
	"taxcopilot/internal/database/minio"
	"taxcopilot/internal/database/mysql"
	"taxcopilot/internal/embedding"
	"taxcopilot/internal/llm"
	"taxcopilot/internal/models"
	"taxcopilot/internal/rag_service/api"
	"taxcopilot/internal/rag_service/dal"
	"taxcopilot/internal/rag_service/events"
	"taxcopilot/internal/rag_service/rag/chunker"
	"taxcopilot/internal/rag_service/rag/extractors"
	"taxcopilot/internal/rag_service/rag/llms"
	"taxcopilot/internal/rag_service/rag/pipeline"
	"taxcopilot/internal/rag_service/rag/storages/blobstore"
	"taxcopilot/internal/rag_service/rag/storages/searchindex"
	"taxcopilot/internal/rag_service/service"
	"taxcopilot/pkg/logger"
)

const httpAddr = ":8080"

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to the configuration file")
	flag.Parse()
	if env := os.Getenv("CONFIG_PATH"); env != "" {
		*configPath = env
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger.Init(logger.ParseLevel(cfg.Logger.Level))
	appLogger := logger.New("taxcopilot")
	appLogger.Info("starting service")

	ctx := context.Background()

	// backing stores
	db, err := mysql.GetDB(&cfg.Databases.MySQL)
	if err != nil {
		log.Fatalf("Failed to connect to MySQL: %v", err)
	}
	if err := db.AutoMigrate(&models.Document{}, &models.AuditLog{}); err != nil {
		log.Fatalf("Failed to migrate database schema: %v", err)
	}

	minioClient, err := minio.GetClient(&cfg.Databases.MinIO)
	if err != nil {
		log.Fatalf("Failed to connect to MinIO: %v", err)
	}

	milvusClient, err := milvus.GetClient(ctx, &cfg.Databases.Milvus)
	if err != nil {
		log.Fatalf("Failed to connect to Milvus: %v", err)
	}

	// model providers
	embedder, err := embedding.NewModel(cfg.Embedding)
	if err != nil {
		log.Fatalf("Failed to create embedding client: %v", err)
	}
	chatModel, err := llm.NewClient(cfg.LLM)
	if err != nil {
		log.Fatalf("Failed to create chat client: %v", err)
	}

	// storage adapters
	blobs, err := blobstore.NewMinioStore(minioClient, cfg.Databases.MinIO.Bucket)
	if err != nil {
		log.Fatalf("Failed to create blob store: %v", err)
	}
	index, err := searchindex.NewMilvusIndex(milvusClient, cfg.Databases.Milvus.Collection, cfg.Embedding.Dimensions)
	if err != nil {
		log.Fatalf("Failed to create search index: %v", err)
	}
	if err := blobs.EnsureBucket(ctx); err != nil {
		log.Fatalf("Failed to ensure bucket: %v", err)
	}
	if err := index.EnsureCollection(ctx); err != nil {
		log.Fatalf("Failed to ensure collection: %v", err)
	}

	var notifier pipeline.StatusNotifier
	var publisher *events.StatusPublisher
	if cfg.Databases.Kafka.Enabled {
		kafkaClient, err := kafka.GetClient(ctx, &cfg.Databases.Kafka)
		if err != nil {
			log.Fatalf("Failed to connect to Kafka: %v", err)
		}
		publisher = events.NewStatusPublisher(kafkaClient)
		notifier = publisher
	}

	// pipelines and facade
	documentDAL := dal.NewDocumentDAL(db)
	auditDAL := dal.NewAuditDAL(db)
	extractor := extractors.NewComposite()
	chk := chunker.New(cfg.Rag.ChunkSizeChars, cfg.Rag.ChunkOverlapChars)
	generator := llms.NewAnswerGenerator(chatModel)

	ingestion := pipeline.NewIngestionPipeline(documentDAL, blobs, extractor, chk, embedder, index, notifier)
	query := pipeline.NewQueryPipeline(embedder, index, generator, auditDAL, cfg.Rag.TopK, cfg.Rag.ContextChunks)
	svc := service.New(documentDAL, auditDAL, blobs, index, extractor, ingestion, query)

	// HTTP server
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	api.RegisterRoutes(router, api.NewHandler(svc))

	server := &http.Server{
		Addr:    httpAddr,
		Handler: router,
	}

	go func() {
		appLogger.Info(fmt.Sprintf("HTTP server listening at %s", httpAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to serve HTTP: %v", err)
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Error("HTTP server shutdown failed")
	}

	if publisher != nil {
		if err := publisher.Close(); err != nil {
			appLogger.WithError(err).Warn("failed to close status publisher")
		}
	}
	milvusClient.Close()
	if err := mysql.Close(); err != nil {
		appLogger.WithError(err).Warn("failed to close MySQL connection")
	}

	appLogger.Info("service stopped")
}
