// doc-qa-api 服务入口：文档入库与检索问答 HTTP 服务
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"doc-qa-api/internal/application/rag"
	"doc-qa-api/internal/config"
	embeddinginfra "doc-qa-api/internal/infrastructure/embedding"
	"doc-qa-api/internal/infrastructure/llm"
	"doc-qa-api/internal/infrastructure/persistence/milvus"
	"doc-qa-api/internal/interfaces/http/handler"
	"doc-qa-api/internal/interfaces/http/router"
	"doc-qa-api/pkg/logger"
	"doc-qa-api/pkg/tracer"
)

func main() {
	// .env 缺失不是错误，容器环境直接走环境变量
	_ = godotenv.Load()

	cfg := config.MustLoad()

	logger.Init(cfg.Observability.Logging.Level, cfg.Observability.Logging.Format)
	ctx := context.Background()

	logger.Info(ctx, "starting service",
		"name", cfg.App.Name, "version", cfg.App.Version, "env", cfg.App.Env)

	shutdownTracer, err := tracer.Init(ctx, tracer.Config{
		ServiceName: cfg.App.Name,
		Endpoint:    cfg.Observability.Tracing.Endpoint,
		SampleRate:  cfg.Observability.Tracing.SampleRate,
		Enabled:     cfg.Observability.Tracing.Enabled,
	})
	if err != nil {
		logger.Fatal(ctx, "failed to init tracer", err)
	}

	// 基础设施
	milvusClient, err := milvus.NewClient(ctx, &cfg.Vector.Milvus)
	if err != nil {
		logger.Fatal(ctx, "failed to connect milvus", err)
	}
	defer milvusClient.Close()

	store := milvus.NewStore(milvusClient)

	embedder, err := embeddinginfra.NewEinoEmbedder(ctx, &cfg.Embedding)
	if err != nil {
		logger.Fatal(ctx, "failed to init embedder", err)
	}

	completer, err := llm.NewCompleter(ctx, &cfg.LLM)
	if err != nil {
		logger.Fatal(ctx, "failed to init chat model", err)
	}

	// 应用层
	indexer := rag.NewIndexer(embedder, store,
		cfg.Ingest.ChunkSize, cfg.Ingest.ChunkOverlap, cfg.Ingest.RowBatchSize)
	engine := rag.NewEngine(embedder, store, completer, cfg.Retrieval.TopK)
	library := rag.NewLibrary(store, cfg.Embedding.Dimension)

	// HTTP 层
	ginEngine := router.Setup(cfg, router.Handlers{
		Health:   handler.NewHealthHandler(milvusClient, cfg.App.Version),
		Document: handler.NewDocumentHandler(indexer, library, cfg.Server.HTTP.MaxUploadBytes),
		Search:   handler.NewSearchHandler(engine),
		Index:    handler.NewIndexHandler(library),
	})

	apiServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.HTTP.Host, cfg.Server.HTTP.Port),
		Handler:      ginEngine,
		ReadTimeout:  cfg.Server.HTTP.ReadTimeout,
		WriteTimeout: cfg.Server.HTTP.WriteTimeout,
		IdleTimeout:  cfg.Server.HTTP.IdleTimeout,
	}

	var metricsServer *http.Server
	if cfg.Observability.Metrics.Enabled {
		metricsServer = &http.Server{
			Addr:    fmt.Sprintf(":%d", cfg.Observability.Metrics.Port),
			Handler: router.SetupMetrics(cfg.Observability.Metrics.Path),
		}
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info(gctx, "http server listening", "addr", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})

	if metricsServer != nil {
		g.Go(func() error {
			logger.Info(gctx, "metrics server listening", "addr", metricsServer.Addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}

	// 优雅关闭
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info(gctx, "shutdown signal received", "signal", sig.String())
		case <-gctx.Done():
			return gctx.Err()
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		if metricsServer != nil {
			_ = metricsServer.Shutdown(shutdownCtx)
		}
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := shutdownTracer(shutdownCtx); err != nil {
			logger.Warn(gctx, "tracer shutdown failed", "error", err.Error())
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal(ctx, "server exited with error", err)
	}
	logger.Info(ctx, "server stopped")
}
