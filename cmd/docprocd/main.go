// Command docprocd is the long-running document processing daemon. It watches
// the inbox directories, uploads new files into the blob store, records a
// document per file, and fans runs out across a fixed worker pool backed by
// Postgres.
package main

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/common"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/document"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/extraction"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/extraction/hfqa"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/ingest"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/models"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/notify"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/pipeline"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/repository"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/repository/postgres"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/storage"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/storage/gcs"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/storage/local"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/validation"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := postgres.Open(ctx, postgres.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		logger.Error("database connect failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := postgres.Bootstrap(ctx, pool); err != nil {
		logger.Error("database bootstrap failed", "error", err)
		os.Exit(1)
	}
	if err := postgres.HealthCheck(ctx, pool, cfg.Database.DialTimeout); err != nil {
		logger.Error("database health check failed", "error", err)
		os.Exit(1)
	}
	logger.Info("database ready")

	blobs, closeBlobs, err := openBlobStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("blob store init failed", "error", err)
		os.Exit(1)
	}
	defer closeBlobs()

	docs := postgres.NewDocumentRepository(pool, logger)
	runs := postgres.NewRunRepository(pool, logger)
	vendors := postgres.NewVendorRepository(pool, logger)

	extractor := hfqa.New(hfqa.Config{
		BaseURL:  cfg.Extraction.BaseURL,
		Model:    cfg.Extraction.Model,
		APIToken: cfg.Extraction.APIToken,
		Timeout:  cfg.Extraction.Timeout,
	}, logger)
	requester := extraction.NewRequester(logger, extractor, cfg.Extraction.Concurrency)
	validator := validation.New(logger, vendors, validation.Config{AmountThreshold: cfg.Rules.AmountThreshold})

	var transport notify.Transport
	if cfg.SMTP.Username != "" {
		transport = &notify.SMTPTransport{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		}
	}
	notifier := notify.New(transport, logger)

	loader := document.NewBlobLoader(blobs, logger, cfg.Ingest.MaxFileSizeMB)
	orch := pipeline.NewOrchestrator(logger, loader, requester, validator, notifier, runs, docs, pipeline.Config{
		LoadTimeout:    cfg.Pipeline.LoadTimeout,
		ExtractTimeout: cfg.Pipeline.ExtractTimeout,
		NotifyTimeout:  cfg.Pipeline.NotifyTimeout,
	})
	queue := pipeline.NewQueue(orch, docs, logger, pipeline.WithWorkers(cfg.Pipeline.WorkerSlots))

	for _, dir := range cfg.Ingest.InboxDirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("inbox directory create failed", "dir", dir, "error", err)
			os.Exit(1)
		}
	}
	paths, watchErrs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       cfg.Ingest.InboxDirs,
		InitialScan: true,
		Debounce:    500 * time.Millisecond,
	})
	if err != nil {
		logger.Error("watcher start failed", "error", err)
		os.Exit(1)
	}
	logger.Info("watching inbox", "dirs", cfg.Ingest.InboxDirs, "workers", cfg.Pipeline.WorkerSlots)

	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			queue.Shutdown(shutdownCtx)
			cancel()
			return
		case err, ok := <-watchErrs:
			if ok && err != nil {
				logger.Error("watcher error", "error", err)
			}
		case path, ok := <-paths:
			if !ok {
				continue
			}
			if err := admit(ctx, path, blobs, docs, queue, logger); err != nil {
				logger.Error("ingest failed", "path", path, "error", err)
			}
		}
	}
}

// admit uploads one inbox file, records a pending document, and enqueues it.
// The document type defaults to invoice; the inbox subdirectory overrides it
// when it names a known type (e.g. inbox/contract/msa.txt).
func admit(ctx context.Context, path string, blobs storage.BlobStore,
	docs repository.DocumentRepository, queue *pipeline.Queue, logger *slog.Logger) error {

	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}

	docType := constants.DocTypeInvoice
	if t, ok := constants.ParseDocumentType(filepath.Base(filepath.Dir(path))); ok {
		docType = t
	}

	id := uuid.New()
	key := fmt.Sprintf("%s/%s%s", docType, id, filepath.Ext(path))
	if err := blobs.Upload(ctx, key, bytes.NewReader(b), "text/plain"); err != nil {
		return fmt.Errorf("upload %s: %w", path, err)
	}

	doc := &models.Document{
		ID:               id,
		Filename:         filepath.Base(key),
		OriginalFilename: filepath.Base(path),
		StoragePath:      key,
		FileSize:         int64(len(b)),
		MimeType:         "text/plain",
		Type:             docType,
		Status:           constants.RunStatusPending,
	}
	if err := docs.Create(ctx, doc); err != nil {
		return fmt.Errorf("record document: %w", err)
	}

	// The inbox copy is consumed once it is safely stored.
	if err := os.Remove(path); err != nil {
		logger.Warn("inbox cleanup failed", "path", path, "error", err)
	}

	logger.Info("document admitted", "document_id", doc.ID, "type", docType, "bytes", len(b))
	return queue.Enqueue(ctx, pipeline.Job{DocumentID: doc.ID})
}

func openBlobStore(ctx context.Context, cfg *common.Config, logger *slog.Logger) (storage.BlobStore, func(), error) {
	if cfg.Storage.GCSBucket != "" {
		store, err := gcs.New(ctx, cfg.Storage.GCSBucket, logger)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("using GCS blob store", "bucket", cfg.Storage.GCSBucket)
		return store, func() { _ = store.Close() }, nil
	}
	store, err := local.New(cfg.Storage.LocalDir)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("using local blob store", "dir", cfg.Storage.LocalDir)
	return store, func() {}, nil
}
