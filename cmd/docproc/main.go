// Command docproc runs the pipeline for a single file against a local SQLite
// store, so a document can be processed without Postgres or a daemon. The
// starter vendors are seeded on every invocation.
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/common"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/document"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/export"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/extraction"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/extraction/hfqa"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/models"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/notify"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/pipeline"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/repository"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/repository/sqlite"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/storage/local"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/validation"
)

// printError prints an error message to stderr, falling back to stdout if stderr fails
func printError(format string, args ...interface{}) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		fmt.Printf(format, args...)
	}
}

func main() {
	var (
		file    = flag.String("file", "", "document file to process (required)")
		docType = flag.String("type", "invoice", "document type: invoice, contract, insurance_claim, receipt, other")
		email   = flag.String("email", "", "recipient for the outcome notification (optional)")
		dbPath  = flag.String("db", ":memory:", "SQLite database path, or :memory:")
		out     = flag.String("out", "", "write run history XLSX to this path (optional)")
		verbose = flag.Bool("v", false, "verbose logging")
	)
	flag.Parse()

	if *file == "" {
		printError("Error: --file is required\n")
		flag.Usage()
		os.Exit(1)
	}
	parsedType, ok := constants.ParseDocumentType(*docType)
	if !ok {
		printError("Error: unknown document type %q (expected one of %v)\n", *docType, constants.DocumentTypes())
		os.Exit(1)
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	cfg := common.LoadConfig()
	ctx := context.Background()

	store, err := sqlite.Open(*dbPath, logger)
	if err != nil {
		printError("Error: open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	vendors := store.Vendors()
	if err := repository.EnsureSeedVendors(ctx, vendors); err != nil {
		printError("Error: seed vendors: %v\n", err)
		os.Exit(1)
	}

	blobs, err := local.New(cfg.Storage.LocalDir)
	if err != nil {
		printError("Error: blob store: %v\n", err)
		os.Exit(1)
	}

	b, err := os.ReadFile(*file)
	if err != nil {
		printError("Error: read file: %v\n", err)
		os.Exit(1)
	}

	id := uuid.New()
	key := fmt.Sprintf("%s/%s%s", parsedType, id, filepath.Ext(*file))
	if err := blobs.Upload(ctx, key, bytes.NewReader(b), "text/plain"); err != nil {
		printError("Error: store file: %v\n", err)
		os.Exit(1)
	}

	doc := &models.Document{
		ID:               id,
		Filename:         filepath.Base(key),
		OriginalFilename: filepath.Base(*file),
		StoragePath:      key,
		FileSize:         int64(len(b)),
		MimeType:         "text/plain",
		Type:             parsedType,
		Status:           constants.RunStatusPending,
		Recipient:        *email,
	}
	docs := store.Documents()
	if err := docs.Create(ctx, doc); err != nil {
		printError("Error: record document: %v\n", err)
		os.Exit(1)
	}

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
	orch := pipeline.NewOrchestrator(logger, loader, requester, validator, notifier, store.Runs(), docs, pipeline.Config{
		LoadTimeout:    cfg.Pipeline.LoadTimeout,
		ExtractTimeout: cfg.Pipeline.ExtractTimeout,
		NotifyTimeout:  cfg.Pipeline.NotifyTimeout,
	})

	result := orch.Process(ctx, doc)
	printResult(result)

	if *out != "" {
		svc := export.NewService(store.Runs(), logger)
		data, err := svc.ExportRunsXLSX(ctx, 100)
		if err != nil {
			printError("Error: export: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			printError("Error: write %s: %v\n", *out, err)
			os.Exit(1)
		}
		fmt.Printf("Run history written to %s\n", *out)
	}

	if !result.Success {
		os.Exit(1)
	}
}

func printResult(res models.Result) {
	fmt.Printf("Document: %s\n", res.DocumentID)
	fmt.Printf("Run:      %s\n", res.RunID)
	if res.Success {
		fmt.Printf("Action:   %s\n", res.Action)
		fmt.Printf("Reason:   %s\n", res.Rationale)
	} else {
		fmt.Printf("Failed:   %s\n", res.Error)
	}
	fmt.Println(strings.Repeat("-", 40))
	for _, step := range res.Steps {
		detail := step.Detail
		if detail != "" {
			detail = " (" + detail + ")"
		}
		fmt.Printf("  %-10s %-10s %5dms%s\n", step.Name, step.Status, step.Duration.Milliseconds(), detail)
	}
}
