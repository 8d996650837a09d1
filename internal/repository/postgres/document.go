package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/common"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/models"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/repository"
)

type documentRepo struct {
	pool *pgxpool.Pool
	log  *slog.Logger
}

func NewDocumentRepository(pool *pgxpool.Pool, log *slog.Logger) repository.DocumentRepository {
	if log == nil {
		log = slog.Default()
	}
	return &documentRepo{pool: pool, log: log}
}

func (r *documentRepo) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO documents (id, filename, original_filename, storage_path, file_size,
			mime_type, document_type, status, recipient, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		doc.ID, doc.Filename, doc.OriginalFilename, doc.StoragePath, doc.FileSize,
		doc.MimeType, string(doc.Type), string(doc.Status), doc.Recipient, doc.UploadedAt,
	)
	if err != nil {
		r.log.Error("document create failed", "document_id", doc.ID, "err", err)
		return fmt.Errorf("insert document: %w", err)
	}
	r.log.Info("document created", "document_id", doc.ID, "document_type", doc.Type)
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, filename, original_filename, storage_path, file_size, mime_type,
			document_type, status, recipient, uploaded_at, processed_at,
			extracted_data, confidence_scores, workflow_action, error_message
		FROM documents WHERE id = $1`, id)

	var (
		doc           models.Document
		docType       string
		status        string
		action        string
		extractedJSON []byte
		confJSON      []byte
	)
	err := row.Scan(&doc.ID, &doc.Filename, &doc.OriginalFilename, &doc.StoragePath,
		&doc.FileSize, &doc.MimeType, &docType, &status, &doc.Recipient,
		&doc.UploadedAt, &doc.ProcessedAt, &extractedJSON, &confJSON, &action, &doc.ErrorMessage)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query document: %w", err)
	}

	doc.Type = constants.DocumentType(docType)
	doc.Status = constants.RunStatus(status)
	doc.Action = constants.WorkflowAction(action)
	if len(extractedJSON) > 0 {
		if err := json.Unmarshal(extractedJSON, &doc.ExtractedData); err != nil {
			return nil, fmt.Errorf("decode extracted data: %w", err)
		}
	}
	if len(confJSON) > 0 {
		if err := json.Unmarshal(confJSON, &doc.ConfidenceScores); err != nil {
			return nil, fmt.Errorf("decode confidence scores: %w", err)
		}
	}
	return &doc, nil
}

func (r *documentRepo) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE documents SET status = $1 WHERE id = $2`,
		string(constants.RunStatusProcessing), id)
	if err != nil {
		r.log.Error("document mark processing failed", "document_id", id, "err", err)
		return fmt.Errorf("mark processing: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func (r *documentRepo) SaveResults(ctx context.Context, id uuid.UUID, status constants.RunStatus,
	action constants.WorkflowAction, extracted map[string]string,
	confidences map[string]float64, errorMessage string) error {

	extractedJSON, err := json.Marshal(extracted)
	if err != nil {
		return fmt.Errorf("encode extracted data: %w", err)
	}
	confJSON, err := json.Marshal(confidences)
	if err != nil {
		return fmt.Errorf("encode confidence scores: %w", err)
	}

	_, err = r.pool.Exec(ctx, `
		UPDATE documents
		SET status = $1, workflow_action = $2, extracted_data = $3,
			confidence_scores = $4, error_message = $5, processed_at = $6
		WHERE id = $7`,
		string(status), string(action), extractedJSON, confJSON, errorMessage, time.Now().UTC(), id)
	if err != nil {
		r.log.Error("document save results failed", "document_id", id, "err", err)
		return fmt.Errorf("save results: %w", err)
	}
	r.log.Info("document results saved", "document_id", id, "status", status, "action", action)
	return nil
}
