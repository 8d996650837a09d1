package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/common"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/models"
)

type documentRepo struct {
	store *Store
}

func (r *documentRepo) Create(ctx context.Context, doc *models.Document) error {
	if doc.ID == uuid.Nil {
		doc.ID = uuid.New()
	}
	if doc.UploadedAt.IsZero() {
		doc.UploadedAt = time.Now().UTC()
	}
	if doc.Status == "" {
		doc.Status = constants.RunStatusPending
	}

	_, err := r.store.db.ExecContext(ctx, `
		INSERT INTO documents (id, filename, original_filename, storage_path, file_size,
			mime_type, document_type, status, recipient, uploaded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID.String(), doc.Filename, doc.OriginalFilename, doc.StoragePath, doc.FileSize,
		doc.MimeType, string(doc.Type), string(doc.Status), doc.Recipient,
		doc.UploadedAt.Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (r *documentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Document, error) {
	row := r.store.db.QueryRowContext(ctx, `
		SELECT id, filename, original_filename, storage_path, file_size, mime_type,
			document_type, status, recipient, uploaded_at, processed_at,
			extracted_data, confidence_scores, workflow_action, error_message
		FROM documents WHERE id = ?`, id.String())

	var (
		doc         models.Document
		rawID       string
		docType     string
		status      string
		action      string
		uploadedAt  string
		processedAt sql.NullString
		extracted   sql.NullString
		confidences sql.NullString
	)
	err := row.Scan(&rawID, &doc.Filename, &doc.OriginalFilename, &doc.StoragePath,
		&doc.FileSize, &doc.MimeType, &docType, &status, &doc.Recipient,
		&uploadedAt, &processedAt, &extracted, &confidences, &action, &doc.ErrorMessage)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("query document: %w", err)
	}

	doc.ID, err = uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse document id: %w", err)
	}
	doc.Type = constants.DocumentType(docType)
	doc.Status = constants.RunStatus(status)
	doc.Action = constants.WorkflowAction(action)
	if doc.UploadedAt, err = parseTime(uploadedAt); err != nil {
		return nil, err
	}
	if processedAt.Valid {
		t, err := parseTime(processedAt.String)
		if err != nil {
			return nil, err
		}
		doc.ProcessedAt = &t
	}
	if extracted.Valid && extracted.String != "" {
		if err := json.Unmarshal([]byte(extracted.String), &doc.ExtractedData); err != nil {
			return nil, fmt.Errorf("decode extracted data: %w", err)
		}
	}
	if confidences.Valid && confidences.String != "" {
		if err := json.Unmarshal([]byte(confidences.String), &doc.ConfidenceScores); err != nil {
			return nil, fmt.Errorf("decode confidence scores: %w", err)
		}
	}
	return &doc, nil
}

func (r *documentRepo) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	res, err := r.store.db.ExecContext(ctx,
		`UPDATE documents SET status = ? WHERE id = ?`,
		string(constants.RunStatusProcessing), id.String())
	if err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark processing: %w", err)
	}
	if n == 0 {
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
	confidencesJSON, err := json.Marshal(confidences)
	if err != nil {
		return fmt.Errorf("encode confidence scores: %w", err)
	}

	res, err := r.store.db.ExecContext(ctx, `
		UPDATE documents
		SET status = ?, workflow_action = ?, extracted_data = ?, confidence_scores = ?,
			error_message = ?, processed_at = ?
		WHERE id = ?`,
		string(status), string(action), string(extractedJSON), string(confidencesJSON),
		errorMessage, time.Now().UTC().Format(time.RFC3339Nano), id.String())
	if err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("save results: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("document %s: %w", id, common.ErrNotFound)
	}
	return nil
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", s, err)
	}
	return t, nil
}
