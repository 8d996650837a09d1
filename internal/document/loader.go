package document

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/common"
	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/internal/storage"
)

// Loader turns a storage path into document text for extraction.
type Loader interface {
	Load(ctx context.Context, storagePath string) (string, error)
}

// BlobLoader reads plain-text documents out of a blob store. Binary formats
// needing OCR or layout models sit behind an upstream conversion step and
// are rejected here.
type BlobLoader struct {
	blobs       storage.BlobStore
	logger      *slog.Logger
	maxFileSize int64
}

func NewBlobLoader(blobs storage.BlobStore, logger *slog.Logger, maxFileSizeMB int) *BlobLoader {
	if logger == nil {
		logger = slog.Default()
	}
	if maxFileSizeMB <= 0 {
		maxFileSizeMB = constants.MaxFileSizeMBDefault
	}
	return &BlobLoader{
		blobs:       blobs,
		logger:      logger,
		maxFileSize: int64(maxFileSizeMB) * 1024 * 1024,
	}
}

func (l *BlobLoader) Load(ctx context.Context, storagePath string) (string, error) {
	ext := constants.NormalizeExt(path.Ext(storagePath))
	if _, ok := constants.AllowedExtensions[ext]; !ok {
		return "", fmt.Errorf("%w: unsupported file type %q", common.ErrLoadFailure, ext)
	}

	b, err := l.blobs.Download(ctx, storagePath)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrLoadFailure, err)
	}
	if int64(len(b)) > l.maxFileSize {
		return "", fmt.Errorf("%w: file exceeds %d bytes", common.ErrLoadFailure, l.maxFileSize)
	}
	if !utf8.Valid(b) {
		return "", fmt.Errorf("%w: document is not valid UTF-8 text", common.ErrLoadFailure)
	}

	text := strings.TrimSpace(string(b))
	if text == "" {
		return "", fmt.Errorf("%w: document is empty", common.ErrLoadFailure)
	}

	l.logger.Info("loader.ok", "path", storagePath, "bytes", len(b))
	return text, nil
}
