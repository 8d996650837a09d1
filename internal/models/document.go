package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/Maks-Mroczkowski/LLM-Powered-Document-Processing-Agent/constants"
)

// Document tracks one uploaded document and the latest processing results.
type Document struct {
	ID               uuid.UUID
	Filename         string
	OriginalFilename string
	StoragePath      string
	FileSize         int64
	MimeType         string
	Type             constants.DocumentType
	Status           constants.RunStatus
	Recipient        string // notification address; empty = no notification

	UploadedAt  time.Time
	ProcessedAt *time.Time

	// Latest run results, denormalized for direct lookup.
	ExtractedData    map[string]string
	ConfidenceScores map[string]float64
	Action           constants.WorkflowAction
	ErrorMessage     string
}

// Vendor is a reference-data row consulted by the vendor validator. The
// pipeline only reads vendors; mutation happens through seeding.
type Vendor struct {
	VendorID   string
	Name       string
	Email      string
	Phone      string
	Address    string
	IsApproved bool
}
