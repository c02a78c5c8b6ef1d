package domain

import "time"

type DocumentStatus string

const (
	StatusUploaded   DocumentStatus = "uploaded"
	StatusProcessing DocumentStatus = "processing"
	StatusReady      DocumentStatus = "ready"
	StatusFailed     DocumentStatus = "failed"
)

// Document is owned by the document store. The retrieval pipeline only reads
// a bounded recent window per company and never mutates documents; Embedding
// is a storage-side cache written by the embed worker.
type Document struct {
	ID          string         `json:"id"`
	CompanyID   string         `json:"company_id"`
	Title       string         `json:"title"`
	Content     string         `json:"content,omitempty"`
	MimeType    string         `json:"mime_type,omitempty"`
	StoragePath string         `json:"storage_path,omitempty"`
	Status      DocumentStatus `json:"status"`
	Error       string         `json:"error,omitempty"`
	Embedding   []float32      `json:"-"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
