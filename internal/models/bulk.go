package models

import (
	"time"
)

const (
	JobStatusProcessing = "processing"
	JobStatusCompleted  = "completed"
	JobStatusFailed     = "failed"
)

const (
	FileStatusPending    = "pending"
	FileStatusProcessing = "processing"
	FileStatusSuccess    = "success"
	FileStatusFailed     = "failed"
)

type BulkUploadJob struct {
	ID              int        `json:"id" db:"id"`
	JobID           string     `json:"job_id" db:"job_id"`
	Status          string     `json:"status" db:"status"`
	TotalFiles      int        `json:"total_files" db:"total_files"`
	ProcessedFiles  int        `json:"processed_files" db:"processed_files"`
	SuccessfulFiles int        `json:"successful_files" db:"successful_files"`
	FailedFiles     int        `json:"failed_files" db:"failed_files"`
	ErrorReportURL  *string    `json:"error_report_url,omitempty" db:"error_report_url"`
	CreatedAt       time.Time  `json:"created_at" db:"created_at"`
	CompletedAt     *time.Time `json:"completed_at,omitempty" db:"completed_at"`
}

type BulkUploadFile struct {
	ID             int     `json:"id" db:"id"`
	JobID          string  `json:"job_id" db:"job_id"`
	OriginalName   string  `json:"original_name" db:"original_name"`
	StorageKey     string  `json:"-" db:"storage_key"`
	Status         string  `json:"status" db:"status"`
	ErrorMessage   *string `json:"error_message,omitempty" db:"error_message"`
	ExtractedName  *string `json:"extracted_name,omitempty" db:"extracted_name"`
	ExtractedEmail *string `json:"extracted_email,omitempty" db:"extracted_email"`
	ExtractedPhone *string `json:"extracted_phone,omitempty" db:"extracted_phone"`
}

// TerminalJobStatus reports whether no further automatic transition occurs.
func TerminalJobStatus(status string) bool {
	return status == JobStatusCompleted || status == JobStatusFailed
}

type Candidate struct {
	ID          int       `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Email       string    `json:"email" db:"email"`
	Phone       string    `json:"phone" db:"phone"`
	SourceJobID string    `json:"source_job_id" db:"source_job_id"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
