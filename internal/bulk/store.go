package bulk

import (
	"context"

	"TalentDesk/server/internal/extract"
	"TalentDesk/server/internal/models"
)

// FileResult is the terminal outcome of processing one file.
type FileResult struct {
	Success      bool
	ErrorMessage string
	Fields       *extract.Fields
}

// JobStore persists jobs, their per-file rows, and extracted candidates.
// CompleteFile must transition a file to its terminal state and bump the
// job's aggregate counters exactly once per file, atomically with respect
// to concurrent completions; it returns the job snapshot after the update.
// FinalizeJob must only succeed when every file is terminal and the job is
// still processing.
type JobStore interface {
	CreateJob(ctx context.Context, jobID string, fileNames []string) (*models.BulkUploadJob, []models.BulkUploadFile, error)
	GetJob(ctx context.Context, jobID string) (*models.BulkUploadJob, error)
	GetFiles(ctx context.Context, jobID string) ([]models.BulkUploadFile, error)
	FailedFiles(ctx context.Context, jobID string) ([]models.BulkUploadFile, error)
	SetFileStorageKey(ctx context.Context, fileID int, key string) error
	MarkFileProcessing(ctx context.Context, fileID int) error
	CompleteFile(ctx context.Context, jobID string, fileID int, res FileResult) (*models.BulkUploadJob, error)
	FinalizeJob(ctx context.Context, jobID string, errorReportURL *string) (bool, error)
	FailJob(ctx context.Context, jobID, reason string) error
	SaveCandidate(ctx context.Context, c models.Candidate) error
}
