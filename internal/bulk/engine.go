package bulk

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"TalentDesk/server/internal/extract"
	"TalentDesk/server/internal/logger"
	"TalentDesk/server/internal/models"
	"TalentDesk/server/internal/storage"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/sync/semaphore"
)

const (
	MaxBatchFiles = 1000
	MaxFileSize   = 10 << 20 // 10MB per file
)

// BatchFile is one uploaded resume, fully read into memory by the handler.
type BatchFile struct {
	Name string
	Size int64
	Data []byte
}

// Engine owns the bulk-resume pipeline: validate the batch up front, create
// the job and file rows, then process every file on its own goroutine with a
// bounded amount of parallelism. SubmitBatch returns as soon as the rows
// exist; everything after that is observable only through GetStatus.
type Engine struct {
	store     JobStore
	extractor extract.Extractor
	blobs     storage.Store
	workers   int64
}

func NewEngine(store JobStore, extractor extract.Extractor, blobs storage.Store, maxWorkers int) *Engine {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Engine{
		store:     store,
		extractor: extractor,
		blobs:     blobs,
		workers:   int64(maxWorkers),
	}
}

// ValidateBatch rejects the whole submission before any row is created.
func ValidateBatch(files []BatchFile) error {
	if len(files) == 0 {
		return errors.Wrap(models.ErrInvalidBatch, "no files in batch")
	}
	if len(files) > MaxBatchFiles {
		return errors.Wrapf(models.ErrInvalidBatch, "batch has %d files, maximum is %d", len(files), MaxBatchFiles)
	}
	for _, f := range files {
		if f.Size > MaxFileSize {
			return errors.Wrapf(models.ErrInvalidBatch, "file %q exceeds the 10MB limit", f.Name)
		}
		ext := strings.ToLower(filepath.Ext(f.Name))
		if ext != ".pdf" && ext != ".docx" {
			return errors.Wrapf(models.ErrInvalidBatch, "file %q has unsupported type %q, only pdf and docx are accepted", f.Name, ext)
		}
	}
	return nil
}

// SubmitBatch validates, persists the job skeleton, and kicks off async
// processing. The returned job is the caller's polling handle.
func (e *Engine) SubmitBatch(ctx context.Context, files []BatchFile) (*models.BulkUploadJob, error) {
	if err := ValidateBatch(files); err != nil {
		return nil, err
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}

	jobID := uuid.NewString()
	job, rows, err := e.store.CreateJob(ctx, jobID, names)
	if err != nil {
		return nil, err
	}

	// Processing outlives the submitting request.
	go e.process(context.Background(), jobID, rows, files)

	logger.Log.Infof("Batch submitted: job %s, %d files", jobID, len(files))
	return job, nil
}

func (e *Engine) process(ctx context.Context, jobID string, rows []models.BulkUploadFile, files []BatchFile) {
	// Stage every file to blob storage first. If the very first write fails
	// nothing has been processed yet and the whole batch is a storage-level
	// failure; later stage errors fail only the affected file.
	staged := make([]bool, len(rows))
	for i := range rows {
		key := fmt.Sprintf("bulk/%s/%d%s", jobID, rows[i].ID, strings.ToLower(filepath.Ext(files[i].Name)))
		if _, err := e.blobs.Save(ctx, key, contentTypeFor(files[i].Name), files[i].Data); err != nil {
			if i == 0 {
				logger.Log.Errorf("Storage unavailable for job %s: %v", jobID, err)
				if ferr := e.store.FailJob(ctx, jobID, "storage unavailable: "+err.Error()); ferr != nil {
					logger.Log.Errorf("Error marking job %s failed: %v", jobID, ferr)
				}
				return
			}
			e.completeFile(ctx, jobID, rows[i].ID, FileResult{ErrorMessage: "could not store file: " + err.Error()})
			continue
		}
		staged[i] = true
		if err := e.store.SetFileStorageKey(ctx, rows[i].ID, key); err != nil {
			logger.Log.Errorf("Error recording storage key for file %d: %v", rows[i].ID, err)
		}
	}

	sem := semaphore.NewWeighted(e.workers)
	for i := range rows {
		if !staged[i] {
			continue
		}
		if err := sem.Acquire(ctx, 1); err != nil {
			e.completeFile(ctx, jobID, rows[i].ID, FileResult{ErrorMessage: "processing cancelled"})
			continue
		}
		go func(row models.BulkUploadFile, file BatchFile) {
			defer sem.Release(1)
			defer func() {
				if r := recover(); r != nil {
					logger.Log.Errorf("Panic processing file %d of job %s: %v", row.ID, jobID, r)
					e.completeFile(ctx, jobID, row.ID, FileResult{ErrorMessage: "internal processing error"})
				}
			}()
			e.processFile(ctx, jobID, row, file)
		}(rows[i], files[i])
	}
}

func (e *Engine) processFile(ctx context.Context, jobID string, row models.BulkUploadFile, file BatchFile) {
	if err := e.store.MarkFileProcessing(ctx, row.ID); err != nil {
		logger.Log.Errorf("Error marking file %d processing: %v", row.ID, err)
	}

	fields, err := e.extractor.Extract(ctx, file.Name, contentTypeFor(file.Name), file.Data)
	if err != nil {
		e.completeFile(ctx, jobID, row.ID, FileResult{ErrorMessage: err.Error()})
		return
	}

	err = e.store.SaveCandidate(ctx, models.Candidate{
		Name:        fields.Name,
		Email:       fields.Email,
		Phone:       fields.Phone,
		SourceJobID: jobID,
	})
	if err != nil {
		e.completeFile(ctx, jobID, row.ID, FileResult{ErrorMessage: err.Error()})
		return
	}

	e.completeFile(ctx, jobID, row.ID, FileResult{Success: true, Fields: fields})
}

// completeFile records the terminal state and, when this was the last
// outstanding file, finalizes the job. Only the completion that observes
// processed == total runs finalization, and the store-side guard makes the
// transition itself single-shot.
func (e *Engine) completeFile(ctx context.Context, jobID string, fileID int, res FileResult) {
	job, err := e.store.CompleteFile(ctx, jobID, fileID, res)
	if err != nil {
		logger.Log.Errorf("Error completing file %d of job %s: %v", fileID, jobID, err)
		return
	}
	if job.ProcessedFiles < job.TotalFiles || models.TerminalJobStatus(job.Status) {
		return
	}

	var reportURL *string
	if job.FailedFiles > 0 {
		if url, err := e.uploadErrorReport(ctx, jobID); err != nil {
			logger.Log.Errorf("Error uploading error report for job %s: %v", jobID, err)
		} else {
			reportURL = &url
		}
	}

	done, err := e.store.FinalizeJob(ctx, jobID, reportURL)
	if err != nil {
		logger.Log.Errorf("Error finalizing job %s: %v", jobID, err)
		return
	}
	if done {
		logger.Log.Infof("Job %s completed: %d succeeded, %d failed", jobID, job.SuccessfulFiles, job.FailedFiles)
	}
}

func (e *Engine) uploadErrorReport(ctx context.Context, jobID string) (string, error) {
	failed, err := e.store.FailedFiles(ctx, jobID)
	if err != nil {
		return "", err
	}
	return e.blobs.Save(ctx, reportKey(jobID), "text/csv", RenderErrorReport(failed))
}

func reportKey(jobID string) string {
	return fmt.Sprintf("bulk/%s/error-report.csv", jobID)
}

// GetStatus returns the snapshot the dashboards poll.
func (e *Engine) GetStatus(ctx context.Context, jobID string) (*models.BulkUploadJob, []models.BulkUploadFile, error) {
	job, err := e.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	files, err := e.store.GetFiles(ctx, jobID)
	if err != nil {
		return nil, nil, err
	}
	return job, files, nil
}

// ErrorReportCSV serves the per-file failure report. Once the terminal
// transition has stored a report it comes straight from blob storage;
// otherwise it is rendered from the file rows on demand.
func (e *Engine) ErrorReportCSV(ctx context.Context, jobID string) ([]byte, error) {
	job, err := e.store.GetJob(ctx, jobID)
	if err != nil {
		return nil, err
	}
	if job.ErrorReportURL != nil {
		if report, err := e.blobs.Load(ctx, reportKey(jobID)); err == nil {
			return report, nil
		}
		logger.Log.Errorf("Stored error report missing for job %s, re-rendering", jobID)
	}
	failed, err := e.store.FailedFiles(ctx, jobID)
	if err != nil {
		return nil, err
	}
	return RenderErrorReport(failed), nil
}

func contentTypeFor(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}
