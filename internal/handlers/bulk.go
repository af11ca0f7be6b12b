package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"TalentDesk/server/internal/bulk"
	"TalentDesk/server/internal/logger"
	"TalentDesk/server/internal/models"

	"github.com/go-chi/chi/v5"
)

// The whole multipart body for a full batch of 10MB resumes.
const maxBulkUploadSize = int64(bulk.MaxBatchFiles) * bulk.MaxFileSize

// BulkResumeUpload accepts the resume batch, validates it wholesale, and
// returns the job handle while processing continues in the background.
func BulkResumeUpload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxBulkUploadSize)
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		http.Error(w, "Malformed multipart upload", http.StatusBadRequest)
		return
	}
	defer func() {
		_ = r.MultipartForm.RemoveAll()
	}()

	fileHeaders := r.MultipartForm.File["resumes"]
	if len(fileHeaders) == 0 {
		http.Error(w, "No files in field 'resumes'", http.StatusBadRequest)
		return
	}

	// Count, size, and type limits come off the part headers, so an invalid
	// batch is rejected before a single file body is read into memory.
	meta := make([]bulk.BatchFile, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		meta = append(meta, bulk.BatchFile{Name: header.Filename, Size: header.Size})
	}
	if err := bulk.ValidateBatch(meta); err != nil {
		logger.Log.Infof("Batch rejected: %v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	files := make([]bulk.BatchFile, 0, len(fileHeaders))
	for _, header := range fileHeaders {
		f, err := header.Open()
		if err != nil {
			http.Error(w, fmt.Sprintf("Could not read file %q", header.Filename), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, fmt.Sprintf("Could not read file %q", header.Filename), http.StatusBadRequest)
			return
		}
		files = append(files, bulk.BatchFile{Name: header.Filename, Size: header.Size, Data: data})
	}

	job, err := engine.SubmitBatch(ctx, files)
	if err != nil {
		if errors.Is(err, models.ErrInvalidBatch) {
			logger.Log.Infof("Batch rejected: %v", err)
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"jobId":      job.JobID,
		"totalFiles": job.TotalFiles,
	})
}

func BulkJobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")

	job, files, err := engine.GetStatus(r.Context(), jobID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if files == nil {
		files = []models.BulkUploadFile{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"job":   job,
		"files": files,
	})
}

func BulkJobErrorReport(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobId")

	report, err := engine.ErrorReportCSV(r.Context(), jobID)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "error-report-"+jobID+".csv"))
	if _, err := w.Write(report); err != nil {
		logger.Log.Errorf("Error writing report for job %s: %v", jobID, err)
	}
}
