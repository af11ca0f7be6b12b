package bulk

import (
	"context"
	"errors"

	"TalentDesk/server/internal/db"
	"TalentDesk/server/internal/logger"
	"TalentDesk/server/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// PgJobStore is the production JobStore over the shared connection pool.
type PgJobStore struct{}

func NewPgJobStore() *PgJobStore {
	return &PgJobStore{}
}

func (s *PgJobStore) CreateJob(ctx context.Context, jobID string, fileNames []string) (*models.BulkUploadJob, []models.BulkUploadFile, error) {
	query := psql.Insert("bulk_upload_jobs").
		Columns("job_id", "status", "total_files").
		Values(jobID, models.JobStatusProcessing, len(fileNames)).
		Suffix("RETURNING id, created_at")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return nil, nil, err
	}

	job := &models.BulkUploadJob{
		JobID:      jobID,
		Status:     models.JobStatusProcessing,
		TotalFiles: len(fileNames),
	}
	if err := db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&job.ID, &job.CreatedAt); err != nil {
		logger.Log.Errorf("Error creating job %s: %v", jobID, err)
		return nil, nil, err
	}

	files := make([]models.BulkUploadFile, 0, len(fileNames))
	for _, name := range fileNames {
		insert := psql.Insert("bulk_upload_files").
			Columns("job_id", "original_name", "status").
			Values(jobID, name, models.FileStatusPending).
			Suffix("RETURNING id")
		sqlStr, args, err := insert.ToSql()
		if err != nil {
			logger.Log.Errorf("Failed to build SQL query: %v", err)
			return nil, nil, err
		}

		f := models.BulkUploadFile{JobID: jobID, OriginalName: name, Status: models.FileStatusPending}
		if err := db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&f.ID); err != nil {
			logger.Log.Errorf("Error creating file row for job %s: %v", jobID, err)
			return nil, nil, err
		}
		files = append(files, f)
	}

	logger.Log.Infof("Job %s created with %d files", jobID, len(files))
	return job, files, nil
}

func (s *PgJobStore) GetJob(ctx context.Context, jobID string) (*models.BulkUploadJob, error) {
	query := psql.Select("id", "job_id", "status", "total_files", "processed_files",
		"successful_files", "failed_files", "error_report_url", "created_at", "completed_at").
		From("bulk_upload_jobs").
		Where(squirrel.Eq{"job_id": jobID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return nil, err
	}

	var job models.BulkUploadJob
	err = db.Pool.QueryRow(ctx, sqlStr, args...).
		Scan(&job.ID, &job.JobID, &job.Status, &job.TotalFiles, &job.ProcessedFiles,
			&job.SuccessfulFiles, &job.FailedFiles, &job.ErrorReportURL, &job.CreatedAt, &job.CompletedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrJobNotFound
		}
		logger.Log.Errorf("Error getting job %s: %v", jobID, err)
		return nil, err
	}
	return &job, nil
}

func (s *PgJobStore) GetFiles(ctx context.Context, jobID string) ([]models.BulkUploadFile, error) {
	return s.files(ctx, squirrel.Eq{"job_id": jobID})
}

func (s *PgJobStore) FailedFiles(ctx context.Context, jobID string) ([]models.BulkUploadFile, error) {
	return s.files(ctx, squirrel.Eq{"job_id": jobID, "status": models.FileStatusFailed})
}

func (s *PgJobStore) files(ctx context.Context, where squirrel.Eq) ([]models.BulkUploadFile, error) {
	query := psql.Select("id", "job_id", "original_name", "storage_key", "status",
		"error_message", "extracted_name", "extracted_email", "extracted_phone").
		From("bulk_upload_files").
		Where(where).
		OrderBy("id")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Log.Errorf("Error getting file rows: %v", err)
		return nil, err
	}
	defer rows.Close()

	var files []models.BulkUploadFile
	for rows.Next() {
		var f models.BulkUploadFile
		err := rows.Scan(&f.ID, &f.JobID, &f.OriginalName, &f.StorageKey, &f.Status,
			&f.ErrorMessage, &f.ExtractedName, &f.ExtractedEmail, &f.ExtractedPhone)
		if err != nil {
			logger.Log.Errorf("Error scanning file row: %v", err)
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func (s *PgJobStore) SetFileStorageKey(ctx context.Context, fileID int, key string) error {
	query := psql.Update("bulk_upload_files").
		Set("storage_key", key).
		Where(squirrel.Eq{"id": fileID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return err
	}
	_, err = db.Pool.Exec(ctx, sqlStr, args...)
	return err
}

func (s *PgJobStore) MarkFileProcessing(ctx context.Context, fileID int) error {
	query := psql.Update("bulk_upload_files").
		Set("status", models.FileStatusProcessing).
		Where(squirrel.Eq{"id": fileID, "status": models.FileStatusPending})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return err
	}
	_, err = db.Pool.Exec(ctx, sqlStr, args...)
	return err
}

// CompleteFile moves the file to its terminal state; only a row that is not
// already terminal matches, so a file can never be double-counted. The job
// counter bump is a single UPDATE, which keeps processed = successful +
// failed under any interleaving of concurrent completions.
func (s *PgJobStore) CompleteFile(ctx context.Context, jobID string, fileID int, res FileResult) (*models.BulkUploadJob, error) {
	status := models.FileStatusFailed
	if res.Success {
		status = models.FileStatusSuccess
	}

	update := psql.Update("bulk_upload_files").
		Set("status", status).
		Where(squirrel.Eq{"id": fileID}).
		Where(squirrel.NotEq{"status": []string{models.FileStatusSuccess, models.FileStatusFailed}})
	if res.Success {
		update = update.
			Set("extracted_name", res.Fields.Name).
			Set("extracted_email", res.Fields.Email).
			Set("extracted_phone", res.Fields.Phone)
	} else {
		update = update.Set("error_message", res.ErrorMessage)
	}

	sqlStr, args, err := update.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return nil, err
	}

	tag, err := db.Pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		logger.Log.Errorf("Error completing file %d of job %s: %v", fileID, jobID, err)
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		// Already terminal; return the current snapshot untouched.
		return s.GetJob(ctx, jobID)
	}

	successInc, failedInc := 0, 1
	if res.Success {
		successInc, failedInc = 1, 0
	}

	counterSQL := `
        UPDATE bulk_upload_jobs
        SET processed_files = processed_files + 1,
            successful_files = successful_files + $2,
            failed_files = failed_files + $3
        WHERE job_id = $1
        RETURNING id, job_id, status, total_files, processed_files,
                  successful_files, failed_files, error_report_url, created_at, completed_at
    `

	var job models.BulkUploadJob
	err = db.Pool.QueryRow(ctx, counterSQL, jobID, successInc, failedInc).
		Scan(&job.ID, &job.JobID, &job.Status, &job.TotalFiles, &job.ProcessedFiles,
			&job.SuccessfulFiles, &job.FailedFiles, &job.ErrorReportURL, &job.CreatedAt, &job.CompletedAt)
	if err != nil {
		logger.Log.Errorf("Error updating counters for job %s: %v", jobID, err)
		return nil, err
	}
	return &job, nil
}

// FinalizeJob performs the guarded terminal transition. Returns false when
// the guard did not match (files still outstanding, or already terminal).
func (s *PgJobStore) FinalizeJob(ctx context.Context, jobID string, errorReportURL *string) (bool, error) {
	finalizeSQL := `
        UPDATE bulk_upload_jobs
        SET status = $2, completed_at = NOW(), error_report_url = COALESCE($3, error_report_url)
        WHERE job_id = $1 AND status = $4 AND processed_files = total_files
    `

	tag, err := db.Pool.Exec(ctx, finalizeSQL, jobID,
		models.JobStatusCompleted, errorReportURL, models.JobStatusProcessing)
	if err != nil {
		logger.Log.Errorf("Error finalizing job %s: %v", jobID, err)
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PgJobStore) FailJob(ctx context.Context, jobID, reason string) error {
	failSQL := `
        UPDATE bulk_upload_jobs
        SET status = $2, completed_at = NOW()
        WHERE job_id = $1 AND status = $3
    `

	_, err := db.Pool.Exec(ctx, failSQL, jobID, models.JobStatusFailed, models.JobStatusProcessing)
	if err != nil {
		logger.Log.Errorf("Error failing job %s: %v", jobID, err)
		return err
	}

	logger.Log.Errorf("Job %s failed: %s", jobID, reason)
	return nil
}

func (s *PgJobStore) SaveCandidate(ctx context.Context, c models.Candidate) error {
	query := psql.Insert("candidates").
		Columns("name", "email", "phone", "source_job_id").
		Values(c.Name, c.Email, c.Phone, c.SourceJobID)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return err
	}

	if _, err := db.Pool.Exec(ctx, sqlStr, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return models.ErrDuplicateCandidate
		}
		logger.Log.Errorf("Error saving candidate %s: %v", c.Email, err)
		return err
	}
	return nil
}
