package bulk

import (
	"context"
	"sync"
	"time"

	"TalentDesk/server/internal/models"
)

// memStore implements the JobStore contract in memory for engine tests:
// terminal transitions are single-shot and counter updates are atomic under
// one mutex, mirroring what the SQL guards give the postgres store.
type memStore struct {
	mu         sync.Mutex
	jobs       map[string]*models.BulkUploadJob
	files      map[string][]*models.BulkUploadFile
	candidates map[string]models.Candidate
	nextFileID int
}

var _ JobStore = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{
		jobs:       make(map[string]*models.BulkUploadJob),
		files:      make(map[string][]*models.BulkUploadFile),
		candidates: make(map[string]models.Candidate),
	}
}

func (s *memStore) CreateJob(_ context.Context, jobID string, fileNames []string) (*models.BulkUploadJob, []models.BulkUploadFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job := &models.BulkUploadJob{
		ID:         len(s.jobs) + 1,
		JobID:      jobID,
		Status:     models.JobStatusProcessing,
		TotalFiles: len(fileNames),
		CreatedAt:  time.Now(),
	}
	s.jobs[jobID] = job

	out := make([]models.BulkUploadFile, 0, len(fileNames))
	for _, name := range fileNames {
		s.nextFileID++
		f := &models.BulkUploadFile{
			ID:           s.nextFileID,
			JobID:        jobID,
			OriginalName: name,
			Status:       models.FileStatusPending,
		}
		s.files[jobID] = append(s.files[jobID], f)
		out = append(out, *f)
	}
	return s.snapshot(job), out, nil
}

func (s *memStore) GetJob(_ context.Context, jobID string) (*models.BulkUploadJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, models.ErrJobNotFound
	}
	return s.snapshot(job), nil
}

func (s *memStore) GetFiles(_ context.Context, jobID string) ([]models.BulkUploadFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.BulkUploadFile
	for _, f := range s.files[jobID] {
		out = append(out, *f)
	}
	return out, nil
}

func (s *memStore) FailedFiles(_ context.Context, jobID string) ([]models.BulkUploadFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.BulkUploadFile
	for _, f := range s.files[jobID] {
		if f.Status == models.FileStatusFailed {
			out = append(out, *f)
		}
	}
	return out, nil
}

func (s *memStore) SetFileStorageKey(_ context.Context, fileID int, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f := s.file(fileID); f != nil {
		f.StorageKey = key
	}
	return nil
}

func (s *memStore) MarkFileProcessing(_ context.Context, fileID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if f := s.file(fileID); f != nil && f.Status == models.FileStatusPending {
		f.Status = models.FileStatusProcessing
	}
	return nil
}

func (s *memStore) CompleteFile(_ context.Context, jobID string, fileID int, res FileResult) (*models.BulkUploadJob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return nil, models.ErrJobNotFound
	}

	f := s.file(fileID)
	if f == nil {
		return nil, models.ErrFileNotFound
	}
	if f.Status == models.FileStatusSuccess || f.Status == models.FileStatusFailed {
		return s.snapshot(job), nil
	}

	if res.Success {
		f.Status = models.FileStatusSuccess
		name, email, phone := res.Fields.Name, res.Fields.Email, res.Fields.Phone
		f.ExtractedName, f.ExtractedEmail, f.ExtractedPhone = &name, &email, &phone
		job.SuccessfulFiles++
	} else {
		f.Status = models.FileStatusFailed
		msg := res.ErrorMessage
		f.ErrorMessage = &msg
		job.FailedFiles++
	}
	job.ProcessedFiles++
	return s.snapshot(job), nil
}

func (s *memStore) FinalizeJob(_ context.Context, jobID string, errorReportURL *string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return false, models.ErrJobNotFound
	}
	if job.Status != models.JobStatusProcessing || job.ProcessedFiles != job.TotalFiles {
		return false, nil
	}

	now := time.Now()
	job.Status = models.JobStatusCompleted
	job.CompletedAt = &now
	if errorReportURL != nil {
		job.ErrorReportURL = errorReportURL
	}
	return true, nil
}

func (s *memStore) FailJob(_ context.Context, jobID, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	job, ok := s.jobs[jobID]
	if !ok {
		return models.ErrJobNotFound
	}
	if job.Status == models.JobStatusProcessing {
		now := time.Now()
		job.Status = models.JobStatusFailed
		job.CompletedAt = &now
	}
	return nil
}

func (s *memStore) SaveCandidate(_ context.Context, c models.Candidate) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.candidates[c.Email]; exists {
		return models.ErrDuplicateCandidate
	}
	s.candidates[c.Email] = c
	return nil
}

func (s *memStore) file(fileID int) *models.BulkUploadFile {
	for _, files := range s.files {
		for _, f := range files {
			if f.ID == fileID {
				return f
			}
		}
	}
	return nil
}

func (s *memStore) snapshot(job *models.BulkUploadJob) *models.BulkUploadJob {
	cp := *job
	return &cp
}
