package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func multipartBatch(t *testing.T, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for name, data := range files {
		part, err := w.CreateFormFile("resumes", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

// An invalid batch is rejected from the part headers alone; the nil engine
// here guarantees no file content was ever handed downstream.
func TestBulkResumeUploadRejectsInvalidBatchBeforeReading(t *testing.T) {
	Init(nil, nil, nil, nil, nil, "secret")

	t.Run("oversized file rejects the whole batch", func(t *testing.T) {
		body, contentType := multipartBatch(t, map[string][]byte{
			"fine.pdf": []byte("small"),
			"huge.pdf": bytes.Repeat([]byte("x"), 12<<20),
		})

		req := httptest.NewRequest(http.MethodPost, "/api/admin/bulk-resume-upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		BulkResumeUpload(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "10MB")
	})

	t.Run("unsupported type rejected", func(t *testing.T) {
		body, contentType := multipartBatch(t, map[string][]byte{
			"resume.txt": []byte("plain text"),
		})

		req := httptest.NewRequest(http.MethodPost, "/api/admin/bulk-resume-upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		BulkResumeUpload(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("empty field rejected", func(t *testing.T) {
		body, contentType := multipartBatch(t, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/admin/bulk-resume-upload", body)
		req.Header.Set("Content-Type", contentType)
		rec := httptest.NewRecorder()
		BulkResumeUpload(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}
