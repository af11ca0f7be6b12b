package handlers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"TalentDesk/server/internal/logger"

	"github.com/google/uuid"
)

const maxChatUploadSize = 25 << 20 // 25MB

// UploadChatFile stores one chat attachment and returns its stable reference.
// The caller then posts an attachment message carrying these fields.
func UploadChatFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, maxChatUploadSize)
	if err := r.ParseMultipartForm(maxChatUploadSize); err != nil {
		http.Error(w, "File too large or malformed upload", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file field", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		logger.Log.Errorf("Error reading upload %s: %v", header.Filename, err)
		http.Error(w, "Could not read upload", http.StatusBadRequest)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := fmt.Sprintf("chat/%s%s", uuid.NewString(), filepath.Ext(header.Filename))
	url, err := blobs.Save(ctx, key, contentType, data)
	if err != nil {
		logger.Log.Errorf("Error storing upload %s: %v", header.Filename, err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"fileUrl":  url,
		"fileName": header.Filename,
		"fileType": contentType,
		"fileSize": len(data),
	})
}
