package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"TalentDesk/server/internal/bulk"
	"TalentDesk/server/internal/logger"
	"TalentDesk/server/internal/models"
	"TalentDesk/server/internal/pool"
	"TalentDesk/server/internal/services"
	"TalentDesk/server/internal/storage"
)

var (
	chatService    services.ChatService
	supportService services.SupportService
	engine         *bulk.Engine
	clientPool     *pool.Pool
	blobs          storage.Store
	jwtSecret      string
)

// Init wires the handler package; called once from main before the router
// starts serving.
func Init(cs services.ChatService, ss services.SupportService, e *bulk.Engine, p *pool.Pool, store storage.Store, secret string) {
	chatService = cs
	supportService = ss
	engine = e
	clientPool = p
	blobs = store
	jwtSecret = secret
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Errorf("Error encoding response: %v", err)
	}
}

// writeServiceError maps the domain sentinels onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrRoomNotFound),
		errors.Is(err, models.ErrConversationNotFound),
		errors.Is(err, models.ErrJobNotFound),
		errors.Is(err, models.ErrFileNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrNotAParticipant):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, models.ErrInvalidRoomShape),
		errors.Is(err, models.ErrInvalidBatch):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
