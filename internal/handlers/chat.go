package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"TalentDesk/server/internal/appMiddleware"
	"TalentDesk/server/internal/logger"
	"TalentDesk/server/internal/models"

	"github.com/go-chi/chi/v5"
)

type createRoomRequest struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Participants []struct {
		ParticipantID   int    `json:"participant_id"`
		ParticipantName string `json:"participant_name"`
		ParticipantRole string `json:"participant_role"`
	} `json:"participants"`
}

func CreateRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := appMiddleware.IdentityFromContext(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req createRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Log.Infof("Error decoding create room request: %v", err)
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Type != models.RoomTypeDirect && req.Type != models.RoomTypeGroup {
		http.Error(w, "Invalid room type", http.StatusBadRequest)
		return
	}

	creator := models.Participant{
		EmployeeID: identity.EmployeeID,
		Name:       identity.Name,
		Role:       identity.Role,
	}
	others := make([]models.Participant, 0, len(req.Participants))
	for _, p := range req.Participants {
		if p.ParticipantID == identity.EmployeeID {
			continue
		}
		others = append(others, models.Participant{
			EmployeeID: p.ParticipantID,
			Name:       p.ParticipantName,
			Role:       p.ParticipantRole,
		})
	}

	room, err := chatService.CreateRoom(ctx, creator, req.Name, req.Type, others)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"room": room})
}

func GetRooms(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := appMiddleware.IdentityFromContext(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	rooms, err := chatService.GetRoomsByEmployeeId(ctx, identity.EmployeeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if rooms == nil {
		rooms = []models.ChatRoom{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"rooms": rooms})
}

func PinRoom(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	roomID, err := roomIDFromURL(r)
	if err != nil {
		http.Error(w, "Invalid room ID", http.StatusBadRequest)
		return
	}

	var req struct {
		IsPinned bool `json:"is_pinned"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := chatService.SetPinned(ctx, roomID, req.IsPinned); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Room updated"})
}

func GetRoomMessages(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := appMiddleware.IdentityFromContext(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	roomID, err := roomIDFromURL(r)
	if err != nil {
		http.Error(w, "Invalid room ID", http.StatusBadRequest)
		return
	}

	isParticipant, err := chatService.IsParticipant(ctx, roomID, identity.EmployeeID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !isParticipant {
		writeServiceError(w, models.ErrNotAParticipant)
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 {
			limit = n
		}
	}

	messages, err := chatService.GetMessagesByRoomId(ctx, roomID, limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

type postMessageRequest struct {
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
}

func PostRoomMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := appMiddleware.IdentityFromContext(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	roomID, err := roomIDFromURL(r)
	if err != nil {
		http.Error(w, "Invalid room ID", http.StatusBadRequest)
		return
	}

	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "Message content is required", http.StatusBadRequest)
		return
	}
	if req.MessageType == "" {
		req.MessageType = models.MessageTypeText
	}

	sender := models.Participant{EmployeeID: identity.EmployeeID, Name: identity.Name, Role: identity.Role}
	msg, err := chatService.SaveMessage(ctx, roomID, sender, req.Content, req.MessageType, nil)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	clientPool.BroadcastMessage(ctx, roomID, msg)

	writeJSON(w, http.StatusCreated, map[string]interface{}{"message": msg})
}

type attachmentMessageRequest struct {
	Content     string `json:"content"`
	MessageType string `json:"message_type"`
	FileName    string `json:"file_name"`
	FileURL     string `json:"file_url"`
	FileType    string `json:"file_type"`
	FileSize    int64  `json:"file_size"`
}

func PostRoomAttachmentMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := appMiddleware.IdentityFromContext(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	roomID, err := roomIDFromURL(r)
	if err != nil {
		http.Error(w, "Invalid room ID", http.StatusBadRequest)
		return
	}

	var req attachmentMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.FileURL == "" || req.FileName == "" {
		http.Error(w, "file_name and file_url are required", http.StatusBadRequest)
		return
	}
	if req.MessageType == "" {
		req.MessageType = models.MessageTypeFile
	}

	attachment := &models.Attachment{
		FileName: req.FileName,
		FileURL:  req.FileURL,
		FileType: req.FileType,
		FileSize: req.FileSize,
	}

	sender := models.Participant{EmployeeID: identity.EmployeeID, Name: identity.Name, Role: identity.Role}
	msg, err := chatService.SaveMessage(ctx, roomID, sender, req.Content, req.MessageType, attachment)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	clientPool.BroadcastMessage(ctx, roomID, msg)

	writeJSON(w, http.StatusCreated, map[string]interface{}{"message": msg})
}

func roomIDFromURL(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}
