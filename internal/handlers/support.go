package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"TalentDesk/server/internal/appMiddleware"
	"TalentDesk/server/internal/models"

	"github.com/go-chi/chi/v5"
)

// MyConversation returns the caller's current support conversation, creating
// one lazily so first-time visitors always get a handle to poll.
func MyConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := appMiddleware.IdentityFromContext(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	userID := identity.EmployeeID
	conv, err := supportService.GetOrCreateConversation(ctx, &userID, identity.Email, identity.Name, nil)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	messages, err := supportService.GetMessagesByConversationId(ctx, conv.ID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if messages == nil {
		messages = []models.SupportMessage{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"conversation": conv,
		"messages":     messages,
	})
}

type sendSupportMessageRequest struct {
	Message string  `json:"message"`
	Subject *string `json:"subject,omitempty"`
}

// SendSupportMessage appends a user message, creating the conversation on
// first contact.
func SendSupportMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := appMiddleware.IdentityFromContext(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var req sendSupportMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}

	userID := identity.EmployeeID
	conv, err := supportService.GetOrCreateConversation(ctx, &userID, identity.Email, identity.Name, req.Subject)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	msg, err := supportService.SaveReply(ctx, conv.ID, models.SenderTypeUser, identity.Name, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"conversation": conv,
		"message":      msg,
	})
}

// ListConversations is the support-agent view of the queue.
func ListConversations(w http.ResponseWriter, r *http.Request) {
	conversations, err := supportService.ListConversations(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if conversations == nil {
		conversations = []models.SupportConversation{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"conversations": conversations})
}

func GetConversationMessages(w http.ResponseWriter, r *http.Request) {
	conversationID, err := conversationIDFromURL(r)
	if err != nil {
		http.Error(w, "Invalid conversation ID", http.StatusBadRequest)
		return
	}

	messages, err := supportService.GetMessagesByConversationId(r.Context(), conversationID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if messages == nil {
		messages = []models.SupportMessage{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"messages": messages})
}

type replyRequest struct {
	Message string `json:"message"`
}

// ReplyToConversation appends an agent reply. Status is untouched; a reply
// to a resolved conversation is accepted and simply shows up in the ledger.
func ReplyToConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity, ok := appMiddleware.IdentityFromContext(ctx)
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conversationID, err := conversationIDFromURL(r)
	if err != nil {
		http.Error(w, "Invalid conversation ID", http.StatusBadRequest)
		return
	}

	var req replyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "Message is required", http.StatusBadRequest)
		return
	}

	msg, err := supportService.SaveReply(ctx, conversationID, models.SenderTypeSupport, identity.Name, req.Message)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{"message": msg})
}

type statusRequest struct {
	Status string `json:"status"`
}

func SetConversationStatus(w http.ResponseWriter, r *http.Request) {
	conversationID, err := conversationIDFromURL(r)
	if err != nil {
		http.Error(w, "Invalid conversation ID", http.StatusBadRequest)
		return
	}

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if !models.ValidConversationStatus(req.Status) {
		http.Error(w, "Invalid status", http.StatusBadRequest)
		return
	}

	if err := supportService.SetStatus(r.Context(), conversationID, req.Status); err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Status updated"})
}

func conversationIDFromURL(r *http.Request) (int, error) {
	return strconv.Atoi(chi.URLParam(r, "id"))
}
