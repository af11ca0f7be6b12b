package services

import (
	"context"

	"TalentDesk/server/internal/db"
	"TalentDesk/server/internal/logger"
	"TalentDesk/server/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

type SupportService interface {
	GetOrCreateConversation(ctx context.Context, userID *int, userEmail, userName string, subject *string) (*models.SupportConversation, error)
	GetConversationById(ctx context.Context, conversationID int) (*models.SupportConversation, error)
	ListConversations(ctx context.Context) ([]models.SupportConversation, error)
	SaveReply(ctx context.Context, conversationID int, senderType, senderName, message string) (*models.SupportMessage, error)
	GetMessagesByConversationId(ctx context.Context, conversationID int) ([]models.SupportMessage, error)
	SetStatus(ctx context.Context, conversationID int, status string) error
}

type supportService struct{}

func NewSupportService() *supportService {
	return &supportService{}
}

// GetOrCreateConversation returns the caller's most recent non-closed
// conversation, or creates a fresh one with status open. Matching is by
// user id when known, otherwise by email (anonymous visitors).
func (ss *supportService) GetOrCreateConversation(ctx context.Context, userID *int, userEmail, userName string, subject *string) (*models.SupportConversation, error) {
	match := squirrel.Sqlizer(squirrel.Eq{"user_email": userEmail})
	if userID != nil {
		match = squirrel.Eq{"user_id": *userID}
	}

	query := psql.Select("id", "user_id", "user_email", "user_name", "subject", "status", "last_message_at", "created_at").
		From("support_conversations").
		Where(match).
		Where(squirrel.NotEq{"status": models.ConversationStatusClosed}).
		OrderBy("created_at DESC").
		Limit(1)

	sqlStr, args, err := query.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return nil, err
	}

	var conv models.SupportConversation
	err = db.Pool.QueryRow(ctx, sqlStr, args...).
		Scan(&conv.ID, &conv.UserID, &conv.UserEmail, &conv.UserName, &conv.Subject, &conv.Status, &conv.LastMessageAt, &conv.CreatedAt)
	if err == nil {
		return &conv, nil
	}
	if err != pgx.ErrNoRows {
		logger.Log.Errorf("Error looking up conversation for %s: %v", userEmail, err)
		return nil, err
	}

	insert := psql.Insert("support_conversations").
		Columns("user_id", "user_email", "user_name", "subject", "status").
		Values(userID, userEmail, userName, subject, models.ConversationStatusOpen).
		Suffix("RETURNING id, user_id, user_email, user_name, subject, status, last_message_at, created_at")

	sqlStr, args, err = insert.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return nil, err
	}

	err = db.Pool.QueryRow(ctx, sqlStr, args...).
		Scan(&conv.ID, &conv.UserID, &conv.UserEmail, &conv.UserName, &conv.Subject, &conv.Status, &conv.LastMessageAt, &conv.CreatedAt)
	if err != nil {
		logger.Log.Errorf("Error creating conversation for %s: %v", userEmail, err)
		return nil, err
	}

	logger.Log.Infof("Support conversation %d created for %s", conv.ID, userEmail)
	return &conv, nil
}

func (ss *supportService) GetConversationById(ctx context.Context, conversationID int) (*models.SupportConversation, error) {
	query := psql.Select("id", "user_id", "user_email", "user_name", "subject", "status", "last_message_at", "created_at").
		From("support_conversations").
		Where(squirrel.Eq{"id": conversationID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return nil, err
	}

	var conv models.SupportConversation
	err = db.Pool.QueryRow(ctx, sqlStr, args...).
		Scan(&conv.ID, &conv.UserID, &conv.UserEmail, &conv.UserName, &conv.Subject, &conv.Status, &conv.LastMessageAt, &conv.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrConversationNotFound
		}
		logger.Log.Errorf("Error getting conversation %d: %v", conversationID, err)
		return nil, err
	}
	return &conv, nil
}

func (ss *supportService) ListConversations(ctx context.Context) ([]models.SupportConversation, error) {
	query := psql.Select("id", "user_id", "user_email", "user_name", "subject", "status", "last_message_at", "created_at").
		From("support_conversations").
		OrderBy("last_message_at DESC NULLS LAST", "created_at DESC")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Log.Errorf("Error listing conversations: %v", err)
		return nil, err
	}
	defer rows.Close()

	var conversations []models.SupportConversation
	for rows.Next() {
		var conv models.SupportConversation
		err := rows.Scan(&conv.ID, &conv.UserID, &conv.UserEmail, &conv.UserName, &conv.Subject, &conv.Status, &conv.LastMessageAt, &conv.CreatedAt)
		if err != nil {
			logger.Log.Errorf("Error scanning conversation row: %v", err)
			return nil, err
		}
		conversations = append(conversations, conv)
	}
	return conversations, rows.Err()
}

// SaveReply appends to the conversation and bumps last_message_at. The
// conversation status is untouched; changing it is a separate explicit action.
func (ss *supportService) SaveReply(ctx context.Context, conversationID int, senderType, senderName, message string) (*models.SupportMessage, error) {
	if _, err := ss.GetConversationById(ctx, conversationID); err != nil {
		return nil, err
	}

	query := psql.Insert("support_messages").
		Columns("conversation_id", "sender_type", "sender_name", "message", "created_at").
		Values(conversationID, senderType, senderName, message, squirrel.Expr("NOW()")).
		Suffix("RETURNING id, created_at")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return nil, err
	}

	msg := &models.SupportMessage{
		ConversationID: conversationID,
		SenderType:     senderType,
		SenderName:     senderName,
		Message:        message,
	}
	err = db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		logger.Log.Errorf("Error saving reply to conversation %d: %v", conversationID, err)
		return nil, err
	}

	update := psql.Update("support_conversations").
		Set("last_message_at", msg.CreatedAt).
		Where(squirrel.Eq{"id": conversationID})
	sqlStr, args, err = update.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return nil, err
	}
	if _, err := db.Pool.Exec(ctx, sqlStr, args...); err != nil {
		logger.Log.Errorf("Error updating last_message_at for conversation %d: %v", conversationID, err)
		return nil, err
	}

	logger.Log.Infof("Reply %d saved to conversation %d by %s (%s)", msg.ID, conversationID, senderName, senderType)
	return msg, nil
}

func (ss *supportService) GetMessagesByConversationId(ctx context.Context, conversationID int) ([]models.SupportMessage, error) {
	if _, err := ss.GetConversationById(ctx, conversationID); err != nil {
		return nil, err
	}

	query := psql.Select("id", "conversation_id", "sender_type", "sender_name", "message", "created_at").
		From("support_messages").
		Where(squirrel.Eq{"conversation_id": conversationID}).
		OrderBy("created_at", "id")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Log.Errorf("Error getting messages for conversation %d: %v", conversationID, err)
		return nil, err
	}
	defer rows.Close()

	var messages []models.SupportMessage
	for rows.Next() {
		var msg models.SupportMessage
		err := rows.Scan(&msg.ID, &msg.ConversationID, &msg.SenderType, &msg.SenderName, &msg.Message, &msg.CreatedAt)
		if err != nil {
			logger.Log.Errorf("Error scanning support message row: %v", err)
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// SetStatus is free-form: any status may move to any other.
func (ss *supportService) SetStatus(ctx context.Context, conversationID int, status string) error {
	query := psql.Update("support_conversations").
		Set("status", status).
		Where(squirrel.Eq{"id": conversationID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return err
	}

	tag, err := db.Pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		logger.Log.Errorf("Error setting status of conversation %d: %v", conversationID, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrConversationNotFound
	}

	logger.Log.Infof("Conversation %d status set to %s", conversationID, status)
	return nil
}
