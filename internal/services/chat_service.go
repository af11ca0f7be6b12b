package services

import (
	"context"
	"time"

	"TalentDesk/server/internal/db"
	"TalentDesk/server/internal/logger"
	"TalentDesk/server/internal/models"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
)

type ChatService interface {
	CreateRoom(ctx context.Context, creator models.Participant, name, roomType string, others []models.Participant) (*models.ChatRoom, error)
	GetRoomById(ctx context.Context, roomID int) (*models.ChatRoom, error)
	GetRoomsByEmployeeId(ctx context.Context, employeeID int) ([]models.ChatRoom, error)
	GetParticipants(ctx context.Context, roomID int) ([]models.Participant, error)
	IsParticipant(ctx context.Context, roomID, employeeID int) (bool, error)
	SetPinned(ctx context.Context, roomID int, pinned bool) error
	SaveMessage(ctx context.Context, roomID int, sender models.Participant, content, messageType string, attachment *models.Attachment) (*models.ChatMessage, error)
	GetMessagesByRoomId(ctx context.Context, roomID, limit int) ([]models.ChatMessage, error)
}

type chatService struct{}

func NewChatService() *chatService {
	return &chatService{}
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// validateRoomShape enforces that a direct room is exactly two people: the
// creator plus one other.
func validateRoomShape(roomType string, others int) error {
	if roomType == models.RoomTypeDirect && others != 1 {
		return models.ErrInvalidRoomShape
	}
	return nil
}

func (cs *chatService) CreateRoom(ctx context.Context, creator models.Participant, name, roomType string, others []models.Participant) (*models.ChatRoom, error) {
	if err := validateRoomShape(roomType, len(others)); err != nil {
		logger.Log.Infof("Rejecting direct room from employee %d with %d other participants", creator.EmployeeID, len(others))
		return nil, err
	}

	query := psql.Insert("chat_rooms").
		Columns("name", "type", "created_by", "created_at").
		Values(name, roomType, creator.EmployeeID, time.Now()).
		Suffix("RETURNING id, created_at")
	sqlStr, args, err := query.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return nil, err
	}

	room := &models.ChatRoom{Name: name, Type: roomType, CreatedBy: creator.EmployeeID}
	err = db.Pool.QueryRow(ctx, sqlStr, args...).Scan(&room.ID, &room.CreatedAt)
	if err != nil {
		logger.Log.Errorf("Error creating room: %v", err)
		return nil, err
	}

	members := append([]models.Participant{creator}, others...)
	for _, m := range members {
		insert := psql.Insert("room_participants").
			Columns("room_id", "employee_id", "name", "role").
			Values(room.ID, m.EmployeeID, m.Name, m.Role).
			Suffix("ON CONFLICT (room_id, employee_id) DO NOTHING")
		sqlStr, args, err := insert.ToSql()
		if err != nil {
			logger.Log.Errorf("Failed to build SQL query: %v", err)
			return nil, err
		}
		if _, err := db.Pool.Exec(ctx, sqlStr, args...); err != nil {
			logger.Log.Errorf("Error adding participant %d to room %d: %v", m.EmployeeID, room.ID, err)
			return nil, err
		}
	}

	room.Participants, err = cs.GetParticipants(ctx, room.ID)
	if err != nil {
		return nil, err
	}

	logger.Log.Infof("Room %d (%s) created by employee %d with %d participants", room.ID, roomType, creator.EmployeeID, len(room.Participants))
	return room, nil
}

func (cs *chatService) GetRoomById(ctx context.Context, roomID int) (*models.ChatRoom, error) {
	query := psql.Select("id", "name", "type", "is_pinned", "created_by", "created_at", "last_message_at").
		From("chat_rooms").
		Where(squirrel.Eq{"id": roomID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return nil, err
	}

	var room models.ChatRoom
	err = db.Pool.QueryRow(ctx, sqlStr, args...).
		Scan(&room.ID, &room.Name, &room.Type, &room.IsPinned, &room.CreatedBy, &room.CreatedAt, &room.LastMessageAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, models.ErrRoomNotFound
		}
		logger.Log.Errorf("Error getting room %d: %v", roomID, err)
		return nil, err
	}
	return &room, nil
}

func (cs *chatService) GetRoomsByEmployeeId(ctx context.Context, employeeID int) ([]models.ChatRoom, error) {
	query := psql.Select("chat_rooms.id", "chat_rooms.name", "chat_rooms.type", "chat_rooms.is_pinned",
		"chat_rooms.created_by", "chat_rooms.created_at", "chat_rooms.last_message_at").
		From("chat_rooms").
		Join("room_participants ON chat_rooms.id = room_participants.room_id").
		Where(squirrel.Eq{"room_participants.employee_id": employeeID}).
		OrderBy("chat_rooms.is_pinned DESC", "chat_rooms.last_message_at DESC NULLS LAST")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Log.Errorf("Error getting rooms for employee %d: %v", employeeID, err)
		return nil, err
	}
	defer rows.Close()

	var rooms []models.ChatRoom
	for rows.Next() {
		var room models.ChatRoom
		err := rows.Scan(&room.ID, &room.Name, &room.Type, &room.IsPinned,
			&room.CreatedBy, &room.CreatedAt, &room.LastMessageAt)
		if err != nil {
			logger.Log.Errorf("Error scanning room row: %v", err)
			return nil, err
		}
		rooms = append(rooms, room)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	for i := range rooms {
		participants, err := cs.GetParticipants(ctx, rooms[i].ID)
		if err != nil {
			logger.Log.Errorf("Error getting participants for room %d: %v", rooms[i].ID, err)
			return nil, err
		}
		rooms[i].Participants = participants
	}

	logger.Log.Infof("Fetched %d rooms for employee %d", len(rooms), employeeID)
	return rooms, nil
}

func (cs *chatService) GetParticipants(ctx context.Context, roomID int) ([]models.Participant, error) {
	query := psql.Select("id", "room_id", "employee_id", "name", "role", "joined_at").
		From("room_participants").
		Where(squirrel.Eq{"room_id": roomID}).
		OrderBy("joined_at", "id")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Log.Errorf("Error getting participants for room %d: %v", roomID, err)
		return nil, err
	}
	defer rows.Close()

	var participants []models.Participant
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.RoomID, &p.EmployeeID, &p.Name, &p.Role, &p.JoinedAt); err != nil {
			logger.Log.Errorf("Error scanning participant row: %v", err)
			return nil, err
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (cs *chatService) IsParticipant(ctx context.Context, roomID, employeeID int) (bool, error) {
	query := `
        SELECT EXISTS (
            SELECT 1
            FROM room_participants
            WHERE room_id = $1 AND employee_id = $2
        )
    `

	var exists bool
	err := db.Pool.QueryRow(ctx, query, roomID, employeeID).Scan(&exists)
	if err != nil {
		logger.Log.Errorf("Error checking if employee %d is a participant of room %d: %v", employeeID, roomID, err)
		return false, err
	}
	return exists, nil
}

func (cs *chatService) SetPinned(ctx context.Context, roomID int, pinned bool) error {
	query := psql.Update("chat_rooms").
		Set("is_pinned", pinned).
		Where(squirrel.Eq{"id": roomID})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return err
	}

	tag, err := db.Pool.Exec(ctx, sqlStr, args...)
	if err != nil {
		logger.Log.Errorf("Error pinning room %d: %v", roomID, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.ErrRoomNotFound
	}
	return nil
}

// SaveMessage appends to the room's ledger. Order is the server-assigned
// created_at with the serial id as tie-breaker, so concurrent inserts never
// produce an ambiguous ordering. The message, its attachment, and the room's
// last_message_at bump commit as one transaction.
func (cs *chatService) SaveMessage(ctx context.Context, roomID int, sender models.Participant, content, messageType string, attachment *models.Attachment) (*models.ChatMessage, error) {
	if _, err := cs.GetRoomById(ctx, roomID); err != nil {
		return nil, err
	}

	isParticipant, err := cs.IsParticipant(ctx, roomID, sender.EmployeeID)
	if err != nil {
		return nil, err
	}
	if !isParticipant {
		return nil, models.ErrNotAParticipant
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		logger.Log.Errorf("Error starting transaction for room %d: %v", roomID, err)
		return nil, err
	}
	defer tx.Rollback(ctx)

	query := psql.Insert("chat_messages").
		Columns("room_id", "sender_id", "sender_name", "message_type", "content", "created_at").
		Values(roomID, sender.EmployeeID, sender.Name, messageType, content, squirrel.Expr("NOW()")).
		Suffix("RETURNING id, created_at")

	sqlStr, args, err := query.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return nil, err
	}

	msg := &models.ChatMessage{
		RoomID:      roomID,
		SenderID:    sender.EmployeeID,
		SenderName:  sender.Name,
		MessageType: messageType,
		Content:     content,
	}
	err = tx.QueryRow(ctx, sqlStr, args...).Scan(&msg.ID, &msg.CreatedAt)
	if err != nil {
		logger.Log.Errorf("Error saving message to room %d: %v", roomID, err)
		return nil, err
	}

	if attachment != nil {
		insert := psql.Insert("attachments").
			Columns("message_id", "file_name", "file_url", "file_type", "file_size").
			Values(msg.ID, attachment.FileName, attachment.FileURL, attachment.FileType, attachment.FileSize).
			Suffix("RETURNING id")
		sqlStr, args, err := insert.ToSql()
		if err != nil {
			logger.Log.Errorf("Failed to build SQL query: %v", err)
			return nil, err
		}
		if err := tx.QueryRow(ctx, sqlStr, args...).Scan(&attachment.ID); err != nil {
			logger.Log.Errorf("Error saving attachment for message %d: %v", msg.ID, err)
			return nil, err
		}
		attachment.MessageID = msg.ID
		msg.Attachments = []models.Attachment{*attachment}
	}

	update := psql.Update("chat_rooms").
		Set("last_message_at", msg.CreatedAt).
		Where(squirrel.Eq{"id": roomID})
	sqlStr, args, err = update.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return nil, err
	}
	if _, err := tx.Exec(ctx, sqlStr, args...); err != nil {
		logger.Log.Errorf("Error updating last_message_at for room %d: %v", roomID, err)
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Log.Errorf("Error committing message to room %d: %v", roomID, err)
		return nil, err
	}

	logger.Log.Infof("Message %d saved to room %d by employee %d", msg.ID, roomID, sender.EmployeeID)
	return msg, nil
}

func (cs *chatService) GetMessagesByRoomId(ctx context.Context, roomID, limit int) ([]models.ChatMessage, error) {
	if _, err := cs.GetRoomById(ctx, roomID); err != nil {
		return nil, err
	}

	queryBuilder := psql.Select("id", "room_id", "sender_id", "sender_name", "message_type", "content", "created_at").
		From("chat_messages").
		Where(squirrel.Eq{"room_id": roomID})

	if limit > 0 {
		// Most recent N, flipped back to creation order below.
		queryBuilder = queryBuilder.OrderBy("created_at DESC", "id DESC").Limit(uint64(limit))
	} else {
		queryBuilder = queryBuilder.OrderBy("created_at", "id")
	}

	sqlStr, args, err := queryBuilder.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Log.Errorf("Error getting messages for room %d: %v", roomID, err)
		return nil, err
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var msg models.ChatMessage
		err := rows.Scan(&msg.ID, &msg.RoomID, &msg.SenderID, &msg.SenderName, &msg.MessageType, &msg.Content, &msg.CreatedAt)
		if err != nil {
			logger.Log.Errorf("Error scanning message row: %v", err)
			return nil, err
		}
		messages = append(messages, msg)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}

	if limit > 0 {
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}
	}

	if err := cs.attachFiles(ctx, messages); err != nil {
		return nil, err
	}

	logger.Log.Infof("Fetched %d messages for room %d", len(messages), roomID)
	return messages, nil
}

func (cs *chatService) attachFiles(ctx context.Context, messages []models.ChatMessage) error {
	if len(messages) == 0 {
		return nil
	}

	ids := make([]int, len(messages))
	index := make(map[int]*models.ChatMessage, len(messages))
	for i := range messages {
		ids[i] = messages[i].ID
		index[messages[i].ID] = &messages[i]
	}

	query := psql.Select("id", "message_id", "file_name", "file_url", "file_type", "file_size").
		From("attachments").
		Where(squirrel.Eq{"message_id": ids})

	sqlStr, args, err := query.ToSql()
	if err != nil {
		logger.Log.Errorf("Failed to build SQL query: %v", err)
		return err
	}

	rows, err := db.Pool.Query(ctx, sqlStr, args...)
	if err != nil {
		logger.Log.Errorf("Error getting attachments: %v", err)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var a models.Attachment
		if err := rows.Scan(&a.ID, &a.MessageID, &a.FileName, &a.FileURL, &a.FileType, &a.FileSize); err != nil {
			logger.Log.Errorf("Error scanning attachment row: %v", err)
			return err
		}
		if msg, ok := index[a.MessageID]; ok {
			msg.Attachments = append(msg.Attachments, a)
		}
	}
	return rows.Err()
}
