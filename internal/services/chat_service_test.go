package services

import (
	"context"
	"testing"

	"TalentDesk/server/internal/models"

	"github.com/stretchr/testify/require"
)

// A direct room is exactly two people; the shape check runs before any row
// is written, so a bad shape never reaches the database.
func TestCreateRoomDirectShape(t *testing.T) {
	cs := NewChatService()
	creator := models.Participant{EmployeeID: 1, Name: "Alice", Role: "recruiter"}
	other := func(id int) models.Participant {
		return models.Participant{EmployeeID: id, Name: "Other", Role: "hiring_manager"}
	}

	t.Run("direct with no other participant rejected", func(t *testing.T) {
		_, err := cs.CreateRoom(context.Background(), creator, "dm", models.RoomTypeDirect, nil)
		require.ErrorIs(t, err, models.ErrInvalidRoomShape)
	})

	t.Run("direct with two others rejected", func(t *testing.T) {
		_, err := cs.CreateRoom(context.Background(), creator, "dm", models.RoomTypeDirect,
			[]models.Participant{other(2), other(3)})
		require.ErrorIs(t, err, models.ErrInvalidRoomShape)
	})

	t.Run("direct with exactly one other passes validation", func(t *testing.T) {
		require.NoError(t, validateRoomShape(models.RoomTypeDirect, 1))
	})

	t.Run("group size is unconstrained", func(t *testing.T) {
		require.NoError(t, validateRoomShape(models.RoomTypeGroup, 0))
		require.NoError(t, validateRoomShape(models.RoomTypeGroup, 25))
	})
}
