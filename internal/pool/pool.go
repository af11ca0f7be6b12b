package pool

import (
	"context"
	"sync"

	"TalentDesk/server/internal/logger"
	"TalentDesk/server/internal/models"

	"github.com/gorilla/websocket"
)

// Envelope is the server-to-client wire format on the delivery channel.
type Envelope struct {
	Type         string              `json:"type"`
	EmployeeName string              `json:"employeeName,omitempty"`
	RoomID       int                 `json:"roomId,omitempty"`
	Message      *models.ChatMessage `json:"message,omitempty"`
}

const (
	EventAuthenticated = "authenticated"
	EventNewMessage    = "new_message"
)

// ParticipantSource resolves the current participants of a room; the pool
// fans out only to identities that are members right now.
type ParticipantSource interface {
	GetParticipants(ctx context.Context, roomID int) ([]models.Participant, error)
}

type Client struct {
	EmployeeID int
	Name       string
	Conn       *websocket.Conn

	mu sync.Mutex // gorilla conns allow one concurrent writer
}

func (c *Client) Send(env Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(env)
}

// Pool is the single owner of the identity → connection mapping. An employee
// may hold several connections (multiple tabs); each gets every event.
type Pool struct {
	mu           sync.Mutex
	clients      map[int]map[*Client]struct{}
	participants ParticipantSource
}

func NewPool(participants ParticipantSource) *Pool {
	return &Pool{
		clients:      make(map[int]map[*Client]struct{}),
		participants: participants,
	}
}

func (p *Pool) AddClient(employeeID int, name string, conn *websocket.Conn) *Client {
	c := &Client{EmployeeID: employeeID, Name: name, Conn: conn}

	p.mu.Lock()
	if p.clients[employeeID] == nil {
		p.clients[employeeID] = make(map[*Client]struct{})
	}
	p.clients[employeeID][c] = struct{}{}
	p.mu.Unlock()

	logger.Log.Infof("Employee %d connected to delivery channel", employeeID)
	return c
}

func (p *Pool) RemoveClient(c *Client) {
	p.mu.Lock()
	if set, ok := p.clients[c.EmployeeID]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(p.clients, c.EmployeeID)
		}
	}
	p.mu.Unlock()

	_ = c.Conn.Close()
	logger.Log.Infof("Employee %d disconnected from delivery channel", c.EmployeeID)
}

// BroadcastMessage pushes a newly created message to every open connection of
// the room's current participants. Delivery failures close that connection
// and are otherwise dropped; the ledger already holds the message.
func (p *Pool) BroadcastMessage(ctx context.Context, roomID int, msg *models.ChatMessage) {
	participants, err := p.participants.GetParticipants(ctx, roomID)
	if err != nil {
		logger.Log.Errorf("Error getting participants for room %d: %v", roomID, err)
		return
	}

	env := Envelope{Type: EventNewMessage, RoomID: roomID, Message: msg}

	var dead []*Client
	p.mu.Lock()
	for _, participant := range participants {
		for c := range p.clients[participant.EmployeeID] {
			if err := c.Send(env); err != nil {
				logger.Log.Errorf("Error sending event to employee %d: %v", c.EmployeeID, err)
				dead = append(dead, c)
			}
		}
	}
	p.mu.Unlock()

	for _, c := range dead {
		p.RemoveClient(c)
	}
}
