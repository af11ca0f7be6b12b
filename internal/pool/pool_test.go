package pool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"TalentDesk/server/internal/models"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeParticipants struct {
	rooms map[int][]models.Participant
}

func (f *fakeParticipants) GetParticipants(_ context.Context, roomID int) ([]models.Participant, error) {
	return f.rooms[roomID], nil
}

var upgrader = websocket.Upgrader{CheckOrigin: func(*http.Request) bool { return true }}

// dialTestClient connects a websocket client and registers it with the pool
// under the given employee id.
func dialTestClient(t *testing.T, p *Pool, srvURL string, employeeID int, name string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srvURL, "http") + "?employee_id=" + strconv.Itoa(employeeID) + "&name=" + name
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func newTestServer(t *testing.T, p *Pool) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		employeeID, _ := strconv.Atoi(r.URL.Query().Get("employee_id"))
		p.AddClient(employeeID, r.URL.Query().Get("name"), conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

// waitRegistered blocks until the employee has the expected number of live
// connections; AddClient runs on the server handler's goroutine.
func waitRegistered(t *testing.T, p *Pool, employeeID, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		p.mu.Lock()
		defer p.mu.Unlock()
		return len(p.clients[employeeID]) == want
	}, time.Second, 5*time.Millisecond)
}

func readEnvelope(t *testing.T, conn *websocket.Conn) Envelope {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	var env Envelope
	require.NoError(t, conn.ReadJSON(&env))
	return env
}

func TestBroadcastReachesParticipantsOnly(t *testing.T) {
	participants := &fakeParticipants{rooms: map[int][]models.Participant{
		7: {
			{RoomID: 7, EmployeeID: 1, Name: "Alice", Role: "recruiter"},
			{RoomID: 7, EmployeeID: 2, Name: "Bob", Role: "hiring_manager"},
		},
	}}
	p := NewPool(participants)
	srv := newTestServer(t, p)

	alice := dialTestClient(t, p, srv.URL, 1, "Alice")
	bob := dialTestClient(t, p, srv.URL, 2, "Bob")
	eve := dialTestClient(t, p, srv.URL, 3, "Eve")
	waitRegistered(t, p, 1, 1)
	waitRegistered(t, p, 2, 1)
	waitRegistered(t, p, 3, 1)

	msg := &models.ChatMessage{
		ID:          42,
		RoomID:      7,
		SenderID:    1,
		SenderName:  "Alice",
		MessageType: models.MessageTypeText,
		Content:     "interview moved to Friday",
		CreatedAt:   time.Now().UTC(),
	}
	p.BroadcastMessage(context.Background(), 7, msg)

	for _, conn := range []*websocket.Conn{alice, bob} {
		env := readEnvelope(t, conn)
		assert.Equal(t, EventNewMessage, env.Type)
		assert.Equal(t, 7, env.RoomID)
		require.NotNil(t, env.Message)
		assert.Equal(t, 42, env.Message.ID)
		assert.Equal(t, "interview moved to Friday", env.Message.Content)
		assert.Equal(t, "Alice", env.Message.SenderName)
	}

	// Eve is not a participant of room 7 and must receive nothing.
	require.NoError(t, eve.SetReadDeadline(time.Now().Add(200*time.Millisecond)))
	var env Envelope
	err := eve.ReadJSON(&env)
	require.Error(t, err)
}

func TestBroadcastFansOutToEveryConnection(t *testing.T) {
	participants := &fakeParticipants{rooms: map[int][]models.Participant{
		3: {{RoomID: 3, EmployeeID: 1, Name: "Alice", Role: "recruiter"}},
	}}
	p := NewPool(participants)
	srv := newTestServer(t, p)

	// Same employee in two tabs.
	tab1 := dialTestClient(t, p, srv.URL, 1, "Alice")
	tab2 := dialTestClient(t, p, srv.URL, 1, "Alice")
	waitRegistered(t, p, 1, 2)

	msg := &models.ChatMessage{ID: 9, RoomID: 3, SenderID: 1, Content: "ping", MessageType: models.MessageTypeText}
	p.BroadcastMessage(context.Background(), 3, msg)

	for _, conn := range []*websocket.Conn{tab1, tab2} {
		env := readEnvelope(t, conn)
		assert.Equal(t, 9, env.Message.ID)
	}
}

func TestBroadcastDropsDeadConnections(t *testing.T) {
	participants := &fakeParticipants{rooms: map[int][]models.Participant{
		5: {{RoomID: 5, EmployeeID: 1, Name: "Alice", Role: "recruiter"}},
	}}
	p := NewPool(participants)

	// A client whose connection is already torn down server-side.
	srv := newTestServer(t, p)
	conn := dialTestClient(t, p, srv.URL, 1, "Alice")
	waitRegistered(t, p, 1, 1)

	p.mu.Lock()
	require.Len(t, p.clients[1], 1)
	var dead *Client
	for c := range p.clients[1] {
		dead = c
	}
	p.mu.Unlock()
	require.NoError(t, dead.Conn.Close())
	_ = conn.Close()

	msg := &models.ChatMessage{ID: 1, RoomID: 5, Content: "hello", MessageType: models.MessageTypeText}
	p.BroadcastMessage(context.Background(), 5, msg)

	p.mu.Lock()
	defer p.mu.Unlock()
	assert.Empty(t, p.clients[1])
}

func TestRemoveClientForgetsEmployeeWhenLastTabCloses(t *testing.T) {
	p := NewPool(&fakeParticipants{})
	srv := newTestServer(t, p)
	dialTestClient(t, p, srv.URL, 1, "Alice")
	waitRegistered(t, p, 1, 1)

	p.mu.Lock()
	var c *Client
	for cl := range p.clients[1] {
		c = cl
	}
	p.mu.Unlock()
	require.NotNil(t, c)

	p.RemoveClient(c)

	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.clients[1]
	assert.False(t, ok)
}
