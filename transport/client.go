package transport

import (
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"teamshooter/roommgr"
	"teamshooter/wire"
)

const (
	writeWait         = 10 * time.Second
	pongWait          = 60 * time.Second
	pingPeriod        = (pongWait * 9) / 10
	maxMessageSize    = 4096
	sendBufSize       = 256
	maxMessagesPerSec = 60
	maxNameLen        = 16

	binaryMarker = 0xFF
)

// Client represents one WebSocket connection. It implements
// roommgr.Broadcaster so a RoomHandle can push events and snapshots to it
// without knowing anything about transport.
type Client struct {
	hub        *Hub
	conn       *websocket.Conn
	send       chan []byte
	remoteAddr string

	playerID   string
	playerName string
	room       *roommgr.RoomHandle

	msgCount   int
	msgResetAt time.Time

	authPlayerID int64
	authUsername string

	lastSnapshot wire.Snapshot
	hasSnapshot  bool
}

// NewClient wraps a raw WebSocket connection.
func NewClient(hub *Hub, conn *websocket.Conn, remoteAddr string) *Client {
	return &Client{
		hub:        hub,
		conn:       conn,
		send:       make(chan []byte, sendBufSize),
		remoteAddr: remoteAddr,
	}
}

// ReadPump reads inbound frames until the connection closes.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.TrackDisconnect(c.remoteAddr)
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("ws error: %v", err)
			}
			break
		}

		now := time.Now()
		if now.After(c.msgResetAt) {
			c.msgCount = 0
			c.msgResetAt = now.Add(time.Second)
		}
		c.msgCount++
		if c.msgCount > maxMessagesPerSec {
			log.Printf("rate limit exceeded for %s, disconnecting", c.remoteAddr)
			break
		}

		c.handleMessage(message)
	}
}

// WritePump drains the send channel to the socket and keeps it alive
// with periodic pings.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			var err error
			if len(message) > 0 && message[0] == binaryMarker {
				err = c.conn.WriteMessage(websocket.BinaryMessage, message[1:])
			} else {
				err = c.conn.WriteMessage(websocket.TextMessage, message)
			}
			if err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// SendDirect implements roommgr.Broadcaster for ordered-reliable, discrete
// messages (team-assigned, player-killed, match-ended, errors).
func (c *Client) SendDirect(env wire.Envelope) {
	data, err := json.Marshal(env)
	if err != nil {
		log.Printf("marshal error: %v", err)
		return
	}
	c.sendRaw(data)
}

// SendSnapshot implements roommgr.Broadcaster for the best-effort
// state-sync channel: a full msgpack snapshot the first time, delta
// snapshots after that, keyed off the last snapshot actually queued on
// this connection. A frame dropped because the send buffer is full does
// not advance that base, so the next delta still covers its changes.
func (c *Client) SendSnapshot(snap wire.Snapshot) {
	var data []byte
	var err error
	if !c.hasSnapshot {
		data, err = wire.EncodeSnapshot(snap)
	} else {
		delta := wire.ComputeDelta(c.lastSnapshot, snap)
		data, err = wire.EncodeDelta(delta)
	}
	if err != nil {
		log.Printf("snapshot encode error: %v", err)
		return
	}
	if c.sendBinary(data) {
		c.lastSnapshot = snap
		c.hasSnapshot = true
	}
}

func (c *Client) sendRaw(data []byte) {
	defer func() { recover() }()
	select {
	case c.send <- data:
	default:
	}
}

func (c *Client) sendBinary(data []byte) (queued bool) {
	defer func() { recover() }()
	msg := make([]byte, len(data)+1)
	msg[0] = binaryMarker
	copy(msg[1:], data)
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) handleMessage(raw []byte) {
	var env wire.InEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		log.Printf("unmarshal error: %v", err)
		return
	}

	switch env.T {
	case "join":
		c.handleJoin(env.D)
	case "leave":
		c.leaveRoom()
	case wire.MsgMove:
		c.handleMove(env.D)
	case wire.MsgDash:
		c.handleDash(env.D)
	case wire.MsgShoot:
		c.handleShoot(env.D)
	case "register":
		c.handleRegister(env.D)
	case "login":
		c.handleLogin(env.D)
	}
}

type joinMsg struct {
	Name   string `json:"name"`
	RoomID string `json:"roomId"`
}

func (c *Client) handleJoin(data json.RawMessage) {
	var msg joinMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	name := msg.Name
	if name == "" {
		name = "Pilot"
	}
	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}

	var h *roommgr.RoomHandle
	if msg.RoomID != "" {
		found, ok := c.hub.rooms.GetRoom(msg.RoomID)
		if !ok {
			c.SendDirect(wire.Envelope{T: wire.MsgError, D: wire.ErrorMsg{Msg: "room not found"}})
			return
		}
		h = found
	} else {
		h = c.hub.rooms.FindJoinable()
	}
	if h == nil {
		c.SendDirect(wire.Envelope{T: wire.MsgError, D: wire.ErrorMsg{Msg: "server full"}})
		return
	}

	playerID := uuid.NewString()
	if _, ok := h.Join(playerID, name, c.authPlayerID, c); !ok {
		c.SendDirect(wire.Envelope{T: wire.MsgError, D: wire.ErrorMsg{Msg: "room full"}})
		return
	}

	c.playerID = playerID
	c.playerName = name
	c.room = h
}

func (c *Client) leaveRoom() {
	if c.room == nil {
		return
	}
	c.room.Leave(c.playerID)
	c.hub.rooms.RemoveEmpty(c.room.ID)
	c.room = nil
	c.playerID = ""
}

func (c *Client) handleMove(data json.RawMessage) {
	if c.room == nil {
		return
	}
	var msg wire.MoveMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.room.Move(c.playerID, msg.X, msg.Y, msg.VelocityX, msg.VelocityY, msg.FlipX)
}

func (c *Client) handleDash(data json.RawMessage) {
	if c.room == nil {
		return
	}
	var msg wire.DashMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.room.Dash(c.playerID, msg.IsDashing)
}

func (c *Client) handleShoot(data json.RawMessage) {
	if c.room == nil {
		return
	}
	var msg wire.ShootMsg
	if err := json.Unmarshal(data, &msg); err != nil {
		return
	}
	c.room.Shoot(c.playerID, msg.X, msg.Y)
}
