// Package relay is the dumb message fan-out between peers in a room. It
// inspects nothing but the leading tag byte of each frame: a join command
// moves the connection between rooms, everything else is forwarded verbatim
// to the other members of the sender's room. Game semantics never reach it.
package relay

import (
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/gajjugrg/ludo-game/internal/protocol"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 120 * time.Second
	pingPeriod = 30 * time.Second
	sendBuffer = 64
)

var upgrader = websocket.Upgrader{
	Subprotocols: []string{protocol.Subprotocol},
	CheckOrigin:  func(r *http.Request) bool { return true },
}

type conn struct {
	ws   *websocket.Conn
	send chan []byte
	done chan struct{}
	room string
}

// Hub tracks room membership. It is the only server-side shared state;
// join, leave and disconnect are the only events that mutate it.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*conn]struct{}
}

func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*conn]struct{})}
}

// RoomInfo is public room metadata for the HTTP listing.
type RoomInfo struct {
	ID    string `json:"id"`
	Peers int    `json:"peers"`
}

// Rooms lists current rooms and their occupancy, sorted by id.
func (h *Hub) Rooms() []RoomInfo {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]RoomInfo, 0, len(h.rooms))
	for id, set := range h.rooms {
		out = append(out, RoomInfo{ID: id, Peers: len(set)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// ServeWS upgrades the request and runs the connection until it drops.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}
	c := &conn{ws: ws, send: make(chan []byte, sendBuffer), done: make(chan struct{})}
	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *conn) {
	// send stays open: a concurrent fanOut may still hold a reference to
	// this conn. done tells writePump to stop draining it.
	defer func() {
		h.leave(c)
		close(c.done)
		_ = c.ws.Close()
	}()

	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		if len(data) == 0 {
			continue
		}

		if data[0] == '^' {
			room := strings.TrimSpace(string(data[1:]))
			if room == "" {
				continue
			}
			h.join(c, room)
			if ack, err := protocol.Encode(protocol.Ack{OK: true, Room: room}); err == nil {
				select {
				case c.send <- ack:
				default:
				}
			}
			continue
		}

		// Frames before the first join have nowhere to go.
		if c.room == "" {
			continue
		}
		h.fanOut(c, data)
	}
}

func (h *Hub) writePump(c *conn) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.ws.Close()
	}()
	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// join moves a connection into a room, implicitly leaving any prior one.
func (h *Hub) join(c *conn, room string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c)
	set := h.rooms[room]
	if set == nil {
		set = make(map[*conn]struct{})
		h.rooms[room] = set
	}
	set[c] = struct{}{}
	c.room = room
	log.Info().Str("room", room).Int("peers", len(set)).Msg("peer joined room")
}

func (h *Hub) leave(c *conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.leaveLocked(c)
}

func (h *Hub) leaveLocked(c *conn) {
	if c.room == "" {
		return
	}
	if set := h.rooms[c.room]; set != nil {
		delete(set, c)
		if len(set) == 0 {
			delete(h.rooms, c.room)
		}
	}
	c.room = ""
}

// fanOut relays a frame verbatim to every other member of the sender's
// room. Delivery is fire-and-forget: a member with a full send buffer
// misses the frame and catches up on the host's next broadcast.
func (h *Hub) fanOut(sender *conn, data []byte) {
	h.mu.Lock()
	members := make([]*conn, 0, len(h.rooms[sender.room]))
	for m := range h.rooms[sender.room] {
		if m != sender {
			members = append(members, m)
		}
	}
	h.mu.Unlock()

	for _, m := range members {
		select {
		case m.send <- data:
		default:
		}
	}
}
