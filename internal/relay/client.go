package relay

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/gajjugrg/ludo-game/internal/protocol"
)

// Client is a peer-side relay connection. Inbound frames are decoded and
// delivered on In; frames that fail to decode are dropped with a log line.
type Client struct {
	ws *websocket.Conn
	In chan protocol.Message

	writeMu sync.Mutex
	closed  chan struct{}
	once    sync.Once
}

// Dial connects to a relay at url (ws:// or wss://).
func Dial(ctx context.Context, url string) (*Client, error) {
	dialer := websocket.Dialer{Subprotocols: []string{protocol.Subprotocol}}
	ws, _, err := dialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	c := &Client{
		ws:     ws,
		In:     make(chan protocol.Message, sendBuffer),
		closed: make(chan struct{}),
	}
	go c.readLoop()
	return c, nil
}

func (c *Client) readLoop() {
	defer func() {
		c.Close()
		close(c.In)
	}()
	for {
		_, data, err := c.ws.ReadMessage()
		if err != nil {
			return
		}
		msg, err := protocol.Decode(data)
		if err != nil {
			log.Debug().Err(err).Msg("dropping undecodable frame")
			continue
		}
		select {
		case c.In <- msg:
		case <-c.closed:
			return
		}
	}
}

// Join switches the connection into a room. The relay answers with an Ack
// on In.
func (c *Client) Join(room string) error {
	return c.Send(protocol.Join{Room: room})
}

// Send encodes and writes a single frame.
func (c *Client) Send(m protocol.Message) error {
	data, err := protocol.Encode(m)
	if err != nil {
		return err
	}
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteMessage(websocket.TextMessage, data)
}

func (c *Client) Close() {
	c.once.Do(func() {
		close(c.closed)
		_ = c.ws.Close()
	})
}
