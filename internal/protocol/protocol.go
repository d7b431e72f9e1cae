// Package protocol implements the relay wire format: text frames carrying a
// one-character tag, with JSON payloads for everything but the join command.
// The relay only ever looks at the tag; peers decode payloads into a small
// closed set of message types and drop anything they do not recognize.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/gajjugrg/ludo-game/internal/game"
)

// Subprotocol is the websocket subprotocol the clients offer.
const Subprotocol = "json"

var (
	ErrUnknownFrame = errors.New("unknown frame tag")
	ErrEmptyFrame   = errors.New("empty frame")
)

// Snapshot is the full replicated payload the host broadcasts after every
// local mutation. Receivers replace their state wholesale; there is no
// partial merge.
type Snapshot struct {
	Game      *game.State       `json:"game"`
	Names     map[string]string `json:"names"`     // color -> preferred display name
	AISecond  bool              `json:"aiSecond"`  // seat 1 machine-driven
	PeerOrder []string          `json:"peerOrder"` // seat -> peerId, arrival order
	HostID    string            `json:"hostId"`
	PeerNames map[string]string `json:"peerNames"` // peerId -> display name
}

// Message is the closed union of everything that can arrive on a relay
// connection. Receivers switch exhaustively on the concrete type.
type Message interface {
	frameTag() byte
}

// Join asks the relay to move this connection into a room. It is the only
// frame the relay acts on itself.
type Join struct {
	Room string
}

// Ack is the relay's join acknowledgement.
type Ack struct {
	OK   bool   `json:"ok"`
	Room string `json:"room"`
}

// Hello announces a peer's identity and display name to the room. It is
// sent on join and is independent of state snapshots.
type Hello struct {
	PeerID string `json:"peerId"`
	Name   string `json:"name"`
}

// StateSnapshot carries the host's full replicated state.
type StateSnapshot struct {
	State Snapshot `json:"state"`
}

func (Join) frameTag() byte          { return '^' }
func (Ack) frameTag() byte           { return '!' }
func (Hello) frameTag() byte         { return '+' }
func (StateSnapshot) frameTag() byte { return '*' }

// Encode renders a message as a wire frame.
func Encode(m Message) ([]byte, error) {
	if j, ok := m.(Join); ok {
		return []byte("^" + j.Room), nil
	}
	body, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("encode %c frame: %w", m.frameTag(), err)
	}
	return append([]byte{m.frameTag(), ' '}, body...), nil
}

// Decode parses a wire frame into its message. Unknown tags return
// ErrUnknownFrame and malformed JSON a wrapped error; receivers treat both
// as a dropped frame rather than a protocol failure.
func Decode(frame []byte) (Message, error) {
	if len(frame) == 0 {
		return nil, ErrEmptyFrame
	}
	tag, body := frame[0], frame[1:]
	switch tag {
	case '^':
		return Join{Room: strings.TrimSpace(string(body))}, nil
	case '!':
		var a Ack
		if err := json.Unmarshal(body, &a); err != nil {
			return nil, fmt.Errorf("decode ack: %w", err)
		}
		return a, nil
	case '+':
		var h Hello
		if err := json.Unmarshal(body, &h); err != nil {
			return nil, fmt.Errorf("decode hello: %w", err)
		}
		return h, nil
	case '*':
		var s StateSnapshot
		if err := json.Unmarshal(body, &s); err != nil {
			return nil, fmt.Errorf("decode snapshot: %w", err)
		}
		return s, nil
	default:
		return nil, ErrUnknownFrame
	}
}
