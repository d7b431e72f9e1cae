package protocol

import (
	"errors"
	"strings"
	"testing"

	"github.com/gajjugrg/ludo-game/internal/game"
)

func TestJoinFrameHasNoPayload(t *testing.T) {
	b, err := Encode(Join{Room: "lounge"})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if string(b) != "^lounge" {
		t.Fatalf("expected ^lounge, got %q", b)
	}
}

func TestHelloRoundTrip(t *testing.T) {
	b, err := Encode(Hello{PeerID: "p-1", Name: "Alice"})
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	if !strings.HasPrefix(string(b), "+ ") {
		t.Fatalf("hello frame should start with '+ ', got %q", b)
	}
	m, err := Decode(b)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	h, ok := m.(Hello)
	if !ok {
		t.Fatalf("expected Hello, got %T", m)
	}
	if h.PeerID != "p-1" || h.Name != "Alice" {
		t.Fatalf("unexpected hello %+v", h)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	m := game.NewMatch(2, nil, false)
	snap := StateSnapshot{State: Snapshot{
		Game:      m.State,
		PeerOrder: []string{"a", "b"},
		HostID:    "a",
		PeerNames: map[string]string{"a": "Alice"},
	}}
	b, err := Encode(snap)
	if err != nil {
		t.Fatalf("encode failed: %v", err)
	}
	got, err := Decode(b)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	ss, ok := got.(StateSnapshot)
	if !ok {
		t.Fatalf("expected StateSnapshot, got %T", got)
	}
	if ss.State.HostID != "a" || len(ss.State.PeerOrder) != 2 {
		t.Fatalf("unexpected snapshot %+v", ss.State)
	}
	if len(ss.State.Game.Players) != 2 {
		t.Fatalf("expected 2 players in replicated game, got %d", len(ss.State.Game.Players))
	}
}

func TestDecodeRejections(t *testing.T) {
	if _, err := Decode(nil); err != ErrEmptyFrame {
		t.Fatalf("expected ErrEmptyFrame, got %v", err)
	}
	if _, err := Decode([]byte("?whatever")); !errors.Is(err, ErrUnknownFrame) {
		t.Fatalf("expected ErrUnknownFrame, got %v", err)
	}
	if _, err := Decode([]byte("+ not-json")); err == nil {
		t.Fatal("malformed hello payload should fail to decode")
	}
	if _, err := Decode([]byte("* {broken")); err == nil {
		t.Fatal("malformed snapshot payload should fail to decode")
	}
}

func TestJoinDecodeTrimsRoom(t *testing.T) {
	m, err := Decode([]byte("^  table7 "))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	j, ok := m.(Join)
	if !ok || j.Room != "table7" {
		t.Fatalf("expected trimmed room table7, got %+v", m)
	}
}
