package relay

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gajjugrg/ludo-game/internal/protocol"
)

func startHub(t *testing.T) (*Hub, string) {
	t.Helper()
	hub := NewHub()
	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(srv.Close)
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http")
}

func dial(t *testing.T, url string) *Client {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := Dial(ctx, url)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(c.Close)
	return c
}

func recv(t *testing.T, c *Client) protocol.Message {
	t.Helper()
	select {
	case m, ok := <-c.In:
		if !ok {
			t.Fatalf("connection closed while waiting for frame")
		}
		return m
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for frame")
		return nil
	}
}

func joinRoom(t *testing.T, c *Client, room string) {
	t.Helper()
	if err := c.Join(room); err != nil {
		t.Fatalf("join: %v", err)
	}
	ack, ok := recv(t, c).(protocol.Ack)
	if !ok {
		t.Fatalf("expected ack after join")
	}
	if !ack.OK || ack.Room != room {
		t.Fatalf("unexpected ack %+v", ack)
	}
}

func TestJoinAckAndFanOut(t *testing.T) {
	_, url := startHub(t)
	a := dial(t, url)
	b := dial(t, url)
	joinRoom(t, a, "ffa")
	joinRoom(t, b, "ffa")

	if err := a.Send(protocol.Hello{PeerID: "peer-a", Name: "Ada"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	hello, ok := recv(t, b).(protocol.Hello)
	if !ok {
		t.Fatalf("expected hello on peer b")
	}
	if hello.PeerID != "peer-a" || hello.Name != "Ada" {
		t.Fatalf("hello mangled: %+v", hello)
	}

	// Sender must not hear its own frame.
	select {
	case m := <-a.In:
		t.Fatalf("sender received its own frame: %+v", m)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestRoomsAreIsolated(t *testing.T) {
	_, url := startHub(t)
	a := dial(t, url)
	b := dial(t, url)
	joinRoom(t, a, "one")
	joinRoom(t, b, "two")

	if err := a.Send(protocol.Hello{PeerID: "peer-a"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	select {
	case m := <-b.In:
		t.Fatalf("frame crossed rooms: %+v", m)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestFramesBeforeJoinAreIgnored(t *testing.T) {
	_, url := startHub(t)
	a := dial(t, url)
	b := dial(t, url)
	joinRoom(t, b, "ffa")

	// a has not joined anywhere yet.
	if err := a.Send(protocol.Hello{PeerID: "early"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	select {
	case m := <-b.In:
		t.Fatalf("pre-join frame was relayed: %+v", m)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestRejoinLeavesPreviousRoom(t *testing.T) {
	_, url := startHub(t)
	a := dial(t, url)
	b := dial(t, url)
	joinRoom(t, a, "one")
	joinRoom(t, b, "one")
	joinRoom(t, a, "two")

	if err := b.Send(protocol.Hello{PeerID: "peer-b"}); err != nil {
		t.Fatalf("send: %v", err)
	}
	select {
	case m := <-a.In:
		t.Fatalf("frame reached a peer that left the room: %+v", m)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestRoomListingTracksOccupancy(t *testing.T) {
	hub, url := startHub(t)
	a := dial(t, url)
	b := dial(t, url)
	joinRoom(t, a, "ffa")
	joinRoom(t, b, "ffa")

	rooms := hub.Rooms()
	if len(rooms) != 1 || rooms[0].ID != "ffa" || rooms[0].Peers != 2 {
		t.Fatalf("unexpected room listing %+v", rooms)
	}

	a.Close()
	deadline := time.Now().Add(5 * time.Second)
	for {
		rooms = hub.Rooms()
		if len(rooms) == 1 && rooms[0].Peers == 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("disconnect not reflected in listing: %+v", rooms)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
