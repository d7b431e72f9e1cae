// Package session maps network peers to player seats and keeps a room's
// replicated state converged: it runs host election, builds and applies
// full-state snapshots, and forwards local roll/select input to the match.
package session

// DeriveSeat resolves the seat index for peerID given the room's arrival
// order and the active player count n. A peer already listed at an index
// below n keeps that seat. An unlisted peer takes the first free seat and
// is appended to the order. The returned order is truncated to n entries;
// a peer that cannot be seated gets -1 (spectator).
func DeriveSeat(peerID string, order []string, n int) (int, []string) {
	for i, id := range order {
		if id == peerID && i < n {
			return i, truncateOrder(order, n)
		}
	}
	if len(order) < n {
		out := make([]string, 0, len(order)+1)
		out = append(out, order...)
		out = append(out, peerID)
		return len(out) - 1, out
	}
	return -1, truncateOrder(order, n)
}

func truncateOrder(order []string, n int) []string {
	if len(order) > n {
		order = order[:n]
	}
	out := make([]string, len(order))
	copy(out, order)
	return out
}

// SeatLock pins a peer to a seat once assigned. The binding survives
// resyncs as long as the player count stays the same; changing the count
// clears it and falls back to derivation.
type SeatLock struct {
	seat    int
	players int
	locked  bool
}

func (l *SeatLock) Lock(seat, players int) {
	l.seat = seat
	l.players = players
	l.locked = true
}

func (l *SeatLock) Clear() { l.locked = false }

func (l *SeatLock) Locked() bool { return l.locked }

// Resolve returns the seat for peerID, honouring an active lock for the
// same player count, otherwise deriving (and locking) a fresh seat.
func (l *SeatLock) Resolve(peerID string, order []string, players int) (int, []string) {
	if l.locked && l.players == players {
		return l.seat, truncateOrder(order, players)
	}
	l.locked = false
	seat, out := DeriveSeat(peerID, order, players)
	if seat >= 0 {
		l.Lock(seat, players)
	}
	return seat, out
}
