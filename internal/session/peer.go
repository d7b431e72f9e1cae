package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gajjugrg/ludo-game/internal/board"
	"github.com/gajjugrg/ludo-game/internal/game"
	"github.com/gajjugrg/ludo-game/internal/protocol"
)

var (
	ErrNotHost     = errors.New("session: only the host may start a new game")
	ErrNotYourSeat = errors.New("session: it is not this peer's turn")
)

// DefaultClaimTimeout is the grace interval a joining peer waits for a
// snapshot before declaring itself host.
const DefaultClaimTimeout = 2500 * time.Millisecond

// Sender pushes an encoded frame towards the relay. Delivery is
// fire-and-forget: a failed send is logged and the state re-propagates
// on the next mutation.
type Sender interface {
	Send(protocol.Message) error
}

type Config struct {
	ID           string // generated when empty
	Name         string
	Players      int
	AISecond     bool
	ClaimTimeout time.Duration
	Sender       Sender
	Logger       zerolog.Logger
}

// Peer is one client's view of a room: its identity, its seat, the local
// match, and the replication bookkeeping. All methods are safe for
// concurrent use; inbound frames, local input, and the host-claim timer
// serialize on one mutex.
type Peer struct {
	mu sync.Mutex

	id      string
	name    string
	players int
	seat    int
	lock    SeatLock

	match    *game.Match
	aiSecond bool

	peerOrder  []string
	hostID     string
	peerNames  map[string]string
	colorNames map[string]string
	helloOrder []string // peers heard from, arrival order

	sender       Sender
	claimTimeout time.Duration
	claim        *time.Timer

	online   bool
	applying bool
	pending  bool

	log zerolog.Logger
}

func New(cfg Config) *Peer {
	if cfg.ID == "" {
		cfg.ID = uuid.NewString()
	}
	if cfg.Players == 0 {
		cfg.Players = 4
	}
	if cfg.ClaimTimeout == 0 {
		cfg.ClaimTimeout = DefaultClaimTimeout
	}
	p := &Peer{
		id:           cfg.ID,
		name:         cfg.Name,
		players:      cfg.Players,
		aiSecond:     cfg.AISecond,
		match:        game.NewMatch(cfg.Players, nil, cfg.AISecond),
		peerNames:    map[string]string{cfg.ID: cfg.Name},
		sender:       cfg.Sender,
		claimTimeout: cfg.ClaimTimeout,
		log:          cfg.Logger,
	}
	return p
}

func (p *Peer) ID() string { return p.id }

func (p *Peer) Seat() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.seat
}

func (p *Peer) HostID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hostID
}

func (p *Peer) IsHost() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hostID == p.id
}

func (p *Peer) PeerOrder() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.peerOrder))
	copy(out, p.peerOrder)
	return out
}

// Match exposes the live local game. It is not synchronized: only code
// already serialized with the peer (tests, Mutate callbacks) may touch it.
// Concurrent readers use StateCopy.
func (p *Peer) Match() *game.Match { return p.match }

// StateCopy returns a consistent deep copy of the replicated game state.
// This is the read path for anything running alongside the inbound frame
// loop, which swaps the live state wholesale on every snapshot.
func (p *Peer) StateCopy() game.State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.match.State.Clone()
}

// Stop cancels any pending host-claim timer.
func (p *Peer) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cancelClaimLocked()
}

// Handle processes one inbound frame. Unknown or irrelevant frames are
// ignored.
func (p *Peer) Handle(msg protocol.Message) {
	switch m := msg.(type) {
	case protocol.Ack:
		p.handleAck(m)
	case protocol.Hello:
		p.handleHello(m)
	case protocol.StateSnapshot:
		p.handleSnapshot(m.State)
	case protocol.Join:
		// relay-bound command, never delivered to peers
	}
}

// handleAck marks the peer online, announces presence, and arms the
// host-claim timer: if no snapshot lands before it fires, this peer
// declares itself host.
func (p *Peer) handleAck(m protocol.Ack) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !m.OK {
		return
	}
	p.online = true
	p.log.Info().Str("room", m.Room).Msg("joined room")
	p.sendLocked(protocol.Hello{PeerID: p.id, Name: p.name})
	p.cancelClaimLocked()
	p.claim = time.AfterFunc(p.claimTimeout, p.becomeHost)
}

func (p *Peer) becomeHost() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hostID != "" {
		return
	}
	p.log.Info().Str("peer", p.id).Msg("no snapshot arrived, claiming host")
	p.hostID = p.id
	p.peerOrder = []string{p.id}
	// Peers that announced themselves during the grace interval get seated
	// right away, so the claim broadcast already carries the full room.
	for _, id := range p.helloOrder {
		_, p.peerOrder = DeriveSeat(id, p.peerOrder, p.players)
	}
	p.seat = 0
	p.lock.Lock(0, p.players)
	p.match = game.NewMatch(p.players, p.seatNamesLocked(), p.aiSecond)
	p.broadcastLocked()
}

// handleHello records the sender's display name. A host seeing a
// previously-unseen peer reassigns seats and republishes immediately so
// the newcomer converges.
func (p *Peer) handleHello(m protocol.Hello) {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, seen := p.peerNames[m.PeerID]
	p.peerNames[m.PeerID] = m.Name
	if !seen {
		p.helloOrder = append(p.helloOrder, m.PeerID)
	}
	if seen || p.hostID != p.id {
		return
	}
	_, p.peerOrder = DeriveSeat(m.PeerID, p.peerOrder, p.players)
	p.applySeatNamesLocked()
	p.broadcastLocked()
}

// handleSnapshot adopts an incoming snapshot by wholesale replacement:
// local game state, peer order, host identity and names all come from the
// wire. Any locally pending selection wait is discarded with the rest of
// the old state. Broadcasting is suppressed for the duration of the apply;
// a mutation attempted mid-apply is flushed right after.
func (p *Peer) handleSnapshot(s protocol.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if s.Game == nil {
		return
	}
	p.cancelClaimLocked()
	p.applying = true

	p.match.Adopt(s.Game)
	p.players = len(s.Game.Players)
	p.aiSecond = s.AISecond
	p.hostID = s.HostID
	for id, name := range s.PeerNames {
		p.peerNames[id] = name
	}
	if len(s.Names) > 0 {
		p.colorNames = s.Names
	}
	p.seat, p.peerOrder = p.lock.Resolve(p.id, s.PeerOrder, p.players)

	p.applying = false
	if p.pending {
		p.pending = false
		p.broadcastLocked()
	}
}

// NewGame replaces the current match with a fresh one. Online, only the
// host may do this; the rejection is local and sends nothing.
func (p *Peer) NewGame(players int, aiSecond bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.online && p.hostID != p.id {
		return ErrNotHost
	}
	if players != p.players {
		p.lock.Clear()
		p.players = players
	}
	p.aiSecond = aiSecond
	p.seat, p.peerOrder = p.lock.Resolve(p.id, p.peerOrder, players)
	p.match = game.NewMatch(players, p.seatNamesLocked(), aiSecond)
	p.broadcastLocked()
	return nil
}

// Roll draws the die for the current seat. Online, the roll is rejected
// unless the turn belongs to this peer's seat, except that the host also
// rolls on behalf of computer-controlled seats.
func (p *Peer) Roll() (game.RollOutcome, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	cur := p.match.State.Current
	actingAI := cur >= 0 && cur < len(p.match.State.Players) && p.match.State.Players[cur].IsAI
	if p.online && cur != p.seat && !(actingAI && p.hostID == p.id) {
		return 0, ErrNotYourSeat
	}
	out, err := p.match.Roll()
	if err != nil {
		return out, err
	}
	p.broadcastLocked()
	return out, nil
}

// SelectToken resolves a pending multi-choice selection.
func (p *Peer) SelectToken(tokenIndex int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	w := p.match.State.Waiting
	if w == nil {
		return game.ErrNoSelection
	}
	if p.online && w.Player != p.seat {
		return ErrNotYourSeat
	}
	if err := p.match.SelectToken(w.Player, tokenIndex); err != nil {
		return err
	}
	p.broadcastLocked()
	return nil
}

// Mutate runs fn against the local match under the peer's lock and
// replicates the result. This is how debug operations (forced turns,
// jump-to-finish, undo) stay visible to the rest of the room. Online they
// are host-only, like NewGame; the rejection stays off the network.
func (p *Peer) Mutate(fn func(*game.Match)) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.online && p.hostID != p.id {
		return ErrNotHost
	}
	fn(p.match)
	p.broadcastLocked()
	return nil
}

// seatNamesLocked maps active colors to the display names of the peers
// holding the corresponding seats, falling back to the color bindings from
// the last adopted snapshot for seats without a known peer.
func (p *Peer) seatNamesLocked() map[board.Color]string {
	names := make(map[board.Color]string)
	colors := board.ActiveColors(p.players)
	for i, c := range colors {
		if i < len(p.peerOrder) {
			if n := p.peerNames[p.peerOrder[i]]; n != "" {
				names[c] = n
				continue
			}
		}
		if n := p.colorNames[string(c)]; n != "" {
			names[c] = n
		}
	}
	return names
}

func (p *Peer) applySeatNamesLocked() {
	colors := p.match.State.ActiveColors()
	for i := range p.match.State.Players {
		if i >= len(colors) || i >= len(p.peerOrder) {
			break
		}
		if n := p.peerNames[p.peerOrder[i]]; n != "" {
			p.match.State.Players[i].Name = n
		}
	}
}

func (p *Peer) buildSnapshotLocked() protocol.Snapshot {
	names := make(map[string]string, len(p.match.State.Players))
	for _, pl := range p.match.State.Players {
		names[string(pl.Color)] = pl.Name
	}
	order := make([]string, len(p.peerOrder))
	copy(order, p.peerOrder)
	peerNames := make(map[string]string, len(p.peerNames))
	for id, n := range p.peerNames {
		peerNames[id] = n
	}
	return protocol.Snapshot{
		Game:      p.match.State,
		Names:     names,
		AISecond:  p.aiSecond,
		PeerOrder: order,
		HostID:    p.hostID,
		PeerNames: peerNames,
	}
}

// broadcastLocked pushes a snapshot to the room. Suppressed while an
// incoming snapshot is being applied; the attempt is remembered and
// flushed once the apply finishes.
func (p *Peer) broadcastLocked() {
	if !p.online {
		return
	}
	if p.applying {
		p.pending = true
		return
	}
	p.sendLocked(protocol.StateSnapshot{State: p.buildSnapshotLocked()})
}

func (p *Peer) sendLocked(m protocol.Message) {
	if p.sender == nil {
		return
	}
	if err := p.sender.Send(m); err != nil {
		p.log.Debug().Err(err).Msg("send failed, waiting for next mutation")
	}
}

func (p *Peer) cancelClaimLocked() {
	if p.claim != nil {
		p.claim.Stop()
		p.claim = nil
	}
}
