package game

import "github.com/gajjugrg/ludo-game/internal/board"

// ringToken identifies a ring-resident token during occupancy checks.
type ringToken struct {
	player int
	token  int
}

// Capture records one token sent home by a move.
type Capture struct {
	Player    int `json:"player"`
	Token     int `json:"token"`
	FromSteps int `json:"fromSteps"`
}

// MoveRecord is one entry of the append-only move log. The log replaces
// whole-state undo snapshots: a record carries enough to roll the move back,
// including the turn bookkeeping in force when the move was applied.
type MoveRecord struct {
	Seat      int       `json:"seat"`
	Token     int       `json:"token"`
	Die       int       `json:"die"`
	FromSteps int       `json:"fromSteps"`
	ToSteps   int       `json:"toSteps"`
	Captured  []Capture `json:"captured,omitempty"`

	PrevCurrent int  `json:"prevCurrent"`
	PrevDice    int  `json:"prevDice"`
	PrevCanRoll bool `json:"prevCanRoll"`
	PrevSixes   int  `json:"prevSixes"`
}

// LegalMoves returns the token indices the given seat may move with the
// given die. Yard tokens need a six to enter; board tokens must not
// overshoot the end of the finish track (exact count required); finished
// tokens never move. Stacks do not block movement.
func (m *Match) LegalMoves(playerIndex, die int) []int {
	p := &m.State.Players[playerIndex]
	var playable []int
	for ti, t := range p.Tokens {
		switch {
		case t.Finished:
		case t.InYard():
			if die == 6 {
				playable = append(playable, ti)
			}
		default:
			if t.Steps+die <= board.FinishEntryStep+board.FinishLen {
				playable = append(playable, ti)
			}
		}
	}
	return playable
}

// tokensAt lists tokens occupying a ring index. Only ring-resident tokens
// count: finish-track tokens are invisible here, which is what exempts them
// from capture even when their step arithmetic collides with a ring index.
func (m *Match) tokensAt(index int) []ringToken {
	var out []ringToken
	for pi := range m.State.Players {
		p := &m.State.Players[pi]
		for ti, t := range p.Tokens {
			if t.OnRing() && m.Topo.RingIndex(p.Color, t.Steps) == index {
				out = append(out, ringToken{player: pi, token: ti})
			}
		}
	}
	return out
}

// opposingAt filters the ring occupants of index down to tokens not owned
// by playerIndex.
func (m *Match) opposingAt(index, playerIndex int) []ringToken {
	var out []ringToken
	for _, o := range m.tokensAt(index) {
		if o.player != playerIndex {
			out = append(out, o)
		}
	}
	return out
}

// captureAt reports whether landing on index would send at least one
// opposing token home: the square must not be safe and the opposing
// occupants must not form a single-opponent block of two or more.
func (m *Match) captureAt(index, playerIndex int) bool {
	if m.Topo.IsSafe(index) {
		return false
	}
	opposing := m.opposingAt(index, playerIndex)
	if len(opposing) == 0 {
		return false
	}
	return blockOwner(opposing) < 0
}

// blockOwner returns the owning seat when two or more tokens at one index
// all belong to the same player, else -1.
func blockOwner(occupants []ringToken) int {
	if len(occupants) < 2 {
		return -1
	}
	owner := occupants[0].player
	for _, o := range occupants[1:] {
		if o.player != owner {
			return -1
		}
	}
	return owner
}

// IsBlock reports whether a ring index holds a same-owner stack. Display
// and AI heuristics only; blocks never forbid movement.
func (m *Match) IsBlock(index int) bool {
	return blockOwner(m.tokensAt(index)) >= 0
}

// Apply moves a token, resolves captures and finishing, checks the win
// condition, and advances or repeats the turn. Callers validate legality
// first (Roll/SelectToken do); Apply itself trusts its arguments, which is
// also what lets debug moves bypass the dice flow.
func (m *Match) Apply(playerIndex, tokenIndex, die int) {
	st := m.State
	p := &st.Players[playerIndex]
	t := &p.Tokens[tokenIndex]

	rec := MoveRecord{
		Seat: playerIndex, Token: tokenIndex, Die: die, FromSteps: t.Steps,
		PrevCurrent: st.Current, PrevDice: st.Dice, PrevCanRoll: st.CanRoll, PrevSixes: st.ConsecSixes,
	}

	if t.InYard() {
		t.Steps = 0
	} else {
		t.Steps += die
	}

	if t.Steps >= board.FinishEntryStep+board.FinishLen {
		t.Steps = board.FinishEntryStep + board.FinishLen
		t.Finished = true
		p.FinishedCount++
	}

	// Captures are resolved on ring landings only; a token entering or
	// inside its finish track never captures and is never captured. A stack
	// of two or more tokens all owned by one opponent is unbreakable.
	if t.Steps < board.FinishEntryStep {
		index := m.Topo.RingIndex(p.Color, t.Steps)
		opposing := m.opposingAt(index, playerIndex)
		if !m.Topo.IsSafe(index) && blockOwner(opposing) < 0 {
			for _, o := range opposing {
				ot := &st.Players[o.player].Tokens[o.token]
				rec.Captured = append(rec.Captured, Capture{Player: o.player, Token: o.token, FromSteps: ot.Steps})
				ot.Steps = -1
			}
		}
	}

	rec.ToSteps = t.Steps
	m.log = append(m.log, rec)

	if p.FinishedCount == board.TokensPerPlayer {
		st.Running = false
		st.CanRoll = false
		st.Winner = playerIndex
		return
	}

	if die == 6 {
		// Extra roll for the same seat.
		st.Dice = 0
		st.CanRoll = true
		return
	}
	m.nextTurn()
}

// MoveLog returns the applied-move history, oldest first.
func (m *Match) MoveLog() []MoveRecord {
	out := make([]MoveRecord, len(m.log))
	copy(out, m.log)
	return out
}

// Undo rolls back the most recent applied move: the moved token returns to
// its prior steps, captured tokens are restored, and the turn bookkeeping
// reverts to the moment before the move was applied. A move that had been
// chosen from a multi-candidate roll reverts to the selection wait.
func (m *Match) Undo() bool {
	if len(m.log) == 0 {
		return false
	}
	rec := m.log[len(m.log)-1]
	m.log = m.log[:len(m.log)-1]

	st := m.State
	p := &st.Players[rec.Seat]
	t := &p.Tokens[rec.Token]
	if t.Finished && rec.FromSteps < board.FinishEntryStep+board.FinishLen {
		t.Finished = false
		p.FinishedCount--
	}
	t.Steps = rec.FromSteps
	for _, c := range rec.Captured {
		st.Players[c.Player].Tokens[c.Token].Steps = c.FromSteps
	}

	st.Current = rec.PrevCurrent
	st.Dice = rec.PrevDice
	st.CanRoll = rec.PrevCanRoll
	st.ConsecSixes = rec.PrevSixes
	st.Waiting = nil
	if rec.Die > 0 && !rec.PrevCanRoll && rec.Die == rec.PrevDice {
		if moves := m.LegalMoves(rec.Seat, rec.Die); len(moves) >= 2 {
			st.Waiting = &Selection{Player: rec.Seat, Tokens: moves, Die: rec.Die}
		}
	}

	if st.Winner == rec.Seat && p.FinishedCount < board.TokensPerPlayer {
		st.Winner = -1
		st.Running = true
	}
	return true
}

// JumpToFinish force-finishes a token (debug panel operation).
func (m *Match) JumpToFinish(playerIndex, tokenIndex int) {
	st := m.State
	if playerIndex < 0 || playerIndex >= len(st.Players) ||
		tokenIndex < 0 || tokenIndex >= board.TokensPerPlayer {
		return
	}
	p := &st.Players[playerIndex]
	t := &p.Tokens[tokenIndex]
	if t.Finished {
		return
	}
	m.log = append(m.log, MoveRecord{
		Seat: playerIndex, Token: tokenIndex,
		FromSteps: t.Steps, ToSteps: board.FinishEntryStep + board.FinishLen,
		PrevCurrent: st.Current, PrevDice: st.Dice, PrevCanRoll: st.CanRoll, PrevSixes: st.ConsecSixes,
	})
	t.Steps = board.FinishEntryStep + board.FinishLen
	t.Finished = true
	if p.FinishedCount < board.TokensPerPlayer {
		p.FinishedCount++
	}
	if p.FinishedCount == board.TokensPerPlayer {
		st.Running = false
		st.CanRoll = false
		st.Winner = playerIndex
	}
}

// ForceTurn hands the turn to an arbitrary seat (debug panel operation).
func (m *Match) ForceTurn(playerIndex int) {
	if playerIndex < 0 || playerIndex >= len(m.State.Players) {
		return
	}
	m.State.Current = playerIndex
}
