package game

import (
	"errors"
	"math/rand"

	"github.com/gajjugrg/ludo-game/internal/board"
)

var (
	ErrNotRunning       = errors.New("game is not running")
	ErrRollPending      = errors.New("finish the current move before rolling again")
	ErrSelectionPending = errors.New("a token selection is pending")
	ErrNoSelection      = errors.New("no token selection is pending")
	ErrWrongSeat        = errors.New("not this seat's turn")
	ErrTokenNotPlayable = errors.New("token is not playable with this roll")
)

// DiceRoller produces a die value in 1..6. Injected so tests and debug
// tooling can script rolls.
type DiceRoller func() int

func defaultRoller() int { return rand.Intn(6) + 1 }

// RollOutcome describes how a roll resolved, for status reporting and for
// the session layer to decide what to broadcast.
type RollOutcome int

const (
	// RollForfeit: third consecutive six, turn forfeited with no move.
	RollForfeit RollOutcome = iota
	// RollNoMoves: no token is playable, turn passed.
	RollNoMoves
	// RollMoved: exactly one legal move (or an AI choice) was applied.
	RollMoved
	// RollAwaitSelection: two or more legal moves, waiting for a choice.
	RollAwaitSelection
)

// Match binds a game state to its board topology and dice source and runs
// the turn state machine over it. It is not safe for concurrent use; the
// owning peer serializes access.
type Match struct {
	State *State
	Topo  *board.Topology

	roll DiceRoller
	log  []MoveRecord
}

// NewMatch starts a fresh game for playerCount seats.
func NewMatch(playerCount int, names map[board.Color]string, aiSecond bool) *Match {
	topo := board.New(playerCount)
	return &Match{
		State: NewState(topo, names, aiSecond),
		Topo:  topo,
		roll:  defaultRoller,
	}
}

// Adopt replaces the match wholesale with a received state, re-deriving
// topology from the state's active colors. Any pending local selection is
// discarded along with the rest of the old state.
func (m *Match) Adopt(st *State) {
	m.State = st
	m.Topo = board.New(len(st.Players))
}

// SetRoller overrides the dice source.
func (m *Match) SetRoller(r DiceRoller) { m.roll = r }

// Roll draws the die for the current seat and resolves as far as possible:
// forfeits on a third six, applies a forced or AI move immediately, or
// parks in a selection wait when the seat has a real choice.
func (m *Match) Roll() (RollOutcome, error) {
	st := m.State
	if !st.Running {
		return 0, ErrNotRunning
	}
	if st.Waiting != nil {
		return 0, ErrSelectionPending
	}
	if !st.CanRoll {
		return 0, ErrRollPending
	}

	st.CanRoll = false
	die := m.roll()
	st.Dice = die

	if die == 6 {
		st.ConsecSixes++
	} else {
		st.ConsecSixes = 0
	}
	if st.ConsecSixes >= 3 {
		st.ConsecSixes = 0
		st.Dice = 0
		m.nextTurn()
		return RollForfeit, nil
	}

	playable := m.LegalMoves(st.Current, die)
	switch {
	case len(playable) == 0:
		st.Dice = 0
		m.nextTurn()
		return RollNoMoves, nil
	case len(playable) == 1:
		m.Apply(st.Current, playable[0], die)
		return RollMoved, nil
	}

	if st.Players[st.Current].IsAI {
		m.Apply(st.Current, m.chooseAI(st.Current, playable, die), die)
		return RollMoved, nil
	}

	st.Waiting = &Selection{Player: st.Current, Tokens: playable, Die: die}
	return RollAwaitSelection, nil
}

// SelectToken resolves a pending selection. An invalid choice (wrong seat,
// token outside the candidate set) is rejected with no state change.
func (m *Match) SelectToken(playerIndex, tokenIndex int) error {
	st := m.State
	if !st.Running {
		return ErrNotRunning
	}
	if st.Waiting == nil {
		return ErrNoSelection
	}
	if playerIndex != st.Waiting.Player {
		return ErrWrongSeat
	}
	ok := false
	for _, ti := range st.Waiting.Tokens {
		if ti == tokenIndex {
			ok = true
			break
		}
	}
	if !ok {
		return ErrTokenNotPlayable
	}
	die := st.Waiting.Die
	st.Waiting = nil
	m.Apply(playerIndex, tokenIndex, die)
	return nil
}

// chooseAI picks among playable tokens: a capturing move if one exists,
// otherwise the token that has advanced the farthest.
func (m *Match) chooseAI(playerIndex int, playable []int, die int) int {
	p := &m.State.Players[playerIndex]
	for _, ti := range playable {
		t := p.Tokens[ti]
		steps := t.Steps + die
		if t.InYard() {
			steps = 0
		}
		if steps < board.FinishEntryStep && m.captureAt(m.Topo.RingIndex(p.Color, steps), playerIndex) {
			return ti
		}
	}
	best := playable[0]
	for _, ti := range playable[1:] {
		if p.Tokens[ti].Steps > p.Tokens[best].Steps {
			best = ti
		}
	}
	return best
}

// nextTurn passes control to the next seat that still has tokens in play,
// wrapping in seat order. The six streak always resets on a turn change.
func (m *Match) nextTurn() {
	st := m.State
	st.ConsecSixes = 0
	for i := 1; i <= len(st.Players); i++ {
		idx := (st.Current + i) % len(st.Players)
		if st.Players[idx].FinishedCount == board.TokensPerPlayer {
			continue
		}
		st.Current = idx
		break
	}
	st.Dice = 0
	st.CanRoll = true
}
