package game

import (
	"strings"

	"github.com/gajjugrg/ludo-game/internal/board"
)

// Token tracks one piece by its color-relative step count.
// Steps == -1 means the token is still in its home yard; 0..50 is a position
// on the shared ring; 51..55 is the private finish track; a finished token
// saturates at 56.
type Token struct {
	Steps    int  `json:"steps"`
	Finished bool `json:"finished"`
}

// InYard reports whether the token has not entered the board yet.
func (t Token) InYard() bool { return t.Steps == -1 }

// OnRing reports whether the token occupies a shared ring cell.
func (t Token) OnRing() bool {
	return t.Steps >= 0 && t.Steps < board.FinishEntryStep
}

type Player struct {
	Color         board.Color                  `json:"color"`
	Name          string                       `json:"name"`
	Tokens        [board.TokensPerPlayer]Token `json:"tokens"`
	FinishedCount int                          `json:"finishedCount"`
	IsAI          bool                         `json:"isAI"`
}

// Selection is published when a roll leaves two or more legal moves and the
// acting seat must pick a token. It blocks further rolls until resolved.
type Selection struct {
	Player int   `json:"player"`
	Tokens []int `json:"tokens"`
	Die    int   `json:"die"`
}

// State is the canonical replicated game record. The host's copy is
// authoritative; every other peer replaces its own wholesale on snapshot
// receipt.
type State struct {
	Players     []Player   `json:"players"`
	Current     int        `json:"current"`
	Dice        int        `json:"dice"`
	Running     bool       `json:"running"`
	ConsecSixes int        `json:"consecSixes"`
	CanRoll     bool       `json:"canRoll"`
	Waiting     *Selection `json:"waitingForSelection,omitempty"`
	Winner      int        `json:"winner"`
}

// NewState builds a fresh game for the topology's active colors. Names maps
// color to a preferred display name; missing entries fall back to the
// upper-cased color. aiSecond marks seat 1 as machine-driven.
func NewState(topo *board.Topology, names map[board.Color]string, aiSecond bool) *State {
	st := &State{
		Players: make([]Player, len(topo.Colors)),
		Running: true,
		CanRoll: true,
		Winner:  -1,
	}
	for i, c := range topo.Colors {
		name := names[c]
		if name == "" {
			name = strings.ToUpper(string(c))
		}
		p := Player{Color: c, Name: name, IsAI: aiSecond && i == 1}
		for ti := range p.Tokens {
			p.Tokens[ti] = Token{Steps: -1}
		}
		st.Players[i] = p
	}
	return st
}

// Clone returns an independent deep copy of the state, safe to read while
// the original keeps mutating.
func (s *State) Clone() State {
	out := *s
	out.Players = make([]Player, len(s.Players))
	copy(out.Players, s.Players)
	if s.Waiting != nil {
		w := *s.Waiting
		w.Tokens = make([]int, len(s.Waiting.Tokens))
		copy(w.Tokens, s.Waiting.Tokens)
		out.Waiting = &w
	}
	return out
}

// ActiveColors lists the state's seat colors in order, used to re-derive
// topology when adopting a received snapshot.
func (s *State) ActiveColors() []board.Color {
	out := make([]board.Color, len(s.Players))
	for i, p := range s.Players {
		out[i] = p.Color
	}
	return out
}
