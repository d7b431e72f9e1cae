package game

import (
	"testing"

	"github.com/gajjugrg/ludo-game/internal/board"
)

func TestDiceRangeAndRollGate(t *testing.T) {
	m := NewMatch(4, nil, false)
	for i := 0; i < 200; i++ {
		v := defaultRoller()
		if v < 1 || v > 6 {
			t.Fatalf("die out of range: %d", v)
		}
	}
	// A pending selection blocks further rolls.
	m.SetRoller(scriptRolls(3))
	m.State.Players[0].Tokens[0].Steps = 5
	m.State.Players[0].Tokens[1].Steps = 10
	out, err := m.Roll()
	if err != nil || out != RollAwaitSelection {
		t.Fatalf("expected selection wait, got %v/%v", out, err)
	}
	if _, err := m.Roll(); err != ErrSelectionPending {
		t.Fatalf("expected ErrSelectionPending, got %v", err)
	}
}

func TestNoMovesPassesTurn(t *testing.T) {
	m := NewMatch(4, nil, false)
	m.SetRoller(scriptRolls(3)) // everything still in the yard, needs a 6
	out, err := m.Roll()
	if err != nil || out != RollNoMoves {
		t.Fatalf("expected no-moves outcome, got %v/%v", out, err)
	}
	if m.State.Current != 1 {
		t.Fatalf("turn should pass to seat 1, got %d", m.State.Current)
	}
	if !m.State.CanRoll || m.State.Dice != 0 {
		t.Fatalf("next seat should be free to roll, canRoll=%v dice=%d",
			m.State.CanRoll, m.State.Dice)
	}
}

func TestSingleLegalMoveAppliesImmediately(t *testing.T) {
	m := NewMatch(4, nil, false)
	m.State.Players[0].Tokens[0].Steps = 7
	m.SetRoller(scriptRolls(4))
	out, err := m.Roll()
	if err != nil || out != RollMoved {
		t.Fatalf("expected auto-move, got %v/%v", out, err)
	}
	if got := m.State.Players[0].Tokens[0].Steps; got != 11 {
		t.Fatalf("expected steps 11, got %d", got)
	}
	if m.State.Current != 1 {
		t.Fatalf("non-six move should pass the turn, current=%d", m.State.Current)
	}
}

func TestSixGrantsExtraRoll(t *testing.T) {
	m := NewMatch(4, nil, false)
	m.State.Players[0].Tokens[0].Steps = 7
	// Keep the other yard tokens out of the candidate set by finishing them.
	for ti := 1; ti < board.TokensPerPlayer; ti++ {
		m.State.Players[0].Tokens[ti] = Token{Steps: board.FinishEntryStep + board.FinishLen, Finished: true}
	}
	m.State.Players[0].FinishedCount = 3
	m.SetRoller(scriptRolls(6))
	out, err := m.Roll()
	if err != nil || out != RollMoved {
		t.Fatalf("expected auto-move, got %v/%v", out, err)
	}
	if m.State.Current != 0 {
		t.Fatalf("a six keeps the turn, current=%d", m.State.Current)
	}
	if !m.State.CanRoll {
		t.Fatal("a six should re-arm the roll")
	}
}

func TestTripleSixForfeitsTurn(t *testing.T) {
	m := NewMatch(4, nil, false)
	p := &m.State.Players[0]
	for ti := 0; ti < 3; ti++ {
		p.Tokens[ti] = Token{Steps: board.FinishEntryStep + board.FinishLen, Finished: true}
	}
	p.FinishedCount = 3
	m.SetRoller(scriptRolls(6, 6, 6))

	if out, err := m.Roll(); err != nil || out != RollMoved {
		t.Fatalf("first six should enter the board, got %v/%v", out, err)
	}
	stepsAfterTwo := 0
	if out, err := m.Roll(); err != nil || out != RollMoved {
		t.Fatalf("second six should move, got %v/%v", out, err)
	} else {
		stepsAfterTwo = p.Tokens[3].Steps
	}

	out, err := m.Roll()
	if err != nil || out != RollForfeit {
		t.Fatalf("third consecutive six must forfeit, got %v/%v", out, err)
	}
	if p.Tokens[3].Steps != stepsAfterTwo {
		t.Fatalf("forfeit must not move any token: %d -> %d", stepsAfterTwo, p.Tokens[3].Steps)
	}
	if m.State.Current != 1 {
		t.Fatalf("forfeit should pass the turn, current=%d", m.State.Current)
	}
	if m.State.ConsecSixes != 0 {
		t.Fatalf("six streak should reset, got %d", m.State.ConsecSixes)
	}
}

func TestSixStreakResetsOnNonSix(t *testing.T) {
	m := NewMatch(4, nil, false)
	p := &m.State.Players[0]
	for ti := 0; ti < 3; ti++ {
		p.Tokens[ti] = Token{Steps: board.FinishEntryStep + board.FinishLen, Finished: true}
	}
	p.FinishedCount = 3
	p.Tokens[3].Steps = 0
	m.SetRoller(scriptRolls(6, 6, 2))

	m.Roll() // six, extra roll
	m.Roll() // six, extra roll
	if out, err := m.Roll(); err != nil || out != RollMoved {
		t.Fatalf("non-six after two sixes should move normally, got %v/%v", out, err)
	}
	if m.State.ConsecSixes != 0 {
		t.Fatalf("streak should reset on a non-six, got %d", m.State.ConsecSixes)
	}
}

func TestSelectionFlow(t *testing.T) {
	m := NewMatch(4, nil, false)
	m.State.Players[0].Tokens[0].Steps = 5
	m.State.Players[0].Tokens[1].Steps = 10
	m.SetRoller(scriptRolls(2))

	out, err := m.Roll()
	if err != nil || out != RollAwaitSelection {
		t.Fatalf("expected selection wait, got %v/%v", out, err)
	}
	w := m.State.Waiting
	if w == nil || w.Player != 0 || len(w.Tokens) != 2 || w.Die != 2 {
		t.Fatalf("unexpected selection %+v", w)
	}

	// Wrong seat and out-of-set tokens are rejected with no state change.
	if err := m.SelectToken(1, 0); err != ErrWrongSeat {
		t.Fatalf("expected ErrWrongSeat, got %v", err)
	}
	if err := m.SelectToken(0, 3); err != ErrTokenNotPlayable {
		t.Fatalf("expected ErrTokenNotPlayable, got %v", err)
	}
	if m.State.Waiting == nil {
		t.Fatal("rejected selection must leave the wait in place")
	}

	if err := m.SelectToken(0, 1); err != nil {
		t.Fatalf("valid selection failed: %v", err)
	}
	if got := m.State.Players[0].Tokens[1].Steps; got != 12 {
		t.Fatalf("expected steps 12, got %d", got)
	}
	if m.State.Waiting != nil {
		t.Fatal("selection should be cleared after the move")
	}
	if m.State.Current != 1 {
		t.Fatalf("turn should pass after a non-six selection, current=%d", m.State.Current)
	}
	if err := m.SelectToken(0, 0); err != ErrNoSelection {
		t.Fatalf("expected ErrNoSelection with no pending wait, got %v", err)
	}
}

func TestTurnOrderSkipsFinishedSeats(t *testing.T) {
	m := NewMatch(4, nil, false)
	m.State.Players[1].FinishedCount = board.TokensPerPlayer
	m.State.Players[0].Tokens[0].Steps = 3
	m.SetRoller(scriptRolls(2))
	if _, err := m.Roll(); err != nil {
		t.Fatalf("roll failed: %v", err)
	}
	if m.State.Current != 2 {
		t.Fatalf("seat 1 is done and must be skipped, current=%d", m.State.Current)
	}
}

func TestAIPrefersCapture(t *testing.T) {
	m := NewMatch(4, nil, true) // seat 1 is the machine
	m.State.Current = 1
	green := &m.State.Players[1]
	blue := &m.State.Players[3]
	// Token 0 is far ahead; token 1 would capture.
	green.Tokens[0].Steps = 20
	green.Tokens[1].Steps = 0
	blue.Tokens[0].Steps = 30 // ring index 4, green's landing with a 4 from steps 0

	m.SetRoller(scriptRolls(4))
	out, err := m.Roll()
	if err != nil || out != RollMoved {
		t.Fatalf("AI roll should resolve synchronously, got %v/%v", out, err)
	}
	if blue.Tokens[0].Steps != -1 {
		t.Fatal("AI should have taken the capturing move")
	}
	if green.Tokens[1].Steps != 4 {
		t.Fatalf("expected capturing token at steps 4, got %d", green.Tokens[1].Steps)
	}
}

func TestAIMovesFarthestTokenWithoutCapture(t *testing.T) {
	m := NewMatch(4, nil, true)
	m.State.Current = 1
	green := &m.State.Players[1]
	green.Tokens[0].Steps = 5
	green.Tokens[1].Steps = 20

	m.SetRoller(scriptRolls(3))
	if _, err := m.Roll(); err != nil {
		t.Fatalf("roll failed: %v", err)
	}
	if green.Tokens[1].Steps != 23 {
		t.Fatalf("AI should advance the farthest token, got %d/%d",
			green.Tokens[0].Steps, green.Tokens[1].Steps)
	}
}

func TestAdoptReplacesStateWholesale(t *testing.T) {
	m := NewMatch(4, nil, false)
	m.State.Players[0].Tokens[0].Steps = 5
	m.State.Players[0].Tokens[1].Steps = 10
	m.SetRoller(scriptRolls(2))
	m.Roll() // park in a selection wait

	incoming := NewState(board.New(2), nil, false)
	m.Adopt(incoming)

	if m.State.Waiting != nil {
		t.Fatal("adopting a snapshot must discard the local selection wait")
	}
	if len(m.State.Players) != 2 || len(m.Topo.Colors) != 2 {
		t.Fatalf("topology should be re-derived from the snapshot, players=%d colors=%d",
			len(m.State.Players), len(m.Topo.Colors))
	}
}
