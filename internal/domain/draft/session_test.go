package draft

import (
	"errors"
	"fmt"
	"testing"

	"github.com/riskibarqy/playoff-pool/internal/domain/player"
	"github.com/riskibarqy/playoff-pool/internal/domain/roster"
)

func mustPick(t *testing.T, s *Session, key roster.SlotKey, p player.Player) roster.SlotKey {
	t.Helper()
	if err := s.SelectSlot(key); err != nil {
		t.Fatalf("select %s: %v", key, err)
	}
	displaced, err := s.PickPlayer(p)
	if err != nil {
		t.Fatalf("pick %s into %s: %v", p.ID, key, err)
	}
	return displaced
}

func fillSession(t *testing.T) *Session {
	t.Helper()
	s := NewSession()
	for i, slot := range roster.Slots() {
		mustPick(t, s, slot.Key, player.Player{
			ID:       fmt.Sprintf("p%d", i+1),
			Name:     fmt.Sprintf("Player %d", i+1),
			Position: slot.Allowed[0],
			TeamID:   fmt.Sprintf("t%d", i+1),
		})
	}
	return s
}

func TestNewSession(t *testing.T) {
	s := NewSession()
	if s.CurrentSlot() != roster.SlotQB1 {
		t.Fatalf("expected initial slot QB1, got %s", s.CurrentSlot())
	}
	if len(s.Assignments()) != 0 {
		t.Fatalf("expected no assignments")
	}
	slot, ok := roster.MissingSlot(s.Validate())
	if !ok || slot != roster.SlotQB1 {
		t.Fatalf("expected empty session to report QB1 missing, got %s", slot)
	}
}

func TestSelectSlot_Unknown(t *testing.T) {
	s := NewSession()
	if err := s.SelectSlot("LB1"); !errors.Is(err, roster.ErrUnknownSlot) {
		t.Fatalf("expected ErrUnknownSlot, got %v", err)
	}
	if s.CurrentSlot() != roster.SlotQB1 {
		t.Fatalf("failed select must not move the cursor")
	}
}

func TestPickPlayer_IneligiblePosition(t *testing.T) {
	s := NewSession()
	if err := s.SelectSlot(roster.SlotK1); err != nil {
		t.Fatalf("select: %v", err)
	}
	_, err := s.PickPlayer(player.Player{ID: "qb", Position: player.PositionQB, TeamID: "kc"})
	if !errors.Is(err, roster.ErrIneligiblePosition) {
		t.Fatalf("expected ErrIneligiblePosition, got %v", err)
	}
	if len(s.Assignments()) != 0 {
		t.Fatalf("rejected pick must not be assigned")
	}
}

func TestPickPlayer_FlexAllowsOffense(t *testing.T) {
	s := NewSession()
	for _, pos := range []player.Position{player.PositionQB, player.PositionRB, player.PositionWR, player.PositionTE} {
		mustPick(t, s, roster.SlotSF1, player.Player{ID: string(pos), Position: pos, TeamID: "t-" + string(pos)})
	}
	if err := s.SelectSlot(roster.SlotSF2); err != nil {
		t.Fatalf("select: %v", err)
	}
	if _, err := s.PickPlayer(player.Player{ID: "k", Position: player.PositionK, TeamID: "x"}); !errors.Is(err, roster.ErrIneligiblePosition) {
		t.Fatalf("expected kicker rejected from flex, got %v", err)
	}
}

func TestPickPlayer_DisplacesSameTeam(t *testing.T) {
	s := NewSession()
	mustPick(t, s, roster.SlotQB1, player.Player{ID: "mahomes", Position: player.PositionQB, TeamID: "kc"})

	displaced := mustPick(t, s, roster.SlotRB1, player.Player{ID: "pacheco", Position: player.PositionRB, TeamID: "kc"})
	if displaced != roster.SlotQB1 {
		t.Fatalf("expected QB1 displaced, got %q", displaced)
	}

	got := s.Assignments()
	if _, ok := got[roster.SlotQB1]; ok {
		t.Fatalf("expected QB1 cleared after same-team pick")
	}
	if got[roster.SlotRB1].ID != "pacheco" {
		t.Fatalf("expected pacheco in RB1, got %+v", got[roster.SlotRB1])
	}
}

func TestPickPlayer_ReplaceInSameSlot(t *testing.T) {
	s := NewSession()
	mustPick(t, s, roster.SlotQB1, player.Player{ID: "a", Position: player.PositionQB, TeamID: "kc"})
	displaced := mustPick(t, s, roster.SlotQB1, player.Player{ID: "b", Position: player.PositionQB, TeamID: "kc"})
	if displaced != "" {
		t.Fatalf("same slot replacement must not report displacement, got %s", displaced)
	}
	if s.Assignments()[roster.SlotQB1].ID != "b" {
		t.Fatalf("expected replacement in QB1")
	}
}

func TestSession_NeverHoldsTwoPicksFromOneTeam(t *testing.T) {
	s := fillSession(t)
	if err := s.Validate(); err != nil {
		t.Fatalf("expected full session valid, got %v", err)
	}

	mustPick(t, s, roster.SlotTE2, player.Player{ID: "dup", Position: player.PositionTE, TeamID: "t1"})
	if err := s.Validate(); err == nil || !errors.Is(err, roster.ErrIncompleteRoster) {
		t.Fatalf("expected displacement to leave QB1 empty, got %v", err)
	}
	if slot, _ := roster.MissingSlot(s.Validate()); slot != roster.SlotQB1 {
		t.Fatalf("expected QB1 missing, got %s", slot)
	}
}

func TestClear(t *testing.T) {
	s := fillSession(t)
	if err := s.Clear(roster.SlotDEF1); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if s.Complete() {
		t.Fatalf("expected incomplete after clear")
	}
	if err := s.Clear("nope"); !errors.Is(err, roster.ErrUnknownSlot) {
		t.Fatalf("expected ErrUnknownSlot, got %v", err)
	}
}

func TestSnapshotRestore(t *testing.T) {
	s := fillSession(t)
	if err := s.SelectSlot(roster.SlotWR2); err != nil {
		t.Fatalf("select: %v", err)
	}

	snap := s.Snapshot()
	if len(snap.Picks) != roster.Size || snap.Picks[0].Slot != roster.SlotQB1 {
		t.Fatalf("unexpected snapshot picks: %+v", snap.Picks)
	}

	restored, err := Restore(snap)
	if err != nil {
		t.Fatalf("restore: %v", err)
	}
	if restored.CurrentSlot() != roster.SlotWR2 {
		t.Fatalf("expected cursor WR2, got %s", restored.CurrentSlot())
	}
	if err := restored.Validate(); err != nil {
		t.Fatalf("expected restored session valid, got %v", err)
	}
}

func TestRestore_RejectsIneligiblePick(t *testing.T) {
	_, err := Restore(Snapshot{Picks: []Pick{{Slot: roster.SlotDEF1, PlayerID: "x", Position: player.PositionWR, TeamID: "t"}}})
	if !errors.Is(err, roster.ErrIneligiblePosition) {
		t.Fatalf("expected ErrIneligiblePosition, got %v", err)
	}
}
