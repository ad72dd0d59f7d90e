package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/wallwar/wallwar-server/internal/game/rules"
)

// HiddenRank marks a face-down card in a viewer-specific snapshot.
const HiddenRank rules.Rank = -1

// PerSide holds one value for each side.
type PerSide[T any] struct {
	Player   T `json:"player"`
	Computer T `json:"computer"`
}

// Get returns the value for side.
func (p PerSide[T]) Get(side rules.Side) T {
	if side == rules.SideComputer {
		return p.Computer
	}
	return p.Player
}

// Set stores v for side.
func (p *PerSide[T]) Set(side rules.Side, v T) {
	if side == rules.SideComputer {
		p.Computer = v
		return
	}
	p.Player = v
}

// Snapshot is a read-only copy of the game state.
type Snapshot struct {
	GameID         string                `json:"game_id"`
	Started        bool                  `json:"started"`
	Phase          rules.Phase           `json:"phase"`
	Attacker       rules.Side            `json:"attacker"`
	Turn           int                   `json:"turn"`
	Points         PerSide[int]          `json:"points"`
	DeckLengths    PerSide[int]          `json:"deck_lengths"`
	DiscardLengths PerSide[int]          `json:"discard_lengths"`
	Drawn          PerSide[rules.Rank]   `json:"drawn"`
	DefenseRows    PerSide[[]rules.Slot] `json:"defense_rows"`
	Defeated       []DefeatedSlot        `json:"defeated"`
	Attackable     []rules.SlotID        `json:"attackable"`
	PendingBatchID string                `json:"pending_batch_id"`
	Winner         *rules.Side           `json:"winner,omitempty"`
}

// IsDefeated reports whether slot id was beaten this turn.
func (s Snapshot) IsDefeated(id rules.SlotID) bool {
	for _, d := range s.Defeated {
		if d.SlotID == id {
			return true
		}
	}
	return false
}

// ForViewer hides the opponent's face-down defense cards. Defeated slots stay revealed.
func (s Snapshot) ForViewer(viewer rules.Side) Snapshot {
	out := s
	opponent := viewer.Opponent()
	src := s.DefenseRows.Get(opponent)
	masked := make([]rules.Slot, len(src))
	for i, slot := range src {
		masked[i] = slot
		if !slot.Empty() && !s.IsDefeated(slot.ID) {
			masked[i].Rank = HiddenRank
		}
	}
	out.DefenseRows.Set(opponent, masked)
	return out
}

// Checksum returns a SHA-256 over a canonical text form of the snapshot.
// Two games played from the same seed and inputs produce identical checksums.
func (s Snapshot) Checksum() string {
	sum := sha256.Sum256([]byte(s.canonical()))
	return hex.EncodeToString(sum[:])
}

// canonical excludes the game id and batch id, which are random per run.
func (s Snapshot) canonical() string {
	var buf bytes.Buffer

	winner := "-"
	if s.Winner != nil {
		winner = s.Winner.String()
	}
	fmt.Fprintf(&buf, "GAME:%t|%s|%s|%d|%s\n", s.Started, s.Phase, s.Attacker, s.Turn, winner)

	for _, side := range rules.Sides() {
		fmt.Fprintf(&buf, "SIDE:%s|%d|%d|%d|%d\n",
			side,
			s.Points.Get(side),
			s.DeckLengths.Get(side),
			s.DiscardLengths.Get(side),
			s.Drawn.Get(side),
		)
		// row order is display order and matters
		for _, slot := range s.DefenseRows.Get(side) {
			fmt.Fprintf(&buf, "  SLOT:%d=%d\n", slot.ID, slot.Rank)
		}
	}

	for _, d := range s.Defeated {
		fmt.Fprintf(&buf, "DEFEATED:%d|%d|%d\n", d.SlotID, d.Rank, d.AttackRank)
	}

	ids := make([]string, len(s.Attackable))
	for i, id := range s.Attackable {
		ids[i] = fmt.Sprint(int(id))
	}
	buf.WriteString("ATTACKABLE:")
	buf.WriteString(strings.Join(ids, ","))
	buf.WriteString("\n")

	pending := "none"
	if s.PendingBatchID != "" {
		pending = "pending"
	}
	buf.WriteString("BATCH:" + pending + "\n")

	return buf.String()
}
