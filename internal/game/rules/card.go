package rules

import (
	"fmt"
	"strings"
)

const (
	// DefaultRankCount is the number of distinct ranks in a standard deck.
	DefaultRankCount = 5
	// CopiesPerRank is how many cards of each rank a fresh deck holds.
	CopiesPerRank = 4
	// RowSize is the number of defense slots each side maintains.
	RowSize = 3
)

// Rank is a card value in [1, R]. NoRank marks the absence of a card.
type Rank int

// NoRank is the zero Rank and never appears in a deck.
const NoRank Rank = 0

// IsCard reports whether r is an actual card rank.
func (r Rank) IsCard() bool {
	return r > NoRank
}

// Side identifies one of the two participants.
type Side int

const (
	SidePlayer Side = iota
	SideComputer
)

var sideNames = map[Side]string{
	SidePlayer:   "player",
	SideComputer: "computer",
}

func (s Side) String() string {
	if name, ok := sideNames[s]; ok {
		return name
	}
	return fmt.Sprintf("SIDE_%d", int(s))
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == SidePlayer {
		return SideComputer
	}
	return SidePlayer
}

// Valid reports whether s is one of the two known sides.
func (s Side) Valid() bool {
	_, ok := sideNames[s]
	return ok
}

// MarshalText encodes the side by name.
func (s Side) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid side %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a side name.
func (s *Side) UnmarshalText(text []byte) error {
	parsed, err := ParseSide(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseSide converts "player" or "computer" into a Side.
func ParseSide(name string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "player":
		return SidePlayer, nil
	case "computer":
		return SideComputer, nil
	default:
		return SidePlayer, fmt.Errorf("unknown side %q", name)
	}
}

// Sides lists both sides in a stable order.
func Sides() [2]Side {
	return [2]Side{SidePlayer, SideComputer}
}
