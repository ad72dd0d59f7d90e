package rules

import "math/rand/v2"

// Deck is an ordered pile of ranks drawn from the front and replenished at the back.
type Deck struct {
	cards []Rank
}

// NewDeckFrom wraps the given ranks as a deck; index 0 is the top.
func NewDeckFrom(cards ...Rank) *Deck {
	d := &Deck{cards: make([]Rank, 0, len(cards))}
	d.cards = append(d.cards, cards...)
	return d
}

// NewDeck builds a fresh deck of CopiesPerRank copies of ranks 1..rankCount and shuffles it with rng.
func NewDeck(rankCount int, rng *rand.Rand) *Deck {
	cards := BuildDeck(rankCount)
	Shuffle(cards, rng)
	return &Deck{cards: cards}
}

// BuildDeck returns CopiesPerRank copies of each rank 1..rankCount in rank order.
func BuildDeck(rankCount int) []Rank {
	if rankCount < 1 {
		return []Rank{}
	}
	cards := make([]Rank, 0, rankCount*CopiesPerRank)
	for r := 1; r <= rankCount; r++ {
		for c := 0; c < CopiesPerRank; c++ {
			cards = append(cards, Rank(r))
		}
	}
	return cards
}

// Shuffle applies a Fisher-Yates permutation in place.
func Shuffle(cards []Rank, rng *rand.Rand) {
	for i := len(cards) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		cards[i], cards[j] = cards[j], cards[i]
	}
}

// Len returns the number of cards left.
func (d *Deck) Len() int {
	return len(d.cards)
}

// Peek returns the top card without removing it.
func (d *Deck) Peek() (Rank, bool) {
	if len(d.cards) == 0 {
		return NoRank, false
	}
	return d.cards[0], true
}

// Draw removes and returns the top card. ok is false when the deck is empty.
func (d *Deck) Draw() (Rank, bool) {
	if len(d.cards) == 0 {
		return NoRank, false
	}
	top := d.cards[0]
	d.cards = d.cards[1:]
	return top, true
}

// DrawN removes up to n cards from the top.
func (d *Deck) DrawN(n int) []Rank {
	if n > len(d.cards) {
		n = len(d.cards)
	}
	if n <= 0 {
		return []Rank{}
	}
	drawn := make([]Rank, n)
	copy(drawn, d.cards[:n])
	d.cards = d.cards[n:]
	return drawn
}

// Replenish appends cards to the bottom in argument order.
func (d *Deck) Replenish(cards ...Rank) {
	for _, c := range cards {
		if c.IsCard() {
			d.cards = append(d.cards, c)
		}
	}
}

// Cards returns a copy of the deck, top first.
func (d *Deck) Cards() []Rank {
	out := make([]Rank, len(d.cards))
	copy(out, d.cards)
	return out
}
