// internal/models/card.go
package models

import (
	"math/rand"

	"github.com/google/uuid"
)

// Suit identifies the family a card belongs to. Jokers carry SuitSpecial.
type Suit string

const (
	SuitHearts   Suit = "HEARTS"
	SuitDiamonds Suit = "DIAMONDS"
	SuitClubs    Suit = "CLUBS"
	SuitSpades   Suit = "SPADES"
	SuitSpecial  Suit = "SPECIAL"
)

// StandardSuits lists the four column suits in fixed order. The AI relies on
// this ordering when it picks the lowest-index suit to build next.
var StandardSuits = []Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}

// Value is a card's printed rank.
type Value string

const (
	ValueAce   Value = "A"
	ValueTwo   Value = "2"
	ValueThree Value = "3"
	ValueFour  Value = "4"
	ValueFive  Value = "5"
	ValueSix   Value = "6"
	ValueSeven Value = "7"
	ValueEight Value = "8"
	ValueNine  Value = "9"
	ValueTen   Value = "10"
	ValueJack  Value = "J"
	ValueQueen Value = "Q"
	ValueKing  Value = "K"
	ValueJoker Value = "JOKER"
)

// SequenceRanks are the ranks a column accepts, in slot order 0..9.
var SequenceRanks = []Value{
	ValueAce, ValueTwo, ValueThree, ValueFour, ValueFive,
	ValueSix, ValueSeven, ValueEight, ValueNine, ValueTen,
}

// CardKind distinguishes the two jokers from the 52 standard cards.
type CardKind string

const (
	KindStandard CardKind = "STANDARD"
	KindJoker    CardKind = "JOKER"
)

// Card is immutable once drawn apart from HasDefended, which is burned into
// a 7 when it blocks an attack. Identity is stable across zones; moving a
// card between zones is always remove + insert, never a copy.
type Card struct {
	ID          uuid.UUID `json:"id"`
	Suit        Suit      `json:"suit"`
	Value       Value     `json:"value"`
	Kind        CardKind  `json:"kind"`
	HasDefended bool      `json:"hasDefended"`
}

// IsJoker reports whether the card is one of the two jokers.
func (c *Card) IsJoker() bool {
	return c.Kind == KindJoker
}

// IsActivator reports whether the card can unlock an Ace start or a face
// card (a 7 of any suit, or a Joker).
func (c *Card) IsActivator() bool {
	return c.IsJoker() || c.Value == ValueSeven
}

// SequenceIndex returns the column slot a rank occupies, or -1 for face
// cards and jokers.
func SequenceIndex(v Value) int {
	for i, r := range SequenceRanks {
		if r == v {
			return i
		}
	}
	return -1
}

// RankAt returns the rank expected at a column slot.
func RankAt(idx int) Value {
	return SequenceRanks[idx]
}

// NumericValue returns the damage a rank deals as a health attack (A=1).
// Face cards and jokers return 0.
func NumericValue(v Value) int {
	switch v {
	case ValueAce:
		return 1
	case ValueTwo:
		return 2
	case ValueThree:
		return 3
	case ValueFour:
		return 4
	case ValueFive:
		return 5
	case ValueSix:
		return 6
	case ValueSeven:
		return 7
	case ValueEight:
		return 8
	case ValueNine:
		return 9
	case ValueTen:
		return 10
	}
	return 0
}

// NewDeck builds the 54-card deck (52 standard + 2 jokers) every player owns.
func NewDeck() []*Card {
	values := []Value{
		ValueAce, ValueTwo, ValueThree, ValueFour, ValueFive, ValueSix, ValueSeven,
		ValueEight, ValueNine, ValueTen, ValueJack, ValueQueen, ValueKing,
	}
	deck := make([]*Card, 0, 54)
	for _, suit := range StandardSuits {
		for _, v := range values {
			cid, _ := uuid.NewRandom()
			deck = append(deck, &Card{ID: cid, Suit: suit, Value: v, Kind: KindStandard})
		}
	}
	for i := 0; i < 2; i++ {
		cid, _ := uuid.NewRandom()
		deck = append(deck, &Card{ID: cid, Suit: SuitSpecial, Value: ValueJoker, Kind: KindJoker})
	}
	return deck
}

// ShuffleDeck shuffles in place with the provided source so tests can pin
// the order.
func ShuffleDeck(deck []*Card, r *rand.Rand) {
	r.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})
}
