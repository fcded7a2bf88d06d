// Package cards implements the Card/Deck primitives (component C1): a
// compact card encoding, human-readable parsing, and a seedable deck that
// deals without collision.
package cards

import (
	"fmt"
	"strings"

	"golang.org/x/text/width"
)

// Rank is a card rank, Two(0) through Ace(12).
type Rank uint8

const (
	Two Rank = iota
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
	Ace
)

const rankChars = "23456789TJQKA"

func (r Rank) String() string {
	if r > Ace {
		return "?"
	}
	return string(rankChars[r])
}

// Suit is a card suit. The numbering matches the order NewDeck lays the
// cards out in before shuffling: clubs, diamonds, hearts, spades.
type Suit uint8

const (
	Clubs Suit = iota
	Diamonds
	Hearts
	Spades
)

const suitChars = "cdhs"

func (s Suit) String() string {
	if s > Spades {
		return "?"
	}
	return string(suitChars[s])
}

// Card is a single playing card, encoded 0..51 as suit*13+rank. This value
// doubles as the bit index used by Hand, so building a Hand from Cards is a
// plain OR.
type Card uint8

// NewCard builds the card for the given rank and suit.
func NewCard(rank Rank, suit Suit) Card {
	return Card(uint8(suit)*13 + uint8(rank))
}

// Rank returns the card's rank.
func (c Card) Rank() Rank { return Rank(uint8(c) % 13) }

// Suit returns the card's suit.
func (c Card) Suit() Suit { return Suit(uint8(c) / 13) }

// String renders the card in canonical <rank><suit> form, e.g. "Ah", "Tc".
func (c Card) String() string {
	return c.Rank().String() + c.Suit().String()
}

// ParseCard parses the canonical <rank><suit> form. "10x" is accepted as a
// synonym for "Tx". Full-width and other compatibility variants of the
// input digits/letters are folded to their canonical ASCII form first, so
// copy-pasted or IME-typed notation still parses.
func ParseCard(s string) (Card, error) {
	s = width.Fold.String(s)
	s = strings.TrimSpace(s)

	rankPart := s
	var suitPart string
	switch {
	case len(s) == 3 && strings.HasPrefix(s, "10"):
		rankPart, suitPart = "T", s[2:]
	case len(s) == 2:
		rankPart, suitPart = s[:1], s[1:]
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}

	rankChar := strings.ToUpper(rankPart)
	rankIdx := strings.IndexByte(rankChars, rankChar[0])
	if rankIdx < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}

	suitChar := strings.ToLower(suitPart)
	suitIdx := strings.IndexByte(suitChars, suitChar[0])
	if suitIdx < 0 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidCard, s)
	}

	return NewCard(Rank(rankIdx), Suit(suitIdx)), nil
}

// ParseCards parses a whitespace-separated list of cards.
func ParseCards(s string) ([]Card, error) {
	fields := strings.Fields(s)
	out := make([]Card, 0, len(fields))
	for _, f := range fields {
		c, err := ParseCard(f)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
