package cards

import "errors"

// ErrInvalidCard is returned by ParseCard (and ParseCards) when the input does not denote a
// legal card in <rank><suit> form.
var ErrInvalidCard = errors.New("cards: invalid card")

// ErrDeckEmpty is returned by Deck.Draw once all 52 cards have been dealt.
// Callers hitting this in normal operation indicates a logic bug upstream:
// the deck is always reset before it could legitimately run dry.
var ErrDeckEmpty = errors.New("cards: deck is empty")
