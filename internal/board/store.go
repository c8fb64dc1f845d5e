package board

import "github.com/nhle/taskboard/internal/model"

// Store holds the current board snapshot and exposes the only two
// operations that may change it: Replace and MoveCard. It has no
// knowledge of the network; every server round-trip ends in a Replace.
//
// Snapshots are treated as immutable values. MoveCard builds a new board
// that shares the card slices of untouched columns by reference, so a
// caller can detect change per column by comparing slice headers.
type Store struct {
	board *model.Board
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{board: &model.Board{}}
}

// Snapshot returns the current board. Callers must not mutate it.
func (s *Store) Snapshot() *model.Board {
	return s.board
}

// Replace installs a new canonical snapshot wholesale after shape
// normalization: card slices are made non-nil, display labels resolved,
// and card positions recomputed as dense 0-based indexes.
func (s *Store) Replace(b *model.Board) {
	if b == nil {
		b = &model.Board{}
	}
	normalize(b)
	s.board = b
}

// MoveCard removes the card from the source column, inserts it into the
// destination column at destIndex (clamped to [0, length]), installs the
// resulting snapshot, and returns it.
//
// Invalid input never escapes as an error: an unknown card or column id,
// or a drop on the card's current position, leaves the snapshot unchanged
// and returns it as-is.
func (s *Store) MoveCard(cardID, sourceColumnID, destColumnID string, destIndex int) *model.Board {
	cur := s.board

	_, srcIdx := cur.ColumnByID(sourceColumnID)
	_, dstIdx := cur.ColumnByID(destColumnID)
	if srcIdx < 0 || dstIdx < 0 {
		return cur
	}

	cardIdx := indexOfCard(cur.Columns[srcIdx].Cards, cardID)
	if cardIdx < 0 {
		return cur
	}
	if srcIdx == dstIdx && cardIdx == destIndex {
		return cur
	}

	next := &model.Board{
		ProjectID: cur.ProjectID,
		Columns:   make([]model.Column, len(cur.Columns)),
	}
	copy(next.Columns, cur.Columns)

	card := cur.Columns[srcIdx].Cards[cardIdx]

	if srcIdx == dstIdx {
		cards := removeCard(cur.Columns[srcIdx].Cards, cardIdx)
		cards = insertCard(cards, card, clamp(destIndex, len(cards)))
		renumber(cards, cur.Columns[srcIdx].ID)
		next.Columns[srcIdx].Cards = cards
	} else {
		srcCards := removeCard(cur.Columns[srcIdx].Cards, cardIdx)
		renumber(srcCards, cur.Columns[srcIdx].ID)

		dstCards := insertCard(cur.Columns[dstIdx].Cards, card, clamp(destIndex, len(cur.Columns[dstIdx].Cards)))
		renumber(dstCards, cur.Columns[dstIdx].ID)

		next.Columns[srcIdx].Cards = srcCards
		next.Columns[dstIdx].Cards = dstCards
	}

	s.board = next
	return next
}

// normalize repairs the loose shapes the backend is allowed to return:
// omitted card arrays become empty slices, display labels are resolved
// from name, then title, then a synthesized "Column N", and positions are
// rewritten densely in order.
func normalize(b *model.Board) {
	for i := range b.Columns {
		col := &b.Columns[i]
		if col.Cards == nil {
			col.Cards = []model.Card{}
		}
		col.DisplayLabel = col.ResolveDisplayLabel(i)
		col.Position = i
		for j := range col.Cards {
			col.Cards[j].Position = j
			col.Cards[j].ColumnID = col.ID
		}
	}
}

func indexOfCard(cards []model.Card, cardID string) int {
	for i := range cards {
		if cards[i].ID == cardID {
			return i
		}
	}
	return -1
}

// removeCard returns a new slice without the card at idx.
func removeCard(cards []model.Card, idx int) []model.Card {
	out := make([]model.Card, 0, len(cards)-1)
	out = append(out, cards[:idx]...)
	out = append(out, cards[idx+1:]...)
	return out
}

// insertCard returns a new slice with the card inserted at idx.
func insertCard(cards []model.Card, card model.Card, idx int) []model.Card {
	out := make([]model.Card, 0, len(cards)+1)
	out = append(out, cards[:idx]...)
	out = append(out, card)
	out = append(out, cards[idx:]...)
	return out
}

// renumber rewrites positions densely and pins the owning column id.
func renumber(cards []model.Card, columnID string) {
	for i := range cards {
		cards[i].Position = i
		cards[i].ColumnID = columnID
	}
}

func clamp(idx, length int) int {
	if idx < 0 {
		return 0
	}
	if idx > length {
		return length
	}
	return idx
}
