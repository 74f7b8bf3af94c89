package cart

import (
	"time"

	"github.com/DanielAnoka/EMS-sub000/internal/domain"
)

// Action is a cart state transition. Anything nondeterministic (item ids,
// timestamps) is carried on the action itself so Reduce stays a pure
// function and sequences of actions can be replayed in tests.
type Action interface {
	isAction()
}

// Add appends a line item for Charge, or increments the quantity of the
// existing item for the same charge id. ItemID and At are synthesized by
// the caller.
type Add struct {
	Charge domain.Charge
	ItemID string
	At     time.Time
}

// Remove drops the line item for ChargeID; absent ids are a no-op.
type Remove struct {
	ChargeID int64
}

// SetQuantity replaces the quantity for ChargeID, preserving position.
// A quantity of zero or less behaves as Remove.
type SetQuantity struct {
	ChargeID int64
	Quantity int
}

// Clear empties the cart.
type Clear struct{}

// Hydrate replaces the whole state from a persisted record. Malformed
// entries (non-positive quantity, duplicate charge ids) are dropped so
// the single-item-per-charge invariant holds by construction.
type Hydrate struct {
	Items []domain.LineItem
}

func (Add) isAction()         {}
func (Remove) isAction()      {}
func (SetQuantity) isAction() {}
func (Clear) isAction()       {}
func (Hydrate) isAction()     {}

// Reduce applies a single action to the item list and returns the next
// state. The input slice is never mutated. Unknown charge ids and other
// invalid arguments are no-ops, so Reduce is total over its inputs.
func Reduce(items []domain.LineItem, action Action) []domain.LineItem {
	switch a := action.(type) {
	case Add:
		return reduceAdd(items, a)
	case Remove:
		return reduceRemove(items, a.ChargeID)
	case SetQuantity:
		if a.Quantity <= 0 {
			return reduceRemove(items, a.ChargeID)
		}
		return reduceSetQuantity(items, a.ChargeID, a.Quantity)
	case Clear:
		return nil
	case Hydrate:
		return reduceHydrate(a.Items)
	default:
		return items
	}
}

func reduceAdd(items []domain.LineItem, a Add) []domain.LineItem {
	next := make([]domain.LineItem, len(items), len(items)+1)
	copy(next, items)

	for i := range next {
		if next[i].Charge.ID == a.Charge.ID {
			next[i].Quantity++
			return next
		}
	}

	return append(next, domain.LineItem{
		ID:       a.ItemID,
		Charge:   a.Charge,
		Quantity: 1,
		AddedAt:  a.At,
	})
}

func reduceRemove(items []domain.LineItem, chargeID int64) []domain.LineItem {
	next := make([]domain.LineItem, 0, len(items))
	for _, item := range items {
		if item.Charge.ID != chargeID {
			next = append(next, item)
		}
	}
	return next
}

func reduceSetQuantity(items []domain.LineItem, chargeID int64, quantity int) []domain.LineItem {
	next := make([]domain.LineItem, len(items))
	copy(next, items)

	for i := range next {
		if next[i].Charge.ID == chargeID {
			next[i].Quantity = quantity
			break
		}
	}
	return next
}

func reduceHydrate(items []domain.LineItem) []domain.LineItem {
	next := make([]domain.LineItem, 0, len(items))
	seen := make(map[int64]bool, len(items))

	for _, item := range items {
		if item.Quantity < 1 || seen[item.Charge.ID] {
			continue
		}
		seen[item.Charge.ID] = true
		next = append(next, item)
	}
	return next
}
