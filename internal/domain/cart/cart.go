// Package cart holds the customer's cart: an ordered list of line items keyed
// by product name, persisted as a whole snapshot after every mutation.
package cart

import (
	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// SnapshotKey is the fixed key the cart snapshot is stored under. The name
// matches the key the original site used in the browser's localStorage.
const SnapshotKey = "panier"

// Sentinel errors for cart mutations.
var (
	// ErrIndexOutOfRange is returned when a mutation references a line item
	// position that does not exist.
	ErrIndexOutOfRange = errors.New("cart index out of range")
	// ErrNotFound is returned when no line item carries the given name.
	ErrNotFound = errors.New("cart item not found")
)

// Item is a single cart line. Name is unique within a cart; Quantity is
// always at least 1, items are removed rather than kept at zero.
type Item struct {
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unitPrice"`
	Quantity   int             `json:"quantity"`
	Components []string        `json:"components,omitempty"`
}

// Snapshots persists and restores whole-cart snapshots under fixed keys.
type Snapshots interface {
	Load(key string, v any) (found bool, err error)
	Save(key string, v any) error
}

// Store owns the cart state. Every mutation persists the full snapshot before
// returning, so a reloaded Store always observes the last completed mutation.
// Store is not safe for concurrent use; the cart belongs to a single session.
type Store struct {
	items     []Item
	snapshots Snapshots
}

// NewStore restores the cart from its snapshot, starting empty when none
// exists yet.
func NewStore(snapshots Snapshots) (*Store, error) {
	s := &Store{snapshots: snapshots}
	if _, err := snapshots.Load(SnapshotKey, &s.items); err != nil {
		return nil, errors.Wrap(err, "restore cart")
	}
	return s, nil
}

// AddItem increments the quantity of the named item, appending a new line
// with quantity 1 when the name is not in the cart yet. The unit price is
// taken as-is; the caller owns input validation.
func (s *Store) AddItem(name string, unitPrice decimal.Decimal) error {
	if i := s.IndexOf(name); i >= 0 {
		s.items[i].Quantity++
		return s.persist()
	}
	s.items = append(s.items, Item{Name: name, UnitPrice: unitPrice, Quantity: 1})
	return s.persist()
}

// AddComposedItem is AddItem for products built from a list of components
// (the original site's made-to-order crêpes).
func (s *Store) AddComposedItem(name string, unitPrice decimal.Decimal, components []string) error {
	if i := s.IndexOf(name); i >= 0 {
		s.items[i].Quantity++
		return s.persist()
	}
	s.items = append(s.items, Item{
		Name:       name,
		UnitPrice:  unitPrice,
		Quantity:   1,
		Components: components,
	})
	return s.persist()
}

// SetQuantity replaces the quantity of the line item at index. Quantities
// below 1 are silently ignored; use RemoveItem to drop a line.
func (s *Store) SetQuantity(index, quantity int) error {
	if quantity < 1 {
		return nil
	}
	if index < 0 || index >= len(s.items) {
		return errors.Wrapf(ErrIndexOutOfRange, "set quantity at %d", index)
	}
	s.items[index].Quantity = quantity
	return s.persist()
}

// RemoveItem drops the line item at index.
func (s *Store) RemoveItem(index int) error {
	if index < 0 || index >= len(s.items) {
		return errors.Wrapf(ErrIndexOutOfRange, "remove at %d", index)
	}
	s.items = append(s.items[:index], s.items[index+1:]...)
	return s.persist()
}

// Clear empties the cart.
func (s *Store) Clear() error {
	s.items = nil
	return s.persist()
}

// Items returns a copy of the cart lines in insertion order.
func (s *Store) Items() []Item {
	out := make([]Item, len(s.items))
	copy(out, s.items)
	return out
}

// Len returns the number of distinct line items.
func (s *Store) Len() int {
	return len(s.items)
}

// Count returns the total number of articles, the value the header counter
// displays: the sum of all line quantities.
func (s *Store) Count() int {
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// IndexOf returns the position of the named line item, or -1. Names are the
// stable identifiers handed out to renderers; positions are an implementation
// detail that shifts on removal.
func (s *Store) IndexOf(name string) int {
	for i, it := range s.items {
		if it.Name == name {
			return i
		}
	}
	return -1
}

// Total returns the exact grand total: the sum of unitPrice*quantity over all
// lines. Display rounding is the renderer's concern.
func (s *Store) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range s.items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	return total
}

func (s *Store) persist() error {
	if err := s.snapshots.Save(SnapshotKey, s.items); err != nil {
		return errors.Wrap(err, "persist cart")
	}
	return nil
}
