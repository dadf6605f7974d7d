package engine

import "github.com/efreitasn/matchcore/internal/domain"

// PrivateBooks tracks, per account, that account's currently resting
// orders in insertion order (not price order). An order appears in
// exactly one account's sequence for exactly as long as it rests on
// the book.
//
// Lookups match by order ID, never by value: orders are immutable, so
// a reduced order is a distinct value with the same logical identity.
//
// PrivateBooks is a derived projection — the Matcher drives it and
// serializes access.
type PrivateBooks struct {
	byAccount map[string][]domain.Order
}

// NewPrivateBooks creates an empty per-account view.
func NewPrivateBooks() *PrivateBooks {
	return &PrivateBooks{
		byAccount: make(map[string][]domain.Order),
	}
}

// Get returns the account's resting orders in insertion order, or an
// empty slice if the account has none. The returned slice is a copy.
func (p *PrivateBooks) Get(account string) []domain.Order {
	orders := p.byAccount[account]
	out := make([]domain.Order, len(orders))
	copy(out, orders)
	return out
}

// Add appends an order to its account's sequence.
func (p *PrivateBooks) Add(o domain.Order) {
	p.byAccount[o.Account] = append(p.byAccount[o.Account], o)
}

// Change replaces previous with updated in the account's sequence,
// matched by order ID. A miss means the caller and matcher have
// desynchronized, which is fatal, so Change panics with an
// *InvariantViolation.
func (p *PrivateBooks) Change(updated, previous domain.Order) {
	orders := p.byAccount[updated.Account]
	for i := range orders {
		if orders[i].ID == previous.ID {
			orders[i] = updated
			return
		}
	}
	panic(&domain.InvariantViolation{
		Op:     "private.Change",
		Detail: "order id not present in account sequence",
	})
}

// Remove deletes the entry matching the order's ID from its account's
// sequence. Same fatal-if-missing policy as Change.
func (p *PrivateBooks) Remove(o domain.Order) {
	orders := p.byAccount[o.Account]
	for i := range orders {
		if orders[i].ID == o.ID {
			p.byAccount[o.Account] = append(orders[:i], orders[i+1:]...)
			if len(p.byAccount[o.Account]) == 0 {
				delete(p.byAccount, o.Account)
			}
			return
		}
	}
	panic(&domain.InvariantViolation{
		Op:     "private.Remove",
		Detail: "order id not present in account sequence",
	})
}
