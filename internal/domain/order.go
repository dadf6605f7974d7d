package domain

// Side indicates whether an order is a bid (buy) or ask (sell).
type Side string

const (
	SideBid Side = "bid"
	SideAsk Side = "ask"
)

// Valid reports whether the side is one of the two known values.
func (s Side) Valid() bool {
	return s == SideBid || s == SideAsk
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == SideBid {
		return SideAsk
	}
	return SideBid
}

// Order is an immutable limit order. Price and quantities are integer
// ticks (cents). Quantity is the remaining quantity and is always > 0 —
// an order that reaches zero is removed, never stored. Seq is the
// submission-order tie-breaker assigned once by the matcher; it is
// preserved across quantity reductions so a partially filled order
// keeps its queue position.
type Order struct {
	ID              int64
	Price           int64
	Quantity        int64
	InitialQuantity int64
	Side            Side
	Account         string
	Seq             int64
}

// NewOrder validates all fields and returns the order value. Validation
// is all-or-nothing: on failure a *ValidationError naming the offending
// field is returned and no order value exists.
func NewOrder(id, price, quantity int64, side Side, account string) (Order, error) {
	o := Order{
		ID:              id,
		Price:           price,
		Quantity:        quantity,
		InitialQuantity: quantity,
		Side:            side,
		Account:         account,
	}
	if err := o.Validate(); err != nil {
		return Order{}, err
	}
	return o, nil
}

// Validate checks the order's fields. It is called by NewOrder and again
// by the matcher before entering the critical section, so an invalid
// order can never touch any book state.
func (o Order) Validate() error {
	if o.ID <= 0 {
		return &ValidationError{Field: "id", Message: "must be a positive integer"}
	}
	if o.Price <= 0 {
		return &ValidationError{Field: "price", Message: "must be positive"}
	}
	if o.Quantity <= 0 {
		return &ValidationError{Field: "quantity", Message: "must be positive"}
	}
	if !o.Side.Valid() {
		return &ValidationError{Field: "side", Message: `must be "bid" or "ask"`}
	}
	if o.Account == "" {
		return &ValidationError{Field: "account", Message: "must not be empty"}
	}
	return nil
}

// IsBid reports whether the order is a bid (buy) order.
func (o Order) IsBid() bool {
	return o.Side == SideBid
}

// CanMatch reports whether the order crosses the given counterpart:
// the two must be on opposite sides and the bid's price must be at
// least the ask's price. Two same-side orders never match.
func (o Order) CanMatch(other Order) bool {
	if o.IsBid() == other.IsBid() {
		return false
	}
	if o.IsBid() {
		return o.Price >= other.Price
	}
	return o.Price <= other.Price
}

// HasBetterPrice reports whether the order's price is at least as good
// as the given same-side order's: higher-or-equal for bids,
// lower-or-equal for asks. Equal prices count as "not worse", which
// combined with insert-after-equal gives FIFO tie-breaking.
//
// Comparing orders on different sides is a programmer error and panics
// with an *InvariantViolation.
func (o Order) HasBetterPrice(other Order) bool {
	if o.IsBid() != other.IsBid() {
		panic(&InvariantViolation{
			Op:     "order.HasBetterPrice",
			Detail: "cannot compare prices across opposite sides",
		})
	}
	if o.IsBid() {
		return o.Price >= other.Price
	}
	return o.Price <= other.Price
}

// ReduceQuantity returns a new order with the quantity reduced by
// amount. Identity (ID, Seq) and all priority-relevant fields are
// copied unchanged. The caller guarantees 0 < amount <= Quantity;
// a violation means the matcher's state is corrupt and panics.
func (o Order) ReduceQuantity(amount int64) Order {
	if amount <= 0 || amount > o.Quantity {
		panic(&InvariantViolation{
			Op:     "order.ReduceQuantity",
			Detail: "reduction amount out of range",
		})
	}
	reduced := o
	reduced.Quantity = o.Quantity - amount
	return reduced
}

// WithSeq returns a copy of the order with the submission sequence set.
// The matcher assigns the sequence exactly once, on entry.
func (o Order) WithSeq(seq int64) Order {
	stamped := o
	stamped.Seq = seq
	return stamped
}
