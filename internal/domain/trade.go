package domain

import "time"

// Trade represents a single matched execution. Price is always the
// resting (maker) order's price; Aggressor is the side of the incoming
// order that triggered the match. Trades are write-once values.
type Trade struct {
	TradeID    string
	Price      int64
	Quantity   int64
	Aggressor  Side
	ExecutedAt time.Time
}
