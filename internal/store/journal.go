package store

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	"github.com/cockroachdb/pebble"
	"go.uber.org/zap"

	"github.com/efreitasn/matchcore/internal/domain"
	"github.com/efreitasn/matchcore/internal/engine"
)

// Journal is an append-only on-disk trade log backed by Pebble. Records
// are keyed by a big-endian sequence number, so iteration order is
// emission order and the log survives restarts.
//
// Journal implements the matcher's EventListener for trade events but
// performs synchronous disk writes, so it must sit behind the feed
// dispatcher's queue, never directly on the matcher.
type Journal struct {
	engine.NopListener

	db     *pebble.DB
	logger *zap.Logger
	next   uint64
}

// journalRecord is the persisted form of a trade.
type journalRecord struct {
	TradeID    string    `json:"trade_id"`
	Price      int64     `json:"price"`
	Quantity   int64     `json:"quantity"`
	Aggressor  string    `json:"aggressor"`
	ExecutedAt time.Time `json:"executed_at"`
}

// OpenJournal opens (or creates) the journal at path and positions the
// write sequence after the last persisted record.
func OpenJournal(path string, logger *zap.Logger) (*Journal, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open trade journal: %w", err)
	}

	j := &Journal{db: db, logger: logger}

	iter, err := db.NewIter(&pebble.IterOptions{})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open trade journal iterator: %w", err)
	}
	if iter.Last() {
		j.next = binary.BigEndian.Uint64(iter.Key()) + 1
	}
	if err := iter.Close(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("close trade journal iterator: %w", err)
	}

	return j, nil
}

// OnTrade appends the trade to the journal. Write failures are logged
// rather than propagated — the in-memory views remain authoritative and
// the journal is a best-effort history sink.
func (j *Journal) OnTrade(t domain.Trade) {
	if err := j.Append(t); err != nil {
		j.logger.Error("trade journal append failed",
			zap.String("trade_id", t.TradeID),
			zap.Error(err),
		)
	}
}

// Append persists one trade under the next sequence key.
func (j *Journal) Append(t domain.Trade) error {
	buf, err := json.Marshal(journalRecord{
		TradeID:    t.TradeID,
		Price:      t.Price,
		Quantity:   t.Quantity,
		Aggressor:  string(t.Aggressor),
		ExecutedAt: t.ExecutedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal trade: %w", err)
	}

	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, j.next)
	if err := j.db.Set(key, buf, pebble.Sync); err != nil {
		return fmt.Errorf("write trade: %w", err)
	}
	j.next++
	return nil
}

// Replay calls fn for every persisted trade in emission order.
func (j *Journal) Replay(fn func(domain.Trade) error) error {
	iter, err := j.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return fmt.Errorf("open trade journal iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		var rec journalRecord
		if err := json.Unmarshal(iter.Value(), &rec); err != nil {
			return fmt.Errorf("unmarshal trade at key %x: %w", iter.Key(), err)
		}
		t := domain.Trade{
			TradeID:    rec.TradeID,
			Price:      rec.Price,
			Quantity:   rec.Quantity,
			Aggressor:  domain.Side(rec.Aggressor),
			ExecutedAt: rec.ExecutedAt,
		}
		if err := fn(t); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Close flushes and closes the underlying store.
func (j *Journal) Close() error {
	return j.db.Close()
}
