package engine

import (
	"testing"

	"github.com/efreitasn/matchcore/internal/domain"
)

func TestAggregatedBook_AddNewLevel(t *testing.T) {
	a := NewAggregatedBook(domain.SideBid)

	update := a.Add(testOrder(1, 1000, 5, 1, domain.SideBid))

	if update.Kind != DepthNew {
		t.Errorf("expected new-level update, got %q", update.Kind)
	}
	if update.Price != 1000 || update.Quantity != 5 {
		t.Errorf("expected level 1000/5, got %d/%d", update.Price, update.Quantity)
	}
}

func TestAggregatedBook_AddExistingLevel(t *testing.T) {
	a := NewAggregatedBook(domain.SideBid)
	a.Add(testOrder(1, 1000, 5, 1, domain.SideBid))

	update := a.Add(testOrder(2, 1000, 3, 2, domain.SideBid))

	if update.Kind != DepthChange {
		t.Errorf("expected change update, got %q", update.Kind)
	}
	if update.Quantity != 8 {
		t.Errorf("expected aggregated quantity 8, got %d", update.Quantity)
	}
	if a.Len() != 1 {
		t.Errorf("expected a single level, got %d", a.Len())
	}
}

func TestAggregatedBook_ReducePartial(t *testing.T) {
	a := NewAggregatedBook(domain.SideAsk)
	a.Add(testOrder(1, 1000, 5, 1, domain.SideAsk))

	update := a.Reduce(1000, 3)

	if update.Kind != DepthChange {
		t.Errorf("expected change update, got %q", update.Kind)
	}
	if update.Quantity != 2 {
		t.Errorf("expected remaining quantity 2, got %d", update.Quantity)
	}
}

func TestAggregatedBook_ReduceToZeroRemovesLevel(t *testing.T) {
	a := NewAggregatedBook(domain.SideAsk)
	a.Add(testOrder(1, 1000, 5, 1, domain.SideAsk))

	update := a.Reduce(1000, 5)

	if update.Kind != DepthRemoval {
		t.Errorf("expected removal update, got %q", update.Kind)
	}
	if _, ok := a.Level(1000); ok {
		t.Error("expected level deleted at zero")
	}
	if a.Len() != 0 {
		t.Errorf("expected no levels, got %d", a.Len())
	}
}

func TestAggregatedBook_ReduceUnderflowPanics(t *testing.T) {
	a := NewAggregatedBook(domain.SideBid)
	a.Add(testOrder(1, 1000, 5, 1, domain.SideBid))

	for _, tc := range []struct {
		name  string
		price int64
		qty   int64
	}{
		{"missing level", 900, 1},
		{"over quantity", 1000, 6},
	} {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				r := recover()
				if r == nil {
					t.Fatal("expected panic")
				}
				if _, ok := r.(*domain.InvariantViolation); !ok {
					t.Fatalf("expected *InvariantViolation, got %T", r)
				}
			}()
			a.Reduce(tc.price, tc.qty)
		})
	}
}

func TestAggregatedBook_SnapshotOrder(t *testing.T) {
	bids := NewAggregatedBook(domain.SideBid)
	bids.Add(testOrder(1, 900, 1, 1, domain.SideBid))
	bids.Add(testOrder(2, 1100, 1, 2, domain.SideBid))
	bids.Add(testOrder(3, 1000, 1, 3, domain.SideBid))

	snapshot := bids.Snapshot()
	for i, want := range []int64{1100, 1000, 900} {
		if snapshot[i].Price != want {
			t.Errorf("bid position %d: expected price %d, got %d", i, want, snapshot[i].Price)
		}
	}

	asks := NewAggregatedBook(domain.SideAsk)
	asks.Add(testOrder(4, 1100, 1, 4, domain.SideAsk))
	asks.Add(testOrder(5, 900, 1, 5, domain.SideAsk))

	snapshot = asks.Snapshot()
	for i, want := range []int64{900, 1100} {
		if snapshot[i].Price != want {
			t.Errorf("ask position %d: expected price %d, got %d", i, want, snapshot[i].Price)
		}
	}
}
