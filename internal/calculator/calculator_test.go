package calculator

import (
	"reflect"
	"testing"

	"github.com/mmynk/splitweek/internal/models"
)

func receiptA() models.Receipt {
	return models.Receipt{
		ID:          "2025-12-15T183000_ab12",
		PaidBy:      "A",
		PaidByName:  "Alice",
		TotalAmount: 10000,
		Items: []models.ReceiptItem{
			{ItemName: "Groceries", Amount: 10000, SplitAmong: []string{"A", "B", "C"}, PerPerson: 3333},
		},
	}
}

func receiptB() models.Receipt {
	return models.Receipt{
		ID:          "2025-12-16T120000_cd34",
		PaidBy:      "B",
		PaidByName:  "Bob",
		TotalAmount: 9000,
		Items: []models.ReceiptItem{
			{ItemName: "Drinks", Amount: 9000, SplitAmong: []string{"A", "B", "C"}, PerPerson: 3000},
		},
	}
}

func TestRecompute(t *testing.T) {
	tests := []struct {
		name         string
		receipts     []models.Receipt
		names        map[string]string
		validateFunc func(t *testing.T, res Result)
	}{
		{
			name:     "single receipt three-way split",
			receipts: []models.Receipt{receiptA()},
			validateFunc: func(t *testing.T, res Result) {
				if res.TotalAmount != 10000 {
					t.Errorf("TotalAmount = %d, want 10000", res.TotalAmount)
				}
				a := res.Participants["A"]
				if a.TotalPaid != 10000 || a.TotalOwed != 3333 || a.Balance != 6667 {
					t.Errorf("A = %+v, want paid=10000 owed=3333 balance=6667", a)
				}
				for _, id := range []string{"B", "C"} {
					b := res.Participants[id]
					if b.TotalPaid != 0 || b.TotalOwed != 3333 || b.Balance != -3333 {
						t.Errorf("%s = %+v, want paid=0 owed=3333 balance=-3333", id, b)
					}
				}
				// 10000 / 3 loses one unit to rounding
				if res.Unassigned != 1 {
					t.Errorf("Unassigned = %d, want 1", res.Unassigned)
				}
			},
		},
		{
			name:     "two receipts aggregate",
			receipts: []models.Receipt{receiptA(), receiptB()},
			validateFunc: func(t *testing.T, res Result) {
				if res.TotalAmount != 19000 {
					t.Errorf("TotalAmount = %d, want 19000", res.TotalAmount)
				}
				a := res.Participants["A"]
				if a.TotalPaid != 10000 || a.TotalOwed != 6333 || a.Balance != 3667 {
					t.Errorf("A = %+v, want paid=10000 owed=6333 balance=3667", a)
				}
				b := res.Participants["B"]
				if b.TotalPaid != 9000 || b.TotalOwed != 6333 || b.Balance != 2667 {
					t.Errorf("B = %+v, want paid=9000 owed=6333 balance=2667", b)
				}
				c := res.Participants["C"]
				if c.TotalPaid != 0 || c.TotalOwed != 6333 || c.Balance != -6333 {
					t.Errorf("C = %+v, want paid=0 owed=6333 balance=-6333", c)
				}
			},
		},
		{
			name:     "empty receipt set",
			receipts: nil,
			validateFunc: func(t *testing.T, res Result) {
				if len(res.Participants) != 0 {
					t.Errorf("expected empty participant map, got %d entries", len(res.Participants))
				}
				if res.TotalAmount != 0 || res.Unassigned != 0 {
					t.Errorf("TotalAmount = %d, Unassigned = %d, want 0, 0", res.TotalAmount, res.Unassigned)
				}
			},
		},
		{
			name:     "roster enrichment with fallback chain",
			receipts: []models.Receipt{receiptA()},
			names:    map[string]string{"B": "Bobby"},
			validateFunc: func(t *testing.T, res Result) {
				// A: roster miss, falls back to the name captured on the receipt
				if got := res.Participants["A"].DisplayName; got != "Alice" {
					t.Errorf("A.DisplayName = %q, want %q", got, "Alice")
				}
				// B: roster hit
				if got := res.Participants["B"].DisplayName; got != "Bobby" {
					t.Errorf("B.DisplayName = %q, want %q", got, "Bobby")
				}
				// C: roster miss, no captured name, falls back to the ID
				if got := res.Participants["C"].DisplayName; got != "C" {
					t.Errorf("C.DisplayName = %q, want %q", got, "C")
				}
			},
		},
		{
			name: "payer outside every split pays but owes nothing",
			receipts: []models.Receipt{
				{
					PaidBy:      "D",
					TotalAmount: 500,
					Items: []models.ReceiptItem{
						{ItemName: "Snacks", Amount: 500, SplitAmong: []string{"A", "B"}, PerPerson: 250},
					},
				},
			},
			validateFunc: func(t *testing.T, res Result) {
				d := res.Participants["D"]
				if d.TotalPaid != 500 || d.TotalOwed != 0 || d.Balance != 500 {
					t.Errorf("D = %+v, want paid=500 owed=0 balance=500", d)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Recompute(tt.receipts, tt.names)
			tt.validateFunc(t, res)
		})
	}
}

func TestRecomputeIdempotent(t *testing.T) {
	receipts := []models.Receipt{receiptA(), receiptB()}
	names := map[string]string{"A": "Alice", "C": "Carol"}

	first := Recompute(receipts, names)
	second := Recompute(receipts, names)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("recompute is not idempotent:\nfirst:  %+v\nsecond: %+v", first, second)
	}
}

func TestRecomputeConservation(t *testing.T) {
	receipts := []models.Receipt{receiptA(), receiptB()}
	res := Recompute(receipts, nil)

	var paid, receiptTotal int64
	for _, b := range res.Participants {
		paid += b.TotalPaid
	}
	for _, r := range receipts {
		receiptTotal += r.TotalAmount
	}

	if paid != res.TotalAmount || res.TotalAmount != receiptTotal {
		t.Errorf("conservation violated: sum(paid)=%d total=%d sum(receipts)=%d", paid, res.TotalAmount, receiptTotal)
	}
}

func TestPerPerson(t *testing.T) {
	tests := []struct {
		amount int64
		n      int
		want   int64
	}{
		{10000, 3, 3333},
		{9000, 3, 3000},
		{7, 2, 3},
		{1, 5, 0},
		{100, 0, 0},
	}
	for _, tt := range tests {
		if got := PerPerson(tt.amount, tt.n); got != tt.want {
			t.Errorf("PerPerson(%d, %d) = %d, want %d", tt.amount, tt.n, got, tt.want)
		}
	}
}
