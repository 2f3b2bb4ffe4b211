package calculator

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/mmynk/mealsplit/internal/models"
)

const epsilon = 1e-9

func item(id, name string, price float64, consumers ...string) models.LineItem {
	return models.LineItem{ID: id, Name: name, Price: price, Consumers: consumers}
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name         string
		participants []string
		items        []models.LineItem
		wantErr      bool
		validateFunc func(t *testing.T, alloc Allocation)
	}{
		{
			name:         "pizza and soda",
			participants: []string{"Alice", "Bob"},
			items: []models.LineItem{
				item("1", "Pizza", 20.0, "Alice", "Bob"),
				item("2", "Soda", 3.0, "Alice"),
			},
			validateFunc: func(t *testing.T, alloc Allocation) {
				// Alice: 10 + 3 = 13, Bob: 10
				if math.Abs(alloc.Total-23.0) > epsilon {
					t.Errorf("Total = %v, want 23.0", alloc.Total)
				}
				if alice, _ := alloc.Lookup("Alice"); math.Abs(alice-13.0) > epsilon {
					t.Errorf("Alice = %v, want 13.0", alice)
				}
				if bob, _ := alloc.Lookup("Bob"); math.Abs(bob-10.0) > epsilon {
					t.Errorf("Bob = %v, want 10.0", bob)
				}
				alice := alloc.Owed[0]
				if len(alice.Items) != 2 {
					t.Errorf("Alice items = %d, want 2", len(alice.Items))
				}
			},
		},
		{
			name:         "unassigned appetizer counts toward total only",
			participants: []string{"Alice", "Bob", "Carol"},
			items:        []models.LineItem{item("1", "Appetizer", 9.0)},
			validateFunc: func(t *testing.T, alloc Allocation) {
				if math.Abs(alloc.Total-9.0) > epsilon {
					t.Errorf("Total = %v, want 9.0", alloc.Total)
				}
				for _, s := range alloc.Owed {
					if s.Amount != 0 {
						t.Errorf("%s = %v, want 0", s.Participant, s.Amount)
					}
				}
				if math.Abs(alloc.Unassigned()-9.0) > epsilon {
					t.Errorf("Unassigned = %v, want 9.0", alloc.Unassigned())
				}
			},
		},
		{
			name:         "three beers for one person",
			participants: []string{"Alice", "Bob"},
			items: []models.LineItem{
				item("1", "Beer", 5.0, "Alice"),
				item("2", "Beer", 5.0, "Alice"),
				item("3", "Beer", 5.0, "Alice"),
			},
			validateFunc: func(t *testing.T, alloc Allocation) {
				if math.Abs(alloc.Total-15.0) > epsilon {
					t.Errorf("Total = %v, want 15.0", alloc.Total)
				}
				if alice, _ := alloc.Lookup("Alice"); math.Abs(alice-15.0) > epsilon {
					t.Errorf("Alice = %v, want 15.0", alice)
				}
			},
		},
		{
			name:         "even split of an odd amount",
			participants: []string{"Alice", "Bob", "Carol"},
			items:        []models.LineItem{item("1", "Nachos", 10.0, "Alice", "Bob", "Carol")},
			validateFunc: func(t *testing.T, alloc Allocation) {
				var sum float64
				for _, s := range alloc.Owed {
					if math.Abs(s.Amount-10.0/3) > epsilon {
						t.Errorf("%s = %v, want %v", s.Participant, s.Amount, 10.0/3)
					}
					sum += s.Amount
				}
				if math.Abs(sum-10.0) > epsilon {
					t.Errorf("sum of shares = %v, want 10.0", sum)
				}
			},
		},
		{
			name:         "consumer not on roster is dropped",
			participants: []string{"Alice"},
			items:        []models.LineItem{item("1", "Wings", 12.0, "Alice", "Ghost")},
			validateFunc: func(t *testing.T, alloc Allocation) {
				if alice, _ := alloc.Lookup("Alice"); math.Abs(alice-6.0) > epsilon {
					t.Errorf("Alice = %v, want 6.0", alice)
				}
				if _, ok := alloc.Lookup("Ghost"); ok {
					t.Error("Ghost should not appear in the allocation")
				}
				if math.Abs(alloc.Total-12.0) > epsilon {
					t.Errorf("Total = %v, want 12.0", alloc.Total)
				}
			},
		},
		{
			name:  "empty roster still totals items",
			items: []models.LineItem{item("1", "Fries", 4.5), item("2", "Soda", 2.5, "Alice")},
			validateFunc: func(t *testing.T, alloc Allocation) {
				if len(alloc.Owed) != 0 {
					t.Errorf("Owed = %v, want empty", alloc.Owed)
				}
				if math.Abs(alloc.Total-7.0) > epsilon {
					t.Errorf("Total = %v, want 7.0", alloc.Total)
				}
			},
		},
		{
			name:         "no items - everyone owes zero",
			participants: []string{"Alice", "Bob"},
			validateFunc: func(t *testing.T, alloc Allocation) {
				if alloc.Total != 0 {
					t.Errorf("Total = %v, want 0", alloc.Total)
				}
				if len(alloc.Owed) != 2 {
					t.Fatalf("Owed = %d entries, want 2", len(alloc.Owed))
				}
				for _, s := range alloc.Owed {
					if s.Amount != 0 {
						t.Errorf("%s = %v, want 0", s.Participant, s.Amount)
					}
				}
			},
		},
		{
			name: "zero state",
			validateFunc: func(t *testing.T, alloc Allocation) {
				if alloc.Total != 0 || len(alloc.Owed) != 0 {
					t.Errorf("got %+v, want zero allocation", alloc)
				}
			},
		},
		{
			name:         "roster order is preserved and duplicates collapse",
			participants: []string{"Zoe", "Adam", "Zoe"},
			items:        []models.LineItem{item("1", "Tea", 2.0, "Zoe")},
			validateFunc: func(t *testing.T, alloc Allocation) {
				if len(alloc.Owed) != 2 {
					t.Fatalf("Owed = %d entries, want 2", len(alloc.Owed))
				}
				if alloc.Owed[0].Participant != "Zoe" || alloc.Owed[1].Participant != "Adam" {
					t.Errorf("order = %s, %s; want Zoe, Adam", alloc.Owed[0].Participant, alloc.Owed[1].Participant)
				}
				if alloc.Owed[0].Amount != 2.0 {
					t.Errorf("Zoe = %v, want 2.0", alloc.Owed[0].Amount)
				}
			},
		},
		{
			name:         "zero price should error",
			participants: []string{"Alice"},
			items:        []models.LineItem{item("1", "Water", 0, "Alice")},
			wantErr:      true,
		},
		{
			name:         "NaN price should error",
			participants: []string{"Alice"},
			items:        []models.LineItem{item("1", "Mystery", math.NaN(), "Alice")},
			wantErr:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			alloc, err := Allocate(tt.participants, tt.items)
			if (err != nil) != tt.wantErr {
				t.Errorf("Allocate() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr && !errors.Is(err, ErrInvalidPrice) {
				t.Errorf("Allocate() error = %v, want ErrInvalidPrice", err)
			}
			if !tt.wantErr && tt.validateFunc != nil {
				tt.validateFunc(t, alloc)
			}
		})
	}
}

func TestAllocate_TotalConservation(t *testing.T) {
	participants := []string{"Alice", "Bob", "Carol", "Dave"}
	prices := []float64{0.1, 0.2, 7.77, 13.01, 99.99, 1.0 / 3, 42}

	var items []models.LineItem
	for i, price := range prices {
		// Rotate through consumer subsets of different sizes
		consumers := participants[:1+i%len(participants)]
		items = append(items, item(string(rune('a'+i)), "Dish", price, consumers...))
	}

	alloc, err := Allocate(participants, items)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	if diff := math.Abs(alloc.Total - alloc.Assigned()); diff > epsilon*alloc.Total {
		t.Errorf("Total = %v, sum of owed = %v", alloc.Total, alloc.Assigned())
	}
}

func TestAllocate_Idempotent(t *testing.T) {
	participants := []string{"Alice", "Bob"}
	items := []models.LineItem{
		item("1", "Pizza", 20.0, "Alice", "Bob"),
		item("2", "Soda", 3.0, "Alice"),
		item("3", "Bread", 4.0),
	}
	before := models.Bill{Participants: participants, Items: items}.Clone()

	first, err := Allocate(participants, items)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}
	second, err := Allocate(participants, items)
	if err != nil {
		t.Fatalf("Allocate() error = %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("second run differs:\n%+v\n%+v", first, second)
	}
	if !reflect.DeepEqual(before, models.Bill{Participants: participants, Items: items}.Clone()) {
		t.Error("Allocate mutated its inputs")
	}
}

func TestFormatAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{13, "13.00"},
		{10.0 / 3, "3.33"},
		{2.675, "2.68"},
		{0, "0.00"},
		{-1e-12, "0.00"},
	}
	for _, tt := range tests {
		if got := FormatAmount(tt.in); got != tt.want {
			t.Errorf("FormatAmount(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
