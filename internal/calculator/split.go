// Package calculator computes how a bill is shared among its participants.
package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/mmynk/mealsplit/internal/models"
)

// ErrInvalidPrice is returned for items whose price is not a positive finite number.
var ErrInvalidPrice = errors.New("item price must be a positive number")

// ItemShare is one person's share of a single item.
type ItemShare struct {
	ItemID string
	Name   string
	Amount float64
}

// PersonShare is the calculated amount owed by one participant.
type PersonShare struct {
	Participant string
	Amount      float64
	Items       []ItemShare
}

// Allocation is the result of splitting a bill.
type Allocation struct {
	// Total is the sum of every item's price, assigned or not.
	Total float64

	// Owed has one entry per participant, in roster order.
	Owed []PersonShare
}

// Allocate splits every item evenly among its consumers.
//
// Items without consumers still count toward Total but are charged to nobody,
// so Total may exceed the sum of Owed. Consumers that are not on the roster
// are ignored. Amounts are not rounded; use FormatAmount for display.
func Allocate(participants []string, items []models.LineItem) (Allocation, error) {
	alloc := Allocation{Owed: make([]PersonShare, 0, len(participants))}

	// Initialize shares for all participants
	index := make(map[string]int, len(participants))
	for _, p := range participants {
		if _, exists := index[p]; exists {
			continue
		}
		index[p] = len(alloc.Owed)
		alloc.Owed = append(alloc.Owed, PersonShare{Participant: p})
	}

	for _, item := range items {
		if math.IsNaN(item.Price) || math.IsInf(item.Price, 0) || item.Price <= 0 {
			return Allocation{}, fmt.Errorf("item %s: %w", item.ID, ErrInvalidPrice)
		}
		alloc.Total += item.Price

		if len(item.Consumers) == 0 {
			continue
		}

		// Split item among assigned people
		perPerson := item.Price / float64(len(item.Consumers))
		for _, person := range item.Consumers {
			i, exists := index[person]
			if !exists {
				continue
			}
			share := &alloc.Owed[i]
			share.Amount += perPerson
			share.Items = append(share.Items, ItemShare{
				ItemID: item.ID,
				Name:   item.Name,
				Amount: perPerson,
			})
		}
	}

	return alloc, nil
}

// Lookup returns the amount owed by the given participant.
func (a Allocation) Lookup(participant string) (float64, bool) {
	for _, s := range a.Owed {
		if s.Participant == participant {
			return s.Amount, true
		}
	}
	return 0, false
}

// Assigned is the sum of everything charged to participants.
func (a Allocation) Assigned() float64 {
	var sum float64
	for _, s := range a.Owed {
		sum += s.Amount
	}
	return sum
}

// Unassigned is the part of the total that nobody is charged for.
func (a Allocation) Unassigned() float64 {
	return a.Total - a.Assigned()
}
