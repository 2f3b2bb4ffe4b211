package session

import (
	"fmt"
	"math"
	"strings"

	"github.com/mmynk/mealsplit/internal/models"
)

// Normalize checks a snapshot received from a client and returns a clean copy.
//
// Roster names are trimmed and deduplicated, consumers are deduplicated and
// any consumer that is not on the roster is dropped. Items with a missing or
// repeated ID, an empty name or a non-positive price make the whole snapshot
// malformed.
func Normalize(bill models.Bill) (models.Bill, error) {
	out := models.Bill{
		Participants: make([]string, 0, len(bill.Participants)),
		Items:        make([]models.LineItem, 0, len(bill.Items)),
	}

	roster := make(map[string]bool, len(bill.Participants))
	for _, p := range bill.Participants {
		p = strings.TrimSpace(p)
		if p == "" || roster[p] {
			continue
		}
		roster[p] = true
		out.Participants = append(out.Participants, p)
	}

	ids := make(map[string]bool, len(bill.Items))
	for i, item := range bill.Items {
		switch {
		case item.ID == "":
			return models.Bill{}, fmt.Errorf("%w: item %d has no id", ErrMalformedSnapshot, i)
		case ids[item.ID]:
			return models.Bill{}, fmt.Errorf("%w: duplicate item id %s", ErrMalformedSnapshot, item.ID)
		case strings.TrimSpace(item.Name) == "":
			return models.Bill{}, fmt.Errorf("%w: item %s has no name", ErrMalformedSnapshot, item.ID)
		case math.IsNaN(item.Price) || math.IsInf(item.Price, 0) || item.Price <= 0:
			return models.Bill{}, fmt.Errorf("%w: item %s has invalid price", ErrMalformedSnapshot, item.ID)
		}
		ids[item.ID] = true

		clean := models.LineItem{
			ID:        item.ID,
			Name:      strings.TrimSpace(item.Name),
			Price:     item.Price,
			Consumers: make([]string, 0, len(item.Consumers)),
		}
		seen := make(map[string]bool, len(item.Consumers))
		for _, c := range item.Consumers {
			c = strings.TrimSpace(c)
			if !roster[c] || seen[c] {
				continue
			}
			seen[c] = true
			clean.Consumers = append(clean.Consumers, c)
		}
		out.Items = append(out.Items, clean)
	}

	return out, nil
}
