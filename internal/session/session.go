// Package session holds the roster and items of a splitting session.
//
// Every operation takes a snapshot and returns a new one; the input is never
// modified. State wraps the operations for callers that want a single
// current snapshot.
package session

import (
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/mmynk/mealsplit/internal/models"
)

// MaxQuantity caps how many records a single add can create.
const MaxQuantity = 100

// NewItem is the raw form input for adding an item.
type NewItem struct {
	Name     string
	Price    string
	Quantity string // empty means 1
}

// ItemEdit is the raw form input for editing an item.
type ItemEdit struct {
	Name  string
	Price string
}

// AddParticipant appends name to the roster.
func AddParticipant(bill models.Bill, name string) (models.Bill, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return bill, invalid(ErrEmptyName, "Invalid Name", "Friend's name cannot be empty.")
	}
	if bill.HasParticipant(name) {
		return bill, invalid(ErrDuplicateParticipant, "Friend already exists",
			fmt.Sprintf("%q is already on the list.", name))
	}

	next := bill.Clone()
	next.Participants = append(next.Participants, name)
	return next, nil
}

// RemoveParticipant drops name from the roster and from every item's
// consumers. Unknown names are ignored.
func RemoveParticipant(bill models.Bill, name string) (models.Bill, error) {
	next := bill.Clone()
	next.Participants = slices.DeleteFunc(next.Participants, func(p string) bool { return p == name })
	for i := range next.Items {
		next.Items[i].Consumers = slices.DeleteFunc(next.Items[i].Consumers, func(c string) bool { return c == name })
	}
	return next, nil
}

// AddItem validates the input and appends one record per unit of quantity.
func AddItem(bill models.Bill, in NewItem, newID func() string) (models.Bill, error) {
	reject := invalid(ErrInvalidItem, "Invalid Item",
		"Please enter a valid name, price, and quantity (must be greater than 0).")

	name := strings.TrimSpace(in.Name)
	price, ok := parsePrice(in.Price)
	if name == "" || !ok {
		return bill, reject
	}
	quantity, ok := parseQuantity(in.Quantity)
	if !ok {
		return bill, reject
	}

	next := bill.Clone()
	for range quantity {
		next.Items = append(next.Items, models.LineItem{
			ID:        newID(),
			Name:      name,
			Price:     price,
			Consumers: []string{},
		})
	}
	return next, nil
}

// EditItem changes the name and price of an item. The ID and consumers are kept.
func EditItem(bill models.Bill, id string, edit ItemEdit) (models.Bill, error) {
	_, idx, found := bill.Item(id)
	if !found {
		return bill, notFound(id)
	}

	name := strings.TrimSpace(edit.Name)
	price, ok := parsePrice(edit.Price)
	if name == "" || !ok {
		return bill, invalid(ErrInvalidUpdate, "Invalid Update",
			"Please enter a valid name and price (must be greater than 0).")
	}

	next := bill.Clone()
	next.Items[idx].Name = name
	next.Items[idx].Price = price
	return next, nil
}

// RemoveItem deletes the item with the given ID.
func RemoveItem(bill models.Bill, id string) (models.Bill, error) {
	if _, _, found := bill.Item(id); !found {
		return bill, notFound(id)
	}
	next := bill.Clone()
	next.Items = slices.DeleteFunc(next.Items, func(item models.LineItem) bool { return item.ID == id })
	return next, nil
}

// ToggleConsumer adds or removes name from an item's consumers.
// Names that are not on the roster are ignored.
func ToggleConsumer(bill models.Bill, id, name string, checked bool) (models.Bill, error) {
	item, idx, found := bill.Item(id)
	if !found {
		return bill, notFound(id)
	}
	if !bill.HasParticipant(name) || item.HasConsumer(name) == checked {
		return bill.Clone(), nil
	}

	next := bill.Clone()
	if checked {
		next.Items[idx].Consumers = append(next.Items[idx].Consumers, name)
	} else {
		next.Items[idx].Consumers = slices.DeleteFunc(next.Items[idx].Consumers, func(c string) bool { return c == name })
	}
	return next, nil
}

func notFound(id string) *ValidationError {
	return invalid(ErrItemNotFound, "Item not found",
		fmt.Sprintf("Item %q is no longer on the bill.", id))
}

// parsePrice accepts a positive decimal number and nothing else.
func parsePrice(s string) (float64, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil || !d.IsPositive() {
		return 0, false
	}
	price := d.InexactFloat64()
	if math.IsInf(price, 0) || price <= 0 {
		return 0, false
	}
	return price, true
}

func parseQuantity(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 1, true
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || n > MaxQuantity {
		return 0, false
	}
	return n, true
}
