package models

import "slices"

// Bill is a snapshot of a splitting session: who is sharing the bill and what
// was ordered.
type Bill struct {
	// Participants is the roster in the order people were added.
	Participants []string `json:"participants"`

	// Items are the line items in the order they were added.
	Items []LineItem `json:"items"`
}

// LineItem represents one unit of a purchased item.
type LineItem struct {
	// ID is the unique identifier for the item (UUID format).
	ID string `json:"id"`

	// Name is the display name of the item (e.g., "Pizza", "IPA").
	Name string `json:"name"`

	// Price is the unit price. Always positive.
	Price float64 `json:"price"`

	// Consumers is the set of participant names sharing this item.
	// The item is split equally among them. An empty set means the item
	// counts toward the total but nobody is charged for it.
	Consumers []string `json:"consumers"`
}

// HasParticipant reports whether name is on the roster.
func (b Bill) HasParticipant(name string) bool {
	return slices.Contains(b.Participants, name)
}

// Item returns the item with the given ID and its index.
func (b Bill) Item(id string) (LineItem, int, bool) {
	for i, item := range b.Items {
		if item.ID == id {
			return item, i, true
		}
	}
	return LineItem{}, -1, false
}

// Clone returns a deep copy of the bill.
func (b Bill) Clone() Bill {
	out := Bill{
		Participants: slices.Clone(b.Participants),
		Items:        make([]LineItem, len(b.Items)),
	}
	if out.Participants == nil {
		out.Participants = []string{}
	}
	for i, item := range b.Items {
		out.Items[i] = item.Clone()
	}
	return out
}

// HasConsumer reports whether name shares this item.
func (i LineItem) HasConsumer(name string) bool {
	return slices.Contains(i.Consumers, name)
}

// Clone returns a deep copy of the item.
func (i LineItem) Clone() LineItem {
	i.Consumers = slices.Clone(i.Consumers)
	if i.Consumers == nil {
		i.Consumers = []string{}
	}
	return i
}
