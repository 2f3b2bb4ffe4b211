// Package api defines the wire messages and Connect services of mealsplit.
//
// Messages are plain structs carried as JSON. Every split request carries the
// complete bill the browser holds; mutations answer with the new bill.
package api

// Bill is the client-held session snapshot.
type Bill struct {
	Participants []string   `json:"participants"`
	Items        []LineItem `json:"items"`
}

// LineItem is one unit of a purchased item.
type LineItem struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Price     float64  `json:"price"`
	Consumers []string `json:"consumers"`
}

// Notification is a message to show the user.
type Notification struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	// Severity is "normal" or "destructive".
	Severity string `json:"severity"`
}

type CalculateRequest struct {
	Bill Bill `json:"bill"`
}

// ItemShare is one person's share of one item.
type ItemShare struct {
	ItemID string  `json:"itemId"`
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// PersonShare is what one participant owes.
type PersonShare struct {
	Participant string      `json:"participant"`
	Amount      float64     `json:"amount"`
	Display     string      `json:"display"`
	Items       []ItemShare `json:"items"`
}

// CalculateResponse is the computed split. Amounts are exact; the Display
// fields hold the two-decimal presentation.
type CalculateResponse struct {
	Total             float64       `json:"total"`
	TotalDisplay      string        `json:"totalDisplay"`
	Owed              []PersonShare `json:"owed"`
	Unassigned        float64       `json:"unassigned"`
	UnassignedDisplay string        `json:"unassignedDisplay"`
}

type AddParticipantRequest struct {
	Bill Bill   `json:"bill"`
	Name string `json:"name"`
}

type RemoveParticipantRequest struct {
	Bill Bill   `json:"bill"`
	Name string `json:"name"`
}

type AddItemRequest struct {
	Bill     Bill   `json:"bill"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
}

type EditItemRequest struct {
	Bill   Bill   `json:"bill"`
	ItemID string `json:"itemId"`
	Name   string `json:"name"`
	Price  string `json:"price"`
}

type RemoveItemRequest struct {
	Bill   Bill   `json:"bill"`
	ItemID string `json:"itemId"`
}

type ToggleConsumerRequest struct {
	Bill        Bill   `json:"bill"`
	ItemID      string `json:"itemId"`
	Participant string `json:"participant"`
	Checked     bool   `json:"checked"`
}

// MutationResponse carries the bill after a mutation. When the mutation was
// rejected, Bill is unchanged and Notification explains why.
type MutationResponse struct {
	Bill         Bill              `json:"bill"`
	Allocation   CalculateResponse `json:"allocation"`
	Notification *Notification     `json:"notification,omitempty"`
}

type ExportRequest struct {
	Bill Bill `json:"bill"`
}

type ExportResponse struct {
	Filename     string        `json:"filename,omitempty"`
	ContentType  string        `json:"contentType,omitempty"`
	Data         []byte        `json:"data,omitempty"`
	URL          string        `json:"url,omitempty"`
	Notification *Notification `json:"notification,omitempty"`
}

// SuggestRequest asks for completions of a partially typed item name.
type SuggestRequest struct {
	Partial string `json:"partial"`
	// ClientID identifies the browser tab, e.g. a UUID generated on page load.
	ClientID string `json:"clientId,omitempty"`
	// FieldID identifies the input field within the tab. A newer request from
	// the same client and field supersedes an older one still in flight.
	// Requests without both IDs are never superseded.
	FieldID string `json:"fieldId,omitempty"`
}

type GuessResponse struct {
	Guess     string `json:"guess"`
	Available bool   `json:"available"`
	Stale     bool   `json:"stale,omitempty"`
}

type SuggestResponse struct {
	Suggestions []string `json:"suggestions"`
	Available   bool     `json:"available"`
	Stale       bool     `json:"stale,omitempty"`
}
