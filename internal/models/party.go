// Package models defines the core domain models for PartyPlus.
//
// # Current Models
//
//   - Party: a single planned event with metadata and a list of items to bring
//   - PartyItem: one thing a guest can claim to bring
//
// Guests are identified by self-reported name strings (no user accounts).
//
// # Design Principles
//
//  1. **One canonical schema**: the mobile app went through several slightly
//     different Party shapes; this is the superset, with every optional field
//     tolerant of absence so older records still decode.
//  2. **Stable JSON keys**: the camelCase keys below are the persisted wire
//     format and must not change.
//  3. **Value semantics**: parties passed through the pure claim logic are
//     copied, never mutated in place.
package models

// PartyItem represents a single thing to bring to a party.
// Items can be claimed by exactly one guest at a time.
type PartyItem struct {
	// ID is an opaque token, unique within one party's item list.
	ID string `json:"id"`

	// Name is the display string for the item (e.g., "Ice", "Cups").
	Name string `json:"name"`

	// Qty is an optional free-text quantity descriptor (e.g., "2 bags").
	Qty string `json:"qty,omitempty"`

	// ClaimedBy is the claimant's self-reported name.
	// Empty means unclaimed.
	ClaimedBy string `json:"claimedBy,omitempty"`

	// CreatedBy is optional and carried only for storage compatibility.
	CreatedBy string `json:"createdBy,omitempty"`
}

// Party represents a single planned event.
type Party struct {
	// ID is unique across the whole store. It doubles as the deep-link
	// identifier in invite URLs.
	ID string `json:"id"`

	// Title is the human-readable name for the party.
	// Required; callers trim and validate before saving.
	Title string `json:"title"`

	// Date is an ISO-8601 timestamp string. Empty means "not scheduled".
	Date string `json:"date,omitempty"`

	// Location is an optional free-text venue or address.
	Location string `json:"location,omitempty"`

	// Notes is optional free text shown to guests.
	Notes string `json:"notes,omitempty"`

	// Theme is optional free text.
	Theme string `json:"theme,omitempty"`

	// Items is the ordered list of things to bring.
	// Insertion order is display order.
	Items []PartyItem `json:"items"`

	// CreatedAt is an ISO-8601 timestamp stamped once at first save and
	// immutable thereafter.
	CreatedAt string `json:"createdAt,omitempty"`

	// UpdatedAt is an ISO-8601 timestamp overwritten on every save.
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Clone returns a deep copy of the party. The item list is copied so the
// caller can modify the clone without touching the original.
func (p Party) Clone() Party {
	next := p
	next.Items = make([]PartyItem, len(p.Items))
	copy(next.Items, p.Items)
	return next
}

// Item returns the item with the given id, or nil if no item matches.
func (p *Party) Item(itemID string) *PartyItem {
	for i := range p.Items {
		if p.Items[i].ID == itemID {
			return &p.Items[i]
		}
	}
	return nil
}
