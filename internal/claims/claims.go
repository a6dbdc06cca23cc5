// Package claims holds the pure merge logic for guest item claims.
package claims

import (
	"strings"

	"github.com/partyplus/server/internal/models"
)

// Toggle applies one claim-toggle request to a party's item list and returns
// the updated copy. The input party is never modified; persisting the result
// is the caller's follow-up step through the store.
//
// For the item matching itemID:
//   - unclaimed             -> claimed by claimant
//   - claimed by claimant   -> unclaimed (toggle off)
//   - claimed by someone else -> unchanged (first claimant wins)
//
// Names compare case-sensitively after trimming. A claimant that is blank
// after trimming makes the whole call a no-op; the caller is expected to ask
// for a name first.
func Toggle(party models.Party, itemID, claimant string) models.Party {
	next := party.Clone()

	me := strings.TrimSpace(claimant)
	if me == "" {
		return next
	}

	for i := range next.Items {
		if next.Items[i].ID != itemID {
			continue
		}
		switch strings.TrimSpace(next.Items[i].ClaimedBy) {
		case "":
			next.Items[i].ClaimedBy = me
		case me:
			next.Items[i].ClaimedBy = ""
		}
	}
	return next
}

// ClaimedBy returns the current claimant of the item with the given id, or
// empty string if the item is unclaimed or absent. Callers use this to report
// "already claimed by X" when a toggle had no effect.
func ClaimedBy(party models.Party, itemID string) string {
	item := party.Item(itemID)
	if item == nil {
		return ""
	}
	return strings.TrimSpace(item.ClaimedBy)
}
