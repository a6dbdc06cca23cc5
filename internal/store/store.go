// Package store implements durable CRUD over the party collection and the
// current-party pointer.
//
// The whole collection is serialized as one JSON array under a single key and
// reparsed on every read. There is no index: the target collection is one
// host's hand-entered parties, so linear scans are fine, and every write is a
// whole-collection rewrite. A process-wide mutex serializes the
// read-modify-write so concurrent upserts cannot corrupt the collection;
// last writer still wins.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/partyplus/server/internal/kv"
	"github.com/partyplus/server/internal/models"
)

// Persisted state layout. The key names are the wire format shared with the
// mobile app and must not change.
const (
	partiesKey = "partyplus.parties.v1"
	currentKey = "partyplus.currentPartyId.v1"
)

// PartyStore owns the persisted party collection and the current-party
// pointer, backed by a flat kv.Store.
type PartyStore struct {
	kv kv.Store

	// mu guards the read-modify-write in UpsertParty.
	mu sync.Mutex

	// now is swappable for tests.
	now func() string
}

// New creates a PartyStore on top of the given key-value backend.
func New(kvs kv.Store) *PartyStore {
	return &PartyStore{kv: kvs, now: models.NowISO}
}

// GetParties returns every saved party. An absent collection reads as empty.
// A collection that is not a well-formed JSON array also reads as empty:
// that fallback is part of the contract, not an error path, so callers never
// see a parse failure.
func (s *PartyStore) GetParties(ctx context.Context) ([]models.Party, error) {
	raw, ok, err := s.kv.Get(ctx, partiesKey)
	if err != nil {
		return nil, fmt.Errorf("failed to read party collection: %w", err)
	}
	if !ok || raw == "" {
		return []models.Party{}, nil
	}

	var parties []models.Party
	if err := json.Unmarshal([]byte(raw), &parties); err != nil {
		slog.Warn("Party collection is not a JSON array, treating as empty", "error", err)
		return []models.Party{}, nil
	}
	if parties == nil {
		// The stored value was the literal "null".
		return []models.Party{}, nil
	}
	return parties, nil
}

// SaveParties serializes the full sequence and overwrites the stored
// collection. There are no partial or append writes.
func (s *PartyStore) SaveParties(ctx context.Context, parties []models.Party) error {
	if parties == nil {
		parties = []models.Party{}
	}
	raw, err := json.Marshal(parties)
	if err != nil {
		return fmt.Errorf("failed to serialize party collection: %w", err)
	}
	if err := s.kv.Set(ctx, partiesKey, string(raw)); err != nil {
		return fmt.Errorf("failed to write party collection: %w", err)
	}
	return nil
}

// UpsertParty inserts or replaces one party in the collection.
//
// A party whose ID matches an existing record replaces it in place, keeping
// its position. A new party is inserted at the front so fresh parties surface
// first in listings. Missing party and item IDs are generated. CreatedAt is
// kept if already set (on the incoming record, or failing that on the stored
// one); UpdatedAt is always stamped.
func (s *PartyStore) UpsertParty(ctx context.Context, party *models.Party) error {
	if party == nil {
		return fmt.Errorf("party must not be nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	parties, err := s.GetParties(ctx)
	if err != nil {
		return err
	}

	if party.ID == "" {
		party.ID = uuid.New().String()
	}
	for i := range party.Items {
		if party.Items[i].ID == "" {
			party.Items[i].ID = uuid.New().String()
		}
	}

	idx := -1
	for i := range parties {
		if parties[i].ID == party.ID {
			idx = i
			break
		}
	}

	// One timestamp for the whole save, so a first save has
	// createdAt == updatedAt.
	now := s.now()
	if party.CreatedAt == "" {
		if idx >= 0 {
			party.CreatedAt = parties[idx].CreatedAt
		}
		if party.CreatedAt == "" {
			party.CreatedAt = now
		}
	}
	party.UpdatedAt = now

	if idx >= 0 {
		parties[idx] = *party
	} else {
		parties = append([]models.Party{*party}, parties...)
	}

	return s.SaveParties(ctx, parties)
}

// GetPartyByID returns the first party with the given id, or nil if none
// matches. A missing party is an expected outcome, not an error.
func (s *PartyStore) GetPartyByID(ctx context.Context, id string) (*models.Party, error) {
	parties, err := s.GetParties(ctx)
	if err != nil {
		return nil, err
	}
	for i := range parties {
		if parties[i].ID == id {
			p := parties[i]
			return &p, nil
		}
	}
	return nil, nil
}

// SetCurrentPartyID records which party the share/claim view targets.
func (s *PartyStore) SetCurrentPartyID(ctx context.Context, id string) error {
	if err := s.kv.Set(ctx, currentKey, id); err != nil {
		return fmt.Errorf("failed to write current party id: %w", err)
	}
	return nil
}

// GetCurrentPartyID returns the current party id, or empty string if unset.
func (s *PartyStore) GetCurrentPartyID(ctx context.Context) (string, error) {
	id, _, err := s.kv.Get(ctx, currentKey)
	if err != nil {
		return "", fmt.Errorf("failed to read current party id: %w", err)
	}
	return id, nil
}

// ClearCurrentPartyID unsets the pointer, e.g. when the host starts a new,
// unsaved party.
func (s *PartyStore) ClearCurrentPartyID(ctx context.Context) error {
	if err := s.kv.Delete(ctx, currentKey); err != nil {
		return fmt.Errorf("failed to clear current party id: %w", err)
	}
	return nil
}
