// Package service exposes the party store over a JSON HTTP API.
//
// The handlers take over the caller duties the store deliberately leaves out:
// trimming text fields, requiring a non-empty title, rejecting unparsable
// dates, and pre-validating claimant names.
package service

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/partyplus/server/internal/claims"
	"github.com/partyplus/server/internal/invite"
	"github.com/partyplus/server/internal/models"
	"github.com/partyplus/server/internal/store"
)

// PartyService implements the HTTP handlers for parties, claims and invites.
type PartyService struct {
	store         *store.PartyStore
	inviteBaseURL string
}

// NewPartyService creates a new PartyService with the given storage backend
// and the base URL invite links point at.
func NewPartyService(st *store.PartyStore, inviteBaseURL string) *PartyService {
	return &PartyService{store: st, inviteBaseURL: inviteBaseURL}
}

// Register attaches all party routes to the mux.
func (s *PartyService) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/parties", s.ListParties)
	mux.HandleFunc("POST /api/parties", s.UpsertParty)
	mux.HandleFunc("GET /api/parties/{id}", s.GetParty)
	mux.HandleFunc("POST /api/parties/{id}/claim", s.ToggleClaim)
	mux.HandleFunc("GET /api/parties/{id}/invite", s.Invite)
	mux.HandleFunc("GET /api/current-party", s.GetCurrentParty)
	mux.HandleFunc("PUT /api/current-party", s.SetCurrentParty)
	mux.HandleFunc("DELETE /api/current-party", s.ClearCurrentParty)
}

// ListParties returns every saved party, newest first.
func (s *PartyService) ListParties(w http.ResponseWriter, r *http.Request) {
	parties, err := s.store.GetParties(r.Context())
	if err != nil {
		slog.Error("ListParties failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load parties")
		return
	}

	slog.Info("ListParties successful", "count", len(parties))
	writeJSON(w, http.StatusOK, map[string]any{"parties": parties})
}

// UpsertParty creates or replaces a party, then records it as current.
func (s *PartyService) UpsertParty(w http.ResponseWriter, r *http.Request) {
	var party models.Party
	if err := json.NewDecoder(r.Body).Decode(&party); err != nil {
		writeError(w, http.StatusBadRequest, "invalid party payload")
		return
	}

	party.Title = strings.TrimSpace(party.Title)
	if party.Title == "" {
		writeError(w, http.StatusBadRequest, "title is required")
		return
	}

	// An unparsable date is stored as absent, never persisted raw.
	party.Date = models.SanitizeDate(party.Date)
	party.Location = strings.TrimSpace(party.Location)
	party.Notes = strings.TrimSpace(party.Notes)
	party.Theme = strings.TrimSpace(party.Theme)

	// Drop items that are blank after trimming, the way the app's add-item
	// field does.
	kept := party.Items[:0]
	for _, item := range party.Items {
		item.Name = strings.TrimSpace(item.Name)
		if item.Name == "" {
			continue
		}
		kept = append(kept, item)
	}
	party.Items = kept

	if err := s.store.UpsertParty(r.Context(), &party); err != nil {
		slog.Error("UpsertParty failed", "party_id", party.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save party")
		return
	}

	// Saving a party makes it the share screen's target.
	if err := s.store.SetCurrentPartyID(r.Context(), party.ID); err != nil {
		slog.Error("Failed to set current party after save", "party_id", party.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save party")
		return
	}

	slog.Info("Party saved", "party_id", party.ID, "items_count", len(party.Items))
	writeJSON(w, http.StatusOK, map[string]any{"party": party})
}

// GetParty returns one party by id, 404 when absent.
func (s *PartyService) GetParty(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	party, err := s.store.GetPartyByID(r.Context(), id)
	if err != nil {
		slog.Error("GetParty failed", "party_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load party")
		return
	}
	if party == nil {
		writeError(w, http.StatusNotFound, "party not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"party": party})
}

// claimRequest is the body of a claim-toggle call.
type claimRequest struct {
	ItemID string `json:"itemId"`
	Name   string `json:"name"`
}

// ToggleClaim claims or unclaims one item on behalf of a named guest and
// persists the result. An item held by someone else is left alone and the
// holder's name is reported back.
func (s *PartyService) ToggleClaim(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req claimRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid claim payload")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "enter your name first")
		return
	}
	if req.ItemID == "" {
		writeError(w, http.StatusBadRequest, "itemId is required")
		return
	}

	party, err := s.store.GetPartyByID(r.Context(), id)
	if err != nil {
		slog.Error("ToggleClaim failed", "party_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load party")
		return
	}
	if party == nil {
		writeError(w, http.StatusNotFound, "party not found")
		return
	}

	next := claims.Toggle(*party, req.ItemID, req.Name)
	if err := s.store.UpsertParty(r.Context(), &next); err != nil {
		slog.Error("Failed to persist claim", "party_id", id, "item_id", req.ItemID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to save claim")
		return
	}

	resp := map[string]any{"party": next}
	if holder := claims.ClaimedBy(next, req.ItemID); holder != "" && holder != strings.TrimSpace(req.Name) {
		resp["alreadyClaimedBy"] = holder
	}

	slog.Info("Claim toggled", "party_id", id, "item_id", req.ItemID)
	writeJSON(w, http.StatusOK, resp)
}

// Invite returns the shareable link and message for a party.
func (s *PartyService) Invite(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	party, err := s.store.GetPartyByID(r.Context(), id)
	if err != nil {
		slog.Error("Invite failed", "party_id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load party")
		return
	}
	if party == nil {
		writeError(w, http.StatusNotFound, "party not found")
		return
	}

	link := invite.Link(s.inviteBaseURL, *party)
	writeJSON(w, http.StatusOK, map[string]any{
		"link":    link,
		"message": invite.ShareMessage(*party, link),
	})
}

// GetCurrentParty reports which party the share/claim view targets.
// currentPartyId is null when no party is selected.
func (s *PartyService) GetCurrentParty(w http.ResponseWriter, r *http.Request) {
	id, err := s.store.GetCurrentPartyID(r.Context())
	if err != nil {
		slog.Error("GetCurrentParty failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to load current party")
		return
	}

	if id == "" {
		writeJSON(w, http.StatusOK, map[string]any{"currentPartyId": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"currentPartyId": id})
}

// SetCurrentParty records navigation intent from a list screen.
func (s *PartyService) SetCurrentParty(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := s.store.SetCurrentPartyID(r.Context(), req.ID); err != nil {
		slog.Error("SetCurrentParty failed", "party_id", req.ID, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set current party")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"currentPartyId": req.ID})
}

// ClearCurrentParty unsets the pointer when the host starts a fresh party.
func (s *PartyService) ClearCurrentParty(w http.ResponseWriter, r *http.Request) {
	if err := s.store.ClearCurrentPartyID(r.Context()); err != nil {
		slog.Error("ClearCurrentParty failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to clear current party")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"currentPartyId": nil})
}
