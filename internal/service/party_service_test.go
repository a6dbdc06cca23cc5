package service

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partyplus/server/internal/invite"
	"github.com/partyplus/server/internal/kv/sqlite"
	"github.com/partyplus/server/internal/models"
	"github.com/partyplus/server/internal/store"
)

const testBaseURL = "https://partyplus-invite.netlify.app"

func TestMain(m *testing.M) {
	// Handlers log through the default slog logger; keep test output clean.
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError})))
	os.Exit(m.Run())
}

// newTestServer wires a PartyService over a throwaway SQLite store.
func newTestServer(t *testing.T) (*http.ServeMux, *store.PartyStore) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "partyplus-service-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	kvs, err := sqlite.New(filepath.Join(tempDir, "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { kvs.Close() })

	st := store.New(kvs)
	mux := http.NewServeMux()
	NewPartyService(st, testBaseURL).Register(mux)
	return mux, st
}

func doJSON(t *testing.T, mux *http.ServeMux, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

func TestUpsertParty(t *testing.T) {
	t.Run("rejects missing title", func(t *testing.T) {
		mux, _ := newTestServer(t)

		w := doJSON(t, mux, http.MethodPost, "/api/parties", models.Party{Title: "   "})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp struct {
			Error string `json:"error"`
		}
		decodeBody(t, w, &resp)
		assert.Equal(t, "title is required", resp.Error)
	})

	t.Run("rejects malformed body", func(t *testing.T) {
		mux, _ := newTestServer(t)

		req := httptest.NewRequest(http.MethodPost, "/api/parties", bytes.NewReader([]byte("{not json")))
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("saves party, trims fields and records it as current", func(t *testing.T) {
		mux, st := newTestServer(t)

		w := doJSON(t, mux, http.MethodPost, "/api/parties", models.Party{
			Title:    "  Fin's Birthday  ",
			Location: " Our place ",
			Items: []models.PartyItem{
				{Name: " Ice "},
				{Name: "   "}, // dropped
				{Name: "Cups", Qty: "20"},
			},
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Party models.Party `json:"party"`
		}
		decodeBody(t, w, &resp)

		assert.Equal(t, "Fin's Birthday", resp.Party.Title)
		assert.Equal(t, "Our place", resp.Party.Location)
		require.Len(t, resp.Party.Items, 2)
		assert.Equal(t, "Ice", resp.Party.Items[0].Name)
		assert.NotEmpty(t, resp.Party.ID)
		assert.NotEmpty(t, resp.Party.Items[0].ID)
		assert.Equal(t, resp.Party.CreatedAt, resp.Party.UpdatedAt)

		current, err := st.GetCurrentPartyID(t.Context())
		require.NoError(t, err)
		assert.Equal(t, resp.Party.ID, current)
	})

	t.Run("stores an unparsable date as absent", func(t *testing.T) {
		mux, _ := newTestServer(t)

		w := doJSON(t, mux, http.MethodPost, "/api/parties", models.Party{
			Title: "Housewarming",
			Date:  "whenever works",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Party models.Party `json:"party"`
		}
		decodeBody(t, w, &resp)
		assert.Empty(t, resp.Party.Date)
	})

	t.Run("canonicalizes a loose but valid date", func(t *testing.T) {
		mux, _ := newTestServer(t)

		w := doJSON(t, mux, http.MethodPost, "/api/parties", models.Party{
			Title: "Housewarming",
			Date:  "2026-01-25T16:00",
		})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Party models.Party `json:"party"`
		}
		decodeBody(t, w, &resp)
		assert.Equal(t, "2026-01-25T16:00:00.000Z", resp.Party.Date)
	})
}

func TestGetParty(t *testing.T) {
	mux, st := newTestServer(t)

	party := models.Party{ID: "p1", Title: "Fin's Birthday"}
	require.NoError(t, st.UpsertParty(t.Context(), &party))

	t.Run("returns saved party", func(t *testing.T) {
		w := doJSON(t, mux, http.MethodGet, "/api/parties/p1", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Party models.Party `json:"party"`
		}
		decodeBody(t, w, &resp)
		assert.Equal(t, "Fin's Birthday", resp.Party.Title)
	})

	t.Run("404 for unknown id", func(t *testing.T) {
		w := doJSON(t, mux, http.MethodGet, "/api/parties/nope", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestListParties(t *testing.T) {
	mux, st := newTestServer(t)

	for _, id := range []string{"1", "2"} {
		p := models.Party{ID: id, Title: "Party " + id}
		require.NoError(t, st.UpsertParty(t.Context(), &p))
	}

	w := doJSON(t, mux, http.MethodGet, "/api/parties", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Parties []models.Party `json:"parties"`
	}
	decodeBody(t, w, &resp)
	require.Len(t, resp.Parties, 2)
	assert.Equal(t, "2", resp.Parties[0].ID, "newest party should come first")
}

func TestToggleClaim(t *testing.T) {
	newPartyWithItems := func(t *testing.T) (*http.ServeMux, *store.PartyStore) {
		mux, st := newTestServer(t)
		party := models.Party{
			ID:    "p1",
			Title: "Fin's Birthday",
			Items: []models.PartyItem{
				{ID: "a", Name: "Ice"},
				{ID: "b", Name: "Cups", ClaimedBy: "Bob"},
			},
		}
		require.NoError(t, st.UpsertParty(t.Context(), &party))
		return mux, st
	}

	t.Run("rejects blank claimant name", func(t *testing.T) {
		mux, _ := newPartyWithItems(t)

		w := doJSON(t, mux, http.MethodPost, "/api/parties/p1/claim",
			claimRequest{ItemID: "a", Name: "   "})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		var resp struct {
			Error string `json:"error"`
		}
		decodeBody(t, w, &resp)
		assert.Equal(t, "enter your name first", resp.Error)
	})

	t.Run("404 for unknown party", func(t *testing.T) {
		mux, _ := newPartyWithItems(t)

		w := doJSON(t, mux, http.MethodPost, "/api/parties/ghost/claim",
			claimRequest{ItemID: "a", Name: "Alice"})

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("claims and persists", func(t *testing.T) {
		mux, st := newPartyWithItems(t)

		w := doJSON(t, mux, http.MethodPost, "/api/parties/p1/claim",
			claimRequest{ItemID: "a", Name: "Alice"})
		require.Equal(t, http.StatusOK, w.Code)

		saved, err := st.GetPartyByID(t.Context(), "p1")
		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, "Alice", saved.Item("a").ClaimedBy)
	})

	t.Run("toggling twice returns item to unclaimed", func(t *testing.T) {
		mux, st := newPartyWithItems(t)

		for range 2 {
			w := doJSON(t, mux, http.MethodPost, "/api/parties/p1/claim",
				claimRequest{ItemID: "a", Name: "Alice"})
			require.Equal(t, http.StatusOK, w.Code)
		}

		saved, err := st.GetPartyByID(t.Context(), "p1")
		require.NoError(t, err)
		assert.Empty(t, saved.Item("a").ClaimedBy)
	})

	t.Run("reports the holder when the item is taken", func(t *testing.T) {
		mux, st := newPartyWithItems(t)

		w := doJSON(t, mux, http.MethodPost, "/api/parties/p1/claim",
			claimRequest{ItemID: "b", Name: "Alice"})
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			AlreadyClaimedBy string `json:"alreadyClaimedBy"`
		}
		decodeBody(t, w, &resp)
		assert.Equal(t, "Bob", resp.AlreadyClaimedBy)

		saved, err := st.GetPartyByID(t.Context(), "p1")
		require.NoError(t, err)
		assert.Equal(t, "Bob", saved.Item("b").ClaimedBy)
	})
}

func TestInvite(t *testing.T) {
	mux, st := newTestServer(t)

	party := models.Party{
		ID:       "p1",
		Title:    "Fin's Birthday",
		Date:     "2026-01-25T16:00:00.000Z",
		Location: "Our place",
	}
	require.NoError(t, st.UpsertParty(t.Context(), &party))

	t.Run("returns decodable link and share message", func(t *testing.T) {
		w := doJSON(t, mux, http.MethodGet, "/api/parties/p1/invite", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Link    string `json:"link"`
			Message string `json:"message"`
		}
		decodeBody(t, w, &resp)

		assert.Contains(t, resp.Link, testBaseURL+"/i/p1?d=")
		assert.Contains(t, resp.Message, "You're invited: Fin's Birthday")
		assert.Contains(t, resp.Message, resp.Link)

		u, err := url.Parse(resp.Link)
		require.NoError(t, err)
		payload, err := invite.Decode(u.Query().Get("d"))
		require.NoError(t, err)
		assert.Equal(t, "Fin's Birthday", payload.Title)
		assert.Equal(t, "2026-01-25T16:00:00.000Z", payload.DateTime)
	})

	t.Run("404 for unknown party", func(t *testing.T) {
		w := doJSON(t, mux, http.MethodGet, "/api/parties/ghost/invite", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestCurrentParty(t *testing.T) {
	mux, _ := newTestServer(t)

	t.Run("starts unset", func(t *testing.T) {
		w := doJSON(t, mux, http.MethodGet, "/api/current-party", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"currentPartyId": null}`, w.Body.String())
	})

	t.Run("set requires an id", func(t *testing.T) {
		w := doJSON(t, mux, http.MethodPut, "/api/current-party", map[string]string{})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("set, get, clear", func(t *testing.T) {
		w := doJSON(t, mux, http.MethodPut, "/api/current-party", map[string]string{"id": "p9"})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, mux, http.MethodGet, "/api/current-party", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"currentPartyId": "p9"}`, w.Body.String())

		w = doJSON(t, mux, http.MethodDelete, "/api/current-party", nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, mux, http.MethodGet, "/api/current-party", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"currentPartyId": null}`, w.Body.String())
	})
}
