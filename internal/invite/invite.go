// Package invite builds the shareable invite link and its compact payload.
//
// The link shape is a protocol boundary shared with the receiving web client
// and must stay bit-exact:
//
//	https://<host>/i/<partyId>?d=<urlsafe-base64(percent-encode(JSON{t,dt,l,a,la,ln}))>
//
// The JSON is percent-encoded the way JavaScript's encodeURIComponent does,
// then wrapped in URL-safe base64 with padding stripped.
package invite

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/partyplus/server/internal/models"
)

// Payload is the reduced field set embedded in an invite link. The one-letter
// keys are fixed by the link protocol; receiving clients decode them
// independently.
type Payload struct {
	// Title of the party.
	Title string `json:"t"`

	// DateTime is the party's timestamp string. Empty string means
	// "no date", never an omitted field, so decoders don't choke.
	DateTime string `json:"dt"`

	// Location is the venue name.
	Location string `json:"l"`

	// Address is the street address, when known.
	Address string `json:"a"`

	// Lat and Lng are optional coordinates; JSON null when absent.
	Lat *float64 `json:"la"`
	Lng *float64 `json:"ln"`
}

// NewPayload projects a party onto the invite payload. The canonical Party
// schema carries no separate address or coordinates, so those stay empty/null.
func NewPayload(p models.Party) Payload {
	return Payload{
		Title:    p.Title,
		DateTime: p.Date,
		Location: p.Location,
	}
}

// Encode serializes the payload into the opaque link parameter.
func Encode(p Payload) string {
	raw, _ := json.Marshal(p) // Payload contains only marshalable fields
	return base64.RawURLEncoding.EncodeToString([]byte(encodeURIComponent(string(raw))))
}

// Decode is the exact inverse of Encode. The host app never decodes its own
// links; this exists so the round-trip stays honest under test and for any
// Go-side receiving client.
func Decode(s string) (Payload, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return Payload{}, fmt.Errorf("invalid invite encoding: %w", err)
	}

	// PathUnescape decodes %XX sequences only, leaving "+" alone, which is
	// exactly decodeURIComponent's behavior.
	jsonText, err := url.PathUnescape(string(raw))
	if err != nil {
		return Payload{}, fmt.Errorf("invalid invite escaping: %w", err)
	}

	var p Payload
	if err := json.Unmarshal([]byte(jsonText), &p); err != nil {
		return Payload{}, fmt.Errorf("invalid invite payload: %w", err)
	}
	return p, nil
}

// Link builds the full invite URL for a party.
func Link(baseURL string, party models.Party) string {
	return fmt.Sprintf("%s/i/%s?d=%s",
		strings.TrimRight(baseURL, "/"), party.ID, Encode(NewPayload(party)))
}

// ShareMessage renders the friendly multi-line invite text that accompanies
// the link in the share sheet. Missing fields drop their lines entirely.
func ShareMessage(party models.Party, link string) string {
	title := strings.TrimSpace(party.Title)
	if title == "" {
		title = "Party"
	}

	lines := []string{"🎉 You're invited: " + title}
	if when := formatWhen(party.Date); when != "" {
		lines = append(lines, "When: "+when)
	}
	if where := strings.TrimSpace(party.Location); where != "" {
		lines = append(lines, "Where: "+where)
	}
	if notes := strings.TrimSpace(party.Notes); notes != "" {
		lines = append(lines, "Notes: "+notes)
	}
	lines = append(lines, "", link)
	return strings.Join(lines, "\n")
}

// formatWhen renders a stored timestamp for humans, falling back to the raw
// string when it does not parse.
func formatWhen(date string) string {
	if strings.TrimSpace(date) == "" {
		return ""
	}
	t, err := models.ParseWhen(date)
	if err != nil {
		return date
	}
	return t.Format("Mon, Jan 2, 2006 3:04 PM")
}

// encodeURIComponent mirrors the JavaScript function of the same name: every
// byte outside A-Za-z0-9 and -_.!~*'() is %XX-escaped.
func encodeURIComponent(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isURIUnreserved(c) {
			b.WriteByte(c)
		} else {
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}
	return b.String()
}

func isURIUnreserved(c byte) bool {
	if c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' {
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
