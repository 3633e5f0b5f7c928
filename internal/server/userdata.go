package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/opd-ai/go-jf-stremio/internal/jellyfin"
)

// EncodeUserData renders credentials as the URL path segment Stremio embeds
// in the addon install link. The configure page performs the same encoding
// client-side; this function exists for tests and tooling.
func EncodeUserData(creds jellyfin.Credentials) string {
	payload, _ := json.Marshal(creds)
	return base64.RawURLEncoding.EncodeToString(payload)
}

// decodeUserData parses the credentials segment of a request path. Both the
// raw and padded url-safe alphabets are accepted; some clients re-encode the
// segment with padding.
func decodeUserData(segment string) (jellyfin.Credentials, error) {
	var creds jellyfin.Credentials

	payload, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		payload, err = base64.URLEncoding.DecodeString(segment)
	}
	if err != nil {
		return creds, fmt.Errorf("undecodable user data: %w", err)
	}

	if err := json.Unmarshal(payload, &creds); err != nil {
		return creds, fmt.Errorf("malformed user data: %w", err)
	}
	return creds, nil
}
