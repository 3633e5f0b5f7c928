package jellyfin

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrInvalidConfig indicates missing or malformed server credentials. It is
// a fatal precondition failure; resolution is never attempted with it.
var ErrInvalidConfig = errors.New("invalid server configuration")

// ErrUnauthorized indicates the server rejected the access token (401/403).
// Callers treat it like any other soft lookup failure but can diagnose it
// specifically with errors.Is.
var ErrUnauthorized = errors.New("server rejected access token")

// Client identity reported in the MediaBrowser authorization header.
const (
	clientName    = "go-jf-stremio"
	clientVersion = "1.0.0"
)

// Credentials identifies one remote server and the user/session to query it
// as. They arrive per request from the addon configuration and are never
// persisted.
type Credentials struct {
	ServerURL   string `json:"serverUrl"`
	UserID      string `json:"userId"`
	AccessToken string `json:"accessToken"`
}

// Validate checks that all required fields are present. It reports the first
// missing field wrapped in ErrInvalidConfig.
func (c Credentials) Validate() error {
	if strings.TrimSpace(c.ServerURL) == "" {
		return fmt.Errorf("%w: server URL is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.UserID) == "" {
		return fmt.Errorf("%w: user id is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.AccessToken) == "" {
		return fmt.Errorf("%w: access token is required", ErrInvalidConfig)
	}
	return nil
}

// baseURL returns the server URL without a trailing slash.
func (c Credentials) baseURL() string {
	return strings.TrimRight(c.ServerURL, "/")
}

// authorize sets the MediaBrowser authorization headers on an outgoing
// request. Both header forms are sent; older Emby-derived servers only read
// the X-Emby-Token variant.
func (c Credentials) authorize(req *http.Request) {
	req.Header.Set("Authorization", fmt.Sprintf(
		`MediaBrowser Client="%s", Device="%s", DeviceId="%s", Version="%s", Token="%s"`,
		clientName, clientName, clientName, clientVersion, c.AccessToken))
	req.Header.Set("X-Emby-Token", c.AccessToken)
	req.Header.Set("Accept", "application/json")
}
