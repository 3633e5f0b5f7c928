package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/go-jf-stremio/internal/jellyfin"
	"github.com/opd-ai/go-jf-stremio/internal/resolver"
	"github.com/opd-ai/go-jf-stremio/internal/stream"
	"github.com/opd-ai/go-jf-stremio/pkg/config"
)

// stubResolver returns canned descriptors or a canned error and records the
// composite id it was asked about.
type stubResolver struct {
	descriptors []stream.Descriptor
	err         error
	lastID      string
}

func (s *stubResolver) Resolve(_ context.Context, _ jellyfin.Credentials, compositeID string) ([]stream.Descriptor, error) {
	s.lastID = compositeID
	return s.descriptors, s.err
}

func newTestServer(t *testing.T, res Resolver) *Server {
	t.Helper()

	cfg := config.Default()
	cfg.Server.RateLimitPerMin = 0 // no throttling in tests
	cfg.Upstream.AllowPrivateHosts = true

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, res, logger)
}

func testCredentials() jellyfin.Credentials {
	return jellyfin.Credentials{
		ServerURL:   "http://jellyfin.example.com",
		UserID:      "user-1",
		AccessToken: "token-1",
	}
}

func doRequest(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)
	return rec
}

func TestHealthEndpoint(t *testing.T) {
	s := newTestServer(t, &stubResolver{})

	rec := doRequest(t, s, "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"status":"ok"`)
}

func TestManifestRequiresConfiguration(t *testing.T) {
	s := newTestServer(t, &stubResolver{})

	rec := doRequest(t, s, "/manifest.json")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc manifest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))

	assert.Equal(t, "ai.opd.go-jf-stremio", doc.ID)
	assert.Equal(t, []string{"stream"}, doc.Resources)
	assert.Equal(t, []string{"movie", "series"}, doc.Types)
	assert.NotNil(t, doc.BehaviorHints)
	assert.True(t, doc.BehaviorHints.ConfigurationRequired)
}

func TestManifestWithCredentials(t *testing.T) {
	s := newTestServer(t, &stubResolver{})
	segment := EncodeUserData(testCredentials())

	rec := doRequest(t, s, "/"+segment+"/manifest.json")
	require.Equal(t, http.StatusOK, rec.Code)

	var doc manifest
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.False(t, doc.BehaviorHints.ConfigurationRequired)
}

func TestConfigurePageServed(t *testing.T) {
	s := newTestServer(t, &stubResolver{})

	rec := doRequest(t, s, "/configure")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "stremio://")
}

func TestStreamHappyPath(t *testing.T) {
	res := &stubResolver{
		descriptors: []stream.Descriptor{
			{
				URL:         "http://jellyfin.example.com/Videos/item-1/stream.mkv",
				Description: "1080p (1920x1080)",
				Subtitles:   []stream.Subtitle{{ID: "item-1/ms-1/2", Language: "eng", URL: "http://jellyfin.example.com/sub"}},
			},
		},
	}
	s := newTestServer(t, res)
	segment := EncodeUserData(testCredentials())

	rec := doRequest(t, s, "/"+segment+"/stream/movie/tt0111161.json")
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "tt0111161", res.lastID, "the .json suffix must be stripped before resolution")

	var resp streamResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Streams, 1)
	assert.Equal(t, "http://jellyfin.example.com/Videos/item-1/stream.mkv", resp.Streams[0].URL)
	assert.Equal(t, "1080p (1920x1080)", resp.Streams[0].Description)
	require.Len(t, resp.Streams[0].Subtitles, 1)
	assert.Equal(t, "eng", resp.Streams[0].Subtitles[0].Language)
}

func TestStreamFailuresReturnEmptyList(t *testing.T) {
	segment := EncodeUserData(testCredentials())

	tests := []struct {
		name string
		path string
		res  *stubResolver
	}{
		{
			name: "undecodable user data",
			path: "/%21%21not-base64/stream/movie/tt0111161.json",
			res:  &stubResolver{},
		},
		{
			name: "incomplete credentials",
			path: "/" + EncodeUserData(jellyfin.Credentials{ServerURL: "http://jellyfin.example.com"}) + "/stream/movie/tt0111161.json",
			res:  &stubResolver{},
		},
		{
			name: "nothing found",
			path: "/" + segment + "/stream/movie/tt0111161.json",
			res:  &stubResolver{err: resolver.ErrNotFound},
		},
		{
			name: "resolution error",
			path: "/" + segment + "/stream/movie/tt0111161.json",
			res:  &stubResolver{err: errors.New("boom")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.res)

			rec := doRequest(t, s, tt.path)
			require.Equal(t, http.StatusOK, rec.Code, "failures must not surface as HTTP errors")

			var resp streamResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.NotNil(t, resp.Streams)
			assert.Empty(t, resp.Streams)
		})
	}
}

func TestStreamRejectsUnsafeServerURL(t *testing.T) {
	s := newTestServer(t, &stubResolver{})
	s.config.Upstream.AllowPrivateHosts = false

	creds := testCredentials()
	creds.ServerURL = "http://127.0.0.1:8096"
	segment := EncodeUserData(creds)

	rec := doRequest(t, s, "/"+segment+"/stream/movie/tt0111161.json")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp streamResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Empty(t, resp.Streams)
}

func TestUserDataRoundTrip(t *testing.T) {
	creds := testCredentials()

	decoded, err := decodeUserData(EncodeUserData(creds))
	require.NoError(t, err)
	assert.Equal(t, creds, decoded)
}

func TestDecodeUserDataPaddedAlphabet(t *testing.T) {
	// Some clients re-encode the segment with padding characters.
	decoded, err := decodeUserData("eyJzZXJ2ZXJVcmwiOiJodHRwOi8vaG9zdCIsInVzZXJJZCI6InUiLCJhY2Nlc3NUb2tlbiI6InQifQ==")
	require.NoError(t, err)
	assert.Equal(t, "http://host", decoded.ServerURL)
	assert.Equal(t, "u", decoded.UserID)
	assert.Equal(t, "t", decoded.AccessToken)
}

func TestStreamDropsDescriptorsWithoutURL(t *testing.T) {
	res := &stubResolver{
		descriptors: []stream.Descriptor{
			{URL: "", Description: "broken"},
			{URL: "http://jellyfin.example.com/Videos/item-2/stream", Description: "720p"},
		},
	}
	s := newTestServer(t, res)
	segment := EncodeUserData(testCredentials())

	rec := doRequest(t, s, "/"+segment+"/stream/movie/tt0111161.json")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp streamResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Streams, 1)
	assert.Equal(t, "720p", resp.Streams[0].Description)
}
