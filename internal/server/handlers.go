package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/opd-ai/go-jf-stremio/internal/hostcheck"
	"github.com/opd-ai/go-jf-stremio/internal/mediaid"
	"github.com/opd-ai/go-jf-stremio/internal/metrics"
	"github.com/opd-ai/go-jf-stremio/internal/resolver"
	"github.com/opd-ai/go-jf-stremio/internal/stream"
	"github.com/opd-ai/go-jf-stremio/internal/ui"
)

// manifest is the Stremio addon manifest document.
type manifest struct {
	ID            string         `json:"id"`
	Version       string         `json:"version"`
	Name          string         `json:"name"`
	Description   string         `json:"description"`
	Resources     []string       `json:"resources"`
	Types         []string       `json:"types"`
	IDPrefixes    []string       `json:"idPrefixes"`
	Catalogs      []any          `json:"catalogs"`
	BehaviorHints *manifestHints `json:"behaviorHints,omitempty"`
}

// manifestHints advertises addon capabilities to the Stremio client.
type manifestHints struct {
	Configurable          bool `json:"configurable"`
	ConfigurationRequired bool `json:"configurationRequired"`
}

// streamResponse is the stream resource envelope.
type streamResponse struct {
	Streams []streamItem `json:"streams"`
}

// streamItem is one playable entry in the Stremio stream list.
type streamItem struct {
	Name          string            `json:"name,omitempty"`
	Description   string            `json:"description,omitempty"`
	URL           string            `json:"url,omitempty"`
	Subtitles     []stream.Subtitle `json:"subtitles,omitempty"`
	BehaviorHints *streamHints      `json:"behaviorHints,omitempty"`
}

// streamHints groups streams of one source so Stremio remembers the user's
// quality choice across episodes.
type streamHints struct {
	BingeGroup string `json:"bingeGroup,omitempty"`
}

// handleHealth provides a simple health check endpoint.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleManifest serves the addon manifest. Without a decodable userData
// segment the manifest demands configuration first.
func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	configured := false
	if segment := chi.URLParam(r, "userData"); segment != "" {
		if creds, err := decodeUserData(segment); err == nil && creds.Validate() == nil {
			configured = true
		}
	}

	doc := manifest{
		ID:          s.config.Addon.ID,
		Version:     s.config.Addon.Version,
		Name:        s.config.Addon.Name,
		Description: s.config.Addon.Description,
		Resources:   []string{"stream"},
		Types:       []string{"movie", "series"},
		IDPrefixes:  []string{"tt", "tmdb", "tvdb", "anidb"},
		Catalogs:    []any{},
		BehaviorHints: &manifestHints{
			Configurable:          true,
			ConfigurationRequired: !configured,
		},
	}

	s.writeJSON(w, http.StatusOK, doc)
}

// handleConfigure serves the embedded configuration page.
func (s *Server) handleConfigure(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(ui.ConfigurePage())
}

// handleStream resolves a composite catalog id into the Stremio stream
// list. Every failure mode degrades to an empty list; the protocol has no
// use for error payloads and clients treat non-200 answers as addon
// breakage.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	compositeID := strings.TrimSuffix(chi.URLParam(r, "id"), ".json")

	creds, err := decodeUserData(chi.URLParam(r, "userData"))
	if err != nil {
		s.logger.Warn("Rejecting stream request with undecodable user data", "error", err)
		s.writeEmptyStreams(w, "invalid_config")
		return
	}

	if err := creds.Validate(); err != nil {
		s.logger.Warn("Rejecting stream request with incomplete credentials", "error", err)
		s.writeEmptyStreams(w, "invalid_config")
		return
	}

	if _, err := hostcheck.ValidateServerURL(creds.ServerURL, s.config.Upstream.AllowPrivateHosts); err != nil {
		s.logger.Warn("Rejecting unsafe server url", "error", err)
		s.writeEmptyStreams(w, "unsafe_url")
		return
	}

	descriptors, err := s.resolver.Resolve(r.Context(), creds, compositeID)
	switch {
	case err == nil:
	case errors.Is(err, mediaid.ErrInvalidID):
		s.logger.Debug("Unparseable composite id", "id", compositeID)
		s.writeEmptyStreams(w, "invalid_id")
		return
	case errors.Is(err, resolver.ErrNotFound):
		s.logger.Debug("No streams found", "id", compositeID)
		s.writeEmptyStreams(w, "not_found")
		return
	default:
		s.logger.Error("Resolution failed", "id", compositeID, "error", err)
		s.writeEmptyStreams(w, "error")
		return
	}

	metrics.Resolutions.WithLabelValues("ok").Inc()
	metrics.StreamsReturned.Observe(float64(len(descriptors)))
	s.writeJSON(w, http.StatusOK, streamResponse{Streams: s.toStreamItems(descriptors)})
}

// toStreamItems converts ranked descriptors to the wire format, dropping
// anything without a playable URL.
func (s *Server) toStreamItems(descriptors []stream.Descriptor) []streamItem {
	items := make([]streamItem, 0, len(descriptors))
	for _, d := range descriptors {
		if d.URL == "" {
			continue
		}

		name := s.config.Addon.Name
		if d.Profile.Quality != "" {
			name += "\n" + d.Profile.Quality
		}

		items = append(items, streamItem{
			Name:        name,
			Description: d.Description,
			URL:         d.URL,
			Subtitles:   d.Subtitles,
			BehaviorHints: &streamHints{
				BingeGroup: s.config.Addon.ID + "-" + d.Profile.Quality,
			},
		})
	}
	return items
}

// writeEmptyStreams answers with an empty stream list and records the
// outcome.
func (s *Server) writeEmptyStreams(w http.ResponseWriter, outcome string) {
	metrics.Resolutions.WithLabelValues(outcome).Inc()
	s.writeJSON(w, http.StatusOK, streamResponse{Streams: []streamItem{}})
}

// writeJSON serializes a response body with the proper content type.
func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}
