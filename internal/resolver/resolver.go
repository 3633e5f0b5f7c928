// Package resolver turns a normalized catalog id into ranked playable
// streams. It locates matching items on the remote server through an
// ordered list of fallback query strategies, re-verifying every server-side
// result locally, then feeds each match through enrichment and assembly and
// finally deduplicates and ranks the combined result.
//
// Individual lookup and transport failures are soft: they are logged and
// the remaining strategies, candidate series and media sources proceed.
// Only total exhaustion without a single stream surfaces as ErrNotFound.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/opd-ai/go-jf-stremio/internal/enrich"
	"github.com/opd-ai/go-jf-stremio/internal/jellyfin"
	"github.com/opd-ai/go-jf-stremio/internal/mediaid"
	"github.com/opd-ai/go-jf-stremio/internal/stream"
)

// ErrNotFound is returned when every strategy and candidate has been
// exhausted without producing a stream.
var ErrNotFound = errors.New("no matching streams found")

// Catalog is the set of remote read operations the resolver consumes, bound
// to one server and user.
type Catalog interface {
	Items(ctx context.Context, query url.Values) ([]jellyfin.Item, error)
	Seasons(ctx context.Context, seriesID string) ([]jellyfin.Item, error)
	Episodes(ctx context.Context, seriesID, seasonID string) ([]jellyfin.Item, error)
	PlaybackInfoFor(ctx context.Context, itemID string) (*jellyfin.PlaybackInfo, error)
}

// CatalogFactory binds credentials to a Catalog. The resolver builds one
// catalog per request; nothing outlives the call.
type CatalogFactory func(creds jellyfin.Credentials) Catalog

// Service is the resolution pipeline. Safe for concurrent use; all state is
// request-scoped.
type Service struct {
	newCatalog CatalogFactory
	logger     *slog.Logger
}

// New creates a resolver service using the given catalog factory.
func New(newCatalog CatalogFactory, logger *slog.Logger) *Service {
	return &Service{
		newCatalog: newCatalog,
		logger:     logger,
	}
}

// Resolve maps a composite catalog id to a deduplicated, ranked list of
// playable streams on the server identified by creds.
//
// Malformed credentials and an unparseable id are fatal for the request.
// Everything downstream is best-effort; an empty outcome is ErrNotFound.
func (s *Service) Resolve(ctx context.Context, creds jellyfin.Credentials, compositeID string) ([]stream.Descriptor, error) {
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	target, err := mediaid.Parse(compositeID)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve %q: %w", compositeID, err)
	}

	catalog := s.newCatalog(creds)

	var descriptors []stream.Descriptor
	if target.Kind == mediaid.KindEpisode {
		descriptors = s.resolveEpisode(ctx, catalog, creds, target)
	} else {
		descriptors = s.resolveMovie(ctx, catalog, creds, target)
	}

	if len(descriptors) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, target)
	}

	descriptors = stream.Dedupe(descriptors)
	stream.Sort(descriptors)
	return descriptors, nil
}

// resolveMovie locates every catalog entry matching the target id and
// collects their streams. Servers may hold duplicate entries for one title;
// all of them contribute.
func (s *Service) resolveMovie(ctx context.Context, catalog Catalog, creds jellyfin.Credentials, target *mediaid.MediaID) []stream.Descriptor {
	matches := s.attemptQueries(ctx, catalog, movieQueries(target), target)
	if len(matches) == 0 {
		s.logger.Debug("No movie matched any query strategy", "id", target.String())
		return nil
	}

	var out []stream.Descriptor
	for i := range matches {
		out = append(out, s.streamsForItem(ctx, catalog, creds, &matches[i])...)
	}
	return out
}

// resolveEpisode resolves the parent series first, then walks each
// candidate's seasons and episodes. A candidate series lacking the target
// season or episode is expected (overlapping provider ids across libraries)
// and skipped without error.
func (s *Service) resolveEpisode(ctx context.Context, catalog Catalog, creds jellyfin.Credentials, target *mediaid.MediaID) []stream.Descriptor {
	candidates := s.attemptQueries(ctx, catalog, seriesQueries(target), target)
	if len(candidates) == 0 {
		s.logger.Debug("No series matched any query strategy", "id", target.String())
		return nil
	}

	var out []stream.Descriptor
	for i := range candidates {
		series := &candidates[i]
		episode := s.findEpisode(ctx, catalog, series, target)
		if episode == nil {
			continue
		}
		out = append(out, s.streamsForItem(ctx, catalog, creds, episode)...)
	}
	return out
}

// findEpisode locates the target season/episode child of one candidate
// series, or nil when the candidate does not carry it.
func (s *Service) findEpisode(ctx context.Context, catalog Catalog, series *jellyfin.Item, target *mediaid.MediaID) *jellyfin.Item {
	seasons, err := catalog.Seasons(ctx, series.ID)
	if err != nil {
		s.logger.Warn("Season listing failed, skipping candidate series",
			"series_id", series.ID,
			"series_name", series.Name,
			"error", err)
		return nil
	}

	var season *jellyfin.Item
	for i := range seasons {
		if seasons[i].IndexNumber != nil && *seasons[i].IndexNumber == target.Season {
			season = &seasons[i]
			break
		}
	}
	if season == nil {
		s.logger.Debug("Candidate series lacks target season",
			"series_name", series.Name,
			"season", target.Season)
		return nil
	}

	episodes, err := catalog.Episodes(ctx, series.ID, season.ID)
	if err != nil {
		s.logger.Warn("Episode listing failed, skipping candidate series",
			"series_id", series.ID,
			"error", err)
		return nil
	}

	for i := range episodes {
		ep := &episodes[i]
		if ep.IndexNumber == nil || ep.ParentIndexNumber == nil {
			continue
		}
		if *ep.ParentIndexNumber == target.Season && *ep.IndexNumber == target.Episode {
			if ep.SeriesName == "" {
				ep.SeriesName = series.Name
			}
			return ep
		}
	}

	s.logger.Debug("Candidate season lacks target episode",
		"series_name", series.Name,
		"season", target.Season,
		"episode", target.Episode)
	return nil
}

// attemptQueries runs the ordered strategy list until one query yields
// locally verified matches. Server-side filters may be inexact, so every
// result is re-checked through the provider matcher. A failing call is a
// soft miss; later strategies still run.
func (s *Service) attemptQueries(ctx context.Context, catalog Catalog, specs []querySpec, target *mediaid.MediaID) []jellyfin.Item {
	for _, spec := range specs {
		items, err := catalog.Items(ctx, spec.params)
		if err != nil {
			if errors.Is(err, jellyfin.ErrUnauthorized) {
				s.logger.Warn("Server rejected credentials during lookup",
					"strategy", spec.label,
					"error", err)
			} else {
				s.logger.Warn("Catalog query failed",
					"strategy", spec.label,
					"error", err)
			}
			continue
		}

		var verified []jellyfin.Item
		for _, item := range items {
			if MatchesProvider(item.ProviderIDs, target) {
				verified = append(verified, item)
			}
		}

		if len(verified) > 0 {
			s.logger.Debug("Query strategy matched",
				"strategy", spec.label,
				"matches", len(verified))
			return verified
		}
	}
	return nil
}

// streamsForItem enriches and assembles every media source of one resolved
// item. Sources embedded in the item are used directly; otherwise playback
// info is fetched. A failing fetch drops only this item's streams.
func (s *Service) streamsForItem(ctx context.Context, catalog Catalog, creds jellyfin.Credentials, item *jellyfin.Item) []stream.Descriptor {
	sources := item.MediaSources
	if len(sources) == 0 {
		info, err := catalog.PlaybackInfoFor(ctx, item.ID)
		if err != nil {
			s.logger.Warn("Playback info unavailable",
				"item_id", item.ID,
				"item_name", item.Name,
				"error", err)
			return nil
		}
		sources = info.MediaSources
	}

	out := make([]stream.Descriptor, 0, len(sources))
	for i := range sources {
		src := &sources[i]
		profile := enrich.Derive(src)
		out = append(out, stream.Assemble(creds, item, src, profile))
	}
	return out
}
