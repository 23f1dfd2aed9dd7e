package application

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mizuki-h/artbot/bot/domain"
	"github.com/mizuki-h/artbot/bot/persistence"
	"github.com/mizuki-h/artbot/shared/clients/danbooru"
	"github.com/mizuki-h/artbot/shared/clients/pixiv"
	"github.com/mizuki-h/artbot/shared/clients/twitter"
)

// TweetFetcher fetches single tweets.
type TweetFetcher interface {
	Status(ctx context.Context, id string) (*twitter.Tweet, error)
}

// BooruFetcher fetches Danbooru posts. BaseURL anchors relative file URLs.
type BooruFetcher interface {
	Post(ctx context.Context, id string) (*danbooru.Post, error)
	BaseURL() string
}

// IllustFetcher is the Pixiv app API surface the adapters use.
type IllustFetcher interface {
	IllustDetail(ctx context.Context, id string) (*pixiv.Illust, error)
	UserDetail(ctx context.Context, userID int64) (*pixiv.UserDetail, error)
	Download(ctx context.Context, imageURL, dest string) error
}

// ImageFetcher downloads an image URL to a local path.
type ImageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (string, error)
}

// IngestService turns user-entered sources into stored image records.
// Platform fetchers are nil when their integration is disabled; the
// classifier never dispatches to a nil fetcher.
type IngestService struct {
	store      *persistence.Store
	caps       Capabilities
	tweets     TweetFetcher
	booru      BooruFetcher
	pixiv      IllustFetcher
	images     ImageFetcher
	prompt     *Prompter
	httpClient *http.Client
}

// NewIngestService wires an ingest loop over its collaborators.
func NewIngestService(
	store *persistence.Store,
	caps Capabilities,
	tweets TweetFetcher,
	booru BooruFetcher,
	illusts IllustFetcher,
	images ImageFetcher,
	prompt *Prompter,
) *IngestService {
	return &IngestService{
		store:      store,
		caps:       caps,
		tweets:     tweets,
		booru:      booru,
		pixiv:      illusts,
		images:     images,
		prompt:     prompt,
		httpClient: http.DefaultClient,
	}
}

// Run is the interactive add loop: prompt for a source, resolve it through
// the matching adapter, and append the record. An empty source ends the
// loop. Adapter failures abort only the current iteration.
func (s *IngestService) Run(ctx context.Context) error {
	for {
		source := s.prompt.Ask("enter image source (empty to quit):")
		if source == "" {
			return nil
		}

		dup, err := s.store.Contains(source)
		if err != nil {
			return err
		}
		if dup {
			s.prompt.Say("already added!")
			continue
		}

		rec, err := s.Resolve(ctx, source)
		if err != nil {
			log.Error().Err(err).Str("source", source).Msg("failed to resolve source")
			s.prompt.Say("could not add that source, try again")
			continue
		}

		// Adapters may rewrite the source, so the duplicate check runs again
		// inside Append against the canonical value.
		if err := s.store.Append(rec); err != nil {
			if errors.Is(err, persistence.ErrDuplicateSource) {
				s.prompt.Say("already added!")
				continue
			}
			log.Error().Err(err).Str("source", rec.Source).Msg("failed to store record")
			s.prompt.Say("could not add that source, try again")
			continue
		}

		log.Info().Str("source", rec.Source).Msg("image added")
	}
}

// Resolve classifies a source and runs the matching adapter. A source on the
// configured Mastodon instance needs no network call at all: the record is
// boost-only.
func (s *IngestService) Resolve(ctx context.Context, source string) (*domain.ImageRecord, error) {
	kind := Classify(source, s.caps)
	log.Debug().Str("source", source).Stringer("kind", kind).Msg("classified source")

	switch kind {
	case KindMastodon:
		return &domain.ImageRecord{
			Source:     source,
			ImagePaths: []string{domain.BoostSentinel},
		}, nil
	case KindTwitter:
		return s.fromTwitter(ctx, source)
	case KindDanbooru:
		return s.fromDanbooru(ctx, source)
	case KindPixiv:
		return s.fromPixiv(ctx, source)
	default:
		return s.fromManual(ctx, source)
	}
}
