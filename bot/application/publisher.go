package application

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"time"

	"github.com/mattn/go-mastodon"
	"github.com/rs/zerolog/log"

	"github.com/mizuki-h/artbot/bot/domain"
	"github.com/mizuki-h/artbot/bot/persistence"
)

const (
	// Already-posted records are redrawn with this probability, biasing
	// selection away from boosting the same content repeatedly.
	repeatSkipProbability = 0.7

	// Captions carry at most this many characters of the description.
	descriptionLimit = 400
)

// ErrNoMatch is returned when a boost finds no status for its search key.
var ErrNoMatch = errors.New("no matching status found")

// MastodonClient is the slice of the Mastodon API the publisher uses.
type MastodonClient interface {
	UploadMedia(ctx context.Context, file string) (*mastodon.Attachment, error)
	PostStatus(ctx context.Context, toot *mastodon.Toot) (*mastodon.Status, error)
	Search(ctx context.Context, q string, resolve bool) (*mastodon.Results, error)
	Reblog(ctx context.Context, id mastodon.ID) (*mastodon.Status, error)
}

// Publisher picks a record and publishes it: boost-only and already-posted
// records are reblogged by searching the instance for their status; fresh
// records are posted with their media uploaded.
type Publisher struct {
	store         *persistence.Store
	masto         MastodonClient
	statusPattern *regexp.Regexp
	rng           *rand.Rand
}

// NewPublisher wires a publisher against the configured instance.
func NewPublisher(store *persistence.Store, masto MastodonClient, instanceDomain string) *Publisher {
	return &Publisher{
		store:         store,
		masto:         masto,
		statusPattern: MastodonStatusPattern(instanceDomain),
		rng:           rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// selectRecord draws uniformly until a record survives: a record that was
// already posted is redrawn with probability repeatSkipProbability. The
// returned search key is the record's source, or its previous post URL for
// already-posted records, so the boost search finds the status to reblog.
func (p *Publisher) selectRecord(db *domain.ImageDB) (*domain.ImageRecord, string) {
	for {
		rec := &db.Images[p.rng.Intn(len(db.Images))]
		key := rec.Source
		if rec.WasPosted() {
			key = rec.Posted
			if p.rng.Float64() < repeatSkipProbability {
				continue
			}
		}
		return rec, key
	}
}

// PostUpdate publishes one update and persists the resulting status URL on
// the chosen record. On failure the store is left untouched, so the record
// is simply eligible again on the next draw.
func (p *Publisher) PostUpdate(ctx context.Context) error {
	db, err := p.store.Load()
	if err != nil {
		return err
	}
	if len(db.Images) == 0 {
		return fmt.Errorf("image store is empty, nothing to post")
	}

	rec, key := p.selectRecord(db)

	var status *mastodon.Status
	if rec.BoostOnly() || rec.WasPosted() || p.statusPattern.MatchString(key) {
		status, err = p.boost(ctx, key)
	} else {
		status, err = p.postNew(ctx, rec)
	}
	if err != nil {
		return err
	}

	rec.Posted = status.URL
	return p.store.Save(db)
}

func (p *Publisher) boost(ctx context.Context, key string) (*mastodon.Status, error) {
	log.Info().Str("status", key).Msg("boosting existing status")

	results, err := p.masto.Search(ctx, key, true)
	if err != nil {
		return nil, fmt.Errorf("status search failed: %w", err)
	}
	if len(results.Statuses) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoMatch, key)
	}

	status, err := p.masto.Reblog(ctx, results.Statuses[0].ID)
	if err != nil {
		return nil, fmt.Errorf("reblog failed: %w", err)
	}
	return status, nil
}

func (p *Publisher) postNew(ctx context.Context, rec *domain.ImageRecord) (*mastodon.Status, error) {
	log.Info().Str("source", rec.Source).Msg("posting new status")

	toot := &mastodon.Toot{
		Status:     BuildCaption(rec),
		Sensitive:  rec.NSFW,
		Visibility: "public",
	}
	if rec.CW != "" {
		toot.SpoilerText = rec.CW
	}

	for _, path := range rec.ImagePaths {
		attachment, err := p.masto.UploadMedia(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("failed to upload %s: %w", path, err)
		}
		toot.MediaIDs = append(toot.MediaIDs, attachment.ID)
	}

	status, err := p.masto.PostStatus(ctx, toot)
	if err != nil {
		return nil, fmt.Errorf("failed to post status: %w", err)
	}
	return status, nil
}

// BuildCaption renders the status text for a record: attribution line,
// source line, one line per additional link, then the description after a
// blank line, truncated to descriptionLimit characters.
func BuildCaption(rec *domain.ImageRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Created by: %s(%s)\nSource: %s", rec.Author.Name, rec.Author.Handle, rec.Source)
	for _, link := range rec.Links {
		b.WriteString("\n" + link)
	}
	if rec.Description != "" {
		b.WriteString("\n\n" + truncateRunes(rec.Description, descriptionLimit))
	}
	return b.String()
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
