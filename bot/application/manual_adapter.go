package application

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mizuki-h/artbot/bot/domain"
)

const maxManualPaths = 4

// fromManual builds a record interactively: up to four local paths or URLs
// (URLs are downloaded), or the literal "mastodon" as the sole entry for a
// boost-only record, followed by the optional metadata prompts.
func (s *IngestService) fromManual(ctx context.Context, source string) (*domain.ImageRecord, error) {
	var paths []string
	for len(paths) < maxManualPaths {
		entry := s.prompt.Ask("enter a local image path or url (empty to finish):")
		if entry == "" {
			if len(paths) > 0 || s.prompt.Exhausted() {
				break
			}
			continue
		}
		if entry == "mastodon" && len(paths) == 0 {
			paths = []string{domain.BoostSentinel}
			break
		}
		if _, err := os.Stat(entry); err != nil {
			downloaded, err := s.images.Fetch(ctx, entry)
			if err != nil {
				return nil, fmt.Errorf("failed to download %s: %w", entry, err)
			}
			entry = downloaded
		}
		paths = append(paths, entry)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no image paths entered for %s", source)
	}

	rec := &domain.ImageRecord{
		Source:     source,
		ImagePaths: paths,
		NSFW:       truthy(s.prompt.Ask("mark as sensitive? (y/n):")),
		Author: domain.Author{
			Handle: s.prompt.Ask("enter author handle (optional):"),
			Name:   s.prompt.Ask("enter author name (optional):"),
		},
	}

	for {
		link := s.prompt.Ask("enter an additional link (empty to finish):")
		if link == "" {
			break
		}
		rec.Links = append(rec.Links, link)
	}

	rec.Description = s.prompt.Ask("enter description (optional):")
	rec.CW = s.prompt.Ask("enter content warning (optional):")

	return rec, nil
}

func truthy(answer string) bool {
	switch strings.ToLower(answer) {
	case "true", "y", "yes":
		return true
	}
	return false
}
