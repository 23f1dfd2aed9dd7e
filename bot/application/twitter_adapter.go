package application

import (
	"context"
	"fmt"
	"strings"

	"github.com/mizuki-h/artbot/bot/domain"
)

// fromTwitter fetches a tweet and normalizes it into a record. Photos are
// downloaded directly; for video and animated gifs the first variant URL is
// used.
func (s *IngestService) fromTwitter(ctx context.Context, source string) (*domain.ImageRecord, error) {
	m := twitterStatusRe.FindStringSubmatch(source)
	if m == nil {
		return nil, fmt.Errorf("not a twitter status url: %s", source)
	}
	id := m[2]

	tweet, err := s.tweets.Status(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tweet %s: %w", id, err)
	}

	var paths []string
	for _, media := range tweet.ExtendedEntities.Media {
		mediaURL := media.MediaURLHTTPS
		if media.Type != "photo" && len(media.VideoInfo.Variants) > 0 {
			mediaURL = media.VideoInfo.Variants[0].URL
		}
		path, err := s.images.Fetch(ctx, mediaURL)
		if err != nil {
			return nil, fmt.Errorf("failed to download tweet media: %w", err)
		}
		paths = append(paths, path)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("tweet %s has no media", id)
	}

	return &domain.ImageRecord{
		Source:     source,
		ImagePaths: paths,
		Author: domain.Author{
			Handle: "@" + tweet.User.ScreenName + "@twitter.com",
			Name:   tweet.User.Name,
		},
		Description: trimMediaLink(tweet.FullText),
		NSFW:        tweet.PossiblySensitive,
	}, nil
}

// trimMediaLink drops the t.co media token Twitter appends as the last
// whitespace-separated word of a tweet with attachments.
func trimMediaLink(text string) string {
	if i := strings.LastIndexByte(text, ' '); i >= 0 {
		return text[:i]
	}
	return text
}
