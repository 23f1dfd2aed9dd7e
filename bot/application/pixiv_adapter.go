package application

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/mizuki-h/artbot/bot/domain"
	"github.com/mizuki-h/artbot/shared/clients/pixiv"
	"github.com/mizuki-h/artbot/shared/fetch"
)

// Pixiv serves resized thumbnails under this path segment; stripping it
// yields the large-resolution original URL.
const pixivThumbSegment = "/c/600x1200_90"

var pixivTagReplacer = strings.NewReplacer("/", "_", "-", "_")

// fromPixiv fetches an illustration and normalizes it. Images land at the
// fixed path images/pixiv/<id>.jpg. The author handle is enriched from the
// uploader's profile when it links a Twitter account or a pawoo profile.
func (s *IngestService) fromPixiv(ctx context.Context, source string) (*domain.ImageRecord, error) {
	m := pixivIllustRe.FindStringSubmatch(source)
	if m == nil {
		return nil, fmt.Errorf("not a pixiv illustration url: %s", source)
	}
	id := m[1]

	illust, err := s.pixiv.IllustDetail(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pixiv illustration %s: %w", id, err)
	}

	fileURL := strings.Replace(illust.ImageURLs.Large, pixivThumbSegment, "", 1)
	dest := filepath.Join("images", "pixiv", id+".jpg")
	if err := s.pixiv.Download(ctx, fileURL, dest); err != nil {
		return nil, fmt.Errorf("failed to download pixiv illustration %s: %w", id, err)
	}

	handle, err := s.pixivHandle(ctx, illust)
	if err != nil {
		return nil, err
	}

	return &domain.ImageRecord{
		Source:      source,
		ImagePaths:  []string{dest},
		Author:      domain.Author{Handle: handle, Name: illust.User.Name},
		Description: pixivCaption(illust),
	}, nil
}

// pixivHandle derives a federated handle from the uploader's profile links:
// a linked Twitter account wins, then a pawoo profile resolved through its
// redirect, else no handle.
func (s *IngestService) pixivHandle(ctx context.Context, illust *pixiv.Illust) (string, error) {
	detail, err := s.pixiv.UserDetail(ctx, illust.User.ID)
	if err != nil {
		return "", fmt.Errorf("failed to fetch pixiv profile of user %d: %w", illust.User.ID, err)
	}

	if acct := detail.Profile.TwitterAccount; acct != "" {
		return "@" + acct + "@twitter.com", nil
	}

	if detail.Profile.PawooURL != "" {
		final, err := fetch.ResolveRedirect(ctx, s.httpClient, detail.Profile.PawooURL)
		if err != nil {
			return "", fmt.Errorf("failed to resolve pawoo profile: %w", err)
		}
		if username, ok := pawooUsername(final); ok {
			return "@" + username + "@pawoo.net", nil
		}
		log.Debug().Str("url", final).Msg("pawoo profile url had no username path")
	}

	return "", nil
}

// pawooUsername extracts "name" from a resolved https://pawoo.net/@name URL.
func pawooUsername(profileURL string) (string, bool) {
	u, err := url.Parse(profileURL)
	if err != nil {
		return "", false
	}
	base := path.Base(u.Path)
	if !strings.HasPrefix(base, "@") || len(base) < 2 {
		return "", false
	}
	return base[1:], true
}

// pixivCaption joins the title with hashtag-ified tags; slashes and dashes
// break hashtags on Mastodon and are normalized to underscores.
func pixivCaption(illust *pixiv.Illust) string {
	parts := []string{illust.Title}
	for _, tag := range illust.Tags {
		parts = append(parts, "#"+pixivTagReplacer.Replace(tag.Name))
	}
	return strings.Join(parts, " ")
}
