package application

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/mizuki-h/artbot/bot/domain"
)

// fromDanbooru fetches a Danbooru post and normalizes it. Danbooru is an
// aggregator, so the record's source is rewritten to the upstream origin
// when the post records one, and a Pixiv-sourced post is re-resolved through
// the Pixiv adapter for the canonical source and author.
func (s *IngestService) fromDanbooru(ctx context.Context, source string) (*domain.ImageRecord, error) {
	m := danbooruPostRe.FindStringSubmatch(source)
	if m == nil {
		return nil, fmt.Errorf("not a danbooru post url: %s", source)
	}
	id := m[1]

	post, err := s.booru.Post(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch danbooru post %s: %w", id, err)
	}

	fileURL := post.Source
	if post.FileURL != "" {
		if strings.HasPrefix(post.FileURL, "http") {
			fileURL = post.FileURL
		} else {
			fileURL = s.booru.BaseURL() + post.FileURL
		}
	}
	if fileURL == "" {
		return nil, fmt.Errorf("danbooru post %s has no file url or source", id)
	}

	path, err := s.images.Fetch(ctx, fileURL)
	if err != nil {
		return nil, fmt.Errorf("failed to download danbooru file: %w", err)
	}

	rec := &domain.ImageRecord{
		Source:      source,
		ImagePaths:  []string{path},
		Author:      domain.Author{Name: post.TagStringArtist},
		Description: copyrightCaption(post.TagStringCopyright),
		NSFW:        !post.IsSafe(),
	}

	if origin, ok := wellFormedURL(post.Source); ok {
		rec.Source = origin
		if tm := twitterStatusRe.FindStringSubmatch(origin); tm != nil {
			rec.Author.Handle = "@" + tm[1] + "@twitter.com"
		}
	}

	if post.PixivID != nil && s.pixiv != nil {
		pixivSource := fmt.Sprintf("https://www.pixiv.net/member_illust.php?mode=medium&illust_id=%d", *post.PixivID)
		nested, err := s.fromPixiv(ctx, pixivSource)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve pixiv origin of danbooru post %s: %w", id, err)
		}
		rec.Source = nested.Source
		rec.Author = nested.Author
	}

	return rec, nil
}

// wellFormedURL reports whether the post source is an absolute http(s) URL
// and returns it percent-decoded.
func wellFormedURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", false
	}
	if decoded, err := url.QueryUnescape(raw); err == nil {
		return decoded, true
	}
	return raw, true
}

// copyrightCaption renders the copyright tag string as hashtags, dropping
// the catch-all "original" tag and series bookkeeping artifacts.
func copyrightCaption(tagString string) string {
	var tags []string
	for _, tag := range strings.Fields(tagString) {
		if tag == "original" || tag == "-" {
			continue
		}
		tag = strings.TrimSuffix(tag, "_(series)")
		tags = append(tags, "#"+tag)
	}
	return strings.Join(tags, " ")
}
