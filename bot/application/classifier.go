package application

import (
	"regexp"

	"github.com/mizuki-h/artbot/bot/domain"
)

// SourceKind names the ingestion strategy for a source string.
type SourceKind int

const (
	KindManual SourceKind = iota
	KindMastodon
	KindTwitter
	KindDanbooru
	KindPixiv
)

func (k SourceKind) String() string {
	switch k {
	case KindMastodon:
		return "mastodon"
	case KindTwitter:
		return "twitter"
	case KindDanbooru:
		return "danbooru"
	case KindPixiv:
		return "pixiv"
	default:
		return "manual"
	}
}

var (
	twitterStatusRe = regexp.MustCompile(`^https?://(?:mobile\.)?twitter\.com/([^/]+)/status(?:es)?/(\d+)`)
	danbooruPostRe  = regexp.MustCompile(`^https?://danbooru\.donmai\.us/posts/(\d+)`)
	pixivIllustRe   = regexp.MustCompile(`^https?://(?:www\.)?pixiv\.net/member_illust\.php\?mode=medium&illust_id=(\d+)`)
)

// MastodonStatusPattern matches status URLs on the configured instance, in
// both the profile form (/@user/<id>) and the web-app form
// (/web/statuses/<id>).
func MastodonStatusPattern(instanceDomain string) *regexp.Regexp {
	return regexp.MustCompile(`^https?://` + regexp.QuoteMeta(instanceDomain) + `/(?:@[^/]+|web/statuses)/\d+`)
}

// Capabilities is the set of integrations enabled by configuration, fixed at
// startup. Platforms whose patterns require an authenticated client are only
// matched when that client is available; Danbooru has a public fallback and
// is always matched.
type Capabilities struct {
	Twitter        bool
	Pixiv          bool
	MastodonStatus *regexp.Regexp
}

// NewCapabilities derives the dispatch capabilities from the configuration.
func NewCapabilities(cfg *domain.Config) Capabilities {
	return Capabilities{
		Twitter:        cfg.HasTwitter(),
		Pixiv:          cfg.HasPixiv(),
		MastodonStatus: MastodonStatusPattern(cfg.Mastodon.Domain),
	}
}

// Classify picks the ingestion strategy for a raw source string. First match
// wins; the patterns are mutually exclusive by domain.
func Classify(source string, caps Capabilities) SourceKind {
	switch {
	case caps.MastodonStatus != nil && caps.MastodonStatus.MatchString(source):
		return KindMastodon
	case caps.Twitter && twitterStatusRe.MatchString(source):
		return KindTwitter
	case danbooruPostRe.MatchString(source):
		return KindDanbooru
	case caps.Pixiv && pixivIllustRe.MatchString(source):
		return KindPixiv
	default:
		return KindManual
	}
}
