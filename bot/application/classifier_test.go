package application

import "testing"

func allCaps() Capabilities {
	return Capabilities{
		Twitter:        true,
		Pixiv:          true,
		MastodonStatus: MastodonStatusPattern("pawoo.net"),
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		source string
		caps   Capabilities
		want   SourceKind
	}{
		{
			name:   "mastodon status on configured instance",
			source: "https://pawoo.net/@someone/109348712345",
			caps:   allCaps(),
			want:   KindMastodon,
		},
		{
			name:   "mastodon web-app status",
			source: "https://pawoo.net/web/statuses/109348712345",
			caps:   allCaps(),
			want:   KindMastodon,
		},
		{
			name:   "status on a different instance is not ours",
			source: "https://mstdn.example/@someone/1",
			caps:   allCaps(),
			want:   KindManual,
		},
		{
			name:   "twitter status",
			source: "https://twitter.com/artist/status/1234567890",
			caps:   allCaps(),
			want:   KindTwitter,
		},
		{
			name:   "twitter status without twitter client falls to manual",
			source: "https://twitter.com/artist/status/1234567890",
			caps:   Capabilities{Pixiv: true, MastodonStatus: MastodonStatusPattern("pawoo.net")},
			want:   KindManual,
		},
		{
			name:   "danbooru post",
			source: "https://danbooru.donmai.us/posts/424242",
			caps:   allCaps(),
			want:   KindDanbooru,
		},
		{
			name:   "danbooru needs no credentials",
			source: "https://danbooru.donmai.us/posts/424242",
			caps:   Capabilities{MastodonStatus: MastodonStatusPattern("pawoo.net")},
			want:   KindDanbooru,
		},
		{
			name:   "pixiv illustration",
			source: "https://www.pixiv.net/member_illust.php?mode=medium&illust_id=987654",
			caps:   allCaps(),
			want:   KindPixiv,
		},
		{
			name:   "pixiv without session falls to manual",
			source: "https://www.pixiv.net/member_illust.php?mode=medium&illust_id=987654",
			caps:   Capabilities{Twitter: true, MastodonStatus: MastodonStatusPattern("pawoo.net")},
			want:   KindManual,
		},
		{
			name:   "plain text is manual",
			source: "my-cool-picture",
			caps:   allCaps(),
			want:   KindManual,
		},
		{
			name:   "unrelated url is manual",
			source: "https://example.com/image.png",
			caps:   allCaps(),
			want:   KindManual,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.source, tt.caps); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.source, got, tt.want)
			}
		})
	}
}
