// Package twitter is a minimal read-only client for the Twitter v1.1 API,
// covering the single statuses/show call the bot needs.
package twitter

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dghubble/oauth1"
)

const apiBase = "https://api.twitter.com/1.1"

// Credentials are OAuth1 user-context keys.
type Credentials struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// VideoVariant is one encoding of a video or animated gif attachment.
type VideoVariant struct {
	URL string `json:"url"`
}

// MediaEntity is one attachment on a tweet. Type is "photo", "video" or
// "animated_gif"; non-photo media carries its URLs in VideoInfo.
type MediaEntity struct {
	Type          string `json:"type"`
	MediaURLHTTPS string `json:"media_url_https"`
	VideoInfo     struct {
		Variants []VideoVariant `json:"variants"`
	} `json:"video_info"`
}

// Tweet is the subset of a status the bot reads.
type Tweet struct {
	FullText          string `json:"full_text"`
	PossiblySensitive bool   `json:"possibly_sensitive"`
	User              struct {
		Name       string `json:"name"`
		ScreenName string `json:"screen_name"`
	} `json:"user"`
	ExtendedEntities struct {
		Media []MediaEntity `json:"media"`
	} `json:"extended_entities"`
}

// Client calls the Twitter API through an OAuth1-signing http.Client.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient builds a client from user-context credentials.
func NewClient(creds Credentials) *Client {
	config := oauth1.NewConfig(creds.ConsumerKey, creds.ConsumerSecret)
	token := oauth1.NewToken(creds.AccessToken, creds.AccessTokenSecret)
	return &Client{
		httpClient: config.Client(oauth1.NoContext, token),
		baseURL:    apiBase,
	}
}

// Status fetches a single tweet by id in extended mode, so FullText is not
// truncated and all media entities are present.
func (c *Client) Status(ctx context.Context, id string) (*Tweet, error) {
	q := url.Values{}
	q.Set("id", id)
	q.Set("tweet_mode", "extended")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/statuses/show.json?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build status request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("status request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("twitter api error %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var tweet Tweet
	if err := json.NewDecoder(res.Body).Decode(&tweet); err != nil {
		return nil, fmt.Errorf("failed to decode status %s: %w", id, err)
	}
	return &tweet, nil
}
