// Package danbooru is a small client for the Danbooru posts API. It works
// with or without credentials; the JSON endpoint is public and an API key
// only lifts rate limits and tag restrictions.
package danbooru

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultBaseURL is the canonical instance.
const DefaultBaseURL = "https://danbooru.donmai.us"

// RatingSafe is the rating token treated as not NSFW. Danbooru later split
// ratings into g/s/q/e; "g" (general) is at least as safe as "s".
const (
	RatingSafe    = "s"
	RatingGeneral = "g"
)

// Post is the subset of a Danbooru post the bot reads. PixivID is a pointer
// because the API returns null for non-Pixiv posts.
type Post struct {
	ID                 int64  `json:"id"`
	FileURL            string `json:"file_url"`
	Source             string `json:"source"`
	Rating             string `json:"rating"`
	PixivID            *int64 `json:"pixiv_id"`
	TagStringArtist    string `json:"tag_string_artist"`
	TagStringCopyright string `json:"tag_string_copyright"`
}

// IsSafe reports whether the post's rating is a safe class.
func (p *Post) IsSafe() bool {
	return p.Rating == RatingSafe || p.Rating == RatingGeneral
}

// Client fetches posts, optionally authenticated with login + API key.
type Client struct {
	httpClient *http.Client
	baseURL    string
	login      string
	apiKey     string
}

// NewClient builds an unauthenticated client against the canonical instance.
func NewClient() *Client {
	return &Client{
		httpClient: http.DefaultClient,
		baseURL:    DefaultBaseURL,
	}
}

// NewAuthenticatedClient builds a client that signs requests with the given
// login and API key.
func NewAuthenticatedClient(login, apiKey string) *Client {
	c := NewClient()
	c.login = login
	c.apiKey = apiKey
	return c
}

// WithBaseURL points the client at a different instance. Mainly for tests.
func (c *Client) WithBaseURL(base string) *Client {
	c.baseURL = strings.TrimSuffix(base, "/")
	return c
}

// BaseURL returns the instance this client talks to; direct file URLs on a
// post are relative to it.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Post fetches a single post by id.
func (c *Client) Post(ctx context.Context, id string) (*Post, error) {
	q := url.Values{}
	if c.login != "" {
		q.Set("login", c.login)
		q.Set("api_key", c.apiKey)
	}

	endpoint := fmt.Sprintf("%s/posts/%s.json", c.baseURL, id)
	if enc := q.Encode(); enc != "" {
		endpoint += "?" + enc
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build post request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("danbooru api error %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var post Post
	if err := json.NewDecoder(res.Body).Decode(&post); err != nil {
		return nil, fmt.Errorf("failed to decode post %s: %w", id, err)
	}
	return &post, nil
}
