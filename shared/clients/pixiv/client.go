// Package pixiv is a client for the Pixiv app API. Sessions are established
// from a refresh token; password login was removed from the API.
package pixiv

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	authURL = "https://oauth.secure.pixiv.net/auth/token"
	apiBase = "https://app-api.pixiv.net"

	// Credentials of the official app; the app API only accepts tokens
	// issued to it.
	clientID     = "MOBrBDS8blbauoSck0ZfDbtuzpyT"
	clientSecret = "lsACyCD94FhDUtGTXi3QzcFE2uU1hqtDaKeqrdwj"
	hashSalt     = "28c1fdd170a5204386cb1313c7077b34f83e4aaf4aa829ce78c231e05b0bae2c"
)

// Tag is one illustration tag.
type Tag struct {
	Name string `json:"name"`
}

// Illust is the subset of an illustration the bot reads.
type Illust struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	User  struct {
		ID      int64  `json:"id"`
		Name    string `json:"name"`
		Account string `json:"account"`
	} `json:"user"`
	Tags      []Tag `json:"tags"`
	ImageURLs struct {
		Large string `json:"large"`
	} `json:"image_urls"`
}

// UserProfile carries the cross-platform links a user may expose.
type UserProfile struct {
	TwitterAccount string `json:"twitter_account"`
	PawooURL       string `json:"pawoo_url"`
}

// UserDetail is the subset of a user-detail response the bot reads.
type UserDetail struct {
	Profile UserProfile `json:"profile"`
}

// Client talks to the app API with a refresh-token session. Tokens are
// refreshed lazily when expired.
type Client struct {
	httpClient   *http.Client
	authBase     string
	apiBase      string
	refreshToken string
	accessToken  string
	expiresAt    time.Time
	now          func() time.Time
}

// NewClient builds a client from a refresh token. No network call is made
// until the first request.
func NewClient(refreshToken string) *Client {
	return &Client{
		httpClient:   http.DefaultClient,
		authBase:     authURL,
		apiBase:      apiBase,
		refreshToken: refreshToken,
		now:          time.Now,
	}
}

func (c *Client) authorize(ctx context.Context) error {
	if c.accessToken != "" && c.now().Before(c.expiresAt) {
		return nil
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", clientID)
	form.Set("client_secret", clientSecret)
	form.Set("refresh_token", c.refreshToken)
	form.Set("get_secure_url", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authBase, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build auth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	clientTime := c.now().UTC().Format(time.RFC3339)
	req.Header.Set("X-Client-Time", clientTime)
	req.Header.Set("X-Client-Hash", fmt.Sprintf("%x", md5.Sum([]byte(clientTime+hashSalt))))

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("auth request failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("pixiv auth error %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var out struct {
		Response struct {
			AccessToken string `json:"access_token"`
			ExpiresIn   int    `json:"expires_in"`
		} `json:"response"`
	}
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return fmt.Errorf("failed to decode auth response: %w", err)
	}

	c.accessToken = out.Response.AccessToken
	// Refresh a minute early so a token never expires mid-request.
	c.expiresAt = c.now().Add(time.Duration(out.Response.ExpiresIn-60) * time.Second)
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.authorize(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiBase+path+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to build request for %s: %w", path, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request for %s failed: %w", path, err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(res.Body)
		return fmt.Errorf("pixiv api error %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response for %s: %w", path, err)
	}
	return nil
}

// IllustDetail fetches one illustration by id.
func (c *Client) IllustDetail(ctx context.Context, id string) (*Illust, error) {
	q := url.Values{}
	q.Set("illust_id", id)

	var out struct {
		Illust Illust `json:"illust"`
	}
	if err := c.get(ctx, "/v1/illust/detail", q, &out); err != nil {
		return nil, err
	}
	return &out.Illust, nil
}

// UserDetail fetches a user's profile by id.
func (c *Client) UserDetail(ctx context.Context, userID int64) (*UserDetail, error) {
	q := url.Values{}
	q.Set("user_id", fmt.Sprint(userID))

	var out UserDetail
	if err := c.get(ctx, "/v1/user/detail", q, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Download fetches an original-resolution image to dest. Pixiv's image hosts
// refuse requests without the app referer. Idempotent by path.
func (c *Client) Download(ctx context.Context, imageURL, dest string) error {
	if _, err := os.Stat(dest); err == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return fmt.Errorf("failed to build image request: %w", err)
	}
	req.Header.Set("Referer", c.apiBase+"/")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("image download failed: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("image download failed: status %s", res.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create image directory: %w", err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, res.Body); err != nil {
		return fmt.Errorf("failed to write %s: %w", dest, err)
	}
	return nil
}
