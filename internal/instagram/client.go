package instagram

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/tidwall/gjson"

	"reelbot/internal/httpclient"
)

const (
	DefaultBaseURL   = "https://i.instagram.com"
	DefaultPublicURL = "https://www.instagram.com"
	webAppID       = "936619743392459"
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"
	maxBodyBytes   = 4 << 20
)

// Post is the subset of a media item the bot needs.
type Post struct {
	Shortcode     string
	MediaID       string
	OwnerUsername string
	IsVideo       bool
	VideoURL      string
}

// Profile is the subset of a user profile the bot needs.
type Profile struct {
	ID               int64
	Username         string
	IsPrivate        bool
	FollowedByViewer bool
}

// StoryItem is one entry of a user's active story.
type StoryItem struct {
	MediaID  int64
	VideoURL string
}

// Story is the active story collection of one user.
type Story struct {
	OwnerID int64
	Items   []StoryItem
}

// Backend is the set of Instagram lookups the adapter depends on.
type Backend interface {
	PostByShortcode(ctx context.Context, shortcode string) (*Post, error)
	Profile(ctx context.Context, username string) (*Profile, error)
	Stories(ctx context.Context, userIDs []int64) ([]Story, error)
}

// ClientConfig configures Client.
type ClientConfig struct {
	BaseURL    string
	PublicURL  string   // public web pages, read when there is no session
	Session    *Session // nil runs anonymously
	HTTPClient *http.Client
	Logger     *slog.Logger
}

// Client talks to the Instagram private web API using a read-only session.
type Client struct {
	baseURL   string
	publicURL string
	session   *Session
	http      *http.Client
	logger    *slog.Logger
}

var _ Backend = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.PublicURL == "" {
		cfg.PublicURL = DefaultPublicURL
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	// A login wall shows up as a redirect; keep it visible to checkResponse.
	hc := httpclient.Apply(cfg.HTTPClient, httpclient.NoRedirects())
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		publicURL: strings.TrimRight(cfg.PublicURL, "/"),
		session:   cfg.Session,
		http:      hc,
		logger:    cfg.Logger,
	}
}

// PostByShortcode looks up a post or reel and reads its video URL. Without
// a session the public page is tried first; the API answers the rest.
func (c *Client) PostByShortcode(ctx context.Context, shortcode string) (*Post, error) {
	mediaID, err := MediaIDFromShortcode(shortcode)
	if err != nil {
		return nil, fmt.Errorf("decode shortcode %q: %w", shortcode, err)
	}
	if !c.session.Valid() {
		post, err := c.publicPost(ctx, shortcode)
		switch {
		case err == nil:
			post.MediaID = mediaID
			return post, nil
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrRateLimited):
			return nil, err
		}
		c.logger.Debug("public page gave no video, asking the api", "shortcode", shortcode, "err", err)
	}
	body, err := c.get(ctx, "/api/v1/media/"+mediaID+"/info/", nil)
	if err != nil {
		return nil, err
	}
	item := gjson.GetBytes(body, "items.0")
	if !item.Exists() {
		return nil, fmt.Errorf("post %s: %w", shortcode, ErrNotFound)
	}
	videoURL := item.Get("video_versions.0.url").String()
	return &Post{
		Shortcode:     shortcode,
		MediaID:       mediaID,
		OwnerUsername: item.Get("user.username").String(),
		IsVideo:       videoURL != "",
		VideoURL:      videoURL,
	}, nil
}

// publicPost reads the og:video tag of the public post page. Logged-out
// visitors get it for public reels and videos.
func (c *Client) publicPost(ctx context.Context, shortcode string) (*Post, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.publicURL+"/p/"+url.PathEscape(shortcode)+"/", nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("instagram page %s: %w", shortcode, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("post %s: %w", shortcode, ErrNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, ErrRateLimited
	case resp.StatusCode >= 300 && resp.StatusCode < 400:
		return nil, ErrLoginRequired
	case resp.StatusCode != http.StatusOK:
		return nil, &APIError{Status: resp.StatusCode, Message: "public page"}
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("parse instagram page: %w", err)
	}
	videoURL := metaContent(doc, "og:video:secure_url")
	if videoURL == "" {
		videoURL = metaContent(doc, "og:video")
	}
	if videoURL == "" {
		return nil, errNoPublicVideo
	}
	return &Post{
		Shortcode:     shortcode,
		OwnerUsername: ownerFromTitle(metaContent(doc, "og:title")),
		IsVideo:       true,
		VideoURL:      videoURL,
	}, nil
}

var errNoPublicVideo = errors.New("instagram: no og:video on public page")

func metaContent(doc *goquery.Document, property string) string {
	v, _ := doc.Find(`meta[property="` + property + `"]`).First().Attr("content")
	return strings.TrimSpace(v)
}

// ownerFromTitle reads "name on Instagram: ..." titles.
func ownerFromTitle(title string) string {
	owner, _, found := strings.Cut(title, " on Instagram")
	if !found {
		return ""
	}
	return strings.TrimSpace(owner)
}

// Profile resolves a username to its numeric id and visibility.
func (c *Client) Profile(ctx context.Context, username string) (*Profile, error) {
	body, err := c.get(ctx, "/api/v1/users/web_profile_info/", url.Values{"username": {username}})
	if err != nil {
		return nil, err
	}
	user := gjson.GetBytes(body, "data.user")
	if !user.Exists() || user.Type == gjson.Null {
		return nil, fmt.Errorf("profile %s: %w", username, ErrNotFound)
	}
	id := user.Get("id").Int()
	if id == 0 {
		return nil, fmt.Errorf("profile %s: missing id", username)
	}
	return &Profile{
		ID:               id,
		Username:         user.Get("username").String(),
		IsPrivate:        user.Get("is_private").Bool(),
		FollowedByViewer: user.Get("followed_by_viewer").Bool(),
	}, nil
}

// Stories lists the active stories of the given users.
func (c *Client) Stories(ctx context.Context, userIDs []int64) ([]Story, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	q := url.Values{}
	for _, id := range userIDs {
		q.Add("reel_ids", strconv.FormatInt(id, 10))
	}
	body, err := c.get(ctx, "/api/v1/feed/reels_media/", q)
	if err != nil {
		return nil, err
	}
	var stories []Story
	gjson.GetBytes(body, "reels_media").ForEach(func(_, reel gjson.Result) bool {
		s := Story{OwnerID: reel.Get("user.pk").Int()}
		reel.Get("items").ForEach(func(_, item gjson.Result) bool {
			s.Items = append(s.Items, StoryItem{
				MediaID:  item.Get("pk").Int(),
				VideoURL: item.Get("video_versions.0.url").String(),
			})
			return true
		})
		stories = append(stories, s)
		return true
	})
	return stories, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-IG-App-ID", webAppID)
	req.Header.Set("Accept", "*/*")
	for _, ck := range c.session.cookies() {
		req.AddCookie(ck)
	}
	if c.session.Valid() && c.session.CSRFToken != "" {
		req.Header.Set("X-CSRFToken", c.session.CSRFToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("instagram request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read instagram response: %w", err)
	}
	if err := checkResponse(resp, body); err != nil {
		c.logger.Debug("instagram api error", "path", path, "status", resp.StatusCode, "err", err)
		return nil, err
	}
	return body, nil
}
