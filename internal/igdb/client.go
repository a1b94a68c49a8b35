// Package igdb talks to the IGDB game metadata API. Calls are synchronous and
// never retried; callers fall back to their own cache on failure.
package igdb

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

var (
	ErrNotFound    = errors.New("igdb: game not found")
	ErrUnavailable = errors.New("igdb: provider unavailable")
)

var gameFields = []string{
	"id", "name", "slug", "summary", "cover.url", "first_release_date",
	"genres.name", "platforms.name", "total_rating",
}

type named struct {
	Name string `json:"name"`
}

type cover struct {
	URL string `json:"url"`
}

// Game is the provider's game object limited to the fields requested.
type Game struct {
	ID               int64   `json:"id"`
	Name             string  `json:"name"`
	Slug             string  `json:"slug"`
	Summary          string  `json:"summary"`
	Cover            *cover  `json:"cover"`
	FirstReleaseDate int64   `json:"first_release_date"`
	Genres           []named `json:"genres"`
	Platforms        []named `json:"platforms"`
	TotalRating      float64 `json:"total_rating"`
}

// CoverURL upgrades the protocol-relative thumbnail URL to an absolute
// cover-sized one.
func (g *Game) CoverURL() string {
	if g.Cover == nil || g.Cover.URL == "" {
		return ""
	}
	u := g.Cover.URL
	if strings.HasPrefix(u, "//") {
		u = "https:" + u
	}
	return strings.Replace(u, "t_thumb", "t_cover_big", 1)
}

func (g *Game) ReleaseDate() *time.Time {
	if g.FirstReleaseDate == 0 {
		return nil
	}
	t := time.Unix(g.FirstReleaseDate, 0).UTC()
	return &t
}

func (g *Game) GenreNames() []string    { return names(g.Genres) }
func (g *Game) PlatformNames() []string { return names(g.Platforms) }

func names(in []named) []string {
	out := make([]string, 0, len(in))
	for _, n := range in {
		if n.Name != "" {
			out = append(out, n.Name)
		}
	}
	return out
}

type Client struct {
	baseURL    string
	clientID   string
	tokens     *TokenCache
	httpClient *http.Client
}

func NewClient(baseURL, clientID string, tokens *TokenCache, timeout time.Duration) *Client {
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		clientID:   clientID,
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) GameByID(ctx context.Context, id int64) (*Game, error) {
	return c.one(ctx, Query{Fields: gameFields, Where: "id = " + strconv.FormatInt(id, 10), Limit: 1})
}

func (c *Client) GameBySlug(ctx context.Context, slug string) (*Game, error) {
	return c.one(ctx, Query{Fields: gameFields, Where: "slug = " + Quote(slug), Limit: 1})
}

func (c *Client) Search(ctx context.Context, term string, limit int) ([]Game, error) {
	if limit < 1 || limit > 50 {
		limit = 10
	}
	return c.Games(ctx, Query{Search: term, Fields: gameFields, Limit: limit})
}

// Popular returns highly rated games released after since.
func (c *Client) Popular(ctx context.Context, since time.Time, limit int) ([]Game, error) {
	return c.Games(ctx, Query{
		Fields: gameFields,
		Where:  "first_release_date > " + strconv.FormatInt(since.Unix(), 10) + " & total_rating_count > 5",
		Sort:   "total_rating desc",
		Limit:  limit,
	})
}

func (c *Client) one(ctx context.Context, q Query) (*Game, error) {
	games, err := c.Games(ctx, q)
	if err != nil {
		return nil, err
	}
	if len(games) == 0 {
		return nil, ErrNotFound
	}
	return &games[0], nil
}

// Games posts q to the games endpoint.
func (c *Client) Games(ctx context.Context, q Query) ([]Game, error) {
	token, err := c.tokens.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: token: %v", ErrUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/games", bytes.NewBufferString(q.String()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Client-ID", c.clientID)
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.tokens.Invalidate()
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, truncate(string(body), 200))
	}

	var games []Game
	if err := json.Unmarshal(body, &games); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	return games, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
