package gameapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"

	"github.com/DoyleJ11/leaderboard-graph/internal/effect"
	"github.com/DoyleJ11/leaderboard-graph/internal/roster"
)

var ErrUnexpectedStatus = errors.New("unexpected status")

// Client polls the game server's leaderboard and effects endpoints.
type Client struct {
	leaderboardURL string
	effectsURL     string
	http           *http.Client
	log            *zap.Logger
}

func New(leaderboardURL, effectsURL string, httpClient *http.Client, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		leaderboardURL: leaderboardURL,
		effectsURL:     effectsURL,
		http:           httpClient,
		log:            log,
	}
}

// Leaderboard fetches one 0-indexed page. A null or empty body means there are
// no more pages.
func (c *Client) Leaderboard(ctx context.Context, page int) (roster.Page, error) {
	u, err := url.Parse(c.leaderboardURL)
	if err != nil {
		return roster.Page{}, fmt.Errorf("leaderboard url: %w", err)
	}
	q := u.Query()
	q.Set("page", strconv.Itoa(page))
	u.RawQuery = q.Encode()

	var entries []roster.Entry
	if err := c.getJSON(ctx, u.String(), &entries); err != nil {
		return roster.Page{}, fmt.Errorf("leaderboard page %d: %w", page, err)
	}
	pg, skipped := roster.ParsePage(entries)
	if skipped > 0 {
		c.log.Debug("skipped leaderboard entries", zap.Int("page", page), zap.Int("skipped", skipped))
	}
	return pg, nil
}

// Effects fetches the current batch of recent effects.
func (c *Client) Effects(ctx context.Context) ([]effect.Effect, error) {
	var recs []effect.Record
	if err := c.getJSON(ctx, c.effectsURL, &recs); err != nil {
		return nil, fmt.Errorf("effects: %w", err)
	}
	effects, skipped := effect.ParseBatch(recs)
	if skipped > 0 {
		c.log.Debug("skipped malformed effects", zap.Int("skipped", skipped))
	}
	return effects, nil
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	c.log.Debug("request", zap.String("url", rawURL))
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
