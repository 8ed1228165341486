// Package conceptnet looks up semantically related English terms in the
// ConceptNet web API. Lookups are time-boxed, rate-limited and cached, and
// every failure yields an empty result.
package conceptnet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the public related-terms endpoint.
const DefaultBaseURL = "https://api.conceptnet.io/related/c/en/"

// Network is the semantic-network capability.
type Network interface {
	RelatedTerms(ctx context.Context, term string, max int) []string
}

// Noop is the network used when lookups are disabled.
type Noop struct{}

func (Noop) RelatedTerms(context.Context, string, int) []string { return nil }

// Options configures a Client.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	RatePerSec float64
	Burst      int
	Limit      int // rows requested per term
	HTTPClient *http.Client
}

// Client queries ConceptNet. Safe for concurrent use.
type Client struct {
	base    string
	timeout time.Duration
	limit   int
	client  *http.Client
	limiter *rate.Limiter
	cache   sync.Map // term -> []string
}

// NewClient builds a client, filling unset options with defaults.
func NewClient(opts Options) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(opts.BaseURL, "/") {
		opts.BaseURL += "/"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 2 * time.Second
	}
	if opts.RatePerSec <= 0 {
		opts.RatePerSec = 4
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	return &Client{
		base:    opts.BaseURL,
		timeout: opts.Timeout,
		limit:   opts.Limit,
		client:  opts.HTTPClient,
		limiter: rate.NewLimiter(rate.Limit(opts.RatePerSec), opts.Burst),
	}
}

type relatedResponse struct {
	Related []struct {
		ID     string  `json:"@id"`
		Weight float64 `json:"weight"`
	} `json:"related"`
	Edges []struct {
		Start edgeNode `json:"start"`
		End   edgeNode `json:"end"`
	} `json:"edges"`
}

type edgeNode struct {
	Label    string `json:"label"`
	Language string `json:"language"`
}

// RelatedTerms returns up to max single-word terms related to term.
// Successful responses are cached per term; failures are not.
func (c *Client) RelatedTerms(ctx context.Context, term string, max int) []string {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" || strings.ContainsAny(term, " \t/") {
		return nil
	}
	if v, ok := c.cache.Load(term); ok {
		return head(v.([]string), max)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := c.limiter.Wait(ctx); err != nil {
		log.Debugf("conceptnet %q: rate limit wait: %v", term, err)
		return nil
	}
	terms, err := c.fetch(ctx, term)
	if err != nil {
		log.Debugf("conceptnet %q: %v", term, err)
		return nil
	}
	actual, _ := c.cache.LoadOrStore(term, terms)
	return head(actual.([]string), max)
}

func (c *Client) fetch(ctx context.Context, term string) ([]string, error) {
	u := c.base + url.PathEscape(term) + "?" + url.Values{
		"filter": {"/c/en"},
		"limit":  {fmt.Sprint(c.limit)},
	}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var payload relatedResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	var raw []string
	for _, r := range payload.Related {
		raw = append(raw, labelFromID(r.ID))
	}
	for _, e := range payload.Edges {
		if e.Start.Language == "" || e.Start.Language == "en" {
			raw = append(raw, e.Start.Label)
		}
		if e.End.Language == "" || e.End.Language == "en" {
			raw = append(raw, e.End.Label)
		}
	}
	return normalize(raw, term), nil
}

// labelFromID turns "/c/en/ice_cream/n" into "ice cream".
func labelFromID(id string) string {
	parts := strings.Split(strings.Trim(id, "/"), "/")
	if len(parts) < 3 || parts[0] != "c" {
		return ""
	}
	return strings.ReplaceAll(parts[2], "_", " ")
}

func normalize(raw []string, skip string) []string {
	seen := map[string]struct{}{skip: {}}
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || strings.Contains(t, " ") {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func head(terms []string, max int) []string {
	if max > 0 && len(terms) > max {
		terms = terms[:max]
	}
	return append([]string(nil), terms...)
}

// Close releases idle connections.
func (c *Client) Close() {
	c.client.CloseIdleConnections()
}
