// Package vocab talks to the Iconclass vocabulary service: per-notation
// JSON lookups for validation and an optional term-search endpoint for
// candidate seeding.
package vocab

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/culthera/enrich/internal/model"
	"github.com/culthera/enrich/internal/util"
)

const lookupMaxRetries = 3

// notFoundTTL bounds how long a negative lookup is remembered; positive
// results never expire within the process lifetime.
const notFoundTTL = time.Hour

// lookupSleepFunc is the sleep function used between retries (injectable for tests)
var lookupSleepFunc = time.Sleep

// maxSearchHits caps hits taken per search term.
const maxSearchHits = 10

// Client validates notations and searches terms against the vocabulary
// service. Lookups are rate limited and cached read-through; a notation
// confirmed resolvable stays resolvable for the process lifetime.
type Client struct {
	baseURL    string
	searchURL  string
	httpClient *http.Client
	limiter    *rate.Limiter
	cache      *gocache.Cache
	userAgent  string
}

// Options configures a Client.
type Options struct {
	// BaseURL is the notation resolution base (default model.IconclassBase).
	BaseURL string

	// SearchURL is the optional term-search endpoint.
	SearchURL string

	// Timeout applies per HTTP request.
	Timeout time.Duration

	// RatePerSecond and Burst bound outbound lookups.
	RatePerSecond float64
	Burst         int

	// UserAgent sent with every request.
	UserAgent string

	// Proxy settings.
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// NewClient creates a vocabulary client.
func NewClient(opts Options) *Client {
	baseURL := opts.BaseURL
	if baseURL == "" {
		baseURL = model.IconclassBase
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 20 * time.Second
	}
	ratePerSecond := opts.RatePerSecond
	if ratePerSecond <= 0 {
		ratePerSecond = 10
	}
	burst := opts.Burst
	if burst <= 0 {
		burst = 5
	}

	proxyFunc := util.NewProxyFunc(opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy)

	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		searchURL: opts.SearchURL,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				Proxy: proxyFunc,
			},
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		limiter:   rate.NewLimiter(rate.Limit(ratePerSecond), burst),
		cache:     gocache.New(notFoundTTL, 10*time.Minute),
		userAgent: opts.UserAgent,
	}
}

// Lookup validates a single notation. Hard negatives (404/410) report
// LookupNotFound; transport failures and server errors degrade to
// LookupUnavailable after bounded retries and are never cached.
func (c *Client) Lookup(ctx context.Context, notation string) model.LookupResult {
	if notation == "" {
		return model.LookupResult{Status: model.LookupNotFound}
	}

	if cached, found := c.cache.Get(notation); found {
		return cached.(model.LookupResult)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return model.LookupResult{Status: model.LookupUnavailable}
	}

	var result model.LookupResult
	for attempt := 0; attempt < lookupMaxRetries; attempt++ {
		var retryable bool
		result, retryable = c.lookupOnce(ctx, notation)
		if !retryable {
			break
		}
		if attempt < lookupMaxRetries-1 {
			backoff := time.Duration(1<<uint(attempt)) * time.Second
			lookupSleepFunc(backoff)
		} else {
			result = model.LookupResult{Status: model.LookupUnavailable}
		}
	}

	switch result.Status {
	case model.LookupResolvable:
		c.cache.Set(notation, result, gocache.NoExpiration)
	case model.LookupNotFound:
		c.cache.Set(notation, result, gocache.DefaultExpiration)
	}

	return result
}

// lookupOnce performs one GET against {base}/{notation}.json and reports
// whether a failure is worth retrying.
func (c *Client) lookupOnce(ctx context.Context, notation string) (model.LookupResult, bool) {
	lookupURL := fmt.Sprintf("%s/%s.json", c.baseURL, url.PathEscape(notation))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, lookupURL, nil)
	if err != nil {
		return model.LookupResult{Status: model.LookupUnavailable}, false
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.LookupResult{Status: model.LookupUnavailable}, true
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		if err != nil {
			return model.LookupResult{Status: model.LookupUnavailable}, true
		}
		return model.LookupResult{
			Status: model.LookupResolvable,
			Labels: parseLabels(body),
		}, false

	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return model.LookupResult{Status: model.LookupNotFound}, false

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return model.LookupResult{Status: model.LookupUnavailable}, true

	default:
		// The service answered and rejected the notation.
		return model.LookupResult{Status: model.LookupNotFound}, false
	}
}

// searchHit mirrors one element of the search endpoint's response.
type searchHit struct {
	Notation string   `json:"notation"`
	Label    string   `json:"label"`
	Score    *float64 `json:"score"`
}

// Search queries the configured search endpoint for a term and returns
// candidate notations. Returns nil when no search endpoint is configured.
func (c *Client) Search(ctx context.Context, term, lang string) ([]model.Candidate, error) {
	if c.searchURL == "" {
		return nil, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	searchURL, err := url.Parse(c.searchURL)
	if err != nil {
		return nil, fmt.Errorf("parse search URL: %w", err)
	}
	query := searchURL.Query()
	query.Set("q", term)
	query.Set("lang", lang)
	searchURL.RawQuery = query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var hits []searchHit
	if err := json.Unmarshal(body, &hits); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	var candidates []model.Candidate
	for i, hit := range hits {
		if i >= maxSearchHits {
			break
		}
		if hit.Notation == "" {
			continue
		}

		score := 0.5
		if hit.Score != nil {
			score = *hit.Score
		}
		if score < 0 {
			score = 0
		} else if score > 1 {
			score = 1
		}

		labels := make(model.LabelMap)
		if hit.Label != "" {
			labels[lang] = hit.Label
		}

		candidates = append(candidates, model.Candidate{
			Notation:   hit.Notation,
			Labels:     labels,
			Confidence: score,
		})
	}

	return candidates, nil
}

// parseLabels extracts language-tagged labels from a notation document.
// The service has shipped several shapes over time: a language-keyed map
// under "prefLabel", "label", "labels" or "txt", or a list of
// {lang, value} objects.
func parseLabels(body []byte) model.LabelMap {
	var doc map[string]interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil
	}

	labels := make(model.LabelMap)
	for _, key := range []string{"prefLabel", "label", "labels", "txt"} {
		switch v := doc[key].(type) {
		case map[string]interface{}:
			for lang, raw := range v {
				if text, ok := raw.(string); ok && labels[lang] == "" {
					labels[lang] = text
				}
			}
		case []interface{}:
			for _, item := range v {
				entry, ok := item.(map[string]interface{})
				if !ok {
					continue
				}
				lang, _ := entry["lang"].(string)
				text, _ := entry["value"].(string)
				if text == "" {
					text, _ = entry["text"].(string)
				}
				if lang != "" && text != "" && labels[lang] == "" {
					labels[lang] = text
				}
			}
		}
	}

	if len(labels) == 0 {
		return nil
	}
	return labels
}
