package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/culthera/enrich/internal/model"
)

// Loader reads the metadata feed from a local file or an http(s) URL.
type Loader struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64
}

// NewLoader creates a feed loader.
func NewLoader(timeout time.Duration, userAgent string, maxBytes int64) *Loader {
	if maxBytes <= 0 {
		maxBytes = 50_000_000
	}
	return &Loader{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
}

// Load reads and decodes the feed. Sources starting with http:// or
// https:// are fetched, everything else is treated as a file path.
func (l *Loader) Load(ctx context.Context, source string) (*model.Feed, error) {
	var data []byte
	var err error

	if isURL(source) {
		data, err = l.fetch(ctx, source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("load metadata from %s: %w", source, err)
	}

	var feed model.Feed
	if err := json.Unmarshal(data, &feed); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s: %w", source, err)
	}

	return &feed, nil
}

func (l *Loader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", l.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	return io.ReadAll(io.LimitReader(resp.Body, l.maxBytes))
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
