package alttext

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"golang.org/x/image/draw"

	"github.com/culthera/enrich/internal/util"
)

// maxImageEdge is the longest edge sent to the vision model. Larger
// thumbnails are downscaled to keep upload size and token cost bounded.
const maxImageEdge = 1024

// jpegQuality for re-encoded images.
const jpegQuality = 85

// ImageFetcher downloads object thumbnails with robots.txt compliance
// and a response size bound.
type ImageFetcher struct {
	httpClient *http.Client
	robots     *util.RobotsChecker
	userAgent  string
	maxBytes   int64
}

// NewImageFetcher creates an image fetcher.
func NewImageFetcher(timeout time.Duration, userAgent string, maxBytes int64) *ImageFetcher {
	if maxBytes <= 0 {
		maxBytes = 20_000_000
	}
	return &ImageFetcher{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		robots:    util.NewRobotsChecker(userAgent, timeout),
		userAgent: userAgent,
		maxBytes:  maxBytes,
	}
}

// Fetch downloads the image at rawURL and returns JPEG bytes ready for
// upload, downscaled when the source exceeds maxImageEdge.
func (f *ImageFetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if !f.robots.IsAllowed(ctx, rawURL) {
		return nil, fmt.Errorf("disallowed by robots.txt: %s", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return prepareImage(data), nil
}

// prepareImage re-encodes the image as JPEG, downscaling when the long
// edge exceeds maxImageEdge. Undecodable data is passed through as-is;
// the provider will reject it with a clearer error than we could invent.
func prepareImage(data []byte) []byte {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return data
	}

	bounds := src.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	long := width
	if height > long {
		long = height
	}

	if long > maxImageEdge {
		scale := float64(maxImageEdge) / float64(long)
		dst := image.NewRGBA(image.Rect(0, 0,
			int(float64(width)*scale), int(float64(height)*scale)))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)
		src = dst
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, src, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return data
	}
	return buf.Bytes()
}
