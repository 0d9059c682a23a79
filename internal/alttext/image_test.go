package alttext

import (
	"bytes"
	"context"
	"image"
	"image/jpeg"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// tinyJPEG encodes a small solid image for fetch tests.
func tinyJPEG(t *testing.T) []byte {
	t.Helper()
	return encodeJPEG(t, 32, 32)
}

func encodeJPEG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, nil); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

// newStubFetcher returns a fetcher pointed at a server that serves data
// for any path except /robots.txt.
func newStubFetcher(t *testing.T, data []byte) (*ImageFetcher, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write(data)
	}))
	return NewImageFetcher(2*time.Second, "enrich-test/1.0", 0), server
}

func decodeBounds(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode prepared image: %v", err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestPrepareImage_SmallImagePassesThrough(t *testing.T) {
	got := prepareImage(encodeJPEG(t, 640, 480))
	w, h := decodeBounds(t, got)
	if w != 640 || h != 480 {
		t.Errorf("small image should keep its dimensions, got %dx%d", w, h)
	}
}

func TestPrepareImage_DownscalesLongEdge(t *testing.T) {
	got := prepareImage(encodeJPEG(t, 2048, 1024))
	w, h := decodeBounds(t, got)
	if w != maxImageEdge || h != maxImageEdge/2 {
		t.Errorf("expected %dx%d, got %dx%d", maxImageEdge, maxImageEdge/2, w, h)
	}

	got = prepareImage(encodeJPEG(t, 512, 2048))
	w, h = decodeBounds(t, got)
	if h != maxImageEdge || w != maxImageEdge/4 {
		t.Errorf("expected %dx%d, got %dx%d", maxImageEdge/4, maxImageEdge, w, h)
	}
}

func TestPrepareImage_UndecodableDataUnchanged(t *testing.T) {
	data := []byte("definitely not an image")
	if got := prepareImage(data); !bytes.Equal(got, data) {
		t.Errorf("undecodable data should pass through untouched")
	}
}

func TestFetch(t *testing.T) {
	fetcher, server := newStubFetcher(t, tinyJPEG(t))
	defer server.Close()

	got, err := fetcher.Fetch(context.Background(), server.URL+"/thumb.jpg")
	if err != nil {
		t.Fatalf("Fetch() error: %v", err)
	}
	if w, h := decodeBounds(t, got); w != 32 || h != 32 {
		t.Errorf("unexpected dimensions %dx%d", w, h)
	}
}

func TestFetch_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			http.NotFound(w, r)
			return
		}
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	fetcher := NewImageFetcher(2*time.Second, "enrich-test/1.0", 0)
	if _, err := fetcher.Fetch(context.Background(), server.URL+"/thumb.jpg"); err == nil {
		t.Error("expected error for 403 response")
	}
}

func TestFetch_RobotsDisallowed(t *testing.T) {
	thumb := tinyJPEG(t)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/robots.txt" {
			_, _ = w.Write([]byte("User-agent: *\nDisallow: /private/\n"))
			return
		}
		_, _ = w.Write(thumb)
	}))
	defer server.Close()

	fetcher := NewImageFetcher(2*time.Second, "enrich-test/1.0", 0)

	if _, err := fetcher.Fetch(context.Background(), server.URL+"/private/thumb.jpg"); err == nil ||
		!strings.Contains(err.Error(), "robots.txt") {
		t.Errorf("expected robots.txt rejection, got %v", err)
	}

	if _, err := fetcher.Fetch(context.Background(), server.URL+"/public/thumb.jpg"); err != nil {
		t.Errorf("allowed path should fetch, got %v", err)
	}
}
