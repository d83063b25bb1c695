package imagefetch

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	// register decoders for the formats retailers actually serve
	_ "image/gif"
	_ "image/png"

	"github.com/stylescout/backend/internal/domain"
	"golang.org/x/time/rate"
)

const (
	maxImageBytes = 10 << 20 // 10 MiB
	jpegQuality   = 95
)

// Fetcher resolves product image sources into model-consumable JPEG bytes.
// It accepts both data URLs (already inlined by the page) and remote URLs,
// and re-encodes everything to JPEG so the model always receives one format.
type Fetcher struct {
	httpClient  *http.Client
	rateLimiter *rate.Limiter
}

// NewFetcher creates an image fetcher
func NewFetcher() *Fetcher {
	// retailer CDNs throttle aggressively; stay well under their limits
	limiter := rate.NewLimiter(rate.Limit(5), 10)

	return &Fetcher{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		rateLimiter: limiter,
	}
}

// FetchJPEG returns the image at src as JPEG bytes
func (f *Fetcher) FetchJPEG(ctx context.Context, src string) ([]byte, error) {
	if src == "" {
		return nil, fmt.Errorf("%w: empty image source", domain.ErrImageFetch)
	}

	var raw []byte
	var err error
	if strings.HasPrefix(src, "data:") {
		raw, err = decodeDataURL(src)
	} else {
		raw, err = f.fetchRemote(ctx, src)
	}
	if err != nil {
		return nil, err
	}

	return reencodeJPEG(raw)
}

func (f *Fetcher) fetchRemote(ctx context.Context, src string) ([]byte, error) {
	if err := f.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", src, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImageFetch, err)
	}
	req.Header.Set("Accept", "image/*")

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImageFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[IMAGE] fetch status %d for %s", resp.StatusCode, src)
		return nil, fmt.Errorf("%w: status %d", domain.ErrImageFetch, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImageFetch, err)
	}
	if len(raw) > maxImageBytes {
		return nil, fmt.Errorf("%w: image exceeds %d bytes", domain.ErrImageFetch, maxImageBytes)
	}
	return raw, nil
}

// decodeDataURL handles data:image/...;base64,... sources inlined by pages
func decodeDataURL(src string) ([]byte, error) {
	comma := strings.IndexByte(src, ',')
	if comma < 0 {
		return nil, fmt.Errorf("%w: malformed data URL", domain.ErrImageFetch)
	}
	meta, payload := src[:comma], src[comma+1:]

	if !strings.Contains(meta, ";base64") {
		return nil, fmt.Errorf("%w: data URL is not base64-encoded", domain.ErrImageFetch)
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrImageFetch, err)
	}
	return raw, nil
}

// reencodeJPEG normalizes any decodable image to JPEG. Bytes that already
// carry a JPEG signature pass through untouched.
func reencodeJPEG(raw []byte) ([]byte, error) {
	if len(raw) >= 3 && raw[0] == 0xFF && raw[1] == 0xD8 && raw[2] == 0xFF {
		return raw, nil
	}

	img, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: undecodable image: %v", domain.ErrImageFetch, err)
	}

	var out bytes.Buffer
	if err := jpeg.Encode(&out, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, fmt.Errorf("%w: jpeg encode: %v", domain.ErrImageFetch, err)
	}
	log.Printf("[IMAGE] re-encoded %s image to JPEG (%d -> %d bytes)", format, len(raw), out.Len())
	return out.Bytes(), nil
}
