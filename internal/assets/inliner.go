// Package assets turns remote image references into self-contained data URIs
// so verification results can be rendered without a second fetch.
package assets

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"
)

// ErrInvalidURL rejects inputs that are not http(s) URLs with a recognized
// image extension. No network call is attempted for these.
var ErrInvalidURL = errors.New("invalid asset url")

// imageExtensions maps recognized extensions to a fallback content type used
// when the upstream response does not declare one.
var imageExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

// maxAssetBytes bounds how large a fetched image may be.
const maxAssetBytes = 8 << 20

// FetchError reports a failed asset fetch. Callers treat it as non-fatal.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch asset %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Inliner fetches remote images with a bounded timeout and encodes them as
// data URIs.
type Inliner struct {
	httpClient *http.Client
}

// New builds an inliner whose fetches are bounded by timeout.
func New(timeout time.Duration) *Inliner {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Inliner{httpClient: &http.Client{Timeout: timeout}}
}

// NewWithClient builds an inliner around a caller-supplied HTTP client.
func NewWithClient(hc *http.Client) *Inliner {
	return &Inliner{httpClient: hc}
}

// Inline fetches the image at rawURL and returns a self-describing
// `data:<content-type>;base64,<payload>` string. The URL is validated before
// any network call; fetch and content failures return a *FetchError.
func (i *Inliner) Inline(ctx context.Context, rawURL string) (string, error) {
	fallbackType, err := validate(rawURL)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	resp, err := i.httpClient.Do(req)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", &FetchError{URL: rawURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxAssetBytes+1))
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	if len(body) == 0 {
		return "", &FetchError{URL: rawURL, Err: errors.New("empty body")}
	}
	if len(body) > maxAssetBytes {
		return "", &FetchError{URL: rawURL, Err: errors.New("asset exceeds size limit")}
	}

	contentType := resp.Header.Get("Content-Type")
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}
	if !strings.HasPrefix(contentType, "image/") {
		contentType = fallbackType
	}

	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(body), nil
}

// validate rejects anything that is not an http(s) URL with a recognized
// image extension, returning the extension's fallback content type.
func validate(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidURL, rawURL)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	ext := strings.ToLower(path.Ext(u.Path))
	contentType, ok := imageExtensions[ext]
	if !ok {
		return "", fmt.Errorf("%w: unrecognized extension %q", ErrInvalidURL, ext)
	}
	return contentType, nil
}
