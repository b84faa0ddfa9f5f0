package imagery

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"net/http"

	// Register decoders for the formats imagery providers serve.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/gizatt/skybox/internal/fetch"
)

// Loader is the injected image-loading strategy: URL in, decoded image out.
type Loader interface {
	Load(ctx context.Context, url string) (image.Image, error)
}

// HTTPLoader fetches and decodes an image over HTTP.
type HTTPLoader struct {
	Client fetch.Doer
}

func (l *HTTPLoader) Load(ctx context.Context, url string) (image.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating image request: %w", err)
	}

	resp, err := l.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching image %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("fetching image %s: unexpected status %d", url, resp.StatusCode)
	}

	body, err := fetch.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("reading image %s: %w", url, err)
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("decoding image %s: %w", url, err)
	}
	return img, nil
}
