package artifact

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// HTTP fetches artifacts from an artifact server via GET <base>/<name>.
type HTTP struct {
	base string
	rest *resty.Client
}

// NewHTTP returns a Store fetching from baseURL with a per-request
// timeout. No retries: registry loading is fatal on failure anyway.
func NewHTTP(baseURL string, timeout time.Duration) *HTTP {
	r := resty.New()
	if timeout > 0 {
		r.SetTimeout(timeout)
	} else {
		r.SetTimeout(15 * time.Second) // default fallback
	}
	return &HTTP{base: strings.TrimRight(baseURL, "/"), rest: r}
}

func (h *HTTP) Metadata(ctx context.Context, name string) ([]byte, error) {
	return h.fetch(ctx, name)
}

func (h *HTTP) Model(ctx context.Context, name string) ([]byte, error) {
	return h.fetch(ctx, name)
}

func (h *HTTP) fetch(ctx context.Context, name string) ([]byte, error) {
	resp, err := h.rest.R().
		SetContext(ctx).
		Get(h.base + "/" + name)
	if err != nil {
		return nil, fmt.Errorf("fetch artifact %s: %w", name, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetch artifact %s: status %d", name, resp.StatusCode())
	}
	return resp.Body(), nil
}
