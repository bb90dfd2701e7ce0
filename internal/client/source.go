package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/cloudslate/cloudslate/internal/posts"
)

// Source is a place posts can be read from. An empty result is a success.
type Source interface {
	Name() string
	FetchAll(ctx context.Context) ([]posts.Post, error)
}

// PostWriter is a source that also accepts mutations.
type PostWriter interface {
	Create(ctx context.Context, p posts.Post) (*posts.Post, error)
	Update(ctx context.Context, id string, patch posts.Patch) (*posts.Post, error)
	Delete(ctx context.Context, id string) error
}

const defaultHTTPTimeout = 15 * time.Second

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultHTTPTimeout}
}

// doJSON executes req and decodes a 2xx JSON body into out, mapping each
// failure to its FetchError kind.
func doJSON(c *http.Client, source string, req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")
	resp, err := c.Do(req)
	if err != nil {
		return networkError(source, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return statusError(source, resp.StatusCode)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return bodyError(source, resp.StatusCode, err)
	}
	return nil
}
