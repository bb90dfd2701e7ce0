package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/cloudslate/cloudslate/internal/posts"
)

const APISourceName = "api"

var (
	_ Source     = (*APISource)(nil)
	_ PostWriter = (*APISource)(nil)
)

// APISource talks to the CloudSlate storage API.
type APISource struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewAPISource returns an adapter for the API rooted at baseURL. token is
// sent as a bearer credential on writes and may be empty for read-only use.
func NewAPISource(baseURL, token string, httpClient *http.Client) *APISource {
	if httpClient == nil {
		httpClient = defaultHTTPClient()
	}
	return &APISource{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

func (a *APISource) Name() string {
	return APISourceName
}

func (a *APISource) FetchAll(ctx context.Context) ([]posts.Post, error) {
	var list []posts.Post
	if err := a.do(ctx, http.MethodGet, "/api/posts", nil, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []posts.Post{}
	}
	return list, nil
}

func (a *APISource) Create(ctx context.Context, p posts.Post) (*posts.Post, error) {
	var created posts.Post
	if err := a.do(ctx, http.MethodPost, "/api/posts", p, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (a *APISource) Update(ctx context.Context, id string, patch posts.Patch) (*posts.Post, error) {
	var updated posts.Post
	if err := a.do(ctx, http.MethodPut, "/api/posts/"+url.PathEscape(id), patch, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (a *APISource) Delete(ctx context.Context, id string) error {
	var ack struct {
		Success bool `json:"success"`
	}
	if err := a.do(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(id), nil, &ack); err != nil {
		return err
	}
	if !ack.Success {
		return bodyError(APISourceName, http.StatusOK, fmt.Errorf("delete %s not acknowledged", id))
	}
	return nil
}

func (a *APISource) do(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.baseURL+path, body)
	if err != nil {
		return networkError(APISourceName, err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if a.token != "" && method != http.MethodGet {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	return doJSON(a.http, APISourceName, req, out)
}
