package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cloudslate/cloudslate/internal/posts"
)

const CMSSourceName = "cms"

const cmsProjection = `{
  _id,
  "id": slug.current,
  "slug": slug.current,
  title,
  excerpt,
  "content": content[]{..., "asset": asset->{url}},
  author,
  "date": publishedAt,
  category,
  tags,
  featured,
  "image": mainImage.asset->url,
  readTime,
  "metaDescription": seo.metaDescription,
  "keywords": seo.keywords
}`

const (
	allPostsQuery      = `*[_type == "post"] | order(publishedAt desc) ` + cmsProjection
	featuredPostsQuery = `*[_type == "post" && featured == true] | order(publishedAt desc) ` + cmsProjection
	postBySlugQuery    = `*[_type == "post" && slug.current == $slug][0] ` + cmsProjection
)

type CMSConfig struct {
	ProjectID  string
	Dataset    string
	APIVersion string
	UseCDN     bool
	// Token is optional; public datasets are readable without one.
	Token string
	// BaseURL overrides the derived Sanity host, mainly for tests.
	BaseURL string
}

func (c CMSConfig) endpoint() string {
	base := c.BaseURL
	if base == "" {
		host := "api"
		if c.UseCDN {
			host = "apicdn"
		}
		base = fmt.Sprintf("https://%s.%s.sanity.io", c.ProjectID, host)
	}
	return fmt.Sprintf("%s/v%s/data/query/%s", strings.TrimRight(base, "/"), c.APIVersion, c.Dataset)
}

var _ Source = (*CMSSource)(nil)

// CMSSource reads posts from the Sanity query API.
type CMSSource struct {
	cfg      CMSConfig
	endpoint string
	http     *http.Client
	now      func() time.Time
}

func NewCMSSource(cfg CMSConfig, httpClient *http.Client) *CMSSource {
	if httpClient == nil {
		httpClient = defaultHTTPClient()
	}
	if cfg.Dataset == "" {
		cfg.Dataset = "production"
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = "2024-01-01"
	}
	return &CMSSource{cfg: cfg, endpoint: cfg.endpoint(), http: httpClient, now: time.Now}
}

func (s *CMSSource) Name() string {
	return CMSSourceName
}

func (s *CMSSource) FetchAll(ctx context.Context) ([]posts.Post, error) {
	return s.queryList(ctx, allPostsQuery)
}

func (s *CMSSource) Featured(ctx context.Context) ([]posts.Post, error) {
	return s.queryList(ctx, featuredPostsQuery)
}

// BySlug returns posts.ErrNotFound when no document has the slug.
func (s *CMSSource) BySlug(ctx context.Context, slug string) (*posts.Post, error) {
	param, err := json.Marshal(slug)
	if err != nil {
		return nil, err
	}
	raw, err := s.query(ctx, postBySlugQuery, url.Values{"$slug": {string(param)}})
	if err != nil {
		return nil, err
	}
	var doc *cmsDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, parseError(CMSSourceName, err)
	}
	if doc == nil {
		return nil, posts.ErrNotFound
	}
	p, err := doc.toPost(s.now())
	if err != nil {
		return nil, parseError(CMSSourceName, err)
	}
	return &p, nil
}

func (s *CMSSource) queryList(ctx context.Context, groq string) ([]posts.Post, error) {
	raw, err := s.query(ctx, groq, nil)
	if err != nil {
		return nil, err
	}
	var docs []cmsDocument
	if err := json.Unmarshal(raw, &docs); err != nil {
		return nil, parseError(CMSSourceName, err)
	}
	now := s.now()
	list := make([]posts.Post, 0, len(docs))
	for _, d := range docs {
		p, err := d.toPost(now)
		if err != nil {
			return nil, parseError(CMSSourceName, fmt.Errorf("document %s: %w", d.DocID, err))
		}
		list = append(list, p)
	}
	return list, nil
}

func (s *CMSSource) query(ctx context.Context, groq string, params url.Values) (json.RawMessage, error) {
	q := url.Values{"query": {groq}}
	for k, v := range params {
		q[k] = v
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, networkError(CMSSourceName, err)
	}
	if s.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+s.cfg.Token)
	}

	var body struct {
		Result json.RawMessage `json:"result"`
	}
	if err := doJSON(s.http, CMSSourceName, req, &body); err != nil {
		return nil, err
	}
	if len(body.Result) == 0 {
		return nil, parseError(CMSSourceName, fmt.Errorf("response has no result field"))
	}
	return body.Result, nil
}
