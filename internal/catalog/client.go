package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-faster/errors"
)

// Client talks to a catalog HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAPIBind   = "127.0.0.1:8080"
	defaultUserAgent = "storefront/0.1"
	requestTimeout   = 5 * time.Second
)

// productList mirrors the payload returned by /api/products.
type productList struct {
	Items []Item `json:"items"`
}

// NewClient builds a Client for the catalog API at base (host:port or URL).
func NewClient(base string) (*Client, error) {
	u, err := parseBaseURL(base)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: u,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// Products retrieves the full product listing.
func (c *Client) Products(ctx context.Context) ([]Item, error) {
	if c == nil {
		return nil, errors.New("client is nil")
	}
	var payload productList
	if err := c.do(ctx, "/api/products", &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

// ProductBySlug retrieves one product; a 404 maps to ErrNotFound.
func (c *Client) ProductBySlug(ctx context.Context, slug string) (Item, error) {
	if c == nil {
		return Item{}, errors.New("client is nil")
	}
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Item{}, errors.Wrap(ErrNotFound, "empty slug")
	}
	var payload Item
	if err := c.do(ctx, "/api/products/"+url.PathEscape(slug), &payload); err != nil {
		return Item{}, err
	}
	return payload, nil
}

// RelatedProducts retrieves products the API relates to item.
func (c *Client) RelatedProducts(ctx context.Context, item Item) ([]Item, error) {
	if c == nil {
		return nil, errors.New("client is nil")
	}
	if strings.TrimSpace(item.Slug) == "" {
		return nil, nil
	}
	var payload productList
	if err := c.do(ctx, "/api/products/"+url.PathEscape(item.Slug)+"/related", &payload); err != nil {
		return nil, err
	}
	return payload.Items, nil
}

func (c *Client) do(ctx context.Context, path string, dest any) error {
	rel := &url.URL{Path: path}
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL.String(), nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "execute request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return errors.Wrapf(ErrNotFound, "api %s", rel.Path)
	}
	if resp.StatusCode >= 400 {
		return errors.Errorf("api %s returned status %d", rel.Path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}

func parseBaseURL(base string) (*url.URL, error) {
	trimmed := strings.TrimSpace(base)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, errors.Wrapf(err, "parse catalog url %q", base)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
