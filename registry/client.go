package registry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/blang/semver"
	"github.com/goccy/go-json"

	"go.jacobcolvin.com/k2tf/version"
)

// Defaults for [Client].
const (
	DefaultBaseURL  = "https://registry.terraform.io"
	DefaultProvider = "hashicorp/kubernetes"
	// DefaultProviderVersion is the registry id of a provider release whose
	// documentation uses the "### `name`" section layout.
	DefaultProviderVersion = "53551"
	// LatestProviderVersion selects the newest release by semantic version.
	LatestProviderVersion = "latest"
)

// Client reads resource documentation from the Terraform Registry.
//
// The document index of the provider release is fetched once and shared by
// all lookups. Client is safe for concurrent use.
type Client struct {
	http            *http.Client
	baseURL         string
	provider        string
	providerVersion string
	userAgent       string

	mu   sync.Mutex
	docs []providerDoc
}

// ClientOption configures a [Client].
type ClientOption func(*Client)

// WithBaseURL sets the registry URL.
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(u, "/")
	}
}

// WithProvider sets the provider as "namespace/name".
func WithProvider(p string) ClientOption {
	return func(c *Client) {
		c.provider = p
	}
}

// WithProviderVersion selects the provider release. It accepts a registry
// id, a semantic version such as "2.23.0", or [LatestProviderVersion].
func WithProviderVersion(v string) ClientOption {
	return func(c *Client) {
		c.providerVersion = v
	}
}

// WithHTTPClient sets the HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// NewClient creates a [Client].
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:            http.DefaultClient,
		baseURL:         DefaultBaseURL,
		provider:        DefaultProvider,
		providerVersion: DefaultProviderVersion,
		userAgent:       version.UserAgent(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// JSON:API documents returned by the registry.
type (
	resource struct {
		Type       string          `json:"type"`
		ID         string          `json:"id"`
		Attributes json.RawMessage `json:"attributes"`
		Links      struct {
			Self string `json:"self"`
		} `json:"links"`
	}

	document struct {
		Data     resource   `json:"data"`
		Included []resource `json:"included"`
	}

	docAttributes struct {
		Slug     string `json:"slug"`
		Category string `json:"category"`
		Language string `json:"language"`
		Content  string `json:"content"`
	}

	versionAttributes struct {
		Version string `json:"version"`
	}
)

type providerDoc struct {
	docAttributes

	self string
}

// Document implements [Source].
func (c *Client) Document(ctx context.Context, kind, version string) (Doc, error) {
	docs, err := c.index(ctx)
	if err != nil {
		return Doc{}, err
	}

	prefix := c.prefix()

	for _, want := range slugs(kind, version) {
		for _, d := range docs {
			if d.Category != "resources" || strings.TrimPrefix(d.Slug, prefix+"_") != want {
				continue
			}

			var body document

			err := c.get(ctx, d.self, &body)
			if err != nil {
				return Doc{}, err
			}

			var attrs docAttributes

			err = json.Unmarshal(body.Data.Attributes, &attrs)
			if err != nil {
				return Doc{}, fmt.Errorf("%w: decode %s: %w", ErrRequest, d.self, err)
			}

			return Doc{
				Name:    docName(d.Slug, prefix),
				Slug:    d.Slug,
				Content: attrs.Content,
			}, nil
		}
	}

	return Doc{}, fmt.Errorf("%w: %s %s in %s", ErrNotFound, kind, version, c.provider)
}

// prefix returns the provider name, which prefixes some document slugs.
func (c *Client) prefix() string {
	_, name, ok := strings.Cut(c.provider, "/")
	if !ok {
		return c.provider
	}

	return name
}

// index returns the resource documents of the selected provider release.
func (c *Client) index(ctx context.Context) ([]providerDoc, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.docs != nil {
		return c.docs, nil
	}

	id, err := c.versionID(ctx)
	if err != nil {
		return nil, err
	}

	var body document

	err = c.get(ctx, "/v2/provider-versions/"+url.PathEscape(id)+"?include=provider-docs", &body)
	if err != nil {
		return nil, err
	}

	docs := make([]providerDoc, 0, len(body.Included))

	for _, r := range body.Included {
		if r.Type != "provider-docs" {
			continue
		}

		var attrs docAttributes

		err := json.Unmarshal(r.Attributes, &attrs)
		if err != nil {
			return nil, fmt.Errorf("%w: decode provider doc %s: %w", ErrRequest, r.ID, err)
		}

		if attrs.Language != "" && attrs.Language != "hcl" {
			continue
		}

		docs = append(docs, providerDoc{docAttributes: attrs, self: r.Links.Self})
	}

	slog.Debug("loaded provider documents",
		slog.String("provider", c.provider),
		slog.String("version", id),
		slog.Int("documents", len(docs)),
	)

	c.docs = docs

	return docs, nil
}

// versionID resolves the configured provider version to a registry id.
func (c *Client) versionID(ctx context.Context) (string, error) {
	v := c.providerVersion
	if v == "" {
		return DefaultProviderVersion, nil
	}

	if isID(v) {
		return v, nil
	}

	var want *semver.Version

	if v != LatestProviderVersion {
		sv, err := semver.ParseTolerant(v)
		if err != nil {
			return "", fmt.Errorf("%w: provider version %q: %w", ErrNotFound, v, err)
		}

		want = &sv
	}

	var body document

	err := c.get(ctx, "/v2/providers/"+c.provider+"?include=provider-versions", &body)
	if err != nil {
		return "", err
	}

	var (
		bestID string
		best   semver.Version
	)

	for _, r := range body.Included {
		if r.Type != "provider-versions" {
			continue
		}

		var attrs versionAttributes

		err := json.Unmarshal(r.Attributes, &attrs)
		if err != nil {
			return "", fmt.Errorf("%w: decode provider version %s: %w", ErrRequest, r.ID, err)
		}

		sv, err := semver.ParseTolerant(attrs.Version)
		if err != nil {
			slog.Debug("skipping provider version",
				slog.String("version", attrs.Version),
				slog.Any("err", err),
			)

			continue
		}

		switch {
		case want != nil && sv.Equals(*want):
			return r.ID, nil
		case want == nil && (bestID == "" || sv.GT(best)):
			bestID, best = r.ID, sv
		}
	}

	if bestID == "" {
		return "", fmt.Errorf("%w: provider version %q of %s", ErrNotFound, v, c.provider)
	}

	slog.Debug("resolved latest provider version",
		slog.String("version", best.String()),
		slog.String("id", bestID),
	)

	return bestID, nil
}

func isID(v string) bool {
	for _, r := range v {
		if r < '0' || r > '9' {
			return false
		}
	}

	return v != ""
}

// get fetches a registry path and decodes the JSON response into v.
func (c *Client) get(ctx context.Context, path string, v any) error {
	u := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/vnd.api+json, application/json")

	slog.Debug("registry request", slog.String("url", u))

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequest, err)
	}

	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %s", ErrNotFound, u)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s: %s", ErrRequest, u, resp.Status)
	}

	err = json.NewDecoder(resp.Body).Decode(v)
	if err != nil {
		return fmt.Errorf("%w: decode %s: %w", ErrRequest, u, err)
	}

	return nil
}
