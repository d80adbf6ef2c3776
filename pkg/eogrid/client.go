// Package eogrid provides a client for the earth-observation grid-export
// API: listing scenes in a collection and fetching their band data as
// regular grids. The platform does the heavy raster lifting; this client
// only narrows and downloads.
package eogrid

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Client defines the grid-export operations.
type Client interface {
	// ListScenes returns scene metadata matching the request filters.
	ListScenes(ctx context.Context, req ListScenesRequest) ([]SceneMeta, error)
	// FetchScene downloads the requested bands of one scene.
	FetchScene(ctx context.Context, collection, sceneID string, bands []string) (*SceneData, error)
}

// APIError is a non-2xx response from the platform.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("eogrid: api returned %d: %s", e.StatusCode, e.Body)
}

type client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// Option configures the client.
type Option func(*client)

// WithBaseURL overrides the API base URL.
func WithBaseURL(u string) Option {
	return func(c *client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) { c.httpClient = hc }
}

// NewClient creates an eogrid API client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &client{
		apiKey:     apiKey,
		baseURL:    "https://api.eogrid.io/v1",
		httpClient: &http.Client{Timeout: 120 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *client) ListScenes(ctx context.Context, req ListScenesRequest) ([]SceneMeta, error) {
	if req.Collection == "" {
		return nil, eris.New("eogrid: collection is required")
	}

	q := url.Values{}
	if !req.Start.IsZero() {
		q.Set("start", req.Start.UTC().Format(time.RFC3339))
	}
	if !req.End.IsZero() {
		q.Set("end", req.End.UTC().Format(time.RFC3339))
	}
	if req.MonthMin > 0 && req.MonthMax > 0 {
		q.Set("months", fmt.Sprintf("%d-%d", req.MonthMin, req.MonthMax))
	}
	if req.HasBBox {
		q.Set("bbox", fmt.Sprintf("%g,%g,%g,%g", req.BBox[0], req.BBox[1], req.BBox[2], req.BBox[3]))
	}
	if req.MaxCloud >= 0 {
		q.Set("max_cloud", strconv.FormatFloat(req.MaxCloud, 'g', -1, 64))
	}

	endpoint := fmt.Sprintf("%s/collections/%s/scenes?%s", c.baseURL, url.PathEscape(req.Collection), q.Encode())

	var out struct {
		Scenes []SceneMeta `json:"scenes"`
	}
	if err := c.getJSON(ctx, endpoint, &out); err != nil {
		return nil, eris.Wrapf(err, "eogrid: list scenes %s", req.Collection)
	}
	return out.Scenes, nil
}

func (c *client) FetchScene(ctx context.Context, collection, sceneID string, bands []string) (*SceneData, error) {
	if collection == "" || sceneID == "" {
		return nil, eris.New("eogrid: collection and scene id are required")
	}

	q := url.Values{}
	if len(bands) > 0 {
		q.Set("bands", strings.Join(bands, ","))
	}
	endpoint := fmt.Sprintf("%s/collections/%s/scenes/%s/export?%s",
		c.baseURL, url.PathEscape(collection), url.PathEscape(sceneID), q.Encode())

	var data SceneData
	if err := c.getJSON(ctx, endpoint, &data); err != nil {
		return nil, eris.Wrapf(err, "eogrid: fetch scene %s/%s", collection, sceneID)
	}
	if data.Grid.Cols <= 0 || data.Grid.Rows <= 0 {
		return nil, eris.Errorf("eogrid: scene %s has invalid grid %dx%d", sceneID, data.Grid.Cols, data.Grid.Rows)
	}
	want := data.Grid.Cols * data.Grid.Rows
	for name, samples := range data.Bands {
		if len(samples) != want {
			return nil, eris.Errorf("eogrid: scene %s band %s has %d samples, grid wants %d",
				sceneID, name, len(samples), want)
		}
	}
	return &data, nil
}

func (c *client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return eris.Wrap(err, "build request")
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return eris.Wrap(err, "do request")
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return eris.Wrap(err, "decode response")
	}
	return nil
}
