package upstream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/klass-lk/postgateway/internal/errorlib"
	"github.com/klass-lk/postgateway/internal/metrics"
)

// Doer is satisfied by *http.Client and by the zipkin traced client.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL string
	http    Doer
	log     *slog.Logger
	metrics metrics.Provider
}

var errNotFound = errors.New("upstream returned 404")

func NewClient(baseURL string, doer Doer, log *slog.Logger, m metrics.Provider) *Client {
	return &Client{
		baseURL: baseURL,
		http:    doer,
		log:     log,
		metrics: m,
	}
}

func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 5 * time.Second,
			MaxIdleConns:        100,
			IdleConnTimeout:     90 * time.Second,
		},
	}
}

// envelope is only decoded to check that the body is an object carrying data.
type envelope struct {
	Data json.RawMessage `json:"data"`
}

// ListPosts returns the content API's list body byte for byte.
func (c *Client) ListPosts(ctx context.Context) (json.RawMessage, error) {
	body, err := c.get(ctx, "/api/posts")
	if err != nil {
		c.metrics.IncrementUpstreamRequests("list_posts", "error")
		c.log.Error("Failed to fetch posts from upstream", slog.String("error", err.Error()))
		return nil, errorlib.ErrUpstreamUnavailable.New("posts").Wrap(err)
	}
	c.metrics.IncrementUpstreamRequests("list_posts", "ok")
	return body, nil
}

// GetPost returns the content API's detail body byte for byte.
func (c *Client) GetPost(ctx context.Context, id int64) (json.RawMessage, error) {
	body, err := c.get(ctx, fmt.Sprintf("/api/posts/%d", id))
	switch {
	case errors.Is(err, errNotFound):
		c.metrics.IncrementUpstreamRequests("get_post", "not_found")
		c.log.Debug("Post not found upstream", slog.Int64("id", id))
		return nil, errorlib.ErrNotFound.New(id).Wrap(err)
	case err != nil:
		c.metrics.IncrementUpstreamRequests("get_post", "error")
		c.log.Error("Failed to fetch post from upstream", slog.Int64("id", id), slog.String("error", err.Error()))
		return nil, errorlib.ErrUpstreamUnavailable.New(fmt.Sprintf("post %d", id)).Wrap(err)
	}
	c.metrics.IncrementUpstreamRequests("get_post", "ok")
	return body, nil
}

func (c *Client) get(ctx context.Context, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, errNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("undecodable upstream body: %w", err)
	}
	if len(env.Data) == 0 {
		return nil, errors.New("upstream body has no data field")
	}
	return body, nil
}
