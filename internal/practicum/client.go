package practicum

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultEndpoint = "https://practicum.yandex.ru/api/user_api/homework_statuses/"

	defaultTimeout  = 30 * time.Second
	errorBodyLimit  = 512
	fromDateParam   = "from_date"
	authScheme      = "OAuth "
	maxResponseSize = 4 << 20
)

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config controls how the client reaches the homework API.
type Config struct {
	Endpoint   string
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client queries the homework status endpoint.
type Client struct {
	endpoint   string
	token      string
	httpClient httpDoer
}

func NewClient(cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint:   endpoint,
		token:      cfg.Token,
		httpClient: resolveHTTPClient(cfg.HTTPClient, cfg.Timeout),
	}
}

// Fetch asks for every status change since from (Unix seconds) and returns
// the raw body of a 200 answer. It does not retry.
func (c *Client) Fetch(ctx context.Context, from int64) ([]byte, error) {
	req, err := c.buildRequest(ctx, from)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEndpointUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %w", ErrEndpointUnavailable, err)
	}
	return body, nil
}

// Endpoint returns the URL the client polls.
func (c *Client) Endpoint() string {
	return c.endpoint
}

func (c *Client) buildRequest(ctx context.Context, from int64) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("practicum: build request: %w", err)
	}

	q := req.URL.Query()
	q.Set(fromDateParam, strconv.FormatInt(from, 10))
	req.URL.RawQuery = q.Encode()

	req.Header.Set("Authorization", authScheme+c.token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func resolveHTTPClient(client *http.Client, timeout time.Duration) httpDoer {
	if client != nil {
		return client
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &http.Client{Timeout: timeout}
}
