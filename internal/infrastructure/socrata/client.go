// Package socrata wraps the Socrata Open Data API for paginated dataset
// reads using $limit/$offset query parameters.
package socrata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"foodinspect/internal/domain/inspection"
	"foodinspect/internal/errs"
	"foodinspect/internal/ports"
)

type Client struct {
	http     *retryablehttp.Client
	baseURL  string
	dataset  string
	appToken string
}

var _ ports.DatasetClient = (*Client)(nil)

type Option func(*Client)

func WithAppToken(token string) Option {
	return func(c *Client) { c.appToken = token }
}

func NewClient(baseURL, dataset string, opts ...Option) *Client {
	hc := retryablehttp.NewClient()
	hc.RetryMax = 3
	hc.HTTPClient.Timeout = 60 * time.Second
	hc.Logger = nil

	c := &Client{
		http:    hc,
		baseURL: baseURL,
		dataset: dataset,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchPage returns one page of raw records. A non-2xx response after
// retries, or a malformed body, is returned as an error; the caller treats
// that as fatal to the current fetch loop.
func (c *Client) FetchPage(ctx context.Context, limit, offset int) ([]inspection.Raw, error) {
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if limit <= 0 {
		return nil, errors.New("limit must be positive")
	}
	if offset < 0 {
		return nil, errors.New("offset must not be negative")
	}

	pageURL, err := c.pageURL(limit, offset)
	if err != nil {
		return nil, errs.Wrap(err, "build page url")
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, errs.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	if c.appToken != "" {
		req.Header.Set("X-App-Token", c.appToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.Wrapf(err, "fetch page offset=%d", offset)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("fetch page offset=%d: http %d: %s", offset, resp.StatusCode, string(body))
	}

	var page []inspection.Raw
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, errs.Wrapf(err, "decode page offset=%d", offset)
	}
	return page, nil
}

func (c *Client) pageURL(limit, offset int) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	u = u.JoinPath("resource", c.dataset+".json")

	q := u.Query()
	q.Set("$limit", strconv.Itoa(limit))
	q.Set("$offset", strconv.Itoa(offset))
	u.RawQuery = q.Encode()
	return u.String(), nil
}
