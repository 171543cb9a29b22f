// Package geocode provides the two enrichment backends: a static ZIP-to-place
// table and a Nominatim-style reverse geocoder.
package geocode

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

	"foodinspect/internal/errs"
	"foodinspect/internal/ports"
)

type NominatimClient struct {
	http      *retryablehttp.Client
	baseURL   string
	userAgent string
}

var _ ports.ReverseGeocoder = (*NominatimClient)(nil)

func NewNominatimClient(baseURL, userAgent string) *NominatimClient {
	hc := retryablehttp.NewClient()
	hc.RetryMax = 2
	hc.HTTPClient.Timeout = 30 * time.Second
	hc.Logger = nil

	return &NominatimClient{
		http:      hc,
		baseURL:   baseURL,
		userAgent: userAgent,
	}
}

type reverseResponse struct {
	Address struct {
		City     string `json:"city"`
		Town     string `json:"town"`
		Village  string `json:"village"`
		State    string `json:"state"`
		Postcode string `json:"postcode"`
	} `json:"address"`
}

// Reverse resolves city/state/zip from coordinates. City preference order is
// city, then town, then village, matching how Nominatim labels smaller
// municipalities.
func (c *NominatimClient) Reverse(ctx context.Context, lat, lon float64) (ports.Place, error) {
	if ctx == nil {
		return ports.Place{}, errors.New("context is required")
	}

	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ports.Place{}, errs.Wrap(err, "parse geocoder base url")
	}
	u = u.JoinPath("reverse")

	q := u.Query()
	q.Set("format", "jsonv2")
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	u.RawQuery = q.Encode()

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return ports.Place{}, errs.Wrap(err, "build reverse request")
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return ports.Place{}, errs.Wrap(err, "reverse geocode")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return ports.Place{}, fmt.Errorf("reverse geocode: http %d: %s", resp.StatusCode, string(body))
	}

	var decoded reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.Place{}, errs.Wrap(err, "decode reverse response")
	}

	city := decoded.Address.City
	if city == "" {
		city = decoded.Address.Town
	}
	if city == "" {
		city = decoded.Address.Village
	}

	return ports.Place{
		City:  city,
		State: decoded.Address.State,
		Zip:   decoded.Address.Postcode,
	}, nil
}
