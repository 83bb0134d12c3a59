// Package client provides an HTTP client for the hoom JSON API.
package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hoomlabs/hoom/internal/listing"
	"github.com/hoomlabs/hoom/internal/promoter"
)

// Client is an HTTP client for the hoom API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a new API client.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// ListingsResponse is the response from GET /api/listings.
type ListingsResponse struct {
	Criteria listing.Criteria `json:"criteria"`
	Options  listing.Options  `json:"options"`
	Summary  listing.Summary  `json:"summary"`
	Listings []listing.View   `json:"listings"`
}

// ListOptions controls filtering for ListListings. Zero values leave the
// server's defaults in place.
type ListOptions struct {
	Portals   []string
	Promoters []string
	MinPrice  *float64
	MaxPrice  *float64
	Type      string
	NoExclude bool
}

func (o ListOptions) query() url.Values {
	q := url.Values{}
	for _, p := range o.Portals {
		q.Add("portal", p)
	}
	for _, p := range o.Promoters {
		q.Add("promoter", p)
	}
	if o.MinPrice != nil {
		q.Set("min", strconv.FormatFloat(*o.MinPrice, 'f', -1, 64))
	}
	if o.MaxPrice != nil {
		q.Set("max", strconv.FormatFloat(*o.MaxPrice, 'f', -1, 64))
	}
	if o.Type != "" {
		q.Set("type", o.Type)
	}
	if o.NoExclude {
		q.Set("exclude", "false")
	}
	return q
}

// ListListings returns the filtered listings with their summary.
func (c *Client) ListListings(opts ListOptions) (*ListingsResponse, error) {
	path := "/api/listings"
	if q := opts.query(); len(q) > 0 {
		path += "?" + q.Encode()
	}

	var resp ListingsResponse
	if err := c.get(path, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Summary returns the metric cards for the filtered listings.
func (c *Client) Summary(opts ListOptions) (*listing.Summary, error) {
	path := "/api/summary"
	if q := opts.query(); len(q) > 0 {
		path += "?" + q.Encode()
	}

	var s listing.Summary
	if err := c.get(path, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// GetListing returns one listing with its promoter name.
func (c *Client) GetListing(id int64) (*listing.View, error) {
	var v listing.View
	if err := c.get(fmt.Sprintf("/api/listings/%d", id), &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// UpdateListing writes every editable field of a listing.
func (c *Client) UpdateListing(id int64, u listing.Update) (*listing.View, error) {
	var v listing.View
	if err := c.send("PUT", fmt.Sprintf("/api/listings/%d", id), u, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// DeleteListing removes a listing.
func (c *Client) DeleteListing(id int64) error {
	return c.doDelete(fmt.Sprintf("/api/listings/%d", id))
}

// SetPrimaryPhoto moves photo to the front of the listing's gallery.
func (c *Client) SetPrimaryPhoto(id int64, photo string) (*listing.View, error) {
	var v listing.View
	body := map[string]string{"photo": photo}
	if err := c.send("POST", fmt.Sprintf("/api/listings/%d/photos/primary", id), body, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// RemovePhoto drops photo from the listing's gallery.
func (c *Client) RemovePhoto(id int64, photo string) (*listing.View, error) {
	var v listing.View
	body := map[string]string{"photo": photo}
	if err := c.send("POST", fmt.Sprintf("/api/listings/%d/photos/remove", id), body, &v); err != nil {
		return nil, err
	}
	return &v, nil
}

// ImportListings inserts listings and returns how many were written.
func (c *Client) ImportListings(listings []listing.Listing) (int, error) {
	var resp struct {
		Imported int `json:"imported"`
	}
	if err := c.send("POST", "/api/listings", listings, &resp); err != nil {
		return 0, err
	}
	return resp.Imported, nil
}

// ListPromoters returns every promoter with its listings.
func (c *Client) ListPromoters() ([]promoter.Promoter, error) {
	var promoters []promoter.Promoter
	if err := c.get("/api/promoters", &promoters); err != nil {
		return nil, err
	}
	return promoters, nil
}

// SavePromoter creates a promoter when id is 0 and updates it otherwise.
func (c *Client) SavePromoter(id int64, in promoter.Input) error {
	if id == 0 {
		return c.send("POST", "/api/promoters", in, nil)
	}
	return c.send("PUT", fmt.Sprintf("/api/promoters/%d", id), in, nil)
}

// DeletePromoter removes a promoter no listing references.
func (c *Client) DeletePromoter(id int64) error {
	return c.doDelete(fmt.Sprintf("/api/promoters/%d", id))
}

// Reload asks the server to drop its cached tables.
func (c *Client) Reload() error {
	return c.send("POST", "/api/reload", nil, nil)
}

// get performs a GET request and decodes the response.
func (c *Client) get(path string, result any) error {
	req, err := http.NewRequest("GET", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, result)
}

// send performs a request with a JSON body and decodes the response.
func (c *Client) send(method, path string, body any, result any) error {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, r)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	return c.do(req, result)
}

// doDelete performs a DELETE request.
func (c *Client) doDelete(path string) error {
	req, err := http.NewRequest("DELETE", c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	return c.do(req, nil)
}

// do executes an HTTP request and handles errors.
func (c *Client) do(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			slog.Warn("closing response body", "error", cerr)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error != "" {
			return &Error{Status: resp.StatusCode, Message: errResp.Error}
		}
		return &Error{Status: resp.StatusCode, Message: "server error: " + http.StatusText(resp.StatusCode)}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

// Error is an error response from the server.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}
