// Package postgrest implements store.TableStore against a hosted
// PostgREST endpoint such as a Supabase project.
package postgrest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/hoomlabs/hoom/internal/store"
)

// foreignKeyViolation is the Postgres SQLSTATE PostgREST reports when a
// delete or write breaks a foreign key.
const foreignKeyViolation = "23503"

// APIError is an error response from PostgREST.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s (code %s)", msg, e.Code)
	}
	if e.Details != "" {
		msg += ": " + e.Details
	}
	return msg
}

// Is lets errors.Is match store sentinels.
func (e *APIError) Is(target error) bool {
	return target == store.ErrReferenced && e.Code == foreignKeyViolation
}

// Client talks to the PostgREST API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// New creates a client for the project at baseURL (for Supabase,
// https://<ref>.supabase.co) authenticated with apiKey.
func New(baseURL, apiKey string) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("SUPABASE_URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("SUPABASE_KEY is required")
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/") + "/rest/v1",
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// SelectParam renders the PostgREST select parameter for q.
func SelectParam(q store.Query) string {
	parts := []string{q.ColumnList()}
	for _, e := range q.Embed {
		cols := "*"
		if len(e.Columns) > 0 {
			cols = strings.Join(e.Columns, ",")
		}
		name := e.Column
		if e.Reverse {
			name = e.Table
		}
		parts = append(parts, fmt.Sprintf("%s(%s)", name, cols))
	}
	return strings.Join(parts, ",")
}

// Select returns rows of table with embeds inlined by PostgREST.
func (c *Client) Select(ctx context.Context, table string, q store.Query) ([]store.Row, error) {
	order := q.Order
	if order == "" {
		order = "id"
	}
	if err := store.CheckIdents(table, order); err != nil {
		return nil, err
	}

	params := url.Values{
		"select": {SelectParam(q)},
		"order":  {order + ".asc"},
	}

	var raw []map[string]any
	if err := c.do(ctx, http.MethodGet, table, params, nil, "", &raw); err != nil {
		return nil, fmt.Errorf("selecting %s: %w", table, err)
	}

	rows := make([]store.Row, len(raw))
	for i, r := range raw {
		rows[i] = normalize(r).(store.Row)
	}
	return rows, nil
}

// Insert adds a record.
func (c *Client) Insert(ctx context.Context, table string, rec store.Row) error {
	if err := store.CheckIdents(table); err != nil {
		return err
	}
	if err := c.do(ctx, http.MethodPost, table, nil, rec, "return=minimal", nil); err != nil {
		return fmt.Errorf("inserting into %s: %w", table, err)
	}
	return nil
}

// Update patches the row with id.
func (c *Client) Update(ctx context.Context, table string, id int64, rec store.Row) error {
	if err := store.CheckIdents(table); err != nil {
		return err
	}
	if len(rec) == 0 {
		return fmt.Errorf("updating %s %d: no columns to set", table, id)
	}

	var changed []json.RawMessage
	if err := c.do(ctx, http.MethodPatch, table, idFilter(id), rec, "return=representation", &changed); err != nil {
		return fmt.Errorf("updating %s %d: %w", table, id, err)
	}
	if len(changed) == 0 {
		return fmt.Errorf("%s %d: %w", table, id, store.ErrNotFound)
	}
	return nil
}

// Delete removes the row with id.
func (c *Client) Delete(ctx context.Context, table string, id int64) error {
	if err := store.CheckIdents(table); err != nil {
		return err
	}

	var removed []json.RawMessage
	if err := c.do(ctx, http.MethodDelete, table, idFilter(id), nil, "return=representation", &removed); err != nil {
		return fmt.Errorf("deleting %s %d: %w", table, id, err)
	}
	if len(removed) == 0 {
		return fmt.Errorf("%s %d: %w", table, id, store.ErrNotFound)
	}
	return nil
}

func idFilter(id int64) url.Values {
	return url.Values{"id": {"eq." + strconv.FormatInt(id, 10)}}
}

// do executes a request against /rest/v1/{table} and decodes the response.
func (c *Client) do(ctx context.Context, method, table string, params url.Values, body any, prefer string, result any) error {
	u := c.baseURL + "/" + table
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if prefer != "" {
		req.Header.Set("Prefer", prefer)
	}

	start := time.Now()
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

	slog.Debug("postgrest request",
		"method", method,
		"table", table,
		"status", resp.StatusCode,
		"duration", time.Since(start).String(),
	)

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Status: resp.StatusCode}
		if jsonErr := json.Unmarshal(respBody, apiErr); jsonErr != nil {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return apiErr
	}

	if result != nil && len(respBody) > 0 {
		dec := json.NewDecoder(bytes.NewReader(respBody))
		dec.UseNumber()
		if err := dec.Decode(result); err != nil {
			return fmt.Errorf("decoding response: %w", err)
		}
	}

	return nil
}

// normalize turns decoded JSON objects into store.Rows, recursively.
func normalize(v any) any {
	switch t := v.(type) {
	case map[string]any:
		row := make(store.Row, len(t))
		for k, inner := range t {
			row[k] = normalize(inner)
		}
		return row
	case []any:
		for i, inner := range t {
			t[i] = normalize(inner)
		}
		return t
	}
	return v
}
