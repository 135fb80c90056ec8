package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const defaultBaseURL = "https://api.airtable.com/v0"

// Client is a minimal Airtable REST client scoped to one base.
type Client struct {
	apiKey  string
	baseID  string
	baseURL string
	httpc   *http.Client
}

// NewClient returns a client for the given base. apiKey and baseID must be
// non-empty; that is checked at startup, not here.
func NewClient(apiKey, baseID string) *Client {
	return &Client{
		apiKey:  apiKey,
		baseID:  baseID,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURL overrides the API endpoint (tests).
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = u
	return c
}

// CreateRecord creates a single record in the given table and returns its
// assigned record ID.
func (c *Client) CreateRecord(ctx context.Context, tableID string, fields Fields) (string, error) {
	payload := recordsEnvelope{Records: []Record{{Fields: fields}}}
	var out recordsEnvelope
	if err := c.do(ctx, http.MethodPost, c.tableURL(tableID), payload, &out); err != nil {
		return "", err
	}
	if len(out.Records) == 0 {
		return "", fmt.Errorf("airtable: create returned no records")
	}
	return out.Records[0].ID, nil
}

// UpdateRecord applies a partial update to one record and returns its ID.
func (c *Client) UpdateRecord(ctx context.Context, tableID, recordID string, fields Fields) (string, error) {
	payload := recordsEnvelope{Records: []Record{{ID: recordID, Fields: fields}}}
	var out recordsEnvelope
	if err := c.do(ctx, http.MethodPatch, c.tableURL(tableID), payload, &out); err != nil {
		return "", err
	}
	if len(out.Records) == 0 {
		return "", fmt.Errorf("airtable: update returned no records")
	}
	return out.Records[0].ID, nil
}

// ListRecords fetches records from a table, following pagination offsets
// until done or MaxRecords is reached server-side.
func (c *Client) ListRecords(ctx context.Context, tableID string, opts ListOptions) ([]Record, error) {
	var records []Record
	offset := ""
	for {
		u := c.tableURL(tableID) + "?" + opts.query(offset)
		var out recordsEnvelope
		if err := c.do(ctx, http.MethodGet, u, nil, &out); err != nil {
			return nil, err
		}
		records = append(records, out.Records...)
		if out.Offset == "" {
			break
		}
		offset = out.Offset
	}
	return records, nil
}

func (o ListOptions) query(offset string) string {
	q := url.Values{}
	for _, f := range o.Fields {
		q.Add("fields[]", f)
	}
	if o.FilterByFormula != "" {
		q.Set("filterByFormula", o.FilterByFormula)
	}
	for i, s := range o.Sort {
		q.Set(fmt.Sprintf("sort[%d][field]", i), s.Field)
		q.Set(fmt.Sprintf("sort[%d][direction]", i), s.Direction)
	}
	if o.MaxRecords > 0 {
		q.Set("maxRecords", strconv.Itoa(o.MaxRecords))
	}
	if offset != "" {
		q.Set("offset", offset)
	}
	return q.Encode()
}

func (c *Client) tableURL(tableID string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, c.baseID, url.PathEscape(tableID))
}

// do issues one request and decodes the response. Non-2xx responses become
// *APIError carrying the status code.
func (c *Client) do(ctx context.Context, method, rawURL string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		buf, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal payload: %w", err)
		}
		body = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("airtable request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func decodeAPIError(status int, raw []byte) *APIError {
	var envelope struct {
		Error struct {
			Type    string `json:"type"`
			Message string `json:"message"`
		} `json:"error"`
	}
	apiErr := &APIError{StatusCode: status}
	if err := json.Unmarshal(raw, &envelope); err == nil {
		apiErr.Type = envelope.Error.Type
		apiErr.Message = envelope.Error.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}
