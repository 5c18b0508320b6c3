package airtable

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/wealth-wheel-backend/internal/metrics"
)

const DefaultAPIURL = "https://api.airtable.com/v0"

// Client talks to a single Airtable base. It holds no per-request state and
// is safe to share between handlers.
type Client struct {
	baseURL string
	apiKey  string
	http    *fiber.Client
}

type Record struct {
	ID          string          `json:"id"`
	CreatedTime string          `json:"createdTime,omitempty"`
	Fields      json.RawMessage `json:"fields"`
}

type ListOptions struct {
	FilterByFormula string
	MaxRecords      int
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset,omitempty"`
}

type writeRequest struct {
	Fields any `json:"fields"`
}

// APIError is returned for any non-2xx answer from Airtable.
type APIError struct {
	StatusCode int
	Type       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("airtable: %d %s: %s", e.StatusCode, e.Type, e.Message)
	}
	return fmt.Sprintf("airtable: %d %s", e.StatusCode, e.Type)
}

func NewClient(apiURL, baseID, apiKey string) *Client {
	if apiURL == "" {
		apiURL = DefaultAPIURL
	}
	return &Client{
		baseURL: strings.TrimRight(apiURL, "/") + "/" + url.PathEscape(baseID),
		apiKey:  apiKey,
		http:    &fiber.Client{},
	}
}

// ListRecords returns the first page of records of table matching opts.
func (c *Client) ListRecords(ctx context.Context, table string, opts ListOptions) ([]Record, error) {
	query := url.Values{}
	if opts.FilterByFormula != "" {
		query.Set("filterByFormula", opts.FilterByFormula)
	}
	if opts.MaxRecords > 0 {
		query.Set("maxRecords", strconv.Itoa(opts.MaxRecords))
	}

	endpoint := c.tableURL(table)
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var out listResponse
	if err := c.do(ctx, "list", c.http.Get(endpoint), nil, &out); err != nil {
		return nil, err
	}
	return out.Records, nil
}

func (c *Client) CreateRecord(ctx context.Context, table string, fields any) (Record, error) {
	var out Record
	err := c.do(ctx, "create", c.http.Post(c.tableURL(table)), writeRequest{Fields: fields}, &out)
	return out, err
}

// UpdateRecord patches only the given fields; other columns keep their values.
func (c *Client) UpdateRecord(ctx context.Context, table, id string, fields any) (Record, error) {
	var out Record
	endpoint := c.tableURL(table) + "/" + url.PathEscape(id)
	err := c.do(ctx, "update", c.http.Patch(endpoint), writeRequest{Fields: fields}, &out)
	return out, err
}

// EqualsFormula builds a filterByFormula expression matching field exactly.
func EqualsFormula(field, value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `'`, `\'`)
	return fmt.Sprintf("{%s} = '%s'", field, escaped)
}

func (c *Client) tableURL(table string) string {
	return c.baseURL + "/" + url.PathEscape(table)
}

func (c *Client) do(ctx context.Context, op string, agent *fiber.Agent, body any, out any) (err error) {
	defer func() { metrics.ObserveUpstream("airtable", op, err) }()

	if err := ctx.Err(); err != nil {
		fiber.ReleaseAgent(agent)
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	}

	agent.Set(fiber.HeaderAuthorization, "Bearer "+c.apiKey)
	if body != nil {
		agent.JSON(body)
	}

	code, respBody, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("airtable %s: %w", op, errors.Join(errs...))
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return parseAPIError(code, respBody)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("airtable %s: decode response: %w", op, err)
	}
	return nil
}

// parseAPIError understands both error shapes Airtable sends:
// {"error":"NOT_FOUND"} and {"error":{"type":"...","message":"..."}}.
func parseAPIError(code int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: code}

	var envelope struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil || len(envelope.Error) == 0 {
		apiErr.Type = strings.TrimSpace(string(body))
		return apiErr
	}

	var detail struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(envelope.Error, &detail); err == nil {
		apiErr.Type = detail.Type
		apiErr.Message = detail.Message
		return apiErr
	}

	var kind string
	if err := json.Unmarshal(envelope.Error, &kind); err == nil {
		apiErr.Type = kind
	}
	return apiErr
}
