package yoco

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/wichananm65/wealth-wheel-backend/internal/metrics"
)

const (
	DefaultChargesURL = "https://online.yoco.com/v1/charges/"

	StatusSuccessful = "successful"

	secretKeyHeader = "X-Auth-Secret-Key"
)

type Client struct {
	chargesURL string
	secretKey  string
	http       *fiber.Client
}

type ChargeRequest struct {
	Token         string `json:"token"`
	AmountInCents int64  `json:"amountInCents"`
	Currency      string `json:"currency"`
}

type ChargeResponse struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	DisplayMessage string `json:"displayMessage,omitempty"`
}

// APIError is a non-2xx answer from the charges endpoint. DisplayMessage is
// meant for the card holder and may be empty.
type APIError struct {
	StatusCode     int
	ErrorType      string
	DisplayMessage string
}

func (e *APIError) Error() string {
	if e.DisplayMessage != "" {
		return fmt.Sprintf("yoco: %d %s: %s", e.StatusCode, e.ErrorType, e.DisplayMessage)
	}
	return fmt.Sprintf("yoco: %d %s", e.StatusCode, e.ErrorType)
}

func NewClient(chargesURL, secretKey string) *Client {
	if chargesURL == "" {
		chargesURL = DefaultChargesURL
	}
	return &Client{
		chargesURL: chargesURL,
		secretKey:  secretKey,
		http:       &fiber.Client{},
	}
}

// Charge submits a one-time token for the given amount. The charge is not
// retried; the caller decides what a non-successful status means.
func (c *Client) Charge(ctx context.Context, req ChargeRequest) (resp ChargeResponse, err error) {
	defer func() { metrics.ObserveUpstream("yoco", "charge", err) }()

	if err := ctx.Err(); err != nil {
		return ChargeResponse{}, err
	}

	agent := c.http.Post(c.chargesURL)
	if deadline, ok := ctx.Deadline(); ok {
		agent.Timeout(time.Until(deadline))
	}
	agent.Set(secretKeyHeader, c.secretKey)
	agent.JSON(req)

	code, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return ChargeResponse{}, fmt.Errorf("yoco charge: %w", errors.Join(errs...))
	}
	if code < fiber.StatusOK || code >= fiber.StatusMultipleChoices {
		return ChargeResponse{}, parseAPIError(code, body)
	}
	if err := json.Unmarshal(body, &resp); err != nil {
		return ChargeResponse{}, fmt.Errorf("yoco charge: decode response: %w", err)
	}
	return resp, nil
}

func parseAPIError(code int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: code}
	var payload struct {
		ErrorType      string `json:"errorType"`
		DisplayMessage string `json:"displayMessage"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.ErrorType = payload.ErrorType
		apiErr.DisplayMessage = payload.DisplayMessage
	}
	return apiErr
}
