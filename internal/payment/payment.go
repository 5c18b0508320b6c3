package payment

import (
	"context"
	"errors"

	"github.com/wichananm65/wealth-wheel-backend/internal/yoco"
)

const (
	DefaultAmountInCents int64 = 20000
	DefaultCurrency            = "ZAR"

	msgMissingInput = "Payment token and user ID are required."
	msgDeclined     = "Payment failed at gateway."
	msgVerifyFailed = "Payment verification failed."
)

var ErrMissingFields = errors.New("payment token and user ID are required")

// Gateway is the card-charging capability the service depends on.
type Gateway interface {
	Charge(ctx context.Context, req yoco.ChargeRequest) (yoco.ChargeResponse, error)
}

type VerifyInput struct {
	Token  string
	UserID string
}

type Result struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	ChargeID string `json:"-"`
}

// Error is a failed payment. Message is safe to show to the card holder.
type Error struct {
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}
