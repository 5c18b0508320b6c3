package payment

import (
	"context"
	"errors"

	"github.com/wichananm65/wealth-wheel-backend/internal/metrics"
	"github.com/wichananm65/wealth-wheel-backend/internal/user"
	"github.com/wichananm65/wealth-wheel-backend/internal/yoco"
	"go.uber.org/zap"
)

type Service struct {
	gateway       Gateway
	users         user.ServiceInterface
	amountInCents int64
	currency      string
	logger        *zap.Logger
}

type Option func(*Service)

func WithAmount(amountInCents int64, currency string) Option {
	return func(s *Service) {
		if amountInCents > 0 {
			s.amountInCents = amountInCents
		}
		if currency != "" {
			s.currency = currency
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func NewService(gateway Gateway, users user.ServiceInterface, opts ...Option) *Service {
	s := &Service{
		gateway:       gateway,
		users:         users,
		amountInCents: DefaultAmountInCents,
		currency:      DefaultCurrency,
		logger:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// VerifyAndFinalize charges the token and marks the user as paid.
//
// The user id is not looked up before charging. If the record store update
// fails after a successful charge the money stays collected and the failure
// is only logged.
func (s *Service) VerifyAndFinalize(ctx context.Context, input VerifyInput) (Result, error) {
	if input.Token == "" || input.UserID == "" {
		return Result{}, ErrMissingFields
	}

	charge, err := s.gateway.Charge(ctx, yoco.ChargeRequest{
		Token:         input.Token,
		AmountInCents: s.amountInCents,
		Currency:      s.currency,
	})
	if err != nil {
		metrics.PaymentChargesTotal.WithLabelValues("error").Inc()
		msg := msgVerifyFailed
		var apiErr *yoco.APIError
		if errors.As(err, &apiErr) && apiErr.DisplayMessage != "" {
			msg = apiErr.DisplayMessage
		}
		return Result{}, &Error{Message: msg, Err: err}
	}

	if charge.Status != yoco.StatusSuccessful {
		metrics.PaymentChargesTotal.WithLabelValues("declined").Inc()
		msg := charge.DisplayMessage
		if msg == "" {
			msg = msgDeclined
		}
		s.logger.Warn("charge not successful",
			zap.String("userId", input.UserID),
			zap.String("chargeId", charge.ID),
			zap.String("status", charge.Status))
		return Result{}, &Error{Message: msg}
	}
	metrics.PaymentChargesTotal.WithLabelValues("successful").Inc()

	if _, err := s.users.MarkPaid(ctx, input.UserID); err != nil {
		s.logger.Error("charge collected but user record not updated",
			zap.String("userId", input.UserID),
			zap.String("chargeId", charge.ID),
			zap.Error(err))
		return Result{}, &Error{Message: msgVerifyFailed, Err: err}
	}

	s.logger.Info("payment finalized", zap.String("userId", input.UserID), zap.String("chargeId", charge.ID))
	return Result{
		Status:   "success",
		Message:  "Payment successful and profile activated.",
		ChargeID: charge.ID,
	}, nil
}
