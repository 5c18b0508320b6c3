package user

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// ServiceInterface is what other packages need from the user service.
type ServiceInterface interface {
	Register(ctx context.Context, input RegisterInput) (User, error)
	MarkPaid(ctx context.Context, id string) (User, error)
}

type RegisterInput struct {
	Name    string
	Email   string
	Phone   string
	RefCode string
}

type Service struct {
	repo   Repository
	logger *zap.Logger
}

var _ ServiceInterface = (*Service)(nil)

func NewService(repo Repository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Register creates the user for input.Email, or refreshes the existing
// unpaid record for that email. A paid record is never touched.
func (s *Service) Register(ctx context.Context, input RegisterInput) (User, error) {
	if input.isMissingRequiredFields() {
		return User{}, ErrMissingFields
	}

	var referredBy []string
	if input.RefCode != "" {
		referrer, err := s.repo.FindByRefCode(ctx, input.RefCode)
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrInvalidReferral
		}
		if err != nil {
			return User{}, err
		}
		referredBy = []string{referrer.ID}
	}

	changes := Changes{
		Name:       input.Name,
		Email:      input.Email,
		Phone:      input.Phone,
		Status:     StatusInvited,
		ReferredBy: referredBy,
	}

	existing, err := s.repo.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		if existing.IsPaid() {
			return User{}, ErrAlreadyPaid
		}
		updated, err := s.repo.Update(ctx, existing.ID, changes)
		if err != nil {
			return User{}, err
		}
		s.logger.Info("user registration refreshed", zap.String("userId", updated.ID), zap.Bool("referred", referredBy != nil))
		return updated, nil
	case errors.Is(err, ErrNotFound):
		created, err := s.repo.Create(ctx, changes)
		if err != nil {
			return User{}, err
		}
		s.logger.Info("user registered", zap.String("userId", created.ID), zap.Bool("referred", referredBy != nil))
		return created, nil
	default:
		return User{}, err
	}
}

// MarkPaid flips the record to Paid without checking that it exists first;
// the record store reports unknown ids.
func (s *Service) MarkPaid(ctx context.Context, id string) (User, error) {
	return s.repo.Update(ctx, id, Changes{Status: StatusPaid})
}

func (in RegisterInput) isMissingRequiredFields() bool {
	return in.Name == "" || in.Email == "" || in.Phone == ""
}
