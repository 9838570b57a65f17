package usersvc

import (
	"context"
	"strings"

	notifyrepo "circulation/repository/notify"
	"circulation/repository/otp"
	"circulation/model"
	"circulation/util/apperr"
)

type Repo interface {
	ByID(ctx context.Context, id string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context, q string) ([]model.User, error)
	UpdateProfile(ctx context.Context, id string, name, photo *string) error
	UpdateEmail(ctx context.Context, id, email string) error
	Delete(ctx context.Context, id string) error
}

// OTPStore issues and consumes the short-lived challenges gating
// email changes.
type OTPStore interface {
	Create(ctx context.Context, subject, purpose, payload string) (string, error)
	Verify(ctx context.Context, subject, purpose, code string) (string, error)
}

type Service interface {
	List(ctx context.Context, q string) ([]model.User, error)
	Detail(ctx context.Context, id string) (*model.User, error)
	UpdateProfile(ctx context.Context, id string, name, photo *string) (*model.User, error)

	// RequestEmailChange issues an OTP bound to the requested address and
	// delivers it through the notifier collaborator.
	RequestEmailChange(ctx context.Context, userID, newEmail string) error

	// ChangeEmail verifies the code and applies the bound address in one
	// operation; there is no separately observable "verified" state.
	ChangeEmail(ctx context.Context, userID, code string) (*model.User, error)

	Delete(ctx context.Context, id string) error
}

type service struct {
	r   Repo
	otp OTPStore
	n   notifyrepo.Notifier
}

func New(r Repo, o OTPStore, n notifyrepo.Notifier) Service {
	return &service{r: r, otp: o, n: n}
}

func (s *service) List(ctx context.Context, q string) ([]model.User, error) {
	return s.r.List(ctx, q)
}

func (s *service) Detail(ctx context.Context, id string) (*model.User, error) {
	return s.r.ByID(ctx, id)
}

func (s *service) UpdateProfile(ctx context.Context, id string, name, photo *string) (*model.User, error) {
	if name != nil && strings.TrimSpace(*name) == "" {
		return nil, apperr.New(apperr.Validation, "name cannot be empty")
	}
	if err := s.r.UpdateProfile(ctx, id, name, photo); err != nil {
		return nil, err
	}
	return s.r.ByID(ctx, id)
}

func (s *service) RequestEmailChange(ctx context.Context, userID, newEmail string) error {
	if s.otp == nil {
		return apperr.New(apperr.State, "email changes are not configured")
	}
	if _, err := s.r.ByID(ctx, userID); err != nil {
		return err
	}
	if _, err := s.r.ByEmail(ctx, newEmail); err == nil {
		return apperr.New(apperr.Conflict, "email already registered")
	} else if apperr.KindOf(err) != apperr.NotFound {
		return err
	}

	code, err := s.otp.Create(ctx, userID, otp.PurposeEmailChange, newEmail)
	if err != nil {
		return err
	}
	return s.n.SendOTP(ctx, newEmail, code, otp.PurposeEmailChange)
}

func (s *service) ChangeEmail(ctx context.Context, userID, code string) (*model.User, error) {
	if s.otp == nil {
		return nil, apperr.New(apperr.State, "email changes are not configured")
	}
	newEmail, err := s.otp.Verify(ctx, userID, otp.PurposeEmailChange, code)
	if err != nil {
		return nil, err
	}
	if err := s.r.UpdateEmail(ctx, userID, newEmail); err != nil {
		return nil, err
	}
	return s.r.ByID(ctx, userID)
}

func (s *service) Delete(ctx context.Context, id string) error {
	return s.r.Delete(ctx, id)
}
