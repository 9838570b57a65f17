package authsvc

import (
	"context"

	notifyrepo "circulation/repository/notify"
	"circulation/repository/otp"
	"circulation/model"
	"circulation/util/apperr"
	"circulation/util/hash"
	jwtutil "circulation/util/jwt"
)

const tokenTTLHours = 24

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByID(ctx context.Context, id string) (*model.User, error)
	ByEmail(ctx context.Context, email string) (*model.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type OTPStore interface {
	Create(ctx context.Context, subject, purpose, payload string) (string, error)
	Verify(ctx context.Context, subject, purpose, code string) (string, error)
}

type Service interface {
	Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error)
	Login(ctx context.Context, req model.LoginReq) (*model.User, string, error)

	// RequestPasswordChange delivers an OTP to the account's address.
	RequestPasswordChange(ctx context.Context, userID string) error

	// ChangePassword verifies the code and applies the new password in a
	// single operation.
	ChangePassword(ctx context.Context, userID, code, newPassword string) error
}

type service struct {
	r      Repo
	otp    OTPStore
	n      notifyrepo.Notifier
	secret string
}

func New(r Repo, o OTPStore, n notifyrepo.Notifier, secret string) Service {
	return &service{r: r, otp: o, n: n, secret: secret}
}

func (s *service) Register(ctx context.Context, req model.RegisterReq) (*model.User, string, error) {
	hashed, err := hash.HashPassword(req.Password)
	if err != nil {
		return nil, "", err
	}

	u := &model.User{
		Email:        req.Email,
		Name:         req.Name,
		Role:         model.RoleMember,
		PasswordHash: hashed,
	}
	if err := s.r.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := jwtutil.Issue(s.secret, u.ID, string(u.Role), tokenTTLHours)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) Login(ctx context.Context, req model.LoginReq) (*model.User, string, error) {
	u, err := s.r.ByEmail(ctx, req.Email)
	if err != nil {
		if apperr.KindOf(err) == apperr.NotFound {
			return nil, "", apperr.New(apperr.Unauthorized, "invalid credentials")
		}
		return nil, "", err
	}
	if !hash.CheckPassword(u.PasswordHash, req.Password) {
		return nil, "", apperr.New(apperr.Unauthorized, "invalid credentials")
	}

	token, err := jwtutil.Issue(s.secret, u.ID, string(u.Role), tokenTTLHours)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

func (s *service) RequestPasswordChange(ctx context.Context, userID string) error {
	if s.otp == nil {
		return apperr.New(apperr.State, "password changes are not configured")
	}
	u, err := s.r.ByID(ctx, userID)
	if err != nil {
		return err
	}
	code, err := s.otp.Create(ctx, userID, otp.PurposePasswordChange, "")
	if err != nil {
		return err
	}
	return s.n.SendOTP(ctx, u.Email, code, otp.PurposePasswordChange)
}

func (s *service) ChangePassword(ctx context.Context, userID, code, newPassword string) error {
	if s.otp == nil {
		return apperr.New(apperr.State, "password changes are not configured")
	}
	if len(newPassword) < 6 {
		return apperr.New(apperr.Validation, "password must be at least 6 characters")
	}
	if _, err := s.otp.Verify(ctx, userID, otp.PurposePasswordChange, code); err != nil {
		return err
	}
	hashed, err := hash.HashPassword(newPassword)
	if err != nil {
		return err
	}
	return s.r.UpdatePassword(ctx, userID, hashed)
}
