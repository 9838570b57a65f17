// service/auth/auth_service_test.go
package authsvc_test

import (
	"context"
	"testing"

	"circulation/model"
	"circulation/repository/memstore"
	"circulation/repository/otp"
	authsvc "circulation/service/auth"
	"circulation/util/apperr"
	jwtutil "circulation/util/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

const secret = "test_secret"

type captureNotifier struct{ email, code string }

func (n *captureNotifier) SendOTP(ctx context.Context, email, code, purpose string) error {
	n.email, n.code = email, code
	return nil
}
func (n *captureNotifier) BorrowOverdue(ctx context.Context, b *model.Borrow) error { return nil }

func newService(t *testing.T) (authsvc.Service, *memstore.Store, *captureNotifier) {
	t.Helper()
	mr := miniredis.RunT(t)
	store := memstore.New()
	n := &captureNotifier{}
	o := otp.NewWithClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	return authsvc.New(store.Users(), o, n, secret), store, n
}

func TestRegisterAndLogin(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()

	u, token, err := s.Register(ctx, model.RegisterReq{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "hunter22",
	})
	require.NoError(t, err)
	require.NotEmpty(t, u.ID)
	require.Equal(t, model.RoleMember, u.Role)

	claims, err := jwtutil.ParseAuth("Bearer "+token, secret)
	require.NoError(t, err)
	require.Equal(t, u.ID, claims["sub"])
	require.Equal(t, string(model.RoleMember), claims["role"])

	_, _, err = s.Login(ctx, model.LoginReq{Email: "alice@example.com", Password: "hunter22"})
	require.NoError(t, err)

	_, _, err = s.Login(ctx, model.LoginReq{Email: "alice@example.com", Password: "wrong"})
	require.True(t, apperr.Is(err, apperr.Unauthorized))

	_, _, err = s.Login(ctx, model.LoginReq{Email: "nobody@example.com", Password: "hunter22"})
	require.True(t, apperr.Is(err, apperr.Unauthorized))
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s, _, _ := newService(t)
	ctx := context.Background()

	req := model.RegisterReq{Email: "alice@example.com", Name: "Alice", Password: "hunter22"}
	_, _, err := s.Register(ctx, req)
	require.NoError(t, err)

	_, _, err = s.Register(ctx, req)
	require.True(t, apperr.Is(err, apperr.Conflict))
}

func TestChangePassword_OTPFlow(t *testing.T) {
	s, _, n := newService(t)
	ctx := context.Background()

	u, _, err := s.Register(ctx, model.RegisterReq{
		Email:    "alice@example.com",
		Name:     "Alice",
		Password: "hunter22",
	})
	require.NoError(t, err)

	require.NoError(t, s.RequestPasswordChange(ctx, u.ID))
	require.Equal(t, "alice@example.com", n.email)

	err = s.ChangePassword(ctx, u.ID, "000000", "newpassword")
	require.True(t, apperr.Is(err, apperr.Validation))

	require.NoError(t, s.ChangePassword(ctx, u.ID, n.code, "newpassword"))

	_, _, err = s.Login(ctx, model.LoginReq{Email: "alice@example.com", Password: "newpassword"})
	require.NoError(t, err)
	_, _, err = s.Login(ctx, model.LoginReq{Email: "alice@example.com", Password: "hunter22"})
	require.True(t, apperr.Is(err, apperr.Unauthorized))
}
