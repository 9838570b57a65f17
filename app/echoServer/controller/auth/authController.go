package auth

import (
	"log/slog"
	"net/http"

	"circulation/app/echoServer/httperr"
	"circulation/app/echoServer/jwtx"
	"circulation/model"
	authsvc "circulation/service/auth"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

// POST /v1/auth/register
func (h *Controller) Register(c echo.Context) error {
	var req model.RegisterReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	u, token, err := h.Svc.Register(c.Request().Context(), req)
	if err != nil {
		return httperr.JSON(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"access_token": token, "user": u})
}

// POST /v1/auth/login
func (h *Controller) Login(c echo.Context) error {
	var req model.LoginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	u, token, err := h.Svc.Login(c.Request().Context(), req)
	if err != nil {
		return httperr.JSON(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"access_token": token, "user": u})
}

// POST /v1/auth/change-password/send-otp  (self)
func (h *Controller) SendPasswordOTP(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	if err := h.Svc.RequestPasswordChange(c.Request().Context(), uid); err != nil {
		return httperr.JSON(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "verification code sent"})
}

// POST /v1/auth/change-password  (self; verifies and applies in one step)
func (h *Controller) ChangePassword(c echo.Context) error {
	uid, err := jwtx.UserIDFromContext(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}
	var req ChangePasswordReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "validation error", "errors": err.Error()})
	}
	if err := h.Svc.ChangePassword(c.Request().Context(), uid, req.OTP, req.NewPassword); err != nil {
		return httperr.JSON(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "password changed"})
}
