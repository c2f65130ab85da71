package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/jobportal/jobboard-api/internal/api/metrics"
	"github.com/jobportal/jobboard-api/internal/core/ports"
)

const (
	resetAcceptedMsg   = "Password reset email sent"
	passwordChangedMsg = "Password changed successfully"
)

type AuthHandler struct {
	authService ports.AuthService
}

func NewAuthHandler(authService ports.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  authResponse
// @Failure      400   {object}  validationErrorResponse
// @Failure      409   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) (err error) {
	defer func() { metrics.AuthRequestsTotal.WithLabelValues("register", outcome(err)).Inc() }()

	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, toAuthResponse(res))
}

// Login authenticates a user and returns a session token.
//
// @Summary      Login
// @Description  requiresPasswordChange is true while the account runs on a mailed temporary password.
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  authResponse
// @Failure      400   {object}  validationErrorResponse
// @Failure      401   {object}  errorResponse
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) (err error) {
	defer func() { metrics.AuthRequestsTotal.WithLabelValues("login", outcome(err)).Inc() }()

	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.Login(c.Request().Context(), ports.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, toAuthResponse(res))
}

// Me returns the profile of the authenticated user.
//
// @Summary      Current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  meResponse
// @Failure      401  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) (err error) {
	defer func() { metrics.AuthRequestsTotal.WithLabelValues("me", outcome(err)).Inc() }()

	token, err := ctxToken(c)
	if err != nil {
		return err
	}

	profile, err := h.authService.CurrentUser(c.Request().Context(), token)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, meResponse{User: profile})
}

// ForgotPassword mails a temporary password. The response is the same whether
// or not the email belongs to an account.
//
// @Summary      Request a password reset
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        body  body      forgotPasswordRequest  true  "Account email"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  errorResponse
// @Failure      500   {object}  errorResponse
// @Router       /auth/forgot-password [post]
func (h *AuthHandler) ForgotPassword(c echo.Context) (err error) {
	defer func() {
		result := outcome(err)
		if err == nil {
			result = "accepted"
		}
		metrics.PasswordResetsTotal.WithLabelValues(result).Inc()
	}()

	var req forgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.authService.ForgotPassword(c.Request().Context(), req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Msg: resetAcceptedMsg})
}

// ChangePassword replaces the password of the authenticated user and returns
// a fresh token without the temporary-password flag.
//
// @Summary      Change password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "New password"
// @Success      200   {object}  changePasswordResponse
// @Failure      400   {object}  validationErrorResponse
// @Failure      401   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /auth/change-password [post]
func (h *AuthHandler) ChangePassword(c echo.Context) (err error) {
	defer func() { metrics.AuthRequestsTotal.WithLabelValues("change_password", outcome(err)).Inc() }()

	token, err := ctxToken(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := h.authService.ChangePassword(c.Request().Context(), token, req.NewPassword)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, changePasswordResponse{
		Msg:   passwordChangedMsg,
		Token: res.Token,
		User:  res.User,
	})
}

func toAuthResponse(res *ports.AuthResult) authResponse {
	return authResponse{
		Token:                  res.Token,
		User:                   res.User,
		RequiresPasswordChange: res.RequiresPasswordChange,
	}
}
