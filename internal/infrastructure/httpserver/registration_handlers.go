package httpserver

import (
	"errors"
	"net/http"

	"github.com/clavisauth/clavis/internal/core/domain/auth"
	"github.com/clavisauth/clavis/internal/core/domain/user"
	"github.com/labstack/echo/v4"
)

// register starts the registration flow. The success response is the same
// whether or not the email already has an account.
func (s *Server) register(c echo.Context) error {
	var req user.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req.Normalize()

	if err := c.Validate(&req); err != nil {
		if errs := ValidationErrorMap(err); errs != nil {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"message": "Validation failed",
				"errors":  errs,
			})
		}
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.registrationSvc.Register(c.Request().Context(), &req, c.RealIP()); err != nil {
		if errors.Is(err, auth.ErrThrottled) {
			return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
				"success": false,
				"message": "Too many requests, try again later",
			})
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "If your email is valid, a verification link has been sent. It will expire in 5 minutes.",
	})
}

// verifyEmail consumes the emailed verification token and creates the
// durable user.
func (s *Server) verifyEmail(c echo.Context) error {
	token := c.Param("token")
	if token == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "Verification token is required.",
		})
	}

	created, err := s.registrationSvc.Verify(c.Request().Context(), token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return c.JSON(http.StatusBadRequest, map[string]string{
				"message": "Verification link is expired.",
			})
		}
		if errors.Is(err, user.ErrEmailTaken) {
			return c.JSON(http.StatusBadRequest, map[string]interface{}{
				"success": false,
				"message": "User already exists",
			})
		}
		return err
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": "Email verified successfully! Your account has been created.",
		"user":    created.Public(),
	})
}
