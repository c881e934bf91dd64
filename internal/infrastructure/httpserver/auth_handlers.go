package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/clavisauth/clavis/internal/core/domain/auth"
	"github.com/labstack/echo/v4"
)

const (
	accessTokenCookie  = "accessToken"
	refreshTokenCookie = "refreshToken"
)

// login runs the credential step of the login flow and stages the OTP. No
// cookies are set here; only OTP verification produces a session.
func (s *Server) login(c echo.Context) error {
	var req auth.LoginRequest
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

	if err := s.authSvc.Login(c.Request().Context(), &req, c.RealIP()); err != nil {
		switch {
		case errors.Is(err, auth.ErrThrottled):
			return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
				"success": false,
				"message": "Too many requests, try again later",
			})
		case errors.Is(err, auth.ErrInvalidCredential):
			return c.JSON(http.StatusBadRequest, map[string]string{
				"message": "Invalid credential!",
			})
		default:
			return err
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "If your email is valid, an OTP has been sent. It will be valid for 5 minutes.",
	})
}

// verifyOTP exchanges the staged OTP for a session and sets both token
// cookies. This is the only handler that issues cookies on login.
func (s *Server) verifyOTP(c echo.Context) error {
	var req auth.VerifyOTPRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	req.Normalize()

	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{
			"message": "Please provide all details",
		})
	}

	verified, tokens, err := s.authSvc.VerifyOTP(c.Request().Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrTokenExpired):
			return c.JSON(http.StatusBadRequest, map[string]string{
				"message": "OTP expired!",
			})
		case errors.Is(err, auth.ErrInvalidOTP):
			return c.JSON(http.StatusBadRequest, map[string]string{
				"message": "Invalid OTP!",
			})
		case errors.Is(err, auth.ErrInvalidCredential):
			return c.JSON(http.StatusBadRequest, map[string]string{
				"message": "Invalid credential!",
			})
		default:
			return err
		}
	}

	s.setAuthCookies(c, tokens.AccessToken, tokens.RefreshToken)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"message": fmt.Sprintf("Welcome %s", verified.Name),
		"user":    verified.Public(),
	})
}

// refresh rotates the session from the refresh cookie.
func (s *Server) refresh(c echo.Context) error {
	cookie, err := c.Cookie(refreshTokenCookie)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{
			"message": "Invalid refresh token",
		})
	}

	_, tokens, err := s.authSvc.Refresh(c.Request().Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidRefreshToken) {
			return c.JSON(http.StatusUnauthorized, map[string]string{
				"message": "Invalid refresh token",
			})
		}
		return err
	}

	s.setAuthCookies(c, tokens.AccessToken, tokens.RefreshToken)

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Session refreshed",
	})
}

// setAuthCookies attaches both tokens with their distinct lifetimes and
// same-site policies. The access cookie is strict; the refresh cookie is
// cross-site-permissive so browser clients on another origin can refresh.
func (s *Server) setAuthCookies(c echo.Context, accessToken, refreshToken string) {
	c.SetCookie(&http.Cookie{
		Name:     accessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(s.cookies.AccessTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cookies.Secure,
		SameSite: http.SameSiteStrictMode,
	})

	c.SetCookie(&http.Cookie{
		Name:     refreshTokenCookie,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(s.cookies.RefreshTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.cookies.Secure,
		SameSite: http.SameSiteNoneMode,
	})
}
