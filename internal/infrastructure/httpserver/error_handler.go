package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// httpErrorHandler is the last line: business-rule failures are handled in
// the handlers with specific 4xx codes before reaching here, so anything
// unhandled collapses into a uniform 500 with the detail logged, not leaked.
func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if he, ok := err.(*echo.HTTPError); ok {
		msg := he.Message
		if m, ok := msg.(string); ok {
			msg = map[string]interface{}{"success": false, "message": m}
		}
		if err := c.JSON(he.Code, msg); err != nil && s.logger != nil {
			s.logger.WithError(err).Error("failed to write error response")
		}
		return
	}

	if s.logger != nil {
		s.logger.WithError(err).WithField("path", c.Path()).Error("unhandled request error")
	}

	_ = c.JSON(http.StatusInternalServerError, map[string]interface{}{
		"success": false,
		"message": "Internal Server Error",
	})
}
