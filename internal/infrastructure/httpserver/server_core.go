package httpserver

import (
	"time"

	"github.com/clavisauth/clavis/internal/core/ports"
	customMiddleware "github.com/clavisauth/clavis/internal/infrastructure/httpserver/middleware"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	TLSCertFile  string
	TLSKeyFile   string
}

// CookieConfig controls the session cookies written on OTP verification and
// refresh. Max ages track the token TTLs.
type CookieConfig struct {
	Secure     bool
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

type ServerDeps struct {
	RegistrationService ports.RegistrationService
	AuthService         ports.AuthService
	HealthCheckers      []ports.HealthChecker
}

type Server struct {
	echo            *echo.Echo
	config          *ServerConfig
	cookies         *CookieConfig
	logger          *logrus.Logger
	registrationSvc ports.RegistrationService
	authSvc         ports.AuthService
	metrics         *customMiddleware.MetricsMiddleware
	healthCheckers  []ports.HealthChecker
}

func NewServer(serverConfig *ServerConfig, cookieConfig *CookieConfig, logger *logrus.Logger, deps ServerDeps) *Server {
	e := echo.New()
	e.HideBanner = true

	server := &Server{
		echo:            e,
		config:          serverConfig,
		cookies:         cookieConfig,
		logger:          logger,
		registrationSvc: deps.RegistrationService,
		authSvc:         deps.AuthService,
		healthCheckers:  deps.HealthCheckers,
		metrics:         customMiddleware.NewMetricsMiddleware(GetRequestsTotal(), GetRequestDuration()),
	}

	e.Validator = NewRequestValidator()
	e.HTTPErrorHandler = server.httpErrorHandler

	server.setupMiddleware()
	server.setupRoutes()

	return server
}
