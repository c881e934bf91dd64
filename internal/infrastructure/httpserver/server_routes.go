package httpserver

func (s *Server) setupRoutes() {
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/metrics", s.metricsEndpoint)

	api := s.echo.Group("/api/v1")
	api.POST("/register", s.register)
	api.POST("/verify/:token", s.verifyEmail)
	api.POST("/login", s.login)
	api.POST("/verify", s.verifyOTP)
	api.POST("/refresh", s.refresh)
}
