package server

import (
	"log/slog"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/brightclass/aigateway/internal/auth"
	"github.com/brightclass/aigateway/internal/handlers"
)

type Server struct {
	echo *echo.Echo
	addr string
}

type requestValidator struct {
	validate *validator.Validate
}

func (v *requestValidator) Validate(i interface{}) error {
	return v.validate.Struct(i)
}

func shouldSkipJWT(path string) bool {
	return path == "/ping" || path == "/health"
}

func NewServer(log *slog.Logger, addr string, jwtSecret string, pingHandler *handlers.PingHandler, tutorHandler *handlers.TutorHandler, usageHandler *handlers.UsageHandler) *Server {
	if addr == "" {
		addr = ":8080"
	}
	if log == nil {
		log = slog.Default()
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = &requestValidator{validate: validator.New()}
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus: true,
		LogURI:    true,
		LogMethod: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency),
				slog.String("remote_ip", c.RealIP()),
			)
			return nil
		},
	}))
	e.Use(auth.JWTMiddleware(jwtSecret, func(c echo.Context) bool {
		return shouldSkipJWT(c.Request().URL.Path)
	}))

	if pingHandler != nil {
		pingHandler.Register(e)
	}
	if tutorHandler != nil {
		tutorHandler.Register(e)
	}
	if usageHandler != nil {
		usageHandler.Register(e)
	}

	return &Server{
		echo: e,
		addr: addr,
	}
}

func (s *Server) Start() error {
	return s.echo.Start(s.addr)
}
