package http

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	fiberSwagger "github.com/swaggo/fiber-swagger"
	"go.uber.org/zap"

	"github.com/parking-finder/internal/config"
	"github.com/parking-finder/internal/delivery/http/handler"
	"github.com/parking-finder/internal/delivery/http/middleware"
	apperrors "github.com/parking-finder/internal/pkg/errors"
	"github.com/parking-finder/internal/pkg/utils"
)

// Route - запись таблицы маршрутов. Закрытые маршруты проходят RequireAuth,
// RateLimited - через лимитер попыток входа.
type Route struct {
	Method      string
	Path        string
	Public      bool
	RateLimited bool
	Handler     fiber.Handler
}

// Server - HTTP сервер на основе Fiber
type Server struct {
	app    *fiber.App
	config *config.Config
	logger *zap.Logger

	authenticator middleware.Authenticator

	// Handlers
	authHandler    *handler.AuthHandler
	parkingHandler *handler.ParkingHandler
	healthHandler  *handler.HealthHandler
}

// NewServer - создание нового HTTP сервера
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	authenticator middleware.Authenticator,
	authHandler *handler.AuthHandler,
	parkingHandler *handler.ParkingHandler,
	healthHandler *handler.HealthHandler,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "Parking Finder",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
		ErrorHandler: customErrorHandler(logger),
	})

	s := &Server{
		app:            app,
		config:         cfg,
		logger:         logger,
		authenticator:  authenticator,
		authHandler:    authHandler,
		parkingHandler: parkingHandler,
		healthHandler:  healthHandler,
	}

	s.setupMiddlewares()
	s.setupRoutes()

	return s
}

// setupMiddlewares - настройка middleware
func (s *Server) setupMiddlewares() {
	s.app.Use(middleware.Logger(s.logger))
	s.app.Use(middleware.Recovery(s.logger))
	s.app.Use(middleware.CORS(s.config.Server.CORSOrigins))
	s.app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))
}

// Routes - таблица маршрутов API. Статические пути идут раньше /:id.
func (s *Server) Routes() []Route {
	p := s.parkingHandler
	return []Route{
		{Method: fiber.MethodGet, Path: "/api/health", Public: true, Handler: s.healthHandler.Health},

		{Method: fiber.MethodPost, Path: "/api/user", Public: true, RateLimited: true, Handler: s.authHandler.Register},
		{Method: fiber.MethodPost, Path: "/api/login", Public: true, RateLimited: true, Handler: s.authHandler.Login},

		{Method: fiber.MethodGet, Path: "/api/parking/search", Public: s.config.Auth.PublicSearch, Handler: p.Search},
		{Method: fiber.MethodGet, Path: "/api/parking/reserved", Handler: p.Reserved},
		{Method: fiber.MethodPost, Path: "/api/parking/reserve", Handler: p.Reserve},
		{Method: fiber.MethodGet, Path: "/api/parking", Handler: p.List},
		{Method: fiber.MethodGet, Path: "/api/parking/:id", Handler: p.GetByID},

		{Method: fiber.MethodPost, Path: "/api/parking", Handler: p.ReadOnly},
		{Method: fiber.MethodPost, Path: "/api/parking/:id", Handler: p.ReadOnly},
		{Method: fiber.MethodPut, Path: "/api/parking/:id", Handler: p.ReadOnly},
		{Method: fiber.MethodPatch, Path: "/api/parking/:id", Handler: p.ReadOnly},
		{Method: fiber.MethodDelete, Path: "/api/parking/:id", Handler: p.ReadOnly},
	}
}

// setupRoutes - регистрация таблицы маршрутов и swagger
func (s *Server) setupRoutes() {
	s.app.Get("/swagger/*", fiberSwagger.WrapHandler)

	requireAuth := middleware.RequireAuth(s.authenticator)
	limit := middleware.RateLimit(s.config.RateLimit.AuthRPS, s.config.RateLimit.AuthBurst)

	for _, r := range s.Routes() {
		handlers := make([]fiber.Handler, 0, 3)
		if r.RateLimited {
			handlers = append(handlers, limit)
		}
		if !r.Public {
			handlers = append(handlers, requireAuth)
		}
		handlers = append(handlers, r.Handler)

		s.app.Add(r.Method, r.Path, handlers...)
	}
}

// App - доступ к fiber.App для тестов
func (s *Server) App() *fiber.App {
	return s.app
}

// Start - запуск HTTP сервера
func (s *Server) Start() error {
	addr := s.config.GetServerAddr()
	s.logger.Info("Starting HTTP server", zap.String("address", addr))
	return s.app.Listen(addr)
}

// Shutdown - graceful shutdown HTTP сервера
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down HTTP server")
	return s.app.ShutdownWithContext(ctx)
}

// customErrorHandler - ошибки fiber (404 маршрута, 405, паники) в формате API
func customErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code := "INTERNAL_SERVER_ERROR"
			switch fe.Code {
			case fiber.StatusNotFound:
				code = "NOT_FOUND"
			case fiber.StatusMethodNotAllowed:
				code = "METHOD_NOT_ALLOWED"
			case fiber.StatusBadRequest:
				code = "INVALID_ARGUMENT"
			}
			return utils.SendError(c, apperrors.New(code, fe.Message, fe.Code))
		}

		logger.Error("HTTP Error",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return utils.SendError(c, err)
	}
}
