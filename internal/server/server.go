package server

import (
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/drillbot/internal/auth"
	"github.com/example/drillbot/internal/config"
	"github.com/example/drillbot/internal/ratelimit"
)

// Server is the HTTP front of the drill service
type Server struct {
	app *fiber.App
	cfg *config.Config
}

// Deps bundles the services the HTTP layer exposes
type Deps struct {
	Tokens    *auth.Manager
	Users     UserStore
	Sessions  SessionBuilder
	Stats     StatsProvider
	Questions QuestionGetter
	Hints     HintProvider
	SignIn    *ratelimit.Limiter
	Register  *ratelimit.Limiter
}

// New assembles the fiber app with its middleware chain and routes
func New(cfg *config.Config, deps Deps) *Server {
	app := fiber.New(fiber.Config{
		AppName:      "drillbot",
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(logger.New())

	prometheus := fiberprometheus.New("drillbot")
	prometheus.RegisterAt(app, "/metrics")
	app.Use(prometheus.Middleware)

	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: "GET,POST,PATCH,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	throttle := newIPThrottle(cfg.APIRateLimit, cfg.APIBurst)
	app.Use("/api", throttle.middleware)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	authHandler := NewAuthHandler(deps.Users, deps.Tokens, deps.SignIn, deps.Register)
	sessionHandler := NewSessionHandler(deps.Sessions)
	statsHandler := NewStatsHandler(deps.Stats)
	hintHandler := NewHintHandler(deps.Questions, deps.Hints)

	authed := RequireAuth(deps.Tokens)

	api := app.Group("/api")
	api.Post("/auth/register", authHandler.SignUp)
	api.Post("/auth/login", authHandler.SignIn)
	api.Get("/auth/me", authed, authHandler.Me)
	api.Get("/session", authed, sessionHandler.GetSession)
	api.Post("/session/results", authed, sessionHandler.SubmitResults)
	api.Get("/stats", authed, statsHandler.GetStats)
	api.Get("/questions/:id/hint", authed, hintHandler.GetHint)
	api.Patch("/notifications", authed, authHandler.UpdateNotifications)

	return &Server{app: app, cfg: cfg}
}

// Listen serves HTTP on the configured port until Shutdown is called
func (s *Server) Listen() error {
	return s.app.Listen(":" + s.cfg.Port)
}

// Shutdown stops accepting new connections and drains in-flight requests
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
