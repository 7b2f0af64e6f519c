package api

import (
	"fmt"
	"net/http"

	"ovation/internal/cache"
	"ovation/internal/config"
	"ovation/internal/database"
	"ovation/internal/external"
	"ovation/internal/handlers"
	"ovation/internal/locks"
	"ovation/internal/logger"
	"ovation/internal/messaging"
	"ovation/internal/middleware"
	"ovation/internal/repository"
	"ovation/internal/search"
	"ovation/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server wires the HTTP API: storage, messaging, search, cache and the
// service layer behind a gin router.
type Server struct {
	router   *gin.Engine
	config   *config.Config
	db       *database.DB
	nats     *messaging.NATSClient
	redis    *cache.Client
	services *service.Services
	repos    *repository.Repositories
}

// NewServer builds a fully wired server. Postgres and NATS are required;
// Elasticsearch and Redis are optional, their absence degrades search to the
// catalog store and locking to an in-process registry.
func NewServer(cfg *config.Config) *Server {
	gin.SetMode(cfg.GinMode)

	db, err := database.Connect(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}

	if err := db.RunMigrations(); err != nil {
		logger.Fatal("Failed to run migrations", "error", err)
	}

	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		logger.Fatal("Failed to connect to NATS", "error", err)
	}

	redisClient, err := cache.NewClient(cfg.Redis)
	if err != nil {
		logger.Get().Warn("Redis unavailable, using in-process locks and no auth cache", "error", err)
		redisClient = nil
	}

	var locker locks.Locker
	if redisClient != nil {
		locker = locks.NewRedisLocker(redisClient.Redis(), cfg.LockTTL)
	} else {
		locker = locks.NewKeyedMutex()
	}

	var searcher service.Searcher
	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		logger.Get().Warn("Elasticsearch unavailable, search falls back to the catalog store", "error", err)
	} else {
		searcher = esClient
	}

	paymentClient := external.NewPaymentClient(cfg.Payment)

	repos := repository.NewRepositories(db)

	services := service.NewServices(repos, natsClient, searcher, paymentClient, locker, service.Options{
		Currency: cfg.Currency,
		QRSecret: cfg.QRSecret,
	})

	router := gin.New()
	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery())
	router.Use(middleware.CORS())
	router.Use(middleware.Logger())

	server := &Server{
		router:   router,
		config:   cfg,
		db:       db,
		nats:     natsClient,
		redis:    redisClient,
		services: services,
		repos:    repos,
	}

	server.setupRoutes()

	return server
}

func (s *Server) setupRoutes() {
	h := handlers.NewHandlers(s.services)

	api := s.router.Group("/api")
	api.Use(middleware.BasicAuth(s.repos.Users, s.redis))
	{
		events := api.Group("/events")
		{
			events.POST("", middleware.RequireRole(s.repos.Users, "admin", "organizer"), h.CreateEvent)
			events.GET("", h.ListEvents)
			events.GET("/:id", h.GetEvent)
			events.GET("/:id/analytics", h.GetEventAnalytics)
		}

		reservations := api.Group("/reservations")
		{
			reservations.POST("", h.InitiateReservation)
			reservations.POST("/confirm", h.ConfirmReservation)
		}

		api.POST("/bookings", h.BookDirect)

		tickets := api.Group("/tickets")
		{
			tickets.GET("", h.ListMyTickets)
			tickets.POST("/verify", h.VerifyTicket)
		}

		payments := api.Group("/payments")
		{
			payments.GET("/success", h.NotifyPaymentCompleted)
			payments.GET("/fail", h.NotifyPaymentFailed)
			payments.POST("/notifications", h.OnPaymentUpdates)
		}
	}

	s.router.GET("/health", s.healthCheck)
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

func (s *Server) healthCheck(c *gin.Context) {
	health := s.db.HealthCheck(c.Request.Context())
	status := http.StatusOK
	if health.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{
		"status":   health.Status,
		"service":  "ovation-api",
		"database": health,
	})
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	addr := fmt.Sprintf(":%s", s.config.Port)
	return s.router.Run(addr)
}

// GetRouter exposes the router for tests.
func (s *Server) GetRouter() *gin.Engine {
	return s.router
}

// Cleanup closes the server's connections.
func (s *Server) Cleanup() error {
	if s.nats != nil {
		if err := s.nats.Close(); err != nil {
			logger.Get().Error("Error closing NATS connection", "error", err)
		}
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			logger.Get().Error("Error closing Redis connection", "error", err)
		}
	}

	if s.db != nil {
		if err := s.db.Close(); err != nil {
			logger.Get().Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
