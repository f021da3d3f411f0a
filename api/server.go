package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/OldStager01/driftwatch/api/handlers"
	"github.com/OldStager01/driftwatch/api/middleware"
	"github.com/OldStager01/driftwatch/api/websocket"
	_ "github.com/OldStager01/driftwatch/docs"
	"github.com/OldStager01/driftwatch/internal/buffer"
	"github.com/OldStager01/driftwatch/internal/events"
	"github.com/OldStager01/driftwatch/internal/metrics"
	"github.com/OldStager01/driftwatch/internal/model"
	"github.com/OldStager01/driftwatch/internal/monitor"
	"github.com/OldStager01/driftwatch/internal/reportstore"
	"github.com/OldStager01/driftwatch/pkg/config"
	"github.com/OldStager01/driftwatch/pkg/database"
)

// Deps are the collaborators the HTTP surface composes. The database is nil
// unless the audit sink is enabled.
type Deps struct {
	Classifier model.Classifier
	Buffer     *buffer.Buffer
	Scheduler  *monitor.Scheduler
	Store      *reportstore.Store
	Bus        *events.EventBus
	Publisher  *events.Publisher
	DB         *database.DB
}

type Server struct {
	router     *gin.Engine
	httpServer *http.Server
	config     *config.Config
	deps       Deps
	wsHub      *websocket.Hub
	wsBridge   *websocket.EventBridge
}

func NewServer(cfg *config.Config, deps Deps) *Server {
	switch cfg.App.Mode {
	case "production":
		gin.SetMode(gin.ReleaseMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.DebugMode)
	}

	router := gin.New()
	wsHub := websocket.NewHub(&cfg.WebSocket)

	s := &Server{
		router: router,
		config: cfg,
		deps:   deps,
		wsHub:  wsHub,
	}

	s.setupMiddleware()
	s.setupRoutes()

	// Start WebSocket hub
	go wsHub.Run()

	// Forward monitoring events to WebSocket clients
	if deps.Bus != nil {
		s.wsBridge = websocket.NewEventBridge(wsHub, deps.Bus.SubscribeAll())
		s.wsBridge.Start()
	}

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(gin.Recovery())
	s.router.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.TraceID())
	s.router.Use(middleware.RequestLogger())

	if s.config.Prometheus.Enabled {
		s.router.Use(middleware.Metrics())
	}

	maxRequestSize := s.config.Server.MaxRequestSize
	if maxRequestSize > 0 {
		s.router.Use(middleware.RequestSizeLimit(maxRequestSize))
	}

	rateLimiter := middleware.NewRateLimiter(s.config.Server.RateLimit, time.Minute)
	s.router.Use(middleware.RateLimit(rateLimiter))

	// Accepted triggers start full analysis runs; budget them separately.
	triggerLimiter := middleware.NewEndpointRateLimiter()
	triggerLimiter.AddEndpoint("/monitor/trigger_now", 10, time.Minute)
	triggerLimiter.AddEndpoint("/monitor/generate_report", 10, time.Minute)
	s.router.Use(triggerLimiter.Middleware())
}

func (s *Server) setupRoutes() {
	healthHandler := handlers.NewHealthHandler(s.deps.DB)
	predictHandler := handlers.NewPredictHandler(s.deps.Classifier, s.deps.Buffer, s.deps.Publisher)
	monitorHandler := handlers.NewMonitorHandler(s.deps.Scheduler, s.deps.Buffer, s.deps.Store)
	reportsHandler := handlers.NewReportsHandler(s.deps.Store)

	// Health
	s.router.GET("/health", healthHandler.Health)
	s.router.GET("/health/ready", healthHandler.Ready)
	s.router.GET("/health/live", healthHandler.Live)

	// Serving path
	s.router.POST("/predict", predictHandler.Predict)

	// Monitoring
	s.router.GET("/monitor/status", monitorHandler.Status)
	s.router.POST("/monitor/trigger_now", monitorHandler.TriggerNow)
	s.router.GET("/monitor/generate_report", monitorHandler.GenerateReport)

	// Stored reports
	s.router.GET("/reports/:name", reportsHandler.Get)

	// WebSocket event feed
	s.router.GET("/ws", websocket.ServeWebSocket(s.wsHub))

	// Prometheus
	if s.config.Prometheus.Enabled {
		s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	// Swagger
	s.router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Server.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  s.config.Server.ReadTimeout,
		WriteTimeout: s.config.Server.WriteTimeout,
		IdleTimeout:  s.config.Server.IdleTimeout,
	}

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	// Stop the event bridge first
	if s.wsBridge != nil {
		s.wsBridge.Stop()
	}

	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) WebSocketHub() *websocket.Hub {
	return s.wsHub
}
