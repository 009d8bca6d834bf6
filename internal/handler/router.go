package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"chairtime/internal/handler/api"
	"chairtime/internal/handler/middleware"
	"chairtime/internal/pkg/config"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

func NewRouter(
	engine *gin.Engine,
	cfg config.Config,
	bookingHandler *api.BookingHandler,
	slotHandler *api.SlotHandler,
	chatHandler *api.ChatHandler,
	notificationHandler *api.NotificationHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	setupMiddleware(engine, cfg)
	setupRoutes(engine, bookingHandler, slotHandler, chatHandler, notificationHandler, authMiddleware)
}

func setupMiddleware(engine *gin.Engine, cfg config.Config) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery())
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS))
	engine.Use(middleware.LoggingMiddleware(nil, cfg.Log))
	engine.Use(middleware.MetricsMiddleware())
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(
	engine *gin.Engine,
	bookingHandler *api.BookingHandler,
	slotHandler *api.SlotHandler,
	chatHandler *api.ChatHandler,
	notificationHandler *api.NotificationHandler,
	authMiddleware *middleware.AuthMiddleware,
) {
	engine.GET("/health", healthCheck)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	apiGroup.Use(authMiddleware.RequireAuth())
	{
		appointments := apiGroup.Group("/appointments")
		{
			addRoutes(appointments, []route{
				{Method: http.MethodPost, Path: "", Handler: bookingHandler.CreateBooking},
				{Method: http.MethodPost, Path: "/:id/decision", Handler: bookingHandler.Decide},
				{Method: http.MethodPost, Path: "/:id/complete", Handler: bookingHandler.Complete},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: bookingHandler.Cancel},
				{Method: http.MethodPost, Path: "/:id/messages", Handler: chatHandler.SendMessage},
				{Method: http.MethodGet, Path: "/:id/messages", Handler: chatHandler.ListMessages},
				{Method: http.MethodPost, Path: "/:id/messages/read", Handler: chatHandler.MarkRead},
			})
		}

		addRoutes(apiGroup, []route{
			{Method: http.MethodGet, Path: "/stores/:id/slots", Handler: slotHandler.WeeklySlots},
			{Method: http.MethodGet, Path: "/chats", Handler: chatHandler.ListThreads},
			{Method: http.MethodGet, Path: "/notifications", Handler: notificationHandler.List},
			{Method: http.MethodGet, Path: "/notifications/unread-count", Handler: notificationHandler.UnreadCount},
			{Method: http.MethodPost, Path: "/notifications/:id/read", Handler: notificationHandler.MarkRead},
		})
	}
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}
