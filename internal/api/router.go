package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"feeltrack/pkg/otel"
	"feeltrack/pkg/trace"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *AuthHandler,
	userHandler *UserHandler,
	conversationHandler *ConversationHandler,
	tokens TokenParser,
	db Pinger,
	logger *zap.Logger,
) *Router {
	r := gin.New()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AddAllowHeaders("Authorization", trace.HeaderName)
	corsConfig.ExposeHeaders = []string{trace.HeaderName}

	r.Use(
		gin.Recovery(),
		cors.New(corsConfig),
		TraceMiddleware(),
		otel.GinMiddleware(),
		MetricsMiddleware(),
		LoggerMiddleware(logger),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().Format(time.RFC3339)})
	})
	r.HEAD("/health", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db_not_ready"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)

	// callers identify themselves with a bearer token or, failing that, an explicit user id
	app := r.Group("/")
	app.Use(AuthMiddleware(tokens))
	{
		app.GET("/users/:user_id", userHandler.Get)
		app.DELETE("/users/:user_id", userHandler.Delete)
		app.GET("/users/:user_id/preferences", userHandler.GetPreferences)
		app.PUT("/users/:user_id/preferences", userHandler.UpdatePreferences)

		app.GET("/users/:user_id/conversations", conversationHandler.List)
		app.POST("/users/:user_id/conversations", conversationHandler.Create)
		app.GET("/conversations/:conversation_id/messages", conversationHandler.Messages)
		app.POST("/conversations/message", conversationHandler.Send)

		app.GET("/users/:user_id/supportive-messages", conversationHandler.ListSupportive)
		app.PUT("/supportive-messages/:message_id/read", conversationHandler.MarkRead)
	}

	return &Router{Engine: r}
}
