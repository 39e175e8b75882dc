package http

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"warbler/internal/app"
	"warbler/internal/bootstrap"
	"warbler/internal/monitoring"
	"warbler/internal/transport/http/handler"
	"warbler/internal/transport/http/middleware"
)

// Dependencies is everything the router needs from the running process.
type Dependencies struct {
	GinMode     string
	JWTSecret   string
	Services    *app.Services
	Revocations middleware.RevocationChecker
	Health      *handler.HealthHandler
	Log         logrus.FieldLogger
}

func NewRouter(a *bootstrap.App) *gin.Engine {
	health := handler.NewHealthHandler(a.Config.App.Name, a.Config.App.Env, a.StartedAt, map[string]handler.HealthCheck{
		"database": func(ctx context.Context) error {
			sqlDB, err := a.DB.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
		"redis": func(ctx context.Context) error {
			return a.Redis.Ping(ctx).Err()
		},
		"rabbitmq": func(ctx context.Context) error {
			if a.MQConn == nil || a.MQConn.IsClosed() {
				return errors.New("connection closed")
			}
			return nil
		},
	})

	return NewEngine(Dependencies{
		GinMode:     a.Config.App.GinMode,
		JWTSecret:   a.Config.Auth.JWTSecret,
		Services:    a.Services,
		Revocations: a.Revocations,
		Health:      health,
		Log:         a.Log,
	})
}

func NewEngine(deps Dependencies) *gin.Engine {
	gin.SetMode(deps.GinMode)
	router := gin.New()
	router.Use(gin.Recovery(), monitoring.Instrument())
	if deps.Log != nil {
		router.Use(middleware.RequestLogger(deps.Log))
	}

	if deps.Health != nil {
		router.GET("/healthz", deps.Health.Check)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	requireAuth := middleware.AuthJWT(deps.JWTSecret, deps.Revocations)
	optionalAuth := middleware.OptionalAuthJWT(deps.JWTSecret, deps.Revocations)

	authHandler := handler.NewAuthHandler(deps.Services.Auth)
	userHandler := handler.NewUserHandler(deps.Services)
	followHandler := handler.NewFollowHandler(deps.Services.Follows)
	messageHandler := handler.NewMessageHandler(deps.Services.Messages, deps.Services.Likes)
	feedHandler := handler.NewFeedHandler(deps.Services.Feed)

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/login", authHandler.Login)
	authGroup.POST("/logout", requireAuth, authHandler.Logout)
	authGroup.GET("/me", requireAuth, authHandler.Me)

	userGroup := v1.Group("/users")
	userGroup.GET("", userHandler.Search)
	userGroup.PATCH("/me", requireAuth, userHandler.UpdateMe)
	userGroup.DELETE("/me", requireAuth, userHandler.DeleteMe)
	userGroup.GET("/:id", optionalAuth, userHandler.Get)
	userGroup.GET("/:id/followers", userHandler.Followers)
	userGroup.GET("/:id/following", userHandler.Following)
	userGroup.GET("/:id/likes", userHandler.Likes)
	userGroup.GET("/:id/messages", userHandler.Messages)
	userGroup.GET("/:id/stats", requireAuth, userHandler.Stats)
	userGroup.POST("/:id/follow", requireAuth, followHandler.Follow)
	userGroup.DELETE("/:id/follow", requireAuth, followHandler.Unfollow)

	messageGroup := v1.Group("/messages")
	messageGroup.POST("", requireAuth, messageHandler.Post)
	messageGroup.GET("/:id", messageHandler.Get)
	messageGroup.DELETE("/:id", requireAuth, messageHandler.Delete)
	messageGroup.POST("/:id/like", requireAuth, messageHandler.ToggleLike)

	v1.GET("/feed", optionalAuth, feedHandler.Home)
	v1.GET("/timeline/public", feedHandler.Public)

	return router
}
