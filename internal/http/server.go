// README: API gateway; registers HTTP routes and delegates to module services.
package http

import (
	"time"

	"github.com/gin-gonic/gin"

	"askai/internal/http/handlers"
	"askai/internal/http/middleware"
	"askai/internal/modules/askai"
)

type ServerDeps struct {
	AskAI     *askai.Service
	Events    *askai.Publisher
	AuthToken string
	KeepAlive time.Duration
}

// NewRouter wires middleware and routes into a gin engine.
func NewRouter(deps ServerDeps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.Recovery(), middleware.Logging())

	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	api := r.Group("/api", middleware.Auth(deps.AuthToken))

	askHandler := handlers.NewAskAIHandler(deps.AskAI)
	api.POST("/askai/query", askHandler.Query)
	api.GET("/askai/history", askHandler.History)

	subHandler := handlers.NewSubscribeHandler(deps.Events, deps.KeepAlive)
	api.GET("/askai/subscribe", subHandler.Stream)

	return r
}
