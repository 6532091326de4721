package api

import (
	"net/http"

	callHandler "outbound-caller/internal/outbound/handler"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type API struct {
	router      *gin.RouterGroup
	callHandler callHandler.Handler
	auth        []gin.HandlerFunc
}

// New wires the routes. auth, when given, guards every /api route.
func New(router *gin.RouterGroup, callHandler callHandler.Handler, auth ...gin.HandlerFunc) API {
	return API{
		router:      router,
		callHandler: callHandler,
		auth:        auth,
	}
}

func (a *API) RegisterRoutes() {
	a.Health()
	a.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	apiGroup := a.router.Group("/api", a.auth...)
	{
		apiGroup.POST("/calls", a.callHandler.HandlePlaceCall)
		apiGroup.GET("/personas", a.callHandler.HandleListPersonas)
	}
}

func (a *API) Health() {
	a.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "ok"})
	})
	a.router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
}
