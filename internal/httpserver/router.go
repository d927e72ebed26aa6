package httpserver

import (
	"errors"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"ssactivewear-mcp/internal/tools"
)

const requestIDHeader = "X-Request-ID"

// Deps are the collaborators the routes dispatch to.
type Deps struct {
	Catalog tools.Catalog
	Tools   *tools.Registry
	// Missing lists unset credential variables; empty means ready.
	Missing     func() []string
	CORSOrigins []string
}

// buildRouter wires routes for the API.
func buildRouter(logger *zap.Logger, deps Deps) (*gin.Engine, error) {
	if deps.Catalog == nil || deps.Tools == nil {
		return nil, errors.New("httpserver: catalog and tools are required")
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(zap.NewStdLog(logger).Writer()), gin.Recovery(), requestID())
	if len(deps.CORSOrigins) > 0 {
		router.Use(cors.New(corsConfig(deps.CORSOrigins)))
	}

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(deps.Missing))

	v1 := router.Group("/v1")
	{
		h := &catalogHandlers{catalog: deps.Catalog, logger: logger}
		v1.GET("/products", h.search)
		v1.GET("/products/:identifier", h.details)
		v1.GET("/inventory", h.inventory)
		v1.GET("/pricing", h.pricing)
		v1.GET("/export", h.export)

		th := &toolHandlers{registry: deps.Tools}
		v1.GET("/tools", th.list)
		v1.POST("/tools/:name", th.call)
	}

	return router, nil
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders: []string{requestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cfg
}

// requestID echoes the caller's X-Request-ID or assigns a new one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("requestID", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
