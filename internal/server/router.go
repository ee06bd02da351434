package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/04pril/minesweeper-web/internal/assets"
)

// NewRouter serves the browser build through the offline cache.
func NewRouter(cache *assets.Cache, log logrus.FieldLogger) *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(log), gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "cache": cache.Name()})
	})
	r.NoRoute(gin.WrapH(cache))
	return r
}

func requestLogger(log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"cache":   c.Writer.Header().Get("X-Cache"),
			"latency": time.Since(start),
		}).Info("request")
	}
}
