package httpserver

import (
	"context"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"clientdesk/internal/handler"
	"clientdesk/pkg/metrics"
)

func NewRouter(
	projectHandler *handler.ProjectHandler,
	offerHandler *handler.OfferHandler,
	logger *zap.Logger,
	db *pgxpool.Pool,
	rdb *redis.Client,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		metrics.RecordHTTPRequestDuration(c.Request.Method, path, strconv.Itoa(status), latency)
		logger.Info("HTTP Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(200)
	})

	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c, 1*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			c.JSON(500, gin.H{"status": "db_not_ready", "error": err.Error()})
			return
		}
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				c.JSON(500, gin.H{"status": "redis_not_ready", "error": err.Error()})
				return
			}
		}
		c.JSON(200, gin.H{"status": "ready"})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	projects := r.Group("/client-onboarding-projects")
	{
		projects.GET("", projectHandler.ListProjects)
		projects.POST("", projectHandler.CreateProject)
		projects.GET("/:id", projectHandler.GetProject)
		projects.PUT("/:id", projectHandler.UpdateProject)
		projects.PATCH("/:id/stage", projectHandler.PatchStage)
		projects.DELETE("/:id", projectHandler.DeleteProject)
	}

	offers := r.Group("/offers")
	{
		offers.GET("/all", offerHandler.ListOffers)
		offers.POST("", offerHandler.CreateOffer)
		offers.PUT("/:id", offerHandler.UpdateOffer)
		offers.DELETE("/:id", offerHandler.DeleteOffer)
		offers.POST("/assign", offerHandler.AssignOffer)
		offers.GET("/assigned", offerHandler.ListAssignedOffers)
		offers.PUT("/:id/claim", offerHandler.ClaimOffer)
		offers.PUT("/:id/status", offerHandler.UpdateOfferStatus)
	}

	return r
}
