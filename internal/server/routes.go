package server

import (
	"net/http"
	"time"

	"github.com/danmuck/pimd/internal/observability"
	"github.com/danmuck/pimd/internal/protocol"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
)

type subscriberView struct {
	ID         string                             `json:"id"`
	Name       string                             `json:"name"`
	Registered bool                               `json:"registered"`
	Filter     *protocol.SubscriptionNotification `json:"filter,omitempty"`
}

// Router builds the read-only inspection API.
func (s *Service) Router() *gin.Engine {
	observability.RegisterMetrics()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(observability.RequestID())
	r.Use(observability.RequestLogger(log.Logger, "/health", "/metrics"))
	r.Use(observability.RequestMetricsMiddleware(s.cfg.ServerName))
	r.Use(cors.New(cors.Config{
		AllowOrigins:  normalizeOrigins(s.cfg.CORSOrigins),
		AllowMethods:  []string{"GET"},
		AllowHeaders:  []string{"Origin", "Content-Type", observability.RequestIDHeader},
		ExposeHeaders: []string{observability.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))
	_ = r.SetTrustedProxies([]string{"127.0.0.1", "::1"})
	s.registerRoutes(r)
	return r
}

func (s *Service) registerRoutes(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"uptime":    time.Since(s.appeared).String(),
			"component": s.cfg.ServerName,
			"protocol":  protocol.ProtocolVersion,
			"clients":   s.Clients(),
		})
	})

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/subscribers", func(c *gin.Context) {
		subs := s.manager.Subscribers()
		views := make([]subscriberView, 0, len(subs))
		for _, sub := range subs {
			views = append(views, viewOf(sub.ID(), sub.Snapshot))
		}
		c.JSON(http.StatusOK, gin.H{
			"subscribers": views,
			"debugging":   s.manager.NotificationDebugging(),
		})
	})

	r.GET("/subscribers/:id", func(c *gin.Context) {
		id := c.Param("id")
		for _, sub := range s.manager.Subscribers() {
			if sub.ID() == id {
				c.JSON(http.StatusOK, viewOf(id, sub.Snapshot))
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "subscriber not found"})
	})

	r.GET("/fetchscopes", func(c *gin.Context) {
		item, collection, tag := s.manager.Aggregated()
		c.JSON(http.StatusOK, gin.H{
			"item":       item,
			"collection": collection,
			"tag":        tag,
		})
	})
}

func viewOf(id string, snapshot func() (*protocol.SubscriptionNotification, bool)) subscriberView {
	filter, ok := snapshot()
	v := subscriberView{ID: id, Registered: ok}
	if ok {
		v.Name = filter.Subscriber
		v.Filter = filter
	}
	return v
}

func normalizeOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}
