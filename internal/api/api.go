package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/andresuchdata/bestandsanalyse/internal/api/handlers"
	"github.com/andresuchdata/bestandsanalyse/internal/api/middleware"
	"github.com/andresuchdata/bestandsanalyse/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	MovementService *service.MovementService
}

// Options carries the HTTP settings taken from config.ServerConfig and
// config.AppConfig.
type Options struct {
	AllowedOrigins    []string
	RequestsPerSecond float64
	RequestBurst      int
	UploadDir         string
	MaxUploadBytes    int64
}

func NewRouter(services *Services, opts Options) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(cors.New(corsConfig(opts.AllowedOrigins)))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")
	apiGroup.Use(middleware.RateLimit(middleware.NewRateLimiter(opts.RequestsPerSecond, opts.RequestBurst)))

	if services != nil && services.MovementService != nil {
		movementHandler := handlers.NewMovementHandler(services.MovementService, opts.UploadDir, opts.MaxUploadBytes)
		movementGroup := apiGroup.Group("/movements")
		{
			movementGroup.POST("/upload", movementHandler.Upload)
			movementGroup.POST("/sheets", movementHandler.Sheets)
			movementGroup.GET("/:id/report", movementHandler.Report)
			movementGroup.GET("/:id/articles/*article", movementHandler.Article)
			movementGroup.GET("/:id/export", movementHandler.Export)
			movementGroup.DELETE("/:id", movementHandler.Delete)
		}
	}

	return router
}

func corsConfig(allowedOrigins []string) cors.Config {
	cfg := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			cfg.AllowOrigins = nil
			cfg.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			cfg.AllowOrigins = normalizedOrigins
		}
	}
	return cfg
}

// normalizeAllowedOrigins flattens comma separated entries. A "*" entry
// allows every origin.
func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
