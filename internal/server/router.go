package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/khanbek/khancloud/internal/auth"
	"github.com/khanbek/khancloud/internal/config"
	"github.com/khanbek/khancloud/internal/file"
	"github.com/khanbek/khancloud/internal/logger"
	"github.com/khanbek/khancloud/internal/metrics"
)

// Dependencies groups the services required by the HTTP router.
type Dependencies struct {
	Config       config.Config
	DB           *pgxpool.Pool
	TokenService *auth.TokenService
	AuthService  *auth.Service
	FileService  *file.Service
	BlobStore    file.BlobStore
}

// NewRouter builds a Gin engine with foundational middleware and routes.
// Every /api/files route sits behind the auth guard; static retrieval of
// uploaded blobs is public when the disk driver is active.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logger.Middleware())
	router.Use(metrics.Middleware())

	metrics.InitMetrics()
	metrics.Register(router, deps.Config.Metrics.PrometheusPath)
	registerHealthRoutes(router, deps)

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "KhanCloud Backend is running successfully!")
	})

	if disk, ok := deps.BlobStore.(*file.DiskStore); ok {
		router.Static(deps.Config.Storage.PublicPrefix, disk.Root())
	}

	api := router.Group("/api")
	if deps.AuthService != nil {
		auth.RegisterRoutes(api, deps.AuthService)
	}

	if deps.FileService != nil && deps.TokenService != nil {
		protected := api.Group("/")
		protected.Use(auth.Middleware(deps.TokenService))
		file.RegisterRoutes(protected, deps.FileService)
	}

	return router
}
