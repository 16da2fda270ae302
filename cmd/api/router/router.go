package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/DavidPARK0417/draiger-sub002/cmd/api/handlers"
	"github.com/DavidPARK0417/draiger-sub002/cmd/api/middleware"
	"github.com/DavidPARK0417/draiger-sub002/cmd/api/services"
	_ "github.com/DavidPARK0417/draiger-sub002/docs"
	"github.com/DavidPARK0417/draiger-sub002/models"
)

// Deps are the services the routes are bound to.
type Deps struct {
	Content        *services.ContentService
	Categories     *services.CategoryService
	Home           *services.HomeService
	AllowedOrigins []string
	// SlowRequest is the latency above which a request is logged as slow. 0 disables it.
	SlowRequest time.Duration
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestTrace())
	r.Use(middleware.SlowRequestLogging(d.SlowRequest))
	r.Use(middleware.CORS(d.AllowedOrigins))

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Swagger
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// v1 routes
	api := r.Group("/api/v1")
	{
		for _, ct := range models.ContentTypes {
			g := api.Group("/" + string(ct))
			g.GET("", handlers.ListHandler(d.Content, ct))
			g.GET("/search", handlers.SearchHandler(d.Content, ct))
			g.GET("/categories/:category", handlers.CategoryHandler(d.Content, ct))
			g.GET("/category-counts", handlers.CategoryCountsHandler(d.Categories, ct))
			g.GET("/latest", handlers.LatestHandler(d.Content, ct))
			g.GET("/items/:slug", handlers.GetBySlugHandler(d.Content, ct))
		}

		api.GET("/home/latest", handlers.HomeLatestHandler(d.Home))
		api.GET("/search", handlers.SiteSearchHandler(d.Home))
	}

	return r
}
