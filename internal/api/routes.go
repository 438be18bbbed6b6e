package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jonesrussell/quillglow/infrastructure/jwt"
)

// SetupServiceRoutes configures service-specific API routes (not health routes).
// Every /api/v1 route requires a bearer token; metrics may be nil.
func SetupServiceRoutes(router *gin.Engine, handler *Handler, jwtSecret string, metrics http.Handler) {
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := router.Group("/api/v1")
	v1.Use(jwt.Middleware(jwtSecret))
	{
		v1.POST("/search", handler.Search)

		bookmarks := v1.Group("/bookmarks")
		bookmarks.GET("", handler.ListBookmarks)
		bookmarks.POST("", handler.CreateBookmark)
		bookmarks.DELETE("", handler.DeleteBookmark)

		history := v1.Group("/history")
		history.GET("", handler.ListHistory)
		history.DELETE("", handler.ClearHistory)

		v1.GET("/usage", handler.GetUsage)
	}
}
