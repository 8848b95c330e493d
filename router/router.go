package router

import (
	"net/http"
	"os"
	"strings"
	"time"

	"go-city/config"
	"go-city/controller"
	"go-city/middleware"
	"go-city/ws"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func InitRouter(r *gin.Engine, cfg config.Config, game *controller.GameController, hub *ws.Hub) {
	if handler := corsMiddleware(cfg.CORSOrigins); handler != nil {
		r.Use(handler)
	}

	// 游戏接口路由
	api := r.Group("/api", middleware.RateLimit(cfg.RateLimit, cfg.RateBurst))
	{
		api.GET("/game-state", game.GetGameState)
		api.POST("/game-state", middleware.AuthMiddleware(cfg.JWTSecret), game.UpdateGameState)
		api.POST("/place-building", game.PlaceBuilding)
	}

	// WebSocket 路由
	r.GET("/ws", hub.HandleWebSocket)

	r.NoRoute(staticHandler(cfg.StaticDir))
}

// corsMiddleware 未配置任何来源时返回 nil
func corsMiddleware(origins []string) gin.HandlerFunc {
	if len(origins) == 0 {
		return nil
	}
	corsConfig := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders: []string{"Content-Length", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	for _, origin := range origins {
		if origin == "*" {
			corsConfig.AllowAllOrigins = true
		}
	}
	if !corsConfig.AllowAllOrigins {
		corsConfig.AllowOrigins = origins
	}
	return cors.New(corsConfig)
}

// staticHandler 提供前端构建产物；目录不存在时所有未知路由返回 404
func staticHandler(dir string) gin.HandlerFunc {
	notFound := func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	}
	if dir == "" {
		return notFound
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return notFound
	}
	files := http.FileServer(http.Dir(dir))
	return func(c *gin.Context) {
		method := c.Request.Method
		if (method != http.MethodGet && method != http.MethodHead) || strings.HasPrefix(c.Request.URL.Path, "/api/") {
			notFound(c)
			return
		}
		files.ServeHTTP(c.Writer, c.Request)
	}
}
