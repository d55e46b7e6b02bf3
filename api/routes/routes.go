package routes

import (
	"net/http"
	"time"

	"github.com/ArowuTest/giveaway-draw-backend/internal/config"
	"github.com/ArowuTest/giveaway-draw-backend/internal/handlers"
	"github.com/ArowuTest/giveaway-draw-backend/internal/middleware"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HandlerDependencies holds all handler instances needed by the router
type HandlerDependencies struct {
	AuthHandler      *handlers.AuthHandler
	GiveawayHandler  *handlers.GiveawayHandler
	DrawHandler      *handlers.DrawHandler
	WinnerHandler    *handlers.WinnerHandler
	DashboardHandler *handlers.DashboardHandler
}

// SetupRouter sets up the router
func SetupRouter(cfg *config.Config, deps HandlerDependencies) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggerMiddleware())
	router.Use(corsMiddleware(cfg.Server.AllowedHosts))
	router.Use(middleware.TimeoutMiddleware(cfg.Server.RequestTimeout))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	public := router.Group("/api/v1")
	{
		public.POST("/auth/login", deps.AuthHandler.Login)
		public.GET("/giveaways/active", deps.GiveawayHandler.ListActiveGiveaways)
		public.GET("/dashboard", deps.DashboardHandler.GetDashboard)
	}

	admin := router.Group("/api/v1")
	admin.Use(middleware.JWTAuthMiddleware(cfg.JWT.Secret), middleware.RequireAdmin())
	{
		giveaways := admin.Group("/giveaways")
		{
			giveaways.POST("", deps.GiveawayHandler.CreateGiveaway)
			giveaways.GET("", deps.GiveawayHandler.ListGiveaways)
			giveaways.GET("/:id", deps.GiveawayHandler.GetGiveaway)
			giveaways.PATCH("/:id/status", deps.GiveawayHandler.UpdateStatus)
			giveaways.DELETE("/:id", deps.GiveawayHandler.DeleteGiveaway)
			giveaways.GET("/:id/eligible", deps.GiveawayHandler.GetEligibleParticipants)
			giveaways.GET("/:id/events", deps.GiveawayHandler.GetEvents)
			giveaways.POST("/:id/draw", deps.DrawHandler.ExecuteDraw)
			giveaways.GET("/:id/winners", deps.WinnerHandler.ListWinners)
			giveaways.GET("/:id/capacity", deps.WinnerHandler.GetCapacity)
			giveaways.POST("/:id/winners/manual", deps.WinnerHandler.ManualSelect)
		}

		winners := admin.Group("/winners")
		{
			winners.GET("/:id", deps.WinnerHandler.GetWinner)
			winners.PATCH("/:id", deps.WinnerHandler.UpdateWinner)
			winners.PATCH("/:id/prize", deps.WinnerHandler.UpdatePrize)
			winners.POST("/:id/replace", deps.WinnerHandler.ReplaceWinner)
			winners.DELETE("/:id", deps.WinnerHandler.RemoveWinner)
		}
	}

	return router
}

func corsMiddleware(allowedHosts []string) gin.HandlerFunc {
	origins := allowedHosts
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	return cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	})
}
