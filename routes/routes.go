// File: /routes/routes.go
package routes

import (
	"log/slog"

	"filmogram-api/config"
	"filmogram-api/controllers"
	"filmogram-api/middleware"
	"filmogram-api/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Services bundles what the HTTP layer needs.
type Services struct {
	Catalog    *services.CatalogService
	Likes      *services.LikeLedger
	Friendship *services.FriendshipGraph
	Ranking    *services.PopularityRanking
}

// NewRouter builds the engine with the middleware chain and every route.
// done stops background work owned by the middleware.
func NewRouter(cfg *config.Config, svc Services, logger *slog.Logger, done <-chan struct{}) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.Recovery(logger),
		middleware.RequestID(),
		middleware.RequestLogger(logger),
		middleware.Metrics(),
		middleware.SecurityHeaders(),
		middleware.RateLimit(middleware.NewRateLimiter(cfg.RateLimitPerMinute, cfg.RateLimitBurst), cfg.RateLimitPerMinute, done),
		middleware.ValidateJSON(),
		middleware.ErrorHandler(logger),
	)

	SetupRoutes(r, svc)
	return r
}

func SetupRoutes(r *gin.Engine, svc Services) {
	userController := controllers.NewUserController(svc.Catalog)
	friendController := controllers.NewFriendController(svc.Friendship)
	filmController := controllers.NewFilmController(svc.Catalog, svc.Likes, svc.Ranking)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	users := r.Group("/users")
	{
		users.GET("", userController.GetUsers)
		users.POST("", userController.CreateUser)
		users.PUT("", userController.UpdateUser)
		users.GET("/:id", userController.GetUser)

		users.PUT("/:id/friends/:friendId", friendController.AddFriend)
		users.DELETE("/:id/friends/:friendId", friendController.RemoveFriend)
		users.GET("/:id/friends", friendController.GetFriends)
		users.GET("/:id/friends/:friendId", friendController.GetFriendship)
		users.GET("/:id/friends/common/:otherId", friendController.GetCommonFriends)
	}

	films := r.Group("/films")
	{
		films.GET("", filmController.GetFilms)
		films.POST("", filmController.CreateFilm)
		films.PUT("", filmController.UpdateFilm)
		films.GET("/popular", filmController.GetPopularFilms)
		films.GET("/ranked", filmController.GetRankedFilms)
		films.GET("/:id", filmController.GetFilm)
		films.GET("/:id/likes", filmController.GetFilmLikes)

		films.PUT("/:id/like/:userId", filmController.LikeFilm)
		films.DELETE("/:id/like/:userId", filmController.UnlikeFilm)
	}
}
