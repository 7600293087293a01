// File: /controllers/film_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"filmogram-api/models"
	"filmogram-api/services"
	"filmogram-api/utils"
	"github.com/gin-gonic/gin"
)

type FilmController struct {
	catalog *services.CatalogService
	ledger  *services.LikeLedger
	ranking *services.PopularityRanking
}

func NewFilmController(catalog *services.CatalogService, ledger *services.LikeLedger, ranking *services.PopularityRanking) *FilmController {
	return &FilmController{
		catalog: catalog,
		ledger:  ledger,
		ranking: ranking,
	}
}

func (fc *FilmController) GetFilms(c *gin.Context) {
	films, err := fc.catalog.ListFilms(c.Request.Context())
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, films)
}

func (fc *FilmController) GetFilm(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	film, err := fc.catalog.GetFilm(c.Request.Context(), id)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, film)
}

func (fc *FilmController) CreateFilm(c *gin.Context) {
	var req models.FilmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindError(c, err)
		return
	}

	film := req.ToFilm()
	if err := fc.catalog.CreateFilm(c.Request.Context(), &film); err != nil {
		utils.SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, film)
}

func (fc *FilmController) UpdateFilm(c *gin.Context) {
	var req models.FilmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindError(c, err)
		return
	}
	if req.ID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Film id is required"})
		return
	}

	film := req.ToFilm()
	if err := fc.catalog.UpdateFilm(c.Request.Context(), &film); err != nil {
		utils.SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, film)
}

// GetPopularFilms serves ?count=N; a missing count means the default page size.
func (fc *FilmController) GetPopularFilms(c *gin.Context) {
	count := 0
	if raw := c.Query("count"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid count"})
			return
		}
		count = n
	}

	films, err := fc.ranking.TopPopularFilms(c.Request.Context(), count)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, films)
}

func (fc *FilmController) GetRankedFilms(c *gin.Context) {
	films, err := fc.ranking.AllRankedFilms(c.Request.Context())
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, films)
}

func (fc *FilmController) GetFilmLikes(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	likers, err := fc.ledger.LikedBy(ctx, id)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	users, err := fc.catalog.GetUsers(ctx, likers)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (fc *FilmController) LikeFilm(c *gin.Context) {
	filmID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	count, err := fc.ledger.AddLike(c.Request.Context(), filmID, userID)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.LikeResponse{FilmID: filmID, LikesCount: count})
}

func (fc *FilmController) UnlikeFilm(c *gin.Context) {
	filmID, ok := pathID(c, "id")
	if !ok {
		return
	}
	userID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	removed, count, err := fc.ledger.RemoveLike(c.Request.Context(), filmID, userID)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.LikeResponse{FilmID: filmID, LikesCount: count, Removed: &removed})
}
