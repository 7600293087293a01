// File: /controllers/user_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"filmogram-api/models"
	"filmogram-api/services"
	"filmogram-api/utils"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	catalog *services.CatalogService
}

func NewUserController(catalog *services.CatalogService) *UserController {
	return &UserController{catalog: catalog}
}

// pathID parses a numeric path parameter, writing a 400 when it is malformed.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return id, true
}

func (uc *UserController) GetUsers(c *gin.Context) {
	users, err := uc.catalog.ListUsers(c.Request.Context())
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (uc *UserController) GetUser(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	user, err := uc.catalog.GetUser(c.Request.Context(), id)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (uc *UserController) CreateUser(c *gin.Context) {
	var req models.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindError(c, err)
		return
	}

	user := req.ToUser()
	if err := uc.catalog.CreateUser(c.Request.Context(), &user); err != nil {
		utils.SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, user)
}

func (uc *UserController) UpdateUser(c *gin.Context) {
	var req models.UserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendBindError(c, err)
		return
	}
	if req.ID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "User id is required"})
		return
	}

	user := req.ToUser()
	if err := uc.catalog.UpdateUser(c.Request.Context(), &user); err != nil {
		utils.SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
