package controllers

import (
	"net/http"

	"filmogram-api/models"
	"filmogram-api/services"
	"filmogram-api/utils"
	"github.com/gin-gonic/gin"
)

type FriendController struct {
	graph *services.FriendshipGraph
}

func NewFriendController(graph *services.FriendshipGraph) *FriendController {
	return &FriendController{graph: graph}
}

func (fc *FriendController) AddFriend(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	friendID, ok := pathID(c, "friendId")
	if !ok {
		return
	}

	status, err := fc.graph.RequestFriend(c.Request.Context(), userID, friendID)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, status)
}

func (fc *FriendController) RemoveFriend(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	friendID, ok := pathID(c, "friendId")
	if !ok {
		return
	}

	if err := fc.graph.RemoveFriend(c.Request.Context(), userID, friendID); err != nil {
		utils.SendDomainError(c, err)
		return
	}
	utils.SendSuccess(c, "Friend removed successfully", nil)
}

// GetFriendship reports the state of the pair from the first user's side.
func (fc *FriendController) GetFriendship(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	friendID, ok := pathID(c, "friendId")
	if !ok {
		return
	}

	f, err := fc.graph.Status(c.Request.Context(), userID, friendID)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	status := models.FriendshipStatus{UserID: userID, FriendID: friendID, State: f.State}
	if f.State == models.FriendshipStatePending {
		status.RequestedBy = f.RequestedBy
	}
	c.JSON(http.StatusOK, status)
}

func (fc *FriendController) GetFriends(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	friends, err := fc.graph.FriendUsers(c.Request.Context(), userID)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, friends)
}

func (fc *FriendController) GetCommonFriends(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	otherID, ok := pathID(c, "otherId")
	if !ok {
		return
	}

	common, err := fc.graph.CommonFriendUsers(c.Request.Context(), userID, otherID)
	if err != nil {
		utils.SendDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, common)
}
