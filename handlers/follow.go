package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func (a *API) ToggleFollow(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	followerID, ok := requesterID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	status, err := a.Follows.Toggle(ctx, followerID, targetID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, status)
}

func (a *API) GetFollowStatus(c *gin.Context) {
	targetID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid user ID"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	status, err := a.Follows.Status(ctx, viewerID(c), targetID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, status)
}
