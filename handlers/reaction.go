package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/models"
)

type ToggleReactionRequest struct {
	PostID string `json:"postId" binding:"required"`
	Type   string `json:"type" binding:"required"`
}

func (a *API) GetReactions(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Query("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Post ID is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	state, err := a.Reactions.State(ctx, postID, viewerID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, state)
}

func (a *API) ToggleReaction(c *gin.Context) {
	var req ToggleReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	postID, err := primitive.ObjectIDFromHex(req.PostID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid post ID"})
		return
	}

	userID, ok := requesterID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	result, err := a.Reactions.Toggle(ctx, userID, postID, models.ReactionType(req.Type))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, result)
}
