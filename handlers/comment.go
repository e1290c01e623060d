package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CreateCommentRequest struct {
	PostID   string `json:"postId" binding:"required"`
	Content  string `json:"content" binding:"required"`
	ParentID string `json:"parentId"`
}

func (a *API) ListComments(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Query("postId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Post ID is required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	comments, err := a.Comments.List(ctx, postID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, comments)
}

func (a *API) CreateComment(c *gin.Context) {
	var req CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	postID, err := primitive.ObjectIDFromHex(req.PostID)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid post ID"})
		return
	}

	var parentID *primitive.ObjectID
	if req.ParentID != "" {
		parent, err := primitive.ObjectIDFromHex(req.ParentID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid parent comment ID"})
			return
		}
		parentID = &parent
	}

	authorID, ok := requesterID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	comment, err := a.Comments.Create(ctx, authorID, postID, req.Content, parentID)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusCreated, comment)
}

func (a *API) DeleteComment(c *gin.Context) {
	commentID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid comment ID"})
		return
	}

	requester, ok := requesterID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := a.Comments.Delete(ctx, commentID, requester); err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Comment deleted"})
}
