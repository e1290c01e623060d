package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/managers"
	"inkwell/models"
)

type CreatePostRequest struct {
	Title      string   `json:"title" binding:"required"`
	Content    string   `json:"content" binding:"required"`
	Excerpt    string   `json:"excerpt"`
	CoverImage string   `json:"coverImage"`
	Tags       []string `json:"tags"`
	Status     string   `json:"status"`
}

// UpdatePostRequest uses pointers so an omitted field is left alone
// while an empty string clears it.
type UpdatePostRequest struct {
	Title      *string   `json:"title"`
	Content    *string   `json:"content"`
	Excerpt    *string   `json:"excerpt"`
	CoverImage *string   `json:"coverImage"`
	Tags       *[]string `json:"tags"`
	Status     *string   `json:"status"`
}

func (a *API) CreatePost(c *gin.Context) {
	var req CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	authorID, ok := requesterID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	post, err := a.Posts.Create(ctx, authorID, managers.CreatePostInput{
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		CoverImage: req.CoverImage,
		Tags:       req.Tags,
		Status:     models.PostStatus(req.Status),
	})
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusCreated, post)
}

func (a *API) ListPosts(c *gin.Context) {
	viewer := viewerID(c)

	query := managers.ListPostsQuery{
		Status: models.PostStatus(c.DefaultQuery("status", string(models.StatusPublished))),
		Search: c.Query("search"),
		Tag:    c.Query("tag"),
	}
	query.Page, _ = strconv.Atoi(c.Query("page"))
	query.Limit, _ = strconv.Atoi(c.Query("limit"))

	if authorHex := c.Query("authorId"); authorHex != "" {
		authorID, err := primitive.ObjectIDFromHex(authorHex)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid author ID"})
			return
		}
		query.AuthorID = &authorID
	}

	// Drafts are only listable by their own author.
	if query.Status != models.StatusPublished {
		if viewer == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Authentication required"})
			return
		}
		query.AuthorID = viewer
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	page, err := a.Posts.List(ctx, query)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       page.Posts,
		"pagination": page.Pagination,
	})
}

func (a *API) GetPost(c *gin.Context) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	post, err := a.Posts.Get(ctx, c.Param("idOrSlug"), viewerID(c))
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, post)
}

func (a *API) UpdatePost(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("idOrSlug"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid post ID"})
		return
	}

	var req UpdatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	requester, ok := requesterID(c)
	if !ok {
		return
	}

	patch := managers.UpdatePostInput{
		Title:      req.Title,
		Content:    req.Content,
		Excerpt:    req.Excerpt,
		CoverImage: req.CoverImage,
		Tags:       req.Tags,
	}
	if req.Status != nil {
		status := models.PostStatus(*req.Status)
		patch.Status = &status
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	post, err := a.Posts.Update(ctx, postID, requester, patch)
	if err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, post)
}

func (a *API) DeletePost(c *gin.Context) {
	postID, err := primitive.ObjectIDFromHex(c.Param("idOrSlug"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "Invalid post ID"})
		return
	}

	requester, ok := requesterID(c)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	if err := a.Posts.Delete(ctx, postID, requester); err != nil {
		respondErr(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"message": "Post deleted successfully"})
}
