package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"inkwell/managers"
)

// Per-request storage deadline, same bound for every operation.
const requestTimeout = 10 * time.Second

// API bundles the managers behind the HTTP surface. Handlers bind and
// shape requests; every rule lives in the managers.
type API struct {
	Users     *managers.UserManager
	Posts     *managers.PostManager
	Comments  *managers.CommentManager
	Reactions *managers.ReactionManager
	Follows   *managers.FollowManager
}

func NewAPI(users *managers.UserManager, posts *managers.PostManager, comments *managers.CommentManager, reactions *managers.ReactionManager, follows *managers.FollowManager) *API {
	return &API{
		Users:     users,
		Posts:     posts,
		Comments:  comments,
		Reactions: reactions,
		Follows:   follows,
	}
}

func respond(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{"success": true, "data": data})
}

// respondErr maps the manager error taxonomy onto HTTP statuses.
// Validation failures carry their field messages; storage failures
// stay opaque.
func respondErr(c *gin.Context, err error) {
	var validation *managers.ValidationError
	if errors.As(err, &validation) {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Validation failed",
			"errors":  validation.Fields,
		})
		return
	}

	var notFound *managers.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": notFound.Error()})
		return
	}

	var forbidden *managers.ForbiddenError
	if errors.As(err, &forbidden) {
		c.JSON(http.StatusForbidden, gin.H{"success": false, "error": forbidden.Error()})
		return
	}

	var conflict *managers.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, gin.H{"success": false, "error": conflict.Error()})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Internal server error"})
}

// requesterID returns the authenticated user's id. The auth middleware
// guarantees it is present on protected routes.
func requesterID(c *gin.Context) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "Invalid user ID"})
		return primitive.NilObjectID, false
	}
	return id, true
}

// viewerID returns the user id when a valid token accompanied the
// request, or nil for anonymous callers.
func viewerID(c *gin.Context) *primitive.ObjectID {
	id, err := primitive.ObjectIDFromHex(c.GetString("userId"))
	if err != nil {
		return nil
	}
	return &id
}
