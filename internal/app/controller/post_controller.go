package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf-popaccueil/popaccueil-backend/internal/app/service"
	apperrors "github.com/spf-popaccueil/popaccueil-backend/internal/errors"
	"github.com/spf-popaccueil/popaccueil-backend/internal/middleware"
)

type PostController struct {
	postService service.PostService
}

func NewPostController(postService service.PostService) *PostController {
	return &PostController{
		postService: postService,
	}
}

type PostRequest struct {
	Post *struct {
		Title           string `json:"title" binding:"required,max=255"`
		Content         string `json:"content" binding:"required"`
		IsForVolunteers *bool  `json:"isForVolunteers" binding:"required"`
	} `json:"post" binding:"required"`
}

func (r *PostRequest) input() service.PostInput {
	return service.PostInput{
		Title:           r.Post.Title,
		Content:         r.Post.Content,
		IsForVolunteers: *r.Post.IsForVolunteers,
	}
}

// ListPosts returns all posts, newest first
// GET /posts
func (ctrl *PostController) ListPosts(c *gin.Context) {
	posts, err := ctrl.postService.List()
	if err != nil {
		middleware.GetLoggerFromContext(c).Error("Failed to fetch posts", err, nil)
		apperrors.InternalError(c, "")
		return
	}
	c.JSON(http.StatusOK, posts)
}

// GetPost returns one post
// GET /posts/:id
func (ctrl *PostController) GetPost(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	post, err := ctrl.postService.Get(id)
	if err != nil {
		ctrl.respondError(c, err, id)
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost publishes a post authored by the current user (volunteers only)
// POST /posts
func (ctrl *PostController) CreatePost(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	authorID, ok := middleware.GetUserID(c)
	if !ok {
		apperrors.Unauthenticated(c)
		return
	}

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid post request", map[string]interface{}{
			"error": err.Error(),
		})
		apperrors.RespondWithBindError(c, err)
		return
	}

	post, err := ctrl.postService.Create(authorID, req.input())
	if err != nil {
		ctrl.respondError(c, err, 0)
		return
	}

	log.Info("Post created", map[string]interface{}{
		"post_id":   post.ID,
		"author_id": authorID,
	})
	c.JSON(http.StatusCreated, post)
}

// UpdatePost edits a post (volunteers only)
// PUT /posts/:id
func (ctrl *PostController) UpdatePost(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req PostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		log.Warn("Invalid post request", map[string]interface{}{
			"post_id": id,
			"error":   err.Error(),
		})
		apperrors.RespondWithBindError(c, err)
		return
	}

	post, err := ctrl.postService.Update(id, req.input())
	if err != nil {
		ctrl.respondError(c, err, id)
		return
	}
	c.JSON(http.StatusOK, post)
}

// DeletePost removes a post and returns it (volunteers only)
// DELETE /posts/:id
func (ctrl *PostController) DeletePost(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	post, err := ctrl.postService.Delete(id)
	if err != nil {
		ctrl.respondError(c, err, id)
		return
	}

	middleware.GetLoggerFromContext(c).Info("Post deleted", map[string]interface{}{
		"post_id": id,
	})
	c.JSON(http.StatusOK, post)
}

func (ctrl *PostController) respondError(c *gin.Context, err error, id uint) {
	if errors.Is(err, service.ErrPostNotFound) {
		apperrors.NotFound(c, apperrors.ResourceNotFound, "Post not found")
		return
	}
	middleware.GetLoggerFromContext(c).Error("Post operation failed", err, map[string]interface{}{
		"post_id": id,
	})
	apperrors.ParseAndRespond(c, http.StatusInternalServerError, err, "post")
}
