package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/agribridge/agribridge/middleware"
	"github.com/agribridge/agribridge/stores"
	"github.com/agribridge/agribridge/utils"
)

// PostController manages the farmer/expert post exchange.
type PostController struct {
	posts *stores.PostStore
}

// NewPostController creates a new PostController instance.
func NewPostController(posts *stores.PostStore) *PostController {
	return &PostController{posts: posts}
}

// Create lets a farmer open a new issue report.
func (p *PostController) Create(ctx *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required,min=1"`
		Description string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	sess, _ := middleware.GetSession(ctx)
	post, err := p.posts.Create(sess, utils.Sanitize(req.Title), utils.Sanitize(req.Description))
	if err != nil {
		p.fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// Update edits the farmer's own post.
func (p *PostController) Update(ctx *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required,min=1"`
		Description string `json:"description"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	sess, _ := middleware.GetSession(ctx)
	post, err := p.posts.Update(ctx.Param("id"), sess, utils.Sanitize(req.Title), utils.Sanitize(req.Description))
	if err != nil {
		p.fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"post": post})
}

// Delete removes the farmer's own post.
func (p *PostController) Delete(ctx *gin.Context) {
	sess, _ := middleware.GetSession(ctx)
	if err := p.posts.Delete(ctx.Param("id"), sess); err != nil {
		p.fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

// ListMine returns the farmer's own posts, newest first.
func (p *PostController) ListMine(ctx *gin.Context) {
	sess, _ := middleware.GetSession(ctx)
	posts := p.posts.ListForFarmer(sess.Email)
	utils.Success(ctx, gin.H{"items": posts, "total": len(posts)})
}

// ListAll is the expert view: every farmer-authored post.
func (p *PostController) ListAll(ctx *gin.Context) {
	posts := p.posts.ListAllFarmerPosts()
	utils.Success(ctx, gin.H{"items": posts, "total": len(posts)})
}

// Respond appends an expert reply; the post is marked resolved as part of
// the same write.
func (p *PostController) Respond(ctx *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	sess, _ := middleware.GetSession(ctx)
	resp, err := p.posts.AppendResponse(ctx.Param("id"), sess, utils.Sanitize(req.Text))
	if err != nil {
		p.fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"response": resp})
}

// SetResolved flips the resolved flag. Resolving an already resolved post is
// a no-op; sending false reopens it.
func (p *PostController) SetResolved(ctx *gin.Context) {
	var req struct {
		Resolved *bool `json:"resolved" binding:"required"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	if err := p.posts.SetResolved(ctx.Param("id"), *req.Resolved); err != nil {
		p.fail(ctx, err)
		return
	}
	utils.Success(ctx, gin.H{"message": "resolved flag updated"})
}

// fail maps store sentinels onto HTTP responses.
func (p *PostController) fail(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, stores.ErrValidation):
		utils.Error(ctx, http.StatusBadRequest, 40021, err.Error())
	case errors.Is(err, stores.ErrNotFound):
		utils.Error(ctx, http.StatusNotFound, 40401, "post not found")
	case errors.Is(err, stores.ErrForbidden):
		utils.Error(ctx, http.StatusForbidden, 40302, "not the author of this post")
	default:
		utils.Sugar.Errorf("post operation failed: %v", err)
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to save")
	}
}
