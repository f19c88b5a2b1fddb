package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/BloggingApp/blog-service/internal/dto"
	"github.com/BloggingApp/blog-service/internal/model"
	"github.com/BloggingApp/blog-service/pkg/utils"
	"github.com/gin-gonic/gin"
)

const (
	postRemovedMsg = "Post removed"
	formatHTML     = "html"
)

func (h *Handler) postsCreate(c *gin.Context) {
	userID := h.getUserIDFromRequest(c)

	var input dto.CreatePostRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindError(c, err)
		return
	}

	createdPost, err := h.services.Post.Create(c.Request.Context(), userID, input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, createdPost)
}

func (h *Handler) postsGetAll(c *gin.Context) {
	posts, err := h.services.Post.FindAll(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}

	if wantsHTML(c) {
		rendered := make([]*model.FullPost, 0, len(posts))
		for _, post := range posts {
			rendered = append(rendered, post.Render(utils.Sanitize))
		}
		posts = rendered
	}

	c.JSON(http.StatusOK, posts)
}

func (h *Handler) postsGetByID(c *gin.Context) {
	postID := strings.TrimSpace(c.Param("id"))

	post, err := h.services.Post.FindByID(c.Request.Context(), postID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if wantsHTML(c) {
		post = post.Render(utils.Sanitize)
	}

	c.JSON(http.StatusOK, post)
}

func (h *Handler) postsUpdate(c *gin.Context) {
	userID := h.getUserIDFromRequest(c)
	postID := strings.TrimSpace(c.Param("id"))

	var input dto.EditPostRequest
	if !h.bindOptionalJSON(c, &input) {
		return
	}

	post, err := h.services.Post.Update(c.Request.Context(), postID, userID, input)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

func (h *Handler) postsDelete(c *gin.Context) {
	userID := h.getUserIDFromRequest(c)
	postID := strings.TrimSpace(c.Param("id"))

	if err := h.services.Post.Delete(c.Request.Context(), postID, userID); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewMsgResponse(postRemovedMsg))
}

func (h *Handler) postsReact(c *gin.Context) {
	userID := h.getUserIDFromRequest(c)
	postID := strings.TrimSpace(c.Param("id"))

	var input dto.ReactRequest
	if !h.bindOptionalJSON(c, &input) {
		return
	}

	post, err := h.services.Post.React(c.Request.Context(), postID, userID, input.Type)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}

// bindOptionalJSON binds the body when there is one. An empty body leaves obj zeroed.
func (h *Handler) bindOptionalJSON(c *gin.Context, obj any) bool {
	if err := c.ShouldBindJSON(obj); err != nil && !errors.Is(err, io.EOF) {
		h.respondBindError(c, err)
		return false
	}
	return true
}

// wantsHTML reports whether the caller asked for content and comment text as
// sanitized HTML. Stored text is returned as is otherwise.
func wantsHTML(c *gin.Context) bool {
	return c.Query("format") == formatHTML
}
