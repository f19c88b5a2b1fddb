package handler

import (
	"net/http"
	"strings"

	"github.com/BloggingApp/blog-service/internal/dto"
	"github.com/gin-gonic/gin"
)

func (h *Handler) commentsCreate(c *gin.Context) {
	userID := h.getUserIDFromRequest(c)
	postID := strings.TrimSpace(c.Param("id"))

	var input dto.AddCommentRequest
	if err := c.ShouldBindJSON(&input); err != nil {
		h.respondBindError(c, err)
		return
	}

	post, err := h.services.Post.AddComment(c.Request.Context(), postID, userID, input.Text)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, post)
}
