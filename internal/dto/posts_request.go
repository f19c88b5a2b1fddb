package dto

type CreatePostRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
	Image   string `json:"image"`
}

// EditPostRequest leaves a field untouched when it is nil or empty.
type EditPostRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
}

type ReactRequest struct {
	Type string `json:"type"`
}

type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}
