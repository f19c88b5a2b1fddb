package dto

import (
	"time"

	"github.com/google/uuid"
)

type MQPostCreatedMsg struct {
	MessageID uuid.UUID `json:"message_id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	PostTitle string    `json:"post_title"`
	CreatedAt time.Time `json:"created_at"`
}

type MQPostDeletedMsg struct {
	MessageID uuid.UUID `json:"message_id"`
	PostID    string    `json:"post_id"`
	UserID    string    `json:"user_id"`
	DeletedAt time.Time `json:"deleted_at"`
}

type MQPostCommentedMsg struct {
	MessageID    uuid.UUID `json:"message_id"`
	PostID       string    `json:"post_id"`
	PostAuthorID string    `json:"post_author_id"`
	CommenterID  string    `json:"commenter_id"`
	CommentID    string    `json:"comment_id"`
	CommentedAt  time.Time `json:"commented_at"`
}
