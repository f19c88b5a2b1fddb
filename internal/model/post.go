package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ReactionType string

const (
	ReactionLike  ReactionType = "like"
	ReactionLove  ReactionType = "love"
	ReactionLaugh ReactionType = "laugh"
)

func (t ReactionType) Valid() bool {
	switch t {
	case ReactionLike, ReactionLove, ReactionLaugh:
		return true
	}
	return false
}

type Reaction struct {
	ID   primitive.ObjectID `bson:"_id" json:"_id"`
	User primitive.ObjectID `bson:"user" json:"user"`
	Type ReactionType       `bson:"type" json:"type"`
}

// Post is the stored aggregate. Likes and comments are only ever mutated through it.
type Post struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Title     string             `bson:"title" json:"title"`
	Content   string             `bson:"content" json:"content"`
	Image     *string            `bson:"image" json:"image"`
	Author    primitive.ObjectID `bson:"author" json:"author"`
	Likes     []Reaction         `bson:"likes" json:"likes"`
	Comments  []Comment          `bson:"comments" json:"comments"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// SetReaction drops any reaction left by userID and, when reactionType is not
// empty, appends a fresh one. An empty type therefore removes the reaction.
func (p *Post) SetReaction(userID primitive.ObjectID, reactionType ReactionType) {
	likes := make([]Reaction, 0, len(p.Likes)+1)
	for _, like := range p.Likes {
		if like.User != userID {
			likes = append(likes, like)
		}
	}

	if reactionType != "" {
		likes = append(likes, Reaction{
			ID:   primitive.NewObjectID(),
			User: userID,
			Type: reactionType,
		})
	}

	p.Likes = likes
}

func (p *Post) AddComment(userID primitive.ObjectID, text string, now time.Time) Comment {
	comment := Comment{
		ID:        primitive.NewObjectID(),
		User:      userID,
		Text:      text,
		CreatedAt: now,
	}
	p.Comments = append(p.Comments, comment)
	return comment
}

func (p *Post) IsAuthor(userID primitive.ObjectID) bool {
	return p.Author == userID
}

// FullPost is a post with its user references resolved for display.
type FullPost struct {
	ID        primitive.ObjectID `json:"_id"`
	Title     string             `json:"title"`
	Content   string             `json:"content"`
	Image     *string            `json:"image"`
	Author    UserAuthor         `json:"author"`
	Likes     []Reaction         `json:"likes"`
	Comments  []FullComment      `json:"comments"`
	CreatedAt time.Time          `json:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt"`
}

// NewFullPost resolves the author, and the comment users when withCommentUsers
// is set, from users. References missing from users render as a bare id.
func NewFullPost(p *Post, users map[primitive.ObjectID]*User, withCommentUsers bool) *FullPost {
	full := &FullPost{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Image:     p.Image,
		Author:    NewUserAuthor(p.Author, users),
		Likes:     p.Likes,
		Comments:  make([]FullComment, 0, len(p.Comments)),
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
	if full.Likes == nil {
		full.Likes = []Reaction{}
	}

	for _, c := range p.Comments {
		user := UserAuthor{ID: c.User}
		if withCommentUsers {
			user = NewUserAuthor(c.User, users)
		}
		full.Comments = append(full.Comments, FullComment{
			ID:        c.ID,
			User:      user,
			Text:      c.Text,
			CreatedAt: c.CreatedAt,
		})
	}

	return full
}

// Render returns a copy with content and comment text passed through fn.
// The receiver is left untouched.
func (p *FullPost) Render(fn func(string) string) *FullPost {
	out := *p
	out.Content = fn(p.Content)
	out.Comments = make([]FullComment, len(p.Comments))
	for i, c := range p.Comments {
		c.Text = fn(c.Text)
		out.Comments[i] = c
	}
	return &out
}
