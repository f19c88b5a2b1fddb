package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Password  string             `bson:"password" json:"-"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// UserAuthor is the public projection of a user embedded in post responses.
type UserAuthor struct {
	ID    primitive.ObjectID `json:"_id"`
	Name  string             `json:"name,omitempty"`
	Email string             `json:"email,omitempty"`
}

func NewUserAuthor(id primitive.ObjectID, users map[primitive.ObjectID]*User) UserAuthor {
	author := UserAuthor{ID: id}
	if user, ok := users[id]; ok && user != nil {
		author.Name = user.Name
		author.Email = user.Email
	}
	return author
}
