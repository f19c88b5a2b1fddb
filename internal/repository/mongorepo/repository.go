package mongorepo

import (
	"context"

	"github.com/BloggingApp/blog-service/internal/model"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Post stores whole post documents. Lookups of a missing post return
// mongo.ErrNoDocuments.
type Post interface {
	Create(ctx context.Context, post model.Post) (*model.Post, error)
	FindAll(ctx context.Context) ([]*model.Post, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error)
	Save(ctx context.Context, post *model.Post) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type User interface {
	Create(ctx context.Context, user model.User) (*model.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.User, error)
	EnsureIndexes(ctx context.Context) error
}

type MongoRepository struct {
	Post
	User
}

func New(db *mongo.Database) *MongoRepository {
	return &MongoRepository{
		Post: newPostRepo(db),
		User: newUserRepo(db),
	}
}
