package mongorepo

import (
	"context"
	"time"

	"github.com/BloggingApp/blog-service/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type postRepo struct {
	collection *mongo.Collection
}

func newPostRepo(db *mongo.Database) Post {
	return &postRepo{
		collection: db.Collection(POSTS_COLLECTION),
	}
}

func (r *postRepo) Create(ctx context.Context, post model.Post) (*model.Post, error) {
	now := time.Now().UTC().Truncate(time.Millisecond)
	post.ID = primitive.NewObjectID()
	post.CreatedAt = now
	post.UpdatedAt = now
	if post.Likes == nil {
		post.Likes = []model.Reaction{}
	}
	if post.Comments == nil {
		post.Comments = []model.Comment{}
	}

	if _, err := r.collection.InsertOne(ctx, post); err != nil {
		return nil, err
	}

	return &post, nil
}

func (r *postRepo) FindAll(ctx context.Context) ([]*model.Post, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	posts := []*model.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, err
	}

	return posts, nil
}

func (r *postRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	var post model.Post
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&post); err != nil {
		return nil, err
	}

	return &post, nil
}

// Save replaces the stored document with post. Concurrent writers to the same
// post overwrite each other; the last write wins.
func (r *postRepo) Save(ctx context.Context, post *model.Post) error {
	post.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)

	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": post.ID}, post)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}

func (r *postRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return mongo.ErrNoDocuments
	}

	return nil
}
