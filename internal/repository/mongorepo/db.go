package mongorepo

import (
	"context"
	"time"

	"github.com/BloggingApp/blog-service/internal/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	POSTS_COLLECTION = "posts"
	USERS_COLLECTION = "users"
)

func DB(ctx context.Context, cfg config.DBConfig) (*mongo.Client, *mongo.Database, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.URI))
	if err != nil {
		return nil, nil, err
	}

	return client, client.Database(cfg.Database), nil
}
