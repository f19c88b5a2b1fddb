package repository

import (
	"github.com/BloggingApp/blog-service/internal/repository/mongorepo"
	"github.com/BloggingApp/blog-service/internal/repository/redisrepo"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

type Repository struct {
	Mongo *mongorepo.MongoRepository
	Redis *redisrepo.RedisRepository
}

func New(db *mongo.Database, rdb *redis.Client) *Repository {
	return &Repository{
		Mongo: mongorepo.New(db),
		Redis: redisrepo.New(rdb),
	}
}
