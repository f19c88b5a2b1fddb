package service

import (
	"context"
	"time"

	"github.com/BloggingApp/blog-service/internal/config"
	"github.com/BloggingApp/blog-service/internal/dto"
	"github.com/BloggingApp/blog-service/internal/model"
	"github.com/BloggingApp/blog-service/internal/repository"
	"go.uber.org/zap"
)

type Post interface {
	Create(ctx context.Context, authorID string, input dto.CreatePostRequest) (*model.Post, error)
	FindAll(ctx context.Context) ([]*model.FullPost, error)
	FindByID(ctx context.Context, id string) (*model.FullPost, error)
	Update(ctx context.Context, id string, requesterID string, input dto.EditPostRequest) (*model.FullPost, error)
	Delete(ctx context.Context, id string, requesterID string) error
	React(ctx context.Context, id string, requesterID string, reactionType string) (*model.Post, error)
	AddComment(ctx context.Context, id string, requesterID string, text string) (*model.Post, error)
}

type Auth interface {
	Register(ctx context.Context, input dto.RegisterRequest) (string, error)
	Login(ctx context.Context, input dto.LoginRequest) (string, error)
	ParseToken(token string) (string, error)
}

// Publisher delivers domain events. *rabbitmq.MQConn satisfies it.
type Publisher interface {
	PublishJSON(ctx context.Context, queue string, v interface{}) error
}

type Options struct {
	CacheTTL time.Duration
	Auth     config.AuthConfig
}

type Service struct {
	Post
	Auth
}

// New wires the services. publisher may be nil, which disables event publishing.
func New(logger *zap.Logger, repo *repository.Repository, publisher Publisher, opts Options) *Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Hour
	}

	return &Service{
		Post: newPostService(logger, repo, publisher, opts.CacheTTL),
		Auth: newAuthService(logger, repo, opts.Auth),
	}
}
