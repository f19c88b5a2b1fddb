package service

import (
	"context"
	"errors"
	"strings"

	"github.com/BloggingApp/blog-service/internal/config"
	"github.com/BloggingApp/blog-service/internal/dto"
	"github.com/BloggingApp/blog-service/internal/model"
	"github.com/BloggingApp/blog-service/internal/repository"
	"github.com/BloggingApp/blog-service/pkg/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type authService struct {
	logger *zap.Logger
	repo   *repository.Repository
	cfg    config.AuthConfig
}

func newAuthService(logger *zap.Logger, repo *repository.Repository, cfg config.AuthConfig) Auth {
	return &authService{
		logger: logger,
		repo:   repo,
		cfg:    cfg,
	}
}

func (s *authService) Register(ctx context.Context, input dto.RegisterRequest) (string, error) {
	email := normalizeEmail(input.Email)

	_, err := s.repo.Mongo.User.FindByEmail(ctx, email)
	if err == nil {
		return "", ErrUserAlreadyExists
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		s.logger.Sugar().Errorf("failed to find user by email(%s): %s", email, err.Error())
		return "", ErrInternal
	}

	hash, err := utils.HashPassword(input.Password)
	if err != nil {
		s.logger.Sugar().Errorf("failed to hash password: %s", err.Error())
		return "", ErrInternal
	}

	user, err := s.repo.Mongo.User.Create(ctx, model.User{
		Name:     input.Name,
		Email:    email,
		Password: hash,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", ErrUserAlreadyExists
		}
		s.logger.Sugar().Errorf("failed to create user(%s): %s", email, err.Error())
		return "", ErrInternal
	}

	return s.issueToken(user.ID.Hex())
}

func (s *authService) Login(ctx context.Context, input dto.LoginRequest) (string, error) {
	email := normalizeEmail(input.Email)

	user, err := s.repo.Mongo.User.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", ErrInvalidCredentials
		}
		s.logger.Sugar().Errorf("failed to find user by email(%s): %s", email, err.Error())
		return "", ErrInternal
	}

	if !utils.CheckPassword(user.Password, input.Password) {
		return "", ErrInvalidCredentials
	}

	return s.issueToken(user.ID.Hex())
}

// ParseToken returns the id of the user the token was issued to.
func (s *authService) ParseToken(token string) (string, error) {
	claims, err := utils.DecodeJWT(token, s.cfg.Secret)
	if err != nil {
		return "", ErrInvalidToken
	}

	id, err := utils.UserIDFromClaims(claims)
	if err != nil {
		return "", ErrInvalidToken
	}

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return "", ErrInvalidToken
	}

	return id, nil
}

func (s *authService) issueToken(userID string) (string, error) {
	token, err := utils.GenerateJWT(userID, s.cfg.Secret, s.cfg.TokenTTL)
	if err != nil {
		s.logger.Sugar().Errorf("failed to sign token for user(%s): %s", userID, err.Error())
		return "", ErrInternal
	}

	return token, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
