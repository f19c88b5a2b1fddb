package service

import (
	"context"
	"errors"
	"time"

	"github.com/BloggingApp/blog-service/internal/dto"
	"github.com/BloggingApp/blog-service/internal/metrics"
	"github.com/BloggingApp/blog-service/internal/model"
	"github.com/BloggingApp/blog-service/internal/rabbitmq"
	"github.com/BloggingApp/blog-service/internal/repository"
	"github.com/BloggingApp/blog-service/internal/repository/redisrepo"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type postService struct {
	logger    *zap.Logger
	repo      *repository.Repository
	publisher Publisher
	cacheTTL  time.Duration
}

func newPostService(logger *zap.Logger, repo *repository.Repository, publisher Publisher, cacheTTL time.Duration) Post {
	return &postService{
		logger:    logger,
		repo:      repo,
		publisher: publisher,
		cacheTTL:  cacheTTL,
	}
}

func (s *postService) Create(ctx context.Context, authorID string, input dto.CreatePostRequest) (*model.Post, error) {
	author, err := primitive.ObjectIDFromHex(authorID)
	if err != nil {
		return nil, ErrNotAuthorized
	}

	post := model.Post{
		Title:   input.Title,
		Content: input.Content,
		Author:  author,
	}
	if post.Title == "" || post.Content == "" {
		return nil, ErrEmptyPostFields
	}
	if input.Image != "" {
		image := input.Image
		post.Image = &image
	}

	createdPost, err := s.repo.Mongo.Post.Create(ctx, post)
	if err != nil {
		s.logger.Sugar().Errorf("failed to create user(%s) post: %s", authorID, err.Error())
		return nil, ErrInternal
	}

	metrics.PostMutations.WithLabelValues(metrics.MutationCreate).Inc()
	s.invalidate(ctx, "")
	s.publish(ctx, rabbitmq.POST_CREATED_QUEUE, dto.MQPostCreatedMsg{
		MessageID: uuid.New(),
		PostID:    createdPost.ID.Hex(),
		UserID:    authorID,
		PostTitle: createdPost.Title,
		CreatedAt: createdPost.CreatedAt,
	})

	return createdPost, nil
}

func (s *postService) FindAll(ctx context.Context) ([]*model.FullPost, error) {
	cachedPosts, err := redisrepo.GetMany[model.FullPost](s.repo.Redis.Default, ctx, redisrepo.PostsKey())
	if err == nil {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cachedPosts, nil
	}
	s.cacheMiss(err, "failed to get posts from redis")

	posts, err := s.repo.Mongo.Post.FindAll(ctx)
	if err != nil {
		s.logger.Sugar().Errorf("failed to find posts in mongo: %s", err.Error())
		return nil, ErrInternal
	}

	users, err := s.resolveUsers(ctx, posts, false)
	if err != nil {
		return nil, err
	}

	fullPosts := make([]*model.FullPost, 0, len(posts))
	for _, post := range posts {
		fullPosts = append(fullPosts, model.NewFullPost(post, users, false))
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, redisrepo.PostsKey(), fullPosts, s.cacheTTL); err != nil {
		s.logger.Sugar().Errorf("failed to set posts in redis: %s", err.Error())
	}

	return fullPosts, nil
}

func (s *postService) FindByID(ctx context.Context, id string) (*model.FullPost, error) {
	cachedPost, err := redisrepo.Get[model.FullPost](s.repo.Redis.Default, ctx, redisrepo.PostKey(id))
	if err == nil {
		metrics.CacheLookups.WithLabelValues("hit").Inc()
		return cachedPost, nil
	}
	s.cacheMiss(err, "failed to get post("+id+") from redis")

	post, err := s.findPost(ctx, id)
	if err != nil {
		return nil, err
	}

	fullPost, err := s.populate(ctx, post)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Redis.Default.SetJSON(ctx, redisrepo.PostKey(id), fullPost, s.cacheTTL); err != nil {
		s.logger.Sugar().Errorf("failed to set post(%s) in redis: %s", id, err.Error())
	}

	return fullPost, nil
}

// Update changes title and content only. A nil or empty field keeps the stored value.
func (s *postService) Update(ctx context.Context, id string, requesterID string, input dto.EditPostRequest) (*model.FullPost, error) {
	post, err := s.findPost(ctx, id)
	if err != nil {
		return nil, err
	}

	if !isAuthor(post, requesterID) {
		return nil, ErrNotAuthorized
	}

	if input.Title != nil && *input.Title != "" {
		post.Title = *input.Title
	}
	if input.Content != nil && *input.Content != "" {
		post.Content = *input.Content
	}

	if err := s.save(ctx, post); err != nil {
		return nil, err
	}

	metrics.PostMutations.WithLabelValues(metrics.MutationUpdate).Inc()

	return s.populate(ctx, post)
}

func (s *postService) Delete(ctx context.Context, id string, requesterID string) error {
	post, err := s.findPost(ctx, id)
	if err != nil {
		return err
	}

	if !isAuthor(post, requesterID) {
		return ErrNotAuthorized
	}

	if err := s.repo.Mongo.Post.Delete(ctx, post.ID); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrPostNotFound
		}
		s.logger.Sugar().Errorf("failed to delete post(%s): %s", id, err.Error())
		return ErrInternal
	}

	metrics.PostMutations.WithLabelValues(metrics.MutationDelete).Inc()
	s.invalidate(ctx, id)
	s.publish(ctx, rabbitmq.POST_DELETED_QUEUE, dto.MQPostDeletedMsg{
		MessageID: uuid.New(),
		PostID:    id,
		UserID:    requesterID,
		DeletedAt: time.Now().UTC(),
	})

	return nil
}

// React replaces the requester's reaction. An empty reactionType removes it.
func (s *postService) React(ctx context.Context, id string, requesterID string, reactionType string) (*model.Post, error) {
	kind := model.ReactionType(reactionType)
	if kind != "" && !kind.Valid() {
		return nil, ErrInvalidReactionType
	}

	userID, err := primitive.ObjectIDFromHex(requesterID)
	if err != nil {
		return nil, ErrNotAuthorized
	}

	post, err := s.findPost(ctx, id)
	if err != nil {
		return nil, err
	}

	post.SetReaction(userID, kind)

	if err := s.save(ctx, post); err != nil {
		return nil, err
	}

	metrics.PostMutations.WithLabelValues(metrics.MutationReact).Inc()

	return post, nil
}

func (s *postService) AddComment(ctx context.Context, id string, requesterID string, text string) (*model.Post, error) {
	if text == "" {
		return nil, ErrEmptyCommentText
	}

	userID, err := primitive.ObjectIDFromHex(requesterID)
	if err != nil {
		return nil, ErrNotAuthorized
	}

	post, err := s.findPost(ctx, id)
	if err != nil {
		return nil, err
	}

	comment := post.AddComment(userID, text, time.Now().UTC().Truncate(time.Millisecond))

	if err := s.save(ctx, post); err != nil {
		return nil, err
	}

	metrics.PostMutations.WithLabelValues(metrics.MutationComment).Inc()
	s.publish(ctx, rabbitmq.POST_COMMENTED_QUEUE, dto.MQPostCommentedMsg{
		MessageID:    uuid.New(),
		PostID:       id,
		PostAuthorID: post.Author.Hex(),
		CommenterID:  requesterID,
		CommentID:    comment.ID.Hex(),
		CommentedAt:  comment.CreatedAt,
	})

	return post, nil
}

// findPost loads a post by its hex id. A malformed id is reported as an
// internal error, the same as any other storage failure.
func (s *postService) findPost(ctx context.Context, id string) (*model.Post, error) {
	postID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		s.logger.Sugar().Errorf("failed to parse post id(%s): %s", id, err.Error())
		return nil, ErrInternal
	}

	post, err := s.repo.Mongo.Post.FindByID(ctx, postID)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrPostNotFound
		}
		s.logger.Sugar().Errorf("failed to find post(%s) in mongo: %s", id, err.Error())
		return nil, ErrInternal
	}

	return post, nil
}

func (s *postService) save(ctx context.Context, post *model.Post) error {
	if err := s.repo.Mongo.Post.Save(ctx, post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrPostNotFound
		}
		s.logger.Sugar().Errorf("failed to save post(%s): %s", post.ID.Hex(), err.Error())
		return ErrInternal
	}

	s.invalidate(ctx, post.ID.Hex())

	return nil
}

func (s *postService) populate(ctx context.Context, post *model.Post) (*model.FullPost, error) {
	users, err := s.resolveUsers(ctx, []*model.Post{post}, true)
	if err != nil {
		return nil, err
	}

	return model.NewFullPost(post, users, true), nil
}

func (s *postService) resolveUsers(ctx context.Context, posts []*model.Post, withCommentUsers bool) (map[primitive.ObjectID]*model.User, error) {
	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	add := func(id primitive.ObjectID) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}

	for _, post := range posts {
		add(post.Author)
		if withCommentUsers {
			for _, comment := range post.Comments {
				add(comment.User)
			}
		}
	}

	users, err := s.repo.Mongo.User.FindByIDs(ctx, ids)
	if err != nil {
		s.logger.Sugar().Errorf("failed to resolve %d users in mongo: %s", len(ids), err.Error())
		return nil, ErrInternal
	}

	return users, nil
}

// invalidate drops the cached list and, when postID is set, the cached post.
func (s *postService) invalidate(ctx context.Context, postID string) {
	keys := []string{redisrepo.PostsKey()}
	if postID != "" {
		keys = append(keys, redisrepo.PostKey(postID))
	}

	if err := s.repo.Redis.Default.Del(ctx, keys...).Err(); err != nil {
		s.logger.Sugar().Errorf("failed to delete keys %v from redis: %s", keys, err.Error())
	}
}

func (s *postService) cacheMiss(err error, msg string) {
	if errors.Is(err, redis.Nil) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return
	}
	metrics.CacheLookups.WithLabelValues("error").Inc()
	s.logger.Sugar().Errorf("%s: %s", msg, err.Error())
}

func (s *postService) publish(ctx context.Context, queue string, msg interface{}) {
	if s.publisher == nil {
		return
	}

	if err := s.publisher.PublishJSON(ctx, queue, msg); err != nil {
		s.logger.Sugar().Errorf("failed to publish to queue(%s): %s", queue, err.Error())
	}
}

func isAuthor(post *model.Post, requesterID string) bool {
	userID, err := primitive.ObjectIDFromHex(requesterID)
	if err != nil {
		return false
	}
	return post.IsAuthor(userID)
}
