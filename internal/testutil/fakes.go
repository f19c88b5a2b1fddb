// Package testutil holds in-memory stand-ins for the mongo, redis and rabbitmq
// backed collaborators so services and handlers can be tested without servers.
package testutil

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/BloggingApp/blog-service/internal/model"
	"github.com/BloggingApp/blog-service/internal/repository"
	"github.com/BloggingApp/blog-service/internal/repository/mongorepo"
	"github.com/BloggingApp/blog-service/internal/repository/redisrepo"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Fakes struct {
	Posts     *PostRepo
	Users     *UserRepo
	Cache     *Cache
	Publisher *Publisher
}

func NewFakes() *Fakes {
	return &Fakes{
		Posts:     NewPostRepo(),
		Users:     NewUserRepo(),
		Cache:     NewCache(),
		Publisher: &Publisher{},
	}
}

func (f *Fakes) Repository() *repository.Repository {
	return &repository.Repository{
		Mongo: &mongorepo.MongoRepository{
			Post: f.Posts,
			User: f.Users,
		},
		Redis: &redisrepo.RedisRepository{
			Default: f.Cache,
		},
	}
}

// PostRepo keeps copies of posts so callers can't mutate stored state in place.
type PostRepo struct {
	mu    sync.Mutex
	order []primitive.ObjectID
	posts map[primitive.ObjectID]model.Post
	// Err, when set, is returned by every call.
	Err error
}

func NewPostRepo() *PostRepo {
	return &PostRepo{posts: make(map[primitive.ObjectID]model.Post)}
}

func (r *PostRepo) Create(ctx context.Context, post model.Post) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

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

	r.posts[post.ID] = clonePost(post)
	r.order = append(r.order, post.ID)

	return &post, nil
}

func (r *PostRepo) FindAll(ctx context.Context) ([]*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	posts := []*model.Post{}
	for _, id := range r.order {
		if post, ok := r.posts[id]; ok {
			p := clonePost(post)
			posts = append(posts, &p)
		}
	}

	return posts, nil
}

func (r *PostRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	post, ok := r.posts[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}

	p := clonePost(post)
	return &p, nil
}

func (r *PostRepo) Save(ctx context.Context, post *model.Post) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	if _, ok := r.posts[post.ID]; !ok {
		return mongo.ErrNoDocuments
	}

	post.UpdatedAt = time.Now().UTC().Truncate(time.Millisecond)
	r.posts[post.ID] = clonePost(*post)

	return nil
}

func (r *PostRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return r.Err
	}

	if _, ok := r.posts[id]; !ok {
		return mongo.ErrNoDocuments
	}
	delete(r.posts, id)

	return nil
}

func (r *PostRepo) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.posts)
}

// Get returns the stored post without going through the error injection.
func (r *PostRepo) Get(id primitive.ObjectID) (model.Post, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	post, ok := r.posts[id]
	return clonePost(post), ok
}

func clonePost(p model.Post) model.Post {
	p.Likes = append([]model.Reaction{}, p.Likes...)
	p.Comments = append([]model.Comment{}, p.Comments...)
	return p
}

type UserRepo struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]model.User
	Err   error
}

func NewUserRepo() *UserRepo {
	return &UserRepo{users: make(map[primitive.ObjectID]model.User)}
}

// Add stores a user directly and returns it with a fresh id.
func (r *UserRepo) Add(name, email string) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()

	user := model.User{ID: primitive.NewObjectID(), Name: name, Email: email}
	r.users[user.ID] = user
	return &user
}

func (r *UserRepo) EnsureIndexes(ctx context.Context) error {
	return r.Err
}

func (r *UserRepo) Create(ctx context.Context, user model.User) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "duplicate key"}}}
		}
	}

	user.ID = primitive.NewObjectID()
	user.CreatedAt = time.Now().UTC()
	user.UpdatedAt = user.CreatedAt
	r.users[user.ID] = user

	return &user, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	user, ok := r.users[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &user, nil
}

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	for _, u := range r.users {
		if u.Email == email {
			user := u
			return &user, nil
		}
	}
	return nil, mongo.ErrNoDocuments
}

func (r *UserRepo) FindByIDs(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.Err != nil {
		return nil, r.Err
	}

	users := make(map[primitive.ObjectID]*model.User, len(ids))
	for _, id := range ids {
		if u, ok := r.users[id]; ok {
			user := u
			users[id] = &user
		}
	}
	return users, nil
}

type Cache struct {
	mu     sync.Mutex
	values map[string]string
	// Err, when set, fails every command.
	Err error
}

func NewCache() *Cache {
	return &Cache{values: make(map[string]string)}
}

func (c *Cache) SetJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return c.Err
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.values[key] = string(data)
	return nil
}

func (c *Cache) Get(ctx context.Context, key string) *redis.StringCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return redis.NewStringResult("", c.Err)
	}

	value, ok := c.values[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(value, nil)
}

func (c *Cache) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.Err != nil {
		return redis.NewIntResult(0, c.Err)
	}

	var n int64
	for _, key := range keys {
		if _, ok := c.values[key]; ok {
			delete(c.values, key)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func (c *Cache) Has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[key]
	return ok
}

type Message struct {
	Queue string
	Body  []byte
}

type Publisher struct {
	mu       sync.Mutex
	Messages []Message
	Err      error
}

func (p *Publisher) PublishJSON(ctx context.Context, queue string, v interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}

	body, err := json.Marshal(v)
	if err != nil {
		return err
	}
	p.Messages = append(p.Messages, Message{Queue: queue, Body: body})
	return nil
}

func (p *Publisher) Queues() []string {
	p.mu.Lock()
	defer p.mu.Unlock()

	queues := make([]string, 0, len(p.Messages))
	for _, m := range p.Messages {
		queues = append(queues, m.Queue)
	}
	return queues
}
