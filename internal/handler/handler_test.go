package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/BloggingApp/blog-service/internal/config"
	"github.com/BloggingApp/blog-service/internal/dto"
	"github.com/BloggingApp/blog-service/internal/model"
	"github.com/BloggingApp/blog-service/internal/service"
	"github.com/BloggingApp/blog-service/internal/testutil"
	"github.com/BloggingApp/blog-service/pkg/utils"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

var testSecret = []byte("handler-secret")

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	fakes  *testutil.Fakes
}

func newTestServer(t *testing.T, httpCfg config.HTTPConfig) *testServer {
	t.Helper()

	fakes := testutil.NewFakes()
	services := service.New(zap.NewNop(), fakes.Repository(), fakes.Publisher, service.Options{
		CacheTTL: time.Minute,
		Auth:     config.AuthConfig{Secret: testSecret, TokenTTL: time.Hour},
	})

	return &testServer{
		t:      t,
		router: New(services, zap.NewNop(), httpCfg).InitRoutes(),
		fakes:  fakes,
	}
}

func (s *testServer) token(user *model.User) string {
	s.t.Helper()

	token, err := utils.GenerateJWT(user.ID.Hex(), testSecret, time.Hour)
	require.NoError(s.t, err)
	return token
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestPostLifecycleScenario(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, config.HTTPConfig{})
	u1 := s.fakes.Users.Add("U1", "u1@example.com")
	u2 := s.fakes.Users.Add("U2", "u2@example.com")

	w := s.do(http.MethodPost, "/api/posts", s.token(u1), gin.H{"title": "A", "content": "B"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[model.Post](t, w)
	require.Equal(t, u1.ID, created.Author)
	require.Empty(t, created.Likes)
	require.Empty(t, created.Comments)
	require.Contains(t, w.Body.String(), `"likes":[]`)
	require.Contains(t, w.Body.String(), `"comments":[]`)

	postPath := "/api/posts/" + created.ID.Hex()

	w = s.do(http.MethodPost, postPath+"/react", s.token(u2), gin.H{"type": "like"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	reacted := decode[model.Post](t, w)
	require.Len(t, reacted.Likes, 1)
	require.Equal(t, u2.ID, reacted.Likes[0].User)
	require.Equal(t, model.ReactionLike, reacted.Likes[0].Type)

	w = s.do(http.MethodDelete, postPath, s.token(u2), nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Not authorized", decode[dto.MsgResponse](t, w).Msg)

	w = s.do(http.MethodDelete, postPath, s.token(u1), nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.JSONEq(t, `{"msg":"Post removed"}`, w.Body.String())

	w = s.do(http.MethodGet, postPath, "", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.Equal(t, "Post not found", decode[dto.MsgResponse](t, w).Msg)
}

func TestPostsCreate_Validation(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, config.HTTPConfig{})
	u1 := s.fakes.Users.Add("U1", "u1@example.com")

	w := s.do(http.MethodPost, "/api/posts", s.token(u1), gin.H{"title": "", "content": "B"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode[dto.ErrorsResponse](t, w)
	require.Len(t, resp.Errors, 1)
	require.Equal(t, "title", resp.Errors[0].Field)
	require.Equal(t, "Title is required", resp.Errors[0].Msg)

	w = s.do(http.MethodPost, "/api/posts", s.token(u1), gin.H{"title": "A"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	require.Zero(t, s.fakes.Posts.Count())
}

func TestPostsCreate_RequiresAuth(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, config.HTTPConfig{})

	w := s.do(http.MethodPost, "/api/posts", "", gin.H{"title": "A", "content": "B"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "No token, authorization denied", decode[dto.MsgResponse](t, w).Msg)

	w = s.do(http.MethodPost, "/api/posts", "garbage", gin.H{"title": "A", "content": "B"})
	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Equal(t, "Token is not valid", decode[dto.MsgResponse](t, w).Msg)

	require.Zero(t, s.fakes.Posts.Count())
}

func TestPostsGet_PopulatesUsers(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, config.HTTPConfig{})
	u1 := s.fakes.Users.Add("U1", "u1@example.com")
	u2 := s.fakes.Users.Add("U2", "u2@example.com")

	w := s.do(http.MethodPost, "/api/posts", s.token(u1), gin.H{"title": "A", "content": "B"})
	require.Equal(t, http.StatusOK, w.Code)
	created := decode[model.Post](t, w)
	postPath := "/api/posts/" + created.ID.Hex()

	w = s.do(http.MethodPost, postPath+"/comment", s.token(u2), gin.H{"text": "first"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = s.do(http.MethodPost, postPath+"/comment", s.token(u1), gin.H{"text": "second"})
	require.Equal(t, http.StatusOK, w.Code)
	commented := decode[model.Post](t, w)
	require.Len(t, commented.Comments, 2)

	w = s.do(http.MethodGet, postPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	full := decode[model.FullPost](t, w)
	require.Equal(t, model.UserAuthor{ID: u1.ID, Name: "U1", Email: "u1@example.com"}, full.Author)
	require.Len(t, full.Comments, 2)
	require.Equal(t, "first", full.Comments[0].Text)
	require.Equal(t, "U2", full.Comments[0].User.Name)
	require.Equal(t, "second", full.Comments[1].Text)
	require.Equal(t, "u1@example.com", full.Comments[1].User.Email)

	w = s.do(http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]model.FullPost](t, w)
	require.Len(t, list, 1)
	require.Equal(t, "U1", list[0].Author.Name)
}

func TestPostsGet_MalformedIDIsServerError(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, config.HTTPConfig{})

	w := s.do(http.MethodGet, "/api/posts/not-an-id", "", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Equal(t, "Server error", decode[dto.MsgResponse](t, w).Msg)
}

func TestPostsUpdate(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, config.HTTPConfig{})
	u1 := s.fakes.Users.Add("U1", "u1@example.com")
	u2 := s.fakes.Users.Add("U2", "u2@example.com")

	w := s.do(http.MethodPost, "/api/posts", s.token(u1), gin.H{"title": "A", "content": "B"})
	created := decode[model.Post](t, w)
	postPath := "/api/posts/" + created.ID.Hex()

	w = s.do(http.MethodPut, postPath, s.token(u2), gin.H{"title": "X"})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPut, postPath, s.token(u1), gin.H{"title": "", "content": "C"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[model.FullPost](t, w)
	require.Equal(t, "A", updated.Title)
	require.Equal(t, "C", updated.Content)
	require.Equal(t, "U1", updated.Author.Name)

	w = s.do(http.MethodPut, "/api/posts/"+primitive.NewObjectID().Hex(), s.token(u1), gin.H{"title": "X"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPostsReact(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, config.HTTPConfig{})
	u1 := s.fakes.Users.Add("U1", "u1@example.com")

	w := s.do(http.MethodPost, "/api/posts", s.token(u1), gin.H{"title": "A", "content": "B"})
	created := decode[model.Post](t, w)
	reactPath := "/api/posts/" + created.ID.Hex() + "/react"

	w = s.do(http.MethodPost, reactPath, s.token(u1), gin.H{"type": "love"})
	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, decode[model.Post](t, w).Likes, 1)

	// no body removes the reaction
	w = s.do(http.MethodPost, reactPath, s.token(u1), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Empty(t, decode[model.Post](t, w).Likes)

	w = s.do(http.MethodPost, reactPath, s.token(u1), gin.H{"type": "angry"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/posts/"+primitive.NewObjectID().Hex()+"/react", s.token(u1), gin.H{"type": "like"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestCommentsCreate_Validation(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, config.HTTPConfig{})
	u1 := s.fakes.Users.Add("U1", "u1@example.com")

	w := s.do(http.MethodPost, "/api/posts", s.token(u1), gin.H{"title": "A", "content": "B"})
	created := decode[model.Post](t, w)

	w = s.do(http.MethodPost, "/api/posts/"+created.ID.Hex()+"/comment", s.token(u1), gin.H{"text": ""})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "text", decode[dto.ErrorsResponse](t, w).Errors[0].Field)

	w = s.do(http.MethodPost, "/api/posts/"+primitive.NewObjectID().Hex()+"/comment", s.token(u1), gin.H{"text": "hi"})
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestPosts_StorageFailureIsGeneric500(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, config.HTTPConfig{})
	s.fakes.Posts.Err = io.ErrUnexpectedEOF

	w := s.do(http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.JSONEq(t, `{"msg":"Server error"}`, w.Body.String())
}

func TestAuthRoutes(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, config.HTTPConfig{})

	w := s.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Ann", "email": "ann@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	token := decode[dto.TokenResponse](t, w).Token
	require.NotEmpty(t, token)

	w = s.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Ann", "email": "ann@example.com", "password": "secret1"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "User already exists", decode[dto.MsgResponse](t, w).Msg)

	w = s.do(http.MethodPost, "/api/auth/register", "", gin.H{"name": "Bob", "email": "bad", "password": "123"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Len(t, decode[dto.ErrorsResponse](t, w).Errors, 2)

	w = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ann@example.com", "password": "wrong!"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Equal(t, "Invalid credentials", decode[dto.MsgResponse](t, w).Msg)

	w = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "ann@example.com", "password": "secret1"})
	require.Equal(t, http.StatusOK, w.Code)
	loginToken := decode[dto.TokenResponse](t, w).Token

	// the issued token authorizes post creation
	w = s.do(http.MethodPost, "/api/posts", loginToken, gin.H{"title": "A", "content": "B"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, config.HTTPConfig{RateLimitPerMinute: 2})

	// burst is perMinute/2
	w := s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "a@example.com", "password": "x"})
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/api/auth/login", "", gin.H{"email": "a@example.com", "password": "x"})
	require.Equal(t, http.StatusTooManyRequests, w.Code)

	// reads are not limited
	w = s.do(http.MethodGet, "/api/posts", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestHealthAndRequestID(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, config.HTTPConfig{AllowOrigins: []string{"http://localhost:5173"}})

	w := s.do(http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, w.Header().Get(requestIDHeader))

	w = s.do(http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "blog_http_requests_total")
}

func TestPostsCreate_StoresTextAsSent(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, config.HTTPConfig{})
	u1 := s.fakes.Users.Add("U1", "u1@example.com")
	text := `Tom & Jerry's "best" 1 < 2`

	w := s.do(http.MethodPost, "/api/posts", s.token(u1), gin.H{"title": "A", "content": text, "image": "uploads/cat.png"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[model.Post](t, w)
	require.Equal(t, text, created.Content)
	require.NotNil(t, created.Image)
	require.Equal(t, "uploads/cat.png", *created.Image)

	postPath := "/api/posts/" + created.ID.Hex()

	w = s.do(http.MethodPost, postPath+"/comment", s.token(u1), gin.H{"text": text})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, postPath, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	full := decode[model.FullPost](t, w)
	require.Equal(t, text, full.Content)
	require.Equal(t, text, full.Comments[0].Text)
	require.Equal(t, "uploads/cat.png", *full.Image)
}

func TestPostsGet_FormatHTML(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, config.HTTPConfig{})
	u1 := s.fakes.Users.Add("U1", "u1@example.com")

	w := s.do(http.MethodPost, "/api/posts", s.token(u1), gin.H{"title": "A", "content": "<b>hi</b><script>x</script>"})
	created := decode[model.Post](t, w)
	postPath := "/api/posts/" + created.ID.Hex()

	w = s.do(http.MethodPost, postPath+"/comment", s.token(u1), gin.H{"text": "a & b"})
	require.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, postPath+"?format=html", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	full := decode[model.FullPost](t, w)
	require.Equal(t, "<b>hi</b>", full.Content)
	require.Equal(t, "a &amp; b", full.Comments[0].Text)

	w = s.do(http.MethodGet, "/api/posts?format=html", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]model.FullPost](t, w)
	require.Equal(t, "<b>hi</b>", list[0].Content)

	// the stored and cached text is untouched
	w = s.do(http.MethodGet, postPath, "", nil)
	require.Equal(t, "<b>hi</b><script>x</script>", decode[model.FullPost](t, w).Content)

	stored, ok := s.fakes.Posts.Get(created.ID)
	require.True(t, ok)
	require.Equal(t, "<b>hi</b><script>x</script>", stored.Content)
	require.Equal(t, "a & b", stored.Comments[0].Text)
}

func TestRateLimit_PostRoutesUnlimited(t *testing.T) {
	t.Parallel()

	s := newTestServer(t, config.HTTPConfig{RateLimitPerMinute: 2})
	u1 := s.fakes.Users.Add("U1", "u1@example.com")

	for i := 0; i < 5; i++ {
		w := s.do(http.MethodPost, "/api/posts", s.token(u1), gin.H{"title": "A", "content": "B"})
		require.Equal(t, http.StatusOK, w.Code)
	}
	require.Equal(t, 5, s.fakes.Posts.Count())
}
