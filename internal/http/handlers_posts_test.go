package httpx

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/inkpost/inkpost/internal/domain/auth"
	"github.com/inkpost/inkpost/internal/domain/model"
	mockrepo "github.com/inkpost/inkpost/internal/mocks/repo"
	"github.com/inkpost/inkpost/internal/service"
	"github.com/inkpost/inkpost/internal/testutil"
)

type postTestEnv struct {
	handlers *PostHandlers
	users    *mockrepo.MemoryUserRepo
	posts    *mockrepo.MemoryPostRepo
	user     *model.User
}

func newPostTestEnv(t *testing.T) *postTestEnv {
	t.Helper()
	users := mockrepo.NewMemoryUserRepo()
	posts := mockrepo.NewMemoryPostRepo()

	user := model.User{
		ID:         "user-1",
		ExternalID: "sub-1",
		Email:      "author@example.com",
		Name:       "Author One",
		AvatarURL:  testutil.StringPtr("https://idp.example.com/a.png"),
		CreatedAt:  time.Now(),
	}
	users.Seed(user)

	return &postTestEnv{
		handlers: &PostHandlers{
			Posts:    service.NewPostService(service.PostServiceOptions{Posts: posts}),
			Users:    users,
			Renderer: newTestRenderer(t),
		},
		users: users,
		posts: posts,
		user:  &user,
	}
}

// authedRequest builds a request carrying a session for the given user, as the
// auth middleware would have produced.
func authedRequest(method, target string, body io.Reader, userID string) *http.Request {
	req := httptest.NewRequest(method, target, body)
	sess := &domainauth.Session{ID: "sess-1", UserID: userID, ExpiresAt: time.Now().Add(time.Hour)}
	return req.WithContext(SetSessionInContext(req.Context(), sess))
}

func (e *postTestEnv) seedPost(id, title, ownerID string) {
	e.posts.Seed(model.Post{
		ID:         id,
		Title:      title,
		AuthorName: "Author One",
		Content:    "<p>body</p>",
		UserID:     ownerID,
		CreatedAt:  time.Now(),
	})
}

func TestHome_ShowsOwnPosts(t *testing.T) {
	env := newPostTestEnv(t)
	env.seedPost("p1", "Mine", env.user.ID)
	env.seedPost("p2", "Someone Elses", "user-2")

	rec := httptest.NewRecorder()
	env.handlers.Home(rec, authedRequest(http.MethodGet, "/", nil, env.user.ID))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Mine")
	assert.NotContains(t, body, "Someone Elses")
	assert.Contains(t, body, env.user.Name)
}

func TestFeed_ShowsEveryonesPosts(t *testing.T) {
	env := newPostTestEnv(t)
	env.seedPost("p1", "Mine", env.user.ID)
	env.seedPost("p2", "Theirs", "user-2")

	rec := httptest.NewRecorder()
	env.handlers.Feed(rec, authedRequest(http.MethodGet, "/posts", nil, env.user.ID))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Mine")
	assert.Contains(t, body, "Theirs")
}

func TestMyPosts_OnlyOwn(t *testing.T) {
	env := newPostTestEnv(t)
	env.seedPost("p1", "Mine", env.user.ID)
	env.seedPost("p2", "Theirs", "user-2")

	rec := httptest.NewRecorder()
	env.handlers.MyPosts(rec, authedRequest(http.MethodGet, "/my-posts", nil, env.user.ID))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Mine")
	assert.NotContains(t, body, "Theirs")
	// Own posts carry a delete control
	assert.Contains(t, body, "/delete/p1")
}

func TestRead_RendersPost(t *testing.T) {
	env := newPostTestEnv(t)
	env.seedPost("p1", "Deep Dive", env.user.ID)

	req := authedRequest(http.MethodGet, "/read/p1", nil, env.user.ID)
	req.SetPathValue("postID", "p1")
	rec := httptest.NewRecorder()
	env.handlers.Read(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Deep Dive")
}

func TestRead_MissingPostRenders404(t *testing.T) {
	env := newPostTestEnv(t)

	req := authedRequest(http.MethodGet, "/read/nope", nil, env.user.ID)
	req.SetPathValue("postID", "nope")
	rec := httptest.NewRecorder()
	env.handlers.Read(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func composeForm(t *testing.T, fields map[string]string, files map[string][][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, payloads := range files {
		for i, payload := range payloads {
			fw, err := mw.CreateFormFile(field, field+"-"+string(rune('a'+i)))
			require.NoError(t, err)
			_, err = fw.Write(payload)
			require.NoError(t, err)
		}
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestComposeSubmit_CreatesPostAndRedirects(t *testing.T) {
	env := newPostTestEnv(t)

	body, contentType := composeForm(t, map[string]string{
		"title":   "Fresh Ink",
		"content": "<p>hello</p>",
		"links":   "https://example.com, https://example.org",
	}, map[string][][]byte{
		"images": {[]byte("fake-image")},
	})

	req := authedRequest(http.MethodPost, "/compose", body, env.user.ID)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.handlers.ComposeSubmit(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/my-posts", rec.Header().Get("Location"))

	posts, err := env.posts.ListByOwner(t.Context(), env.user.ID)
	require.NoError(t, err)
	require.Len(t, posts, 1)
	assert.Equal(t, "Fresh Ink", posts[0].Title)
	assert.Equal(t, env.user.Name, posts[0].AuthorName)
	assert.Len(t, posts[0].Images, 1)
	assert.Equal(t, []string{"https://example.com", "https://example.org"}, posts[0].Links)
}

func TestComposeSubmit_EmptyTitleRerendersForm(t *testing.T) {
	env := newPostTestEnv(t)

	body, contentType := composeForm(t, map[string]string{
		"title":   "",
		"content": "body text",
	}, nil)

	req := authedRequest(http.MethodPost, "/compose", body, env.user.ID)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.handlers.ComposeSubmit(rec, req)

	// Form is shown again with the submitted content echoed back
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "body text")
	assert.Equal(t, 0, env.posts.Len())
}

func TestComposeSubmit_TooManyImagesRerendersForm(t *testing.T) {
	env := newPostTestEnv(t)

	payloads := make([][]byte, model.MaxPostImages+1)
	for i := range payloads {
		payloads[i] = []byte("img")
	}
	body, contentType := composeForm(t, map[string]string{"title": "Overloaded"}, map[string][][]byte{
		"images": payloads,
	})

	req := authedRequest(http.MethodPost, "/compose", body, env.user.ID)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.handlers.ComposeSubmit(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "too many images")
	assert.Equal(t, 0, env.posts.Len())
}

func TestDelete_OwnerRedirectsToMyPosts(t *testing.T) {
	env := newPostTestEnv(t)
	env.seedPost("p1", "Mine", env.user.ID)

	req := authedRequest(http.MethodPost, "/delete/p1", nil, env.user.ID)
	req.SetPathValue("postID", "p1")
	rec := httptest.NewRecorder()
	env.handlers.Delete(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/my-posts", rec.Header().Get("Location"))
	assert.Equal(t, 0, env.posts.Len())
}

func TestDelete_NotOwnerRenders403(t *testing.T) {
	env := newPostTestEnv(t)
	env.seedPost("p1", "Theirs", "user-2")

	req := authedRequest(http.MethodPost, "/delete/p1", nil, env.user.ID)
	req.SetPathValue("postID", "p1")
	rec := httptest.NewRecorder()
	env.handlers.Delete(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 1, env.posts.Len())
}

func TestDelete_MissingRenders404(t *testing.T) {
	env := newPostTestEnv(t)

	req := authedRequest(http.MethodPost, "/delete/nope", nil, env.user.ID)
	req.SetPathValue("postID", "nope")
	rec := httptest.NewRecorder()
	env.handlers.Delete(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
