package httpx

import (
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/inkpost/inkpost/internal/core"
	"github.com/inkpost/inkpost/internal/domain/model"
	apperrors "github.com/inkpost/inkpost/internal/errors"
	"github.com/inkpost/inkpost/internal/service"
)

// PostHandlers provides HTTP handlers for browsing, composing, and deleting posts.
type PostHandlers struct {
	Posts    *service.PostService
	Users    core.UserRepository
	Renderer *TemplateRenderer

	// MaxUploadBytes bounds the compose form body, attachments included.
	MaxUploadBytes int64

	Logger *slog.Logger
}

const defaultMaxUploadBytes = 16 << 20

func (h *PostHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

func (h *PostHandlers) maxUploadBytes() int64 {
	if h.MaxUploadBytes > 0 {
		return h.MaxUploadBytes
	}
	return defaultMaxUploadBytes
}

// currentUser resolves the signed-in user from the session placed in the
// context by the auth middleware.
func (h *PostHandlers) currentUser(r *http.Request) (*model.User, error) {
	session, ok := GetUserSessionFromContext(r.Context())
	if !ok {
		return nil, apperrors.PermissionDenied("sign in required")
	}
	return h.Users.GetByID(r.Context(), session.UserID)
}

// Home renders the signed-in landing page.
// GET /.
func (h *PostHandlers) Home(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	posts, err := h.Posts.ListByOwner(r.Context(), user.ID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.renderPage(w, r, "home", &PageData{
		Title:       "Home",
		CurrentPage: PageHome,
		User:        user,
		Posts:       posts,
	})
}

// Feed renders every post, newest first.
// GET /posts.
func (h *PostHandlers) Feed(w http.ResponseWriter, r *http.Request) {
	// The user lookup and the post list are independent queries.
	var (
		user  *model.User
		posts []*model.Post
	)
	g, ctx := errgroup.WithContext(r.Context())
	g.Go(func() error {
		var err error
		session, ok := GetUserSessionFromContext(ctx)
		if !ok {
			return apperrors.PermissionDenied("sign in required")
		}
		user, err = h.Users.GetByID(ctx, session.UserID)
		return err
	})
	g.Go(func() error {
		var err error
		posts, err = h.Posts.ListAll(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		h.renderError(w, r, err)
		return
	}

	h.renderPage(w, r, "posts", &PageData{
		Title:       "All Posts",
		CurrentPage: PageFeed,
		User:        user,
		Posts:       posts,
	})
}

// MyPosts renders the signed-in user's posts.
// GET /my-posts.
func (h *PostHandlers) MyPosts(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	posts, err := h.Posts.ListByOwner(r.Context(), user.ID)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.renderPage(w, r, "my-posts", &PageData{
		Title:       "My Posts",
		CurrentPage: PageMyPosts,
		User:        user,
		Posts:       posts,
	})
}

// Read renders a single post.
// GET /read/{postID}.
func (h *PostHandlers) Read(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	post, err := h.Posts.Get(r.Context(), r.PathValue("postID"))
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.renderPage(w, r, "read", &PageData{
		Title:       post.Title,
		CurrentPage: PageRead,
		User:        user,
		Post:        post,
	})
}

// ComposeForm renders the compose page.
// GET /compose.
func (h *PostHandlers) ComposeForm(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	h.renderPage(w, r, "compose", &PageData{
		Title:       "Compose",
		CurrentPage: PageCompose,
		User:        user,
	})
}

// ComposeSubmit accepts the multipart compose form and creates a post.
// POST /compose.
func (h *PostHandlers) ComposeSubmit(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes())
	if parseErr := r.ParseMultipartForm(h.maxUploadBytes()); parseErr != nil {
		h.rerenderCompose(w, r, user, "The upload is too large or the form is malformed.")
		return
	}

	images, err := encodeUploads(r.MultipartForm, "images", model.MaxPostImages)
	if err != nil {
		h.rerenderCompose(w, r, user, err.Error())
		return
	}
	documents, err := encodeUploads(r.MultipartForm, "pdfs", model.MaxPostDocuments)
	if err != nil {
		h.rerenderCompose(w, r, user, err.Error())
		return
	}

	_, err = h.Posts.Compose(r.Context(), user, service.ComposeInput{
		Title:     r.FormValue("title"),
		Content:   r.FormValue("content"),
		LinksRaw:  r.FormValue("links"),
		Images:    images,
		Documents: documents,
	})
	if err != nil {
		if apperrors.IsValidation(err) {
			h.rerenderCompose(w, r, user, err.Error())
			return
		}
		h.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/my-posts", http.StatusFound)
}

// Delete removes a post owned by the signed-in user.
// POST /delete/{postID}.
func (h *PostHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := h.currentUser(r)
	if err != nil {
		h.renderError(w, r, err)
		return
	}

	if err := h.Posts.Delete(r.Context(), r.PathValue("postID"), user.ID); err != nil {
		h.renderError(w, r, err)
		return
	}

	http.Redirect(w, r, "/my-posts", http.StatusFound)
}

// rerenderCompose shows the compose form again with the submitted values and
// a validation message.
func (h *PostHandlers) rerenderCompose(w http.ResponseWriter, r *http.Request, user *model.User, message string) {
	data := &PageData{
		Title:       "Compose",
		CurrentPage: PageCompose,
		User:        user,
		FormError:   message,
		Form: ComposeFormData{
			Title:   r.FormValue("title"),
			Content: r.FormValue("content"),
			Links:   r.FormValue("links"),
		},
	}
	if err := h.Renderer.RenderPage(w, "compose", data); err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *PostHandlers) renderPage(w http.ResponseWriter, r *http.Request, name string, data *PageData) {
	if err := h.Renderer.RenderPage(w, name, data); err != nil {
		h.logger().ErrorContext(r.Context(), "render failed",
			slog.String("page", name),
			slog.Any("error", err),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

// encodeUploads base64-encodes up to maxFiles attachments from the named
// multipart field. Empty file slots are skipped.
func encodeUploads(form *multipart.Form, field string, maxFiles int) ([]string, error) {
	if form == nil {
		return nil, nil
	}
	headers := form.File[field]
	if len(headers) > maxFiles {
		return nil, errors.New("too many " + field + " attachments")
	}

	encoded := make([]string, 0, len(headers))
	for _, header := range headers {
		if header.Size == 0 {
			continue
		}
		payload, err := readUpload(header)
		if err != nil {
			return nil, err
		}
		encoded = append(encoded, base64.StdEncoding.EncodeToString(payload))
	}
	if len(encoded) == 0 {
		return nil, nil
	}
	return encoded, nil
}

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, errors.New("could not read uploaded file")
	}
	defer f.Close()

	payload, err := io.ReadAll(f)
	if err != nil {
		return nil, errors.New("could not read uploaded file")
	}
	return payload, nil
}
