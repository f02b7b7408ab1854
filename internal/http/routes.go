package httpx

import (
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	inkpost "github.com/inkpost/inkpost"
	"github.com/inkpost/inkpost/internal/core"
	"github.com/inkpost/inkpost/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth  AuthServiceInterface
	Posts *service.PostService
	Users core.UserRepository

	CookieDomain string

	// MaxUploadBytes bounds compose form uploads; zero means the default.
	MaxUploadBytes int64

	// LoginRatePerMinute throttles /auth/login per client; zero means the default.
	LoginRatePerMinute int

	IsDev  bool         // Development mode flag for template hot reloading
	Logger *slog.Logger // Logger for template and HTTP errors (optional)
}

// NewRouter creates and configures the HTTP router.
func NewRouter(services RouterServices) (http.Handler, error) {
	renderer, err := NewTemplateRenderer(TemplateRendererConfig{
		TemplateFS: templateFS(services.IsDev),
		Logger:     services.Logger,
	})
	if err != nil {
		return nil, err
	}

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		Renderer:     renderer,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	postHandlers := &PostHandlers{
		Posts:          services.Posts,
		Users:          services.Users,
		Renderer:       renderer,
		MaxUploadBytes: services.MaxUploadBytes,
		Logger:         services.Logger,
	}

	mux := http.NewServeMux()

	// Public routes
	loginLimiter := NewLoginRateLimiter(services.LoginRatePerMinute, services.Logger)
	mux.HandleFunc("GET /login", authHandlers.LoginPage)
	mux.Handle("GET /auth/login", loginLimiter.Middleware(http.HandlerFunc(authHandlers.Login)))
	mux.HandleFunc("GET /auth/callback", authHandlers.Callback)
	mux.HandleFunc("GET /logout", authHandlers.Logout)
	mux.HandleFunc("POST /logout", authHandlers.Logout)
	mux.HandleFunc("GET /healthz", healthHandler)
	mux.HandleFunc("HEAD /healthz", healthHandler)
	mux.Handle("GET /static/", staticHandler(services.IsDev))

	// Protected routes
	requireAuth := RequireAuthBrowser(services.Auth)
	mux.Handle("GET /{$}", requireAuth(http.HandlerFunc(postHandlers.Home)))
	mux.Handle("GET /posts", requireAuth(http.HandlerFunc(postHandlers.Feed)))
	mux.Handle("GET /my-posts", requireAuth(http.HandlerFunc(postHandlers.MyPosts)))
	mux.Handle("GET /read/{postID}", requireAuth(http.HandlerFunc(postHandlers.Read)))
	mux.Handle("GET /compose", requireAuth(http.HandlerFunc(postHandlers.ComposeForm)))
	mux.Handle("POST /compose", requireAuth(http.HandlerFunc(postHandlers.ComposeSubmit)))
	mux.Handle("POST /delete/{postID}", requireAuth(http.HandlerFunc(postHandlers.Delete)))

	return mux, nil
}

// templateFS returns the template source: disk in dev mode for hot
// reloading, the embedded filesystem otherwise.
func templateFS(isDev bool) fs.FS {
	if isDev {
		return os.DirFS(TemplatePathFromRoot)
	}
	sub, err := fs.Sub(inkpost.TemplateFS, "frontend/templates")
	if err != nil {
		// Embed layout is fixed at build time; fall back to disk rather than fail.
		return os.DirFS(TemplatePathFromRoot)
	}
	return sub
}

// staticHandler serves /static/ assets from disk in dev mode or from the
// embedded filesystem in production.
func staticHandler(isDev bool) http.Handler {
	if isDev {
		return http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static")))
	}
	sub, err := fs.Sub(inkpost.StaticFS, "frontend/static")
	if err != nil {
		return http.StripPrefix("/static/", http.FileServer(http.Dir("frontend/static")))
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
