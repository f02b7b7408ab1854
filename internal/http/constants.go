package httpx

import "errors"

// Cookie names used by the auth flow.
const (
	sessionCookieName   = "session_id"
	oauthStateCookie    = "oauth_state"
	oauthNonceCookie    = "oauth_nonce"
	postLoginRedirect   = "post_login_redirect"
	oauthCookieLifetime = 600 // seconds; state and nonce are short-lived
)

var errAuthRequired = errors.New("authentication required")

// CurrentPage constants identify pages for navigation highlighting in templates.
const (
	PageHome    = "home"
	PageFeed    = "feed"
	PageMyPosts = "my-posts"
	PageCompose = "compose"
	PageRead    = "read"
	PageLogin   = "login"
	PageLogout  = "logout"
)

// Template directory paths used for loading templates in tests and production.
const (
	TemplatePathFromRoot = "frontend/templates"       // From project root
	TemplatePathFromTest = "../../frontend/templates" // From internal/http test files
)
