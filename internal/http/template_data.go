package httpx

import (
	"github.com/inkpost/inkpost/internal/domain/model"
)

// PageData is the root object handed to the layout template.
type PageData struct {
	Title           string
	CurrentPage     string
	ContentTemplate string

	// User is the signed-in user, nil on the login page.
	User *model.User

	// Page-specific payloads; only the ones the page needs are set.
	Posts []*model.Post
	Post  *model.Post

	// Flash is a one-shot message shown at the top of the page.
	Flash string

	// FormError redisplays the compose form with a validation message.
	FormError string
	Form      ComposeFormData
}

// ComposeFormData echoes submitted values back into the compose form.
type ComposeFormData struct {
	Title   string
	Content string
	Links   string
}

// ErrorData feeds the error page template.
type ErrorData struct {
	Status  int
	Title   string
	Message string
}
