package testutil

import (
	"github.com/inkpost/inkpost/internal/domain/model"
)

// UserRequestBuilder provides a fluent interface for building NewUserRequest objects for testing.
type UserRequestBuilder struct {
	req *model.NewUserRequest
}

// NewUserRequest creates a new UserRequestBuilder with sensible defaults.
func NewUserRequest() *UserRequestBuilder {
	return &UserRequestBuilder{
		req: &model.NewUserRequest{
			ExternalID: "ext-100",
			Email:      "alice@example.com",
			Name:       "Alice Writer",
		},
	}
}

// WithExternalID sets the provider subject identifier.
func (b *UserRequestBuilder) WithExternalID(id string) *UserRequestBuilder {
	b.req.ExternalID = id
	return b
}

// WithEmail sets the email address.
func (b *UserRequestBuilder) WithEmail(email string) *UserRequestBuilder {
	b.req.Email = email
	return b
}

// WithName sets the display name.
func (b *UserRequestBuilder) WithName(name string) *UserRequestBuilder {
	b.req.Name = name
	return b
}

// WithAvatarURL sets the avatar URL.
func (b *UserRequestBuilder) WithAvatarURL(url string) *UserRequestBuilder {
	b.req.AvatarURL = &url
	return b
}

// Build returns the built NewUserRequest.
func (b *UserRequestBuilder) Build() *model.NewUserRequest {
	reqCopy := *b.req
	return &reqCopy
}

// PostRequestBuilder provides a fluent interface for building CreatePostRequest objects for testing.
type PostRequestBuilder struct {
	req *model.CreatePostRequest
}

// NewPostRequest creates a new PostRequestBuilder with sensible defaults.
// UserID must be set to an existing user before use against a real database.
func NewPostRequest() *PostRequestBuilder {
	return &PostRequestBuilder{
		req: &model.CreatePostRequest{
			Title:      "First Post",
			AuthorName: "Alice Writer",
			Content:    "Hello, world.",
		},
	}
}

// WithTitle sets the title.
func (b *PostRequestBuilder) WithTitle(title string) *PostRequestBuilder {
	b.req.Title = title
	return b
}

// WithAuthorName sets the denormalized author name.
func (b *PostRequestBuilder) WithAuthorName(name string) *PostRequestBuilder {
	b.req.AuthorName = name
	return b
}

// WithAuthorAvatar sets the denormalized author avatar URL.
func (b *PostRequestBuilder) WithAuthorAvatar(url string) *PostRequestBuilder {
	b.req.AuthorAvatar = &url
	return b
}

// WithContent sets the body text.
func (b *PostRequestBuilder) WithContent(content string) *PostRequestBuilder {
	b.req.Content = content
	return b
}

// WithImages sets the encoded image attachments.
func (b *PostRequestBuilder) WithImages(images ...string) *PostRequestBuilder {
	b.req.Images = images
	return b
}

// WithDocuments sets the encoded document attachments.
func (b *PostRequestBuilder) WithDocuments(documents ...string) *PostRequestBuilder {
	b.req.Documents = documents
	return b
}

// WithLinks sets the reference links.
func (b *PostRequestBuilder) WithLinks(links ...string) *PostRequestBuilder {
	b.req.Links = links
	return b
}

// WithUserID sets the owning user id.
func (b *PostRequestBuilder) WithUserID(userID string) *PostRequestBuilder {
	b.req.UserID = userID
	return b
}

// Build returns the built CreatePostRequest.
func (b *PostRequestBuilder) Build() *model.CreatePostRequest {
	reqCopy := *b.req
	return &reqCopy
}
