//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

const (
	maxPostTitleLen = 255

	// MaxPostImages and MaxPostDocuments bound the number of file attachments
	// accepted per post.
	MaxPostImages    = 4
	MaxPostDocuments = 2
)

// Post is an authored blog entry. AuthorName and AuthorAvatar are a snapshot
// of the owning user at creation time; they are never re-synced if the user
// record changes.
type Post struct {
	ID           string    `json:"id"                      db:"id"`
	Title        string    `json:"title"                   db:"title"`
	AuthorName   string    `json:"author_name"             db:"author_name"`
	AuthorAvatar *string   `json:"author_avatar,omitempty" db:"author_avatar"`
	Images       []string  `json:"images"                  db:"images"`    // base64-encoded payloads
	Documents    []string  `json:"documents"               db:"documents"` // base64-encoded payloads
	Content      string    `json:"content"                 db:"content"`
	Links        []string  `json:"links"                   db:"links"`
	UserID       string    `json:"user_id"                 db:"user_id"`
	CreatedAt    time.Time `json:"created_at"              db:"created_at"`
}

// OwnedBy reports whether the post belongs to the given user id.
// Comparison is by stable identity equality on the stored owner reference.
func (p *Post) OwnedBy(userID string) bool {
	return p.UserID != "" && p.UserID == userID
}

// CreatePostRequest represents parameters to create a Post. Author fields are
// filled by the service from the owning user's current record.
type CreatePostRequest struct {
	Title        string   `json:"title"`
	AuthorName   string   `json:"author_name"`
	AuthorAvatar *string  `json:"author_avatar,omitempty"`
	Images       []string `json:"images"`
	Documents    []string `json:"documents"`
	Content      string   `json:"content"`
	Links        []string `json:"links"`
	UserID       string   `json:"user_id"`
}

// Validate validates CreatePostRequest.
func (r *CreatePostRequest) Validate() error {
	title := strings.TrimSpace(r.Title)
	if title == "" {
		return errors.New("title is required and cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxPostTitleLen {
		return errors.New("title cannot exceed 255 characters")
	}
	if strings.TrimSpace(r.UserID) == "" {
		return errors.New("user_id is required")
	}
	if len(r.Images) > MaxPostImages {
		return errors.New("images cannot exceed 4 attachments")
	}
	if len(r.Documents) > MaxPostDocuments {
		return errors.New("documents cannot exceed 2 attachments")
	}
	for _, l := range r.Links {
		if strings.TrimSpace(l) == "" {
			return errors.New("links cannot contain empty entries")
		}
	}
	return nil
}

// SplitLinks turns the comma-separated links field of the compose form into a
// trimmed slice, dropping empty segments.
func SplitLinks(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	links := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			links = append(links, trimmed)
		}
	}
	if len(links) == 0 {
		return nil
	}
	return links
}
