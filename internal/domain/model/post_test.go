package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitLinks(t *testing.T) {
	assert.Equal(t, []string{"a.com", "b.com"}, SplitLinks("a.com, b.com"))
	assert.Equal(t, []string{"a.com"}, SplitLinks("  a.com  "))
	assert.Equal(t, []string{"a.com", "b.com"}, SplitLinks("a.com,,b.com,"))
	assert.Nil(t, SplitLinks(""))
	assert.Nil(t, SplitLinks(" , , "))
}

func TestPost_OwnedBy(t *testing.T) {
	p := Post{ID: "p1", UserID: "u1"}
	assert.True(t, p.OwnedBy("u1"))
	assert.False(t, p.OwnedBy("u2"))

	orphan := Post{ID: "p2"}
	assert.False(t, orphan.OwnedBy(""))
}

func TestCreatePostRequest_Validate(t *testing.T) {
	valid := func() CreatePostRequest {
		return CreatePostRequest{
			Title:      "Hello",
			AuthorName: "Alice",
			Content:    "World",
			Links:      []string{"a.com"},
			UserID:     "u1",
		}
	}

	t.Run("valid", func(t *testing.T) {
		r := valid()
		require.NoError(t, r.Validate())
	})

	t.Run("missing title", func(t *testing.T) {
		r := valid()
		r.Title = "   "
		assert.ErrorContains(t, r.Validate(), "title is required")
	})

	t.Run("title too long", func(t *testing.T) {
		r := valid()
		r.Title = strings.Repeat("x", 256)
		assert.ErrorContains(t, r.Validate(), "cannot exceed 255")
	})

	t.Run("missing owner", func(t *testing.T) {
		r := valid()
		r.UserID = ""
		assert.ErrorContains(t, r.Validate(), "user_id is required")
	})

	t.Run("too many images", func(t *testing.T) {
		r := valid()
		r.Images = []string{"a", "b", "c", "d", "e"}
		assert.ErrorContains(t, r.Validate(), "images cannot exceed 4")
	})

	t.Run("too many documents", func(t *testing.T) {
		r := valid()
		r.Documents = []string{"a", "b", "c"}
		assert.ErrorContains(t, r.Validate(), "documents cannot exceed 2")
	})

	t.Run("empty link entry", func(t *testing.T) {
		r := valid()
		r.Links = []string{"a.com", "  "}
		assert.ErrorContains(t, r.Validate(), "links cannot contain empty")
	})
}
