package traits

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"paratest/trait"
)

func TestComment_Comments(t *testing.T) {
	c := NewComment("flaky on CI")
	assert.Equal(t, []string{"flaky on CI"}, c.Comments())
}

func TestTag_Comments(t *testing.T) {
	tag := NewTag("smoke")
	assert.Equal(t, []string{"tag:smoke"}, tag.Comments())
}

func TestBug_CommentsWithTitle(t *testing.T) {
	b := NewBug("https://issues.example.com/123", "flaky under load")
	assert.Equal(t, []string{"flaky under load (https://issues.example.com/123)"}, b.Comments())
}

func TestBug_CommentsWithoutTitle(t *testing.T) {
	b := NewBug("https://issues.example.com/123", "")
	assert.Equal(t, []string{"https://issues.example.com/123"}, b.Comments())
}

func TestAnnotations_EraseAsCommenter(t *testing.T) {
	erased := trait.Erase("bug", NewBug("https://issues.example.com/1", "title"))
	assert.Equal(t, []string{"title (https://issues.example.com/1)"}, erased.Comments())
	assert.False(t, erased.HasPrepare())
	assert.False(t, erased.HasScopeProvider())
}
