package traits

import "fmt"

// Comment attaches a free-text annotation to a test or suite. It has no
// behavior beyond Comments(), which trait.Erase stores on the erased
// trait; plan.PlanRunner does not copy trait comments onto issues or
// events.
type Comment struct {
	Text string
}

// NewComment builds a Comment trait.
func NewComment(text string) Comment { return Comment{Text: text} }

// Comments implements trait.Commenter.
func (c Comment) Comments() []string { return []string{c.Text} }

// Tag attaches a free-form label used by discovery/filtering collaborators
// to group and select tests; the core treats it as an opaque comment.
type Tag struct {
	Name string
}

// NewTag builds a Tag trait.
func NewTag(name string) Tag { return Tag{Name: name} }

// Comments implements trait.Commenter.
func (t Tag) Comments() []string { return []string{"tag:" + t.Name} }

// Bug links a test to an external issue tracker reference, per spec.md
// §2's Trait Implementations row. It carries no behavior; its value is
// entirely in the comment it contributes for reporting.
type Bug struct {
	URL   string
	Title string
}

// NewBug builds a Bug trait.
func NewBug(url, title string) Bug { return Bug{URL: url, Title: title} }

// Comments implements trait.Commenter.
func (b Bug) Comments() []string {
	if b.Title == "" {
		return []string{b.URL}
	}
	return []string{fmt.Sprintf("%s (%s)", b.Title, b.URL)}
}
