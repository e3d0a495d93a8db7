// Package policy decides who may see and change articles.
// Every function is pure; callers supply the viewer and the article facts.
package policy

import (
	"errors"

	"github.com/penblog/penblog/internal/model"
)

// Policy errors.
var (
	ErrForbidden         = errors.New("not the owner of this article")
	ErrInvalidState      = errors.New("state must be draft or published")
	ErrStateRequiresAuth = errors.New("authentication required to filter by state")
)

// Decision is the outcome of a read check.
type Decision int

const (
	// DenyRead hides a draft from everyone but its author.
	DenyRead Decision = iota
	// AllowReadNoIncrement lets the author read without counting the view.
	AllowReadNoIncrement
	// AllowReadIncrement lets a reader see a published article and counts it.
	AllowReadIncrement
)

// String implements fmt.Stringer for log attributes.
func (d Decision) String() string {
	switch d {
	case AllowReadNoIncrement:
		return "allow_no_increment"
	case AllowReadIncrement:
		return "allow_increment"
	default:
		return "deny"
	}
}

// Allowed reports whether the article may be returned.
func (d Decision) Allowed() bool {
	return d != DenyRead
}

// ReadDecision decides single-article visibility and the read-count side effect.
func ReadDecision(viewer *model.Identity, state model.ArticleState, authorID string) Decision {
	if viewer.Is(authorID) {
		return AllowReadNoIncrement
	}
	if state == model.ArticleStatePublished {
		return AllowReadIncrement
	}
	return DenyRead
}

// CanMutate checks that viewer owns the article.
// Existence is checked by the caller first so a missing article is a 404.
func CanMutate(viewer *model.Identity, authorID string) error {
	if !viewer.Is(authorID) {
		return ErrForbidden
	}
	return nil
}
