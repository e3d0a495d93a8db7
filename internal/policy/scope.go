package policy

import "github.com/penblog/penblog/internal/model"

// Scope is the visibility filter applied to a listing.
// Empty fields do not filter.
type Scope struct {
	// State restricts results to one state.
	State model.ArticleState
	// AuthorID restricts results to one author.
	AuthorID string
	// VisibleTo admits published articles plus any article by this user.
	VisibleTo string
}

// ParseState validates a requested state filter. Empty means no filter.
func ParseState(raw string) (model.ArticleState, error) {
	if raw == "" {
		return "", nil
	}
	state := model.ArticleState(raw)
	if !state.IsValid() {
		return "", ErrInvalidState
	}
	return state, nil
}

// ListScope resolves the public listing scope for viewer.
//
// Anonymous callers only ever see published articles and get
// ErrStateRequiresAuth when asking for anything else, including states
// that do not exist. Authenticated callers
// asking for drafts see their own drafts only; with no state filter they see
// published articles plus all of their own.
func ListScope(viewer *model.Identity, requested string) (Scope, error) {
	if viewer == nil {
		if requested != "" && model.ArticleState(requested) != model.ArticleStatePublished {
			return Scope{}, ErrStateRequiresAuth
		}
		return Scope{State: model.ArticleStatePublished}, nil
	}

	state, err := ParseState(requested)
	if err != nil {
		return Scope{}, err
	}

	switch state {
	case model.ArticleStatePublished:
		return Scope{State: model.ArticleStatePublished}, nil
	case model.ArticleStateDraft:
		return Scope{State: model.ArticleStateDraft, AuthorID: viewer.UserID}, nil
	default:
		return Scope{VisibleTo: viewer.UserID}, nil
	}
}

// OwnListScope resolves the scope for the caller's own articles.
func OwnListScope(viewer *model.Identity, requested string) (Scope, error) {
	if viewer == nil {
		return Scope{}, ErrStateRequiresAuth
	}
	state, err := ParseState(requested)
	if err != nil {
		return Scope{}, err
	}
	return Scope{State: state, AuthorID: viewer.UserID}, nil
}
