// Package target models the polymorphic content reference shared by comments,
// likes and reports, and resolves it to the row it names.
package target

import (
	"errors"
	"fmt"
	"strings"
)

type Kind string

const (
	KindPost    Kind = "post"
	KindArticle Kind = "article"
	KindReview  Kind = "review"
	KindComment Kind = "comment"
)

var (
	// ContentKinds are the kinds comments and reports may point at.
	ContentKinds = []Kind{KindPost, KindArticle, KindReview}
	// LikeKinds additionally allow liking comments.
	LikeKinds = []Kind{KindPost, KindArticle, KindReview, KindComment}
)

var (
	ErrUnknownKind = errors.New("unknown target type")
	ErrMalformed   = errors.New("malformed target key")
)

// Target is a tagged reference: a kind plus the target's id kept as an opaque
// string.
type Target struct {
	Kind Kind   `json:"type"`
	ID   string `json:"id"`
}

func New(kind Kind, id string) Target {
	return Target{Kind: kind, ID: id}
}

// Parse validates kind against allowed and builds a Target.
func Parse(kind, id string, allowed []Kind) (Target, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(kind)))
	if !k.In(allowed) {
		return Target{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if strings.TrimSpace(id) == "" {
		return Target{}, fmt.Errorf("%w: empty id", ErrMalformed)
	}
	return Target{Kind: k, ID: id}, nil
}

// Key renders the grouping and cursor key "{kind}-{id}".
func (t Target) Key() string {
	return string(t.Kind) + "-" + t.ID
}

func (t Target) String() string {
	return t.Key()
}

// ParseKey splits a "{kind}-{id}" key. Kinds never contain '-', ids may.
func ParseKey(key string) (Target, error) {
	kind, id, ok := strings.Cut(key, "-")
	if !ok || id == "" {
		return Target{}, fmt.Errorf("%w: %q", ErrMalformed, key)
	}
	return Parse(kind, id, LikeKinds)
}

func (k Kind) In(kinds []Kind) bool {
	for _, candidate := range kinds {
		if k == candidate {
			return true
		}
	}
	return false
}

func (k Kind) Valid() bool {
	return k.In(LikeKinds)
}
