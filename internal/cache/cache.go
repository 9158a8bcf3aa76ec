// Package cache stores fields derived from a candidate document, keyed by the
// candidate identity. Callers own the store and its lifetime.
package cache

import (
	"context"
	"errors"
)

var ErrMiss = errors.New("cache miss")

// Entry holds values that depend only on document content, so they stay
// valid for as long as the identity does.
type Entry struct {
	TextSkills []string `json:"text_skills"`
}

type Store interface {
	Get(ctx context.Context, identity string) (*Entry, error)
	Set(ctx context.Context, identity string, entry *Entry) error
}
