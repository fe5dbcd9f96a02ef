package schema

import (
	"context"
	"io/fs"
)

// BookParser turns a file of one container format into chapters.
type BookParser interface {
	Name() string
	Extensions() []string
	CanHandle(path string, info fs.FileInfo) bool
	Parse(ctx context.Context, path string) (Book, error)
}
