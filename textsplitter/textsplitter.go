package textsplitter

import (
	"context"

	"github.com/sevigo/bookpurr/schema"
)

type TextSplitter interface {
	SplitText(ctx context.Context, text string) ([]string, error)
}

type DocumentSplitter interface {
	SplitDocuments(ctx context.Context, docs []schema.Document) ([]schema.Document, error)
}
