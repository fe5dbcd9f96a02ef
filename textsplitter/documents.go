package textsplitter

import (
	"context"
	"maps"

	"github.com/sevigo/bookpurr/schema"
)

// SplitDocuments splits every document into chunk documents. Each chunk inherits
// the parent's metadata plus its position and unit count.
func (s *UnitSplitter) SplitDocuments(ctx context.Context, docs []schema.Document) ([]schema.Document, error) {
	var out []schema.Document
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		index := 0
		for chunk := range s.Chunks(doc.PageContent) {
			metadata := make(map[string]any, len(doc.Metadata)+2)
			maps.Copy(metadata, doc.Metadata)
			metadata[schema.MetaChunkIndex] = index
			metadata[schema.MetaUnitCount] = CountUnits(chunk)

			out = append(out, schema.NewDocument(chunk, metadata))
			index++
		}

		if index == 0 {
			s.logger.Debug("Document produced no chunks", "label", doc.Label())
		}
	}
	return out, nil
}
