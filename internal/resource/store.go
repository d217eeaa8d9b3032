package resource

import "context"

// Store is the document store adapter for one named collection. It is
// safe for concurrent use; each call is an independent operation.
//
// Get and Update return (nil, nil) for unknown identifiers; the
// service layer owns the not-found mapping. Update must perform the
// partial merge atomically at the single-document level.
type Store interface {
	Create(ctx context.Context, doc Document) (string, error)
	Get(ctx context.Context, id string) (Document, error)
	Update(ctx context.Context, id string, fields Document) (Document, error)
	List(ctx context.Context, q *ListQuery) (*Page, error)
}
