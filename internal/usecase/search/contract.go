package search

import (
	"context"

	"github.com/kailas-cloud/shopsearch/internal/domain/catalog"
)

// CatalogSource yields the denormalized listings for one search.
type CatalogSource interface {
	Load(ctx context.Context) ([]catalog.Listing, error)
}
