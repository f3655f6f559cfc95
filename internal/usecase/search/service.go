package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/shopsearch/internal/domain/search/request"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
	logpkg "github.com/kailas-cloud/shopsearch/internal/logger"
)

// Service runs the listing search pipeline over a freshly loaded catalog.
type Service struct {
	catalog CatalogSource
}

// New creates a search service.
func New(catalog CatalogSource) *Service {
	return &Service{catalog: catalog}
}

// Search loads the catalog and filters it by stock, tags, distance and popularity.
// The returned slice is never nil.
func (s *Service) Search(ctx context.Context, req *request.Request) ([]result.Item, error) {
	listings, err := s.catalog.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	loaded := len(listings)

	listings = InStock(listings)
	listings = WithTags(listings, req.Tags())
	listings = Dedupe(listings)
	listings = WithinRadius(listings, req.Origin(), req.Radius())
	listings = TopByPopularity(listings, req.Count())
	items := Group(listings)

	logpkg.FromContext(ctx).Debug("search pipeline",
		zap.Int("loaded", loaded),
		zap.Int("ranked", len(listings)),
		zap.Int("items", len(items)),
		zap.Strings("tags", req.Tags()),
		zap.Float64("radius_m", req.Radius()),
	)

	return items, nil
}
