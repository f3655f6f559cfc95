package search

import (
	"sort"

	"github.com/kailas-cloud/shopsearch/internal/domain/catalog"
	"github.com/kailas-cloud/shopsearch/internal/domain/geo"
	"github.com/kailas-cloud/shopsearch/internal/domain/search/result"
)

// Pipeline stages. Each stage returns a new slice and leaves its input untouched.
// Service.Search applies them in declaration order: the cheap, selective filters
// run before the distance computation and the sort.

// InStock keeps listings with quantity > 0.
func InStock(listings []catalog.Listing) []catalog.Listing {
	out := make([]catalog.Listing, 0, len(listings))
	for _, l := range listings {
		if l.Quantity > 0 {
			out = append(out, l)
		}
	}
	return out
}

// WithTags keeps listings whose tag is in tags. An empty tag set is the identity.
func WithTags(listings []catalog.Listing, tags []string) []catalog.Listing {
	if len(tags) == 0 {
		return append([]catalog.Listing(nil), listings...)
	}
	set := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		set[t] = struct{}{}
	}
	out := make([]catalog.Listing, 0, len(listings))
	for _, l := range listings {
		if _, ok := set[l.Tag]; ok {
			out = append(out, l)
		}
	}
	return out
}

// Dedupe drops listings repeating an earlier (title, shop name) pair.
func Dedupe(listings []catalog.Listing) []catalog.Listing {
	type key struct{ title, shop string }
	seen := make(map[key]struct{}, len(listings))
	out := make([]catalog.Listing, 0, len(listings))
	for _, l := range listings {
		k := key{l.Title, l.ShopName}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, l)
	}
	return out
}

// WithinRadius keeps listings whose shop is at most radius meters from origin.
func WithinRadius(listings []catalog.Listing, origin geo.Point, radius float64) []catalog.Listing {
	out := make([]catalog.Listing, 0, len(listings))
	for _, l := range listings {
		if origin.Within(geo.Point{Lat: l.ShopLat, Lng: l.ShopLng}, radius) {
			out = append(out, l)
		}
	}
	return out
}

// TopByPopularity returns the n most popular listings, highest first.
// Ties keep their input order.
func TopByPopularity(listings []catalog.Listing, n int) []catalog.Listing {
	out := append([]catalog.Listing(nil), listings...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Popularity > out[j].Popularity
	})
	if n < 0 {
		n = 0
	}
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Group collapses listings sharing (title, popularity, quantity, tag) into one item
// per group, in first-appearance order. The first shop seen represents the group.
func Group(listings []catalog.Listing) []result.Item {
	type key struct {
		title      string
		popularity float64
		quantity   int64
		tag        string
	}
	seen := make(map[key]struct{}, len(listings))
	items := make([]result.Item, 0, len(listings))
	for _, l := range listings {
		k := key{l.Title, l.Popularity, l.Quantity, l.Tag}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		items = append(items, result.FromListing(l))
	}
	return items
}
