package request

import (
	"math"
	"strings"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	"github.com/kailas-cloud/shopsearch/internal/domain/geo"
)

// TagSeparator splits the raw tags parameter.
const TagSeparator = ","

// Request is a validated search query.
type Request struct {
	tags   []string
	origin geo.Point
	radius float64
	count  int
}

// New validates search parameters. rawTags is the comma-separated tag list and may be empty.
// Radius is in meters.
func New(rawTags string, longitude, latitude, radius float64, count int) (Request, error) {
	if !geo.ValidLongitude(longitude) {
		return Request{}, domain.NewValidationError("longitude", "must be between -180 and 180")
	}
	if !geo.ValidLatitude(latitude) {
		return Request{}, domain.NewValidationError("latitude", "must be between -90 and 90")
	}
	if math.IsNaN(radius) || radius < 0 {
		return Request{}, domain.NewValidationError("radius", "must be a non-negative number of meters")
	}
	if count < 0 {
		return Request{}, domain.NewValidationError("count", "must be non-negative")
	}

	return Request{
		tags:   ParseTags(rawTags),
		origin: geo.Point{Lat: latitude, Lng: longitude},
		radius: radius,
		count:  count,
	}, nil
}

// ParseTags splits a comma-separated tag list, trimming blanks and dropping empty entries.
// Returns nil when no tag remains.
func ParseTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(raw, TagSeparator) {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// Tags returns the tag filter (nil means no tag filtering).
func (r *Request) Tags() []string { return r.tags }

// Origin returns the query coordinates.
func (r *Request) Origin() geo.Point { return r.origin }

// Radius returns the search radius in meters.
func (r *Request) Radius() float64 { return r.radius }

// Count returns the maximum number of listings kept by popularity.
func (r *Request) Count() int { return r.count }
