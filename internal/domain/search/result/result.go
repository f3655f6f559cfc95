package result

import "github.com/kailas-cloud/shopsearch/internal/domain/catalog"

// Shop is the shop reported for a result group.
type Shop struct {
	Name string
	Lng  float64
	Lat  float64
}

// Item is one grouped search hit: a (title, popularity, quantity, tag) group
// and the first shop encountered for it.
type Item struct {
	title      string
	popularity float64
	quantity   int64
	tag        string
	shop       Shop
}

// FromListing creates an item from a listing.
func FromListing(l catalog.Listing) Item {
	return Item{
		title:      l.Title,
		popularity: l.Popularity,
		quantity:   l.Quantity,
		tag:        l.Tag,
		shop:       Shop{Name: l.ShopName, Lng: l.ShopLng, Lat: l.ShopLat},
	}
}

// Title returns the product title.
func (i *Item) Title() string { return i.title }

// Popularity returns the product popularity score.
func (i *Item) Popularity() float64 { return i.popularity }

// Quantity returns the stock quantity.
func (i *Item) Quantity() int64 { return i.quantity }

// Tag returns the tag the item matched under.
func (i *Item) Tag() string { return i.tag }

// Shop returns the representative shop.
func (i *Item) Shop() Shop { return i.shop }
