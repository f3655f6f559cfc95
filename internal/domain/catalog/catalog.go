// Package catalog holds the source table rows and the denormalized listing
// produced by joining them.
package catalog

// Product is a row of the products table.
type Product struct {
	ID         string  `parquet:"id"`
	ShopID     string  `parquet:"shop_id"`
	Title      string  `parquet:"title"`
	Popularity float64 `parquet:"popularity"`
	Quantity   int64   `parquet:"quantity"`
}

// Shop is a row of the shops table.
type Shop struct {
	ID   string  `parquet:"id"`
	Name string  `parquet:"name"`
	Lat  float64 `parquet:"lat"`
	Lng  float64 `parquet:"lng"`
}

// Tag is a row of the tags table.
type Tag struct {
	ID    string `parquet:"id"`
	Label string `parquet:"tag"`
}

// Tagging associates a shop with a tag.
type Tagging struct {
	ShopID string `parquet:"shop_id"`
	TagID  string `parquet:"tag_id"`
}

// Tables is the raw content of the four source tables.
type Tables struct {
	Products []Product
	Shops    []Shop
	Tags     []Tag
	Taggings []Tagging
}

// Listing is one (product, shop, tag) combination available for search.
type Listing struct {
	Title      string  `json:"title"`
	Popularity float64 `json:"popularity"`
	Quantity   int64   `json:"quantity"`
	Tag        string  `json:"tag"`
	ShopName   string  `json:"shop_name"`
	ShopLng    float64 `json:"shop_lng"`
	ShopLat    float64 `json:"shop_lat"`
}

// Join performs the inner joins tagging→shop, tagging→tag, then →product on shop_id.
// Rows whose foreign keys do not resolve are dropped; duplicate keys fan out the
// way a relational inner join does. Output order follows the taggings table, then
// shops, tags and products in their own file order.
func Join(t Tables) []Listing {
	shops := make(map[string][]Shop, len(t.Shops))
	for _, s := range t.Shops {
		shops[s.ID] = append(shops[s.ID], s)
	}
	tags := make(map[string][]string, len(t.Tags))
	for _, tg := range t.Tags {
		tags[tg.ID] = append(tags[tg.ID], tg.Label)
	}
	productsByShop := make(map[string][]Product)
	for _, p := range t.Products {
		productsByShop[p.ShopID] = append(productsByShop[p.ShopID], p)
	}

	listings := make([]Listing, 0, len(t.Taggings))
	for _, tagging := range t.Taggings {
		products := productsByShop[tagging.ShopID]
		if len(products) == 0 {
			continue
		}
		for _, shop := range shops[tagging.ShopID] {
			for _, label := range tags[tagging.TagID] {
				for _, p := range products {
					listings = append(listings, Listing{
						Title:      p.Title,
						Popularity: p.Popularity,
						Quantity:   p.Quantity,
						Tag:        label,
						ShopName:   shop.Name,
						ShopLng:    shop.Lng,
						ShopLat:    shop.Lat,
					})
				}
			}
		}
	}
	return listings
}
