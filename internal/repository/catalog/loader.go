// Package catalog loads the product, shop, tag and tagging tables from disk and
// joins them into search listings.
package catalog

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/shopsearch/internal/domain"
	domcat "github.com/kailas-cloud/shopsearch/internal/domain/catalog"
	"github.com/kailas-cloud/shopsearch/internal/metrics"
)

// Table names used in errors and logs.
const (
	TableProducts = "products"
	TableShops    = "shops"
	TableTags     = "tags"
	TableTaggings = "taggings"
)

var (
	productSchema = schema{columns: []string{"id", "shop_id", "title", "popularity", "quantity"}}
	shopSchema    = schema{columns: []string{"id", "name", "lat", "lng"}}
	tagSchema     = schema{columns: []string{"id", "tag"}, aliases: map[string]string{"label": "tag"}}
	taggingSchema = schema{columns: []string{"shop_id", "tag_id"}}
)

// Paths locates the four source tables.
type Paths struct {
	Products string
	Shops    string
	Tags     string
	Taggings string
}

// PathsIn resolves table file names against dir. Absolute names are kept as is.
func PathsIn(dir, products, shops, tags, taggings string) Paths {
	resolve := func(name string) string {
		if filepath.IsAbs(name) {
			return name
		}
		return filepath.Join(dir, name)
	}
	return Paths{
		Products: resolve(products),
		Shops:    resolve(shops),
		Tags:     resolve(tags),
		Taggings: resolve(taggings),
	}
}

func (p Paths) each() [4][2]string {
	return [4][2]string{
		{TableProducts, p.Products},
		{TableShops, p.Shops},
		{TableTags, p.Tags},
		{TableTaggings, p.Taggings},
	}
}

// Loader reads and joins the source tables. It keeps no state between calls,
// so every Load observes the files as they are on disk right now.
type Loader struct {
	paths  Paths
	logger *zap.Logger
}

// New creates a catalog loader.
func New(paths Paths, logger *zap.Logger) *Loader {
	return &Loader{paths: paths, logger: logger}
}

// Load reads all four tables and joins them into listings.
// Any missing or malformed table fails the whole load with a *domain.LoadError.
func (l *Loader) Load(ctx context.Context) ([]domcat.Listing, error) {
	start := time.Now()

	tables, err := l.ReadTables(ctx)
	if err != nil {
		metrics.ObserveCatalogLoad("error", time.Since(start), 0)
		return nil, err
	}
	listings := domcat.Join(tables)

	elapsed := time.Since(start)
	metrics.ObserveCatalogLoad("ok", elapsed, len(listings))
	l.logger.Debug("Catalog loaded",
		zap.Int("products", len(tables.Products)),
		zap.Int("shops", len(tables.Shops)),
		zap.Int("tags", len(tables.Tags)),
		zap.Int("taggings", len(tables.Taggings)),
		zap.Int("listings", len(listings)),
		zap.Duration("duration", elapsed),
	)
	return listings, nil
}

// ReadTables reads the four tables concurrently.
func (l *Loader) ReadTables(ctx context.Context) (domcat.Tables, error) {
	var t domcat.Tables
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		rows, err := readTable(l.paths.Products, productSchema, decodeProduct)
		if err != nil {
			return domain.NewLoadError(TableProducts, err)
		}
		t.Products = rows
		return gctx.Err()
	})
	g.Go(func() error {
		rows, err := readTable(l.paths.Shops, shopSchema, decodeShop)
		if err != nil {
			return domain.NewLoadError(TableShops, err)
		}
		t.Shops = rows
		return gctx.Err()
	})
	g.Go(func() error {
		rows, err := readTable(l.paths.Tags, tagSchema, decodeTag)
		if err != nil {
			return domain.NewLoadError(TableTags, err)
		}
		t.Tags = rows
		return gctx.Err()
	})
	g.Go(func() error {
		rows, err := readTable(l.paths.Taggings, taggingSchema, decodeTagging)
		if err != nil {
			return domain.NewLoadError(TableTaggings, err)
		}
		t.Taggings = rows
		return gctx.Err()
	})

	if err := g.Wait(); err != nil {
		return domcat.Tables{}, fmt.Errorf("read tables: %w", err)
	}
	return t, nil
}

// Fingerprint identifies the current version of the source files: a SHA-256 over
// each file's path, size and modification time.
func (l *Loader) Fingerprint(_ context.Context) (string, error) {
	h := sha256.New()
	for _, t := range l.paths.each() {
		fi, err := os.Stat(t[1])
		if err != nil {
			return "", domain.NewLoadError(t[0], err)
		}
		_, _ = h.Write([]byte(t[1]))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(strconv.FormatInt(fi.Size(), 10)))
		_, _ = h.Write([]byte{0})
		_, _ = h.Write([]byte(strconv.FormatInt(fi.ModTime().UnixNano(), 10)))
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Ping checks that every source file exists and is a regular file.
func (l *Loader) Ping(_ context.Context) error {
	for _, t := range l.paths.each() {
		fi, err := os.Stat(t[1])
		if err != nil {
			return domain.NewLoadError(t[0], err)
		}
		if !fi.Mode().IsRegular() {
			return domain.NewLoadError(t[0], fmt.Errorf("%s is not a regular file", t[1]))
		}
	}
	return nil
}

func decodeProduct(r record) (domcat.Product, error) {
	popularity, err := r.float("popularity")
	if err != nil {
		return domcat.Product{}, err
	}
	quantity, err := r.int("quantity")
	if err != nil {
		return domcat.Product{}, err
	}
	return domcat.Product{
		ID:         r.str("id"),
		ShopID:     r.str("shop_id"),
		Title:      r.str("title"),
		Popularity: popularity,
		Quantity:   quantity,
	}, nil
}

func decodeShop(r record) (domcat.Shop, error) {
	lat, err := r.float("lat")
	if err != nil {
		return domcat.Shop{}, err
	}
	lng, err := r.float("lng")
	if err != nil {
		return domcat.Shop{}, err
	}
	return domcat.Shop{ID: r.str("id"), Name: r.str("name"), Lat: lat, Lng: lng}, nil
}

func decodeTag(r record) (domcat.Tag, error) {
	return domcat.Tag{ID: r.str("id"), Label: r.str("tag")}, nil
}

func decodeTagging(r record) (domcat.Tagging, error) {
	return domcat.Tagging{ShopID: r.str("shop_id"), TagID: r.str("tag_id")}, nil
}
