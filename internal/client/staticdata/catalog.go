// Package staticdata holds the offline product catalog the client falls
// back to when the API cannot serve a product page.
package staticdata

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/shopfront/backend/internal/client/shopclient"
)

//go:embed catalog.yaml
var embedded []byte

type catalogFile struct {
	Version  int           `yaml:"version"`
	Products []productYAML `yaml:"products"`
}

type productYAML struct {
	ID             string                     `yaml:"id"`
	Name           string                     `yaml:"name"`
	Description    string                     `yaml:"description"`
	CategoryID     string                     `yaml:"category_id"`
	Price          string                     `yaml:"price"`
	SalePrice      string                     `yaml:"sale_price"`
	Image          string                     `yaml:"image"`
	Thumbnails     []string                   `yaml:"thumbnails"`
	Stock          int                        `yaml:"stock"`
	Colors         []shopclient.ColorOption   `yaml:"colors"`
	Sizes          []string                   `yaml:"sizes"`
	Specifications []shopclient.Specification `yaml:"specifications"`
	Related        []string                   `yaml:"related"`
}

// Catalog is an immutable set of products keyed by id
type Catalog struct {
	products map[uuid.UUID]shopclient.Product
	order    []uuid.UUID
}

// Default returns the catalog compiled into the binary
func Default() (*Catalog, error) {
	return Parse(embedded)
}

// LoadFile reads a catalog from a YAML file
func LoadFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}
	return Parse(data)
}

// Parse parses catalog YAML
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog YAML: %w", err)
	}

	c := &Catalog{products: make(map[uuid.UUID]shopclient.Product, len(f.Products))}
	for i, raw := range f.Products {
		p, err := raw.product()
		if err != nil {
			return nil, fmt.Errorf("catalog product %d: %w", i, err)
		}
		if _, dup := c.products[p.ID]; dup {
			return nil, fmt.Errorf("catalog product %d: duplicate id %s", i, p.ID)
		}
		c.products[p.ID] = p
		c.order = append(c.order, p.ID)
	}
	return c, nil
}

func (y productYAML) product() (shopclient.Product, error) {
	var p shopclient.Product
	id, err := uuid.Parse(y.ID)
	if err != nil {
		return p, fmt.Errorf("invalid id %q: %w", y.ID, err)
	}
	if y.Name == "" {
		return p, fmt.Errorf("product %s has no name", id)
	}
	price, err := decimal.NewFromString(y.Price)
	if err != nil {
		return p, fmt.Errorf("product %s: invalid price %q", id, y.Price)
	}
	if price.IsNegative() {
		return p, fmt.Errorf("product %s: negative price", id)
	}

	p = shopclient.Product{
		ID:             id,
		Name:           y.Name,
		Description:    y.Description,
		Price:          price,
		Image:          y.Image,
		Thumbnails:     y.Thumbnails,
		Stock:          max(y.Stock, 0),
		Colors:         y.Colors,
		Sizes:          y.Sizes,
		Specifications: y.Specifications,
	}
	if y.SalePrice != "" {
		sale, err := decimal.NewFromString(y.SalePrice)
		if err != nil {
			return p, fmt.Errorf("product %s: invalid sale price %q", id, y.SalePrice)
		}
		p.SalePrice = &sale
	}
	if y.CategoryID != "" {
		cat, err := uuid.Parse(y.CategoryID)
		if err != nil {
			return p, fmt.Errorf("product %s: invalid category id %q", id, y.CategoryID)
		}
		p.CategoryID = &cat
	}
	for _, r := range y.Related {
		rid, err := uuid.Parse(r)
		if err != nil {
			return p, fmt.Errorf("product %s: invalid related id %q", id, r)
		}
		p.RelatedProductIDs = append(p.RelatedProductIDs, rid)
	}
	return p, nil
}

// Lookup returns a copy of product id
func (c *Catalog) Lookup(id uuid.UUID) (*shopclient.Product, bool) {
	p, ok := c.products[id]
	if !ok {
		return nil, false
	}
	return &p, true
}

// Products lists the catalog in file order
func (c *Catalog) Products() []shopclient.Product {
	out := make([]shopclient.Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.products[id])
	}
	return out
}

// Len is the number of products
func (c *Catalog) Len() int {
	return len(c.products)
}
