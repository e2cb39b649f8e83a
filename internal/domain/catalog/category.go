package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/shopfront/backend/internal/domain/shared"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Category groups products for browsing and similar-product lookups
type Category struct {
	shared.BaseAggregateRoot
	Name        string `gorm:"type:varchar(100);not null"`
	Slug        string `gorm:"type:varchar(120);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
	Image       string `gorm:"type:varchar(500)"`
	SortOrder   int    `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (Category) TableName() string {
	return "categories"
}

// NewCategory creates a category with a title-cased name and a derived slug
func NewCategory(name string) (*Category, error) {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return nil, err
	}
	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Slug:              shared.Slugify(name),
	}, nil
}

// Update renames the category and regenerates its slug
func (c *Category) Update(name, description, image string) error {
	name, err := normalizeCategoryName(name)
	if err != nil {
		return err
	}
	c.Name = name
	c.Slug = shared.Slugify(name)
	c.Description = description
	c.Image = strings.TrimSpace(image)
	c.IncrementVersion()
	return nil
}

// SetSortOrder sets the display position
func (c *Category) SetSortOrder(order int) {
	c.SortOrder = order
	c.IncrementVersion()
}

func normalizeCategoryName(name string) (string, error) {
	name = strings.Join(strings.Fields(name), " ")
	if name == "" {
		return "", shared.NewDomainError("INVALID_NAME", "Category name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 100 {
		return "", shared.NewDomainError("INVALID_NAME", "Category name cannot exceed 100 characters")
	}
	if shared.Slugify(name) == "" {
		return "", shared.NewDomainError("INVALID_NAME", "Category name must contain letters or digits")
	}
	// Casers are stateful, so one per call.
	return cases.Title(language.English).String(name), nil
}
