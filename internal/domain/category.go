package domain

import "strings"

// MaxCategoryNameLength is the longest accepted category name.
const MaxCategoryNameLength = 100

// Category groups books. Names are unique ignoring case, and a category
// cannot be removed while books still reference it.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewCategory creates a Category with a trimmed name.
func NewCategory(name string) (*Category, error) {
	c := &Category{Name: strings.TrimSpace(name)}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Rename changes the category name after trimming and validating it.
func (c *Category) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := requireText("name", name, MaxCategoryNameLength); err != nil {
		return err
	}
	c.Name = name
	return nil
}

// Validate checks if the Category has valid data.
func (c *Category) Validate() error {
	return requireText("name", c.Name, MaxCategoryNameLength)
}
