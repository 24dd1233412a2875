package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/stevenh6696/bookkeeping-notebook/internal/models"
)

// categoryEntry is one item of the optional categories list in the
// accounts file:
//
//	categories:
//	  - name: Food
//	    subcategories: [Groceries, Restaurants]
type categoryEntry struct {
	Name          string   `mapstructure:"name"`
	Subcategories []string `mapstructure:"subcategories"`
}

// LoadCategories reads the category list from the accounts file. A file
// without one yields no categories, which leaves entries unrestricted.
func LoadCategories(path string) (models.Categories, error) {
	v, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var raw []categoryEntry
	if err := v.UnmarshalKey("categories", &raw); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return parseCategories(raw)
}

func parseCategories(raw []categoryEntry) (models.Categories, error) {
	var errors []string
	categories := make(models.Categories, 0, len(raw))
	for i, r := range raw {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			errors = append(errors, fmt.Sprintf("category %d has no name", i+1))
			continue
		}
		if slices.ContainsFunc(categories, func(c models.Category) bool { return c.Name == name }) {
			errors = append(errors, fmt.Sprintf("category %q is configured twice", name))
			continue
		}

		subs := make([]string, 0, len(r.Subcategories))
		for _, sub := range r.Subcategories {
			sub = strings.TrimSpace(sub)
			switch {
			case sub == "":
				errors = append(errors, fmt.Sprintf("category %q has an empty subcategory", name))
			case slices.Contains(subs, sub):
				errors = append(errors, fmt.Sprintf("category %q lists subcategory %q twice", name, sub))
			default:
				subs = append(subs, sub)
			}
		}
		categories = append(categories, models.Category{Name: name, Subcategories: subs})
	}

	if len(errors) > 0 {
		return nil, fmt.Errorf("invalid categories configuration:\n- %s", strings.Join(errors, "\n- "))
	}
	return categories, nil
}
