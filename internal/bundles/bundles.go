// Package bundles holds the purchasable photo packages. The catalog is
// an asset file so a venue can reprice without a rebuild; enforcement
// of the photo cap is advisory and happens in the upload flow, never in
// the store.
package bundles

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/MDharunPrasad/photo-kiosk/internal/models"
)

type Catalog struct {
	bundles []models.Bundle
}

type fileBundle struct {
	Name  string  `yaml:"name"`
	Count string  `yaml:"count"` // number or "unlimited"
	Price float64 `yaml:"price"`
}

// Load - reads the catalog asset. An empty path falls back to the
// built-in defaults.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return &Catalog{bundles: defaults()}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bundles read %s: %w", path, err)
	}

	var raw []fileBundle
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("bundles decode %s: %w", path, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("bundles decode %s: catalog is empty", path)
	}

	out := make([]models.Bundle, 0, len(raw))
	for _, fb := range raw {
		b := models.Bundle{Name: fb.Name, Price: fb.Price}
		if fb.Count == "unlimited" {
			b.Count = models.BundleCount{Unlimited: true}
		} else {
			var n int
			if _, err := fmt.Sscanf(fb.Count, "%d", &n); err != nil || n <= 0 {
				return nil, fmt.Errorf("bundles decode %s: bad count %q for %q", path, fb.Count, fb.Name)
			}
			b.Count = models.BundleCount{Value: n}
		}
		out = append(out, b)
	}

	return &Catalog{bundles: out}, nil
}

// Bundles - the catalog in listing order.
func (c *Catalog) Bundles() []models.Bundle {
	out := make([]models.Bundle, len(c.bundles))
	copy(out, c.bundles)
	return out
}

// Find - lookup by bundle name.
func (c *Catalog) Find(name string) (models.Bundle, bool) {
	for _, b := range c.bundles {
		if b.Name == name {
			return b, true
		}
	}
	return models.Bundle{}, false
}

// Remaining - advisory photo allowance left on a session's bundle.
// Sessions without a bundle get nothing.
func Remaining(b *models.Bundle, have int) int {
	if b == nil {
		return 0
	}
	left := b.Count.Cap() - have
	if left < 0 {
		return 0
	}
	return left
}

func defaults() []models.Bundle {
	return []models.Bundle{
		{Name: "Basic", Count: models.BundleCount{Value: 5}, Price: 199},
		{Name: "Standard", Count: models.BundleCount{Value: 10}, Price: 349},
		{Name: "Premium", Count: models.BundleCount{Value: 20}, Price: 599},
		{Name: "Unlimited", Count: models.BundleCount{Unlimited: true}, Price: 999},
	}
}
