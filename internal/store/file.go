package store

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/lumeva/reckon/internal/validation"
	"github.com/lumeva/reckon/pkg/models"
)

// productRecord is the on-disk shape of one catalog entry.
type productRecord struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Short       string            `json:"short"`
	Usage       string            `json:"usage"`
	Description string            `json:"description"`
	Contra      string            `json:"contra"`
	BuyURL      string            `json:"buy_url"`
	Image       string            `json:"image"`
	Category    string            `json:"category"`
	Tags        []string          `json:"tags"`
	Contexts    map[string]string `json:"contexts"`
}

// FileCatalog serves the catalog from a products JSON file, validated
// against the products schema on load. Deployments without a catalog
// database ship the file as a build artifact; file order is the catalog's
// insertion order.
type FileCatalog struct {
	*MemoryCatalog
	path string
}

func NewFileCatalog(path string) (*FileCatalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	if err := validation.ValidateProducts(raw); err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", path, err)
	}

	var records []productRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("decode catalog file %s: %w", path, err)
	}

	items := make([]models.Item, 0, len(records))
	for _, record := range records {
		items = append(items, record.toItem())
	}
	return &FileCatalog{
		MemoryCatalog: NewMemoryCatalog(items),
		path:          path,
	}, nil
}

func (r productRecord) toItem() models.Item {
	item := models.Item{
		ID:          r.ID,
		Title:       r.Name,
		Annotations: r.Contexts,
		Category:    r.Category,
		Tags:        r.Tags,
	}
	if item.Title == "" {
		item.Title = r.ID
	}
	if r.Short != "" {
		item.Bullets = append(item.Bullets, r.Short)
	}
	if r.Usage != "" {
		item.Bullets = append(item.Bullets, r.Usage)
	}
	if r.Image != "" {
		image := r.Image
		item.ImageURL = &image
	}
	if r.BuyURL != "" {
		buy := r.BuyURL
		item.PurchaseURL = &buy
	}
	return item
}

// Path returns the file the catalog was loaded from.
func (c *FileCatalog) Path() string {
	return c.path
}
