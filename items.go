package flaggallery

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrNoItems is returned when an item list is empty.
	ErrNoItems = errors.New("no items")
	// ErrInvalidItem is returned (wrapped) for an item that cannot be shown.
	ErrInvalidItem = errors.New("invalid item")
)

// Item is one immutable showcase entry.
type Item struct {
	Title       string   `yaml:"title" json:"title"`
	Description string   `yaml:"description" json:"description"`
	Tags        []string `yaml:"tech" json:"tech"`
	GitHub      string   `yaml:"github" json:"github,omitempty"`
	Demo        string   `yaml:"demo" json:"demo,omitempty"`
	Images      []string `yaml:"images" json:"images,omitempty"`
}

// Link returns the URL opened when the item is activated: the demo when
// present, else the repository, else "".
func (it Item) Link() string {
	if it.Demo != "" {
		return it.Demo
	}
	return it.GitHub
}

// Validate checks that the item has a title and that its links, when
// present, are absolute http(s) URLs.
func (it Item) Validate() error {
	if strings.TrimSpace(it.Title) == "" {
		return fmt.Errorf("%w: empty title", ErrInvalidItem)
	}
	for _, link := range []string{it.Demo, it.GitHub} {
		if link == "" {
			continue
		}
		u, err := url.Parse(link)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: %q: bad link %q", ErrInvalidItem, it.Title, link)
		}
	}
	for _, img := range it.Images {
		if strings.TrimSpace(img) == "" {
			return fmt.Errorf("%w: %q: empty image reference", ErrInvalidItem, it.Title)
		}
	}
	return nil
}

type itemsFile struct {
	Items []Item `yaml:"items"`
}

//go:embed items.yaml
var defaultItemsYAML []byte

// DefaultItems returns the built-in catalogue.
func DefaultItems() []Item {
	items, err := ParseItems(defaultItemsYAML)
	if err != nil {
		panic(fmt.Sprintf("flaggallery: embedded items: %v", err))
	}
	return items
}

// ParseItems decodes and validates a YAML item list. The document is either
// a mapping with an "items" key or a bare sequence.
func ParseItems(data []byte) ([]Item, error) {
	var f itemsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		var bare []Item
		if err2 := yaml.Unmarshal(data, &bare); err2 != nil {
			return nil, fmt.Errorf("parse items: %w", err)
		}
		f.Items = bare
	}
	if len(f.Items) == 0 {
		return nil, ErrNoItems
	}
	for i, it := range f.Items {
		if err := it.Validate(); err != nil {
			return nil, fmt.Errorf("item %d: %w", i, err)
		}
	}
	return f.Items, nil
}

// LoadItems reads and validates an item file.
func LoadItems(path string) ([]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load items: %w", err)
	}
	items, err := ParseItems(data)
	if err != nil {
		return nil, fmt.Errorf("load items %s: %w", path, err)
	}
	return items, nil
}
