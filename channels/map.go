package channels

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ChannelMapping binds one broadcast channel to a publishing category.
// A channel may be identified by numeric id, by handle, or both.
type ChannelMapping struct {
	ID       int64  `yaml:"id,omitempty"`
	Handle   string `yaml:"handle,omitempty"`
	Category string `yaml:"category"`
}

// CategoryDef declares a publishing category for seeding.
type CategoryDef struct {
	Slug string `yaml:"slug"`
	Name string `yaml:"name"`
}

// MapFile is the YAML channel-map configuration document.
type MapFile struct {
	Channels   []ChannelMapping `yaml:"channels"`
	Categories []CategoryDef    `yaml:"categories"`
}

// LoadMapFile reads and parses the channel-map YAML file.
func LoadMapFile(path string) (*MapFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("channel map: read %s: %w", path, err)
	}
	var file MapFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("channel map: parse %s: %w", path, err)
	}
	return &file, nil
}

// Map is the immutable channel-to-category lookup table. It is built once at
// startup and may be shared freely across concurrent pipeline workers.
type Map struct {
	byKey map[string]string // normalized key -> category slug
}

// NewMap builds a Map from mappings. Every mapping must name a category and
// at least one of id or handle. Lookup by numeric id, handle, or @handle all
// resolve to the same category.
func NewMap(mappings []ChannelMapping) (*Map, error) {
	byKey := make(map[string]string, len(mappings)*2)
	for i, m := range mappings {
		if m.Category == "" {
			return nil, fmt.Errorf("channel map: entry %d has no category", i)
		}
		if m.ID == 0 && m.Handle == "" {
			return nil, fmt.Errorf("channel map: entry %d has neither id nor handle", i)
		}
		if m.ID != 0 {
			byKey[strconv.FormatInt(m.ID, 10)] = m.Category
		}
		if m.Handle != "" {
			byKey[normalizeHandle(m.Handle)] = m.Category
		}
	}
	return &Map{byKey: byKey}, nil
}

// Lookup resolves a channel key (numeric id as string, handle, or @handle)
// to its category slug.
func (m *Map) Lookup(key string) (string, bool) {
	slug, ok := m.byKey[NormalizeKey(key)]
	return slug, ok
}

// Len returns the number of distinct lookup keys.
func (m *Map) Len() int {
	return len(m.byKey)
}

// NormalizeKey canonicalizes a channel key: numeric ids pass through,
// handles are lowercased with any leading sigil removed.
func NormalizeKey(key string) string {
	key = strings.TrimSpace(key)
	if _, err := strconv.ParseInt(key, 10, 64); err == nil {
		return key
	}
	return normalizeHandle(key)
}

func normalizeHandle(handle string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(handle), "@"))
}
