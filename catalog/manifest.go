package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/spetersoncode/a2ui"
)

// Catalogs holds the base schema and the locally known component catalogs.
type Catalogs struct {
	// Schema is the base A2UI message schema.
	Schema json.RawMessage
	// Local maps catalog id to catalog content.
	Local map[string]json.RawMessage
	// DefaultID is used when a client sends no capabilities. Empty means
	// capabilities are required.
	DefaultID string
	// ExtendedID is preferred over the standard catalog when a client
	// supports it.
	ExtendedID string
}

// Lookup returns the content of a local catalog.
func (c *Catalogs) Lookup(id string) (json.RawMessage, bool) {
	if c == nil || c.Local == nil {
		return nil, false
	}
	raw, ok := c.Local[id]
	return raw, ok
}

// IDs returns the ids of the local catalogs, preferred first.
func (c *Catalogs) IDs() []string {
	if c == nil {
		return nil
	}
	var ids []string
	for _, id := range []string{c.ExtendedID, a2ui.StandardCatalogID} {
		if _, ok := c.Local[id]; ok && id != "" {
			ids = append(ids, id)
		}
	}
	for id := range c.Local {
		if id != c.ExtendedID && id != a2ui.StandardCatalogID {
			ids = append(ids, id)
		}
	}
	return ids
}

// Manifest is the YAML description of a catalog directory.
//
//	schema: a2ui_schema.json
//	default: https://github.com/google/A2UI/.../standard_catalog_definition.json
//	extended: https://github.com/google/A2UI/.../rizzcharts_catalog_definition.json
//	catalogs:
//	  - id: https://github.com/google/A2UI/.../standard_catalog_definition.json
//	    path: standard_catalog_definition.json
type Manifest struct {
	Schema   string          `yaml:"schema"`
	Default  string          `yaml:"default,omitempty"`
	Extended string          `yaml:"extended,omitempty"`
	Catalogs []ManifestEntry `yaml:"catalogs"`
}

// ManifestEntry names one local catalog file.
type ManifestEntry struct {
	ID   string `yaml:"id"`
	Path string `yaml:"path"`
}

// LoadManifest reads a YAML manifest and the files it names. Relative
// paths resolve against the manifest's directory.
func LoadManifest(path string) (*Catalogs, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, a2ui.NewConfigurationError("read catalog manifest", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, a2ui.NewConfigurationError("parse catalog manifest", err)
	}
	return m.Load(filepath.Dir(path))
}

// Load reads the files named by the manifest relative to dir.
func (m *Manifest) Load(dir string) (*Catalogs, error) {
	if m.Schema == "" {
		return nil, a2ui.NewConfigurationError("catalog manifest", fmt.Errorf("schema path is required"))
	}
	schema, err := readJSON(dir, m.Schema)
	if err != nil {
		return nil, err
	}

	c := &Catalogs{
		Schema:     schema,
		Local:      make(map[string]json.RawMessage, len(m.Catalogs)),
		DefaultID:  m.Default,
		ExtendedID: m.Extended,
	}
	if c.ExtendedID == "" {
		c.ExtendedID = a2ui.ExtendedCatalogID
	}

	for _, e := range m.Catalogs {
		if e.ID == "" {
			return nil, a2ui.NewConfigurationError("catalog manifest", fmt.Errorf("catalog %q has no id", e.Path))
		}
		if _, dup := c.Local[e.ID]; dup {
			return nil, a2ui.NewConfigurationError("catalog manifest", fmt.Errorf("duplicate catalog id %q", e.ID))
		}
		raw, err := readJSON(dir, e.Path)
		if err != nil {
			return nil, err
		}
		c.Local[e.ID] = raw
	}

	if c.DefaultID != "" {
		if _, ok := c.Local[c.DefaultID]; !ok {
			return nil, a2ui.NewConfigurationError("catalog manifest",
				fmt.Errorf("%w: default %s", a2ui.ErrCatalogNotFound, c.DefaultID))
		}
	}
	return c, nil
}

func readJSON(dir, name string) (json.RawMessage, error) {
	p := name
	if !filepath.IsAbs(p) {
		p = filepath.Join(dir, p)
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, a2ui.NewConfigurationError("read catalog file", err)
	}
	if !json.Valid(data) {
		return nil, a2ui.NewConfigurationError("read catalog file", fmt.Errorf("%s is not valid JSON", p))
	}
	return data, nil
}
