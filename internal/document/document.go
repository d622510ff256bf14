package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/voltcfg/volt/internal/logging"
	"github.com/voltcfg/volt/internal/schema"
)

const (
	appDir   = "amp"
	fileName = "settings.json"
)

// Document is the in-memory settings file: explicit user overrides
// layered over schema defaults.
type Document struct {
	path   string
	values map[string]any
	dirty  bool
	schema *schema.Schema
}

// Load reads the settings file at path. A missing or blank file yields
// an empty document; malformed JSON is an error.
func Load(path string, s *schema.Schema) (*Document, error) {
	d := &Document{
		path:   path,
		values: make(map[string]any),
		schema: s,
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		logging.Debug("settings file absent, starting empty", zap.String("path", path))
		return d, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	if strings.TrimSpace(string(data)) == "" {
		return d, nil
	}

	// json.Number keeps numeric literals intact so unknown keys
	// round-trip exactly.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&d.values); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	logging.Debug("settings loaded",
		zap.String("path", path),
		zap.Int("keys", len(d.values)),
	)
	return d, nil
}

// DefaultPath returns the platform-appropriate settings file path.
func DefaultPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, fileName), nil
}

// configDir resolves the per-user configuration directory following
// platform conventions.
func configDir() (string, error) {
	switch runtime.GOOS {
	case "windows":
		if localAppData := os.Getenv("LOCALAPPDATA"); localAppData != "" {
			return filepath.Join(localAppData, appDir), nil
		}
		userProfile := os.Getenv("USERPROFILE")
		if userProfile == "" {
			return "", fmt.Errorf("cannot determine user profile directory (LOCALAPPDATA and USERPROFILE not set)")
		}
		return filepath.Join(userProfile, "AppData", "Local", appDir), nil

	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			return filepath.Join(xdg, appDir), nil
		}
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("cannot determine home directory: %w", err)
		}
		return filepath.Join(home, ".config", appDir), nil
	}
}

// Path returns the file path this document persists to.
func (d *Document) Path() string {
	return d.path
}

// Schema returns the schema the document resolves defaults against.
func (d *Document) Schema() *schema.Schema {
	return d.schema
}

// Get returns the explicit value for key, falling back to the schema
// default for known keys and nil otherwise.
func (d *Document) Get(key string) any {
	if v, ok := d.values[key]; ok {
		return cloneValue(v)
	}
	if def, ok := d.schema.Def(key); ok {
		return cloneValue(def.Default)
	}
	return nil
}

// GetRaw returns the explicit value only; ok is false when the key has
// no override.
func (d *Document) GetRaw(key string) (any, bool) {
	v, ok := d.values[key]
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

// Set inserts or overwrites an explicit value and marks the document
// dirty. Values are not validated here; callers validate schema writes
// through schema.Validate, while wizards write pre-validated records.
func (d *Document) Set(key string, value any) {
	d.values[key] = value
	d.dirty = true
}

// Remove clears an explicit override, reverting known keys to their
// default. Marks dirty only when a value was actually removed.
func (d *Document) Remove(key string) {
	if _, ok := d.values[key]; ok {
		delete(d.values, key)
		d.dirty = true
	}
}

// Dirty reports whether there are unsaved changes.
func (d *Document) Dirty() bool {
	return d.dirty
}

// Keys returns all explicit keys in sorted order.
func (d *Document) Keys() []string {
	keys := make([]string, 0, len(d.values))
	for k := range d.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnknownKeys returns all explicit keys with no schema section
// assignment, sorted, for the Advanced section.
func (d *Document) UnknownKeys() []string {
	var keys []string
	for k := range d.values {
		if _, ok := d.schema.SectionFor(k); !ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// Save writes the explicit values (never defaults) as pretty-printed
// JSON with a trailing newline. The write is atomic: a temporary file
// is renamed over the target. Clears the dirty flag on success only.
func (d *Document) Save() error {
	data, err := json.MarshalIndent(d.values, "", "  ")
	if err != nil {
		return fmt.Errorf("serializing settings: %w", err)
	}
	data = append(data, '\n')

	if dir := filepath.Dir(d.path); dir != "" {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("creating directory %s: %w", dir, err)
		}
	}

	tmpPath := d.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("writing %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, d.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing %s: %w", d.path, err)
	}

	d.dirty = false
	logging.Info("settings saved",
		zap.String("path", d.path),
		zap.Int("keys", len(d.values)),
	)
	return nil
}

// cloneValue deep-copies a decoded JSON value so callers can mutate the
// result without aliasing the stored document state.
func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, el := range val {
			out[k] = cloneValue(el)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, el := range val {
			out[i] = cloneValue(el)
		}
		return out
	default:
		return val
	}
}
