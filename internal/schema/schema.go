package schema

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SettingType identifies the JSON kind a setting's value must have.
type SettingType int

const (
	Boolean SettingType = iota
	String
	Number
	StringEnum
	ArrayString
	ArrayObject
	Object
)

// Label returns a human-readable name for the setting type.
func (t SettingType) Label() string {
	switch t {
	case Boolean:
		return "boolean"
	case String, StringEnum:
		return "string"
	case Number:
		return "number"
	case ArrayString:
		return "array of strings"
	case ArrayObject:
		return "array of objects"
	case Object:
		return "object"
	default:
		return "unknown"
	}
}

// SettingDef describes a single known setting.
type SettingDef struct {
	Key     string
	Type    SettingType
	Default any
	Section Section

	// EnumOptions lists the valid choices for StringEnum settings.
	EnumOptions []string
	// AllowsCustom permits a free-form value beyond EnumOptions.
	AllowsCustom bool
}

// Section identifies one of the fixed top-level groupings.
type Section int

const (
	General Section = iota
	Permissions
	Tools
	MCPs
	Advanced
)

// AllSections returns the fixed, ordered section list.
func AllSections() []Section {
	return []Section{General, Permissions, Tools, MCPs, Advanced}
}

// Label returns the sidebar label for the section.
func (s Section) Label() string {
	switch s {
	case General:
		return "General"
	case Permissions:
		return "Permissions"
	case Tools:
		return "Tools"
	case MCPs:
		return "MCPs"
	case Advanced:
		return "Advanced"
	default:
		return "Unknown"
	}
}

// SingleKey reports whether the section's content is a single
// array-valued setting whose items are the navigable entries.
func (s Section) SingleKey() bool {
	return s == Permissions
}

// SplitPanel reports whether the section renders as two independently
// navigable sub-lists (server configs and permission rules).
func (s Section) SplitPanel() bool {
	return s == MCPs
}

// Well-known keys the wizards and split panel operate on.
const (
	KeyPermissions    = "amp.permissions"
	KeyMcpServers     = "amp.mcpServers"
	KeyMcpPermissions = "amp.mcpPermissions"
)

// Schema is the catalog of known settings, constructed once and passed
// to the document layer.
type Schema struct {
	defs  []SettingDef
	byKey map[string]int
}

// New builds a Schema from setting definitions. Duplicate keys are a
// programming error and panic at construction.
func New(defs []SettingDef) *Schema {
	s := &Schema{defs: defs, byKey: make(map[string]int, len(defs))}
	for i, d := range defs {
		if _, dup := s.byKey[d.Key]; dup {
			panic(fmt.Sprintf("schema: duplicate setting key %q", d.Key))
		}
		s.byKey[d.Key] = i
	}
	return s
}

func themeOptions() []string {
	return []string{
		"terminal",
		"dark",
		"light",
		"catppuccin-mocha",
		"solarized-dark",
		"solarized-light",
		"gruvbox-dark-hard",
		"nord",
	}
}

// Default returns the schema for all known Amp settings.
func Default() *Schema {
	return New([]SettingDef{
		// General
		{Key: "amp.anthropic.thinking.enabled", Type: Boolean, Default: true, Section: General},
		{Key: "amp.showCosts", Type: Boolean, Default: true, Section: General},
		{Key: "amp.notifications.enabled", Type: Boolean, Default: true, Section: General},
		{Key: "amp.git.commit.ampThread.enabled", Type: Boolean, Default: true, Section: General},
		{Key: "amp.git.commit.coauthor.enabled", Type: Boolean, Default: true, Section: General},
		{Key: "amp.tab.clipboard.enabled", Type: Boolean, Default: true, Section: General},
		{Key: "amp.bitbucketToken", Type: String, Default: "", Section: General},
		{Key: "amp.skills.path", Type: String, Default: "", Section: General},
		{
			Key: "amp.terminal.theme", Type: StringEnum, Default: "", Section: General,
			EnumOptions: themeOptions(), AllowsCustom: true,
		},
		{
			Key: "amp.terminal.commands.nodeSpawn.loadProfile", Type: StringEnum, Default: "", Section: General,
			EnumOptions: []string{"always", "never", "daily"},
		},
		{
			Key: "amp.updates.mode", Type: StringEnum, Default: "", Section: General,
			EnumOptions: []string{"auto", "warn", "disabled"},
		},
		{
			Key: "amp.internal.deepReasoningEffort", Type: StringEnum, Default: "", Section: General,
			EnumOptions: []string{"medium", "high", "xhigh"},
		},
		{Key: "amp.defaultVisibility", Type: Object, Default: map[string]any{}, Section: General},
		{Key: "amp.fuzzy.alwaysIncludePaths", Type: ArrayString, Default: []any{}, Section: General},

		// Permissions
		{Key: KeyPermissions, Type: ArrayObject, Default: []any{}, Section: Permissions},

		// Tools
		{Key: "amp.tools.disable", Type: ArrayString, Default: []any{}, Section: Tools},
		{Key: "amp.tools.stopTimeout", Type: Number, Default: json.Number("300"), Section: Tools},

		// MCPs
		{Key: KeyMcpServers, Type: Object, Default: map[string]any{}, Section: MCPs},
		{Key: KeyMcpPermissions, Type: ArrayObject, Default: []any{}, Section: MCPs},
	})
}

// Def returns the definition for a known key.
func (s *Schema) Def(key string) (SettingDef, bool) {
	i, ok := s.byKey[key]
	if !ok {
		return SettingDef{}, false
	}
	return s.defs[i], true
}

// SectionFor returns the section a known key belongs to.
func (s *Schema) SectionFor(key string) (Section, bool) {
	d, ok := s.Def(key)
	if !ok {
		return 0, false
	}
	return d.Section, true
}

// ForSection returns the definitions assigned to a section, in schema
// order.
func (s *Schema) ForSection(section Section) []SettingDef {
	var out []SettingDef
	for _, d := range s.defs {
		if d.Section == section {
			out = append(out, d)
		}
	}
	return out
}

// Keys returns all known setting keys in schema order.
func (s *Schema) Keys() []string {
	keys := make([]string, len(s.defs))
	for i, d := range s.defs {
		keys[i] = d.Key
	}
	return keys
}

// Kind reports the JSON kind of a decoded value: "null", "boolean",
// "string", "number", "array", or "object".
func Kind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case json.Number, float64, int, int64:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "unknown"
	}
}

// Validate checks a candidate value against the expected type for a
// known key. Unknown keys always pass. StringEnum values must be one of
// the named options; the "allows custom" escape hatch is enforced at
// value construction in the wizard, never here.
func (s *Schema) Validate(key string, value any) error {
	def, ok := s.Def(key)
	if !ok {
		return nil
	}

	typeOK := false
	switch def.Type {
	case Boolean:
		typeOK = Kind(value) == "boolean"
	case String, StringEnum:
		typeOK = Kind(value) == "string"
	case Number:
		typeOK = Kind(value) == "number"
	case ArrayString:
		typeOK = elementsAre(value, "string")
	case ArrayObject:
		typeOK = elementsAre(value, "object")
	case Object:
		typeOK = Kind(value) == "object"
	}
	if !typeOK {
		return fmt.Errorf("expected %s for key '%s'", def.Type.Label(), key)
	}

	if def.Type == StringEnum {
		v := value.(string)
		for _, opt := range def.EnumOptions {
			if v == opt {
				return nil
			}
		}
		return fmt.Errorf("invalid value '%s' for '%s', expected one of: %s",
			v, key, strings.Join(def.EnumOptions, ", "))
	}

	return nil
}

// elementsAre reports whether value is an array whose every element has
// the given kind. A single wrong-kind element rejects the whole array.
func elementsAre(value any, kind string) bool {
	arr, ok := value.([]any)
	if !ok {
		return false
	}
	for _, el := range arr {
		if Kind(el) != kind {
			return false
		}
	}
	return true
}
