package app

import (
	"sort"

	"github.com/voltcfg/volt/internal/document"
	"github.com/voltcfg/volt/internal/schema"
)

// Focus identifies which panel has keyboard focus.
type Focus int

const (
	FocusSidebar Focus = iota
	FocusContent
)

// McpPanel identifies a sub-panel of the MCPs split-panel section.
type McpPanel int

const (
	McpConfigs McpPanel = iota
	McpPermissions
)

// SettingEntry is a currently navigable item: a known setting or an
// unknown key from the Advanced section. It is a projection of
// (document, schema, section) and is recomputed on every access.
type SettingEntry struct {
	Key   string
	Known bool
	Def   schema.SettingDef // valid only when Known
}

// App is the complete editor state.
type App struct {
	Doc    *document.Document
	Schema *schema.Schema

	SelectedSection int
	// SelectedItem indexes schema entries in normal sections, array
	// items in single-key sections, and the Configs sub-list in the
	// split panel.
	SelectedItem int
	// McpPermIndex is the second cursor for the split panel's
	// Permissions sub-list.
	McpPermIndex int
	McpPanel     McpPanel

	Focus      Focus
	Wizard     WizardState
	StatusMsg  string
	ShouldQuit bool
}

// New creates an App over a loaded document.
func New(doc *document.Document) *App {
	return &App{
		Doc:    doc,
		Schema: doc.Schema(),
	}
}

// Sections returns the fixed sidebar section list.
func (a *App) Sections() []schema.Section {
	return schema.AllSections()
}

// CurrentSection returns the selected section.
func (a *App) CurrentSection() schema.Section {
	return schema.AllSections()[a.SelectedSection]
}

// Entries returns the navigable entries for the current section.
func (a *App) Entries() []SettingEntry {
	section := a.CurrentSection()
	if section == schema.Advanced {
		var entries []SettingEntry
		for _, key := range a.Doc.UnknownKeys() {
			entries = append(entries, SettingEntry{Key: key})
		}
		return entries
	}
	var entries []SettingEntry
	for _, def := range a.Schema.ForSection(section) {
		entries = append(entries, SettingEntry{Key: def.Key, Known: true, Def: def})
	}
	return entries
}

// ItemCount returns how many items the cursor can move across in the
// current section (excluding the split panel, which has per-panel
// counts).
func (a *App) ItemCount() int {
	if a.CurrentSection().SingleKey() {
		return a.singleKeyItemCount()
	}
	return len(a.Entries())
}

// singleKeyItemCount returns the array length of a single-key section's
// sole setting.
func (a *App) singleKeyItemCount() int {
	entries := a.Entries()
	if len(entries) == 0 || !entries[0].Known {
		return 0
	}
	return len(asArray(a.Doc.Get(entries[0].Key)))
}

// McpServerKeys returns the server names of the MCP servers object in
// stable order.
func (a *App) McpServerKeys() []string {
	obj := asObject(a.Doc.Get(schema.KeyMcpServers))
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// McpPermCount returns the MCP permission rule count.
func (a *App) McpPermCount() int {
	return len(asArray(a.Doc.Get(schema.KeyMcpPermissions)))
}

// MoveUp moves the selection up in the focused panel.
func (a *App) MoveUp() {
	if a.Focus == FocusSidebar {
		if a.SelectedSection > 0 {
			a.SelectedSection--
			a.resetItemSelection()
		}
		return
	}

	if a.CurrentSection().SplitPanel() {
		a.mcpMoveUp()
		return
	}
	if a.SelectedItem > 0 {
		a.SelectedItem--
	}
}

// MoveDown moves the selection down in the focused panel.
func (a *App) MoveDown() {
	if a.Focus == FocusSidebar {
		if a.SelectedSection < len(schema.AllSections())-1 {
			a.SelectedSection++
			a.resetItemSelection()
		}
		return
	}

	if a.CurrentSection().SplitPanel() {
		a.mcpMoveDown()
		return
	}
	count := a.ItemCount()
	if count > 0 && a.SelectedItem < count-1 {
		a.SelectedItem++
	}
}

// mcpMoveUp steps the split-panel cursor up. Moving up past the first
// Permissions item crosses into Configs at its last valid index.
func (a *App) mcpMoveUp() {
	switch a.McpPanel {
	case McpConfigs:
		if a.SelectedItem > 0 {
			a.SelectedItem--
		}
	case McpPermissions:
		if a.McpPermIndex > 0 {
			a.McpPermIndex--
			return
		}
		a.McpPanel = McpConfigs
		if n := len(a.McpServerKeys()); n > 0 {
			a.SelectedItem = n - 1
		} else {
			a.SelectedItem = 0
		}
	}
}

// mcpMoveDown steps the split-panel cursor down. Moving down past the
// last Configs item crosses into Permissions at index 0.
func (a *App) mcpMoveDown() {
	switch a.McpPanel {
	case McpConfigs:
		if a.SelectedItem < len(a.McpServerKeys())-1 {
			a.SelectedItem++
			return
		}
		a.McpPanel = McpPermissions
		a.McpPermIndex = 0
	case McpPermissions:
		if count := a.McpPermCount(); count > 0 && a.McpPermIndex < count-1 {
			a.McpPermIndex++
		}
	}
}

// ToggleFocus swaps focus between the sidebar and the content panel
// without altering any index.
func (a *App) ToggleFocus() {
	if a.Focus == FocusSidebar {
		a.Focus = FocusContent
	} else {
		a.Focus = FocusSidebar
	}
}

// resetItemSelection returns all item-level cursors to their defaults
// after a section change.
func (a *App) resetItemSelection() {
	a.SelectedItem = 0
	a.McpPermIndex = 0
	a.McpPanel = McpConfigs
}

// currentEntry returns the entry direct actions operate on: the
// section's sole setting in single-key sections, the selected entry
// otherwise.
func (a *App) currentEntry() (SettingEntry, bool) {
	entries := a.Entries()
	if a.CurrentSection().SingleKey() {
		if len(entries) == 0 {
			return SettingEntry{}, false
		}
		return entries[0], true
	}
	if a.SelectedItem >= len(entries) {
		return SettingEntry{}, false
	}
	return entries[a.SelectedItem], true
}

func asArray(v any) []any {
	arr, _ := v.([]any)
	return arr
}

func asObject(v any) map[string]any {
	obj, _ := v.(map[string]any)
	return obj
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

func asBool(v any) bool {
	b, _ := v.(bool)
	return b
}
