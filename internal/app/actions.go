package app

import (
	"encoding/json"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/voltcfg/volt/internal/logging"
	"github.com/voltcfg/volt/internal/schema"
)

// EditorRequest asks the caller to open a value in the external
// structured-value editor. At most one of ArrayIndex/ObjectKey is set:
// ObjectKey targets a key inside the object stored under Key,
// ArrayIndex targets an element of the array stored under Key, and
// neither means the whole setting is replaced by the edited value.
type EditorRequest struct {
	Key        string
	Value      any
	ArrayIndex int    // -1 when unset
	ObjectKey  string // "" when unset
}

func wholeValueRequest(key string, value any) *EditorRequest {
	return &EditorRequest{Key: key, Value: value, ArrayIndex: -1}
}

func arrayItemRequest(key string, value any, index int) *EditorRequest {
	return &EditorRequest{Key: key, Value: value, ArrayIndex: index}
}

func objectEntryRequest(key string, value any, objectKey string) *EditorRequest {
	return &EditorRequest{Key: key, Value: value, ArrayIndex: -1, ObjectKey: objectKey}
}

// Activate handles Enter on the current selection. Booleans toggle,
// strings and numbers open an inline edit, enums cycle, and structured
// values produce an EditorRequest for the external editor.
func (a *App) Activate() *EditorRequest {
	section := a.CurrentSection()
	if section.SingleKey() {
		return a.activateSingleKeyItem()
	}
	if section.SplitPanel() {
		return a.activateMcpItem()
	}

	entry, ok := a.currentEntry()
	if !ok {
		return nil
	}

	if !entry.Known {
		return wholeValueRequest(entry.Key, a.Doc.Get(entry.Key))
	}

	def := entry.Def
	switch def.Type {
	case schema.Boolean:
		a.Doc.Set(def.Key, !asBool(a.Doc.Get(def.Key)))
	case schema.String, schema.Number:
		a.Wizard = &EditingValue{
			Key:    def.Key,
			Type:   def.Type,
			Buffer: valueLiteral(a.Doc.Get(def.Key)),
		}
	case schema.StringEnum:
		a.cycleEnum(def)
	case schema.Object:
		return wholeValueRequest(def.Key, a.Doc.Get(def.Key))
	case schema.ArrayObject:
		items := asArray(a.Doc.Get(def.Key))
		if len(items) == 0 {
			a.StatusMsg = "Empty array. Press 'a' to add an item."
			return nil
		}
		return arrayItemRequest(def.Key, items[0], 0)
	case schema.ArrayString:
		a.StatusMsg = "Press 'a' to add, 'd' to delete items."
	}
	return nil
}

// activateSingleKeyItem opens the selected array element of a
// single-key section in the external editor.
func (a *App) activateSingleKeyItem() *EditorRequest {
	entry, ok := a.currentEntry()
	if !ok || !entry.Known {
		return nil
	}
	items := asArray(a.Doc.Get(entry.Key))
	if a.SelectedItem >= len(items) {
		return nil
	}
	return arrayItemRequest(entry.Key, items[a.SelectedItem], a.SelectedItem)
}

// activateMcpItem opens the selected split-panel item: a server config
// by object key, or a permission rule by array index.
func (a *App) activateMcpItem() *EditorRequest {
	switch a.McpPanel {
	case McpConfigs:
		keys := a.McpServerKeys()
		if a.SelectedItem >= len(keys) {
			a.StatusMsg = "No servers configured. Press 'a' to add one."
			return nil
		}
		name := keys[a.SelectedItem]
		obj := asObject(a.Doc.Get(schema.KeyMcpServers))
		return objectEntryRequest(schema.KeyMcpServers, obj[name], name)
	case McpPermissions:
		items := asArray(a.Doc.Get(schema.KeyMcpPermissions))
		if a.McpPermIndex >= len(items) {
			a.StatusMsg = "No permission rules. Press 'a' to add one."
			return nil
		}
		return arrayItemRequest(schema.KeyMcpPermissions, items[a.McpPermIndex], a.McpPermIndex)
	}
	return nil
}

// ForceEditor opens the whole current setting in the external editor
// regardless of its type.
func (a *App) ForceEditor() *EditorRequest {
	if a.CurrentSection().SplitPanel() {
		key := schema.KeyMcpServers
		if a.McpPanel == McpPermissions {
			key = schema.KeyMcpPermissions
		}
		return wholeValueRequest(key, a.Doc.Get(key))
	}
	entry, ok := a.currentEntry()
	if !ok {
		return nil
	}
	return wholeValueRequest(entry.Key, a.Doc.Get(entry.Key))
}

// cycleEnum advances a StringEnum setting to its next option, wrapping
// at the end. When the definition allows custom values, the slot after
// the last named option is the synthetic "Custom" choice, which opens
// an inline edit instead of writing a literal. That typed value never
// goes through the enum membership check.
func (a *App) cycleEnum(def schema.SettingDef) {
	options := def.EnumOptions
	if len(options) == 0 {
		return
	}

	current := asString(a.Doc.Get(def.Key))
	next := 0
	for i, opt := range options {
		if opt == current {
			next = i + 1
			break
		}
	}

	slots := len(options)
	if def.AllowsCustom {
		slots++
	}
	if next >= slots {
		next = 0
	}

	if def.AllowsCustom && next == len(options) {
		a.Wizard = &EditingValue{Key: def.Key, Type: def.Type, CustomEnum: true}
		return
	}
	a.Doc.Set(def.Key, options[next])
}

// AddItem handles 'a': array settings open an inline append edit, and
// the structured sections start their record wizards.
func (a *App) AddItem() {
	section := a.CurrentSection()
	switch {
	case section == schema.Advanced:
		a.Wizard = &EnteringKeyName{}
		return
	case section.SingleKey():
		a.Wizard = &EnteringPermissionTool{}
		return
	case section.SplitPanel():
		if a.McpPanel == McpConfigs {
			a.Wizard = &EnteringMcpServerName{}
		} else {
			a.Wizard = &EnteringMcpMatchField{}
		}
		return
	}

	entry, ok := a.currentEntry()
	if !ok || !entry.Known {
		return
	}
	switch entry.Def.Type {
	case schema.ArrayString, schema.ArrayObject:
		a.Wizard = &EditingValue{Key: entry.Key, Type: entry.Def.Type, Append: true}
	}
}

// DeleteItem handles 'd'. Single-key sections delete at the cursor
// (clamped); normal-section arrays always drop the last element. The
// split panel deletes the selected server key or permission index.
func (a *App) DeleteItem() {
	section := a.CurrentSection()
	if section.SplitPanel() {
		a.deleteMcpItem()
		return
	}

	entry, ok := a.currentEntry()
	if !ok || !entry.Known {
		return
	}
	def := entry.Def
	if def.Type != schema.ArrayString && def.Type != schema.ArrayObject {
		return
	}

	arr := asArray(a.Doc.Get(def.Key))
	switch {
	case len(arr) == 0:
		a.StatusMsg = "Array is already empty."
	case section.SingleKey():
		idx := a.SelectedItem
		if idx > len(arr)-1 {
			idx = len(arr) - 1
		}
		arr = append(arr[:idx], arr[idx+1:]...)
		a.Doc.Set(def.Key, arr)
		a.StatusMsg = fmt.Sprintf("Removed item %d from %s", idx, def.Key)
		if len(arr) > 0 && a.SelectedItem >= len(arr) {
			a.SelectedItem = len(arr) - 1
		}
	default:
		arr = arr[:len(arr)-1]
		a.Doc.Set(def.Key, arr)
		a.StatusMsg = fmt.Sprintf("Removed last item from %s", def.Key)
	}
}

// deleteMcpItem removes the selected server config or permission rule.
func (a *App) deleteMcpItem() {
	switch a.McpPanel {
	case McpConfigs:
		keys := a.McpServerKeys()
		if len(keys) == 0 {
			a.StatusMsg = "No servers to delete."
			return
		}
		idx := a.SelectedItem
		if idx > len(keys)-1 {
			idx = len(keys) - 1
		}
		name := keys[idx]
		obj := asObject(a.Doc.Get(schema.KeyMcpServers))
		delete(obj, name)
		a.Doc.Set(schema.KeyMcpServers, obj)
		a.StatusMsg = fmt.Sprintf("Removed server '%s'", name)
		if remaining := len(keys) - 1; remaining > 0 && a.SelectedItem >= remaining {
			a.SelectedItem = remaining - 1
		}
	case McpPermissions:
		arr := asArray(a.Doc.Get(schema.KeyMcpPermissions))
		if len(arr) == 0 {
			a.StatusMsg = "Array is already empty."
			return
		}
		idx := a.McpPermIndex
		if idx > len(arr)-1 {
			idx = len(arr) - 1
		}
		arr = append(arr[:idx], arr[idx+1:]...)
		a.Doc.Set(schema.KeyMcpPermissions, arr)
		a.StatusMsg = fmt.Sprintf("Removed rule %d from %s", idx, schema.KeyMcpPermissions)
		if len(arr) > 0 && a.McpPermIndex >= len(arr) {
			a.McpPermIndex = len(arr) - 1
		}
	}
}

// ResetSetting handles 'r': known settings revert to their default,
// unknown keys are deleted outright.
func (a *App) ResetSetting() {
	if a.CurrentSection().SplitPanel() {
		key := schema.KeyMcpServers
		if a.McpPanel == McpPermissions {
			key = schema.KeyMcpPermissions
		}
		a.Doc.Remove(key)
		a.StatusMsg = fmt.Sprintf("Reset %s to default", key)
		a.SelectedItem = 0
		a.McpPermIndex = 0
		return
	}

	entry, ok := a.currentEntry()
	if !ok {
		return
	}
	if entry.Known {
		a.Doc.Remove(entry.Key)
		a.StatusMsg = fmt.Sprintf("Reset %s to default", entry.Key)
		if a.CurrentSection().SingleKey() {
			a.SelectedItem = 0
		}
		return
	}

	a.Doc.Remove(entry.Key)
	a.StatusMsg = fmt.Sprintf("Removed %s", entry.Key)
	if count := a.ItemCount(); count > 0 && a.SelectedItem >= count {
		a.SelectedItem = count - 1
	}
}

// ApplyEditorResult writes the value returned by the external editor
// back into the document, honoring the request's target.
func (a *App) ApplyEditorResult(req *EditorRequest, edited any) {
	switch {
	case req.ObjectKey != "":
		obj := asObject(a.Doc.Get(req.Key))
		if obj == nil {
			obj = make(map[string]any)
		}
		obj[req.ObjectKey] = edited
		a.Doc.Set(req.Key, obj)
	case req.ArrayIndex >= 0:
		arr := asArray(a.Doc.Get(req.Key))
		if req.ArrayIndex < len(arr) {
			arr[req.ArrayIndex] = edited
		}
		a.Doc.Set(req.Key, arr)
	default:
		a.Doc.Set(req.Key, edited)
	}
	logging.Debug("editor result applied",
		zap.String("key", req.Key),
		zap.Int("array_index", req.ArrayIndex),
		zap.String("object_key", req.ObjectKey),
	)
	a.StatusMsg = fmt.Sprintf("Updated %s", req.Key)
}

// Save persists the document; the dirty flag stays set on failure.
func (a *App) Save() {
	if err := a.Doc.Save(); err != nil {
		a.StatusMsg = fmt.Sprintf("Save failed: %v", err)
		return
	}
	a.StatusMsg = "Saved!"
}

// valueLiteral renders a scalar value as its inline edit buffer text.
func valueLiteral(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return ""
	}
}
