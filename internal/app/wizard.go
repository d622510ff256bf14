package app

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/voltcfg/volt/internal/logging"
	"github.com/voltcfg/volt/internal/schema"
)

// WizardState is a step of a multi-step input flow. Exactly one state
// is active at a time (nil means no wizard is running), and each
// concrete state carries only the fields valid for that step, so a
// half-finished flow can never leak pending data into another one.
type WizardState interface {
	wizardState()
}

// EditingValue is the inline edit of a scalar value or the append of a
// new array element. CustomEnum marks the free-form escape hatch of an
// enum setting, whose committed value skips the enum membership check.
type EditingValue struct {
	Key        string
	Type       schema.SettingType
	Append     bool
	CustomEnum bool
	Buffer     string
}

// EnteringKeyName collects the name for a new custom key.
type EnteringKeyName struct {
	Buffer string
}

// SelectingType picks the value type for a pending custom key.
type SelectingType struct {
	Key    string
	Cursor int
}

// EnteringCustomValue collects the scalar value for a pending custom
// key.
type EnteringCustomValue struct {
	Key    string
	Type   schema.SettingType
	Buffer string
}

// EnteringPermissionTool collects the tool name for a new permission
// rule.
type EnteringPermissionTool struct {
	Buffer string
}

// SelectingPermissionLevel picks the action for a pending permission
// rule.
type SelectingPermissionLevel struct {
	Tool   string
	Cursor int
}

// EnteringDelegateTo collects the delegate target for a pending
// permission rule.
type EnteringDelegateTo struct {
	Tool   string
	Buffer string
}

// ConfirmAdvancedEdit asks whether to open the just-appended permission
// rule in the external editor.
type ConfirmAdvancedEdit struct {
	Index int
}

// EnteringMcpMatchField collects the match field name for a new MCP
// permission rule.
type EnteringMcpMatchField struct {
	Buffer string
}

// EnteringMcpMatchValue collects the match value for a pending MCP
// permission rule.
type EnteringMcpMatchValue struct {
	Field  string
	Buffer string
}

// SelectingMcpPermissionLevel picks the action for a pending MCP
// permission rule.
type SelectingMcpPermissionLevel struct {
	Field  string
	Value  string
	Cursor int
}

// ConfirmMcpEdit asks whether to open the just-appended MCP permission
// rule in the external editor.
type ConfirmMcpEdit struct {
	Index int
}

// EnteringMcpServerName collects the name for a new MCP server entry.
type EnteringMcpServerName struct {
	Buffer string
}

func (*EditingValue) wizardState()                {}
func (*EnteringKeyName) wizardState()             {}
func (*SelectingType) wizardState()               {}
func (*EnteringCustomValue) wizardState()         {}
func (*EnteringPermissionTool) wizardState()      {}
func (*SelectingPermissionLevel) wizardState()    {}
func (*EnteringDelegateTo) wizardState()          {}
func (*ConfirmAdvancedEdit) wizardState()         {}
func (*EnteringMcpMatchField) wizardState()       {}
func (*EnteringMcpMatchValue) wizardState()       {}
func (*SelectingMcpPermissionLevel) wizardState() {}
func (*ConfirmMcpEdit) wizardState()              {}
func (*EnteringMcpServerName) wizardState()       {}

// TypeChoices lists the value types offered when adding a custom key.
func TypeChoices() []string {
	return []string{"Boolean", "String", "Number", "Array", "Object"}
}

// PermissionLevels lists the actions of a permission rule.
func PermissionLevels() []string {
	return []string{"ask", "allow", "reject", "delegate"}
}

// McpPermissionLevels lists the actions of an MCP permission rule.
func McpPermissionLevels() []string {
	return []string{"allow", "reject"}
}

// WizardActive reports whether a wizard is running.
func (a *App) WizardActive() bool {
	return a.Wizard != nil
}

// WizardCancel aborts the running flow, discarding all pending input
// no matter how deep into the flow the user was.
func (a *App) WizardCancel() {
	a.Wizard = nil
}

// WizardInsert appends a typed character to the current text buffer.
func (a *App) WizardInsert(r rune) {
	switch st := a.Wizard.(type) {
	case *EditingValue:
		st.Buffer += string(r)
	case *EnteringKeyName:
		st.Buffer += string(r)
	case *EnteringCustomValue:
		st.Buffer += string(r)
	case *EnteringPermissionTool:
		st.Buffer += string(r)
	case *EnteringDelegateTo:
		st.Buffer += string(r)
	case *EnteringMcpMatchField:
		st.Buffer += string(r)
	case *EnteringMcpMatchValue:
		st.Buffer += string(r)
	case *EnteringMcpServerName:
		st.Buffer += string(r)
	}
}

// WizardBackspace removes the last character of the current text
// buffer.
func (a *App) WizardBackspace() {
	switch st := a.Wizard.(type) {
	case *EditingValue:
		st.Buffer = trimLastRune(st.Buffer)
	case *EnteringKeyName:
		st.Buffer = trimLastRune(st.Buffer)
	case *EnteringCustomValue:
		st.Buffer = trimLastRune(st.Buffer)
	case *EnteringPermissionTool:
		st.Buffer = trimLastRune(st.Buffer)
	case *EnteringDelegateTo:
		st.Buffer = trimLastRune(st.Buffer)
	case *EnteringMcpMatchField:
		st.Buffer = trimLastRune(st.Buffer)
	case *EnteringMcpMatchValue:
		st.Buffer = trimLastRune(st.Buffer)
	case *EnteringMcpServerName:
		st.Buffer = trimLastRune(st.Buffer)
	}
}

func trimLastRune(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return s
	}
	return string(runes[:len(runes)-1])
}

// WizardCursorUp moves the cursor up within a selection step, clamped
// at the first choice.
func (a *App) WizardCursorUp() {
	switch st := a.Wizard.(type) {
	case *SelectingType:
		if st.Cursor > 0 {
			st.Cursor--
		}
	case *SelectingPermissionLevel:
		if st.Cursor > 0 {
			st.Cursor--
		}
	case *SelectingMcpPermissionLevel:
		if st.Cursor > 0 {
			st.Cursor--
		}
	}
}

// WizardCursorDown moves the cursor down within a selection step,
// clamped at the last choice.
func (a *App) WizardCursorDown() {
	switch st := a.Wizard.(type) {
	case *SelectingType:
		if st.Cursor < len(TypeChoices())-1 {
			st.Cursor++
		}
	case *SelectingPermissionLevel:
		if st.Cursor < len(PermissionLevels())-1 {
			st.Cursor++
		}
	case *SelectingMcpPermissionLevel:
		if st.Cursor < len(McpPermissionLevels())-1 {
			st.Cursor++
		}
	}
}

// WizardConfirm commits the current step. Rejected input keeps the
// step open with its buffer intact and a status message explaining the
// rejection. Steps that hand a structured value to the external editor
// return an EditorRequest.
func (a *App) WizardConfirm() *EditorRequest {
	switch st := a.Wizard.(type) {
	case *EditingValue:
		return a.commitInlineEdit(st)
	case *EnteringKeyName:
		a.commitKeyName(st)
	case *SelectingType:
		return a.commitTypeSelection(st)
	case *EnteringCustomValue:
		a.commitCustomValue(st)
	case *EnteringPermissionTool:
		a.commitPermissionTool(st)
	case *SelectingPermissionLevel:
		a.commitPermissionLevel(st)
	case *EnteringDelegateTo:
		a.commitDelegateTo(st)
	case *ConfirmAdvancedEdit:
		a.Wizard = nil
		return a.permissionRuleRequest(schema.KeyPermissions, st.Index)
	case *EnteringMcpMatchField:
		a.commitMcpMatchField(st)
	case *EnteringMcpMatchValue:
		a.commitMcpMatchValue(st)
	case *SelectingMcpPermissionLevel:
		a.commitMcpPermissionLevel(st)
	case *ConfirmMcpEdit:
		a.Wizard = nil
		return a.permissionRuleRequest(schema.KeyMcpPermissions, st.Index)
	case *EnteringMcpServerName:
		return a.commitMcpServerName(st)
	}
	return nil
}

// WizardDecline answers "no" to a confirm step, returning to idle
// without touching the just-appended record.
func (a *App) WizardDecline() {
	switch a.Wizard.(type) {
	case *ConfirmAdvancedEdit, *ConfirmMcpEdit:
		a.Wizard = nil
	}
}

// commitInlineEdit finishes an inline value edit: parse per type,
// validate, write. Failures keep the edit open.
func (a *App) commitInlineEdit(st *EditingValue) *EditorRequest {
	if st.Append {
		a.commitArrayAppend(st)
		return nil
	}

	if st.CustomEnum {
		// The custom escape hatch writes the typed string without the
		// enum membership check.
		a.Doc.Set(st.Key, st.Buffer)
		a.Wizard = nil
		return nil
	}

	var value any
	switch st.Type {
	case schema.Number:
		num, err := parseNumber(st.Buffer)
		if err != nil {
			a.StatusMsg = "Invalid number"
			return nil
		}
		value = num
	default:
		value = st.Buffer
	}

	if err := a.Schema.Validate(st.Key, value); err != nil {
		a.StatusMsg = err.Error()
		return nil
	}

	a.Doc.Set(st.Key, value)
	a.Wizard = nil
	return nil
}

// commitArrayAppend appends one element to an array setting.
func (a *App) commitArrayAppend(st *EditingValue) {
	if st.Buffer == "" {
		a.Wizard = nil
		return
	}

	var element any
	switch st.Type {
	case schema.ArrayObject:
		var parsed any
		dec := json.NewDecoder(strings.NewReader(st.Buffer))
		dec.UseNumber()
		if err := dec.Decode(&parsed); err != nil {
			a.StatusMsg = fmt.Sprintf("Invalid JSON: %v", err)
			return
		}
		if schema.Kind(parsed) != "object" {
			a.StatusMsg = "Value must be a JSON object"
			return
		}
		element = parsed
	default:
		element = st.Buffer
	}

	arr := asArray(a.Doc.Get(st.Key))
	arr = append(arr, element)
	a.Doc.Set(st.Key, arr)
	a.StatusMsg = fmt.Sprintf("Added item to %s", st.Key)
	a.Wizard = nil
}

// commitKeyName validates a new custom key name and advances to the
// type selection.
func (a *App) commitKeyName(st *EnteringKeyName) {
	name := strings.TrimSpace(st.Buffer)
	if name == "" {
		a.StatusMsg = "Key name cannot be empty"
		return
	}
	if _, exists := a.Doc.GetRaw(name); exists {
		a.StatusMsg = fmt.Sprintf("Key '%s' already has a value", name)
		return
	}
	a.Wizard = &SelectingType{Key: name}
}

// commitTypeSelection creates the custom key with the chosen type.
// Booleans and arrays commit immediately with an empty default,
// strings and numbers ask for a value, and objects hand an empty
// object straight to the external editor.
func (a *App) commitTypeSelection(st *SelectingType) *EditorRequest {
	switch TypeChoices()[st.Cursor] {
	case "Boolean":
		a.Doc.Set(st.Key, false)
		a.StatusMsg = fmt.Sprintf("Added %s", st.Key)
		a.Wizard = nil
	case "String":
		a.Wizard = &EnteringCustomValue{Key: st.Key, Type: schema.String}
	case "Number":
		a.Wizard = &EnteringCustomValue{Key: st.Key, Type: schema.Number}
	case "Array":
		a.Doc.Set(st.Key, []any{})
		a.StatusMsg = fmt.Sprintf("Added %s", st.Key)
		a.Wizard = nil
	case "Object":
		a.Wizard = nil
		return wholeValueRequest(st.Key, map[string]any{})
	}
	return nil
}

// commitCustomValue writes the scalar value of a new custom key.
// A number that fails to parse re-prompts without losing the pending
// key.
func (a *App) commitCustomValue(st *EnteringCustomValue) {
	var value any
	switch st.Type {
	case schema.Number:
		num, err := parseNumber(st.Buffer)
		if err != nil {
			a.StatusMsg = "Invalid number"
			return
		}
		value = num
	default:
		value = st.Buffer
	}
	a.Doc.Set(st.Key, value)
	a.StatusMsg = fmt.Sprintf("Added %s", st.Key)
	a.Wizard = nil
}

func (a *App) commitPermissionTool(st *EnteringPermissionTool) {
	tool := strings.TrimSpace(st.Buffer)
	if tool == "" {
		a.StatusMsg = "Tool name cannot be empty"
		return
	}
	a.Wizard = &SelectingPermissionLevel{Tool: tool}
}

// commitPermissionLevel finishes a permission rule, or detours to the
// delegate-target prompt for the delegate action.
func (a *App) commitPermissionLevel(st *SelectingPermissionLevel) {
	level := PermissionLevels()[st.Cursor]
	if level == "delegate" {
		a.Wizard = &EnteringDelegateTo{Tool: st.Tool}
		return
	}
	idx := a.appendRecord(schema.KeyPermissions, map[string]any{
		"tool":   st.Tool,
		"action": level,
	})
	a.StatusMsg = fmt.Sprintf("Added %s rule for %s", level, st.Tool)
	a.Wizard = &ConfirmAdvancedEdit{Index: idx}
}

func (a *App) commitDelegateTo(st *EnteringDelegateTo) {
	to := strings.TrimSpace(st.Buffer)
	if to == "" {
		a.StatusMsg = "Delegate target cannot be empty"
		return
	}
	idx := a.appendRecord(schema.KeyPermissions, map[string]any{
		"tool":   st.Tool,
		"action": "delegate",
		"to":     to,
	})
	a.StatusMsg = fmt.Sprintf("Added delegate rule for %s", st.Tool)
	a.Wizard = &ConfirmAdvancedEdit{Index: idx}
}

func (a *App) commitMcpMatchField(st *EnteringMcpMatchField) {
	field := strings.TrimSpace(st.Buffer)
	if field == "" {
		a.StatusMsg = "Match field cannot be empty"
		return
	}
	a.Wizard = &EnteringMcpMatchValue{Field: field}
}

func (a *App) commitMcpMatchValue(st *EnteringMcpMatchValue) {
	value := strings.TrimSpace(st.Buffer)
	if value == "" {
		a.StatusMsg = "Match value cannot be empty"
		return
	}
	a.Wizard = &SelectingMcpPermissionLevel{Field: st.Field, Value: value}
}

func (a *App) commitMcpPermissionLevel(st *SelectingMcpPermissionLevel) {
	level := McpPermissionLevels()[st.Cursor]
	idx := a.appendRecord(schema.KeyMcpPermissions, map[string]any{
		"matches": map[string]any{st.Field: st.Value},
		"action":  level,
	})
	a.StatusMsg = fmt.Sprintf("Added %s rule matching %s", level, st.Field)
	a.Wizard = &ConfirmMcpEdit{Index: idx}
}

// commitMcpServerName validates a new server name and hands an empty
// object keyed by it to the external editor.
func (a *App) commitMcpServerName(st *EnteringMcpServerName) *EditorRequest {
	name := strings.TrimSpace(st.Buffer)
	if name == "" {
		a.StatusMsg = "Server name cannot be empty"
		return nil
	}
	for _, existing := range a.McpServerKeys() {
		if existing == name {
			a.StatusMsg = fmt.Sprintf("Server '%s' already exists", name)
			return nil
		}
	}
	a.Wizard = nil
	return objectEntryRequest(schema.KeyMcpServers, map[string]any{}, name)
}

// appendRecord appends a wizard-built record to an array setting and
// returns its index. Records are constructed with known shapes, so
// this writes without re-validating.
func (a *App) appendRecord(key string, record map[string]any) int {
	arr := asArray(a.Doc.Get(key))
	arr = append(arr, record)
	a.Doc.Set(key, arr)
	logging.Debug("wizard record appended",
		zap.String("key", key),
		zap.Int("index", len(arr)-1),
	)
	return len(arr) - 1
}

// permissionRuleRequest builds the editor request for a just-appended
// rule by index.
func (a *App) permissionRuleRequest(key string, index int) *EditorRequest {
	arr := asArray(a.Doc.Get(key))
	if index >= len(arr) {
		return nil
	}
	return arrayItemRequest(key, arr[index], index)
}

// parseNumber accepts integer and float literals and canonicalizes
// them into a valid JSON number.
func parseNumber(s string) (json.Number, error) {
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return json.Number(strconv.FormatInt(n, 10)), nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return "", fmt.Errorf("invalid number %q", s)
	}
	return json.Number(strconv.FormatFloat(f, 'g', -1, 64)), nil
}
