package app

import (
	"encoding/json"
	"testing"

	"github.com/voltcfg/volt/internal/schema"
)

func typeText(a *App, s string) {
	for _, r := range s {
		a.WizardInsert(r)
	}
}

// cursorTo moves a selection-step cursor onto the given choice.
func cursorTo(t *testing.T, a *App, choices []string, want string) {
	t.Helper()
	for range choices {
		a.WizardCursorUp()
	}
	for _, c := range choices {
		if c == want {
			return
		}
		a.WizardCursorDown()
	}
	t.Fatalf("choice %q not offered", want)
}

func TestWizardCancelClearsEveryFlow(t *testing.T) {
	starts := map[string]WizardState{
		"custom key":     &EnteringKeyName{Buffer: "amp.x"},
		"permission":     &SelectingPermissionLevel{Tool: "Bash", Cursor: 2},
		"delegate":       &EnteringDelegateTo{Tool: "*", Buffer: "help"},
		"mcp permission": &EnteringMcpMatchValue{Field: "server", Buffer: "pl"},
		"mcp server":     &EnteringMcpServerName{Buffer: "github"},
	}
	for name, st := range starts {
		a := newTestApp(t, "")
		a.Wizard = st
		a.WizardCancel()
		if a.WizardActive() {
			t.Errorf("%s: wizard still active after cancel", name)
		}
		if a.Wizard != nil {
			t.Errorf("%s: pending state retained after cancel", name)
		}
	}
}

func TestWizardBufferEditing(t *testing.T) {
	a := newTestApp(t, "")
	a.Wizard = &EnteringKeyName{}

	typeText(a, "amp.xy")
	a.WizardBackspace()
	if got := a.Wizard.(*EnteringKeyName).Buffer; got != "amp.x" {
		t.Errorf("buffer = %q, want amp.x", got)
	}

	a.Wizard = &EnteringKeyName{}
	a.WizardBackspace()
	if got := a.Wizard.(*EnteringKeyName).Buffer; got != "" {
		t.Errorf("backspace on empty buffer = %q, want empty", got)
	}
}

func TestWizardCursorClamps(t *testing.T) {
	a := newTestApp(t, "")
	a.Wizard = &SelectingType{Key: "amp.x"}

	a.WizardCursorUp()
	if a.Wizard.(*SelectingType).Cursor != 0 {
		t.Error("cursor up at the first choice should clamp")
	}
	for i := 0; i < 10; i++ {
		a.WizardCursorDown()
	}
	if got := a.Wizard.(*SelectingType).Cursor; got != len(TypeChoices())-1 {
		t.Errorf("cursor = %d, want clamp at %d", got, len(TypeChoices())-1)
	}
}

func TestPermissionRuleFlow(t *testing.T) {
	a := newTestApp(t, "")
	selectSection(t, a, schema.Permissions)
	a.Focus = FocusContent

	a.AddItem()
	if _, ok := a.Wizard.(*EnteringPermissionTool); !ok {
		t.Fatalf("wizard = %T, want *EnteringPermissionTool", a.Wizard)
	}

	typeText(a, "Bash")
	a.WizardConfirm()
	if _, ok := a.Wizard.(*SelectingPermissionLevel); !ok {
		t.Fatalf("wizard = %T, want *SelectingPermissionLevel", a.Wizard)
	}

	cursorTo(t, a, PermissionLevels(), "allow")
	a.WizardConfirm()

	arr := a.Doc.Get(schema.KeyPermissions).([]any)
	if len(arr) != 1 {
		t.Fatalf("rule count = %d, want 1", len(arr))
	}
	rule := arr[0].(map[string]any)
	if rule["tool"] != "Bash" || rule["action"] != "allow" {
		t.Errorf("rule = %v, want {tool: Bash, action: allow}", rule)
	}
	if _, ok := rule["to"]; ok {
		t.Error("non-delegate rules must not carry a 'to' field")
	}

	confirm, ok := a.Wizard.(*ConfirmAdvancedEdit)
	if !ok {
		t.Fatalf("wizard = %T, want *ConfirmAdvancedEdit", a.Wizard)
	}
	if confirm.Index != 0 {
		t.Errorf("confirm index = %d, want 0", confirm.Index)
	}
}

func TestPermissionConfirmDeclineKeepsRecord(t *testing.T) {
	a := newTestApp(t, "")
	a.Wizard = &SelectingPermissionLevel{Tool: "Bash", Cursor: 1}
	a.WizardConfirm()

	a.WizardDecline()
	if a.WizardActive() {
		t.Error("decline should return to idle")
	}
	if n := len(a.Doc.Get(schema.KeyPermissions).([]any)); n != 1 {
		t.Errorf("rule count = %d after decline, want 1", n)
	}
}

func TestPermissionConfirmAcceptOpensEditor(t *testing.T) {
	a := newTestApp(t, "")
	a.Wizard = &SelectingPermissionLevel{Tool: "Bash", Cursor: 1}
	a.WizardConfirm()

	req := a.WizardConfirm()
	if req == nil {
		t.Fatal("accepting the confirm step should open the editor")
	}
	if req.Key != schema.KeyPermissions || req.ArrayIndex != 0 {
		t.Errorf("request = %+v, want amp.permissions[0]", req)
	}
	if a.WizardActive() {
		t.Error("accepting the confirm step should return to idle")
	}
}

func TestPermissionToolRejectsEmpty(t *testing.T) {
	a := newTestApp(t, "")
	a.Wizard = &EnteringPermissionTool{Buffer: "   "}

	a.WizardConfirm()
	if _, ok := a.Wizard.(*EnteringPermissionTool); !ok {
		t.Error("an empty tool name must keep the step open")
	}
	if a.StatusMsg == "" {
		t.Error("rejection should set a status message")
	}
}

func TestDelegateFlow(t *testing.T) {
	a := newTestApp(t, "")
	a.Wizard = &EnteringPermissionTool{}
	typeText(a, "*")
	a.WizardConfirm()

	cursorTo(t, a, PermissionLevels(), "delegate")
	a.WizardConfirm()
	del, ok := a.Wizard.(*EnteringDelegateTo)
	if !ok {
		t.Fatalf("wizard = %T, want *EnteringDelegateTo", a.Wizard)
	}
	if del.Tool != "*" {
		t.Errorf("pending tool = %q, want *", del.Tool)
	}
	if n := len(asArray(a.Doc.Get(schema.KeyPermissions))); n != 0 {
		t.Fatal("delegate must not append before the target is entered")
	}

	typeText(a, "helper")
	a.WizardConfirm()

	arr := a.Doc.Get(schema.KeyPermissions).([]any)
	if len(arr) != 1 {
		t.Fatalf("rule count = %d, want 1", len(arr))
	}
	rule := arr[0].(map[string]any)
	if rule["tool"] != "*" || rule["action"] != "delegate" || rule["to"] != "helper" {
		t.Errorf("rule = %v, want {tool: *, action: delegate, to: helper}", rule)
	}
	if _, ok := a.Wizard.(*ConfirmAdvancedEdit); !ok {
		t.Errorf("wizard = %T, want *ConfirmAdvancedEdit", a.Wizard)
	}
}

func TestDelegateTargetRejectsEmpty(t *testing.T) {
	a := newTestApp(t, "")
	a.Wizard = &EnteringDelegateTo{Tool: "Bash"}

	a.WizardConfirm()
	if _, ok := a.Wizard.(*EnteringDelegateTo); !ok {
		t.Error("an empty delegate target must keep the step open")
	}
}

func TestCustomKeyBooleanFlow(t *testing.T) {
	a := newTestApp(t, "")
	selectSection(t, a, schema.Advanced)
	a.Focus = FocusContent

	a.AddItem()
	typeText(a, "amp.experimental.flag")
	a.WizardConfirm()
	if _, ok := a.Wizard.(*SelectingType); !ok {
		t.Fatalf("wizard = %T, want *SelectingType", a.Wizard)
	}

	cursorTo(t, a, TypeChoices(), "Boolean")
	a.WizardConfirm()
	if a.WizardActive() {
		t.Error("boolean custom keys commit immediately")
	}
	if got := a.Doc.Get("amp.experimental.flag"); got != false {
		t.Errorf("new key = %v, want false", got)
	}
}

func TestCustomKeyNumberFlow(t *testing.T) {
	a := newTestApp(t, "")
	a.Wizard = &SelectingType{Key: "amp.retries"}
	cursorTo(t, a, TypeChoices(), "Number")
	a.WizardConfirm()

	cv, ok := a.Wizard.(*EnteringCustomValue)
	if !ok {
		t.Fatalf("wizard = %T, want *EnteringCustomValue", a.Wizard)
	}
	if cv.Key != "amp.retries" || cv.Type != schema.Number {
		t.Errorf("pending value step = %+v", cv)
	}

	typeText(a, "abc")
	a.WizardConfirm()
	if _, ok := a.Wizard.(*EnteringCustomValue); !ok {
		t.Fatal("an unparsable number must keep the step open")
	}
	if a.StatusMsg != "Invalid number" {
		t.Errorf("StatusMsg = %q, want Invalid number", a.StatusMsg)
	}

	a.Wizard.(*EnteringCustomValue).Buffer = "42"
	a.WizardConfirm()
	if got := a.Doc.Get("amp.retries"); got != json.Number("42") {
		t.Errorf("amp.retries = %v (%T), want 42", got, got)
	}
}

func TestCustomKeyObjectOpensEditor(t *testing.T) {
	a := newTestApp(t, "")
	a.Wizard = &SelectingType{Key: "amp.extra"}
	cursorTo(t, a, TypeChoices(), "Object")

	req := a.WizardConfirm()
	if req == nil || req.Key != "amp.extra" || req.ArrayIndex != -1 {
		t.Errorf("request = %+v, want whole-value for amp.extra", req)
	}
	if obj, ok := req.Value.(map[string]any); !ok || len(obj) != 0 {
		t.Errorf("request value = %v, want an empty object", req.Value)
	}
	if a.WizardActive() {
		t.Error("object custom keys hand off to the editor and go idle")
	}
}

func TestCustomKeyNameRejections(t *testing.T) {
	a := sampleApp(t)

	a.Wizard = &EnteringKeyName{Buffer: "  "}
	a.WizardConfirm()
	if _, ok := a.Wizard.(*EnteringKeyName); !ok {
		t.Error("an empty key name must keep the step open")
	}

	a.Wizard = &EnteringKeyName{Buffer: "amp.showCosts"}
	a.WizardConfirm()
	if _, ok := a.Wizard.(*EnteringKeyName); !ok {
		t.Error("a key that already has a value must be rejected")
	}
	if a.StatusMsg != "Key 'amp.showCosts' already has a value" {
		t.Errorf("StatusMsg = %q", a.StatusMsg)
	}
}

func TestMcpPermissionFlow(t *testing.T) {
	a := mcpApp(t)
	a.McpPanel = McpPermissions

	a.AddItem()
	if _, ok := a.Wizard.(*EnteringMcpMatchField); !ok {
		t.Fatalf("wizard = %T, want *EnteringMcpMatchField", a.Wizard)
	}

	typeText(a, "tool")
	a.WizardConfirm()
	typeText(a, "navigate")
	a.WizardConfirm()

	sel, ok := a.Wizard.(*SelectingMcpPermissionLevel)
	if !ok {
		t.Fatalf("wizard = %T, want *SelectingMcpPermissionLevel", a.Wizard)
	}
	if sel.Field != "tool" || sel.Value != "navigate" {
		t.Errorf("pending rule = %+v", sel)
	}

	cursorTo(t, a, McpPermissionLevels(), "reject")
	a.WizardConfirm()

	arr := a.Doc.Get(schema.KeyMcpPermissions).([]any)
	if len(arr) != 3 {
		t.Fatalf("rule count = %d, want 3", len(arr))
	}
	rule := arr[2].(map[string]any)
	if rule["action"] != "reject" {
		t.Errorf("rule action = %v, want reject", rule["action"])
	}
	matches := rule["matches"].(map[string]any)
	if matches["tool"] != "navigate" {
		t.Errorf("rule matches = %v, want {tool: navigate}", matches)
	}

	confirm, ok := a.Wizard.(*ConfirmMcpEdit)
	if !ok {
		t.Fatalf("wizard = %T, want *ConfirmMcpEdit", a.Wizard)
	}
	if confirm.Index != 2 {
		t.Errorf("confirm index = %d, want 2", confirm.Index)
	}
}

func TestMcpMatchStepsRejectEmpty(t *testing.T) {
	a := newTestApp(t, "")
	a.Wizard = &EnteringMcpMatchField{}
	a.WizardConfirm()
	if _, ok := a.Wizard.(*EnteringMcpMatchField); !ok {
		t.Error("an empty match field must keep the step open")
	}

	a.Wizard = &EnteringMcpMatchValue{Field: "server"}
	a.WizardConfirm()
	if _, ok := a.Wizard.(*EnteringMcpMatchValue); !ok {
		t.Error("an empty match value must keep the step open")
	}
}

func TestMcpServerNameFlow(t *testing.T) {
	a := mcpApp(t)
	a.AddItem()
	if _, ok := a.Wizard.(*EnteringMcpServerName); !ok {
		t.Fatalf("wizard = %T, want *EnteringMcpServerName", a.Wizard)
	}

	typeText(a, "github")
	req := a.WizardConfirm()
	if req == nil {
		t.Fatal("a valid server name should hand off to the editor")
	}
	if req.Key != schema.KeyMcpServers || req.ObjectKey != "github" {
		t.Errorf("request = %+v, want mcpServers entry github", req)
	}
	if obj, ok := req.Value.(map[string]any); !ok || len(obj) != 0 {
		t.Errorf("request value = %v, want an empty object", req.Value)
	}
	if a.WizardActive() {
		t.Error("server-name handoff should return to idle")
	}
}

func TestMcpServerNameRejectsDuplicate(t *testing.T) {
	a := mcpApp(t)
	a.Wizard = &EnteringMcpServerName{Buffer: "playwright"}

	if req := a.WizardConfirm(); req != nil {
		t.Fatal("a duplicate name must not reach the editor")
	}
	if _, ok := a.Wizard.(*EnteringMcpServerName); !ok {
		t.Error("a duplicate name must keep the step open")
	}
	if a.StatusMsg != "Server 'playwright' already exists" {
		t.Errorf("StatusMsg = %q", a.StatusMsg)
	}
}

func TestInlineEditValidationFailureKeepsBuffer(t *testing.T) {
	a := newTestApp(t, "")
	a.Wizard = &EditingValue{Key: "amp.tools.stopTimeout", Type: schema.Number, Buffer: "12x"}

	a.WizardConfirm()
	ed, ok := a.Wizard.(*EditingValue)
	if !ok {
		t.Fatal("a failed commit must keep the edit open")
	}
	if ed.Buffer != "12x" {
		t.Errorf("buffer = %q after failed commit, want 12x", ed.Buffer)
	}
	if _, set := a.Doc.GetRaw("amp.tools.stopTimeout"); set {
		t.Error("a failed commit must not write the value")
	}
}

func TestInlineEditCommitNumber(t *testing.T) {
	a := newTestApp(t, "")
	a.Wizard = &EditingValue{Key: "amp.tools.stopTimeout", Type: schema.Number, Buffer: "600"}

	a.WizardConfirm()
	if a.WizardActive() {
		t.Error("valid commits close the edit")
	}
	if got := a.Doc.Get("amp.tools.stopTimeout"); got != json.Number("600") {
		t.Errorf("amp.tools.stopTimeout = %v (%T), want 600", got, got)
	}
}

func TestArrayAppendString(t *testing.T) {
	a := newTestApp(t, `{"amp.tools.disable": ["browser"]}`)
	a.Wizard = &EditingValue{Key: "amp.tools.disable", Type: schema.ArrayString, Append: true, Buffer: "oracle"}

	a.WizardConfirm()
	arr := a.Doc.Get("amp.tools.disable").([]any)
	if len(arr) != 2 || arr[1] != "oracle" {
		t.Errorf("amp.tools.disable = %v, want [browser oracle]", arr)
	}
}

func TestArrayAppendEmptyBufferClosesSilently(t *testing.T) {
	a := newTestApp(t, "")
	a.Wizard = &EditingValue{Key: "amp.tools.disable", Type: schema.ArrayString, Append: true}

	a.WizardConfirm()
	if a.WizardActive() {
		t.Error("an empty append should just close")
	}
	if _, set := a.Doc.GetRaw("amp.tools.disable"); set {
		t.Error("an empty append must not write anything")
	}
}

func TestArrayAppendObjectParsesJSON(t *testing.T) {
	a := newTestApp(t, "")
	a.Wizard = &EditingValue{
		Key: schema.KeyPermissions, Type: schema.ArrayObject, Append: true,
		Buffer: `{"tool": "Bash", "action": "ask"}`,
	}

	a.WizardConfirm()
	arr := a.Doc.Get(schema.KeyPermissions).([]any)
	if len(arr) != 1 {
		t.Fatalf("rule count = %d, want 1", len(arr))
	}
	if rule := arr[0].(map[string]any); rule["tool"] != "Bash" {
		t.Errorf("rule = %v", rule)
	}
}

func TestArrayAppendObjectRejectsBadJSON(t *testing.T) {
	a := newTestApp(t, "")

	a.Wizard = &EditingValue{Key: schema.KeyPermissions, Type: schema.ArrayObject, Append: true, Buffer: "{bad"}
	a.WizardConfirm()
	if !a.WizardActive() {
		t.Error("malformed JSON must keep the append open")
	}

	a.Wizard = &EditingValue{Key: schema.KeyPermissions, Type: schema.ArrayObject, Append: true, Buffer: `"str"`}
	a.WizardConfirm()
	if !a.WizardActive() {
		t.Error("a non-object element must keep the append open")
	}
	if a.StatusMsg != "Value must be a JSON object" {
		t.Errorf("StatusMsg = %q", a.StatusMsg)
	}
}

func TestParseNumberCanonicalizes(t *testing.T) {
	cases := []struct {
		in   string
		want json.Number
		ok   bool
	}{
		{"42", "42", true},
		{"-7", "-7", true},
		{"3.5", "3.5", true},
		{"1e3", "1000", true},
		{"", "", false},
		{"abc", "", false},
		{"NaN", "", false},
		{"Inf", "", false},
	}
	for _, c := range cases {
		got, err := parseNumber(c.in)
		if c.ok != (err == nil) {
			t.Errorf("parseNumber(%q) error = %v, want ok=%v", c.in, err, c.ok)
			continue
		}
		if c.ok && got != c.want {
			t.Errorf("parseNumber(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}
