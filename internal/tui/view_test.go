package tui

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/voltcfg/volt/internal/schema"
)

func TestFormatValueBoolean(t *testing.T) {
	if got := formatValue(schema.Boolean, true); got != "[✓]" {
		t.Errorf("formatValue(true) = %q", got)
	}
	if got := formatValue(schema.Boolean, false); got != "[✗]" {
		t.Errorf("formatValue(false) = %q", got)
	}
	if got := formatValue(schema.Boolean, nil); got != "[✗]" {
		t.Errorf("formatValue(nil) = %q, want off", got)
	}
}

func TestFormatValueString(t *testing.T) {
	if got := formatValue(schema.String, "hello"); got != `"hello"` {
		t.Errorf("formatValue(hello) = %q", got)
	}
	if got := formatValue(schema.String, ""); got != "(empty)" {
		t.Errorf("formatValue(empty) = %q", got)
	}
}

func TestFormatValueNumber(t *testing.T) {
	if got := formatValue(schema.Number, json.Number("300")); got != "300" {
		t.Errorf("formatValue(300) = %q", got)
	}
	if got := formatValue(schema.Number, nil); got != "0" {
		t.Errorf("formatValue(nil number) = %q", got)
	}
}

func TestFormatValueArrays(t *testing.T) {
	if got := formatValue(schema.ArrayString, []any{}); got != "[]" {
		t.Errorf("empty string array = %q", got)
	}
	if got := formatValue(schema.ArrayString, []any{"a", "b"}); got != "[a, b]" {
		t.Errorf("string array = %q", got)
	}
	if got := formatValue(schema.ArrayObject, []any{map[string]any{}}); got != "[1 items]" {
		t.Errorf("object array = %q", got)
	}
}

func TestFormatValueObject(t *testing.T) {
	if got := formatValue(schema.Object, map[string]any{}); got != "{}" {
		t.Errorf("empty object = %q", got)
	}
	if got := formatValue(schema.Object, map[string]any{"a": 1, "b": 2}); got != "{2 keys}" {
		t.Errorf("object = %q", got)
	}
}

func TestFormatJSONCompact(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{nil, "null"},
		{"x", `"x"`},
		{true, "[✓]"},
		{json.Number("1.5"), "1.5"},
		{[]any{"a", json.Number("2")}, `["a", 2]`},
		{map[string]any{"a": 1}, "{1 keys}"},
	}
	for _, c := range cases {
		if got := formatJSONCompact(c.in); got != c.want {
			t.Errorf("formatJSONCompact(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestCollectObjectColumnsOrdersIdentifiersFirst(t *testing.T) {
	items := []any{
		map[string]any{"action": "allow", "tool": "Bash"},
		map[string]any{"tool": "Read", "to": "helper"},
	}
	got := collectObjectColumns(items)
	if !reflect.DeepEqual(got, []string{"tool", "action", "to"}) {
		t.Errorf("columns = %v, want [tool action to]", got)
	}
}

func TestCollectObjectColumnsRejectsMixedItems(t *testing.T) {
	items := []any{map[string]any{"a": 1}, "plain"}
	if got := collectObjectColumns(items); got != nil {
		t.Errorf("columns = %v, want nil for mixed arrays", got)
	}
}

func TestPadAndTruncate(t *testing.T) {
	if got := pad("ab", 4); got != "ab  " {
		t.Errorf("pad = %q", got)
	}
	if got := pad("abcdef", 4); got != "abc…" {
		t.Errorf("pad overflow = %q", got)
	}
	if got := truncate("abc", 3); got != "abc" {
		t.Errorf("truncate fit = %q", got)
	}
	if got := truncate("abcd", 3); got != "ab…" {
		t.Errorf("truncate = %q", got)
	}
}
