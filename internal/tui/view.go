package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/voltcfg/volt/internal/app"
	"github.com/voltcfg/volt/internal/schema"
)

// View implements tea.Model.
func (m Model) View() string {
	if m.Width == 0 || m.Height == 0 {
		return ""
	}

	bottom := m.renderBottomBar()
	bottomHeight := lipgloss.Height(bottom)
	panelHeight := m.Height - bottomHeight - 2 // borders
	if panelHeight < 1 {
		panelHeight = 1
	}

	sidebar := m.renderSidebar(panelHeight)
	content := m.renderContent(panelHeight)

	view := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.JoinHorizontal(lipgloss.Top, sidebar, content),
		bottom,
	)

	if overlay := m.renderWizardOverlay(); overlay != "" {
		return renderOverlay(overlay, m.Width, m.Height)
	}
	return view
}

// renderSidebar draws the section list.
func (m Model) renderSidebar(height int) string {
	title := " Volt "
	if m.App.Doc.Dirty() {
		title = " Volt [modified] "
	}

	lines := []string{PanelTitleStyle.Render(title), ""}
	for i, section := range m.App.Sections() {
		label := " " + section.Label() + " "
		switch {
		case i == m.App.SelectedSection && m.App.Focus == app.FocusSidebar:
			label = SelectedStyle.Render(label)
		case i == m.App.SelectedSection:
			label = DimSelectedStyle.Render(label)
		}
		lines = append(lines, label)
	}

	style := BlurredPanelStyle
	if m.App.Focus == app.FocusSidebar {
		style = FocusedPanelStyle
	}
	return style.Width(SidebarWidth).Height(height).
		Render(strings.Join(lines, "\n"))
}

// renderContent draws the panel for the current section.
func (m Model) renderContent(height int) string {
	width := m.Width - SidebarWidth - 4 // borders of both panels
	if width < 10 {
		width = 10
	}

	section := m.App.CurrentSection()
	if section.SplitPanel() {
		return m.renderSplitPanel(width, height)
	}

	var body string
	switch {
	case section.SingleKey():
		body = m.renderSingleKeyBody(width)
	default:
		body = m.renderEntriesBody(width, section)
	}

	title := PanelTitleStyle.Render(" " + section.Label() + " ")
	style := BlurredPanelStyle
	if m.App.Focus == app.FocusContent {
		style = FocusedPanelStyle
	}
	return style.Width(width).Height(height).
		Render(title + "\n\n" + body)
}

// renderEntriesBody lists the settings of a normal section.
func (m Model) renderEntriesBody(width int, section schema.Section) string {
	entries := m.App.Entries()
	if len(entries) == 0 {
		if section == schema.Advanced {
			return HintStyle.Render(" No custom keys. Press 'a' to add one.")
		}
		return HintStyle.Render(" No settings in this section.")
	}

	keyWidth := width * 6 / 10
	var rows []string
	for i, entry := range entries {
		var display string
		modified := true
		if entry.Known {
			display = formatValue(entry.Def.Type, m.App.Doc.Get(entry.Key))
			_, modified = m.App.Doc.GetRaw(entry.Key)
		} else {
			display = formatJSONCompact(m.App.Doc.Get(entry.Key))
		}

		keyCell := pad(" "+entry.Key, keyWidth)
		valueCell := truncate(display, width-keyWidth-1)

		selected := m.App.Focus == app.FocusContent && i == m.App.SelectedItem
		switch {
		case selected:
			rows = append(rows, SelectedStyle.Render(keyCell+" "+valueCell))
		case modified:
			rows = append(rows, ModifiedKeyStyle.Render(keyCell)+" "+ValueStyle.Render(valueCell))
		default:
			rows = append(rows, keyCell+" "+ValueStyle.Render(valueCell))
		}
	}
	return strings.Join(rows, "\n")
}

// renderSingleKeyBody lists the array items of a single-key section.
func (m Model) renderSingleKeyBody(width int) string {
	entries := m.App.Entries()
	if len(entries) == 0 {
		return HintStyle.Render(" No settings in this section.")
	}

	items, _ := m.App.Doc.Get(entries[0].Key).([]any)
	if len(items) == 0 {
		return HintStyle.Render(" Empty. Press 'a' to add an item, 'e' to open in $EDITOR.")
	}

	return m.renderObjectRows(items, width, m.App.SelectedItem,
		m.App.Focus == app.FocusContent)
}

// renderSplitPanel draws the two MCP sub-panels stacked vertically.
func (m Model) renderSplitPanel(width, height int) string {
	topHeight := height / 2
	bottomHeight := height - topHeight - 2
	if bottomHeight < 1 {
		bottomHeight = 1
	}

	focused := m.App.Focus == app.FocusContent

	// Servers
	var serverBody string
	serverKeys := m.App.McpServerKeys()
	if len(serverKeys) == 0 {
		serverBody = HintStyle.Render(" No servers configured. Press 'a' to add one.")
	} else {
		servers, _ := m.App.Doc.Get(schema.KeyMcpServers).(map[string]any)
		nameWidth := width * 3 / 10
		var rows []string
		for i, name := range serverKeys {
			row := pad(" "+name, nameWidth) + " " +
				truncate(formatJSONCompact(servers[name]), width-nameWidth-1)
			if focused && m.App.McpPanel == app.McpConfigs && i == m.App.SelectedItem {
				row = SelectedStyle.Render(row)
			}
			rows = append(rows, row)
		}
		serverBody = strings.Join(rows, "\n")
	}

	// Permission rules
	var permBody string
	perms, _ := m.App.Doc.Get(schema.KeyMcpPermissions).([]any)
	if len(perms) == 0 {
		permBody = HintStyle.Render(" No permission rules. Press 'a' to add one.")
	} else {
		permBody = m.renderObjectRows(perms, width, m.App.McpPermIndex,
			focused && m.App.McpPanel == app.McpPermissions)
	}

	serverStyle := BlurredPanelStyle
	permStyle := BlurredPanelStyle
	if focused && m.App.McpPanel == app.McpConfigs {
		serverStyle = FocusedPanelStyle
	}
	if focused && m.App.McpPanel == app.McpPermissions {
		permStyle = FocusedPanelStyle
	}

	top := serverStyle.Width(width).Height(topHeight).
		Render(PanelTitleStyle.Render(" Servers ") + "\n\n" + serverBody)
	bottom := permStyle.Width(width).Height(bottomHeight).
		Render(PanelTitleStyle.Render(" Permission Rules ") + "\n\n" + permBody)

	return lipgloss.JoinVertical(lipgloss.Left, top, bottom)
}

// renderObjectRows renders an array of records as an aligned table
// when all elements are objects, falling back to a compact list.
func (m Model) renderObjectRows(items []any, width, selected int, focused bool) string {
	columns := collectObjectColumns(items)

	if len(columns) == 0 {
		var rows []string
		for i, item := range items {
			row := " " + truncate(formatJSONCompact(item), width-1)
			if focused && i == selected {
				rows = append(rows, SelectedStyle.Render(row))
			} else {
				rows = append(rows, row)
			}
		}
		return strings.Join(rows, "\n")
	}

	colWidth := width / len(columns)
	if colWidth < 6 {
		colWidth = 6
	}

	var header strings.Builder
	for _, col := range columns {
		header.WriteString(pad(" "+col, colWidth))
	}
	rows := []string{HintStyle.Render(header.String())}

	for i, item := range items {
		obj, _ := item.(map[string]any)
		var row strings.Builder
		for _, col := range columns {
			row.WriteString(pad(" "+cellText(obj[col]), colWidth))
		}
		line := row.String()
		if focused && i == selected {
			line = SelectedStyle.Render(line)
		} else {
			line = ValueStyle.Render(line)
		}
		rows = append(rows, line)
	}
	return strings.Join(rows, "\n")
}

// renderBottomBar draws the contextual help line plus the status
// message, when one is pending.
func (m Model) renderBottomBar() string {
	helpLine := m.helpLine()
	if m.App.StatusMsg == "" {
		return helpLine
	}
	status := StatusBarStyle.Width(m.Width).Render(" " + m.App.StatusMsg)
	return lipgloss.JoinVertical(lipgloss.Left, helpLine, status)
}

func (m Model) helpLine() string {
	if m.App.Focus == app.FocusSidebar {
		return HelpStyle.Render(fmt.Sprintf(
			" ↑↓: navigate | enter/tab: settings | ctrl+s: save | q: quit | %s",
			m.App.Doc.Path(),
		))
	}
	return m.Help.View(m.Keys)
}

// renderWizardOverlay draws the active wizard step, or returns "" when
// no wizard is running.
func (m Model) renderWizardOverlay() string {
	switch st := m.App.Wizard.(type) {
	case nil:
		return ""

	case *app.EditingValue:
		title := " Edit Value (Enter to save, Esc to cancel) "
		if st.Append {
			title = " Add Item (Enter to save, Esc to cancel) "
		}
		return m.textOverlay(title, st.Buffer)
	case *app.EnteringKeyName:
		return m.textOverlay(" Enter Key Name (Enter to confirm, Esc to cancel) ", st.Buffer)
	case *app.EnteringCustomValue:
		return m.textOverlay(" Enter Value (Enter to save, Esc to cancel) ", st.Buffer)
	case *app.EnteringPermissionTool:
		return m.textOverlay(" Tool Name (Enter to confirm, Esc to cancel) ", st.Buffer)
	case *app.EnteringDelegateTo:
		return m.textOverlay(" Delegate To (Enter to confirm, Esc to cancel) ", st.Buffer)
	case *app.EnteringMcpMatchField:
		return m.textOverlay(" Match Field (Enter to confirm, Esc to cancel) ", st.Buffer)
	case *app.EnteringMcpMatchValue:
		return m.textOverlay(" Match Value (Enter to confirm, Esc to cancel) ", st.Buffer)
	case *app.EnteringMcpServerName:
		return m.textOverlay(" Server Name (Enter to confirm, Esc to cancel) ", st.Buffer)

	case *app.SelectingType:
		return m.selectOverlay(" Select Type (Enter to confirm, Esc to cancel) ",
			app.TypeChoices(), st.Cursor)
	case *app.SelectingPermissionLevel:
		return m.selectOverlay(" Select Action (Enter to confirm, Esc to cancel) ",
			app.PermissionLevels(), st.Cursor)
	case *app.SelectingMcpPermissionLevel:
		return m.selectOverlay(" Select Action (Enter to confirm, Esc to cancel) ",
			app.McpPermissionLevels(), st.Cursor)

	case *app.ConfirmAdvancedEdit, *app.ConfirmMcpEdit:
		return OverlayStyle.Render(" Open the new rule in $EDITOR? (y/n) ")
	}
	return ""
}

func (m Model) textOverlay(title, buffer string) string {
	width := OverlayWidth
	if width > m.Width-4 {
		width = m.Width - 4
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		PanelTitleStyle.Render(title),
		truncate(buffer, width-3)+"█",
	)
	return OverlayStyle.Width(width).Render(content)
}

func (m Model) selectOverlay(title string, choices []string, cursor int) string {
	lines := []string{PanelTitleStyle.Render(title)}
	for i, choice := range choices {
		row := "  " + choice
		if i == cursor {
			row = SelectedStyle.Render("> " + choice)
		}
		lines = append(lines, row)
	}
	return OverlayStyle.Render(strings.Join(lines, "\n"))
}

// collectObjectColumns gathers the union of field names across an
// array of objects, identifying fields first. A non-object element
// disables the table layout.
func collectObjectColumns(items []any) []string {
	var columns []string
	seen := make(map[string]bool)
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil
		}
		for key := range obj {
			if !seen[key] {
				seen[key] = true
				columns = append(columns, key)
			}
		}
	}
	sort.SliceStable(columns, func(i, j int) bool {
		return columnPriority(columns[i]) < columnPriority(columns[j])
	})
	return columns
}

// columnPriority orders identifying fields before descriptive ones.
func columnPriority(name string) int {
	switch name {
	case "tool", "name", "pattern", "key", "matches":
		return 0
	case "action", "decision", "type":
		return 1
	default:
		return 2
	}
}

// formatValue renders a setting value for the list view based on its
// declared type.
func formatValue(t schema.SettingType, value any) string {
	switch t {
	case schema.Boolean:
		if b, _ := value.(bool); b {
			return "[✓]"
		}
		return "[✗]"
	case schema.String, schema.StringEnum:
		s, _ := value.(string)
		if s == "" {
			return "(empty)"
		}
		return fmt.Sprintf("%q", s)
	case schema.Number:
		if n, ok := value.(json.Number); ok {
			return n.String()
		}
		return "0"
	case schema.ArrayString:
		arr, _ := value.([]any)
		if len(arr) == 0 {
			return "[]"
		}
		parts := make([]string, 0, len(arr))
		for _, v := range arr {
			if s, ok := v.(string); ok {
				parts = append(parts, s)
			}
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case schema.ArrayObject:
		arr, _ := value.([]any)
		if len(arr) == 0 {
			return "[]"
		}
		return fmt.Sprintf("[%d items]", len(arr))
	case schema.Object:
		obj, _ := value.(map[string]any)
		if len(obj) == 0 {
			return "{}"
		}
		return fmt.Sprintf("{%d keys}", len(obj))
	}
	return formatJSONCompact(value)
}

// formatJSONCompact renders any JSON value on one line.
func formatJSONCompact(value any) string {
	switch v := value.(type) {
	case nil:
		return "null"
	case string:
		return fmt.Sprintf("%q", v)
	case bool:
		if v {
			return "[✓]"
		}
		return "[✗]"
	case json.Number:
		return v.String()
	case []any:
		if len(v) == 0 {
			return "[]"
		}
		parts := make([]string, len(v))
		for i, item := range v {
			parts[i] = formatJSONCompact(item)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case map[string]any:
		if len(v) == 0 {
			return "{}"
		}
		return fmt.Sprintf("{%d keys}", len(v))
	default:
		return fmt.Sprintf("%v", v)
	}
}

// cellText renders a record field for a table cell.
func cellText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return formatJSONCompact(v)
	}
}

// pad right-pads or truncates s to exactly width cells.
func pad(s string, width int) string {
	runes := []rune(s)
	if len(runes) >= width {
		return truncate(s, width)
	}
	return s + strings.Repeat(" ", width-len(runes))
}

// truncate cuts s to at most width runes, marking the cut with an
// ellipsis.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(runes[:width-1]) + "…"
}
