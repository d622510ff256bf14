package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/voltcfg/volt/internal/app"
	"github.com/voltcfg/volt/internal/document"
	"github.com/voltcfg/volt/internal/editor"
	"github.com/voltcfg/volt/internal/logging"
)

// editorDoneMsg reports that the external editor process exited.
type editorDoneMsg struct {
	err error
}

// Model is the top-level bubbletea model of the settings editor.
type Model struct {
	App  *app.App
	Keys keyMap
	Help help.Model

	Width  int
	Height int

	// In-flight external edit. Set while the program is suspended
	// behind the spawned editor.
	pendingEdit *app.EditorRequest
	session     *editor.Session
}

// NewModel creates the top-level model around the application state.
func NewModel(a *app.App) Model {
	return Model{
		App:  a,
		Keys: defaultKeyMap(),
		Help: help.New(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.Help.Width = msg.Width
		return m, nil

	case editorDoneMsg:
		return m.finishEditor(msg)

	case tea.KeyMsg:
		// Each key press starts fresh: the previous status message
		// has been seen.
		m.App.StatusMsg = ""
		if m.App.WizardActive() {
			return m.updateWizard(msg)
		}
		return m.updateNormal(msg)
	}
	return m, nil
}

// updateNormal handles key presses in the document view.
func (m Model) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.Keys.Quit):
		m.App.ShouldQuit = true
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Up):
		m.App.MoveUp()

	case key.Matches(msg, m.Keys.Down):
		m.App.MoveDown()

	case key.Matches(msg, m.Keys.Focus):
		m.App.ToggleFocus()

	case key.Matches(msg, m.Keys.Select):
		if m.App.Focus == app.FocusSidebar {
			m.App.ToggleFocus()
			return m, nil
		}
		if req := m.App.Activate(); req != nil {
			return m.launchEditor(req)
		}

	case key.Matches(msg, m.Keys.Editor):
		if m.App.Focus == app.FocusContent {
			if req := m.App.ForceEditor(); req != nil {
				return m.launchEditor(req)
			}
		}

	case key.Matches(msg, m.Keys.Add):
		if m.App.Focus == app.FocusContent {
			m.App.AddItem()
		}

	case key.Matches(msg, m.Keys.Delete):
		if m.App.Focus == app.FocusContent {
			m.App.DeleteItem()
		}

	case key.Matches(msg, m.Keys.Reset):
		if m.App.Focus == app.FocusContent {
			m.App.ResetSetting()
		}

	case key.Matches(msg, m.Keys.Save):
		m.App.Save()
	}
	return m, nil
}

// updateWizard handles key presses while a wizard step is open. The
// handling depends on the kind of step: selection steps move a cursor,
// confirm steps take yes/no, and the rest are text entry.
func (m Model) updateWizard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.App.Wizard.(type) {
	case *app.SelectingType, *app.SelectingPermissionLevel, *app.SelectingMcpPermissionLevel:
		switch msg.String() {
		case "enter":
			return m.wizardConfirm()
		case "esc":
			m.App.WizardCancel()
		case "up", "k":
			m.App.WizardCursorUp()
		case "down", "j":
			m.App.WizardCursorDown()
		}

	case *app.ConfirmAdvancedEdit, *app.ConfirmMcpEdit:
		switch msg.String() {
		case "y", "enter":
			return m.wizardConfirm()
		case "n", "esc":
			m.App.WizardDecline()
		}

	default:
		switch msg.Type {
		case tea.KeyEnter:
			return m.wizardConfirm()
		case tea.KeyEsc:
			m.App.WizardCancel()
		case tea.KeyBackspace:
			m.App.WizardBackspace()
		case tea.KeySpace:
			m.App.WizardInsert(' ')
		case tea.KeyRunes:
			for _, r := range msg.Runes {
				m.App.WizardInsert(r)
			}
		}
	}
	return m, nil
}

func (m Model) wizardConfirm() (tea.Model, tea.Cmd) {
	if req := m.App.WizardConfirm(); req != nil {
		return m.launchEditor(req)
	}
	return m, nil
}

// launchEditor suspends the program behind the external editor for the
// requested value.
func (m Model) launchEditor(req *app.EditorRequest) (tea.Model, tea.Cmd) {
	session, cmd, err := editor.Begin(req.Value)
	if err != nil {
		m.App.StatusMsg = fmt.Sprintf("Editor failed: %v", err)
		return m, nil
	}

	m.pendingEdit = req
	m.session = session
	return m, tea.ExecProcess(cmd, func(err error) tea.Msg {
		return editorDoneMsg{err: err}
	})
}

// finishEditor applies the external edit, or reports why it was
// discarded. The document is untouched on any editor failure.
func (m Model) finishEditor(msg editorDoneMsg) (tea.Model, tea.Cmd) {
	if m.session == nil {
		return m, nil
	}

	req := m.pendingEdit
	value, err := m.session.Result(msg.err)
	m.pendingEdit = nil
	m.session = nil

	if err != nil {
		logging.Warn("external edit discarded", zap.Error(err))
		m.App.StatusMsg = fmt.Sprintf("Edit discarded: %v", err)
		return m, nil
	}

	m.App.ApplyEditorResult(req, value)
	return m, nil
}

// Run starts the interactive editor over the given document and blocks
// until the user quits.
func Run(doc *document.Document) error {
	a := app.New(doc)
	p := tea.NewProgram(NewModel(a), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running editor: %w", err)
	}
	return nil
}
