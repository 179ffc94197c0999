package setupui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/patchbaylabs/patchbay/internal/config"
	"github.com/patchbaylabs/patchbay/internal/connector"
	"github.com/patchbaylabs/patchbay/internal/connectors"
)

// step tracks the current step in the wizard.
type step int

const (
	stepPickConnector step = iota
	stepEnterCredentials
	stepDone
)

// Key constants.
const (
	keyEnter = "enter"
	keyDown  = "down"
)

// Model is the bubbletea model for the setup wizard.
type Model struct {
	styles  Styles
	cfg     *config.Config
	catalog []connectors.Factory

	// Wizard state
	step     step
	selected int

	// Credential entry for the picked connector
	factory *connectors.Factory
	specs   []connector.CredentialSpec
	inputs  []textinput.Model
	focus   int

	result Result
	err    error

	width  int
	height int
}

// NewModel creates the wizard over the given catalog. A nil cfg falls
// back to defaults so the wizard runs before any config file exists.
func NewModel(cfg *config.Config, catalog []connectors.Factory) *Model {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return &Model{
		styles:  GetStyles(detectNoColor()),
		cfg:     cfg,
		catalog: catalog,
		step:    stepPickConnector,
	}
}

// detectNoColor checks if the NO_COLOR environment variable is set.
func detectNoColor() bool {
	_, exists := os.LookupEnv("NO_COLOR")
	return exists
}

// Result returns what the wizard collected. Valid once the program has
// finished running.
func (m *Model) Result() Result {
	return m.result
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	// Forward everything else (cursor blinks) to the focused input.
	if m.step == stepEnterCredentials && len(m.inputs) > 0 {
		var cmd tea.Cmd
		m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
		return m, cmd
	}
	return m, nil
}

// handleKeyMsg handles key presses based on the current step.
func (m *Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		m.result = Result{Canceled: true}
		return m, tea.Quit
	}

	switch m.step {
	case stepPickConnector:
		return m.handlePick(msg)
	case stepEnterCredentials:
		return m.handleCredentials(msg)
	case stepDone:
		return m, tea.Quit
	}
	return m, nil
}

func (m *Model) handlePick(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case keyDown, "j":
		if m.selected < len(m.catalog)-1 {
			m.selected++
		}
	case "q", "esc":
		m.result = Result{Canceled: true}
		return m, tea.Quit
	case keyEnter:
		if len(m.catalog) > 0 && m.selected < len(m.catalog) {
			m.factory = &m.catalog[m.selected]
			cmd := m.initCredentialInputs()
			m.step = stepEnterCredentials
			return m, cmd
		}
	}
	return m, nil
}

// initCredentialInputs builds one text input per declared credential.
// Secret-looking keys are masked while typing.
func (m *Model) initCredentialInputs() tea.Cmd {
	m.specs = m.factory.Credentials()
	m.inputs = make([]textinput.Model, len(m.specs))

	for i, spec := range m.specs {
		ti := textinput.New()
		ti.CharLimit = 256
		ti.Placeholder = m.placeholderFor(spec)
		if secretKey(spec.Key) {
			ti.EchoMode = textinput.EchoPassword
		}
		ti.SetValue("")
		m.inputs[i] = ti
	}
	m.focus = 0
	m.err = nil

	if len(m.inputs) > 0 {
		return m.inputs[0].Focus()
	}
	return nil
}

// placeholderFor tells the user where the value would otherwise come
// from: an already-configured value, or the fallback environment variable.
func (m *Model) placeholderFor(spec connector.CredentialSpec) string {
	if m.configured(spec) {
		return fmt.Sprintf("%s (configured, leave empty to keep)", spec.Description)
	}
	if spec.EnvVar != "" {
		return fmt.Sprintf("%s (or set %s)", spec.Description, spec.EnvVar)
	}
	return spec.Description
}

// configured reports whether the credential already resolves from the
// config file or the environment.
func (m *Model) configured(spec connector.CredentialSpec) bool {
	return m.cfg.Credential(m.factory.Name, spec.Key, spec.EnvVar) != ""
}

func (m *Model) handleCredentials(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.step = stepPickConnector
		m.err = nil
		return m, nil
	case "tab", keyDown:
		if len(m.inputs) == 0 {
			return m, nil
		}
		m.focus++
		if m.focus >= len(m.inputs) {
			m.focus = 0
		}
		return m, m.updateFocus()
	case "shift+tab", "up":
		if len(m.inputs) == 0 {
			return m, nil
		}
		m.focus--
		if m.focus < 0 {
			m.focus = len(m.inputs) - 1
		}
		return m, m.updateFocus()
	case keyEnter:
		if m.validate() {
			m.collect()
			m.step = stepDone
			return m, tea.Quit
		}
		return m, nil
	default:
		// Forward to the focused input
		if len(m.inputs) > 0 && m.focus < len(m.inputs) {
			var cmd tea.Cmd
			m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) updateFocus() tea.Cmd {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		if i == m.focus {
			cmds[i] = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return tea.Batch(cmds...)
}

// validate checks that every required credential has a value, either
// typed now or already configured.
func (m *Model) validate() bool {
	for i, spec := range m.specs {
		if !spec.Required {
			continue
		}
		if strings.TrimSpace(m.inputs[i].Value()) == "" && !m.configured(spec) {
			m.err = fmt.Errorf("required credential %s is empty", spec.Key)
			return false
		}
	}
	m.err = nil
	return true
}

// collect stores the typed values in the result. Empty fields are left
// out so existing configuration survives the merge.
func (m *Model) collect() {
	creds := make(map[string]string)
	for i := range m.specs {
		if v := strings.TrimSpace(m.inputs[i].Value()); v != "" {
			creds[m.specs[i].Key] = v
		}
	}
	m.result = Result{Connector: m.factory.Name, Credentials: creds}
}

// View implements tea.Model.
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.styles.Title.Render("patchbay setup"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("Error: %s", m.err)))
		b.WriteString("\n\n")
	}

	switch m.step {
	case stepPickConnector:
		b.WriteString(m.renderPicker())
	case stepEnterCredentials:
		b.WriteString(m.renderCredentials())
	case stepDone:
		b.WriteString(m.renderDone())
	}

	b.WriteString("\n")
	b.WriteString(m.renderHelp())

	return b.String()
}

func (m *Model) renderPicker() string {
	var b strings.Builder

	b.WriteString(m.styles.Subtitle.Render("Select a connector to configure:"))
	b.WriteString("\n\n")

	if len(m.catalog) == 0 {
		b.WriteString(m.styles.Muted.Render("No connectors available."))
		return b.String()
	}

	for i, f := range m.catalog {
		indicator := "  "
		if i == m.selected {
			indicator = "> "
		}

		marker := ""
		if m.cfg.Connectors[f.Name].Enabled {
			marker = " [enabled]"
		}

		line := fmt.Sprintf("%s%s - %s%s", indicator, f.Name, f.Description, marker)
		if i == m.selected {
			b.WriteString(m.styles.Selected.Render(line))
		} else {
			b.WriteString(m.styles.Normal.Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m *Model) renderCredentials() string {
	var b strings.Builder

	if m.factory == nil {
		return ""
	}

	b.WriteString(m.styles.Subtitle.Render(fmt.Sprintf("Configure %s:", m.factory.Name)))
	b.WriteString("\n\n")

	if len(m.specs) == 0 {
		b.WriteString(m.styles.Muted.Render("No credentials needed."))
		b.WriteString("\n")
		b.WriteString(m.styles.Help.Render("Press enter to continue."))
		return b.String()
	}

	for i, spec := range m.specs {
		label := spec.Key
		if spec.Required {
			label += " *"
		}
		b.WriteString(m.styles.Normal.Render(label + ":"))
		b.WriteString("\n")
		b.WriteString(m.inputs[i].View())
		b.WriteString("\n\n")
	}

	return b.String()
}

func (m *Model) renderDone() string {
	var b strings.Builder

	b.WriteString(m.styles.Success.Render(fmt.Sprintf("%s configured.", m.result.Connector)))
	b.WriteString("\n\n")
	b.WriteString(m.styles.Muted.Render("Run 'patchbay doctor' to verify credentials."))
	b.WriteString("\n")

	return b.String()
}

func (m *Model) renderHelp() string {
	switch m.step {
	case stepPickConnector:
		return m.styles.Help.Render("[j/k] navigate  [enter] select  [q] quit")
	case stepEnterCredentials:
		return m.styles.Help.Render("[tab] next field  [enter] save  [esc] back")
	default:
		return ""
	}
}

// secretKey reports whether a credential key should be masked while
// typing. Keys naming hosts or IDs stay visible.
func secretKey(key string) bool {
	for _, marker := range []string{"token", "key", "secret", "password"} {
		if strings.Contains(key, marker) {
			return true
		}
	}
	return false
}
