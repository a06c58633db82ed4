// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/keywordschat/kwc-tui/internal/api"
	"github.com/keywordschat/kwc-tui/internal/archive"
	"github.com/keywordschat/kwc-tui/internal/auth"
	"github.com/keywordschat/kwc-tui/internal/commands"
	"github.com/keywordschat/kwc-tui/internal/config"
	"github.com/keywordschat/kwc-tui/internal/model"
	"github.com/keywordschat/kwc-tui/internal/results"
	"github.com/keywordschat/kwc-tui/internal/storage"
	"github.com/keywordschat/kwc-tui/internal/ui/components"
	"github.com/keywordschat/kwc-tui/internal/ui/panel"
	"github.com/keywordschat/kwc-tui/internal/ui/styles"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// queryTimeout bounds background persistence operations.
	queryTimeout = 5 * time.Second

	// statusDisplayTime is how long transient status messages stay visible.
	statusDisplayTime = 4 * time.Second

	// panelShare is the fraction of the screen height the open panel takes.
	panelShare = 0.45

	inputPlaceholder = "Ask about keywords, rankings, or site health..."
	tokenPlaceholder = "Paste your API token and press Enter"
)

// =============================================================================
// MODEL
// =============================================================================

// Options carries the wired dependencies into the chat model.
type Options struct {
	Client   *api.Client
	Keystore *auth.Keystore
	History  *storage.Store
	Archive  *archive.Archive // nil when the archive is disabled
	Config   *config.Config
}

// ConfigReloadedMsg carries a freshly loaded configuration into the
// running program. The config file watcher sends it on changes.
type ConfigReloadedMsg struct {
	Config *config.Config
}

// Model is the root Bubble Tea model for the chat TUI.
type Model struct {
	// Domain state
	conversation *model.Conversation
	results      *results.Store

	// Wired services
	client   *api.Client
	keystore *auth.Keystore
	history  *storage.Store
	archive  *archive.Archive
	cfg      *config.Config

	// Command system
	registry *commands.Registry
	cmdCtx   *commands.Context

	// UI
	theme     *styles.Theme
	keys      KeyMap
	input     textinput.Model
	viewport  viewport.Model
	spinner   components.Spinner
	statusbar *components.StatusBar
	panel     *panel.Model
	renderer  *glamour.TermRenderer

	// Session state
	stream       *streamSession
	width        int
	height       int
	ready        bool
	panelFocus   bool
	loginPending bool
}

// New creates the chat model with all dependencies wired.
func New(opts Options) *Model {
	theme := styles.NewTheme()
	store := results.NewStore()

	input := textinput.New()
	input.Placeholder = inputPlaceholder
	input.Prompt = "> "
	input.PromptStyle = theme.InputPrompt
	input.PlaceholderStyle = theme.InputPlaceholder
	input.CharLimit = 4000
	input.Focus()

	m := &Model{
		conversation: model.NewConversation(),
		results:      store,
		client:       opts.Client,
		keystore:     opts.Keystore,
		history:      opts.History,
		archive:      opts.Archive,
		cfg:          opts.Config,
		registry:     commands.NewRegistry(),
		cmdCtx: &commands.Context{
			History: opts.History,
			Archive: opts.Archive,
		},
		theme:     theme,
		keys:      DefaultKeyMap(),
		input:     input,
		viewport:  viewport.New(80, 20),
		spinner:   components.NewSpinner(theme),
		statusbar: components.NewStatusBar(theme),
		panel:     panel.New(store, theme),
	}

	if opts.Config != nil {
		m.panel.SetMaxRows(opts.Config.UI.MaxTableRows)
	}
	if opts.Client != nil && opts.Client.IsConfigured() {
		m.statusbar.AuthLabel = opts.Client.TokenFingerprint()
	}

	// The store notifies synchronously, so the panel view is always
	// current by the time Update returns.
	store.Subscribe(m.onResultsChanged)

	return m
}

// onResultsChanged keeps the panel and status bar in step with the store.
func (m *Model) onResultsChanged() {
	m.panel.Sync()
	m.statusbar.ResultCount = m.results.Len()
	m.statusbar.PanelOpen = m.results.IsOpen()
}

// Init starts the cursor blink.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Conversation exposes the active conversation for tests and the CLI
// bridge.
func (m *Model) Conversation() *model.Conversation {
	return m.conversation
}

// Results exposes the results store.
func (m *Model) Results() *results.Store {
	return m.results
}

// layout recomputes component sizes after a resize or panel change.
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	m.input.Width = m.width - 6
	m.statusbar.SetWidth(m.width)

	panelHeight := 0
	if m.results.IsOpen() && !m.results.IsEmpty() {
		if m.results.IsMinimized() {
			panelHeight = 1
		} else {
			panelHeight = int(float64(m.height) * panelShare)
			if panelHeight < 8 {
				panelHeight = 8
			}
		}
	}
	m.panel.SetSize(m.width, panelHeight)

	// header + input + status bar + spinner line
	chromeLines := 5
	viewportHeight := m.height - panelHeight - chromeLines
	if viewportHeight < 3 {
		viewportHeight = 3
	}
	m.viewport.Width = m.width
	m.viewport.Height = viewportHeight

	m.rebuildRenderer()
	m.refreshViewport()
	m.ready = true
}

// rebuildRenderer recreates the markdown renderer at the current width.
func (m *Model) rebuildRenderer() {
	wrap := m.width - 4
	if wrap < 20 {
		wrap = 20
	}
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		// Fall back to plain text rendering.
		m.renderer = nil
		return
	}
	m.renderer = renderer
}

// setStatus shows a transient status message and schedules its expiry.
func (m *Model) setStatus(text string, isErr bool) tea.Cmd {
	m.statusbar.SetMessage(text, isErr)
	return tea.Tick(statusDisplayTime, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
