// Package tui renders the document chat widget in a terminal with bubbletea.
// It provides the page elements the widget controllers drive and turns
// terminal input (keys, pasted file paths, the file picker) into controller
// calls.
package tui

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/ragchat/widget/internal/models"
	"github.com/ragchat/widget/internal/widget"
	"go.uber.org/zap"
)

// Options configures the terminal widget.
type Options struct {
	Chat          widget.ChatAPI
	Upload        widget.UploadAPI
	ChatTimeout   time.Duration
	UploadTimeout time.Duration

	Title             string
	Suggestions       []string
	SidebarBreakpoint int // terminal width below which the sidebar starts hidden
	RenderMarkdown    bool
	StartDir          string
	Logger            *zap.Logger
}

type chatReplyMsg struct {
	reply widget.Reply
}

type uploadDoneMsg struct {
	batch *widget.Batch
	err   error
}

// Model is the bubbletea model of the widget. It must be used as a pointer:
// the controllers hold references to its elements.
type Model struct {
	ctx    context.Context
	opts   Options
	logger *zap.Logger

	transcript  *transcriptView
	input       *inputField
	send        *button
	menu        *button
	indicator   *panel
	suggestions *panel
	sidebar     *panel
	files       *fileListView
	alert       *alertLine

	conv    *widget.Conversation
	up      *widget.Uploader
	toggle  *widget.Sidebar
	chips   []string
	spin    spinner.Model
	ticking bool

	vp       viewport.Model
	picker   filepicker.Model
	picking  bool
	renderer *glamour.TermRenderer
	rendered []string // rendered messages, valid for rWidth
	rWidth   int

	width, height int
	sized         bool
}

// New builds the widget. ctx bounds every request the widget makes.
func New(ctx context.Context, opts Options) *Model {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Title == "" {
		opts.Title = "Document chat"
	}

	m := &Model{
		ctx:         ctx,
		opts:        opts,
		logger:      logger,
		transcript:  &transcriptView{},
		input:       newInputField("Ask about your documents…"),
		send:        &button{label: "Send", enabled: true},
		menu:        &button{label: "≡ Files", enabled: true},
		indicator:   &panel{},
		suggestions: &panel{visible: len(opts.Suggestions) > 0},
		sidebar:     &panel{visible: true},
		files:       &fileListView{},
		alert:       &alertLine{},
		chips:       opts.Suggestions,
	}

	convEl := widget.ConversationElements{
		Transcript: m.transcript,
		Input:      m.input,
		Send:       m.send,
		Indicator:  m.indicator,
	}
	if len(opts.Suggestions) > 0 {
		convEl.Suggestions = m.suggestions
	}
	m.conv = widget.NewConversation(convEl, opts.Chat,
		widget.WithChatTimeout(opts.ChatTimeout),
		widget.WithConversationLogger(logger.Named("conversation")))
	m.up = widget.NewUploader(widget.UploadElements{Files: m.files, Alerter: m.alert}, opts.Upload,
		widget.WithUploadTimeout(opts.UploadTimeout),
		widget.WithUploaderLogger(logger.Named("upload")))
	m.toggle = widget.NewSidebar(m.menu, m.sidebar)

	m.spin = spinner.New()
	m.spin.Spinner = spinner.Dot
	m.spin.Style = botLabelStyle

	m.vp = viewport.New(80, 20)

	m.picker = filepicker.New()
	m.picker.CurrentDirectory = opts.StartDir
	if m.picker.CurrentDirectory == "" {
		if wd, err := os.Getwd(); err == nil {
			m.picker.CurrentDirectory = wd
		}
	}
	m.picker.AutoHeight = false
	m.picker.Height = 15

	return m
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmd := m.update(msg)
	m.layout()
	return m, cmd
}

func (m *Model) update(msg tea.Msg) tea.Cmd {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if !m.sized {
			m.sized = true
			if m.opts.SidebarBreakpoint > 0 && msg.Width < m.opts.SidebarBreakpoint {
				m.sidebar.Hide()
			}
		}
		return nil

	case chatReplyMsg:
		m.conv.Complete(msg.reply)
		return nil

	case uploadDoneMsg:
		m.up.Complete(msg.batch, msg.err)
		return nil

	case spinner.TickMsg:
		if !m.indicator.Visible() && m.up.Pending() == 0 {
			m.ticking = false
			return nil
		}
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return cmd

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return cmd

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.picking {
		var cmd tea.Cmd
		m.picker, cmd = m.picker.Update(msg)
		return cmd
	}

	var cmd tea.Cmd
	m.input.ti, cmd = m.input.ti.Update(msg)
	return cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	key := msg.String()
	if key == "ctrl+c" {
		return tea.Quit
	}
	if m.alert.dismiss() {
		return nil
	}

	if m.picking {
		return m.handlePickerKey(msg)
	}

	if msg.Paste {
		if paths := droppedPaths(string(msg.Runes)); len(paths) > 0 {
			return m.dropFiles(paths)
		}
	}

	switch key {
	case widget.KeyEnter:
		return m.submit(m.input.Value())
	case "ctrl+b":
		m.toggle.Toggle()
		return nil
	case "ctrl+o":
		m.picking = true
		return m.picker.Init()
	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.vp, cmd = m.vp.Update(msg)
		return cmd
	}

	if n, ok := suggestionKey(key); ok {
		return m.chooseSuggestion(n)
	}

	if !m.input.enabled {
		return nil
	}
	var cmd tea.Cmd
	m.input.ti, cmd = m.input.ti.Update(msg)
	return cmd
}

func (m *Model) handlePickerKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc", "ctrl+o":
		m.picking = false
		return nil
	}

	var cmd tea.Cmd
	m.picker, cmd = m.picker.Update(msg)
	if ok, path := m.picker.DidSelectFile(msg); ok {
		m.picking = false
		return tea.Batch(cmd, m.dropFiles([]string{path}))
	}
	return cmd
}

// suggestionKey maps alt+1 … alt+9 to a chip index.
func suggestionKey(key string) (int, bool) {
	if len(key) != 5 || !strings.HasPrefix(key, "alt+") {
		return 0, false
	}
	d := key[4]
	if d < '1' || d > '9' {
		return 0, false
	}
	return int(d - '1'), true
}

func (m *Model) chooseSuggestion(i int) tea.Cmd {
	if !m.suggestions.Visible() || i >= len(m.chips) || m.conv.Busy() {
		return nil
	}
	m.input.SetValue(m.chips[i])
	return m.submit(m.input.Value())
}

func (m *Model) submit(text string) tea.Cmd {
	turn, ok := m.conv.Begin(text)
	if !ok {
		return nil
	}
	ctx := m.ctx
	return tea.Batch(
		func() tea.Msg { return chatReplyMsg{reply: turn.Exchange(ctx)} },
		m.startSpinner(),
	)
}

func (m *Model) dropFiles(paths []string) tea.Cmd {
	docs, err := documentsFromPaths(paths)
	if err != nil {
		m.logger.Warn("dropped files unreadable", zap.Error(err))
		return nil
	}
	batch, ok := m.up.Begin(docs)
	if !ok {
		return nil
	}
	ctx := m.ctx
	return tea.Batch(
		func() tea.Msg { return uploadDoneMsg{batch: batch, err: batch.Send(ctx)} },
		m.startSpinner(),
	)
}

func (m *Model) startSpinner() tea.Cmd {
	if m.ticking {
		return nil
	}
	m.ticking = true
	return m.spin.Tick
}

// layout sizes the viewport and refreshes its content. It runs after every
// update so the transcript always reflects the elements.
func (m *Model) layout() {
	if !m.sized {
		return
	}

	mainWidth := m.width
	if m.sidebar.Visible() {
		mainWidth -= sidebarWidth + 3
	}
	if mainWidth < 20 {
		mainWidth = 20
	}
	m.input.ti.Width = mainWidth - 12

	height := m.height - lipgloss.Height(m.headerView()) - lipgloss.Height(m.footerView())
	if height < 3 {
		height = 3
	}
	m.vp.Width = mainWidth
	m.vp.Height = height

	m.vp.SetContent(m.transcriptContent(mainWidth))
	if m.transcript.follow {
		m.vp.GotoBottom()
		m.transcript.follow = false
	}
}

func (m *Model) transcriptContent(width int) string {
	if width != m.rWidth {
		m.rendered = m.rendered[:0]
		m.rWidth = width
		m.renderer = nil
	}
	for i := len(m.rendered); i < len(m.transcript.messages); i++ {
		m.rendered = append(m.rendered, m.renderMessage(m.transcript.messages[i], width))
	}

	parts := append([]string(nil), m.rendered...)
	if m.indicator.Visible() {
		parts = append(parts, botLabelStyle.Render("Bot")+" "+m.spin.View()+faintStyle.Render("typing"))
	}
	return strings.Join(parts, "\n\n")
}

func (m *Model) renderMessage(msg models.Message, width int) string {
	if msg.Sender == models.SenderUser {
		return userLabelStyle.Render("You") + "\n" + lipgloss.NewStyle().Width(width).Render(msg.Text)
	}

	body := lipgloss.NewStyle().Width(width).Render(msg.Text)
	if strings.HasPrefix(msg.Text, "Error: ") {
		body = errorStyle.Width(width).Render(msg.Text)
	} else if m.opts.RenderMarkdown {
		if out, err := m.markdown(msg.Text, width); err == nil {
			body = strings.Trim(out, "\n")
		} else {
			m.logger.Debug("markdown render failed", zap.Error(err))
		}
	}
	return botLabelStyle.Render("Bot") + "\n" + body
}

func (m *Model) markdown(text string, width int) (string, error) {
	if m.renderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return "", err
		}
		m.renderer = r
	}
	return m.renderer.Render(text)
}

func (m *Model) View() string {
	if !m.sized {
		return "\n  Loading…"
	}

	main := m.vp.View()
	if m.picking {
		main = titleStyle.Render("Select a document") + faintStyle.Render("  (enter to upload, esc to close)") +
			"\n" + m.picker.View()
	}

	body := main
	if m.sidebar.Visible() {
		body = lipgloss.JoinHorizontal(lipgloss.Top, main, " ", sidebarStyle.Height(m.vp.Height).Render(m.sidebarView()))
	}

	return lipgloss.JoinVertical(lipgloss.Left, m.headerView(), body, m.footerView())
}

func (m *Model) headerView() string {
	menu := buttonStyle.Render("[" + m.menu.label + " ctrl+b]")
	return titleStyle.Render(m.opts.Title) + "  " + menu
}

func (m *Model) footerView() string {
	var b strings.Builder
	if m.suggestions.Visible() && len(m.chips) > 0 {
		chips := make([]string, 0, len(m.chips))
		for i, s := range m.chips {
			if i == 9 {
				break
			}
			chips = append(chips, chipStyle.Render(fmt.Sprintf("%d %s", i+1, s)))
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, chips...))
		b.WriteString("\n")
	}

	input := m.input.ti.View()
	if !m.input.enabled {
		input = faintStyle.Render(m.input.ti.Prompt + m.input.Value())
	}
	send := buttonStyle.Render("[" + m.send.label + "]")
	if !m.send.enabled {
		send = disabledButtonStyle.Render("[" + m.send.label + "]")
	}
	b.WriteString(input + " " + send + "\n")

	if m.alert.text != "" {
		b.WriteString(alertStyle.Render(m.alert.text) + faintStyle.Render("  press any key"))
	} else {
		b.WriteString(faintStyle.Render("enter send · alt+1-9 suggestion · paste paths or ctrl+o to upload · ctrl+c quit"))
	}
	return b.String()
}

func (m *Model) sidebarView() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Files"))
	b.WriteString("\n")
	if len(m.files.entries) == 0 {
		b.WriteString(faintStyle.Render("Drop .txt, .md or .pdf files here"))
		return b.String()
	}
	for _, e := range m.files.entries {
		status := string(e.Status)
		if e.Status == models.UploadStatusUploading {
			status = m.spin.View() + status
		}
		if e.Status == models.UploadStatusTimeout {
			status = "timed out"
		}
		name := e.Name
		if w := sidebarWidth - 4; len([]rune(name)) > w {
			name = string([]rune(name)[:w-1]) + "…"
		}
		b.WriteString(name + "\n  " + statusStyles[e.Status].Render(status) + "\n")
	}
	return b.String()
}
