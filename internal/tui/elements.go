package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/ragchat/widget/internal/models"
)

// transcriptView holds the conversation. Rendering happens in the model so
// the typing indicator can always be drawn after the newest message.
type transcriptView struct {
	messages []models.Message
	follow   bool
}

func (t *transcriptView) Append(msg models.Message) {
	t.messages = append(t.messages, msg)
}

func (t *transcriptView) ScrollToBottom() {
	t.follow = true
}

// inputField adapts a textinput to the widget's input element. A disabled
// field keeps its value but receives no keys.
type inputField struct {
	ti      textinput.Model
	enabled bool
}

func newInputField(placeholder string) *inputField {
	ti := textinput.New()
	ti.Placeholder = placeholder
	ti.Prompt = "› "
	ti.CharLimit = 0
	ti.Focus()
	return &inputField{ti: ti, enabled: true}
}

func (f *inputField) Value() string { return f.ti.Value() }

func (f *inputField) SetValue(v string) {
	f.ti.SetValue(v)
	f.ti.CursorEnd()
}

func (f *inputField) SetEnabled(enabled bool) {
	f.enabled = enabled
	if !enabled {
		f.ti.Blur()
	}
}

func (f *inputField) Focus() {
	if f.enabled {
		f.ti.Focus()
	}
}

type button struct {
	label   string
	enabled bool
}

func (b *button) SetEnabled(enabled bool) { b.enabled = enabled }

// panel is a show/hide element: typing indicator, suggestions, sidebar.
type panel struct {
	visible bool
}

func (p *panel) Show()         { p.visible = true }
func (p *panel) Hide()         { p.visible = false }
func (p *panel) Visible() bool { return p.visible }

// fileListView keeps upload entries newest first. An entry changes status
// once; later updates for it are ignored.
type fileListView struct {
	entries []models.UploadEntry
}

func (l *fileListView) Prepend(entry models.UploadEntry) {
	l.entries = append([]models.UploadEntry{entry}, l.entries...)
}

func (l *fileListView) SetStatus(id string, status models.UploadStatus) {
	for i := range l.entries {
		if l.entries[i].ID == id {
			if !l.entries[i].Status.Terminal() {
				l.entries[i].Status = status
			}
			return
		}
	}
}

// alertLine shows one message until the next key press.
type alertLine struct {
	text string
}

func (a *alertLine) Alert(msg string) { a.text = msg }

func (a *alertLine) dismiss() bool {
	if a.text == "" {
		return false
	}
	a.text = ""
	return true
}
