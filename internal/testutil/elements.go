// Package testutil provides in-memory page elements, API stubs and a mock
// document store for tests.
package testutil

import (
	"fmt"
	"sync"

	"github.com/ragchat/widget/internal/models"
)

// Recorder collects element events in the order they happen.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *Recorder) record(format string, args ...any) {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

// MockTranscript is an in-memory message container with a trailing typing
// indicator slot.
type MockTranscript struct {
	Messages []models.Message
	Scrolls  int
	rec      *Recorder
}

func NewMockTranscript(rec *Recorder) *MockTranscript {
	return &MockTranscript{rec: rec}
}

func (t *MockTranscript) Append(msg models.Message) {
	t.Messages = append(t.Messages, msg)
	t.rec.record("append %s: %s", msg.Sender, msg.Text)
}

func (t *MockTranscript) ScrollToBottom() {
	t.Scrolls++
}

// Last returns the newest message, or the zero Message when empty.
func (t *MockTranscript) Last() models.Message {
	if len(t.Messages) == 0 {
		return models.Message{}
	}
	return t.Messages[len(t.Messages)-1]
}

// MockInput is an in-memory text input.
type MockInput struct {
	Text    string
	Enabled bool
	Focused bool
	rec     *Recorder
}

func NewMockInput(rec *Recorder) *MockInput {
	return &MockInput{Enabled: true, rec: rec}
}

func (i *MockInput) Value() string { return i.Text }

func (i *MockInput) SetValue(v string) {
	i.Text = v
}

func (i *MockInput) SetEnabled(enabled bool) {
	i.Enabled = enabled
	i.rec.record("input enabled=%t", enabled)
}

func (i *MockInput) Focus() {
	i.Focused = true
	i.rec.record("input focus")
}

// MockControl is an in-memory button.
type MockControl struct {
	Enabled bool
	rec     *Recorder
	name    string
}

func NewMockControl(rec *Recorder, name string) *MockControl {
	return &MockControl{Enabled: true, rec: rec, name: name}
}

func (c *MockControl) SetEnabled(enabled bool) {
	c.Enabled = enabled
	c.rec.record("%s enabled=%t", c.name, enabled)
}

// MockVisibility is an element that can be shown and hidden.
type MockVisibility struct {
	Shown bool
	rec   *Recorder
	name  string
}

func NewMockVisibility(rec *Recorder, name string, shown bool) *MockVisibility {
	return &MockVisibility{Shown: shown, rec: rec, name: name}
}

func (v *MockVisibility) Show() {
	v.Shown = true
	v.rec.record("%s show", v.name)
}

func (v *MockVisibility) Hide() {
	v.Shown = false
	v.rec.record("%s hide", v.name)
}

func (v *MockVisibility) Visible() bool { return v.Shown }

// MockFileList is an in-memory upload status list, newest first.
type MockFileList struct {
	Entries []models.UploadEntry
	rec     *Recorder
}

func NewMockFileList(rec *Recorder) *MockFileList {
	return &MockFileList{rec: rec}
}

func (l *MockFileList) Prepend(entry models.UploadEntry) {
	l.Entries = append([]models.UploadEntry{entry}, l.Entries...)
	l.rec.record("file %s %s", entry.Name, entry.Status)
}

func (l *MockFileList) SetStatus(id string, status models.UploadStatus) {
	for i := range l.Entries {
		if l.Entries[i].ID == id {
			l.Entries[i].Status = status
			l.rec.record("file %s %s", l.Entries[i].Name, status)
			return
		}
	}
}

// Statuses maps entry names to their current status.
func (l *MockFileList) Statuses() map[string]models.UploadStatus {
	out := make(map[string]models.UploadStatus, len(l.Entries))
	for _, e := range l.Entries {
		out[e.Name] = e.Status
	}
	return out
}

// MockAlerter records alerts.
type MockAlerter struct {
	Alerts []string
}

func (a *MockAlerter) Alert(msg string) {
	a.Alerts = append(a.Alerts, msg)
}
