package widget

// Sidebar is the menu button / sidebar pair used on narrow layouts.
type Sidebar struct {
	button Control
	panel  Visibility
}

// NewSidebar wires the toggle. Either element may be nil, in which case
// Toggle does nothing.
func NewSidebar(button Control, panel Visibility) *Sidebar {
	return &Sidebar{button: button, panel: panel}
}

// Toggle flips the sidebar and reports whether it is now visible.
func (s *Sidebar) Toggle() bool {
	if s == nil || s.button == nil || s.panel == nil {
		return false
	}
	if s.panel.Visible() {
		s.panel.Hide()
		return false
	}
	s.panel.Show()
	return true
}
