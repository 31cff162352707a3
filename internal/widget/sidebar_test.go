package widget

import (
	"testing"

	"github.com/ragchat/widget/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestSidebar_Toggle(t *testing.T) {
	panel := testutil.NewMockVisibility(nil, "sidebar", false)
	s := NewSidebar(testutil.NewMockControl(nil, "menu"), panel)

	assert.True(t, s.Toggle())
	assert.True(t, panel.Shown)
	assert.False(t, s.Toggle())
	assert.False(t, panel.Shown)
}

func TestSidebar_MissingElements(t *testing.T) {
	panel := testutil.NewMockVisibility(nil, "sidebar", false)

	assert.False(t, NewSidebar(nil, panel).Toggle())
	assert.False(t, panel.Shown)
	assert.False(t, NewSidebar(testutil.NewMockControl(nil, "menu"), nil).Toggle())

	var nilSidebar *Sidebar
	assert.False(t, nilSidebar.Toggle())
}
